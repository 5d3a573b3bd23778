package entity

import (
	"time"
)

type TicketType string

const (
	TypeSupportRequest TicketType = "Support Request"
	TypeFeatureRequest TicketType = "Feature Request"
	TypeBugReport      TicketType = "Bug Report"
)

type TicketStatus string

const (
	StatusOpen          TicketStatus = "Open"
	StatusInProgress    TicketStatus = "In Progress"
	StatusOnHoldPending TicketStatus = "On Hold / Pending"
	StatusResolved      TicketStatus = "Resolved"
	StatusClosed        TicketStatus = "Closed"
)

type TicketPriority string

const (
	PriorityLow    TicketPriority = "Low"
	PriorityNormal TicketPriority = "Normal"
	PriorityHigh   TicketPriority = "High"
)

// TicketStatuses lists every status in dashboard display order.
var TicketStatuses = []TicketStatus{
	StatusOpen,
	StatusInProgress,
	StatusOnHoldPending,
	StatusResolved,
	StatusClosed,
}

type Ticket struct {
	ID          uint           `gorm:"primaryKey"`
	TicketType  TicketType     `gorm:"type:varchar(20);not null"`
	Subject     string         `gorm:"type:varchar(100);not null"`
	Description string         `gorm:"type:varchar(500);not null"`
	Status      TicketStatus   `gorm:"type:varchar(20);not null"`
	Priority    TicketPriority `gorm:"type:varchar(20);not null"`

	// Estimated effort in hours, 1.0 through 40.0, two decimal places.
	EstimatedTime float64 `gorm:"not null"`

	// CreatedBy and UpdatedBy are display-name snapshots taken at write
	// time so ticket history survives user deletion and renames.
	CreatedBy string  `gorm:"type:varchar(100);not null"`
	UpdatedBy *string `gorm:"type:varchar(100)"`

	UserID     *uint `gorm:"index"`
	AssigneeID *uint `gorm:"index"`

	DateCreated time.Time `gorm:"autoCreateTime"`
	DateUpdated *time.Time

	Comments []Comment `gorm:"foreignKey:TicketID"`
}

func ValidTicketType(value string) bool {
	switch TicketType(value) {
	case TypeSupportRequest, TypeFeatureRequest, TypeBugReport:
		return true
	}
	return false
}

func ValidTicketStatus(value string) bool {
	switch TicketStatus(value) {
	case StatusOpen, StatusInProgress, StatusOnHoldPending, StatusResolved, StatusClosed:
		return true
	}
	return false
}

func ValidTicketPriority(value string) bool {
	switch TicketPriority(value) {
	case PriorityLow, PriorityNormal, PriorityHigh:
		return true
	}
	return false
}
