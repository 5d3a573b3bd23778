package entity

import (
	"time"
)

type Role string

const (
	RoleStandard Role = "standard"
	RoleAdmin    Role = "administrator"
)

type User struct {
	ID       uint   `gorm:"primaryKey"`
	Forename string `gorm:"type:varchar(50);not null"`
	Surname  string `gorm:"type:varchar(50);not null"`
	Email    string `gorm:"type:varchar(255);uniqueIndex;not null"`

	// Agency is the organization the user belongs to, shown on the user
	// management page.
	Agency string `gorm:"type:varchar(100)"`

	PasswordHash string `gorm:"type:text;not null"`
	Role         Role   `gorm:"type:varchar(20);default:'standard';not null"`

	// TOTPSecret is set on first enrollment; TwoFactorEnabled stays false
	// until a code has been confirmed against it.
	TOTPSecret       *string `gorm:"type:varchar(64)"`
	TwoFactorEnabled bool    `gorm:"default:false"`

	CreatedAt time.Time

	Tickets         []Ticket  `gorm:"foreignKey:UserID"`
	AssignedTickets []Ticket  `gorm:"foreignKey:AssigneeID"`
	Comments        []Comment `gorm:"foreignKey:UserID"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) FullName() string {
	return u.Forename + " " + u.Surname
}
