package entity

import (
	"time"
)

type Comment struct {
	ID          uint   `gorm:"primaryKey"`
	CommentText string `gorm:"type:varchar(500);not null"`

	// AuthorFullname is a snapshot of the author's name at posting time.
	AuthorFullname string `gorm:"type:varchar(100);not null"`

	TicketID *uint `gorm:"index"`
	UserID   *uint `gorm:"index"`

	DateCreated time.Time `gorm:"autoCreateTime"`
}
