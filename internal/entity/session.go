package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// SessionState tracks where a browser session sits in the login or
// registration flow.
type SessionState string

const (
	SessionAnonymous         SessionState = "anonymous"
	SessionPendingEnrollment SessionState = "pending_2fa_enrollment"
	SessionPendingChallenge  SessionState = "pending_2fa_challenge"
	SessionAuthenticated     SessionState = "authenticated"
)

type Session struct {
	ID    uuid.UUID    `gorm:"type:uuid;primaryKey"`
	State SessionState `gorm:"type:varchar(30);default:'anonymous';not null"`

	// UserID is set once the session reaches the authenticated state.
	UserID *uint `gorm:"index"`

	// PendingUserID bridges a successful credential check to the 2FA step
	// for an existing user.
	PendingUserID *uint

	// Draft holds a not-yet-materialized registration (name, email,
	// password hash, provisional TOTP secret) while enrollment completes.
	Draft datatypes.JSON

	// Flashes is the queue of one-time messages shown on the next page load.
	Flashes datatypes.JSON

	IPAddress *string `gorm:"type:varchar(45)"`
	UserAgent *string `gorm:"type:text"`

	ExpiresAt time.Time
	RevokedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (s *Session) Authenticated() bool {
	return s.State == SessionAuthenticated && s.UserID != nil
}

func (s *Session) Expired(now time.Time) bool {
	return s.RevokedAt != nil || now.After(s.ExpiresAt)
}

// RegistrationDraft is the JSON payload stored in Session.Draft. The raw
// password never reaches the session row, only its hash.
type RegistrationDraft struct {
	Forename     string `json:"forename"`
	Surname      string `json:"surname"`
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash"`
	TOTPSecret   string `json:"totp_secret,omitempty"`
}

// Flash is a one-time user-visible message carried across a redirect.
type Flash struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashInfo    = "info"
)
