package dto

// Form structs bind the urlencoded POST bodies. Validation tags pair with
// the message table in internal/validation.

type LoginForm struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
}

type RegisterForm struct {
	Forename        string `form:"forename" validate:"required,max=50,personname"`
	Surname         string `form:"surname" validate:"required,max=50,personname"`
	Email           string `form:"email" validate:"required,email"`
	Password        string `form:"password" validate:"required,min=8,max=16,strongpassword"`
	PasswordConfirm string `form:"password_confirm" validate:"required,eqfield=Password"`
}

type TwoFactorForm struct {
	Token string `form:"token"`
}

// TicketForm serves both ticket creation and editing. EstimatedTime stays a
// string here; it has its own parse step with field-specific messages.
type TicketForm struct {
	TicketType    string `form:"ticket_type" validate:"required,oneof='Support Request' 'Feature Request' 'Bug Report'"`
	Subject       string `form:"subject" validate:"required,max=100"`
	Description   string `form:"description" validate:"required,max=500"`
	Status        string `form:"status" validate:"required,oneof=Open 'In Progress' 'On Hold / Pending' Resolved Closed"`
	Priority      string `form:"priority" validate:"required,oneof=Low Normal High"`
	EstimatedTime string `form:"estimated_time"`
	AssigneeID    string `form:"assignee_id"`
}

type CommentForm struct {
	CommentText string `form:"comment_text" validate:"required,max=500"`
}
