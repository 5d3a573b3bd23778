// Package validation wires go-playground/validator with the custom rules the
// helpdesk forms need and maps field errors to the exact user-facing copy.
package validation

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	nameRegex = regexp.MustCompile(`^[A-Za-z][A-Za-z\s'-]*$`)

	passwordSpecials = "@$!%*#?&"
)

type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New()
	_ = v.RegisterValidation("personname", validPersonName)
	_ = v.RegisterValidation("strongpassword", validPassword)
	return &Validator{validate: v}
}

// Check validates a form struct and returns the first user-facing message,
// or "" when the form is valid. Forms are reported one error at a time, the
// way the pages surface them.
func (v *Validator) Check(form any) string {
	err := v.validate.Struct(form)
	if err == nil {
		return ""
	}
	errors, ok := err.(validator.ValidationErrors)
	if !ok || len(errors) == 0 {
		return "Invalid input."
	}
	first := errors[0]
	if message, ok := messages[first.StructNamespace()+"."+first.Tag()]; ok {
		return message
	}
	return "Invalid input."
}

func validPersonName(fl validator.FieldLevel) bool {
	return nameRegex.MatchString(strings.TrimSpace(fl.Field().String()))
}

// validPassword enforces the composition rule: at least one lowercase, one
// uppercase, one digit, one special from @$!%*#?&, and no characters
// outside that alphabet.
func validPassword(fl validator.FieldLevel) bool {
	password := fl.Field().String()
	var lower, upper, digit, special bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		default:
			return false
		}
	}
	return lower && upper && digit && special
}

// ParseEstimatedTime validates the estimated-effort field: numeric, between
// 1 and 40 hours inclusive, at most two decimal places. Returns the parsed
// value and "" on success, or 0 and the user-facing message.
func ParseEstimatedTime(raw string) (float64, string) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, "Estimated time must be a valid number."
	}
	value, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, "Estimated time must be a valid number."
	}
	if dot := strings.IndexByte(trimmed, '.'); dot >= 0 && len(trimmed)-dot-1 > 2 {
		return 0, "Estimated time cannot have more than 2 decimal places."
	}
	if value < 1.0 {
		return 0, "Estimated time cannot be less than 1 hour."
	}
	if value > 40.0 {
		return 0, "Estimated time cannot be more than 40 hours."
	}
	return value, ""
}

// messages maps "<Struct>.<Field>.<tag>" to the copy shown to the user.
var messages = map[string]string{
	"RegisterForm.Forename.required":        "Forename cannot be blank.",
	"RegisterForm.Forename.personname":      "Forename can only contain letters, spaces, hyphens or apostrophes.",
	"RegisterForm.Forename.max":             "Forename cannot exceed 50 characters.",
	"RegisterForm.Surname.required":         "Surname cannot be blank.",
	"RegisterForm.Surname.personname":       "Surname can only contain letters, spaces, hyphens or apostrophes.",
	"RegisterForm.Surname.max":              "Surname cannot exceed 50 characters.",
	"RegisterForm.Email.required":           "Email cannot be blank.",
	"RegisterForm.Email.email":              "Please enter a valid email address.",
	"RegisterForm.Password.required":        "Password must be at least 8 characters long.",
	"RegisterForm.Password.min":             "Password must be at least 8 characters long.",
	"RegisterForm.Password.max":             "Password cannot exceed 16 characters.",
	"RegisterForm.Password.strongpassword":  "Password must include at least one uppercase letter, one lowercase letter, one number, and one special character (@$!%*#?&).",
	"RegisterForm.PasswordConfirm.required": "Your passwords do not match.",
	"RegisterForm.PasswordConfirm.eqfield":  "Your passwords do not match.",

	"LoginForm.Email.required":    "Please enter a valid email address.",
	"LoginForm.Email.email":       "Please enter a valid email address.",
	"LoginForm.Password.required": "Please enter your password.",

	"TicketForm.TicketType.required": "You must select a ticket type.",
	"TicketForm.TicketType.oneof":    "You must select a ticket type.",
	"TicketForm.Subject.required":    "Subject cannot be blank.",
	"TicketForm.Subject.max":         "Subject must not exceed 100 characters.",
	"TicketForm.Description.required": "Description cannot be blank.",
	"TicketForm.Description.max":      "Description must not exceed 500 characters.",
	"TicketForm.Status.required":      "You must select a status.",
	"TicketForm.Status.oneof":         "You must select a status.",
	"TicketForm.Priority.required":    "You must select a priority.",
	"TicketForm.Priority.oneof":       "You must select a priority.",

	"CommentForm.CommentText.required": "Comment cannot be empty.",
	"CommentForm.CommentText.max":      "Comment must not exceed 500 characters.",
}
