package service

import "errors"

var (
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrInvalidCode        = errors.New("invalid authentication code")
	ErrNoPendingLogin     = errors.New("no pending login")
	ErrNoPendingSetup     = errors.New("no pending 2fa setup")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrTicketNotFound     = errors.New("ticket not found")
	ErrCommentEmpty       = errors.New("comment is empty")
	ErrForbidden          = errors.New("permission denied")
	ErrAssigneeNotAdmin   = errors.New("assignee must be an administrator")
	ErrSelfRoleChange     = errors.New("cannot change own role")
)
