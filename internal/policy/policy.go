// Package policy holds the pure access-control decisions for tickets,
// comments, and user administration. Every function answers from the actor
// and resource alone; callers translate denials into a flash message and a
// redirect.
package policy

import (
	"helpdesk/internal/entity"
)

// CanViewTicket reports whether the actor may open the ticket and its
// comment thread. Administrators see everything; standard users see only
// tickets they reported.
func CanViewTicket(actor *entity.User, ticket *entity.Ticket) bool {
	if actor.IsAdmin() {
		return true
	}
	return ticket.UserID != nil && *ticket.UserID == actor.ID
}

// CanEditTicket follows the same ownership rule as viewing.
func CanEditTicket(actor *entity.User, ticket *entity.Ticket) bool {
	return CanViewTicket(actor, ticket)
}

// CanCommentOnTicket follows the same ownership rule as viewing.
func CanCommentOnTicket(actor *entity.User, ticket *entity.Ticket) bool {
	return CanViewTicket(actor, ticket)
}

// CanDeleteTicket is administrator-only regardless of ownership.
func CanDeleteTicket(actor *entity.User) bool {
	return actor.IsAdmin()
}

// CanManageUsers gates the user listing, role updates, and user deletion.
func CanManageUsers(actor *entity.User) bool {
	return actor.IsAdmin()
}

// CanChangeRole rejects any attempt by an administrator to change their own
// role, even when the request includes it.
func CanChangeRole(actor *entity.User, targetID uint) bool {
	return actor.IsAdmin() && actor.ID != targetID
}

// CanDeleteUser is administrator-only.
func CanDeleteUser(actor *entity.User) bool {
	return actor.IsAdmin()
}
