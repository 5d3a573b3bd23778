package policy

import (
	"testing"

	"helpdesk/internal/entity"

	"github.com/stretchr/testify/assert"
)

func ticketOwnedBy(userID uint) *entity.Ticket {
	id := userID
	return &entity.Ticket{ID: 1, UserID: &id}
}

func TestCanViewTicket(t *testing.T) {
	admin := &entity.User{ID: 1, Role: entity.RoleAdmin}
	owner := &entity.User{ID: 2, Role: entity.RoleStandard}
	other := &entity.User{ID: 3, Role: entity.RoleStandard}

	tests := []struct {
		name   string
		actor  *entity.User
		ticket *entity.Ticket
		want   bool
	}{
		{"admin sees any ticket", admin, ticketOwnedBy(2), true},
		{"owner sees own ticket", owner, ticketOwnedBy(2), true},
		{"stranger denied", other, ticketOwnedBy(2), false},
		{"orphaned ticket only visible to admin", other, &entity.Ticket{ID: 9}, false},
		{"orphaned ticket visible to admin", admin, &entity.Ticket{ID: 9}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanViewTicket(tt.actor, tt.ticket))
			assert.Equal(t, tt.want, CanEditTicket(tt.actor, tt.ticket))
			assert.Equal(t, tt.want, CanCommentOnTicket(tt.actor, tt.ticket))
		})
	}
}

func TestCanDeleteTicket(t *testing.T) {
	admin := &entity.User{ID: 1, Role: entity.RoleAdmin}
	owner := &entity.User{ID: 2, Role: entity.RoleStandard}

	assert.True(t, CanDeleteTicket(admin))
	assert.False(t, CanDeleteTicket(owner), "owners cannot delete their own tickets")
}

func TestCanManageUsers(t *testing.T) {
	assert.True(t, CanManageUsers(&entity.User{ID: 1, Role: entity.RoleAdmin}))
	assert.False(t, CanManageUsers(&entity.User{ID: 2, Role: entity.RoleStandard}))
}

func TestCanChangeRole(t *testing.T) {
	admin := &entity.User{ID: 1, Role: entity.RoleAdmin}
	standard := &entity.User{ID: 2, Role: entity.RoleStandard}

	assert.True(t, CanChangeRole(admin, 2))
	assert.False(t, CanChangeRole(admin, 1), "self role change must be rejected")
	assert.False(t, CanChangeRole(standard, 1))
}
