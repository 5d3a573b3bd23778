package service

import (
	"context"
	"testing"
	"time"

	"helpdesk/internal/entity"
	"helpdesk/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newUserService(db *gorm.DB) *UserService {
	return NewUserService(
		repository.NewUserRepository(db),
		repository.NewTicketRepository(db),
	)
}

func TestListUsers(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := newUserService(db)

	admin := createTestUser(t, db, "Ada", "ada@example.com", entity.RoleAdmin)
	alice := createTestUser(t, db, "Alice", "alice@example.com", entity.RoleStandard)
	bob := createTestUser(t, db, "Bob", "bob@example.com", entity.RoleStandard)

	createTestTicket(t, db, alice)
	createTestTicket(t, db, alice, func(tk *entity.Ticket) { tk.AssigneeID = &admin.ID })
	createTestTicket(t, db, bob, func(tk *entity.Ticket) { tk.AssigneeID = &admin.ID })

	_, err := svc.ListUsers(ctx, alice)
	assert.ErrorIs(t, err, ErrForbidden)

	view, err := svc.ListUsers(ctx, admin)
	require.NoError(t, err)
	require.Len(t, view.StandardUsers, 2)
	require.Len(t, view.Administrators, 1)

	// Standard users count reported tickets; administrators count assigned.
	assert.Equal(t, alice.Email, view.StandardUsers[0].Email)
	assert.Equal(t, "Eclipse Software", view.StandardUsers[0].Agency)
	assert.EqualValues(t, 2, view.StandardUsers[0].TicketCount)
	assert.EqualValues(t, 1, view.StandardUsers[1].TicketCount)
	assert.Equal(t, admin.Email, view.Administrators[0].Email)
	assert.EqualValues(t, 2, view.Administrators[0].TicketCount)
}

func TestUpdateRoles(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := newUserService(db)

	admin := createTestUser(t, db, "Ada", "ada@example.com", entity.RoleAdmin)
	second := createTestUser(t, db, "Owen", "owen@example.com", entity.RoleAdmin)
	alice := createTestUser(t, db, "Alice", "alice@example.com", entity.RoleStandard)
	bob := createTestUser(t, db, "Bob", "bob@example.com", entity.RoleStandard)

	_, err := svc.UpdateRoles(ctx, alice, []RoleChange{{UserID: bob.ID, Admin: true}})
	assert.ErrorIs(t, err, ErrForbidden)

	result, err := svc.UpdateRoles(ctx, admin, []RoleChange{
		{UserID: alice.ID, Admin: true},
		{UserID: second.ID, Admin: false},
		{UserID: bob.ID, Admin: false}, // already standard, no-op
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Promoted)
	assert.Equal(t, 1, result.Demoted)

	var promoted, demoted entity.User
	require.NoError(t, db.First(&promoted, alice.ID).Error)
	assert.Equal(t, entity.RoleAdmin, promoted.Role)
	require.NoError(t, db.First(&demoted, second.ID).Error)
	assert.Equal(t, entity.RoleStandard, demoted.Role)
}

func TestUpdateRolesRejectsSelfChangeBatch(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := newUserService(db)

	admin := createTestUser(t, db, "Ada", "ada@example.com", entity.RoleAdmin)
	alice := createTestUser(t, db, "Alice", "alice@example.com", entity.RoleStandard)

	// The self-change poisons the whole submission: the valid promotion of
	// Alice must not be applied either.
	_, err := svc.UpdateRoles(ctx, admin, []RoleChange{
		{UserID: alice.ID, Admin: true},
		{UserID: admin.ID, Admin: false},
	})
	assert.ErrorIs(t, err, ErrSelfRoleChange)

	var storedAlice, storedAdmin entity.User
	require.NoError(t, db.First(&storedAlice, alice.ID).Error)
	assert.Equal(t, entity.RoleStandard, storedAlice.Role)
	require.NoError(t, db.First(&storedAdmin, admin.ID).Error)
	assert.Equal(t, entity.RoleAdmin, storedAdmin.Role)
}

func TestUpdateRolesUnknownUser(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := newUserService(db)

	admin := createTestUser(t, db, "Ada", "ada@example.com", entity.RoleAdmin)

	_, err := svc.UpdateRoles(ctx, admin, []RoleChange{{UserID: admin.ID + 100, Admin: true}})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestDeleteUserKeepsHistory(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := newUserService(db)

	admin := createTestUser(t, db, "Ada", "ada@example.com", entity.RoleAdmin)
	alice := createTestUser(t, db, "Alice", "alice@example.com", entity.RoleStandard)

	_, err := svc.DeleteUser(ctx, alice, admin.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.DeleteUser(ctx, admin, alice.ID+100)
	assert.ErrorIs(t, err, ErrUserNotFound)

	authored := createTestTicket(t, db, alice)
	assigned := createTestTicket(t, db, admin, func(tk *entity.Ticket) { tk.AssigneeID = &alice.ID })
	comment := &entity.Comment{
		CommentText:    "Still broken.",
		AuthorFullname: alice.FullName(),
		TicketID:       &authored.ID,
		UserID:         &alice.ID,
		DateCreated:    time.Now(),
	}
	require.NoError(t, db.Create(comment).Error)
	session := &entity.Session{
		ID:        uuid.New(),
		State:     entity.SessionAuthenticated,
		UserID:    &alice.ID,
		ExpiresAt: time.Now().Add(time.Hour),
	}
	require.NoError(t, db.Create(session).Error)

	name, err := svc.DeleteUser(ctx, admin, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice Tester", name)

	var user entity.User
	assert.ErrorIs(t, db.First(&user, alice.ID).Error, gorm.ErrRecordNotFound)

	// Tickets and comments survive with their references nulled and their
	// name snapshots intact.
	var storedAuthored entity.Ticket
	require.NoError(t, db.First(&storedAuthored, authored.ID).Error)
	assert.Nil(t, storedAuthored.UserID)
	assert.Equal(t, "Alice Tester", storedAuthored.CreatedBy)

	var storedAssigned entity.Ticket
	require.NoError(t, db.First(&storedAssigned, assigned.ID).Error)
	assert.Nil(t, storedAssigned.AssigneeID)

	var storedComment entity.Comment
	require.NoError(t, db.First(&storedComment, comment.ID).Error)
	assert.Nil(t, storedComment.UserID)
	assert.Equal(t, "Alice Tester", storedComment.AuthorFullname)

	// The deleted user's sessions are gone.
	var sessionCount int64
	require.NoError(t, db.Model(&entity.Session{}).Where("user_id = ?", alice.ID).Count(&sessionCount).Error)
	assert.EqualValues(t, 0, sessionCount)
}
