package service

import (
	"context"

	"helpdesk/internal/entity"
	"helpdesk/internal/policy"
	"helpdesk/internal/repository"
)

// UserSummary is one row of the admin user listing. TicketCount means
// reported tickets for standard users and assigned tickets for
// administrators.
type UserSummary struct {
	ID          uint   `json:"id"`
	Forename    string `json:"forename"`
	Surname     string `json:"surname"`
	Email       string `json:"email"`
	Agency      string `json:"agency"`
	TicketCount int64  `json:"ticket_count"`
}

type UserListView struct {
	StandardUsers  []UserSummary `json:"standard_users"`
	Administrators []UserSummary `json:"administrators"`
}

// RoleChange is one row of an /update_admin submission.
type RoleChange struct {
	UserID uint
	Admin  bool
}

type RoleUpdateResult struct {
	Promoted int
	Demoted  int
}

type UserService struct {
	users   repository.UserRepository
	tickets repository.TicketRepository
}

func NewUserService(users repository.UserRepository, tickets repository.TicketRepository) *UserService {
	return &UserService{
		users:   users,
		tickets: tickets,
	}
}

// ListUsers builds the admin user-management view: standard users with how
// many tickets they reported, administrators with how many they hold.
func (s *UserService) ListUsers(ctx context.Context, actor *entity.User) (*UserListView, error) {
	if !policy.CanManageUsers(actor) {
		return nil, ErrForbidden
	}

	standard, err := s.users.ListByRole(ctx, entity.RoleStandard)
	if err != nil {
		return nil, err
	}
	admins, err := s.users.ListByRole(ctx, entity.RoleAdmin)
	if err != nil {
		return nil, err
	}

	view := &UserListView{
		StandardUsers:  make([]UserSummary, 0, len(standard)),
		Administrators: make([]UserSummary, 0, len(admins)),
	}
	for i := range standard {
		count, err := s.tickets.CountReportedBy(ctx, standard[i].ID)
		if err != nil {
			return nil, err
		}
		view.StandardUsers = append(view.StandardUsers, summarize(&standard[i], count))
	}
	for i := range admins {
		count, err := s.tickets.CountAssignedTo(ctx, admins[i].ID)
		if err != nil {
			return nil, err
		}
		view.Administrators = append(view.Administrators, summarize(&admins[i], count))
	}
	return view, nil
}

func summarize(user *entity.User, ticketCount int64) UserSummary {
	return UserSummary{
		ID:          user.ID,
		Forename:    user.Forename,
		Surname:     user.Surname,
		Email:       user.Email,
		Agency:      user.Agency,
		TicketCount: ticketCount,
	}
}

// UpdateRoles applies a batch of role changes. A submission that names the
// acting administrator is rejected outright: nothing in the batch is
// applied, so a self-change cannot slip through alongside valid rows.
func (s *UserService) UpdateRoles(ctx context.Context, actor *entity.User, changes []RoleChange) (*RoleUpdateResult, error) {
	if !policy.CanManageUsers(actor) {
		return nil, ErrForbidden
	}
	for _, change := range changes {
		if !policy.CanChangeRole(actor, change.UserID) {
			return nil, ErrSelfRoleChange
		}
	}

	result := &RoleUpdateResult{}
	for _, change := range changes {
		user, err := s.users.FindByID(ctx, change.UserID)
		if err != nil {
			return nil, err
		}
		if user == nil {
			return nil, ErrUserNotFound
		}

		role := entity.RoleStandard
		if change.Admin {
			role = entity.RoleAdmin
		}
		if user.Role == role {
			continue
		}
		if err := s.users.UpdateRole(ctx, user.ID, role); err != nil {
			return nil, err
		}
		if change.Admin {
			result.Promoted++
		} else {
			result.Demoted++
		}
	}
	return result, nil
}

// DeleteUser removes the user while keeping their history: authored tickets,
// assigned tickets, and comments survive with nulled foreign keys. Returns
// the deleted user's display name for the confirmation flash.
func (s *UserService) DeleteUser(ctx context.Context, actor *entity.User, id uint) (string, error) {
	if !policy.CanDeleteUser(actor) {
		return "", ErrForbidden
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", ErrUserNotFound
	}

	if err := s.users.DeleteCascade(ctx, user.ID); err != nil {
		return "", err
	}
	return user.FullName(), nil
}
