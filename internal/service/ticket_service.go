package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"helpdesk/internal/entity"
	"helpdesk/internal/policy"
	"helpdesk/internal/repository"
)

// DashboardPageSize is the fixed number of tickets per dashboard page.
const DashboardPageSize = 10

// DashboardQuery carries the raw, unparsed filter parameters from the
// request. Empty strings mean "no filter".
type DashboardQuery struct {
	TicketType  string
	Status      string
	Priority    string
	Assignee    string
	DateCreated string
	Page        int
}

type DashboardView struct {
	Tickets        []entity.Ticket
	StatusCounts   map[entity.TicketStatus]int64
	Assignees      []entity.User
	FiltersApplied bool
	Page           int
	PerPage        int
	Total          int64
	TotalPages     int
}

type TicketDetails struct {
	Ticket          entity.Ticket
	Comments        []entity.Comment
	AssigneeOptions []entity.User
}

type CreateTicketInput struct {
	TicketType    string
	Subject       string
	Description   string
	Status        string
	Priority      string
	EstimatedTime float64
}

type EditTicketInput struct {
	TicketType    string
	Subject       string
	Description   string
	Status        string
	Priority      string
	EstimatedTime float64
	AssigneeID    *uint
}

type TicketService struct {
	tickets  repository.TicketRepository
	comments repository.CommentRepository
	users    repository.UserRepository
	clock    Clock
}

func NewTicketService(
	tickets repository.TicketRepository,
	comments repository.CommentRepository,
	users repository.UserRepository,
	clock Clock,
) *TicketService {
	if clock == nil {
		clock = RealClock{}
	}
	return &TicketService{
		tickets:  tickets,
		comments: comments,
		users:    users,
		clock:    clock,
	}
}

// ParseTicketFilter turns raw request parameters into a typed filter over
// the actor's visible scope. Unparseable assignee values and unknown date
// ranges are ignored rather than rejected.
func ParseTicketFilter(actor *entity.User, q DashboardQuery, now time.Time) repository.TicketFilter {
	filter := repository.TicketFilter{
		TicketType: q.TicketType,
		Status:     q.Status,
		Priority:   q.Priority,
	}
	if !actor.IsAdmin() {
		id := actor.ID
		filter.OwnerID = &id
	}

	if assignee := strings.TrimSpace(q.Assignee); assignee != "" {
		if strings.EqualFold(assignee, "unassigned") {
			filter.Unassigned = true
		} else if id, err := strconv.Atoi(assignee); err == nil {
			// Any integer is matched exactly; an id no user holds simply
			// yields an empty result. Only non-integers are ignored.
			filter.AssigneeID = &id
		}
	}

	switch q.DateCreated {
	case "Today":
		start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		end := start.AddDate(0, 0, 1)
		filter.CreatedFrom = &start
		filter.CreatedBefore = &end
	case "Last 7 Days":
		start := now.AddDate(0, 0, -7)
		filter.CreatedFrom = &start
	case "This Month":
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		filter.CreatedFrom = &start
	}

	return filter
}

// FiltersApplied reports whether any of the five filter parameters is
// present, driving the "clear filters" affordance.
func FiltersApplied(q DashboardQuery) bool {
	return q.TicketType != "" ||
		q.Status != "" ||
		q.Priority != "" ||
		q.Assignee != "" ||
		q.DateCreated != ""
}

// Dashboard builds the filtered, paginated ticket listing plus the
// per-status counts. Counts always cover the actor's full visible scope,
// not the filtered view.
func (s *TicketService) Dashboard(ctx context.Context, actor *entity.User, q DashboardQuery) (*DashboardView, error) {
	filter := ParseTicketFilter(actor, q, s.clock.Now())

	page := q.Page
	if page < 1 {
		page = 1
	}
	tickets, total, err := s.tickets.List(ctx, filter, page, DashboardPageSize)
	if err != nil {
		return nil, err
	}

	counts, err := s.tickets.CountByStatus(ctx, filter.OwnerID)
	if err != nil {
		return nil, err
	}

	assignees, err := s.tickets.ListAssignees(ctx)
	if err != nil {
		return nil, err
	}

	totalPages := int((total + DashboardPageSize - 1) / DashboardPageSize)
	return &DashboardView{
		Tickets:        tickets,
		StatusCounts:   counts,
		Assignees:      assignees,
		FiltersApplied: FiltersApplied(q),
		Page:           page,
		PerPage:        DashboardPageSize,
		Total:          total,
		TotalPages:     totalPages,
	}, nil
}

// Create opens a ticket with the actor as owner and a display-name snapshot
// as creator. Input is assumed field-validated by the caller.
func (s *TicketService) Create(ctx context.Context, actor *entity.User, input CreateTicketInput) (*entity.Ticket, error) {
	ticket := &entity.Ticket{
		TicketType:    entity.TicketType(input.TicketType),
		Subject:       input.Subject,
		Description:   input.Description,
		Status:        entity.TicketStatus(input.Status),
		Priority:      entity.TicketPriority(input.Priority),
		EstimatedTime: input.EstimatedTime,
		CreatedBy:     actor.FullName(),
		UserID:        &actor.ID,
		DateCreated:   s.clock.Now(),
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}
	return ticket, nil
}

// Details returns the ticket, its full comment thread, and the list of
// administrators an admin can assign it to.
func (s *TicketService) Details(ctx context.Context, actor *entity.User, id uint) (*TicketDetails, error) {
	ticket, err := s.tickets.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ticket == nil {
		return nil, ErrTicketNotFound
	}
	if !policy.CanViewTicket(actor, ticket) {
		return nil, ErrForbidden
	}

	comments, err := s.comments.ListByTicket(ctx, id)
	if err != nil {
		return nil, err
	}

	var options []entity.User
	if actor.IsAdmin() {
		options, err = s.users.ListByRole(ctx, entity.RoleAdmin)
		if err != nil {
			return nil, err
		}
	}

	return &TicketDetails{
		Ticket:          *ticket,
		Comments:        comments,
		AssigneeOptions: options,
	}, nil
}

// Edit updates a ticket's mutable fields. Only the owner or an
// administrator may edit; the assignee, when set, must hold the
// administrator role at assignment time.
func (s *TicketService) Edit(ctx context.Context, actor *entity.User, id uint, input EditTicketInput) error {
	ticket, err := s.tickets.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if ticket == nil {
		return ErrTicketNotFound
	}
	if !policy.CanEditTicket(actor, ticket) {
		return ErrForbidden
	}

	if input.AssigneeID != nil {
		assignee, err := s.users.FindByID(ctx, *input.AssigneeID)
		if err != nil {
			return err
		}
		if assignee == nil || !assignee.IsAdmin() {
			return ErrAssigneeNotAdmin
		}
	}

	now := s.clock.Now()
	updatedBy := actor.FullName()
	ticket.TicketType = entity.TicketType(input.TicketType)
	ticket.Subject = input.Subject
	ticket.Description = input.Description
	ticket.Status = entity.TicketStatus(input.Status)
	ticket.Priority = entity.TicketPriority(input.Priority)
	ticket.EstimatedTime = input.EstimatedTime
	ticket.AssigneeID = input.AssigneeID
	ticket.UpdatedBy = &updatedBy
	ticket.DateUpdated = &now
	return s.tickets.Update(ctx, ticket)
}

// AddComment appends to the ticket thread under the same visibility rule as
// viewing. Text is stored trimmed; a whitespace-only comment is rejected.
// Comments are immutable once posted.
func (s *TicketService) AddComment(ctx context.Context, actor *entity.User, ticketID uint, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrCommentEmpty
	}
	ticket, err := s.tickets.FindByID(ctx, ticketID)
	if err != nil {
		return err
	}
	if ticket == nil {
		return ErrTicketNotFound
	}
	if !policy.CanCommentOnTicket(actor, ticket) {
		return ErrForbidden
	}

	comment := &entity.Comment{
		CommentText:    text,
		AuthorFullname: actor.FullName(),
		TicketID:       &ticket.ID,
		UserID:         &actor.ID,
		DateCreated:    s.clock.Now(),
	}
	return s.comments.Create(ctx, comment)
}

// Delete removes a ticket and its comments. Administrator-only.
func (s *TicketService) Delete(ctx context.Context, actor *entity.User, id uint) error {
	ticket, err := s.tickets.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if ticket == nil {
		return ErrTicketNotFound
	}
	if !policy.CanDeleteTicket(actor) {
		return ErrForbidden
	}
	return s.tickets.DeleteCascade(ctx, id)
}
