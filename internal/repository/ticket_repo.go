package repository

import (
	"context"
	"errors"
	"time"

	"helpdesk/internal/entity"

	"gorm.io/gorm"
)

// TicketFilter is the already-parsed filter set applied to a dashboard
// listing. Zero values mean "no constraint". OwnerID scopes the base
// visible set; everything else narrows it.
type TicketFilter struct {
	OwnerID *uint

	TicketType string
	Status     string
	Priority   string

	AssigneeID *int
	Unassigned bool

	CreatedFrom   *time.Time
	CreatedBefore *time.Time
}

type TicketRepository interface {
	Create(ctx context.Context, ticket *entity.Ticket) error
	FindByID(ctx context.Context, id uint) (*entity.Ticket, error)
	Update(ctx context.Context, ticket *entity.Ticket) error
	// DeleteCascade removes the ticket and all of its comments in one
	// transaction.
	DeleteCascade(ctx context.Context, id uint) error

	// List returns one page of tickets matching the filter, newest id
	// first, plus the total match count across all pages.
	List(ctx context.Context, filter TicketFilter, page, perPage int) ([]entity.Ticket, int64, error)

	// CountByStatus counts tickets per status over the base visible set
	// (owner scope only, ignoring any active filters).
	CountByStatus(ctx context.Context, ownerID *uint) (map[entity.TicketStatus]int64, error)

	// ListAssignees returns the distinct users who currently have at
	// least one ticket assigned to them.
	ListAssignees(ctx context.Context) ([]entity.User, error)

	CountReportedBy(ctx context.Context, userID uint) (int64, error)
	CountAssignedTo(ctx context.Context, userID uint) (int64, error)
}

type ticketRepository struct {
	db *gorm.DB
}

func NewTicketRepository(db *gorm.DB) TicketRepository {
	return &ticketRepository{db: db}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *entity.Ticket) error {
	return r.db.WithContext(ctx).Create(ticket).Error
}

func (r *ticketRepository) FindByID(ctx context.Context, id uint) (*entity.Ticket, error) {
	var ticket entity.Ticket
	err := r.db.WithContext(ctx).First(&ticket, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) Update(ctx context.Context, ticket *entity.Ticket) error {
	return r.db.WithContext(ctx).Save(ticket).Error
}

func (r *ticketRepository) DeleteCascade(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("ticket_id = ?", id).
			Delete(&entity.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&entity.Ticket{}, id).Error
	})
}

func (r *ticketRepository) List(ctx context.Context, filter TicketFilter, page, perPage int) ([]entity.Ticket, int64, error) {
	query := r.applyFilter(r.db.WithContext(ctx).Model(&entity.Ticket{}), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	var tickets []entity.Ticket
	err := query.
		Order("id DESC").
		Limit(perPage).
		Offset((page - 1) * perPage).
		Find(&tickets).Error
	if err != nil {
		return nil, 0, err
	}
	return tickets, total, nil
}

func (r *ticketRepository) applyFilter(query *gorm.DB, filter TicketFilter) *gorm.DB {
	if filter.OwnerID != nil {
		query = query.Where("user_id = ?", *filter.OwnerID)
	}
	if filter.TicketType != "" {
		query = query.Where("ticket_type = ?", filter.TicketType)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Priority != "" {
		query = query.Where("priority = ?", filter.Priority)
	}
	if filter.Unassigned {
		query = query.Where("assignee_id IS NULL")
	} else if filter.AssigneeID != nil {
		query = query.Where("assignee_id = ?", *filter.AssigneeID)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("date_created >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("date_created < ?", *filter.CreatedBefore)
	}
	return query
}

func (r *ticketRepository) CountByStatus(ctx context.Context, ownerID *uint) (map[entity.TicketStatus]int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.Ticket{})
	if ownerID != nil {
		query = query.Where("user_id = ?", *ownerID)
	}

	var rows []struct {
		Status entity.TicketStatus
		Total  int64
	}
	err := query.
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[entity.TicketStatus]int64, len(entity.TicketStatuses))
	for _, status := range entity.TicketStatuses {
		counts[status] = 0
	}
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}

func (r *ticketRepository) ListAssignees(ctx context.Context) ([]entity.User, error) {
	var users []entity.User
	err := r.db.WithContext(ctx).
		Model(&entity.User{}).
		Distinct("users.*").
		Joins("JOIN tickets ON tickets.assignee_id = users.id").
		Order("users.id ASC").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (r *ticketRepository) CountReportedBy(ctx context.Context, userID uint) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&entity.Ticket{}).
		Where("user_id = ?", userID).
		Count(&total).Error
	return total, err
}

func (r *ticketRepository) CountAssignedTo(ctx context.Context, userID uint) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&entity.Ticket{}).
		Where("assignee_id = ?", userID).
		Count(&total).Error
	return total, err
}
