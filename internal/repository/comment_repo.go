package repository

import (
	"context"

	"helpdesk/internal/entity"

	"gorm.io/gorm"
)

type CommentRepository interface {
	Create(ctx context.Context, comment *entity.Comment) error
	// ListByTicket returns the full thread for a ticket, oldest first.
	ListByTicket(ctx context.Context, ticketID uint) ([]entity.Comment, error)
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *entity.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *commentRepository) ListByTicket(ctx context.Context, ticketID uint) ([]entity.Comment, error) {
	var comments []entity.Comment
	err := r.db.WithContext(ctx).
		Where("ticket_id = ?", ticketID).
		Order("date_created ASC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}
