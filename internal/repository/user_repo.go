package repository

import (
	"context"
	"errors"

	"helpdesk/internal/entity"

	"gorm.io/gorm"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindByID(ctx context.Context, id uint) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	UpdateRole(ctx context.Context, id uint, role entity.Role) error
	ListByRole(ctx context.Context, role entity.Role) ([]entity.User, error)
	// DeleteCascade removes the user and nulls every foreign key pointing
	// at them (authored tickets, assigned tickets, comments) in a single
	// transaction. Tickets and comments themselves are retained.
	DeleteCascade(ctx context.Context, id uint) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (*entity.User, error) {
	var user entity.User
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&user).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var user entity.User
	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		First(&user).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Update(ctx context.Context, user *entity.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *userRepository) UpdateRole(ctx context.Context, id uint, role entity.Role) error {
	return r.db.WithContext(ctx).
		Model(&entity.User{}).
		Where("id = ?", id).
		Update("role", role).
		Error
}

func (r *userRepository) ListByRole(ctx context.Context, role entity.Role) ([]entity.User, error) {
	var users []entity.User
	err := r.db.WithContext(ctx).
		Where("role = ?", role).
		Order("id ASC").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) DeleteCascade(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&entity.Ticket{}).
			Where("user_id = ?", id).
			Update("user_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&entity.Ticket{}).
			Where("assignee_id = ?", id).
			Update("assignee_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&entity.Comment{}).
			Where("user_id = ?", id).
			Update("user_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).
			Delete(&entity.Session{}).Error; err != nil {
			return err
		}
		return tx.Delete(&entity.User{}, id).Error
	})
}
