package service

import (
	"testing"
	"time"

	"helpdesk/config"
	"helpdesk/internal/entity"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A :memory: database exists per connection; keep the pool at one.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, config.Migrate(db))
	return db
}

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}

func createTestUser(t *testing.T, db *gorm.DB, forename, email string, role entity.Role) *entity.User {
	t.Helper()

	user := &entity.User{
		Forename:     forename,
		Surname:      "Tester",
		Email:        email,
		Agency:       "Eclipse Software",
		PasswordHash: "not-a-real-hash",
		Role:         role,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestTicket(t *testing.T, db *gorm.DB, owner *entity.User, mutate ...func(*entity.Ticket)) *entity.Ticket {
	t.Helper()

	ticket := &entity.Ticket{
		TicketType:    entity.TypeSupportRequest,
		Subject:       "Printer offline",
		Description:   "The office printer is not responding.",
		Status:        entity.StatusOpen,
		Priority:      entity.PriorityNormal,
		EstimatedTime: 2,
		CreatedBy:     owner.FullName(),
		UserID:        &owner.ID,
		DateCreated:   time.Now(),
	}
	for _, fn := range mutate {
		fn(ticket)
	}
	require.NoError(t, db.Create(ticket).Error)
	return ticket
}
