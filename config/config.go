package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"helpdesk/internal/entity"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type Config struct {
	DatabaseURL   string
	HTTPAddr      string
	SessionSecret string
	SessionTTL    time.Duration
	CookieDomain  string
	SecureCookies bool

	// Disable2FA skips two-factor enrollment and challenge. Only for test
	// and staging environments.
	Disable2FA bool

	// SeedDemoData populates the demo dataset on an empty database.
	SeedDemoData bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		HTTPAddr:      envOr("HTTP_ADDR", ":8080"),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		SessionTTL:    12 * time.Hour,
		CookieDomain:  os.Getenv("COOKIE_DOMAIN"),
		SecureCookies: os.Getenv("COOKIE_SECURE") != "false",
		Disable2FA:    boolEnv("DISABLE_2FA"),
		SeedDemoData:  boolEnv("SEED_DEMO_DATA"),
	}
	if cfg.SessionSecret == "" {
		return nil, fmt.Errorf("SESSION_SECRET is required")
	}
	if raw := os.Getenv("SESSION_TTL"); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid SESSION_TTL %q: %w", raw, err)
		}
		cfg.SessionTTL = ttl
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func boolEnv(key string) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	return err == nil && value
}

// ConnectDB opens the postgres connection and migrates the schema.
func ConnectDB(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  databaseURL,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		PrepareStmt: false,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates the schema for all entities.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&entity.User{},
		&entity.Ticket{},
		&entity.Comment{},
		&entity.Session{},
	)
	if err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}
