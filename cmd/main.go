package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"helpdesk/api/handler"
	apiMiddleware "helpdesk/api/middleware"
	"helpdesk/api/routes"
	"helpdesk/config"
	"helpdesk/internal/repository"
	"helpdesk/internal/seed"
	"helpdesk/internal/service"
	"helpdesk/internal/utils"
	"helpdesk/internal/validation"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("configuration error")
	}

	db, err := config.ConnectDB(cfg.DatabaseURL)
	if err != nil {
		logger.WithError(err).Fatal("database error")
	}

	userRepo := repository.NewUserRepository(db)
	ticketRepo := repository.NewTicketRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	sessionRepo := repository.NewSessionRepository(db)

	hasher := service.BcryptPasswordHasher{}

	if cfg.SeedDemoData {
		if err := seed.Populate(context.Background(), db, hasher); err != nil {
			logger.WithError(err).Fatal("seeding error")
		}
	}

	tokens := utils.SessionTokenManager{
		Secret: []byte(cfg.SessionSecret),
		Issuer: "helpdesk",
	}
	sessions := service.NewSessionManager(sessionRepo, tokens, cfg.SessionTTL, service.RealClock{})

	authService := service.NewAuthService(
		userRepo,
		sessions,
		hasher,
		service.NewTOTP("Eclipse Software Help Desk"),
		service.AuthConfig{Disable2FA: cfg.Disable2FA},
		logger,
	)
	ticketService := service.NewTicketService(ticketRepo, commentRepo, userRepo, service.RealClock{})
	userService := service.NewUserService(userRepo, ticketRepo)

	validate := validation.New()

	sessionMiddleware := apiMiddleware.SessionMiddleware{
		Sessions:     sessions,
		CookieDomain: cfg.CookieDomain,
		Secure:       cfg.SecureCookies,
	}
	authMiddleware := apiMiddleware.AuthMiddleware{
		Auth:     authService,
		Sessions: sessions,
	}

	authHandler := handler.NewAuthHandler(authService, sessions, validate, sessionMiddleware)
	ticketHandler := handler.NewTicketHandler(ticketService, sessions, validate)
	userHandler := handler.NewUserHandler(userService, sessions)

	app := echo.New()
	app.HideBanner = true
	app.HidePort = true
	app.Use(echoMiddleware.Recover())
	app.Use(echoMiddleware.RequestLoggerWithConfig(echoMiddleware.RequestLoggerConfig{
		LogStatus:   true,
		LogMethod:   true,
		LogURI:      true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v echoMiddleware.RequestLoggerValues) error {
			entry := logger.WithFields(logrus.Fields{
				"status": v.Status,
				"method": v.Method,
				"uri":    v.URI,
				"ip":     v.RemoteIP,
			})
			if v.Error != nil {
				entry.WithError(v.Error).Error("request")
				return nil
			}
			entry.Info("request")
			return nil
		},
	}))

	router := routes.NewRouter(app, authHandler, ticketHandler, userHandler, sessionMiddleware, authMiddleware)
	router.RegisterRoutes()

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.WithField("addr", cfg.HTTPAddr).Info("server started")
	if err := app.StartServer(server); err != nil {
		logger.WithError(err).Fatal("server stopped")
	}
}
