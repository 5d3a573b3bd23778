package routes

import (
	"time"

	"helpdesk/api/handler"
	"helpdesk/api/middleware"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

type Router struct {
	Echo              *echo.Echo
	Auth              *handler.AuthHandler
	Tickets           *handler.TicketHandler
	Users             *handler.UserHandler
	SessionMiddleware middleware.SessionMiddleware
	AuthMiddleware    middleware.AuthMiddleware
	AuthRate          *middleware.RateLimiter
	LoginRate         *middleware.RateLimiter
}

func NewRouter(
	e *echo.Echo,
	auth *handler.AuthHandler,
	tickets *handler.TicketHandler,
	users *handler.UserHandler,
	sessionMiddleware middleware.SessionMiddleware,
	authMiddleware middleware.AuthMiddleware,
) *Router {
	return &Router{
		Echo:              e,
		Auth:              auth,
		Tickets:           tickets,
		Users:             users,
		SessionMiddleware: sessionMiddleware,
		AuthMiddleware:    authMiddleware,
		AuthRate:          middleware.NewRateLimiter(rate.Limit(5), 10, 5*time.Minute),
		LoginRate:         middleware.NewRateLimiter(rate.Limit(2), 6, 10*time.Minute),
	}
}

func (r *Router) RegisterRoutes() {
	e := r.Echo
	e.Use(r.SessionMiddleware.Ensure)

	e.GET("/login", r.Auth.ShowLogin)
	e.POST("/login", r.Auth.Login, r.LoginRate.Middleware())
	e.GET("/login_2fa", r.Auth.ShowChallenge)
	e.POST("/login_2fa", r.Auth.Challenge, r.LoginRate.Middleware())
	e.GET("/register", r.Auth.ShowRegister)
	e.POST("/register", r.Auth.Register, r.AuthRate.Middleware())
	e.GET("/setup_2fa", r.Auth.ShowSetup)
	e.POST("/setup_2fa", r.Auth.ConfirmSetup, r.LoginRate.Middleware())
	e.GET("/logout", r.Auth.ShowLogout, r.AuthMiddleware.RequireAuth)
	e.POST("/logout", r.Auth.Logout, r.AuthMiddleware.RequireAuth)

	e.GET("/", r.Tickets.Dashboard, r.AuthMiddleware.RequireAuth)
	e.GET("/create_ticket", r.Tickets.ShowCreate, r.AuthMiddleware.RequireAuth)
	e.POST("/create_ticket", r.Tickets.Create, r.AuthMiddleware.RequireAuth)
	e.GET("/ticket_details/:id", r.Tickets.Details, r.AuthMiddleware.RequireAuth)
	e.POST("/ticket_details/:id", r.Tickets.Update, r.AuthMiddleware.RequireAuth)
	e.POST("/delete_ticket/:id", r.Tickets.Delete, r.AuthMiddleware.RequireAuth)

	e.GET("/users", r.Users.List, r.AuthMiddleware.RequireAuth)
	e.POST("/update_admin", r.Users.UpdateAdmin, r.AuthMiddleware.RequireAuth)
	e.POST("/delete_user/:id", r.Users.Delete, r.AuthMiddleware.RequireAuth)
}
