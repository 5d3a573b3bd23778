package middleware

import (
	"net/http"

	"helpdesk/internal/service"

	"github.com/labstack/echo/v4"
)

// AuthMiddleware resolves the acting user from the session. Denials follow
// the site convention: a flash message plus a redirect, never a bare error
// page.
type AuthMiddleware struct {
	Auth     *service.AuthService
	Sessions *service.SessionManager
}

// RequireAuth admits authenticated sessions and attaches the actor to the
// request context. Everyone else is sent to the login page.
func (m AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		session, ok := SessionFromContext(c)
		if !ok {
			return c.Redirect(http.StatusSeeOther, "/login")
		}
		ctx := c.Request().Context()

		actor, err := m.Auth.CurrentUser(ctx, session)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "user lookup failed")
		}
		if actor == nil {
			_ = m.Sessions.AddFlash(ctx, session, "error", "Please log in to access this page.")
			return c.Redirect(http.StatusSeeOther, "/login")
		}
		SetActor(c, actor)
		return next(c)
	}
}
