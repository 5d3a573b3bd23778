package middleware

import (
	"net/http"
	"time"

	"helpdesk/internal/service"

	"github.com/labstack/echo/v4"
)

const DefaultSessionCookie = "helpdesk_session"

// SessionMiddleware guarantees every request runs with a live session row:
// pending 2FA state and flash messages need one before the user has logged
// in, so anonymous requests get a session too.
type SessionMiddleware struct {
	Sessions     *service.SessionManager
	CookieName   string
	CookieDomain string
	Secure       bool
}

func (m SessionMiddleware) Ensure(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		session, err := m.Sessions.Resolve(c.Request().Context(), m.readCookie(c))
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "session store unavailable")
		}
		if session == nil {
			ip := c.RealIP()
			userAgent := c.Request().UserAgent()
			fresh, token, err := m.Sessions.Start(c.Request().Context(), &ip, &userAgent)
			if err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, "session store unavailable")
			}
			session = fresh
			m.SetCookie(c, token, session.ExpiresAt)
		}
		SetSession(c, session)
		return next(c)
	}
}

func (m SessionMiddleware) readCookie(c echo.Context) string {
	cookie, err := c.Cookie(m.cookieName())
	if err != nil {
		return ""
	}
	return cookie.Value
}

// SetCookie (re)issues the session cookie; handlers call it after session
// regeneration on login and logout.
func (m SessionMiddleware) SetCookie(c echo.Context, token string, expires time.Time) {
	c.SetCookie(&http.Cookie{
		Name:     m.cookieName(),
		Value:    token,
		Path:     "/",
		Domain:   m.CookieDomain,
		Expires:  expires,
		HttpOnly: true,
		Secure:   m.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (m SessionMiddleware) cookieName() string {
	if m.CookieName == "" {
		return DefaultSessionCookie
	}
	return m.CookieName
}
