package handler

import (
	"net/http"

	"helpdesk/api/middleware"
	"helpdesk/internal/dto"
	"helpdesk/internal/entity"
	"helpdesk/internal/service"

	"github.com/labstack/echo/v4"
)

// flashRedirect queues a one-time message on the session and answers with a
// 303 so the browser re-requests the target with GET.
func flashRedirect(c echo.Context, sessions *service.SessionManager, session *entity.Session, level, message, target string) error {
	_ = sessions.AddFlash(c.Request().Context(), session, level, message)
	return c.Redirect(http.StatusSeeOther, target)
}

// popFlashes drains the pending flash queue for a page render.
func popFlashes(c echo.Context, sessions *service.SessionManager, session *entity.Session) []dto.FlashView {
	flashes, err := sessions.PopFlashes(c.Request().Context(), session)
	if err != nil {
		return nil
	}
	return dto.FlashViews(flashes)
}

func sessionOrError(c echo.Context) (*entity.Session, error) {
	session, ok := middleware.SessionFromContext(c)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "no session")
	}
	return session, nil
}

func actorOrError(c echo.Context) (*entity.User, error) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "no actor")
	}
	return actor, nil
}
