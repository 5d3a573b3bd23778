package middleware

import (
	"helpdesk/internal/entity"

	"github.com/labstack/echo/v4"
)

const (
	contextSessionKey = "helpdesk_session"
	contextActorKey   = "helpdesk_actor"
)

func SetSession(c echo.Context, session *entity.Session) {
	c.Set(contextSessionKey, session)
}

func SessionFromContext(c echo.Context) (*entity.Session, bool) {
	session, ok := c.Get(contextSessionKey).(*entity.Session)
	return session, ok && session != nil
}

func SetActor(c echo.Context, actor *entity.User) {
	c.Set(contextActorKey, actor)
}

func ActorFromContext(c echo.Context) (*entity.User, bool) {
	actor, ok := c.Get(contextActorKey).(*entity.User)
	return actor, ok && actor != nil
}
