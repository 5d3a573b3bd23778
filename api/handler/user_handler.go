package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"helpdesk/internal/dto"
	"helpdesk/internal/entity"
	"helpdesk/internal/service"

	"github.com/labstack/echo/v4"
)

type UserHandler struct {
	Users    *service.UserService
	Sessions *service.SessionManager
}

func NewUserHandler(users *service.UserService, sessions *service.SessionManager) *UserHandler {
	return &UserHandler{
		Users:    users,
		Sessions: sessions,
	}
}

type userListResponse struct {
	StandardUsers  []service.UserSummary `json:"standard_users"`
	Administrators []service.UserSummary `json:"administrators"`
	Flashes        []dto.FlashView       `json:"flashes,omitempty"`
}

func (h *UserHandler) List(c echo.Context) error {
	session, err := sessionOrError(c)
	if err != nil {
		return err
	}
	actor, err := actorOrError(c)
	if err != nil {
		return err
	}

	view, err := h.Users.ListUsers(c.Request().Context(), actor)
	if err != nil {
		if errors.Is(err, service.ErrForbidden) {
			return flashRedirect(c, h.Sessions, session, entity.FlashError, "You do not have permission to view this page.", "/")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "user listing failed")
	}

	return c.JSON(http.StatusOK, userListResponse{
		StandardUsers:  view.StandardUsers,
		Administrators: view.Administrators,
		Flashes:        popFlashes(c, h.Sessions, session),
	})
}

// UpdateAdmin applies the role checkboxes from the users page: the form
// posts every listed user id plus an "is_admin_<id>" value for the checked
// rows.
func (h *UserHandler) UpdateAdmin(c echo.Context) error {
	session, err := sessionOrError(c)
	if err != nil {
		return err
	}
	actor, err := actorOrError(c)
	if err != nil {
		return err
	}

	form, err := c.FormParams()
	if err != nil {
		return flashRedirect(c, h.Sessions, session, entity.FlashError, "Invalid input.", "/users")
	}

	var changes []service.RoleChange
	for _, raw := range form["user_ids"] {
		id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 32)
		if err != nil {
			continue
		}
		changes = append(changes, service.RoleChange{
			UserID: uint(id),
			Admin:  form.Get(fmt.Sprintf("is_admin_%d", id)) != "",
		})
	}

	result, err := h.Users.UpdateRoles(c.Request().Context(), actor, changes)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrForbidden):
			return flashRedirect(c, h.Sessions, session, entity.FlashError, "You do not have permission to update user roles.", "/")
		case errors.Is(err, service.ErrSelfRoleChange):
			return flashRedirect(c, h.Sessions, session, entity.FlashError, "You cannot change your own role.", "/users")
		case errors.Is(err, service.ErrUserNotFound):
			return flashRedirect(c, h.Sessions, session, entity.FlashError, "User not found.", "/users")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "role update failed")
	}

	return flashRedirect(c, h.Sessions, session, entity.FlashSuccess, roleUpdateMessage(result), "/users")
}

func roleUpdateMessage(result *service.RoleUpdateResult) string {
	var parts []string
	if result.Promoted > 0 {
		parts = append(parts, fmt.Sprintf("%d user(s) promoted to administrators", result.Promoted))
	}
	if result.Demoted > 0 {
		parts = append(parts, fmt.Sprintf("%d user(s) demoted to standard users", result.Demoted))
	}
	if len(parts) == 0 {
		return "No role changes were made."
	}
	return strings.Join(parts, " and ") + "."
}

func (h *UserHandler) Delete(c echo.Context) error {
	session, err := sessionOrError(c)
	if err != nil {
		return err
	}
	actor, err := actorOrError(c)
	if err != nil {
		return err
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return flashRedirect(c, h.Sessions, session, entity.FlashError, "User not found.", "/users")
	}

	fullName, err := h.Users.DeleteUser(c.Request().Context(), actor, uint(id))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrForbidden):
			return flashRedirect(c, h.Sessions, session, entity.FlashError, "You do not have permission to delete users.", "/")
		case errors.Is(err, service.ErrUserNotFound):
			return flashRedirect(c, h.Sessions, session, entity.FlashError, "User not found.", "/users")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "user deletion failed")
	}

	return flashRedirect(c, h.Sessions, session, entity.FlashSuccess, fmt.Sprintf("%s has been deleted.", fullName), "/users")
}
