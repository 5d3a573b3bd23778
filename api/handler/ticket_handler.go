package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"helpdesk/internal/dto"
	"helpdesk/internal/entity"
	"helpdesk/internal/service"
	"helpdesk/internal/validation"

	"github.com/labstack/echo/v4"
)

type TicketHandler struct {
	Tickets  *service.TicketService
	Sessions *service.SessionManager
	Validate *validation.Validator
}

func NewTicketHandler(tickets *service.TicketService, sessions *service.SessionManager, validate *validation.Validator) *TicketHandler {
	return &TicketHandler{
		Tickets:  tickets,
		Sessions: sessions,
		Validate: validate,
	}
}

// Dashboard renders the filtered, paginated ticket listing with per-status
// counts over the actor's full visible scope.
func (h *TicketHandler) Dashboard(c echo.Context) error {
	session, err := sessionOrError(c)
	if err != nil {
		return err
	}
	actor, err := actorOrError(c)
	if err != nil {
		return err
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	query := service.DashboardQuery{
		TicketType:  c.QueryParam("ticket_type"),
		Status:      c.QueryParam("status"),
		Priority:    c.QueryParam("priority"),
		Assignee:    c.QueryParam("assignee"),
		DateCreated: c.QueryParam("date_created"),
		Page:        page,
	}

	view, err := h.Tickets.Dashboard(c.Request().Context(), actor, query)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "dashboard failed")
	}

	counts := make(map[string]int64, len(view.StatusCounts))
	for status, total := range view.StatusCounts {
		counts[string(status)] = total
	}
	return c.JSON(http.StatusOK, dto.DashboardResponse{
		Tickets:        dto.TicketResponsesFromEntities(view.Tickets),
		StatusCounts:   counts,
		Assignees:      dto.AssigneeOptions(view.Assignees),
		FiltersApplied: view.FiltersApplied,
		Page:           view.Page,
		PerPage:        view.PerPage,
		Total:          view.Total,
		TotalPages:     view.TotalPages,
		Flashes:        popFlashes(c, h.Sessions, session),
	})
}

func (h *TicketHandler) ShowCreate(c echo.Context) error {
	session, err := sessionOrError(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.PageResponse{
		Page:    "create_ticket",
		Flashes: popFlashes(c, h.Sessions, session),
	})
}

func (h *TicketHandler) Create(c echo.Context) error {
	session, err := sessionOrError(c)
	if err != nil {
		return err
	}
	actor, err := actorOrError(c)
	if err != nil {
		return err
	}

	var form dto.TicketForm
	if err := c.Bind(&form); err != nil {
		return flashRedirect(c, h.Sessions, session, entity.FlashError, "You must select a ticket type.", "/create_ticket")
	}
	if message := h.Validate.Check(form); message != "" {
		return flashRedirect(c, h.Sessions, session, entity.FlashError, message, "/create_ticket")
	}
	estimated, message := validation.ParseEstimatedTime(form.EstimatedTime)
	if message != "" {
		return flashRedirect(c, h.Sessions, session, entity.FlashError, message, "/create_ticket")
	}

	input := service.CreateTicketInput{
		TicketType:    form.TicketType,
		Subject:       form.Subject,
		Description:   form.Description,
		Status:        form.Status,
		Priority:      form.Priority,
		EstimatedTime: estimated,
	}
	if _, err := h.Tickets.Create(c.Request().Context(), actor, input); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "ticket creation failed")
	}
	return flashRedirect(c, h.Sessions, session, entity.FlashSuccess, "Ticket created successfully!", "/")
}

func (h *TicketHandler) Details(c echo.Context) error {
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
		return flashRedirect(c, h.Sessions, session, entity.FlashError, "Ticket not found.", "/")
	}

	details, err := h.Tickets.Details(c.Request().Context(), actor, uint(id))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTicketNotFound):
			return flashRedirect(c, h.Sessions, session, entity.FlashError, "Ticket not found.", "/")
		case errors.Is(err, service.ErrForbidden):
			return flashRedirect(c, h.Sessions, session, entity.FlashError, "You do not have permission to view this ticket.", "/")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "ticket lookup failed")
	}

	return c.JSON(http.StatusOK, dto.TicketDetailsResponse{
		Ticket:          dto.TicketResponseFromEntity(&details.Ticket),
		Comments:        dto.CommentResponsesFromEntities(details.Comments),
		AssigneeOptions: dto.AssigneeOptions(details.AssigneeOptions),
		Flashes:         popFlashes(c, h.Sessions, session),
	})
}

// Update handles both POST forms the details page submits: a ticket edit
// (carries "subject") or a new comment (carries "comment_text").
func (h *TicketHandler) Update(c echo.Context) error {
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
		return flashRedirect(c, h.Sessions, session, entity.FlashError, "Ticket not found.", "/")
	}
	ticketID := uint(id)
	detailsPath := fmt.Sprintf("/ticket_details/%d", ticketID)

	form, err := c.FormParams()
	if err != nil {
		return flashRedirect(c, h.Sessions, session, entity.FlashError, "Invalid input.", detailsPath)
	}

	if form.Has("comment_text") {
		return h.addComment(c, session, actor, ticketID, detailsPath)
	}
	if form.Has("subject") {
		return h.editTicket(c, session, actor, ticketID, detailsPath)
	}
	return flashRedirect(c, h.Sessions, session, entity.FlashError, "Invalid input.", detailsPath)
}

func (h *TicketHandler) editTicket(c echo.Context, session *entity.Session, actor *entity.User, ticketID uint, detailsPath string) error {
	var form dto.TicketForm
	if err := c.Bind(&form); err != nil {
		return flashRedirect(c, h.Sessions, session, entity.FlashError, "Invalid input.", detailsPath)
	}
	if message := h.Validate.Check(form); message != "" {
		return flashRedirect(c, h.Sessions, session, entity.FlashError, message, detailsPath)
	}
	estimated, message := validation.ParseEstimatedTime(form.EstimatedTime)
	if message != "" {
		return flashRedirect(c, h.Sessions, session, entity.FlashError, message, detailsPath)
	}

	var assigneeID *uint
	if form.AssigneeID != "" {
		if parsed, err := strconv.ParseUint(form.AssigneeID, 10, 32); err == nil {
			value := uint(parsed)
			assigneeID = &value
		}
	}

	input := service.EditTicketInput{
		TicketType:    form.TicketType,
		Subject:       form.Subject,
		Description:   form.Description,
		Status:        form.Status,
		Priority:      form.Priority,
		EstimatedTime: estimated,
		AssigneeID:    assigneeID,
	}
	if err := h.Tickets.Edit(c.Request().Context(), actor, ticketID, input); err != nil {
		switch {
		case errors.Is(err, service.ErrTicketNotFound):
			return flashRedirect(c, h.Sessions, session, entity.FlashError, "Ticket not found.", "/")
		case errors.Is(err, service.ErrForbidden):
			return flashRedirect(c, h.Sessions, session, entity.FlashError, "You do not have permission to view this ticket.", "/")
		case errors.Is(err, service.ErrAssigneeNotAdmin):
			return flashRedirect(c, h.Sessions, session, entity.FlashError, "The assignee must be an administrator.", detailsPath)
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "ticket update failed")
	}
	return flashRedirect(c, h.Sessions, session, entity.FlashSuccess, "Ticket updated successfully.", detailsPath)
}

func (h *TicketHandler) addComment(c echo.Context, session *entity.Session, actor *entity.User, ticketID uint, detailsPath string) error {
	var form dto.CommentForm
	if err := c.Bind(&form); err != nil {
		return flashRedirect(c, h.Sessions, session, entity.FlashError, "Comment cannot be empty.", detailsPath)
	}
	if message := h.Validate.Check(form); message != "" {
		return flashRedirect(c, h.Sessions, session, entity.FlashError, message, detailsPath)
	}

	if err := h.Tickets.AddComment(c.Request().Context(), actor, ticketID, form.CommentText); err != nil {
		switch {
		case errors.Is(err, service.ErrCommentEmpty):
			return flashRedirect(c, h.Sessions, session, entity.FlashError, "Comment cannot be empty.", detailsPath)
		case errors.Is(err, service.ErrTicketNotFound):
			return flashRedirect(c, h.Sessions, session, entity.FlashError, "Ticket not found.", "/")
		case errors.Is(err, service.ErrForbidden):
			return flashRedirect(c, h.Sessions, session, entity.FlashError, "You do not have permission to view this ticket.", "/")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "comment failed")
	}
	return flashRedirect(c, h.Sessions, session, entity.FlashSuccess, "Comment added successfully.", detailsPath)
}

func (h *TicketHandler) Delete(c echo.Context) error {
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
		return flashRedirect(c, h.Sessions, session, entity.FlashError, "Ticket not found.", "/")
	}

	if err := h.Tickets.Delete(c.Request().Context(), actor, uint(id)); err != nil {
		switch {
		case errors.Is(err, service.ErrTicketNotFound):
			return flashRedirect(c, h.Sessions, session, entity.FlashError, "Ticket not found.", "/")
		case errors.Is(err, service.ErrForbidden):
			return flashRedirect(c, h.Sessions, session, entity.FlashError, "You do not have permission to delete this ticket.", fmt.Sprintf("/ticket_details/%d", id))
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "ticket deletion failed")
	}
	return flashRedirect(c, h.Sessions, session, entity.FlashSuccess, "Ticket deleted successfully.", "/")
}
