package dto

import (
	"time"

	"helpdesk/internal/entity"
)

type FlashView struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

func FlashViews(flashes []entity.Flash) []FlashView {
	views := make([]FlashView, 0, len(flashes))
	for _, flash := range flashes {
		views = append(views, FlashView{Level: flash.Level, Message: flash.Message})
	}
	return views
}

type TicketResponse struct {
	ID            uint       `json:"id"`
	TicketType    string     `json:"ticket_type"`
	Subject       string     `json:"subject"`
	Description   string     `json:"description"`
	Status        string     `json:"status"`
	Priority      string     `json:"priority"`
	EstimatedTime float64    `json:"estimated_time"`
	CreatedBy     string     `json:"created_by"`
	UpdatedBy     *string    `json:"updated_by,omitempty"`
	UserID        *uint      `json:"user_id,omitempty"`
	AssigneeID    *uint      `json:"assignee_id,omitempty"`
	DateCreated   time.Time  `json:"date_created"`
	DateUpdated   *time.Time `json:"date_updated,omitempty"`
}

func TicketResponseFromEntity(ticket *entity.Ticket) TicketResponse {
	return TicketResponse{
		ID:            ticket.ID,
		TicketType:    string(ticket.TicketType),
		Subject:       ticket.Subject,
		Description:   ticket.Description,
		Status:        string(ticket.Status),
		Priority:      string(ticket.Priority),
		EstimatedTime: ticket.EstimatedTime,
		CreatedBy:     ticket.CreatedBy,
		UpdatedBy:     ticket.UpdatedBy,
		UserID:        ticket.UserID,
		AssigneeID:    ticket.AssigneeID,
		DateCreated:   ticket.DateCreated,
		DateUpdated:   ticket.DateUpdated,
	}
}

func TicketResponsesFromEntities(tickets []entity.Ticket) []TicketResponse {
	responses := make([]TicketResponse, 0, len(tickets))
	for i := range tickets {
		responses = append(responses, TicketResponseFromEntity(&tickets[i]))
	}
	return responses
}

type CommentResponse struct {
	ID             uint      `json:"id"`
	CommentText    string    `json:"comment_text"`
	AuthorFullname string    `json:"author_fullname"`
	DateCreated    time.Time `json:"date_created"`
}

func CommentResponsesFromEntities(comments []entity.Comment) []CommentResponse {
	responses := make([]CommentResponse, 0, len(comments))
	for _, comment := range comments {
		responses = append(responses, CommentResponse{
			ID:             comment.ID,
			CommentText:    comment.CommentText,
			AuthorFullname: comment.AuthorFullname,
			DateCreated:    comment.DateCreated,
		})
	}
	return responses
}

type AssigneeOption struct {
	ID       uint   `json:"id"`
	FullName string `json:"full_name"`
}

func AssigneeOptions(users []entity.User) []AssigneeOption {
	options := make([]AssigneeOption, 0, len(users))
	for i := range users {
		options = append(options, AssigneeOption{
			ID:       users[i].ID,
			FullName: users[i].FullName(),
		})
	}
	return options
}

type DashboardResponse struct {
	Tickets        []TicketResponse `json:"tickets"`
	StatusCounts   map[string]int64 `json:"status_counts"`
	Assignees      []AssigneeOption `json:"assignees"`
	FiltersApplied bool             `json:"filters_applied"`
	Page           int              `json:"page"`
	PerPage        int              `json:"per_page"`
	Total          int64            `json:"total"`
	TotalPages     int              `json:"total_pages"`
	Flashes        []FlashView      `json:"flashes,omitempty"`
}

type TicketDetailsResponse struct {
	Ticket          TicketResponse    `json:"ticket"`
	Comments        []CommentResponse `json:"comments"`
	AssigneeOptions []AssigneeOption  `json:"assignee_options,omitempty"`
	Flashes         []FlashView       `json:"flashes,omitempty"`
}

type EnrollmentResponse struct {
	AccountName     string      `json:"account_name"`
	Secret          string      `json:"secret"`
	ProvisioningURI string      `json:"provisioning_uri"`
	Flashes         []FlashView `json:"flashes,omitempty"`
}

type PageResponse struct {
	Page    string      `json:"page"`
	Flashes []FlashView `json:"flashes,omitempty"`
}
