// Package seed populates a demo dataset for local and staging environments.
package seed

import (
	"context"
	"fmt"
	"time"

	"helpdesk/internal/entity"
	"helpdesk/internal/service"

	"gorm.io/gorm"
)

var forenames = []string{"Alice", "Bob", "Charlie", "David", "Eva", "Frank", "Grace", "Hannah", "Ian", "Judy"}

var surnames = []string{"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller", "Davis", "Rodriguez", "Martinez"}

var agencies = []string{"Eclipse Software", "Harrier Recruitment", "Pinnacle Staffing"}

var subjects = []string{
	"The candidate schedule tab is very slow to load",
	"There are overlapping fields on the Back Office Export Template form!",
	"Why is the System Mailbox form named that way?",
	"Where are the email attachments gone after merging?",
	"I have added the same shortlist record multiple times and I thought duplicates were not allowed?",
	"Adjusted timesheets are erroring when I update them to Rejected status. This is business critical!",
	"When adding bookings to a placement, Requirements Added logs are being created incorrectly.",
	"I am getting an error when trying to delete bookings from a placement record.",
	"Client Contact Record Opened logs do not link to the client record.",
	"IMMEDIATE ISSUE: I have had users report that they cannot login this morning!",
}

var descriptions = []string{
	"The schedule tab takes forever to load when a candidate has a lot of placements. It can take 20-30 seconds each time, which really slows down my workflow.",
	"Some fields overlap on the export template form, making it hard to see everything properly when creating a new template.",
	"Why have you named the form that contains Mailbox Scanner Rulesets 'System Mailbox'? Please can you rename this form to avoid confusion?",
	"After merging an email, all attachments disappeared. I can't find any of the files and I'm worried that they might be lost.",
	"I added the same shortlist record more than once and the system didn't stop me or give a warning. Is this a bug? The record I did this with is CAN-3451.",
	"When I try to mark adjusted timesheets as Rejected, I get an error. This is causing major problems for payroll and is urgent.",
	"Every time I add bookings to placement records, it creates 'Requirements Added' logs incorrectly. Auditors get confused because the logs don't match what actually happened.",
	"I tried deleting a booking from a placement record (PLC-34087), but an error pops up every time. I can't remove the booking, which is holding up my work.",
	"The logs that show when a client contact record is opened don't link to the client properly. This makes it really hard to track client activity or follow up.",
	"Several users reported that they cannot login at all this morning. Everyone is locked out and it's affecting the whole team's ability to work.",
}

var ticketTypes = []entity.TicketType{
	entity.TypeSupportRequest,
	entity.TypeFeatureRequest,
	entity.TypeBugReport,
}

var statuses = []entity.TicketStatus{
	entity.StatusOpen,
	entity.StatusInProgress,
	entity.StatusOnHoldPending,
	entity.StatusResolved,
	entity.StatusClosed,
}

var priorities = []entity.TicketPriority{
	entity.PriorityLow,
	entity.PriorityNormal,
	entity.PriorityHigh,
}

// Populate inserts the demo users and tickets. No-op when any user already
// exists.
func Populate(ctx context.Context, db *gorm.DB, hasher service.PasswordHasher) error {
	var count int64
	if err := db.WithContext(ctx).Model(&entity.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := make([]*entity.User, 0, len(forenames))
		for i := range forenames {
			hash, err := hasher.Hash(fmt.Sprintf("Password%d!", i+1))
			if err != nil {
				return err
			}
			role := entity.RoleStandard
			if i < 2 {
				role = entity.RoleAdmin
			}
			user := &entity.User{
				Forename:     forenames[i],
				Surname:      surnames[i],
				Email:        fmt.Sprintf("user%d@eclipse-software.co.uk", i+1),
				Agency:       agencies[i%len(agencies)],
				PasswordHash: hash,
				Role:         role,
			}
			if err := tx.Create(user).Error; err != nil {
				return err
			}
			users = append(users, user)
		}

		admins := users[:2]
		reporters := users[2:]

		now := time.Now()
		for i := range subjects {
			reporter := reporters[i%len(reporters)]
			assignee := admins[i%len(admins)]
			ticket := &entity.Ticket{
				TicketType:    ticketTypes[i%len(ticketTypes)],
				Subject:       subjects[i],
				Description:   descriptions[i],
				Status:        statuses[i%len(statuses)],
				Priority:      priorities[i%len(priorities)],
				EstimatedTime: 1.0 + float64(i%8)*0.5,
				CreatedBy:     reporter.FullName(),
				UserID:        &reporter.ID,
				AssigneeID:    &assignee.ID,
				DateCreated:   now.AddDate(0, 0, -i),
			}
			if err := tx.Create(ticket).Error; err != nil {
				return err
			}

			if i%3 == 0 {
				comment := &entity.Comment{
					CommentText:    "Thanks for reporting this, we are looking into it.",
					AuthorFullname: assignee.FullName(),
					TicketID:       &ticket.ID,
					UserID:         &assignee.ID,
					DateCreated:    ticket.DateCreated.Add(2 * time.Hour),
				}
				if err := tx.Create(comment).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
}
