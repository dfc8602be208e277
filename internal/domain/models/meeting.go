package models

import (
	"time"

	"helpdesk/internal/domain"
)

type Meeting struct {
	ID          int64                `db:"id" json:"id"`
	TicketID    int64                `db:"ticket_id" json:"ticket_id"`
	ClientID    int64                `db:"client_id" json:"client_id"`
	AgentID     int64                `db:"agent_id" json:"agent_id"`
	ScheduledAt *time.Time           `db:"scheduled_at" json:"scheduled_at"`
	Status      domain.MeetingStatus `db:"status" json:"status"`
	MeetingLink *string              `db:"meeting_link" json:"meeting_link"`
	CreatedAt   time.Time            `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time            `db:"updated_at" json:"updated_at"`
	DeletedAt   *time.Time           `db:"deleted_at" json:"-"`

	Ticket *TicketSummary `db:"-" json:"ticket,omitempty"`
	Client *UserSummary   `db:"-" json:"client,omitempty"`
	Agent  *UserSummary   `db:"-" json:"agent,omitempty"`
}
