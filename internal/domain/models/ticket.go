package models

import (
	"time"

	"helpdesk/internal/domain"
)

type Ticket struct {
	ID          int64               `db:"id" json:"id"`
	Title       string              `db:"title" json:"title"`
	Description string              `db:"description" json:"description"`
	Priority    domain.Priority     `db:"priority" json:"priority"`
	Status      domain.TicketStatus `db:"status" json:"status"`
	Category    domain.Category     `db:"category" json:"category"`
	UserID      int64               `db:"user_id" json:"user_id"`
	AssignedTo  *int64              `db:"assigned_to" json:"assigned_to"`
	CreatedAt   time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time           `db:"updated_at" json:"updated_at"`
	DeletedAt   *time.Time          `db:"deleted_at" json:"-"`

	User           *UserSummary `db:"-" json:"user,omitempty"`
	AssignedToUser *UserSummary `db:"-" json:"assignedTo,omitempty"`
}

// IsAssigned reports whether an agent already owns the ticket.
func (t Ticket) IsAssigned() bool { return t.AssignedTo != nil && *t.AssignedTo != 0 }

// TicketSummary is embedded in comments, notes, meetings and feedback.
type TicketSummary struct {
	ID     int64               `json:"id"`
	Title  string              `json:"title"`
	Status domain.TicketStatus `json:"status"`
}

func (t Ticket) Summary() *TicketSummary {
	return &TicketSummary{ID: t.ID, Title: t.Title, Status: t.Status}
}

// AgentCount is one row of the solved-tickets ranking.
type AgentCount struct {
	AgentID int64 `db:"agent_id" json:"agent_id"`
	Solved  int   `db:"solved_count" json:"solved_count"`
}
