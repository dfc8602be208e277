package models

import "time"

// Feedback is a client's rating of how a ticket was handled.
type Feedback struct {
	ID        int64      `db:"id" json:"id"`
	TicketID  int64      `db:"ticket_id" json:"ticket_id"`
	ClientID  int64      `db:"client_id" json:"client_id"`
	Rating    *int       `db:"rating" json:"rating"`
	Content   string     `db:"content" json:"content"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt *time.Time `db:"deleted_at" json:"-"`

	Ticket *TicketSummary `db:"-" json:"ticket,omitempty"`
	Client *UserSummary   `db:"-" json:"client,omitempty"`
}

// AgentRating aggregates the ratings left on an agent's tickets.
type AgentRating struct {
	AgentID       int64   `db:"agent_id" json:"agentId"`
	TotalFeedback int     `db:"total_feedbacks" json:"total_feedbacks"`
	AverageRating float64 `db:"average_rating" json:"average_rating"`
}
