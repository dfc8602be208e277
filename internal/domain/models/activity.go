package models

import "time"

// Comment is visible to everyone involved in a ticket.
type Comment struct {
	ID        int64      `db:"id" json:"id"`
	TicketID  int64      `db:"ticket_id" json:"ticket_id"`
	AuthorID  int64      `db:"author_id" json:"author_id"`
	Content   string     `db:"content" json:"content"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt *time.Time `db:"deleted_at" json:"-"`

	Ticket *TicketSummary `db:"-" json:"ticket,omitempty"`
	Author *UserSummary   `db:"-" json:"author,omitempty"`
}

// Note is an internal remark left by staff on a ticket.
type Note struct {
	ID        int64      `db:"id" json:"id"`
	TicketID  int64      `db:"ticket_id" json:"ticket_id"`
	AgentID   int64      `db:"agent_id" json:"agent_id"`
	Content   string     `db:"content" json:"content"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt *time.Time `db:"deleted_at" json:"-"`

	Ticket *TicketSummary `db:"-" json:"ticket,omitempty"`
	Agent  *UserSummary   `db:"-" json:"agent,omitempty"`
}

// History is one audit line of a ticket.
type History struct {
	ID          int64      `db:"id" json:"id"`
	TicketID    int64      `db:"ticket_id" json:"ticket_id"`
	UserID      *int64     `db:"user_id" json:"user_id"`
	Description string     `db:"description" json:"description"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt   *time.Time `db:"deleted_at" json:"-"`
}

type Notification struct {
	ID        int64      `db:"id" json:"id"`
	UserID    int64      `db:"user_id" json:"user_id"`
	Message   string     `db:"message" json:"message"`
	IsRead    bool       `db:"is_read" json:"is_read"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt *time.Time `db:"deleted_at" json:"-"`
}
