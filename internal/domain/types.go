package domain

import "strings"

// ID is used across domain entities.
type ID = int64

// Role is the access level of a user.
type Role string

const (
	RoleClient Role = "CLIENT"
	RoleAgent  Role = "AGENT"
	RoleAdmin  Role = "ADMIN"
)

// ParseRole normalizes a role name. Unknown names return false.
func ParseRole(s string) (Role, bool) {
	switch r := Role(strings.ToUpper(strings.TrimSpace(s))); r {
	case RoleClient, RoleAgent, RoleAdmin:
		return r, true
	}
	return "", false
}

// Principal carries the authenticated caller for one request.
type Principal struct {
	ID   ID   `json:"id"`
	Role Role `json:"role"`
}

// IsZero reports whether no caller has been attached.
func (p Principal) IsZero() bool { return p.ID == 0 && p.Role == "" }

type UserStatus string

const (
	UserActive    UserStatus = "ACTIVE"
	UserInactive  UserStatus = "INACTIVE"
	UserSuspended UserStatus = "SUSPENDED"
	UserPending   UserStatus = "PENDING"
	UserDeleted   UserStatus = "DELETED"
)

type TicketStatus string

const (
	TicketPending    TicketStatus = "PENDING"
	TicketInProgress TicketStatus = "IN_PROGRESS"
	TicketResolved   TicketStatus = "RESOLVED"
	TicketClosed     TicketStatus = "CLOSED"
)

// ticketTransitions lists the forward moves of the ticket lifecycle.
var ticketTransitions = map[TicketStatus]TicketStatus{
	TicketPending:    TicketInProgress,
	TicketInProgress: TicketResolved,
	TicketResolved:   TicketClosed,
}

// CanTransition reports whether a ticket may move from one status to another.
// Staying in the same status is always allowed; CLOSED is terminal.
func CanTransition(from, to TicketStatus) bool {
	if from == to {
		return true
	}
	next, ok := ticketTransitions[from]
	return ok && next == to
}

func ParseTicketStatus(s string) (TicketStatus, bool) {
	switch st := TicketStatus(strings.ToUpper(strings.TrimSpace(s))); st {
	case TicketPending, TicketInProgress, TicketResolved, TicketClosed:
		return st, true
	}
	return "", false
}

type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

func ParsePriority(s string) (Priority, bool) {
	switch p := Priority(strings.ToUpper(strings.TrimSpace(s))); p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return p, true
	}
	return "", false
}

type Category string

const (
	CategoryBug            Category = "BUG"
	CategoryFeatureRequest Category = "FEATURE_REQUEST"
	CategorySupport        Category = "SUPPORT"
	CategoryBilling        Category = "BILLING"
)

func ParseCategory(s string) (Category, bool) {
	switch c := Category(strings.ToUpper(strings.TrimSpace(s))); c {
	case CategoryBug, CategoryFeatureRequest, CategorySupport, CategoryBilling:
		return c, true
	}
	return "", false
}

type MeetingStatus string

const (
	MeetingPending  MeetingStatus = "PENDING"
	MeetingAccepted MeetingStatus = "ACCEPTED"
	MeetingRejected MeetingStatus = "REJECTED"
)

func ParseMeetingStatus(s string) (MeetingStatus, bool) {
	switch m := MeetingStatus(strings.ToUpper(strings.TrimSpace(s))); m {
	case MeetingPending, MeetingAccepted, MeetingRejected:
		return m, true
	}
	return "", false
}

// Page is the list envelope returned by filtered endpoints.
type Page[T any] struct {
	Data       []T `json:"data"`
	TotalCount int `json:"total_count"`
	Offset     int `json:"offset"`
	Limit      int `json:"limit"`
}
