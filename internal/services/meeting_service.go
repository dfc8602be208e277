package services

import (
	"context"
	"fmt"
	"time"

	intdb "helpdesk/internal/db"
	"helpdesk/internal/domain"
	"helpdesk/internal/domain/models"
	"helpdesk/internal/query"
	"helpdesk/internal/utils"
)

type MeetingService struct {
	Deps
	RequestID string
}

// MeetingInput is shared by create, request and update; nil fields are unset.
type MeetingInput struct {
	ScheduledAt *time.Time
	MeetingLink *string
	Status      *string
}

func (s MeetingService) List(ctx context.Context, desc query.Descriptor) (domain.Page[models.Meeting], error) {
	page, err := listPage(ctx, s.meetings().Repository, desc)
	if err != nil {
		return page, err
	}
	return page, s.hydrateMeetings(ctx, page.Data)
}

func (s MeetingService) ByTicket(ctx context.Context, ticketID domain.ID, desc query.Descriptor) (domain.Page[models.Meeting], error) {
	return s.List(ctx, desc.Scope(query.Equal("ticket_id", ticketID)))
}

func (s MeetingService) find(ctx context.Context, id domain.ID) (models.Meeting, error) {
	m, err := s.meetings().FindByKey(ctx, id)
	if err != nil {
		return models.Meeting{}, err
	}
	if m == nil {
		return models.Meeting{}, domain.NotFoundError{Resource: "meeting", Module: domain.ModuleMeeting}
	}
	return *m, nil
}

// Get returns a meeting to one of its participants or to an admin.
func (s MeetingService) Get(ctx context.Context, p domain.Principal, id domain.ID) (models.Meeting, error) {
	m, err := s.find(ctx, id)
	if err != nil {
		return models.Meeting{}, err
	}
	if !canSeeMeeting(p, m) {
		return models.Meeting{}, domain.ForbiddenError{Msg: "not a participant of this meeting", Module: domain.ModuleMeeting}
	}
	rows := []models.Meeting{m}
	if err := s.hydrateMeetings(ctx, rows); err != nil {
		return models.Meeting{}, err
	}
	return rows[0], nil
}

func canSeeMeeting(p domain.Principal, m models.Meeting) bool {
	return p.Role == domain.RoleAdmin || p.ID == m.ClientID || p.ID == m.AgentID
}

func meetingAttrs(in MeetingInput) (map[string]any, error) {
	attrs := map[string]any{}
	if in.ScheduledAt != nil {
		attrs["scheduled_at"] = in.ScheduledAt.UTC()
	}
	if in.MeetingLink != nil {
		attrs["meeting_link"] = intdb.NullIfBlank(*in.MeetingLink)
	}
	if in.Status != nil {
		st, ok := domain.ParseMeetingStatus(*in.Status)
		if !ok {
			return nil, domain.ValidationError{Field: "status", Msg: "must be PENDING, ACCEPTED or REJECTED"}
		}
		attrs["status"] = string(st)
	}
	return attrs, nil
}

func (s MeetingService) openTicket(ctx context.Context, p domain.Principal, ticketID domain.ID) (models.Ticket, error) {
	t, err := s.visibleTicket(ctx, p, ticketID, domain.ModuleMeeting)
	if err != nil {
		return models.Ticket{}, err
	}
	if t.Status == domain.TicketClosed {
		return models.Ticket{}, domain.ForbiddenError{Msg: "cannot create meeting for closed ticket", Module: domain.ModuleMeeting}
	}
	return t, nil
}

// Create schedules an accepted meeting between staff and the ticket owner.
func (s MeetingService) Create(ctx context.Context, p domain.Principal, ticketID domain.ID, in MeetingInput) (models.Meeting, error) {
	t, err := s.openTicket(ctx, p, ticketID)
	if err != nil {
		return models.Meeting{}, err
	}
	attrs, err := meetingAttrs(MeetingInput{ScheduledAt: in.ScheduledAt, MeetingLink: in.MeetingLink})
	if err != nil {
		return models.Meeting{}, err
	}
	attrs["ticket_id"] = ticketID
	attrs["client_id"] = t.UserID
	attrs["agent_id"] = p.ID
	attrs["status"] = string(domain.MeetingAccepted)

	id, err := s.meetings().Create(ctx, attrs)
	if err != nil {
		return models.Meeting{}, err
	}
	logHistory(ctx, s.histories(), s.RequestID, ticketID, p.ID, fmt.Sprintf("Meeting scheduled by user %d", p.ID))
	utils.LogEvent(s.RequestID, "meeting", "create", fmt.Sprintf("meeting_id=%d ticket_id=%d", id, ticketID))
	Notifier{Deps: s.Deps, RequestID: s.RequestID}.Notify(ctx, t.UserID, "Meeting scheduled",
		fmt.Sprintf("A meeting was scheduled for your ticket %q at %s.", t.Title, utils.FormatDateTimePtr(in.ScheduledAt)))
	return s.Get(ctx, p, id)
}

// Request lets a ticket owner ask its assigned agent for a meeting.
func (s MeetingService) Request(ctx context.Context, p domain.Principal, ticketID domain.ID, in MeetingInput) (models.Meeting, error) {
	t, err := s.openTicket(ctx, p, ticketID)
	if err != nil {
		return models.Meeting{}, err
	}
	if t.UserID != p.ID {
		return models.Meeting{}, domain.ForbiddenError{Msg: "only the ticket owner can request a meeting", Module: domain.ModuleMeeting}
	}
	if !t.IsAssigned() {
		return models.Meeting{}, domain.BusinessError{Code: "NO_AGENT_ASSIGNED", Msg: "ticket has no assigned agent", Module: domain.ModuleMeeting}
	}
	attrs, err := meetingAttrs(MeetingInput{ScheduledAt: in.ScheduledAt, MeetingLink: in.MeetingLink})
	if err != nil {
		return models.Meeting{}, err
	}
	attrs["ticket_id"] = ticketID
	attrs["client_id"] = p.ID
	attrs["agent_id"] = *t.AssignedTo
	attrs["status"] = string(domain.MeetingPending)

	id, err := s.meetings().Create(ctx, attrs)
	if err != nil {
		return models.Meeting{}, err
	}
	logHistory(ctx, s.histories(), s.RequestID, ticketID, p.ID, fmt.Sprintf("Meeting requested by user %d", p.ID))
	utils.LogEvent(s.RequestID, "meeting", "request", fmt.Sprintf("meeting_id=%d ticket_id=%d", id, ticketID))
	Notifier{Deps: s.Deps, RequestID: s.RequestID}.Notify(ctx, *t.AssignedTo, "Meeting requested",
		fmt.Sprintf("The owner of ticket %q asked for a meeting.", t.Title))
	return s.Get(ctx, p, id)
}

func (s MeetingService) Update(ctx context.Context, p domain.Principal, id domain.ID, in MeetingInput) (models.Meeting, error) {
	m, err := s.find(ctx, id)
	if err != nil {
		return models.Meeting{}, err
	}
	if !canSeeMeeting(p, m) {
		return models.Meeting{}, domain.ForbiddenError{Msg: "not a participant of this meeting", Module: domain.ModuleMeeting}
	}
	attrs, err := meetingAttrs(in)
	if err != nil {
		return models.Meeting{}, err
	}
	if err := s.meetings().Update(ctx, id, attrs); err != nil {
		return models.Meeting{}, err
	}
	utils.LogEvent(s.RequestID, "meeting", "update", fmt.Sprintf("meeting_id=%d", id))

	if st, ok := attrs["status"].(string); ok && st != string(m.Status) {
		other := m.ClientID
		if p.ID == m.ClientID {
			other = m.AgentID
		}
		Notifier{Deps: s.Deps, RequestID: s.RequestID}.Notify(ctx, other, "Meeting updated",
			fmt.Sprintf("Meeting %d is now %s.", id, st))
	}
	return s.Get(ctx, p, id)
}

func (s MeetingService) Delete(ctx context.Context, id domain.ID) error {
	if _, err := s.find(ctx, id); err != nil {
		return err
	}
	if err := s.meetings().Destroy(ctx, id); err != nil {
		return err
	}
	utils.LogEvent(s.RequestID, "meeting", "delete", fmt.Sprintf("meeting_id=%d", id))
	return nil
}
