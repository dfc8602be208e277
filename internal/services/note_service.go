package services

import (
	"context"
	"fmt"
	"strings"

	"helpdesk/internal/domain"
	"helpdesk/internal/domain/models"
	"helpdesk/internal/query"
	"helpdesk/internal/utils"
)

// NoteService manages staff-only remarks on tickets.
type NoteService struct {
	Deps
	RequestID string
}

func (s NoteService) List(ctx context.Context, desc query.Descriptor) (domain.Page[models.Note], error) {
	page, err := listPage(ctx, s.notes().Repository, desc)
	if err != nil {
		return page, err
	}
	return page, s.hydrateNotes(ctx, page.Data)
}

func (s NoteService) ByTicket(ctx context.Context, p domain.Principal, ticketID domain.ID, desc query.Descriptor) (domain.Page[models.Note], error) {
	if _, err := s.visibleTicket(ctx, p, ticketID, domain.ModuleNote); err != nil {
		return domain.Page[models.Note]{}, err
	}
	return s.List(ctx, desc.Scope(query.Equal("ticket_id", ticketID)))
}

func (s NoteService) Get(ctx context.Context, id domain.ID) (models.Note, error) {
	n, err := s.notes().FindByKey(ctx, id)
	if err != nil {
		return models.Note{}, err
	}
	if n == nil {
		return models.Note{}, domain.NotFoundError{Resource: "note", Module: domain.ModuleNote}
	}
	rows := []models.Note{*n}
	if err := s.hydrateNotes(ctx, rows); err != nil {
		return models.Note{}, err
	}
	return rows[0], nil
}

func (s NoteService) Create(ctx context.Context, p domain.Principal, ticketID domain.ID, content string) (models.Note, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return models.Note{}, domain.ValidationError{Field: "content", Msg: "is required"}
	}
	if _, err := s.visibleTicket(ctx, p, ticketID, domain.ModuleNote); err != nil {
		return models.Note{}, err
	}
	id, err := s.notes().Create(ctx, map[string]any{"ticket_id": ticketID, "agent_id": p.ID, "content": content})
	if err != nil {
		return models.Note{}, err
	}
	logHistory(ctx, s.histories(), s.RequestID, ticketID, p.ID, fmt.Sprintf("Note added by user %d", p.ID))
	utils.LogEvent(s.RequestID, "note", "create", fmt.Sprintf("note_id=%d ticket_id=%d", id, ticketID))
	return s.Get(ctx, id)
}

func (s NoteService) Update(ctx context.Context, id domain.ID, content string) (models.Note, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return models.Note{}, domain.ValidationError{Field: "content", Msg: "is required"}
	}
	if _, err := s.Get(ctx, id); err != nil {
		return models.Note{}, err
	}
	if err := s.notes().Update(ctx, id, map[string]any{"content": content}); err != nil {
		return models.Note{}, err
	}
	return s.Get(ctx, id)
}

func (s NoteService) Delete(ctx context.Context, id domain.ID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.notes().Destroy(ctx, id); err != nil {
		return err
	}
	utils.LogEvent(s.RequestID, "note", "delete", fmt.Sprintf("note_id=%d", id))
	return nil
}
