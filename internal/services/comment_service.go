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

type CommentService struct {
	Deps
	RequestID string
}

func (s CommentService) List(ctx context.Context, desc query.Descriptor) (domain.Page[models.Comment], error) {
	page, err := listPage(ctx, s.comments().Repository, desc)
	if err != nil {
		return page, err
	}
	return page, s.hydrateComments(ctx, page.Data)
}

func (s CommentService) ByTicket(ctx context.Context, p domain.Principal, ticketID domain.ID, desc query.Descriptor) (domain.Page[models.Comment], error) {
	if _, err := s.visibleTicket(ctx, p, ticketID, domain.ModuleComment); err != nil {
		return domain.Page[models.Comment]{}, err
	}
	return s.List(ctx, desc.Scope(query.Equal("ticket_id", ticketID)))
}

func (s CommentService) find(ctx context.Context, id domain.ID) (models.Comment, error) {
	c, err := s.comments().FindByKey(ctx, id)
	if err != nil {
		return models.Comment{}, err
	}
	if c == nil {
		return models.Comment{}, domain.NotFoundError{Resource: "comment", Module: domain.ModuleComment}
	}
	return *c, nil
}

func (s CommentService) load(ctx context.Context, id domain.ID) (models.Comment, error) {
	c, err := s.find(ctx, id)
	if err != nil {
		return models.Comment{}, err
	}
	return s.hydrated(ctx, c)
}

func (s CommentService) hydrated(ctx context.Context, c models.Comment) (models.Comment, error) {
	rows := []models.Comment{c}
	if err := s.hydrateComments(ctx, rows); err != nil {
		return models.Comment{}, err
	}
	return rows[0], nil
}

// Get returns a comment whose ticket the caller may see.
func (s CommentService) Get(ctx context.Context, p domain.Principal, id domain.ID) (models.Comment, error) {
	c, err := s.find(ctx, id)
	if err != nil {
		return models.Comment{}, err
	}
	if _, err := s.visibleTicket(ctx, p, c.TicketID, domain.ModuleComment); err != nil {
		return models.Comment{}, err
	}
	return s.hydrated(ctx, c)
}

// Create posts a comment and tells the other side of the ticket about it.
func (s CommentService) Create(ctx context.Context, p domain.Principal, ticketID domain.ID, content string) (models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return models.Comment{}, domain.ValidationError{Field: "content", Msg: "is required"}
	}
	t, err := s.visibleTicket(ctx, p, ticketID, domain.ModuleComment)
	if err != nil {
		return models.Comment{}, err
	}

	id, err := s.comments().Create(ctx, map[string]any{"ticket_id": ticketID, "author_id": p.ID, "content": content})
	if err != nil {
		return models.Comment{}, err
	}
	logHistory(ctx, s.histories(), s.RequestID, ticketID, p.ID, fmt.Sprintf("Comment added by user %d", p.ID))
	utils.LogEvent(s.RequestID, "comment", "create", fmt.Sprintf("comment_id=%d ticket_id=%d", id, ticketID))

	n := Notifier{Deps: s.Deps, RequestID: s.RequestID}
	msg := fmt.Sprintf("New comment on ticket %q: %s", t.Title, utils.Truncate(content, 120))
	if t.UserID != p.ID {
		n.Notify(ctx, t.UserID, "New comment on your ticket", msg)
	} else if t.AssignedTo != nil {
		n.Notify(ctx, *t.AssignedTo, "New comment on an assigned ticket", msg)
	}
	return s.load(ctx, id)
}

func (s CommentService) Update(ctx context.Context, id domain.ID, content string) (models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return models.Comment{}, domain.ValidationError{Field: "content", Msg: "is required"}
	}
	if _, err := s.find(ctx, id); err != nil {
		return models.Comment{}, err
	}
	if err := s.comments().Update(ctx, id, map[string]any{"content": content}); err != nil {
		return models.Comment{}, err
	}
	utils.LogEvent(s.RequestID, "comment", "update", fmt.Sprintf("comment_id=%d", id))
	return s.load(ctx, id)
}

func (s CommentService) Delete(ctx context.Context, id domain.ID) error {
	if _, err := s.find(ctx, id); err != nil {
		return err
	}
	if err := s.comments().Destroy(ctx, id); err != nil {
		return err
	}
	utils.LogEvent(s.RequestID, "comment", "delete", fmt.Sprintf("comment_id=%d", id))
	return nil
}
