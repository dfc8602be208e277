package services

import (
	"context"
	"fmt"

	"helpdesk/internal/domain"
	"helpdesk/internal/domain/models"
	"helpdesk/internal/query"
	"helpdesk/internal/utils"
)

type HistoryService struct {
	Deps
	RequestID string
}

func (s HistoryService) List(ctx context.Context, desc query.Descriptor) (domain.Page[models.History], error) {
	return listPage(ctx, s.histories().Repository, desc)
}

func (s HistoryService) ByTicket(ctx context.Context, p domain.Principal, ticketID domain.ID, desc query.Descriptor) (domain.Page[models.History], error) {
	if _, err := s.visibleTicket(ctx, p, ticketID, domain.ModuleHistory); err != nil {
		return domain.Page[models.History]{}, err
	}
	return s.List(ctx, desc.Scope(query.Equal("ticket_id", ticketID)))
}

func (s HistoryService) Delete(ctx context.Context, id domain.ID) error {
	h, err := s.histories().FindByKey(ctx, id)
	if err != nil {
		return err
	}
	if h == nil {
		return domain.NotFoundError{Resource: "history", Module: domain.ModuleHistory}
	}
	if err := s.histories().Destroy(ctx, id); err != nil {
		return err
	}
	utils.LogEvent(s.RequestID, "history", "delete", fmt.Sprintf("history_id=%d", id))
	return nil
}
