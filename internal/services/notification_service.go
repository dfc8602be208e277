package services

import (
	"context"

	"helpdesk/internal/domain"
	"helpdesk/internal/domain/models"
	"helpdesk/internal/query"
)

type NotificationService struct {
	Deps
	RequestID string
}

// ByUser lists a user's notifications, newest first by default. Only the
// user and admins may read them.
func (s NotificationService) ByUser(ctx context.Context, p domain.Principal, userID domain.ID, desc query.Descriptor) (domain.Page[models.Notification], error) {
	if p.Role != domain.RoleAdmin && p.ID != userID {
		return domain.Page[models.Notification]{}, domain.ForbiddenError{Msg: "notifications belong to another user", Module: domain.ModuleNotification}
	}
	return listPage(ctx, s.notifications().Repository, desc.Scope(query.Equal("user_id", userID)))
}

func (s NotificationService) MarkRead(ctx context.Context, p domain.Principal, id domain.ID) (models.Notification, error) {
	n, err := s.notifications().FindByKey(ctx, id)
	if err != nil {
		return models.Notification{}, err
	}
	if n == nil {
		return models.Notification{}, domain.NotFoundError{Resource: "notification", Module: domain.ModuleNotification}
	}
	if n.UserID != p.ID {
		return models.Notification{}, domain.ForbiddenError{Msg: "notification belongs to another user", Module: domain.ModuleNotification}
	}
	if n.IsRead {
		return *n, nil
	}
	if err := s.notifications().Update(ctx, id, map[string]any{"is_read": true}); err != nil {
		return models.Notification{}, err
	}
	n.IsRead = true
	return *n, nil
}
