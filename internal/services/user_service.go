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

type UserService struct {
	Deps
	RequestID string
}

// UpdateUserInput carries optional admin edits; nil fields are left alone.
type UpdateUserInput struct {
	FirstName *string
	LastName  *string
	Email     *string
	Role      *string
	Status    *string
}

func (s UserService) List(ctx context.Context, desc query.Descriptor) (domain.Page[models.User], error) {
	return listPage(ctx, s.users().Repository, desc)
}

func (s UserService) Get(ctx context.Context, id domain.ID) (models.User, error) {
	user, err := s.users().FindByKey(ctx, id)
	if err != nil {
		return models.User{}, err
	}
	if user == nil {
		return models.User{}, domain.NotFoundError{Resource: "user", Module: domain.ModuleUser}
	}
	return *user, nil
}

func (s UserService) Update(ctx context.Context, id domain.ID, in UpdateUserInput) (models.User, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return models.User{}, err
	}

	attrs := map[string]any{}
	if in.FirstName != nil {
		attrs["first_name"] = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		attrs["last_name"] = strings.TrimSpace(*in.LastName)
	}
	if in.Email != nil {
		attrs["email"] = strings.ToLower(strings.TrimSpace(*in.Email))
	}
	if in.Role != nil {
		role, ok := domain.ParseRole(*in.Role)
		if !ok {
			return models.User{}, domain.ValidationError{Field: "role", Msg: "must be CLIENT, AGENT or ADMIN"}
		}
		attrs["role"] = string(role)
	}
	if in.Status != nil {
		status := domain.UserStatus(strings.ToUpper(strings.TrimSpace(*in.Status)))
		switch status {
		case domain.UserActive, domain.UserInactive, domain.UserSuspended, domain.UserPending, domain.UserDeleted:
			attrs["status"] = string(status)
		default:
			return models.User{}, domain.ValidationError{Field: "status", Msg: "unknown user status"}
		}
	}

	if err := s.users().Update(ctx, id, attrs); err != nil {
		return models.User{}, err
	}
	utils.LogEvent(s.RequestID, "user", "update", fmt.Sprintf("user_id=%d", id))
	return s.Get(ctx, id)
}

func (s UserService) Delete(ctx context.Context, id domain.ID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.users().Destroy(ctx, id); err != nil {
		return err
	}
	utils.LogEvent(s.RequestID, "user", "delete", fmt.Sprintf("user_id=%d", id))
	return nil
}
