package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"helpdesk/internal/domain"
	"helpdesk/internal/domain/models"
	"helpdesk/internal/query"

	sq "github.com/Masterminds/squirrel"
)

type UserRepository struct {
	Repository[models.User]
}

func NewUserRepository(db Queryer) UserRepository {
	return UserRepository{Repository[models.User]{DB: db, Table: UsersTable}}
}

// FindByEmail looks up a live user by case-insensitive email.
func (r UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.FindOne(ctx, query.Equal("email", strings.ToLower(strings.TrimSpace(email))))
}

// FindCredentials is the only read path that returns the password hash.
func (r UserRepository) FindCredentials(ctx context.Context, where sq.Sqlizer) (*models.User, error) {
	db, err := r.db()
	if err != nil {
		return nil, err
	}
	cols := append(r.selectColumns(), r.Table.col("password"))
	sqlStr, args, err := sq.Select(cols...).
		From(query.QuoteIdentifier(r.Table.Name)).
		Where(where).
		Where(r.notDeleted()).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build credentials query: %w", err)
	}
	var u models.User
	if err := db.GetContext(ctx, &u, sqlStr, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get credentials: %w", err)
	}
	return &u, nil
}

// CredentialsByEmail loads the login row for email.
func (r UserRepository) CredentialsByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.FindCredentials(ctx, sq.Eq{r.Table.col("email"): strings.ToLower(strings.TrimSpace(email))})
}

// CredentialsByID loads the login row for id.
func (r UserRepository) CredentialsByID(ctx context.Context, id domain.ID) (*models.User, error) {
	return r.FindCredentials(ctx, sq.Eq{r.Table.col("id"): id})
}

// Summaries loads the users behind ids, keyed by id, for eager loading.
func (r UserRepository) Summaries(ctx context.Context, ids []domain.ID) (map[domain.ID]*models.UserSummary, error) {
	out := make(map[domain.ID]*models.UserSummary, len(ids))
	users, err := r.FindByKeys(ctx, uniqueIDs(ids))
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		out[u.ID] = u.Summary()
	}
	return out, nil
}

func uniqueIDs(ids []domain.ID) []domain.ID {
	seen := make(map[domain.ID]struct{}, len(ids))
	out := make([]domain.ID, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
