package resetcode

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

const resetTable = "password_resets"

// SQLStore keeps codes in the password_resets table.
type SQLStore struct {
	DB  *sqlx.DB
	Now func() time.Time
}

func NewSQLStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{DB: db, Now: time.Now}
}

func (s *SQLStore) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

func (s *SQLStore) Put(ctx context.Context, email, code string, ttl time.Duration) error {
	sqlStr, args, err := sq.Insert(resetTable).
		Columns("email", "code", "expires_at", "attempts").
		Values(normalizeEmail(email), code, s.now().Add(ttl), 0).
		Suffix("ON DUPLICATE KEY UPDATE code = VALUES(code), expires_at = VALUES(expires_at), attempts = 0").
		ToSql()
	if err != nil {
		return fmt.Errorf("build reset code insert: %w", err)
	}
	if _, err := s.DB.ExecContext(ctx, sqlStr, args...); err != nil {
		return fmt.Errorf("store reset code: %w", err)
	}
	return nil
}

func (s *SQLStore) Consume(ctx context.Context, email, code string) (bool, error) {
	email = normalizeEmail(email)
	sqlStr, args, err := sq.Select("code", "expires_at").From(resetTable).Where(sq.Eq{"email": email}).ToSql()
	if err != nil {
		return false, fmt.Errorf("build reset code lookup: %w", err)
	}
	var row struct {
		Code      string    `db:"code"`
		ExpiresAt time.Time `db:"expires_at"`
	}
	if err := s.DB.GetContext(ctx, &row, sqlStr, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("load reset code: %w", err)
	}
	if !s.now().Before(row.ExpiresAt) {
		return false, s.exec(ctx, "discard expired reset code", sq.Delete(resetTable).Where(sq.Eq{"email": email}))
	}
	if !codesEqual(row.Code, code) {
		return false, s.miss(ctx, email)
	}

	// Only one caller can delete the row it matched.
	sqlStr, args, err = sq.Delete(resetTable).Where(sq.Eq{"email": email, "code": row.Code}).ToSql()
	if err != nil {
		return false, fmt.Errorf("build reset code delete: %w", err)
	}
	res, err := s.DB.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return false, fmt.Errorf("delete reset code: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete reset code: %w", err)
	}
	return n == 1, nil
}

// miss counts a failed attempt in the database and drops the code once the
// count reaches MaxAttempts.
func (s *SQLStore) miss(ctx context.Context, email string) error {
	if err := s.exec(ctx, "count reset attempt", sq.Update(resetTable).
		Set("attempts", sq.Expr("attempts + 1")).
		Where(sq.Eq{"email": email})); err != nil {
		return err
	}
	return s.exec(ctx, "discard reset code", sq.Delete(resetTable).
		Where(sq.Eq{"email": email}).
		Where(sq.GtOrEq{"attempts": MaxAttempts}))
}

func (s *SQLStore) exec(ctx context.Context, action string, b sq.Sqlizer) error {
	sqlStr, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("build %s: %w", action, err)
	}
	if _, err := s.DB.ExecContext(ctx, sqlStr, args...); err != nil {
		return fmt.Errorf("%s: %w", action, err)
	}
	return nil
}
