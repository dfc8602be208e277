package services

import (
	"context"
	"database/sql/driver"
	"errors"
	"sync"
	"testing"
	"time"

	"helpdesk/internal/auth"
	"helpdesk/internal/domain"
	"helpdesk/internal/email"
	"helpdesk/internal/resetcode"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthDeps(t *testing.T) (Deps, sqlmock.Sqlmock) {
	t.Helper()
	deps, mock := newTestDeps(t)
	tokens, err := auth.NewTokenService(auth.TokenConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    time.Hour,
	})
	require.NoError(t, err)
	deps.Tokens = tokens
	return deps, mock
}

func TestRefreshUsesCurrentRole(t *testing.T) {
	deps, mock := newAuthDeps(t)
	pair, err := deps.Tokens.Issue(domain.Principal{ID: 9, Role: domain.RoleClient})
	require.NoError(t, err)

	now := time.Now()
	mock.ExpectQuery("SELECT (.+) FROM `users` WHERE `users`.`id` = \\?").
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(9, "Ana", "Lee", "ana@example.com", "ADMIN", "ACTIVE", now, now))

	access, err := AuthService{Deps: deps}.Refresh(context.Background(), pair.RefreshToken)
	require.NoError(t, err)

	p, err := deps.Tokens.VerifyAccess(access)
	require.NoError(t, err)
	assert.Equal(t, domain.Principal{ID: 9, Role: domain.RoleAdmin}, p)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshUnknownUser(t *testing.T) {
	deps, mock := newAuthDeps(t)
	pair, err := deps.Tokens.Issue(domain.Principal{ID: 9, Role: domain.RoleClient})
	require.NoError(t, err)
	mock.ExpectQuery("SELECT (.+) FROM `users`").WillReturnRows(sqlmock.NewRows(userCols))

	_, err = AuthService{Deps: deps}.Refresh(context.Background(), pair.RefreshToken)
	require.Error(t, err)
	assert.True(t, domain.IsUnauthorized(err))
	assert.Equal(t, "user not found", err.Error())
}

func TestRefreshWithoutToken(t *testing.T) {
	deps, _ := newAuthDeps(t)
	_, err := AuthService{Deps: deps}.Refresh(context.Background(), "")
	assert.True(t, domain.IsUnauthorized(err), "got %v", err)
}

func TestLoginWrongPassword(t *testing.T) {
	deps, mock := newAuthDeps(t)
	hash, err := auth.HashPassword("correct horse battery staple")
	require.NoError(t, err)
	now := time.Now()
	mock.ExpectQuery("SELECT (.+), `users`.`password` FROM `users`").
		WithArgs("ana@example.com").
		WillReturnRows(sqlmock.NewRows(append(append([]string{}, userCols...), "password")).
			AddRow(9, "Ana", "Lee", "ana@example.com", "CLIENT", "ACTIVE", now, now, hash))

	_, _, err = AuthService{Deps: deps}.Login(context.Background(), " Ana@Example.com ", "wrong")
	assert.True(t, domain.IsUnauthorized(err), "got %v", err)
}

type memoryResets struct {
	mu     sync.Mutex
	codes  map[string]string
	misses map[string]int
}

func newMemoryResets() *memoryResets {
	return &memoryResets{codes: map[string]string{}, misses: map[string]int{}}
}

func (m *memoryResets) Put(_ context.Context, addr, code string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codes[addr] = code
	delete(m.misses, addr)
	return nil
}

func (m *memoryResets) Consume(_ context.Context, addr, code string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.codes[addr]
	if !ok {
		return false, nil
	}
	if stored == code {
		delete(m.codes, addr)
		delete(m.misses, addr)
		return true, nil
	}
	m.misses[addr]++
	if m.misses[addr] >= resetcode.MaxAttempts {
		delete(m.codes, addr)
		delete(m.misses, addr)
	}
	return false, nil
}

type recordingSender struct {
	mu   sync.Mutex
	sent []email.Message
}

func (r *recordingSender) Send(_ context.Context, msg email.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, msg)
	return nil
}

func TestForgotPasswordMailsCode(t *testing.T) {
	deps, mock := newAuthDeps(t)
	resets := newMemoryResets()
	mailer := &recordingSender{}
	deps.Resets = resets
	deps.Mailer = mailer
	deps.MailFrom = "desk@example.com"
	deps.ResetCodeTTL = 15 * time.Minute

	now := time.Now()
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM `users`").
		WillReturnRows(sqlmock.NewRows([]string{"COUNT(*)"}).AddRow(1))
	mock.ExpectQuery("SELECT (.+) FROM `users`").
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(9, "Ana", "Lee", "ana@example.com", "CLIENT", "ACTIVE", now, now))

	require.NoError(t, AuthService{Deps: deps}.ForgotPassword(context.Background(), "ana@example.com"))

	code := resets.codes["ana@example.com"]
	require.Len(t, code, 6)
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, []string{"ana@example.com"}, mailer.sent[0].To)
	assert.Equal(t, "desk@example.com", mailer.sent[0].From)
	assert.Contains(t, mailer.sent[0].Body, code)
}

func TestForgotPasswordUnknownEmailIsSilent(t *testing.T) {
	deps, mock := newAuthDeps(t)
	mailer := &recordingSender{}
	deps.Resets = newMemoryResets()
	deps.Mailer = mailer
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM `users`").
		WillReturnRows(sqlmock.NewRows([]string{"COUNT(*)"}).AddRow(0))
	mock.ExpectQuery("SELECT (.+) FROM `users`").WillReturnRows(sqlmock.NewRows(userCols))

	require.NoError(t, AuthService{Deps: deps}.ForgotPassword(context.Background(), "nobody@example.com"))
	assert.Empty(t, mailer.sent)
}

func TestChangePasswordMismatch(t *testing.T) {
	deps, _ := newAuthDeps(t)
	err := AuthService{Deps: deps}.ChangePassword(context.Background(), 9, ChangePasswordInput{
		OldPassword: "a", NewPassword: "b", ConfirmPassword: "c",
	})
	assert.True(t, domain.IsValidation(err), "got %v", err)
}

// bcryptOf matches a bcrypt hash of the given password.
type bcryptOf string

func (b bcryptOf) Match(v driver.Value) bool {
	hash, ok := v.(string)
	return ok && auth.CheckPassword(hash, string(b))
}

func expectUserByEmail(mock sqlmock.Sqlmock, addr string) {
	now := time.Now()
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM `users`").
		WillReturnRows(sqlmock.NewRows([]string{"COUNT(*)"}).AddRow(1))
	mock.ExpectQuery("SELECT (.+) FROM `users`").
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(9, "Ana", "Lee", addr, "CLIENT", "ACTIVE", now, now))
}

func codeError(t *testing.T, err error) {
	t.Helper()
	var ve domain.ValidationError
	require.True(t, errors.As(err, &ve), "got %v", err)
	assert.Equal(t, "code", ve.Field)
}

func TestResetPasswordWithValidCode(t *testing.T) {
	deps, mock := newAuthDeps(t)
	resets := newMemoryResets()
	deps.Resets = resets
	require.NoError(t, resets.Put(context.Background(), "ana@example.com", "123456", time.Minute))

	expectUserByEmail(mock, "ana@example.com")
	mock.ExpectExec("UPDATE `users` SET password = \\? WHERE id = \\? AND deleted_at IS NULL").
		WithArgs(bcryptOf("a fresh long passphrase"), int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := AuthService{Deps: deps}.ResetPassword(context.Background(), "ana@example.com", " 123456 ", "a fresh long passphrase")
	require.NoError(t, err)
	assert.Empty(t, resets.codes, "code is single use")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResetPasswordWrongOrMissingCode(t *testing.T) {
	deps, mock := newAuthDeps(t)
	resets := newMemoryResets()
	deps.Resets = resets
	require.NoError(t, resets.Put(context.Background(), "ana@example.com", "123456", time.Minute))
	svc := AuthService{Deps: deps}

	codeError(t, svc.ResetPassword(context.Background(), "ana@example.com", "654321", "a fresh long passphrase"))
	codeError(t, svc.ResetPassword(context.Background(), "bob@example.com", "123456", "a fresh long passphrase"))
	assert.Equal(t, "123456", resets.codes["ana@example.com"], "one miss keeps the code")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResetPasswordWeakPasswordKeepsCode(t *testing.T) {
	deps, mock := newAuthDeps(t)
	resets := newMemoryResets()
	deps.Resets = resets
	deps.PasswordMinScore = 3
	require.NoError(t, resets.Put(context.Background(), "ana@example.com", "123456", time.Minute))

	err := AuthService{Deps: deps}.ResetPassword(context.Background(), "ana@example.com", "123456", "password1")
	var ve domain.ValidationError
	require.True(t, errors.As(err, &ve), "got %v", err)
	assert.Equal(t, "password", ve.Field)
	assert.Equal(t, "123456", resets.codes["ana@example.com"])
	assert.Zero(t, resets.misses["ana@example.com"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResetPasswordLocksOutAfterMisses(t *testing.T) {
	deps, mock := newAuthDeps(t)
	resets := newMemoryResets()
	deps.Resets = resets
	require.NoError(t, resets.Put(context.Background(), "ana@example.com", "123456", time.Minute))
	svc := AuthService{Deps: deps}

	for i := 0; i < resetcode.MaxAttempts; i++ {
		codeError(t, svc.ResetPassword(context.Background(), "ana@example.com", "000000", "a fresh long passphrase"))
	}
	codeError(t, svc.ResetPassword(context.Background(), "ana@example.com", "123456", "a fresh long passphrase"))
	require.NoError(t, mock.ExpectationsWereMet())
}
