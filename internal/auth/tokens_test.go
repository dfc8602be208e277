package auth

import (
	"testing"
	"time"

	"helpdesk/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestTokenService(t *testing.T) *TokenService {
	t.Helper()
	svc, err := NewTokenService(TokenConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
	})
	require.NoError(t, err)
	svc.Now = func() time.Time { return baseTime }
	return svc
}

func TestNewTokenServiceRejectsBadSecrets(t *testing.T) {
	_, err := NewTokenService(TokenConfig{AccessSecret: "same", RefreshSecret: "same", AccessTTL: time.Minute, RefreshTTL: time.Hour})
	assert.Error(t, err)

	_, err = NewTokenService(TokenConfig{AccessSecret: "a", AccessTTL: time.Minute, RefreshTTL: time.Hour})
	assert.Error(t, err)
}

func TestIssueAndVerifyAccess(t *testing.T) {
	svc := newTestTokenService(t)
	p := domain.Principal{ID: 42, Role: domain.RoleAgent}

	pair, err := svc.Issue(p)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	got, err := svc.VerifyAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, p, got)

	svc.Now = func() time.Time { return baseTime.Add(16 * time.Minute) }
	_, err = svc.VerifyAccess(pair.AccessToken)
	require.Error(t, err)
	assert.True(t, domain.IsForbidden(err), "expired access token should be forbidden, got %v", err)
}

func TestVerifyAccessErrors(t *testing.T) {
	svc := newTestTokenService(t)

	_, err := svc.VerifyAccess("")
	assert.True(t, domain.IsUnauthorized(err))

	_, err = svc.VerifyAccess("not.a.jwt")
	assert.True(t, domain.IsForbidden(err))

	pair, err := svc.Issue(domain.Principal{ID: 1, Role: domain.RoleClient})
	require.NoError(t, err)

	// a refresh token is signed with the other secret
	_, err = svc.VerifyAccess(pair.RefreshToken)
	assert.True(t, domain.IsForbidden(err))
}

func TestVerifyRefresh(t *testing.T) {
	svc := newTestTokenService(t)
	pair, err := svc.Issue(domain.Principal{ID: 7, Role: domain.RoleClient})
	require.NoError(t, err)

	id, err := svc.VerifyRefresh(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, domain.ID(7), id)

	_, err = svc.VerifyRefresh("")
	assert.True(t, domain.IsUnauthorized(err))

	other, err := NewTokenService(TokenConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "attacker-secret",
		AccessTTL:     time.Minute,
		RefreshTTL:    time.Hour,
	})
	require.NoError(t, err)
	other.Now = svc.Now
	forged, err := other.Issue(domain.Principal{ID: 7, Role: domain.RoleAdmin})
	require.NoError(t, err)

	_, err = svc.VerifyRefresh(forged.RefreshToken)
	require.Error(t, err)
	assert.True(t, domain.IsForbidden(err), "tampered refresh token should be forbidden, got %v", err)

	svc.Now = func() time.Time { return baseTime.Add(8 * 24 * time.Hour) }
	_, err = svc.VerifyRefresh(pair.RefreshToken)
	require.Error(t, err)
	assert.True(t, domain.IsUnauthorized(err), "expired refresh token should be unauthorized, got %v", err)
	assert.Equal(t, "refresh token expired", err.Error())
}

func TestIssueAccessRejectsEmptyPrincipal(t *testing.T) {
	svc := newTestTokenService(t)
	_, err := svc.IssueAccess(domain.Principal{})
	assert.Error(t, err)
}
