package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"helpdesk/internal/auth"
	intconfig "helpdesk/internal/config"
	"helpdesk/internal/domain"
	"helpdesk/internal/services"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
}

func newTestRouter(t *testing.T) (*gin.Engine, *auth.TokenService, sqlmock.Sqlmock) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	tokens, err := auth.NewTokenService(auth.TokenConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     time.Minute,
		RefreshTTL:    24 * time.Hour,
	})
	require.NoError(t, err)

	env := intconfig.Env{
		AppEnv:             "development",
		PaginationLimit:    5,
		PaginationMaxLimit: 100,
		SortBy:             "created_at",
		OrderBy:            "DESC",
		DefaultLanguage:    "EN",
	}
	deps := services.Deps{
		DB:       sqlx.NewDb(db, "mysql"),
		Tokens:   tokens,
		Dispatch: func(task func()) { task() },
	}
	return NewRouter(env, deps), tokens, mock
}

func do(r http.Handler, method, path, bearer, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var e envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &e), "body: %s", w.Body.String())
	return e
}

func TestHealth(t *testing.T) {
	r, _, _ := newTestRouter(t)
	w := do(r, http.MethodGet, "/api/v1/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestUnknownRouteUsesEnvelope(t *testing.T) {
	r, _, _ := newTestRouter(t)
	w := do(r, http.MethodGet, "/api/v1/nowhere", "", "")
	require.Equal(t, http.StatusNotFound, w.Code)
	e := decode(t, w)
	assert.Equal(t, "ROUTE_NOT_FOUND", e.Code)
	assert.NotEmpty(t, e.RequestID)
}

func TestTicketsRequireBearer(t *testing.T) {
	r, _, _ := newTestRouter(t)
	w := do(r, http.MethodGet, "/api/v1/tickets", "", "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	e := decode(t, w)
	assert.Equal(t, domain.CodeUnauthorized, e.Code)
	assert.Equal(t, "Authentication required or failed", e.Message)
}

func TestClientCannotListAllTickets(t *testing.T) {
	r, tokens, _ := newTestRouter(t)
	pair, err := tokens.Issue(domain.Principal{ID: 3, Role: domain.RoleClient})
	require.NoError(t, err)

	w := do(r, http.MethodGet, "/api/v1/tickets", pair.AccessToken, "")
	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, domain.CodeForbidden, decode(t, w).Code)
}

func TestAgentCannotCreateTicket(t *testing.T) {
	r, tokens, _ := newTestRouter(t)
	pair, err := tokens.Issue(domain.Principal{ID: 7, Role: domain.RoleAgent})
	require.NoError(t, err)

	w := do(r, http.MethodPost, "/api/v1/tickets", pair.AccessToken, `{"title":"x","priority":"LOW","category":"BUG"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestBadPathIDIsValidationError(t *testing.T) {
	r, tokens, _ := newTestRouter(t)
	pair, err := tokens.Issue(domain.Principal{ID: 1, Role: domain.RoleAdmin})
	require.NoError(t, err)

	w := do(r, http.MethodGet, "/api/v1/tickets/abc", pair.AccessToken, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, domain.CodeBadRequest, decode(t, w).Code)
}

func TestRefreshWithoutCookie(t *testing.T) {
	r, _, _ := newTestRouter(t)
	w := do(r, http.MethodPost, "/api/v1/auth/token", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRefreshFromCookie(t *testing.T) {
	r, tokens, mock := newTestRouter(t)
	pair, err := tokens.Issue(domain.Principal{ID: 9, Role: domain.RoleClient})
	require.NoError(t, err)

	now := time.Now()
	mock.ExpectQuery("SELECT (.+) FROM `users` WHERE `users`.`id` = \\?").
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "first_name", "last_name", "email", "role", "status", "created_at", "updated_at"}).
			AddRow(9, "Ana", "Lee", "ana@example.com", "AGENT", "ACTIVE", now, now))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/token", nil)
	req.AddCookie(&http.Cookie{Name: "jwt", Value: pair.RefreshToken})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body struct {
		AccessToken string `json:"accessToken"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	p, err := tokens.VerifyAccess(body.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAgent, p.Role)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLogoutClearsCookie(t *testing.T) {
	r, tokens, _ := newTestRouter(t)
	pair, err := tokens.Issue(domain.Principal{ID: 9, Role: domain.RoleClient})
	require.NoError(t, err)

	w := do(r, http.MethodPost, "/api/v1/auth/logout", pair.AccessToken, "")
	require.Equal(t, http.StatusOK, w.Code)
	cookie := w.Header().Get("Set-Cookie")
	assert.Contains(t, cookie, "jwt=;")
	assert.Contains(t, cookie, "Path=/api/v1/auth")
	assert.Contains(t, cookie, "Max-Age=0")
	assert.Contains(t, cookie, "HttpOnly")
}

func TestRegisterValidatesBody(t *testing.T) {
	r, _, _ := newTestRouter(t)
	w := do(r, http.MethodPost, "/api/v1/auth/register", "", `{"first_name":"Ana","email":"not-an-email","password":"123"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var body struct {
		Details struct {
			Fields map[string]string `json:"fields"`
		} `json:"details"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "is required", body.Details.Fields["last_name"])
	assert.Equal(t, "must be a valid email", body.Details.Fields["email"])
	assert.Equal(t, "must be at least 6", body.Details.Fields["password"])
}

func TestRoutesListingIsAdminOnly(t *testing.T) {
	r, tokens, _ := newTestRouter(t)
	agent, err := tokens.Issue(domain.Principal{ID: 7, Role: domain.RoleAgent})
	require.NoError(t, err)
	admin, err := tokens.Issue(domain.Principal{ID: 1, Role: domain.RoleAdmin})
	require.NoError(t, err)

	assert.Equal(t, http.StatusForbidden, do(r, http.MethodGet, "/api/v1/routes", agent.AccessToken, "").Code)

	w := do(r, http.MethodGet, "/api/v1/routes", admin.AccessToken, "")
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Data []struct {
			Method string `json:"method"`
			Path   string `json:"path"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body.Data, struct {
		Method string `json:"method"`
		Path   string `json:"path"`
	}{"PUT", "/api/v1/tickets/:id/resolve"})
}
