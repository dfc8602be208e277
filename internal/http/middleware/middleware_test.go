package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"helpdesk/internal/auth"
	"helpdesk/internal/domain"
	"helpdesk/internal/query"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// statusResponder mirrors the handler package's mapping closely enough for middleware tests.
func statusResponder(c *gin.Context, err error) {
	switch {
	case domain.IsUnauthorized(err):
		c.AbortWithStatus(http.StatusUnauthorized)
	case domain.IsForbidden(err):
		c.AbortWithStatus(http.StatusForbidden)
	default:
		c.AbortWithStatus(http.StatusInternalServerError)
	}
}

func newTokens(t *testing.T) *auth.TokenService {
	t.Helper()
	ts, err := auth.NewTokenService(auth.TokenConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     time.Minute,
		RefreshTTL:    time.Hour,
	})
	if err != nil {
		t.Fatalf("token service: %v", err)
	}
	return ts
}

func serve(r *gin.Engine, method, path, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthenticateAndRoles(t *testing.T) {
	tokens := newTokens(t)
	r := gin.New()
	r.GET("/staff", Authenticate(tokens, statusResponder), RequireRoles(auth.AllowStaff, statusResponder), func(c *gin.Context) {
		c.String(http.StatusOK, "%d", GetPrincipal(c).ID)
	})

	agent, err := tokens.Issue(domain.Principal{ID: 7, Role: domain.RoleAgent})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	client, err := tokens.Issue(domain.Principal{ID: 3, Role: domain.RoleClient})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	cases := []struct {
		name   string
		bearer string
		want   int
	}{
		{"missing token", "", http.StatusUnauthorized},
		{"garbage token", "not-a-jwt", http.StatusForbidden},
		{"refresh token used as access", agent.RefreshToken, http.StatusForbidden},
		{"client on staff route", client.AccessToken, http.StatusForbidden},
		{"agent", agent.AccessToken, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := serve(r, http.MethodGet, "/staff", tc.bearer)
			if w.Code != tc.want {
				t.Fatalf("status = %d, want %d", w.Code, tc.want)
			}
		})
	}

	if w := serve(r, http.MethodGet, "/staff", agent.AccessToken); w.Body.String() != "7" {
		t.Fatalf("principal not stored, body %q", w.Body.String())
	}
}

func TestBearerTokenParsing(t *testing.T) {
	cases := map[string]string{
		"":                 "",
		"Bearer":           "",
		"Basic abc":        "",
		"Bearer abc":       "abc",
		"bearer  abc  ":    "abc",
		"BEARER token.x.y": "token.x.y",
	}
	for header, want := range cases {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		c.Request.Header.Set("Authorization", header)
		if got := bearerToken(c); got != want {
			t.Fatalf("bearerToken(%q) = %q, want %q", header, got, want)
		}
	}
}

func TestFilterStoresDescriptor(t *testing.T) {
	defaults := query.Defaults{Limit: 5, MaxLimit: 20, SortBy: "created_at", OrderBy: "DESC", Language: "EN"}
	var got query.Descriptor
	r := gin.New()
	r.GET("/list", Filter(defaults, statusResponder), func(c *gin.Context) {
		d, ok := GetDescriptor(c)
		if !ok {
			c.Status(http.StatusTeapot)
			return
		}
		got = d
		c.Status(http.StatusOK)
	})

	w := serve(r, http.MethodGet, "/list?limit=500&offset=-3&status=PENDING", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if got.Limit != 20 {
		t.Fatalf("limit = %d, want clamp to 20", got.Limit)
	}
	if got.Offset != 0 {
		t.Fatalf("offset = %d, want 0", got.Offset)
	}
	if got.Where == nil {
		t.Fatalf("expected a where predicate for status")
	}
}

func TestFilterRejectsBrokenDefaults(t *testing.T) {
	r := gin.New()
	r.GET("/list", Filter(query.Defaults{}, statusResponder), func(c *gin.Context) { c.Status(http.StatusOK) })
	if w := serve(r, http.MethodGet, "/list", ""); w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
}

func TestRequestIDHeader(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, GetRequestID(c)) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Header().Get("X-Request-ID") != "abc-123" || w.Body.String() != "abc-123" {
		t.Fatalf("supplied id not kept: header=%q body=%q", w.Header().Get("X-Request-ID"), w.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", strings.Repeat("x", 200))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get("X-Request-ID"); len(got) != 36 {
		t.Fatalf("oversized id should be replaced by a uuid, got %q", got)
	}
}

func TestAcceptableRequestID(t *testing.T) {
	good := []string{"abc-123", "trace_01.a:b", strings.Repeat("z", maxRequestIDLen)}
	bad := []string{"", "has space", "line\nbreak", "quote\"", strings.Repeat("z", maxRequestIDLen+1)}
	for _, s := range good {
		if !acceptableRequestID(s) {
			t.Fatalf("expected %q to be accepted", s)
		}
	}
	for _, s := range bad {
		if acceptableRequestID(s) {
			t.Fatalf("expected %q to be rejected", s)
		}
	}
}
