package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"helpdesk/internal/domain"
	"helpdesk/internal/query"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func render(t *testing.T, err error) (int, ErrorResponse) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	RespondDomainError(c, err)

	var body ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode envelope: %v (%s)", err, w.Body.String())
	}
	return w.Code, body
}

func TestRespondDomainErrorMapping(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{"not found", domain.NotFoundError{Resource: "ticket", Module: domain.ModuleTicket}, 404, domain.CodeNotFound, "The requested resource was not found"},
		{"conflict", domain.ConflictError{Resource: "feedback"}, 409, domain.CodeConflict, "Conflict error"},
		{"forbidden", domain.ForbiddenError{Msg: "nope"}, 403, domain.CodeForbidden, "You do not have permission to perform this action"},
		{"unauthorized", domain.UnauthorizedError{}, 401, domain.CodeUnauthorized, "Authentication required or failed"},
		{"validation", domain.ValidationError{Field: "rating", Msg: "out of range"}, 400, domain.CodeBadRequest, "Validation error"},
		{"business default", domain.BusinessError{Msg: "limit"}, 422, domain.CodeBusinessRule, "limit"},
		{"business custom", domain.BusinessError{Code: "NOT_AN_AGENT", Msg: "target is not an agent", Status: 400}, 400, "NOT_AN_AGENT", "target is not an agent"},
		{"wrapped forbidden", fmt.Errorf("resolve: %w", domain.ForbiddenError{}), 403, domain.CodeForbidden, "You do not have permission to perform this action"},
		{"unknown", errors.New("driver exploded"), 500, domain.CodeInternal, "Internal server error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := render(t, tc.err)
			if status != tc.status {
				t.Fatalf("status = %d, want %d", status, tc.status)
			}
			if body.Code != tc.code || body.Message != tc.message {
				t.Fatalf("envelope = %+v, want code %q message %q", body, tc.code, tc.message)
			}
		})
	}
}

func TestInternalErrorsHideDetail(t *testing.T) {
	_, body := render(t, errors.New("dial tcp 10.0.0.3:3306: connection refused"))
	if body.Details.Detail != "" {
		t.Fatalf("internal detail leaked: %q", body.Details.Detail)
	}
}

func TestValidationErrorReportsField(t *testing.T) {
	_, body := render(t, domain.ValidationError{Field: "rating", Msg: "must be between 1 and 5"})
	if _, ok := body.Details.Fields["rating"]; !ok {
		t.Fatalf("expected rating in fields, got %+v", body.Details.Fields)
	}
}

func TestJSONName(t *testing.T) {
	cases := map[string]string{
		"Email":           "email",
		"ConfirmPassword": "confirm_password",
		"FirstName":       "first_name",
	}
	for in, want := range cases {
		if got := jsonName(in); got != want {
			t.Fatalf("jsonName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestInternalErrorShowsOwnMessage(t *testing.T) {
	_, body := render(t, domain.InternalError{Msg: "failed to render transcript", Err: errors.New("font missing")})
	if body.Details.Detail != "failed to render transcript" {
		t.Fatalf("detail = %q", body.Details.Detail)
	}
}

func TestListWithBrokenDefaultsFails(t *testing.T) {
	a := &API{Defaults: query.Defaults{}}
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/comments", nil)

	a.ListComments(c)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	last := c.Errors.Last()
	if last == nil || !strings.Contains(last.Error(), "default limit must be positive") {
		t.Fatalf("expected the compile error to be recorded, got %v", c.Errors)
	}
}
