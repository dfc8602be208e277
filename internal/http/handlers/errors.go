package handlers

import (
	"errors"
	"net/http"
	"strings"

	"helpdesk/internal/domain"
	"helpdesk/internal/http/middleware"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// ErrorDetails carries the specific cause behind a generic message.
type ErrorDetails struct {
	Detail string            `json:"detail,omitempty"`
	Source string            `json:"source,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
}

// ErrorResponse is the single error envelope used by every endpoint.
type ErrorResponse struct {
	Code      string       `json:"code"`
	Message   string       `json:"message"`
	Details   ErrorDetails `json:"details"`
	RequestID string       `json:"request_id,omitempty"`
}

func respondError(c *gin.Context, status int, code, message string, details ErrorDetails) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		Code:      code,
		Message:   message,
		Details:   details,
		RequestID: middleware.GetRequestID(c),
	})
}

// RespondDomainError maps domain errors to HTTP responses.
func RespondDomainError(c *gin.Context, err error) {
	details := ErrorDetails{Detail: err.Error(), Source: string(domain.SourceOf(err))}

	var be domain.BusinessError
	switch {
	case errors.As(err, &be):
		if len(be.Details) > 0 {
			details.Fields = be.Details
		}
		respondError(c, be.HTTPStatus(), be.ErrorCode(), be.Error(), details)
	case domain.IsValidation(err):
		var ve domain.ValidationError
		if errors.As(err, &ve) && ve.Field != "" {
			details.Fields = map[string]string{ve.Field: ve.Error()}
		}
		respondError(c, http.StatusBadRequest, domain.CodeBadRequest, "Validation error", details)
	case domain.IsNotFound(err):
		respondError(c, http.StatusNotFound, domain.CodeNotFound, "The requested resource was not found", details)
	case domain.IsConflict(err):
		respondError(c, http.StatusConflict, domain.CodeConflict, "Conflict error", details)
	case domain.IsForbidden(err):
		respondError(c, http.StatusForbidden, domain.CodeForbidden, "You do not have permission to perform this action", details)
	case domain.IsUnauthorized(err):
		respondError(c, http.StatusUnauthorized, domain.CodeUnauthorized, "Authentication required or failed", details)
	default:
		// Logged by the access logger; only an InternalError's own message is shown.
		_ = c.Error(err)
		var ie domain.InternalError
		hidden := ErrorDetails{}
		if errors.As(err, &ie) && ie.Msg != "" {
			hidden.Detail = ie.Msg
		}
		respondError(c, http.StatusInternalServerError, domain.CodeInternal, "Internal server error", hidden)
	}
}

// respondBindError reports a body that failed to decode or validate.
func respondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[jsonName(fe.Field())] = fieldMessage(fe)
		}
		respondError(c, http.StatusBadRequest, domain.CodeBadRequest, "Validation error", ErrorDetails{Fields: fields})
		return
	}
	respondError(c, http.StatusBadRequest, domain.CodeBadRequest, "Validation error", ErrorDetails{Detail: "request body is not valid JSON"})
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of " + fe.Param()
	case "eqfield":
		return "must match " + jsonName(fe.Param())
	case "gte", "lte":
		return "is out of range"
	}
	return "is invalid"
}

// jsonName turns a Go field name like ConfirmPassword into confirm_password.
func jsonName(field string) string {
	var b strings.Builder
	for i, r := range field {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
