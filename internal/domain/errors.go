package domain

import (
	"errors"
	"fmt"
)

// Stable machine-readable codes carried in the error envelope.
const (
	CodeNotFound     = "RESOURCE_NOT_FOUND"
	CodeConflict     = "CONFLICT"
	CodeForbidden    = "FORBIDDEN"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeBadRequest   = "BAD_REQUEST"
	CodeInternal     = "INTERNAL_SERVER_ERROR"
	CodeBusinessRule = "BUSINESS_RULE_VIOLATION"
)

// Module names the area that raised an error; it ends up in details.source.
type Module string

const (
	ModuleAuth         Module = "AUTH"
	ModuleUser         Module = "User"
	ModuleTicket       Module = "Ticket"
	ModuleComment      Module = "Comment"
	ModuleNote         Module = "Note"
	ModuleMeeting      Module = "Meeting"
	ModuleFeedback     Module = "Feedback"
	ModuleHistory      Module = "History"
	ModuleNotification Module = "Notification"
)

type NotFoundError struct {
	Resource string
	Module   Module
	Err      error
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e NotFoundError) Unwrap() error { return e.Err }

type ValidationError struct {
	Field string
	Msg   string
	Err   error
}

func (e ValidationError) Error() string {
	if e.Msg != "" && e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	if e.Msg != "" {
		return e.Msg
	}
	if e.Field != "" {
		return fmt.Sprintf("invalid %s", e.Field)
	}
	return "validation error"
}

func (e ValidationError) Unwrap() error { return e.Err }

type ConflictError struct {
	Resource string
	Msg      string
	Module   Module
	Err      error
}

func (e ConflictError) Error() string {
	switch {
	case e.Msg != "" && e.Resource != "":
		return fmt.Sprintf("%s conflict: %s", e.Resource, e.Msg)
	case e.Msg != "":
		return e.Msg
	case e.Resource != "":
		return fmt.Sprintf("%s conflict", e.Resource)
	default:
		return "conflict"
	}
}

func (e ConflictError) Unwrap() error { return e.Err }

// ForbiddenError is returned when the caller is known but may not proceed,
// and when an access credential is present but cannot be trusted.
type ForbiddenError struct {
	Msg    string
	Module Module
}

func (e ForbiddenError) Error() string {
	if e.Msg == "" {
		return "forbidden"
	}
	return e.Msg
}

// UnauthorizedError is returned when a credential is missing or must be renewed by logging in.
type UnauthorizedError struct {
	Msg    string
	Module Module
}

func (e UnauthorizedError) Error() string {
	if e.Msg == "" {
		return "unauthorized"
	}
	return e.Msg
}

// BusinessError is a domain rule violation. Status defaults to 422.
type BusinessError struct {
	Code    string
	Msg     string
	Status  int
	Module  Module
	Details map[string]string
}

func (e BusinessError) Error() string {
	if e.Msg == "" {
		return e.ErrorCode()
	}
	return e.Msg
}

// ErrorCode reports the code rendered in the envelope.
func (e BusinessError) ErrorCode() string {
	if e.Code == "" {
		return CodeBusinessRule
	}
	return e.Code
}

// HTTPStatus reports the status the error should be rendered with.
func (e BusinessError) HTTPStatus() int {
	if e.Status == 0 {
		return 422
	}
	return e.Status
}

type InternalError struct {
	Msg string
	Err error
}

func (e InternalError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "internal error"
}

func (e InternalError) Unwrap() error { return e.Err }

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target ConflictError
	return errors.As(err, &target)
}

func IsForbidden(err error) bool {
	var target ForbiddenError
	return errors.As(err, &target)
}

func IsUnauthorized(err error) bool {
	var target UnauthorizedError
	return errors.As(err, &target)
}

func IsBusiness(err error) bool {
	var target BusinessError
	return errors.As(err, &target)
}

// SourceOf returns the module recorded on a typed error, if any.
func SourceOf(err error) Module {
	var (
		nf NotFoundError
		cf ConflictError
		fb ForbiddenError
		ua UnauthorizedError
		be BusinessError
	)
	switch {
	case errors.As(err, &nf):
		return nf.Module
	case errors.As(err, &cf):
		return cf.Module
	case errors.As(err, &fb):
		return fb.Module
	case errors.As(err, &ua):
		return ua.Module
	case errors.As(err, &be):
		return be.Module
	}
	return ""
}
