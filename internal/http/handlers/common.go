package handlers

import (
	"strconv"

	"helpdesk/internal/domain"
	"helpdesk/internal/http/middleware"
	"helpdesk/internal/query"

	"github.com/gin-gonic/gin"
)

// BindJSONOrError decodes and validates the body, answering 400 on failure.
func BindJSONOrError[T any](c *gin.Context, dst *T) bool {
	if c.Request.Body == nil {
		respondBindError(c, nil)
		return false
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		respondBindError(c, err)
		return false
	}
	return true
}

// paramID parses a positive numeric path parameter.
func paramID(c *gin.Context, name string) (domain.ID, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		RespondDomainError(c, domain.ValidationError{Field: name, Msg: "must be a positive integer"})
		return 0, false
	}
	return id, true
}

// descriptor returns the compiled list query, compiling the defaults when the
// route has no Filter. It answers the request itself and reports false on failure.
func (a *API) descriptor(c *gin.Context) (query.Descriptor, bool) {
	if d, ok := middleware.GetDescriptor(c); ok {
		return d, true
	}
	d, err := query.Compile(nil, a.Defaults)
	if err != nil {
		RespondDomainError(c, err)
		return query.Descriptor{}, false
	}
	return d, true
}

func principal(c *gin.Context) domain.Principal {
	return middleware.GetPrincipal(c)
}

func requestID(c *gin.Context) string {
	return middleware.GetRequestID(c)
}
