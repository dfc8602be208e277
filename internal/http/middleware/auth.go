package middleware

import (
	"strings"

	"helpdesk/internal/auth"
	"helpdesk/internal/domain"

	"github.com/gin-gonic/gin"
)

const principalKey = "principal"

// ErrorResponder writes err to the client and aborts the chain.
type ErrorResponder func(c *gin.Context, err error)

// Authenticate requires a valid bearer access token and stores the caller.
func Authenticate(tokens *auth.TokenService, respond ErrorResponder) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := tokens.VerifyAccess(bearerToken(c))
		if err != nil {
			respond(c, err)
			c.Abort()
			return
		}
		c.Set(principalKey, p)
		c.Next()
	}
}

// RequireRoles lets the request through only when the caller's role is in set.
func RequireRoles(set auth.AllowSet, respond ErrorResponder) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := auth.Allow(GetPrincipal(c), set); err != nil {
			respond(c, err)
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetPrincipal returns the authenticated caller, or the zero Principal.
func GetPrincipal(c *gin.Context) domain.Principal {
	if v, ok := c.Get(principalKey); ok {
		if p, ok := v.(domain.Principal); ok {
			return p
		}
	}
	return domain.Principal{}
}

func bearerToken(c *gin.Context) string {
	h := strings.TrimSpace(c.GetHeader("Authorization"))
	if len(h) < 7 || !strings.EqualFold(h[:7], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}
