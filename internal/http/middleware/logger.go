package middleware

import (
	"errors"
	"fmt"
	"time"

	"helpdesk/internal/utils"

	"github.com/gin-gonic/gin"
)

// Logger writes one access line per request. 4xx lines are tagged WARN and 5xx
// lines carry the last handler error.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		p := GetPrincipal(c)
		status := c.Writer.Status()
		msg := fmt.Sprintf("%s %s route=%s status=%d latency_ms=%.3f ip=%s user_id=%d role=%s",
			c.Request.Method, c.Request.URL.Path, route, status,
			float64(time.Since(start).Microseconds())/1000.0, c.ClientIP(), p.ID, p.Role)

		rid := GetRequestID(c)
		switch {
		case status >= 500:
			cause := errors.New("no handler error recorded")
			if last := c.Errors.Last(); last != nil {
				cause = last.Err
			}
			utils.LogError(rid, "http", "request", fmt.Errorf("%s: %w", msg, cause))
		case status >= 400:
			utils.LogWarn(rid, "http", "request", msg)
		default:
			utils.LogEvent(rid, "http", "request", msg)
		}
	}
}
