package middleware

import (
	"helpdesk/internal/query"

	"github.com/gin-gonic/gin"
)

const descriptorKey = "query_descriptor"

// Filter compiles the query string into a descriptor for list handlers.
func Filter(defaults query.Defaults, respond ErrorResponder) gin.HandlerFunc {
	return func(c *gin.Context) {
		desc, err := query.Compile(c.Request.URL.Query(), defaults)
		if err != nil {
			respond(c, err)
			c.Abort()
			return
		}
		c.Set(descriptorKey, desc)
		c.Next()
	}
}

// GetDescriptor returns the compiled descriptor, or ok=false when Filter did not run.
func GetDescriptor(c *gin.Context) (query.Descriptor, bool) {
	v, ok := c.Get(descriptorKey)
	if !ok {
		return query.Descriptor{}, false
	}
	d, ok := v.(query.Descriptor)
	return d, ok
}
