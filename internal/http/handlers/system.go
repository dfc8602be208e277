package handlers

import (
	"net/http"
	"sort"

	intconfig "helpdesk/internal/config"
	intdb "helpdesk/internal/db"

	"github.com/gin-gonic/gin"
)

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "helpdesk api is running"})
}

// DBCheck pings the pool and checks that migrations have created the schema.
func (a *API) DBCheck(c *gin.Context) {
	db := a.Deps.DB
	if db == nil {
		db = intconfig.DB
	}
	if db == nil {
		respondError(c, http.StatusServiceUnavailable, "DATABASE_UNAVAILABLE", "database is not connected", ErrorDetails{})
		return
	}
	if err := db.PingContext(c.Request.Context()); err != nil {
		respondError(c, http.StatusServiceUnavailable, "DATABASE_UNAVAILABLE", "database ping failed", ErrorDetails{Detail: err.Error()})
		return
	}
	tables := []string{"users", "tickets", "comments", "notes", "meetings", "feedbacks", "histories", "notifications"}
	missing := []string{}
	for _, t := range tables {
		if !intdb.HasTable(c.Request.Context(), db, t) {
			missing = append(missing, t)
		}
	}
	if len(missing) > 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": "schema incomplete", "missing_tables": missing})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "database connection OK"})
}

// Routes lists the mounted routes, sorted by path then method.
func (a *API) Routes(c *gin.Context) {
	if a.Engine == nil {
		respondError(c, http.StatusServiceUnavailable, "ROUTER_NOT_READY", "router is not ready", ErrorDetails{})
		return
	}
	routes := a.Engine.Routes()
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path != routes[j].Path {
			return routes[i].Path < routes[j].Path
		}
		return routes[i].Method < routes[j].Method
	})
	out := make([]gin.H, 0, len(routes))
	for _, rt := range routes {
		out = append(out, gin.H{"method": rt.Method, "path": rt.Path})
	}
	c.JSON(http.StatusOK, gin.H{"data": out, "total_count": len(out)})
}
