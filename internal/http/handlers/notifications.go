package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GET /api/v1/notifications/users/:userId
func (a *API) NotificationsByUser(c *gin.Context) {
	userID, ok := paramID(c, "userId")
	if !ok {
		return
	}
	desc, ok := a.descriptor(c)
	if !ok {
		return
	}
	page, err := a.notificationSvc(c).ByUser(c.Request.Context(), principal(c), userID, desc)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// PATCH /api/v1/notifications/:id/read
func (a *API) MarkNotificationRead(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	n, err := a.notificationSvc(c).MarkRead(c.Request.Context(), principal(c), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": n})
}
