package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GET /api/v1/history
func (a *API) ListHistory(c *gin.Context) {
	desc, ok := a.descriptor(c)
	if !ok {
		return
	}
	page, err := a.historySvc(c).List(c.Request.Context(), desc)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GET /api/v1/history/tickets/:ticketId
func (a *API) HistoryByTicket(c *gin.Context) {
	ticketID, ok := paramID(c, "ticketId")
	if !ok {
		return
	}
	desc, ok := a.descriptor(c)
	if !ok {
		return
	}
	page, err := a.historySvc(c).ByTicket(c.Request.Context(), principal(c), ticketID, desc)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// DELETE /api/v1/history/:id
func (a *API) DeleteHistory(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := a.historySvc(c).Delete(c.Request.Context(), id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "History entry deleted successfully"})
}
