package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GET /api/v1/notes
func (a *API) ListNotes(c *gin.Context) {
	desc, ok := a.descriptor(c)
	if !ok {
		return
	}
	page, err := a.noteSvc(c).List(c.Request.Context(), desc)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GET /api/v1/notes/tickets/:ticketId
func (a *API) NotesByTicket(c *gin.Context) {
	ticketID, ok := paramID(c, "ticketId")
	if !ok {
		return
	}
	desc, ok := a.descriptor(c)
	if !ok {
		return
	}
	page, err := a.noteSvc(c).ByTicket(c.Request.Context(), principal(c), ticketID, desc)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GET /api/v1/notes/:id
func (a *API) GetNote(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	note, err := a.noteSvc(c).Get(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": note})
}

// POST /api/v1/notes/tickets/:ticketId
func (a *API) CreateNote(c *gin.Context) {
	ticketID, ok := paramID(c, "ticketId")
	if !ok {
		return
	}
	var req contentRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	note, err := a.noteSvc(c).Create(c.Request.Context(), principal(c), ticketID, req.Content)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": note})
}

// PUT /api/v1/notes/:id
func (a *API) UpdateNote(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req contentRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	note, err := a.noteSvc(c).Update(c.Request.Context(), id, req.Content)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": note})
}

// DELETE /api/v1/notes/:id
func (a *API) DeleteNote(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := a.noteSvc(c).Delete(c.Request.Context(), id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Note deleted successfully"})
}
