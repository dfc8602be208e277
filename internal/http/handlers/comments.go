package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type contentRequest struct {
	Content string `json:"content" binding:"required,max=5000"`
}

// GET /api/v1/comments
func (a *API) ListComments(c *gin.Context) {
	desc, ok := a.descriptor(c)
	if !ok {
		return
	}
	page, err := a.commentSvc(c).List(c.Request.Context(), desc)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GET /api/v1/comments/ticket/:ticketId
func (a *API) CommentsByTicket(c *gin.Context) {
	ticketID, ok := paramID(c, "ticketId")
	if !ok {
		return
	}
	desc, ok := a.descriptor(c)
	if !ok {
		return
	}
	page, err := a.commentSvc(c).ByTicket(c.Request.Context(), principal(c), ticketID, desc)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GET /api/v1/comments/:id
func (a *API) GetComment(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	comment, err := a.commentSvc(c).Get(c.Request.Context(), principal(c), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": comment})
}

// POST /api/v1/comments/ticket/:ticketId
func (a *API) CreateComment(c *gin.Context) {
	ticketID, ok := paramID(c, "ticketId")
	if !ok {
		return
	}
	var req contentRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	comment, err := a.commentSvc(c).Create(c.Request.Context(), principal(c), ticketID, req.Content)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": comment})
}

// PUT /api/v1/comments/:id
func (a *API) UpdateComment(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req contentRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	comment, err := a.commentSvc(c).Update(c.Request.Context(), id, req.Content)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": comment})
}

// DELETE /api/v1/comments/:id
func (a *API) DeleteComment(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := a.commentSvc(c).Delete(c.Request.Context(), id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted successfully"})
}
