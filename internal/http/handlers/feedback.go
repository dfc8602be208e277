package handlers

import (
	"net/http"

	"helpdesk/internal/services"

	"github.com/gin-gonic/gin"
)

type createFeedbackRequest struct {
	Rating  int     `json:"rating" binding:"required,gte=1,lte=5"`
	Content *string `json:"content" binding:"omitempty,max=2000"`
}

type updateFeedbackRequest struct {
	Rating  *int    `json:"rating" binding:"omitempty,gte=1,lte=5"`
	Content *string `json:"content" binding:"omitempty,max=2000"`
}

// GET /api/v1/feedback
func (a *API) ListFeedback(c *gin.Context) {
	desc, ok := a.descriptor(c)
	if !ok {
		return
	}
	page, err := a.feedbackSvc(c).List(c.Request.Context(), desc)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GET /api/v1/feedback/best-agent
func (a *API) BestRatedAgent(c *gin.Context) {
	r, err := a.feedbackSvc(c).BestRated(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// GET /api/v1/feedback/worst-agent
func (a *API) WorstRatedAgent(c *gin.Context) {
	r, err := a.feedbackSvc(c).WorstRated(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// GET /api/v1/feedback/agent/:agentId
func (a *API) FeedbackByAgent(c *gin.Context) {
	agentID, ok := paramID(c, "agentId")
	if !ok {
		return
	}
	r, err := a.feedbackSvc(c).ByAgent(c.Request.Context(), agentID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// GET /api/v1/feedback/my-average
func (a *API) MyFeedbackAverage(c *gin.Context) {
	r, err := a.feedbackSvc(c).MyAverage(c.Request.Context(), principal(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// GET /api/v1/feedback/:id
func (a *API) GetFeedback(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	f, err := a.feedbackSvc(c).Get(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": f})
}

// POST /api/v1/feedback/ticket/:ticketId
func (a *API) CreateFeedback(c *gin.Context) {
	ticketID, ok := paramID(c, "ticketId")
	if !ok {
		return
	}
	var req createFeedbackRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	f, err := a.feedbackSvc(c).Create(c.Request.Context(), principal(c), ticketID, services.FeedbackInput{Rating: &req.Rating, Content: req.Content})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": f})
}

// PUT /api/v1/feedback/:id
func (a *API) UpdateFeedback(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req updateFeedbackRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	f, err := a.feedbackSvc(c).Update(c.Request.Context(), principal(c), id, services.FeedbackInput{Rating: req.Rating, Content: req.Content})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": f})
}

// DELETE /api/v1/feedback/:id
func (a *API) DeleteFeedback(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := a.feedbackSvc(c).Delete(c.Request.Context(), id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Feedback deleted successfully"})
}
