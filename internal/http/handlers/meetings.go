package handlers

import (
	"net/http"
	"time"

	"helpdesk/internal/services"

	"github.com/gin-gonic/gin"
)

type meetingRequest struct {
	ScheduledAt *time.Time `json:"scheduled_at"`
	MeetingLink *string    `json:"meeting_link" binding:"omitempty,url"`
	Status      *string    `json:"status" binding:"omitempty,oneof=PENDING ACCEPTED REJECTED"`
}

func (r meetingRequest) input() services.MeetingInput {
	return services.MeetingInput{ScheduledAt: r.ScheduledAt, MeetingLink: r.MeetingLink, Status: r.Status}
}

// GET /api/v1/meetings
func (a *API) ListMeetings(c *gin.Context) {
	desc, ok := a.descriptor(c)
	if !ok {
		return
	}
	page, err := a.meetingSvc(c).List(c.Request.Context(), desc)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GET /api/v1/meetings/ticket/:ticketId
func (a *API) MeetingsByTicket(c *gin.Context) {
	ticketID, ok := paramID(c, "ticketId")
	if !ok {
		return
	}
	desc, ok := a.descriptor(c)
	if !ok {
		return
	}
	page, err := a.meetingSvc(c).ByTicket(c.Request.Context(), ticketID, desc)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GET /api/v1/meetings/:id
func (a *API) GetMeeting(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	m, err := a.meetingSvc(c).Get(c.Request.Context(), principal(c), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": m})
}

// POST /api/v1/meetings/ticket/:ticketId
func (a *API) CreateMeeting(c *gin.Context) {
	ticketID, ok := paramID(c, "ticketId")
	if !ok {
		return
	}
	var req meetingRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	m, err := a.meetingSvc(c).Create(c.Request.Context(), principal(c), ticketID, req.input())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": m})
}

// POST /api/v1/meetings/request/:ticketId
func (a *API) RequestMeeting(c *gin.Context) {
	ticketID, ok := paramID(c, "ticketId")
	if !ok {
		return
	}
	var req meetingRequest
	if c.Request.ContentLength != 0 && !BindJSONOrError(c, &req) {
		return
	}
	m, err := a.meetingSvc(c).Request(c.Request.Context(), principal(c), ticketID, req.input())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Meeting requested", "data": m})
}

// PUT /api/v1/meetings/:id
func (a *API) UpdateMeeting(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req meetingRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	m, err := a.meetingSvc(c).Update(c.Request.Context(), principal(c), id, req.input())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": m})
}

// DELETE /api/v1/meetings/:id
func (a *API) DeleteMeeting(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := a.meetingSvc(c).Delete(c.Request.Context(), id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Meeting deleted successfully"})
}
