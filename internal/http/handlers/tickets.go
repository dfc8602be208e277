package handlers

import (
	"net/http"

	"helpdesk/internal/domain"
	"helpdesk/internal/services"

	"github.com/gin-gonic/gin"
)

type createTicketRequest struct {
	Title       string `json:"title" binding:"required,max=200"`
	Description string `json:"description" binding:"required"`
	Priority    string `json:"priority" binding:"required"`
	Category    string `json:"category" binding:"required"`
}

type adminTicketRequest struct {
	Priority   *string    `json:"priority"`
	Status     *string    `json:"status"`
	AssignedTo *domain.ID `json:"assigned_to" binding:"omitempty,gt=0"`
}

type clientTicketRequest struct {
	Title       *string `json:"title" binding:"omitempty,max=200"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
}

type assignTicketRequest struct {
	AgentID domain.ID `json:"agent_id" binding:"required,gt=0"`
}

// GET /api/v1/tickets
func (a *API) ListTickets(c *gin.Context) {
	desc, ok := a.descriptor(c)
	if !ok {
		return
	}
	page, err := a.ticketSvc(c).List(c.Request.Context(), desc)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GET /api/v1/tickets/assigned-to-me
func (a *API) AssignedToMe(c *gin.Context) {
	desc, ok := a.descriptor(c)
	if !ok {
		return
	}
	page, err := a.ticketSvc(c).AssignedToMe(c.Request.Context(), principal(c), desc)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GET /api/v1/tickets/user
func (a *API) MyTickets(c *gin.Context) {
	desc, ok := a.descriptor(c)
	if !ok {
		return
	}
	page, err := a.ticketSvc(c).ListByUser(c.Request.Context(), principal(c), desc)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GET /api/v1/tickets/:id
func (a *API) GetTicket(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	t, err := a.ticketSvc(c).Get(c.Request.Context(), principal(c), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": t})
}

// GET /api/v1/tickets/:id/transcript
func (a *API) TicketTranscript(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	pdf, filename, err := a.docsSvc(c).Transcript(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Header("Content-Disposition", `inline; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// GET /api/v1/tickets/stats/my-solved
func (a *API) MySolvedStats(c *gin.Context) {
	p := principal(c)
	n, err := a.ticketSvc(c).MySolved(c.Request.Context(), p)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"agentId": p.ID, "total_solved_tickets": n})
}

// GET /api/v1/tickets/stats/total-solved
func (a *API) TotalSolvedStats(c *gin.Context) {
	n, err := a.ticketSvc(c).TotalSolved(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"total_solved": n})
}

// GET /api/v1/tickets/stats/total-by-user counts the caller's own tickets.
func (a *API) TotalByUserStats(c *gin.Context) {
	p := principal(c)
	n, err := a.ticketSvc(c).TotalByUser(c.Request.Context(), p.ID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"userId": p.ID, "total_tickets": n})
}

// GET /api/v1/tickets/stats/total
func (a *API) TotalStats(c *gin.Context) {
	n, err := a.ticketSvc(c).Total(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"total_tickets": n})
}

// GET /api/v1/tickets/stats/best-agent
func (a *API) BestAgentStats(c *gin.Context) {
	s, err := a.ticketSvc(c).BestAgents(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

// GET /api/v1/tickets/stats/worst-agent
func (a *API) WorstAgentStats(c *gin.Context) {
	s, err := a.ticketSvc(c).WorstAgents(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

// POST /api/v1/tickets
func (a *API) CreateTicket(c *gin.Context) {
	var req createTicketRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	t, err := a.ticketSvc(c).Create(c.Request.Context(), principal(c), services.CreateTicketInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Category:    req.Category,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": t})
}

// POST /api/v1/tickets/assign/:ticketId
func (a *API) AssignTicket(c *gin.Context) {
	id, ok := paramID(c, "ticketId")
	if !ok {
		return
	}
	var req assignTicketRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	t, err := a.ticketSvc(c).Assign(c.Request.Context(), principal(c), id, req.AgentID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Ticket successfully assigned", "data": t})
}

// PATCH /api/v1/tickets/ADMIN/:id
func (a *API) UpdateTicketByAdmin(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req adminTicketRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	t, err := a.ticketSvc(c).UpdateByAdmin(c.Request.Context(), principal(c), id, services.AdminTicketInput{
		Priority:   req.Priority,
		Status:     req.Status,
		AssignedTo: req.AssignedTo,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": t})
}

// PATCH /api/v1/tickets/CLIENT/:id
func (a *API) UpdateTicketByClient(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req clientTicketRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	t, err := a.ticketSvc(c).UpdateByClient(c.Request.Context(), principal(c), id, services.ClientTicketInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": t})
}

// PATCH /api/v1/tickets/assign-to-self/:ticketId
func (a *API) AssignToSelf(c *gin.Context) {
	id, ok := paramID(c, "ticketId")
	if !ok {
		return
	}
	t, err := a.ticketSvc(c).AssignToSelf(c.Request.Context(), principal(c), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Ticket successfully assigned", "data": t})
}

// PUT /api/v1/tickets/:id/resolve
func (a *API) ResolveTicket(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	t, err := a.ticketSvc(c).Resolve(c.Request.Context(), principal(c), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Ticket resolved successfully", "data": t})
}

// PUT /api/v1/tickets/:id/close
func (a *API) CloseTicket(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	t, err := a.ticketSvc(c).Close(c.Request.Context(), principal(c), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Ticket closed successfully", "data": t})
}

// DELETE /api/v1/tickets/:id
func (a *API) DeleteTicket(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := a.ticketSvc(c).Delete(c.Request.Context(), principal(c), id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Ticket deleted successfully"})
}
