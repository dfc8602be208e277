package handlers

import (
	"helpdesk/internal/query"
	"helpdesk/internal/services"

	"github.com/gin-gonic/gin"
)

// API holds what handlers need beyond the request itself. Services are built
// per request so each one carries the request id into its logs.
type API struct {
	Deps          services.Deps
	Defaults      query.Defaults
	SecureCookies bool
	CookiePath    string

	// Engine backs the route listing; set once the routes are mounted.
	Engine *gin.Engine
}

func (a *API) authSvc(c *gin.Context) services.AuthService {
	return services.AuthService{Deps: a.Deps, RequestID: requestID(c)}
}

func (a *API) userSvc(c *gin.Context) services.UserService {
	return services.UserService{Deps: a.Deps, RequestID: requestID(c)}
}

func (a *API) ticketSvc(c *gin.Context) services.TicketService {
	return services.TicketService{Deps: a.Deps, RequestID: requestID(c)}
}

func (a *API) commentSvc(c *gin.Context) services.CommentService {
	return services.CommentService{Deps: a.Deps, RequestID: requestID(c)}
}

func (a *API) noteSvc(c *gin.Context) services.NoteService {
	return services.NoteService{Deps: a.Deps, RequestID: requestID(c)}
}

func (a *API) meetingSvc(c *gin.Context) services.MeetingService {
	return services.MeetingService{Deps: a.Deps, RequestID: requestID(c)}
}

func (a *API) feedbackSvc(c *gin.Context) services.FeedbackService {
	return services.FeedbackService{Deps: a.Deps, RequestID: requestID(c)}
}

func (a *API) historySvc(c *gin.Context) services.HistoryService {
	return services.HistoryService{Deps: a.Deps, RequestID: requestID(c)}
}

func (a *API) notificationSvc(c *gin.Context) services.NotificationService {
	return services.NotificationService{Deps: a.Deps, RequestID: requestID(c)}
}

func (a *API) docsSvc(c *gin.Context) services.DocsService {
	return services.DocsService{Deps: a.Deps, RequestID: requestID(c)}
}
