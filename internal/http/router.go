package api

import (
	"log"
	stdhttp "net/http"

	"helpdesk/internal/auth"
	intconfig "helpdesk/internal/config"
	h "helpdesk/internal/http/handlers"
	"helpdesk/internal/http/middleware"
	"helpdesk/internal/services"

	"github.com/gin-gonic/gin"
)

const refreshCookiePath = "/api/v1/auth"

func NewRouter(env intconfig.Env, deps services.Deps) *gin.Engine {
	a := &h.API{
		Deps:          deps,
		Defaults:      env.QueryDefaults(),
		SecureCookies: env.IsProduction(),
		CookiePath:    refreshCookiePath,
	}

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), middleware.CORS(env.CORSAllowedOrigins))

	if err := r.SetTrustedProxies(nil); err != nil {
		log.Printf("warning: failed to set trusted proxies: %v", err)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, h.ErrorResponse{
			Code:      "ROUTE_NOT_FOUND",
			Message:   "route not found",
			Details:   h.ErrorDetails{Detail: c.Request.Method + " " + c.Request.URL.Path},
			RequestID: middleware.GetRequestID(c),
		})
	})

	authed := middleware.Authenticate(deps.Tokens, h.RespondDomainError)
	only := func(set auth.AllowSet) gin.HandlerFunc { return middleware.RequireRoles(set, h.RespondDomainError) }
	filter := middleware.Filter(a.Defaults, h.RespondDomainError)

	admin := only(auth.AllowAdmin)
	staff := only(auth.AllowStaff)
	client := only(auth.AllowClient)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", h.Health)
		v1.GET("/db-check", a.DBCheck)
		v1.GET("/routes", authed, admin, a.Routes)

		authGroup := v1.Group("/auth")
		authGroup.POST("/register", a.Register)
		authGroup.POST("/login", a.Login)
		authGroup.POST("/token", a.Token)
		authGroup.POST("/forgot-password", a.ForgotPassword)
		authGroup.POST("/reset-password", a.ResetPassword)
		authGroup.POST("/create-agent", authed, admin, a.CreateAgent)
		authGroup.GET("/users/me", authed, a.Me)
		authGroup.POST("/logout", authed, a.Logout)
		authGroup.POST("/change-password", authed, a.ChangePassword)

		users := v1.Group("/users", authed)
		users.GET("", admin, filter, a.ListUsers)
		users.GET("/:id", staff, a.GetUser)
		users.PUT("/:id", admin, a.UpdateUser)
		users.DELETE("/:id", admin, a.DeleteUser)

		tickets := v1.Group("/tickets", authed)
		tickets.GET("", staff, filter, a.ListTickets)
		tickets.GET("/assigned-to-me", staff, filter, a.AssignedToMe)
		tickets.GET("/user", filter, a.MyTickets)
		tickets.GET("/stats/my-solved", staff, a.MySolvedStats)
		tickets.GET("/stats/total-solved", a.TotalSolvedStats)
		tickets.GET("/stats/total-by-user", a.TotalByUserStats)
		tickets.GET("/stats/total", admin, a.TotalStats)
		tickets.GET("/stats/best-agent", admin, a.BestAgentStats)
		tickets.GET("/stats/worst-agent", admin, a.WorstAgentStats)
		tickets.GET("/:id", a.GetTicket)
		tickets.GET("/:id/transcript", staff, a.TicketTranscript)
		tickets.POST("", client, a.CreateTicket)
		tickets.POST("/assign/:ticketId", admin, a.AssignTicket)
		tickets.PATCH("/ADMIN/:id", admin, a.UpdateTicketByAdmin)
		tickets.PATCH("/CLIENT/:id", client, a.UpdateTicketByClient)
		tickets.PATCH("/assign-to-self/:ticketId", staff, a.AssignToSelf)
		tickets.PUT("/:id/resolve", staff, a.ResolveTicket)
		tickets.PUT("/:id/close", only(auth.AllowAdmin|auth.AllowClient), a.CloseTicket)
		tickets.DELETE("/:id", admin, a.DeleteTicket)

		comments := v1.Group("/comments", authed)
		comments.GET("", admin, filter, a.ListComments)
		comments.GET("/ticket/:ticketId", staff, filter, a.CommentsByTicket)
		comments.GET("/:id", a.GetComment)
		comments.POST("/ticket/:ticketId", a.CreateComment)
		comments.PUT("/:id", staff, a.UpdateComment)
		comments.DELETE("/:id", admin, a.DeleteComment)

		notes := v1.Group("/notes", authed, staff)
		notes.GET("", admin, filter, a.ListNotes)
		notes.GET("/tickets/:ticketId", filter, a.NotesByTicket)
		notes.GET("/:id", a.GetNote)
		notes.POST("/tickets/:ticketId", a.CreateNote)
		notes.PUT("/:id", a.UpdateNote)
		notes.DELETE("/:id", a.DeleteNote)

		meetings := v1.Group("/meetings", authed)
		meetings.GET("", admin, filter, a.ListMeetings)
		meetings.GET("/ticket/:ticketId", admin, filter, a.MeetingsByTicket)
		meetings.GET("/:id", a.GetMeeting)
		meetings.POST("/ticket/:ticketId", a.CreateMeeting)
		meetings.POST("/request/:ticketId", client, a.RequestMeeting)
		meetings.PUT("/:id", a.UpdateMeeting)
		meetings.DELETE("/:id", admin, a.DeleteMeeting)

		feedback := v1.Group("/feedback", authed)
		feedback.GET("", admin, filter, a.ListFeedback)
		feedback.GET("/best-agent", admin, a.BestRatedAgent)
		feedback.GET("/worst-agent", admin, a.WorstRatedAgent)
		feedback.GET("/agent/:agentId", admin, a.FeedbackByAgent)
		feedback.GET("/my-average", client, a.MyFeedbackAverage)
		feedback.GET("/:id", admin, a.GetFeedback)
		feedback.POST("/ticket/:ticketId", a.CreateFeedback)
		feedback.PUT("/:id", a.UpdateFeedback)
		feedback.DELETE("/:id", admin, a.DeleteFeedback)

		history := v1.Group("/history", authed)
		history.GET("", admin, filter, a.ListHistory)
		history.GET("/tickets/:ticketId", filter, a.HistoryByTicket)
		history.DELETE("/:id", admin, a.DeleteHistory)

		notifications := v1.Group("/notifications", authed)
		notifications.GET("/users/:userId", filter, a.NotificationsByUser)
		notifications.PATCH("/:id/read", a.MarkNotificationRead)
	}

	a.Engine = r
	return r
}
