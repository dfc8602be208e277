package services

import (
	"context"
	"fmt"
	"html"
	"time"

	"helpdesk/internal/domain"
	"helpdesk/internal/email"
	"helpdesk/internal/utils"
)

const defaultMailTimeout = 10 * time.Second

// Notifier stores an in-app notification and emails the same message.
// Neither step fails the calling operation.
type Notifier struct {
	Deps
	RequestID string
}

func (n Notifier) Notify(ctx context.Context, userID domain.ID, subject, message string) {
	if userID == 0 {
		return
	}
	if _, err := n.notifications().Create(ctx, map[string]any{"user_id": userID, "message": message}); err != nil {
		utils.LogError(n.RequestID, "notification", "create", err)
	}

	if n.Mailer == nil {
		return
	}
	user, err := n.users().FindByKey(ctx, userID)
	if err != nil || user == nil || user.Email == "" {
		if err != nil {
			utils.LogError(n.RequestID, "notification", "lookup_user", err)
		}
		return
	}
	n.Mail(email.Message{
		To:      []string{user.Email},
		Subject: subject,
		Body:    "<p>" + html.EscapeString(message) + "</p>",
	})
}

// Mail sends msg in the background with its own deadline, detached from the request.
func (n Notifier) Mail(msg email.Message) {
	if n.Mailer == nil {
		return
	}
	if msg.From == "" {
		msg.From = n.MailFrom
	}
	timeout := n.MailTimeout
	if timeout <= 0 {
		timeout = defaultMailTimeout
	}
	mailer, requestID := n.Mailer, n.RequestID
	n.dispatch(func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := mailer.Send(ctx, msg); err != nil {
			utils.LogError(requestID, "email", "send", fmt.Errorf("to=%v: %w", msg.To, err))
		}
	})
}
