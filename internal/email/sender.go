package email

import (
	"context"
	"log"
)

// Message represents an email to be sent.
type Message struct {
	From    string
	To      []string
	Subject string
	Body    string
}

// Sender abstracts email sending for DI and testing.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// LogSender writes messages to the log instead of delivering them.
// It is used when no SMTP host is configured.
type LogSender struct{}

func (LogSender) Send(_ context.Context, msg Message) error {
	log.Printf("[EMAIL] action=send_skipped to=%v subject=%q", msg.To, msg.Subject)
	return nil
}
