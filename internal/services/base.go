package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"helpdesk/internal/auth"
	intconfig "helpdesk/internal/config"
	"helpdesk/internal/domain"
	"helpdesk/internal/domain/models"
	"helpdesk/internal/email"
	"helpdesk/internal/query"
	"helpdesk/internal/repositories"
	"helpdesk/internal/resetcode"
	"helpdesk/internal/utils"

	"github.com/jmoiron/sqlx"
)

// Deps are the long-lived collaborators shared by every service. Services
// themselves are cheap values built per request with the request id.
type Deps struct {
	DB     *sqlx.DB
	Tokens *auth.TokenService
	Mailer email.Sender
	Resets resetcode.Store

	MailFrom         string
	MailTimeout      time.Duration
	ResetCodeTTL     time.Duration
	PasswordMinScore int
	MaxOpenTickets   int

	// Dispatch runs fire-and-forget work; nil starts a goroutine.
	Dispatch func(task func())
}

func (d Deps) db() *sqlx.DB {
	if d.DB != nil {
		return d.DB
	}
	return intconfig.DB
}

func (d Deps) queryer() repositories.Queryer {
	if db := d.db(); db != nil {
		return db
	}
	return nil
}

func (d Deps) dispatch(task func()) {
	if d.Dispatch != nil {
		d.Dispatch(task)
		return
	}
	go task()
}

// inTx runs fn inside a transaction, rolling back when it fails.
func (d Deps) inTx(ctx context.Context, fn func(q repositories.Queryer) error) error {
	db := d.db()
	if db == nil {
		return errors.New("database not connected")
	}
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (d Deps) users() repositories.UserRepository       { return repositories.NewUserRepository(d.queryer()) }
func (d Deps) tickets() repositories.TicketRepository   { return repositories.NewTicketRepository(d.queryer()) }
func (d Deps) comments() repositories.CommentRepository { return repositories.NewCommentRepository(d.queryer()) }
func (d Deps) notes() repositories.NoteRepository       { return repositories.NewNoteRepository(d.queryer()) }
func (d Deps) meetings() repositories.MeetingRepository { return repositories.NewMeetingRepository(d.queryer()) }
func (d Deps) feedbacks() repositories.FeedbackRepository {
	return repositories.NewFeedbackRepository(d.queryer())
}
func (d Deps) histories() repositories.HistoryRepository {
	return repositories.NewHistoryRepository(d.queryer())
}
func (d Deps) notifications() repositories.NotificationRepository {
	return repositories.NewNotificationRepository(d.queryer())
}

// listPage runs a compiled descriptor against repo.
func listPage[T any](ctx context.Context, repo repositories.Repository[T], desc query.Descriptor) (domain.Page[T], error) {
	rows, total, err := repo.FindAndCount(ctx, repositories.OptionsFrom(desc))
	if err != nil {
		return domain.Page[T]{}, err
	}
	return domain.Page[T]{Data: rows, TotalCount: total, Offset: desc.Offset, Limit: desc.Limit}, nil
}

// logHistory records an audit line; failures are logged and swallowed.
func logHistory(ctx context.Context, repo repositories.HistoryRepository, requestID string, ticketID, userID domain.ID, description string) {
	if err := repo.Log(ctx, ticketID, userID, description); err != nil {
		utils.LogError(requestID, "history", "log", err)
	}
}

// visibleTicket loads a ticket the caller may act on. Clients are limited to
// their own tickets; staff see all of them.
func (d Deps) visibleTicket(ctx context.Context, p domain.Principal, ticketID domain.ID, module domain.Module) (models.Ticket, error) {
	t, err := d.tickets().FindByKey(ctx, ticketID)
	if err != nil {
		return models.Ticket{}, err
	}
	if t == nil {
		return models.Ticket{}, domain.NotFoundError{Resource: "ticket", Module: module}
	}
	if p.Role == domain.RoleClient && t.UserID != p.ID {
		return models.Ticket{}, domain.ForbiddenError{Msg: "ticket belongs to another user", Module: module}
	}
	return *t, nil
}
