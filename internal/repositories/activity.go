package repositories

import (
	"context"
	"fmt"

	"helpdesk/internal/domain"
	"helpdesk/internal/domain/models"
	"helpdesk/internal/query"

	sq "github.com/Masterminds/squirrel"
)

type CommentRepository struct {
	Repository[models.Comment]
}

func NewCommentRepository(db Queryer) CommentRepository {
	return CommentRepository{Repository[models.Comment]{DB: db, Table: CommentsTable}}
}

type NoteRepository struct {
	Repository[models.Note]
}

func NewNoteRepository(db Queryer) NoteRepository {
	return NoteRepository{Repository[models.Note]{DB: db, Table: NotesTable}}
}

type HistoryRepository struct {
	Repository[models.History]
}

func NewHistoryRepository(db Queryer) HistoryRepository {
	return HistoryRepository{Repository[models.History]{DB: db, Table: HistoriesTable}}
}

// Log appends one audit line. userID 0 records a system action.
func (r HistoryRepository) Log(ctx context.Context, ticketID, userID domain.ID, description string) error {
	attrs := map[string]any{"ticket_id": ticketID, "description": description}
	if userID != 0 {
		attrs["user_id"] = userID
	}
	_, err := r.Create(ctx, attrs)
	return err
}

type NotificationRepository struct {
	Repository[models.Notification]
}

func NewNotificationRepository(db Queryer) NotificationRepository {
	return NotificationRepository{Repository[models.Notification]{DB: db, Table: NotificationsTable}}
}

type MeetingRepository struct {
	Repository[models.Meeting]
}

func NewMeetingRepository(db Queryer) MeetingRepository {
	return MeetingRepository{Repository[models.Meeting]{DB: db, Table: MeetingsTable}}
}

type FeedbackRepository struct {
	Repository[models.Feedback]
}

func NewFeedbackRepository(db Queryer) FeedbackRepository {
	return FeedbackRepository{Repository[models.Feedback]{DB: db, Table: FeedbacksTable}}
}

// AgentRatings averages ratings per assigned agent, best first. A non-zero
// agentID restricts the result to that agent.
func (r FeedbackRepository) AgentRatings(ctx context.Context, agentID domain.ID, dir query.Direction) ([]models.AgentRating, error) {
	db, err := r.db()
	if err != nil {
		return nil, err
	}
	if dir != query.Asc {
		dir = query.Desc
	}
	assigned := query.QuotePath("t", "assigned_to")
	b := sq.Select(
		assigned+" AS agent_id",
		"COUNT("+r.Table.col("id")+") AS total_feedbacks",
		"AVG("+r.Table.col("rating")+") AS average_rating",
	).
		From(query.QuoteIdentifier(r.Table.Name)).
		Join(fmt.Sprintf("%s AS %s ON %s = %s",
			query.QuoteIdentifier(TicketsTable.Name), query.QuoteIdentifier("t"),
			query.QuotePath("t", "id"), r.Table.col("ticket_id"))).
		Where(sq.NotEq{r.Table.col("rating"): nil}).
		Where(sq.NotEq{assigned: nil}).
		Where(r.notDeleted())
	if agentID != 0 {
		b = b.Where(sq.Eq{assigned: agentID})
	}
	sqlStr, args, err := b.GroupBy(assigned).OrderBy("average_rating " + string(dir)).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build agent ratings: %w", err)
	}
	rows := []models.AgentRating{}
	if err := db.SelectContext(ctx, &rows, sqlStr, args...); err != nil {
		return nil, fmt.Errorf("agent ratings: %w", err)
	}
	return rows, nil
}

// ClientAverage returns how many rated feedbacks clientID left and their mean.
func (r FeedbackRepository) ClientAverage(ctx context.Context, clientID domain.ID) (int, float64, error) {
	db, err := r.db()
	if err != nil {
		return 0, 0, err
	}
	sqlStr, args, err := sq.Select("COUNT(*) AS total", "COALESCE(AVG("+r.Table.col("rating")+"), 0) AS average").
		From(query.QuoteIdentifier(r.Table.Name)).
		Where(sq.Eq{r.Table.col("client_id"): clientID}).
		Where(sq.NotEq{r.Table.col("rating"): nil}).
		Where(r.notDeleted()).
		ToSql()
	if err != nil {
		return 0, 0, fmt.Errorf("build client average: %w", err)
	}
	var row struct {
		Total   int     `db:"total"`
		Average float64 `db:"average"`
	}
	if err := db.GetContext(ctx, &row, sqlStr, args...); err != nil {
		return 0, 0, fmt.Errorf("client average: %w", err)
	}
	return row.Total, row.Average, nil
}
