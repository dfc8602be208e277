package repositories

import (
	"context"
	"fmt"

	"helpdesk/internal/domain"
	"helpdesk/internal/domain/models"
	"helpdesk/internal/query"

	sq "github.com/Masterminds/squirrel"
)

type TicketRepository struct {
	Repository[models.Ticket]
}

func NewTicketRepository(db Queryer) TicketRepository {
	return TicketRepository{Repository[models.Ticket]{DB: db, Table: TicketsTable}}
}

// Summaries loads ticket summaries keyed by id.
func (r TicketRepository) Summaries(ctx context.Context, ids []domain.ID) (map[domain.ID]*models.TicketSummary, error) {
	out := make(map[domain.ID]*models.TicketSummary, len(ids))
	tickets, err := r.FindByKeys(ctx, uniqueIDs(ids))
	if err != nil {
		return nil, err
	}
	for _, t := range tickets {
		out[t.ID] = t.Summary()
	}
	return out, nil
}

// CountOpenByUser counts tickets of userID still waiting on staff.
func (r TicketRepository) CountOpenByUser(ctx context.Context, userID domain.ID) (int, error) {
	return r.Count(ctx, sq.Eq{
		r.Table.col("user_id"): userID,
		r.Table.col("status"):  []string{string(domain.TicketPending), string(domain.TicketInProgress)},
	})
}

// SolvedCounts ranks agents by resolved tickets, most first for Desc.
func (r TicketRepository) SolvedCounts(ctx context.Context, dir query.Direction) ([]models.AgentCount, error) {
	db, err := r.db()
	if err != nil {
		return nil, err
	}
	if dir != query.Asc {
		dir = query.Desc
	}
	sqlStr, args, err := sq.Select(
		r.Table.col("assigned_to")+" AS agent_id",
		"COUNT("+r.Table.col("id")+") AS solved_count",
	).
		From(query.QuoteIdentifier(r.Table.Name)).
		Where(sq.Eq{r.Table.col("status"): string(domain.TicketResolved)}).
		Where(sq.NotEq{r.Table.col("assigned_to"): nil}).
		Where(r.notDeleted()).
		GroupBy(r.Table.col("assigned_to")).
		OrderBy("solved_count " + string(dir)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build solved counts: %w", err)
	}
	rows := []models.AgentCount{}
	if err := db.SelectContext(ctx, &rows, sqlStr, args...); err != nil {
		return nil, fmt.Errorf("solved counts: %w", err)
	}
	return rows, nil
}
