package repositories

import (
	"context"
	"regexp"
	"testing"
	"time"

	"helpdesk/internal/domain"
	"helpdesk/internal/query"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "mysql"), mock
}

var ticketRowColumns = []string{"id", "title", "description", "priority", "status", "category", "user_id", "assigned_to", "created_at", "updated_at"}

func TestFindAndCountJoinsDottedPaths(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTicketRepository(db)

	where := query.AllOf(
		query.BuildCondition(query.OpILike, "assignedTo.email", "agent"),
		query.Equal("status", "PENDING"),
	)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM `tickets` LEFT JOIN `users` AS `assignedTo` ON `assignedTo`.`id` = `tickets`.`assigned_to` WHERE (LOWER(`assignedTo`.`email`) LIKE LOWER(?) AND `tickets`.`status` = ?) AND `tickets`.`deleted_at` IS NULL")).
		WithArgs("%agent%", "PENDING").
		WillReturnRows(sqlmock.NewRows([]string{"COUNT(*)"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT `tickets`.`id`, `tickets`.`title`")).
		WithArgs("%agent%", "PENDING").
		WillReturnRows(sqlmock.NewRows(ticketRowColumns).
			AddRow(3, "Printer", "jammed", "HIGH", "PENDING", "BUG", 9, nil, now, now))

	rows, total, err := repo.FindAndCount(context.Background(), FindOptions{
		Where: where,
		Order: []query.Order{{Column: "created_at", Direction: query.Desc}},
		Limit: 5,
	})
	if err != nil {
		t.Fatalf("FindAndCount: %v", err)
	}
	if total != 1 || len(rows) != 1 {
		t.Fatalf("unexpected result total=%d rows=%d", total, len(rows))
	}
	if rows[0].Title != "Printer" || rows[0].AssignedTo != nil {
		t.Fatalf("unexpected row %+v", rows[0])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestFindAndCountDropsUnknownColumns(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	where := query.AllOf(query.Equal("password", "x"), query.Equal("role", "AGENT"))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM `users` WHERE (`users`.`role` = ?) AND `users`.`deleted_at` IS NULL")).
		WithArgs("AGENT").
		WillReturnRows(sqlmock.NewRows([]string{"COUNT(*)"}).AddRow(0))
	mock.ExpectQuery(regexp.QuoteMeta("FROM `users` WHERE (`users`.`role` = ?)")).
		WithArgs("AGENT").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	if _, _, err := repo.FindAndCount(context.Background(), FindOptions{Where: where}); err != nil {
		t.Fatalf("FindAndCount: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestFindByKeyMissingReturnsNil(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTicketRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM `tickets` WHERE `tickets`.`id` = ? AND `tickets`.`deleted_at` IS NULL LIMIT 1")).
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows(ticketRowColumns))

	got, err := repo.FindByKey(context.Background(), 404)
	if err != nil {
		t.Fatalf("FindByKey: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil ticket, got %+v", got)
	}
}

func TestCreateTranslatesDuplicateKey(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `users` (email,first_name,password) VALUES (?,?,?)")).
		WithArgs("a@b.c", "Ann", "hash").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	_, err := repo.Create(context.Background(), map[string]any{
		"email":      "a@b.c",
		"first_name": "Ann",
		"password":   "hash",
		"bogus":      "dropped",
	})
	if !domain.IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestCreateReturnsID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewHistoryRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `histories` (description,ticket_id,user_id) VALUES (?,?,?)")).
		WithArgs("Ticket resolved", int64(5), int64(2)).
		WillReturnResult(sqlmock.NewResult(11, 1))

	if err := repo.Log(context.Background(), 5, 2, "Ticket resolved"); err != nil {
		t.Fatalf("Log: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDestroySoftDeletes(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCommentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE `comments` SET deleted_at = ? WHERE deleted_at IS NULL AND id = ?")).
		WithArgs(sqlmock.AnyArg(), int64(8)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Destroy(context.Background(), 8); err != nil {
		t.Fatalf("Destroy: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpdateIgnoresUnknownAttrs(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTicketRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE `tickets` SET status = ? WHERE id = ? AND deleted_at IS NULL")).
		WithArgs("RESOLVED", int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Update(context.Background(), 4, map[string]any{"status": "RESOLVED", "id": 99, "evil": 1}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSolvedCounts(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTicketRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("GROUP BY `tickets`.`assigned_to` ORDER BY solved_count DESC")).
		WithArgs("RESOLVED").
		WillReturnRows(sqlmock.NewRows([]string{"agent_id", "solved_count"}).AddRow(2, 7).AddRow(3, 7).AddRow(4, 1))

	rows, err := repo.SolvedCounts(context.Background(), query.Desc)
	if err != nil {
		t.Fatalf("SolvedCounts: %v", err)
	}
	if len(rows) != 3 || rows[0].AgentID != 2 || rows[0].Solved != 7 {
		t.Fatalf("unexpected rows %+v", rows)
	}
}

func TestUpdateIfGuardsTransition(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTicketRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE `tickets` SET status = ? WHERE `tickets`.`id` = ? AND `tickets`.`status` = ? AND `tickets`.`deleted_at` IS NULL")).
		WithArgs("RESOLVED", int64(4), "IN_PROGRESS").
		WillReturnResult(sqlmock.NewResult(0, 0))

	changed, err := repo.UpdateIf(context.Background(), 4, map[string]any{"status": "RESOLVED"}, query.Equal("status", "IN_PROGRESS"))
	if err != nil {
		t.Fatalf("UpdateIf: %v", err)
	}
	if changed {
		t.Fatalf("expected no change when guard fails")
	}
}
