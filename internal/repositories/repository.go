package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	intconfig "helpdesk/internal/config"
	intdb "helpdesk/internal/db"
	"helpdesk/internal/domain"
	"helpdesk/internal/query"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

// Queryer is satisfied by *sqlx.DB and *sqlx.Tx.
type Queryer interface {
	sqlx.ExtContext
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
}

// Association is a belongs-to relation reachable from dotted filter paths.
// The joined table is aliased by the association name.
type Association struct {
	Table      string
	LocalKey   string
	ForeignKey string
	Columns    []string
}

// Table describes what a repository may touch. Only Columns are selected,
// filtered or sorted; WriteOnly columns can be written but never read back.
type Table struct {
	Name         string
	Columns      []string
	WriteOnly    []string
	Associations map[string]Association
	SoftDelete   bool
}

func (t Table) hasColumn(col string) bool {
	return contains(t.Columns, col)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func (t Table) known(relation, column string) bool {
	if relation == "" {
		return t.hasColumn(column)
	}
	assoc, ok := t.Associations[relation]
	return ok && contains(assoc.Columns, column)
}

// Resolver renders validated paths for this table.
func (t Table) Resolver() query.Resolver {
	return query.TableResolver(t.Name, t.known)
}

func (t Table) col(name string) string {
	return query.QuotePath(t.Name, name)
}

// FindOptions is the repository view of a compiled query.Descriptor.
type FindOptions struct {
	Where  query.Predicate
	Order  []query.Order
	Limit  int
	Offset int
}

// OptionsFrom copies the list-relevant parts of a descriptor.
func OptionsFrom(d query.Descriptor) FindOptions {
	return FindOptions{Where: d.Where, Order: d.Order, Limit: d.Limit, Offset: d.Offset}
}

// Repository is the generic CRUD layer over one table.
type Repository[T any] struct {
	DB    Queryer
	Table Table
}

var errNoDB = errors.New("database not connected")

func (r Repository[T]) db() (Queryer, error) {
	if r.DB != nil {
		return r.DB, nil
	}
	if intconfig.DB != nil {
		return intconfig.DB, nil
	}
	return nil, errNoDB
}

func (r Repository[T]) selectColumns() []string {
	cols := make([]string, len(r.Table.Columns))
	for i, c := range r.Table.Columns {
		cols[i] = r.Table.col(c)
	}
	return cols
}

func (r Repository[T]) notDeleted() sq.Sqlizer {
	if !r.Table.SoftDelete {
		return nil
	}
	return sq.Eq{r.Table.col("deleted_at"): nil}
}

// joins adds LEFT JOINs for every association the predicate or order refers to.
func (r Repository[T]) joins(b sq.SelectBuilder, where query.Predicate, order []query.Order) sq.SelectBuilder {
	used := map[string]struct{}{}
	collectRelations(where, used)
	for _, o := range order {
		if rel, _ := query.SplitPath(o.Column); rel != "" {
			used[rel] = struct{}{}
		}
	}

	names := make([]string, 0, len(used))
	for name := range used {
		if _, ok := r.Table.Associations[name]; ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	for _, name := range names {
		a := r.Table.Associations[name]
		fk := a.ForeignKey
		if fk == "" {
			fk = "id"
		}
		b = b.LeftJoin(fmt.Sprintf("%s AS %s ON %s = %s",
			query.QuoteIdentifier(a.Table), query.QuoteIdentifier(name),
			query.QuotePath(name, fk), r.Table.col(a.LocalKey)))
	}
	return b
}

func collectRelations(p query.Predicate, into map[string]struct{}) {
	switch v := p.(type) {
	case query.Condition:
		if rel, _ := query.SplitPath(v.Column); rel != "" {
			into[rel] = struct{}{}
		}
	case query.Group:
		for _, t := range v.Terms {
			collectRelations(t, into)
		}
	}
}

func (r Repository[T]) filtered(b sq.SelectBuilder, where query.Predicate) sq.SelectBuilder {
	if w := query.ToSqlizer(where, r.Table.Resolver()); w != nil {
		b = b.Where(w)
	}
	if nd := r.notDeleted(); nd != nil {
		b = b.Where(nd)
	}
	return b
}

// FindAndCount returns one page of rows and the total matching count.
func (r Repository[T]) FindAndCount(ctx context.Context, opts FindOptions) ([]T, int, error) {
	db, err := r.db()
	if err != nil {
		return nil, 0, err
	}

	total, err := r.countPredicate(ctx, db, opts.Where)
	if err != nil {
		return nil, 0, err
	}

	listQ := r.filtered(r.joins(sq.Select(r.selectColumns()...).From(query.QuoteIdentifier(r.Table.Name)), opts.Where, opts.Order), opts.Where)
	if order := query.OrderBy(opts.Order, r.Table.Resolver()); len(order) > 0 {
		listQ = listQ.OrderBy(order...)
	}
	if opts.Limit > 0 {
		listQ = listQ.Limit(uint64(opts.Limit))
	}
	if opts.Offset > 0 {
		listQ = listQ.Offset(uint64(opts.Offset))
	}

	listSQL, listArgs, err := listQ.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build select %s: %w", r.Table.Name, err)
	}
	rows := []T{}
	if err := db.SelectContext(ctx, &rows, listSQL, listArgs...); err != nil {
		return nil, 0, fmt.Errorf("select %s: %w", r.Table.Name, err)
	}
	return rows, total, nil
}

// FindAll returns every row matching where, ordered, without paging.
func (r Repository[T]) FindAll(ctx context.Context, where query.Predicate, order ...query.Order) ([]T, error) {
	rows, _, err := r.FindAndCount(ctx, FindOptions{Where: where, Order: order})
	return rows, err
}

// FindByKey loads one row by primary key. A missing row yields (nil, nil).
func (r Repository[T]) FindByKey(ctx context.Context, id domain.ID) (*T, error) {
	db, err := r.db()
	if err != nil {
		return nil, err
	}
	b := sq.Select(r.selectColumns()...).
		From(query.QuoteIdentifier(r.Table.Name)).
		Where(sq.Eq{r.Table.col("id"): id}).
		Limit(1)
	if nd := r.notDeleted(); nd != nil {
		b = b.Where(nd)
	}
	sqlStr, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get %s: %w", r.Table.Name, err)
	}

	var row T
	if err := db.GetContext(ctx, &row, sqlStr, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get %s: %w", r.Table.Name, err)
	}
	return &row, nil
}

// FindByKeys loads rows for a set of ids, in no particular order.
func (r Repository[T]) FindByKeys(ctx context.Context, ids []domain.ID) ([]T, error) {
	if len(ids) == 0 {
		return []T{}, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return r.FindAll(ctx, query.Condition{Column: "id", Op: query.OpIn, Args: args})
}

// FindOne returns the first row matching where, or nil.
func (r Repository[T]) FindOne(ctx context.Context, where query.Predicate) (*T, error) {
	rows, _, err := r.FindAndCount(ctx, FindOptions{Where: where, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// writable keeps attrs naming real, non-key columns.
func (r Repository[T]) writable(attrs map[string]any) map[string]any {
	out := make(map[string]any, len(attrs))
	for k, v := range attrs {
		if k == "id" || k == "created_at" || k == "deleted_at" {
			continue
		}
		if !r.Table.hasColumn(k) && !contains(r.Table.WriteOnly, k) {
			continue
		}
		out[k] = v
	}
	return out
}

func (r Repository[T]) translate(action string, err error) error {
	if intdb.IsDuplicateKey(err) {
		return domain.ConflictError{Resource: r.Table.Name, Msg: "duplicate value", Err: err}
	}
	return fmt.Errorf("%s %s: %w", action, r.Table.Name, err)
}

// Create inserts attrs and returns the new id.
func (r Repository[T]) Create(ctx context.Context, attrs map[string]any) (domain.ID, error) {
	db, err := r.db()
	if err != nil {
		return 0, err
	}
	values := r.writable(attrs)
	if len(values) == 0 {
		return 0, domain.ValidationError{Msg: "nothing to insert"}
	}
	sqlStr, args, err := sq.Insert(query.QuoteIdentifier(r.Table.Name)).SetMap(values).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build insert %s: %w", r.Table.Name, err)
	}
	res, err := db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return 0, r.translate("insert", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert %s: %w", r.Table.Name, err)
	}
	return id, nil
}

// Update applies attrs to one row. Unknown keys are ignored.
func (r Repository[T]) Update(ctx context.Context, id domain.ID, attrs map[string]any) error {
	db, err := r.db()
	if err != nil {
		return err
	}
	values := r.writable(attrs)
	if len(values) == 0 {
		return nil
	}
	b := sq.Update(query.QuoteIdentifier(r.Table.Name)).SetMap(values).Where(sq.Eq{"id": id})
	if r.Table.SoftDelete {
		b = b.Where(sq.Eq{"deleted_at": nil})
	}
	sqlStr, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("build update %s: %w", r.Table.Name, err)
	}
	if _, err := db.ExecContext(ctx, sqlStr, args...); err != nil {
		return r.translate("update", err)
	}
	return nil
}

// UpdateIf applies attrs only while guard still holds for the row and reports
// whether the row matched. It is the compare-and-set used by state transitions;
// the DSN sets clientFoundRows so an unchanged row still counts as matched.
func (r Repository[T]) UpdateIf(ctx context.Context, id domain.ID, attrs map[string]any, guard query.Predicate) (bool, error) {
	db, err := r.db()
	if err != nil {
		return false, err
	}
	values := r.writable(attrs)
	if len(values) == 0 {
		return false, nil
	}
	b := sq.Update(query.QuoteIdentifier(r.Table.Name)).SetMap(values).Where(sq.Eq{r.Table.col("id"): id})
	if g := query.ToSqlizer(guard, r.Table.Resolver()); g != nil {
		b = b.Where(g)
	}
	if nd := r.notDeleted(); nd != nil {
		b = b.Where(nd)
	}
	sqlStr, args, err := b.ToSql()
	if err != nil {
		return false, fmt.Errorf("build update %s: %w", r.Table.Name, err)
	}
	res, err := db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return false, r.translate("update", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update %s: %w", r.Table.Name, err)
	}
	return n > 0, nil
}

// Destroy soft-deletes a row when the table supports it, otherwise removes it.
func (r Repository[T]) Destroy(ctx context.Context, id domain.ID) error {
	db, err := r.db()
	if err != nil {
		return err
	}
	var (
		sqlStr string
		args   []any
	)
	if r.Table.SoftDelete {
		sqlStr, args, err = sq.Update(query.QuoteIdentifier(r.Table.Name)).
			Set("deleted_at", time.Now().UTC()).
			Where(sq.Eq{"id": id, "deleted_at": nil}).
			ToSql()
	} else {
		sqlStr, args, err = sq.Delete(query.QuoteIdentifier(r.Table.Name)).Where(sq.Eq{"id": id}).ToSql()
	}
	if err != nil {
		return fmt.Errorf("build delete %s: %w", r.Table.Name, err)
	}
	if _, err := db.ExecContext(ctx, sqlStr, args...); err != nil {
		return r.translate("delete", err)
	}
	return nil
}

// Count returns the number of live rows matching where (nil means all).
func (r Repository[T]) Count(ctx context.Context, where sq.Sqlizer) (int, error) {
	db, err := r.db()
	if err != nil {
		return 0, err
	}
	b := sq.Select("COUNT(*)").From(query.QuoteIdentifier(r.Table.Name))
	if where != nil {
		b = b.Where(where)
	}
	if nd := r.notDeleted(); nd != nil {
		b = b.Where(nd)
	}
	sqlStr, args, err := b.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count %s: %w", r.Table.Name, err)
	}
	var n int
	if err := db.GetContext(ctx, &n, sqlStr, args...); err != nil {
		return 0, fmt.Errorf("count %s: %w", r.Table.Name, err)
	}
	return n, nil
}

// CountWhere is Count for a predicate tree, joining associations it refers to.
func (r Repository[T]) CountWhere(ctx context.Context, where query.Predicate) (int, error) {
	db, err := r.db()
	if err != nil {
		return 0, err
	}
	return r.countPredicate(ctx, db, where)
}

func (r Repository[T]) countPredicate(ctx context.Context, db Queryer, where query.Predicate) (int, error) {
	b := r.filtered(r.joins(sq.Select("COUNT(*)").From(query.QuoteIdentifier(r.Table.Name)), where, nil), where)
	sqlStr, args, err := b.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count %s: %w", r.Table.Name, err)
	}
	var n int
	if err := db.GetContext(ctx, &n, sqlStr, args...); err != nil {
		return 0, fmt.Errorf("count %s: %w", r.Table.Name, err)
	}
	return n, nil
}
