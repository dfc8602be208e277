package query

import (
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
)

// Resolver maps a validated column path to a quoted SQL reference.
// Returning false drops the clause (unknown column or relation).
type Resolver func(path string) (string, bool)

// ToSqlizer renders a predicate tree for squirrel. A nil result means no WHERE clause.
func ToSqlizer(p Predicate, resolve Resolver) sq.Sqlizer {
	switch v := p.(type) {
	case nil:
		return nil
	case Condition:
		if v.IsEmpty() || !IsValidColumn(v.Column) {
			return nil
		}
		ref, ok := resolve(v.Column)
		if !ok {
			return nil
		}
		return conditionSQL(v, ref)
	case Group:
		parts := make([]sq.Sqlizer, 0, len(v.Terms))
		for _, t := range v.Terms {
			if s := ToSqlizer(t, resolve); s != nil {
				parts = append(parts, s)
			}
		}
		if len(parts) == 0 {
			return nil
		}
		if v.Logic == Or {
			return sq.Or(parts)
		}
		return sq.And(parts)
	}
	return nil
}

func conditionSQL(c Condition, ref string) sq.Sqlizer {
	switch c.Op {
	case OpEqual, OpDateEqual:
		return sq.Eq{ref: c.Args[0]}
	case OpNotEqual:
		return sq.NotEq{ref: c.Args[0]}
	case OpMin, OpDateMin:
		return sq.GtOrEq{ref: c.Args[0]}
	case OpMax, OpDateMax:
		return sq.LtOrEq{ref: c.Args[0]}
	case OpLike:
		return sq.Like{ref: c.Args[0]}
	case OpILike:
		return sq.Expr(fmt.Sprintf("LOWER(%s) LIKE LOWER(?)", ref), c.Args[0])
	case OpIn:
		return sq.Eq{ref: c.Args}
	case OpNotIn:
		return sq.NotEq{ref: c.Args}
	case OpBetween:
		return sq.Expr(fmt.Sprintf("%s BETWEEN ? AND ?", ref), c.Args[0], c.Args[1])
	case OpNotBetween:
		return sq.Expr(fmt.Sprintf("%s NOT BETWEEN ? AND ?", ref), c.Args[0], c.Args[1])
	}
	return nil
}

// OrderBy renders compiled sort entries, dropping those the resolver rejects.
func OrderBy(orders []Order, resolve Resolver) []string {
	out := make([]string, 0, len(orders))
	for _, o := range orders {
		ref, ok := resolve(o.Column)
		if !ok {
			continue
		}
		out = append(out, ref+" "+string(o.Direction))
	}
	return out
}

// TableResolver qualifies undotted columns with table and dotted ones with the
// alias of their relation. known reports whether a (relation, column) pair exists;
// a nil known accepts everything.
func TableResolver(table string, known func(relation, column string) bool) Resolver {
	return func(path string) (string, bool) {
		if !IsValidColumn(path) {
			return "", false
		}
		relation, column := SplitPath(path)
		if known != nil && !known(relation, column) {
			return "", false
		}
		if relation == "" {
			return QuotePath(table, column), true
		}
		return QuotePath(strings.ReplaceAll(relation, ".", "_"), column), true
	}
}
