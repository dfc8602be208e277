package query

import (
	"strconv"
	"strings"
	"time"
)

// Logic joins the terms of a Group.
type Logic int

const (
	And Logic = iota
	Or
)

// Predicate is either a Condition or a Group.
type Predicate interface {
	isPredicate()
}

// Condition is a single leaf of the predicate tree. Args hold already-parsed
// values: float64 for ranges, time.Time for dates, strings otherwise.
type Condition struct {
	Column string
	Op     Operator
	Args   []any
}

func (Condition) isPredicate() {}

// IsEmpty reports whether the condition carries no clause.
func (c Condition) IsEmpty() bool { return c.Column == "" }

// Group combines terms under one Logic.
type Group struct {
	Logic Logic
	Terms []Predicate
}

func (Group) isPredicate() {}

// AllOf builds an AND group from the non-nil predicates, collapsing a single term.
func AllOf(terms ...Predicate) Predicate {
	return group(And, terms)
}

// AnyOf builds an OR group from the non-nil predicates, collapsing a single term.
func AnyOf(terms ...Predicate) Predicate {
	return group(Or, terms)
}

func group(logic Logic, terms []Predicate) Predicate {
	kept := make([]Predicate, 0, len(terms))
	for _, t := range terms {
		switch v := t.(type) {
		case nil:
			continue
		case Condition:
			if v.IsEmpty() {
				continue
			}
		}
		kept = append(kept, t)
	}
	switch len(kept) {
	case 0:
		return nil
	case 1:
		return kept[0]
	}
	return Group{Logic: logic, Terms: kept}
}

// Equal is a fixed equality condition for server-side scoping (owner, ticket id).
// It bypasses blank-value handling, so callers must pass a valid column.
func Equal(column string, value any) Condition {
	return Condition{Column: column, Op: OpEqual, Args: []any{value}}
}

// NotEqual is the negated form of Equal.
func NotEqual(column string, value any) Condition {
	return Condition{Column: column, Op: OpNotEqual, Args: []any{value}}
}

// IsNull matches rows where column is NULL.
func IsNull(column string) Condition {
	return Condition{Column: column, Op: OpEqual, Args: []any{nil}}
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// BuildCondition turns one operator/column/raw value triple into a leaf.
// Blank values and values that fail to parse for the operator yield the empty
// condition; they never produce an error.
func BuildCondition(op Operator, column, value string) Condition {
	if value == "" {
		return Condition{}
	}
	c := Condition{Column: column, Op: op}

	switch op {
	case OpEqual, OpNotEqual:
		c.Args = []any{value}
	case OpMin, OpMax:
		f, ok := parseFloat(value)
		if !ok {
			return Condition{}
		}
		c.Args = []any{f}
	case OpLike, OpILike:
		c.Args = []any{"%" + value + "%"}
	case OpIn, OpNotIn:
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				c.Args = append(c.Args, part)
			}
		}
		if len(c.Args) == 0 {
			return Condition{}
		}
	case OpDateMin, OpDateMax, OpDateEqual:
		t, ok := parseDate(value)
		if !ok {
			return Condition{}
		}
		c.Args = []any{t}
	case OpBetween, OpNotBetween:
		// Bounds are the first two values; extra values are ignored.
		parts := strings.Split(value, ",")
		if len(parts) < 2 {
			return Condition{}
		}
		min, okMin := parseFloat(parts[0])
		max, okMax := parseFloat(parts[1])
		if !okMin || !okMax {
			return Condition{}
		}
		c.Args = []any{min, max}
	default:
		return Condition{}
	}
	return c
}

func parseFloat(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
