package query

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Reserved query keys consumed by the compiler itself.
const (
	KeyOffset   = "offset"
	KeyLimit    = "limit"
	KeySortBy   = "sort_by"
	KeyOrderBy  = "order_by"
	KeyLanguage = "language"

	orPrefix = "OR_"
)

var reservedKeys = map[string]struct{}{
	KeyOffset:   {},
	KeyLimit:    {},
	KeySortBy:   {},
	KeyOrderBy:  {},
	KeyLanguage: {},
}

// Defaults configures pagination and sorting fallbacks.
type Defaults struct {
	Limit    int
	Offset   int
	MaxLimit int
	SortBy   string
	OrderBy  string
	Language string
}

// Descriptor is the compiled form of a list request. It is a value type;
// helpers such as Scope return modified copies.
type Descriptor struct {
	Offset   int
	Limit    int
	Order    []Order
	Where    Predicate
	Language string
}

// Scope returns a copy whose predicate is additionally constrained by extra.
func (d Descriptor) Scope(extra ...Predicate) Descriptor {
	terms := append([]Predicate{d.Where}, extra...)
	out := d
	out.Where = AllOf(terms...)
	out.Order = append([]Order(nil), d.Order...)
	return out
}

// Compile turns query-string values into a Descriptor. Malformed filter values
// degrade to no clause; the error return only reports unusable defaults.
func Compile(values url.Values, d Defaults) (Descriptor, error) {
	if d.Limit <= 0 {
		return Descriptor{}, fmt.Errorf("query: default limit must be positive, got %d", d.Limit)
	}
	if d.Offset < 0 {
		return Descriptor{}, fmt.Errorf("query: default offset must not be negative, got %d", d.Offset)
	}

	desc := Descriptor{
		Offset:   parseBound(values.Get(KeyOffset), d.Offset),
		Limit:    parseBound(values.Get(KeyLimit), d.Limit),
		Order:    BuildSorting(values.Get(KeySortBy), values.Get(KeyOrderBy), d),
		Language: strings.ToUpper(strings.TrimSpace(values.Get(KeyLanguage))),
	}
	if desc.Limit == 0 {
		desc.Limit = d.Limit
	}
	if d.MaxLimit > 0 && desc.Limit > d.MaxLimit {
		desc.Limit = d.MaxLimit
	}
	if desc.Language == "" {
		desc.Language = d.Language
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		if _, reserved := reservedKeys[k]; !reserved {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var ands, ors []Predicate
	for _, key := range keys {
		column, op, isOr := ParseKey(key)
		if !IsValidColumn(column) {
			continue
		}
		for _, raw := range values[key] {
			cond := BuildCondition(op, column, raw)
			if cond.IsEmpty() {
				continue
			}
			if isOr {
				ors = append(ors, cond)
			} else {
				ands = append(ands, cond)
			}
		}
	}

	desc.Where = combine(ands, ors)
	return desc, nil
}

// ParseKey splits a filter key of the form [OR_]{OPERATOR_}COLUMN.
// The operator prefix is only considered when the key starts with "P" and has
// an underscore after the first character; unknown tokens mean equality.
func ParseKey(key string) (column string, op Operator, isOr bool) {
	if strings.HasPrefix(key, orPrefix) {
		isOr = true
		key = strings.TrimPrefix(key, orPrefix)
	}
	op = OpEqual
	if strings.HasPrefix(key, "P") {
		if i := strings.IndexByte(key, '_'); i > 0 {
			op, _ = ParseOperator(key[:i])
			return key[i+1:], op, isOr
		}
	}
	return key, op, isOr
}

func combine(ands, ors []Predicate) Predicate {
	var andGroup, orGroup Predicate
	if len(ands) > 0 {
		andGroup = Group{Logic: And, Terms: ands}
	}
	if len(ors) > 0 {
		orGroup = Group{Logic: Or, Terms: ors}
	}
	switch {
	case andGroup != nil && orGroup != nil:
		return Group{Logic: And, Terms: []Predicate{andGroup, orGroup}}
	case andGroup != nil:
		return andGroup
	case orGroup != nil:
		return orGroup
	}
	return nil
}

func parseBound(raw string, def int) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return def
	}
	return n
}
