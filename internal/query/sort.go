package query

import "strings"

// Direction is an ORDER BY direction.
type Direction string

const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)

// Order is one compiled sort entry.
type Order struct {
	Column    string
	Direction Direction
}

// BuildSorting compiles the parallel sort_by/order_by lists. Columns failing
// validation are skipped, as are entries whose direction is neither ASC nor DESC.
// A missing i-th direction reuses the first one, or ASC when none was given.
func BuildSorting(sortBy, orderBy string, d Defaults) []Order {
	if strings.TrimSpace(sortBy) == "" {
		sortBy = d.SortBy
	}
	if strings.TrimSpace(orderBy) == "" {
		orderBy = d.OrderBy
	}

	columns := splitList(sortBy)
	directions := splitList(orderBy)

	orders := make([]Order, 0, len(columns))
	for i, col := range columns {
		if !IsValidColumn(col) {
			continue
		}
		dir := string(Asc)
		switch {
		case i < len(directions) && directions[i] != "":
			dir = directions[i]
		case len(directions) > 0 && directions[0] != "":
			dir = directions[0]
		}
		dir = strings.ToUpper(dir)
		if dir != string(Asc) && dir != string(Desc) {
			continue
		}
		orders = append(orders, Order{Column: col, Direction: Direction(dir)})
	}
	return orders
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
