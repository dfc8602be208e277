package query

import (
	"regexp"
	"strings"
)

var columnPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)

// IsValidColumn reports whether name is a dotted identifier path such as
// "status" or "assignedTo.email". It is the only gate user-supplied column
// names pass before being rendered into SQL.
func IsValidColumn(name string) bool {
	return columnPattern.MatchString(name)
}

// QuoteIdentifier quotes a single identifier for MySQL.
func QuoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// QuotePath renders each segment quoted and joins them with dots.
func QuotePath(parts ...string) string {
	quoted := make([]string, len(parts))
	for i, p := range parts {
		quoted[i] = QuoteIdentifier(p)
	}
	return strings.Join(quoted, ".")
}

// SplitPath separates a relation path into its association prefix and final column.
// "status" yields ("", "status"); "assignedTo.email" yields ("assignedTo", "email").
func SplitPath(path string) (relation, column string) {
	i := strings.LastIndexByte(path, '.')
	if i < 0 {
		return "", path
	}
	return path[:i], path[i+1:]
}
