package sqlbase

import (
	"regexp"
)

// Dialect captures the differences between the supported SQL engines.
type Dialect int

const (
	DialectPostgres Dialect = iota
	DialectSQLite
)

var placeholderPattern = regexp.MustCompile(`\$(\d+)`)

// Rebind rewrites $n placeholders into the dialect's positional form.
// SQLite accepts ?NNN, which keeps repeated parameters working.
func (d Dialect) Rebind(query string) string {
	if d == DialectSQLite {
		return placeholderPattern.ReplaceAllString(query, "?$1")
	}

	return query
}

func (d Dialect) String() string {
	switch d {
	case DialectPostgres:
		return "postgres"
	case DialectSQLite:
		return "sqlite"
	default:
		return "unknown"
	}
}
