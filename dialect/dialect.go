// Package dialect holds the per-backend SQL details: identifier and
// literal quoting, placeholder syntax, catalog queries and the column
// type mapping used when tables are created from Go values.
//
// Literal quoting follows the standard SQL rule: every single quote
// inside a string value is doubled, so user input can never terminate
// the emitted literal early.
package dialect

import (
	"reflect"
	"strings"
	"time"
)

type Dialect interface {
	Name() string

	// QuoteIdentifier quotes a table or column name.
	QuoteIdentifier(s string) string

	// QuoteLiteral renders s as a SQL string literal with embedded
	// single quotes doubled.
	QuoteLiteral(s string) string

	// QuoteBytes renders raw bytes as a SQL literal.
	QuoteBytes(b []byte) string

	// Placeholder returns the positional parameter marker for the
	// 1-based position n.
	Placeholder(n int) string

	// TablesSQL returns a query listing user table names in one column.
	TablesSQL() string

	// ExistsTableSQL returns a query with one parameter (a table name)
	// selecting a single boolean.
	ExistsTableSQL() string

	// ColumnType maps a Go type to the column type used by WriteTable.
	ColumnType(t reflect.Type) string
}

var dialects = map[string]Dialect{}

// Register makes a dialect available under a driver name. Drivers
// register their dialect in init.
func Register(driverName string, d Dialect) {
	dialects[driverName] = d
}

// ByName returns the dialect registered for a driver name, falling back
// to ANSI for drivers without specific SQL details (e.g. unknown ODBC
// backends).
func ByName(driverName string) Dialect {
	if d, ok := dialects[driverName]; ok {
		return d
	}
	return ANSI
}

func init() {
	Register("odbc", ANSI)
	Register("postgres", Postgres)
	Register("sqlite", SQLite)
}

// doubleQuote implements the shared quoting rules.
func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func quoteLiteral(s string) string {
	return `'` + strings.ReplaceAll(s, `'`, `''`) + `'`
}

const timestampLayout = "2006-01-02 15:04:05.999999-07:00"

func formatTime(t time.Time) string {
	return t.Format(timestampLayout)
}
