package dialect

import (
	"encoding/hex"
	"reflect"
	"strconv"
)

// Postgres overrides the ANSI defaults with $n placeholders, bytea
// literals and the pg_catalog table listing.
var Postgres Dialect = postgres{}

type postgres struct {
	ansi
}

func (postgres) Name() string { return "postgres" }

func (postgres) QuoteBytes(b []byte) string {
	return `'\x` + hex.EncodeToString(b) + `'`
}

func (postgres) Placeholder(n int) string {
	return "$" + strconv.Itoa(n)
}

func (postgres) TablesSQL() string {
	return "select tablename from pg_catalog.pg_tables where schemaname not in ('pg_catalog', 'information_schema') order by tablename"
}

func (postgres) ExistsTableSQL() string {
	return "select exists (select 1 from pg_catalog.pg_tables where tablename = $1)"
}

func (postgres) ColumnType(t reflect.Type) string {
	switch t {
	case timeType:
		return "timestamptz"
	case bytesType:
		return "bytea"
	case uuidType:
		return "uuid"
	}
	return ansiColumnType(t)
}
