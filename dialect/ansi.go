package dialect

import (
	"encoding/hex"
	"reflect"
	"time"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

// ANSI is the fallback dialect: double-quoted identifiers, `?`
// placeholders, information_schema catalog queries. The ODBC bridge
// uses it unless the underlying backend registered something better.
var ANSI Dialect = ansi{}

type ansi struct{}

func (ansi) Name() string { return "ansi" }

func (ansi) QuoteIdentifier(s string) string { return quoteIdent(s) }

func (ansi) QuoteLiteral(s string) string { return quoteLiteral(s) }

func (ansi) QuoteBytes(b []byte) string {
	return "X'" + hex.EncodeToString(b) + "'"
}

func (ansi) Placeholder(int) string { return "?" }

func (ansi) TablesSQL() string {
	return "select table_name from information_schema.tables where table_type = 'BASE TABLE' order by table_name"
}

func (ansi) ExistsTableSQL() string {
	return "select count(*) > 0 from information_schema.tables where table_name = ?"
}

var (
	timeType    = reflect.TypeOf(time.Time{})
	bytesType   = reflect.TypeOf([]byte(nil))
	decimalType = reflect.TypeOf(decimal.Decimal{})
	uuidType    = reflect.TypeOf(uuid.UUID{})
)

func (ansi) ColumnType(t reflect.Type) string { return ansiColumnType(t) }

func ansiColumnType(t reflect.Type) string {
	switch t {
	case timeType:
		return "timestamp"
	case bytesType:
		return "blob"
	case decimalType:
		return "numeric"
	case uuidType:
		return "varchar(36)"
	}
	switch t.Kind() {
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "bigint"
	case reflect.Float32, reflect.Float64:
		return "double precision"
	case reflect.Ptr:
		return ansiColumnType(t.Elem())
	default:
		return "text"
	}
}
