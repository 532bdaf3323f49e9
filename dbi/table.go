package dbi

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/georgysavva/scany/dbscan"
)

// insertBatch caps how many rows one INSERT carries; ODBC backends are
// touchy about very long statements.
const insertBatch = 100

// ReadTable selects all rows of a table into dest, a pointer to a slice
// of structs (scanned by scany's rules).
func ReadTable(ctx context.Context, conn Conn, name string, dest interface{}) error {
	rows, err := conn.Query(ctx, "select * from "+conn.Dialect().QuoteIdentifier(name))
	if err != nil {
		return err
	}
	return dbscan.ScanAll(dest, rows)
}

// ListTables returns the user table names visible to the connection.
func ListTables(ctx context.Context, conn Conn) ([]string, error) {
	rows, err := conn.Query(ctx, conn.Dialect().TablesSQL())
	if err != nil {
		return nil, err
	}
	var names []string
	if err := dbscan.ScanAll(&names, rows); err != nil {
		return nil, err
	}
	return names, nil
}

// ExistsTable reports whether a table with the given name exists.
func ExistsTable(ctx context.Context, conn Conn, name string) (bool, error) {
	rows, err := conn.Query(ctx, conn.Dialect().ExistsTableSQL(), name)
	if err != nil {
		return false, err
	}
	var exists bool
	if err := dbscan.ScanOne(&exists, rows); err != nil {
		return false, err
	}
	return exists, nil
}

// RemoveTable drops a table.
func RemoveTable(ctx context.Context, conn Conn, name string) error {
	_, err := conn.Exec(ctx, "drop table "+conn.Dialect().QuoteIdentifier(name))
	return err
}

// CreateTable creates a table whose columns mirror the exported fields
// of prototype (a struct value or pointer).
func CreateTable(ctx context.Context, conn Conn, name string, prototype interface{}) error {
	t := reflect.TypeOf(prototype)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	cols, err := structColumns(t)
	if err != nil {
		return err
	}

	d := conn.Dialect()
	var b strings.Builder
	b.WriteString("create table ")
	b.WriteString(d.QuoteIdentifier(name))
	b.WriteString(" (")
	for i, col := range cols {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(d.QuoteIdentifier(col.name))
		b.WriteByte(' ')
		b.WriteString(d.ColumnType(col.typ))
	}
	b.WriteByte(')')

	_, err = conn.Exec(ctx, b.String())
	return err
}

// WriteTable writes a slice of structs to a table, creating the table
// first when it does not exist and appending otherwise. Rows go out in
// batched multi-row INSERTs through driver parameters.
func WriteTable(ctx context.Context, conn Conn, name string, data interface{}) error {
	v := reflect.ValueOf(data)
	for v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Slice {
		return fmt.Errorf("dbi: WriteTable expects a slice, got %T", data)
	}

	elemType := v.Type().Elem()
	elemIsPtr := elemType.Kind() == reflect.Ptr
	if elemIsPtr {
		elemType = elemType.Elem()
	}
	cols, err := structColumns(elemType)
	if err != nil {
		return err
	}

	exists, err := ExistsTable(ctx, conn, name)
	if err != nil {
		return err
	}
	if !exists {
		if err := CreateTable(ctx, conn, name, reflect.New(elemType).Interface()); err != nil {
			return err
		}
	}

	d := conn.Dialect()
	colNames := make([]string, len(cols))
	for i, col := range cols {
		colNames[i] = d.QuoteIdentifier(col.name)
	}
	prefix := "insert into " + d.QuoteIdentifier(name) + " (" + strings.Join(colNames, ", ") + ") values "

	for start := 0; start < v.Len(); start += insertBatch {
		end := start + insertBatch
		if end > v.Len() {
			end = v.Len()
		}

		var b strings.Builder
		b.WriteString(prefix)
		args := make([]interface{}, 0, (end-start)*len(cols))
		ph := 1
		for i := start; i < end; i++ {
			if i > start {
				b.WriteString(", ")
			}
			b.WriteByte('(')
			for j := range cols {
				if j > 0 {
					b.WriteString(", ")
				}
				b.WriteString(d.Placeholder(ph))
				ph++
			}
			b.WriteByte(')')

			var structPtr interface{}
			if elemIsPtr {
				structPtr = v.Index(i).Interface()
			} else {
				structPtr = v.Index(i).Addr().Interface()
			}
			args = append(args, fieldValues(structPtr, cols)...)
		}

		if _, err := conn.Exec(ctx, b.String(), args...); err != nil {
			return err
		}
	}

	return nil
}
