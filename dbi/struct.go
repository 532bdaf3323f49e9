package dbi

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/modern-go/reflect2"
)

// column is one struct field mapped to a table column. Field access
// goes through reflect2 so WriteTable does not re-resolve fields per
// row.
type column struct {
	name  string
	typ   reflect.Type
	field reflect2.StructField
}

// structColumns maps the exported fields of a struct type to columns.
// A `db` tag overrides the name (`db:"-"` skips the field); otherwise
// names are snake_cased the same way scany derives them, so tables
// written by WriteTable scan back with ReadTable.
func structColumns(t reflect.Type) ([]column, error) {
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("dbi: expected a struct type, got %s", t)
	}

	st := reflect2.Type2(t).(reflect2.StructType)
	cols := make([]column, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.PkgPath != "" { // unexported
			continue
		}
		name := f.Tag.Get("db")
		if name == "-" {
			continue
		}
		if name == "" {
			name = toSnakeCase(f.Name)
		}
		cols = append(cols, column{
			name:  name,
			typ:   f.Type,
			field: st.Field(i),
		})
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("dbi: struct %s has no usable fields", t)
	}
	return cols, nil
}

// fieldValues extracts the column values of one struct. structPtr must
// be a pointer to a value of the type structColumns was built from.
func fieldValues(structPtr interface{}, cols []column) []interface{} {
	values := make([]interface{}, len(cols))
	for i, col := range cols {
		// reflect2 returns a pointer to the field value.
		values[i] = reflect.ValueOf(col.field.Get(structPtr)).Elem().Interface()
	}
	return values
}

func toSnakeCase(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 4)
	for i, r := range s {
		if 'A' <= r && r <= 'Z' {
			if i > 0 && (s[i-1] < 'A' || s[i-1] > 'Z') {
				b.WriteByte('_')
			}
			b.WriteByte(byte(r - 'A' + 'a'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
