package dbi

import (
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"time"
)

var ErrRowSetClosed = errors.New("dbi: rowset closed")

// RowSet is a Rows implementation over fully materialized results.
// Drivers that read whole result sets off the wire (postgres) and the
// pool's recycled request objects both hand results around as RowSets.
// Create with NewRowSet or recycle with Reset.
type RowSet struct {
	cols   []string
	rows   [][]interface{}
	idx    int
	closed bool
}

func NewRowSet(cols []string) *RowSet {
	return &RowSet{cols: cols, idx: -1}
}

// Reset empties the RowSet for reuse, keeping backing storage.
func (r *RowSet) Reset(cols []string) {
	r.cols = cols
	r.rows = r.rows[:0]
	r.idx = -1
	r.closed = false
}

// Append adds one row. The slice is retained.
func (r *RowSet) Append(row []interface{}) {
	r.rows = append(r.rows, row)
}

func (r *RowSet) Len() int { return len(r.rows) }

// Clone copies the RowSet so the copy outlives a recycled original.
// Row values are shared, not deep-copied.
func (r *RowSet) Clone() *RowSet {
	c := NewRowSet(append([]string(nil), r.cols...))
	c.rows = append(c.rows, r.rows...)
	return c
}

func (r *RowSet) Columns() ([]string, error) {
	if r.closed {
		return nil, ErrRowSetClosed
	}
	return r.cols, nil
}

func (r *RowSet) Next() bool {
	if r.closed || r.idx+1 >= len(r.rows) {
		return false
	}
	r.idx++
	return true
}

func (r *RowSet) Scan(dest ...interface{}) error {
	if r.closed {
		return ErrRowSetClosed
	}
	if r.idx < 0 || r.idx >= len(r.rows) {
		return errors.New("dbi: Scan called without Next")
	}
	row := r.rows[r.idx]
	if len(dest) != len(row) {
		return fmt.Errorf("dbi: Scan expected %d destinations, got %d", len(row), len(dest))
	}
	for i := range dest {
		if err := assign(dest[i], row[i]); err != nil {
			return fmt.Errorf("dbi: Scan column %q: %w", r.cols[i], err)
		}
	}
	return nil
}

func (r *RowSet) Err() error { return nil }

func (r *RowSet) Close() error {
	r.closed = true
	return nil
}

// assign copies a materialized value into a scan destination, with the
// numeric and temporal conversions database/sql users expect.
func assign(dest, src interface{}) error {
	if dest == nil {
		return errors.New("nil destination")
	}
	if scanner, ok := dest.(sql.Scanner); ok {
		return scanner.Scan(src)
	}

	switch d := dest.(type) {
	case *interface{}:
		*d = src
		return nil
	}

	dv := reflect.ValueOf(dest)
	if dv.Kind() != reflect.Ptr || dv.IsNil() {
		return fmt.Errorf("destination must be a non-nil pointer, got %T", dest)
	}
	ev := dv.Elem()

	if src == nil {
		// NULL into a pointer destination clears it, anything else errors.
		if ev.Kind() == reflect.Ptr {
			ev.Set(reflect.Zero(ev.Type()))
			return nil
		}
		return fmt.Errorf("cannot scan NULL into %T", dest)
	}

	if ev.Kind() == reflect.Ptr {
		if ev.IsNil() {
			ev.Set(reflect.New(ev.Type().Elem()))
		}
		ev = ev.Elem()
	}

	sv := reflect.ValueOf(src)
	if sv.Type() == ev.Type() {
		ev.Set(sv)
		return nil
	}

	switch ev.Kind() {
	case reflect.String:
		switch s := src.(type) {
		case string:
			ev.SetString(s)
			return nil
		case []byte:
			ev.SetString(string(s))
			return nil
		case time.Time:
			ev.SetString(s.Format(time.RFC3339Nano))
			return nil
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		switch s := src.(type) {
		case int64:
			ev.SetInt(s)
			return nil
		case int32:
			ev.SetInt(int64(s))
			return nil
		case int16:
			ev.SetInt(int64(s))
			return nil
		case int:
			ev.SetInt(int64(s))
			return nil
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if s, ok := src.(int64); ok && s >= 0 {
			ev.SetUint(uint64(s))
			return nil
		}
	case reflect.Float32, reflect.Float64:
		switch s := src.(type) {
		case float64:
			ev.SetFloat(s)
			return nil
		case float32:
			ev.SetFloat(float64(s))
			return nil
		case int64:
			ev.SetFloat(float64(s))
			return nil
		}
	case reflect.Bool:
		switch s := src.(type) {
		case bool:
			ev.SetBool(s)
			return nil
		case int64:
			ev.SetBool(s != 0)
			return nil
		}
	}

	if sv.Type().ConvertibleTo(ev.Type()) {
		ev.Set(sv.Convert(ev.Type()))
		return nil
	}

	return fmt.Errorf("cannot scan %T into %T", src, dest)
}
