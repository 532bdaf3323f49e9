package dbi

import (
	"context"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dbkit/dialect"
)

// fakeConn records statements and serves canned results keyed by SQL.
type fakeConn struct {
	queries []string
	execs   []string
	args    [][]interface{}
	results map[string]*RowSet
}

func newFakeConn() *fakeConn {
	return &fakeConn{results: make(map[string]*RowSet)}
}

func (c *fakeConn) Query(_ context.Context, sql string, args ...interface{}) (Rows, error) {
	c.queries = append(c.queries, sql)
	c.args = append(c.args, args)
	if rs, ok := c.results[sql]; ok {
		return rs, nil
	}
	return NewRowSet(nil), nil
}

func (c *fakeConn) Exec(_ context.Context, sql string, args ...interface{}) (Result, error) {
	c.execs = append(c.execs, sql)
	c.args = append(c.args, args)
	return Result{RowsAffected: 1}, nil
}

func (c *fakeConn) Ping(context.Context) error  { return nil }
func (c *fakeConn) Close(context.Context) error { return nil }
func (c *fakeConn) Dialect() dialect.Dialect    { return dialect.ANSI }

type city struct {
	ID         int
	Name       string
	Population int64 `db:"pop"`
	secret     string
	Ignored    string `db:"-"`
}

func TestReadTable(t *testing.T) {
	conn := newFakeConn()
	rs := NewRowSet([]string{"id", "name", "pop"})
	rs.Append([]interface{}{int64(1), "Delhi", int64(16787941)})
	rs.Append([]interface{}{int64(2), "Lima", int64(8852000)})
	conn.results[`select * from "city"`] = rs

	var cities []city
	require.NoError(t, ReadTable(context.Background(), conn, "city", &cities))
	require.Len(t, cities, 2)
	assert.Equal(t, "Delhi", cities[0].Name)
	assert.Equal(t, int64(8852000), cities[1].Population)
}

func TestListTables(t *testing.T) {
	conn := newFakeConn()
	rs := NewRowSet([]string{"table_name"})
	rs.Append([]interface{}{"city"})
	rs.Append([]interface{}{"country"})
	conn.results[dialect.ANSI.TablesSQL()] = rs

	names, err := ListTables(context.Background(), conn)
	require.NoError(t, err)
	assert.Equal(t, []string{"city", "country"}, names)
}

func TestExistsTable(t *testing.T) {
	conn := newFakeConn()
	rs := NewRowSet([]string{"exists"})
	rs.Append([]interface{}{true})
	conn.results[dialect.ANSI.ExistsTableSQL()] = rs

	exists, err := ExistsTable(context.Background(), conn, "city")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, []interface{}{"city"}, conn.args[0])
}

func TestRemoveTable(t *testing.T) {
	conn := newFakeConn()
	require.NoError(t, RemoveTable(context.Background(), conn, "city"))
	require.Len(t, conn.execs, 1)
	assert.Equal(t, `drop table "city"`, conn.execs[0])
}

func TestWriteTableCreatesAndInserts(t *testing.T) {
	conn := newFakeConn()
	// ExistsTable sees an empty result -> table gets created.
	empty := NewRowSet([]string{"exists"})
	empty.Append([]interface{}{false})
	conn.results[dialect.ANSI.ExistsTableSQL()] = empty

	data := []city{
		{ID: 1, Name: "Delhi", Population: 16787941},
		{ID: 2, Name: "Lima", Population: 8852000},
	}
	require.NoError(t, WriteTable(context.Background(), conn, "city", data))

	require.Len(t, conn.execs, 2)
	assert.Equal(t, `create table "city" ("id" bigint, "name" text, "pop" bigint)`, conn.execs[0])
	assert.Equal(t, `insert into "city" ("id", "name", "pop") values (?, ?, ?), (?, ?, ?)`, conn.execs[1])

	insertArgs := conn.args[len(conn.args)-1]
	assert.Equal(t, []interface{}{1, "Delhi", int64(16787941), 2, "Lima", int64(8852000)}, insertArgs)
}

func TestWriteTableRejectsNonSlice(t *testing.T) {
	conn := newFakeConn()
	require.Error(t, WriteTable(context.Background(), conn, "city", city{}))
}

func TestStructColumnsNames(t *testing.T) {
	cols, err := structColumns(reflect.TypeOf(city{}))
	require.NoError(t, err)
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.name
	}
	assert.Equal(t, []string{"id", "name", "pop"}, names)
}

func TestToSnakeCase(t *testing.T) {
	assert.Equal(t, "brand_id", toSnakeCase("BrandID"))
	assert.Equal(t, "name", toSnakeCase("Name"))
	assert.Equal(t, "created_at", toSnakeCase("CreatedAt"))
}

func TestRegistry(t *testing.T) {
	_, err := Lookup("no-such-driver")
	require.Error(t, err)
	assert.Panics(t, func() { Register(nil) })
}
