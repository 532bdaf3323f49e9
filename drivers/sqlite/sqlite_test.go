package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dbkit/dbi"
)

type city struct {
	ID         int64
	Name       string
	Population int64 `db:"pop"`
}

// The whole table surface against an in-memory database: the bridge
// pins one connection, so :memory: stays alive for the test.
func TestTableRoundTrip(t *testing.T) {
	ctx := context.Background()
	conn, err := dbi.Connect(ctx, "sqlite::memory:")
	require.NoError(t, err)
	defer conn.Close(ctx)

	require.NoError(t, conn.Ping(ctx))

	exists, err := dbi.ExistsTable(ctx, conn, "city")
	require.NoError(t, err)
	assert.False(t, exists)

	in := []city{
		{ID: 1, Name: "Auckland", Population: 1657000},
		{ID: 2, Name: "Wellington", Population: 212700},
		{ID: 3, Name: "Hamilton", Population: 178500},
	}
	require.NoError(t, dbi.WriteTable(ctx, conn, "city", in))

	exists, err = dbi.ExistsTable(ctx, conn, "city")
	require.NoError(t, err)
	assert.True(t, exists)

	tables, err := dbi.ListTables(ctx, conn)
	require.NoError(t, err)
	assert.Contains(t, tables, "city")

	var out []city
	require.NoError(t, dbi.ReadTable(ctx, conn, "city", &out))
	assert.Equal(t, in, out)

	// WriteTable appends when the table already exists.
	require.NoError(t, dbi.WriteTable(ctx, conn, "city", []city{{ID: 4, Name: "Tauranga", Population: 158300}}))
	out = nil
	require.NoError(t, dbi.ReadTable(ctx, conn, "city", &out))
	assert.Len(t, out, 4)

	res, err := conn.Exec(ctx, `update "city" set "pop" = "pop" + 1 where "id" = ?`, int64(1))
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.RowsAffected)

	require.NoError(t, dbi.RemoveTable(ctx, conn, "city"))
	exists, err = dbi.ExistsTable(ctx, conn, "city")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestQueryRows(t *testing.T) {
	ctx := context.Background()
	conn, err := dbi.Connect(ctx, "sqlite::memory:")
	require.NoError(t, err)
	defer conn.Close(ctx)

	rows, err := conn.Query(ctx, "select 1 as one, 'x' as s")
	require.NoError(t, err)
	defer rows.Close()

	cols, err := rows.Columns()
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "s"}, cols)

	require.True(t, rows.Next())
	var one int64
	var s string
	require.NoError(t, rows.Scan(&one, &s))
	assert.Equal(t, int64(1), one)
	assert.Equal(t, "x", s)
	assert.False(t, rows.Next())
	require.NoError(t, rows.Err())
}

func TestDSNRequiresPath(t *testing.T) {
	_, err := dbi.Connect(context.Background(), "driver=sqlite")
	require.Error(t, err)
}
