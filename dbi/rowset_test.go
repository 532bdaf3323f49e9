package dbi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRowSetIteration(t *testing.T) {
	rs := NewRowSet([]string{"id", "name"})
	rs.Append([]interface{}{int64(1), "Hadley"})
	rs.Append([]interface{}{int64(2), "Jenny"})

	cols, err := rs.Columns()
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name"}, cols)

	var id int
	var name string

	require.True(t, rs.Next())
	require.NoError(t, rs.Scan(&id, &name))
	assert.Equal(t, 1, id)
	assert.Equal(t, "Hadley", name)

	require.True(t, rs.Next())
	require.NoError(t, rs.Scan(&id, &name))
	assert.Equal(t, 2, id)

	assert.False(t, rs.Next())
	require.NoError(t, rs.Err())
	require.NoError(t, rs.Close())

	_, err = rs.Columns()
	assert.ErrorIs(t, err, ErrRowSetClosed)
}

func TestRowSetScanWithoutNext(t *testing.T) {
	rs := NewRowSet([]string{"id"})
	rs.Append([]interface{}{int64(1)})
	var id int
	require.Error(t, rs.Scan(&id))
}

func TestRowSetReset(t *testing.T) {
	rs := NewRowSet([]string{"a"})
	rs.Append([]interface{}{int64(1)})
	require.NoError(t, rs.Close())

	rs.Reset([]string{"b"})
	assert.Equal(t, 0, rs.Len())
	rs.Append([]interface{}{"x"})

	var s string
	require.True(t, rs.Next())
	require.NoError(t, rs.Scan(&s))
	assert.Equal(t, "x", s)
}

func TestAssignConversions(t *testing.T) {
	var f float64
	require.NoError(t, assign(&f, int64(3)))
	assert.Equal(t, 3.0, f)

	var s string
	require.NoError(t, assign(&s, []byte("bytes")))
	assert.Equal(t, "bytes", s)

	var b bool
	require.NoError(t, assign(&b, int64(1)))
	assert.True(t, b)

	var ts time.Time
	now := time.Now()
	require.NoError(t, assign(&ts, now))
	assert.True(t, ts.Equal(now))

	var any interface{}
	require.NoError(t, assign(&any, int64(7)))
	assert.Equal(t, int64(7), any)
}

func TestAssignNull(t *testing.T) {
	s := new(string)
	ptr := &s
	require.NoError(t, assign(ptr, nil))
	assert.Nil(t, *ptr)

	var plain string
	require.Error(t, assign(&plain, nil))
}
