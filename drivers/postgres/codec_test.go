package postgres

import (
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgtype"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeParams(t *testing.T) {
	id := uuid.Must(uuid.FromString("6ba7b810-9dad-11d1-80b4-00c04fd430c8"))
	ts := time.Date(2022, 3, 14, 9, 26, 53, 589793000, time.UTC)

	vals, err := encodeParams([]interface{}{
		"Hadley",
		42,
		int64(-7),
		3.25,
		true,
		nil,
		[]byte{0xca, 0xfe},
		decimal.RequireFromString("19.99"),
		id,
		ts,
	})
	require.NoError(t, err)

	want := [][]byte{
		[]byte("Hadley"),
		[]byte("42"),
		[]byte("-7"),
		[]byte("3.25"),
		[]byte("true"),
		nil,
		[]byte(`\xcafe`),
		[]byte("19.99"),
		[]byte("6ba7b810-9dad-11d1-80b4-00c04fd430c8"),
		[]byte("2022-03-14 09:26:53.589793Z"),
	}
	assert.Equal(t, want, vals)
}

func TestEncodeParamUnknownType(t *testing.T) {
	_, err := encodeParams([]interface{}{struct{}{}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "argument 1")
}

func TestDecodeValue(t *testing.T) {
	tests := []struct {
		name string
		oid  uint32
		raw  string
		want interface{}
	}{
		{"int8", pgtype.Int8OID, "16787941", int64(16787941)},
		{"int4", pgtype.Int4OID, "-3", int64(-3)},
		{"float8", pgtype.Float8OID, "1.5", 1.5},
		{"bool true", pgtype.BoolOID, "t", true},
		{"bool false", pgtype.BoolOID, "f", false},
		{"text", pgtype.TextOID, "Hadley", "Hadley"},
		{"varchar", pgtype.VarcharOID, "x", "x"},
		{"numeric", pgtype.NumericOID, "19.99", decimal.RequireFromString("19.99")},
		{"uuid", pgtype.UUIDOID, "6ba7b810-9dad-11d1-80b4-00c04fd430c8",
			uuid.Must(uuid.FromString("6ba7b810-9dad-11d1-80b4-00c04fd430c8"))},
		{"bytea", pgtype.ByteaOID, `\xcafe`, []byte{0xca, 0xfe}},
		{"unknown oid", 600, "(1,2)", "(1,2)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeValue(tt.oid, []byte(tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeNull(t *testing.T) {
	got, err := decodeValue(pgtype.TextOID, nil)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDecodeTimestamps(t *testing.T) {
	got, err := decodeValue(pgtype.TimestamptzOID, []byte("2022-03-14 09:26:53.589793+00"))
	require.NoError(t, err)
	ts, ok := got.(time.Time)
	require.True(t, ok)
	assert.Equal(t, time.Date(2022, 3, 14, 9, 26, 53, 589793000, time.UTC), ts.UTC())

	got, err = decodeValue(pgtype.DateOID, []byte("2022-03-14"))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2022, 3, 14, 0, 0, 0, 0, time.UTC), got.(time.Time).UTC())

	_, err = decodeValue(pgtype.TimestampOID, []byte("not-a-time"))
	require.Error(t, err)
}
