package postgres

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgtype"
	"github.com/shopspring/decimal"
)

var timestampInputLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999-07",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// decodeValue turns a text-format wire value into a Go value based on
// the column's type OID. Unknown OIDs stay strings; NULL is nil.
func decodeValue(oid uint32, raw []byte) (interface{}, error) {
	if raw == nil {
		return nil, nil
	}
	s := string(raw)

	switch oid {
	case pgtype.BoolOID:
		return s == "t", nil
	case pgtype.Int2OID, pgtype.Int4OID, pgtype.Int8OID:
		return strconv.ParseInt(s, 10, 64)
	case pgtype.Float4OID, pgtype.Float8OID:
		return strconv.ParseFloat(s, 64)
	case pgtype.NumericOID:
		return decimal.NewFromString(s)
	case pgtype.ByteaOID:
		return hex.DecodeString(strings.TrimPrefix(s, `\x`))
	case pgtype.UUIDOID:
		return uuid.FromString(s)
	case pgtype.DateOID, pgtype.TimestampOID, pgtype.TimestamptzOID:
		return parseTimestamp(s)
	case pgtype.TextOID, pgtype.VarcharOID, pgtype.BPCharOID, pgtype.NameOID,
		pgtype.JSONOID, pgtype.JSONBOID:
		return s, nil
	default:
		return s, nil
	}
}

func parseTimestamp(s string) (time.Time, error) {
	switch s {
	case "infinity":
		return infinityTs, nil
	case "-infinity":
		return negInfinityTs, nil
	}
	for _, layout := range timestampInputLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse %q as timestamp", s)
}

// the sentinels pg reports for infinite timestamps
var (
	infinityTs    = time.Date(294276, 12, 31, 23, 59, 59, 0, time.UTC)
	negInfinityTs = time.Date(-4713, 11, 24, 0, 0, 0, 0, time.UTC)
)
