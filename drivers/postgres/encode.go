package postgres

import (
	sqldriver "database/sql/driver"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

// pg accepts this layout for timestamp, timestamptz and date input.
const timestampLayout = "2006-01-02 15:04:05.999999999Z07:00"

// encodeParams renders query arguments in the text format of the
// extended query protocol. A nil element is a SQL NULL.
func encodeParams(args []interface{}) ([][]byte, error) {
	if len(args) == 0 {
		return nil, nil
	}
	paramValues := make([][]byte, len(args))
	for i, arg := range args {
		v, err := encodeParam(arg)
		if err != nil {
			return nil, fmt.Errorf("postgres: argument %d: %w", i+1, err)
		}
		paramValues[i] = v
	}
	return paramValues, nil
}

func encodeParam(arg interface{}) ([]byte, error) {
	switch v := arg.(type) {
	case nil:
		return nil, nil
	case string:
		return []byte(v), nil
	case []byte:
		return []byte(`\x` + hex.EncodeToString(v)), nil
	case bool:
		if v {
			return []byte("true"), nil
		}
		return []byte("false"), nil
	case int:
		return strconv.AppendInt(nil, int64(v), 10), nil
	case int8:
		return strconv.AppendInt(nil, int64(v), 10), nil
	case int16:
		return strconv.AppendInt(nil, int64(v), 10), nil
	case int32:
		return strconv.AppendInt(nil, int64(v), 10), nil
	case int64:
		return strconv.AppendInt(nil, v, 10), nil
	case uint:
		return strconv.AppendUint(nil, uint64(v), 10), nil
	case uint8:
		return strconv.AppendUint(nil, uint64(v), 10), nil
	case uint16:
		return strconv.AppendUint(nil, uint64(v), 10), nil
	case uint32:
		return strconv.AppendUint(nil, uint64(v), 10), nil
	case uint64:
		return strconv.AppendUint(nil, v, 10), nil
	case float32:
		return strconv.AppendFloat(nil, float64(v), 'f', -1, 32), nil
	case float64:
		return strconv.AppendFloat(nil, v, 'f', -1, 64), nil
	case time.Time:
		return []byte(v.Format(timestampLayout)), nil
	case decimal.Decimal:
		return []byte(v.String()), nil
	case uuid.UUID:
		return []byte(v.String()), nil
	case sqldriver.Valuer:
		dv, err := v.Value()
		if err != nil {
			return nil, err
		}
		return encodeParam(dv)
	case fmt.Stringer:
		return []byte(v.String()), nil
	default:
		return nil, fmt.Errorf("cannot encode %T as a query parameter", arg)
	}
}
