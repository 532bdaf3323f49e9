package dialect

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

var ErrUnusedArg = errors.New("interpolate: unused argument")

// Interpolate substitutes ?name tokens in template with safely rendered
// literals from args. String values go through the dialect's literal
// quoting, which doubles embedded single quotes: a value like
//
//	H'); DROP TABLE--;
//
// is emitted as 'H''); DROP TABLE--;' and stays inside one string
// literal. `??` emits a literal question mark.
//
// Prefer driver-level parameters where the backend supports them;
// Interpolate exists for statements that cannot take parameters
// (DDL, some ODBC backends) and for rendering debug SQL.
func Interpolate(d Dialect, template string, args map[string]interface{}) (string, error) {
	var b strings.Builder
	b.Grow(len(template) + 32)

	used := make(map[string]struct{}, len(args))

	for i := 0; i < len(template); {
		c := template[i]
		if c != '?' {
			b.WriteByte(c)
			i++
			continue
		}
		if i+1 < len(template) && template[i+1] == '?' {
			b.WriteByte('?')
			i += 2
			continue
		}

		j := i + 1
		for j < len(template) && isNameByte(template[j]) {
			j++
		}
		name := template[i+1 : j]
		if name == "" {
			return "", fmt.Errorf("interpolate: bare ? at offset %d, use ?name", i)
		}

		v, ok := args[name]
		if !ok {
			return "", fmt.Errorf("interpolate: no value supplied for ?%s", name)
		}
		used[name] = struct{}{}

		lit, err := Literal(d, v)
		if err != nil {
			return "", fmt.Errorf("interpolate ?%s: %w", name, err)
		}
		b.WriteString(lit)
		i = j
	}

	for name := range args {
		if _, ok := used[name]; !ok {
			return "", fmt.Errorf("%w: %s", ErrUnusedArg, name)
		}
	}

	return b.String(), nil
}

// Literal renders a single Go value as a SQL literal for the dialect.
func Literal(d Dialect, v interface{}) (string, error) {
	switch v := v.(type) {
	case nil:
		return "NULL", nil
	case bool:
		if v {
			return "TRUE", nil
		}
		return "FALSE", nil
	case string:
		return d.QuoteLiteral(v), nil
	case []byte:
		return d.QuoteBytes(v), nil
	case int:
		return strconv.FormatInt(int64(v), 10), nil
	case int8:
		return strconv.FormatInt(int64(v), 10), nil
	case int16:
		return strconv.FormatInt(int64(v), 10), nil
	case int32:
		return strconv.FormatInt(int64(v), 10), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case uint:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint8:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint16:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint32:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint64:
		return strconv.FormatUint(v, 10), nil
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32), nil
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), nil
	case time.Time:
		return d.QuoteLiteral(formatTime(v)), nil
	case decimal.Decimal:
		return v.String(), nil
	case uuid.UUID:
		return d.QuoteLiteral(v.String()), nil
	default:
		return "", fmt.Errorf("cannot render %T as a SQL literal", v)
	}
}

func isNameByte(c byte) bool {
	return c == '_' ||
		('a' <= c && c <= 'z') ||
		('A' <= c && c <= 'Z') ||
		('0' <= c && c <= '9')
}
