package expr

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TimeLayout is the layout used to inline time.Time values.
// It matches SQLite's own datetime() output.
const TimeLayout = "2006-01-02 15:04:05"

// Literal renders v as an inline SQL literal.
//
// Strings are single-quoted with embedded quotes doubled, nil becomes NULL,
// bools become 1/0 and []byte becomes an X'..' blob. Unknown types fall back
// to their fmt representation, quoted.
func Literal(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case string:
		return Quote(val)
	case bool:
		if val {
			return "1"
		}
		return "0"
	case int:
		return strconv.Itoa(val)
	case int8:
		return strconv.FormatInt(int64(val), 10)
	case int16:
		return strconv.FormatInt(int64(val), 10)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case int64:
		return strconv.FormatInt(val, 10)
	case uint:
		return strconv.FormatUint(uint64(val), 10)
	case uint8:
		return strconv.FormatUint(uint64(val), 10)
	case uint16:
		return strconv.FormatUint(uint64(val), 10)
	case uint32:
		return strconv.FormatUint(uint64(val), 10)
	case uint64:
		return strconv.FormatUint(val, 10)
	case float32:
		return strconv.FormatFloat(float64(val), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case decimal.Decimal:
		return val.String()
	case []byte:
		return "X'" + strings.ToUpper(hex.EncodeToString(val)) + "'"
	case time.Time:
		return Quote(val.UTC().Format(TimeLayout))
	case fmt.Stringer:
		return Quote(val.String())
	default:
		return Quote(fmt.Sprint(val))
	}
}

// Quote wraps s in single quotes, doubling any embedded quote.
func Quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// Values converts a typed slice into the []any form accepted by In and NotIn.
func Values[T any](vs []T) []any {
	out := make([]any, len(vs))
	for i, v := range vs {
		out[i] = v
	}
	return out
}
