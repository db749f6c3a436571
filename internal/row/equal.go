package row

import (
	"bytes"
	"math"
	"reflect"
	"time"

	"github.com/shopspring/decimal"
)

// Equal reports whether a and b hold the same value. Integer and float
// widths are normalized, so int(10) equals the int64(10) the engine returns.
func Equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	if da, ok := toDecimal(a); ok {
		if db, ok := toDecimal(b); ok {
			if _, aDec := a.(decimal.Decimal); aDec {
				return da.Equal(db)
			}
			if _, bDec := b.(decimal.Decimal); bDec {
				return da.Equal(db)
			}
		}
	}

	if ia, ok := toInt(a); ok {
		if ib, ok := toInt(b); ok {
			return ia == ib
		}
		if fb, ok := toFloat(b); ok {
			return float64(ia) == fb
		}
		return false
	}
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			return fa == fb
		}
		if ib, ok := toInt(b); ok {
			return fa == float64(ib)
		}
		return false
	}

	switch va := a.(type) {
	case []byte:
		vb, ok := b.([]byte)
		return ok && bytes.Equal(va, vb)
	case time.Time:
		vb, ok := b.(time.Time)
		return ok && va.Equal(vb)
	}

	return reflect.DeepEqual(a, b)
}

func toInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return int64(n), n <= math.MaxInt64
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return int64(n), n <= math.MaxInt64
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func toDecimal(v any) (decimal.Decimal, bool) {
	if d, ok := v.(decimal.Decimal); ok {
		return d, true
	}
	if i, ok := toInt(v); ok {
		return decimal.NewFromInt(i), true
	}
	if f, ok := toFloat(v); ok {
		return decimal.NewFromFloat(f), true
	}
	return decimal.Decimal{}, false
}
