// Package coerce turns loosely typed upstream values into finite numbers.
//
// Every function here is total: malformed input yields the caller's default,
// never an error or panic.
package coerce

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Float returns value as a finite float64, or def when value is absent,
// non-numeric, NaN or infinite. Strings are trimmed and parsed; booleans
// and composite values are not numbers.
func Float(value any, def float64) float64 {
	f, ok := parse(value)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return def
	}
	return f
}

// Present reports whether value carries a finite number.
func Present(value any) bool {
	f, ok := parse(value)
	return ok && !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Int rounds a coerced value to the nearest integer. Values beyond the int
// range saturate at its bounds.
func Int(value any, def int) int {
	f := math.Round(Float(value, float64(def)))
	switch {
	case f >= math.MaxInt:
		return math.MaxInt
	case f <= math.MinInt:
		return math.MinInt
	}
	return int(f)
}

// NonNegativeInt rounds a coerced value and clamps it at zero. Missing
// values count as zero.
func NonNegativeInt(value any) int {
	n := Int(value, 0)
	if n < 0 {
		return 0
	}
	return n
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

func parse(value any) (float64, bool) {
	switch v := value.(type) {
	case nil:
		return 0, false
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
