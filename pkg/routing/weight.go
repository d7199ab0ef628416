package routing

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// NormalizeNode trims and uppercases a node label. Boundaries apply it before
// handing edges to Compute so that "a" and " A" name the same router.
func NormalizeNode(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// ParseWeight coerces a loosely typed weight to an integer cost.
//
// Numbers are truncated toward zero. Strings contribute their leading
// optionally signed integer, decimal or 0x-prefixed hex ("12ms" is 12, "3.7"
// is 3, "0x10" is 16). Anything else, including values outside the int64
// range, is 0.
func ParseWeight(v any) int64 {
	switch w := v.(type) {
	case int:
		return int64(w)
	case int8:
		return int64(w)
	case int16:
		return int64(w)
	case int32:
		return int64(w)
	case int64:
		return w
	case uint:
		return fromUint(uint64(w))
	case uint8:
		return int64(w)
	case uint16:
		return int64(w)
	case uint32:
		return int64(w)
	case uint64:
		return fromUint(w)
	case float32:
		return truncate(float64(w))
	case float64:
		return truncate(w)
	case json.Number:
		if i, err := w.Int64(); err == nil {
			return i
		}
		f, err := w.Float64()
		if err != nil {
			return 0
		}
		return truncate(f)
	case string:
		return leadingInt(w)
	default:
		return 0
	}
}

func fromUint(u uint64) int64 {
	if u > math.MaxInt64 {
		return 0
	}
	return int64(u)
}

func truncate(f float64) int64 {
	if math.IsNaN(f) || f >= math.MaxInt64 || f < math.MinInt64 {
		return 0
	}
	return int64(f)
}

func leadingInt(s string) int64 {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	sign := ""
	if s != "" && (s[0] == '+' || s[0] == '-') {
		sign, s = s[:1], s[1:]
	}

	base, isDigit := 10, isDecimal
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		base, isDigit = 16, isHex
		s = s[2:]
	}

	end := 0
	for end < len(s) && isDigit(s[end]) {
		end++
	}
	if end == 0 {
		return 0
	}
	n, err := strconv.ParseInt(sign+s[:end], base, 64)
	if err != nil {
		return 0
	}
	return n
}

func isDecimal(c byte) bool {
	return c >= '0' && c <= '9'
}

func isHex(c byte) bool {
	return isDecimal(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
