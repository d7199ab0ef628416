package routing

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Distance is a path cost that is either a finite integer or unreachable.
// The zero value is Infinite.
type Distance struct {
	value  int64
	finite bool
}

// Infinite is the distance of a node no known path reaches.
var Infinite = Distance{}

// Finite returns a reachable distance with the given cost.
func Finite(v int64) Distance {
	return Distance{value: v, finite: true}
}

// IsInfinite reports whether the distance is unreachable.
func (d Distance) IsInfinite() bool {
	return !d.finite
}

// Value returns the cost and whether it is finite.
func (d Distance) Value() (int64, bool) {
	return d.value, d.finite
}

// Less orders distances with every finite value below Infinite.
func (d Distance) Less(o Distance) bool {
	switch {
	case !d.finite:
		return false
	case !o.finite:
		return true
	default:
		return d.value < o.value
	}
}

// Add extends a finite distance by an arc weight, saturating at the int64 range.
// Infinite stays infinite. floored reports that the true sum fell below
// math.MinInt64, so the result is larger than the cost it stands for.
func (d Distance) Add(w int64) (sum Distance, floored bool) {
	if !d.finite {
		return d, false
	}
	switch {
	case w > 0 && d.value > math.MaxInt64-w:
		return Finite(math.MaxInt64), false
	case w < 0 && d.value < math.MinInt64-w:
		return Finite(math.MinInt64), true
	}
	return Finite(d.value + w), false
}

func (d Distance) String() string {
	if !d.finite {
		return "∞"
	}
	return strconv.FormatInt(d.value, 10)
}

// MarshalJSON encodes Infinite as null and finite costs as integers.
func (d Distance) MarshalJSON() ([]byte, error) {
	if !d.finite {
		return []byte("null"), nil
	}
	return strconv.AppendInt(nil, d.value, 10), nil
}

// UnmarshalJSON accepts null (Infinite) or an integer.
func (d *Distance) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*d = Infinite
		return nil
	}
	var v int64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("distance must be an integer or null: %w", err)
	}
	*d = Finite(v)
	return nil
}
