package subscription

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// UnlimitedLabel is the wire form of an unbounded Limit
const UnlimitedLabel = "unlimited"

// Limit is either a finite non-negative ceiling or unbounded.
// Unbounded is a distinct state, never a large sentinel number, so
// arithmetic on it stays unbounded.
type Limit struct {
	value     int64
	unbounded bool
}

// Finite returns a finite Limit; negative values clamp to zero
func Finite(n int64) Limit {
	if n < 0 {
		n = 0
	}
	return Limit{value: n}
}

// Unbounded returns the unbounded Limit
func Unbounded() Limit {
	return Limit{unbounded: true}
}

// IsUnbounded reports whether l has no ceiling
func (l Limit) IsUnbounded() bool {
	return l.unbounded
}

// Value returns the finite value. It is zero for an unbounded Limit.
func (l Limit) Value() int64 {
	if l.unbounded {
		return 0
	}
	return l.value
}

// Decrement returns l reduced by one, floored at zero.
// Unbounded stays unbounded.
func (l Limit) Decrement() Limit {
	if l.unbounded {
		return l
	}
	return Finite(l.value - 1)
}

// Exceeded reports whether used has reached the ceiling
func (l Limit) Exceeded(used int64) bool {
	return !l.unbounded && used >= l.value
}

// Available reports whether at least one unit remains
func (l Limit) Available() bool {
	return l.unbounded || l.value > 0
}

// Less orders limits with unbounded above every finite value
func (l Limit) Less(other Limit) bool {
	switch {
	case l.unbounded:
		return false
	case other.unbounded:
		return true
	default:
		return l.value < other.value
	}
}

// Equal reports whether both limits hold the same state
func (l Limit) Equal(other Limit) bool {
	return l.unbounded == other.unbounded && l.Value() == other.Value()
}

// Display returns the limit as a number or UnlimitedLabel, for error details and tables
func (l Limit) Display() interface{} {
	if l.unbounded {
		return UnlimitedLabel
	}
	return l.value
}

func (l Limit) String() string {
	if l.unbounded {
		return UnlimitedLabel
	}
	return strconv.FormatInt(l.value, 10)
}

// ParseLimit accepts a non-negative integer or one of "unlimited", "unbounded", "inf"
func ParseLimit(s string) (Limit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case UnlimitedLabel, "unbounded", "inf", "infinity":
		return Unbounded(), nil
	}
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n < 0 {
		return Limit{}, fmt.Errorf("invalid limit %q", s)
	}
	return Finite(n), nil
}

// MarshalJSON encodes finite limits as numbers and unbounded as "unlimited"
func (l Limit) MarshalJSON() ([]byte, error) {
	if l.unbounded {
		return json.Marshal(UnlimitedLabel)
	}
	return json.Marshal(l.value)
}

// UnmarshalJSON accepts a number or an unbounded label
func (l *Limit) UnmarshalJSON(data []byte) error {
	var n int64
	if err := json.Unmarshal(data, &n); err == nil {
		if n < 0 {
			return fmt.Errorf("limit must not be negative: %d", n)
		}
		*l = Finite(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("limit must be a number or %q", UnlimitedLabel)
	}
	parsed, err := ParseLimit(s)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
