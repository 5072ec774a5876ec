// Package coerce is the tolerant numeric boundary of the pipeline. Every
// "try to read this cell as a number" decision in the repository goes through
// here so that the lenient policy (absence, not errors) lives in one place.
package coerce

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// State distinguishes how a Number came to hold its value. Keeping the
// three cases apart lets callers (and tests) tell a measured zero from a
// defaulted one.
type State int

const (
	// Absent: the cell was nil, missing, or an empty/whitespace string.
	Absent State = iota
	// Invalid: the cell held something, but it does not parse as a finite
	// number. Callers typically coerce this to a default.
	Invalid
	// Valid: the cell parsed as a finite number.
	Valid
)

// Number is the result of coercing one raw cell value.
type Number struct {
	State State
	Value float64
}

// Parse coerces an arbitrary cell value into a Number. It never panics:
// nil and empty strings are Absent, unparsable or non-finite values are
// Invalid, everything else is Valid.
func Parse(v any) Number {
	if v == nil {
		return Number{State: Absent}
	}
	switch x := v.(type) {
	case float64:
		return fromFloat(x)
	case float32:
		return fromFloat(float64(x))
	case int:
		return Number{State: Valid, Value: float64(x)}
	case int64:
		return Number{State: Valid, Value: float64(x)}
	case string:
		return parseString(x)
	default:
		return parseString(fmt.Sprint(v))
	}
}

func fromFloat(f float64) Number {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Number{State: Invalid}
	}
	return Number{State: Valid, Value: f}
}

func parseString(s string) Number {
	s = strings.TrimSpace(s)
	if s == "" {
		return Number{State: Absent}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Number{State: Invalid}
	}
	return fromFloat(f)
}

// IsValid reports whether the number parsed cleanly.
func (n Number) IsValid() bool { return n.State == Valid }

// Or returns the parsed value, or def when the cell was absent or invalid.
func (n Number) Or(def float64) float64 {
	if n.State == Valid {
		return n.Value
	}
	return def
}

// Ptr returns a pointer to the value for Valid numbers and nil otherwise.
func (n Number) Ptr() *float64 {
	if n.State != Valid {
		return nil
	}
	v := n.Value
	return &v
}

// PickFirst tries the candidate keys in priority order and returns the first
// one that is present in the record and coerces to a Valid number. Keys that
// are present but absent/unparsable are skipped, not an error.
func PickFirst(rec map[string]any, keys ...string) Number {
	for _, k := range keys {
		v, ok := rec[k]
		if !ok {
			continue
		}
		if n := Parse(v); n.IsValid() {
			return n
		}
	}
	return Number{State: Absent}
}

// PickFirstString returns the trimmed string form of the first candidate key
// present in the record with a non-empty value, or "" when none match.
func PickFirstString(rec map[string]any, keys ...string) string {
	for _, k := range keys {
		v, ok := rec[k]
		if !ok || v == nil {
			continue
		}
		s := strings.TrimSpace(fmt.Sprint(v))
		if s != "" {
			return s
		}
	}
	return ""
}
