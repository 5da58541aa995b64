package dataset

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// Kind is the declared scalar type of a column.
type Kind int

const (
	Text Kind = iota
	Int
	Float
	Time
)

func (k Kind) String() string {
	switch k {
	case Int:
		return "int"
	case Float:
		return "float"
	case Time:
		return "datetime"
	default:
		return "str"
	}
}

// Numeric reports whether values of this kind carry a number.
func (k Kind) Numeric() bool { return k == Int || k == Float }

// ParseKind maps a user-facing type name to a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "int", "integer", "int64":
		return Int, nil
	case "float", "float64", "double":
		return Float, nil
	case "str", "string", "text", "object":
		return Text, nil
	case "datetime", "timestamp", "time", "date":
		return Time, nil
	}
	return Text, fmt.Errorf("unknown type %q (use int|float|str|datetime)", s)
}

// Value is a single cell. The zero Value is Missing. Integer cells keep
// their exact int64 in i; num holds the float64 widening.
type Value struct {
	valid bool
	exact bool
	i     int64
	num   float64
	str   string
	ts    time.Time
}

// Missing returns the Missing marker.
func Missing() Value { return Value{} }

// IntValue returns an integer cell.
func IntValue(n int64) Value { return Value{valid: true, exact: true, i: n, num: float64(n)} }

// FloatValue returns a float cell. NaN collapses to Missing.
func FloatValue(f float64) Value {
	if math.IsNaN(f) {
		return Missing()
	}
	return Value{valid: true, num: f}
}

// TextValue returns a text cell.
func TextValue(s string) Value { return Value{valid: true, str: s} }

// TimeValue returns a timestamp cell.
func TimeValue(t time.Time) Value { return Value{valid: true, ts: t} }

// IsMissing reports whether v is the Missing marker.
func (v Value) IsMissing() bool { return !v.valid }

// Float returns the numeric payload; false for Missing. Integers wider
// than 2^53 lose precision here.
func (v Value) Float() (float64, bool) { return v.num, v.valid }

// Int returns the integer payload, truncating a float; false for Missing.
func (v Value) Int() (int64, bool) {
	if v.exact {
		return v.i, v.valid
	}
	return int64(v.num), v.valid
}

// Text returns the string payload; false for Missing.
func (v Value) Text() (string, bool) { return v.str, v.valid }

// Time returns the timestamp payload; false for Missing.
func (v Value) Time() (time.Time, bool) { return v.ts, v.valid }

// Equal compares two values of the same kind. Missing equals Missing.
func (v Value) Equal(o Value) bool {
	if v.valid != o.valid {
		return false
	}
	if !v.valid {
		return true
	}
	if v.exact && o.exact {
		return v.i == o.i
	}
	return v.num == o.num && v.str == o.str && v.ts.Equal(o.ts)
}

// Format renders v as it would appear in a CSV field for the given kind.
// Missing renders as the empty string.
func (v Value) Format(k Kind) string {
	if !v.valid {
		return ""
	}
	switch k {
	case Int:
		n, _ := v.Int()
		return strconv.FormatInt(n, 10)
	case Float:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case Time:
		return v.ts.Format(time.RFC3339)
	default:
		return v.str
	}
}

// key returns an encoding that is unique per (kind, value) pair and distinct
// from any encoding of Missing. Used for row hashing.
func (v Value) key(k Kind) string {
	if !v.valid {
		return "\x00"
	}
	switch k {
	case Int:
		n, _ := v.Int()
		return "i" + strconv.FormatInt(n, 10)
	case Float:
		return "n" + strconv.FormatFloat(v.num, 'g', -1, 64)
	case Time:
		return "t" + strconv.FormatInt(v.ts.UnixNano(), 10)
	default:
		return "s" + v.str
	}
}
