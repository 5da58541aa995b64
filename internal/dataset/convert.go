package dataset

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ConversionFailure describes a single cell that could not be coerced.
type ConversionFailure struct {
	Raw    string
	Target Kind
}

func (e *ConversionFailure) Error() string {
	return fmt.Sprintf("cannot convert %q to %s", e.Raw, e.Target)
}

var timeLayouts = []string{
	time.RFC3339, "2006-01-02", "2006/01/02",
	"2006-01-02 15:04", "2006-01-02 15:04:05", "1/2/2006 15:04", "1/2/2006 15:04:05",
	"2006-01-02T15:04:05",
}

const (
	monthFirst = "01/02/2006"
	dayFirst   = "02/01/2006"
)

// parseTime tries the fixed layouts, then the slash date layout. Slash dates
// are month first unless the caller chose day first for the whole column.
func parseTime(s, slash string) (time.Time, bool) {
	for _, l := range timeLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	if t, err := time.Parse(slash, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// slashLayout picks one slash date reading for a text column: day first only
// when some cell parses solely that way and none parses solely month first.
func slashLayout(col *Column) string {
	onlyDay := false
	for _, v := range col.Values {
		if v.IsMissing() {
			continue
		}
		s := strings.TrimSpace(v.str)
		_, errM := time.Parse(monthFirst, s)
		_, errD := time.Parse(dayFirst, s)
		switch {
		case errM == nil && errD != nil:
			return monthFirst
		case errD == nil && errM != nil:
			onlyDay = true
		}
	}
	if onlyDay {
		return dayFirst
	}
	return monthFirst
}

// Coerce converts a single cell of kind from into kind to. Missing stays
// Missing. A cell that has no representation in the target kind yields a
// *ConversionFailure; callers substitute Missing. Slash dates are read month
// first.
func Coerce(v Value, from, to Kind) (Value, error) {
	return coerce(v, from, to, monthFirst)
}

func coerce(v Value, from, to Kind, slash string) (Value, error) {
	if v.IsMissing() {
		return v, nil
	}
	if from == to {
		return v, nil
	}
	fail := func() (Value, error) {
		return Missing(), &ConversionFailure{Raw: v.Format(from), Target: to}
	}
	switch to {
	case Text:
		return TextValue(v.Format(from)), nil
	case Float:
		switch from {
		case Int:
			return FloatValue(v.num), nil
		case Time:
			return FloatValue(float64(v.ts.Unix())), nil
		default:
			f, err := strconv.ParseFloat(strings.TrimSpace(v.str), 64)
			if err != nil || math.IsNaN(f) {
				return fail()
			}
			return FloatValue(f), nil
		}
	case Int:
		var f float64
		switch from {
		case Float:
			f = v.num
		case Time:
			return IntValue(v.ts.Unix()), nil
		default:
			s := strings.TrimSpace(v.str)
			if n, err := strconv.ParseInt(s, 10, 64); err == nil {
				return IntValue(n), nil
			}
			x, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return fail()
			}
			f = x
		}
		if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || math.Abs(f) > 1<<53 {
			return fail()
		}
		return IntValue(int64(f)), nil
	case Time:
		if from != Text {
			return fail()
		}
		t, ok := parseTime(strings.TrimSpace(v.str), slash)
		if !ok {
			return fail()
		}
		return TimeValue(t), nil
	}
	return fail()
}

// ConvertColumn coerces every cell of col into kind to. Cells that fail are
// replaced with Missing and their row positions returned in failed. Slash
// dates in a column share one reading.
func ConvertColumn(col *Column, to Kind) (out *Column, failed []int) {
	slash := monthFirst
	if col.Kind == Text && to == Time {
		slash = slashLayout(col)
	}
	vals := make([]Value, len(col.Values))
	for i, v := range col.Values {
		nv, err := coerce(v, col.Kind, to, slash)
		if err != nil {
			failed = append(failed, i)
		}
		vals[i] = nv
	}
	return &Column{Name: col.Name, Kind: to, Values: vals}, failed
}
