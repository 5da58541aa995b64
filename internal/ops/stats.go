package ops

import (
	"math"
	"sort"

	"github.com/KaramelBytes/cleaner-cli/internal/dataset"
)

// DefaultIQRMultiplier is the conventional Tukey fence factor.
const DefaultIQRMultiplier = 1.5

// quantile expects sorted input and interpolates linearly between the two
// nearest ranks.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}

func sortedFloats(col *dataset.Column) []float64 {
	vals := col.Floats()
	sort.Float64s(vals)
	return vals
}

// Median returns the median of the non-Missing values of a numeric column.
func Median(col *dataset.Column) (float64, error) {
	vals := sortedFloats(col)
	if len(vals) == 0 {
		return 0, &OperationError{Op: "median", Column: col.Name, Err: ErrNoValues}
	}
	return quantile(vals, 0.5), nil
}

// CategoryCount is a value with its frequency.
type CategoryCount struct {
	Value string
	Count int
}

// ValueCounts returns the frequencies of non-Missing values, most frequent
// first; ties are broken by value, ascending.
func ValueCounts(col *dataset.Column) []CategoryCount {
	counts := map[string]int{}
	for _, v := range col.Values {
		if v.IsMissing() {
			continue
		}
		counts[v.Format(col.Kind)]++
	}
	out := make([]CategoryCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, CategoryCount{Value: k, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Value < out[j].Value
		}
		return out[i].Count > out[j].Count
	})
	return out
}

// MostFrequent returns the mode of a column's non-Missing values, breaking
// ties lexicographically.
func MostFrequent(col *dataset.Column) (string, error) {
	vc := ValueCounts(col)
	if len(vc) == 0 {
		return "", &OperationError{Op: "most frequent", Column: col.Name, Err: ErrNoValues}
	}
	return vc[0].Value, nil
}

// Bounds are the inclusive limits outside of which a value is an outlier.
type Bounds struct {
	Q1, Q3    float64
	Low, High float64
}

// IQR returns Q3 - Q1.
func (b Bounds) IQR() float64 { return b.Q3 - b.Q1 }

// Outlier reports whether x falls strictly outside [Low, High].
func (b Bounds) Outlier(x float64) bool { return x < b.Low || x > b.High }

// IQRBounds computes Tukey fences Q1 - k*IQR and Q3 + k*IQR over the
// non-Missing values of a numeric column. k <= 0 means DefaultIQRMultiplier.
func IQRBounds(col *dataset.Column, k float64) (Bounds, error) {
	if !col.Kind.Numeric() {
		return Bounds{}, invalid("outliers", "column %q is %s, not numeric", col.Name, col.Kind)
	}
	if k <= 0 {
		k = DefaultIQRMultiplier
	}
	vals := sortedFloats(col)
	if len(vals) == 0 {
		return Bounds{}, &OperationError{Op: "iqr bounds", Column: col.Name, Err: ErrNoValues}
	}
	q1 := quantile(vals, 0.25)
	q3 := quantile(vals, 0.75)
	iqr := q3 - q1
	return Bounds{Q1: q1, Q3: q3, Low: q1 - k*iqr, High: q3 + k*iqr}, nil
}

func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return round2(float64(part) * 100 / float64(total))
}

func round2(x float64) float64 { return math.Round(x*100) / 100 }
