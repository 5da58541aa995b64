package ops

import (
	"github.com/KaramelBytes/cleaner-cli/internal/dataset"
)

// DefaultAutoCleanThreshold is the Missing percentage above which auto-clean
// drops a column.
const DefaultAutoCleanThreshold = 50.0

// AutoCleanOptions tunes the fixed pipeline. NullThreshold is a percentage
// in [0, 100]; callers pass DefaultAutoCleanThreshold when the user set none.
type AutoCleanOptions struct {
	NullThreshold float64
}

// AutoCleanReport records the outcome of each pipeline step.
type AutoCleanReport struct {
	DuplicatesRemoved int
	DroppedColumns    []string
	NumericFills      []FillReport
	CategoricalFills  []FillReport
}

// Changed reports whether any step altered the dataset.
func (r AutoCleanReport) Changed() bool {
	return r.DuplicatesRemoved > 0 || len(r.DroppedColumns) > 0 ||
		len(r.NumericFills) > 0 || len(r.CategoricalFills) > 0
}

// AutoClean runs, in order: drop duplicates, drop columns above the null
// threshold, fill numeric nulls with each column's median, and fill text
// nulls with each column's most frequent value. A failing step aborts the
// whole pipeline and the input is left as it was.
func AutoClean(ds *dataset.Dataset, opt AutoCleanOptions) (*dataset.Dataset, AutoCleanReport, error) {
	var rep AutoCleanReport
	if opt.NullThreshold < 0 || opt.NullThreshold > 100 {
		return nil, rep, invalid("auto clean", "threshold must be within 0-100, got %v", opt.NullThreshold)
	}

	out, dup := DropDuplicates(ds)
	rep.DuplicatesRemoved = dup.Removed

	out, dropped, err := DropNullColumns(out, opt.NullThreshold)
	if err != nil {
		return nil, rep, err
	}
	rep.DroppedColumns = dropped

	var num []NumericFill
	var cat []CategoricalFill
	for _, c := range out.Columns() {
		if c.MissingCount() == 0 {
			continue
		}
		switch {
		case c.Kind.Numeric():
			num = append(num, NumericFill{Column: c.Name, Median: true})
		case c.Kind == dataset.Text:
			cat = append(cat, CategoricalFill{Column: c.Name, MostFrequent: true})
		}
	}
	if len(num) > 0 {
		if out, rep.NumericFills, err = FillNumeric(out, num); err != nil {
			return nil, rep, err
		}
	}
	if len(cat) > 0 {
		if out, rep.CategoricalFills, err = FillCategorical(out, cat); err != nil {
			return nil, rep, err
		}
	}
	return out, rep, nil
}
