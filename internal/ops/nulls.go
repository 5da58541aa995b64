package ops

import (
	"math"
	"strconv"

	"github.com/KaramelBytes/cleaner-cli/internal/dataset"
)

// NullStat is the share of Missing cells in one column.
type NullStat struct {
	Column  string
	Kind    dataset.Kind
	Count   int
	Percent float64
}

// RowDropReport summarises an operation that removes rows.
type RowDropReport struct {
	Removed int
	Percent float64
	// Rows are the positions, in the input, of the removed rows.
	Rows []int
}

// NullSummary lists columns with at least one Missing cell, in column order.
func NullSummary(ds *dataset.Dataset) []NullStat {
	var out []NullStat
	for _, c := range ds.Columns() {
		n := c.MissingCount()
		if n == 0 {
			continue
		}
		out = append(out, NullStat{Column: c.Name, Kind: c.Kind, Count: n, Percent: percent(n, ds.NumRows())})
	}
	return out
}

func nullFraction(c *dataset.Column) float64 {
	if c.Len() == 0 {
		return 0
	}
	return float64(c.MissingCount()) * 100 / float64(c.Len())
}

// DropNullRows removes every row with a Missing cell in any column.
func DropNullRows(ds *dataset.Dataset) (*dataset.Dataset, RowDropReport) {
	cols := ds.Columns()
	var keep, gone []int
	for i := 0; i < ds.NumRows(); i++ {
		hasNull := false
		for _, c := range cols {
			if c.Values[i].IsMissing() {
				hasNull = true
				break
			}
		}
		if hasNull {
			gone = append(gone, i)
		} else {
			keep = append(keep, i)
		}
	}
	return dropRows(ds, keep, gone)
}

func dropRows(ds *dataset.Dataset, keep, gone []int) (*dataset.Dataset, RowDropReport) {
	if len(gone) == 0 {
		return ds, RowDropReport{}
	}
	return ds.SelectRows(keep), RowDropReport{Removed: len(gone), Percent: percent(len(gone), ds.NumRows()), Rows: gone}
}

// ColumnsAboveNullThreshold returns the columns whose Missing share strictly
// exceeds threshold percent.
func ColumnsAboveNullThreshold(ds *dataset.Dataset, threshold float64) ([]string, error) {
	if math.IsNaN(threshold) || threshold < 0 || threshold > 100 {
		return nil, invalid("drop null columns", "threshold %v outside 0-100", threshold)
	}
	var names []string
	for _, c := range ds.Columns() {
		if nullFraction(c) > threshold {
			names = append(names, c.Name)
		}
	}
	return names, nil
}

// DropNullColumns drops every column whose Missing share strictly exceeds
// threshold percent. When none qualify the input is returned unchanged.
func DropNullColumns(ds *dataset.Dataset, threshold float64) (*dataset.Dataset, []string, error) {
	names, err := ColumnsAboveNullThreshold(ds, threshold)
	if err != nil {
		return nil, nil, err
	}
	if len(names) == 0 {
		return ds, nil, nil
	}
	out, err := ds.DropColumns(names...)
	if err != nil {
		return nil, nil, &OperationError{Op: "drop null columns", Err: err}
	}
	return out, names, nil
}

// NumericFill selects how Missing cells of one numeric column are filled.
type NumericFill struct {
	Column string
	Median bool
	Value  float64
}

// CategoricalFill selects how Missing cells of one text column are filled.
type CategoricalFill struct {
	Column       string
	MostFrequent bool
	Value        string
}

// FillReport records what was written into one column.
type FillReport struct {
	Column string
	Value  string
	Filled int
	// Statistic is "median" or "most frequent" when computed, else "".
	Statistic string
}

func fillColumn(c *dataset.Column, kind dataset.Kind, v dataset.Value) (*dataset.Column, int) {
	out := c.Clone()
	out.Kind = kind
	n := 0
	for i, cell := range out.Values {
		if cell.IsMissing() {
			out.Values[i] = v
			n++
		}
	}
	return out, n
}

// FillNumeric fills Missing cells per column with a constant or the column's
// own median. Each column's statistic is computed from the input dataset
// only. An Int column filled with a fractional value becomes Float.
func FillNumeric(ds *dataset.Dataset, fills []NumericFill) (*dataset.Dataset, []FillReport, error) {
	const op = "fill numeric"
	names := make([]string, len(fills))
	for i, f := range fills {
		names[i] = f.Column
	}
	if err := requireSelection(op, names); err != nil {
		return nil, nil, err
	}
	out := ds
	reports := make([]FillReport, 0, len(fills))
	for _, f := range fills {
		c, err := lookup(op, ds, f.Column)
		if err != nil {
			return nil, nil, err
		}
		if !c.Kind.Numeric() {
			return nil, nil, invalid(op, "column %q is %s, not numeric", c.Name, c.Kind)
		}
		val := f.Value
		stat := ""
		if f.Median {
			m, err := Median(c)
			if err != nil {
				return nil, nil, err
			}
			val, stat = m, "median"
		}
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return nil, nil, invalid(op, "fill value for %q must be a finite number", c.Name)
		}
		kind := c.Kind
		cell := dataset.FloatValue(val)
		if kind == dataset.Int {
			if val == math.Trunc(val) {
				cell = dataset.IntValue(int64(val))
			} else {
				kind = dataset.Float
			}
		}
		filled, n := fillColumn(c, kind, cell)
		if out, err = out.ReplaceColumn(filled); err != nil {
			return nil, nil, &OperationError{Op: op, Column: c.Name, Err: err}
		}
		reports = append(reports, FillReport{Column: c.Name, Value: strconv.FormatFloat(val, 'g', -1, 64), Filled: n, Statistic: stat})
	}
	return out, reports, nil
}

// FillCategorical fills Missing cells per text column with a constant or the
// column's most frequent value (ties broken lexicographically).
func FillCategorical(ds *dataset.Dataset, fills []CategoricalFill) (*dataset.Dataset, []FillReport, error) {
	const op = "fill categorical"
	names := make([]string, len(fills))
	for i, f := range fills {
		names[i] = f.Column
	}
	if err := requireSelection(op, names); err != nil {
		return nil, nil, err
	}
	out := ds
	reports := make([]FillReport, 0, len(fills))
	for _, f := range fills {
		c, err := lookup(op, ds, f.Column)
		if err != nil {
			return nil, nil, err
		}
		if c.Kind != dataset.Text {
			return nil, nil, invalid(op, "column %q is %s, not text", c.Name, c.Kind)
		}
		val := f.Value
		stat := ""
		if f.MostFrequent {
			m, err := MostFrequent(c)
			if err != nil {
				return nil, nil, err
			}
			val, stat = m, "most frequent"
		} else if val == "" {
			return nil, nil, invalid(op, "fill value for %q is empty", c.Name)
		}
		filled, n := fillColumn(c, dataset.Text, dataset.TextValue(val))
		if out, err = out.ReplaceColumn(filled); err != nil {
			return nil, nil, &OperationError{Op: op, Column: c.Name, Err: err}
		}
		reports = append(reports, FillReport{Column: c.Name, Value: val, Filled: n, Statistic: stat})
	}
	return out, reports, nil
}
