package ops

import (
	"github.com/KaramelBytes/cleaner-cli/internal/dataset"
)

// OutlierStat is the outlier count of one numeric column.
type OutlierStat struct {
	Column string
	Bounds Bounds
	Count  int
}

// CapReport summarises a capping pass.
type CapReport struct {
	// RowsChanged counts rows where at least one selected cell was clamped.
	RowsChanged int
	Bounds      map[string]Bounds
}

// OutlierSummary computes IQR bounds and outlier counts for every numeric
// column that has at least one value.
func OutlierSummary(ds *dataset.Dataset, k float64) []OutlierStat {
	var out []OutlierStat
	for _, c := range ds.Columns() {
		if !c.Kind.Numeric() {
			continue
		}
		b, err := IQRBounds(c, k)
		if err != nil {
			continue
		}
		n := 0
		for _, x := range c.Floats() {
			if b.Outlier(x) {
				n++
			}
		}
		out = append(out, OutlierStat{Column: c.Name, Bounds: b, Count: n})
	}
	return out
}

// boundsFor validates the selection and freezes bounds for every selected
// column against ds.
func boundsFor(op string, ds *dataset.Dataset, names []string, k float64) ([]*dataset.Column, []Bounds, error) {
	if err := requireSelection(op, names); err != nil {
		return nil, nil, err
	}
	cols := make([]*dataset.Column, len(names))
	bounds := make([]Bounds, len(names))
	for i, n := range names {
		c, err := lookup(op, ds, n)
		if err != nil {
			return nil, nil, err
		}
		b, err := IQRBounds(c, k)
		if err != nil {
			return nil, nil, err
		}
		cols[i], bounds[i] = c, b
	}
	return cols, bounds, nil
}

// DropOutliers removes every row that is an outlier in any selected column.
// All bounds are computed from ds before any row is removed, so the result
// does not depend on selection order. Missing cells are never outliers.
func DropOutliers(ds *dataset.Dataset, names []string, k float64) (*dataset.Dataset, RowDropReport, error) {
	cols, bounds, err := boundsFor("drop outliers", ds, names, k)
	if err != nil {
		return nil, RowDropReport{}, err
	}
	var keep, gone []int
	for i := 0; i < ds.NumRows(); i++ {
		out := false
		for j, c := range cols {
			if x, ok := c.Values[i].Float(); ok && bounds[j].Outlier(x) {
				out = true
				break
			}
		}
		if out {
			gone = append(gone, i)
		} else {
			keep = append(keep, i)
		}
	}
	out, rep := dropRows(ds, keep, gone)
	return out, rep, nil
}

// CapOutliers clamps selected columns to their IQR bounds without removing
// rows. A clamped Int column becomes Float since fences are fractional.
func CapOutliers(ds *dataset.Dataset, names []string, k float64) (*dataset.Dataset, CapReport, error) {
	const op = "cap outliers"
	cols, bounds, err := boundsFor(op, ds, names, k)
	if err != nil {
		return nil, CapReport{}, err
	}
	changed := make(map[int]struct{})
	rep := CapReport{Bounds: make(map[string]Bounds, len(cols))}
	out := ds
	for j, c := range cols {
		b := bounds[j]
		rep.Bounds[c.Name] = b
		capped := c.Clone()
		hit := false
		for i, v := range capped.Values {
			x, ok := v.Float()
			if !ok || !b.Outlier(x) {
				continue
			}
			if x < b.Low {
				x = b.Low
			} else {
				x = b.High
			}
			capped.Values[i] = dataset.FloatValue(x)
			changed[i] = struct{}{}
			hit = true
		}
		if !hit {
			continue
		}
		capped.Kind = dataset.Float
		if out, err = out.ReplaceColumn(capped); err != nil {
			return nil, CapReport{}, &OperationError{Op: op, Column: c.Name, Err: err}
		}
	}
	rep.RowsChanged = len(changed)
	return out, rep, nil
}
