package ops

import (
	"github.com/KaramelBytes/cleaner-cli/internal/dataset"
)

// Conversion is the staged result of converting one column. It is computed
// without touching the dataset; Apply commits it.
type Conversion struct {
	Column string
	From   dataset.Kind
	Target dataset.Kind
	Result *dataset.Column
	// Failed counts cells that held a value but could not be coerced.
	Failed int
	// FailedRows are the row positions of those cells.
	FailedRows []int
	Total      int
	// Percent is Failed as a share of Total, rounded to 2 decimals.
	Percent float64
	// MissingAfter counts all Missing cells in Result.
	MissingAfter int
}

// Safe reports whether the conversion introduces no new Missing cells.
func (c *Conversion) Safe() bool { return c.Failed == 0 }

// Convert coerces a column to target, value by value. A cell that fails to
// convert becomes Missing; it is counted, never fatal.
func Convert(ds *dataset.Dataset, column string, target dataset.Kind) (*Conversion, error) {
	c, err := lookup("convert", ds, column)
	if err != nil {
		return nil, err
	}
	res, failed := dataset.ConvertColumn(c, target)
	return &Conversion{
		Column:       c.Name,
		From:         c.Kind,
		Target:       target,
		Result:       res,
		Failed:       len(failed),
		FailedRows:   failed,
		Total:        res.Len(),
		Percent:      percent(len(failed), res.Len()),
		MissingAfter: res.MissingCount(),
	}, nil
}

// Apply returns ds with the converted column swapped in.
func (c *Conversion) Apply(ds *dataset.Dataset) (*dataset.Dataset, error) {
	out, err := ds.ReplaceColumn(c.Result)
	if err != nil {
		return nil, &OperationError{Op: "convert", Column: c.Column, Err: err}
	}
	return out, nil
}
