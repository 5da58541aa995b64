// Package dataset holds the in-memory table model: typed columns of cells,
// any of which may be the Missing marker.
package dataset

import (
	"errors"
	"fmt"
	"strings"
)

// Column is a named, typed sequence of cells.
type Column struct {
	Name   string
	Kind   Kind
	Values []Value
}

// NewColumn builds a column; vals is copied.
func NewColumn(name string, kind Kind, vals ...Value) *Column {
	cp := make([]Value, len(vals))
	copy(cp, vals)
	return &Column{Name: name, Kind: kind, Values: cp}
}

// Clone returns an independent copy of the column.
func (c *Column) Clone() *Column {
	return NewColumn(c.Name, c.Kind, c.Values...)
}

// Len returns the number of cells.
func (c *Column) Len() int { return len(c.Values) }

// MissingCount counts Missing cells.
func (c *Column) MissingCount() int {
	n := 0
	for _, v := range c.Values {
		if v.IsMissing() {
			n++
		}
	}
	return n
}

// Floats returns the non-Missing numeric payloads in row order.
func (c *Column) Floats() []float64 {
	out := make([]float64, 0, len(c.Values))
	for _, v := range c.Values {
		if f, ok := v.Float(); ok {
			out = append(out, f)
		}
	}
	return out
}

// Dataset is an ordered set of uniquely named columns of equal length.
// Row order is significant.
type Dataset struct {
	cols []*Column
	rows int
}

// ErrDuplicateColumn is returned when two columns share a name.
var ErrDuplicateColumn = errors.New("duplicate column name")

// New assembles a dataset from columns. Columns are used as given, not copied.
func New(cols ...*Column) (*Dataset, error) {
	seen := make(map[string]struct{}, len(cols))
	rows := -1
	for _, c := range cols {
		if c == nil {
			return nil, errors.New("nil column")
		}
		if _, dup := seen[c.Name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, c.Name)
		}
		seen[c.Name] = struct{}{}
		if rows >= 0 && c.Len() != rows {
			return nil, fmt.Errorf("column %q has %d rows, expected %d", c.Name, c.Len(), rows)
		}
		rows = c.Len()
	}
	if rows < 0 {
		rows = 0
	}
	return &Dataset{cols: cols, rows: rows}, nil
}

// MustNew is New that panics on error. Intended for tests and literals.
func MustNew(cols ...*Column) *Dataset {
	ds, err := New(cols...)
	if err != nil {
		panic(err)
	}
	return ds
}

// NumRows returns the row count.
func (d *Dataset) NumRows() int { return d.rows }

// NumCols returns the column count.
func (d *Dataset) NumCols() int { return len(d.cols) }

// Names returns column names in order.
func (d *Dataset) Names() []string {
	out := make([]string, len(d.cols))
	for i, c := range d.cols {
		out[i] = c.Name
	}
	return out
}

// Columns returns the dataset's columns. The slice is a copy; the columns are not.
func (d *Dataset) Columns() []*Column {
	out := make([]*Column, len(d.cols))
	copy(out, d.cols)
	return out
}

// Column looks up a column by name.
func (d *Dataset) Column(name string) (*Column, bool) {
	for _, c := range d.cols {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// Row returns the cells of row i in column order.
func (d *Dataset) Row(i int) []Value {
	out := make([]Value, len(d.cols))
	for j, c := range d.cols {
		out[j] = c.Values[i]
	}
	return out
}

// RowKey returns a string identifying the full contents of row i.
// Two rows have equal keys iff every cell is equal (Missing equals Missing).
func (d *Dataset) RowKey(i int) string {
	var b strings.Builder
	for _, c := range d.cols {
		b.WriteString(c.Values[i].key(c.Kind))
		b.WriteByte(0x1f)
	}
	return b.String()
}

// Clone returns a deep copy sharing no memory with d.
func (d *Dataset) Clone() *Dataset {
	cols := make([]*Column, len(d.cols))
	for i, c := range d.cols {
		cols[i] = c.Clone()
	}
	return &Dataset{cols: cols, rows: d.rows}
}

// Equal reports whether both datasets have the same schema and cells.
func (d *Dataset) Equal(o *Dataset) bool {
	if d == nil || o == nil {
		return d == o
	}
	if d.rows != o.rows || len(d.cols) != len(o.cols) {
		return false
	}
	for i, c := range d.cols {
		oc := o.cols[i]
		if c.Name != oc.Name || c.Kind != oc.Kind {
			return false
		}
		for r := range c.Values {
			if !c.Values[r].Equal(oc.Values[r]) {
				return false
			}
		}
	}
	return true
}

// SelectRows returns a new dataset with the given rows, in the given order.
func (d *Dataset) SelectRows(idx []int) *Dataset {
	cols := make([]*Column, len(d.cols))
	for j, c := range d.cols {
		vals := make([]Value, len(idx))
		for k, i := range idx {
			vals[k] = c.Values[i]
		}
		cols[j] = &Column{Name: c.Name, Kind: c.Kind, Values: vals}
	}
	return &Dataset{cols: cols, rows: len(idx)}
}

// Head returns the first n rows.
func (d *Dataset) Head(n int) *Dataset {
	if n > d.rows {
		n = d.rows
	}
	if n < 0 {
		n = 0
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return d.SelectRows(idx)
}

// DropColumns returns a deep copy of d without the named columns.
// Unknown names are an error.
func (d *Dataset) DropColumns(names ...string) (*Dataset, error) {
	drop := make(map[string]struct{}, len(names))
	for _, n := range names {
		if _, ok := d.Column(n); !ok {
			return nil, fmt.Errorf("unknown column %q", n)
		}
		drop[n] = struct{}{}
	}
	cols := make([]*Column, 0, len(d.cols))
	for _, c := range d.cols {
		if _, ok := drop[c.Name]; ok {
			continue
		}
		cols = append(cols, c.Clone())
	}
	return &Dataset{cols: cols, rows: d.rows}, nil
}

// ReplaceColumn returns a deep copy of d with the column of the same name
// swapped for col. The replacement must have the same length.
func (d *Dataset) ReplaceColumn(col *Column) (*Dataset, error) {
	if col.Len() != d.rows {
		return nil, fmt.Errorf("column %q has %d rows, expected %d", col.Name, col.Len(), d.rows)
	}
	out := d.Clone()
	for i, c := range out.cols {
		if c.Name == col.Name {
			out.cols[i] = col.Clone()
			return out, nil
		}
	}
	return nil, fmt.Errorf("unknown column %q", col.Name)
}
