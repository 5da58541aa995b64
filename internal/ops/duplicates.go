// Package ops implements the cleaning operations. Every executor is pure: it
// reads the input dataset, never modifies it, and returns a new one.
package ops

import (
	"strings"

	"github.com/KaramelBytes/cleaner-cli/internal/dataset"
)

// DuplicateReport summarises a duplicate-removal pass.
type DuplicateReport struct {
	Removed int
}

func duplicateRows(ds *dataset.Dataset) (keep []int, removed int) {
	seen := make(map[string]struct{}, ds.NumRows())
	keep = make([]int, 0, ds.NumRows())
	for i := 0; i < ds.NumRows(); i++ {
		k := ds.RowKey(i)
		if _, dup := seen[k]; dup {
			removed++
			continue
		}
		seen[k] = struct{}{}
		keep = append(keep, i)
	}
	return keep, removed
}

// CountDuplicates returns how many rows repeat an earlier row exactly.
func CountDuplicates(ds *dataset.Dataset) int {
	_, n := duplicateRows(ds)
	return n
}

// DropDuplicates removes rows that exactly repeat an earlier row across all
// columns, keeping first occurrences in their original order. When there is
// nothing to remove the input is returned unchanged.
func DropDuplicates(ds *dataset.Dataset) (*dataset.Dataset, DuplicateReport) {
	keep, removed := duplicateRows(ds)
	if removed == 0 {
		return ds, DuplicateReport{}
	}
	return ds.SelectRows(keep), DuplicateReport{Removed: removed}
}

// DropColumns removes the named columns. An empty selection or an unknown
// name is a validation error.
func DropColumns(ds *dataset.Dataset, names []string) (*dataset.Dataset, error) {
	if err := requireSelection("drop columns", names); err != nil {
		return nil, err
	}
	for _, n := range names {
		if _, err := lookup("drop columns", ds, n); err != nil {
			return nil, err
		}
	}
	out, err := ds.DropColumns(names...)
	if err != nil {
		return nil, &OperationError{Op: "drop columns", Err: err}
	}
	return out, nil
}

func lookup(op string, ds *dataset.Dataset, name string) (*dataset.Column, error) {
	c, ok := ds.Column(name)
	if !ok {
		return nil, invalid(op, "unknown column %q (have: %s)", name, strings.Join(ds.Names(), ", "))
	}
	return c, nil
}

func requireSelection(op string, names []string) error {
	if len(names) == 0 {
		return invalid(op, "no columns selected")
	}
	seen := map[string]struct{}{}
	for _, n := range names {
		if _, dup := seen[n]; dup {
			return invalid(op, "column %q selected twice", n)
		}
		seen[n] = struct{}{}
	}
	return nil
}
