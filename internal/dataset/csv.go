package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// DefaultMissingTokens are the literal cell values treated as Missing on load,
// in addition to the empty cell.
var DefaultMissingTokens = []string{"-", "n/a", "N/A", "missing"}

// ReadOptions controls CSV parsing.
type ReadOptions struct {
	// Delimiter for CSV. If 0, ',' is used.
	Delimiter rune
	// MissingTokens are exact, case-sensitive cell values replaced by Missing.
	// A nil slice means DefaultMissingTokens.
	MissingTokens []string
}

// ErrEmptyInput is returned when the input has no header row.
var ErrEmptyInput = errors.New("no header row")

// ReadCSV parses a CSV stream with a header row into a dataset. Empty cells and
// MissingTokens become Missing; every column's kind is inferred from its
// remaining cells.
func ReadCSV(in io.Reader, opt ReadOptions) (*Dataset, error) {
	r := csv.NewReader(in)
	r.FieldsPerRecord = -1
	if opt.Delimiter != 0 {
		r.Comma = opt.Delimiter
	}
	tokens := opt.MissingTokens
	if tokens == nil {
		tokens = DefaultMissingTokens
	}
	missing := make(map[string]struct{}, len(tokens)+1)
	missing[""] = struct{}{}
	for _, t := range tokens {
		missing[t] = struct{}{}
	}

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyInput
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	ncol := len(header)
	names := make([]string, ncol)
	for i, h := range header {
		names[i] = strings.TrimSpace(h)
		if i == 0 {
			names[i] = strings.TrimPrefix(names[i], "\ufeff")
		}
	}

	raw := make([][]string, ncol)
	present := make([][]bool, ncol)
	line := 1
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", line, err)
		}
		line++
		if len(rec) > ncol {
			return nil, fmt.Errorf("row %d has %d fields, header has %d", line, len(rec), ncol)
		}
		for j := 0; j < ncol; j++ {
			cell := ""
			ok := false
			if j < len(rec) {
				cell = rec[j]
				_, isMissing := missing[cell]
				ok = !isMissing
			}
			raw[j] = append(raw[j], cell)
			present[j] = append(present[j], ok)
		}
	}

	cols := make([]*Column, ncol)
	for j := range cols {
		cols[j] = inferColumn(names[j], raw[j], present[j])
	}
	ds, err := New(cols...)
	if err != nil {
		return nil, fmt.Errorf("build dataset: %w", err)
	}
	return ds, nil
}

// inferColumn picks the narrowest kind every present cell parses as:
// Int, then Float, otherwise Text. A column with no present cells is Float.
func inferColumn(name string, raw []string, present []bool) *Column {
	kind := Int
	seen := false
	for i, s := range raw {
		if !present[i] {
			continue
		}
		seen = true
		s = strings.TrimSpace(s)
		if kind == Int {
			if _, err := strconv.ParseInt(s, 10, 64); err == nil {
				continue
			}
			kind = Float
		}
		if _, err := strconv.ParseFloat(s, 64); err != nil {
			kind = Text
			break
		}
	}
	if !seen {
		kind = Float
	}
	vals := make([]Value, len(raw))
	for i, s := range raw {
		if !present[i] {
			continue
		}
		switch kind {
		case Int:
			n, _ := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
			vals[i] = IntValue(n)
		case Float:
			f, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
			vals[i] = FloatValue(f)
		default:
			vals[i] = TextValue(s)
		}
	}
	return &Column{Name: name, Kind: kind, Values: vals}
}

// WriteCSV writes d as comma-separated UTF-8 with a header row and no index
// column. Missing cells are written as empty fields.
func (d *Dataset) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(d.Names()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	rec := make([]string, len(d.cols))
	for i := 0; i < d.rows; i++ {
		for j, c := range d.cols {
			rec[j] = c.Values[i].Format(c.Kind)
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// CSV returns d rendered by WriteCSV.
func (d *Dataset) CSV() (string, error) {
	var b strings.Builder
	if err := d.WriteCSV(&b); err != nil {
		return "", err
	}
	return b.String(), nil
}
