package analysis

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/KaramelBytes/cleaner-cli/internal/dataset"
	"github.com/KaramelBytes/cleaner-cli/internal/ops"
)

// Options controls profiling behavior.
type Options struct {
	// SampleRows determines how many leading rows to include in the report.
	SampleRows int
	// IQRMultiplier scales the Tukey fences used for outlier counts.
	IQRMultiplier float64
	// TopValues caps the number of frequent values listed per text column.
	TopValues int
}

// DefaultOptions returns reasonable defaults for dataset profiling.
func DefaultOptions() Options {
	return Options{
		SampleRows:    5,
		IQRMultiplier: ops.DefaultIQRMultiplier,
		TopValues:     8,
	}
}

// Report is a markdown-friendly profile of a dataset.
type Report struct {
	Name       string
	Rows       int
	Duplicates int
	Cols       []ColumnSummary
	Samples    [][]string
	Warnings   []string
}

// ColumnSummary captures the declared type and statistics per column.
type ColumnSummary struct {
	Name    string
	Kind    string // numeric|datetime|categorical|text
	DType   dataset.Kind
	NonNull int
	Missing int
	Unique  int
	// Numeric stats
	Min  float64
	Max  float64
	Mean float64
	Std  float64
	// Outliers (IQR fences)
	OutliersCount int
	Low, High     float64
	// Datetime range
	First, Last time.Time
	// Categorical top values
	TopValues    []ops.CategoryCount
	ExampleTexts []string
}

// MissingPercent returns the share of Missing cells.
func (c ColumnSummary) MissingPercent() float64 {
	total := c.NonNull + c.Missing
	if total == 0 {
		return 0
	}
	return float64(c.Missing) * 100.0 / float64(total)
}

// Profile summarises ds column by column.
func Profile(name string, ds *dataset.Dataset, opt Options) *Report {
	sampleRows := opt.SampleRows
	if sampleRows <= 0 {
		sampleRows = 5
	}
	topN := opt.TopValues
	if topN <= 0 {
		topN = 8
	}
	rep := &Report{Name: name, Rows: ds.NumRows(), Duplicates: ops.CountDuplicates(ds)}

	head := ds.Head(sampleRows)
	hcols := head.Columns()
	for i := 0; i < head.NumRows(); i++ {
		row := make([]string, len(hcols))
		for j, c := range hcols {
			row[j] = c.Values[i].Format(c.Kind)
		}
		rep.Samples = append(rep.Samples, row)
	}

	for _, c := range ds.Columns() {
		miss := c.MissingCount()
		s := ColumnSummary{Name: c.Name, DType: c.Kind, NonNull: c.Len() - miss, Missing: miss}
		switch {
		case c.Kind.Numeric():
			s.Kind = "numeric"
			summarizeNumeric(&s, c, opt.IQRMultiplier)
		case c.Kind == dataset.Time:
			s.Kind = "datetime"
			for _, v := range c.Values {
				t, ok := v.Time()
				if !ok {
					continue
				}
				if s.First.IsZero() || t.Before(s.First) {
					s.First = t
				}
				if s.Last.IsZero() || t.After(s.Last) {
					s.Last = t
				}
			}
		default:
			tops := ops.ValueCounts(c)
			s.Unique = len(tops)
			// treat low-cardinality text as categories
			if s.Unique > 0 && (s.Unique <= 20 || s.Unique*2 <= s.NonNull) {
				s.Kind = "categorical"
				if len(tops) > topN {
					tops = tops[:topN]
				}
				s.TopValues = tops
			} else {
				s.Kind = "text"
				for _, v := range c.Values {
					if len(s.ExampleTexts) >= 3 {
						break
					}
					if t, ok := v.Text(); ok {
						s.ExampleTexts = append(s.ExampleTexts, t)
					}
				}
			}
		}
		if s.NonNull == 0 && rep.Rows > 0 {
			rep.Warnings = append(rep.Warnings, fmt.Sprintf("column %s has no values", safeName(c.Name)))
		}
		rep.Cols = append(rep.Cols, s)
	}
	if rep.Duplicates > 0 {
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("%d duplicate rows", rep.Duplicates))
	}
	return rep
}

func summarizeNumeric(s *ColumnSummary, c *dataset.Column, k float64) {
	vals := c.Floats()
	if len(vals) == 0 {
		return
	}
	// Welford update
	var n int
	var mean, m2 float64
	lo, hi := math.Inf(1), math.Inf(-1)
	uniq := make(map[float64]struct{})
	for _, x := range vals {
		n++
		if x < lo {
			lo = x
		}
		if x > hi {
			hi = x
		}
		delta := x - mean
		mean += delta / float64(n)
		m2 += delta * (x - mean)
		uniq[x] = struct{}{}
	}
	s.Min, s.Max, s.Mean = lo, hi, mean
	if n > 1 {
		s.Std = math.Sqrt(m2 / float64(n-1))
	}
	s.Unique = len(uniq)
	if b, err := ops.IQRBounds(c, k); err == nil {
		s.Low, s.High = b.Low, b.High
		for _, x := range vals {
			if b.Outlier(x) {
				s.OutliersCount++
			}
		}
	}
}

// Markdown renders a compact report suitable for the terminal or standalone docs.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Name))
	}
	b.WriteString(fmt.Sprintf("Rows: %d\n", r.Rows))
	b.WriteString(fmt.Sprintf("Columns: %d\n\n", len(r.Cols)))

	b.WriteString("[SCHEMA]\n")
	for _, c := range r.Cols {
		b.WriteString(fmt.Sprintf("- %s: %s/%s (non-null %d, missing %.1f%%)", safeName(c.Name), c.Kind, c.DType, c.NonNull, c.MissingPercent()))
		switch c.Kind {
		case "numeric":
			if c.NonNull > 0 {
				b.WriteString(fmt.Sprintf(" — min %.4g, max %.4g, mean %.4g, std %.4g", c.Min, c.Max, c.Mean, c.Std))
				b.WriteString(fmt.Sprintf("; outliers: %d outside [%.4g, %.4g]", c.OutliersCount, c.Low, c.High))
			}
		case "datetime":
			if !c.First.IsZero() {
				b.WriteString(fmt.Sprintf(" — %s to %s", c.First.Format("2006-01-02"), c.Last.Format("2006-01-02")))
			}
		case "categorical":
			if len(c.TopValues) > 0 {
				b.WriteString(" — top: ")
				for i, kv := range c.TopValues {
					if i > 0 {
						b.WriteString(", ")
					}
					b.WriteString(fmt.Sprintf("%s(%d)", safeVal(kv.Value), kv.Count))
				}
				if c.Unique > len(c.TopValues) {
					b.WriteString(fmt.Sprintf("; unique=%d", c.Unique))
				}
			}
		case "text":
			if len(c.ExampleTexts) > 0 {
				b.WriteString(" — e.g., ")
				for i, ex := range c.ExampleTexts {
					if i > 0 {
						b.WriteString(" | ")
					}
					b.WriteString(safeVal(ex))
				}
			}
		}
		b.WriteString("\n")
	}
	if len(r.Samples) > 0 {
		b.WriteString("\n[HEAD]\n")
		b.WriteString(Table(r.columnNames(), r.Samples))
	}
	if len(r.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range r.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (r *Report) columnNames() []string {
	out := make([]string, len(r.Cols))
	for i, c := range r.Cols {
		out[i] = c.Name
	}
	return out
}

// Table renders rows as a Markdown table. Long cells are truncated.
func Table(header []string, rows [][]string) string {
	var b strings.Builder
	b.WriteString("| ")
	for i, h := range header {
		if i > 0 {
			b.WriteString(" | ")
		}
		b.WriteString(safeName(h))
	}
	b.WriteString(" |\n| ")
	for i := range header {
		if i > 0 {
			b.WriteString(" | ")
		}
		b.WriteString("---")
	}
	b.WriteString(" |\n")
	for _, row := range rows {
		b.WriteString("| ")
		for i := range header {
			if i > 0 {
				b.WriteString(" | ")
			}
			val := ""
			if i < len(row) {
				val = row[i]
			}
			if r := []rune(val); len(r) > 80 {
				val = string(r[:77]) + "..."
			}
			b.WriteString(safeVal(val))
		}
		b.WriteString(" |\n")
	}
	return b.String()
}

// DatasetTable renders the rows of ds as a Markdown table, Missing as "<NA>".
func DatasetTable(ds *dataset.Dataset) string {
	cols := ds.Columns()
	rows := make([][]string, ds.NumRows())
	for i := range rows {
		row := make([]string, len(cols))
		for j, c := range cols {
			if c.Values[i].IsMissing() {
				row[j] = "<NA>"
			} else {
				row[j] = c.Values[i].Format(c.Kind)
			}
		}
		rows[i] = row
	}
	return Table(ds.Names(), rows)
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}
func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
