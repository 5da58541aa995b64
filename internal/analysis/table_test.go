package analysis

import (
	"math"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/KaramelBytes/cleaner-cli/internal/dataset"
)

var csvRows = []string{
	"Group,Score,When,Category,Note",
	"A,10,2024-01-03,alpha,first",
	"A,11,2024-01-01,alpha,second",
	"A,9.5,2024-01-05,beta,third",
	"B,10.5,,alpha,fourth",
	"B,9.8,2024-01-02,beta,fifth",
	"B,10.2,2024-01-04,alpha,sixth",
	"A,8.8,2024-01-06,gamma,seventh",
	"B,9.7,2024-01-07,beta,eighth",
	"A,50,2024-01-08,alpha,ninth",
	"B,,2024-01-09,gamma,tenth",
}

func fixture(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.ReadCSV(strings.NewReader(strings.Join(csvRows, "\n")), dataset.ReadOptions{})
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	conv, failed := dataset.ConvertColumn(mustCol(t, ds, "When"), dataset.Time)
	if len(failed) != 0 {
		t.Fatalf("unexpected failures: %v", failed)
	}
	ds, err = ds.ReplaceColumn(conv)
	if err != nil {
		t.Fatalf("ReplaceColumn: %v", err)
	}
	return ds
}

func mustCol(t *testing.T, ds *dataset.Dataset, name string) *dataset.Column {
	t.Helper()
	c, ok := ds.Column(name)
	if !ok {
		t.Fatalf("missing column %s", name)
	}
	return c
}

func summary(t *testing.T, r *Report, name string) ColumnSummary {
	t.Helper()
	for _, c := range r.Cols {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("no summary for %s", name)
	return ColumnSummary{}
}

func TestProfileNumeric(t *testing.T) {
	rep := Profile("scores.csv", fixture(t), DefaultOptions())
	if rep.Rows != 10 {
		t.Fatalf("rows = %d", rep.Rows)
	}
	s := summary(t, rep, "Score")
	if s.Kind != "numeric" || s.DType != dataset.Float {
		t.Fatalf("kind = %s/%s", s.Kind, s.DType)
	}
	if s.NonNull != 9 || s.Missing != 1 {
		t.Fatalf("non-null %d missing %d", s.NonNull, s.Missing)
	}
	if math.Abs(s.MissingPercent()-10) > 1e-9 {
		t.Fatalf("missing%% = %v", s.MissingPercent())
	}
	if s.Min != 8.8 || s.Max != 50 {
		t.Fatalf("min/max = %v/%v", s.Min, s.Max)
	}
	wantMean := (10 + 11 + 9.5 + 10.5 + 9.8 + 10.2 + 8.8 + 9.7 + 50) / 9
	if math.Abs(s.Mean-wantMean) > 1e-9 {
		t.Fatalf("mean = %v, want %v", s.Mean, wantMean)
	}
	if s.OutliersCount != 1 {
		t.Fatalf("outliers = %d", s.OutliersCount)
	}
	if s.High >= 50 || s.Low <= 0 {
		t.Fatalf("fences = [%v, %v]", s.Low, s.High)
	}
}

func TestProfileCategoricalTextAndTime(t *testing.T) {
	rep := Profile("", fixture(t), Options{TopValues: 2})
	cat := summary(t, rep, "Category")
	if cat.Kind != "categorical" || cat.Unique != 3 {
		t.Fatalf("category = %s unique %d", cat.Kind, cat.Unique)
	}
	if len(cat.TopValues) != 2 || cat.TopValues[0].Value != "alpha" || cat.TopValues[0].Count != 5 {
		t.Fatalf("top = %+v", cat.TopValues)
	}
	when := summary(t, rep, "When")
	if when.Kind != "datetime" || when.Missing != 1 {
		t.Fatalf("when = %s missing %d", when.Kind, when.Missing)
	}
	if got := when.First.Format("2006-01-02"); got != "2024-01-01" {
		t.Fatalf("first = %s", got)
	}
	if got := when.Last.Format("2006-01-02"); got != "2024-01-09" {
		t.Fatalf("last = %s", got)
	}
	if len(rep.Samples) != 5 {
		t.Fatalf("samples = %d", len(rep.Samples))
	}
}

func TestProfileFreeText(t *testing.T) {
	var rows []string
	rows = append(rows, "comment")
	for i := 0; i < 30; i++ {
		rows = append(rows, strings.Repeat("x", i+1))
	}
	ds, err := dataset.ReadCSV(strings.NewReader(strings.Join(rows, "\n")), dataset.ReadOptions{})
	if err != nil {
		t.Fatal(err)
	}
	s := Profile("", ds, DefaultOptions()).Cols[0]
	if s.Kind != "text" || len(s.ExampleTexts) != 3 {
		t.Fatalf("kind = %s examples %v", s.Kind, s.ExampleTexts)
	}
}

func TestMarkdown(t *testing.T) {
	md := Profile("scores.csv", fixture(t), DefaultOptions()).Markdown()
	for _, want := range []string{
		"[DATASET SUMMARY]",
		"File: scores.csv",
		"Rows: 10",
		"- Score: numeric/float",
		"outliers: 1 outside",
		"- Category: categorical/str",
		"alpha(5)",
		"- When: datetime/datetime",
		"2024-01-01 to 2024-01-09",
		"[HEAD]",
		"| Group | Score | When | Category | Note |",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("markdown missing %q:\n%s", want, md)
		}
	}
	if strings.Contains(md, "[NOTES]") {
		t.Fatalf("no notes expected:\n%s", md)
	}
}

func TestMarkdownNotes(t *testing.T) {
	ds, err := dataset.ReadCSV(strings.NewReader("a,b\n1,\n1,\n"), dataset.ReadOptions{})
	if err != nil {
		t.Fatal(err)
	}
	md := Profile("", ds, DefaultOptions()).Markdown()
	if !strings.Contains(md, "column b has no values") || !strings.Contains(md, "1 duplicate rows") {
		t.Fatalf("notes missing:\n%s", md)
	}
}

func TestTableEscapesAndTruncates(t *testing.T) {
	long := strings.Repeat("y", 100)
	out := Table([]string{"a", " "}, [][]string{{"x|y", long}, {"short"}})
	if !strings.Contains(out, "| a | (unnamed) |") {
		t.Fatalf("header: %s", out)
	}
	if !strings.Contains(out, "x/y") || !strings.Contains(out, strings.Repeat("y", 77)+"...") {
		t.Fatalf("cells: %s", out)
	}
	if !strings.Contains(out, "| short |  |") {
		t.Fatalf("padding: %s", out)
	}
}

func TestTableTruncatesOnRuneBoundaries(t *testing.T) {
	out := Table([]string{"a"}, [][]string{{strings.Repeat("é", 100)}})
	if !utf8.ValidString(out) {
		t.Fatalf("invalid UTF-8: %q", out)
	}
	if !strings.Contains(out, strings.Repeat("é", 77)+"...") {
		t.Fatalf("cell: %s", out)
	}
}

func TestDatasetTableShowsMissing(t *testing.T) {
	ds, err := dataset.ReadCSV(strings.NewReader("a,b\n1,\n"), dataset.ReadOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if out := DatasetTable(ds); !strings.Contains(out, "| 1 | <NA> |") {
		t.Fatalf("table: %s", out)
	}
}
