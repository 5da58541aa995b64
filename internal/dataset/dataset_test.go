package dataset_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/cleaner-cli/internal/dataset"
)

func sample() *dataset.Dataset {
	return dataset.MustNew(
		dataset.NewColumn("id", dataset.Int, dataset.IntValue(1), dataset.IntValue(2), dataset.IntValue(3)),
		dataset.NewColumn("city", dataset.Text, dataset.TextValue("Oslo"), dataset.Missing(), dataset.TextValue("Rome")),
	)
}

func TestNewRejectsDuplicateNames(t *testing.T) {
	_, err := dataset.New(
		dataset.NewColumn("a", dataset.Int, dataset.IntValue(1)),
		dataset.NewColumn("a", dataset.Text, dataset.TextValue("x")),
	)
	require.ErrorIs(t, err, dataset.ErrDuplicateColumn)
}

func TestNewRejectsRaggedColumns(t *testing.T) {
	_, err := dataset.New(
		dataset.NewColumn("a", dataset.Int, dataset.IntValue(1), dataset.IntValue(2)),
		dataset.NewColumn("b", dataset.Int, dataset.IntValue(1)),
	)
	require.Error(t, err)
}

func TestCloneIsIndependent(t *testing.T) {
	ds := sample()
	cp := ds.Clone()
	require.True(t, ds.Equal(cp))

	col, ok := cp.Column("id")
	require.True(t, ok)
	col.Values[0] = dataset.IntValue(99)
	col.Name = "renamed"

	orig, ok := ds.Column("id")
	require.True(t, ok)
	v, _ := orig.Values[0].Int()
	require.Equal(t, int64(1), v)
	require.False(t, ds.Equal(cp))
}

func TestRowKeyTreatsMissingAsEqual(t *testing.T) {
	ds := dataset.MustNew(
		dataset.NewColumn("a", dataset.Float, dataset.Missing(), dataset.Missing(), dataset.FloatValue(0)),
		dataset.NewColumn("b", dataset.Text, dataset.TextValue(""), dataset.TextValue(""), dataset.TextValue("")),
	)
	require.Equal(t, ds.RowKey(0), ds.RowKey(1))
	require.NotEqual(t, ds.RowKey(0), ds.RowKey(2))
}

func TestSelectRowsAndHead(t *testing.T) {
	ds := sample()
	sel := ds.SelectRows([]int{2, 0})
	require.Equal(t, 2, sel.NumRows())
	id, _ := sel.Column("id")
	first, _ := id.Values[0].Int()
	require.Equal(t, int64(3), first)

	require.Equal(t, 2, ds.Head(2).NumRows())
	require.Equal(t, 3, ds.Head(10).NumRows())
}

func TestDropAndReplaceColumns(t *testing.T) {
	ds := sample()
	out, err := ds.DropColumns("city")
	require.NoError(t, err)
	require.Equal(t, []string{"id"}, out.Names())
	require.Equal(t, []string{"id", "city"}, ds.Names())

	_, err = ds.DropColumns("nope")
	require.Error(t, err)

	repl, err := ds.ReplaceColumn(dataset.NewColumn("id", dataset.Float,
		dataset.FloatValue(1.5), dataset.FloatValue(2.5), dataset.FloatValue(3.5)))
	require.NoError(t, err)
	c, _ := repl.Column("id")
	require.Equal(t, dataset.Float, c.Kind)
	orig, _ := ds.Column("id")
	require.Equal(t, dataset.Int, orig.Kind)
}

func TestCoerce(t *testing.T) {
	cases := []struct {
		name    string
		in      dataset.Value
		from    dataset.Kind
		to      dataset.Kind
		want    dataset.Value
		wantErr bool
	}{
		{"text to int", dataset.TextValue("42"), dataset.Text, dataset.Int, dataset.IntValue(42), false},
		{"text float to int", dataset.TextValue("3.0"), dataset.Text, dataset.Int, dataset.IntValue(3), false},
		{"fraction to int", dataset.TextValue("3.5"), dataset.Text, dataset.Int, dataset.Missing(), true},
		{"garbage to float", dataset.TextValue("x"), dataset.Text, dataset.Float, dataset.Missing(), true},
		{"int to text", dataset.IntValue(7), dataset.Int, dataset.Text, dataset.TextValue("7"), false},
		{"missing stays missing", dataset.Missing(), dataset.Text, dataset.Int, dataset.Missing(), false},
		{"date", dataset.TextValue("2024-08-10"), dataset.Text, dataset.Time,
			dataset.TimeValue(time.Date(2024, 8, 10, 0, 0, 0, 0, time.UTC)), false},
		{"number to time", dataset.IntValue(2020), dataset.Int, dataset.Time, dataset.Missing(), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := dataset.Coerce(tc.in, tc.from, tc.to)
			if tc.wantErr {
				var cf *dataset.ConversionFailure
				require.ErrorAs(t, err, &cf)
			} else {
				require.NoError(t, err)
			}
			require.True(t, tc.want.Equal(got), "got %v", got.Format(tc.to))
		})
	}
}

func TestConvertColumnReportsFailures(t *testing.T) {
	col := dataset.NewColumn("n", dataset.Text, dataset.TextValue("1"), dataset.TextValue("2"), dataset.TextValue("x"))
	out, failed := dataset.ConvertColumn(col, dataset.Int)
	require.Equal(t, []int{2}, failed)
	require.Equal(t, dataset.Int, out.Kind)
	require.True(t, out.Values[2].IsMissing())
	n, _ := out.Values[1].Int()
	require.Equal(t, int64(2), n)
}

func TestParseKind(t *testing.T) {
	k, err := dataset.ParseKind("datetime")
	require.NoError(t, err)
	require.Equal(t, dataset.Time, k)
	_, err = dataset.ParseKind("bool")
	require.Error(t, err)
}

func TestConvertColumnReadsSlashDatesOneWay(t *testing.T) {
	day := func(y int, m time.Month, d int) dataset.Value {
		return dataset.TimeValue(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
	}
	cases := []struct {
		name string
		in   []string
		want []dataset.Value
	}{
		{"month first", []string{"03/04/2021", "12/25/2021"}, []dataset.Value{day(2021, 3, 4), day(2021, 12, 25)}},
		{"day first", []string{"03/04/2021", "25/12/2021"}, []dataset.Value{day(2021, 4, 3), day(2021, 12, 25)}},
		{"ambiguous defaults to month first", []string{"03/04/2021", "05/06/2021"}, []dataset.Value{day(2021, 3, 4), day(2021, 5, 6)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			vals := make([]dataset.Value, len(tc.in))
			for i, s := range tc.in {
				vals[i] = dataset.TextValue(s)
			}
			out, failed := dataset.ConvertColumn(dataset.NewColumn("d", dataset.Text, vals...), dataset.Time)
			require.Empty(t, failed)
			for i, want := range tc.want {
				require.True(t, want.Equal(out.Values[i]), "row %d: got %s", i, out.Values[i].Format(dataset.Time))
			}
		})
	}
}
