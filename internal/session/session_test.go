package session_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/cleaner-cli/internal/dataset"
	"github.com/KaramelBytes/cleaner-cli/internal/ops"
	"github.com/KaramelBytes/cleaner-cli/internal/session"
)

const sample = "id,score,city\n1,10,Oslo\n2,,Rome\n2,,Rome\n3,300,\n4,40,Oslo\n"

func loaded(t *testing.T, csv string) *session.Session {
	t.Helper()
	s := session.New(session.Options{})
	ok, err := s.Load(context.Background(), session.ReaderSource{Label: "t.csv", Reader: strings.NewReader(csv)})
	require.NoError(t, err)
	require.True(t, ok)
	return s
}

func TestOperationsRequireLoad(t *testing.T) {
	s := session.New(session.Options{})
	require.False(t, s.Loaded())
	require.Nil(t, s.Current())
	require.ErrorIs(t, s.Reset(), session.ErrNotLoaded)
	require.ErrorIs(t, s.SaveSnapshot(), session.ErrNotLoaded)
	_, err := s.DropDuplicates()
	require.ErrorIs(t, err, session.ErrNotLoaded)
	require.False(t, s.Undo())
	require.ErrorIs(t, s.Export(&bytes.Buffer{}), session.ErrNotLoaded)
}

func TestUndoRoundTrip(t *testing.T) {
	s := loaded(t, sample)
	before := s.Current()

	rep, err := s.DropDuplicates()
	require.NoError(t, err)
	require.Equal(t, 1, rep.Removed)
	require.Equal(t, 1, s.HistoryLen())
	require.False(t, before.Equal(s.Current()))

	require.True(t, s.Undo())
	require.True(t, before.Equal(s.Current()))
	require.Zero(t, s.HistoryLen())
	require.False(t, s.Undo(), "nothing left to undo")
}

func TestRepeatedUndoWalksBack(t *testing.T) {
	s := loaded(t, sample)
	v0 := s.Current()
	_, err := s.DropDuplicates()
	require.NoError(t, err)
	v1 := s.Current()
	require.NoError(t, s.DropColumns([]string{"city"}))
	require.Equal(t, 2, s.HistoryLen())

	require.True(t, s.Undo())
	require.True(t, v1.Equal(s.Current()))
	require.True(t, s.Undo())
	require.True(t, v0.Equal(s.Current()))
}

func TestResetIsUndoable(t *testing.T) {
	s := loaded(t, sample)
	_, err := s.DropDuplicates()
	require.NoError(t, err)
	require.NoError(t, s.DropColumns([]string{"score"}))
	preReset := s.Current()

	require.NoError(t, s.Reset())
	require.True(t, s.Original().Equal(s.Current()))
	require.Equal(t, 3, s.HistoryLen())

	require.True(t, s.Undo())
	require.True(t, preReset.Equal(s.Current()))
}

func TestSnapshotsAreNotAliased(t *testing.T) {
	s := loaded(t, sample)
	require.NoError(t, s.SaveSnapshot())
	snap := s.Current()

	// mutate a copy obtained from the session; the session must not see it
	cur := s.Current()
	col, _ := cur.Column("city")
	col.Values[0] = dataset.TextValue("Paris")
	require.True(t, snap.Equal(s.Current()))

	require.NoError(t, s.DropColumns([]string{"city"}))
	require.True(t, s.Undo())
	require.True(t, snap.Equal(s.Current()))
	require.True(t, s.Undo(), "explicit snapshot is undoable")
	require.True(t, snap.Equal(s.Current()))
}

func TestEveryMutatingPathPushesSnapshot(t *testing.T) {
	cases := []struct {
		name string
		run  func(*session.Session) error
	}{
		{"drop duplicates", func(s *session.Session) error { _, err := s.DropDuplicates(); return err }},
		{"drop columns", func(s *session.Session) error { return s.DropColumns([]string{"city"}) }},
		{"drop null rows", func(s *session.Session) error { _, err := s.DropNullRows(); return err }},
		{"drop null columns", func(s *session.Session) error { _, err := s.DropNullColumns(20); return err }},
		{"fill numeric", func(s *session.Session) error {
			_, err := s.FillNumeric([]ops.NumericFill{{Column: "score", Median: true}})
			return err
		}},
		{"fill categorical", func(s *session.Session) error {
			_, err := s.FillCategorical([]ops.CategoricalFill{{Column: "city", Value: "n/a"}})
			return err
		}},
		{"drop outliers", func(s *session.Session) error { _, err := s.DropOutliers([]string{"score"}); return err }},
		{"cap outliers", func(s *session.Session) error { _, err := s.CapOutliers([]string{"score"}); return err }},
		{"auto clean", func(s *session.Session) error { _, err := s.AutoClean(ops.AutoCleanOptions{NullThreshold: ops.DefaultAutoCleanThreshold}); return err }},
		{"convert", func(s *session.Session) error {
			if _, err := s.PreviewConversion("id", dataset.Text); err != nil {
				return err
			}
			_, err := s.ApplyConversion("id", dataset.Text)
			return err
		}},
		{"reset", func(s *session.Session) error { return s.Reset() }},
	}
	csv := "id,score,city\n1,10,Oslo\n2,,Rome\n2,,Rome\n3,11,\n4,12,Oslo\n5,13,Oslo\n6,1000,Oslo\n"
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := loaded(t, csv)
			before := s.Current()
			require.NoError(t, tc.run(s))
			require.Equal(t, 1, s.HistoryLen())
			require.True(t, s.Undo())
			require.True(t, before.Equal(s.Current()))
		})
	}
}

func TestFailedOperationLeavesStateUnchanged(t *testing.T) {
	s := loaded(t, sample)
	before := s.Current()

	err := s.DropColumns(nil)
	require.True(t, ops.IsValidation(err))
	_, err = s.DropNullColumns(150)
	require.True(t, ops.IsValidation(err))
	_, err = s.FillNumeric([]ops.NumericFill{{Column: "city", Median: true}})
	require.True(t, ops.IsValidation(err))

	require.Zero(t, s.HistoryLen())
	require.True(t, before.Equal(s.Current()))
}

func TestNoOpDoesNotSnapshot(t *testing.T) {
	s := loaded(t, "a,b\n1,x\n2,y\n")
	rep, err := s.DropDuplicates()
	require.NoError(t, err)
	require.Zero(t, rep.Removed)
	_, err = s.DropNullRows()
	require.NoError(t, err)
	require.Zero(t, s.HistoryLen())

	committed, err := s.Apply("custom", func(ds *dataset.Dataset) (*dataset.Dataset, error) { return ds, nil })
	require.NoError(t, err)
	require.False(t, committed)
}

func TestApplyErrorRollsNothing(t *testing.T) {
	s := loaded(t, sample)
	boom := errors.New("boom")
	committed, err := s.Apply("custom", func(*dataset.Dataset) (*dataset.Dataset, error) { return nil, boom })
	require.ErrorIs(t, err, boom)
	require.False(t, committed)
	require.Zero(t, s.HistoryLen())
}

func TestPreviewApplyStateMachine(t *testing.T) {
	s := loaded(t, "n,m\n1,a\n2,b\nx,c\n")

	_, err := s.ApplyConversion("n", dataset.Int)
	require.True(t, ops.IsValidation(err), "apply without preview")

	conv, err := s.PreviewConversion("n", dataset.Int)
	require.NoError(t, err)
	require.Equal(t, 1, conv.Failed)
	require.Equal(t, 33.33, conv.Percent)
	col, _ := s.Current().Column("n")
	require.Equal(t, dataset.Text, col.Kind, "preview must not commit")

	_, err = s.ApplyConversion("n", dataset.Float)
	require.True(t, ops.IsValidation(err), "target changed since preview")
	_, err = s.ApplyConversion("m", dataset.Int)
	require.True(t, ops.IsValidation(err), "column changed since preview")
	_, ok := s.Pending()
	require.True(t, ok, "a rejected apply keeps the preview")

	applied, err := s.ApplyConversion("n", dataset.Int)
	require.NoError(t, err)
	require.Equal(t, "n", applied.Column)
	col, _ = s.Current().Column("n")
	require.Equal(t, dataset.Int, col.Kind)
	require.True(t, col.Values[2].IsMissing())
	_, ok = s.Pending()
	require.False(t, ok)

	_, err = s.ApplyConversion("n", dataset.Int)
	require.True(t, ops.IsValidation(err), "preview is consumed by apply")
}

func TestPreviewInvalidatedByCommitAndUndo(t *testing.T) {
	s := loaded(t, "n,m\n1,a\n1,a\n")
	_, err := s.PreviewConversion("n", dataset.Float)
	require.NoError(t, err)
	_, err = s.DropDuplicates()
	require.NoError(t, err)
	_, ok := s.Pending()
	require.False(t, ok)

	_, err = s.PreviewConversion("n", dataset.Float)
	require.NoError(t, err)
	require.True(t, s.Undo())
	_, ok = s.Pending()
	require.False(t, ok)

	_, err = s.PreviewConversion("n", dataset.Float)
	require.NoError(t, err)
	s.ClearPreview()
	_, ok = s.Pending()
	require.False(t, ok)

	_, err = s.PreviewConversion("zzz", dataset.Float)
	require.True(t, ops.IsValidation(err))
}

func TestLoadIsIdempotentPerSource(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.csv")
	b := filepath.Join(dir, "b.csv")
	require.NoError(t, os.WriteFile(a, []byte(sample), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("x\n1\n"), 0o644))

	s := session.New(session.Options{})
	ctx := context.Background()
	ok, err := s.Load(ctx, session.FileSource{Path: a})
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "a.csv", s.Name())
	_, err = s.DropDuplicates()
	require.NoError(t, err)

	ok, err = s.Load(ctx, session.FileSource{Path: a})
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, 1, s.HistoryLen(), "same source keeps history")

	ok, err = s.Load(ctx, session.FileSource{Path: b})
	require.NoError(t, err)
	require.True(t, ok)
	require.Zero(t, s.HistoryLen())
	require.Equal(t, []string{"x"}, s.Original().Names())
	j := s.Journal()
	require.Len(t, j, 1)
	require.Equal(t, "load", j[0].Op)
}

func TestFailedLoadKeepsState(t *testing.T) {
	s := loaded(t, sample)
	_, err := s.DropDuplicates()
	require.NoError(t, err)
	before := s.Current()

	_, err = s.Load(context.Background(), session.FileSource{Path: filepath.Join(t.TempDir(), "nope.csv")})
	var le *session.LoadError
	require.ErrorAs(t, err, &le)
	require.Equal(t, "nope.csv", le.Source)

	_, err = s.Load(context.Background(), session.ReaderSource{Label: "empty", Reader: strings.NewReader("")})
	require.ErrorIs(t, err, dataset.ErrEmptyInput)

	require.True(t, before.Equal(s.Current()))
	require.Equal(t, 1, s.HistoryLen())
	require.Equal(t, "t.csv", s.Name())
}

func TestURLSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.csv" {
			http.Error(w, "gone", http.StatusNotFound)
			return
		}
		fmt.Fprint(w, sample)
	}))
	defer srv.Close()

	s := session.New(session.Options{})
	ok, err := s.Load(context.Background(), session.URLSource{Label: "remote", URL: srv.URL + "/data.csv", Client: srv.Client()})
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 5, s.Current().NumRows())

	_, err = s.Load(context.Background(), session.URLSource{URL: srv.URL + "/missing.csv"})
	var le *session.LoadError
	require.ErrorAs(t, err, &le)
	require.Contains(t, err.Error(), "404")
	require.Equal(t, "remote", s.Name())
}

func TestJournalAndExport(t *testing.T) {
	s := loaded(t, sample)
	_, err := s.DropDuplicates()
	require.NoError(t, err)
	require.True(t, s.Undo())
	require.NoError(t, s.Reset())

	var got []string
	for _, e := range s.Journal() {
		require.NotEmpty(t, e.ID)
		got = append(got, e.Op)
	}
	require.Equal(t, []string{"load", "drop duplicates", "undo", "reset"}, got)

	var buf bytes.Buffer
	require.NoError(t, s.Export(&buf))
	require.Equal(t, sample, buf.String())
}

func TestConcurrentOperationsAreSerialized(t *testing.T) {
	s := loaded(t, sample)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.DropDuplicates()
			_ = s.Current()
		}()
	}
	wg.Wait()
	require.Equal(t, 1, s.HistoryLen())
	require.Equal(t, 4, s.Current().NumRows())
}

func TestStore(t *testing.T) {
	st := session.NewStore(session.Options{})
	a := st.Create()
	b := st.Create()
	require.NotEqual(t, a.ID(), b.ID())
	require.Equal(t, []string{a.ID(), b.ID()}, st.IDs())

	got, ok := st.Get(a.ID())
	require.True(t, ok)
	require.Same(t, a, got)

	_, err := a.Load(context.Background(), session.ReaderSource{Label: "a", Reader: strings.NewReader(sample)})
	require.NoError(t, err)
	require.False(t, b.Loaded(), "sessions share no state")

	require.True(t, st.Delete(a.ID()))
	require.False(t, st.Delete(a.ID()))
	require.Equal(t, 1, st.Len())
}
