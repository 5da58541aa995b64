// Package session owns a loaded dataset, its working copy and the undo
// history, and is the only place where the working copy is rebound.
package session

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/KaramelBytes/cleaner-cli/internal/dataset"
	"github.com/KaramelBytes/cleaner-cli/internal/ops"
)

// Options configures a Session.
type Options struct {
	Logger        *zap.Logger
	Read          dataset.ReadOptions
	IQRMultiplier float64
	// Now overrides the journal clock.
	Now func() time.Time
}

// Executor computes a new dataset from the working copy. Returning the input
// pointer unchanged means there is nothing to commit.
type Executor func(*dataset.Dataset) (*dataset.Dataset, error)

// Session is safe for concurrent use; all mutations are serialized.
type Session struct {
	id  string
	opt Options
	log *zap.Logger

	mu       sync.Mutex
	sourceID string
	name     string
	original *dataset.Dataset
	current  *dataset.Dataset
	hist     history
	pending  *ops.Conversion
	journal  []Entry
}

// New creates an empty session with a UUIDv7 identifier.
func New(opt Options) *Session {
	if opt.Logger == nil {
		opt.Logger = zap.NewNop()
	}
	if opt.IQRMultiplier <= 0 {
		opt.IQRMultiplier = ops.DefaultIQRMultiplier
	}
	if opt.Now == nil {
		opt.Now = time.Now
	}
	id := uuid.Must(uuid.NewV7()).String()
	return &Session{
		id:  id,
		opt: opt,
		log: opt.Logger.With(zap.String("session", id)),
	}
}

func (s *Session) ID() string { return s.id }

// Loaded reports whether a dataset is present.
func (s *Session) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current != nil
}

// Name returns the display name of the loaded source.
func (s *Session) Name() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name
}

// Load reads src and makes it both the original and the working dataset,
// discarding history, any pending preview and the journal. Loading the source
// that is already loaded does nothing and reports false. On error the session
// is left exactly as it was.
func (s *Session) Load(ctx context.Context, src Source) (bool, error) {
	s.mu.Lock()
	same := s.current != nil && s.sourceID == src.ID()
	s.mu.Unlock()
	if same {
		s.log.Debug("source already loaded", zap.String("source", src.ID()))
		return false, nil
	}

	rc, err := src.Open(ctx)
	if err != nil {
		return false, &LoadError{Source: src.Name(), Err: err}
	}
	defer rc.Close()
	ds, err := dataset.ReadCSV(rc, s.opt.Read)
	if err != nil {
		return false, &LoadError{Source: src.Name(), Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sourceID = src.ID()
	s.name = src.Name()
	s.original = ds
	s.current = ds.Clone()
	s.hist.clear()
	s.pending = nil
	s.journal = nil
	s.record("load", src.Name())
	s.log.Info("dataset loaded",
		zap.String("source", src.Name()),
		zap.Int("rows", ds.NumRows()),
		zap.Int("cols", ds.NumCols()))
	return true, nil
}

// SaveSnapshot pushes a deep copy of the working dataset onto the history.
func (s *Session) SaveSnapshot() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return ErrNotLoaded
	}
	s.hist.push(s.current)
	return nil
}

// Undo restores the most recent snapshot. It reports false when there is
// nothing to undo.
func (s *Session) Undo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.hist.pop()
	if !ok {
		return false
	}
	s.current = prev
	s.pending = nil
	s.record("undo", "")
	s.log.Debug("undo", zap.Int("history", s.hist.len()))
	return true
}

// Reset snapshots the working dataset, then replaces it with a copy of the
// original. A following Undo reverses the reset.
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return ErrNotLoaded
	}
	s.hist.push(s.current)
	s.current = s.original.Clone()
	s.pending = nil
	s.record("reset", "")
	return nil
}

// Apply runs fn against the working dataset and commits the result, pushing
// a snapshot first. A failing fn leaves the session untouched. It reports
// whether a commit happened.
func (s *Session) Apply(op string, fn Executor) (bool, error) {
	return s.commit(op, func(ds *dataset.Dataset) (*dataset.Dataset, string, error) {
		out, err := fn(ds)
		return out, "", err
	})
}

func (s *Session) commit(op string, fn func(*dataset.Dataset) (*dataset.Dataset, string, error)) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return false, ErrNotLoaded
	}
	out, detail, err := fn(s.current)
	if err != nil {
		s.log.Debug("operation rejected", zap.String("op", op), zap.Error(err))
		return false, err
	}
	if out == nil {
		return false, &ops.OperationError{Op: op, Err: fmt.Errorf("no result")}
	}
	if out == s.current {
		return false, nil
	}
	s.hist.push(s.current)
	s.current = out
	s.pending = nil
	s.record(op, detail)
	s.log.Info("operation committed",
		zap.String("op", op),
		zap.Int("rows", out.NumRows()),
		zap.Int("cols", out.NumCols()),
		zap.Int("history", s.hist.len()))
	return true, nil
}

// record appends a journal entry; callers hold mu.
func (s *Session) record(op, detail string) {
	e := Entry{
		ID:     uuid.Must(uuid.NewV7()).String(),
		Op:     op,
		Detail: detail,
		At:     s.opt.Now(),
	}
	if s.current != nil {
		e.Rows, e.Cols = s.current.NumRows(), s.current.NumCols()
	}
	s.journal = append(s.journal, e)
}

// Current returns a deep copy of the working dataset, or nil.
func (s *Session) Current() *dataset.Dataset {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	return s.current.Clone()
}

// Original returns a deep copy of the dataset as loaded, or nil.
func (s *Session) Original() *dataset.Dataset {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.original == nil {
		return nil
	}
	return s.original.Clone()
}

// HistoryLen returns the number of undoable snapshots.
func (s *Session) HistoryLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hist.len()
}

// Journal returns a copy of the audit log, oldest first.
func (s *Session) Journal() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, len(s.journal))
	copy(out, s.journal)
	return out
}

// Export writes the working dataset as CSV.
func (s *Session) Export(w io.Writer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return ErrNotLoaded
	}
	if err := s.current.WriteCSV(w); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return nil
}

// Inspect calls fn with the working dataset under the session lock. fn must
// not retain or modify ds.
func (s *Session) Inspect(fn func(ds *dataset.Dataset)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return ErrNotLoaded
	}
	fn(s.current)
	return nil
}

// DropDuplicates removes repeated rows.
func (s *Session) DropDuplicates() (ops.DuplicateReport, error) {
	var rep ops.DuplicateReport
	_, err := s.commit("drop duplicates", func(ds *dataset.Dataset) (*dataset.Dataset, string, error) {
		var out *dataset.Dataset
		out, rep = ops.DropDuplicates(ds)
		return out, fmt.Sprintf("%d rows removed", rep.Removed), nil
	})
	return rep, err
}

// DropColumns removes the named columns.
func (s *Session) DropColumns(names []string) error {
	_, err := s.commit("drop columns", func(ds *dataset.Dataset) (*dataset.Dataset, string, error) {
		out, err := ops.DropColumns(ds, names)
		return out, strings.Join(names, ", "), err
	})
	return err
}

// DropNullRows removes rows holding any Missing cell.
func (s *Session) DropNullRows() (ops.RowDropReport, error) {
	var rep ops.RowDropReport
	_, err := s.commit("drop null rows", func(ds *dataset.Dataset) (*dataset.Dataset, string, error) {
		var out *dataset.Dataset
		out, rep = ops.DropNullRows(ds)
		return out, fmt.Sprintf("%d rows removed (%.2f%%)", rep.Removed, rep.Percent), nil
	})
	return rep, err
}

// DropNullColumns removes columns whose Missing share exceeds threshold percent.
func (s *Session) DropNullColumns(threshold float64) ([]string, error) {
	var dropped []string
	_, err := s.commit("drop null columns", func(ds *dataset.Dataset) (*dataset.Dataset, string, error) {
		out, names, err := ops.DropNullColumns(ds, threshold)
		dropped = names
		return out, strings.Join(names, ", "), err
	})
	return dropped, err
}

// FillNumeric fills Missing cells of numeric columns.
func (s *Session) FillNumeric(fills []ops.NumericFill) ([]ops.FillReport, error) {
	var reps []ops.FillReport
	_, err := s.commit("fill numeric", func(ds *dataset.Dataset) (*dataset.Dataset, string, error) {
		out, r, err := ops.FillNumeric(ds, fills)
		reps = r
		return out, describeFills(r), err
	})
	return reps, err
}

// FillCategorical fills Missing cells of text columns.
func (s *Session) FillCategorical(fills []ops.CategoricalFill) ([]ops.FillReport, error) {
	var reps []ops.FillReport
	_, err := s.commit("fill categorical", func(ds *dataset.Dataset) (*dataset.Dataset, string, error) {
		out, r, err := ops.FillCategorical(ds, fills)
		reps = r
		return out, describeFills(r), err
	})
	return reps, err
}

// DropOutliers removes rows outside the IQR fences of any selected column.
func (s *Session) DropOutliers(names []string) (ops.RowDropReport, error) {
	var rep ops.RowDropReport
	_, err := s.commit("drop outliers", func(ds *dataset.Dataset) (*dataset.Dataset, string, error) {
		out, r, err := ops.DropOutliers(ds, names, s.opt.IQRMultiplier)
		rep = r
		return out, fmt.Sprintf("%s: %d rows removed", strings.Join(names, ", "), r.Removed), err
	})
	return rep, err
}

// CapOutliers clamps selected columns to their IQR fences.
func (s *Session) CapOutliers(names []string) (ops.CapReport, error) {
	var rep ops.CapReport
	_, err := s.commit("cap outliers", func(ds *dataset.Dataset) (*dataset.Dataset, string, error) {
		out, r, err := ops.CapOutliers(ds, names, s.opt.IQRMultiplier)
		rep = r
		return out, fmt.Sprintf("%s: %d rows changed", strings.Join(names, ", "), r.RowsChanged), err
	})
	return rep, err
}

// AutoClean runs the fixed cleaning pipeline as a single undoable commit.
func (s *Session) AutoClean(opt ops.AutoCleanOptions) (ops.AutoCleanReport, error) {
	var rep ops.AutoCleanReport
	_, err := s.commit("auto clean", func(ds *dataset.Dataset) (*dataset.Dataset, string, error) {
		out, r, err := ops.AutoClean(ds, opt)
		rep = r
		return out, fmt.Sprintf("%d duplicates, %d columns dropped, %d filled",
			r.DuplicatesRemoved, len(r.DroppedColumns), len(r.NumericFills)+len(r.CategoricalFills)), err
	})
	return rep, err
}

func describeFills(reps []ops.FillReport) string {
	parts := make([]string, len(reps))
	for i, r := range reps {
		parts[i] = fmt.Sprintf("%s=%s (%d)", r.Column, r.Value, r.Filled)
	}
	return strings.Join(parts, ", ")
}
