package session

import (
	"fmt"

	"github.com/KaramelBytes/cleaner-cli/internal/dataset"
	"github.com/KaramelBytes/cleaner-cli/internal/ops"
)

// PreviewConversion stages a conversion of column to target without
// touching the working dataset. It replaces any earlier preview.
func (s *Session) PreviewConversion(column string, target dataset.Kind) (*ops.Conversion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil, ErrNotLoaded
	}
	s.pending = nil
	conv, err := ops.Convert(s.current, column, target)
	if err != nil {
		return nil, err
	}
	s.pending = conv
	return conv, nil
}

// Pending returns the staged conversion, if any.
func (s *Session) Pending() (*ops.Conversion, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending, s.pending != nil
}

// ClearPreview abandons a staged conversion.
func (s *Session) ClearPreview() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = nil
}

// ApplyConversion commits the staged conversion. It is a validation error
// unless a preview for the same column and target is staged.
func (s *Session) ApplyConversion(column string, target dataset.Kind) (*ops.Conversion, error) {
	var applied *ops.Conversion
	_, err := s.commit("convert", func(ds *dataset.Dataset) (*dataset.Dataset, string, error) {
		p := s.pending
		if p == nil || p.Column != column || p.Target != target {
			return nil, "", &ops.ValidationError{
				Op:     "convert",
				Reason: fmt.Sprintf("preview %s as %s before applying", column, target),
			}
		}
		out, err := p.Apply(ds)
		if err != nil {
			return nil, "", err
		}
		applied = p
		return out, fmt.Sprintf("%s %s -> %s, %d failed", p.Column, p.From, p.Target, p.Failed), nil
	})
	if err != nil {
		return nil, err
	}
	return applied, nil
}
