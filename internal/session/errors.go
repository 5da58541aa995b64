package session

import (
	"errors"
	"fmt"
)

// ErrNotLoaded is returned by operations that need a dataset before one has
// been loaded.
var ErrNotLoaded = errors.New("no dataset loaded")

// LoadError indicates a source could not be opened or parsed. The session
// state is unchanged when it is returned.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	if e == nil {
		return "load failed"
	}
	return fmt.Sprintf("load %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
