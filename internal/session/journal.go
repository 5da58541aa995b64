package session

import "time"

// Entry is one audit record. Rows and Cols describe the working dataset after
// the action.
type Entry struct {
	ID     string
	Op     string
	Detail string
	Rows   int
	Cols   int
	At     time.Time
}
