package session

import (
	"sort"
	"sync"
)

// Store is a registry of independent sessions keyed by ID.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	opt      Options
}

// NewStore returns a Store whose sessions are created with opt.
func NewStore(opt Options) *Store {
	return &Store{sessions: make(map[string]*Session), opt: opt}
}

// Create registers and returns a new session.
func (st *Store) Create() *Session {
	s := New(st.opt)
	st.mu.Lock()
	st.sessions[s.ID()] = s
	st.mu.Unlock()
	return s
}

func (st *Store) Get(id string) (*Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[id]
	return s, ok
}

// Delete removes a session and reports whether it existed.
func (st *Store) Delete(id string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	_, ok := st.sessions[id]
	delete(st.sessions, id)
	return ok
}

// IDs lists session IDs in creation order.
func (st *Store) IDs() []string {
	st.mu.RLock()
	ids := make([]string, 0, len(st.sessions))
	for id := range st.sessions {
		ids = append(ids, id)
	}
	st.mu.RUnlock()
	sort.Strings(ids)
	return ids
}

func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
