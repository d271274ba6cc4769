package session

import (
	"log"
	"sync"
	"time"

	"csvquery/domain/core"
)

// Store keeps one session per browser or API client
type Store struct {
	mu       sync.Mutex
	deps     Dependencies
	idle     time.Duration
	sessions map[core.ID]*Session
}

// NewStore creates a store. Sessions idle longer than idle are dropped when a
// new session is created; zero keeps sessions for the process lifetime.
func NewStore(deps Dependencies, idle time.Duration) *Store {
	return &Store{
		deps:     deps,
		idle:     idle,
		sessions: make(map[core.ID]*Session),
	}
}

// Get returns the session with the given ID and marks it active
func (st *Store) Get(id string) (*Session, bool) {
	parsed, err := core.ParseID(id)
	if err != nil {
		return nil, false
	}

	st.mu.Lock()
	s, ok := st.sessions[parsed]
	st.mu.Unlock()
	if ok {
		s.touch(time.Now())
	}
	return s, ok
}

// GetOrCreate returns the session with the given ID, or a new empty session
// when the ID is unknown or malformed. The returned session's ID may differ from id.
func (st *Store) GetOrCreate(id string) *Session {
	if s, ok := st.Get(id); ok {
		return s
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	st.pruneLocked(time.Now())
	s := New(core.NewID(), st.deps)
	st.sessions[s.ID()] = s
	log.Printf("[SessionStore] created session %s (%d active)", s.ID(), len(st.sessions))
	return s
}

// Len returns the number of live sessions
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

func (st *Store) pruneLocked(now time.Time) {
	if st.idle <= 0 {
		return
	}
	for id, s := range st.sessions {
		if now.Sub(s.LastActive()) > st.idle {
			delete(st.sessions, id)
		}
	}
}
