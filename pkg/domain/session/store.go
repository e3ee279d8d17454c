package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const DefaultIdleTimeout = 12 * time.Hour

// Store keeps sessions in memory keyed by an opaque id.
type Store struct {
	mu          sync.Mutex
	sessions    map[string]*Session
	defaultLang string
	idle        time.Duration
	now         func() time.Time
}

// NewStore creates a store. Sessions idle longer than idle are dropped on the
// next access; zero means DefaultIdleTimeout.
func NewStore(defaultLang string, idle time.Duration) *Store {
	if idle <= 0 {
		idle = DefaultIdleTimeout
	}
	return &Store{
		sessions:    make(map[string]*Session),
		defaultLang: defaultLang,
		idle:        idle,
		now:         time.Now,
	}
}

// Get returns the session for id, creating a fresh one when id is unknown or
// expired. The bool reports whether a new session was created.
func (st *Store) Get(id string) (*Session, bool, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	now := st.now()
	st.expireLocked(now)

	if s, ok := st.sessions[id]; ok && id != "" {
		s.touch(now)
		return s, false, nil
	}

	s, err := newSession(uuid.NewString(), st.defaultLang, now)
	if err != nil {
		return nil, false, err
	}
	st.sessions[s.ID] = s
	return s, true, nil
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

func (st *Store) expireLocked(now time.Time) {
	for id, s := range st.sessions {
		if s.idleSince(now) > st.idle {
			delete(st.sessions, id)
		}
	}
}
