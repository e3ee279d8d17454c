package session

import (
	"sync"
	"time"
)

// Session is one user's screen state.
type Session struct {
	ID string

	mu        sync.Mutex
	lang      string
	project   string
	featureID int
	page      *PageMachine
	lastSeen  time.Time
}

// Snapshot is a copy of a session's state safe to hand to templates.
type Snapshot struct {
	ID        string
	Lang      string
	Project   string
	FeatureID int
	Page      string
}

func newSession(id, lang string, now time.Time) (*Session, error) {
	page, err := NewPageMachine("")
	if err != nil {
		return nil, err
	}
	return &Session{ID: id, lang: lang, page: page, lastSeen: now}, nil
}

// Snapshot returns the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		ID:        s.ID,
		Lang:      s.lang,
		Project:   s.project,
		FeatureID: s.featureID,
		Page:      s.page.Current(),
	}
}

// Navigate sends a navigation event to the page machine.
func (s *Session) Navigate(event string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page.Send(event)
}

// SetLang switches the session language.
func (s *Session) SetLang(lang string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lang = lang
}

// Select records the project and feature selection. Changing the project
// clears the feature.
func (s *Session) Select(project string, featureID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if project != s.project {
		s.featureID = 0
	}
	s.project = project
	if featureID > 0 {
		s.featureID = featureID
	}
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen)
}
