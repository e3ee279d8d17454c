package session

import (
	"testing"
	"time"
)

func TestPageMachine(t *testing.T) {
	m, err := NewPageMachine("")
	if err != nil {
		t.Fatalf("NewPageMachine failed: %v", err)
	}
	if m.Current() != PageGenerateTasks {
		t.Errorf("expected initial page %s, got %s", PageGenerateTasks, m.Current())
	}

	if err := m.Send(EventOpenFeatureBuilder); err != nil {
		t.Fatalf("open feature builder: %v", err)
	}
	if m.Current() != PageFeatureBuilder {
		t.Errorf("expected %s, got %s", PageFeatureBuilder, m.Current())
	}

	// Re-opening the current page is allowed and keeps the state.
	if err := m.Send(EventOpenFeatureBuilder); err != nil {
		t.Fatalf("re-open feature builder: %v", err)
	}
	if m.Current() != PageFeatureBuilder {
		t.Errorf("expected %s, got %s", PageFeatureBuilder, m.Current())
	}

	if err := m.Send("delete_everything"); err == nil {
		t.Error("expected error for unknown event")
	}
	if m.Current() != PageFeatureBuilder {
		t.Errorf("unknown event changed the page to %s", m.Current())
	}

	if err := m.Send(EventOpenGenerateTasks); err != nil {
		t.Fatalf("open generate tasks: %v", err)
	}
	if m.Current() != PageGenerateTasks {
		t.Errorf("expected %s, got %s", PageGenerateTasks, m.Current())
	}
}

func TestNewPageMachine_UnknownInitial(t *testing.T) {
	if _, err := NewPageMachine("settings"); err == nil {
		t.Error("expected error for unknown initial page")
	}
}

func TestEventFor(t *testing.T) {
	if ev, ok := EventFor(PageFeatureBuilder); !ok || ev != EventOpenFeatureBuilder {
		t.Errorf("EventFor(feature_builder) = %q, %v", ev, ok)
	}
	if _, ok := EventFor("nope"); ok {
		t.Error("expected miss for unknown page")
	}
}

func TestStore_SessionsAreIsolated(t *testing.T) {
	st := NewStore("he", 0)

	a, created, err := st.Get("")
	if err != nil || !created {
		t.Fatalf("expected new session, got created=%v err=%v", created, err)
	}
	b, _, _ := st.Get("unknown-id")
	if a.ID == b.ID {
		t.Fatal("expected distinct sessions")
	}

	a.Select("Alpha", 42)
	if err := a.Navigate(EventOpenFeatureBuilder); err != nil {
		t.Fatal(err)
	}

	snapB := b.Snapshot()
	if snapB.Project != "" || snapB.FeatureID != 0 || snapB.Page != PageGenerateTasks {
		t.Errorf("session b leaked state from a: %+v", snapB)
	}
	if snapB.Lang != "he" {
		t.Errorf("expected default lang he, got %s", snapB.Lang)
	}

	again, created, _ := st.Get(a.ID)
	if created || again != a {
		t.Error("expected the same session for a known id")
	}
	snapA := again.Snapshot()
	if snapA.Project != "Alpha" || snapA.FeatureID != 42 || snapA.Page != PageFeatureBuilder {
		t.Errorf("unexpected snapshot: %+v", snapA)
	}
}

func TestSession_SelectClearsFeatureOnProjectChange(t *testing.T) {
	st := NewStore("en", 0)
	s, _, _ := st.Get("")

	s.Select("Alpha", 42)
	s.Select("Beta", 0)
	if snap := s.Snapshot(); snap.Project != "Beta" || snap.FeatureID != 0 {
		t.Errorf("expected feature cleared, got %+v", snap)
	}

	s.Select("Beta", 7)
	s.Select("Beta", 0)
	if snap := s.Snapshot(); snap.FeatureID != 7 {
		t.Errorf("expected feature kept within project, got %+v", snap)
	}
}

func TestStore_ExpiresIdleSessions(t *testing.T) {
	st := NewStore("en", time.Minute)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	st.now = func() time.Time { return now }

	s, _, _ := st.Get("")
	now = now.Add(2 * time.Minute)

	again, created, _ := st.Get(s.ID)
	if !created || again.ID == s.ID {
		t.Error("expected expired session to be replaced")
	}
	if st.Len() != 1 {
		t.Errorf("expected 1 live session, got %d", st.Len())
	}
}
