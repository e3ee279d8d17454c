// Package session holds per-user screen state: the current page, language and
// selections. Nothing here is shared between sessions.
package session

import (
	"fmt"

	"github.com/felixgeelhaar/statekit"
)

// Page states. They double as statekit.StateID values.
const (
	PageGenerateTasks  = "generate_tasks"
	PageFeatureBuilder = "feature_builder"
)

// Navigation events.
const (
	EventOpenGenerateTasks  = "open_generate_tasks"
	EventOpenFeatureBuilder = "open_feature_builder"
)

type pageContext struct{}

// PageMachine is the two-screen navigation machine. Generate Tasks is the
// initial screen; each screen can be opened from either screen.
type PageMachine struct {
	interpreter *statekit.Interpreter[pageContext]
}

// NewPageMachine starts a machine in initial, or in Generate Tasks when
// initial is empty.
func NewPageMachine(initial string) (*PageMachine, error) {
	if initial == "" {
		initial = PageGenerateTasks
	}
	if !IsPage(initial) {
		return nil, fmt.Errorf("unknown page %q", initial)
	}

	builder := statekit.NewMachine[pageContext]("page-machine").
		WithInitial(statekit.StateID(initial)).
		WithContext(pageContext{})

	builder.State(PageGenerateTasks).
		On(EventOpenGenerateTasks).Target(PageGenerateTasks).
		On(EventOpenFeatureBuilder).Target(PageFeatureBuilder).
		Done()

	builder.State(PageFeatureBuilder).
		On(EventOpenGenerateTasks).Target(PageGenerateTasks).
		On(EventOpenFeatureBuilder).Target(PageFeatureBuilder).
		Done()

	machine, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build page machine: %w", err)
	}

	interpreter := statekit.NewInterpreter(machine)
	interpreter.Start()

	return &PageMachine{interpreter: interpreter}, nil
}

// Send applies a navigation event. Unknown events leave the page unchanged
// and return an error.
func (m *PageMachine) Send(event string) error {
	if !IsEvent(event) {
		return fmt.Errorf("navigation %q is not allowed from page %q", event, m.Current())
	}
	m.interpreter.Send(statekit.Event{Type: statekit.EventType(event)})
	return nil
}

// Current returns the current page.
func (m *PageMachine) Current() string {
	return string(m.interpreter.State().Value)
}

// IsPage reports whether p names a page.
func IsPage(p string) bool {
	return p == PageGenerateTasks || p == PageFeatureBuilder
}

// IsEvent reports whether e names a navigation event.
func IsEvent(e string) bool {
	return e == EventOpenGenerateTasks || e == EventOpenFeatureBuilder
}

// EventFor returns the event that opens page p.
func EventFor(page string) (string, bool) {
	switch page {
	case PageGenerateTasks:
		return EventOpenGenerateTasks, true
	case PageFeatureBuilder:
		return EventOpenFeatureBuilder, true
	}
	return "", false
}
