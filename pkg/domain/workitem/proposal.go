package workitem

import (
	"fmt"
	"strings"
)

const (
	MinEffort   = 1
	MaxEffort   = 99
	MinPriority = 1
	MaxPriority = 4

	DefaultEffort   = 1
	DefaultPriority = 2
)

// Proposal is a work item that has not been created yet. It is built from a
// model reply or from form input, submitted once and then dropped.
type Proposal struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Effort      int    `json:"effort"`
	Priority    int    `json:"priority"`
}

// NewProposal builds a proposal with the form defaults for effort and priority.
func NewProposal(title, description string) Proposal {
	return Proposal{
		Title:       title,
		Description: description,
		Effort:      DefaultEffort,
		Priority:    DefaultPriority,
	}
}

// Validate checks the field ranges a proposal must satisfy before submission.
func (p Proposal) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if p.Effort < MinEffort || p.Effort > MaxEffort {
		return &ValidationError{Field: "effort", Reason: fmt.Sprintf("must be between %d and %d, got %d", MinEffort, MaxEffort, p.Effort)}
	}
	if p.Priority < MinPriority || p.Priority > MaxPriority {
		return &ValidationError{Field: "priority", Reason: fmt.Sprintf("must be between %d and %d, got %d", MinPriority, MaxPriority, p.Priority)}
	}
	return nil
}

// ValidateBatch checks a batch about to be created as items of type t.
// Child types need a parent feature id.
func ValidateBatch(t Type, proposals []Proposal, parentID int) error {
	if len(proposals) == 0 {
		return &ValidationError{Field: "proposals", Reason: "nothing to create"}
	}
	if t.IsChild() && parentID <= 0 {
		return &ValidationError{Field: "parent", Reason: fmt.Sprintf("%s requires a parent feature id", t)}
	}
	for i, p := range proposals {
		if err := p.Validate(); err != nil {
			verr := err.(*ValidationError)
			verr.Index = i + 1
			return verr
		}
	}
	return nil
}
