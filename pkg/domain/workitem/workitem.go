// Package workitem holds the tracker-facing value objects: projects, work items
// read from the tracker and proposals waiting to be created.
package workitem

import (
	"fmt"
	"strings"
)

// Type is a tracker work item type name.
type Type string

const (
	TypeFeature            Type = "Feature"
	TypeProductBacklogItem Type = "Product Backlog Item"
)

// IsTopLevel reports whether items of this type are created without a parent
// and scoped by area path.
func (t Type) IsTopLevel() bool {
	return t == TypeFeature
}

// IsChild reports whether items of this type hang under a parent feature.
func (t Type) IsChild() bool {
	return t == TypeProductBacklogItem
}

func (t Type) String() string {
	return string(t)
}

// ParseType maps a user supplied name onto a known type. Matching ignores case
// and accepts the "pbi" shorthand.
func ParseType(s string) (Type, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "feature":
		return TypeFeature, true
	case "product backlog item", "pbi":
		return TypeProductBacklogItem, true
	default:
		return "", false
	}
}

// Project is a tracker project. The tracker owns it; we only read it.
type Project struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Team is a team inside a tracker project.
type Team struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// WorkItem is the read model of a tracker item. Description is rich text (HTML).
// Type and Project are the tracker's System.WorkItemType and System.TeamProject.
type WorkItem struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Type        Type   `json:"type,omitempty"`
	Project     string `json:"project,omitempty"`
}

// HasDescription reports whether the item carries any description markup.
func (w WorkItem) HasDescription() bool {
	return strings.TrimSpace(w.Description) != ""
}

// ValidateParent checks that w can carry product backlog items created in
// project: it must be a Feature of that project.
func (w WorkItem) ValidateParent(project string) error {
	if w.ID <= 0 {
		return &ValidationError{Field: "feature", Reason: "must be selected"}
	}
	if w.Type != TypeFeature {
		kind := string(w.Type)
		if kind == "" {
			kind = "of unknown type"
		}
		return &ValidationError{Field: "feature", Reason: fmt.Sprintf("%d is %s, not a %s", w.ID, kind, TypeFeature)}
	}
	if !strings.EqualFold(strings.TrimSpace(w.Project), strings.TrimSpace(project)) {
		return &ValidationError{Field: "feature", Reason: fmt.Sprintf("%d belongs to project %q, not %q", w.ID, w.Project, project)}
	}
	return nil
}

// FindByID returns the item with the given id.
func FindByID(items []WorkItem, id int) (WorkItem, bool) {
	for _, item := range items {
		if item.ID == id {
			return item, true
		}
	}
	return WorkItem{}, false
}
