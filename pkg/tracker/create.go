package tracker

import (
	"context"
	"net/http"
	"strconv"

	"github.com/felixgeelhaar/featurecraft/pkg/domain/workitem"
)

const (
	relHierarchyReverse = "System.LinkTypes.Hierarchy-Reverse"
	linkComment         = "This task was created using AI"
)

// PatchOperation is one entry of a JSON patch document.
type PatchOperation struct {
	Op    string `json:"op"`
	Path  string `json:"path"`
	From  any    `json:"from"`
	Value any    `json:"value"`
}

// Relation is the value of a /relations/- patch operation.
type Relation struct {
	Rel        string            `json:"rel"`
	URL        string            `json:"url"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// CreatedItem is a work item the tracker accepted.
type CreatedItem struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

// CreateResult lists what a creation batch produced. Failed items were
// logged and skipped.
type CreateResult struct {
	Created []CreatedItem `json:"created"`
	Failed  []*ItemError  `json:"-"`
}

// IDs returns the ids of the created items in submission order.
func (r *CreateResult) IDs() []int {
	ids := make([]int, 0, len(r.Created))
	for _, c := range r.Created {
		ids = append(ids, c.ID)
	}
	return ids
}

// BuildPatchDocument renders the creation document for one proposal. Top-level
// types get the project as area path; child types with a parent get exactly
// one reverse-hierarchy relation to it.
func (c *Client) BuildPatchDocument(project string, t workitem.Type, p workitem.Proposal, parentID int) []PatchOperation {
	doc := []PatchOperation{
		{Op: "add", Path: "/fields/" + fieldTitle, Value: p.Title},
		{Op: "add", Path: "/fields/" + fieldDescription, Value: p.Description},
		{Op: "add", Path: "/fields/" + fieldEffort, Value: p.Effort},
		{Op: "add", Path: "/fields/" + fieldPriority, Value: p.Priority},
	}

	if t.IsTopLevel() {
		doc = append(doc, PatchOperation{Op: "add", Path: "/fields/" + fieldAreaPath, Value: project})
	}

	if t.IsChild() && parentID > 0 {
		doc = append(doc, PatchOperation{
			Op:   "add",
			Path: "/relations/-",
			Value: Relation{
				Rel:        relHierarchyReverse,
				URL:        c.WorkItemURL(project, parentID),
				Attributes: map[string]string{"comment": linkComment},
			},
		})
	}

	return doc
}

// WorkItemURL is the API URL of a work item, used as a relation target.
func (c *Client) WorkItemURL(project string, id int) string {
	return c.orgURL(project, "_apis", "wit", "workitems", strconv.Itoa(id))
}

// CreateWorkItems creates one tracker item per proposal, one request each.
// An item the tracker rejects is logged and skipped. When every item fails
// the result comes back together with a *BatchError.
func (c *Client) CreateWorkItems(ctx context.Context, project string, t workitem.Type, proposals []workitem.Proposal, parentID int) (*CreateResult, error) {
	endpoint := c.withQuery(c.orgURL(project, "_apis", "wit", "workitems", "$"+string(t)), nil)
	result := &CreateResult{}

	for _, p := range proposals {
		if err := ctx.Err(); err != nil {
			result.Failed = append(result.Failed, &ItemError{Title: p.Title, Err: err})
			continue
		}

		var resp workItemResponse
		_, err := c.do(ctx, "create work item", http.MethodPost, endpoint, contentTypeJSONPatch, c.BuildPatchDocument(project, t, p, parentID), &resp)
		if err != nil {
			c.logger.Warn("work item creation failed",
				"project", project,
				"type", string(t),
				"title", p.Title,
				"error", err,
			)
			result.Failed = append(result.Failed, &ItemError{Title: p.Title, StatusCode: statusCode(err), Err: err})
			continue
		}

		c.logger.Info("work item created",
			"project", project,
			"type", string(t),
			"id", resp.ID,
			"parent_id", parentID,
		)
		result.Created = append(result.Created, CreatedItem{ID: resp.ID, Title: p.Title, URL: resp.URL})
	}

	if len(proposals) > 0 && len(result.Created) == 0 {
		return result, &BatchError{Type: string(t), Errors: result.Failed}
	}
	return result, nil
}
