package tracker

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/felixgeelhaar/featurecraft/pkg/domain/workitem"
)

const (
	fieldID          = "System.Id"
	fieldTitle       = "System.Title"
	fieldDescription = "System.Description"
	fieldAreaPath    = "System.AreaPath"
	fieldType        = "System.WorkItemType"
	fieldProject     = "System.TeamProject"
	fieldEffort      = "Microsoft.VSTS.Scheduling.Effort"
	fieldPriority    = "Microsoft.VSTS.Common.Priority"

	// maxBatchIDs is the tracker's cap on ids per batch fetch.
	maxBatchIDs = 200
)

// readFields are the fields mapped onto workitem.WorkItem.
var readFields = []string{fieldID, fieldTitle, fieldDescription, fieldType, fieldProject}

type wiqlRequest struct {
	Query string `json:"query"`
}

type wiqlResponse struct {
	WorkItems []struct {
		ID int `json:"id"`
	} `json:"workItems"`
}

type workItemResponse struct {
	ID     int            `json:"id"`
	URL    string         `json:"url"`
	Fields map[string]any `json:"fields"`
}

type workItemsResponse struct {
	Count int                `json:"count"`
	Value []workItemResponse `json:"value"`
}

// BuildWIQL renders the query selecting items of type t under areaPath.
func BuildWIQL(t workitem.Type, areaPath string) string {
	return fmt.Sprintf(
		"SELECT [%s], [%s], [%s] FROM WorkItems WHERE [System.WorkItemType] = '%s' AND [%s] UNDER '%s'",
		fieldID, fieldTitle, fieldDescription, wiqlEscape(string(t)), fieldAreaPath, wiqlEscape(areaPath),
	)
}

// wiqlEscape doubles single quotes inside a WIQL string literal.
func wiqlEscape(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// ListWorkItems returns items of type t whose area path is under areaPath.
// It runs a WIQL query for ids first and only batch-fetches when the query
// matched something.
func (c *Client) ListWorkItems(ctx context.Context, project string, t workitem.Type, areaPath string) ([]workitem.WorkItem, error) {
	ids, err := c.queryIDs(ctx, project, t, areaPath)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []workitem.WorkItem{}, nil
	}
	return c.fetchWorkItems(ctx, ids)
}

func (c *Client) queryIDs(ctx context.Context, project string, t workitem.Type, areaPath string) ([]int, error) {
	endpoint := c.withQuery(c.orgURL(project, "_apis", "wit", "wiql"), nil)

	var resp wiqlResponse
	if _, err := c.do(ctx, "query work items", http.MethodPost, endpoint, contentTypeJSON, wiqlRequest{Query: BuildWIQL(t, areaPath)}, &resp); err != nil {
		return nil, &QueryError{Project: project, StatusCode: statusCode(err), Err: err}
	}

	ids := make([]int, 0, len(resp.WorkItems))
	for _, ref := range resp.WorkItems {
		ids = append(ids, ref.ID)
	}
	return ids, nil
}

// fetchWorkItems loads full field sets for ids, in chunks the tracker accepts,
// and returns them in the order of ids.
func (c *Client) fetchWorkItems(ctx context.Context, ids []int) ([]workitem.WorkItem, error) {
	byID := make(map[int]workitem.WorkItem, len(ids))
	for start := 0; start < len(ids); start += maxBatchIDs {
		end := min(start+maxBatchIDs, len(ids))
		chunk := ids[start:end]

		params := url.Values{}
		params.Set("ids", joinIDs(chunk))
		params.Set("fields", strings.Join(readFields, ","))

		var resp workItemsResponse
		if _, err := c.do(ctx, "fetch work items", http.MethodGet, c.withQuery(c.orgURL("_apis", "wit", "workitems"), params), "", nil, &resp); err != nil {
			return nil, &FetchError{IDs: chunk, StatusCode: statusCode(err), Err: err}
		}
		for _, item := range resp.Value {
			byID[item.ID] = toWorkItem(item)
		}
	}

	items := make([]workitem.WorkItem, 0, len(byID))
	for _, id := range ids {
		if item, ok := byID[id]; ok {
			items = append(items, item)
		}
	}
	return items, nil
}

// GetWorkItem fetches a single work item by id.
func (c *Client) GetWorkItem(ctx context.Context, id int) (workitem.WorkItem, error) {
	params := url.Values{}
	params.Set("fields", strings.Join(readFields, ","))
	endpoint := c.withQuery(c.orgURL("_apis", "wit", "workitems", strconv.Itoa(id)), params)

	var resp workItemResponse
	if _, err := c.do(ctx, "get work item", http.MethodGet, endpoint, "", nil, &resp); err != nil {
		return workitem.WorkItem{}, &FetchError{IDs: []int{id}, StatusCode: statusCode(err), Err: err}
	}
	return toWorkItem(resp), nil
}

func toWorkItem(item workItemResponse) workitem.WorkItem {
	return workitem.WorkItem{
		ID:          item.ID,
		Title:       stringField(item.Fields, fieldTitle),
		Description: stringField(item.Fields, fieldDescription),
		Type:        workitem.Type(stringField(item.Fields, fieldType)),
		Project:     stringField(item.Fields, fieldProject),
	}
}

func stringField(fields map[string]any, name string) string {
	if v, ok := fields[name].(string); ok {
		return v
	}
	return ""
}

func joinIDs(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}
