package tracker

import (
	"context"
	"net/http"
	"net/url"

	"github.com/felixgeelhaar/featurecraft/pkg/domain/workitem"
)

const continuationHeader = "X-Ms-Continuationtoken"

type namedRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type listResponse struct {
	Count int        `json:"count"`
	Value []namedRef `json:"value"`
}

// ListProjects returns every project of the organization, following the
// tracker's continuation token across pages.
func (c *Client) ListProjects(ctx context.Context) ([]workitem.Project, error) {
	var projects []workitem.Project
	token := ""
	for {
		params := url.Values{}
		if token != "" {
			params.Set("continuationToken", token)
		}

		var page listResponse
		header, err := c.do(ctx, "list projects", http.MethodGet, c.withQuery(c.orgURL("_apis", "projects"), params), "", nil, &page)
		if err != nil {
			return nil, asUnavailable("list projects", err)
		}
		for _, p := range page.Value {
			projects = append(projects, workitem.Project{ID: p.ID, Name: p.Name})
		}

		token = header.Get(continuationHeader)
		if token == "" {
			return projects, nil
		}
	}
}

// ListTeams returns the teams of a project.
func (c *Client) ListTeams(ctx context.Context, project string) ([]workitem.Team, error) {
	var resp listResponse
	if _, err := c.do(ctx, "list teams", http.MethodGet, c.withQuery(c.orgURL("_apis", "projects", project, "teams"), nil), "", nil, &resp); err != nil {
		return nil, asUnavailable("list teams", err)
	}

	teams := make([]workitem.Team, 0, len(resp.Value))
	for _, t := range resp.Value {
		teams = append(teams, workitem.Team{ID: t.ID, Name: t.Name})
	}
	return teams, nil
}

// asUnavailable keeps auth and availability errors as they are and reports
// any other rejected read as the tracker being unavailable for op.
func asUnavailable(op string, err error) error {
	if IsAuth(err) || IsUnavailable(err) {
		return err
	}
	if se, ok := err.(*statusError); ok {
		return &UnavailableError{Op: op, StatusCode: se.StatusCode, Err: se}
	}
	return err
}
