package application_test

import (
	"context"
	"errors"
	"sync"

	"github.com/felixgeelhaar/featurecraft/pkg/domain/ai"
	"github.com/felixgeelhaar/featurecraft/pkg/domain/workitem"
	"github.com/felixgeelhaar/featurecraft/pkg/tracker"
)

// stubProvider returns a canned reply and remembers the last request.
type stubProvider struct {
	mu    sync.Mutex
	reply string
	err   error
	calls int
	last  ai.CompletionRequest
}

func (p *stubProvider) ID() string { return "stub" }
func (p *stubProvider) Complete(ctx context.Context, req ai.CompletionRequest) (*ai.CompletionResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	p.last = req
	if p.err != nil {
		return nil, p.err
	}
	return &ai.CompletionResponse{Text: p.reply, Model: "stub-model"}, nil
}

type createCall struct {
	Project   string
	Type      workitem.Type
	Proposals []workitem.Proposal
	ParentID  int
}

// fakeTracker is an in-memory Tracker.
type fakeTracker struct {
	projects  []workitem.Project
	teams     map[string][]workitem.Team
	items     map[string][]workitem.WorkItem
	readErr   error
	createErr error
	failTitle string
	nextID    int
	creates   []createCall
}

func newFakeTracker() *fakeTracker {
	return &fakeTracker{
		projects: []workitem.Project{{ID: "p1", Name: "Alpha"}},
		teams:    map[string][]workitem.Team{"Alpha": {{ID: "t1", Name: "Alpha Team"}}},
		items: map[string][]workitem.WorkItem{
			"Alpha": {
				{ID: 42, Title: "Login flow", Description: "<p>Allow users to log in</p>", Type: workitem.TypeFeature, Project: "Alpha"},
			},
			"Beta": {
				{ID: 7, Title: "Crash on save", Description: "<p>Stack trace</p>", Type: "Bug", Project: "Beta"},
				{ID: 8, Title: "Billing", Description: "<p>Invoices</p>", Type: workitem.TypeFeature, Project: "Beta"},
			},
		},
		nextID: 100,
	}
}

func (f *fakeTracker) ListProjects(ctx context.Context) ([]workitem.Project, error) {
	return f.projects, f.readErr
}

func (f *fakeTracker) ListTeams(ctx context.Context, project string) ([]workitem.Team, error) {
	return f.teams[project], f.readErr
}

func (f *fakeTracker) ListWorkItems(ctx context.Context, project string, t workitem.Type, areaPath string) ([]workitem.WorkItem, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	return f.items[areaPath], nil
}

func (f *fakeTracker) GetWorkItem(ctx context.Context, id int) (workitem.WorkItem, error) {
	for _, items := range f.items {
		if item, ok := workitem.FindByID(items, id); ok {
			return item, nil
		}
	}
	return workitem.WorkItem{}, &tracker.FetchError{IDs: []int{id}, StatusCode: 404, Err: errors.New("not found")}
}

func (f *fakeTracker) CreateWorkItems(ctx context.Context, project string, t workitem.Type, proposals []workitem.Proposal, parentID int) (*tracker.CreateResult, error) {
	f.creates = append(f.creates, createCall{Project: project, Type: t, Proposals: proposals, ParentID: parentID})
	if f.createErr != nil {
		return &tracker.CreateResult{}, f.createErr
	}
	result := &tracker.CreateResult{}
	for _, p := range proposals {
		if p.Title == f.failTitle {
			result.Failed = append(result.Failed, &tracker.ItemError{Title: p.Title, StatusCode: 400, Err: errors.New("rule error")})
			continue
		}
		f.nextID++
		result.Created = append(result.Created, tracker.CreatedItem{ID: f.nextID, Title: p.Title})
	}
	return result, nil
}
