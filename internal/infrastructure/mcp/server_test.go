package mcp

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/felixgeelhaar/mcp-go/testutil"

	providers "github.com/felixgeelhaar/featurecraft/pkg/ai"
	"github.com/felixgeelhaar/featurecraft/pkg/application"
	"github.com/felixgeelhaar/featurecraft/pkg/domain/workitem"
	"github.com/felixgeelhaar/featurecraft/pkg/tracker"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// memTracker is an in-memory tracker holding project Alpha with feature 42.
type memTracker struct {
	mu      sync.Mutex
	readErr error
	nextID  int
	created map[workitem.Type][]workitem.Proposal
	parents []int
}

func newMemTracker() *memTracker {
	return &memTracker{nextID: 100, created: map[workitem.Type][]workitem.Proposal{}}
}

var loginFeature = workitem.WorkItem{
	ID:          42,
	Title:       "Login flow",
	Description: "<p>Allow users to <b>log in</b></p>",
	Type:        workitem.TypeFeature,
	Project:     "Alpha",
}

func (m *memTracker) ListProjects(ctx context.Context) ([]workitem.Project, error) {
	return []workitem.Project{{ID: "p1", Name: "Alpha"}}, m.readErr
}

func (m *memTracker) ListTeams(ctx context.Context, project string) ([]workitem.Team, error) {
	return []workitem.Team{{ID: "t1", Name: "Alpha Team"}}, m.readErr
}

func (m *memTracker) ListWorkItems(ctx context.Context, project string, t workitem.Type, areaPath string) ([]workitem.WorkItem, error) {
	if m.readErr != nil {
		return nil, m.readErr
	}
	return []workitem.WorkItem{loginFeature}, nil
}

func (m *memTracker) GetWorkItem(ctx context.Context, id int) (workitem.WorkItem, error) {
	if m.readErr != nil {
		return workitem.WorkItem{}, m.readErr
	}
	if id != loginFeature.ID {
		return workitem.WorkItem{}, &tracker.FetchError{IDs: []int{id}, StatusCode: 404}
	}
	return loginFeature, nil
}

func (m *memTracker) CreateWorkItems(ctx context.Context, project string, t workitem.Type, proposals []workitem.Proposal, parentID int) (*tracker.CreateResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := &tracker.CreateResult{}
	for _, p := range proposals {
		m.nextID++
		m.created[t] = append(m.created[t], p)
		m.parents = append(m.parents, parentID)
		result.Created = append(result.Created, tracker.CreatedItem{ID: m.nextID, Title: p.Title})
	}
	return result, nil
}

func (m *memTracker) count(t workitem.Type) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.created[t])
}

const loginReply = `[{"title":"Add login form","description":"fields","effort":3,"priority":1},{"title":"Add logout","description":"button","effort":1,"priority":2}]`

func newTestServer(t *testing.T, reply string) (*Server, *memTracker) {
	t.Helper()
	mt := newMemTracker()
	gen := application.NewGenerationService(&providers.MockProvider{Reply: reply},
		application.StaticPrompt("Split the feature."), application.GenerationSettings{}, discard)
	backlog := application.NewBacklogService(mt, gen, discard)
	return NewServer(backlog, application.StaticPrompt("Split the feature."), application.LanguageEnglish, discard), mt
}

func TestHandleListProjects(t *testing.T) {
	s, _ := newTestServer(t, loginReply)
	res, err := s.handleListProjects(context.Background(), struct{}{})
	if err != nil {
		t.Fatalf("list projects: %v", err)
	}
	projects := res.([]workitem.Project)
	if len(projects) != 1 || projects[0].Name != "Alpha" {
		t.Errorf("projects = %+v", projects)
	}
}

func TestHandleListTeams_RequiresProject(t *testing.T) {
	s, _ := newTestServer(t, loginReply)
	_, err := s.handleListTeams(context.Background(), ProjectArgs{})
	if err == nil || !strings.Contains(err.Error(), "invalid input") {
		t.Fatalf("expected invalid input error, got %v", err)
	}
}

func TestHandleListFeatures_PlainText(t *testing.T) {
	s, _ := newTestServer(t, loginReply)
	res, err := s.handleListFeatures(context.Background(), ProjectArgs{Project: "Alpha"})
	if err != nil {
		t.Fatalf("list features: %v", err)
	}
	features := res.([]featureSummary)
	if len(features) != 1 {
		t.Fatalf("features = %+v", features)
	}
	if features[0].Description != "Allow users to\nlog in" {
		t.Errorf("description = %q", features[0].Description)
	}
}

func TestHandleGenerateTasks(t *testing.T) {
	s, mt := newTestServer(t, loginReply)
	res, err := s.handleGenerateTasks(context.Background(), GenerateTasksArgs{Project: "Alpha", FeatureID: 42})
	if err != nil {
		t.Fatalf("generate tasks: %v", err)
	}
	out := res.(generateTasksResult)
	if len(out.Created) != 2 || out.FeatureID != 42 {
		t.Errorf("result = %+v", out)
	}
	if mt.count(workitem.TypeProductBacklogItem) != 2 {
		t.Errorf("expected 2 backlog items in tracker")
	}
	for _, parent := range mt.parents {
		if parent != 42 {
			t.Errorf("parent = %d, want 42", parent)
		}
	}
}

func TestHandleGenerateTasks_DryRun(t *testing.T) {
	s, mt := newTestServer(t, loginReply)
	res, err := s.handleGenerateTasks(context.Background(), GenerateTasksArgs{Project: "Alpha", FeatureID: 42, DryRun: true, Lang: "he"})
	if err != nil {
		t.Fatalf("generate tasks: %v", err)
	}
	out := res.(generateTasksResult)
	if !out.DryRun || len(out.Proposals) != 2 {
		t.Errorf("result = %+v", out)
	}
	if mt.count(workitem.TypeProductBacklogItem) != 0 {
		t.Error("dry run must not write to the tracker")
	}
}

func TestHandleGenerateTasks_Errors(t *testing.T) {
	s, mt := newTestServer(t, "not json")

	if _, err := s.handleGenerateTasks(context.Background(), GenerateTasksArgs{Project: "Alpha", FeatureID: 42, Lang: "fr"}); err == nil {
		t.Error("expected error for unsupported language")
	}
	if _, err := s.handleGenerateTasks(context.Background(), GenerateTasksArgs{Project: "Alpha"}); err == nil {
		t.Error("expected error for missing feature id")
	}

	_, err := s.handleGenerateTasks(context.Background(), GenerateTasksArgs{Project: "Alpha", FeatureID: 42})
	if err == nil || !strings.Contains(err.Error(), "nothing was created") {
		t.Fatalf("expected malformed reply error, got %v", err)
	}
	if mt.count(workitem.TypeProductBacklogItem) != 0 {
		t.Error("malformed reply must not write to the tracker")
	}
}

func TestHandleGenerateTasks_FeatureOfOtherProject(t *testing.T) {
	s, mt := newTestServer(t, loginReply)
	_, err := s.handleGenerateTasks(context.Background(), GenerateTasksArgs{Project: "Beta", FeatureID: 42})
	if err == nil || !strings.Contains(err.Error(), "invalid input") {
		t.Fatalf("expected invalid input error, got %v", err)
	}
	if mt.count(workitem.TypeProductBacklogItem) != 0 {
		t.Error("a feature of another project must not get backlog items")
	}
}

func TestHandleGenerateTasks_AuthFailure(t *testing.T) {
	s, mt := newTestServer(t, loginReply)
	mt.readErr = &tracker.AuthError{Op: "get work item", StatusCode: 401}
	_, err := s.handleGenerateTasks(context.Background(), GenerateTasksArgs{Project: "Alpha", FeatureID: 42})
	if err == nil || !strings.Contains(err.Error(), "personal access token") {
		t.Fatalf("expected auth hint, got %v", err)
	}
}

func TestHandleCreateFeature(t *testing.T) {
	s, mt := newTestServer(t, loginReply)

	if _, err := s.handleCreateFeature(context.Background(), CreateFeatureArgs{Project: "Alpha", Title: ""}); err == nil {
		t.Fatal("expected validation error for empty title")
	}
	if mt.count(workitem.TypeFeature) != 0 {
		t.Fatal("invalid input reached the tracker")
	}

	res, err := s.handleCreateFeature(context.Background(), CreateFeatureArgs{Project: "Alpha", Title: "Reporting", Effort: 5})
	if err != nil {
		t.Fatalf("create feature: %v", err)
	}
	created := res.([]tracker.CreatedItem)
	if len(created) != 1 || created[0].Title != "Reporting" {
		t.Errorf("created = %+v", created)
	}
	p := mt.created[workitem.TypeFeature][0]
	if p.Effort != 5 || p.Priority != workitem.DefaultPriority {
		t.Errorf("proposal = %+v", p)
	}
}

func TestServer_ReadPromptResource(t *testing.T) {
	s, _ := newTestServer(t, loginReply)

	client := testutil.NewTestClient(t, s.mcpServer)
	defer client.Close()

	content, err := client.ReadResource(promptURI)
	if err != nil {
		t.Fatalf("read prompt resource: %v", err)
	}
	if content != "Split the feature." {
		t.Errorf("prompt = %q", content)
	}
}

func TestServe_UnknownTransport(t *testing.T) {
	s, _ := newTestServer(t, loginReply)
	if err := s.Serve(context.Background(), "carrier-pigeon", ""); err == nil {
		t.Fatal("expected error for unknown transport")
	}
}
