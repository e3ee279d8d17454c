package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/felixgeelhaar/featurecraft/pkg/domain/workitem"
	"github.com/felixgeelhaar/featurecraft/pkg/textextract"
	"github.com/felixgeelhaar/featurecraft/pkg/tracker"
)

// Tracker is the subset of the tracker client the backlog flows need.
type Tracker interface {
	ListProjects(ctx context.Context) ([]workitem.Project, error)
	ListTeams(ctx context.Context, project string) ([]workitem.Team, error)
	ListWorkItems(ctx context.Context, project string, t workitem.Type, areaPath string) ([]workitem.WorkItem, error)
	GetWorkItem(ctx context.Context, id int) (workitem.WorkItem, error)
	CreateWorkItems(ctx context.Context, project string, t workitem.Type, proposals []workitem.Proposal, parentID int) (*tracker.CreateResult, error)
}

// ProposalGenerator turns a feature description into proposals.
type ProposalGenerator interface {
	GenerateProposals(ctx context.Context, featureDescription string, lang Language) ([]workitem.Proposal, error)
}

// FeatureView is a feature with its description already reduced to plain text.
type FeatureView struct {
	workitem.WorkItem
	PlainDescription string
}

// GenerateResult is the outcome of the Generate Tasks flow.
type GenerateResult struct {
	FeatureID int
	Proposals []workitem.Proposal
	Created   *tracker.CreateResult
}

// BacklogService runs the two user flows: generating backlog items under a
// feature and creating a new feature.
type BacklogService struct {
	tracker   Tracker
	generator ProposalGenerator
	logger    *slog.Logger
}

func NewBacklogService(t Tracker, g ProposalGenerator, logger *slog.Logger) *BacklogService {
	if logger == nil {
		logger = slog.Default()
	}
	return &BacklogService{tracker: t, generator: g, logger: logger}
}

func (s *BacklogService) Projects(ctx context.Context) ([]workitem.Project, error) {
	return s.tracker.ListProjects(ctx)
}

func (s *BacklogService) Teams(ctx context.Context, project string) ([]workitem.Team, error) {
	if err := requireProject(project); err != nil {
		return nil, err
	}
	return s.tracker.ListTeams(ctx, project)
}

// Features lists the project's features, scoped to the project's own area path.
func (s *BacklogService) Features(ctx context.Context, project string) ([]workitem.WorkItem, error) {
	if err := requireProject(project); err != nil {
		return nil, err
	}
	return s.tracker.ListWorkItems(ctx, project, workitem.TypeFeature, project)
}

// Feature fetches a single feature and its plain text description.
func (s *BacklogService) Feature(ctx context.Context, id int) (*FeatureView, error) {
	item, err := s.tracker.GetWorkItem(ctx, id)
	if err != nil {
		return nil, err
	}
	view := Describe(item)
	return &view, nil
}

// Describe reduces an already loaded feature to its plain text view.
func Describe(item workitem.WorkItem) FeatureView {
	return FeatureView{WorkItem: item, PlainDescription: textextract.ToPlainText(item.Description)}
}

// PreviewTasks asks the model for proposals without touching the tracker.
func (s *BacklogService) PreviewTasks(ctx context.Context, feature workitem.WorkItem, lang Language) ([]workitem.Proposal, error) {
	if feature.ID <= 0 {
		return nil, &workitem.ValidationError{Field: "feature", Reason: "must be selected"}
	}
	if !feature.HasDescription() {
		return nil, &workitem.ValidationError{Field: "description", Reason: fmt.Sprintf("of feature %d is empty", feature.ID)}
	}
	if s.generator == nil {
		return nil, errors.New("no completion provider configured")
	}
	return s.generator.GenerateProposals(ctx, feature.Description, lang)
}

// GenerateTasks asks the model for proposals and creates them as product
// backlog items linked to the feature. The parent must be a Feature of
// project. A reply that fails to parse stops the flow before any tracker write.
func (s *BacklogService) GenerateTasks(ctx context.Context, project string, feature workitem.WorkItem, lang Language) (*GenerateResult, error) {
	if err := requireProject(project); err != nil {
		return nil, err
	}
	if err := feature.ValidateParent(project); err != nil {
		return nil, err
	}

	proposals, err := s.PreviewTasks(ctx, feature, lang)
	if err != nil {
		return nil, err
	}

	if err := workitem.ValidateBatch(workitem.TypeProductBacklogItem, proposals, feature.ID); err != nil {
		return nil, &MalformedResponseError{Reasons: []string{err.Error()}}
	}

	s.logger.Info("creating backlog items",
		"project", project,
		"feature_id", feature.ID,
		"count", len(proposals),
	)

	created, err := s.tracker.CreateWorkItems(ctx, project, workitem.TypeProductBacklogItem, proposals, feature.ID)
	result := &GenerateResult{FeatureID: feature.ID, Proposals: proposals, Created: created}
	if err != nil {
		return result, err
	}
	if len(created.Failed) > 0 {
		s.logger.Warn("some backlog items were not created",
			"project", project,
			"feature_id", feature.ID,
			"failed", len(created.Failed),
			"created", len(created.Created),
		)
	}
	return result, nil
}

// CreateFeature validates the form input and creates one top-level feature.
// Invalid input never reaches the tracker.
func (s *BacklogService) CreateFeature(ctx context.Context, project string, p workitem.Proposal) (*tracker.CreateResult, error) {
	if err := requireProject(project); err != nil {
		return nil, err
	}
	if err := workitem.ValidateBatch(workitem.TypeFeature, []workitem.Proposal{p}, 0); err != nil {
		return nil, err
	}

	s.logger.Info("creating feature", "project", project, "title", p.Title)
	return s.tracker.CreateWorkItems(ctx, project, workitem.TypeFeature, []workitem.Proposal{p}, 0)
}

func requireProject(project string) error {
	if strings.TrimSpace(project) == "" {
		return &workitem.ValidationError{Field: "project", Reason: "must be selected"}
	}
	return nil
}
