// Package mcp exposes the featurecraft flows as MCP tools.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/felixgeelhaar/mcp-go"

	"github.com/felixgeelhaar/featurecraft/pkg/application"
	"github.com/felixgeelhaar/featurecraft/pkg/domain/workitem"
	"github.com/felixgeelhaar/featurecraft/pkg/tracker"
)

var (
	Version     = "dev"
	BuildCommit = "unknown"
	BuildDate   = "unknown"
)

// Backlog is what the tools need from the application layer.
type Backlog interface {
	Projects(ctx context.Context) ([]workitem.Project, error)
	Teams(ctx context.Context, project string) ([]workitem.Team, error)
	Features(ctx context.Context, project string) ([]workitem.WorkItem, error)
	Feature(ctx context.Context, id int) (*application.FeatureView, error)
	PreviewTasks(ctx context.Context, feature workitem.WorkItem, lang application.Language) ([]workitem.Proposal, error)
	GenerateTasks(ctx context.Context, project string, feature workitem.WorkItem, lang application.Language) (*application.GenerateResult, error)
	CreateFeature(ctx context.Context, project string, p workitem.Proposal) (*tracker.CreateResult, error)
}

type Server struct {
	mcpServer *mcp.Server
	backlog   Backlog
	prompt    application.PromptSource
	lang      application.Language
	logger    *slog.Logger
}

// NewServer registers the tools. defaultLang is used when a generate_tasks
// call names no language.
func NewServer(backlog Backlog, prompt application.PromptSource, defaultLang application.Language, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if defaultLang == "" {
		defaultLang = application.LanguageHebrew
	}

	info := mcp.ServerInfo{
		Name:    "featurecraft",
		Version: Version,
	}

	s := &Server{
		mcpServer: mcp.NewServer(info,
			mcp.WithTitle("featurecraft MCP Server"),
			mcp.WithDescription("featurecraft reads features from Azure DevOps Server and turns them into product backlog items with a language model."),
			mcp.WithBuildInfo(BuildCommit, BuildDate),
			mcp.WithInstructions("List projects and features first. generate_tasks writes to the tracker unless dry_run is set."),
		),
		backlog: backlog,
		prompt:  prompt,
		lang:    defaultLang,
		logger:  logger,
	}

	s.registerTools()
	if prompt != nil {
		s.registerPromptResource()
	}
	return s
}

type ProjectArgs struct {
	Project string `json:"project" jsonschema:"description=Tracker project name"`
}

type GenerateTasksArgs struct {
	Project   string `json:"project" jsonschema:"description=Tracker project name"`
	FeatureID int    `json:"feature_id" jsonschema:"description=Id of the parent Feature"`
	Lang      string `json:"lang,omitempty" jsonschema:"description=Reply language: he or en"`
	DryRun    bool   `json:"dry_run,omitempty" jsonschema:"description=Only return the proposals without creating work items"`
}

type CreateFeatureArgs struct {
	Project     string `json:"project" jsonschema:"description=Tracker project name"`
	Title       string `json:"title" jsonschema:"description=Feature title"`
	Description string `json:"description,omitempty" jsonschema:"description=Feature description"`
	Effort      int    `json:"effort,omitempty" jsonschema:"description=Effort between 1 and 99 (default 1)"`
	Priority    int    `json:"priority,omitempty" jsonschema:"description=Priority between 1 and 4 (default 2)"`
}

func (s *Server) registerTools() {
	s.mcpServer.Tool("list_projects").
		Description("List the projects of the tracker organization").
		Handler(s.handleListProjects)

	s.mcpServer.Tool("list_teams").
		Description("List the teams of a project").
		Handler(s.handleListTeams)

	s.mcpServer.Tool("list_features").
		Description("List the Features under a project's area path").
		Handler(s.handleListFeatures)

	s.mcpServer.Tool("generate_tasks").
		Description("Split a Feature into product backlog items with the language model and create them linked to the Feature").
		Handler(s.handleGenerateTasks)

	s.mcpServer.Tool("create_feature").
		Description("Create a new top-level Feature in a project").
		Handler(s.handleCreateFeature)
}

func (s *Server) handleListProjects(ctx context.Context, args struct{}) (any, error) {
	projects, err := s.backlog.Projects(ctx)
	if err != nil {
		return nil, s.toolErr("list projects", err)
	}
	return projects, nil
}

func (s *Server) handleListTeams(ctx context.Context, args ProjectArgs) (any, error) {
	teams, err := s.backlog.Teams(ctx, args.Project)
	if err != nil {
		return nil, s.toolErr("list teams", err)
	}
	return teams, nil
}

type featureSummary struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (s *Server) handleListFeatures(ctx context.Context, args ProjectArgs) (any, error) {
	items, err := s.backlog.Features(ctx, args.Project)
	if err != nil {
		return nil, s.toolErr("list features", err)
	}
	out := make([]featureSummary, 0, len(items))
	for _, item := range items {
		view := application.Describe(item)
		out = append(out, featureSummary{ID: item.ID, Title: item.Title, Description: view.PlainDescription})
	}
	return out, nil
}

type generateTasksResult struct {
	FeatureID int                   `json:"feature_id"`
	DryRun    bool                  `json:"dry_run"`
	Proposals []workitem.Proposal   `json:"proposals"`
	Created   []tracker.CreatedItem `json:"created,omitempty"`
	Failed    []string              `json:"failed,omitempty"`
}

func (s *Server) handleGenerateTasks(ctx context.Context, args GenerateTasksArgs) (any, error) {
	lang := s.lang
	if args.Lang != "" {
		l, ok := application.ParseLanguage(args.Lang)
		if !ok {
			return nil, fmt.Errorf("unsupported language %q, use he or en", args.Lang)
		}
		lang = l
	}
	if args.FeatureID <= 0 {
		return nil, fmt.Errorf("feature_id is required")
	}

	feature, err := s.backlog.Feature(ctx, args.FeatureID)
	if err != nil {
		return nil, s.toolErr("load feature", err)
	}

	if args.DryRun {
		proposals, err := s.backlog.PreviewTasks(ctx, feature.WorkItem, lang)
		if err != nil {
			return nil, s.toolErr("generate tasks", err)
		}
		return generateTasksResult{FeatureID: feature.ID, DryRun: true, Proposals: proposals}, nil
	}

	result, err := s.backlog.GenerateTasks(ctx, args.Project, feature.WorkItem, lang)
	if err != nil {
		return nil, s.toolErr("generate tasks", err)
	}
	out := generateTasksResult{FeatureID: result.FeatureID, Proposals: result.Proposals}
	if result.Created != nil {
		out.Created = result.Created.Created
		for _, f := range result.Created.Failed {
			out.Failed = append(out.Failed, f.Error())
		}
	}
	return out, nil
}

func (s *Server) handleCreateFeature(ctx context.Context, args CreateFeatureArgs) (any, error) {
	p := workitem.NewProposal(args.Title, args.Description)
	if args.Effort != 0 {
		p.Effort = args.Effort
	}
	if args.Priority != 0 {
		p.Priority = args.Priority
	}
	result, err := s.backlog.CreateFeature(ctx, args.Project, p)
	if err != nil {
		return nil, s.toolErr("create feature", err)
	}
	return result.Created, nil
}

// toolErr returns a message an MCP client can act on. Validation errors are
// passed through; tracker failures get a short hint.
func (s *Server) toolErr(op string, err error) error {
	s.logger.Warn("mcp tool failed", "op", op, "error", err)

	var verr *workitem.ValidationError
	var malformed *application.MalformedResponseError
	switch {
	case errors.As(err, &verr):
		return fmt.Errorf("invalid input: %s", verr.Error())
	case errors.As(err, &malformed):
		return fmt.Errorf("%s: the model reply was not a valid list of backlog items, nothing was created", op)
	case tracker.IsAuth(err):
		return fmt.Errorf("%s: the tracker rejected the personal access token", op)
	case tracker.IsUnavailable(err):
		return fmt.Errorf("%s: the tracker is unavailable, try again later", op)
	default:
		return fmt.Errorf("%s failed: %s", op, strings.TrimSpace(err.Error()))
	}
}

// Transports accepted by Serve.
const (
	TransportStdio     = "stdio"
	TransportHTTP      = "http"
	TransportWebSocket = "ws"
	TransportGRPC      = "grpc"
)

// Serve runs the server on the named transport until ctx is cancelled. addr
// is ignored for stdio.
func (s *Server) Serve(ctx context.Context, transport, addr string) error {
	switch transport {
	case "", TransportStdio:
		return s.ServeStdio(ctx)
	case TransportHTTP:
		return s.ServeHTTP(ctx, addr)
	case TransportWebSocket:
		return s.ServeWebSocket(ctx, addr)
	case TransportGRPC:
		return s.ServeGRPC(ctx, addr)
	default:
		return fmt.Errorf("unknown transport %q (use stdio, http, ws or grpc)", transport)
	}
}

func (s *Server) ServeStdio(ctx context.Context) error {
	return mcp.ServeStdio(ctx, s.mcpServer)
}

func (s *Server) ServeHTTP(ctx context.Context, addr string) error {
	return mcp.ServeHTTP(ctx, s.mcpServer, addr, mcp.WithDefaultCORS())
}

func (s *Server) ServeWebSocket(ctx context.Context, addr string) error {
	return mcp.ServeWebSocket(ctx, s.mcpServer, addr)
}

func (s *Server) ServeGRPC(ctx context.Context, addr string) error {
	return mcp.ServeGRPC(ctx, s.mcpServer, addr)
}
