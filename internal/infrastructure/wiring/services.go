package wiring

import (
	"fmt"
	"log/slog"

	"github.com/felixgeelhaar/featurecraft/internal/infrastructure/config"
	"github.com/felixgeelhaar/featurecraft/internal/infrastructure/prompt"
	"github.com/felixgeelhaar/featurecraft/pkg/application"
	domainai "github.com/felixgeelhaar/featurecraft/pkg/domain/ai"
	"github.com/felixgeelhaar/featurecraft/pkg/domain/session"
	"github.com/felixgeelhaar/featurecraft/pkg/tracker"
)

// AppServices exposes the application layer services wired from one
// configuration.
type AppServices struct {
	Config     config.Config
	Tracker    *tracker.Client
	Provider   domainai.Provider
	Prompt     *prompt.Store
	Generation *application.GenerationService
	Backlog    *application.BacklogService
	Sessions   *session.Store
	Lang       application.Language
}

// BuildTrackerServices wires only the tracker side. Commands that never call
// the model use it so they do not need an API key or prompt file.
func BuildTrackerServices(cfg config.Config, logger *slog.Logger) (*AppServices, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.ValidateTracker(); err != nil {
		return nil, err
	}

	tc, err := NewTrackerClient(cfg, logger)
	if err != nil {
		return nil, err
	}

	lang, ok := application.ParseLanguage(cfg.Server.Language)
	if !ok {
		lang = application.LanguageHebrew
	}

	return &AppServices{
		Config:  cfg,
		Tracker: tc,
		Backlog: application.NewBacklogService(tc, nil, logger),
		Lang:    lang,
	}, nil
}

// BuildAppServices wires the tracker, the completion provider and the prompt
// template into the backlog flows. Configuration problems fail here, before
// any request is served.
func BuildAppServices(cfg config.Config, logger *slog.Logger) (*AppServices, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	svc, err := BuildTrackerServices(cfg, logger)
	if err != nil {
		return nil, err
	}

	provider, err := LoadAIProvider(cfg)
	if err != nil {
		return nil, fmt.Errorf("AI provider: %w", err)
	}

	store, err := prompt.Open(cfg.AI.PromptFile, logger)
	if err != nil {
		return nil, &config.ConfigError{Invalid: []string{fmt.Sprintf("ai.prompt_file: %v", err)}}
	}

	svc.Provider = provider
	svc.Prompt = store
	svc.Generation = application.NewGenerationService(provider, store, application.GenerationSettings{
		Temperature: cfg.AI.Temperature,
		MaxTokens:   cfg.AI.MaxTokens,
	}, logger)
	svc.Backlog = application.NewBacklogService(svc.Tracker, svc.Generation, logger)
	svc.Sessions = session.NewStore(string(svc.Lang), cfg.Server.SessionIdle)
	return svc, nil
}

// NewTrackerClient builds the tracker client with the CA bundle and the
// configured request timeout.
func NewTrackerClient(cfg config.Config, logger *slog.Logger) (*tracker.Client, error) {
	network := config.NetworkConfig{CertFile: cfg.Network.CertFile}
	client, err := network.HTTPClient(cfg.Tracker.Timeout)
	if err != nil {
		return nil, err
	}
	return tracker.NewClient(tracker.Config{
		BaseURL:      cfg.Tracker.BaseURL,
		Organization: cfg.Tracker.Organization,
		Token:        cfg.Tracker.Token,
		APIVersion:   cfg.Tracker.APIVersion,
		HTTPClient:   client,
		Logger:       logger,
	})
}
