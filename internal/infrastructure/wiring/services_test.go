package wiring

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/felixgeelhaar/featurecraft/internal/infrastructure/config"
	"github.com/felixgeelhaar/featurecraft/pkg/application"
)

func validConfig(t *testing.T) config.Config {
	t.Helper()
	promptFile := filepath.Join(t.TempDir(), "prompt.txt")
	if err := os.WriteFile(promptFile, []byte("Split the feature."), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg := config.Default()
	cfg.Tracker.Organization = "DefaultCollection"
	cfg.Tracker.Token = "pat"
	cfg.AI.Provider = "mock"
	cfg.AI.PromptFile = promptFile
	return cfg
}

func TestBuildAppServices(t *testing.T) {
	svc, err := BuildAppServices(validConfig(t), nil)
	if err != nil {
		t.Fatalf("BuildAppServices: %v", err)
	}
	if svc.Tracker == nil || svc.Provider == nil || svc.Backlog == nil || svc.Generation == nil || svc.Sessions == nil {
		t.Fatalf("incomplete services: %+v", svc)
	}
	if svc.Tracker.Organization() != "DefaultCollection" {
		t.Errorf("organization = %q", svc.Tracker.Organization())
	}
	if svc.Provider.ID() != "mock:gpt-4o" {
		t.Errorf("provider = %q", svc.Provider.ID())
	}
	if svc.Lang != application.LanguageHebrew {
		t.Errorf("lang = %q", svc.Lang)
	}
	if got := svc.Generation.SystemPrompt(application.LanguageEnglish); got != "Split the feature.You must respond **only in English**." {
		t.Errorf("system prompt = %q", got)
	}
}

func TestBuildAppServices_InvalidConfig(t *testing.T) {
	cfg := validConfig(t)
	cfg.Tracker.Token = ""
	if _, err := BuildAppServices(cfg, nil); !config.IsConfigError(err) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
}

func TestBuildAppServices_MissingPrompt(t *testing.T) {
	cfg := validConfig(t)
	cfg.AI.PromptFile = filepath.Join(t.TempDir(), "missing.txt")
	if _, err := BuildAppServices(cfg, nil); !config.IsConfigError(err) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
}

func TestBuildTrackerServices_NoAIKeyNeeded(t *testing.T) {
	cfg := config.Default()
	cfg.Tracker.Organization = "DefaultCollection"
	cfg.Tracker.Token = "pat"
	svc, err := BuildTrackerServices(cfg, nil)
	if err != nil {
		t.Fatalf("BuildTrackerServices: %v", err)
	}
	if svc.Backlog == nil || svc.Provider != nil {
		t.Errorf("unexpected services: %+v", svc)
	}
}

func TestLoadAIProvider_Unsupported(t *testing.T) {
	cfg := validConfig(t)
	cfg.AI.Provider = "gemini"
	if _, err := LoadAIProvider(cfg); err == nil {
		t.Fatal("expected error for unsupported provider")
	}
}
