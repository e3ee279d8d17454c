package ai

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/felixgeelhaar/featurecraft/pkg/domain/ai"
)

// ProviderConfig selects and configures a completion backend.
type ProviderConfig struct {
	Provider   string
	Model      string
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// NewProvider builds the configured provider wrapped in a TimeoutProvider.
func NewProvider(cfg ProviderConfig) (ai.Provider, error) {
	var base ai.Provider
	switch strings.ToLower(cfg.Provider) {
	case "openai", "":
		base = NewOpenAIProviderWithClient(cfg.Model, cfg.APIKey, cfg.BaseURL, cfg.HTTPClient)
	case "anthropic":
		base = NewAnthropicProviderWithClient(cfg.Model, cfg.APIKey, cfg.BaseURL, cfg.HTTPClient)
	case "ollama":
		base = NewOllamaProviderWithClient(cfg.Model, cfg.BaseURL, cfg.HTTPClient)
	case "mock":
		base = &MockProvider{Model: cfg.Model}
	default:
		return nil, fmt.Errorf("unsupported AI provider: %s", cfg.Provider)
	}
	return NewTimeoutProvider(base, cfg.Timeout), nil
}
