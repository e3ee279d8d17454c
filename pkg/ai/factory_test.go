package ai_test

import (
	"testing"
	"time"

	infraAI "github.com/felixgeelhaar/featurecraft/pkg/ai"
)

func TestNewProvider(t *testing.T) {
	tests := []struct {
		provider string
		model    string
		wantID   string
	}{
		{provider: "", model: "gpt-4o", wantID: "openai:gpt-4o"},
		{provider: "openai", model: "gpt-4o-mini", wantID: "openai:gpt-4o-mini"},
		{provider: "Anthropic", model: "claude-3-5-sonnet", wantID: "anthropic:claude-3-5-sonnet"},
		{provider: "ollama", model: "llama3", wantID: "ollama:llama3"},
		{provider: "mock", model: "demo", wantID: "mock:demo"},
	}

	for _, tt := range tests {
		t.Run(tt.wantID, func(t *testing.T) {
			p, err := infraAI.NewProvider(infraAI.ProviderConfig{Provider: tt.provider, Model: tt.model, Timeout: time.Second})
			if err != nil {
				t.Fatalf("NewProvider: %v", err)
			}
			if p.ID() != tt.wantID {
				t.Errorf("ID() = %q, want %q", p.ID(), tt.wantID)
			}
			tp, ok := p.(*infraAI.TimeoutProvider)
			if !ok {
				t.Fatalf("expected *TimeoutProvider, got %T", p)
			}
			if tp.Timeout() != time.Second {
				t.Errorf("Timeout() = %v", tp.Timeout())
			}
		})
	}
}

func TestNewProvider_Unknown(t *testing.T) {
	if _, err := infraAI.NewProvider(infraAI.ProviderConfig{Provider: "gemini"}); err == nil {
		t.Fatal("expected error for unsupported provider")
	}
}
