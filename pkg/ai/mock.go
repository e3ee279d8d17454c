package ai

import (
	"context"

	"github.com/felixgeelhaar/featurecraft/pkg/domain/ai"
)

// MockProvider replies with a fixed text. It backs `provider: mock` for demos
// against a real tracker without spending tokens.
type MockProvider struct {
	Model string
	Reply string
}

func (p *MockProvider) ID() string {
	return "mock:" + p.Model
}

func (p *MockProvider) Complete(ctx context.Context, req ai.CompletionRequest) (*ai.CompletionResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	reply := p.Reply
	if reply == "" {
		reply = `[{"title":"Review feature scope","description":"Placeholder item from the mock provider.","effort":1,"priority":2}]`
	}
	return &ai.CompletionResponse{
		Text:  reply,
		Model: p.Model,
		Usage: ai.TokenUsage{
			InputTokens:  len(req.System+req.Prompt) / 4,
			OutputTokens: len(reply) / 4,
		},
	}, nil
}
