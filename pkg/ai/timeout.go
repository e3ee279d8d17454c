package ai

import (
	"context"
	"time"

	"github.com/felixgeelhaar/fortify/timeout"

	"github.com/felixgeelhaar/featurecraft/pkg/domain/ai"
)

const DefaultCompletionTimeout = 120 * time.Second

// TimeoutProvider bounds every completion call. A completion is a single
// pass-or-fail call, so there is no retry layer.
type TimeoutProvider struct {
	inner   ai.Provider
	timeout time.Duration
}

func NewTimeoutProvider(inner ai.Provider, d time.Duration) *TimeoutProvider {
	if d <= 0 {
		d = DefaultCompletionTimeout
	}
	return &TimeoutProvider{
		inner:   inner,
		timeout: d,
	}
}

func (p *TimeoutProvider) ID() string {
	return p.inner.ID()
}

// Timeout returns the configured bound.
func (p *TimeoutProvider) Timeout() time.Duration {
	return p.timeout
}

func (p *TimeoutProvider) Complete(ctx context.Context, req ai.CompletionRequest) (*ai.CompletionResponse, error) {
	t := timeout.New[*ai.CompletionResponse](timeout.Config{
		DefaultTimeout: p.timeout,
	})
	return t.Execute(ctx, p.timeout, func(ctx context.Context) (*ai.CompletionResponse, error) {
		return p.inner.Complete(ctx, req)
	})
}
