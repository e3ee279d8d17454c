package ai_test

import (
	"context"
	"testing"
	"time"

	infraAI "github.com/felixgeelhaar/featurecraft/pkg/ai"
	"github.com/felixgeelhaar/featurecraft/pkg/domain/ai"
)

type slowProvider struct{ delay time.Duration }

func (s *slowProvider) ID() string { return "slow" }
func (s *slowProvider) Complete(ctx context.Context, req ai.CompletionRequest) (*ai.CompletionResponse, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(s.delay):
		return &ai.CompletionResponse{Text: "late"}, nil
	}
}

type countingProvider struct{ calls int }

func (c *countingProvider) ID() string { return "counting" }
func (c *countingProvider) Complete(ctx context.Context, req ai.CompletionRequest) (*ai.CompletionResponse, error) {
	c.calls++
	return nil, context.DeadlineExceeded
}

func TestTimeoutProvider_DelegatesID(t *testing.T) {
	p := infraAI.NewTimeoutProvider(&infraAI.MockProvider{Model: "m"}, 0)
	if p.ID() != "mock:m" {
		t.Errorf("expected mock:m, got %s", p.ID())
	}
	if p.Timeout() != infraAI.DefaultCompletionTimeout {
		t.Errorf("expected default timeout, got %v", p.Timeout())
	}
}

func TestTimeoutProvider_Success(t *testing.T) {
	p := infraAI.NewTimeoutProvider(&infraAI.MockProvider{Model: "m", Reply: "ok"}, time.Second)
	resp, err := p.Complete(context.Background(), ai.CompletionRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Text != "ok" {
		t.Errorf("expected ok, got %s", resp.Text)
	}
}

func TestTimeoutProvider_Expires(t *testing.T) {
	p := infraAI.NewTimeoutProvider(&slowProvider{delay: time.Second}, 20*time.Millisecond)

	start := time.Now()
	_, err := p.Complete(context.Background(), ai.CompletionRequest{})
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if time.Since(start) > 500*time.Millisecond {
		t.Errorf("timeout did not cut the call short: %v", time.Since(start))
	}
}

func TestTimeoutProvider_NoRetry(t *testing.T) {
	inner := &countingProvider{}
	p := infraAI.NewTimeoutProvider(inner, time.Second)
	_, _ = p.Complete(context.Background(), ai.CompletionRequest{})
	if inner.calls != 1 {
		t.Errorf("expected a single call, got %d", inner.calls)
	}
}
