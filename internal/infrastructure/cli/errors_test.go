package cli

import (
	"errors"
	"fmt"
	"testing"

	"github.com/felixgeelhaar/featurecraft/internal/infrastructure/config"
	"github.com/felixgeelhaar/featurecraft/pkg/application"
	"github.com/felixgeelhaar/featurecraft/pkg/domain/workitem"
	"github.com/felixgeelhaar/featurecraft/pkg/tracker"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		message string
	}{
		{"config", &config.ConfigError{Missing: []string{"ORGANIZATION"}}, "configuration is incomplete"},
		{"validation", fmt.Errorf("wrapped: %w", &workitem.ValidationError{Field: "title", Reason: "must not be empty"}), "title must not be empty"},
		{"malformed", &application.MalformedResponseError{Reasons: []string{"not json"}}, "the model reply was not a valid list of backlog items; nothing was created"},
		{"auth", &tracker.AuthError{Op: "list projects", StatusCode: 401}, "the tracker rejected the personal access token"},
		{"unavailable", &tracker.UnavailableError{Op: "list projects", Err: errors.New("dial tcp")}, "the tracker is unavailable"},
		{"query", &tracker.QueryError{Project: "Alpha", StatusCode: 400, Err: errors.New("bad")}, `work item query in project "Alpha" failed`},
		{"fetch", &tracker.FetchError{IDs: []int{1}, StatusCode: 404, Err: errors.New("gone")}, "work items could not be loaded"},
		{"batch", &tracker.BatchError{Type: "Feature", Errors: []*tracker.ItemError{{Title: "x", StatusCode: 400, Err: errors.New("bad field")}}}, "no Feature could be created"},
		{"batch of auth failures", &tracker.BatchError{Type: "Feature", Errors: []*tracker.ItemError{{Title: "x", StatusCode: 401, Err: &tracker.AuthError{Op: "create", StatusCode: 401}}}}, "the tracker rejected the personal access token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cliErr *CLIError
			if !errors.As(MapError(tt.err), &cliErr) {
				t.Fatalf("expected CLIError")
			}
			if cliErr.Message != tt.message {
				t.Errorf("message = %q, want %q", cliErr.Message, tt.message)
			}
			if !errors.Is(cliErr, tt.err) {
				t.Error("CLIError should unwrap to the original error")
			}
		})
	}
}

func TestMapError_Passthrough(t *testing.T) {
	if MapError(nil) != nil {
		t.Error("nil should stay nil")
	}
	plain := errors.New("plain")
	if MapError(plain) != plain {
		t.Error("unknown errors are returned as-is")
	}
	cliErr := NewCLIError("msg", "hint", nil)
	if MapError(cliErr) != cliErr {
		t.Error("CLIError should pass through")
	}
}

func TestCLIError_Error(t *testing.T) {
	if got := NewCLIError("msg", "", nil).Error(); got != "msg" {
		t.Errorf("Error() = %q", got)
	}
	if got := NewCLIError("msg", "", errors.New("cause")).Error(); got != "msg: cause" {
		t.Errorf("Error() = %q", got)
	}
}
