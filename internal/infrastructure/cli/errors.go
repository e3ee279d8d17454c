package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/featurecraft/internal/infrastructure/config"
	"github.com/felixgeelhaar/featurecraft/pkg/application"
	"github.com/felixgeelhaar/featurecraft/pkg/domain/workitem"
	"github.com/felixgeelhaar/featurecraft/pkg/tracker"
)

// CLIError wraps domain errors with user-facing messages and actionable hints.
type CLIError struct {
	Message  string
	Hint     string
	Err      error
	ExitCode int
}

func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a CLIError with a default exit code of 1.
func NewCLIError(msg, hint string, err error) *CLIError {
	return &CLIError{
		Message:  msg,
		Hint:     hint,
		Err:      err,
		ExitCode: 1,
	}
}

// MapError converts known domain errors into CLIErrors with actionable hints.
// Unmapped errors are returned as-is.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return cliErr
	}

	var cfgErr *config.ConfigError
	if errors.As(err, &cfgErr) {
		return NewCLIError("configuration is incomplete",
			"Set the missing values in featurecraft.yaml or the environment, then run 'featurecraft config show'", err)
	}

	var verr *workitem.ValidationError
	if errors.As(err, &verr) {
		return NewCLIError(verr.Error(), validationHint(verr), err)
	}

	var malformed *application.MalformedResponseError
	if errors.As(err, &malformed) {
		return NewCLIError("the model reply was not a valid list of backlog items; nothing was created",
			"Retry, or adjust the prompt file so the model answers with a JSON array", err)
	}

	var batchErr *tracker.BatchError
	if errors.As(err, &batchErr) && !tracker.IsAuth(err) {
		return NewCLIError(fmt.Sprintf("no %s could be created", batchErr.Type),
			"Check the item errors above and the project's required fields", err)
	}

	var queryErr *tracker.QueryError
	if errors.As(err, &queryErr) {
		return NewCLIError(fmt.Sprintf("work item query in project %q failed", queryErr.Project),
			"Check the project name with 'featurecraft projects'", err)
	}

	var fetchErr *tracker.FetchError
	if errors.As(err, &fetchErr) {
		return NewCLIError("work items could not be loaded",
			"Check the ids with 'featurecraft features <project>'", err)
	}

	switch {
	case tracker.IsAuth(err):
		return NewCLIError("the tracker rejected the personal access token",
			"Check PERSONAL_ACCESS_TOKEN and that it grants Work Items read and write", err)
	case tracker.IsUnavailable(err):
		return NewCLIError("the tracker is unavailable",
			"Check TFS_BASE_URL and the network, then retry", err)
	}

	return err
}

func validationHint(verr *workitem.ValidationError) string {
	switch verr.Field {
	case "title":
		return "Pass a non-empty --title"
	case "effort":
		return fmt.Sprintf("Use --effort between %d and %d", workitem.MinEffort, workitem.MaxEffort)
	case "priority":
		return fmt.Sprintf("Use --priority between %d and %d", workitem.MinPriority, workitem.MaxPriority)
	case "project":
		return "List projects with 'featurecraft projects'"
	case "description":
		return "Add a description to the feature in the tracker first"
	default:
		return ""
	}
}

func printError(cmd *cobra.Command, err error) {
	w := cmd.ErrOrStderr()
	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		fmt.Fprintln(w, errorStyle.Render("Error: ")+cliErr.Message)
		if cliErr.Err != nil && !strings.Contains(cliErr.Message, cliErr.Err.Error()) {
			fmt.Fprintf(w, "  %s\n", cliErr.Err)
		}
		if cliErr.Hint != "" {
			fmt.Fprintln(w, hintStyle.Render("Hint: ")+cliErr.Hint)
		}
		return
	}
	fmt.Fprintln(w, errorStyle.Render("Error: ")+err.Error())
}
