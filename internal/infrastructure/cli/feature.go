package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/featurecraft/pkg/domain/workitem"
)

var (
	featureTitle       string
	featureDescription string
	featureEffort      int
	featurePriority    int
)

var featureCmd = &cobra.Command{
	Use:   "feature",
	Short: "Manage Features",
}

var featureCreateCmd = &cobra.Command{
	Use:   "create <project>",
	Short: "Create a new top-level Feature",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p := workitem.Proposal{
			Title:       featureTitle,
			Description: featureDescription,
			Effort:      featureEffort,
			Priority:    featurePriority,
		}
		// Validate before wiring so bad input never needs tracker credentials.
		if err := p.Validate(); err != nil {
			return MapError(err)
		}

		svc, err := loadTrackerServices()
		if err != nil {
			return MapError(err)
		}
		result, err := svc.Backlog.CreateFeature(cmd.Context(), args[0], p)
		if err != nil {
			if result != nil {
				printFailures(cmd, result.Failed)
			}
			return MapError(err)
		}
		printCreated(cmd, fmt.Sprintf("feature(s) in %s", args[0]), result)
		return nil
	},
}

func init() {
	featureCreateCmd.Flags().StringVar(&featureTitle, "title", "", "Feature title (required)")
	featureCreateCmd.Flags().StringVar(&featureDescription, "description", "", "Feature description")
	featureCreateCmd.Flags().IntVar(&featureEffort, "effort", workitem.DefaultEffort, fmt.Sprintf("Effort (%d-%d)", workitem.MinEffort, workitem.MaxEffort))
	featureCreateCmd.Flags().IntVar(&featurePriority, "priority", workitem.DefaultPriority, fmt.Sprintf("Priority (%d-%d)", workitem.MinPriority, workitem.MaxPriority))
	featureCmd.AddCommand(featureCreateCmd)
	RootCmd.AddCommand(featureCmd)
}
