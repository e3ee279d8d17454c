package cli

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/featurecraft/pkg/application"
	"github.com/felixgeelhaar/featurecraft/pkg/domain/workitem"
	"github.com/felixgeelhaar/featurecraft/pkg/tracker"
)

var (
	generateLang   string
	generateDryRun bool
)

var generateCmd = &cobra.Command{
	Use:   "generate <project> <feature-id>",
	Short: "Split a Feature into backlog items and create them under it",
	Long: `generate sends the Feature's description to the language model, shows the
proposed Product Backlog Items and creates each one in the tracker linked to
the Feature. With --dry-run nothing is written.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		project := args[0]
		featureID, err := parseID(args[1])
		if err != nil {
			return err
		}

		svc, err := loadServices()
		if err != nil {
			return MapError(err)
		}

		lang := svc.Lang
		if generateLang != "" {
			l, ok := application.ParseLanguage(generateLang)
			if !ok {
				return NewCLIError(fmt.Sprintf("unsupported language %q", generateLang), "Use --lang he or --lang en", nil)
			}
			lang = l
		}

		feature, err := svc.Backlog.Feature(cmd.Context(), featureID)
		if err != nil {
			return MapError(err)
		}
		printFeature(cmd, feature)
		fmt.Fprintln(cmd.OutOrStdout())

		if generateDryRun {
			proposals, err := svc.Backlog.PreviewTasks(cmd.Context(), feature.WorkItem, lang)
			if err != nil {
				return MapError(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), proposalTable(proposals))
			fmt.Fprintln(cmd.OutOrStdout(), hintStyle.Render("Dry run: nothing was created."))
			return nil
		}

		result, err := svc.Backlog.GenerateTasks(cmd.Context(), project, feature.WorkItem, lang)
		if result != nil {
			fmt.Fprintln(cmd.OutOrStdout(), proposalTable(result.Proposals))
		}
		if err != nil {
			if result != nil && result.Created != nil {
				printFailures(cmd, result.Created.Failed)
			}
			return MapError(err)
		}
		printCreated(cmd, fmt.Sprintf("backlog items under feature %d", featureID), result.Created)
		return nil
	},
}

func proposalTable(proposals []workitem.Proposal) string {
	rows := make([]table.Row, 0, len(proposals))
	for i, p := range proposals {
		rows = append(rows, table.Row{
			strconv.Itoa(i + 1),
			truncate(p.Title, 50),
			strconv.Itoa(p.Effort),
			strconv.Itoa(p.Priority),
		})
	}
	return staticTable([]table.Column{
		{Title: "#", Width: 3},
		{Title: "Title", Width: 50},
		{Title: "Effort", Width: 6},
		{Title: "Priority", Width: 8},
	}, rows)
}

func printCreated(cmd *cobra.Command, what string, result *tracker.CreateResult) {
	out := cmd.OutOrStdout()
	if result == nil {
		return
	}
	if len(result.Created) > 0 {
		fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("Created %d %s:", len(result.Created), what)))
		for _, c := range result.Created {
			fmt.Fprintf(out, "  #%d %s\n", c.ID, c.Title)
		}
	}
	printFailures(cmd, result.Failed)
}

func printFailures(cmd *cobra.Command, failed []*tracker.ItemError) {
	if len(failed) == 0 {
		return
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, warnStyle.Render(fmt.Sprintf("%d item(s) were not created:", len(failed))))
	for _, f := range failed {
		fmt.Fprintf(out, "  %s\n", f.Error())
	}
}

func init() {
	generateCmd.Flags().StringVar(&generateLang, "lang", "", "Reply language: he or en (default from config)")
	generateCmd.Flags().BoolVar(&generateDryRun, "dry-run", false, "Show the proposals without creating work items")
	RootCmd.AddCommand(generateCmd)
}
