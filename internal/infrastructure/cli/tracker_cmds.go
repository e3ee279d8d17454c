package cli

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/featurecraft/pkg/application"
)

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "List the projects of the organization",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := loadTrackerServices()
		if err != nil {
			return MapError(err)
		}
		projects, err := svc.Backlog.Projects(cmd.Context())
		if err != nil {
			return MapError(err)
		}
		if len(projects) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No projects found.")
			return nil
		}

		rows := make([]table.Row, 0, len(projects))
		for _, p := range projects {
			rows = append(rows, table.Row{p.Name, p.ID})
		}
		fmt.Fprintln(cmd.OutOrStdout(), staticTable([]table.Column{
			{Title: "Project", Width: 32},
			{Title: "ID", Width: 38},
		}, rows))
		return nil
	},
}

var teamsCmd = &cobra.Command{
	Use:   "teams <project>",
	Short: "List the teams of a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := loadTrackerServices()
		if err != nil {
			return MapError(err)
		}
		teams, err := svc.Backlog.Teams(cmd.Context(), args[0])
		if err != nil {
			return MapError(err)
		}
		if len(teams) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "No teams found in %s.\n", args[0])
			return nil
		}

		rows := make([]table.Row, 0, len(teams))
		for _, t := range teams {
			rows = append(rows, table.Row{t.Name, t.ID})
		}
		fmt.Fprintln(cmd.OutOrStdout(), staticTable([]table.Column{
			{Title: "Team", Width: 32},
			{Title: "ID", Width: 38},
		}, rows))
		return nil
	},
}

var featuresCmd = &cobra.Command{
	Use:   "features <project>",
	Short: "List the Features under a project's area path",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := loadTrackerServices()
		if err != nil {
			return MapError(err)
		}
		features, err := svc.Backlog.Features(cmd.Context(), args[0])
		if err != nil {
			return MapError(err)
		}
		if len(features) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "No features found in %s.\n", args[0])
			return nil
		}

		rows := make([]table.Row, 0, len(features))
		for _, f := range features {
			desc := "-"
			if f.HasDescription() {
				desc = "yes"
			}
			rows = append(rows, table.Row{strconv.Itoa(f.ID), truncate(f.Title, 50), desc})
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Features in %s (%d)\n", args[0], len(features))
		fmt.Fprintln(cmd.OutOrStdout(), staticTable([]table.Column{
			{Title: "ID", Width: 8},
			{Title: "Title", Width: 50},
			{Title: "Description", Width: 11},
		}, rows))
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a work item with its description as plain text",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		svc, err := loadTrackerServices()
		if err != nil {
			return MapError(err)
		}
		view, err := svc.Backlog.Feature(cmd.Context(), id)
		if err != nil {
			return MapError(err)
		}
		printFeature(cmd, view)
		return nil
	},
}

func printFeature(cmd *cobra.Command, view *application.FeatureView) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("#%d %s", view.ID, view.Title)))
	if view.PlainDescription == "" {
		fmt.Fprintln(out, hintStyle.Render("(no description)"))
		return
	}
	fmt.Fprintln(out, view.PlainDescription)
}

func parseID(raw string) (int, error) {
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, NewCLIError(fmt.Sprintf("invalid work item id %q", raw), "Use the numeric id shown by 'featurecraft features <project>'", nil)
	}
	return id, nil
}

func init() {
	RootCmd.AddCommand(projectsCmd, teamsCmd, featuresCmd, showCmd)
}
