package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/featurecraft/pkg/application"
	"github.com/felixgeelhaar/featurecraft/pkg/domain/workitem"
)

var browseCmd = &cobra.Command{
	Use:   "browse <project>",
	Short: "Browse a project's Features interactively",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if os.Getenv("FEATURECRAFT_SKIP_TUI") == "true" {
			return nil
		}
		svc, err := loadTrackerServices()
		if err != nil {
			return MapError(err)
		}
		features, err := svc.Backlog.Features(cmd.Context(), args[0])
		if err != nil {
			return MapError(err)
		}
		p := tea.NewProgram(newBrowseModel(args[0], features))
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("browse run failed: %w", err)
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(browseCmd)
}

var browseFrame = lipgloss.NewStyle().
	BorderStyle(lipgloss.NormalBorder()).
	BorderForeground(lipgloss.Color("240"))

type browseModel struct {
	table    table.Model
	project  string
	features []workitem.WorkItem
	detail   *application.FeatureView
}

func newBrowseModel(project string, features []workitem.WorkItem) browseModel {
	columns := []table.Column{
		{Title: "ID", Width: 8},
		{Title: "Feature", Width: 60},
	}
	rows := make([]table.Row, 0, len(features))
	for _, f := range features {
		rows = append(rows, table.Row{strconv.Itoa(f.ID), truncate(f.Title, 60)})
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240"))
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229"))
	t.SetStyles(s)

	return browseModel{table: t, project: project, features: features}
}

func (m browseModel) Init() tea.Cmd { return nil }

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "esc":
			m.detail = nil
			return m, nil
		case "enter":
			if m.detail != nil {
				m.detail = nil
				return m, nil
			}
			if i := m.table.Cursor(); i >= 0 && i < len(m.features) {
				view := application.Describe(m.features[i])
				m.detail = &view
			}
			return m, nil
		}
	}
	if m.detail != nil {
		return m, nil
	}
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m browseModel) View() string {
	header := headerStyle.Render(fmt.Sprintf("%s: %d features", m.project, len(m.features)))

	if len(m.features) == 0 {
		return browseFrame.Render(lipgloss.JoinVertical(lipgloss.Left,
			header,
			"\nNo features in this project.",
			"\n[q] Quit",
		)) + "\n"
	}

	if m.detail != nil {
		desc := m.detail.PlainDescription
		if desc == "" {
			desc = hintStyle.Render("(no description)")
		}
		return browseFrame.Render(lipgloss.JoinVertical(lipgloss.Left,
			header,
			fmt.Sprintf("\n#%d %s\n", m.detail.ID, m.detail.Title),
			desc,
			fmt.Sprintf("\nfeaturecraft generate %s %d", m.project, m.detail.ID),
			"\n[enter/esc] Back  [q] Quit",
		)) + "\n"
	}

	return browseFrame.Render(lipgloss.JoinVertical(lipgloss.Left,
		header,
		m.table.View(),
		"\n[enter] Description  [Up/Down] Navigate  [q] Quit",
	)) + "\n"
}
