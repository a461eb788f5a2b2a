// ABOUTME: Dashboard view for the TUI
// ABOUTME: Shows pipeline stats and the prospects that need a follow-up
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/harperreed/prospect/viz"
)

func (m Model) renderDashboardView() string {
	stats := viz.GenerateDashboardStats(m.session.Snapshot(), m.now())

	var s strings.Builder
	s.WriteString(viz.RenderDashboard(stats))
	s.WriteString("\n")

	if due := followupRows(stats); len(due) > 0 {
		s.WriteString(m.renderFollowupsTable(due))
		s.WriteString("\n")
	}

	// Help
	s.WriteString(helpStyle.Render(strings.Join([]string{"Esc: Back", "q: Quit"}, " • ")))
	return s.String()
}

// followupRows lists due follow-ups first, then prospects gone quiet.
func followupRows(stats *viz.DashboardStats) []table.Row {
	var rows []table.Row
	for _, f := range stats.FollowUpsDue {
		rows = append(rows, table.Row{"🔴", f.Name, fmt.Sprintf("%d", f.DaysSince), "follow-up"})
	}
	for _, f := range stats.StaleProspects {
		rows = append(rows, table.Row{"🟡", f.Name, fmt.Sprintf("%d", f.DaysSince), "sem contato"})
	}
	return rows
}

func (m Model) renderFollowupsTable(rows []table.Row) string {
	columns := []table.Column{
		{Title: "", Width: 3},
		{Title: "Prospect", Width: 36},
		{Title: "Dias", Width: 6},
		{Title: "Motivo", Width: 12},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithHeight(min(len(rows)+1, max(3, m.height-24))),
	)
	return t.View()
}

func (m Model) handleDashboardKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "esc" {
		m.viewMode = ViewList
	}
	return m, nil
}
