// ABOUTME: Delete confirmation view for TUI
// ABOUTME: Removes a prospect and its interactions after a confirmation dialog
package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/harperreed/prospect/models"
)

var (
	confirmBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("9")).
			Padding(1, 2).
			Width(60).
			Align(lipgloss.Center)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)

	confirmButtonStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("9")).
				Padding(0, 2).
				MarginRight(2)

	cancelButtonStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("8")).
				Padding(0, 2)
)

func (m Model) renderConfirmDeleteView() string {
	p, err := m.session.Prospect(m.selectedID)
	if err != nil {
		return fmt.Sprintf("Error loading prospect: %v", err)
	}

	title := warningStyle.Render("⚠  EXCLUIR PROSPECT  ⚠")
	message := "Tem certeza que deseja excluir este prospect?"
	entityInfo := "\n" + p.DisplayName()
	if where := joinNonEmpty(" · ", p.Profession, p.City, statusLabelOf(p)); where != "" {
		entityInfo += "\n" + where
	}
	warning := "\nAs interações também serão excluídas.\nEsta ação não pode ser desfeita!"

	buttons := lipgloss.JoinHorizontal(
		lipgloss.Left,
		confirmButtonStyle.Render("Sim, excluir (y)"),
		cancelButtonStyle.Render("Cancelar (n/esc)"),
	)

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		title,
		"",
		message,
		entityInfo,
		warning,
		"",
		buttons,
	)

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		confirmBoxStyle.Render(content),
	)
}

func statusLabelOf(p models.Prospect) string {
	return models.StatusLabel(p.EffectiveStatus())
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0:0]
	for _, part := range parts {
		if part != "" {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, sep)
}

func (m Model) handleConfirmDeleteKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		name := m.selectedID
		if p, err := m.session.Prospect(m.selectedID); err == nil {
			name = p.DisplayName()
		}
		if err := m.performDelete(); err != nil {
			m.err = err
			m.viewMode = ViewDetail
			return m, nil
		}
		m.status = "✓ Excluído: " + name
		m.viewMode = ViewList
		m.selectedID = ""
	case "n", "N", "esc":
		m.viewMode = ViewDetail
	}

	return m, nil
}

func (m *Model) performDelete() error {
	ctx := context.Background()
	if err := m.session.Store().DeleteProspect(ctx, m.selectedID); err != nil {
		return fmt.Errorf("failed to delete %s: %w", m.selectedID, err)
	}
	m.reload()
	return m.err
}
