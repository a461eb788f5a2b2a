// ABOUTME: Note input view for logging interactions from the TUI
// ABOUTME: Single-line title with a selectable interaction type
package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/harperreed/prospect/models"
)

func (m Model) renderNoteView() string {
	var s strings.Builder

	name := m.selectedID
	if p, err := m.session.Prospect(m.selectedID); err == nil {
		name = p.DisplayName()
	}

	s.WriteString(titleStyle.Render("NOVA INTERAÇÃO • " + name))
	s.WriteString("\n\n")

	var types []string
	for i, t := range models.InteractionTypes {
		if i == m.noteType {
			types = append(types, tabActiveStyle.Render(t))
		} else {
			types = append(types, tabInactiveStyle.Render(t))
		}
	}
	s.WriteString(strings.Join(types, ""))
	s.WriteString("\n\n")

	s.WriteString("> ")
	s.WriteString(m.noteInput.View())
	s.WriteString("\n\n")

	if footer := m.renderFooter(); footer != "" {
		s.WriteString(footer)
		s.WriteString("\n")
	}

	// Help
	s.WriteString(m.renderNoteHelp())

	return s.String()
}

func (m Model) renderNoteHelp() string {
	help := []string{
		"Tab: Change type",
		"Enter: Save",
		"Esc: Cancel",
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleNoteKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.noteInput.Blur()
		m.viewMode = ViewDetail
		return m, nil
	case tea.KeyTab:
		m.noteType = (m.noteType + 1) % len(models.InteractionTypes)
		return m, nil
	case tea.KeyEnter:
		if m.saveNote() {
			m.noteInput.Blur()
			m.viewMode = ViewDetail
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.noteInput, cmd = m.noteInput.Update(msg)
	return m, cmd
}
