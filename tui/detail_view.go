// ABOUTME: Prospect detail view for the TUI
// ABOUTME: Shows every field, pipeline state, and the interaction history
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/prospect/models"
	"github.com/harperreed/prospect/session"
)

var (
	fieldLabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			Width(20)

	fieldValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	unsyncedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11")).
			Bold(true)
)

// openDetail switches to the detail view for id and loads its interactions.
func (m *Model) openDetail(id string) {
	m.selectedID = id
	m.viewMode = ViewDetail
	m.loadInteractions()
}

func (m *Model) loadInteractions() {
	interactions, err := m.session.Interactions(context.Background(), m.selectedID)
	m.interactions = interactions
	m.err = err
}

func (m Model) renderDetailView() string {
	p, err := m.session.Prospect(m.selectedID)
	if err != nil {
		return fmt.Sprintf("Error: %v\n\n%s", err, m.renderDetailHelp())
	}

	var s strings.Builder

	// Title
	s.WriteString(titleStyle.Render(p.DisplayName()))
	s.WriteString("\n\n")

	s.WriteString(m.renderField("Contato", p.ContactName))
	s.WriteString(m.renderField("Profissão", p.Profession))
	s.WriteString(m.renderField("Especialização", p.Specialization))
	s.WriteString(m.renderField("Cidade", strings.Trim(p.City+" / "+p.State, " /")))
	s.WriteString(m.renderField("Endereço", p.Address))
	s.WriteString(m.renderField("Telefone", p.Phone))
	s.WriteString(m.renderField("WhatsApp", p.Whatsapp))
	s.WriteString(m.renderField("Email", p.Email))
	s.WriteString(m.renderField("Website", p.Website))
	s.WriteString(m.renderField("Avaliação", p.Rating))
	s.WriteString(m.renderField("Experiência", p.YearsExperience))
	s.WriteString(m.renderField("Serviços", strings.Join(p.Tags(), ", ")))
	s.WriteString("\n")
	s.WriteString(m.renderField("Status", models.StatusLabel(p.EffectiveStatus())))
	s.WriteString(m.renderField("Prioridade", models.PriorityLabel(p.EffectivePriority())))
	if p.LastContactAt != nil {
		s.WriteString(m.renderField("Último contato", p.LastContactAt.Local().Format("2006-01-02 15:04")))
	}
	if p.NextFollowUp != nil {
		s.WriteString(m.renderField("Próximo follow-up", p.NextFollowUp.Local().Format("2006-01-02")))
	}
	s.WriteString(m.renderField("Notas", p.Notes))

	// Interactions
	s.WriteString("\n")
	s.WriteString(lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("INTERAÇÕES (%d)", len(m.interactions))))
	s.WriteString("\n")
	for _, in := range m.interactions {
		line := fmt.Sprintf("  • [%s] %s: %s", in.CreatedAt.Local().Format("2006-01-02"), in.Type, in.Title)
		if in.Unsynced {
			line += " " + unsyncedStyle.Render("⚠ não salva")
		}
		s.WriteString(line + "\n")
	}

	s.WriteString("\n")
	if footer := m.renderFooter(); footer != "" {
		s.WriteString(footer)
		s.WriteString("\n")
	}

	// Help
	s.WriteString(m.renderDetailHelp())

	return s.String()
}

func (m Model) renderField(label, value string) string {
	if value == "" {
		value = "-"
	}
	return fmt.Sprintf("%s %s\n",
		fieldLabelStyle.Render(label+":"),
		fieldValueStyle.Render(value))
}

func (m Model) renderDetailHelp() string {
	help := []string{
		"Esc: Back",
		"t: Next status",
		"p: Next priority",
		"n: Add note",
		"d: Delete",
		"q: Quit",
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.viewMode = ViewList
		m.status = ""
		m.rebuild()
	case "t":
		m.cycleStatus()
	case "p":
		m.cyclePriority()
	case "n":
		m.viewMode = ViewNote
		m.noteInput.SetValue("")
		return m, m.noteInput.Focus()
	case "d":
		m.viewMode = ViewConfirmDelete
	}

	return m, nil
}

func (m *Model) cycleStatus() {
	p, err := m.session.Prospect(m.selectedID)
	if err != nil {
		m.err = err
		return
	}
	next := nextValue(models.Statuses, p.EffectiveStatus())
	if err := m.session.SetStatus(context.Background(), p.ID, next); err != nil {
		m.err = err
		return
	}
	m.err = nil
	m.status = "✓ Status: " + models.StatusLabel(next)
}

func (m *Model) cyclePriority() {
	p, err := m.session.Prospect(m.selectedID)
	if err != nil {
		m.err = err
		return
	}
	next := nextValue(models.Priorities, p.EffectivePriority())
	if err := m.session.SetPriority(context.Background(), p.ID, next); err != nil {
		m.err = err
		return
	}
	m.err = nil
	m.status = "✓ Prioridade: " + models.PriorityLabel(next)
}

func nextValue(values []string, current string) string {
	return values[(indexOf(values, current)+1)%len(values)]
}

// saveNote logs the note input as an interaction of the selected type. It
// reports whether the note left the input, either saved or kept unsynced.
func (m *Model) saveNote() bool {
	title := strings.TrimSpace(m.noteInput.Value())
	if title == "" {
		m.err = errors.New("note is empty")
		return false
	}

	draft := models.Interaction{
		ProspectID: m.selectedID,
		Type:       models.InteractionTypes[m.noteType],
		Title:      title,
	}
	_, err := m.session.LogInteraction(context.Background(), draft)
	if err != nil && !errors.Is(err, session.ErrUnsynced) {
		m.err = err
		return false
	}

	m.loadInteractions()
	if err != nil {
		m.status = ""
		m.err = err
		return true
	}
	m.status = "✓ Interação registrada"
	return true
}
