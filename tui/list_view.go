// ABOUTME: Prospect list view for the TUI
// ABOUTME: Table of visible prospects with search, sort, screen, and facet controls
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/prospect/engine"
	"github.com/harperreed/prospect/models"
)

func (m Model) renderListView() string {
	var s strings.Builder

	// Title
	s.WriteString(titleStyle.Render(strings.ToUpper(m.screen().Title)))
	s.WriteString("\n\n")

	// Tabs
	s.WriteString(m.renderTabs())
	s.WriteString("\n\n")

	s.WriteString(m.renderFilterBar())
	s.WriteString("\n\n")

	// Table
	if len(m.visible) == 0 {
		s.WriteString("Nenhum prospect encontrado.")
	} else {
		s.WriteString(m.renderTable())
	}
	s.WriteString("\n")

	if footer := m.renderFooter(); footer != "" {
		s.WriteString(footer)
		s.WriteString("\n")
	}

	// Help
	s.WriteString(m.renderListHelp())

	return s.String()
}

func (m Model) renderTabs() string {
	var rendered []string
	for i, sc := range engine.Screens {
		if i == m.screenIdx {
			rendered = append(rendered, tabActiveStyle.Render(sc.Title))
		} else {
			rendered = append(rendered, tabInactiveStyle.Render(sc.Title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (m Model) renderFilterBar() string {
	var parts []string

	if m.searching {
		parts = append(parts, m.searchInput.View())
	} else if m.query.Search != "" {
		parts = append(parts, fmt.Sprintf("busca: %q", m.query.Search))
	}

	q := m.screen().Restrict(m.query.Normalize())
	if len(q.Professions) > 0 {
		parts = append(parts, "profissão: "+strings.Join(q.Professions, ", "))
	}
	if len(q.Cities) > 0 {
		parts = append(parts, "cidade: "+strings.Join(q.Cities, ", "))
	}
	if q.HasWhatsapp != nil {
		if *q.HasWhatsapp {
			parts = append(parts, "com WhatsApp")
		} else {
			parts = append(parts, "sem WhatsApp")
		}
	}

	arrow := "↑"
	if m.sort.Direction == engine.Desc {
		arrow = "↓"
	}
	summary := fmt.Sprintf("%d de %d", len(m.visible), m.session.Len())
	if n := q.ActiveCount(); n > 0 {
		summary += fmt.Sprintf(" • %d filtros", n)
	}
	summary += fmt.Sprintf(" • %s %s", m.sort.Field.Label(), arrow)
	if pending := m.session.PendingCount(); pending > 0 {
		summary += fmt.Sprintf(" • ⚠ %d não salvas", pending)
	}
	parts = append(parts, summary)

	return strings.Join(parts, "   ")
}

func (m Model) crmColumns() bool {
	return m.screen().Exposes(engine.FacetStatus)
}

func (m Model) renderTable() string {
	nameWidth := max(20, (m.width-70)/2)

	columns := []table.Column{
		{Title: "Empresa", Width: nameWidth},
		{Title: "Contato", Width: 18},
		{Title: "Profissão", Width: 16},
		{Title: "Cidade", Width: 14},
		{Title: "★", Width: 3},
	}
	if m.crmColumns() {
		columns = append(columns,
			table.Column{Title: "Status", Width: 12},
			table.Column{Title: "Prioridade", Width: 10},
		)
	} else {
		columns = append(columns, table.Column{Title: "Serviços", Width: nameWidth})
	}

	var rows []table.Row
	for _, p := range m.visible {
		row := table.Row{p.DisplayName(), p.ContactName, p.Profession, p.City, p.Rating}
		if m.crmColumns() {
			row = append(row, models.StatusLabel(p.EffectiveStatus()), models.PriorityLabel(p.EffectivePriority()))
		} else {
			row = append(row, strings.Join(p.Tags(), ", "))
		}
		rows = append(rows, row)
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(max(5, m.height-12)),
	)

	// Set selected row
	if m.selectedRow < len(rows) {
		t.SetCursor(m.selectedRow)
	}

	return t.View()
}

func (m Model) renderListHelp() string {
	if m.searching {
		return helpStyle.Render("Enter: Apply • Esc: Clear search")
	}
	help := []string{
		"↑/↓: Navigate",
		"Enter: Details",
		"/: Search",
		"s: Sort",
		"r: Reverse",
		"f: Screen",
		"p/c: Profession/City",
		"w: WhatsApp",
		"x: Clear",
		"D: Dashboard",
		"S: Sync",
		"q: Quit",
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searching {
		return m.handleSearchKeys(msg)
	}

	m.status = ""
	switch msg.String() {
	case "up", "k":
		if m.selectedRow > 0 {
			m.selectedRow--
		}
	case "down", "j":
		if m.selectedRow < len(m.visible)-1 {
			m.selectedRow++
		}
	case "enter":
		if p, ok := m.selected(); ok {
			m.openDetail(p.ID)
		}
	case "/":
		m.searching = true
		m.searchInput.SetValue(m.query.Search)
		m.searchInput.CursorEnd()
		return m, m.searchInput.Focus()
	case "s":
		m.sort = nextSort(m.screen(), m.sort)
		m.rebuild()
	case "r":
		m.sort = m.sort.Reversed()
		m.rebuild()
	case "f", "tab":
		m.screenIdx = (m.screenIdx + 1) % len(engine.Screens)
		m.selectedRow = 0
		m.rebuild()
	case "p":
		if m.screen().Exposes(engine.FacetProfession) {
			m.query.Professions = cycleOption(m.session.Facets().Professions, m.query.Professions)
			m.selectedRow = 0
			m.rebuild()
		}
	case "c":
		if m.screen().Exposes(engine.FacetCity) {
			m.query.Cities = cycleOption(m.session.Facets().Cities, m.query.Cities)
			m.selectedRow = 0
			m.rebuild()
		}
	case "w":
		if m.screen().Exposes(engine.FacetContact) {
			m.query.HasWhatsapp = cycleTriState(m.query.HasWhatsapp)
			m.selectedRow = 0
			m.rebuild()
		}
	case "x":
		m.query = engine.Query{}
		m.selectedRow = 0
		m.rebuild()
	case "g":
		m.reload()
	case "D":
		m.viewMode = ViewDashboard
	case "S":
		m.viewMode = ViewSync
	}

	return m, nil
}

func (m Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.searching = false
		m.searchInput.Blur()
		return m, nil
	case tea.KeyEsc:
		m.searching = false
		m.searchInput.Blur()
		m.searchInput.SetValue("")
		m.query.Search = ""
		m.rebuild()
		return m, nil
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	m.query.Search = m.searchInput.Value()
	m.selectedRow = 0
	m.rebuild()
	return m, cmd
}

func (m Model) selected() (models.Prospect, bool) {
	if m.selectedRow < 0 || m.selectedRow >= len(m.visible) {
		return models.Prospect{}, false
	}
	return m.visible[m.selectedRow], true
}

// nextSort moves to the screen's next sort field, ascending.
func nextSort(sc engine.Screen, current engine.Sort) engine.Sort {
	fields := sc.SortFields
	next := fields[0]
	for i, f := range fields {
		if f == current.Field {
			next = fields[(i+1)%len(fields)]
			break
		}
	}
	return engine.Sort{Field: next, Direction: engine.Asc}
}

// cycleOption steps a single-value selection through the facet options and
// back to no selection.
func cycleOption(options []engine.FacetOption, current []string) []string {
	if len(options) == 0 {
		return nil
	}
	if len(current) == 0 {
		return []string{options[0].Value}
	}
	for i, opt := range options {
		if opt.Value == current[0] && i+1 < len(options) {
			return []string{options[i+1].Value}
		}
	}
	return nil
}

// cycleTriState steps nil -> true -> false -> nil.
func cycleTriState(v *bool) *bool {
	switch {
	case v == nil:
		return engine.Bool(true)
	case *v:
		return engine.Bool(false)
	default:
		return nil
	}
}
