// ABOUTME: Terminal User Interface using bubbletea framework
// ABOUTME: Provides interactive full-screen interface for browsing and working prospects
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/prospect/engine"
	"github.com/harperreed/prospect/models"
	"github.com/harperreed/prospect/session"
)

// ViewMode represents the current TUI view
type ViewMode int

const (
	ViewList ViewMode = iota
	ViewDetail
	ViewNote
	ViewDashboard
	ViewSync
	ViewConfirmDelete
)

// Model is the main bubbletea model
type Model struct {
	session  *session.Session
	viewMode ViewMode
	now      func() time.Time

	// List view state
	screenIdx   int
	query       engine.Query
	sort        engine.Sort
	visible     []models.Prospect
	selectedRow int
	searching   bool
	searchInput textinput.Model

	// Detail view state
	selectedID   string
	interactions []models.Interaction

	// Note view state
	noteInput textinput.Model
	noteType  int

	// Sync view state
	syncInProgress bool
	syncMessages   []string

	// UI state
	status string
	width  int
	height int
	err    error
}

// NewModel creates a new TUI model starting on the named screen.
func NewModel(s *session.Session, screen string) Model {
	search := textinput.New()
	search.Placeholder = "empresa, contato, profissão, cidade..."
	search.Prompt = "/ "
	search.CharLimit = 120

	note := textinput.New()
	note.Placeholder = "Resumo da interação"
	note.CharLimit = 200

	m := Model{
		session:     s,
		viewMode:    ViewList,
		now:         time.Now,
		searchInput: search,
		noteInput:   note,
		noteType:    indexOf(models.InteractionTypes, models.InteractionNote),
		width:       100,
		height:      30,
	}
	for i, sc := range engine.Screens {
		if sc.Name == screen {
			m.screenIdx = i
		}
	}
	m.sort = m.screen().DefaultSort
	m.rebuild()
	return m
}

func indexOf(values []string, v string) int {
	for i, x := range values {
		if x == v {
			return i
		}
	}
	return 0
}

func (m Model) screen() engine.Screen {
	return engine.Screens[m.screenIdx]
}

// rebuild recomputes the visible list from the session snapshot.
func (m *Model) rebuild() {
	sc := m.screen()
	m.sort = sc.SortOrDefault(m.sort)
	m.visible = m.session.Visible(sc.Restrict(m.query.Normalize()), m.sort)
	if m.selectedRow >= len(m.visible) {
		m.selectedRow = max(0, len(m.visible)-1)
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case SyncCompleteMsg:
		m.handleSyncComplete(msg)
		return m, nil
	}
	return m, nil
}

func (m Model) View() string {
	switch m.viewMode {
	case ViewList:
		return m.renderListView()
	case ViewDetail:
		return m.renderDetailView()
	case ViewNote:
		return m.renderNoteView()
	case ViewDashboard:
		return m.renderDashboardView()
	case ViewSync:
		return m.renderSyncView()
	case ViewConfirmDelete:
		return m.renderConfirmDeleteView()
	}
	return ""
}

// typing reports whether keys go to a text input.
func (m Model) typing() bool {
	return m.viewMode == ViewNote || (m.viewMode == ViewList && m.searching)
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "q":
		if !m.typing() {
			return m, tea.Quit
		}
	}

	// Delegate to view-specific handlers
	switch m.viewMode {
	case ViewList:
		return m.handleListKeys(msg)
	case ViewDetail:
		return m.handleDetailKeys(msg)
	case ViewNote:
		return m.handleNoteKeys(msg)
	case ViewDashboard:
		return m.handleDashboardKeys(msg)
	case ViewSync:
		return m.handleSyncKeys(msg)
	case ViewConfirmDelete:
		return m.handleConfirmDeleteKeys(msg)
	}

	return m, nil
}

// reload refreshes the snapshot from the store.
func (m *Model) reload() {
	if err := m.session.Refresh(context.Background()); err != nil {
		m.err = err
		return
	}
	m.err = nil
	m.rebuild()
}

// Run starts the full-screen program.
func Run(s *session.Session, screen string) error {
	p := tea.NewProgram(NewModel(s, screen), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			MarginBottom(1)

	tabActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			Background(lipgloss.Color("235")).
			Padding(0, 2)

	tabInactiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")).
				Padding(0, 2)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			MarginTop(1)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))
)

// renderFooter shows the last status message or error.
func (m Model) renderFooter() string {
	if m.err != nil {
		return errorStyle.Render("✗ " + m.err.Error())
	}
	if m.status != "" {
		return statusStyle.Render(m.status)
	}
	return ""
}
