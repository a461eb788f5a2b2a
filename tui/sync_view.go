// ABOUTME: TUI view for interactions that failed to save
// ABOUTME: Lists unsynced interactions and retries them in the background
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	syncHeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			Underline(true)

	syncIdleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	syncSyncingStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("11")).
				Bold(true)

	syncMessageStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")).
				Italic(true)
)

// SyncCompleteMsg is sent when a retry of unsynced interactions completes.
type SyncCompleteMsg struct {
	Written int
	Error   error
}

func (m Model) renderSyncView() string {
	var s strings.Builder

	// Title
	s.WriteString(titleStyle.Render("Interações pendentes"))
	s.WriteString("\n\n")

	pending := m.session.Pending("")
	switch {
	case m.syncInProgress:
		s.WriteString(syncSyncingStyle.Render("⟳ Saving..."))
	case len(pending) == 0:
		s.WriteString(syncIdleStyle.Render("✓ Everything is saved"))
	default:
		s.WriteString(syncSyncingStyle.Render(fmt.Sprintf("⚠ %d interactions not saved", len(pending))))
	}
	s.WriteString("\n\n")

	if len(pending) > 0 {
		s.WriteString(syncHeaderStyle.Render("Pending"))
		s.WriteString("\n\n")
		for _, in := range pending {
			name := in.ProspectID
			if p, err := m.session.Prospect(in.ProspectID); err == nil {
				name = p.DisplayName()
			}
			s.WriteString(fmt.Sprintf("  • %s  %s: %s (%s)\n",
				name, in.Type, in.Title, formatTimeSince(in.CreatedAt, m.now())))
		}
		s.WriteString("\n")
	}

	// Recent messages
	if len(m.syncMessages) > 0 {
		s.WriteString(syncHeaderStyle.Render("Recent Activity"))
		s.WriteString("\n\n")
		// Show last 5 messages
		start := max(0, len(m.syncMessages)-5)
		for _, msg := range m.syncMessages[start:] {
			s.WriteString(syncMessageStyle.Render("  " + msg))
			s.WriteString("\n")
		}
		s.WriteString("\n")
	}

	// Help
	s.WriteString(m.renderSyncHelp())

	return s.String()
}

func (m Model) renderSyncHelp() string {
	help := []string{
		"Enter: Retry all",
		"g: Reload prospects",
		"Esc: Back",
		"q: Quit",
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleSyncKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		if m.syncInProgress || m.session.PendingCount() == 0 {
			return m, nil
		}
		// Mark in progress now, then queue the async retry
		m.syncInProgress = true
		m.addSyncMessage("Retrying unsynced interactions...")
		return m, m.retryUnsynced()
	case "g":
		m.reload()
		m.addSyncMessage("Reloaded prospects")
	case "esc":
		m.viewMode = ViewList
		m.rebuild()
	}

	return m, nil
}

// retryUnsynced writes pending interactions in the background.
func (m Model) retryUnsynced() tea.Cmd {
	s := m.session
	return func() tea.Msg {
		written, err := s.RetryUnsynced(context.Background())
		return SyncCompleteMsg{Written: written, Error: err}
	}
}

// addSyncMessage adds a message to the sync message log.
func (m *Model) addSyncMessage(msg string) {
	timestamp := m.now().Format("15:04:05")
	m.syncMessages = append(m.syncMessages, fmt.Sprintf("[%s] %s", timestamp, msg))
}

// handleSyncComplete handles retry completion messages.
func (m *Model) handleSyncComplete(msg SyncCompleteMsg) {
	m.syncInProgress = false

	if msg.Written > 0 {
		m.addSyncMessage(fmt.Sprintf("✓ %d interactions saved", msg.Written))
	}
	if msg.Error != nil {
		m.addSyncMessage(fmt.Sprintf("✗ retry failed: %v", msg.Error))
	}

	if m.selectedID != "" {
		m.loadInteractions()
	}
}

// formatTimeSince formats a time duration in a human-readable way.
func formatTimeSince(t, now time.Time) string {
	duration := now.Sub(t)

	switch {
	case duration < time.Minute:
		return "just now"
	case duration < time.Hour:
		minutes := int(duration.Minutes())
		if minutes == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", minutes)
	case duration < 24*time.Hour:
		hours := int(duration.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	default:
		days := int(duration.Hours() / 24)
		if days == 1 {
			return "1 day ago"
		}
		return fmt.Sprintf("%d days ago", days)
	}
}
