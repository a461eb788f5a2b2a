// ABOUTME: Tests for the prospect TUI model
// ABOUTME: Drives the model with key messages and checks state and rendered views
package tui

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/prospect/db"
	"github.com/harperreed/prospect/engine"
	"github.com/harperreed/prospect/models"
	"github.com/harperreed/prospect/session"
)

var errOffline = errors.New("offline")

// offlineStore fails interaction writes on demand.
type offlineStore struct {
	*db.SQLiteStore
	failInteractions bool
}

func (o *offlineStore) AddInteraction(ctx context.Context, in *models.Interaction) error {
	if o.failInteractions {
		return errOffline
	}
	return o.SQLiteStore.AddInteraction(ctx, in)
}

func setupTestModel(t *testing.T) (Model, *offlineStore) {
	t.Helper()

	sqlite, err := db.Open(filepath.Join(t.TempDir(), "prospect.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlite.Close() })

	ctx := context.Background()
	seed := []models.Prospect{
		{ID: "p1", CompanyName: "Clínica Sorriso", Profession: "Dentista", City: "São Paulo", Whatsapp: "11999", Rating: "5"},
		{ID: "p2", CompanyName: "Arquitetura Viva", Profession: "Arquiteto", City: "Curitiba", Rating: "4"},
		{ID: "p3", CompanyName: "Odonto Mais", Profession: "Dentista", City: "Curitiba", Rating: "3"},
	}
	for i := range seed {
		require.NoError(t, sqlite.CreateProspect(ctx, &seed[i]))
	}

	store := &offlineStore{SQLiteStore: sqlite}
	s := session.New(store, session.WithLogger(log.New(io.Discard)))
	require.NoError(t, s.Refresh(ctx))

	m := NewModel(s, "crm")
	m.now = func() time.Time { return time.Date(2024, 9, 1, 12, 0, 0, 0, time.UTC) }
	return m, store
}

func keyMsg(key string) tea.KeyMsg {
	switch key {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
}

// press sends each key in order and returns the final model and last command.
func press(t *testing.T, m Model, keys ...string) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(keyMsg(k))
		m = next.(Model)
	}
	return m, cmd
}

func visibleNames(m Model) []string {
	names := make([]string, len(m.visible))
	for i, p := range m.visible {
		names[i] = p.CompanyName
	}
	return names
}

func TestNewModelDefaults(t *testing.T) {
	m, _ := setupTestModel(t)

	assert.Equal(t, ViewList, m.viewMode)
	assert.Equal(t, "crm", m.screen().Name)
	assert.Equal(t, engine.DefaultSort, m.sort)
	assert.Equal(t, []string{"Arquitetura Viva", "Clínica Sorriso", "Odonto Mais"}, visibleNames(m))

	view := m.View()
	assert.Contains(t, view, "CRM")
	assert.Contains(t, view, "3 de 3")
}

func TestSearchFiltersAsYouType(t *testing.T) {
	m, _ := setupTestModel(t)

	m, _ = press(t, m, "/")
	assert.True(t, m.searching)

	m, _ = press(t, m, "o", "d", "o", "n", "t", "o")
	assert.Equal(t, []string{"Odonto Mais"}, visibleNames(m))

	// q is typed, not quit
	m, _ = press(t, m, "q")
	assert.True(t, m.searching)
	assert.Equal(t, "odontoq", m.query.Search)
	assert.Empty(t, m.visible)

	m, _ = press(t, m, "esc")
	assert.False(t, m.searching)
	assert.Empty(t, m.query.Search)
	assert.Len(t, m.visible, 3)
}

func TestSortKeys(t *testing.T) {
	m, _ := setupTestModel(t)

	m, _ = press(t, m, "s")
	assert.Equal(t, engine.SortContactName, m.sort.Field)

	m, _ = press(t, m, "s")
	assert.Equal(t, engine.SortRating, m.sort.Field)
	assert.Equal(t, "Odonto Mais", m.visible[0].CompanyName)

	m, _ = press(t, m, "r")
	assert.Equal(t, engine.Desc, m.sort.Direction)
	assert.Equal(t, "Clínica Sorriso", m.visible[0].CompanyName)
}

func TestScreenCycleRestrictsFilters(t *testing.T) {
	m, _ := setupTestModel(t)

	m, _ = press(t, m, "w")
	assert.Equal(t, []string{"Clínica Sorriso"}, visibleNames(m))

	// The grid screen has no contact-method facet
	m, _ = press(t, m, "f")
	assert.Equal(t, "grid", m.screen().Name)
	assert.Len(t, m.visible, 3)
	assert.Contains(t, m.View(), "Serviços")

	// The selection is kept for screens that expose it again
	m, _ = press(t, m, "w")
	require.NotNil(t, m.query.HasWhatsapp)
	assert.True(t, *m.query.HasWhatsapp)
}

func TestFacetCycleAndClear(t *testing.T) {
	m, _ := setupTestModel(t)

	m, _ = press(t, m, "p")
	require.Len(t, m.query.Professions, 1)
	before := len(m.visible)
	assert.Less(t, before, 3)

	m, _ = press(t, m, "x")
	assert.True(t, m.query.IsEmpty())
	assert.Len(t, m.visible, 3)
}

func TestDetailStatusAndPriority(t *testing.T) {
	m, store := setupTestModel(t)

	m, _ = press(t, m, "down", "enter")
	require.Equal(t, ViewDetail, m.viewMode)
	assert.Equal(t, "p1", m.selectedID)
	assert.Contains(t, m.View(), "Clínica Sorriso")

	m, _ = press(t, m, "t", "p")
	assert.Contains(t, m.status, "Prioridade")

	got, err := store.GetProspect(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusQualified, got.Status)
	assert.Equal(t, models.PriorityHigh, got.Priority)

	m, _ = press(t, m, "esc")
	assert.Equal(t, ViewList, m.viewMode)
}

func TestAddNote(t *testing.T) {
	m, store := setupTestModel(t)

	m, _ = press(t, m, "enter", "n")
	require.Equal(t, ViewNote, m.viewMode)

	m, _ = press(t, m, "L", "i", "g", "u", "e", "i", "tab")
	assert.Equal(t, models.InteractionCall, models.InteractionTypes[m.noteType])

	m, _ = press(t, m, "enter")
	assert.Equal(t, ViewDetail, m.viewMode)
	require.Len(t, m.interactions, 1)
	assert.Equal(t, "Liguei", m.interactions[0].Title)

	stored, err := store.ListInteractions(context.Background(), m.selectedID)
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestEmptyNoteStaysInInput(t *testing.T) {
	m, _ := setupTestModel(t)

	m, _ = press(t, m, "enter", "n", "enter")
	assert.Equal(t, ViewNote, m.viewMode)
	assert.Error(t, m.err)
}

func TestUnsyncedNoteAndRetry(t *testing.T) {
	m, store := setupTestModel(t)
	store.failInteractions = true

	m, _ = press(t, m, "enter", "n", "o", "i", "enter")
	require.Equal(t, ViewDetail, m.viewMode)
	assert.ErrorIs(t, m.err, session.ErrUnsynced)
	require.Len(t, m.interactions, 1)
	assert.True(t, m.interactions[0].Unsynced)
	assert.Contains(t, m.View(), "não salva")

	m, _ = press(t, m, "esc", "S")
	require.Equal(t, ViewSync, m.viewMode)
	assert.Contains(t, m.View(), "1 interactions not saved")

	store.failInteractions = false
	m, cmd := press(t, m, "enter")
	require.NotNil(t, cmd)
	assert.True(t, m.syncInProgress)

	next, _ := m.Update(cmd())
	m = next.(Model)
	assert.False(t, m.syncInProgress)
	assert.Equal(t, 0, m.session.PendingCount())
	assert.Contains(t, m.View(), "Everything is saved")
	require.Len(t, m.interactions, 1)
	assert.False(t, m.interactions[0].Unsynced)
}

func TestDeleteProspect(t *testing.T) {
	m, _ := setupTestModel(t)

	m, _ = press(t, m, "enter", "d")
	require.Equal(t, ViewConfirmDelete, m.viewMode)
	assert.Contains(t, m.View(), "Arquitetura Viva")

	m, _ = press(t, m, "n")
	assert.Equal(t, ViewDetail, m.viewMode)

	m, _ = press(t, m, "d", "y")
	assert.Equal(t, ViewList, m.viewMode)
	assert.Equal(t, 2, m.session.Len())
	assert.Len(t, m.visible, 2)
	assert.Contains(t, m.status, "Arquitetura Viva")
}

func TestDashboardView(t *testing.T) {
	m, _ := setupTestModel(t)

	m, _ = press(t, m, "D")
	require.Equal(t, ViewDashboard, m.viewMode)
	view := m.View()
	assert.Contains(t, view, "PIPELINE OVERVIEW")
	assert.Contains(t, view, "3 prospects")

	m, _ = press(t, m, "esc")
	assert.Equal(t, ViewList, m.viewMode)
}

func TestFormatTimeSince(t *testing.T) {
	now := time.Date(2024, 9, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, "just now", formatTimeSince(now.Add(-10*time.Second), now))
	assert.Equal(t, "1 minute ago", formatTimeSince(now.Add(-time.Minute), now))
	assert.Equal(t, "5 hours ago", formatTimeSince(now.Add(-5*time.Hour), now))
	assert.Equal(t, "3 days ago", formatTimeSince(now.Add(-72*time.Hour), now))
}
