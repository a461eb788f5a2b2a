// ABOUTME: Tests for the prospect session
// ABOUTME: Uses a real SQLite store wrapped to inject write and read failures
package session

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/harperreed/prospect/db"
	"github.com/harperreed/prospect/engine"
	"github.com/harperreed/prospect/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errOffline = errors.New("store offline")

// flakyStore fails selected operations on demand.
type flakyStore struct {
	*db.SQLiteStore
	failList         bool
	failInteractions bool
	failStatus       bool
}

func (f *flakyStore) ListProspects(ctx context.Context) ([]models.Prospect, error) {
	if f.failList {
		return nil, errOffline
	}
	return f.SQLiteStore.ListProspects(ctx)
}

func (f *flakyStore) AddInteraction(ctx context.Context, in *models.Interaction) error {
	if f.failInteractions {
		return errOffline
	}
	return f.SQLiteStore.AddInteraction(ctx, in)
}

func (f *flakyStore) ListInteractions(ctx context.Context, id string) ([]models.Interaction, error) {
	if f.failList {
		return nil, errOffline
	}
	return f.SQLiteStore.ListInteractions(ctx, id)
}

func (f *flakyStore) UpdateStatus(ctx context.Context, id, status string, at time.Time) error {
	if f.failStatus {
		return errOffline
	}
	return f.SQLiteStore.UpdateStatus(ctx, id, status, at)
}

var fixedNow = time.Date(2024, 9, 1, 12, 0, 0, 0, time.UTC)

func setupSession(t *testing.T, seed ...models.Prospect) (*Session, *flakyStore) {
	t.Helper()

	sqlite, err := db.Open(filepath.Join(t.TempDir(), "prospect.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlite.Close() })

	ctx := context.Background()
	for i := range seed {
		require.NoError(t, sqlite.CreateProspect(ctx, &seed[i]))
	}

	store := &flakyStore{SQLiteStore: sqlite}
	s := New(store,
		WithClock(func() time.Time { return fixedNow }),
		WithLogger(log.New(io.Discard)),
		WithUserID("tester"),
	)
	require.NoError(t, s.Refresh(ctx))
	return s, store
}

func TestRefreshLoadsSnapshot(t *testing.T) {
	s, _ := setupSession(t,
		models.Prospect{ID: "a", CompanyName: "Alpha", City: "SP"},
		models.Prospect{ID: "b", CompanyName: "Beta", City: "RJ"},
	)

	assert.Equal(t, 2, s.Len())
	p, err := s.Prospect("a")
	require.NoError(t, err)
	assert.Equal(t, "Alpha", p.CompanyName)

	_, err = s.Prospect("zzz")
	assert.ErrorIs(t, err, ErrUnknownProspect)
}

func TestRefreshFailureKeepsPreviousSnapshot(t *testing.T) {
	s, store := setupSession(t, models.Prospect{ID: "a", CompanyName: "Alpha"})

	store.failList = true
	err := s.Refresh(context.Background())

	assert.ErrorIs(t, err, errOffline)
	assert.Equal(t, 1, s.Len())
}

func TestVisibleAndFacets(t *testing.T) {
	s, _ := setupSession(t,
		models.Prospect{ID: "a", CompanyName: "Zeta", City: "SP", Services: "Seo"},
		models.Prospect{ID: "b", CompanyName: "Alpha", City: "RJ", Services: "Seo, Ads"},
	)

	got := s.Visible(engine.Query{}, engine.DefaultSort)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].ID)

	got = s.Visible(engine.Query{Cities: []string{"SP"}}, engine.DefaultSort)
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].ID)

	f := s.Facets()
	require.NotEmpty(t, f.Tags)
	assert.Equal(t, "Seo", f.Tags[0].Value)
	assert.Equal(t, 2, f.Tags[0].Count)
}

func TestSnapshotIsACopy(t *testing.T) {
	s, _ := setupSession(t, models.Prospect{ID: "a", CompanyName: "Alpha"})

	snap := s.Snapshot()
	snap[0].CompanyName = "changed"

	p, err := s.Prospect("a")
	require.NoError(t, err)
	assert.Equal(t, "Alpha", p.CompanyName)
}

func TestAddProspectPrependsToSnapshot(t *testing.T) {
	s, _ := setupSession(t, models.Prospect{ID: "a", CompanyName: "Alpha"})

	p := &models.Prospect{CompanyName: "New Co"}
	require.NoError(t, s.AddProspect(context.Background(), p))

	snap := s.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, p.ID, snap[0].ID)
	assert.Equal(t, "tester", snap[0].CreatedBy)
}

func TestSetStatusPatchesSnapshot(t *testing.T) {
	s, _ := setupSession(t, models.Prospect{ID: "a", CompanyName: "Alpha"})
	ctx := context.Background()

	require.NoError(t, s.SetStatus(ctx, "a", models.StatusQualified))

	p, err := s.Prospect("a")
	require.NoError(t, err)
	assert.Equal(t, models.StatusQualified, p.Status)
	require.NotNil(t, p.LastContactAt)
	assert.True(t, fixedNow.Equal(*p.LastContactAt))

	stored, err := s.Store().GetProspect(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, models.StatusQualified, stored.Status)
}

func TestSetStatusRejectsInvalidInput(t *testing.T) {
	s, store := setupSession(t, models.Prospect{ID: "a", CompanyName: "Alpha"})
	ctx := context.Background()

	assert.ErrorIs(t, s.SetStatus(ctx, "a", "won"), db.ErrInvalidStatus)
	assert.ErrorIs(t, s.SetStatus(ctx, "missing", models.StatusLead), ErrUnknownProspect)

	store.failStatus = true
	assert.ErrorIs(t, s.SetStatus(ctx, "a", models.StatusLead), errOffline)
	p, err := s.Prospect("a")
	require.NoError(t, err)
	assert.Equal(t, models.StatusProspect, p.Status)
}

func TestSetPriority(t *testing.T) {
	s, _ := setupSession(t, models.Prospect{ID: "a", CompanyName: "Alpha"})
	ctx := context.Background()

	require.NoError(t, s.SetPriority(ctx, "a", models.PriorityUrgent))
	p, err := s.Prospect("a")
	require.NoError(t, err)
	assert.Equal(t, models.PriorityUrgent, p.Priority)

	assert.ErrorIs(t, s.SetPriority(ctx, "a", "whenever"), db.ErrInvalidPriority)
}

func TestLogInteractionPersists(t *testing.T) {
	s, _ := setupSession(t, models.Prospect{ID: "a", CompanyName: "Alpha"})
	ctx := context.Background()

	in, err := s.LogInteraction(ctx, models.Interaction{ProspectID: "a", Type: models.InteractionCall, Title: "Intro call"})
	require.NoError(t, err)
	assert.False(t, in.Unsynced)
	assert.Equal(t, "tester", in.UserID)

	list, err := s.Interactions(ctx, "a")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Intro call", list[0].Title)

	p, err := s.Prospect("a")
	require.NoError(t, err)
	require.NotNil(t, p.LastContactAt)
}

func TestLogInteractionValidation(t *testing.T) {
	s, _ := setupSession(t, models.Prospect{ID: "a", CompanyName: "Alpha"})
	ctx := context.Background()

	_, err := s.LogInteraction(ctx, models.Interaction{ProspectID: "a", Type: "telegram", Title: "x"})
	assert.ErrorIs(t, err, db.ErrInvalidInteraction)
	assert.Zero(t, s.PendingCount())

	_, err = s.LogInteraction(ctx, models.Interaction{ProspectID: "nope", Type: models.InteractionNote, Title: "x"})
	assert.ErrorIs(t, err, ErrUnknownProspect)
}

func TestLogInteractionFallsBackToLocal(t *testing.T) {
	s, store := setupSession(t, models.Prospect{ID: "a", CompanyName: "Alpha"})
	ctx := context.Background()

	require.NoError(t, store.SQLiteStore.AddInteraction(ctx, &models.Interaction{
		ProspectID: "a", Type: models.InteractionNote, Title: "older", CreatedAt: fixedNow.Add(-time.Hour),
	}))

	store.failInteractions = true
	in, err := s.LogInteraction(ctx, models.Interaction{ProspectID: "a", Type: models.InteractionWhatsapp, Title: "Sent price list"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsynced)
	assert.ErrorIs(t, err, errOffline)
	assert.True(t, in.Unsynced)
	assert.NotEmpty(t, in.ID)
	assert.Equal(t, 1, s.PendingCount())

	list, err := s.Interactions(ctx, "a")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Sent price list", list[0].Title)
	assert.True(t, list[0].Unsynced)
	assert.False(t, list[1].Unsynced)
}

func TestLogInteractionForDeletedProspectIsNotKept(t *testing.T) {
	s, store := setupSession(t, models.Prospect{ID: "a", CompanyName: "Alpha"})
	ctx := context.Background()

	require.NoError(t, store.SQLiteStore.DeleteProspect(ctx, "a"))

	_, err := s.LogInteraction(ctx, models.Interaction{ProspectID: "a", Type: models.InteractionCall, Title: "Too late"})
	require.Error(t, err)
	assert.ErrorIs(t, err, db.ErrProspectNotFound)
	assert.NotErrorIs(t, err, ErrUnsynced)
	assert.Zero(t, s.PendingCount())
}

func TestRetryUnsyncedDropsDeletedProspects(t *testing.T) {
	s, store := setupSession(t,
		models.Prospect{ID: "a", CompanyName: "Alpha"},
		models.Prospect{ID: "b", CompanyName: "Beta"},
	)
	ctx := context.Background()

	store.failInteractions = true
	_, err := s.LogInteraction(ctx, models.Interaction{ProspectID: "a", Type: models.InteractionNote, Title: "gone"})
	require.ErrorIs(t, err, ErrUnsynced)
	_, err = s.LogInteraction(ctx, models.Interaction{ProspectID: "b", Type: models.InteractionNote, Title: "kept"})
	require.ErrorIs(t, err, ErrUnsynced)
	require.Equal(t, 2, s.PendingCount())

	require.NoError(t, store.SQLiteStore.DeleteProspect(ctx, "a"))
	store.failInteractions = false

	n, err := s.RetryUnsynced(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Zero(t, s.PendingCount())

	n, err = s.RetryUnsynced(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestInteractionsReturnsPendingWhenStoreUnreadable(t *testing.T) {
	s, store := setupSession(t, models.Prospect{ID: "a", CompanyName: "Alpha"})
	ctx := context.Background()

	store.failInteractions = true
	_, err := s.LogInteraction(ctx, models.Interaction{ProspectID: "a", Type: models.InteractionNote, Title: "local"})
	require.ErrorIs(t, err, ErrUnsynced)

	store.failList = true
	list, err := s.Interactions(ctx, "a")
	assert.ErrorIs(t, err, errOffline)
	require.Len(t, list, 1)
	assert.Equal(t, "local", list[0].Title)
}

func TestRetryUnsynced(t *testing.T) {
	s, store := setupSession(t, models.Prospect{ID: "a", CompanyName: "Alpha"})
	ctx := context.Background()

	store.failInteractions = true
	in, err := s.LogInteraction(ctx, models.Interaction{ProspectID: "a", Type: models.InteractionEmail, Title: "Follow-up"})
	require.ErrorIs(t, err, ErrUnsynced)

	n, err := s.RetryUnsynced(ctx)
	assert.Error(t, err)
	assert.Zero(t, n)
	assert.Equal(t, 1, s.PendingCount())

	store.failInteractions = false
	n, err = s.RetryUnsynced(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Zero(t, s.PendingCount())

	list, err := s.Interactions(ctx, "a")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, in.ID, list[0].ID)
	assert.False(t, list[0].Unsynced)
}

func TestSetFollowUpPatchesSnapshotWithoutRefresh(t *testing.T) {
	s, store := setupSession(t, models.Prospect{ID: "a", CompanyName: "Alpha"})
	ctx := context.Background()
	store.failList = true

	when := fixedNow.AddDate(0, 0, 7)
	p, err := s.SetFollowUp(ctx, "a", &when)
	require.NoError(t, err)
	require.NotNil(t, p.NextFollowUp)
	assert.True(t, when.Equal(*p.NextFollowUp))

	cached, err := s.Prospect("a")
	require.NoError(t, err)
	require.NotNil(t, cached.NextFollowUp)
	assert.True(t, when.Equal(*cached.NextFollowUp))

	stored, err := store.SQLiteStore.GetProspect(ctx, "a")
	require.NoError(t, err)
	require.NotNil(t, stored.NextFollowUp)

	p, err = s.SetFollowUp(ctx, "a", nil)
	require.NoError(t, err)
	assert.Nil(t, p.NextFollowUp)

	_, err = s.SetFollowUp(ctx, "missing", &when)
	assert.ErrorIs(t, err, ErrUnknownProspect)
}

func TestDeleteProspectDropsSnapshotAndPending(t *testing.T) {
	s, store := setupSession(t,
		models.Prospect{ID: "a", CompanyName: "Alpha"},
		models.Prospect{ID: "b", CompanyName: "Beta"},
	)
	ctx := context.Background()

	store.failInteractions = true
	_, err := s.LogInteraction(ctx, models.Interaction{ProspectID: "a", Type: models.InteractionNote, Title: "local"})
	require.ErrorIs(t, err, ErrUnsynced)

	require.NoError(t, s.DeleteProspect(ctx, "a"))
	assert.Equal(t, 1, s.Len())
	assert.Zero(t, s.PendingCount())
	_, err = s.Prospect("a")
	assert.ErrorIs(t, err, ErrUnknownProspect)

	assert.ErrorIs(t, s.DeleteProspect(ctx, "a"), db.ErrProspectNotFound)
}
