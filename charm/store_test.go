// ABOUTME: Tests for the Charm KV prospect store
// ABOUTME: Runs against a badger-backed client so no server is needed

package charm

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/harperreed/prospect/db"
	"github.com/harperreed/prospect/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreCreateAndGet(t *testing.T) {
	store := NewStore(NewTestClient(t))
	ctx := context.Background()

	p := &models.Prospect{CompanyName: "Acme", City: "SP", Services: "Seo"}
	require.NoError(t, store.CreateProspect(ctx, p))
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, models.StatusProspect, p.Status)

	got, err := store.GetProspect(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", got.CompanyName)
	assert.Equal(t, "SP", got.City)

	_, err = store.GetProspect(ctx, "missing")
	assert.ErrorIs(t, err, db.ErrProspectNotFound)
}

func TestStoreRejectsDuplicateID(t *testing.T) {
	store := NewStore(NewTestClient(t))
	ctx := context.Background()

	require.NoError(t, store.CreateProspect(ctx, &models.Prospect{ID: "fixed", CompanyName: "A"}))
	err := store.CreateProspect(ctx, &models.Prospect{ID: "fixed", CompanyName: "B"})
	assert.ErrorIs(t, err, db.ErrInvalidProspect)
}

func TestStoreListNewestFirst(t *testing.T) {
	store := NewStore(NewTestClient(t))
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.CreateProspect(ctx, &models.Prospect{CompanyName: "old", CreatedAt: base}))
	require.NoError(t, store.CreateProspect(ctx, &models.Prospect{CompanyName: "new", CreatedAt: base.Add(time.Hour)}))

	list, err := store.ListProspects(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "new", list[0].CompanyName)
	assert.Equal(t, "old", list[1].CompanyName)
}

func TestStoreUpdates(t *testing.T) {
	store := NewStore(NewTestClient(t))
	ctx := context.Background()

	p := &models.Prospect{CompanyName: "Beta"}
	require.NoError(t, store.CreateProspect(ctx, p))
	created := p.CreatedAt

	at := time.Date(2024, 2, 2, 10, 0, 0, 0, time.UTC)
	require.NoError(t, store.UpdateStatus(ctx, p.ID, models.StatusNegotiation, at))
	require.NoError(t, store.UpdatePriority(ctx, p.ID, models.PriorityUrgent))

	got, err := store.GetProspect(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusNegotiation, got.Status)
	assert.Equal(t, models.PriorityUrgent, got.Priority)
	require.NotNil(t, got.LastContactAt)
	assert.True(t, at.Equal(*got.LastContactAt))

	got.City = "Recife"
	got.CreatedAt = time.Time{}
	require.NoError(t, store.UpdateProspect(ctx, got))
	again, err := store.GetProspect(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Recife", again.City)
	assert.True(t, created.Equal(again.CreatedAt))

	assert.ErrorIs(t, store.UpdateStatus(ctx, p.ID, "bogus", at), db.ErrInvalidStatus)
	assert.ErrorIs(t, store.UpdatePriority(ctx, "missing", models.PriorityLow), db.ErrProspectNotFound)
}

func TestStoreInteractions(t *testing.T) {
	store := NewStore(NewTestClient(t))
	ctx := context.Background()

	p := &models.Prospect{CompanyName: "Gamma"}
	require.NoError(t, store.CreateProspect(ctx, p))

	base := time.Date(2024, 3, 3, 9, 0, 0, 0, time.UTC)
	for i, title := range []string{"first", "second"} {
		require.NoError(t, store.AddInteraction(ctx, &models.Interaction{
			ProspectID: p.ID,
			Type:       models.InteractionCall,
			Title:      title,
			CreatedAt:  base.Add(time.Duration(i) * time.Hour),
		}))
	}

	list, err := store.ListInteractions(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "second", list[0].Title)

	got, err := store.GetProspect(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastContactAt)
	assert.True(t, base.Add(time.Hour).Equal(*got.LastContactAt))

	err = store.AddInteraction(ctx, &models.Interaction{ProspectID: "missing", Type: models.InteractionNote, Title: "x"})
	assert.ErrorIs(t, err, db.ErrProspectNotFound)
}

func TestStoreDeleteRemovesInteractions(t *testing.T) {
	client := NewTestClient(t)
	store := NewStore(client)
	ctx := context.Background()

	p := &models.Prospect{CompanyName: "Delta"}
	require.NoError(t, store.CreateProspect(ctx, p))
	require.NoError(t, store.AddInteraction(ctx, &models.Interaction{ProspectID: p.ID, Type: models.InteractionEmail, Title: "hi"}))

	require.NoError(t, store.DeleteProspect(ctx, p.ID))

	keys, err := client.Keys()
	require.NoError(t, err)
	assert.Empty(t, keys)
	assert.ErrorIs(t, store.DeleteProspect(ctx, p.ID), db.ErrProspectNotFound)
}

func TestSyncCommandsWithTestClient(t *testing.T) {
	client := NewTestClient(t)
	store := NewStore(client)
	require.NoError(t, store.CreateProspect(context.Background(), &models.Prospect{CompanyName: "Eta"}))

	var out bytes.Buffer
	require.NoError(t, SyncStatusCommand(&out, client, nil))
	assert.Contains(t, out.String(), "Prospects: 1")

	out.Reset()
	require.NoError(t, SyncNowCommand(&out, client, nil))
	assert.Contains(t, out.String(), "Synced")

	out.Reset()
	require.NoError(t, SyncWipeCommand(&out, client, nil))
	assert.Contains(t, out.String(), "--confirm")

	require.NoError(t, SyncWipeCommand(&out, client, []string{"--confirm"}))
	keys, err := client.Keys()
	require.NoError(t, err)
	assert.Empty(t, keys)
}
