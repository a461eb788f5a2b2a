// ABOUTME: Tests for prospect MCP tool handlers
// ABOUTME: Validates tool input/output and error handling against a temp SQLite store
package handlers

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/harperreed/prospect/db"
	"github.com/harperreed/prospect/engine"
	"github.com/harperreed/prospect/models"
	"github.com/harperreed/prospect/session"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingInteractions struct {
	*db.SQLiteStore
}

func (f failingInteractions) AddInteraction(context.Context, *models.Interaction) error {
	return errors.New("disk full")
}

func setupTestSession(t *testing.T, wrap func(*db.SQLiteStore) db.Store) *session.Session {
	t.Helper()

	store, err := db.Open(filepath.Join(t.TempDir(), "prospect.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	seed := []models.Prospect{
		{ID: "p1", CompanyName: "Zeta Odonto", Profession: "Dentista", City: "São Paulo", State: "SP", Rating: "4.5", Services: "Implante, Clareamento", Whatsapp: "11999"},
		{ID: "p2", CompanyName: "Alpha Advocacia", Profession: "Advogado", City: "Curitiba", State: "PR", Rating: "5", Email: "contato@alpha.adv.br", Status: models.StatusQualified},
		{ID: "p3", CompanyName: "Beta Clínica", Profession: "Dentista", City: "Curitiba", State: "PR", Services: "Implante"},
	}
	for i := range seed {
		require.NoError(t, store.CreateProspect(ctx, &seed[i]))
	}

	var backing db.Store = store
	if wrap != nil {
		backing = wrap(store)
	}
	s := session.New(backing, session.WithLogger(log.New(io.Discard)))
	require.NoError(t, s.Refresh(ctx))
	return s
}

func TestAddProspectHandler(t *testing.T) {
	h := NewProspectHandlers(setupTestSession(t, nil))

	_, out, err := h.AddProspect(context.Background(), nil, AddProspectInput{
		CompanyName: "Gama Contabilidade",
		City:        "Recife",
		Services:    "IRPF, Folha",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, out.ID)
	assert.Equal(t, models.StatusProspect, out.Status)
	assert.Equal(t, models.PriorityMedium, out.Priority)
	assert.Equal(t, []string{"IRPF", "Folha"}, out.Tags)

	_, _, err = h.AddProspect(context.Background(), nil, AddProspectInput{CompanyName: " "})
	assert.Error(t, err)

	_, _, err = h.AddProspect(context.Background(), nil, AddProspectInput{CompanyName: "X", Status: "won"})
	assert.ErrorIs(t, err, db.ErrInvalidStatus)
}

func TestFindProspectsHandler(t *testing.T) {
	h := NewProspectHandlers(setupTestSession(t, nil))
	ctx := context.Background()

	_, out, err := h.FindProspects(ctx, nil, FindProspectsInput{})
	require.NoError(t, err)
	assert.Equal(t, 3, out.Total)
	assert.Equal(t, 3, out.Matched)
	require.Len(t, out.Prospects, 3)
	assert.Equal(t, "p2", out.Prospects[0].ID)
	assert.Equal(t, "company_name asc", out.Sort)

	_, out, err = h.FindProspects(ctx, nil, FindProspectsInput{
		Professions: []string{"Dentista"},
		Cities:      []string{"Curitiba"},
	})
	require.NoError(t, err)
	require.Len(t, out.Prospects, 1)
	assert.Equal(t, "p3", out.Prospects[0].ID)
	assert.Equal(t, 2, out.ActiveFilters)

	_, out, err = h.FindProspects(ctx, nil, FindProspectsInput{Query: "ALPHA"})
	require.NoError(t, err)
	require.Len(t, out.Prospects, 1)

	_, out, err = h.FindProspects(ctx, nil, FindProspectsInput{Sort: "rating", Desc: true, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, out.Matched)
	require.Len(t, out.Prospects, 2)
	assert.Equal(t, "p2", out.Prospects[0].ID)
	assert.Equal(t, "p1", out.Prospects[1].ID)
}

func TestFindProspectsScreenRestrictsFilters(t *testing.T) {
	h := NewProspectHandlers(setupTestSession(t, nil))

	_, out, err := h.FindProspects(context.Background(), nil, FindProspectsInput{
		Screen:   "list",
		Statuses: []string{models.StatusQualified},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, out.Matched)
	assert.Zero(t, out.ActiveFilters)

	_, out, err = h.FindProspects(context.Background(), nil, FindProspectsInput{
		Screen: "modern",
		Sort:   "rating",
		Desc:   true,
	})
	require.NoError(t, err)
	assert.Equal(t, "company_name desc", out.Sort)
	require.Len(t, out.Prospects, 3)
	assert.Equal(t, "p1", out.Prospects[0].ID)

	_, _, err = h.FindProspects(context.Background(), nil, FindProspectsInput{Screen: "kanban"})
	assert.Error(t, err)

	_, _, err = h.FindProspects(context.Background(), nil, FindProspectsInput{Sort: "revenue"})
	assert.Error(t, err)

	_, _, err = h.FindProspects(context.Background(), nil, FindProspectsInput{Limit: -1})
	assert.Error(t, err)
}

func TestProspectFacetsHandler(t *testing.T) {
	h := NewProspectHandlers(setupTestSession(t, nil))

	_, facets, err := h.ProspectFacets(context.Background(), nil, FacetsInput{})
	require.NoError(t, err)

	require.Len(t, facets.Professions, 2)
	assert.Equal(t, engine.FacetOption{Value: "Advogado", Label: "Advogado", Count: 1}, facets.Professions[0])
	require.NotEmpty(t, facets.Tags)
	assert.Equal(t, "Implante", facets.Tags[0].Value)
	assert.Equal(t, 2, facets.Tags[0].Count)
	assert.Equal(t, "5 estrelas", facets.Ratings[0].Label)
}

func TestStatusAndPriorityHandlers(t *testing.T) {
	h := NewProspectHandlers(setupTestSession(t, nil))
	ctx := context.Background()

	_, out, err := h.UpdateProspectStatus(ctx, nil, UpdateStatusInput{ID: "p1", Status: models.StatusNegotiation})
	require.NoError(t, err)
	assert.Equal(t, models.StatusNegotiation, out.Status)
	assert.NotNil(t, out.LastContactAt)

	_, out, err = h.UpdateProspectPriority(ctx, nil, UpdatePriorityInput{ID: "p1", Priority: models.PriorityHigh})
	require.NoError(t, err)
	assert.Equal(t, models.PriorityHigh, out.Priority)

	_, _, err = h.UpdateProspectStatus(ctx, nil, UpdateStatusInput{ID: "nope", Status: models.StatusLead})
	assert.ErrorIs(t, err, session.ErrUnknownProspect)

	_, _, err = h.UpdateProspectPriority(ctx, nil, UpdatePriorityInput{ID: "p1", Priority: "soon"})
	assert.ErrorIs(t, err, db.ErrInvalidPriority)
}

func TestLogInteractionAndGetProspect(t *testing.T) {
	h := NewProspectHandlers(setupTestSession(t, nil))
	ctx := context.Background()

	_, logged, err := h.LogProspectInteraction(ctx, nil, LogInteractionInput{
		ProspectID: "p3",
		Type:       models.InteractionWhatsapp,
		Title:      "Enviou tabela de preços",
	})
	require.NoError(t, err)
	assert.Empty(t, logged.Warning)
	assert.Equal(t, models.InteractionCompleted, logged.Interaction.Status)

	_, got, err := h.GetProspect(ctx, nil, GetProspectInput{ID: "p3"})
	require.NoError(t, err)
	assert.Equal(t, "Beta Clínica", got.Prospect.CompanyName)
	require.Len(t, got.Interactions, 1)
	assert.Equal(t, logged.Interaction.ID, got.Interactions[0].ID)
	assert.NotNil(t, got.Prospect.LastContactAt)

	_, _, err = h.LogProspectInteraction(ctx, nil, LogInteractionInput{ProspectID: "p3", Type: "fax", Title: "x"})
	assert.ErrorIs(t, err, db.ErrInvalidInteraction)

	_, _, err = h.LogProspectInteraction(ctx, nil, LogInteractionInput{ProspectID: "p3", Type: "call", Title: "x", ScheduledAt: "tomorrow"})
	assert.Error(t, err)

	_, _, err = h.GetProspect(ctx, nil, GetProspectInput{})
	assert.Error(t, err)
}

func TestLogInteractionReportsUnsynced(t *testing.T) {
	s := setupTestSession(t, func(store *db.SQLiteStore) db.Store { return failingInteractions{store} })
	h := NewProspectHandlers(s)
	ctx := context.Background()

	_, out, err := h.LogProspectInteraction(ctx, nil, LogInteractionInput{
		ProspectID: "p1",
		Type:       models.InteractionCall,
		Title:      "Sem resposta",
	})
	require.NoError(t, err)
	assert.True(t, out.Interaction.Unsynced)
	assert.Contains(t, out.Warning, "disk full")

	_, got, err := h.GetProspect(ctx, nil, GetProspectInput{ID: "p1"})
	require.NoError(t, err)
	require.Len(t, got.Interactions, 1)
	assert.True(t, got.Interactions[0].Unsynced)
}

func TestReadResource(t *testing.T) {
	h := NewResourceHandlers(setupTestSession(t, nil))
	ctx := context.Background()

	read := func(uri string) (string, error) {
		res, err := h.ReadResource(ctx, &mcp.ReadResourceRequest{Params: &mcp.ReadResourceParams{URI: uri}})
		if err != nil {
			return "", err
		}
		return res.Contents[0].Text, nil
	}

	text, err := read("prospect://prospects")
	require.NoError(t, err)
	assert.Contains(t, text, "Zeta Odonto")

	text, err = read("prospect://prospects/p2")
	require.NoError(t, err)
	assert.Contains(t, text, "Alpha Advocacia")

	text, err = read("prospect://pipeline")
	require.NoError(t, err)
	assert.Contains(t, text, `"status": "qualified"`)

	text, err = read("prospect://facets")
	require.NoError(t, err)
	assert.Contains(t, text, "Clareamento")

	_, err = read("prospect://prospects/missing")
	assert.Error(t, err)
	_, err = read("crm://contacts")
	assert.Error(t, err)
	_, err = read("prospect://deals")
	assert.Error(t, err)
}

func TestGetPrompt(t *testing.T) {
	h := NewPromptHandlers(setupTestSession(t, nil))
	ctx := context.Background()

	get := func(name string, args map[string]string) (string, error) {
		res, err := h.GetPrompt(ctx, &mcp.GetPromptRequest{Params: &mcp.GetPromptParams{Name: name, Arguments: args}})
		if err != nil {
			return "", err
		}
		return res.Messages[0].Content.(*mcp.TextContent).Text, nil
	}

	text, err := get("prospect-summary", map[string]string{"prospect_id": "p1"})
	require.NoError(t, err)
	assert.Contains(t, text, "Zeta Odonto")
	assert.Contains(t, text, "Implante, Clareamento")

	text, err = get("pipeline-review", nil)
	require.NoError(t, err)
	assert.Contains(t, text, "Qualificado: 1")

	text, err = get("follow-up-suggestions", map[string]string{"days": "7"})
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(text, "last contact: never"))

	_, err = get("prospect-summary", nil)
	assert.Error(t, err)
	_, err = get("follow-up-suggestions", map[string]string{"days": "-1"})
	assert.Error(t, err)
	_, err = get("deal-analysis", nil)
	assert.Error(t, err)
}

func TestNewServerRegisters(t *testing.T) {
	assert.NotNil(t, NewServer(setupTestSession(t, nil), "test"))
}
