// ABOUTME: Tests for dashboard statistics and graph generation
// ABOUTME: Uses in-memory prospects with fixed timestamps
package viz

import (
	"testing"
	"time"

	"github.com/harperreed/prospect/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 9, 1, 12, 0, 0, 0, time.UTC)

func daysAgo(n int) *time.Time {
	t := testNow.AddDate(0, 0, -n)
	return &t
}

func sampleProspects() []models.Prospect {
	return []models.Prospect{
		{ID: "a", CompanyName: "Clínica Sorriso", Profession: "Dentista", City: "São Paulo", Whatsapp: "11999", Status: models.StatusQualified, DealValue: 500000, LastContactAt: daysAgo(2)},
		{ID: "b", CompanyName: "Arquitetura Viva", Profession: "Arquiteto", City: "Curitiba", Email: "a@viva.com", LastContactAt: daysAgo(45)},
		{ID: "c", CompanyName: "Odonto Mais", Profession: "Dentista", City: "São Paulo", Website: "odonto.com", NextFollowUp: daysAgo(1)},
		{ID: "d", CompanyName: "Fechado Ltda", Profession: "Advogado", City: "Recife", Status: models.StatusLost},
	}
}

func TestGenerateDashboardStats(t *testing.T) {
	stats := GenerateDashboardStats(sampleProspects(), testNow)

	assert.Equal(t, 4, stats.TotalProspects)
	assert.Equal(t, 1, stats.WithWhatsapp)
	assert.Equal(t, 1, stats.WithEmail)
	assert.Equal(t, 1, stats.WithWebsite)

	assert.Equal(t, 2, stats.PipelineByStatus[models.StatusProspect].Count)
	assert.Equal(t, int64(500000), stats.PipelineByStatus[models.StatusQualified].Value)
	assert.Equal(t, 4, stats.ByPriority[models.PriorityMedium])

	require.NotEmpty(t, stats.TopProfessions)
	assert.Equal(t, NamedCount{Name: "Dentista", Count: 2}, stats.TopProfessions[0])

	require.Len(t, stats.StaleProspects, 1)
	assert.Equal(t, "b", stats.StaleProspects[0].ID)
	assert.Equal(t, 45, stats.StaleProspects[0].DaysSince)

	// Lost prospects are not chased
	require.Len(t, stats.NeverContacted, 1)
	assert.Equal(t, "c", stats.NeverContacted[0].ID)

	require.Len(t, stats.FollowUpsDue, 1)
	assert.Equal(t, "c", stats.FollowUpsDue[0].ID)
}

func TestRenderDashboard(t *testing.T) {
	out := RenderDashboard(GenerateDashboardStats(sampleProspects(), testNow))

	assert.Contains(t, out, "PIPELINE OVERVIEW")
	assert.Contains(t, out, "Qualificado")
	assert.Contains(t, out, "R$5K")
	assert.Contains(t, out, "4 prospects")
	assert.Contains(t, out, "Dentista")
	assert.Contains(t, out, "1 follow-ups due")
}

func TestRenderDashboardEmpty(t *testing.T) {
	out := RenderDashboard(GenerateDashboardStats(nil, testNow))

	assert.Contains(t, out, "(empty)")
	assert.NotContains(t, out, "NEEDS ATTENTION")
}

func TestGeneratePipelineGraph(t *testing.T) {
	gen := NewGraphGenerator(sampleProspects())

	dot, err := gen.GeneratePipelineGraph(1)
	require.NoError(t, err)

	assert.Contains(t, dot, "digraph")
	assert.Contains(t, dot, "status_prospect")
	assert.Contains(t, dot, "Qualificado")
	assert.Contains(t, dot, "+1 more")
}

func TestGenerateMarketGraph(t *testing.T) {
	gen := NewGraphGenerator(sampleProspects())

	dot, err := gen.GenerateMarketGraph()
	require.NoError(t, err)

	assert.Contains(t, dot, "profession_Dentista")
	assert.Contains(t, dot, "Curitiba")
}

func TestPipelineSVG(t *testing.T) {
	svg, err := NewGraphGenerator(sampleProspects()).PipelineSVG(-1)
	require.NoError(t, err)
	assert.Contains(t, string(svg), "<svg")
}
