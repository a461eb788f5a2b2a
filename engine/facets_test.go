// ABOUTME: Tests for facet option derivation
// ABOUTME: Verifies counts, ordering rules, and the tag cap
package engine

import (
	"fmt"
	"testing"

	"github.com/harperreed/prospect/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func values(opts []FacetOption) []string {
	out := make([]string, len(opts))
	for i, o := range opts {
		out[i] = o.Value
	}
	return out
}

func TestDeriveFacetsCountsProfessions(t *testing.T) {
	records := []models.Prospect{
		{ID: "1", Profession: "B"},
		{ID: "2", Profession: "A"},
		{ID: "3", Profession: "A"},
		{ID: "4"},
	}

	f := DeriveFacets(records)

	require.Len(t, f.Professions, 2)
	assert.Equal(t, FacetOption{Value: "A", Label: "A", Count: 2}, f.Professions[0])
	assert.Equal(t, FacetOption{Value: "B", Label: "B", Count: 1}, f.Professions[1])
}

func TestDeriveFacetsCitiesAlphabetical(t *testing.T) {
	records := []models.Prospect{
		{City: "São Paulo"}, {City: "Curitiba"}, {City: "Rio de Janeiro"}, {City: "Curitiba"},
	}

	f := DeriveFacets(records)

	assert.Equal(t, []string{"Curitiba", "Rio de Janeiro", "São Paulo"}, values(f.Cities))
	assert.Equal(t, 2, f.Cities[0].Count)
}

func TestDeriveFacetsRatingsDescendingNumeric(t *testing.T) {
	records := []models.Prospect{
		{Rating: "4.5"}, {Rating: "10"}, {Rating: "3"}, {Rating: "n/a"}, {Rating: "4.5"},
	}

	f := DeriveFacets(records)

	assert.Equal(t, []string{"10", "4.5", "3", "n/a"}, values(f.Ratings))
	assert.Equal(t, "4.5 estrelas", f.Ratings[1].Label)
	assert.Equal(t, 2, f.Ratings[1].Count)
}

func TestDeriveFacetsTagsByCountWithCap(t *testing.T) {
	var records []models.Prospect
	for i := 0; i < 25; i++ {
		records = append(records, models.Prospect{Services: fmt.Sprintf("tag%02d", i)})
	}
	records = append(records,
		models.Prospect{Services: "Ads, Seo"},
		models.Prospect{Services: "Ads"},
	)

	f := DeriveFacets(records)

	require.Len(t, f.Tags, DefaultTagLimit)
	assert.Equal(t, FacetOption{Value: "Ads", Label: "Ads", Count: 2}, f.Tags[0])
	assert.Equal(t, "tag00", f.Tags[1].Value)

	all := New().DeriveFacetsAll(records)
	assert.Len(t, all.Tags, 27)
}

func TestDeriveFacetsCustomTagLimit(t *testing.T) {
	records := []models.Prospect{{Services: "a, b, c"}}

	f := New(WithTagLimit(2)).DeriveFacets(records)
	assert.Equal(t, []string{"a", "b"}, values(f.Tags))

	f = New(WithTagLimit(0)).DeriveFacets(records)
	assert.Len(t, f.Tags, 3)
}

func TestDeriveFacetsStatusesInPipelineOrder(t *testing.T) {
	records := []models.Prospect{
		{Status: models.StatusClient},
		{},
		{Status: models.StatusLead, Priority: models.PriorityUrgent},
	}

	f := DeriveFacets(records)

	assert.Equal(t, []string{models.StatusLead, models.StatusProspect, models.StatusClient}, values(f.Statuses))
	assert.Equal(t, "Prospecto", f.Statuses[1].Label)
	assert.Equal(t, []string{models.PriorityMedium, models.PriorityUrgent}, values(f.Priorities))
}

func TestDeriveFacetsEmpty(t *testing.T) {
	f := DeriveFacets(nil)

	assert.Empty(t, f.Professions)
	assert.Empty(t, f.Cities)
	assert.Empty(t, f.Ratings)
	assert.Empty(t, f.Tags)
}
