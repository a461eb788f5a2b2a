// ABOUTME: Tests for screen capability lists and query helpers
// ABOUTME: Verifies Restrict, sort fallbacks, parsing, and normalization
package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScreenRestrictDropsHiddenFacets(t *testing.T) {
	q := Query{
		Search:      "acme",
		Professions: []string{"Dentist"},
		Statuses:    []string{"lead"},
		HasWhatsapp: Bool(true),
		MinYears:    Int(3),
	}

	list := ScreenList.Restrict(q)
	assert.Equal(t, Query{Search: "acme"}, list)

	modern := ScreenModern.Restrict(q)
	assert.Equal(t, "acme", modern.Search)
	assert.Equal(t, []string{"Dentist"}, modern.Professions)
	assert.Nil(t, modern.Statuses)
	require.NotNil(t, modern.HasWhatsapp)
	assert.True(t, *modern.HasWhatsapp)
	assert.Nil(t, modern.MinYears)

	assert.Equal(t, q, ScreenCRM.Restrict(q))
}

func TestScreenSortOrDefault(t *testing.T) {
	created := Sort{Field: SortCreatedAt, Direction: Desc}

	assert.Equal(t, created, ScreenModern.SortOrDefault(created))
	assert.Equal(t, Sort{Field: SortName, Direction: Desc}, ScreenGrid.SortOrDefault(created))
	assert.Equal(t, DefaultSort, ScreenGrid.SortOrDefault(Sort{}))
	assert.Equal(t, Sort{Field: SortName, Direction: Desc}, ScreenGrid.SortOrDefault(Sort{Direction: Desc}))
}

func TestLookupScreen(t *testing.T) {
	s, err := LookupScreen(" CRM ")
	require.NoError(t, err)
	assert.Equal(t, "crm", s.Name)

	_, err = LookupScreen("kanban")
	assert.Error(t, err)
}

func TestParseSortField(t *testing.T) {
	tests := map[string]SortField{
		"name":             SortName,
		"company_name":     SortName,
		"contact_name":     SortContactName,
		"Rating":           SortRating,
		"years_experience": SortYearsExperience,
		"created":          SortCreatedAt,
		"city":             SortCity,
		"profession":       SortProfession,
	}
	for in, want := range tests {
		got, err := ParseSortField(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseSortField("revenue")
	assert.Error(t, err)
}

func TestParseDirection(t *testing.T) {
	d, err := ParseDirection("")
	require.NoError(t, err)
	assert.Equal(t, Asc, d)

	d, err = ParseDirection("DESC")
	require.NoError(t, err)
	assert.Equal(t, Desc, d)

	_, err = ParseDirection("sideways")
	assert.Error(t, err)
}

func TestSortReversed(t *testing.T) {
	assert.Equal(t, Sort{Field: SortName, Direction: Desc}, Sort{}.Reversed())
	assert.Equal(t, Sort{Field: SortCity, Direction: Asc}, Sort{Field: SortCity, Direction: Desc}.Reversed())
}

func TestQueryNormalizeAndCounts(t *testing.T) {
	q := Query{
		Search:      "  acme ",
		Professions: []string{" Dentist", "Dentist", ""},
		Cities:      []string{"  "},
		HasEmail:    Bool(false),
	}

	n := q.Normalize()

	assert.Equal(t, "acme", n.Search)
	assert.Equal(t, []string{"Dentist"}, n.Professions)
	assert.Nil(t, n.Cities)
	assert.Equal(t, 3, n.ActiveCount())
	assert.False(t, n.IsEmpty())
	assert.True(t, Query{}.IsEmpty())
	assert.True(t, Query{Cities: []string{}}.IsEmpty())
}
