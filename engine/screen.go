// ABOUTME: Declarative screen capabilities for the prospect list views
// ABOUTME: Each screen names the facets and sort fields it exposes instead of reimplementing filtering
package engine

import (
	"fmt"
	"slices"
	"strings"
)

// Facet names a filterable dimension a screen can expose.
type Facet string

const (
	FacetSearch     Facet = "search"
	FacetProfession Facet = "profession"
	FacetCity       Facet = "city"
	FacetState      Facet = "state"
	FacetRating     Facet = "rating"
	FacetTag        Facet = "tag"
	FacetStatus     Facet = "status"
	FacetPriority   Facet = "priority"
	FacetContact    Facet = "contact_method"
	FacetYearsRange Facet = "years_range"
)

// Screen describes what one list view lets the user filter and sort by.
type Screen struct {
	Name        string      `json:"name"`
	Title       string      `json:"title"`
	Facets      []Facet     `json:"facets"`
	SortFields  []SortField `json:"sort_fields"`
	DefaultSort Sort        `json:"default_sort"`
}

var (
	// ScreenGrid is the card grid with the full facet panel.
	ScreenGrid = Screen{
		Name:  "grid",
		Title: "Prospecção Ativa",
		Facets: []Facet{
			FacetSearch, FacetProfession, FacetCity, FacetRating, FacetTag,
		},
		SortFields: []SortField{
			SortName, SortContactName, SortRating, SortYearsExperience, SortCity, SortProfession,
		},
		DefaultSort: DefaultSort,
	}

	// ScreenList is the compact list with search only.
	ScreenList = Screen{
		Name:   "list",
		Title:  "Clientes",
		Facets: []Facet{FacetSearch},
		SortFields: []SortField{
			SortName, SortContactName, SortProfession, SortCity, SortRating, SortYearsExperience,
		},
		DefaultSort: DefaultSort,
	}

	// ScreenModern filters by contact method, profession, and city.
	ScreenModern = Screen{
		Name:   "modern",
		Title:  "Prospecção",
		Facets: []Facet{FacetSearch, FacetContact, FacetProfession, FacetCity},
		SortFields: []SortField{
			SortName, SortCity, SortProfession, SortCreatedAt,
		},
		DefaultSort: DefaultSort,
	}

	// ScreenCRM adds pipeline status and priority.
	ScreenCRM = Screen{
		Name:  "crm",
		Title: "CRM",
		Facets: []Facet{
			FacetSearch, FacetProfession, FacetCity, FacetState, FacetStatus,
			FacetPriority, FacetContact, FacetYearsRange, FacetRating, FacetTag,
		},
		SortFields:  SortFields,
		DefaultSort: DefaultSort,
	}
)

// Screens lists the built-in screens.
var Screens = []Screen{ScreenGrid, ScreenList, ScreenModern, ScreenCRM}

// LookupScreen finds a built-in screen by name.
func LookupScreen(name string) (Screen, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, s := range Screens {
		if s.Name == name {
			return s, nil
		}
	}
	return Screen{}, fmt.Errorf("unknown screen: %s", name)
}

// Exposes reports whether the screen offers facet f.
func (s Screen) Exposes(f Facet) bool {
	return slices.Contains(s.Facets, f)
}

// Allows reports whether the screen can sort by field.
func (s Screen) Allows(field SortField) bool {
	return slices.Contains(s.SortFields, field)
}

// Restrict drops every constraint the screen does not expose.
func (s Screen) Restrict(q Query) Query {
	out := Query{}
	if s.Exposes(FacetSearch) {
		out.Search = q.Search
	}
	if s.Exposes(FacetProfession) {
		out.Professions = q.Professions
	}
	if s.Exposes(FacetCity) {
		out.Cities = q.Cities
	}
	if s.Exposes(FacetState) {
		out.States = q.States
	}
	if s.Exposes(FacetRating) {
		out.Ratings = q.Ratings
	}
	if s.Exposes(FacetTag) {
		out.Tags = q.Tags
	}
	if s.Exposes(FacetStatus) {
		out.Statuses = q.Statuses
	}
	if s.Exposes(FacetPriority) {
		out.Priorities = q.Priorities
	}
	if s.Exposes(FacetContact) {
		out.HasWhatsapp = q.HasWhatsapp
		out.HasEmail = q.HasEmail
		out.HasWebsite = q.HasWebsite
		out.HasPhone = q.HasPhone
	}
	if s.Exposes(FacetYearsRange) {
		out.MinYears = q.MinYears
		out.MaxYears = q.MaxYears
	}
	return out
}

// SortOrDefault returns sort when the screen allows its field. Otherwise the
// screen's default field is used in the requested direction.
func (s Screen) SortOrDefault(sort Sort) Sort {
	if sort.Field == "" && sort.Direction == "" {
		return s.DefaultSort
	}
	sort = sort.orDefault()
	if s.Allows(sort.Field) {
		return sort
	}
	return Sort{Field: s.DefaultSort.Field, Direction: sort.Direction}
}
