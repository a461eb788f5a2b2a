// ABOUTME: Query constraints for the prospect filter engine
// ABOUTME: Holds free-text search, facet selections, and tri-state contact filters
package engine

import (
	"strings"
)

// Query describes which prospects to include. The zero value matches
// everything.
type Query struct {
	Search string `json:"search,omitempty"`

	Professions []string `json:"professions,omitempty"`
	Cities      []string `json:"cities,omitempty"`
	States      []string `json:"states,omitempty"`
	Ratings     []string `json:"ratings,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Statuses    []string `json:"statuses,omitempty"`
	Priorities  []string `json:"priorities,omitempty"`

	// nil means no constraint, true requires a value, false requires absence.
	HasWhatsapp *bool `json:"has_whatsapp,omitempty"`
	HasEmail    *bool `json:"has_email,omitempty"`
	HasWebsite  *bool `json:"has_website,omitempty"`
	HasPhone    *bool `json:"has_phone,omitempty"`

	// Inclusive bounds on years of experience.
	MinYears *int `json:"min_years,omitempty"`
	MaxYears *int `json:"max_years,omitempty"`
}

// IsEmpty reports whether the query applies no constraint at all.
func (q Query) IsEmpty() bool {
	return q.ActiveCount() == 0
}

// ActiveCount returns the number of active constraints, counting the search
// box and each non-empty facet or tri-state filter once.
func (q Query) ActiveCount() int {
	count := 0
	if q.Search != "" {
		count++
	}
	for _, set := range [][]string{
		q.Professions, q.Cities, q.States, q.Ratings, q.Tags, q.Statuses, q.Priorities,
	} {
		if len(set) > 0 {
			count++
		}
	}
	for _, flag := range []*bool{q.HasWhatsapp, q.HasEmail, q.HasWebsite, q.HasPhone} {
		if flag != nil {
			count++
		}
	}
	if q.MinYears != nil || q.MaxYears != nil {
		count++
	}
	return count
}

// Normalize returns a copy with the search trimmed and each selection set
// trimmed, de-duplicated, and stripped of empty entries.
func (q Query) Normalize() Query {
	out := q
	out.Search = strings.TrimSpace(q.Search)
	out.Professions = cleanSet(q.Professions)
	out.Cities = cleanSet(q.Cities)
	out.States = cleanSet(q.States)
	out.Ratings = cleanSet(q.Ratings)
	out.Tags = cleanSet(q.Tags)
	out.Statuses = cleanSet(q.Statuses)
	out.Priorities = cleanSet(q.Priorities)
	return out
}

func cleanSet(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Bool returns a pointer to b, for building tri-state filters.
func Bool(b bool) *bool {
	return &b
}

// Int returns a pointer to n, for building year bounds.
func Int(n int) *int {
	return &n
}
