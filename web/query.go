// ABOUTME: URL query parameter parsing for the web UI and JSON API
// ABOUTME: Maps repeatable parameters onto engine queries, sorts, and screens
package web

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/harperreed/prospect/engine"
	"github.com/harperreed/prospect/models"
)

// listParams is a parsed list request.
type listParams struct {
	Screen engine.Screen
	Query  engine.Query
	Sort   engine.Sort
	Limit  int
}

const (
	defaultLimit = 100
	maxLimit     = 1000
)

// values returns every non-empty value of key. Facet values may contain
// commas, so each parameter is one value.
func values(v url.Values, key string) []string {
	var out []string
	for _, raw := range v[key] {
		if raw = strings.TrimSpace(raw); raw != "" {
			out = append(out, raw)
		}
	}
	return out
}

// tagValues is like values but also splits on commas, which never occur
// inside a tag.
func tagValues(v url.Values, key string) []string {
	var out []string
	for _, raw := range values(v, key) {
		out = append(out, models.SplitServices(raw)...)
	}
	return out
}

func triState(v url.Values, key string) (*bool, error) {
	switch strings.ToLower(strings.TrimSpace(v.Get(key))) {
	case "":
		return nil, nil
	case "yes", "sim", "true", "1":
		return engine.Bool(true), nil
	case "no", "nao", "não", "false", "0":
		return engine.Bool(false), nil
	default:
		return nil, fmt.Errorf("%s: want yes or no", key)
	}
}

func optionalInt(v url.Values, key string) (*int, error) {
	raw := strings.TrimSpace(v.Get(key))
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: want a whole number", key)
	}
	return &n, nil
}

// parseListParams reads the list parameters, restricting the query to what
// the chosen screen exposes.
func parseListParams(v url.Values, defaultScreen string) (listParams, error) {
	name := v.Get("screen")
	if name == "" {
		name = defaultScreen
	}
	screen, err := engine.LookupScreen(name)
	if err != nil {
		return listParams{}, err
	}

	q := engine.Query{
		Search:      v.Get("q"),
		Professions: values(v, "profession"),
		Cities:      values(v, "city"),
		States:      values(v, "state"),
		Ratings:     values(v, "rating"),
		Tags:        tagValues(v, "tag"),
		Statuses:    values(v, "status"),
		Priorities:  values(v, "priority"),
	}
	for key, dst := range map[string]**bool{
		"whatsapp": &q.HasWhatsapp,
		"email":    &q.HasEmail,
		"website":  &q.HasWebsite,
		"phone":    &q.HasPhone,
	} {
		if *dst, err = triState(v, key); err != nil {
			return listParams{}, err
		}
	}
	if q.MinYears, err = optionalInt(v, "min_years"); err != nil {
		return listParams{}, err
	}
	if q.MaxYears, err = optionalInt(v, "max_years"); err != nil {
		return listParams{}, err
	}

	var sort engine.Sort
	if raw := v.Get("sort"); raw != "" {
		if sort.Field, err = engine.ParseSortField(raw); err != nil {
			return listParams{}, err
		}
	}
	if raw := v.Get("dir"); raw != "" {
		if sort.Direction, err = engine.ParseDirection(raw); err != nil {
			return listParams{}, err
		}
	}
	sort = screen.SortOrDefault(sort)

	limit := defaultLimit
	if l, err := optionalInt(v, "limit"); err != nil {
		return listParams{}, err
	} else if l != nil && *l > 0 {
		limit = min(*l, maxLimit)
	}

	return listParams{
		Screen: screen,
		Query:  screen.Restrict(q.Normalize()),
		Sort:   sort,
		Limit:  limit,
	}, nil
}

// sortURL returns the current URL with the sort switched to field, flipping
// the direction when it is already the active field.
func sortURL(v url.Values, current engine.Sort, field engine.SortField) string {
	next := url.Values{}
	for k, vals := range v {
		next[k] = vals
	}
	dir := engine.Asc
	if current.Field == field && current.Direction == engine.Asc {
		dir = engine.Desc
	}
	next.Set("sort", string(field))
	next.Set("dir", string(dir))
	return "/prospects?" + next.Encode()
}
