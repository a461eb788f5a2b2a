// ABOUTME: Filter, search, and sort pipeline over an in-memory prospect snapshot
// ABOUTME: Pure and deterministic; never mutates its input and never fails
package engine

import (
	"slices"
	"strconv"
	"strings"

	"github.com/harperreed/prospect/models"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// DefaultTagLimit caps the tag facet list.
const DefaultTagLimit = 20

// DefaultLocale is used for text collation when none is configured.
const DefaultLocale = "pt-BR"

// Engine filters, sorts, and aggregates prospect snapshots. An Engine holds
// only configuration and is safe for concurrent use.
type Engine struct {
	lang     language.Tag
	tagLimit int
}

// Option configures an Engine.
type Option func(*Engine)

// WithLocale sets the BCP 47 locale used for text comparison. Unparseable
// locales fall back to the root collation order.
func WithLocale(locale string) Option {
	return func(e *Engine) {
		e.lang = language.Make(locale)
	}
}

// WithTagLimit sets how many tags DeriveFacets returns. Zero or negative
// means no cap.
func WithTagLimit(n int) Option {
	return func(e *Engine) {
		e.tagLimit = n
	}
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		lang:     language.Make(DefaultLocale),
		tagLimit: DefaultTagLimit,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var defaultEngine = New()

// Apply filters and sorts records with the default engine.
func Apply(records []models.Prospect, q Query, s Sort) []models.Prospect {
	return defaultEngine.Apply(records, q, s)
}

// DeriveFacets aggregates facet options with the default engine.
func DeriveFacets(records []models.Prospect) Facets {
	return defaultEngine.DeriveFacets(records)
}

func (e *Engine) collator() *collate.Collator {
	return collate.New(e.lang, collate.Numeric)
}

// Apply returns the records matching q, stably ordered by s. The result is a
// new slice; records is left untouched.
func (e *Engine) Apply(records []models.Prospect, q Query, s Sort) []models.Prospect {
	m := newMatcher(q)

	out := make([]models.Prospect, 0, len(records))
	for i := range records {
		if m.match(&records[i]) {
			out = append(out, records[i])
		}
	}

	cmp := comparator(e.collator(), s)
	slices.SortStableFunc(out, func(a, b models.Prospect) int {
		return cmp(&a, &b)
	})

	return out
}

// matcher holds the query with its selection sets turned into lookups.
type matcher struct {
	q           Query
	search      string
	professions map[string]bool
	cities      map[string]bool
	states      map[string]bool
	ratings     map[string]bool
	tags        map[string]bool
	statuses    map[string]bool
	priorities  map[string]bool
}

func newMatcher(q Query) *matcher {
	return &matcher{
		q:           q,
		search:      strings.ToLower(q.Search),
		professions: toSet(q.Professions),
		cities:      toSet(q.Cities),
		states:      toSet(q.States),
		ratings:     toSet(q.Ratings),
		tags:        toSet(q.Tags),
		statuses:    toSet(q.Statuses),
		priorities:  toSet(q.Priorities),
	}
}

func toSet(values []string) map[string]bool {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}

func (m *matcher) match(p *models.Prospect) bool {
	if m.search != "" && !m.matchSearch(p) {
		return false
	}
	if !inSet(m.professions, p.Profession) ||
		!inSet(m.cities, p.City) ||
		!inSet(m.states, p.State) ||
		!inSet(m.ratings, p.Rating) {
		return false
	}
	if m.statuses != nil && !m.statuses[p.EffectiveStatus()] {
		return false
	}
	if m.priorities != nil && !m.priorities[p.EffectivePriority()] {
		return false
	}
	if m.tags != nil && !m.matchTags(p) {
		return false
	}
	if !triState(m.q.HasWhatsapp, p.Whatsapp) ||
		!triState(m.q.HasEmail, p.Email) ||
		!triState(m.q.HasWebsite, p.Website) ||
		!triState(m.q.HasPhone, p.Phone) {
		return false
	}
	return m.matchYears(p)
}

func (m *matcher) matchSearch(p *models.Prospect) bool {
	for _, field := range []string{
		p.CompanyName, p.ContactName, p.Profession, p.City, p.Specialization, p.Email,
	} {
		if field != "" && strings.Contains(strings.ToLower(field), m.search) {
			return true
		}
	}
	return false
}

// matchTags is exact-case after trimming; "Ads" does not match "ads".
func (m *matcher) matchTags(p *models.Prospect) bool {
	for _, tag := range p.Tags() {
		if m.tags[tag] {
			return true
		}
	}
	return false
}

func (m *matcher) matchYears(p *models.Prospect) bool {
	if m.q.MinYears == nil && m.q.MaxYears == nil {
		return true
	}
	years, ok := ParseYears(p.YearsExperience)
	if !ok {
		return false
	}
	if m.q.MinYears != nil && years < *m.q.MinYears {
		return false
	}
	if m.q.MaxYears != nil && years > *m.q.MaxYears {
		return false
	}
	return true
}

// inSet treats a nil set as no constraint and an empty value as no match.
func inSet(set map[string]bool, value string) bool {
	if set == nil {
		return true
	}
	return value != "" && set[value]
}

// triState treats a whitespace-only value as missing.
func triState(want *bool, value string) bool {
	if want == nil {
		return true
	}
	return *want == (strings.TrimSpace(value) != "")
}

// ParseYears reads the leading integer of a free-text years value such as
// "12" or "12 anos".
func ParseYears(s string) (int, bool) {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}
