// ABOUTME: Facet option derivation for the prospect filter panel
// ABOUTME: Counts distinct profession, city, state, rating, tag, status, and priority values
package engine

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/harperreed/prospect/models"
	"golang.org/x/text/collate"
)

// FacetOption is one selectable value in a facet with its occurrence count.
type FacetOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Facets holds the option lists for every facet dimension.
type Facets struct {
	Professions []FacetOption `json:"professions"`
	Cities      []FacetOption `json:"cities"`
	States      []FacetOption `json:"states"`
	Ratings     []FacetOption `json:"ratings"`
	Tags        []FacetOption `json:"tags"`
	Statuses    []FacetOption `json:"statuses"`
	Priorities  []FacetOption `json:"priorities"`
}

// counter counts values while remembering first-seen order.
type counter struct {
	order  []string
	counts map[string]int
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) add(v string) {
	if v == "" {
		return
	}
	if _, ok := c.counts[v]; !ok {
		c.order = append(c.order, v)
	}
	c.counts[v]++
}

func (c *counter) options(label func(string) string) []FacetOption {
	opts := make([]FacetOption, 0, len(c.order))
	for _, v := range c.order {
		opts = append(opts, FacetOption{Value: v, Label: label(v), Count: c.counts[v]})
	}
	return opts
}

func plainLabel(v string) string { return v }

func ratingLabel(v string) string { return fmt.Sprintf("%s estrelas", v) }

// DeriveFacets aggregates facet options, capping tags at the engine's limit.
func (e *Engine) DeriveFacets(records []models.Prospect) Facets {
	return e.deriveFacets(records, e.tagLimit)
}

// DeriveFacetsAll aggregates facet options without capping tags.
func (e *Engine) DeriveFacetsAll(records []models.Prospect) Facets {
	return e.deriveFacets(records, 0)
}

func (e *Engine) deriveFacets(records []models.Prospect, tagLimit int) Facets {
	professions := newCounter()
	cities := newCounter()
	states := newCounter()
	ratings := newCounter()
	tags := newCounter()
	statuses := newCounter()
	priorities := newCounter()

	for i := range records {
		p := &records[i]
		professions.add(p.Profession)
		cities.add(p.City)
		states.add(p.State)
		ratings.add(p.Rating)
		for _, tag := range p.Tags() {
			tags.add(tag)
		}
		statuses.add(p.EffectiveStatus())
		priorities.add(p.EffectivePriority())
	}

	col := e.collator()
	f := Facets{
		Professions: byLabel(col, professions.options(plainLabel)),
		Cities:      byLabel(col, cities.options(plainLabel)),
		States:      byLabel(col, states.options(plainLabel)),
		Ratings:     byNumericDesc(ratings.options(ratingLabel)),
		Tags:        byCountDesc(tags.options(plainLabel)),
		Statuses:    inOrder(statuses.options(models.StatusLabel), models.Statuses),
		Priorities:  inOrder(priorities.options(models.PriorityLabel), models.Priorities),
	}

	if tagLimit > 0 && len(f.Tags) > tagLimit {
		f.Tags = f.Tags[:tagLimit]
	}
	return f
}

func byLabel(col *collate.Collator, opts []FacetOption) []FacetOption {
	slices.SortStableFunc(opts, func(a, b FacetOption) int {
		return col.CompareString(a.Label, b.Label)
	})
	return opts
}

// byNumericDesc orders ratings highest first; unparseable ratings go last.
func byNumericDesc(opts []FacetOption) []FacetOption {
	slices.SortStableFunc(opts, func(a, b FacetOption) int {
		av, aErr := strconv.ParseFloat(a.Value, 64)
		bv, bErr := strconv.ParseFloat(b.Value, 64)
		if c, done := missingLast(aErr == nil, bErr == nil); done {
			return c
		}
		switch {
		case av > bv:
			return -1
		case av < bv:
			return 1
		}
		return 0
	})
	return opts
}

// byCountDesc orders by count, keeping first-seen order among ties.
func byCountDesc(opts []FacetOption) []FacetOption {
	slices.SortStableFunc(opts, func(a, b FacetOption) int {
		return b.Count - a.Count
	})
	return opts
}

// inOrder orders known values by their position in order; unknown values
// follow in first-seen order.
func inOrder(opts []FacetOption, order []string) []FacetOption {
	rank := func(v string) int {
		if i := slices.Index(order, v); i >= 0 {
			return i
		}
		return len(order)
	}
	slices.SortStableFunc(opts, func(a, b FacetOption) int {
		return rank(a.Value) - rank(b.Value)
	})
	return opts
}
