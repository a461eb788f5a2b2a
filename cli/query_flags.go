// ABOUTME: Flag types that build engine queries from the command line
// ABOUTME: Repeatable facet flags, tri-state contact flags, and optional year bounds
package cli

import (
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/harperreed/prospect/engine"
	"github.com/harperreed/prospect/models"
)

// stringList collects a repeatable flag, one value per occurrence.
type stringList []string

func (s *stringList) String() string {
	return strings.Join(*s, "; ")
}

func (s *stringList) Set(v string) error {
	if v = strings.TrimSpace(v); v != "" {
		*s = append(*s, v)
	}
	return nil
}

// tagList is a repeatable flag that also accepts comma-separated tags.
type tagList []string

func (t *tagList) String() string {
	return strings.Join(*t, ",")
}

func (t *tagList) Set(v string) error {
	*t = append(*t, models.SplitServices(v)...)
	return nil
}

// triBool is unset until given; it then holds true or false.
type triBool struct {
	value *bool
}

func (t *triBool) String() string {
	if t.value == nil {
		return ""
	}
	return strconv.FormatBool(*t.value)
}

func (t *triBool) Set(v string) error {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "yes", "sim", "true", "1":
		t.value = engine.Bool(true)
	case "no", "nao", "não", "false", "0":
		t.value = engine.Bool(false)
	default:
		return fmt.Errorf("want yes or no, got %q", v)
	}
	return nil
}

// optionalInt is nil until given.
type optionalInt struct {
	value *int
}

func (o *optionalInt) String() string {
	if o.value == nil {
		return ""
	}
	return strconv.Itoa(*o.value)
}

func (o *optionalInt) Set(v string) error {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return fmt.Errorf("want a whole number, got %q", v)
	}
	o.value = &n
	return nil
}

// queryFlags registers the filter and sort flags shared by list-style commands.
type queryFlags struct {
	search      *string
	professions stringList
	cities      stringList
	states      stringList
	ratings     stringList
	tags        tagList
	statuses    stringList
	priorities  stringList
	whatsapp    triBool
	email       triBool
	website     triBool
	phone       triBool
	minYears    optionalInt
	maxYears    optionalInt
	sort        *string
	desc        *bool
	screen      *string
}

func registerQueryFlags(fs *flag.FlagSet, defaultScreen string) *queryFlags {
	q := &queryFlags{}
	q.search = fs.String("search", "", "Text matched against company, contact, profession, city, specialization, and email")
	fs.Var(&q.professions, "profession", "Profession (repeatable)")
	fs.Var(&q.cities, "city", "City (repeatable)")
	fs.Var(&q.states, "state", "State (repeatable)")
	fs.Var(&q.ratings, "rating", "Rating (repeatable)")
	fs.Var(&q.tags, "tag", "Service tag (repeatable, comma-separated)")
	fs.Var(&q.statuses, "status", "Pipeline status (repeatable)")
	fs.Var(&q.priorities, "priority", "Priority (repeatable)")
	fs.Var(&q.whatsapp, "has-whatsapp", "yes or no")
	fs.Var(&q.email, "has-email", "yes or no")
	fs.Var(&q.website, "has-website", "yes or no")
	fs.Var(&q.phone, "has-phone", "yes or no")
	fs.Var(&q.minYears, "min-years", "Minimum years of experience")
	fs.Var(&q.maxYears, "max-years", "Maximum years of experience")
	q.sort = fs.String("sort", "", "Sort field: name, contact_name, rating, years_experience, city, profession, created_at")
	q.desc = fs.Bool("desc", false, "Sort descending")
	q.screen = fs.String("screen", defaultScreen, "Screen: grid, list, modern, crm")
	return q
}

// build resolves the screen and returns the restricted query and sort.
func (q *queryFlags) build() (engine.Screen, engine.Query, engine.Sort, error) {
	screen, err := engine.LookupScreen(*q.screen)
	if err != nil {
		return engine.Screen{}, engine.Query{}, engine.Sort{}, err
	}

	var sort engine.Sort
	if *q.sort != "" {
		field, err := engine.ParseSortField(*q.sort)
		if err != nil {
			return engine.Screen{}, engine.Query{}, engine.Sort{}, err
		}
		if !screen.Allows(field) {
			return engine.Screen{}, engine.Query{}, engine.Sort{}, fmt.Errorf("screen %s cannot sort by %s", screen.Name, field)
		}
		sort = engine.Sort{Field: field, Direction: engine.Asc}
	}
	sort = screen.SortOrDefault(sort)
	if *q.desc {
		sort.Direction = engine.Desc
	}

	query := engine.Query{
		Search:      *q.search,
		Professions: q.professions,
		Cities:      q.cities,
		States:      q.states,
		Ratings:     q.ratings,
		Tags:        q.tags,
		Statuses:    q.statuses,
		Priorities:  q.priorities,
		HasWhatsapp: q.whatsapp.value,
		HasEmail:    q.email.value,
		HasWebsite:  q.website.value,
		HasPhone:    q.phone.value,
		MinYears:    q.minYears.value,
		MaxYears:    q.maxYears.value,
	}
	return screen, screen.Restrict(query.Normalize()), sort, nil
}
