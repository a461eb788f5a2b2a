// ABOUTME: Sort fields, directions, and comparators for the prospect filter engine
// ABOUTME: Missing values always sort last; descending negates the comparison only
package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/harperreed/prospect/models"
	"golang.org/x/text/collate"
)

// SortField selects the value prospects are ordered by.
type SortField string

const (
	SortName            SortField = "company_name"
	SortContactName     SortField = "contact_name"
	SortRating          SortField = "rating"
	SortYearsExperience SortField = "years_experience"
	SortCity            SortField = "city"
	SortProfession      SortField = "profession"
	SortCreatedAt       SortField = "created_at"
)

// SortFields lists every supported sort field.
var SortFields = []SortField{
	SortName, SortContactName, SortRating, SortYearsExperience,
	SortCity, SortProfession, SortCreatedAt,
}

var sortFieldAliases = map[string]SortField{
	"name":             SortName,
	"company":          SortName,
	"company_name":     SortName,
	"contact":          SortContactName,
	"contact_name":     SortContactName,
	"rating":           SortRating,
	"years":            SortYearsExperience,
	"experience":       SortYearsExperience,
	"years_experience": SortYearsExperience,
	"city":             SortCity,
	"profession":       SortProfession,
	"created":          SortCreatedAt,
	"created_at":       SortCreatedAt,
}

// Label returns a human label for the field.
func (f SortField) Label() string {
	switch f {
	case SortName:
		return "Name"
	case SortContactName:
		return "Contact"
	case SortRating:
		return "Rating"
	case SortYearsExperience:
		return "Experience"
	case SortCity:
		return "City"
	case SortProfession:
		return "Profession"
	case SortCreatedAt:
		return "Created"
	}
	return string(f)
}

// ParseSortField resolves a field name or one of its aliases.
func ParseSortField(s string) (SortField, error) {
	if f, ok := sortFieldAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return f, nil
	}
	return "", fmt.Errorf("unknown sort field: %s", s)
}

// Direction is ascending or descending.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection accepts asc/desc and their long forms.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "asc", "ascending":
		return Asc, nil
	case "desc", "descending":
		return Desc, nil
	}
	return "", fmt.Errorf("unknown sort direction: %s", s)
}

// Sort is a field plus direction.
type Sort struct {
	Field     SortField `json:"field"`
	Direction Direction `json:"direction"`
}

// DefaultSort orders by company name ascending.
var DefaultSort = Sort{Field: SortName, Direction: Asc}

// orDefault fills unset parts of the sort with the defaults.
func (s Sort) orDefault() Sort {
	if s.Field == "" {
		s.Field = DefaultSort.Field
	}
	if s.Direction == "" {
		s.Direction = DefaultSort.Direction
	}
	return s
}

// Reversed returns the same field in the opposite direction.
func (s Sort) Reversed() Sort {
	s = s.orDefault()
	if s.Direction == Asc {
		s.Direction = Desc
	} else {
		s.Direction = Asc
	}
	return s
}

func (s Sort) String() string {
	s = s.orDefault()
	return fmt.Sprintf("%s %s", s.Field, s.Direction)
}

// textValue returns the text a field sorts by and whether it is present.
func textValue(p *models.Prospect, f SortField) (string, bool) {
	var v string
	switch f {
	case SortName:
		v = p.CompanyName
	case SortContactName:
		v = p.ContactName
	case SortRating:
		v = p.Rating
	case SortYearsExperience:
		v = p.YearsExperience
	case SortCity:
		v = p.City
	case SortProfession:
		v = p.Profession
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

// comparator builds the ordering for one sort. The collator is not safe
// for concurrent use, so each Apply call builds its own.
func comparator(col *collate.Collator, s Sort) func(a, b *models.Prospect) int {
	s = s.orDefault()
	sign := 1
	if s.Direction == Desc {
		sign = -1
	}

	return func(a, b *models.Prospect) int {
		var cmp int
		if s.Field == SortCreatedAt {
			aOK, bOK := !a.CreatedAt.IsZero(), !b.CreatedAt.IsZero()
			if c, done := missingLast(aOK, bOK); done {
				return c
			}
			cmp = compareTimes(a.CreatedAt, b.CreatedAt)
		} else {
			av, aOK := textValue(a, s.Field)
			bv, bOK := textValue(b, s.Field)
			if c, done := missingLast(aOK, bOK); done {
				return c
			}
			cmp = col.CompareString(av, bv)
		}
		return sign * cmp
	}
}

// missingLast orders absent values after present ones regardless of direction.
func missingLast(aOK, bOK bool) (int, bool) {
	switch {
	case !aOK && !bOK:
		return 0, true
	case !aOK:
		return 1, true
	case !bOK:
		return -1, true
	}
	return 0, false
}

func compareTimes(a, b time.Time) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	}
	return 0
}
