// ABOUTME: Prospect deduplication and matching logic
// ABOUTME: Finds existing prospects by email, phone digits, or company and city to prevent duplicates on import
package importer

import (
	"strings"
	"unicode"

	"github.com/harperreed/prospect/models"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

type ProspectMatcher struct {
	byEmail   map[string]*models.Prospect
	byPhone   map[string]*models.Prospect
	byCompany map[string]*models.Prospect
}

// NewProspectMatcher creates a matcher from existing prospects.
func NewProspectMatcher(prospects []models.Prospect) *ProspectMatcher {
	m := &ProspectMatcher{
		byEmail:   make(map[string]*models.Prospect),
		byPhone:   make(map[string]*models.Prospect),
		byCompany: make(map[string]*models.Prospect),
	}

	for i := range prospects {
		m.Add(&prospects[i])
	}
	return m
}

// FindMatch looks for an existing prospect by email, then WhatsApp or phone
// number, then company name within the same city.
func (m *ProspectMatcher) FindMatch(p *models.Prospect) (*models.Prospect, bool) {
	if email := normalizeEmail(p.Email); email != "" {
		if found, ok := m.byEmail[email]; ok {
			return found, true
		}
	}
	for _, number := range []string{p.Whatsapp, p.Phone} {
		if digits := normalizePhone(number); digits != "" {
			if found, ok := m.byPhone[digits]; ok {
				return found, true
			}
		}
	}
	if key := companyKey(p.CompanyName, p.City); key != "" {
		if found, ok := m.byCompany[key]; ok {
			return found, true
		}
	}
	return nil, false
}

// Add registers a prospect so later records in the same import match it.
func (m *ProspectMatcher) Add(p *models.Prospect) {
	if email := normalizeEmail(p.Email); email != "" {
		m.byEmail[email] = p
	}
	for _, number := range []string{p.Whatsapp, p.Phone} {
		if digits := normalizePhone(number); digits != "" {
			m.byPhone[digits] = p
		}
	}
	if key := companyKey(p.CompanyName, p.City); key != "" {
		m.byCompany[key] = p
	}
}

// normalizeEmail converts email to lowercase for comparison.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// normalizePhone keeps the digits of a Brazilian number without the 55
// country prefix. Numbers too short to identify anyone normalize to "".
func normalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) > 11 && strings.HasPrefix(digits, "55") {
		digits = digits[2:]
	}
	if len(digits) < 8 {
		return ""
	}
	return digits
}

// fold lowercases s, strips accents, and collapses whitespace.
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.Join(strings.Fields(strings.ToLower(out)), " ")
}

func companyKey(company, city string) string {
	company = fold(company)
	if company == "" {
		return ""
	}
	return company + "|" + fold(city)
}
