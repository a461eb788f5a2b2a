// ABOUTME: CSV export of prospect lists
// ABOUTME: Writes the spreadsheet column layouts used by the grid and CRM screens
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/harperreed/prospect/models"
)

// Layout selects the exported column set.
type Layout string

const (
	LayoutGrid Layout = "grid"
	LayoutCRM  Layout = "crm"
)

type column struct {
	header string
	value  func(p *models.Prospect) string
}

var gridColumns = []column{
	{"Empresa", func(p *models.Prospect) string { return p.CompanyName }},
	{"Contato", func(p *models.Prospect) string { return p.ContactName }},
	{"Profissão", func(p *models.Prospect) string { return p.Profession }},
	{"Especialização", func(p *models.Prospect) string { return p.Specialization }},
	{"Cidade", func(p *models.Prospect) string { return p.City }},
	{"Estado", func(p *models.Prospect) string { return p.State }},
	{"Telefone", func(p *models.Prospect) string { return p.Phone }},
	{"WhatsApp", func(p *models.Prospect) string { return p.Whatsapp }},
	{"Email", func(p *models.Prospect) string { return p.Email }},
	{"Website", func(p *models.Prospect) string { return p.Website }},
	{"Avaliação", func(p *models.Prospect) string { return p.Rating }},
	{"Anos de Experiência", func(p *models.Prospect) string { return p.YearsExperience }},
	{"Serviços", func(p *models.Prospect) string { return p.Services }},
}

var crmColumns = []column{
	{"Empresa", func(p *models.Prospect) string { return p.CompanyName }},
	{"Contato", func(p *models.Prospect) string { return p.ContactName }},
	{"Profissão", func(p *models.Prospect) string { return p.Profession }},
	{"Status", func(p *models.Prospect) string { return p.EffectiveStatus() }},
	{"Prioridade", func(p *models.Prospect) string { return p.EffectivePriority() }},
	{"Cidade", func(p *models.Prospect) string { return p.City }},
	{"Estado", func(p *models.Prospect) string { return p.State }},
	{"Telefone", func(p *models.Prospect) string { return p.Phone }},
	{"WhatsApp", func(p *models.Prospect) string { return p.Whatsapp }},
	{"Email", func(p *models.Prospect) string { return p.Email }},
	{"Website", func(p *models.Prospect) string { return p.Website }},
}

// ParseLayout accepts "grid" (default when empty) or "crm".
func ParseLayout(s string) (Layout, error) {
	switch Layout(s) {
	case "", LayoutGrid:
		return LayoutGrid, nil
	case LayoutCRM:
		return LayoutCRM, nil
	default:
		return "", fmt.Errorf("unknown export layout %q (want grid or crm)", s)
	}
}

func (l Layout) columns() []column {
	if l == LayoutCRM {
		return crmColumns
	}
	return gridColumns
}

// Headers returns the header row for the layout.
func (l Layout) Headers() []string {
	cols := l.columns()
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.header
	}
	return out
}

// Filename returns the default download name for an export made at t.
func (l Layout) Filename(t time.Time) string {
	prefix := "prospeccao-ativa"
	if l == LayoutCRM {
		prefix = "crm-prospects"
	}
	return fmt.Sprintf("%s-%s.csv", prefix, t.Format("2006-01-02"))
}

// WriteCSV writes a header row and one row per prospect, in order.
func WriteCSV(w io.Writer, prospects []models.Prospect, layout Layout) error {
	cols := layout.columns()
	cw := csv.NewWriter(w)

	if err := cw.Write(layout.Headers()); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	row := make([]string, len(cols))
	for i := range prospects {
		for j, c := range cols {
			row[j] = c.value(&prospects[i])
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
