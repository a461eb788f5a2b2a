// ABOUTME: JSON prospect importer
// ABOUTME: Creates new prospects and fills blank fields on existing matches instead of duplicating them
package importer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/harperreed/prospect/db"
	"github.com/harperreed/prospect/models"
)

// Result counts what an import did.
type Result struct {
	Created int
	Matched int
	Skipped int
}

type ProspectsImporter struct {
	store   db.Store
	matcher *ProspectMatcher
}

// NewProspectsImporter loads the existing prospects from store for matching.
func NewProspectsImporter(ctx context.Context, store db.Store) (*ProspectsImporter, error) {
	existing, err := store.ListProspects(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load existing prospects: %w", err)
	}
	return &ProspectsImporter{store: store, matcher: NewProspectMatcher(existing)}, nil
}

// ImportProspect creates p, or merges it into the prospect it matches.
// It reports whether a new prospect was created.
func (pi *ProspectsImporter) ImportProspect(ctx context.Context, p *models.Prospect) (bool, error) {
	if existing, found := pi.matcher.FindMatch(p); found {
		changed := mergeBlank(existing, p)
		if !changed {
			return false, nil
		}
		if err := pi.store.UpdateProspect(ctx, existing); err != nil {
			return false, fmt.Errorf("failed to update %s: %w", existing.DisplayName(), err)
		}
		pi.matcher.Add(existing)
		return false, nil
	}

	if err := pi.store.CreateProspect(ctx, p); err != nil {
		return false, err
	}
	pi.matcher.Add(p)
	return true, nil
}

// mergeBlank copies fields from src into dst where dst has none. It never
// overwrites pipeline state.
func mergeBlank(dst, src *models.Prospect) bool {
	changed := false
	fill := func(d *string, s string) {
		if *d == "" && s != "" {
			*d = s
			changed = true
		}
	}

	fill(&dst.ContactName, src.ContactName)
	fill(&dst.Profession, src.Profession)
	fill(&dst.Specialization, src.Specialization)
	fill(&dst.City, src.City)
	fill(&dst.State, src.State)
	fill(&dst.Address, src.Address)
	fill(&dst.Phone, src.Phone)
	fill(&dst.Whatsapp, src.Whatsapp)
	fill(&dst.Email, src.Email)
	fill(&dst.Website, src.Website)
	fill(&dst.SocialMedia, src.SocialMedia)
	fill(&dst.Notes, src.Notes)
	fill(&dst.Rating, src.Rating)
	fill(&dst.YearsExperience, src.YearsExperience)
	fill(&dst.Services, src.Services)
	return changed
}

// Import reads a JSON array of prospects from r and imports each one.
// Records that fail validation are skipped and reported in the returned error.
func Import(ctx context.Context, store db.Store, r io.Reader) (Result, error) {
	var records []models.Prospect
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return Result{}, fmt.Errorf("failed to decode prospects: %w", err)
	}

	pi, err := NewProspectsImporter(ctx, store)
	if err != nil {
		return Result{}, err
	}

	var res Result
	var errs []error
	for i := range records {
		p := records[i]
		created, err := pi.ImportProspect(ctx, &p)
		switch {
		case err != nil:
			res.Skipped++
			errs = append(errs, fmt.Errorf("record %d (%s): %w", i, p.CompanyName, err))
		case created:
			res.Created++
		default:
			res.Matched++
		}
	}

	log.Debug("Import finished", "created", res.Created, "matched", res.Matched, "skipped", res.Skipped)
	return res, errors.Join(errs...)
}
