// ABOUTME: Storage interface shared by every prospect backend
// ABOUTME: Holds sentinel errors and validation applied before any write
package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/harperreed/prospect/models"
)

var (
	ErrProspectNotFound   = errors.New("prospect not found")
	ErrInvalidProspect    = errors.New("invalid prospect")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrInvalidPriority    = errors.New("invalid priority")
	ErrInvalidInteraction = errors.New("invalid interaction")
)

// Store is the persistence boundary for prospects and their interactions.
// SQLiteStore and the charm KV store both implement it.
type Store interface {
	// ListProspects returns every prospect, newest first.
	ListProspects(ctx context.Context) ([]models.Prospect, error)
	GetProspect(ctx context.Context, id string) (*models.Prospect, error)
	CreateProspect(ctx context.Context, p *models.Prospect) error
	UpdateProspect(ctx context.Context, p *models.Prospect) error
	// UpdateStatus moves a prospect through the pipeline and records at as
	// its last contact time.
	UpdateStatus(ctx context.Context, id, status string, at time.Time) error
	UpdatePriority(ctx context.Context, id, priority string) error
	DeleteProspect(ctx context.Context, id string) error

	// AddInteraction persists an interaction and bumps the prospect's
	// last contact time.
	AddInteraction(ctx context.Context, in *models.Interaction) error
	// ListInteractions returns a prospect's interactions, newest first.
	ListInteractions(ctx context.Context, prospectID string) ([]models.Interaction, error)

	Close() error
}

// PrepareNewProspect validates p and fills in the fields a store assigns on
// insert: ID, timestamps, and pipeline defaults.
func PrepareNewProspect(p *models.Prospect, now time.Time) error {
	if p == nil {
		return ErrInvalidProspect
	}
	p.CompanyName = strings.TrimSpace(p.CompanyName)
	if p.CompanyName == "" {
		return fmt.Errorf("%w: company name is required", ErrInvalidProspect)
	}
	if p.ID == "" {
		p.ID = models.NewProspectID()
	}
	if p.Status == "" {
		p.Status = models.DefaultStatus
	}
	if p.Priority == "" {
		p.Priority = models.DefaultPriority
	}
	if p.LeadSource == "" {
		p.LeadSource = models.DefaultLeadSource
	}
	if err := validatePipeline(p); err != nil {
		return err
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	return nil
}

// PrepareUpdatedProspect validates p before an update and stamps UpdatedAt.
func PrepareUpdatedProspect(p *models.Prospect, now time.Time) error {
	if p == nil || p.ID == "" {
		return ErrInvalidProspect
	}
	p.CompanyName = strings.TrimSpace(p.CompanyName)
	if p.CompanyName == "" {
		return fmt.Errorf("%w: company name is required", ErrInvalidProspect)
	}
	if err := validatePipeline(p); err != nil {
		return err
	}
	p.UpdatedAt = now
	return nil
}

func validatePipeline(p *models.Prospect) error {
	if p.Status != "" && !models.ValidStatus(p.Status) {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, p.Status)
	}
	if p.Priority != "" && !models.ValidPriority(p.Priority) {
		return fmt.Errorf("%w: %q", ErrInvalidPriority, p.Priority)
	}
	if p.Probability < 0 || p.Probability > 100 {
		return fmt.Errorf("%w: probability must be between 0 and 100", ErrInvalidProspect)
	}
	return nil
}

// CheckStatus returns ErrInvalidStatus for unknown statuses.
func CheckStatus(status string) error {
	if !models.ValidStatus(status) {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	return nil
}

// CheckPriority returns ErrInvalidPriority for unknown priorities.
func CheckPriority(priority string) error {
	if !models.ValidPriority(priority) {
		return fmt.Errorf("%w: %q", ErrInvalidPriority, priority)
	}
	return nil
}

// PrepareInteraction validates in and assigns its ID, status, and
// creation time.
func PrepareInteraction(in *models.Interaction, now time.Time) error {
	if in == nil || in.ProspectID == "" {
		return fmt.Errorf("%w: prospect id is required", ErrInvalidInteraction)
	}
	if !models.ValidInteractionType(in.Type) {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidInteraction, in.Type)
	}
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInteraction)
	}
	if in.Status == "" {
		in.Status = models.InteractionCompleted
	}
	switch in.Status {
	case models.InteractionScheduled, models.InteractionCompleted,
		models.InteractionCancelled, models.InteractionNoResponse:
	default:
		return fmt.Errorf("%w: unknown status %q", ErrInvalidInteraction, in.Status)
	}
	if in.CreatedAt.IsZero() {
		in.CreatedAt = now
	}
	if in.Status == models.InteractionCompleted && in.CompletedAt == nil {
		completed := in.CreatedAt
		in.CompletedAt = &completed
	}
	if in.ID == "" {
		in.ID = models.NewInteractionID(in.CreatedAt)
	}
	in.Unsynced = false
	return nil
}
