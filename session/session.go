// ABOUTME: Presentation-facing prospect state shared by the CLI, TUI, web, and MCP surfaces
// ABOUTME: Holds the loaded snapshot, applies the engine, and keeps interactions that failed to persist
package session

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/harperreed/prospect/db"
	"github.com/harperreed/prospect/engine"
	"github.com/harperreed/prospect/models"
)

var (
	// ErrUnknownProspect is returned for ids absent from the snapshot.
	ErrUnknownProspect = errors.New("unknown prospect")

	// ErrUnsynced wraps store failures when an interaction was kept locally.
	ErrUnsynced = errors.New("interaction kept locally, not saved")
)

// Session owns one in-memory snapshot of the prospect list.
type Session struct {
	store  db.Store
	engine *engine.Engine
	logger *log.Logger
	now    func() time.Time
	userID string

	mu       sync.RWMutex
	snapshot []models.Prospect
	index    map[string]int
	pending  []models.Interaction
}

// Option configures a Session.
type Option func(*Session)

// WithEngine replaces the default engine.
func WithEngine(e *engine.Engine) Option {
	return func(s *Session) { s.engine = e }
}

// WithLogger replaces the default logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithClock sets the time source for status changes and interactions.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithUserID stamps interactions logged through the session.
func WithUserID(id string) Option {
	return func(s *Session) { s.userID = id }
}

// New creates a session over store. Call Refresh to load data.
func New(store db.Store, opts ...Option) *Session {
	s := &Session{
		store:  store,
		engine: engine.New(),
		logger: log.Default(),
		now:    func() time.Time { return time.Now().UTC() },
		index:  map[string]int{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store returns the backing store.
func (s *Session) Store() db.Store {
	return s.store
}

// Engine returns the engine used for Visible and Facets.
func (s *Session) Engine() *engine.Engine {
	return s.engine
}

// Refresh reloads the snapshot. On failure the previous snapshot is kept.
func (s *Session) Refresh(ctx context.Context) error {
	prospects, err := s.store.ListProspects(ctx)
	if err != nil {
		return fmt.Errorf("failed to load prospects: %w", err)
	}

	s.mu.Lock()
	s.setSnapshot(prospects)
	s.mu.Unlock()

	s.logger.Debug("snapshot refreshed", "prospects", len(prospects))
	return nil
}

// setSnapshot replaces the snapshot; callers hold mu.
func (s *Session) setSnapshot(prospects []models.Prospect) {
	s.snapshot = prospects
	s.index = make(map[string]int, len(prospects))
	for i := range prospects {
		s.index[prospects[i].ID] = i
	}
}

// Snapshot returns a copy of the loaded prospects in store order.
func (s *Session) Snapshot() []models.Prospect {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.snapshot)
}

// Len returns the snapshot size.
func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.snapshot)
}

// Visible returns the filtered and sorted view of the snapshot.
func (s *Session) Visible(q engine.Query, sort engine.Sort) []models.Prospect {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine.Apply(s.snapshot, q, sort)
}

// Facets derives facet options from the whole snapshot.
func (s *Session) Facets() engine.Facets {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine.DeriveFacets(s.snapshot)
}

// FacetsAll derives facet options without the tag cap.
func (s *Session) FacetsAll() engine.Facets {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine.DeriveFacetsAll(s.snapshot)
}

// Prospect returns a copy of the snapshot entry for id.
func (s *Session) Prospect(id string) (models.Prospect, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[id]
	if !ok {
		return models.Prospect{}, fmt.Errorf("%w: %s", ErrUnknownProspect, id)
	}
	return s.snapshot[i], nil
}

// patch applies fn to the snapshot entry for id, if still present.
func (s *Session) patch(id string, fn func(p *models.Prospect)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i, ok := s.index[id]; ok {
		fn(&s.snapshot[i])
	}
}

func (s *Session) requireKnown(id string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.index[id]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownProspect, id)
	}
	return nil
}

// AddProspect persists p and prepends it to the snapshot.
func (s *Session) AddProspect(ctx context.Context, p *models.Prospect) error {
	if p.CreatedBy == "" {
		p.CreatedBy = s.userID
	}
	if err := s.store.CreateProspect(ctx, p); err != nil {
		return err
	}

	s.mu.Lock()
	s.setSnapshot(append([]models.Prospect{*p}, s.snapshot...))
	s.mu.Unlock()
	return nil
}

// SetStatus persists a status change and patches the snapshot. The change
// also counts as a contact.
func (s *Session) SetStatus(ctx context.Context, id, status string) error {
	status = strings.TrimSpace(status)
	if err := db.CheckStatus(status); err != nil {
		return err
	}
	if err := s.requireKnown(id); err != nil {
		return err
	}

	at := s.now()
	if err := s.store.UpdateStatus(ctx, id, status, at); err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}

	s.patch(id, func(p *models.Prospect) {
		p.Status = status
		p.LastContactAt = &at
		p.UpdatedAt = at
	})
	return nil
}

// SetPriority persists a priority change and patches the snapshot.
func (s *Session) SetPriority(ctx context.Context, id, priority string) error {
	priority = strings.TrimSpace(priority)
	if err := db.CheckPriority(priority); err != nil {
		return err
	}
	if err := s.requireKnown(id); err != nil {
		return err
	}

	if err := s.store.UpdatePriority(ctx, id, priority); err != nil {
		return fmt.Errorf("failed to update priority: %w", err)
	}

	at := s.now()
	s.patch(id, func(p *models.Prospect) {
		p.Priority = priority
		p.UpdatedAt = at
	})
	return nil
}

// SetFollowUp schedules the next follow-up for id, or clears it when when is
// nil, and patches the snapshot with the stored record.
func (s *Session) SetFollowUp(ctx context.Context, id string, when *time.Time) (models.Prospect, error) {
	if err := s.requireKnown(id); err != nil {
		return models.Prospect{}, err
	}

	p, err := s.store.GetProspect(ctx, id)
	if err != nil {
		return models.Prospect{}, fmt.Errorf("failed to load prospect: %w", err)
	}
	p.NextFollowUp = when
	if err := s.store.UpdateProspect(ctx, p); err != nil {
		return models.Prospect{}, fmt.Errorf("failed to update prospect: %w", err)
	}

	s.patch(id, func(cur *models.Prospect) {
		*cur = *p
	})
	return *p, nil
}

// DeleteProspect removes id from the store and the snapshot, along with any
// of its interactions still waiting to be written.
func (s *Session) DeleteProspect(ctx context.Context, id string) error {
	if err := s.store.DeleteProspect(ctx, id); err != nil {
		return fmt.Errorf("failed to delete prospect: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.setSnapshot(slices.DeleteFunc(slices.Clone(s.snapshot), func(p models.Prospect) bool {
		return p.ID == id
	}))
	s.pending = slices.DeleteFunc(s.pending, func(in models.Interaction) bool {
		return in.ProspectID == id
	})
	return nil
}
