// ABOUTME: Prospect store backed by Charm KV
// ABOUTME: Keeps prospects and interactions as JSON values under prefixed keys

package charm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/harperreed/prospect/db"
	"github.com/harperreed/prospect/models"
)

const (
	prospectPrefix    = "prospect:"
	interactionPrefix = "interaction:"
)

var _ db.Store = (*Store)(nil)

// Store implements db.Store on a charm KV client.
type Store struct {
	client *Client
	now    func() time.Time
}

// NewStore wraps an already-open client.
func NewStore(c *Client) *Store {
	return &Store{client: c, now: func() time.Time { return time.Now().UTC() }}
}

// Client returns the underlying KV client.
func (s *Store) Client() *Client {
	return s.client
}

func (s *Store) Close() error {
	return s.client.Close()
}

func prospectKey(id string) []byte {
	return []byte(prospectPrefix + id)
}

func interactionKey(prospectID, id string) []byte {
	return []byte(interactionPrefix + prospectID + ":" + id)
}

func (s *Store) ListProspects(ctx context.Context) ([]models.Prospect, error) {
	keys, err := s.client.KeysWithPrefix([]byte(prospectPrefix))
	if err != nil {
		return nil, fmt.Errorf("failed to list prospect keys: %w", err)
	}

	prospects := make([]models.Prospect, 0, len(keys))
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p, err := s.load(key)
		if errors.Is(err, db.ErrProspectNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		prospects = append(prospects, *p)
	}

	slices.SortFunc(prospects, func(a, b models.Prospect) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return prospects, nil
}

func (s *Store) load(key []byte) (*models.Prospect, error) {
	data, err := s.client.Get(key)
	if errors.Is(err, ErrKeyNotFound) {
		return nil, db.ErrProspectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}

	var p models.Prospect
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return &p, nil
}

func (s *Store) save(p *models.Prospect) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode prospect: %w", err)
	}
	if err := s.client.Set(prospectKey(p.ID), data); err != nil {
		return fmt.Errorf("failed to write prospect: %w", err)
	}
	return nil
}

func (s *Store) GetProspect(_ context.Context, id string) (*models.Prospect, error) {
	if id == "" {
		return nil, db.ErrProspectNotFound
	}
	return s.load(prospectKey(id))
}

func (s *Store) CreateProspect(_ context.Context, p *models.Prospect) error {
	if err := db.PrepareNewProspect(p, s.now()); err != nil {
		return err
	}
	if _, err := s.client.Get(prospectKey(p.ID)); err == nil {
		return fmt.Errorf("%w: id %s already exists", db.ErrInvalidProspect, p.ID)
	}
	return s.save(p)
}

func (s *Store) UpdateProspect(ctx context.Context, p *models.Prospect) error {
	if err := db.PrepareUpdatedProspect(p, s.now()); err != nil {
		return err
	}
	existing, err := s.GetProspect(ctx, p.ID)
	if err != nil {
		return err
	}
	p.CreatedAt = existing.CreatedAt
	return s.save(p)
}

func (s *Store) UpdateStatus(ctx context.Context, id, status string, at time.Time) error {
	if err := db.CheckStatus(status); err != nil {
		return err
	}
	p, err := s.GetProspect(ctx, id)
	if err != nil {
		return err
	}
	at = at.UTC()
	p.Status = status
	p.LastContactAt = &at
	p.UpdatedAt = s.now()
	return s.save(p)
}

func (s *Store) UpdatePriority(ctx context.Context, id, priority string) error {
	if err := db.CheckPriority(priority); err != nil {
		return err
	}
	p, err := s.GetProspect(ctx, id)
	if err != nil {
		return err
	}
	p.Priority = priority
	p.UpdatedAt = s.now()
	return s.save(p)
}

func (s *Store) DeleteProspect(ctx context.Context, id string) error {
	if _, err := s.GetProspect(ctx, id); err != nil {
		return err
	}

	keys, err := s.client.KeysWithPrefix([]byte(interactionPrefix + id + ":"))
	if err != nil {
		return fmt.Errorf("failed to list interactions: %w", err)
	}
	for _, key := range keys {
		if err := s.client.Delete(key); err != nil {
			return fmt.Errorf("failed to delete interaction: %w", err)
		}
	}

	if err := s.client.Delete(prospectKey(id)); err != nil {
		return fmt.Errorf("failed to delete prospect: %w", err)
	}
	return nil
}

func (s *Store) AddInteraction(ctx context.Context, in *models.Interaction) error {
	if err := db.PrepareInteraction(in, s.now()); err != nil {
		return err
	}
	p, err := s.GetProspect(ctx, in.ProspectID)
	if err != nil {
		return err
	}

	data, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to encode interaction: %w", err)
	}
	if err := s.client.Set(interactionKey(in.ProspectID, in.ID), data); err != nil {
		return fmt.Errorf("failed to write interaction: %w", err)
	}

	contact := in.CreatedAt.UTC()
	p.LastContactAt = &contact
	p.UpdatedAt = s.now()
	return s.save(p)
}

func (s *Store) ListInteractions(ctx context.Context, prospectID string) ([]models.Interaction, error) {
	keys, err := s.client.KeysWithPrefix([]byte(interactionPrefix + prospectID + ":"))
	if err != nil {
		return nil, fmt.Errorf("failed to list interactions: %w", err)
	}

	interactions := make([]models.Interaction, 0, len(keys))
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := s.client.Get(key)
		if errors.Is(err, ErrKeyNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", key, err)
		}
		var in models.Interaction
		if err := json.Unmarshal(data, &in); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", key, err)
		}
		interactions = append(interactions, in)
	}

	slices.SortFunc(interactions, func(a, b models.Interaction) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(b.ID, a.ID)
	})
	return interactions, nil
}
