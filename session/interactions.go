// ABOUTME: Interaction logging with a local fallback for failed writes
// ABOUTME: Unsynced interactions stay visible and can be retried later
package session

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/harperreed/prospect/db"
	"github.com/harperreed/prospect/models"
)

// LogInteraction persists draft against its prospect. Validation errors and
// a prospect missing from the store are returned as-is. Any other store
// failure keeps the interaction in the session with Unsynced set, and the
// returned error wraps ErrUnsynced.
func (s *Session) LogInteraction(ctx context.Context, draft models.Interaction) (models.Interaction, error) {
	if err := s.requireKnown(draft.ProspectID); err != nil {
		return models.Interaction{}, err
	}
	if draft.UserID == "" {
		draft.UserID = s.userID
	}
	if err := db.PrepareInteraction(&draft, s.now()); err != nil {
		return models.Interaction{}, err
	}

	if err := s.store.AddInteraction(ctx, &draft); err != nil {
		if !retryable(err) {
			return models.Interaction{}, fmt.Errorf("failed to log interaction: %w", err)
		}
		draft.Unsynced = true

		s.mu.Lock()
		s.pending = append(s.pending, draft)
		s.mu.Unlock()

		s.logger.Warn("interaction kept locally",
			"prospect", draft.ProspectID, "interaction", draft.ID, "err", err)
		return draft, fmt.Errorf("%w: %w", ErrUnsynced, err)
	}

	contact := draft.CreatedAt
	s.patch(draft.ProspectID, func(p *models.Prospect) {
		p.LastContactAt = &contact
	})
	return draft, nil
}

// retryable reports whether a failed interaction write could succeed later.
func retryable(err error) bool {
	return !errors.Is(err, db.ErrProspectNotFound) && !errors.Is(err, db.ErrInvalidInteraction)
}

// Interactions returns stored and unsynced interactions for a prospect,
// newest first. If the store cannot be read, the unsynced ones are still
// returned alongside the error.
func (s *Session) Interactions(ctx context.Context, prospectID string) ([]models.Interaction, error) {
	local := s.Pending(prospectID)

	stored, err := s.store.ListInteractions(ctx, prospectID)
	if err != nil {
		return local, fmt.Errorf("failed to load interactions: %w", err)
	}

	merged := append(stored, local...)
	slices.SortStableFunc(merged, func(a, b models.Interaction) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(b.ID, a.ID)
	})
	return merged, nil
}

// Pending returns the unsynced interactions for prospectID, or all of them
// when prospectID is empty.
func (s *Session) Pending(prospectID string) []models.Interaction {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Interaction
	for _, in := range s.pending {
		if prospectID == "" || in.ProspectID == prospectID {
			out = append(out, in)
		}
	}
	return out
}

// PendingCount returns how many interactions await a successful write.
func (s *Session) PendingCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.pending)
}

// RetryUnsynced attempts to persist every pending interaction. It returns
// how many were written; failures stay pending and are joined into err.
// Interactions whose prospect no longer exists are dropped.
func (s *Session) RetryUnsynced(ctx context.Context) (int, error) {
	s.mu.Lock()
	queue := s.pending
	s.pending = nil
	s.mu.Unlock()

	var (
		written int
		failed  []models.Interaction
		errs    []error
	)
	for _, in := range queue {
		in.Unsynced = false
		if err := s.store.AddInteraction(ctx, &in); err != nil {
			if !retryable(err) {
				s.logger.Warn("dropping unsynced interaction",
					"prospect", in.ProspectID, "interaction", in.ID, "err", err)
				continue
			}
			in.Unsynced = true
			failed = append(failed, in)
			errs = append(errs, fmt.Errorf("interaction %s: %w", in.ID, err))
			continue
		}
		written++

		contact := in.CreatedAt
		s.patch(in.ProspectID, func(p *models.Prospect) {
			if p.LastContactAt == nil || p.LastContactAt.Before(contact) {
				p.LastContactAt = &contact
			}
		})
	}

	if len(failed) > 0 {
		s.mu.Lock()
		s.pending = append(failed, s.pending...)
		s.mu.Unlock()
		s.logger.Warn("interactions still unsynced", "count", len(failed))
	}
	return written, errors.Join(errs...)
}
