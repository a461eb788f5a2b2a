// ABOUTME: SQLite-backed interaction log
// ABOUTME: Records calls, messages, and notes against prospects and bumps last contact time
package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/harperreed/prospect/models"
)

func (s *SQLiteStore) AddInteraction(ctx context.Context, in *models.Interaction) error {
	if err := PrepareInteraction(in, s.now()); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx,
		`UPDATE prospects SET last_contact_at = ?, updated_at = ? WHERE id = ?`,
		in.CreatedAt.UTC(), s.now(), in.ProspectID,
	)
	if err != nil {
		return fmt.Errorf("failed to update last contact: %w", err)
	}
	if err := requireAffected(result); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO interactions (id, prospect_id, user_id, interaction_type, interaction_status,
			title, description, notes, scheduled_at, completed_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.ID, in.ProspectID, in.UserID, in.Type, in.Status,
		in.Title, in.Description, in.Notes,
		nullTime(in.ScheduledAt), nullTime(in.CompletedAt), in.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert interaction: %w", err)
	}

	return tx.Commit()
}

func (s *SQLiteStore) ListInteractions(ctx context.Context, prospectID string) ([]models.Interaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, prospect_id, user_id, interaction_type, interaction_status,
			title, description, notes, scheduled_at, completed_at, created_at
		FROM interactions
		WHERE prospect_id = ?
		ORDER BY created_at DESC, id DESC`, prospectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list interactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	interactions := []models.Interaction{}
	for rows.Next() {
		var in models.Interaction
		var scheduled, completed sql.NullTime
		if err := rows.Scan(
			&in.ID, &in.ProspectID, &in.UserID, &in.Type, &in.Status,
			&in.Title, &in.Description, &in.Notes, &scheduled, &completed, &in.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan interaction: %w", err)
		}
		if scheduled.Valid {
			t := scheduled.Time
			in.ScheduledAt = &t
		}
		if completed.Valid {
			t := completed.Time
			in.CompletedAt = &t
		}
		interactions = append(interactions, in)
	}
	return interactions, rows.Err()
}
