// ABOUTME: SQLite-backed prospect repository
// ABOUTME: Implements prospect CRUD and pipeline updates with JSON tag and metadata columns
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/harperreed/prospect/models"
)

var _ Store = (*SQLiteStore)(nil)

// SQLiteStore implements Store on a local SQLite database.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStore wraps an open database. The schema must already exist.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// DB exposes the underlying handle for callers that need raw access.
func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const prospectColumns = `
	id, company_name, contact_name, profession, specialization, city, state,
	address, phone, whatsapp, email, website, social_media, notes, rating,
	years_experience, services, is_active, tags, metadata, created_by,
	created_at, updated_at, status, priority, lead_source, last_contact_at,
	next_follow_up, deal_value, probability`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProspect(row rowScanner) (*models.Prospect, error) {
	var p models.Prospect
	var tagsJSON, metadataJSON sql.NullString
	var lastContact, nextFollowUp sql.NullTime

	err := row.Scan(
		&p.ID, &p.CompanyName, &p.ContactName, &p.Profession, &p.Specialization,
		&p.City, &p.State, &p.Address, &p.Phone, &p.Whatsapp, &p.Email,
		&p.Website, &p.SocialMedia, &p.Notes, &p.Rating, &p.YearsExperience,
		&p.Services, &p.IsActive, &tagsJSON, &metadataJSON, &p.CreatedBy,
		&p.CreatedAt, &p.UpdatedAt, &p.Status, &p.Priority, &p.LeadSource,
		&lastContact, &nextFollowUp, &p.DealValue, &p.Probability,
	)
	if err != nil {
		return nil, err
	}

	if tagsJSON.Valid && tagsJSON.String != "" && tagsJSON.String != "null" {
		if err := json.Unmarshal([]byte(tagsJSON.String), &p.TagList); err != nil {
			return nil, fmt.Errorf("failed to decode tags for %s: %w", p.ID, err)
		}
	}
	if metadataJSON.Valid && metadataJSON.String != "" && metadataJSON.String != "null" {
		if err := json.Unmarshal([]byte(metadataJSON.String), &p.Metadata); err != nil {
			return nil, fmt.Errorf("failed to decode metadata for %s: %w", p.ID, err)
		}
	}
	if lastContact.Valid {
		t := lastContact.Time
		p.LastContactAt = &t
	}
	if nextFollowUp.Valid {
		t := nextFollowUp.Time
		p.NextFollowUp = &t
	}
	return &p, nil
}

func encodeJSON(v any, empty bool) (any, error) {
	if empty {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

func (s *SQLiteStore) ListProspects(ctx context.Context) ([]models.Prospect, error) {
	query := `SELECT ` + prospectColumns + ` FROM prospects ORDER BY created_at DESC, id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list prospects: %w", err)
	}
	defer func() { _ = rows.Close() }()

	prospects := []models.Prospect{}
	for rows.Next() {
		p, err := scanProspect(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan prospect: %w", err)
		}
		prospects = append(prospects, *p)
	}
	return prospects, rows.Err()
}

func (s *SQLiteStore) GetProspect(ctx context.Context, id string) (*models.Prospect, error) {
	query := `SELECT ` + prospectColumns + ` FROM prospects WHERE id = ?`

	p, err := scanProspect(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, ErrProspectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get prospect: %w", err)
	}
	return p, nil
}

func (s *SQLiteStore) CreateProspect(ctx context.Context, p *models.Prospect) error {
	if err := PrepareNewProspect(p, s.now()); err != nil {
		return err
	}

	tagsJSON, err := encodeJSON(p.TagList, len(p.TagList) == 0)
	if err != nil {
		return err
	}
	metadataJSON, err := encodeJSON(p.Metadata, len(p.Metadata) == 0)
	if err != nil {
		return err
	}

	query := `INSERT INTO prospects (` + prospectColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = s.db.ExecContext(ctx, query,
		p.ID, p.CompanyName, p.ContactName, p.Profession, p.Specialization,
		p.City, p.State, p.Address, p.Phone, p.Whatsapp, p.Email,
		p.Website, p.SocialMedia, p.Notes, p.Rating, p.YearsExperience,
		p.Services, p.IsActive, tagsJSON, metadataJSON, p.CreatedBy,
		p.CreatedAt.UTC(), p.UpdatedAt.UTC(), p.Status, p.Priority, p.LeadSource,
		nullTime(p.LastContactAt), nullTime(p.NextFollowUp), p.DealValue, p.Probability,
	)
	if err != nil {
		return fmt.Errorf("failed to create prospect: %w", err)
	}
	return nil
}

func (s *SQLiteStore) UpdateProspect(ctx context.Context, p *models.Prospect) error {
	if err := PrepareUpdatedProspect(p, s.now()); err != nil {
		return err
	}

	tagsJSON, err := encodeJSON(p.TagList, len(p.TagList) == 0)
	if err != nil {
		return err
	}
	metadataJSON, err := encodeJSON(p.Metadata, len(p.Metadata) == 0)
	if err != nil {
		return err
	}

	query := `
		UPDATE prospects SET
			company_name = ?, contact_name = ?, profession = ?, specialization = ?,
			city = ?, state = ?, address = ?, phone = ?, whatsapp = ?, email = ?,
			website = ?, social_media = ?, notes = ?, rating = ?, years_experience = ?,
			services = ?, is_active = ?, tags = ?, metadata = ?, updated_at = ?,
			status = ?, priority = ?, lead_source = ?, last_contact_at = ?,
			next_follow_up = ?, deal_value = ?, probability = ?
		WHERE id = ?
	`

	result, err := s.db.ExecContext(ctx, query,
		p.CompanyName, p.ContactName, p.Profession, p.Specialization,
		p.City, p.State, p.Address, p.Phone, p.Whatsapp, p.Email,
		p.Website, p.SocialMedia, p.Notes, p.Rating, p.YearsExperience,
		p.Services, p.IsActive, tagsJSON, metadataJSON, p.UpdatedAt.UTC(),
		p.Status, p.Priority, p.LeadSource, nullTime(p.LastContactAt),
		nullTime(p.NextFollowUp), p.DealValue, p.Probability,
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update prospect: %w", err)
	}
	return requireAffected(result)
}

func (s *SQLiteStore) UpdateStatus(ctx context.Context, id, status string, at time.Time) error {
	if err := CheckStatus(status); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE prospects SET status = ?, last_contact_at = ?, updated_at = ? WHERE id = ?`,
		status, at.UTC(), s.now(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}
	return requireAffected(result)
}

func (s *SQLiteStore) UpdatePriority(ctx context.Context, id, priority string) error {
	if err := CheckPriority(priority); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE prospects SET priority = ?, updated_at = ? WHERE id = ?`,
		priority, s.now(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update priority: %w", err)
	}
	return requireAffected(result)
}

func (s *SQLiteStore) DeleteProspect(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM prospects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete prospect: %w", err)
	}
	return requireAffected(result)
}

func requireAffected(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrProspectNotFound
	}
	return nil
}
