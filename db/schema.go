// ABOUTME: Database schema definitions
// ABOUTME: Creates the prospects and interactions tables on startup
package db

import (
	"database/sql"
)

const schema = `
CREATE TABLE IF NOT EXISTS prospects (
	id TEXT PRIMARY KEY,
	company_name TEXT NOT NULL,
	contact_name TEXT NOT NULL DEFAULT '',
	profession TEXT NOT NULL DEFAULT '',
	specialization TEXT NOT NULL DEFAULT '',
	city TEXT NOT NULL DEFAULT '',
	state TEXT NOT NULL DEFAULT '',
	address TEXT NOT NULL DEFAULT '',
	phone TEXT NOT NULL DEFAULT '',
	whatsapp TEXT NOT NULL DEFAULT '',
	email TEXT NOT NULL DEFAULT '',
	website TEXT NOT NULL DEFAULT '',
	social_media TEXT NOT NULL DEFAULT '',
	notes TEXT NOT NULL DEFAULT '',
	rating TEXT NOT NULL DEFAULT '',
	years_experience TEXT NOT NULL DEFAULT '',
	services TEXT NOT NULL DEFAULT '',
	is_active INTEGER NOT NULL DEFAULT 1,
	tags TEXT,
	metadata TEXT,
	created_by TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	status TEXT NOT NULL DEFAULT '',
	priority TEXT NOT NULL DEFAULT '',
	lead_source TEXT NOT NULL DEFAULT '',
	last_contact_at DATETIME,
	next_follow_up DATETIME,
	deal_value INTEGER NOT NULL DEFAULT 0,
	probability INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_prospects_created_at ON prospects(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_prospects_status ON prospects(status);

CREATE TABLE IF NOT EXISTS interactions (
	id TEXT PRIMARY KEY,
	prospect_id TEXT NOT NULL,
	user_id TEXT NOT NULL DEFAULT '',
	interaction_type TEXT NOT NULL CHECK(interaction_type IN ('call', 'whatsapp', 'email', 'meeting', 'proposal', 'follow_up', 'note')),
	interaction_status TEXT NOT NULL DEFAULT 'completed' CHECK(interaction_status IN ('scheduled', 'completed', 'cancelled', 'no_response')),
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	notes TEXT NOT NULL DEFAULT '',
	scheduled_at DATETIME,
	completed_at DATETIME,
	created_at DATETIME NOT NULL,
	FOREIGN KEY (prospect_id) REFERENCES prospects(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_interactions_prospect ON interactions(prospect_id, created_at DESC);
`

func InitSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
