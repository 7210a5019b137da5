package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate applies the schema. Statements are idempotent and re-run on every
// open.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// ALTER TABLE ADD COLUMN has no IF NOT EXISTS form.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS audit_events (
		id         TEXT PRIMARY KEY,
		identity   TEXT NOT NULL,
		event_type TEXT NOT NULL
		           CHECK(event_type IN ('email_received','task_proposed','task_created',
		                                'task_promoted','task_completed','completion_orphaned',
		                                'task_reverse_synced','matter_stub_created',
		                                'project_mapped','extraction_failed')),
		actor      TEXT NOT NULL DEFAULT '',
		task_title TEXT NOT NULL DEFAULT '',
		page_id    TEXT NOT NULL DEFAULT '',
		details    TEXT NOT NULL DEFAULT '{}',
		created_at TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_audit_identity_type ON audit_events(identity, event_type)`,
	`CREATE INDEX IF NOT EXISTS idx_audit_created ON audit_events(created_at)`,

	`CREATE TABLE IF NOT EXISTS email_receipts (
		fingerprint        TEXT PRIMARY KEY,
		sender             TEXT NOT NULL DEFAULT '',
		received_at        TEXT NOT NULL DEFAULT '',
		normalized_subject TEXT NOT NULL DEFAULT '',
		message_id         TEXT NOT NULL DEFAULT '',
		created_at         TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS project_mappings (
		matter_id    TEXT PRIMARY KEY,
		project_id   TEXT NOT NULL UNIQUE,
		project_name TEXT NOT NULL DEFAULT '',
		created_at   TEXT NOT NULL
	)`,

	// Raw relay headers, JSON encoded.
	`ALTER TABLE email_receipts ADD COLUMN headers_json TEXT NOT NULL DEFAULT '{}'`,
}
