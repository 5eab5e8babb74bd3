package database

import (
	"database/sql"
	"fmt"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS samples (
		entity_id TEXT NOT NULL,
		ts INTEGER NOT NULL,
		value REAL NOT NULL,
		PRIMARY KEY (entity_id, ts)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_samples_entity_ts ON samples (entity_id, ts)`,
	`CREATE TABLE IF NOT EXISTS insights_cache (
		day TEXT PRIMARY KEY,
		payload TEXT NOT NULL,
		fetched_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS analysis_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		status TEXT NOT NULL DEFAULT 'pending',
		error_message TEXT,
		result_json TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		started_at TIMESTAMP,
		completed_at TIMESTAMP
	)`,
}

// Migrate applies the schema statements in order. Every statement is
// idempotent, so re-running on startup is safe.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to apply migration %d: %w", i+1, err)
		}
	}
	return nil
}
