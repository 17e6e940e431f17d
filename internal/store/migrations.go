package store

import (
	"context"
	"database/sql"
)

// schema contains the DDL for all covweb tables.
// Each statement uses IF NOT EXISTS for idempotency.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS inspections (
		id             TEXT PRIMARY KEY,
		van_number     TEXT NOT NULL,
		date           TEXT NOT NULL DEFAULT '',
		inspector_id   TEXT NOT NULL DEFAULT '',
		event_name     TEXT NOT NULL DEFAULT '',
		odometer_in    TEXT NOT NULL DEFAULT '',
		video_filename TEXT NOT NULL DEFAULT '',
		license_plate  TEXT NOT NULL DEFAULT '',
		comments       TEXT NOT NULL DEFAULT '',
		created_at     TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS events (
		id             TEXT PRIMARY KEY,
		name           TEXT NOT NULL UNIQUE,
		canonical_name TEXT NOT NULL,
		created_by     TEXT NOT NULL DEFAULT '',
		created_at     TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS covs (
		number TEXT PRIMARY KEY
	)`,

	`CREATE INDEX IF NOT EXISTS idx_inspections_van_number ON inspections(van_number)`,
	`CREATE INDEX IF NOT EXISTS idx_inspections_created_at ON inspections(created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_inspections_event_name ON inspections(event_name)`,
	`CREATE INDEX IF NOT EXISTS idx_events_canonical_name ON events(canonical_name)`,
}

func migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
