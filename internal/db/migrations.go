package db

import (
	"database/sql"
	"fmt"
)

// migrations is an ordered list of SQL migration statements.
// Each entry is applied once in order. New migrations are appended at the end.
//
// Timestamps are fixed-width UTC text (2006-01-02T15:04:05.000Z) so that string
// comparison in WHERE clauses matches chronological order.
var migrations = []string{
	// Migration 0: event table
	`CREATE TABLE IF NOT EXISTS events (
		id             TEXT PRIMARY KEY DEFAULT (lower(hex(randomblob(16)))),
		type           TEXT NOT NULL,
		timestamp      TEXT NOT NULL,
		summary        TEXT NOT NULL DEFAULT '',
		details        TEXT NOT NULL DEFAULT '{}',
		confidence     REAL NOT NULL DEFAULT 1.0,
		classification TEXT NOT NULL DEFAULT 'private',
		content_hash   TEXT UNIQUE,
		created_at     DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,

	// Domain tables, each owned by exactly one event.
	`CREATE TABLE IF NOT EXISTS transactions (
		id        TEXT PRIMARY KEY DEFAULT (lower(hex(randomblob(16)))),
		event_id  TEXT NOT NULL UNIQUE REFERENCES events(id) ON DELETE CASCADE,
		amount    REAL NOT NULL,
		currency  TEXT NOT NULL DEFAULT 'USD',
		merchant  TEXT NOT NULL DEFAULT '',
		category  TEXT NOT NULL DEFAULT ''
	)`,

	`CREATE TABLE IF NOT EXISTS locations (
		id        TEXT PRIMARY KEY DEFAULT (lower(hex(randomblob(16)))),
		event_id  TEXT NOT NULL UNIQUE REFERENCES events(id) ON DELETE CASCADE,
		latitude  REAL NOT NULL,
		longitude REAL NOT NULL,
		name      TEXT NOT NULL DEFAULT '',
		address   TEXT NOT NULL DEFAULT ''
	)`,

	`CREATE TABLE IF NOT EXISTS calendar_events (
		id         TEXT PRIMARY KEY DEFAULT (lower(hex(randomblob(16)))),
		event_id   TEXT NOT NULL UNIQUE REFERENCES events(id) ON DELETE CASCADE,
		title      TEXT NOT NULL,
		end_time   TEXT,
		location   TEXT NOT NULL DEFAULT '',
		attendees  TEXT NOT NULL DEFAULT '[]'
	)`,

	`CREATE TABLE IF NOT EXISTS health_entries (
		id          TEXT PRIMARY KEY DEFAULT (lower(hex(randomblob(16)))),
		event_id    TEXT NOT NULL UNIQUE REFERENCES events(id) ON DELETE CASCADE,
		metric_type TEXT NOT NULL,
		value       REAL NOT NULL,
		unit        TEXT NOT NULL DEFAULT ''
	)`,

	`CREATE TABLE IF NOT EXISTS moods (
		id       TEXT PRIMARY KEY DEFAULT (lower(hex(randomblob(16)))),
		event_id TEXT NOT NULL UNIQUE REFERENCES events(id) ON DELETE CASCADE,
		score    INTEGER NOT NULL CHECK (score BETWEEN 1 AND 5),
		note     TEXT NOT NULL DEFAULT ''
	)`,

	`CREATE TABLE IF NOT EXISTS notes (
		id       TEXT PRIMARY KEY DEFAULT (lower(hex(randomblob(16)))),
		event_id TEXT NOT NULL UNIQUE REFERENCES events(id) ON DELETE CASCADE,
		title    TEXT NOT NULL DEFAULT '',
		content  TEXT NOT NULL DEFAULT ''
	)`,

	`CREATE TABLE IF NOT EXISTS voice_memos (
		id               TEXT PRIMARY KEY DEFAULT (lower(hex(randomblob(16)))),
		event_id         TEXT NOT NULL UNIQUE REFERENCES events(id) ON DELETE CASCADE,
		duration_seconds REAL NOT NULL DEFAULT 0,
		transcript       TEXT NOT NULL DEFAULT ''
	)`,

	`CREATE TABLE IF NOT EXISTS photos (
		id              TEXT PRIMARY KEY DEFAULT (lower(hex(randomblob(16)))),
		event_id        TEXT NOT NULL UNIQUE REFERENCES events(id) ON DELETE CASCADE,
		file_path       TEXT NOT NULL,
		description     TEXT NOT NULL DEFAULT '',
		mood_indicators TEXT NOT NULL DEFAULT ''
	)`,

	`CREATE TABLE IF NOT EXISTS videos (
		id               TEXT PRIMARY KEY DEFAULT (lower(hex(randomblob(16)))),
		event_id         TEXT NOT NULL UNIQUE REFERENCES events(id) ON DELETE CASCADE,
		file_path        TEXT NOT NULL,
		duration_seconds REAL NOT NULL DEFAULT 0
	)`,

	`CREATE TABLE IF NOT EXISTS video_frames (
		id              TEXT PRIMARY KEY DEFAULT (lower(hex(randomblob(16)))),
		video_id        TEXT NOT NULL REFERENCES videos(id) ON DELETE CASCADE,
		offset_seconds  REAL NOT NULL DEFAULT 0,
		description     TEXT NOT NULL DEFAULT '',
		mood_indicators TEXT NOT NULL DEFAULT ''
	)`,

	`CREATE TABLE IF NOT EXISTS confrontations (
		id                TEXT PRIMARY KEY,
		scope             TEXT NOT NULL,
		title             TEXT NOT NULL,
		insight           TEXT NOT NULL,
		severity          REAL NOT NULL,
		category          TEXT NOT NULL,
		data_points       TEXT NOT NULL DEFAULT '[]',
		related_event_ids TEXT NOT NULL DEFAULT '[]',
		acknowledged      INTEGER NOT NULL DEFAULT 0,
		generated_at      TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_events_timestamp      ON events(timestamp)`,
	`CREATE INDEX IF NOT EXISTS idx_events_type           ON events(type, timestamp)`,
	`CREATE INDEX IF NOT EXISTS idx_video_frames_video    ON video_frames(video_id)`,
	`CREATE INDEX IF NOT EXISTS idx_confrontations_scope  ON confrontations(scope, generated_at DESC)`,

	// Migration tracking table
	`CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
}

// applyMigrations runs any migrations that have not yet been applied.
func applyMigrations(conn *sql.DB) error {
	// Ensure the migration tracking table exists first.
	if _, err := conn.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	for i, stmt := range migrations {
		var count int
		row := conn.QueryRow(`SELECT COUNT(*) FROM schema_migrations WHERE version = ?`, i)
		if err := row.Scan(&count); err != nil {
			return fmt.Errorf("check migration %d: %w", i, err)
		}
		if count > 0 {
			continue
		}

		if _, err := conn.Exec(stmt); err != nil {
			return fmt.Errorf("apply migration %d: %w", i, err)
		}

		if _, err := conn.Exec(`INSERT INTO schema_migrations (version) VALUES (?)`, i); err != nil {
			return fmt.Errorf("record migration %d: %w", i, err)
		}
	}

	return nil
}
