// Copyright (C) 2025 the vowlist maintainers
// See root-dir/LICENSE for more information

package sqlitedb

import (
	"database/sql"
	"fmt"
)

type migration struct {
	version int
	stmts   []string
}

// The schema history is append-only. Never edit an entry that shipped,
// add a new version instead.
var migrations = []migration{
	{
		version: 1,
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS weddings (
				id TEXT PRIMARY KEY,
				bride_name TEXT NOT NULL,
				groom_name TEXT NOT NULL,
				wedding_date TEXT NOT NULL DEFAULT '',
				wedding_time TEXT NOT NULL DEFAULT '',
				venue_name TEXT NOT NULL DEFAULT '',
				venue_address TEXT NOT NULL DEFAULT '',
				additional_info TEXT NOT NULL DEFAULT '',
				header_image TEXT NOT NULL DEFAULT '',
				header_text TEXT NOT NULL DEFAULT '',
				slug TEXT NOT NULL UNIQUE,
				is_active INTEGER NOT NULL DEFAULT 1,
				created_at TIMESTAMP NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS guests (
				id TEXT PRIMARY KEY,
				wedding_id TEXT NOT NULL,
				name TEXT NOT NULL,
				adults INTEGER NOT NULL DEFAULT 0,
				children INTEGER NOT NULL DEFAULT 0,
				adults_names TEXT NOT NULL DEFAULT '[]',
				children_details TEXT NOT NULL DEFAULT '[]',
				phone TEXT NOT NULL,
				created_at TIMESTAMP NOT NULL,
				FOREIGN KEY (wedding_id) REFERENCES weddings (id),
				UNIQUE (wedding_id, phone)
			)`,
			`CREATE TABLE IF NOT EXISTS admin_users (
				id TEXT PRIMARY KEY,
				username TEXT NOT NULL UNIQUE,
				password_hash TEXT NOT NULL,
				created_at TIMESTAMP NOT NULL
			)`,
		},
	},
	{
		version: 2,
		stmts: []string{
			`ALTER TABLE weddings ADD COLUMN color_scheme TEXT NOT NULL DEFAULT 'marsala'`,
			`ALTER TABLE weddings ADD COLUMN background_color TEXT NOT NULL DEFAULT '#9c2851'`,
			`ALTER TABLE weddings ADD COLUMN text_color TEXT NOT NULL DEFAULT '#ffffff'`,
			`ALTER TABLE weddings ADD COLUMN accent_color TEXT NOT NULL DEFAULT '#d4af37'`,
		},
	},
	{
		version: 3,
		stmts: []string{
			`CREATE INDEX IF NOT EXISTS idx_guests_wedding ON guests (wedding_id)`,
			`CREATE INDEX IF NOT EXISTS idx_guests_created ON guests (created_at)`,
			`CREATE INDEX IF NOT EXISTS idx_weddings_created ON weddings (created_at)`,
		},
	},
}

func migrate(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return err
	}

	var current int
	if err := db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&current); err != nil {
		return err
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		tx, err := db.Begin()
		if err != nil {
			return err
		}
		for _, stmt := range m.stmts {
			if _, err := tx.Exec(stmt); err != nil {
				tx.Rollback()
				return fmt.Errorf("migration %d: %w", m.version, err)
			}
		}
		if _, err := tx.Exec(`INSERT INTO schema_migrations (version) VALUES (?)`, m.version); err != nil {
			tx.Rollback()
			return err
		}
		if err := tx.Commit(); err != nil {
			return err
		}
	}
	return nil
}
