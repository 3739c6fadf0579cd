package database

import (
	"database/sql"
	"fmt"
)

const currentSchemaVersion = 3

type migration struct {
	version int
	up      []string
}

var migrations = []migration{
	{
		version: 1,
		up: []string{
			`CREATE TABLE schema_version (
				version INTEGER PRIMARY KEY,
				applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
			)`,

			// one row per file whose probed frame size disagrees with its name
			`CREATE TABLE definition_mismatches (
				path TEXT PRIMARY KEY,
				named_definition TEXT NOT NULL,
				probed_definition TEXT NOT NULL,
				width INTEGER NOT NULL,
				height INTEGER NOT NULL,
				encoder TEXT NOT NULL DEFAULT '',
				first_seen DATETIME NOT NULL,
				last_seen DATETIME NOT NULL,
				resolved INTEGER NOT NULL DEFAULT 0
			)`,
			`CREATE INDEX idx_mismatches_resolved ON definition_mismatches(resolved)`,
		},
	},
	{
		version: 2,
		up: []string{
			`CREATE TABLE audit_runs (
				id TEXT PRIMARY KEY,
				root TEXT NOT NULL,
				started_at DATETIME NOT NULL,
				finished_at DATETIME,
				files INTEGER NOT NULL DEFAULT 0,
				mismatches INTEGER NOT NULL DEFAULT 0,
				failures INTEGER NOT NULL DEFAULT 0
			)`,
			`ALTER TABLE definition_mismatches ADD COLUMN run_id TEXT NOT NULL DEFAULT ''`,
		},
	},
	{
		version: 3,
		up: []string{
			`CREATE TABLE rejected_names (
				path TEXT PRIMARY KEY,
				reason TEXT NOT NULL,
				suggestion TEXT NOT NULL DEFAULT '',
				attempts INTEGER NOT NULL DEFAULT 1,
				created_at DATETIME NOT NULL,
				updated_at DATETIME NOT NULL
			)`,
		},
	},
}

func schemaVersion(db *sql.DB) (int, error) {
	var exists int
	if err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'schema_version'`).Scan(&exists); err != nil {
		return 0, err
	}
	if exists == 0 {
		return 0, nil
	}
	var version sql.NullInt64
	if err := db.QueryRow(`SELECT MAX(version) FROM schema_version`).Scan(&version); err != nil {
		return 0, err
	}
	return int(version.Int64), nil
}

func applyMigrations(db *sql.DB) error {
	current, err := schemaVersion(db)
	if err != nil {
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
		for _, stmt := range m.up {
			if _, err := tx.Exec(stmt); err != nil {
				tx.Rollback()
				return fmt.Errorf("migration %d: %w", m.version, err)
			}
		}
		if _, err := tx.Exec(`INSERT INTO schema_version (version) VALUES (?)`, m.version); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return err
		}
	}
	return nil
}
