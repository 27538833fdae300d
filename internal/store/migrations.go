package store

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// schema lists the DDL for each schema version, oldest first. Version n is
// schema[n-1]; entries are never edited once released.
var schema = []string{
	`CREATE TABLE actions (
		id         TEXT PRIMARY KEY,
		flow       TEXT NOT NULL,
		action     TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);
	CREATE INDEX idx_actions_created_at ON actions(created_at);`,
}

// migrate brings db up to the latest schema version. Each version is applied
// in its own transaction together with its schema_version row.
func migrate(db *sqlx.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`); err != nil {
		return fmt.Errorf("creating schema_version: %w", err)
	}

	var current int
	if err := db.Get(&current, `SELECT COALESCE(MAX(version), 0) FROM schema_version`); err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}

	for v := current + 1; v <= len(schema); v++ {
		tx, err := db.Beginx()
		if err != nil {
			return fmt.Errorf("starting migration v%d: %w", v, err)
		}
		if _, err := tx.Exec(schema[v-1]); err != nil {
			tx.Rollback()
			return fmt.Errorf("applying migration v%d: %w", v, err)
		}
		if _, err := tx.Exec(`INSERT INTO schema_version (version) VALUES (?)`, v); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration v%d: %w", v, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration v%d: %w", v, err)
		}
	}
	return nil
}
