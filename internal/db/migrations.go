package db

import (
	"database/sql"
	"fmt"
)

// migrations are applied in order. The database's user_version records how
// many have run. Append new migrations at the end; never edit old ones.
var migrations = []string{
	schema,

	// Revocation list for logged-out tokens.
	`CREATE TABLE IF NOT EXISTS revoked_tokens (
	     jti        TEXT PRIMARY KEY,
	     expires_at INTEGER NOT NULL
	 )`,

	// Photos.
	`ALTER TABLE items ADD COLUMN image BLOB;
	 ALTER TABLE items ADD COLUMN image_mime TEXT`,
}

// Version returns the number of migrations applied to db.
func Version(db *sql.DB) (int, error) {
	var v int
	if err := db.QueryRow(`PRAGMA user_version`).Scan(&v); err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	return v, nil
}

// Latest is the schema version after every migration has run.
func Latest() int { return len(migrations) }

// Migrate applies every pending migration, each in its own transaction.
func Migrate(db *sql.DB) error {
	current, err := Version(db)
	if err != nil {
		return err
	}
	if current > len(migrations) {
		return fmt.Errorf("database schema version %d is newer than this build (%d)", current, len(migrations))
	}

	for i := current; i < len(migrations); i++ {
		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("starting migration %d: %w", i+1, err)
		}
		if _, err := tx.Exec(migrations[i]); err != nil {
			tx.Rollback()
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
		// PRAGMA does not accept bound parameters.
		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", i+1)); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %d: %w", i+1, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", i+1, err)
		}
	}

	return nil
}
