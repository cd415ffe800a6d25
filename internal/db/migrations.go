package db

import (
	"database/sql"
	"errors"
	"fmt"
)

// ErrSchemaTooNew is returned when the database was migrated by a newer
// build than this one.
var ErrSchemaTooNew = errors.New("database schema is newer than this build")

// migrations are applied in order. The schema version stored in the
// database (PRAGMA user_version) is the number of migrations applied, so
// entries must only ever be appended.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS visits (
		id            TEXT    PRIMARY KEY,
		position      INTEGER NOT NULL,
		visit_date    TEXT    NOT NULL,
		status        TEXT    NOT NULL CHECK (status IN ('pending', 'completed')),
		form_count    INTEGER NOT NULL CHECK (form_count >= 0),
		product_count INTEGER NOT NULL CHECK (product_count >= 0),
		postal_code   TEXT    NOT NULL DEFAULT '',
		state         TEXT    NOT NULL DEFAULT '',
		city          TEXT    NOT NULL DEFAULT '',
		street        TEXT    NOT NULL DEFAULT '',
		neighborhood  TEXT    NOT NULL DEFAULT '',
		number        TEXT    NOT NULL DEFAULT '',
		complement    TEXT    NOT NULL DEFAULT '',
		updated_at    DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_visits_date ON visits (visit_date)`,
}

// SchemaVersion returns the number of migrations applied to db.
func SchemaVersion(db *sql.DB) (int, error) {
	var v int
	if err := db.QueryRow("PRAGMA user_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	return v, nil
}

// LatestVersion is the schema version this build migrates to.
func LatestVersion() int {
	return len(migrations)
}

// migrate applies the migrations db has not seen yet, each in its own
// transaction together with the version bump.
func migrate(db *sql.DB) error {
	current, err := SchemaVersion(db)
	if err != nil {
		return err
	}
	if current > len(migrations) {
		return fmt.Errorf("%w: database is at version %d, this build knows %d",
			ErrSchemaTooNew, current, len(migrations))
	}

	for i := current; i < len(migrations); i++ {
		if err := apply(db, i); err != nil {
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
	}
	return nil
}

func apply(db *sql.DB, i int) (err error) {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				err = fmt.Errorf("%w (rollback: %v)", err, rbErr)
			}
		}
	}()

	if _, err = tx.Exec(migrations[i]); err != nil {
		return err
	}
	// PRAGMA does not take bound parameters.
	if _, err = tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", i+1)); err != nil {
		return fmt.Errorf("setting schema version: %w", err)
	}
	return tx.Commit()
}
