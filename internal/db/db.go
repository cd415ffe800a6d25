// Package db opens the SQLite database that stores the visit list.
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// connParams apply to every pooled connection. Writers take the lock when
// the transaction begins so concurrent saves queue on busy_timeout instead
// of failing on lock upgrade.
const connParams = "?_journal_mode=WAL&_busy_timeout=5000&_txlock=immediate"

// DefaultPath returns the default database path: ~/.visit-planner/visits.db
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".visit-planner", "visits.db"), nil
}

// Open opens (or creates) the database at path and brings its schema up to
// date. A database written by a newer build is refused with
// ErrSchemaTooNew.
func Open(path string) (*sql.DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite3", path+connParams)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := migrate(db); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("running migrations: %w (also failed to close: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return db, nil
}
