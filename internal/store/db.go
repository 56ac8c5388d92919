// Package store persists (document, vector, metadata) entries into a
// durable, similarity-searchable sqlite index addressed by a (location,
// collection) pair. One sqlite file per collection; the directory layout
// under the location is owned by this package.
package store

import (
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaFS embed.FS

const (
	// CurrentSchemaVersion is the version of the database schema
	CurrentSchemaVersion = 1
)

// DB manages the SQLite database connection and schema migrations
type DB struct {
	sqlDB *sql.DB
	path  string
}

// CollectionPath returns the sqlite file backing a collection.
func CollectionPath(location, collection string) string {
	return filepath.Join(location, collection+".db")
}

// openDB opens the collection database, creating directories and applying
// the schema when create is true, and failing on a missing file otherwise.
func openDB(location, collection string, create bool) (*DB, error) {
	if location == "" {
		return nil, fmt.Errorf("index location is empty")
	}
	if collection == "" {
		return nil, fmt.Errorf("collection name is empty")
	}

	path := CollectionPath(location, collection)

	if create {
		if err := os.MkdirAll(location, 0755); err != nil {
			return nil, fmt.Errorf("failed to create index directory: %w", err)
		}
	} else {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("collection %q not found at %s: %w", collection, location, err)
		}
	}

	sqlDB, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=journal_mode=WAL&_pragma=synchronous=NORMAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := &DB{sqlDB: sqlDB, path: path}

	if create {
		if err := db.migrate(); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	} else {
		version, err := db.getSchemaVersion()
		if err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("not a valid index store: %w", err)
		}
		if version != CurrentSchemaVersion {
			sqlDB.Close()
			return nil, fmt.Errorf("unsupported index schema version %d (want %d)", version, CurrentSchemaVersion)
		}
	}

	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.sqlDB.Close()
}

// migrate runs schema migrations
func (db *DB) migrate() error {
	version, err := db.getSchemaVersion()
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	if version >= CurrentSchemaVersion {
		return nil
	}

	tx, err := db.sqlDB.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if version == 0 {
		// Fresh install - apply full schema
		schema, err := schemaFS.ReadFile("schema.sql")
		if err != nil {
			return fmt.Errorf("failed to read schema: %w", err)
		}

		if _, err := tx.Exec(string(schema)); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}

		if _, err := tx.Exec(
			"INSERT INTO schema_version (version, applied_at) VALUES (?, ?)",
			CurrentSchemaVersion,
			time.Now().UTC().Format(time.RFC3339),
		); err != nil {
			return fmt.Errorf("failed to set schema version: %w", err)
		}
	} else {
		return fmt.Errorf("incremental migrations not supported (current version: %d, target: %d)", version, CurrentSchemaVersion)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration: %w", err)
	}

	return nil
}

// getSchemaVersion returns the current schema version
func (db *DB) getSchemaVersion() (int, error) {
	var exists int
	if err := db.sqlDB.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&exists); err != nil {
		return 0, fmt.Errorf("failed to check schema_version table: %w", err)
	}

	if exists == 0 {
		return 0, nil
	}

	var version int
	if err := db.sqlDB.QueryRow("SELECT version FROM schema_version ORDER BY version DESC LIMIT 1").Scan(&version); err != nil {
		if err == sql.ErrNoRows {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}

	return version, nil
}

// setManifest writes one manifest key inside an existing transaction.
func setManifest(tx *sql.Tx, key, value string) error {
	if _, err := tx.Exec("INSERT OR REPLACE INTO manifest (key, value) VALUES (?, ?)", key, value); err != nil {
		return fmt.Errorf("failed to write manifest key %s: %w", key, err)
	}
	return nil
}

// getManifest reads one manifest key; missing keys return "".
func (db *DB) getManifest(key string) (string, error) {
	var value string
	err := db.sqlDB.QueryRow("SELECT value FROM manifest WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read manifest key %s: %w", key, err)
	}
	return value, nil
}
