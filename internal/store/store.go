// Package store implements the SQLite-backed metadata store. It owns the
// relational schema the filter compiler's generated joins run against.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Store is the SQLite store handle.
type Store struct {
	db *sql.DB
}

var (
	// ErrNotFound indicates the requested record is not in the store.
	ErrNotFound = errors.New("record not found in store")
	// ErrTypeNotFound indicates an unregistered type name.
	ErrTypeNotFound = errors.New("type not found in store")
)

// DB returns the underlying sql.DB for advanced queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Open opens or creates the store under the given directory.
func Open(storePath string) (*Store, error) {
	dbDir := filepath.Join(storePath, ".magpie")
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create .magpie directory: %w", err)
	}

	dbPath := filepath.Join(dbDir, "store.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	s := &Store{db: db}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Close closes the store.
func (s *Store) Close() error {
	return s.db.Close()
}

// initialize applies the schema. Table and column names are a contract shared
// with the filter compiler's join fragments; they must not drift.
func (s *Store) initialize() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS Type (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			kind INTEGER NOT NULL,
			UNIQUE(name, kind)
		)`,
		`CREATE TABLE IF NOT EXISTS Artifact (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			type_id INTEGER NOT NULL,
			uri TEXT,
			name TEXT,
			create_time_since_epoch INTEGER NOT NULL,
			last_update_time_since_epoch INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS Execution (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			type_id INTEGER NOT NULL,
			name TEXT,
			create_time_since_epoch INTEGER NOT NULL,
			last_update_time_since_epoch INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS Context (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			type_id INTEGER NOT NULL,
			name TEXT NOT NULL,
			create_time_since_epoch INTEGER NOT NULL,
			last_update_time_since_epoch INTEGER NOT NULL,
			UNIQUE(type_id, name)
		)`,
		`CREATE TABLE IF NOT EXISTS ArtifactProperty (
			artifact_id INTEGER NOT NULL,
			name TEXT NOT NULL,
			is_custom_property INTEGER NOT NULL DEFAULT 0,
			int_value INTEGER,
			double_value REAL,
			string_value TEXT,
			PRIMARY KEY(artifact_id, name, is_custom_property)
		)`,
		`CREATE TABLE IF NOT EXISTS ExecutionProperty (
			execution_id INTEGER NOT NULL,
			name TEXT NOT NULL,
			is_custom_property INTEGER NOT NULL DEFAULT 0,
			int_value INTEGER,
			double_value REAL,
			string_value TEXT,
			PRIMARY KEY(execution_id, name, is_custom_property)
		)`,
		`CREATE TABLE IF NOT EXISTS ContextProperty (
			context_id INTEGER NOT NULL,
			name TEXT NOT NULL,
			is_custom_property INTEGER NOT NULL DEFAULT 0,
			int_value INTEGER,
			double_value REAL,
			string_value TEXT,
			PRIMARY KEY(context_id, name, is_custom_property)
		)`,
		`CREATE TABLE IF NOT EXISTS Attribution (
			context_id INTEGER NOT NULL,
			artifact_id INTEGER NOT NULL,
			PRIMARY KEY(context_id, artifact_id)
		)`,
		`CREATE TABLE IF NOT EXISTS Association (
			context_id INTEGER NOT NULL,
			execution_id INTEGER NOT NULL,
			PRIMARY KEY(context_id, execution_id)
		)`,
		`CREATE TABLE IF NOT EXISTS ParentContext (
			context_id INTEGER NOT NULL,
			parent_context_id INTEGER NOT NULL,
			PRIMARY KEY(context_id, parent_context_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_artifact_type ON Artifact(type_id)`,
		`CREATE INDEX IF NOT EXISTS idx_execution_type ON Execution(type_id)`,
		`CREATE INDEX IF NOT EXISTS idx_context_type ON Context(type_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
	}
	return nil
}
