// Package testutil provides reusable test utilities for magpie integration
// tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aidanlsb/magpie/internal/filter"
	"github.com/aidanlsb/magpie/internal/store"
)

// TestStore is a temporary metadata store for testing. Path is the store
// directory; Store is an open handle closed automatically at test cleanup.
type TestStore struct {
	Path  string
	Store *store.Store
	t     *testing.T
}

// NewTestStore creates and opens a store in a fresh temp directory.
func NewTestStore(t *testing.T) *TestStore {
	t.Helper()

	path := t.TempDir()
	s, err := store.Open(path)
	if err != nil {
		t.Fatalf("failed to open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	return &TestStore{Path: path, Store: s, t: t}
}

// MustPutType registers a type and returns its id.
func (ts *TestStore) MustPutType(name string, kind filter.RecordKind) int64 {
	ts.t.Helper()
	id, err := ts.Store.PutType(name, kind)
	if err != nil {
		ts.t.Fatalf("failed to put type %q: %v", name, err)
	}
	return id
}

// MustPutArtifact inserts an artifact and returns its id.
func (ts *TestStore) MustPutArtifact(a *store.Artifact) int64 {
	ts.t.Helper()
	id, err := ts.Store.PutArtifact(a)
	if err != nil {
		ts.t.Fatalf("failed to put artifact: %v", err)
	}
	return id
}

// MustPutExecution inserts an execution and returns its id.
func (ts *TestStore) MustPutExecution(e *store.Execution) int64 {
	ts.t.Helper()
	id, err := ts.Store.PutExecution(e)
	if err != nil {
		ts.t.Fatalf("failed to put execution: %v", err)
	}
	return id
}

// MustPutContext inserts a context and returns its id.
func (ts *TestStore) MustPutContext(c *store.Context) int64 {
	ts.t.Helper()
	id, err := ts.Store.PutContext(c)
	if err != nil {
		ts.t.Fatalf("failed to put context: %v", err)
	}
	return id
}

// WriteFile writes a file under the store directory, creating parent
// directories as needed. Used to stage manifests for CLI tests.
func (ts *TestStore) WriteFile(relPath, content string) string {
	ts.t.Helper()
	fullPath := filepath.Join(ts.Path, relPath)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		ts.t.Fatalf("failed to create directory for %s: %v", relPath, err)
	}
	if err := os.WriteFile(fullPath, []byte(content), 0644); err != nil {
		ts.t.Fatalf("failed to write file %s: %v", relPath, err)
	}
	return fullPath
}
