package store

import (
	"context"
	"path/filepath"
	"testing"
)

// createTestStore creates a new file-backed store with the schema applied.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(context.Background(), path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	if err := EnsureSchema(context.Background(), s); err != nil {
		t.Fatalf("EnsureSchema() failed: %v", err)
	}
	return s
}

// insertTestProduct inserts a minimal product row.
func insertTestProduct(t *testing.T, s *Store, id string) {
	t.Helper()
	_, err := s.ExecContext(context.Background(), `
		INSERT INTO products (id, name, price, category, images, sizes, colors)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, id, "Product "+id, "10.00", "Basics", `["https://example.com/a.jpg"]`, `["M"]`, `["White"]`)
	if err != nil {
		t.Fatalf("insert product %s: %v", id, err)
	}
}
