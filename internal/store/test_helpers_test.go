package store

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/roach88/relmap/internal/schema"
	"github.com/roach88/relmap/internal/testutil"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// createTestStore creates a new SQLite store in a temp directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(context.Background(), Options{
		DSN:    path,
		Logger: discardLogger(),
		IDs:    testutil.NewSequenceIDGenerator("q"),
	})
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// verifyPragma checks that a pragma is set to the expected value.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}

// accountsRelation is the relation most store tests run against.
func accountsRelation() *schema.Relation {
	return &schema.Relation{
		Name: "accounts",
		Fields: []schema.Field{
			{Name: "id", Type: schema.TypeInt, PrimaryKey: true},
			{Name: "email", Type: schema.TypeString},
			{Name: "displayName", Column: "display_name", Type: schema.TypeString, Nullable: true},
			{Name: "active", Type: schema.TypeBool},
			{Name: "created", Column: "created_at", Type: schema.TypeTime},
		},
		Indexes: []schema.IndexDef{
			{Name: "accounts_email", Columns: []string{"email"}, Unique: true},
		},
	}
}
