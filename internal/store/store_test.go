package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/roach88/relmap/internal/dberr"
	"github.com/roach88/relmap/internal/dialect"
)

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(context.Background(), Options{DSN: path, Logger: discardLogger()})
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	// Verify file was created
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
	if s.Driver() != DriverSQLite {
		t.Errorf("Driver() = %q, want %q", s.Driver(), DriverSQLite)
	}
	if s.Dialect() != dialect.SQLite {
		t.Errorf("Dialect() = %s, want sqlite", s.Dialect().Name())
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	for i := 0; i < 3; i++ {
		s, err := Open(context.Background(), Options{DSN: path, Logger: discardLogger()})
		if err != nil {
			t.Fatalf("Open() iteration %d failed: %v", i, err)
		}
		s.Close()
	}
}

func TestOpen_InvalidPath(t *testing.T) {
	// Try to open in non-existent directory
	_, err := Open(context.Background(), Options{DSN: "/nonexistent/dir/test.db", Logger: discardLogger()})
	if err == nil {
		t.Error("expected error for invalid path, got nil")
	}
}

func TestOpen_ConfigErrors(t *testing.T) {
	_, err := Open(context.Background(), Options{Driver: "oracle", DSN: "x"})
	if !dberr.IsCode(err, dberr.CodeConfig) {
		t.Errorf("unknown driver: got %v, want CONFIG error", err)
	}

	_, err = Open(context.Background(), Options{})
	if !dberr.IsCode(err, dberr.CodeConfig) {
		t.Errorf("empty DSN: got %v, want CONFIG error", err)
	}
}

func TestOpen_PostgresUnreachable(t *testing.T) {
	_, err := Open(context.Background(), Options{
		Driver: "postgres",
		DSN:    "postgres://relmap@127.0.0.1:1/relmap?connect_timeout=2",
		Logger: discardLogger(),
	})
	if err == nil {
		t.Fatal("expected connection error, got nil")
	}
	if !dberr.IsCode(err, dberr.CodeQuery) {
		t.Errorf("got %v, want QUERY error", err)
	}
}

func TestNormalizeDriver(t *testing.T) {
	tests := map[string]string{
		"":           DriverSQLite,
		"sqlite":     DriverSQLite,
		"SQLite3":    DriverSQLite,
		"pgx":        DriverPostgres,
		"postgres":   DriverPostgres,
		"postgresql": DriverPostgres,
	}
	for in, want := range tests {
		got, err := NormalizeDriver(in)
		if err != nil {
			t.Errorf("NormalizeDriver(%q) failed: %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("NormalizeDriver(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestClose_NilDB(t *testing.T) {
	s := &Store{db: nil}
	if err := s.Close(); err != nil {
		t.Errorf("Close() on nil db should not error: %v", err)
	}
}

func TestDB_ReturnsUnderlyingConnection(t *testing.T) {
	s := createTestStore(t)

	db := s.DB()
	if db == nil {
		t.Fatal("DB() returned nil")
	}
	if err := db.Ping(); err != nil {
		t.Errorf("DB() connection not usable: %v", err)
	}
}

// Pragma tests

func TestPragma_Defaults(t *testing.T) {
	s := createTestStore(t)

	tests := []struct {
		name, want string
	}{
		{"journal_mode", "wal"},
		{"synchronous", "1"}, // NORMAL = 1
		{"busy_timeout", "5000"},
		{"foreign_keys", "1"}, // ON = 1
	}
	for _, tt := range tests {
		if err := s.verifyPragma(tt.name, tt.want); err != nil {
			t.Error(err)
		}
	}
}

func TestPragma_Override(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(context.Background(), Options{
		DSN:     path,
		Pragmas: map[string]string{"busy_timeout": "1234"},
		Logger:  discardLogger(),
	})
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if err := s.verifyPragma("busy_timeout", "1234"); err != nil {
		t.Error(err)
	}
	if err := s.verifyPragma("journal_mode", "wal"); err != nil {
		t.Error(err)
	}
}

func TestPragma_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	_, err := Open(context.Background(), Options{
		DSN:     path,
		Pragmas: map[string]string{"busy_timeout": "'; nope"},
		Logger:  discardLogger(),
	})
	if !dberr.IsCode(err, dberr.CodeConfig) {
		t.Errorf("got %v, want CONFIG error", err)
	}
}

func TestDefaultPragmas_Sorted(t *testing.T) {
	var names []string
	for name := range DefaultPragmas().All() {
		names = append(names, name)
	}
	want := []string{"busy_timeout", "foreign_keys", "journal_mode", "synchronous"}
	if len(names) != len(want) {
		t.Fatalf("got %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("pragma %d = %q, want %q", i, names[i], want[i])
		}
	}
}
