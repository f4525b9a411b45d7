package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/relmap/internal/attrs"
	"github.com/roach88/relmap/internal/dberr"
	"github.com/roach88/relmap/internal/dialect"
)

// Supported database/sql driver names.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "pgx"
)

// IDGenerator produces statement IDs for logging.
type IDGenerator interface {
	Generate() string
}

// uuidGenerator generates time-ordered UUIDv7 statement IDs.
type uuidGenerator struct{}

func (uuidGenerator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Options configures Open.
type Options struct {
	// Driver is "sqlite3" (default) or "pgx". "sqlite" and "postgres" are
	// accepted as aliases.
	Driver string

	// DSN is the data source name: a file path for SQLite, a connection
	// URL for Postgres.
	DSN string

	// Pragmas override or extend the default SQLite pragmas. Ignored for
	// other drivers.
	Pragmas map[string]string

	// Dialect overrides the dialect derived from Driver.
	Dialect dialect.Dialect

	// Logger receives statement logs. Nil means slog.Default().
	Logger *slog.Logger

	// IDs generates statement IDs. Nil means UUIDv7.
	IDs IDGenerator
}

// Store executes statements on a database handle.
type Store struct {
	db      *sql.DB
	driver  string
	dialect dialect.Dialect
	logger  *slog.Logger
	ids     IDGenerator
}

// DefaultPragmas returns the pragmas applied to every SQLite database.
func DefaultPragmas() *attrs.Map[string] {
	return attrs.FromMap(map[string]string{
		"journal_mode": "WAL",
		"synchronous":  "NORMAL",
		"busy_timeout": "5000",
		"foreign_keys": "ON",
	})
}

// NormalizeDriver maps a driver name or alias to a supported driver.
func NormalizeDriver(name string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "sqlite", "sqlite3":
		return DriverSQLite, nil
	case "pgx", "postgres", "postgresql":
		return DriverPostgres, nil
	default:
		return "", dberr.Newf(dberr.CodeConfig, "unsupported driver %q: must be sqlite3 or pgx", name)
	}
}

// Open connects to the database described by opts and verifies the
// connection. For SQLite it limits the pool to one connection and applies
// pragmas.
func Open(ctx context.Context, opts Options) (*Store, error) {
	driver, err := NormalizeDriver(opts.Driver)
	if err != nil {
		return nil, err
	}
	if opts.DSN == "" {
		return nil, dberr.New(dberr.CodeConfig, "DSN is required")
	}

	db, err := sql.Open(driver, opts.DSN)
	if err != nil {
		return nil, dberr.Wrap(err, dberr.CodeConfig, "open database")
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, dberr.Wrap(err, dberr.CodeQuery, "connect to database")
	}

	if driver == DriverSQLite {
		// SQLite only supports one writer at a time
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)

		pragmas := DefaultPragmas()
		attrs.Merge[string](pragmas, attrs.FromMap(opts.Pragmas))
		if err := applyPragmas(ctx, db, pragmas); err != nil {
			db.Close()
			return nil, err
		}
	}

	s := NewWithDB(db, driver, opts)
	s.logger.Debug("database opened", "driver", driver, "dialect", s.dialect.Name())
	return s, nil
}

// NewWithDB wraps an existing handle. driver selects the default dialect;
// opts.Driver, opts.DSN and opts.Pragmas are ignored.
func NewWithDB(db *sql.DB, driver string, opts Options) *Store {
	s := &Store{
		db:      db,
		driver:  driver,
		dialect: opts.Dialect,
		logger:  opts.Logger,
		ids:     opts.IDs,
	}
	if s.dialect == nil {
		d, err := dialect.Lookup(driver)
		if err != nil {
			d = dialect.SQLite
		}
		s.dialect = d
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.ids == nil {
		s.ids = uuidGenerator{}
	}
	return s
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying sql.DB for direct queries.
// Use with caution - prefer using Store methods when available.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Driver returns the database/sql driver name.
func (s *Store) Driver() string { return s.driver }

// Dialect returns the dialect statements are rendered and rebound for.
func (s *Store) Dialect() dialect.Dialect { return s.dialect }

// applyPragmas sets SQLite configuration, in sorted pragma order.
func applyPragmas(ctx context.Context, db *sql.DB, pragmas attrs.Store[string]) error {
	for name, value := range pragmas.All() {
		pragma := fmt.Sprintf("PRAGMA %s = %s", name, value)
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return dberr.Wrapf(err, dberr.CodeConfig, "execute %q", pragma)
		}
	}
	return nil
}
