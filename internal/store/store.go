package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"  // PostgreSQL driver
	_ "modernc.org/sqlite" // SQLite driver
)

// Supported driver names.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Connection pool defaults for PostgreSQL.
const (
	defaultMaxOpenConns    = 10
	defaultMaxIdleConns    = 2
	defaultConnMaxLifetime = 5 * time.Minute
	defaultPingTimeout     = 5 * time.Second
)

func init() {
	// modernc registers itself as "sqlite", which sqlx does not know.
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

// Store is a SQL-backed course content store.
type Store struct {
	db *sqlx.DB
}

// Options configures Open.
type Options struct {
	// Driver is DriverSQLite or DriverPostgres.
	Driver string

	// DSN is a file path for SQLite or a connection string for PostgreSQL.
	DSN string

	// EnableWAL turns on write-ahead logging for SQLite.
	EnableWAL bool
}

// DefaultOptions returns SQLite options for the database file at path.
func DefaultOptions(path string) Options {
	return Options{
		Driver:    DriverSQLite,
		DSN:       path,
		EnableWAL: true,
	}
}

// Open connects to the database and creates the schema if needed.
func Open(ctx context.Context, opts Options) (*Store, error) {
	var (
		db  *sqlx.DB
		err error
	)

	switch opts.Driver {
	case DriverSQLite, "":
		db, err = openSQLite(ctx, opts)
	case DriverPostgres:
		db, err = openPostgres(ctx, opts)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, opts.Driver)
	}
	if err != nil {
		return nil, err
	}

	s := New(db)
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close() //nolint:errcheck // already failing
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return s, nil
}

func openSQLite(ctx context.Context, opts Options) (*sqlx.DB, error) {
	dsn := opts.DSN
	if dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
		if err := os.MkdirAll(filepath.Dir(dsn), 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		dsn += "?mode=rwc"
	}

	db, err := sqlx.Open(DriverSQLite, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer; a single connection also keeps an
	// in-memory database alive across queries.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if opts.EnableWAL && dsn != ":memory:" {
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close() //nolint:errcheck // already failing
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close() //nolint:errcheck // already failing
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

func openPostgres(ctx context.Context, opts Options) (*sqlx.DB, error) {
	db, err := sqlx.Open(DriverPostgres, opts.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(defaultMaxOpenConns)
	db.SetMaxIdleConns(defaultMaxIdleConns)
	db.SetConnMaxLifetime(defaultConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, defaultPingTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close() //nolint:errcheck // already failing
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// New wraps an open database. The schema is not created; call Migrate.
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// schema is valid for both SQLite and PostgreSQL.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS courses (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		imported_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS sections (
		course_id TEXT NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
		id TEXT NOT NULL,
		title TEXT NOT NULL,
		position INTEGER NOT NULL,
		PRIMARY KEY (course_id, id)
	)`,
	`CREATE TABLE IF NOT EXISTS items (
		course_id TEXT NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
		id TEXT NOT NULL,
		section_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		name TEXT NOT NULL,
		module_type TEXT NOT NULL,
		visible BOOLEAN NOT NULL,
		instance_id TEXT NOT NULL,
		PRIMARY KEY (course_id, id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_items_section ON items(course_id, section_id)`,
	`CREATE TABLE IF NOT EXISTS instances (
		module_type TEXT NOT NULL,
		id TEXT NOT NULL,
		PRIMARY KEY (module_type, id)
	)`,
	`CREATE TABLE IF NOT EXISTS instance_fields (
		module_type TEXT NOT NULL,
		instance_id TEXT NOT NULL,
		name TEXT NOT NULL,
		value TEXT NOT NULL,
		format TEXT NOT NULL,
		position INTEGER NOT NULL,
		PRIMARY KEY (module_type, instance_id, name)
	)`,
}

// Migrate creates the tables if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// timestampFormats are tried in order when reading stored timestamps.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// parseTimestamp returns the zero time if s matches no known format.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
