package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("store: not found")

// Store owns the database handle and hands out repositories.
type Store struct {
	db  *sql.DB
	drv *entsql.Driver
	seq *sequenceCounter
}

// Open creates a new Store connected to the SQLite database at dsn.
// It applies recommended pragmas and runs auto-migration.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// Pragmas are per connection; a single connection keeps them in force.
	db.SetMaxOpenConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	drv := entsql.OpenDB(dialect.SQLite, db)
	if err := migrate(context.Background(), drv); err != nil {
		drv.Close()
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}

	seq, err := newSequenceCounter(context.Background(), db)
	if err != nil {
		drv.Close()
		return nil, err
	}

	return &Store{db: db, drv: drv, seq: seq}, nil
}

// OpenMemory opens a private in-memory database. Stores opened with the
// same name share data until the last one is closed.
func OpenMemory(name string) (*Store, error) {
	return Open("file:" + name + "?mode=memory&cache=shared")
}

func migrate(ctx context.Context, drv dialect.Driver) error {
	m, err := schema.NewMigrate(drv, schema.WithDropIndex(true))
	if err != nil {
		return err
	}
	return m.Create(ctx, Tables...)
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.drv.Close()
}

// AssessmentRepo returns an AssessmentRepo backed by this store.
func (s *Store) AssessmentRepo() AssessmentRepo {
	return &assessmentRepo{db: s.db}
}

// EventRepo returns an EventRepo backed by this store.
func (s *Store) EventRepo() EventRepo {
	return &eventRepo{db: s.db, seq: s.seq}
}

// BankRepo returns a BankRepo backed by this store.
func (s *Store) BankRepo() BankRepo {
	return &bankRepo{db: s.db}
}

// SurveyRepo returns a SurveyRepo backed by this store.
func (s *Store) SurveyRepo() SurveyRepo {
	return &surveyRepo{db: s.db}
}

// UserRepo returns a UserRepo backed by this store.
func (s *Store) UserRepo() UserRepo {
	return &userRepo{db: s.db}
}

// applyPragmas configures SQLite for optimal single-user performance.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// DefaultDBPath resolves the database file path in priority order:
// 1. ODMAT_DB environment variable
// 2. $XDG_DATA_HOME/odmat/odmat.db
// 3. ~/.local/share/odmat/odmat.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("ODMAT_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "odmat", "odmat.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}

// sqlite is the query builder for every repository in this package.
var sqlite = entsql.Dialect(dialect.SQLite)

// queryRows runs a built selector and hands each row to scan.
func queryRows(ctx context.Context, db *sql.DB, sel *entsql.Selector, scan func(*sql.Rows) error) error {
	query, args := sel.Query()
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

// execBuilder runs an insert, update or delete builder.
func execBuilder(ctx context.Context, db *sql.DB, b entsql.Querier) (sql.Result, error) {
	query, args := b.Query()
	return db.ExecContext(ctx, query, args...)
}
