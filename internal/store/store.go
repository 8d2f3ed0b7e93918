package store

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/opql/internal/metadata"
)

// Memory is the path of a private in-memory database.
const Memory = ":memory:"

// Store is a SQLite database holding fixture rows for catalog classes.
type Store struct {
	db *sql.DB
}

// Open creates or opens a fixture database at path.
//
// Settings travel in the go-sqlite3 DSN so they hold on every connection:
//   - foreign_keys=ON
//   - busy_timeout=5000
//   - journal_mode=WAL and synchronous=NORMAL, for file databases only
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// An in-memory database lives as long as its connection, so the pool
	// holds exactly one.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	return &Store{db: db}, nil
}

// OpenCatalog opens a fresh in-memory database with a table per catalog
// class and loads fixtures into it. The caller closes the store.
func OpenCatalog(ctx context.Context, catalog *metadata.Catalog, fixtures Fixtures) (*Store, error) {
	s, err := Open(Memory)
	if err != nil {
		return nil, err
	}
	if err := s.ApplyCatalog(ctx, catalog); err != nil {
		s.Close()
		return nil, err
	}
	if err := s.Seed(ctx, catalog, fixtures); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying sql.DB for direct queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

func dsn(path string) string {
	params := url.Values{}
	params.Set("_foreign_keys", "on")
	params.Set("_busy_timeout", "5000")
	if path != Memory {
		params.Set("_journal_mode", "WAL")
		params.Set("_synchronous", "NORMAL")
	}
	return path + "?" + params.Encode()
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	if err := s.db.QueryRow("PRAGMA " + name).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
