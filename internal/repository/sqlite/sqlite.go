// Package sqlite implements the repository interfaces on an embedded SQLite
// database. It backs local development (STORE=sqlite) and the repository tests,
// which run against ":memory:".
//
// modernc.org/sqlite is a pure Go translation of SQLite, so no C toolchain is
// needed to build or cross-compile the server.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/rejaka/portfolio/internal/repository"
)

var _ repository.Store = (*DB)(nil)

// DB wraps a sql.DB connection pool and provides repository methods.
type DB struct {
	conn *sql.DB
}

// New opens the database at dbPath and runs migrations.
//
// dbPath examples:
//   - "data/rejaka.db" → file-based database (persistent)
//   - ":memory:"       → in-memory database (tests)
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Every pooled connection to ":memory:" would otherwise get its own empty database.
	if dbPath == ":memory:" {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets readers proceed while a write is in progress.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the tables if they don't exist yet. Every statement is
// idempotent, so this runs on every start.
func (db *DB) migrate() error {
	// users: one row per external identity. Identities from different
	// providers never collide because the key includes the provider.
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			provider   TEXT NOT NULL,
			user_id    TEXT NOT NULL,
			username   TEXT NOT NULL,
			email      TEXT NOT NULL DEFAULT '',
			avatar     TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (provider, user_id)
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS guestbook (
			id              TEXT PRIMARY KEY,
			author_user_id  TEXT NOT NULL,
			author_provider TEXT NOT NULL,
			author_username TEXT NOT NULL,
			author_avatar   TEXT NOT NULL DEFAULT '',
			message         TEXT NOT NULL,
			created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_guestbook_created_at ON guestbook(created_at);
	`)
	if err != nil {
		return fmt.Errorf("creating guestbook table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS comments (
			id              TEXT PRIMARY KEY,
			post_slug       TEXT NOT NULL,
			author_user_id  TEXT NOT NULL,
			author_provider TEXT NOT NULL,
			author_username TEXT NOT NULL,
			author_avatar   TEXT NOT NULL DEFAULT '',
			content         TEXT NOT NULL,
			created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_comments_post_slug ON comments(post_slug, created_at);

		CREATE TABLE IF NOT EXISTS likes (
			post_slug  TEXT NOT NULL,
			provider   TEXT NOT NULL,
			user_id    TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (post_slug, provider, user_id)
		);
	`)
	if err != nil {
		return fmt.Errorf("creating comments and likes tables: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS registrations (
			id          TEXT PRIMARY KEY,
			code        TEXT NOT NULL UNIQUE,
			name        TEXT NOT NULL,
			email       TEXT NOT NULL UNIQUE,
			institution TEXT NOT NULL DEFAULT '',
			created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating registrations table: %w", err)
	}

	return nil
}

// isUniqueViolation reports whether err is a UNIQUE/PRIMARY KEY constraint
// failure on table.column, e.g. isUniqueViolation(err, "registrations.email").
// An empty column matches any unique failure.
func isUniqueViolation(err error, column string) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	switch sqliteErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
	default:
		return false
	}
	// Message shape: "constraint failed: UNIQUE constraint failed: registrations.email (2067)"
	return column == "" || strings.Contains(sqliteErr.Error(), column)
}
