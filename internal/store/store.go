// Package store implements persistence on SQLite.
//
// Store owns the connection pool; every operation's reads and writes run
// through Store.Tx so the credential check, validation predicates, and
// mutations of one request share a single transaction. The repositories
// (Accounts, Posts, Pages) are handles bound to that transaction.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// Store wraps the SQLite connection pool.
type Store struct {
	conn *sql.DB
}

// Open opens (or creates) the database at path, configures it, and runs
// migrations. Use ":memory:" for tests.
func Open(path string) (*Store, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: opening database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: pinging database: %w", err)
	}

	// The pragmas below apply per connection, and each ":memory:"
	// connection would be a separate database, so the pool stays at one.
	// SQLite serializes writers anyway.
	conn.SetMaxOpenConns(1)

	// WAL keeps reads concurrent with writes; foreign keys are off by
	// default in SQLite and posts reference accounts.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: setting WAL mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: enabling foreign keys: %w", err)
	}

	s := &Store{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: running migrations: %w", err)
	}
	return s, nil
}

// Close closes the connection pool.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Tx runs fn inside one transaction. Any error (or panic) rolls back every
// write performed within fn; otherwise the transaction commits. This is the
// atomic unit every resource operation wraps itself in.
func (s *Store) Tx(ctx context.Context, fn func(tx *Tx) error) (err error) {
	sqlTx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: beginning transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			sqlTx.Rollback()
			panic(p)
		}
	}()

	if err := fn(&Tx{tx: sqlTx}); err != nil {
		sqlTx.Rollback()
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("store: committing transaction: %w", err)
	}
	return nil
}

// Tx is a live transaction handle. Repositories obtained from it issue all
// their statements on the same underlying transaction.
type Tx struct {
	tx *sql.Tx
}

// Accounts returns the account repository bound to this transaction.
func (t *Tx) Accounts() *AccountStore {
	return &AccountStore{q: t.tx}
}

// Posts returns the blog-post repository bound to this transaction.
func (t *Tx) Posts() *PostStore {
	return &PostStore{q: t.tx}
}

// Pages returns the info-page repository bound to this transaction.
func (t *Tx) Pages() *PageStore {
	return &PageStore{q: t.tx}
}

// querier is the subset of sql.Tx the repositories use.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Store) migrate() error {
	_, err := s.conn.Exec(`
		CREATE TABLE IF NOT EXISTS accounts (
			id                 INTEGER PRIMARY KEY AUTOINCREMENT,
			email              TEXT NOT NULL COLLATE NOCASE UNIQUE,
			password_hash      TEXT NOT NULL DEFAULT '',
			reset_key_hash     TEXT NOT NULL DEFAULT '',
			given_name         TEXT NOT NULL DEFAULT '',
			family_name        TEXT NOT NULL DEFAULT '',
			given_name_fold    TEXT NOT NULL DEFAULT '',
			family_name_fold   TEXT NOT NULL DEFAULT '',
			active             INTEGER NOT NULL DEFAULT 1,
			authorized_to_blog INTEGER NOT NULL DEFAULT 0,
			admin              INTEGER NOT NULL DEFAULT 0,
			created_at         DATETIME NOT NULL,
			updated_at         DATETIME NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("creating accounts table: %w", err)
	}

	_, err = s.conn.Exec(`
		CREATE TABLE IF NOT EXISTS posts (
			id         TEXT PRIMARY KEY,
			title      TEXT NOT NULL,
			title_fold TEXT NOT NULL DEFAULT '',
			author_id  INTEGER NOT NULL REFERENCES accounts(id),
			body       TEXT NOT NULL DEFAULT '',
			preview    TEXT NOT NULL DEFAULT '',
			posted_at  DATETIME NOT NULL,
			active     INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_posts_posted_at ON posts(posted_at);
		CREATE INDEX IF NOT EXISTS idx_posts_author_id ON posts(author_id);
	`)
	if err != nil {
		return fmt.Errorf("creating posts table: %w", err)
	}

	_, err = s.conn.Exec(`
		CREATE TABLE IF NOT EXISTS pages (
			id         TEXT PRIMARY KEY,
			title      TEXT NOT NULL DEFAULT '',
			body       TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("creating pages table: %w", err)
	}

	return nil
}

// isUniqueViolation reports whether err is a SQLite UNIQUE constraint
// failure. The pure-Go driver exposes no typed error for this, so we match
// the constraint message.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// likePattern builds a partial-match LIKE pattern from user input, escaping
// the LIKE metacharacters. Pair with ESCAPE '\' in the query.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}
