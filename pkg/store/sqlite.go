package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	_ "github.com/glebarez/go-sqlite"
)

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = errors.New("store: not found")

// Querier is satisfied by *sql.DB and *sql.Tx so table functions run inside or
// outside a transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// DB is the handle to the notes database. It is constructed once at process
// start and passed to whatever needs it.
type DB struct {
	conn *sql.DB
	path string
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS notes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		body TEXT NOT NULL DEFAULT '',
		kind TEXT NOT NULL CHECK (kind IN ('note', 'task')),
		created_at_ms INTEGER NOT NULL,
		due_at_ms INTEGER,
		completed INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS media (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		note_id INTEGER NOT NULL REFERENCES notes(id) ON DELETE CASCADE,
		kind TEXT NOT NULL,
		uri TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_media_note_id ON media(note_id)`,
	`CREATE TABLE IF NOT EXISTS reminders (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		note_id INTEGER NOT NULL REFERENCES notes(id) ON DELETE CASCADE,
		fire_at_ms INTEGER NOT NULL,
		active INTEGER NOT NULL DEFAULT 1
	)`,
	`CREATE INDEX IF NOT EXISTS idx_reminders_note_id ON reminders(note_id)`,
	`CREATE INDEX IF NOT EXISTS idx_reminders_fire_at ON reminders(fire_at_ms)`,
}

// Load opens the database named by cfg, loading the config when cfg is nil.
func Load(ctx context.Context, cfg Config) (*DB, error) {
	if cfg == nil {
		var err error
		cfg, err = LoadConfig()
		if err != nil {
			return nil, err
		}
	}
	return Open(ctx, cfg.DatabasePath())
}

// Open opens (creating if needed) the SQLite database at path and migrates it.
func Open(ctx context.Context, path string) (*DB, error) {
	if path == "" {
		return nil, errors.New("store: database path required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("store: ensure database directory: %w", err)
	}
	return open(ctx, "file:"+path, path)
}

// OpenMemory opens a private in-memory database, mostly for tests.
func OpenMemory(ctx context.Context) (*DB, error) {
	return open(ctx, "file::memory:", "")
}

func open(ctx context.Context, name, path string) (*DB, error) {
	q := url.Values{}
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", "busy_timeout(5000)")
	conn, err := sql.Open("sqlite", name+"?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}
	// SQLite has a single writer; one connection also keeps :memory: databases
	// alive for the life of the handle.
	conn.SetMaxOpenConns(1)

	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("store: ping database: %w", err)
	}

	db := &DB{conn: conn, path: path}
	if err := db.migrate(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("store: migrate: %w", err)
	}
	return db, nil
}

// Wrap builds a DB around an existing connection without migrating it.
func Wrap(conn *sql.DB) *DB {
	return &DB{conn: conn}
}

func (d *DB) migrate(ctx context.Context) error {
	if _, err := d.conn.ExecContext(ctx, `PRAGMA foreign_keys = ON`); err != nil {
		return err
	}
	for _, q := range schema {
		if _, err := d.conn.ExecContext(ctx, q); err != nil {
			return err
		}
	}
	return nil
}

// Conn returns the Querier for work outside a transaction.
func (d *DB) Conn() Querier {
	return d.conn
}

// Path is the database file, empty for in-memory databases.
func (d *DB) Path() string {
	return d.path
}

func (d *DB) Close() error {
	return d.conn.Close()
}

// Tx runs fn in a transaction. The transaction commits only if fn returns nil;
// an error or panic rolls every statement back.
func (d *DB) Tx(ctx context.Context, fn func(q Querier) error) (err error) {
	tx, err := d.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("store: commit: %w", err)
	}
	return nil
}
