package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS nodes (
	id TEXT PRIMARY KEY,
	universe_id TEXT NOT NULL,
	title TEXT NOT NULL,
	is_viewable BOOLEAN NOT NULL DEFAULT FALSE,
	owner_id TEXT NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS edges (
	id TEXT PRIMARY KEY,
	parent_id TEXT DEFAULT NULL REFERENCES nodes (id) ON DELETE CASCADE,
	child_id TEXT NOT NULL REFERENCES nodes (id) ON DELETE CASCADE,
	universe_id TEXT NOT NULL,
	display_order INTEGER NOT NULL DEFAULT 0,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL,

	CHECK (child_id != parent_id),
	UNIQUE (universe_id, parent_id, child_id)
);

CREATE TABLE IF NOT EXISTS progress (
	user_id TEXT NOT NULL,
	node_id TEXT NOT NULL REFERENCES nodes (id) ON DELETE CASCADE,
	universe_id TEXT NOT NULL,
	progress INTEGER NOT NULL DEFAULT 0,
	updated_at INTEGER NOT NULL,

	PRIMARY KEY (user_id, node_id)
);

CREATE INDEX IF NOT EXISTS idx_edges_parent ON edges (universe_id, parent_id, display_order);
CREATE INDEX IF NOT EXISTS idx_edges_child ON edges (child_id);
CREATE INDEX IF NOT EXISTS idx_nodes_universe ON nodes (universe_id);
`

// Store wraps a SQLite database connection
type Store struct {
	conn *sql.DB
	Path string
}

// Open opens a SQLite database with WAL mode and foreign keys enabled,
// creating the schema if it does not exist yet.
func Open(path string) (*Store, error) {
	// DSN pragmas apply to every pooled connection; foreign keys drive the
	// ON DELETE CASCADE from nodes to edges and progress.
	dsn := "file:" + path + "?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{conn: conn, Path: path}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.conn.Close()
}

// Conn returns the underlying sql.DB for custom queries
func (s *Store) Conn() *sql.DB {
	return s.conn
}

// inTx runs fn inside a transaction, rolling back on any error.
func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}
