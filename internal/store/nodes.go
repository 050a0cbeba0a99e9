package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// scanNode scans a row into a Node. The row must have all 7 columns in standard order.
func scanNode(scanner interface{ Scan(dest ...any) error }) (Node, error) {
	var n Node
	err := scanner.Scan(
		&n.ID, &n.UniverseID, &n.Title, &n.IsViewable, &n.OwnerID,
		&n.CreatedAt, &n.UpdatedAt,
	)
	return n, err
}

const nodeColumns = "id, universe_id, title, is_viewable, owner_id, created_at, updated_at"

// CreateNodeOpts holds optional fields for node creation
type CreateNodeOpts struct {
	ID         string // minted when empty
	IsViewable bool
	OwnerID    string
}

// CreateNode inserts a node and returns it.
func (s *Store) CreateNode(ctx context.Context, title, universeID string, opts CreateNodeOpts) (Node, error) {
	id := opts.ID
	if id == "" {
		id = uuid.NewString()
	}
	now := time.Now().UnixMilli()
	n := Node{
		ID:         id,
		UniverseID: universeID,
		Title:      title,
		IsViewable: opts.IsViewable,
		OwnerID:    opts.OwnerID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO nodes (id, universe_id, title, is_viewable, owner_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, n.ID, n.UniverseID, n.Title, n.IsViewable, n.OwnerID, n.CreatedAt, n.UpdatedAt)
	if err != nil {
		return Node{}, fmt.Errorf("creating node: %w", err)
	}
	return n, nil
}

// GetNode returns a single node by ID, or nil if not found
func (s *Store) GetNode(ctx context.Context, id string) (*Node, error) {
	row := s.conn.QueryRowContext(ctx, `
		SELECT `+nodeColumns+` FROM nodes WHERE id = ?
	`, id)

	n, err := scanNode(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// NodesInUniverse returns all nodes of a universe
func (s *Store) NodesInUniverse(ctx context.Context, universeID string) ([]Node, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT `+nodeColumns+` FROM nodes WHERE universe_id = ? ORDER BY created_at
	`, universeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var nodes []Node
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, rows.Err()
}

// SearchByIDPrefix finds nodes whose ID starts with the given prefix.
func (s *Store) SearchByIDPrefix(ctx context.Context, prefix string, limit int) ([]Node, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT `+nodeColumns+` FROM nodes WHERE id LIKE ? LIMIT ?
	`, prefix+"%", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var nodes []Node
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, rows.Err()
}

// SearchByTitle finds nodes whose title contains the given text (case-insensitive).
func (s *Store) SearchByTitle(ctx context.Context, text string, limit int) ([]Node, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT `+nodeColumns+` FROM nodes WHERE title LIKE ? COLLATE NOCASE LIMIT ?
	`, "%"+text+"%", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var nodes []Node
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, rows.Err()
}

// DeleteNode removes a node. Edges referencing it (as parent or child) and
// its progress rows are cascade-deleted by SQLite. Idempotent.
func (s *Store) DeleteNode(ctx context.Context, id string) error {
	if _, err := s.conn.ExecContext(ctx, `DELETE FROM nodes WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting node %s: %w", id, err)
	}
	return nil
}
