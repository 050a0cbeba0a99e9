package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// scanEdge scans a row into an Edge. The row must have all 7 columns in standard order.
func scanEdge(scanner interface{ Scan(dest ...any) error }) (Edge, error) {
	var e Edge
	err := scanner.Scan(
		&e.ID, &e.ParentID, &e.ChildID, &e.UniverseID,
		&e.DisplayOrder, &e.CreatedAt, &e.UpdatedAt,
	)
	return e, err
}

const edgeColumns = "id, parent_id, child_id, universe_id, display_order, created_at, updated_at"

// CreateEdge inserts an edge. A nil order appends after the current maximum
// sibling order under the parent. A nil parentID creates a root edge.
// Structural validation (self-loops, cycles) is the engine's job; the table
// constraints are only a second line of defense.
func (s *Store) CreateEdge(ctx context.Context, parentID *string, childID, universeID string, order *int) (Edge, error) {
	var e Edge
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		displayOrder := 0
		if order != nil {
			displayOrder = *order
		} else {
			// IS matches the NULL parent group as well
			row := tx.QueryRowContext(ctx, `
				SELECT COALESCE(MAX(display_order) + 1, 0) FROM edges
				WHERE universe_id = ? AND parent_id IS ?
			`, universeID, parentID)
			if err := row.Scan(&displayOrder); err != nil {
				return fmt.Errorf("finding max sibling order: %w", err)
			}
		}

		now := time.Now().UnixMilli()
		e = Edge{
			ID:           uuid.NewString(),
			ParentID:     parentID,
			ChildID:      childID,
			UniverseID:   universeID,
			DisplayOrder: displayOrder,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO edges (id, parent_id, child_id, universe_id, display_order, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, e.ID, e.ParentID, e.ChildID, e.UniverseID, e.DisplayOrder, e.CreatedAt, e.UpdatedAt)
		if err != nil {
			return fmt.Errorf("creating edge: %w", err)
		}
		return nil
	})
	if err != nil {
		return Edge{}, err
	}
	return e, nil
}

// Children returns the edges under parentID (nil for the root group) of a
// universe, sorted ascending by display_order.
func (s *Store) Children(ctx context.Context, universeID string, parentID *string) ([]Edge, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT `+edgeColumns+` FROM edges
		WHERE universe_id = ? AND parent_id IS ?
		ORDER BY display_order, child_id
	`, universeID, parentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var edges []Edge
	for rows.Next() {
		e, err := scanEdge(rows)
		if err != nil {
			return nil, err
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}

// Parents returns all edges where the given node is the child. In the common
// single-parent case this is 0 or 1 edges.
func (s *Store) Parents(ctx context.Context, childID string) ([]Edge, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT `+edgeColumns+` FROM edges WHERE child_id = ?
	`, childID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var edges []Edge
	for rows.Next() {
		e, err := scanEdge(rows)
		if err != nil {
			return nil, err
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}

// EdgesInUniverse returns all edges of a universe
func (s *Store) EdgesInUniverse(ctx context.Context, universeID string) ([]Edge, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT `+edgeColumns+` FROM edges WHERE universe_id = ?
	`, universeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var edges []Edge
	for rows.Next() {
		e, err := scanEdge(rows)
		if err != nil {
			return nil, err
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}

// DeleteEdge removes the edge between parentID (nil for root) and childID.
// Idempotent: deleting an absent edge is a no-op.
func (s *Store) DeleteEdge(ctx context.Context, parentID *string, childID string) error {
	_, err := s.conn.ExecContext(ctx, `
		DELETE FROM edges WHERE parent_id IS ? AND child_id = ?
	`, parentID, childID)
	if err != nil {
		return fmt.Errorf("deleting edge: %w", err)
	}
	return nil
}

// MoveEdge re-parents a node: every existing parent edge of the node is
// removed and a single new edge inserted at newOrder, in one transaction so
// concurrent readers never observe a half-moved node.
func (s *Store) MoveEdge(ctx context.Context, nodeID string, newParentID *string, universeID string, newOrder int) (Edge, error) {
	var e Edge
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM edges WHERE child_id = ?`, nodeID); err != nil {
			return fmt.Errorf("removing old parent edges: %w", err)
		}
		now := time.Now().UnixMilli()
		e = Edge{
			ID:           uuid.NewString(),
			ParentID:     newParentID,
			ChildID:      nodeID,
			UniverseID:   universeID,
			DisplayOrder: newOrder,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO edges (id, parent_id, child_id, universe_id, display_order, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, e.ID, e.ParentID, e.ChildID, e.UniverseID, e.DisplayOrder, e.CreatedAt, e.UpdatedAt)
		if err != nil {
			return fmt.Errorf("inserting moved edge: %w", err)
		}
		return nil
	})
	if err != nil {
		return Edge{}, err
	}
	return e, nil
}

// ReorderSiblings assigns display_order = index for each child ID in the
// given order, for edges under parentID, in one transaction.
func (s *Store) ReorderSiblings(ctx context.Context, universeID string, parentID *string, orderedChildIDs []string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		now := time.Now().UnixMilli()
		for i, childID := range orderedChildIDs {
			_, err := tx.ExecContext(ctx, `
				UPDATE edges SET display_order = ?, updated_at = ?
				WHERE universe_id = ? AND parent_id IS ? AND child_id = ?
			`, i, now, universeID, parentID, childID)
			if err != nil {
				return fmt.Errorf("reordering edge for %s: %w", childID, err)
			}
		}
		return nil
	})
}

// DeleteAllForNode removes every edge where the node appears as parent or as
// child, plus its progress rows. Idempotent; used on node deletion.
func (s *Store) DeleteAllForNode(ctx context.Context, nodeID string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM edges WHERE parent_id = ? OR child_id = ?
		`, nodeID, nodeID); err != nil {
			return fmt.Errorf("deleting edges for node %s: %w", nodeID, err)
		}
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM progress WHERE node_id = ?
		`, nodeID); err != nil {
			return fmt.Errorf("deleting progress for node %s: %w", nodeID, err)
		}
		return nil
	})
}
