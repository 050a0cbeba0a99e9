package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// clamp bounds a progress value to [0, 100]. Applied on both write and read
// to tolerate malformed rows.
func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// SetProgress upserts the stored completion value for (userID, nodeID),
// clamped to [0, 100].
func (s *Store) SetProgress(ctx context.Context, userID, nodeID, universeID string, value int) error {
	now := time.Now().UnixMilli()
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO progress (user_id, node_id, universe_id, progress, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id, node_id)
		DO UPDATE SET progress = excluded.progress, updated_at = excluded.updated_at
	`, userID, nodeID, universeID, clamp(value), now)
	if err != nil {
		return fmt.Errorf("setting progress for %s on %s: %w", userID, nodeID, err)
	}
	return nil
}

// GetProgress returns the stored value for (userID, nodeID) and whether a row
// exists. Missing rows read as 0.
func (s *Store) GetProgress(ctx context.Context, userID, nodeID string) (int, bool, error) {
	row := s.conn.QueryRowContext(ctx, `
		SELECT progress FROM progress WHERE user_id = ? AND node_id = ?
	`, userID, nodeID)

	var v int
	err := row.Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return clamp(v), true, nil
}

// ProgressForUser returns all stored leaf rows of a user within a universe.
func (s *Store) ProgressForUser(ctx context.Context, userID, universeID string) ([]LeafProgress, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT user_id, node_id, universe_id, progress, updated_at FROM progress
		WHERE user_id = ? AND universe_id = ?
	`, userID, universeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var values []LeafProgress
	for rows.Next() {
		var p LeafProgress
		if err := rows.Scan(&p.UserID, &p.NodeID, &p.UniverseID, &p.Progress, &p.UpdatedAt); err != nil {
			return nil, err
		}
		p.Progress = clamp(p.Progress)
		values = append(values, p)
	}
	return values, rows.Err()
}
