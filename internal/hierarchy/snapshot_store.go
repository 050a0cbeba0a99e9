package hierarchy

import (
	"context"

	"lorebook/trellis/internal/store"
)

// SnapshotFromStore loads one universe's structure from the database.
func SnapshotFromStore(ctx context.Context, st *store.Store, universeID string) (*Snapshot, error) {
	dbNodes, err := st.NodesInUniverse(ctx, universeID)
	if err != nil {
		return nil, err
	}
	dbEdges, err := st.EdgesInUniverse(ctx, universeID)
	if err != nil {
		return nil, err
	}

	nodes := make([]Node, 0, len(dbNodes))
	for _, n := range dbNodes {
		nodes = append(nodes, Node{
			ID:         n.ID,
			UniverseID: n.UniverseID,
			Title:      n.Title,
			IsViewable: n.IsViewable,
			OwnerID:    n.OwnerID,
		})
	}

	edges := make([]Edge, 0, len(dbEdges))
	for _, e := range dbEdges {
		var parentID *string
		if e.ParentID != nil {
			p := *e.ParentID
			parentID = &p
		}
		edges = append(edges, Edge{
			ParentID:     parentID,
			ChildID:      e.ChildID,
			UniverseID:   e.UniverseID,
			DisplayOrder: e.DisplayOrder,
		})
	}

	return NewSnapshot(nodes, edges), nil
}
