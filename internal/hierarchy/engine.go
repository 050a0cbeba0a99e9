package hierarchy

import (
	"context"
	"fmt"
	"sync"

	"lorebook/trellis/internal/store"
)

// Engine owns edge and leaf-progress lifecycle rules over the store. It is
// the only component that validates or mutates them; node identity belongs to
// the surrounding CRUD layer.
//
// Structural mutations serialize per universe so a check-then-act sequence
// (cycle check, then insert) can never race another mutation of the same
// universe into a cycle. Unrelated universes stay independent. Reads take a
// snapshot and never hold a lock.
type Engine struct {
	store *store.Store

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates an Engine over an open store.
func New(st *store.Store) *Engine {
	return &Engine{
		store: st,
		locks: make(map[string]*sync.Mutex),
	}
}

// Store returns the underlying store for plain node reads.
func (e *Engine) Store() *store.Store {
	return e.store
}

func (e *Engine) universeLock(universeID string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.locks[universeID]
	if !ok {
		l = &sync.Mutex{}
		e.locks[universeID] = l
	}
	return l
}

// storeParents adapts the edge store to the guard's upward walk.
func (e *Engine) storeParents(ctx context.Context) parentsFn {
	return func(id string) ([]string, error) {
		edges, err := e.store.Parents(ctx, id)
		if err != nil {
			return nil, err
		}
		var ids []string
		for _, edge := range edges {
			if edge.ParentID != nil {
				ids = append(ids, *edge.ParentID)
			}
		}
		return ids, nil
	}
}

// checkEndpoint verifies an edge endpoint exists and belongs to the universe.
func (e *Engine) checkEndpoint(ctx context.Context, id, universeID, role string) (*store.Node, error) {
	node, err := e.store.GetNode(ctx, id)
	if err != nil {
		return nil, err
	}
	if node == nil {
		return nil, fmt.Errorf("%s node %s: %w", role, id, ErrInvalidEdge)
	}
	if node.UniverseID != universeID {
		return nil, fmt.Errorf("%s node %s belongs to universe %s, not %s: %w",
			role, id, node.UniverseID, universeID, ErrInvalidEdge)
	}
	return node, nil
}

// CreateEdge attaches childID under parentID (nil for a root edge) in a
// universe. A nil order appends after the current maximum sibling order.
// Returns ErrInvalidEdge for self-parenting or unknown endpoints and
// ErrCyclicEdge when the ancestor walk rejects the edge.
func (e *Engine) CreateEdge(ctx context.Context, parentID *string, childID, universeID string, order *int) (store.Edge, error) {
	lock := e.universeLock(universeID)
	lock.Lock()
	defer lock.Unlock()

	if parentID != nil && *parentID == childID {
		return store.Edge{}, fmt.Errorf("node %s cannot parent itself: %w", childID, ErrInvalidEdge)
	}
	if _, err := e.checkEndpoint(ctx, childID, universeID, "child"); err != nil {
		return store.Edge{}, err
	}
	if parentID != nil {
		if _, err := e.checkEndpoint(ctx, *parentID, universeID, "parent"); err != nil {
			return store.Edge{}, err
		}
		cyclic, err := wouldCreateCycle(*parentID, childID, e.storeParents(ctx))
		if err != nil {
			return store.Edge{}, fmt.Errorf("walking ancestors: %w", err)
		}
		if cyclic {
			return store.Edge{}, fmt.Errorf("%s under %s: %w", childID, *parentID, ErrCyclicEdge)
		}
	}

	return e.store.CreateEdge(ctx, parentID, childID, universeID, order)
}

// DeleteEdge unlinks childID from parentID (nil for a root edge). Idempotent.
func (e *Engine) DeleteEdge(ctx context.Context, universeID string, parentID *string, childID string) error {
	lock := e.universeLock(universeID)
	lock.Lock()
	defer lock.Unlock()

	return e.store.DeleteEdge(ctx, parentID, childID)
}

// MoveNode re-parents nodeID under newParentID (nil re-roots it) at newOrder.
// The cycle guard runs first; on rejection the prior edge is untouched. The
// delete-and-insert runs in one store transaction, so readers never observe a
// half-moved node.
func (e *Engine) MoveNode(ctx context.Context, nodeID string, newParentID *string, universeID string, newOrder int) (store.Edge, error) {
	lock := e.universeLock(universeID)
	lock.Lock()
	defer lock.Unlock()

	node, err := e.store.GetNode(ctx, nodeID)
	if err != nil {
		return store.Edge{}, err
	}
	if node == nil {
		return store.Edge{}, fmt.Errorf("node %s: %w", nodeID, ErrNotFound)
	}
	if node.UniverseID != universeID {
		return store.Edge{}, fmt.Errorf("node %s belongs to universe %s, not %s: %w",
			nodeID, node.UniverseID, universeID, ErrInvalidEdge)
	}

	if newParentID != nil {
		if *newParentID == nodeID {
			return store.Edge{}, fmt.Errorf("node %s cannot parent itself: %w", nodeID, ErrInvalidEdge)
		}
		if _, err := e.checkEndpoint(ctx, *newParentID, universeID, "parent"); err != nil {
			return store.Edge{}, err
		}
		cyclic, err := wouldCreateCycle(*newParentID, nodeID, e.storeParents(ctx))
		if err != nil {
			return store.Edge{}, fmt.Errorf("walking ancestors: %w", err)
		}
		if cyclic {
			return store.Edge{}, fmt.Errorf("%s under %s: %w", nodeID, *newParentID, ErrCyclicEdge)
		}
	}

	return e.store.MoveEdge(ctx, nodeID, newParentID, universeID, newOrder)
}

// ReorderSiblings rewrites display orders under one parent to match the given
// child order (index becomes the order). The parent is unchanged, so there is
// no cycle risk. Returns ErrNotFound if an id has no edge under that parent.
func (e *Engine) ReorderSiblings(ctx context.Context, universeID string, parentID *string, orderedChildIDs []string) error {
	lock := e.universeLock(universeID)
	lock.Lock()
	defer lock.Unlock()

	existing, err := e.store.Children(ctx, universeID, parentID)
	if err != nil {
		return err
	}
	present := make(map[string]bool, len(existing))
	for _, edge := range existing {
		present[edge.ChildID] = true
	}
	for _, id := range orderedChildIDs {
		if !present[id] {
			return fmt.Errorf("no edge for node %s under that parent: %w", id, ErrNotFound)
		}
	}

	return e.store.ReorderSiblings(ctx, universeID, parentID, orderedChildIDs)
}

// SetUserProgress upserts a user's stored completion for a viewable node,
// clamped to [0, 100]. Independent per (user, node); takes no universe lock.
func (e *Engine) SetUserProgress(ctx context.Context, userID, nodeID string, value int) error {
	node, err := e.store.GetNode(ctx, nodeID)
	if err != nil {
		return err
	}
	if node == nil {
		return fmt.Errorf("node %s: %w", nodeID, ErrNotFound)
	}
	if !node.IsViewable {
		return fmt.Errorf("node %s: %w", nodeID, ErrNotViewable)
	}
	return e.store.SetProgress(ctx, userID, nodeID, node.UniverseID, Clamp(value))
}

// DeleteAllForNode removes every edge referencing the node as parent or child
// plus its progress rows; called when the surrounding layer deletes a node.
// Former children are left unattached rather than silently re-parented; the
// builder omits them until they are re-linked. Idempotent.
func (e *Engine) DeleteAllForNode(ctx context.Context, nodeID string) error {
	node, err := e.store.GetNode(ctx, nodeID)
	if err != nil {
		return err
	}
	if node != nil {
		lock := e.universeLock(node.UniverseID)
		lock.Lock()
		defer lock.Unlock()
	}
	return e.store.DeleteAllForNode(ctx, nodeID)
}

// Children returns the ordered edges under parentID (nil for the root group).
func (e *Engine) Children(ctx context.Context, universeID string, parentID *string) ([]store.Edge, error) {
	return e.store.Children(ctx, universeID, parentID)
}

// Parents returns the incoming edges of a node, 0 or 1 in the common case.
func (e *Engine) Parents(ctx context.Context, childID string) ([]store.Edge, error) {
	return e.store.Parents(ctx, childID)
}

// Forest reconstructs the ordered multi-root forest of a universe.
func (e *Engine) Forest(ctx context.Context, universeID string) ([]*TreeNode, error) {
	snap, err := SnapshotFromStore(ctx, e.store, universeID)
	if err != nil {
		return nil, err
	}
	return snap.Forest(), nil
}

// ForestWithProgress reconstructs the forest with every node's Progress field
// filled for one user.
func (e *Engine) ForestWithProgress(ctx context.Context, universeID, userID string) ([]*TreeNode, error) {
	snap, err := SnapshotFromStore(ctx, e.store, universeID)
	if err != nil {
		return nil, err
	}
	rows, err := e.store.ProgressForUser(ctx, userID, universeID)
	if err != nil {
		return nil, err
	}
	leaf := leafValues(rows)
	forest := snap.Forest()
	for _, root := range forest {
		annotateProgress(root, snap, leaf)
	}
	return forest, nil
}

// Progress computes one user's completion value for a node, recomputed from
// source rows on every call.
func (e *Engine) Progress(ctx context.Context, userID, nodeID string) (int, error) {
	node, err := e.store.GetNode(ctx, nodeID)
	if err != nil {
		return 0, err
	}
	if node == nil {
		return 0, fmt.Errorf("node %s: %w", nodeID, ErrNotFound)
	}
	snap, err := SnapshotFromStore(ctx, e.store, node.UniverseID)
	if err != nil {
		return 0, err
	}
	rows, err := e.store.ProgressForUser(ctx, userID, node.UniverseID)
	if err != nil {
		return 0, err
	}
	return snap.ProgressFor(nodeID, leafValues(rows)), nil
}

// leafValues indexes stored progress rows by node ID for the aggregator.
func leafValues(rows []store.LeafProgress) map[string]int {
	values := make(map[string]int, len(rows))
	for _, p := range rows {
		values[p.NodeID] = p.Progress
	}
	return values
}

func annotateProgress(t *TreeNode, snap *Snapshot, leaf map[string]int) {
	t.Progress = snap.ProgressFor(t.ID, leaf)
	for _, child := range t.Children {
		annotateProgress(child, snap, leaf)
	}
}
