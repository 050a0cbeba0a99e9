package store

import (
	"context"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "trellis.db"))
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func addNode(t *testing.T, st *Store, title, universeID string, viewable bool) Node {
	t.Helper()
	n, err := st.CreateNode(context.Background(), title, universeID, CreateNodeOpts{IsViewable: viewable})
	if err != nil {
		t.Fatalf("creating node %s: %v", title, err)
	}
	return n
}

func TestNode_Roundtrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	created := addNode(t, st, "Stargate SG-1", "u1", false)
	got, err := st.GetNode(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatal("node not found after create")
	}
	if got.Title != "Stargate SG-1" || got.UniverseID != "u1" || got.IsViewable {
		t.Errorf("roundtrip mismatch: %+v", got)
	}

	missing, err := st.GetNode(ctx, "no-such-id")
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for missing node")
	}
}

func TestDeleteNode_CascadesEdgesAndProgress(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	parent := addNode(t, st, "Season", "u1", false)
	child := addNode(t, st, "Ep", "u1", true)
	if _, err := st.CreateEdge(ctx, &parent.ID, child.ID, "u1", nil); err != nil {
		t.Fatalf("creating edge: %v", err)
	}
	if err := st.SetProgress(ctx, "alice", child.ID, "u1", 50); err != nil {
		t.Fatalf("setting progress: %v", err)
	}

	if err := st.DeleteNode(ctx, child.ID); err != nil {
		t.Fatalf("deleting node: %v", err)
	}

	edges, err := st.Parents(ctx, child.ID)
	if err != nil {
		t.Fatalf("reading parents: %v", err)
	}
	if len(edges) != 0 {
		t.Errorf("edges should cascade on node delete, got %d", len(edges))
	}
	if _, ok, _ := st.GetProgress(ctx, "alice", child.ID); ok {
		t.Error("progress should cascade on node delete")
	}

	// Idempotent
	if err := st.DeleteNode(ctx, child.ID); err != nil {
		t.Errorf("second delete must be a no-op, got %v", err)
	}
}

func TestChildren_OrderedWithinParentGroup(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	g := addNode(t, st, "G", "u1", false)
	c1 := addNode(t, st, "C1", "u1", false)
	c2 := addNode(t, st, "C2", "u1", false)

	two := 2
	if _, err := st.CreateEdge(ctx, &g.ID, c1.ID, "u1", &two); err != nil {
		t.Fatalf("edge c1: %v", err)
	}
	zero := 0
	if _, err := st.CreateEdge(ctx, &g.ID, c2.ID, "u1", &zero); err != nil {
		t.Fatalf("edge c2: %v", err)
	}

	children, err := st.Children(ctx, "u1", &g.ID)
	if err != nil {
		t.Fatalf("children: %v", err)
	}
	if len(children) != 2 {
		t.Fatalf("expected 2 children, got %d", len(children))
	}
	if children[0].ChildID != c2.ID || children[1].ChildID != c1.ID {
		t.Errorf("children out of order: %s, %s", children[0].ChildID, children[1].ChildID)
	}
}

func TestChildren_RootGroupUsesNullParent(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	a := addNode(t, st, "A", "u1", false)
	b := addNode(t, st, "B", "u1", false)
	if _, err := st.CreateEdge(ctx, nil, a.ID, "u1", nil); err != nil {
		t.Fatalf("root edge a: %v", err)
	}
	if _, err := st.CreateEdge(ctx, &a.ID, b.ID, "u1", nil); err != nil {
		t.Fatalf("child edge b: %v", err)
	}

	roots, err := st.Children(ctx, "u1", nil)
	if err != nil {
		t.Fatalf("roots: %v", err)
	}
	if len(roots) != 1 || roots[0].ChildID != a.ID {
		t.Errorf("expected only A in root group, got %+v", roots)
	}
}

func TestCreateEdge_AppendOrderPerSiblingGroup(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	g := addNode(t, st, "G", "u1", false)
	h := addNode(t, st, "H", "u1", false)
	c1 := addNode(t, st, "C1", "u1", false)
	c2 := addNode(t, st, "C2", "u1", false)

	e1, err := st.CreateEdge(ctx, &g.ID, c1.ID, "u1", nil)
	if err != nil {
		t.Fatalf("edge 1: %v", err)
	}
	// A sibling under a different parent starts its own order sequence.
	e2, err := st.CreateEdge(ctx, &h.ID, c2.ID, "u1", nil)
	if err != nil {
		t.Fatalf("edge 2: %v", err)
	}
	if e1.DisplayOrder != 0 || e2.DisplayOrder != 0 {
		t.Errorf("orders: got %d, %d, want 0, 0", e1.DisplayOrder, e2.DisplayOrder)
	}
}

func TestDeleteAllForNode_BothDirections(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	mid := addNode(t, st, "Mid", "u1", false)
	top := addNode(t, st, "Top", "u1", false)
	kid := addNode(t, st, "Kid", "u1", true)
	if _, err := st.CreateEdge(ctx, &top.ID, mid.ID, "u1", nil); err != nil {
		t.Fatalf("edge top->mid: %v", err)
	}
	if _, err := st.CreateEdge(ctx, &mid.ID, kid.ID, "u1", nil); err != nil {
		t.Fatalf("edge mid->kid: %v", err)
	}
	if err := st.SetProgress(ctx, "alice", mid.ID, "u1", 10); err != nil {
		t.Fatalf("progress: %v", err)
	}

	if err := st.DeleteAllForNode(ctx, mid.ID); err != nil {
		t.Fatalf("delete all: %v", err)
	}

	all, err := st.EdgesInUniverse(ctx, "u1")
	if err != nil {
		t.Fatalf("edges: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("expected no edges left, got %d", len(all))
	}
	if _, ok, _ := st.GetProgress(ctx, "alice", mid.ID); ok {
		t.Error("progress row should be removed")
	}

	// Already-clean node: no error, no change
	if err := st.DeleteAllForNode(ctx, mid.ID); err != nil {
		t.Errorf("second delete must be a no-op, got %v", err)
	}
}

func TestSetProgress_UpsertAndClamp(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	ep := addNode(t, st, "Ep", "u1", true)

	if err := st.SetProgress(ctx, "alice", ep.ID, "u1", 42); err != nil {
		t.Fatalf("set: %v", err)
	}
	v, ok, err := st.GetProgress(ctx, "alice", ep.ID)
	if err != nil || !ok || v != 42 {
		t.Errorf("got %d/%v/%v, want 42 stored", v, ok, err)
	}

	if err := st.SetProgress(ctx, "alice", ep.ID, "u1", 200); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	v, _, _ = st.GetProgress(ctx, "alice", ep.ID)
	if v != 100 {
		t.Errorf("clamped upsert: got %d, want 100", v)
	}

	if err := st.SetProgress(ctx, "alice", ep.ID, "u1", -5); err != nil {
		t.Fatalf("negative: %v", err)
	}
	v, _, _ = st.GetProgress(ctx, "alice", ep.ID)
	if v != 0 {
		t.Errorf("negative write: got %d, want 0", v)
	}
}

func TestProgressForUser_ScopedToUniverse(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	ep1 := addNode(t, st, "Ep1", "u1", true)
	ep2 := addNode(t, st, "Ep2", "u2", true)
	if err := st.SetProgress(ctx, "alice", ep1.ID, "u1", 30); err != nil {
		t.Fatalf("set u1: %v", err)
	}
	if err := st.SetProgress(ctx, "alice", ep2.ID, "u2", 60); err != nil {
		t.Fatalf("set u2: %v", err)
	}

	rows, err := st.ProgressForUser(ctx, "alice", "u1")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(rows) != 1 || rows[0].NodeID != ep1.ID || rows[0].Progress != 30 {
		t.Errorf("expected only the u1 row, got %v", rows)
	}
}
