package hierarchy

// TreeNode is a node with its ordered children, as rendered by the UI layer.
// Progress is the per-user completion overlay filled by ForestWithProgress;
// plain Forest leaves it 0.
type TreeNode struct {
	Node
	Progress int         `json:"progress"`
	Children []*TreeNode `json:"children,omitempty"`
}

// Forest converts the snapshot into an ordered multi-root forest. Edges whose
// child has no matching node are skipped (stale references must not crash a
// render). A node encountered while already being expanded gets an empty
// child list, which keeps corrupted parent cycles from recursing forever;
// preventing such cycles in the first place is the guard's job.
func (s *Snapshot) Forest() []*TreeNode {
	expanding := map[string]bool{}

	var expand func(id string) *TreeNode
	expand = func(id string) *TreeNode {
		node, ok := s.Nodes[id]
		if !ok {
			return nil
		}
		t := &TreeNode{Node: *node}
		if expanding[id] {
			return t
		}
		expanding[id] = true
		for _, e := range s.Children[id] {
			if child := expand(e.ChildID); child != nil {
				t.Children = append(t.Children, child)
			}
		}
		delete(expanding, id)
		return t
	}

	var roots []*TreeNode
	for _, e := range s.Children[rootKey] {
		if root := expand(e.ChildID); root != nil {
			roots = append(roots, root)
		}
	}
	return roots
}
