package hierarchy

import "sort"

// Node is a lightweight node representation decoupled from store types
type Node struct {
	ID         string `json:"id"`
	UniverseID string `json:"universe_id"`
	Title      string `json:"title"`
	IsViewable bool   `json:"is_viewable"`
	OwnerID    string `json:"owner_id"`
}

// Edge is a lightweight edge representation. Nil ParentID marks a root.
type Edge struct {
	ParentID     *string `json:"parent_id"`
	ChildID      string  `json:"child_id"`
	UniverseID   string  `json:"universe_id"`
	DisplayOrder int     `json:"display_order"`
}

// rootKey groups root edges in the children index. Node IDs are UUIDs, so the
// empty string never collides with a real parent.
const rootKey = ""

// Snapshot holds one universe's nodes and edges with precomputed parent/child
// indexes. Reads operate on a snapshot taken at call start and never block
// writers; a result may be one generation stale.
type Snapshot struct {
	Nodes    map[string]*Node
	Edges    []Edge
	Children map[string][]Edge // parent id (rootKey for roots) -> edges, sorted by DisplayOrder
	Parents  map[string][]Edge // child id -> incoming edges
}

// NewSnapshot builds a Snapshot from raw nodes and edges. Sibling groups are
// sorted by display order, ties broken by child ID for deterministic output.
func NewSnapshot(nodes []Node, edges []Edge) *Snapshot {
	nodeMap := make(map[string]*Node, len(nodes))
	for i := range nodes {
		nodeMap[nodes[i].ID] = &nodes[i]
	}

	children := make(map[string][]Edge)
	parents := make(map[string][]Edge)
	for _, e := range edges {
		children[parentKey(e.ParentID)] = append(children[parentKey(e.ParentID)], e)
		parents[e.ChildID] = append(parents[e.ChildID], e)
	}
	for key := range children {
		group := children[key]
		sort.SliceStable(group, func(i, j int) bool {
			if group[i].DisplayOrder != group[j].DisplayOrder {
				return group[i].DisplayOrder < group[j].DisplayOrder
			}
			return group[i].ChildID < group[j].ChildID
		})
	}

	return &Snapshot{
		Nodes:    nodeMap,
		Edges:    edges,
		Children: children,
		Parents:  parents,
	}
}

// ChildEdges returns the ordered edges under parentID (nil for roots).
func (s *Snapshot) ChildEdges(parentID *string) []Edge {
	return s.Children[parentKey(parentID)]
}

func parentKey(parentID *string) string {
	if parentID == nil {
		return rootKey
	}
	return *parentID
}
