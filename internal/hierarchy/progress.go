package hierarchy

import "math"

// Clamp bounds a progress value to [0, 100], tolerating malformed writes.
func Clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// ProgressFor computes the completion value for a node from one user's stored
// leaf values (node id -> 0..100).
//
// Viewable nodes read their stored value directly, 0 when absent. An
// organizational node averages its children recursively, round-half-up; with
// no children it is 0. Every input and output is clamped to [0, 100]. Nothing
// is cached across calls: each aggregation is a pure function over the
// snapshot, so readers stay trivially safe under concurrent writes.
func (s *Snapshot) ProgressFor(nodeID string, leaf map[string]int) int {
	return s.progressFor(nodeID, leaf, map[string]bool{})
}

func (s *Snapshot) progressFor(id string, leaf map[string]int, walking map[string]bool) int {
	node, ok := s.Nodes[id]
	if !ok {
		return 0
	}
	if node.IsViewable {
		return Clamp(leaf[id])
	}
	// Same corruption stop as the forest builder: a node met while already
	// being averaged contributes 0 instead of recursing forever.
	if walking[id] {
		return 0
	}
	walking[id] = true
	defer delete(walking, id)

	sum, count := 0, 0
	for _, e := range s.Children[id] {
		if _, ok := s.Nodes[e.ChildID]; !ok {
			continue
		}
		sum += s.progressFor(e.ChildID, leaf, walking)
		count++
	}
	if count == 0 {
		return 0
	}
	mean := float64(sum) / float64(count)
	return Clamp(int(math.Floor(mean + 0.5)))
}
