package hierarchy

// parentsFn returns the parent IDs of a node. The engine backs it with the
// edge store; tests back it with a map.
type parentsFn func(id string) ([]string, error)

// wouldCreateCycle reports whether inserting an edge parentID -> childID
// would let childID reach itself through any parent chain. The walk climbs
// from parentID through every incoming edge; a visited set bounds it against
// already-corrupt data, where a repeated ancestor without reaching childID is
// treated as safe to stop rather than looping forever.
func wouldCreateCycle(parentID, childID string, parents parentsFn) (bool, error) {
	if parentID == childID {
		return true, nil
	}

	visited := map[string]bool{}
	queue := []string{parentID}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if visited[current] {
			continue
		}
		visited[current] = true

		ancestors, err := parents(current)
		if err != nil {
			return false, err
		}
		for _, ancestor := range ancestors {
			if ancestor == childID {
				return true, nil
			}
			if !visited[ancestor] {
				queue = append(queue, ancestor)
			}
		}
	}
	return false, nil
}

// WouldCreateCycle runs the ancestor walk against the snapshot's edge set.
func (s *Snapshot) WouldCreateCycle(parentID, childID string) bool {
	cyclic, _ := wouldCreateCycle(parentID, childID, func(id string) ([]string, error) {
		var ids []string
		for _, e := range s.Parents[id] {
			if e.ParentID != nil {
				ids = append(ids, *e.ParentID)
			}
		}
		return ids, nil
	})
	return cyclic
}
