package hierarchy

import "errors"

// Structural errors reported to callers. Anything else bubbling out of an
// operation is a storage failure; the store's transaction boundary guarantees
// no partial mutation happened.
var (
	// ErrInvalidEdge marks a self-parenting edge or a reference to a
	// non-existent node or mismatched universe.
	ErrInvalidEdge = errors.New("invalid edge")

	// ErrCyclicEdge marks a candidate edge that would make a node its own
	// descendant.
	ErrCyclicEdge = errors.New("edge would create a cycle")

	// ErrNotFound marks an update or move of an id with no matching row.
	// Deletes of absent rows are no-ops, not errors.
	ErrNotFound = errors.New("not found")

	// ErrNotViewable marks a progress write against an organizational node;
	// their values are derived, never stored.
	ErrNotViewable = errors.New("node is not viewable")
)
