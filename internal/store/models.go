package store

// Node represents a row in the nodes table. Node identity is owned by the
// surrounding CRUD layer; the engine reads nodes but never mutates them.
type Node struct {
	ID         string `json:"id"`
	UniverseID string `json:"universe_id"`
	Title      string `json:"title"`
	IsViewable bool   `json:"is_viewable"`
	OwnerID    string `json:"owner_id"`
	CreatedAt  int64  `json:"created_at"` // Unix millis
	UpdatedAt  int64  `json:"updated_at"` // Unix millis
}

// Edge represents a row in the edges table. A nil ParentID marks a root of
// its universe. DisplayOrder sorts siblings sharing the same parent.
type Edge struct {
	ID           string  `json:"id"`
	ParentID     *string `json:"parent_id"`
	ChildID      string  `json:"child_id"`
	UniverseID   string  `json:"universe_id"`
	DisplayOrder int     `json:"display_order"`
	CreatedAt    int64   `json:"created_at"` // Unix millis
	UpdatedAt    int64   `json:"updated_at"` // Unix millis
}

// LeafProgress represents a row in the progress table: one per
// (user, viewable node).
type LeafProgress struct {
	UserID     string `json:"user_id"`
	NodeID     string `json:"node_id"`
	UniverseID string `json:"universe_id"`
	Progress   int    `json:"progress"` // 0..100
	UpdatedAt  int64  `json:"updated_at"`
}
