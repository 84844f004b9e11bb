package model

import "time"

// Category is a node of the category tree. The hierarchy is stored both as a
// parent reference and in the closure table; Depth, Parent and Children are
// filled by queries and never persisted.
type Category struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	CustomOrder int        `json:"customOrder"`
	ParentID    *string    `json:"parentId"`
	Parent      *Category  `json:"parent,omitempty"`
	Children    []Category `json:"children,omitempty"`
	Depth       int        `json:"depth"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	DeletedAt   *time.Time `json:"deletedAt"`
}

// Trashed reports whether the category is soft deleted.
func (c Category) Trashed() bool { return c.DeletedAt != nil }
