// Package entity defines the core business entities for the domain layer.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// DefaultCategoryColor is the default color for categories.
const DefaultCategoryColor = "#6366F1"

// Fallback category names used when nothing more specific matches.
const (
	FallbackParentName = "Miscellaneous"
	FallbackChildName  = "General"
)

// Category is a node of a workspace's category tree.
// Roots have no parent; the tree is at most root -> parent -> leaf.
type Category struct {
	ID          uuid.UUID
	WorkspaceID uuid.UUID
	Name        string
	ParentID    *uuid.UUID
	Color       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewCategory creates a new Category entity.
func NewCategory(workspaceID uuid.UUID, name string, parentID *uuid.UUID, color string) *Category {
	now := time.Now().UTC()

	return &Category{
		ID:          uuid.New(),
		WorkspaceID: workspaceID,
		Name:        name,
		ParentID:    parentID,
		Color:       color,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// IsRoot reports whether the category has no parent.
func (c *Category) IsRoot() bool {
	return c.ParentID == nil
}
