// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/finance-tracker/bookkeeping/internal/domain/entity"
)

// CategoryRepository defines the interface for category persistence operations.
type CategoryRepository interface {
	// Create creates a new category in the database.
	Create(ctx context.Context, category *entity.Category) error

	// CreateBatch creates several categories in one transaction.
	CreateBatch(ctx context.Context, categories []*entity.Category) error

	// FindByID retrieves a category by its ID within a workspace.
	FindByID(ctx context.Context, workspaceID, id uuid.UUID) (*entity.Category, error)

	// FindByWorkspace retrieves all categories of a workspace.
	FindByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]*entity.Category, error)

	// Update updates an existing category in the database.
	Update(ctx context.Context, category *entity.Category) error

	// Delete removes a category from the database.
	Delete(ctx context.Context, workspaceID, id uuid.UUID) error

	// ExistsByNameAndParent checks if a sibling with the given name exists.
	ExistsByNameAndParent(ctx context.Context, workspaceID uuid.UUID, name string, parentID *uuid.UUID) (bool, error)
}

// CategoryCache caches a workspace's category list. The cache is owned by the
// caller and must be invalidated on every category mutation.
type CategoryCache interface {
	// Get returns the cached categories and whether the entry was present.
	Get(ctx context.Context, workspaceID uuid.UUID) ([]*entity.Category, bool, error)

	// Set stores the categories for the given TTL.
	Set(ctx context.Context, workspaceID uuid.UUID, categories []*entity.Category, ttl time.Duration) error

	// Invalidate drops the cached entry.
	Invalidate(ctx context.Context, workspaceID uuid.UUID) error
}
