// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/finance-tracker/bookkeeping/internal/domain/entity"
)

// TransactionRepository defines the interface for transaction persistence operations.
// Provider category fields are read-only through this interface.
type TransactionRepository interface {
	// FindByID retrieves a transaction by its ID within a workspace.
	FindByID(ctx context.Context, workspaceID, id uuid.UUID) (*entity.Transaction, error)

	// FindByWorkspace retrieves all transactions of a workspace ordered by date descending.
	FindByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]*entity.Transaction, error)

	// FindPendingAICategorization retrieves transactions with neither a user nor an AI category.
	FindPendingAICategorization(ctx context.Context, workspaceID uuid.UUID) ([]*entity.Transaction, error)

	// FindOutflowsBetween retrieves posted outflows dated within [start, end].
	FindOutflowsBetween(ctx context.Context, workspaceID uuid.UUID, start, end time.Time) ([]*entity.Transaction, error)

	// UpdateAICategory writes the AI category slot of a transaction.
	UpdateAICategory(ctx context.Context, transaction *entity.Transaction) error

	// UpdateUserCategory writes the user category slot of a transaction.
	UpdateUserCategory(ctx context.Context, transaction *entity.Transaction) error

	// CountUncategorized counts transactions with neither a user nor an AI category.
	CountUncategorized(ctx context.Context, workspaceID uuid.UUID) (int, error)

	// ListWorkspaceIDs returns every workspace that owns at least one transaction.
	ListWorkspaceIDs(ctx context.Context) ([]uuid.UUID, error)
}
