// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import (
	"context"

	"github.com/google/uuid"

	"github.com/finance-tracker/bookkeeping/internal/domain/entity"
)

// BudgetRepository defines the interface for budget persistence operations.
type BudgetRepository interface {
	// FindLines retrieves all budget lines of a workspace.
	FindLines(ctx context.Context, workspaceID uuid.UUID) ([]entity.BudgetLine, error)

	// FindLineByID retrieves a budget line by its ID within a workspace.
	FindLineByID(ctx context.Context, workspaceID, id uuid.UUID) (*entity.BudgetLine, error)

	// FindGroups retrieves all budget groups of a workspace.
	FindGroups(ctx context.Context, workspaceID uuid.UUID) ([]entity.BudgetGroup, error)

	// FindOverrides retrieves all per-transaction overrides of a workspace.
	FindOverrides(ctx context.Context, workspaceID uuid.UUID) ([]entity.BudgetOverride, error)

	// UpdateComputed replaces the derived spent and remaining figures of the given lines.
	UpdateComputed(ctx context.Context, lines []entity.LinePerformance) error

	// UpsertOverride assigns a transaction to a budget line.
	UpsertOverride(ctx context.Context, override *entity.BudgetOverride) error

	// DeleteOverride removes a transaction's override.
	DeleteOverride(ctx context.Context, workspaceID, transactionID uuid.UUID) error
}
