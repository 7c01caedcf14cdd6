// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import (
	"context"

	"github.com/google/uuid"

	"github.com/finance-tracker/bookkeeping/internal/domain/entity"
)

// PatternRuleRepository defines the interface for workspace override rule persistence.
type PatternRuleRepository interface {
	// Create creates a new pattern rule.
	Create(ctx context.Context, rule *entity.PatternRule) error

	// FindByID retrieves a pattern rule by its ID within a workspace.
	FindByID(ctx context.Context, workspaceID, id uuid.UUID) (*entity.PatternRule, error)

	// FindByWorkspace retrieves all rules of a workspace ordered by priority descending.
	FindByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]*entity.PatternRule, error)

	// FindActiveByWorkspace retrieves the active rules of a workspace ordered by priority descending.
	FindActiveByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]*entity.PatternRule, error)

	// Delete removes a pattern rule.
	Delete(ctx context.Context, workspaceID, id uuid.UUID) error
}
