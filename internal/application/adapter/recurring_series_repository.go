// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import (
	"context"

	"github.com/google/uuid"

	"github.com/finance-tracker/bookkeeping/internal/domain/entity"
)

// RecurringSeriesRepository defines the interface for detected series persistence.
type RecurringSeriesRepository interface {
	// ReplaceForWorkspace atomically replaces a workspace's series with a new detection result.
	ReplaceForWorkspace(ctx context.Context, workspaceID uuid.UUID, series []entity.RecurringSeries) error

	// FindByWorkspace retrieves the series of the latest detection run.
	FindByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]entity.RecurringSeries, error)
}
