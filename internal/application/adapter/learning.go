// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import (
	"context"

	"github.com/google/uuid"

	"github.com/finance-tracker/bookkeeping/internal/domain/entity"
)

// LearningSink receives merchant to category signals from user corrections.
// Notify is best-effort: implementations log failures and never report them.
type LearningSink interface {
	Notify(ctx context.Context, signal entity.LearningSignal)
}

// LearningSignalRepository defines the interface for learned merchant statistics.
type LearningSignalRepository interface {
	// Record increments the hit count of the signal's workspace, merchant and category.
	Record(ctx context.Context, signal entity.LearningSignal) error

	// FindByMerchant returns the statistics of a merchant key ordered by hit count descending.
	FindByMerchant(ctx context.Context, workspaceID uuid.UUID, merchantKey string) ([]*entity.MerchantCategoryStat, error)
}
