package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/finance-tracker/bookkeeping/internal/application/adapter"
	"github.com/finance-tracker/bookkeeping/internal/domain/entity"
	"github.com/finance-tracker/bookkeeping/internal/integration/persistence/model"
)

// learningSignalRepository implements the adapter.LearningSignalRepository interface.
type learningSignalRepository struct {
	db *gorm.DB
}

// NewLearningSignalRepository creates a new learning signal repository instance.
func NewLearningSignalRepository(db *gorm.DB) adapter.LearningSignalRepository {
	return &learningSignalRepository{
		db: db,
	}
}

// Record increments the hit count of the signal's workspace, merchant and category.
func (r *learningSignalRepository) Record(ctx context.Context, signal entity.LearningSignal) error {
	stat := &model.MerchantCategoryStatModel{
		WorkspaceID: signal.WorkspaceID,
		MerchantKey: signal.MerchantKey,
		CategoryID:  signal.CategoryID,
		HitCount:    1,
		LastSeenAt:  signal.OccurredAt,
	}

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "workspace_id"}, {Name: "merchant_key"}, {Name: "category_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"hit_count":    gorm.Expr("merchant_category_stats.hit_count + 1"),
				"last_seen_at": signal.OccurredAt,
			}),
		}).
		Create(stat)
	if result.Error != nil {
		return result.Error
	}
	return nil
}

// FindByMerchant returns the statistics of a merchant key ordered by hit count descending.
func (r *learningSignalRepository) FindByMerchant(ctx context.Context, workspaceID uuid.UUID, merchantKey string) ([]*entity.MerchantCategoryStat, error) {
	var statModels []model.MerchantCategoryStatModel
	result := r.db.WithContext(ctx).
		Where("workspace_id = ? AND merchant_key = ?", workspaceID, merchantKey).
		Order("hit_count DESC, last_seen_at DESC").
		Find(&statModels)
	if result.Error != nil {
		return nil, result.Error
	}

	stats := make([]*entity.MerchantCategoryStat, len(statModels))
	for i := range statModels {
		stats[i] = statModels[i].ToEntity()
	}
	return stats, nil
}
