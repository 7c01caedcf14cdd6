package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/finance-tracker/bookkeeping/internal/application/adapter"
	"github.com/finance-tracker/bookkeeping/internal/domain/entity"
	"github.com/finance-tracker/bookkeeping/internal/integration/persistence/model"
)

const seriesInsertBatchSize = 100

// recurringSeriesRepository implements the adapter.RecurringSeriesRepository interface.
type recurringSeriesRepository struct {
	db *gorm.DB
}

// NewRecurringSeriesRepository creates a new recurring series repository instance.
func NewRecurringSeriesRepository(db *gorm.DB) adapter.RecurringSeriesRepository {
	return &recurringSeriesRepository{
		db: db,
	}
}

// ReplaceForWorkspace atomically replaces a workspace's series with a new detection result.
func (r *recurringSeriesRepository) ReplaceForWorkspace(ctx context.Context, workspaceID uuid.UUID, series []entity.RecurringSeries) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("workspace_id = ?", workspaceID).Delete(&model.RecurringSeriesModel{}).Error; err != nil {
			return err
		}
		if len(series) == 0 {
			return nil
		}

		models := make([]*model.RecurringSeriesModel, len(series))
		for i, s := range series {
			s.WorkspaceID = workspaceID
			models[i] = model.RecurringSeriesFromEntity(s)
		}
		return tx.CreateInBatches(models, seriesInsertBatchSize).Error
	})
}

// FindByWorkspace retrieves the series of the latest detection run, most
// confident first.
func (r *recurringSeriesRepository) FindByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]entity.RecurringSeries, error) {
	var seriesModels []model.RecurringSeriesModel
	result := r.db.WithContext(ctx).
		Where("workspace_id = ?", workspaceID).
		Order("confidence DESC, merchant_key ASC, amount_min ASC").
		Find(&seriesModels)
	if result.Error != nil {
		return nil, result.Error
	}

	series := make([]entity.RecurringSeries, len(seriesModels))
	for i := range seriesModels {
		series[i] = seriesModels[i].ToEntity()
	}
	return series, nil
}
