package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/finance-tracker/bookkeeping/internal/application/adapter"
	"github.com/finance-tracker/bookkeeping/internal/domain/entity"
	domainerror "github.com/finance-tracker/bookkeeping/internal/domain/error"
	"github.com/finance-tracker/bookkeeping/internal/integration/persistence/model"
)

// budgetRepository implements the adapter.BudgetRepository interface.
type budgetRepository struct {
	db *gorm.DB
}

// NewBudgetRepository creates a new budget repository instance.
func NewBudgetRepository(db *gorm.DB) adapter.BudgetRepository {
	return &budgetRepository{
		db: db,
	}
}

// FindLines retrieves all budget lines of a workspace.
func (r *budgetRepository) FindLines(ctx context.Context, workspaceID uuid.UUID) ([]entity.BudgetLine, error) {
	var lineModels []model.BudgetLineModel
	result := r.db.WithContext(ctx).
		Where("workspace_id = ?", workspaceID).
		Order("created_at ASC, id ASC").
		Find(&lineModels)
	if result.Error != nil {
		return nil, result.Error
	}

	lines := make([]entity.BudgetLine, len(lineModels))
	for i := range lineModels {
		lines[i] = lineModels[i].ToEntity()
	}
	return lines, nil
}

// FindLineByID retrieves a budget line by its ID within a workspace.
func (r *budgetRepository) FindLineByID(ctx context.Context, workspaceID, id uuid.UUID) (*entity.BudgetLine, error) {
	var lineModel model.BudgetLineModel
	result := r.db.WithContext(ctx).
		Where("id = ? AND workspace_id = ?", id, workspaceID).
		First(&lineModel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domainerror.ErrBudgetLineNotFound
		}
		return nil, result.Error
	}
	line := lineModel.ToEntity()
	return &line, nil
}

// FindGroups retrieves all budget groups of a workspace.
func (r *budgetRepository) FindGroups(ctx context.Context, workspaceID uuid.UUID) ([]entity.BudgetGroup, error) {
	var groupModels []model.BudgetGroupModel
	result := r.db.WithContext(ctx).
		Where("workspace_id = ?", workspaceID).
		Order("name ASC").
		Find(&groupModels)
	if result.Error != nil {
		return nil, result.Error
	}

	groups := make([]entity.BudgetGroup, len(groupModels))
	for i := range groupModels {
		groups[i] = groupModels[i].ToEntity()
	}
	return groups, nil
}

// FindOverrides retrieves all per-transaction overrides of a workspace.
func (r *budgetRepository) FindOverrides(ctx context.Context, workspaceID uuid.UUID) ([]entity.BudgetOverride, error) {
	var overrideModels []model.BudgetOverrideModel
	result := r.db.WithContext(ctx).
		Where("workspace_id = ?", workspaceID).
		Find(&overrideModels)
	if result.Error != nil {
		return nil, result.Error
	}

	overrides := make([]entity.BudgetOverride, len(overrideModels))
	for i := range overrideModels {
		overrides[i] = overrideModels[i].ToEntity()
	}
	return overrides, nil
}

// UpdateComputed replaces the derived spent and remaining figures of the
// given lines. Running it twice with the same input leaves the same rows.
func (r *budgetRepository) UpdateComputed(ctx context.Context, lines []entity.LinePerformance) error {
	if len(lines) == 0 {
		return nil
	}
	now := time.Now().UTC()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, line := range lines {
			result := tx.Model(&model.BudgetLineModel{}).
				Where("id = ?", line.LineID).
				Updates(map[string]interface{}{
					"spent":      line.Spent,
					"remaining":  line.Remaining,
					"updated_at": now,
				})
			if result.Error != nil {
				return result.Error
			}
		}
		return nil
	})
}

// UpsertOverride assigns a transaction to a budget line, replacing any
// earlier assignment of the same transaction.
func (r *budgetRepository) UpsertOverride(ctx context.Context, override *entity.BudgetOverride) error {
	overrideModel := model.BudgetOverrideFromEntity(override)
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "transaction_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"budget_line_id", "workspace_id", "created_at"}),
		}).
		Create(overrideModel)
	if result.Error != nil {
		return result.Error
	}
	return nil
}

// DeleteOverride removes a transaction's override.
func (r *budgetRepository) DeleteOverride(ctx context.Context, workspaceID, transactionID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Delete(&model.BudgetOverrideModel{}, "transaction_id = ? AND workspace_id = ?", transactionID, workspaceID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerror.ErrBudgetOverrideNotFound
	}
	return nil
}
