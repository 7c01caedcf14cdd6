package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/finance-tracker/bookkeeping/internal/application/adapter"
	"github.com/finance-tracker/bookkeeping/internal/domain/entity"
	domainerror "github.com/finance-tracker/bookkeeping/internal/domain/error"
	"github.com/finance-tracker/bookkeeping/internal/integration/persistence/model"
)

// patternRuleRepository implements the adapter.PatternRuleRepository interface.
type patternRuleRepository struct {
	db *gorm.DB
}

// NewPatternRuleRepository creates a new pattern rule repository instance.
func NewPatternRuleRepository(db *gorm.DB) adapter.PatternRuleRepository {
	return &patternRuleRepository{
		db: db,
	}
}

// Create creates a new pattern rule in the database.
func (r *patternRuleRepository) Create(ctx context.Context, rule *entity.PatternRule) error {
	ruleModel := model.PatternRuleFromEntity(rule)
	result := r.db.WithContext(ctx).Create(ruleModel)
	if result.Error != nil {
		return result.Error
	}
	return nil
}

// FindByID retrieves a pattern rule by its ID within a workspace.
func (r *patternRuleRepository) FindByID(ctx context.Context, workspaceID, id uuid.UUID) (*entity.PatternRule, error) {
	var ruleModel model.PatternRuleModel
	result := r.db.WithContext(ctx).
		Where("id = ? AND workspace_id = ?", id, workspaceID).
		First(&ruleModel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domainerror.ErrPatternRuleNotFound
		}
		return nil, result.Error
	}
	return ruleModel.ToEntity(), nil
}

// FindByWorkspace retrieves all rules of a workspace ordered by priority descending.
func (r *patternRuleRepository) FindByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]*entity.PatternRule, error) {
	return r.find(r.db.WithContext(ctx).Where("workspace_id = ?", workspaceID))
}

// FindActiveByWorkspace retrieves the active rules of a workspace ordered by priority descending.
func (r *patternRuleRepository) FindActiveByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]*entity.PatternRule, error) {
	return r.find(r.db.WithContext(ctx).Where("workspace_id = ? AND is_active = ?", workspaceID, true))
}

// Delete soft-deletes a pattern rule.
func (r *patternRuleRepository) Delete(ctx context.Context, workspaceID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Delete(&model.PatternRuleModel{}, "id = ? AND workspace_id = ?", id, workspaceID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerror.ErrPatternRuleNotFound
	}
	return nil
}

func (r *patternRuleRepository) find(query *gorm.DB) ([]*entity.PatternRule, error) {
	var ruleModels []model.PatternRuleModel
	if err := query.Order("priority DESC, created_at ASC").Find(&ruleModels).Error; err != nil {
		return nil, err
	}

	rules := make([]*entity.PatternRule, len(ruleModels))
	for i := range ruleModels {
		rules[i] = ruleModels[i].ToEntity()
	}
	return rules, nil
}
