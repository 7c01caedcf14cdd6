// Package persistence implements repository interfaces for database operations.
package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/finance-tracker/bookkeeping/internal/application/adapter"
	"github.com/finance-tracker/bookkeeping/internal/domain/entity"
	domainerror "github.com/finance-tracker/bookkeeping/internal/domain/error"
	"github.com/finance-tracker/bookkeeping/internal/integration/persistence/model"
)

// transactionRepository implements the adapter.TransactionRepository interface.
type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a new transaction repository instance.
func NewTransactionRepository(db *gorm.DB) adapter.TransactionRepository {
	return &transactionRepository{
		db: db,
	}
}

// FindByID retrieves a transaction by its ID within a workspace.
func (r *transactionRepository) FindByID(ctx context.Context, workspaceID, id uuid.UUID) (*entity.Transaction, error) {
	var transactionModel model.TransactionModel
	result := r.db.WithContext(ctx).
		Where("id = ? AND workspace_id = ?", id, workspaceID).
		First(&transactionModel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domainerror.ErrTransactionNotFound
		}
		return nil, result.Error
	}
	return transactionModel.ToEntity(), nil
}

// FindByWorkspace retrieves all transactions of a workspace ordered by date descending.
func (r *transactionRepository) FindByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]*entity.Transaction, error) {
	return r.find(ctx, r.db.WithContext(ctx).
		Where("workspace_id = ?", workspaceID).
		Order("date DESC, id ASC"))
}

// FindPendingAICategorization retrieves transactions with neither a user nor an AI category.
func (r *transactionRepository) FindPendingAICategorization(ctx context.Context, workspaceID uuid.UUID) ([]*entity.Transaction, error) {
	return r.find(ctx, r.uncategorized(ctx, workspaceID).Order("date ASC, id ASC"))
}

// FindOutflowsBetween retrieves posted outflows dated within [start, end].
func (r *transactionRepository) FindOutflowsBetween(ctx context.Context, workspaceID uuid.UUID, start, end time.Time) ([]*entity.Transaction, error) {
	return r.find(ctx, r.db.WithContext(ctx).
		Where("workspace_id = ?", workspaceID).
		Where("direction = ? AND status = ?", string(entity.DirectionOutflow), string(entity.TransactionStatusPosted)).
		Where("date >= ? AND date <= ?", start, end).
		Order("date ASC, id ASC"))
}

// UpdateAICategory writes the AI category slot of a transaction. The slot is
// write-once: an already populated slot yields ErrAICategoryAlreadySet.
func (r *transactionRepository) UpdateAICategory(ctx context.Context, transaction *entity.Transaction) error {
	ai := transaction.AICategory
	result := r.db.WithContext(ctx).
		Model(&model.TransactionModel{}).
		Where("id = ? AND workspace_id = ?", transaction.ID, transaction.WorkspaceID).
		Where("ai_primary_category_id IS NULL").
		Updates(map[string]interface{}{
			"ai_primary_category_id":   ai.PrimaryID,
			"ai_secondary_category_id": ai.SecondaryID,
			"ai_confidence":            ai.Confidence,
			"ai_method":                string(ai.Method),
			"ai_categorized_at":        ai.CategorizedAt,
			"updated_at":               time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := r.FindByID(ctx, transaction.WorkspaceID, transaction.ID); err != nil {
			return err
		}
		return domainerror.ErrAICategoryAlreadySet
	}
	return nil
}

// UpdateUserCategory writes the user category slot of a transaction. A nil
// primary id clears the slot.
func (r *transactionRepository) UpdateUserCategory(ctx context.Context, transaction *entity.Transaction) error {
	user := transaction.UserCategory
	result := r.db.WithContext(ctx).
		Model(&model.TransactionModel{}).
		Where("id = ? AND workspace_id = ?", transaction.ID, transaction.WorkspaceID).
		Updates(map[string]interface{}{
			"user_primary_category_id":   user.PrimaryID,
			"user_secondary_category_id": user.SecondaryID,
			"user_categorized_at":        user.UpdatedAt,
			"updated_at":                 time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerror.ErrTransactionNotFound
	}
	return nil
}

// CountUncategorized counts transactions with neither a user nor an AI category.
func (r *transactionRepository) CountUncategorized(ctx context.Context, workspaceID uuid.UUID) (int, error) {
	var count int64
	if err := r.uncategorized(ctx, workspaceID).Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

// ListWorkspaceIDs returns every workspace that owns at least one transaction.
func (r *transactionRepository) ListWorkspaceIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	result := r.db.WithContext(ctx).
		Model(&model.TransactionModel{}).
		Distinct("workspace_id").
		Order("workspace_id ASC").
		Pluck("workspace_id", &ids)
	if result.Error != nil {
		return nil, result.Error
	}
	return ids, nil
}

func (r *transactionRepository) uncategorized(ctx context.Context, workspaceID uuid.UUID) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&model.TransactionModel{}).
		Where("workspace_id = ?", workspaceID).
		Where("user_primary_category_id IS NULL AND ai_primary_category_id IS NULL")
}

func (r *transactionRepository) find(_ context.Context, query *gorm.DB) ([]*entity.Transaction, error) {
	var transactionModels []model.TransactionModel
	if err := query.Find(&transactionModels).Error; err != nil {
		return nil, err
	}

	transactions := make([]*entity.Transaction, len(transactionModels))
	for i := range transactionModels {
		transactions[i] = transactionModels[i].ToEntity()
	}
	return transactions, nil
}
