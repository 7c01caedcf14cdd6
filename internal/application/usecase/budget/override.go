package budget

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/finance-tracker/bookkeeping/internal/application/adapter"
	"github.com/finance-tracker/bookkeeping/internal/domain/entity"
	domainerror "github.com/finance-tracker/bookkeeping/internal/domain/error"
)

// SetOverrideInput represents the input for assigning a transaction to a budget line.
type SetOverrideInput struct {
	WorkspaceID   uuid.UUID
	TransactionID uuid.UUID
	BudgetLineID  uuid.UUID
}

// SetOverrideUseCase assigns a transaction to a budget line irrespective of its category.
type SetOverrideUseCase struct {
	transactionRepo adapter.TransactionRepository
	budgetRepo      adapter.BudgetRepository
}

// NewSetOverrideUseCase creates a new SetOverrideUseCase instance.
func NewSetOverrideUseCase(transactionRepo adapter.TransactionRepository, budgetRepo adapter.BudgetRepository) *SetOverrideUseCase {
	return &SetOverrideUseCase{
		transactionRepo: transactionRepo,
		budgetRepo:      budgetRepo,
	}
}

// Execute stores the override, replacing any previous one for the transaction.
func (uc *SetOverrideUseCase) Execute(ctx context.Context, input SetOverrideInput) (*entity.BudgetOverride, error) {
	if _, err := uc.transactionRepo.FindByID(ctx, input.WorkspaceID, input.TransactionID); err != nil {
		if errors.Is(err, domainerror.ErrTransactionNotFound) {
			return nil, domainerror.NewTransactionError(
				domainerror.ErrCodeTransactionNotFound,
				"transaction not found",
				domainerror.ErrTransactionNotFound,
			)
		}
		return nil, fmt.Errorf("failed to find transaction: %w", err)
	}

	if _, err := uc.budgetRepo.FindLineByID(ctx, input.WorkspaceID, input.BudgetLineID); err != nil {
		if errors.Is(err, domainerror.ErrBudgetLineNotFound) {
			return nil, domainerror.NewBudgetError(
				domainerror.ErrCodeBudgetLineNotFound,
				"budget line not found",
				domainerror.ErrBudgetLineNotFound,
			)
		}
		return nil, fmt.Errorf("failed to find budget line: %w", err)
	}

	override := &entity.BudgetOverride{
		TransactionID: input.TransactionID,
		BudgetLineID:  input.BudgetLineID,
		WorkspaceID:   input.WorkspaceID,
		CreatedAt:     time.Now().UTC(),
	}
	if err := uc.budgetRepo.UpsertOverride(ctx, override); err != nil {
		return nil, fmt.Errorf("failed to store budget override: %w", err)
	}
	return override, nil
}

// ClearOverrideInput represents the input for removing a transaction's override.
type ClearOverrideInput struct {
	WorkspaceID   uuid.UUID
	TransactionID uuid.UUID
}

// ClearOverrideUseCase returns a transaction to category-based budget matching.
type ClearOverrideUseCase struct {
	budgetRepo adapter.BudgetRepository
}

// NewClearOverrideUseCase creates a new ClearOverrideUseCase instance.
func NewClearOverrideUseCase(budgetRepo adapter.BudgetRepository) *ClearOverrideUseCase {
	return &ClearOverrideUseCase{
		budgetRepo: budgetRepo,
	}
}

// Execute removes the override.
func (uc *ClearOverrideUseCase) Execute(ctx context.Context, input ClearOverrideInput) error {
	if err := uc.budgetRepo.DeleteOverride(ctx, input.WorkspaceID, input.TransactionID); err != nil {
		if errors.Is(err, domainerror.ErrBudgetOverrideNotFound) {
			return domainerror.NewBudgetError(
				domainerror.ErrCodeBudgetOverrideNotFound,
				"budget override not found",
				domainerror.ErrBudgetOverrideNotFound,
			)
		}
		return fmt.Errorf("failed to delete budget override: %w", err)
	}
	return nil
}
