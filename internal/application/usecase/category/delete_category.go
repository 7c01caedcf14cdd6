// Package category contains category-related use cases.
package category

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/finance-tracker/bookkeeping/internal/application/adapter"
	domainerror "github.com/finance-tracker/bookkeeping/internal/domain/error"
)

// DeleteCategoryInput represents the input for category deletion.
type DeleteCategoryInput struct {
	WorkspaceID uuid.UUID
	CategoryID  uuid.UUID
}

// DeleteCategoryOutput represents the output of category deletion.
type DeleteCategoryOutput struct {
	Success bool
}

// DeleteCategoryUseCase handles category deletion logic.
// Transactions and budget lines that still reference a deleted category keep
// the id; they display as an unknown category and match no budget line.
type DeleteCategoryUseCase struct {
	categoryRepo adapter.CategoryRepository
	loader       *TaxonomyLoader
}

// NewDeleteCategoryUseCase creates a new DeleteCategoryUseCase instance.
func NewDeleteCategoryUseCase(categoryRepo adapter.CategoryRepository, loader *TaxonomyLoader) *DeleteCategoryUseCase {
	return &DeleteCategoryUseCase{
		categoryRepo: categoryRepo,
		loader:       loader,
	}
}

// Execute performs the category deletion. Categories with children are refused.
func (uc *DeleteCategoryUseCase) Execute(ctx context.Context, input DeleteCategoryInput) (*DeleteCategoryOutput, error) {
	if _, err := uc.categoryRepo.FindByID(ctx, input.WorkspaceID, input.CategoryID); err != nil {
		if errors.Is(err, domainerror.ErrCategoryNotFound) {
			return nil, domainerror.NewCategoryError(
				domainerror.ErrCodeCategoryNotFound,
				"category not found",
				domainerror.ErrCategoryNotFound,
			)
		}
		return nil, fmt.Errorf("failed to find category: %w", err)
	}

	tax, err := uc.loader.Load(ctx, input.WorkspaceID)
	if err != nil {
		return nil, err
	}
	if tax.HasChildren(input.CategoryID) {
		return nil, domainerror.NewCategoryError(
			domainerror.ErrCodeCategoryHasChildren,
			"delete or move the child categories first",
			domainerror.ErrCategoryHasChildren,
		)
	}

	if err := uc.categoryRepo.Delete(ctx, input.WorkspaceID, input.CategoryID); err != nil {
		return nil, fmt.Errorf("failed to delete category: %w", err)
	}
	uc.loader.Invalidate(ctx, input.WorkspaceID)

	return &DeleteCategoryOutput{
		Success: true,
	}, nil
}
