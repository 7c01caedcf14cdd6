// Package category contains category-related use cases.
package category

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/finance-tracker/bookkeeping/internal/application/adapter"
	"github.com/finance-tracker/bookkeeping/internal/domain/entity"
	domainerror "github.com/finance-tracker/bookkeeping/internal/domain/error"
	"github.com/finance-tracker/bookkeeping/internal/domain/taxonomy"
)

// MaxCategoryNameLength is the maximum allowed length for category names.
const MaxCategoryNameLength = 50

var hexColorRegex = regexp.MustCompile(`^#([A-Fa-f0-9]{6}|[A-Fa-f0-9]{3})$`)

// CreateCategoryInput represents the input for category creation.
type CreateCategoryInput struct {
	WorkspaceID uuid.UUID
	Name        string
	Color       string     // Optional, defaults to DefaultCategoryColor
	ParentID    *uuid.UUID // Optional, nil creates a root
}

// CreateCategoryOutput represents the output of category creation.
type CreateCategoryOutput struct {
	Category *CategoryOutput
}

// CreateCategoryUseCase handles category creation logic.
type CreateCategoryUseCase struct {
	categoryRepo adapter.CategoryRepository
	loader       *TaxonomyLoader
}

// NewCreateCategoryUseCase creates a new CreateCategoryUseCase instance.
func NewCreateCategoryUseCase(categoryRepo adapter.CategoryRepository, loader *TaxonomyLoader) *CreateCategoryUseCase {
	return &CreateCategoryUseCase{
		categoryRepo: categoryRepo,
		loader:       loader,
	}
}

// Execute performs the category creation. The new category may sit at most
// two levels below a root.
func (uc *CreateCategoryUseCase) Execute(ctx context.Context, input CreateCategoryInput) (*CreateCategoryOutput, error) {
	name := strings.TrimSpace(input.Name)
	if err := validateName(name); err != nil {
		return nil, err
	}
	if err := validateColor(input.Color); err != nil {
		return nil, err
	}

	color := input.Color
	if color == "" {
		color = entity.DefaultCategoryColor
	}

	categories, err := uc.loader.Categories(ctx, input.WorkspaceID)
	if err != nil {
		return nil, err
	}
	tax, err := taxonomy.New(categories)
	if err != nil {
		return nil, fmt.Errorf("failed to build taxonomy: %w", err)
	}

	if input.ParentID != nil {
		if !tax.Contains(*input.ParentID) {
			return nil, domainerror.NewCategoryError(
				domainerror.ErrCodeInvalidTaxonomy,
				"parent category not found",
				domainerror.ErrParentCategoryNotFound,
			)
		}
		if tax.Depth(*input.ParentID) >= taxonomy.MaxDepth {
			return nil, domainerror.NewCategoryError(
				domainerror.ErrCodeCategoryTooDeep,
				fmt.Sprintf("categories may be nested at most %d levels", taxonomy.MaxDepth),
				domainerror.ErrCategoryTooDeep,
			)
		}
	}

	exists, err := uc.categoryRepo.ExistsByNameAndParent(ctx, input.WorkspaceID, name, input.ParentID)
	if err != nil {
		return nil, fmt.Errorf("failed to check category name existence: %w", err)
	}
	if exists {
		return nil, domainerror.NewCategoryError(
			domainerror.ErrCodeCategoryNameExists,
			"a category with this name already exists",
			domainerror.ErrCategoryNameExists,
		)
	}

	category := entity.NewCategory(input.WorkspaceID, name, input.ParentID, color)

	next, err := taxonomy.New(append(categories, category))
	if err != nil {
		return nil, domainerror.NewCategoryError(domainerror.ErrCodeInvalidTaxonomy, "category would break the tree", err)
	}

	if err := uc.categoryRepo.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	uc.loader.Invalidate(ctx, input.WorkspaceID)

	return &CreateCategoryOutput{
		Category: toOutput(category.ID, next),
	}, nil
}

func validateName(name string) error {
	if name == "" {
		return domainerror.NewCategoryError(
			domainerror.ErrCodeMissingCategoryFields,
			"category name is required",
			domainerror.ErrCategoryNameRequired,
		)
	}
	if len(name) > MaxCategoryNameLength {
		return domainerror.NewCategoryError(
			domainerror.ErrCodeCategoryNameTooLong,
			fmt.Sprintf("category name must not exceed %d characters", MaxCategoryNameLength),
			domainerror.ErrCategoryNameTooLong,
		)
	}
	return nil
}

func validateColor(color string) error {
	if color != "" && !hexColorRegex.MatchString(color) {
		return domainerror.NewCategoryError(
			domainerror.ErrCodeInvalidColorFormat,
			"color must be a valid hex format (#XXXXXX)",
			domainerror.ErrInvalidColorFormat,
		)
	}
	return nil
}
