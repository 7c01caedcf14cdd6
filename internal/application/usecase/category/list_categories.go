// Package category contains category-related use cases.
package category

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/finance-tracker/bookkeeping/internal/domain/taxonomy"
)

// ListCategoriesInput represents the input for listing categories.
type ListCategoriesInput struct {
	WorkspaceID uuid.UUID
}

// ListCategoriesOutput represents the output of listing categories.
type ListCategoriesOutput struct {
	Categories []*CategoryOutput
}

// CategoryOutput represents a single category in the output.
type CategoryOutput struct {
	ID          uuid.UUID
	Name        string
	Color       string
	ParentID    *uuid.UUID
	Depth       int
	Path        string
	HasChildren bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ListCategoriesUseCase handles listing categories logic.
type ListCategoriesUseCase struct {
	loader *TaxonomyLoader
}

// NewListCategoriesUseCase creates a new ListCategoriesUseCase instance.
func NewListCategoriesUseCase(loader *TaxonomyLoader) *ListCategoriesUseCase {
	return &ListCategoriesUseCase{
		loader: loader,
	}
}

// Execute lists the workspace's categories ordered by depth, then name.
func (uc *ListCategoriesUseCase) Execute(ctx context.Context, input ListCategoriesInput) (*ListCategoriesOutput, error) {
	tax, err := uc.loader.Load(ctx, input.WorkspaceID)
	if err != nil {
		return nil, err
	}

	all := tax.All()
	output := &ListCategoriesOutput{
		Categories: make([]*CategoryOutput, len(all)),
	}
	for i, cat := range all {
		output.Categories[i] = toOutput(cat.ID, tax)
	}
	return output, nil
}

func toOutput(id uuid.UUID, tax *taxonomy.Taxonomy) *CategoryOutput {
	cat, _ := tax.ByID(id)
	return &CategoryOutput{
		ID:          cat.ID,
		Name:        cat.Name,
		Color:       cat.Color,
		ParentID:    cat.ParentID,
		Depth:       tax.Depth(cat.ID),
		Path:        tax.DisplayName(cat.ID),
		HasChildren: tax.HasChildren(cat.ID),
		CreatedAt:   cat.CreatedAt,
		UpdatedAt:   cat.UpdatedAt,
	}
}
