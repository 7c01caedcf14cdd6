// Package category contains category-related use cases.
package category

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/finance-tracker/bookkeeping/internal/application/adapter"
	"github.com/finance-tracker/bookkeeping/internal/domain/entity"
	"github.com/finance-tracker/bookkeeping/internal/domain/rules"
)

// SeedDefaultCategoriesInput represents the input for seeding default categories.
type SeedDefaultCategoriesInput struct {
	WorkspaceID uuid.UUID
}

// SeedDefaultCategoriesOutput represents the output of seeding default categories.
type SeedDefaultCategoriesOutput struct {
	Created int
}

// SeedDefaultCategoriesUseCase creates the categories the built-in rule table
// targets. Existing categories with the same name are reused, so seeding twice
// creates nothing the second time.
type SeedDefaultCategoriesUseCase struct {
	categoryRepo adapter.CategoryRepository
	loader       *TaxonomyLoader
}

// NewSeedDefaultCategoriesUseCase creates a new SeedDefaultCategoriesUseCase instance.
func NewSeedDefaultCategoriesUseCase(categoryRepo adapter.CategoryRepository, loader *TaxonomyLoader) *SeedDefaultCategoriesUseCase {
	return &SeedDefaultCategoriesUseCase{
		categoryRepo: categoryRepo,
		loader:       loader,
	}
}

// Execute seeds the default tree.
func (uc *SeedDefaultCategoriesUseCase) Execute(ctx context.Context, input SeedDefaultCategoriesInput) (*SeedDefaultCategoriesOutput, error) {
	table, err := rules.DefaultTable()
	if err != nil {
		return nil, fmt.Errorf("failed to load default rule table: %w", err)
	}

	existing, err := uc.categoryRepo.FindByWorkspace(ctx, input.WorkspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to find categories: %w", err)
	}

	roots := make(map[string]*entity.Category)
	children := make(map[uuid.UUID]map[string]struct{})
	for _, c := range existing {
		if c.ParentID == nil {
			roots[strings.ToLower(c.Name)] = c
			continue
		}
		if children[*c.ParentID] == nil {
			children[*c.ParentID] = make(map[string]struct{})
		}
		children[*c.ParentID][strings.ToLower(c.Name)] = struct{}{}
	}

	created := make([]*entity.Category, 0)
	for _, seed := range table.Categories {
		root, ok := roots[strings.ToLower(seed.Name)]
		if !ok {
			root = entity.NewCategory(input.WorkspaceID, seed.Name, nil, colorOrDefault(seed.Color))
			roots[strings.ToLower(seed.Name)] = root
			created = append(created, root)
		}
		for _, child := range seed.Children {
			if _, ok := children[root.ID][strings.ToLower(child)]; ok {
				continue
			}
			parentID := root.ID
			created = append(created, entity.NewCategory(input.WorkspaceID, child, &parentID, colorOrDefault(seed.Color)))
		}
	}

	if len(created) == 0 {
		return &SeedDefaultCategoriesOutput{}, nil
	}

	if err := uc.categoryRepo.CreateBatch(ctx, created); err != nil {
		return nil, fmt.Errorf("failed to create default categories: %w", err)
	}
	uc.loader.Invalidate(ctx, input.WorkspaceID)

	slog.Default().Info("Seeded default categories",
		"workspaceID", input.WorkspaceID.String(),
		"created", len(created),
	)

	return &SeedDefaultCategoriesOutput{Created: len(created)}, nil
}

func colorOrDefault(color string) string {
	if color == "" {
		return entity.DefaultCategoryColor
	}
	return color
}
