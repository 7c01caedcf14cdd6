// Package category contains category-related use cases.
package category

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/finance-tracker/bookkeeping/internal/application/adapter"
	"github.com/finance-tracker/bookkeeping/internal/domain/entity"
	"github.com/finance-tracker/bookkeeping/internal/domain/taxonomy"
)

// DefaultCacheTTL is used when the loader is built without a TTL.
const DefaultCacheTTL = 10 * time.Minute

// TaxonomyLoader reads a workspace's categories through the category cache
// and builds the taxonomy snapshot the engine works on.
type TaxonomyLoader struct {
	categoryRepo adapter.CategoryRepository
	cache        adapter.CategoryCache
	ttl          time.Duration
}

// NewTaxonomyLoader creates a new TaxonomyLoader. cache may be nil.
func NewTaxonomyLoader(categoryRepo adapter.CategoryRepository, cache adapter.CategoryCache, ttl time.Duration) *TaxonomyLoader {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &TaxonomyLoader{
		categoryRepo: categoryRepo,
		cache:        cache,
		ttl:          ttl,
	}
}

// Categories returns the workspace's categories, preferring the cache.
// Cache failures fall through to the repository.
func (l *TaxonomyLoader) Categories(ctx context.Context, workspaceID uuid.UUID) ([]*entity.Category, error) {
	logger := slog.Default().With("workspaceID", workspaceID.String())

	if l.cache != nil {
		categories, ok, err := l.cache.Get(ctx, workspaceID)
		if err != nil {
			logger.Warn("Category cache read failed", "error", err.Error())
		} else if ok {
			return categories, nil
		}
	}

	categories, err := l.categoryRepo.FindByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to find categories: %w", err)
	}

	if l.cache != nil {
		if err := l.cache.Set(ctx, workspaceID, categories, l.ttl); err != nil {
			logger.Warn("Category cache write failed", "error", err.Error())
		}
	}
	return categories, nil
}

// Load builds the taxonomy snapshot of a workspace.
func (l *TaxonomyLoader) Load(ctx context.Context, workspaceID uuid.UUID) (*taxonomy.Taxonomy, error) {
	categories, err := l.Categories(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	tax, err := taxonomy.New(categories)
	if err != nil {
		return nil, fmt.Errorf("failed to build taxonomy: %w", err)
	}
	return tax, nil
}

// Invalidate drops the cached categories of a workspace. Failures are logged.
func (l *TaxonomyLoader) Invalidate(ctx context.Context, workspaceID uuid.UUID) {
	if l.cache == nil {
		return
	}
	if err := l.cache.Invalidate(ctx, workspaceID); err != nil {
		slog.Default().Warn("Category cache invalidation failed",
			"workspaceID", workspaceID.String(),
			"error", err.Error(),
		)
	}
}
