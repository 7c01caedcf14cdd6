package resolver

import (
	"github.com/google/uuid"

	"github.com/finance-tracker/bookkeeping/internal/domain/entity"
	"github.com/finance-tracker/bookkeeping/internal/domain/taxonomy"
)

// CategoryMatches reports whether a resolved category falls under a filter
// category: a root matches itself, its children and grandchildren; a middle
// category matches itself and its children; a leaf matches only itself.
// List filtering and budget aggregation both use this predicate.
func CategoryMatches(resolvedID, filterID uuid.UUID, tax *taxonomy.Taxonomy) bool {
	return tax.IsSelfOrDescendant(resolvedID, filterID)
}

// MatchesCategoryFilter reports whether tx's resolved category falls under filterID.
// Uncategorized transactions never match.
func MatchesCategoryFilter(tx *entity.Transaction, filterID uuid.UUID, tax *taxonomy.Taxonomy) bool {
	id, ok := Resolve(tx).CategoryID()
	if !ok {
		return false
	}
	return CategoryMatches(id, filterID, tax)
}
