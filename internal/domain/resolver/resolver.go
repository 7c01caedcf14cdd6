// Package resolver decides which of a transaction's category slots is shown
// and applies user corrections and machine assignments to those slots.
package resolver

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/finance-tracker/bookkeeping/internal/domain/entity"
	domainerror "github.com/finance-tracker/bookkeeping/internal/domain/error"
	"github.com/finance-tracker/bookkeeping/internal/domain/merchant"
	"github.com/finance-tracker/bookkeeping/internal/domain/rules"
	"github.com/finance-tracker/bookkeeping/internal/domain/taxonomy"
)

// Source identifies which slot a resolved category came from.
type Source string

const (
	SourceUser Source = "user"
	SourceAI   Source = "ai"
	SourceNone Source = "none"
)

// UncategorizedName is displayed when no slot holds a category.
const UncategorizedName = "Uncategorized"

// ResolvedCategory is the single category a transaction displays.
type ResolvedCategory struct {
	Source      Source
	PrimaryID   *uuid.UUID
	SecondaryID *uuid.UUID
	Confidence  float64
	Method      entity.CategorizationMethod
}

// CategoryID returns the most specific id: the secondary when set, else the primary.
func (r ResolvedCategory) CategoryID() (uuid.UUID, bool) {
	switch {
	case r.SecondaryID != nil:
		return *r.SecondaryID, true
	case r.PrimaryID != nil:
		return *r.PrimaryID, true
	default:
		return uuid.Nil, false
	}
}

// IsUncategorized reports whether neither slot holds a category.
func (r ResolvedCategory) IsUncategorized() bool {
	return r.Source == SourceNone
}

// Resolve applies the precedence user > AI > none.
// The provider category is never a source.
func Resolve(tx *entity.Transaction) ResolvedCategory {
	if tx.UserCategory.IsSet() {
		return ResolvedCategory{
			Source:      SourceUser,
			PrimaryID:   tx.UserCategory.PrimaryID,
			SecondaryID: tx.UserCategory.SecondaryID,
			Confidence:  1.0,
		}
	}
	if tx.AICategory.IsSet() {
		return ResolvedCategory{
			Source:      SourceAI,
			PrimaryID:   tx.AICategory.PrimaryID,
			SecondaryID: tx.AICategory.SecondaryID,
			Confidence:  tx.AICategory.Confidence,
			Method:      tx.AICategory.Method,
		}
	}
	return ResolvedCategory{Source: SourceNone}
}

// DisplayName returns the name path shown for a resolved category.
func DisplayName(r ResolvedCategory, tax *taxonomy.Taxonomy) string {
	id, ok := r.CategoryID()
	if !ok {
		return UncategorizedName
	}
	return tax.DisplayName(id)
}

// Correction is the outcome of applying a user correction.
type Correction struct {
	Transaction *entity.Transaction
	Signal      *entity.LearningSignal
	Changed     bool
}

// ApplyUserCorrection writes the user slot of a copy of tx.
// uuid.Nil clears the slot. A category with a parent becomes
// primary=parent, secondary=category; a root becomes primary only.
// Re-applying a correction the slot already holds changes nothing.
func ApplyUserCorrection(tx *entity.Transaction, chosen uuid.UUID, tax *taxonomy.Taxonomy, now time.Time) (*Correction, error) {
	updated := tx.Clone()

	if chosen == uuid.Nil {
		if !tx.UserCategory.IsSet() && tx.UserCategory.UpdatedAt != nil {
			return &Correction{Transaction: updated}, nil
		}
		stamp := now
		updated.UserCategory = entity.UserCategory{UpdatedAt: &stamp}
		updated.UpdatedAt = now
		return &Correction{Transaction: updated, Changed: true}, nil
	}

	if !tax.Contains(chosen) {
		return nil, domainerror.NewTransactionError(
			domainerror.ErrCodeCorrectionCategory,
			fmt.Sprintf("category %s does not exist", chosen),
			domainerror.ErrCategoryNotFound,
		)
	}

	primary, secondary := slotsFor(chosen, tax)
	if slotHolds(tx.UserCategory, primary, secondary) && tx.UserCategory.UpdatedAt != nil {
		return &Correction{Transaction: updated}, nil
	}

	previous, hadPrevious := Resolve(tx).CategoryID()

	stamp := now
	updated.UserCategory = entity.UserCategory{
		PrimaryID:   &primary,
		SecondaryID: secondary,
		UpdatedAt:   &stamp,
	}
	updated.UpdatedAt = now

	signal := &entity.LearningSignal{
		WorkspaceID:   tx.WorkspaceID,
		TransactionID: tx.ID,
		MerchantKey:   merchant.Key(tx),
		CategoryID:    chosen,
		OccurredAt:    now,
	}
	if hadPrevious {
		signal.PreviousCategoryID = &previous
	}

	return &Correction{Transaction: updated, Signal: signal, Changed: true}, nil
}

// Assignment is a machine categorization expressed as taxonomy ids.
type Assignment struct {
	PrimaryID   uuid.UUID
	SecondaryID *uuid.UUID
	Confidence  float64
	Method      entity.CategorizationMethod
}

// AssignmentFor resolves a matcher result against the taxonomy.
func AssignmentFor(m rules.Match, tax *taxonomy.Taxonomy) (Assignment, error) {
	primary, secondary, err := tax.FindPath(m.Parent, m.Child)
	if err != nil {
		return Assignment{}, err
	}
	return Assignment{
		PrimaryID:   primary,
		SecondaryID: secondary,
		Confidence:  m.Confidence,
		Method:      m.Method,
	}, nil
}

// AssignmentForCategory places a single chosen category into primary and
// secondary ids the same way a user correction would.
func AssignmentForCategory(id uuid.UUID, confidence float64, method entity.CategorizationMethod, tax *taxonomy.Taxonomy) (Assignment, error) {
	if !tax.Contains(id) {
		return Assignment{}, domainerror.NewCategoryError(
			domainerror.ErrCodeCategoryNotFound,
			fmt.Sprintf("category %s does not exist", id),
			domainerror.ErrCategoryNotFound,
		)
	}
	primary, secondary := slotsFor(id, tax)
	return Assignment{
		PrimaryID:   primary,
		SecondaryID: secondary,
		Confidence:  confidence,
		Method:      method,
	}, nil
}

// ApplyAICategory writes the AI slot of a copy of tx. The slot is written at
// most once; a transaction whose AI slot is already set is rejected.
func ApplyAICategory(tx *entity.Transaction, a Assignment, tax *taxonomy.Taxonomy, now time.Time) (*entity.Transaction, error) {
	if tx.AICategory.IsSet() {
		return nil, domainerror.NewTransactionError(
			domainerror.ErrCodeAICategoryAlreadySet,
			fmt.Sprintf("transaction %s already has an ai category", tx.ID),
			domainerror.ErrAICategoryAlreadySet,
		)
	}
	if !tax.Contains(a.PrimaryID) {
		return nil, domainerror.NewTransactionError(
			domainerror.ErrCodeCorrectionCategory,
			fmt.Sprintf("category %s does not exist", a.PrimaryID),
			domainerror.ErrCategoryNotFound,
		)
	}
	if a.SecondaryID != nil {
		parent, ok := tax.ParentOf(*a.SecondaryID)
		if !ok || parent != a.PrimaryID {
			return nil, domainerror.NewCategoryError(
				domainerror.ErrCodeInvalidTaxonomy,
				fmt.Sprintf("category %s is not a child of %s", *a.SecondaryID, a.PrimaryID),
				domainerror.ErrParentCategoryNotFound,
			)
		}
	}

	updated := tx.Clone()
	primary := a.PrimaryID
	stamp := now
	updated.AICategory = entity.AICategory{
		PrimaryID:     &primary,
		SecondaryID:   a.SecondaryID,
		Confidence:    a.Confidence,
		Method:        a.Method,
		CategorizedAt: &stamp,
	}
	updated.UpdatedAt = now
	return updated, nil
}

func slotsFor(chosen uuid.UUID, tax *taxonomy.Taxonomy) (uuid.UUID, *uuid.UUID) {
	if parent, ok := tax.ParentOf(chosen); ok {
		child := chosen
		return parent, &child
	}
	return chosen, nil
}

func slotHolds(slot entity.UserCategory, primary uuid.UUID, secondary *uuid.UUID) bool {
	if slot.PrimaryID == nil || *slot.PrimaryID != primary {
		return false
	}
	if secondary == nil || slot.SecondaryID == nil {
		return secondary == nil && slot.SecondaryID == nil
	}
	return *slot.SecondaryID == *secondary
}
