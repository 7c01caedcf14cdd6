// Package transaction contains transaction-related use cases.
package transaction

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finance-tracker/bookkeeping/internal/application/adapter"
	"github.com/finance-tracker/bookkeeping/internal/application/usecase/category"
	"github.com/finance-tracker/bookkeeping/internal/domain/entity"
	domainerror "github.com/finance-tracker/bookkeeping/internal/domain/error"
	"github.com/finance-tracker/bookkeeping/internal/domain/merchant"
	"github.com/finance-tracker/bookkeeping/internal/domain/resolver"
)

// Pagination defaults and bounds.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// ListTransactionsInput represents the input for listing transactions.
type ListTransactionsInput struct {
	WorkspaceID uuid.UUID
	CategoryID  *uuid.UUID
	StartDate   *time.Time
	EndDate     *time.Time
	Direction   *entity.Direction
	Page        int
	Limit       int
}

// CategoryOutput is the category a transaction displays.
type CategoryOutput struct {
	ID          *uuid.UUID
	PrimaryID   *uuid.UUID
	SecondaryID *uuid.UUID
	Name        string
	Source      resolver.Source
	Confidence  float64
	Method      entity.CategorizationMethod
}

// TransactionOutput represents a single transaction in the output.
type TransactionOutput struct {
	ID           uuid.UUID
	Date         time.Time
	Amount       int64
	Direction    entity.Direction
	Status       entity.TransactionStatus
	MerchantName *string
	MerchantKey  string
	Description  string
	Category     CategoryOutput
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PaginationOutput represents pagination information in the output.
type PaginationOutput struct {
	Page       int
	Limit      int
	Total      int64
	TotalPages int
}

// TotalsOutput represents totals over every matching transaction, not only the page.
type TotalsOutput struct {
	InflowTotal  decimal.Decimal
	OutflowTotal decimal.Decimal
	NetTotal     decimal.Decimal
}

// ListTransactionsOutput represents the output of listing transactions.
type ListTransactionsOutput struct {
	Transactions []*TransactionOutput
	Pagination   PaginationOutput
	Totals       TotalsOutput
}

// ListTransactionsUseCase handles listing transactions logic.
type ListTransactionsUseCase struct {
	transactionRepo adapter.TransactionRepository
	taxLoader       *category.TaxonomyLoader
}

// NewListTransactionsUseCase creates a new ListTransactionsUseCase instance.
func NewListTransactionsUseCase(transactionRepo adapter.TransactionRepository, taxLoader *category.TaxonomyLoader) *ListTransactionsUseCase {
	return &ListTransactionsUseCase{
		transactionRepo: transactionRepo,
		taxLoader:       taxLoader,
	}
}

// Execute performs the transaction listing. A category filter matches the
// category and everything below it, using each transaction's resolved category.
func (uc *ListTransactionsUseCase) Execute(ctx context.Context, input ListTransactionsInput) (*ListTransactionsOutput, error) {
	if input.Page < 0 || input.Limit < 0 {
		return nil, domainerror.NewTransactionError(
			domainerror.ErrCodeInvalidPagination,
			fmt.Sprintf("page %d and limit %d must not be negative", input.Page, input.Limit),
			domainerror.ErrInvalidPagination,
		)
	}
	if input.CategoryID != nil && *input.CategoryID == uuid.Nil {
		return nil, domainerror.NewTransactionError(
			domainerror.ErrCodeInvalidCategoryFilter,
			"category filter must not be empty",
			domainerror.ErrValidation,
		)
	}

	page := max(input.Page, 1)
	limit := input.Limit
	if limit == 0 {
		limit = DefaultLimit
	}
	limit = min(limit, MaxLimit)

	tax, err := uc.taxLoader.Load(ctx, input.WorkspaceID)
	if err != nil {
		return nil, err
	}

	all, err := uc.transactionRepo.FindByWorkspace(ctx, input.WorkspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to find transactions: %w", err)
	}

	matched := make([]*entity.Transaction, 0, len(all))
	inflow, outflow := int64(0), int64(0)
	for _, tx := range all {
		if !matchesInput(tx, input) {
			continue
		}
		if input.CategoryID != nil && !resolver.MatchesCategoryFilter(tx, *input.CategoryID, tax) {
			continue
		}
		matched = append(matched, tx)
		if tx.Direction == entity.DirectionInflow {
			inflow += tx.Amount
		} else {
			outflow += tx.Amount
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		if !matched[i].Date.Equal(matched[j].Date) {
			return matched[i].Date.After(matched[j].Date)
		}
		return matched[i].ID.String() < matched[j].ID.String()
	})

	total := len(matched)
	start := min((page-1)*limit, total)
	end := min(start+limit, total)

	output := &ListTransactionsOutput{
		Transactions: make([]*TransactionOutput, 0, end-start),
		Pagination: PaginationOutput{
			Page:       page,
			Limit:      limit,
			Total:      int64(total),
			TotalPages: (total + limit - 1) / limit,
		},
		Totals: TotalsOutput{
			InflowTotal:  minorUnits(inflow),
			OutflowTotal: minorUnits(outflow),
			NetTotal:     minorUnits(inflow - outflow),
		},
	}

	for _, tx := range matched[start:end] {
		resolved := resolver.Resolve(tx)
		cat := CategoryOutput{
			PrimaryID:   resolved.PrimaryID,
			SecondaryID: resolved.SecondaryID,
			Name:        resolver.DisplayName(resolved, tax),
			Source:      resolved.Source,
			Confidence:  resolved.Confidence,
			Method:      resolved.Method,
		}
		if id, ok := resolved.CategoryID(); ok {
			cat.ID = &id
		}

		output.Transactions = append(output.Transactions, &TransactionOutput{
			ID:           tx.ID,
			Date:         tx.Date,
			Amount:       tx.Amount,
			Direction:    tx.Direction,
			Status:       tx.Status,
			MerchantName: tx.MerchantName,
			MerchantKey:  merchant.Key(tx),
			Description:  tx.Description,
			Category:     cat,
			CreatedAt:    tx.CreatedAt,
			UpdatedAt:    tx.UpdatedAt,
		})
	}

	return output, nil
}

func matchesInput(tx *entity.Transaction, input ListTransactionsInput) bool {
	if input.StartDate != nil && tx.Date.Before(*input.StartDate) {
		return false
	}
	if input.EndDate != nil && tx.Date.After(*input.EndDate) {
		return false
	}
	if input.Direction != nil && tx.Direction != *input.Direction {
		return false
	}
	return true
}

// minorUnits converts an amount in cents to a decimal currency value.
func minorUnits(amount int64) decimal.Decimal {
	return decimal.New(amount, -2)
}
