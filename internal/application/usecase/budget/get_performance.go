// Package budget contains budget performance use cases.
package budget

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finance-tracker/bookkeeping/internal/application/adapter"
	"github.com/finance-tracker/bookkeeping/internal/application/usecase/category"
	aggregator "github.com/finance-tracker/bookkeeping/internal/domain/budget"
	"github.com/finance-tracker/bookkeeping/internal/domain/entity"
	domainerror "github.com/finance-tracker/bookkeeping/internal/domain/error"
	"github.com/finance-tracker/bookkeeping/internal/domain/valueobject"
)

// GetPerformanceInput represents the input for computing budget performance.
// Start and End are inclusive.
type GetPerformanceInput struct {
	WorkspaceID uuid.UUID
	Start       time.Time
	End         time.Time
}

// LineOutput represents the performance of one budget line.
type LineOutput struct {
	LineID           uuid.UUID
	GroupID          *uuid.UUID
	CategoryID       uuid.UUID
	CategoryName     string
	Budgeted         decimal.Decimal
	Spent            decimal.Decimal
	Remaining        decimal.Decimal
	PercentageUsed   string
	Status           entity.BudgetStatus
	Unbudgeted       bool
	CategoryMissing  bool
	TransactionCount int
}

// GroupOutput represents the roll-up of a budget group.
type GroupOutput struct {
	GroupID        uuid.UUID
	Name           string
	Budgeted       decimal.Decimal
	Spent          decimal.Decimal
	Remaining      decimal.Decimal
	PercentageUsed string
	Status         entity.BudgetStatus
	Lines          []*LineOutput
}

// LineErrorOutput reports a line excluded from the computation.
type LineErrorOutput struct {
	LineID  uuid.UUID
	Message string
}

// GetPerformanceOutput represents the budget performance of a period.
type GetPerformanceOutput struct {
	Start           time.Time
	End             time.Time
	Lines           []*LineOutput
	Groups          []*GroupOutput
	TotalBudgeted   decimal.Decimal
	TotalSpent      decimal.Decimal
	TotalRemaining  decimal.Decimal
	UnassignedSpent decimal.Decimal
	StaleOverrides  int
	LineErrors      []*LineErrorOutput
}

// GetPerformanceUseCase recomputes spent and remaining for every budget line
// from the period's transactions and writes the derived figures back.
type GetPerformanceUseCase struct {
	transactionRepo adapter.TransactionRepository
	budgetRepo      adapter.BudgetRepository
	taxLoader       *category.TaxonomyLoader
	thresholds      valueobject.BudgetThresholds
}

// NewGetPerformanceUseCase creates a new GetPerformanceUseCase instance.
func NewGetPerformanceUseCase(
	transactionRepo adapter.TransactionRepository,
	budgetRepo adapter.BudgetRepository,
	taxLoader *category.TaxonomyLoader,
	thresholds valueobject.BudgetThresholds,
) *GetPerformanceUseCase {
	return &GetPerformanceUseCase{
		transactionRepo: transactionRepo,
		budgetRepo:      budgetRepo,
		taxLoader:       taxLoader,
		thresholds:      thresholds,
	}
}

// Execute computes the performance of the period.
func (uc *GetPerformanceUseCase) Execute(ctx context.Context, input GetPerformanceInput) (*GetPerformanceOutput, error) {
	period := entity.BudgetPeriod{
		ID:          uuid.NewSHA1(input.WorkspaceID, []byte(input.Start.Format(time.DateOnly)+"/"+input.End.Format(time.DateOnly))),
		WorkspaceID: input.WorkspaceID,
		Start:       input.Start,
		End:         input.End,
	}
	if period.End.Before(period.Start) {
		return nil, domainerror.NewBudgetError(
			domainerror.ErrCodeInvalidBudgetPeriod,
			fmt.Sprintf("period ends %s before it starts %s", input.End.Format(time.DateOnly), input.Start.Format(time.DateOnly)),
			domainerror.ErrInvalidBudgetPeriod,
		)
	}

	lines, err := uc.budgetRepo.FindLines(ctx, input.WorkspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to find budget lines: %w", err)
	}
	groups, err := uc.budgetRepo.FindGroups(ctx, input.WorkspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to find budget groups: %w", err)
	}
	overrides, err := uc.budgetRepo.FindOverrides(ctx, input.WorkspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to find budget overrides: %w", err)
	}
	txs, err := uc.transactionRepo.FindOutflowsBetween(ctx, input.WorkspaceID, input.Start, input.End)
	if err != nil {
		return nil, fmt.Errorf("failed to find outflows: %w", err)
	}
	tax, err := uc.taxLoader.Load(ctx, input.WorkspaceID)
	if err != nil {
		return nil, err
	}

	perf, err := aggregator.Aggregate(aggregator.Input{
		Period:       period,
		Lines:        lines,
		Groups:       groups,
		Overrides:    overrides,
		Transactions: txs,
		Taxonomy:     tax,
		Thresholds:   uc.thresholds,
	})
	if err != nil {
		return nil, err
	}

	if err := uc.budgetRepo.UpdateComputed(ctx, perf.Lines); err != nil {
		return nil, fmt.Errorf("failed to store budget performance: %w", err)
	}

	logger := slog.Default().With("workspaceID", input.WorkspaceID.String())
	for lineID, lineErr := range perf.LineErrors {
		logger.Warn("Budget line excluded", "lineID", lineID.String(), "error", lineErr.Error())
	}
	if perf.StaleOverrides > 0 {
		logger.Warn("Stale budget overrides ignored", "count", perf.StaleOverrides)
	}

	output := &GetPerformanceOutput{
		Start:           input.Start,
		End:             input.End,
		Lines:           make([]*LineOutput, 0, len(perf.Lines)),
		Groups:          make([]*GroupOutput, 0, len(perf.Groups)),
		TotalBudgeted:   minorUnits(perf.TotalBudgeted),
		TotalSpent:      minorUnits(perf.TotalSpent),
		TotalRemaining:  minorUnits(perf.TotalRemaining),
		UnassignedSpent: minorUnits(perf.UnassignedSpent),
		StaleOverrides:  perf.StaleOverrides,
	}
	for _, lp := range perf.Lines {
		output.Lines = append(output.Lines, toLineOutput(lp, tax.DisplayName(lp.CategoryID)))
	}
	for _, gp := range perf.Groups {
		g := &GroupOutput{
			GroupID:        gp.GroupID,
			Name:           gp.Name,
			Budgeted:       minorUnits(gp.Budgeted),
			Spent:          minorUnits(gp.Spent),
			Remaining:      minorUnits(gp.Remaining),
			PercentageUsed: aggregator.Ratio(gp.PercentageUsed),
			Status:         gp.Status,
			Lines:          make([]*LineOutput, 0, len(gp.Lines)),
		}
		for _, lp := range gp.Lines {
			g.Lines = append(g.Lines, toLineOutput(lp, tax.DisplayName(lp.CategoryID)))
		}
		output.Groups = append(output.Groups, g)
	}
	for _, line := range lines {
		if lineErr, ok := perf.LineErrors[line.ID]; ok {
			output.LineErrors = append(output.LineErrors, &LineErrorOutput{LineID: line.ID, Message: lineErr.Error()})
		}
	}

	return output, nil
}

func toLineOutput(lp entity.LinePerformance, categoryName string) *LineOutput {
	return &LineOutput{
		LineID:           lp.LineID,
		GroupID:          lp.GroupID,
		CategoryID:       lp.CategoryID,
		CategoryName:     categoryName,
		Budgeted:         minorUnits(lp.Budgeted),
		Spent:            minorUnits(lp.Spent),
		Remaining:        minorUnits(lp.Remaining),
		PercentageUsed:   aggregator.Ratio(lp.PercentageUsed),
		Status:           lp.Status,
		Unbudgeted:       lp.Unbudgeted,
		CategoryMissing:  lp.CategoryMissing,
		TransactionCount: lp.TransactionCount,
	}
}

func minorUnits(amount int64) decimal.Decimal {
	return decimal.New(amount, -2)
}

// MonthBounds returns the first and last day of t's calendar month.
func MonthBounds(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, -1)
}
