// Package budget aggregates categorized spending into budget line and group performance.
package budget

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finance-tracker/bookkeeping/internal/domain/entity"
	domainerror "github.com/finance-tracker/bookkeeping/internal/domain/error"
	"github.com/finance-tracker/bookkeeping/internal/domain/resolver"
	"github.com/finance-tracker/bookkeeping/internal/domain/taxonomy"
	"github.com/finance-tracker/bookkeeping/internal/domain/valueobject"
)

// Input is the snapshot a single aggregation runs over.
type Input struct {
	Period       entity.BudgetPeriod
	Lines        []entity.BudgetLine
	Groups       []entity.BudgetGroup
	Overrides    []entity.BudgetOverride
	Transactions []*entity.Transaction
	Taxonomy     *taxonomy.Taxonomy
	Thresholds   valueobject.BudgetThresholds
}

type lineState struct {
	line    entity.BudgetLine
	depth   int
	missing bool
	spent   int64
	count   int
}

// Aggregate computes spent, remaining and status for every line in the period.
// Each eligible transaction is counted against at most one line: its override
// line when the override is live, otherwise the most specific line whose
// category covers the transaction's resolved category. A parent line's spent
// therefore excludes transactions claimed by a more specific child line; the
// group rollup is where the two add up.
func Aggregate(in Input) (*entity.BudgetPerformance, error) {
	if in.Period.End.Before(in.Period.Start) {
		return nil, domainerror.NewBudgetError(
			domainerror.ErrCodeInvalidBudgetPeriod,
			fmt.Sprintf("period %s ends before it starts", in.Period.ID),
			domainerror.ErrInvalidBudgetPeriod,
		)
	}

	tax := in.Taxonomy
	if tax == nil {
		tax, _ = taxonomy.New(nil)
	}
	thresholds := in.Thresholds
	if thresholds.NearLimit.IsZero() {
		thresholds = valueobject.DefaultBudgetThresholds()
	}

	perf := &entity.BudgetPerformance{
		Period:     in.Period,
		LineErrors: make(map[uuid.UUID]error),
	}

	states := make([]*lineState, 0, len(in.Lines))
	byID := make(map[uuid.UUID]*lineState, len(in.Lines))
	for _, line := range in.Lines {
		if line.Budgeted < 0 {
			perf.LineErrors[line.ID] = domainerror.NewBudgetError(
				domainerror.ErrCodeNegativeBudget,
				fmt.Sprintf("budget line %s has budgeted amount %d", line.ID, line.Budgeted),
				domainerror.ErrNegativeBudget,
			)
			continue
		}
		s := &lineState{
			line:    line,
			depth:   tax.Depth(line.CategoryID),
			missing: !tax.Contains(line.CategoryID),
		}
		states = append(states, s)
		byID[line.ID] = s
	}

	overrides := make(map[uuid.UUID]uuid.UUID, len(in.Overrides))
	for _, o := range in.Overrides {
		overrides[o.TransactionID] = o.BudgetLineID
	}

	for _, tx := range in.Transactions {
		if tx == nil || tx.Amount < 0 || tx.Date.IsZero() {
			perf.Skipped++
			continue
		}
		if !eligible(tx, in.Period) {
			continue
		}

		if lineID, ok := overrides[tx.ID]; ok {
			if s, live := byID[lineID]; live {
				s.spent += tx.Amount
				s.count++
				continue
			}
			perf.StaleOverrides++
		}

		s := mostSpecificLine(tx, states, tax)
		if s == nil {
			perf.UnassignedSpent += tx.Amount
			continue
		}
		s.spent += tx.Amount
		s.count++
	}

	lines := make(map[uuid.UUID][]entity.LinePerformance)
	for _, s := range states {
		lp := entity.LinePerformance{
			LineID:           s.line.ID,
			GroupID:          s.line.GroupID,
			CategoryID:       s.line.CategoryID,
			Budgeted:         s.line.Budgeted,
			Spent:            s.spent,
			Remaining:        s.line.Budgeted - s.spent,
			PercentageUsed:   valueobject.PercentageUsed(s.spent, s.line.Budgeted),
			Unbudgeted:       s.line.Budgeted == 0,
			CategoryMissing:  s.missing,
			TransactionCount: s.count,
		}
		lp.Status = Classify(s.spent, s.line.Budgeted, thresholds)

		perf.Lines = append(perf.Lines, lp)
		perf.TotalBudgeted += lp.Budgeted
		perf.TotalSpent += lp.Spent
		if lp.GroupID != nil {
			lines[*lp.GroupID] = append(lines[*lp.GroupID], lp)
		}
	}
	perf.TotalRemaining = perf.TotalBudgeted - perf.TotalSpent

	for _, g := range in.Groups {
		gp := entity.GroupPerformance{GroupID: g.ID, Name: g.Name, Lines: lines[g.ID]}
		for _, lp := range gp.Lines {
			gp.Budgeted += lp.Budgeted
			gp.Spent += lp.Spent
		}
		gp.Remaining = gp.Budgeted - gp.Spent
		gp.PercentageUsed = valueobject.PercentageUsed(gp.Spent, gp.Budgeted)
		gp.Status = Classify(gp.Spent, gp.Budgeted, thresholds)
		perf.Groups = append(perf.Groups, gp)
	}

	return perf, nil
}

// Classify returns the status of spent against budgeted. Near limit covers
// [NearLimit, 100%); spending exactly the budget is on track, and spending
// anything against a zero budget is over.
func Classify(spent, budgeted int64, thresholds valueobject.BudgetThresholds) entity.BudgetStatus {
	if spent > budgeted {
		return entity.BudgetStatusOver
	}
	if budgeted == 0 {
		return entity.BudgetStatusOnTrack
	}
	used := valueobject.PercentageUsed(spent, budgeted)
	if used.GreaterThanOrEqual(thresholds.NearLimit) && used.LessThan(decimal.NewFromInt(1)) {
		return entity.BudgetStatusNearLimit
	}
	return entity.BudgetStatusOnTrack
}

func eligible(tx *entity.Transaction, period entity.BudgetPeriod) bool {
	if period.WorkspaceID != uuid.Nil && tx.WorkspaceID != period.WorkspaceID {
		return false
	}
	return tx.IsPostedOutflow() && period.Contains(tx.Date)
}

// mostSpecificLine picks the deepest matching line; earlier lines win ties.
func mostSpecificLine(tx *entity.Transaction, states []*lineState, tax *taxonomy.Taxonomy) *lineState {
	resolvedID, ok := resolver.Resolve(tx).CategoryID()
	if !ok {
		return nil
	}

	var best *lineState
	for _, s := range states {
		if s.missing || !resolver.CategoryMatches(resolvedID, s.line.CategoryID, tax) {
			continue
		}
		if best == nil || s.depth > best.depth {
			best = s
		}
	}
	return best
}

// Ratio formats a percentage for display with two decimal places.
func Ratio(p decimal.Decimal) string {
	return p.Mul(decimal.NewFromInt(100)).StringFixed(2)
}
