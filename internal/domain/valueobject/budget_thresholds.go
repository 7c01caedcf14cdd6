// Package valueobject contains domain value objects for the bookkeeping engine.
package valueobject

import "github.com/shopspring/decimal"

// NearLimitThreshold is the share of a budget at which a line is near its limit.
var NearLimitThreshold = decimal.NewFromFloat(0.80)

// BudgetThresholds contains the status thresholds of the budget aggregator.
type BudgetThresholds struct {
	NearLimit decimal.Decimal // 0.80 = 80%
}

// DefaultBudgetThresholds returns the default budget thresholds.
func DefaultBudgetThresholds() BudgetThresholds {
	return BudgetThresholds{
		NearLimit: NearLimitThreshold,
	}
}

// PercentageUsed returns spent / budgeted, or zero when nothing is budgeted.
func PercentageUsed(spent, budgeted int64) decimal.Decimal {
	if budgeted <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(spent).Div(decimal.NewFromInt(budgeted))
}
