package persistence

import "github.com/finance-tracker/bookkeeping/internal/integration/persistence/model"

// Models returns every model the service persists, in migration order.
func Models() []any {
	return []any{
		&model.CategoryModel{},
		&model.TransactionModel{},
		&model.PatternRuleModel{},
		&model.BudgetGroupModel{},
		&model.BudgetLineModel{},
		&model.BudgetOverrideModel{},
		&model.RecurringSeriesModel{},
		&model.MerchantCategoryStatModel{},
	}
}
