package dto

import (
	"time"

	"github.com/finance-tracker/bookkeeping/internal/application/usecase/budget"
	"github.com/finance-tracker/bookkeeping/internal/domain/entity"
)

// SetOverrideRequest represents the request body for assigning a transaction to a budget line.
type SetOverrideRequest struct {
	BudgetLineID string `json:"budget_line_id" binding:"required"`
}

// BudgetLineResponse represents the performance of one budget line.
type BudgetLineResponse struct {
	LineID           string  `json:"line_id"`
	GroupID          *string `json:"group_id"`
	CategoryID       string  `json:"category_id"`
	CategoryName     string  `json:"category_name"`
	Budgeted         string  `json:"budgeted"`
	Spent            string  `json:"spent"`
	Remaining        string  `json:"remaining"`
	PercentageUsed   string  `json:"percentage_used"`
	Status           string  `json:"status"`
	Unbudgeted       bool    `json:"unbudgeted"`
	CategoryMissing  bool    `json:"category_missing,omitempty"`
	TransactionCount int     `json:"transaction_count"`
}

// BudgetGroupResponse represents the roll-up of a budget group.
type BudgetGroupResponse struct {
	GroupID        string               `json:"group_id"`
	Name           string               `json:"name"`
	Budgeted       string               `json:"budgeted"`
	Spent          string               `json:"spent"`
	Remaining      string               `json:"remaining"`
	PercentageUsed string               `json:"percentage_used"`
	Status         string               `json:"status"`
	Lines          []BudgetLineResponse `json:"lines"`
}

// BudgetLineErrorResponse reports a line excluded from the computation.
type BudgetLineErrorResponse struct {
	LineID  string `json:"line_id"`
	Message string `json:"message"`
}

// BudgetPerformanceResponse represents the budget performance of a period.
type BudgetPerformanceResponse struct {
	Start           string                    `json:"start"`
	End             string                    `json:"end"`
	Lines           []BudgetLineResponse      `json:"lines"`
	Groups          []BudgetGroupResponse     `json:"groups"`
	TotalBudgeted   string                    `json:"total_budgeted"`
	TotalSpent      string                    `json:"total_spent"`
	TotalRemaining  string                    `json:"total_remaining"`
	UnassignedSpent string                    `json:"unassigned_spent"`
	StaleOverrides  int                       `json:"stale_overrides"`
	LineErrors      []BudgetLineErrorResponse `json:"line_errors,omitempty"`
}

// BudgetOverrideResponse represents a stored budget override.
type BudgetOverrideResponse struct {
	TransactionID string    `json:"transaction_id"`
	BudgetLineID  string    `json:"budget_line_id"`
	CreatedAt     time.Time `json:"created_at"`
}

func toBudgetLineResponses(outputs []*budget.LineOutput) []BudgetLineResponse {
	lines := make([]BudgetLineResponse, len(outputs))
	for i, l := range outputs {
		lines[i] = BudgetLineResponse{
			LineID:           l.LineID.String(),
			GroupID:          optionalID(l.GroupID),
			CategoryID:       l.CategoryID.String(),
			CategoryName:     l.CategoryName,
			Budgeted:         l.Budgeted.StringFixed(2),
			Spent:            l.Spent.StringFixed(2),
			Remaining:        l.Remaining.StringFixed(2),
			PercentageUsed:   l.PercentageUsed,
			Status:           string(l.Status),
			Unbudgeted:       l.Unbudgeted,
			CategoryMissing:  l.CategoryMissing,
			TransactionCount: l.TransactionCount,
		}
	}
	return lines
}

// ToBudgetPerformanceResponse converts a GetPerformanceOutput to its response DTO.
func ToBudgetPerformanceResponse(output *budget.GetPerformanceOutput) BudgetPerformanceResponse {
	groups := make([]BudgetGroupResponse, len(output.Groups))
	for i, g := range output.Groups {
		groups[i] = BudgetGroupResponse{
			GroupID:        g.GroupID.String(),
			Name:           g.Name,
			Budgeted:       g.Budgeted.StringFixed(2),
			Spent:          g.Spent.StringFixed(2),
			Remaining:      g.Remaining.StringFixed(2),
			PercentageUsed: g.PercentageUsed,
			Status:         string(g.Status),
			Lines:          toBudgetLineResponses(g.Lines),
		}
	}

	var lineErrors []BudgetLineErrorResponse
	for _, e := range output.LineErrors {
		lineErrors = append(lineErrors, BudgetLineErrorResponse{
			LineID:  e.LineID.String(),
			Message: e.Message,
		})
	}

	return BudgetPerformanceResponse{
		Start:           output.Start.Format("2006-01-02"),
		End:             output.End.Format("2006-01-02"),
		Lines:           toBudgetLineResponses(output.Lines),
		Groups:          groups,
		TotalBudgeted:   output.TotalBudgeted.StringFixed(2),
		TotalSpent:      output.TotalSpent.StringFixed(2),
		TotalRemaining:  output.TotalRemaining.StringFixed(2),
		UnassignedSpent: output.UnassignedSpent.StringFixed(2),
		StaleOverrides:  output.StaleOverrides,
		LineErrors:      lineErrors,
	}
}

// ToBudgetOverrideResponse converts a BudgetOverride entity to its response DTO.
func ToBudgetOverrideResponse(override *entity.BudgetOverride) BudgetOverrideResponse {
	return BudgetOverrideResponse{
		TransactionID: override.TransactionID.String(),
		BudgetLineID:  override.BudgetLineID.String(),
		CreatedAt:     override.CreatedAt,
	}
}
