package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/finance-tracker/bookkeeping/internal/application/usecase/budget"
	"github.com/finance-tracker/bookkeeping/internal/integration/entrypoint/dto"
)

// BudgetController handles budget performance and override endpoints.
type BudgetController struct {
	performanceUseCase   *budget.GetPerformanceUseCase
	setOverrideUseCase   *budget.SetOverrideUseCase
	clearOverrideUseCase *budget.ClearOverrideUseCase
	now                  func() time.Time
}

// NewBudgetController creates a new budget controller instance.
func NewBudgetController(
	performanceUseCase *budget.GetPerformanceUseCase,
	setOverrideUseCase *budget.SetOverrideUseCase,
	clearOverrideUseCase *budget.ClearOverrideUseCase,
	now func() time.Time,
) *BudgetController {
	if now == nil {
		now = time.Now
	}
	return &BudgetController{
		performanceUseCase:   performanceUseCase,
		setOverrideUseCase:   setOverrideUseCase,
		clearOverrideUseCase: clearOverrideUseCase,
		now:                  now,
	}
}

// Performance handles GET /budgets/performance requests. Without start and
// end the current calendar month is used.
func (c *BudgetController) Performance(ctx *gin.Context) {
	workspaceID, ok := requireWorkspace(ctx)
	if !ok {
		return
	}

	start, end := budget.MonthBounds(c.now())
	if startStr := ctx.Query("start"); startStr != "" {
		parsed, err := time.Parse("2006-01-02", startStr)
		if err != nil {
			badRequest(ctx, "Invalid start format, expected YYYY-MM-DD")
			return
		}
		start = parsed
	}
	if endStr := ctx.Query("end"); endStr != "" {
		parsed, err := time.Parse("2006-01-02", endStr)
		if err != nil {
			badRequest(ctx, "Invalid end format, expected YYYY-MM-DD")
			return
		}
		end = parsed
	}

	output, err := c.performanceUseCase.Execute(ctx.Request.Context(), budget.GetPerformanceInput{
		WorkspaceID: workspaceID,
		Start:       start,
		End:         end,
	})
	if err != nil {
		handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToBudgetPerformanceResponse(output))
}

// SetOverride handles PUT /budgets/overrides/:transaction_id requests.
func (c *BudgetController) SetOverride(ctx *gin.Context) {
	workspaceID, ok := requireWorkspace(ctx)
	if !ok {
		return
	}

	transactionID, ok := pathID(ctx, "transaction_id")
	if !ok {
		return
	}

	var req dto.SetOverrideRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, "Invalid request body")
		return
	}
	lineID, err := uuid.Parse(req.BudgetLineID)
	if err != nil {
		badRequest(ctx, "Invalid budget_line_id format")
		return
	}

	override, err := c.setOverrideUseCase.Execute(ctx.Request.Context(), budget.SetOverrideInput{
		WorkspaceID:   workspaceID,
		TransactionID: transactionID,
		BudgetLineID:  lineID,
	})
	if err != nil {
		handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToBudgetOverrideResponse(override))
}

// ClearOverride handles DELETE /budgets/overrides/:transaction_id requests.
func (c *BudgetController) ClearOverride(ctx *gin.Context) {
	workspaceID, ok := requireWorkspace(ctx)
	if !ok {
		return
	}

	transactionID, ok := pathID(ctx, "transaction_id")
	if !ok {
		return
	}

	err := c.clearOverrideUseCase.Execute(ctx.Request.Context(), budget.ClearOverrideInput{
		WorkspaceID:   workspaceID,
		TransactionID: transactionID,
	})
	if err != nil {
		handleError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}
