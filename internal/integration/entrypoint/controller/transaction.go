package controller

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/finance-tracker/bookkeeping/internal/application/usecase/categorization"
	"github.com/finance-tracker/bookkeeping/internal/application/usecase/transaction"
	"github.com/finance-tracker/bookkeeping/internal/domain/entity"
	"github.com/finance-tracker/bookkeeping/internal/integration/entrypoint/dto"
)

// TransactionController handles transaction endpoints.
type TransactionController struct {
	listUseCase    *transaction.ListTransactionsUseCase
	correctUseCase *categorization.ApplyCorrectionUseCase
}

// NewTransactionController creates a new transaction controller instance.
func NewTransactionController(
	listUseCase *transaction.ListTransactionsUseCase,
	correctUseCase *categorization.ApplyCorrectionUseCase,
) *TransactionController {
	return &TransactionController{
		listUseCase:    listUseCase,
		correctUseCase: correctUseCase,
	}
}

// List handles GET /transactions requests.
func (c *TransactionController) List(ctx *gin.Context) {
	workspaceID, ok := requireWorkspace(ctx)
	if !ok {
		return
	}

	input := transaction.ListTransactionsInput{
		WorkspaceID: workspaceID,
	}

	if categoryIDStr := ctx.Query("category_id"); categoryIDStr != "" {
		categoryID, err := uuid.Parse(categoryIDStr)
		if err != nil {
			badRequest(ctx, "Invalid category_id format")
			return
		}
		input.CategoryID = &categoryID
	}

	if startDateStr := ctx.Query("start_date"); startDateStr != "" {
		startDate, err := time.Parse("2006-01-02", startDateStr)
		if err != nil {
			badRequest(ctx, "Invalid start_date format, expected YYYY-MM-DD")
			return
		}
		input.StartDate = &startDate
	}
	if endDateStr := ctx.Query("end_date"); endDateStr != "" {
		endDate, err := time.Parse("2006-01-02", endDateStr)
		if err != nil {
			badRequest(ctx, "Invalid end_date format, expected YYYY-MM-DD")
			return
		}
		input.EndDate = &endDate
	}

	if directionStr := ctx.Query("direction"); directionStr != "" {
		direction := entity.Direction(strings.ToLower(directionStr))
		if direction != entity.DirectionInflow && direction != entity.DirectionOutflow {
			badRequest(ctx, "direction must be inflow or outflow")
			return
		}
		input.Direction = &direction
	}

	if pageStr := ctx.Query("page"); pageStr != "" {
		page, err := strconv.Atoi(pageStr)
		if err != nil {
			badRequest(ctx, "Invalid page")
			return
		}
		input.Page = page
	}
	if limitStr := ctx.Query("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			badRequest(ctx, "Invalid limit")
			return
		}
		input.Limit = limit
	}

	output, err := c.listUseCase.Execute(ctx.Request.Context(), input)
	if err != nil {
		handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToTransactionListResponse(output))
}

// Correct handles PUT /transactions/:id/category requests.
func (c *TransactionController) Correct(ctx *gin.Context) {
	workspaceID, ok := requireWorkspace(ctx)
	if !ok {
		return
	}

	transactionID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req dto.CorrectCategoryRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, "Invalid request body")
		return
	}

	input := categorization.ApplyCorrectionInput{
		WorkspaceID:   workspaceID,
		TransactionID: transactionID,
	}
	if req.CategoryID != nil && *req.CategoryID != "" {
		categoryID, err := uuid.Parse(*req.CategoryID)
		if err != nil {
			badRequest(ctx, "Invalid category_id format")
			return
		}
		input.CategoryID = &categoryID
	}

	output, err := c.correctUseCase.Execute(ctx.Request.Context(), input)
	if err != nil {
		handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToCorrectCategoryResponse(output))
}
