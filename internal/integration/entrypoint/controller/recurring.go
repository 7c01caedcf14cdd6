package controller

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/finance-tracker/bookkeeping/internal/application/usecase/recurring"
	"github.com/finance-tracker/bookkeeping/internal/integration/entrypoint/dto"
)

// RecurringController handles recurring series endpoints.
type RecurringController struct {
	detectUseCase *recurring.DetectRecurringSeriesUseCase
	listUseCase   *recurring.ListRecurringSeriesUseCase
	now           func() time.Time
}

// NewRecurringController creates a new recurring controller instance.
func NewRecurringController(
	detectUseCase *recurring.DetectRecurringSeriesUseCase,
	listUseCase *recurring.ListRecurringSeriesUseCase,
	now func() time.Time,
) *RecurringController {
	if now == nil {
		now = time.Now
	}
	return &RecurringController{
		detectUseCase: detectUseCase,
		listUseCase:   listUseCase,
		now:           now,
	}
}

// Detect handles POST /recurring/detect requests. ?as_of=YYYY-MM-DD moves the
// end of the lookback window.
func (c *RecurringController) Detect(ctx *gin.Context) {
	workspaceID, ok := requireWorkspace(ctx)
	if !ok {
		return
	}

	asOf := c.now()
	if asOfStr := ctx.Query("as_of"); asOfStr != "" {
		parsed, err := time.Parse("2006-01-02", asOfStr)
		if err != nil {
			badRequest(ctx, "Invalid as_of format, expected YYYY-MM-DD")
			return
		}
		asOf = parsed
	}

	output, err := c.detectUseCase.Execute(ctx.Request.Context(), recurring.DetectRecurringSeriesInput{
		WorkspaceID: workspaceID,
		AsOf:        asOf,
	})
	if err != nil {
		handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToDetectRecurringResponse(output))
}

// List handles GET /recurring requests.
func (c *RecurringController) List(ctx *gin.Context) {
	workspaceID, ok := requireWorkspace(ctx)
	if !ok {
		return
	}

	input := recurring.ListRecurringSeriesInput{
		WorkspaceID: workspaceID,
	}
	if minStr := ctx.Query("min_confidence"); minStr != "" {
		minConfidence, err := strconv.ParseFloat(minStr, 64)
		if err != nil || minConfidence < 0 || minConfidence > 1 {
			badRequest(ctx, "min_confidence must be a number between 0 and 1")
			return
		}
		input.MinConfidence = minConfidence
	}

	output, err := c.listUseCase.Execute(ctx.Request.Context(), input)
	if err != nil {
		handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToRecurringSeriesListResponse(output))
}
