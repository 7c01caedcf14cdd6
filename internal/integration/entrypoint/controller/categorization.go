package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/finance-tracker/bookkeeping/internal/application/usecase/categorization"
	"github.com/finance-tracker/bookkeeping/internal/integration/entrypoint/dto"
)

// CategorizationController handles categorization run endpoints.
type CategorizationController struct {
	runUseCase    *categorization.RunCategorizationUseCase
	statusUseCase *categorization.GetStatusUseCase
}

// NewCategorizationController creates a new categorization controller instance.
func NewCategorizationController(
	runUseCase *categorization.RunCategorizationUseCase,
	statusUseCase *categorization.GetStatusUseCase,
) *CategorizationController {
	return &CategorizationController{
		runUseCase:    runUseCase,
		statusUseCase: statusUseCase,
	}
}

// Run handles POST /categorization/run requests.
func (c *CategorizationController) Run(ctx *gin.Context) {
	workspaceID, ok := requireWorkspace(ctx)
	if !ok {
		return
	}

	output, err := c.runUseCase.Execute(ctx.Request.Context(), categorization.RunCategorizationInput{
		WorkspaceID: workspaceID,
	})
	if err != nil {
		handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToRunCategorizationResponse(output))
}

// Status handles GET /categorization/status requests.
func (c *CategorizationController) Status(ctx *gin.Context) {
	workspaceID, ok := requireWorkspace(ctx)
	if !ok {
		return
	}

	output, err := c.statusUseCase.Execute(ctx.Request.Context(), categorization.GetStatusInput{
		WorkspaceID: workspaceID,
	})
	if err != nil {
		handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToCategorizationStatusResponse(output))
}
