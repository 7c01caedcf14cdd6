package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/finance-tracker/bookkeeping/internal/application/usecase/patternrule"
	"github.com/finance-tracker/bookkeeping/internal/integration/entrypoint/dto"
)

// PatternRuleController handles workspace override rule endpoints.
type PatternRuleController struct {
	listUseCase   *patternrule.ListPatternRulesUseCase
	createUseCase *patternrule.CreatePatternRuleUseCase
	deleteUseCase *patternrule.DeletePatternRuleUseCase
	testUseCase   *patternrule.TestPatternUseCase
}

// NewPatternRuleController creates a new pattern rule controller instance.
func NewPatternRuleController(
	listUseCase *patternrule.ListPatternRulesUseCase,
	createUseCase *patternrule.CreatePatternRuleUseCase,
	deleteUseCase *patternrule.DeletePatternRuleUseCase,
	testUseCase *patternrule.TestPatternUseCase,
) *PatternRuleController {
	return &PatternRuleController{
		listUseCase:   listUseCase,
		createUseCase: createUseCase,
		deleteUseCase: deleteUseCase,
		testUseCase:   testUseCase,
	}
}

// List handles GET /pattern-rules requests. ?include_builtins=true appends
// the built-in table.
func (c *PatternRuleController) List(ctx *gin.Context) {
	workspaceID, ok := requireWorkspace(ctx)
	if !ok {
		return
	}

	output, err := c.listUseCase.Execute(ctx.Request.Context(), patternrule.ListPatternRulesInput{
		WorkspaceID:     workspaceID,
		IncludeBuiltins: ctx.Query("include_builtins") == "true",
	})
	if err != nil {
		handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToPatternRuleListResponse(output.Rules))
}

// Create handles POST /pattern-rules requests.
func (c *PatternRuleController) Create(ctx *gin.Context) {
	workspaceID, ok := requireWorkspace(ctx)
	if !ok {
		return
	}

	var req dto.CreatePatternRuleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, "Invalid request body")
		return
	}

	output, err := c.createUseCase.Execute(ctx.Request.Context(), patternrule.CreatePatternRuleInput{
		WorkspaceID:         workspaceID,
		Name:                req.Name,
		Keywords:            req.Keywords,
		TargetParent:        req.TargetParent,
		TargetChild:         req.TargetChild,
		BaseConfidence:      req.BaseConfidence,
		Priority:            req.Priority,
		MinAmount:           req.MinAmount,
		MaxAmount:           req.MaxAmount,
		CorroborationAmount: req.CorroborationAmount,
	})
	if err != nil {
		handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.ToPatternRuleResponse(output.Rule))
}

// Delete handles DELETE /pattern-rules/:id requests.
func (c *PatternRuleController) Delete(ctx *gin.Context) {
	workspaceID, ok := requireWorkspace(ctx)
	if !ok {
		return
	}

	ruleID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	_, err := c.deleteUseCase.Execute(ctx.Request.Context(), patternrule.DeletePatternRuleInput{
		WorkspaceID: workspaceID,
		RuleID:      ruleID,
	})
	if err != nil {
		handleError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

// Test handles POST /pattern-rules/test requests.
func (c *PatternRuleController) Test(ctx *gin.Context) {
	workspaceID, ok := requireWorkspace(ctx)
	if !ok {
		return
	}

	var req dto.TestPatternRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, "Invalid request body")
		return
	}

	output, err := c.testUseCase.Execute(ctx.Request.Context(), patternrule.TestPatternInput{
		WorkspaceID:  workspaceID,
		Merchant:     req.Merchant,
		Amount:       req.Amount,
		ProviderCode: req.ProviderCode,
	})
	if err != nil {
		handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToTestPatternResponse(output))
}
