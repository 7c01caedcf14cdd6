package controller

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	domainerror "github.com/finance-tracker/bookkeeping/internal/domain/error"
	"github.com/finance-tracker/bookkeeping/internal/integration/entrypoint/dto"
	"github.com/finance-tracker/bookkeeping/internal/integration/entrypoint/middleware"
)

// handleError writes the HTTP response for a use case error. Domain errors
// map by kind; anything else is logged and reported as an internal error.
func handleError(ctx *gin.Context, err error) {
	code, message, coded := errorDetails(err)

	status := statusForError(err)
	if status == http.StatusInternalServerError {
		slog.Default().Error("Request failed",
			"method", ctx.Request.Method,
			"path", ctx.FullPath(),
			"error", err.Error(),
		)
		ctx.JSON(status, dto.ErrorResponse{
			Error: "An internal error occurred",
			Code:  string(domainerror.ErrCodeInternal),
		})
		return
	}

	if !coded {
		message = err.Error()
	}
	ctx.JSON(status, dto.ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// statusForError maps error kinds to HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, domainerror.ErrCategorizationInProgress):
		return http.StatusConflict
	case errors.Is(err, domainerror.ErrCategoryNameExists),
		errors.Is(err, domainerror.ErrCategoryHasChildren):
		return http.StatusConflict
	}

	switch domainerror.Kind(err) {
	case domainerror.ErrValidation:
		return http.StatusBadRequest
	case domainerror.ErrNotFound:
		return http.StatusNotFound
	case domainerror.ErrAmbiguousMatch:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// errorDetails extracts the code and message of a coded domain error.
func errorDetails(err error) (string, string, bool) {
	var (
		catErr    *domainerror.CategoryError
		ruleErr   *domainerror.PatternRuleError
		txErr     *domainerror.TransactionError
		budgetErr *domainerror.BudgetError
	)
	switch {
	case errors.As(err, &catErr):
		return string(catErr.Code), catErr.Message, true
	case errors.As(err, &ruleErr):
		return string(ruleErr.Code), ruleErr.Message, true
	case errors.As(err, &txErr):
		return string(txErr.Code), txErr.Message, true
	case errors.As(err, &budgetErr):
		return string(budgetErr.Code), budgetErr.Message, true
	default:
		return "", "", false
	}
}

// requireWorkspace returns the request's workspace, writing a 400 response when
// the workspace middleware did not run.
func requireWorkspace(ctx *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.GetWorkspaceIDFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: middleware.WorkspaceHeader + " header is required",
			Code:  string(domainerror.ErrCodeMissingWorkspace),
		})
		return uuid.Nil, false
	}
	return id, true
}

// pathID parses a UUID path parameter, writing a 400 response when it is malformed.
func pathID(ctx *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(ctx.Param(name))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid " + name + " format",
			Code:  string(domainerror.ErrCodeInvalidID),
		})
		return uuid.Nil, false
	}
	return id, true
}

func badRequest(ctx *gin.Context, message string) {
	ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
		Error: message,
		Code:  string(domainerror.ErrCodeInvalidRequest),
	})
}
