// Package middleware provides HTTP middleware for the API endpoints.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	domainerror "github.com/finance-tracker/bookkeeping/internal/domain/error"
	"github.com/finance-tracker/bookkeeping/internal/integration/entrypoint/dto"
)

// ContextKey is a type for context keys.
type ContextKey string

const (
	// WorkspaceHeader carries the workspace every request is scoped to.
	WorkspaceHeader = "X-Workspace-ID"

	// WorkspaceIDKey is the context key for the request's workspace ID.
	WorkspaceIDKey ContextKey = "workspace_id"
)

// RequireWorkspace rejects requests without a valid workspace header and
// stores the parsed ID in the gin context.
func RequireWorkspace() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(WorkspaceHeader)
		if header == "" {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Error: WorkspaceHeader + " header is required",
				Code:  string(domainerror.ErrCodeMissingWorkspace),
			})
			c.Abort()
			return
		}

		workspaceID, err := uuid.Parse(header)
		if err != nil || workspaceID == uuid.Nil {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Error: "Invalid workspace ID format",
				Code:  string(domainerror.ErrCodeInvalidWorkspace),
			})
			c.Abort()
			return
		}

		c.Set(string(WorkspaceIDKey), workspaceID)
		c.Next()
	}
}

// GetWorkspaceIDFromContext retrieves the workspace ID stored by RequireWorkspace.
func GetWorkspaceIDFromContext(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get(string(WorkspaceIDKey))
	if !exists {
		return uuid.Nil, false
	}
	workspaceID, ok := value.(uuid.UUID)
	return workspaceID, ok
}
