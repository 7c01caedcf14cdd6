// Package router sets up the HTTP routing for the application.
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/finance-tracker/bookkeeping/internal/integration/entrypoint/controller"
	"github.com/finance-tracker/bookkeeping/internal/integration/entrypoint/middleware"
)

// Controllers groups the HTTP handlers the router mounts.
type Controllers struct {
	Health         *controller.HealthController
	Transaction    *controller.TransactionController
	Categorization *controller.CategorizationController
	Category       *controller.CategoryController
	PatternRule    *controller.PatternRuleController
	Recurring      *controller.RecurringController
	Budget         *controller.BudgetController
}

// Router holds the Gin engine and controller dependencies.
type Router struct {
	engine      *gin.Engine
	controllers Controllers
	rateLimiter *middleware.RateLimiter
}

// NewRouter creates a new router instance with all dependencies.
// rateLimiter guards the batch endpoints and may be nil.
func NewRouter(controllers Controllers, rateLimiter *middleware.RateLimiter) *Router {
	return &Router{
		controllers: controllers,
		rateLimiter: rateLimiter,
	}
}

// Setup configures and returns the Gin engine with all routes.
func (r *Router) Setup(environment string) *gin.Engine {
	// Set Gin mode based on environment
	if environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else if environment == "test" {
		gin.SetMode(gin.TestMode)
	}

	// Create router with default middleware (logger and recovery)
	r.engine = gin.Default()

	r.setupHealthRoutes()
	r.setupAPIRoutes()

	return r.engine
}

// setupHealthRoutes configures health check endpoints.
func (r *Router) setupHealthRoutes() {
	if r.controllers.Health != nil {
		r.engine.GET("/health", r.controllers.Health.Check)
	}
}

// batch returns the handlers for a rate limited endpoint.
func (r *Router) batch(handler gin.HandlerFunc) []gin.HandlerFunc {
	if r.rateLimiter == nil {
		return []gin.HandlerFunc{handler}
	}
	return []gin.HandlerFunc{r.rateLimiter.Middleware(), handler}
}

// setupAPIRoutes configures the main API routes. Every route is scoped to the
// workspace named by the X-Workspace-ID header.
func (r *Router) setupAPIRoutes() {
	v1 := r.engine.Group("/api/v1")
	v1.Use(middleware.RequireWorkspace())

	if c := r.controllers.Transaction; c != nil {
		transactions := v1.Group("/transactions")
		{
			transactions.GET("", c.List)
			transactions.PUT("/:id/category", c.Correct)
		}
	}

	if c := r.controllers.Categorization; c != nil {
		categorization := v1.Group("/categorization")
		{
			categorization.POST("/run", r.batch(c.Run)...)
			categorization.GET("/status", c.Status)
		}
	}

	if c := r.controllers.Category; c != nil {
		categories := v1.Group("/categories")
		{
			categories.GET("", c.List)
			categories.POST("", c.Create)
			categories.POST("/seed", c.Seed)
			categories.PATCH("/:id", c.Update)
			categories.DELETE("/:id", c.Delete)
		}
	}

	if c := r.controllers.PatternRule; c != nil {
		rules := v1.Group("/pattern-rules")
		{
			rules.GET("", c.List)
			rules.POST("", c.Create)
			rules.POST("/test", c.Test)
			rules.DELETE("/:id", c.Delete)
		}
	}

	if c := r.controllers.Recurring; c != nil {
		recurring := v1.Group("/recurring")
		{
			recurring.GET("", c.List)
			recurring.POST("/detect", r.batch(c.Detect)...)
		}
	}

	if c := r.controllers.Budget; c != nil {
		budgets := v1.Group("/budgets")
		{
			budgets.GET("/performance", c.Performance)
			budgets.PUT("/overrides/:transaction_id", c.SetOverride)
			budgets.DELETE("/overrides/:transaction_id", c.ClearOverride)
		}
	}
}
