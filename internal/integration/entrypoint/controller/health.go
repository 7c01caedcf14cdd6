package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthController handles health check endpoints.
type HealthController struct {
	dbHealthChecker    func() bool
	cacheHealthChecker func() bool
	aiAvailable        bool
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status     string `json:"status"`
	Database   string `json:"database"`
	Cache      string `json:"cache"`
	Classifier string `json:"classifier"`
	Timestamp  string `json:"timestamp"`
}

// NewHealthController creates a new health controller instance. A nil cache
// checker reports the cache as disabled.
func NewHealthController(dbHealthChecker, cacheHealthChecker func() bool, aiAvailable bool) *HealthController {
	return &HealthController{
		dbHealthChecker:    dbHealthChecker,
		cacheHealthChecker: cacheHealthChecker,
		aiAvailable:        aiAvailable,
	}
}

// Check handles GET /health requests.
// It returns the current health status of the API and its dependencies.
func (h *HealthController) Check(c *gin.Context) {
	status := "ok"

	dbStatus := "disconnected"
	if h.dbHealthChecker != nil && h.dbHealthChecker() {
		dbStatus = "connected"
	} else {
		status = "degraded"
	}

	cacheStatus := "disabled"
	if h.cacheHealthChecker != nil {
		cacheStatus = "disconnected"
		if h.cacheHealthChecker() {
			cacheStatus = "connected"
		}
	}

	classifier := "disabled"
	if h.aiAvailable {
		classifier = "enabled"
	}

	c.JSON(http.StatusOK, HealthResponse{
		Status:     status,
		Database:   dbStatus,
		Cache:      cacheStatus,
		Classifier: classifier,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	})
}
