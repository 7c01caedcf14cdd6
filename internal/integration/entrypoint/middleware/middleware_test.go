package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRequireWorkspace(t *testing.T) {
	valid := uuid.New()

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{name: "missing header", header: "", wantStatus: http.StatusBadRequest},
		{name: "malformed", header: "not-a-uuid", wantStatus: http.StatusBadRequest},
		{name: "nil uuid", header: uuid.Nil.String(), wantStatus: http.StatusBadRequest},
		{name: "valid", header: valid.String(), wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got uuid.UUID
			engine := gin.New()
			engine.GET("/ping", RequireWorkspace(), func(c *gin.Context) {
				got, _ = GetWorkspaceIDFromContext(c)
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			if tt.header != "" {
				req.Header.Set(WorkspaceHeader, tt.header)
			}
			rec := httptest.NewRecorder()
			engine.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusOK && got != valid {
				t.Errorf("workspace = %s, want %s", got, valid)
			}
		})
	}
}

func TestGetWorkspaceIDFromContext_Missing(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if _, ok := GetWorkspaceIDFromContext(c); ok {
		t.Error("expected no workspace in a fresh context")
	}
}

func TestRateLimiter(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiterWithConfig(2, time.Minute)
	rl.now = func() time.Time { return now }

	engine := gin.New()
	engine.POST("/run", rl.Middleware(), func(c *gin.Context) { c.Status(http.StatusAccepted) })
	engine.POST("/detect", rl.Middleware(), func(c *gin.Context) { c.Status(http.StatusAccepted) })

	do := func(path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)
		return rec
	}

	for i := 0; i < 2; i++ {
		if rec := do("/run"); rec.Code != http.StatusAccepted {
			t.Fatalf("request %d status = %d, want 202", i+1, rec.Code)
		}
	}

	rec := do("/run")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("third request status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") != "60" {
		t.Errorf("Retry-After = %q, want 60", rec.Header().Get("Retry-After"))
	}

	if rec := do("/detect"); rec.Code != http.StatusAccepted {
		t.Errorf("other route status = %d, want 202", rec.Code)
	}

	now = now.Add(time.Minute + time.Second)
	if rec := do("/run"); rec.Code != http.StatusAccepted {
		t.Errorf("after window status = %d, want 202", rec.Code)
	}
}

func TestRateLimiter_CleanupAndReset(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiterWithConfig(1, time.Minute)
	rl.now = func() time.Time { return now }

	rl.allow("a")
	now = now.Add(30 * time.Second)
	rl.allow("b")

	now = now.Add(45 * time.Second)
	rl.Cleanup()
	if _, ok := rl.entries["a"]; ok {
		t.Error("expired entry a survived cleanup")
	}
	if _, ok := rl.entries["b"]; !ok {
		t.Error("live entry b was removed")
	}

	rl.Reset()
	if len(rl.entries) != 0 {
		t.Errorf("entries after reset = %d, want 0", len(rl.entries))
	}
}

func TestNewRateLimiterWithConfig_Defaults(t *testing.T) {
	rl := NewRateLimiterWithConfig(0, -time.Second)
	if rl.maxAttempts != defaultMaxAttempts || rl.windowDuration != defaultWindowDuration {
		t.Errorf("got %d/%s, want defaults", rl.maxAttempts, rl.windowDuration)
	}
}
