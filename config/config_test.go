package config

import (
	"testing"
	"time"

	"github.com/finance-tracker/bookkeeping/internal/domain/valueobject"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Learning.NotifyTimeout != 5*time.Second {
		t.Errorf("Learning.NotifyTimeout = %v, want 5s", cfg.Learning.NotifyTimeout)
	}
	if cfg.Engine.AmountBucket != 5000 || cfg.Engine.MinAmount != 50000 {
		t.Errorf("Engine = %+v", cfg.Engine)
	}
	if len(cfg.Engine.UtilityKeywords) != len(valueobject.DefaultRecurringKeywords) {
		t.Errorf("UtilityKeywords = %v", cfg.Engine.UtilityKeywords)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("RECURRING_AMOUNT_BUCKET", "2500")
	t.Setenv("RECURRING_KEYWORDS", " water, ,gas ")
	t.Setenv("BUDGET_NEAR_LIMIT_RATIO", "0.9")
	t.Setenv("WORKER_INTERVAL", "15m")
	t.Setenv("DB_MAX_OPEN_CONNS", "not-a-number")

	cfg := Load()

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Database.MaxOpenConns != 25 {
		t.Errorf("invalid int should fall back, got %d", cfg.Database.MaxOpenConns)
	}
	if cfg.Worker.Interval != 15*time.Minute {
		t.Errorf("Worker.Interval = %v", cfg.Worker.Interval)
	}

	asOf := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)
	detection := cfg.Engine.DetectionConfig(asOf)
	if detection.AmountBucket != 2500 || !detection.AsOf.Equal(asOf) {
		t.Errorf("DetectionConfig() = %+v", detection)
	}
	if len(detection.Keywords) != 2 || detection.Keywords[0] != "water" || detection.Keywords[1] != "gas" {
		t.Errorf("Keywords = %q", detection.Keywords)
	}

	if got := cfg.Engine.BudgetThresholds().NearLimit.String(); got != "0.9" {
		t.Errorf("NearLimit = %s, want 0.9", got)
	}
}

func TestEngineConfig_BudgetThresholdsFallback(t *testing.T) {
	for _, ratio := range []float64{0, 1, 1.5, -0.2} {
		got := EngineConfig{NearLimitRatio: ratio}.BudgetThresholds()
		if !got.NearLimit.Equal(valueobject.NearLimitThreshold) {
			t.Errorf("ratio %v: NearLimit = %s, want default", ratio, got.NearLimit)
		}
	}
}
