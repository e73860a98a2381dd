package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port == "" {
		t.Error("server port default missing")
	}
	if cfg.Pipeline.MaxAttempts < 1 {
		t.Errorf("max attempts = %d, want >= 1", cfg.Pipeline.MaxAttempts)
	}
	if cfg.Matching.MinSimilarity <= 0 || cfg.Matching.MinSimilarity > 1 {
		t.Errorf("min similarity = %f, want (0,1]", cfg.Matching.MinSimilarity)
	}
	if cfg.Reconcile.DateWindowDays < 0 {
		t.Errorf("date window = %d", cfg.Reconcile.DateWindowDays)
	}
	if cfg.Export.TTL <= 0 {
		t.Errorf("export TTL = %v, want positive", cfg.Export.TTL)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9999")
	t.Setenv("PIPELINE_MAX_ATTEMPTS", "5")
	t.Setenv("MATCH_MIN_SIMILARITY", "0.85")
	t.Setenv("CSV_EXPORT_TTL_SECONDS", "60")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != "9999" {
		t.Errorf("port = %q, want 9999", cfg.Server.Port)
	}
	if cfg.Pipeline.MaxAttempts != 5 {
		t.Errorf("max attempts = %d, want 5", cfg.Pipeline.MaxAttempts)
	}
	if cfg.Matching.MinSimilarity != 0.85 {
		t.Errorf("min similarity = %f, want 0.85", cfg.Matching.MinSimilarity)
	}
	if cfg.Export.TTL != time.Minute {
		t.Errorf("export TTL = %v, want 1m", cfg.Export.TTL)
	}
}
