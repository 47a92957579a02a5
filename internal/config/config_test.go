package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SJAVS_DEV_AUTH", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.BindAddr != ":8080" {
		t.Errorf("bind addr = %s", cfg.BindAddr)
	}
	if cfg.RedisAddr != "127.0.0.1:6379" {
		t.Errorf("redis addr = %s", cfg.RedisAddr)
	}
	if cfg.NumberOfCrosses != 3 {
		t.Errorf("crosses = %d", cfg.NumberOfCrosses)
	}
	if cfg.LockTTL != 5*time.Second {
		t.Errorf("lock ttl = %s", cfg.LockTTL)
	}
}

func TestLoadRequiresJWKS(t *testing.T) {
	t.Setenv("SJAVS_DEV_AUTH", "")
	t.Setenv("SJAVS_JWKS_URL", "")
	if _, err := Load(); err == nil {
		t.Fatal("missing jwks url should fail without dev auth")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SJAVS_DEV_AUTH", "true")
	t.Setenv("SJAVS_BIND_ADDR", ":9999")
	t.Setenv("SJAVS_NUMBER_OF_CROSSES", "5")
	t.Setenv("SJAVS_LOCK_TTL", "2s")
	t.Setenv("SJAVS_RUBBER_RESET", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.BindAddr != ":9999" || cfg.NumberOfCrosses != 5 ||
		cfg.LockTTL != 2*time.Second || !cfg.RubberReset {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("SJAVS_DEV_AUTH", "true")
	t.Setenv("SJAVS_NUMBER_OF_CROSSES", "zero")
	if _, err := Load(); err == nil {
		t.Fatal("bad crosses value should fail")
	}
}
