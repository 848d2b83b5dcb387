package app

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com,https://b.example.com")
	t.Setenv("COMPOSITION_BATCH_CONCURRENCY", "3")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Addr() != ":8080" {
		t.Fatalf("Addr: want=:8080 got=%s", cfg.Addr())
	}
	if cfg.RequestTimeout != 15*time.Second {
		t.Fatalf("RequestTimeout: want=15s got=%s", cfg.RequestTimeout)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://b.example.com" {
		t.Fatalf("AllowedOrigins: got=%v", cfg.AllowedOrigins)
	}
	if cfg.Composition.BatchConcurrency != 3 {
		t.Fatalf("BatchConcurrency: want=3 got=%d", cfg.Composition.BatchConcurrency)
	}
	if cfg.Composition.CacheTTL != 5*time.Minute {
		t.Fatalf("CacheTTL: want=5m got=%s", cfg.Composition.CacheTTL)
	}
	if cfg.Redis.Enabled() {
		t.Fatalf("redis should be disabled without REDIS_ADDR")
	}
	if cfg.Redis.Channel != "playbook-events" {
		t.Fatalf("Redis.Channel: got=%q", cfg.Redis.Channel)
	}
}

func TestLoadConfigRejectsUnknownDriver(t *testing.T) {
	t.Setenv("DB_DRIVER", "oracle")
	if _, err := LoadConfig(); err == nil {
		t.Fatalf("LoadConfig: want error for unknown driver")
	}
}
