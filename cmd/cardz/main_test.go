package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/caarlos0/env/v11"
)

func TestConfigDefaults(t *testing.T) {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.APIURL == "" {
		t.Error("expected a default API URL")
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("expected default log level warn, got %q", cfg.LogLevel)
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("CARDZ_API_URL", "http://localhost:8080")
	t.Setenv("CARDZ_LOG_LEVEL", "debug")

	var cfg config
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.APIURL != "http://localhost:8080" {
		t.Errorf("APIURL = %q, want env override", cfg.APIURL)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
}

func TestDataDirUsesOverrideAndCreatesIt(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "cardz")
	got, err := dataDir(config{DataDir: dir})
	if err != nil {
		t.Fatalf("dataDir: %v", err)
	}
	if got != dir {
		t.Errorf("dataDir = %q, want %q", got, dir)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("expected directory created, stat failed: %v", err)
	}
}
