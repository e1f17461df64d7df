package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"tryon/internal/config"
)

func TestDefaultsValidate(t *testing.T) {
	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate, got %v", err)
	}
	if cfg.Workflow.StaleJobTimeoutSeconds != 300 {
		t.Fatalf("unexpected stale job timeout default: %d", cfg.Workflow.StaleJobTimeoutSeconds)
	}
	if cfg.Workflow.PollIntervalSeconds != 1 {
		t.Fatalf("unexpected poll interval default: %d", cfg.Workflow.PollIntervalSeconds)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.toml")
	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatal("expected exists=false for missing file")
	}
	if resolved != path {
		t.Fatalf("expected resolved path %s, got %s", path, resolved)
	}
	if cfg.Service.BaseURL != "http://127.0.0.1:8000" {
		t.Fatalf("unexpected service base url: %s", cfg.Service.BaseURL)
	}
}

func TestLoadParsesAndNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
data_dir = "` + filepath.Join(dir, "data") + `"
log_dir = "` + filepath.Join(dir, "logs") + `"

[service]
base_url = "https://tryon.example.com/"
timeout_seconds = 60

[workflow]
stale_job_timeout = 120
reaper_interval = 15
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists {
		t.Fatal("expected exists=true")
	}
	if cfg.Service.BaseURL != "https://tryon.example.com" {
		t.Fatalf("expected trailing slash trimmed, got %s", cfg.Service.BaseURL)
	}
	if cfg.StaleJobTimeout() != 2*time.Minute {
		t.Fatalf("unexpected stale timeout: %s", cfg.StaleJobTimeout())
	}
	if cfg.StorePath() != filepath.Join(dir, "data", "tryon.db") {
		t.Fatalf("unexpected store path: %s", cfg.StorePath())
	}
	if cfg.SocketPath() != filepath.Join(dir, "data", "tryond.sock") {
		t.Fatalf("unexpected socket path: %s", cfg.SocketPath())
	}
}

func TestValidateRejectsBadServiceURL(t *testing.T) {
	cfg := config.Default()
	cfg.Service.BaseURL = "ftp://example.com"
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "service.base_url") {
		t.Fatalf("expected service.base_url error, got %v", err)
	}
}

func TestValidateRejectsShortStaleTimeout(t *testing.T) {
	cfg := config.Default()
	cfg.Workflow.StaleJobTimeoutSeconds = 5
	cfg.Workflow.ReaperIntervalSeconds = 30
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when stale timeout is below reaper interval")
	}
}

func TestCreateSampleWritesParseableConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	if _, _, exists, err := config.Load(path); err != nil || !exists {
		t.Fatalf("sample config should load cleanly, exists=%v err=%v", exists, err)
	}
}
