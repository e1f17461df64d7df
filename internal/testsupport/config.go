package testsupport

import (
	"path/filepath"
	"testing"

	"tryon/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.APIBind = ""
	cfg.Service.BaseURL = "http://127.0.0.1:0"

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithServiceURL points the generation service client at a test server.
func WithServiceURL(baseURL string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Service.BaseURL = baseURL
	}
}

// WithStaleJobTimeout overrides the staleness threshold in seconds.
func WithStaleJobTimeout(seconds int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Workflow.StaleJobTimeoutSeconds = seconds
		if cfg.Workflow.ReaperIntervalSeconds > seconds {
			cfg.Workflow.ReaperIntervalSeconds = seconds
		}
	}
}
