package testsupport

import (
	"path/filepath"
	"testing"

	"reelsplit/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.UploadDir = filepath.Join(base, "uploads")
	cfg.Paths.OutputDir = filepath.Join(base, "outputs")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.APIBind = "127.0.0.1:0"

	for _, opt := range opts {
		opt(&cfg)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return &cfg
}

// WithMaxUploadMiB caps the upload size on the test config.
func WithMaxUploadMiB(limit int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Server.MaxUploadMiB = limit
	}
}

// WithRetentionMinutes sets the artifact expiry age on the test config.
func WithRetentionMinutes(minutes int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Retention.MaxAgeMinutes = minutes
	}
}
