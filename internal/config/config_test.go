package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// CONFIG TESTS
// =============================================================================

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "archguard", cfg.Name)
	assert.Equal(t, 4, cfg.Concurrency)
	assert.Equal(t, "text", cfg.OutputFormat)
	assert.Equal(t, 1024, cfg.Limits.MaxFileSizeKB)
	require.NoError(t, cfg.Validate())
}

func TestConfig_SaveLoad(t *testing.T) {
	t.Setenv("ARCHGUARD_POLICY", "")
	t.Setenv("ARCHGUARD_DB", "")

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.PolicyPath = "team/policy.yaml"
	cfg.OutputFormat = "json"
	cfg.Watch.Debounce = "1s"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "team/policy.yaml", loaded.PolicyPath)
	assert.Equal(t, "json", loaded.OutputFormat)
	assert.Equal(t, time.Second, loaded.GetWatchDebounce())
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("ARCHGUARD_DB", "")
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().DatabasePath, cfg.DatabasePath)
}

func TestLoad_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := DefaultConfig()
	require.NoError(t, cfg.Save(path))
	require.NoError(t, writeFile(path, "concurrency: [oops"))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestConfig_EnvOverrides(t *testing.T) {
	t.Setenv("ARCHGUARD_POLICY", "/etc/archguard/policy.yaml")
	t.Setenv("ARCHGUARD_DB", "/var/lib/archguard.db")
	t.Setenv("ARCHGUARD_LOG_LEVEL", "debug")
	t.Setenv("ARCHGUARD_CONCURRENCY", "9")

	cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "/etc/archguard/policy.yaml", cfg.PolicyPath)
	assert.Equal(t, "/var/lib/archguard.db", cfg.DatabasePath)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 9, cfg.Concurrency)

	t.Setenv("ARCHGUARD_CONCURRENCY", "many")
	cfg, err = Load(filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Concurrency)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name string
		edit func(*Config)
	}{
		{"zero concurrency", func(c *Config) { c.Concurrency = 0 }},
		{"bad format", func(c *Config) { c.OutputFormat = "xml" }},
		{"bad debounce", func(c *Config) { c.Watch.Debounce = "soon" }},
		{"file size", func(c *Config) { c.Limits.MaxFileSizeKB = 0 }},
		{"max files", func(c *Config) { c.Limits.MaxFiles = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.edit(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestConfig_Helpers(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 300*time.Millisecond, cfg.GetWatchDebounce())
	cfg.Watch.Debounce = "bogus"
	assert.Equal(t, 300*time.Millisecond, cfg.GetWatchDebounce())
	assert.Equal(t, int64(1024*1024), cfg.MaxFileSizeBytes())
}

func TestLoggingConfig(t *testing.T) {
	lc := LoggingConfig{Level: "warn", Format: "JSON", Categories: map[string]bool{"watch": false}}
	assert.False(t, lc.IsCategoryEnabled("watch"))
	assert.True(t, lc.IsCategoryEnabled("review"))

	opts := lc.Options()
	assert.True(t, opts.JSONFormat)
	assert.Equal(t, "warn", opts.Level)
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0644)
}
