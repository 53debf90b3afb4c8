package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all archguard application settings. The review policy itself
// lives in a separate document referenced by PolicyPath.
type Config struct {
	// Core settings
	Name string `yaml:"name"`

	// Policy document (thresholds, rules, patterns, teams)
	PolicyPath string `yaml:"policy_path"`

	// Review history database (SQLite)
	DatabasePath string `yaml:"database_path"`

	// Batch review settings
	Concurrency  int    `yaml:"concurrency"`   // files validated in parallel
	OutputFormat string `yaml:"output_format"` // text, markdown, json, sarif
	Limits       Limits `yaml:"limits"`

	// Watch mode
	Watch WatchConfig `yaml:"watch"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// WatchConfig configures watch mode.
type WatchConfig struct {
	Debounce   string   `yaml:"debounce"`   // quiet period before re-validating
	Extensions []string `yaml:"extensions"` // file extensions to watch; empty = all
}

// OutputFormats lists the supported report formats.
var OutputFormats = []string{"text", "markdown", "json", "sarif"}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:         "archguard",
		PolicyPath:   ".archguard/policy.yaml",
		DatabasePath: ".archguard/history.db",
		Concurrency:  4,
		OutputFormat: "text",
		Limits:       DefaultLimits(),
		Watch: WatchConfig{
			Debounce:   "300ms",
			Extensions: []string{".java", ".kt", ".go", ".ts", ".js", ".py", ".cs"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Defaults, still subject to environment overrides
		data = nil
	}

	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	// Override with environment variables
	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if path := os.Getenv("ARCHGUARD_POLICY"); path != "" {
		c.PolicyPath = path
	}
	if path := os.Getenv("ARCHGUARD_DB"); path != "" {
		c.DatabasePath = path
	}
	if level := os.Getenv("ARCHGUARD_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if n := os.Getenv("ARCHGUARD_CONCURRENCY"); n != "" {
		if v, err := strconv.Atoi(n); err == nil {
			c.Concurrency = v
		}
	}
}

// GetWatchDebounce returns the watch debounce as a duration.
func (c *Config) GetWatchDebounce() time.Duration {
	d, err := time.ParseDuration(c.Watch.Debounce)
	if err != nil || d <= 0 {
		return 300 * time.Millisecond
	}
	return d
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be >= 1 (got %d)", c.Concurrency)
	}

	validFormat := false
	for _, f := range OutputFormats {
		if strings.EqualFold(c.OutputFormat, f) {
			validFormat = true
			break
		}
	}
	if !validFormat {
		return fmt.Errorf("invalid output format: %s (valid: %v)", c.OutputFormat, OutputFormats)
	}

	if c.Watch.Debounce != "" {
		if _, err := time.ParseDuration(c.Watch.Debounce); err != nil {
			return fmt.Errorf("invalid watch debounce %q: %w", c.Watch.Debounce, err)
		}
	}

	return c.ValidateLimits()
}
