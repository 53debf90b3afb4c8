package config

import "fmt"

// Limits bounds the work a batch review may do.
type Limits struct {
	MaxFileSizeKB int `yaml:"max_file_size_kb"` // larger files are skipped
	MaxFiles      int `yaml:"max_files"`        // 0 = unlimited
}

// DefaultLimits returns the stock review limits.
func DefaultLimits() Limits {
	return Limits{
		MaxFileSizeKB: 1024,
		MaxFiles:      0,
	}
}

// ValidateLimits checks that limits are within acceptable ranges.
func (c *Config) ValidateLimits() error {
	if c.Limits.MaxFileSizeKB < 1 {
		return fmt.Errorf("max_file_size_kb must be >= 1")
	}
	if c.Limits.MaxFiles < 0 {
		return fmt.Errorf("max_files must be >= 0")
	}
	return nil
}

// MaxFileSizeBytes returns the file size limit in bytes.
func (c *Config) MaxFileSizeBytes() int64 {
	return int64(c.Limits.MaxFileSizeKB) * 1024
}
