package policy

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is the sentinel wrapped by every configuration error.
var ErrInvalidConfig = errors.New("invalid configuration")

// ConfigError names the policy field that failed validation.
type ConfigError struct {
	Field  string // dotted path, e.g. "rules.severity.ARCH_FOO"
	Value  string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s: %s: %s", ErrInvalidConfig, e.Field, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %s (%q)", ErrInvalidConfig, e.Field, e.Reason, e.Value)
}

// Unwrap lets callers test with errors.Is(err, ErrInvalidConfig).
func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}

func configErr(field, value, format string, args ...interface{}) *ConfigError {
	return &ConfigError{Field: field, Value: value, Reason: fmt.Sprintf(format, args...)}
}
