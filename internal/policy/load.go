package policy

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Parse decodes a YAML policy document on top of Default() and validates
// it. Unknown keys are rejected so typos surface as configuration errors.
func Parse(data []byte, catalog RuleCatalog) (Policy, error) {
	p := Default()
	if len(bytes.TrimSpace(data)) > 0 {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
			return Policy{}, fmt.Errorf("%w: failed to parse policy: %v", ErrInvalidConfig, err)
		}
	}
	if err := p.Validate(catalog); err != nil {
		return Policy{}, err
	}
	return p, nil
}

// Load reads and validates a policy file. A missing file yields the default
// policy.
func Load(path string, catalog RuleCatalog) (Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Policy{}, fmt.Errorf("failed to read policy: %w", err)
	}
	p, err := Parse(data, catalog)
	if err != nil {
		return Policy{}, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Save writes the policy as YAML, creating the parent directory.
func (p Policy) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create policy directory: %w", err)
	}
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal policy: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write policy: %w", err)
	}
	return nil
}
