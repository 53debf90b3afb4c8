// Package policy holds the layered review configuration: thresholds, rule
// switches, file patterns, whitelists and per-team overrides. A Policy is a
// plain value; the engine receives one fully resolved Policy per call.
package policy

import "gopkg.in/yaml.v3"

// =============================================================================
// POLICY DOCUMENT
// =============================================================================

// Policy is the effective configuration for one validation call. The YAML
// keys mirror the option names consumed by the review platform.
type Policy struct {
	Thresholds Thresholds      `yaml:"thresholds" json:"thresholds"`
	Rules      Rules           `yaml:"rules" json:"rules"`
	Patterns   Patterns        `yaml:"patterns" json:"patterns"`
	Teams      map[string]Team `yaml:"teams,omitempty" json:"teams,omitempty"`
}

// Thresholds are the numeric limits; each is independently overridable.
type Thresholds struct {
	AutoApproveScore          int `yaml:"autoApproveScore" json:"autoApproveScore"`
	AutoRejectScore           int `yaml:"autoRejectScore" json:"autoRejectScore"`
	MaxMethodLength           int `yaml:"maxMethodLength" json:"maxMethodLength"`
	MaxClassLength            int `yaml:"maxClassLength" json:"maxClassLength"`
	MaxParameters             int `yaml:"maxParameters" json:"maxParameters"`
	CriticalFindingsThreshold int `yaml:"criticalFindingsThreshold" json:"criticalFindingsThreshold"`
	HighFindingsThreshold     int `yaml:"highFindingsThreshold" json:"highFindingsThreshold"`
}

// UnmarshalYAML starts from the default thresholds so a partial block (for
// example a team's customThresholds) only changes the keys it names.
func (t *Thresholds) UnmarshalYAML(node *yaml.Node) error {
	type plain Thresholds
	defaults := DefaultThresholds()
	p := plain(defaults)
	if err := node.Decode(&p); err != nil {
		return err
	}
	*t = Thresholds(p)
	return nil
}

// Rules carries per-rule switches and the five category gates.
type Rules struct {
	Disabled          []string          `yaml:"disabled" json:"disabled"`
	Enabled           []string          `yaml:"enabled" json:"enabled"`
	Severity          map[string]string `yaml:"severity" json:"severity"`
	EnableCleanCode   bool              `yaml:"enableCleanCode" json:"enableCleanCode"`
	EnableSolid       bool              `yaml:"enableSolid" json:"enableSolid"`
	EnableDdd         bool              `yaml:"enableDdd" json:"enableDdd"`
	EnableSecurity    bool              `yaml:"enableSecurity" json:"enableSecurity"`
	EnablePerformance bool              `yaml:"enablePerformance" json:"enablePerformance"`
}

// Patterns are the glob lists and whitelists evaluated against file names
// and literal values.
type Patterns struct {
	IgnoreFiles    []string            `yaml:"ignoreFiles" json:"ignoreFiles"`
	CriticalFiles  []string            `yaml:"criticalFiles" json:"criticalFiles"`
	CustomPatterns map[string][]string `yaml:"customPatterns" json:"customPatterns"`
	Whitelist      Whitelist           `yaml:"whitelist" json:"whitelist"`
}

// Whitelist holds explicit exemptions.
type Whitelist struct {
	MagicNumbers       []string `yaml:"magicNumbers" json:"magicNumbers"`
	AllowedSecrets     []string `yaml:"allowedSecrets" json:"allowedSecrets"`
	SkipSecurityChecks []string `yaml:"skipSecurityChecks" json:"skipSecurityChecks"`
}

// Team is a named override keyed by member identity.
type Team struct {
	Members          []string    `yaml:"members" json:"members"`
	CustomThresholds *Thresholds `yaml:"customThresholds,omitempty" json:"customThresholds,omitempty"`
	AdditionalRules  []string    `yaml:"additionalRules" json:"additionalRules"`
	StrictMode       bool        `yaml:"strictMode" json:"strictMode"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// DefaultThresholds returns the platform's stock limits.
func DefaultThresholds() Thresholds {
	return Thresholds{
		AutoApproveScore:          80,
		AutoRejectScore:           30,
		MaxMethodLength:           25,
		MaxClassLength:            300,
		MaxParameters:             5,
		CriticalFindingsThreshold: 0,
		HighFindingsThreshold:     3,
	}
}

// Default returns the minimal policy used when no policy file is supplied.
func Default() Policy {
	return Policy{
		Thresholds: DefaultThresholds(),
		Rules: Rules{
			Disabled:          []string{},
			Enabled:           []string{},
			Severity:          map[string]string{},
			EnableCleanCode:   true,
			EnableSolid:       true,
			EnableDdd:         true,
			EnableSecurity:    true,
			EnablePerformance: true,
		},
		Patterns: Patterns{
			IgnoreFiles:    []string{"*.test.js", "*Test.java", "*.spec.ts"},
			CriticalFiles:  []string{"*Security*.java", "*Auth*.java", "*Payment*.java"},
			CustomPatterns: map[string][]string{},
			Whitelist: Whitelist{
				MagicNumbers:       []string{"0", "1", "-1"},
				AllowedSecrets:     []string{"test", "localhost", "example"},
				SkipSecurityChecks: []string{},
			},
		},
	}
}

// Clone returns a deep copy so callers can derive policies without aliasing
// slices or maps of the original.
func (p Policy) Clone() Policy {
	out := p
	out.Rules.Disabled = cloneStrings(p.Rules.Disabled)
	out.Rules.Enabled = cloneStrings(p.Rules.Enabled)
	out.Rules.Severity = cloneMap(p.Rules.Severity)
	out.Patterns.IgnoreFiles = cloneStrings(p.Patterns.IgnoreFiles)
	out.Patterns.CriticalFiles = cloneStrings(p.Patterns.CriticalFiles)
	out.Patterns.Whitelist.MagicNumbers = cloneStrings(p.Patterns.Whitelist.MagicNumbers)
	out.Patterns.Whitelist.AllowedSecrets = cloneStrings(p.Patterns.Whitelist.AllowedSecrets)
	out.Patterns.Whitelist.SkipSecurityChecks = cloneStrings(p.Patterns.Whitelist.SkipSecurityChecks)
	if p.Patterns.CustomPatterns != nil {
		out.Patterns.CustomPatterns = make(map[string][]string, len(p.Patterns.CustomPatterns))
		for name, globs := range p.Patterns.CustomPatterns {
			out.Patterns.CustomPatterns[name] = cloneStrings(globs)
		}
	}
	if p.Teams != nil {
		out.Teams = make(map[string]Team, len(p.Teams))
		for id, team := range p.Teams {
			out.Teams[id] = team.clone()
		}
	}
	return out
}

func (t Team) clone() Team {
	out := t
	out.Members = cloneStrings(t.Members)
	out.AdditionalRules = cloneStrings(t.AdditionalRules)
	if t.CustomThresholds != nil {
		th := *t.CustomThresholds
		out.CustomThresholds = &th
	}
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func cloneMap(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
