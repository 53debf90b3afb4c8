package policy

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"archguard/internal/finding"
)

// RuleCatalog reports which rule identifiers exist.
type RuleCatalog interface {
	Has(ruleID string) bool
}

// Validate checks the policy before any file is evaluated. It returns the
// first problem found as a *ConfigError naming the offending field.
func (p Policy) Validate(catalog RuleCatalog) error {
	if err := validateThresholds("thresholds", p.Thresholds); err != nil {
		return err
	}
	if err := validateRules(p.Rules, catalog); err != nil {
		return err
	}
	if err := validatePatterns(p.Patterns); err != nil {
		return err
	}
	return validateTeams(p.Teams, catalog)
}

func validateThresholds(field string, t Thresholds) error {
	checks := []struct {
		name  string
		value int
		min   int
		max   int
	}{
		{"autoApproveScore", t.AutoApproveScore, 0, 100},
		{"autoRejectScore", t.AutoRejectScore, 0, 100},
		{"maxMethodLength", t.MaxMethodLength, 1, -1},
		{"maxClassLength", t.MaxClassLength, 1, -1},
		{"maxParameters", t.MaxParameters, 0, -1},
		{"criticalFindingsThreshold", t.CriticalFindingsThreshold, 0, -1},
		{"highFindingsThreshold", t.HighFindingsThreshold, 0, -1},
	}
	for _, c := range checks {
		if c.value < c.min || (c.max >= 0 && c.value > c.max) {
			bound := fmt.Sprintf("must be >= %d", c.min)
			if c.max >= 0 {
				bound = fmt.Sprintf("must be between %d and %d", c.min, c.max)
			}
			return configErr(field+"."+c.name, strconv.Itoa(c.value), "%s", bound)
		}
	}
	if t.AutoRejectScore > t.AutoApproveScore {
		return configErr(field+".autoRejectScore", strconv.Itoa(t.AutoRejectScore),
			"must not exceed autoApproveScore (%d)", t.AutoApproveScore)
	}
	return nil
}

func validateRules(r Rules, catalog RuleCatalog) error {
	for i, id := range r.Disabled {
		if catalog.Has(NormalizeRuleID(id)) {
			continue
		}
		if _, ok := finding.ParseType(id); ok {
			continue
		}
		return configErr(fmt.Sprintf("rules.disabled[%d]", i), id, "unknown rule or finding type")
	}
	for i, id := range r.Enabled {
		if !catalog.Has(NormalizeRuleID(id)) {
			return configErr(fmt.Sprintf("rules.enabled[%d]", i), id, "unknown rule")
		}
	}
	for _, id := range sortedKeys(r.Severity) {
		field := "rules.severity." + id
		if !catalog.Has(NormalizeRuleID(id)) {
			return configErr(field, id, "unknown rule")
		}
		if _, err := finding.ParseSeverity(r.Severity[id]); err != nil {
			return configErr(field, r.Severity[id], "%v", err)
		}
	}
	return nil
}

func validatePatterns(p Patterns) error {
	for _, name := range sortedKeys(p.CustomPatterns) {
		if strings.TrimSpace(name) == "" {
			return configErr("patterns.customPatterns", name, "empty group name")
		}
		for i, g := range p.CustomPatterns[name] {
			if _, err := CompileGlob(g); err != nil {
				return configErr(fmt.Sprintf("patterns.customPatterns.%s[%d]", name, i), g, "%v", err)
			}
		}
	}
	if _, err := NewFilter(Policy{Patterns: p}); err != nil {
		return err
	}
	for i, n := range p.Whitelist.MagicNumbers {
		if _, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err != nil {
			return configErr(fmt.Sprintf("patterns.whitelist.magicNumbers[%d]", i), n, "not a numeric literal")
		}
	}
	for i, s := range p.Whitelist.AllowedSecrets {
		if strings.TrimSpace(s) == "" {
			return configErr(fmt.Sprintf("patterns.whitelist.allowedSecrets[%d]", i), s, "empty substring would allow every secret")
		}
	}
	return nil
}

func validateTeams(teams map[string]Team, catalog RuleCatalog) error {
	for _, id := range sortedKeys(teams) {
		team := teams[id]
		field := "teams." + id
		if team.CustomThresholds != nil {
			if err := validateThresholds(field+".customThresholds", *team.CustomThresholds); err != nil {
				return err
			}
		}
		for i, rule := range team.AdditionalRules {
			if !catalog.Has(NormalizeRuleID(rule)) {
				return configErr(fmt.Sprintf("%s.additionalRules[%d]", field, i), rule, "unknown rule")
			}
		}
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
