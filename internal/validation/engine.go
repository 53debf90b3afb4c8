// Package validation is the architectural-principle validation engine. It
// turns one file's source text into an ordered list of findings governed by
// a flattened policy: extractors emit raw signals, the rule table turns them
// into findings, and a fixed suppression pass applies the policy.
//
// The engine performs no I/O and holds no mutable state; an Engine may be
// shared by any number of goroutines.
package validation

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"archguard/internal/finding"
	"archguard/internal/policy"
)

// =============================================================================
// ENGINE
// =============================================================================

// Engine validates files against one precompiled policy.
type Engine struct {
	policy    policy.Policy
	filter    *policy.Filter
	disabled  map[string]bool
	enabled   map[string]bool
	overrides map[string]finding.Severity
	magic     map[string]bool
	secrets   []string
	parallel  int
}

// Option configures an Engine.
type Option func(*Engine)

// WithParallelExtraction runs up to limit extractors concurrently per file.
// A limit below 2 keeps extraction sequential.
func WithParallelExtraction(limit int) Option {
	return func(e *Engine) {
		e.parallel = limit
	}
}

// New validates p against the rule catalog and compiles it. Configuration
// problems are returned as *policy.ConfigError.
func New(p policy.Policy, opts ...Option) (*Engine, error) {
	if err := p.Validate(Catalog()); err != nil {
		return nil, err
	}
	filter, err := policy.NewFilter(p)
	if err != nil {
		return nil, err
	}
	return compile(p, filter, opts...), nil
}

// Validate checks one file against p. It never fails: invalid globs in p are
// skipped and unknown rule IDs or severities have no effect. Policies loaded
// through policy.Load are already validated.
func Validate(fileName, sourceText string, p policy.Policy) []finding.Finding {
	return compile(p, policy.LenientFilter(p)).Validate(fileName, sourceText)
}

func compile(p policy.Policy, filter *policy.Filter, opts ...Option) *Engine {
	e := &Engine{
		policy:    p.Clone(),
		filter:    filter,
		disabled:  make(map[string]bool, len(p.Rules.Disabled)),
		enabled:   make(map[string]bool, len(p.Rules.Enabled)),
		overrides: make(map[string]finding.Severity, len(p.Rules.Severity)),
		magic:     make(map[string]bool, len(p.Patterns.Whitelist.MagicNumbers)),
	}
	for _, id := range p.Rules.Disabled {
		e.disabled[policy.NormalizeRuleID(id)] = true
	}
	for _, id := range p.Rules.Enabled {
		e.enabled[policy.NormalizeRuleID(id)] = true
	}
	for id, level := range p.Rules.Severity {
		if sev, err := finding.ParseSeverity(level); err == nil {
			e.overrides[policy.NormalizeRuleID(id)] = sev
		}
	}
	for _, n := range p.Patterns.Whitelist.MagicNumbers {
		e.magic[strings.TrimSpace(n)] = true
	}
	for _, s := range p.Patterns.Whitelist.AllowedSecrets {
		if s = strings.ToLower(s); s != "" {
			e.secrets = append(e.secrets, s)
		}
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Policy returns a copy of the policy the engine was compiled from.
func (e *Engine) Policy() policy.Policy {
	return e.policy.Clone()
}

// Ignores reports whether fileName matches the policy's ignore patterns.
func (e *Engine) Ignores(fileName string) bool {
	return e.filter.ShouldIgnore(fileName)
}

// Validate checks one file. An ignored file yields an empty, non-nil list
// without running any extractor.
func (e *Engine) Validate(fileName, sourceText string) []finding.Finding {
	if e.filter.ShouldIgnore(fileName) {
		return []finding.Finding{}
	}

	src := newSource(fileName, sourceText)
	candidates := e.extract(src)

	critical := e.filter.IsCritical(fileName)
	securitySkipped := e.filter.IsSecuritySkipped(fileName)

	findings := make([]finding.Finding, 0, len(candidates))
	order := make([]int, 0, len(candidates))
	for _, c := range candidates {
		f, keep := e.evaluate(fileName, c, critical, securitySkipped)
		if !keep {
			continue
		}
		findings = append(findings, f)
		order = append(order, c.rule)
	}
	sortFindings(findings, order)
	return findings
}

// extract runs every extractor and concatenates their candidates in rule
// table order. An extractor that panics contributes nothing.
func (e *Engine) extract(src *source) []candidate {
	results := make([][]candidate, len(ruleTable))
	run := func(i int) {
		defer func() {
			if recover() != nil {
				results[i] = nil
			}
		}()
		cands := ruleTable[i].extract(src, e.policy.Thresholds)
		for j := range cands {
			cands[j].rule = i
		}
		results[i] = cands
	}

	if e.parallel > 1 {
		var g errgroup.Group
		g.SetLimit(e.parallel)
		for i := range ruleTable {
			i := i
			g.Go(func() error {
				run(i)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i := range ruleTable {
			run(i)
		}
	}

	var total int
	for _, r := range results {
		total += len(r)
	}
	out := make([]candidate, 0, total)
	for _, r := range results {
		out = append(out, r...)
	}
	return out
}

// evaluate fills the rule template and applies the suppression pass in its
// fixed order: category gate, disablement, whitelist, security skip,
// severity override, critical-file escalation.
func (e *Engine) evaluate(fileName string, c candidate, critical, securitySkipped bool) (finding.Finding, bool) {
	r := ruleTable[c.rule]

	if !e.gateOpen(r.Type.Group()) {
		return finding.Finding{}, false
	}
	if e.disabled[r.ID] || e.disabled[string(r.Type)] {
		return finding.Finding{}, false
	}
	if r.OptIn && !e.enabled[r.ID] {
		return finding.Finding{}, false
	}
	if e.whitelisted(r, c) {
		return finding.Finding{}, false
	}
	if securitySkipped && r.Type == finding.TypeSecurity {
		return finding.Finding{}, false
	}

	severity := r.Severity
	if critical && r.CriticalSeverity != 0 {
		severity = r.CriticalSeverity
	}
	if sev, ok := e.overrides[r.ID]; ok {
		severity = sev
	}
	if critical && r.Structural {
		severity = finding.SeverityCritical
	}

	description := r.Message
	if len(c.args) > 0 {
		description = fmt.Sprintf(r.Message, c.args...)
	}
	return finding.Finding{
		FileName:    fileName,
		Line:        c.line,
		Type:        r.Type,
		Severity:    severity,
		Description: description,
		Suggestion:  r.Suggestion,
		CodeSnippet: c.snippet,
		RuleID:      r.ID,
	}, true
}

func (e *Engine) gateOpen(g finding.Group) bool {
	rules := e.policy.Rules
	switch g {
	case finding.GroupCleanCode:
		return rules.EnableCleanCode
	case finding.GroupSolid:
		return rules.EnableSolid
	case finding.GroupDDD:
		return rules.EnableDdd
	case finding.GroupSecurity:
		return rules.EnableSecurity
	case finding.GroupPerformance:
		return rules.EnablePerformance
	}
	return true
}

// whitelisted applies per-occurrence value exemptions: magic numbers match
// the literal exactly, secrets match any allowed substring ignoring case.
func (e *Engine) whitelisted(r Rule, c candidate) bool {
	switch r.whitelist {
	case magicNumberWhitelist:
		return e.magic[c.value]
	case secretWhitelist:
		v := strings.ToLower(c.value)
		for _, s := range e.secrets {
			if strings.Contains(v, s) {
				return true
			}
		}
	}
	return false
}

// sortFindings orders by line (file-level first), then rule declaration
// order. Ties keep extraction order.
func sortFindings(findings []finding.Finding, order []int) {
	idx := make([]int, len(findings))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		fa, fb := findings[idx[a]], findings[idx[b]]
		if fa.Line != fb.Line {
			return fa.Line < fb.Line
		}
		return order[idx[a]] < order[idx[b]]
	})
	sorted := make([]finding.Finding, len(findings))
	for i, j := range idx {
		sorted[i] = findings[j]
	}
	copy(findings, sorted)
}
