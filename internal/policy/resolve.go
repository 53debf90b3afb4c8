package policy

import (
	"sort"
	"strings"
)

// =============================================================================
// TEAM RESOLUTION
// =============================================================================

// Resolve flattens a global policy and an optional team override into the
// effective policy for one validation call. Team custom thresholds replace
// the global thresholds wholesale; additional rules are unioned into the
// enabled set; strict mode re-opens every category gate and drops the
// security-skip whitelist. The result carries no teams and shares no slices
// or maps with its inputs.
func Resolve(global Policy, team *Team) Policy {
	out := global.Clone()
	out.Teams = nil
	if team == nil {
		return out
	}

	if team.CustomThresholds != nil {
		out.Thresholds = *team.CustomThresholds
	}
	out.Rules.Enabled = unionRuleIDs(out.Rules.Enabled, team.AdditionalRules)

	if team.StrictMode {
		out.Rules.EnableCleanCode = true
		out.Rules.EnableSolid = true
		out.Rules.EnableDdd = true
		out.Rules.EnableSecurity = true
		out.Rules.EnablePerformance = true
		out.Patterns.Whitelist.SkipSecurityChecks = []string{}
	}
	return out
}

// TeamFor returns the ID and override of the first team (in sorted ID order)
// that lists identity as a member.
func (p Policy) TeamFor(identity string) (string, *Team, bool) {
	identity = strings.TrimSpace(identity)
	if identity == "" || len(p.Teams) == 0 {
		return "", nil, false
	}
	ids := make([]string, 0, len(p.Teams))
	for id := range p.Teams {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		team := p.Teams[id]
		for _, m := range team.Members {
			if strings.EqualFold(strings.TrimSpace(m), identity) {
				t := team.clone()
				return id, &t, true
			}
		}
	}
	return "", nil, false
}

// ForMember resolves the policy for the given team-member identity. Members
// of no team get the global policy.
func (p Policy) ForMember(identity string) Policy {
	_, team, _ := p.TeamFor(identity)
	return Resolve(p, team)
}

// NormalizeRuleID canonicalizes a rule identifier for comparison.
func NormalizeRuleID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

func unionRuleIDs(base, extra []string) []string {
	out := make([]string, 0, len(base)+len(extra))
	seen := make(map[string]bool, len(base)+len(extra))
	for _, list := range [][]string{base, extra} {
		for _, id := range list {
			key := NormalizeRuleID(id)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, id)
		}
	}
	return out
}
