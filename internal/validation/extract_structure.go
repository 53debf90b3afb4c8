package validation

import "archguard/internal/policy"

// =============================================================================
// STRUCTURAL EXTRACTORS
// =============================================================================

// nestingLimit is the conditional/loop depth at which a block counts as
// deeply nested. It is fixed and not a policy threshold.
const nestingLimit = 4

func extractLargeClasses(src *source, t policy.Thresholds) []candidate {
	var out []candidate
	for _, b := range src.blocks {
		if b.kind != blockType {
			continue
		}
		length := b.closeLine - b.headerLine + 1
		if length > t.MaxClassLength {
			out = append(out, candidate{
				line:    b.headerLine,
				args:    []interface{}{b.name, length, t.MaxClassLength},
				snippet: src.snippet(b.headerLine),
			})
		}
	}
	return out
}

func extractLongMethods(src *source, t policy.Thresholds) []candidate {
	var out []candidate
	for _, b := range src.blocks {
		if b.kind != blockMethod {
			continue
		}
		if n := b.bodyLines(); n > t.MaxMethodLength {
			out = append(out, candidate{
				line:    b.headerLine,
				args:    []interface{}{b.name, t.MaxMethodLength, n},
				snippet: src.snippet(b.headerLine),
			})
		}
	}
	return out
}

func extractParameterCounts(src *source, t policy.Thresholds) []candidate {
	var out []candidate
	for _, b := range src.blocks {
		if b.kind != blockMethod {
			continue
		}
		if n := len(b.params); n > t.MaxParameters {
			out = append(out, candidate{
				line:    b.headerLine,
				args:    []interface{}{b.name, t.MaxParameters, n},
				snippet: src.snippet(b.headerLine),
			})
		}
	}
	return out
}

// extractDeepNesting reports at most one finding per enclosing method (or
// type, or file), located at the first block that reaches the limit and
// carrying the deepest level seen in that scope.
func extractDeepNesting(src *source, _ policy.Thresholds) []candidate {
	type scope struct {
		first    *block
		maxDepth int
	}
	var (
		order  []*block
		scopes = map[*block]*scope{}
	)
	for _, b := range src.blocks {
		if b.depth < nestingLimit || (b.kind != blockConditional && b.kind != blockLoop) {
			continue
		}
		owner := b.enclosing(blockMethod, blockType)
		s, ok := scopes[owner]
		if !ok {
			s = &scope{first: b}
			scopes[owner] = s
			order = append(order, owner)
		}
		if b.depth > s.maxDepth {
			s.maxDepth = b.depth
		}
	}

	out := make([]candidate, 0, len(order))
	for _, owner := range order {
		s := scopes[owner]
		out = append(out, candidate{
			line:    s.first.headerLine,
			args:    []interface{}{s.maxDepth},
			snippet: src.snippet(s.first.headerLine),
		})
	}
	return out
}
