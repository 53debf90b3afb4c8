package review

import (
	"strings"
)

// =============================================================================
// METRICS CALCULATION
// =============================================================================

var functionMarkers = []string{"func ", "function ", "def ", "fn "}

// calculateMetrics counts line kinds and estimates per-function cyclomatic
// complexity as 1 + decision points. Function bodies are tracked by brace
// depth, so the figures are approximate for brace-less languages.
func calculateMetrics(content string) Metrics {
	var m Metrics
	if content == "" {
		return m
	}

	lines := strings.Split(strings.TrimSuffix(content, "\n"), "\n")
	m.TotalLines = len(lines)

	var complexities []int
	inComment := false
	inFunction := false
	depth := 0
	bodyLines := 0
	cc := 1

	closeFunction := func() {
		complexities = append(complexities, cc)
		inFunction = false
		bodyLines = 0
		cc = 1
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			m.BlankLines++
			continue
		case inComment:
			m.CommentLines++
			if strings.Contains(line, "*/") {
				inComment = false
			}
			continue
		case strings.HasPrefix(trimmed, "/*"):
			m.CommentLines++
			inComment = !strings.Contains(trimmed[2:], "*/")
			continue
		case strings.HasPrefix(trimmed, "//"), strings.HasPrefix(trimmed, "#"), strings.HasPrefix(trimmed, "*"):
			m.CommentLines++
			continue
		}

		m.CodeLines++

		if isFunctionStart(line) {
			if inFunction {
				closeFunction()
			}
			m.FunctionCount++
			inFunction = true
			depth = 0
		}
		if !inFunction {
			continue
		}

		bodyLines++
		depth += strings.Count(line, "{") - strings.Count(line, "}")
		cc += countDecisionPoints(line)
		if depth <= 0 && bodyLines > 1 {
			closeFunction()
		}
	}
	if inFunction {
		closeFunction()
	}

	if len(complexities) > 0 {
		total := 0
		for _, c := range complexities {
			total += c
			if c > m.CyclomaticMax {
				m.CyclomaticMax = c
			}
		}
		m.CyclomaticAvg = float64(total) / float64(len(complexities))
	}
	return m
}

func isFunctionStart(line string) bool {
	for _, marker := range functionMarkers {
		if strings.Contains(line, marker) {
			return true
		}
	}
	return false
}

// countDecisionPoints counts branches and short-circuit operators on a line.
func countDecisionPoints(line string) int {
	count := 0
	for _, keyword := range []string{"if ", "if(", "for ", "for(", "while ", "while(", "case ", "catch ", "catch(", "except "} {
		count += strings.Count(line, keyword)
	}
	count += strings.Count(line, " ? ")
	count += strings.Count(line, "&&")
	count += strings.Count(line, "||")
	return count
}
