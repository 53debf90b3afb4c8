package report

import (
	"fmt"
	"strings"

	"archguard/internal/finding"
	"archguard/internal/review"
)

// =============================================================================
// TEXT OUTPUT
// =============================================================================

const (
	statusPassed  = "[PASSED]"
	statusIssues  = "[ISSUES]"
	statusBlocked = "[BLOCKED]"
)

func statusOf(result *review.Result) string {
	switch {
	case result.BlockCommit:
		return statusBlocked
	case result.Decision != review.DecisionApproved:
		return statusIssues
	default:
		return statusPassed
	}
}

// Text formats a result for the terminal. Findings are listed most severe
// first; within a severity they keep file and line order.
func Text(result *review.Result, color bool) string {
	st := newStyles(color)
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%s - %s (%s)\n", st.status(statusOf(result)), result.Text, result.Duration))
	sb.WriteString(fmt.Sprintf("Score: %d  Decision: %s\n", result.Score, st.bold(string(result.Decision))))

	reviewed := result.Reviewed()
	skipped := len(result.Files) - reviewed
	sb.WriteString(fmt.Sprintf("Files reviewed: %d", reviewed))
	if skipped > 0 {
		sb.WriteString(st.dim(fmt.Sprintf(" (%d skipped)", skipped)))
	}
	sb.WriteString("\n")

	all := result.Findings()
	if len(all) > 0 {
		sb.WriteString("\nFindings:\n")
		for _, sev := range descending() {
			for _, f := range all {
				if f.Severity != sev {
					continue
				}
				sb.WriteString(fmt.Sprintf("  %s %s - %s\n", st.badge(sev), f.Location(), f.Description))
				if f.Suggestion != "" {
					sb.WriteString(st.dim(fmt.Sprintf("    -> %s", f.Suggestion)) + "\n")
				}
			}
		}
	}

	var m review.Metrics
	for _, f := range result.Files {
		m.TotalLines += f.Metrics.TotalLines
		m.CodeLines += f.Metrics.CodeLines
		m.CommentLines += f.Metrics.CommentLines
		m.FunctionCount += f.Metrics.FunctionCount
		if f.Metrics.CyclomaticMax > m.CyclomaticMax {
			m.CyclomaticMax = f.Metrics.CyclomaticMax
		}
	}
	if m.TotalLines > 0 {
		sb.WriteString(fmt.Sprintf("\nMetrics: %d lines (%d code, %d comments), %d functions\n",
			m.TotalLines, m.CodeLines, m.CommentLines, m.FunctionCount))
		if m.CyclomaticMax > 10 {
			sb.WriteString(fmt.Sprintf("  ? Max cyclomatic complexity: %d\n", m.CyclomaticMax))
		}
	}

	return sb.String()
}

func descending() []finding.Severity {
	all := finding.Severities()
	out := make([]finding.Severity, len(all))
	for i, s := range all {
		out[len(all)-1-i] = s
	}
	return out
}
