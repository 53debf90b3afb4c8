package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"archguard/internal/review"
)

// Markdown formats a result as a GitHub-flavoured markdown document, one
// table per file with findings.
func Markdown(result *review.Result) string {
	var sb strings.Builder

	sb.WriteString("# Architecture Review\n\n")
	sb.WriteString(fmt.Sprintf("**Decision:** %s  \n", result.Decision))
	sb.WriteString(fmt.Sprintf("**Score:** %d/100  \n", result.Score))
	if result.Author != "" {
		sb.WriteString(fmt.Sprintf("**Author:** %s  \n", result.Author))
	}
	sb.WriteString(fmt.Sprintf("**Run:** `%s`\n\n", result.ID))

	s := result.Summary
	sb.WriteString("| Critical | High | Medium | Low | Info |\n")
	sb.WriteString("|---:|---:|---:|---:|---:|\n")
	sb.WriteString(fmt.Sprintf("| %d | %d | %d | %d | %d |\n", s.Critical, s.High, s.Medium, s.Low, s.Info))

	for _, f := range result.Files {
		if f.Skipped || len(f.Findings) == 0 {
			continue
		}
		sb.WriteString(fmt.Sprintf("\n## %s\n\n", f.Name))
		sb.WriteString("| Line | Severity | Rule | Finding | Suggestion |\n")
		sb.WriteString("|---:|---|---|---|---|\n")
		for _, item := range f.Findings {
			line := "-"
			if item.HasLine() {
				line = fmt.Sprintf("%d", item.Line)
			}
			sb.WriteString(fmt.Sprintf("| %s | %s | `%s` | %s | %s |\n",
				line, item.Severity, item.RuleID, escapeCell(item.Description), escapeCell(item.Suggestion)))
		}
	}

	var skipped []string
	for _, f := range result.Files {
		if f.Skipped {
			skipped = append(skipped, fmt.Sprintf("- `%s` (%s)", f.Name, f.SkipReason))
		}
	}
	if len(skipped) > 0 {
		sb.WriteString("\n## Skipped\n\n")
		sb.WriteString(strings.Join(skipped, "\n"))
		sb.WriteString("\n")
	}
	return sb.String()
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

// RenderMarkdown renders markdown for the terminal with glamour.
func RenderMarkdown(md string, width int) (string, error) {
	if width <= 0 {
		width = 80
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("create markdown renderer: %w", err)
	}
	out, err := renderer.Render(md)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return out, nil
}
