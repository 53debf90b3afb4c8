package report

import (
	"github.com/charmbracelet/lipgloss"

	"archguard/internal/finding"
)

// Palette shared with the terminal renderers.
var (
	colorDestructive = lipgloss.Color("#e53935") // Red
	colorWarning     = lipgloss.Color("#FFC107") // Yellow
	colorInfo        = lipgloss.Color("#2196F3") // Blue
	colorSuccess     = lipgloss.Color("#8BC34A") // Lime Green
	colorMuted       = lipgloss.Color("#8a94a6")
)

// styles holds the lipgloss styles for the text report. The zero value
// renders plain text.
type styles struct {
	plain    bool
	header   lipgloss.Style
	muted    lipgloss.Style
	badges   map[finding.Severity]lipgloss.Style
	statuses map[string]lipgloss.Style
}

func newStyles(color bool) styles {
	if !color {
		return styles{plain: true}
	}
	badge := func(c lipgloss.Color) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(c).Bold(true)
	}
	return styles{
		header: lipgloss.NewStyle().Bold(true),
		muted:  lipgloss.NewStyle().Foreground(colorMuted),
		badges: map[finding.Severity]lipgloss.Style{
			finding.SeverityCritical: badge(colorDestructive),
			finding.SeverityHigh:     badge(colorDestructive),
			finding.SeverityMedium:   badge(colorWarning),
			finding.SeverityLow:      badge(colorInfo),
			finding.SeverityInfo:     lipgloss.NewStyle().Foreground(colorMuted),
		},
		statuses: map[string]lipgloss.Style{
			statusPassed:  badge(colorSuccess),
			statusIssues:  badge(colorWarning),
			statusBlocked: badge(colorDestructive),
		},
	}
}

func (s styles) badge(sev finding.Severity) string {
	text := "[" + sev.String() + "]"
	if s.plain {
		return text
	}
	return s.badges[sev].Render(text)
}

func (s styles) status(status string) string {
	if s.plain {
		return status
	}
	return s.statuses[status].Render(status)
}

func (s styles) bold(text string) string {
	if s.plain {
		return text
	}
	return s.header.Render(text)
}

func (s styles) dim(text string) string {
	if s.plain {
		return text
	}
	return s.muted.Render(text)
}
