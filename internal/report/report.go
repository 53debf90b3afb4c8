// Package report renders review results for terminals, pull requests and
// code-scanning tools, and lists the rule catalogue.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"archguard/internal/review"
	"archguard/internal/validation"
)

// Format selects a renderer.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
	FormatSARIF    Format = "sarif"
)

// Formats lists every renderer Write understands.
var Formats = []Format{FormatText, FormatMarkdown, FormatJSON, FormatSARIF}

// ParseFormat accepts a format name case-insensitively.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case FormatText, FormatMarkdown, FormatJSON, FormatSARIF:
		return f, nil
	case "md":
		return FormatMarkdown, nil
	}
	return "", fmt.Errorf("unknown output format %q (want text, markdown, json or sarif)", name)
}

// Options tune terminal output.
type Options struct {
	Color bool // lipgloss badges in text, glamour rendering of markdown
	Width int  // markdown wrap width
}

// Write renders result to w in the given format.
func Write(w io.Writer, result *review.Result, format Format, opts Options) error {
	var out string
	switch format {
	case FormatJSON:
		return JSON(w, result)
	case FormatSARIF:
		return SARIF(w, result)
	case FormatMarkdown:
		out = Markdown(result)
		if opts.Color {
			rendered, err := RenderMarkdown(out, opts.Width)
			if err != nil {
				return err
			}
			out = rendered
		}
	default:
		out = Text(result, opts.Color)
	}
	_, err := io.WriteString(w, out)
	return err
}

// JSON writes result as indented JSON.
func JSON(w io.Writer, result *review.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return nil
}

// Rules renders the rule catalogue as a table.
func Rules(rules []validation.Rule, color bool) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("RULE", "TYPE", "SEVERITY", "CRITICAL FILES", "DEFAULT", "STRUCTURAL")
	if color {
		t = t.StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Bold(true).Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	}
	for _, r := range rules {
		critical := "-"
		if r.CriticalSeverity.Valid() {
			critical = r.CriticalSeverity.String()
		}
		def := "on"
		if !r.DefaultOn() {
			def = "opt-in"
		}
		structural := ""
		if r.Structural {
			structural = "yes"
		}
		t.Row(r.ID, string(r.Type), r.Severity.String(), critical, def, structural)
	}
	return t.String() + "\n"
}
