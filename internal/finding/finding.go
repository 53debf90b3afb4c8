package finding

import "fmt"

// Finding is one issue detected in one file. Findings are created once per
// validation call and never mutated afterwards.
type Finding struct {
	FileName    string   `json:"fileName" yaml:"fileName"`
	Line        int      `json:"lineNumber,omitempty" yaml:"lineNumber,omitempty"` // 1-based; 0 = file-level
	Type        Type     `json:"type" yaml:"type"`
	Severity    Severity `json:"severity" yaml:"severity"`
	Description string   `json:"description" yaml:"description"`
	Suggestion  string   `json:"suggestion,omitempty" yaml:"suggestion,omitempty"`
	CodeSnippet string   `json:"codeSnippet,omitempty" yaml:"codeSnippet,omitempty"`
	RuleID      string   `json:"ruleId" yaml:"ruleId"`
}

// HasLine reports whether the finding points at a specific line.
func (f Finding) HasLine() bool {
	return f.Line > 0
}

// Location renders "file:line", or just the file for file-level findings.
func (f Finding) Location() string {
	if !f.HasLine() {
		return f.FileName
	}
	return fmt.Sprintf("%s:%d", f.FileName, f.Line)
}

// CountBySeverity tallies findings per severity.
func CountBySeverity(findings []Finding) map[Severity]int {
	counts := make(map[Severity]int, len(severityNames))
	for _, f := range findings {
		counts[f.Severity]++
	}
	return counts
}
