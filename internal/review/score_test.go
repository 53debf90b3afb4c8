package review

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"archguard/internal/finding"
	"archguard/internal/policy"
)

func findingsOf(severities ...finding.Severity) []finding.Finding {
	out := make([]finding.Finding, len(severities))
	for i, s := range severities {
		out[i] = finding.Finding{FileName: "A.java", Severity: s}
	}
	return out
}

func TestScore(t *testing.T) {
	tests := []struct {
		name     string
		findings []finding.Finding
		want     int
	}{
		{"clean", nil, 100},
		{"one of each", findingsOf(finding.SeverityCritical, finding.SeverityHigh, finding.SeverityMedium, finding.SeverityLow, finding.SeverityInfo), 62},
		{"floors at zero", findingsOf(
			finding.SeverityCritical, finding.SeverityCritical, finding.SeverityCritical,
			finding.SeverityCritical, finding.SeverityCritical, finding.SeverityCritical), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Score(tt.findings))
		})
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(findingsOf(finding.SeverityHigh, finding.SeverityHigh, finding.SeverityInfo))
	assert.Equal(t, Summary{High: 2, Info: 1, Total: 3}, s)
}

func TestDecide(t *testing.T) {
	th := policy.DefaultThresholds()
	tests := []struct {
		name  string
		score int
		sum   Summary
		want  Decision
	}{
		{"clean run approves", 100, Summary{}, DecisionApproved},
		{"approve boundary", 80, Summary{High: 3}, DecisionApproved},
		{"too many highs", 85, Summary{High: 4}, DecisionChangesRequested},
		{"middling score", 60, Summary{}, DecisionChangesRequested},
		{"reject boundary is exclusive", 30, Summary{}, DecisionChangesRequested},
		{"low score rejects", 29, Summary{}, DecisionRejected},
		{"any critical rejects", 95, Summary{Critical: 1}, DecisionRejected},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decide(tt.score, tt.sum, th))
		})
	}
}

func TestDecide_CustomThresholds(t *testing.T) {
	th := policy.DefaultThresholds()
	th.CriticalFindingsThreshold = 2
	th.AutoApproveScore = 50

	assert.Equal(t, DecisionApproved, Decide(55, Summary{Critical: 2}, th))
	assert.Equal(t, DecisionRejected, Decide(55, Summary{Critical: 3}, th))
}

func TestOverallSeverity(t *testing.T) {
	assert.Equal(t, finding.Severity(0), overallSeverity(nil))
	assert.Equal(t, finding.SeverityHigh, overallSeverity(findingsOf(finding.SeverityLow, finding.SeverityHigh, finding.SeverityMedium)))
}

func TestCalculateMetrics(t *testing.T) {
	code := `package demo

// Max returns the larger value.
func Max(a, b int) int {
	if a > b && a != 0 {
		return a
	}
	return b
}

/*
 * block comment
 */
func Noop() {
}
`
	m := calculateMetrics(code)
	assert.Equal(t, 15, m.TotalLines)
	assert.Equal(t, 2, m.BlankLines)
	assert.Equal(t, 4, m.CommentLines)
	assert.Equal(t, 2, m.FunctionCount)
	assert.Equal(t, 3, m.CyclomaticMax)
	assert.InDelta(t, 2.0, m.CyclomaticAvg, 0.001)
}
