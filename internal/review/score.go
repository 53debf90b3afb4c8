package review

import (
	"fmt"

	"archguard/internal/finding"
	"archguard/internal/policy"
)

// =============================================================================
// SCORING
// =============================================================================

var penalties = map[finding.Severity]int{
	finding.SeverityCritical: 20,
	finding.SeverityHigh:     10,
	finding.SeverityMedium:   5,
	finding.SeverityLow:      2,
	finding.SeverityInfo:     1,
}

// Score starts at 100 and subtracts a fixed penalty per finding severity.
// It never drops below zero.
func Score(findings []finding.Finding) int {
	score := 100
	for _, f := range findings {
		score -= penalties[f.Severity]
	}
	if score < 0 {
		return 0
	}
	return score
}

// Summarize counts findings per severity.
func Summarize(findings []finding.Finding) Summary {
	var s Summary
	for _, f := range findings {
		switch f.Severity {
		case finding.SeverityCritical:
			s.Critical++
		case finding.SeverityHigh:
			s.High++
		case finding.SeverityMedium:
			s.Medium++
		case finding.SeverityLow:
			s.Low++
		case finding.SeverityInfo:
			s.Info++
		}
	}
	s.Total = len(findings)
	return s
}

// Decide maps a score and severity counts onto a decision. Rejection wins
// over approval.
func Decide(score int, s Summary, t policy.Thresholds) Decision {
	if score < t.AutoRejectScore || s.Critical > t.CriticalFindingsThreshold {
		return DecisionRejected
	}
	if score >= t.AutoApproveScore && s.High <= t.HighFindingsThreshold {
		return DecisionApproved
	}
	return DecisionChangesRequested
}

// overallSeverity is the highest severity present, or zero for a clean run.
func overallSeverity(findings []finding.Finding) finding.Severity {
	var highest finding.Severity
	for _, f := range findings {
		if f.Severity > highest {
			highest = f.Severity
		}
	}
	return highest
}

// generateSummary creates a human-readable summary.
func generateSummary(r *Result) string {
	return fmt.Sprintf("Review complete: %d files, %d critical, %d high, %d medium, %d low, %d info (score %d, %s)",
		r.Reviewed(), r.Summary.Critical, r.Summary.High, r.Summary.Medium, r.Summary.Low, r.Summary.Info,
		r.Score, r.Decision)
}
