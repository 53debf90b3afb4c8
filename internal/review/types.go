// Package review runs the validation engine over a batch of files and turns
// the combined findings into a score and an approval decision.
// This file contains core type definitions for review results.
package review

import (
	"time"

	"archguard/internal/finding"
)

// Decision is the outcome of a review.
type Decision string

const (
	DecisionApproved         Decision = "APPROVED"
	DecisionChangesRequested Decision = "CHANGES_REQUESTED"
	DecisionRejected         Decision = "REJECTED"
)

// Source is one file submitted for review. When Content is empty and Path is
// set, the reviewer reads the file from disk.
type Source struct {
	Name    string
	Path    string
	Content string
}

// File is the per-file part of a result.
type File struct {
	Name       string            `json:"name"`
	Skipped    bool              `json:"skipped,omitempty"`
	SkipReason string            `json:"skipReason,omitempty"`
	Findings   []finding.Finding `json:"findings"`
	Metrics    Metrics           `json:"metrics"`
}

// Summary counts findings per severity.
type Summary struct {
	Critical int `json:"critical"`
	High     int `json:"high"`
	Medium   int `json:"medium"`
	Low      int `json:"low"`
	Info     int `json:"info"`
	Total    int `json:"total"`
}

// Result is the outcome of one review run.
type Result struct {
	ID          string           `json:"id"`
	Author      string           `json:"author,omitempty"`
	StartedAt   time.Time        `json:"startedAt"`
	Duration    time.Duration    `json:"duration"`
	Files       []File           `json:"files"`
	Summary     Summary          `json:"summary"`
	Severity    finding.Severity `json:"severity,omitempty"`
	Score       int              `json:"score"`
	Decision    Decision         `json:"decision"`
	BlockCommit bool             `json:"blockCommit"`
	Text        string           `json:"text"`
}

// Findings returns every finding of the run, file by file.
func (r *Result) Findings() []finding.Finding {
	var all []finding.Finding
	for _, f := range r.Files {
		all = append(all, f.Findings...)
	}
	return all
}

// Reviewed counts the files that were validated, leaving out skipped ones.
func (r *Result) Reviewed() int {
	n := 0
	for _, f := range r.Files {
		if !f.Skipped {
			n++
		}
	}
	return n
}

// Metrics are rough size and complexity figures for one file.
type Metrics struct {
	TotalLines    int     `json:"totalLines"`
	CodeLines     int     `json:"codeLines"`
	CommentLines  int     `json:"commentLines"`
	BlankLines    int     `json:"blankLines"`
	FunctionCount int     `json:"functionCount"`
	CyclomaticMax int     `json:"cyclomaticMax"`
	CyclomaticAvg float64 `json:"cyclomaticAvg"`
}
