package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"archguard/internal/finding"
	"archguard/internal/logging"
	"archguard/internal/review"
)

// =============================================================================
// REVIEW HISTORY
// =============================================================================

// ErrRunNotFound is returned when a run ID is unknown.
var ErrRunNotFound = errors.New("review run not found")

// timeLayout is fixed-width UTC so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Run is one persisted review run.
type Run struct {
	ID         string
	StartedAt  time.Time
	Duration   time.Duration
	Author     string
	PolicyPath string
	Files      int
	Score      int
	Decision   review.Decision
	Summary    review.Summary
}

// SaveRun persists a review result and its findings in one transaction.
// The stored file count excludes skipped files.
func (s *Store) SaveRun(ctx context.Context, result *review.Result, policyPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	findings := result.Findings()
	logging.StoreDebug("Storing review run %s: %d files, %d findings", result.ID, result.Reviewed(), len(findings))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	sum := result.Summary
	_, err = tx.ExecContext(ctx,
		`INSERT INTO review_runs (id, started_at, duration_ms, author, policy_path, files, score, decision,
		                          critical, high, medium, low, info)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		result.ID, result.StartedAt.UTC().Format(timeLayout), result.Duration.Milliseconds(),
		result.Author, policyPath, result.Reviewed(), result.Score, string(result.Decision),
		sum.Critical, sum.High, sum.Medium, sum.Low, sum.Info,
	)
	if err != nil {
		logging.Get(logging.CategoryStore).Error("Failed to store review run %s: %v", result.ID, err)
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO review_findings (run_id, file_path, line, severity, category, rule_id, message, suggestion, snippet)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare finding insert: %w", err)
	}
	defer stmt.Close()

	for _, f := range findings {
		if _, err := stmt.ExecContext(ctx, result.ID, f.FileName, f.Line, f.Severity.String(),
			string(f.Type), f.RuleID, f.Description, f.Suggestion, f.CodeSnippet); err != nil {
			logging.Get(logging.CategoryStore).Error("Failed to store finding for %s: %v", f.Location(), err)
			return fmt.Errorf("insert finding: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	logging.Store("Review run %s stored (%s, score %d)", result.ID, result.Decision, result.Score)
	return nil
}

const runColumns = `id, started_at, duration_ms, COALESCE(author, ''), COALESCE(policy_path, ''), files, score, decision,
	critical, high, medium, low, info`

// ListRuns returns the most recent runs first. A limit of zero or less
// returns every run.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT " + runColumns + " FROM review_runs ORDER BY started_at DESC, id"
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun loads one run by ID.
func (s *Store) GetRun(ctx context.Context, id string) (Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, "SELECT "+runColumns+" FROM review_runs WHERE id = ?", id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return run, err
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(sc scanner) (Run, error) {
	var (
		run        Run
		started    string
		durationMS int64
		decision   string
	)
	err := sc.Scan(&run.ID, &started, &durationMS, &run.Author, &run.PolicyPath, &run.Files, &run.Score, &decision,
		&run.Summary.Critical, &run.Summary.High, &run.Summary.Medium, &run.Summary.Low, &run.Summary.Info)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	if run.StartedAt, err = time.Parse(timeLayout, started); err != nil {
		return Run{}, fmt.Errorf("parse start time of run %s: %w", run.ID, err)
	}
	run.Duration = time.Duration(durationMS) * time.Millisecond
	run.Decision = review.Decision(decision)
	s := run.Summary
	run.Summary.Total = s.Critical + s.High + s.Medium + s.Low + s.Info
	return run, nil
}

// RunFindings returns the findings of one run in the order they were
// stored.
func (s *Store) RunFindings(ctx context.Context, runID string) ([]finding.Finding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT file_path, COALESCE(line, 0), severity, category, rule_id, message,
		        COALESCE(suggestion, ''), COALESCE(snippet, '')
		 FROM review_findings WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query findings: %w", err)
	}
	defer rows.Close()

	var out []finding.Finding
	for rows.Next() {
		var (
			f        finding.Finding
			severity string
			category string
		)
		if err := rows.Scan(&f.FileName, &f.Line, &severity, &category, &f.RuleID, &f.Description,
			&f.Suggestion, &f.CodeSnippet); err != nil {
			return nil, fmt.Errorf("scan finding: %w", err)
		}
		if f.Severity, err = finding.ParseSeverity(severity); err != nil {
			logging.StoreDebug("Stored finding has unknown severity %q: %v", severity, err)
		}
		f.Type = finding.Type(category)
		out = append(out, f)
	}
	return out, rows.Err()
}

// PurgeBefore deletes runs started before cutoff together with their
// findings and reports how many runs were removed.
func (s *Store) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM review_runs WHERE started_at < ?", cutoff.UTC().Format(timeLayout))
	if err != nil {
		return 0, fmt.Errorf("purge runs: %w", err)
	}
	n, _ := res.RowsAffected()
	logging.Store("Purged %d review runs older than %s", n, cutoff.Format(time.RFC3339))
	return n, nil
}
