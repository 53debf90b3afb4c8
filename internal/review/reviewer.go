package review

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"archguard/internal/finding"
	"archguard/internal/logging"
	"archguard/internal/policy"
	"archguard/internal/validation"
)

const (
	skipIgnored  = "ignored by policy"
	skipTooLarge = "exceeds maximum file size"
)

// Reviewer validates batches of files against a policy.
type Reviewer struct {
	policy          policy.Policy
	concurrency     int
	maxFileSize     int64
	extractLimit    int
	blockOnCritical bool
	now             func() time.Time
}

// Option configures a Reviewer.
type Option func(*Reviewer)

// WithConcurrency bounds how many files are validated at once.
func WithConcurrency(n int) Option {
	return func(r *Reviewer) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithMaxFileSize skips files larger than limit bytes. Zero disables the
// check.
func WithMaxFileSize(limit int64) Option {
	return func(r *Reviewer) {
		r.maxFileSize = limit
	}
}

// WithParallelExtraction is passed through to the engine.
func WithParallelExtraction(limit int) Option {
	return func(r *Reviewer) {
		r.extractLimit = limit
	}
}

// WithBlockOnCritical controls whether a critical finding blocks the commit
// even when the decision is not REJECTED.
func WithBlockOnCritical(block bool) Option {
	return func(r *Reviewer) {
		r.blockOnCritical = block
	}
}

// New validates p and returns a Reviewer for it.
func New(p policy.Policy, opts ...Option) (*Reviewer, error) {
	if err := p.Validate(validation.Catalog()); err != nil {
		return nil, err
	}
	r := &Reviewer{
		policy:          p.Clone(),
		concurrency:     4,
		blockOnCritical: true,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Review validates files under the policy resolved for author (the global
// policy when author belongs to no team). Per-file results keep the input
// order. Cancelling ctx stops the run between files and returns ctx.Err().
func (r *Reviewer) Review(ctx context.Context, author string, files []Source) (*Result, error) {
	start := r.now()
	log := logging.Get(logging.CategoryReview)

	effective := r.policy.ForMember(author)
	if team, _, ok := r.policy.TeamFor(author); ok {
		log.Debug("author %s resolved to team %s", author, team)
	}
	var engineOpts []validation.Option
	if r.extractLimit > 1 {
		engineOpts = append(engineOpts, validation.WithParallelExtraction(r.extractLimit))
	}
	engine, err := validation.New(effective, engineOpts...)
	if err != nil {
		return nil, fmt.Errorf("compile policy for %q: %w", author, err)
	}

	log.Info("reviewing %d files (concurrency %d)", len(files), r.concurrency)

	results := make([]File, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, src := range files {
		if gctx.Err() != nil {
			break
		}
		i, src := i, src
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			file, err := r.reviewFile(engine, src)
			if err != nil {
				return err
			}
			results[i] = file
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Warn("review aborted: %v", err)
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &Result{
		ID:        uuid.NewString(),
		Author:    author,
		StartedAt: start,
		Files:     results,
	}
	all := result.Findings()
	result.Summary = Summarize(all)
	result.Severity = overallSeverity(all)
	result.Score = Score(all)
	result.Decision = Decide(result.Score, result.Summary, effective.Thresholds)
	result.BlockCommit = r.shouldBlockCommit(result)
	result.Duration = r.now().Sub(start)
	result.Text = generateSummary(result)

	log.Info("%s", result.Text)
	return result, nil
}

// ReviewPaths reads each path from disk and reviews it under its own name.
func (r *Reviewer) ReviewPaths(ctx context.Context, author string, paths []string) (*Result, error) {
	files := make([]Source, len(paths))
	for i, p := range paths {
		files[i] = Source{Name: filepath.ToSlash(p), Path: p}
	}
	return r.Review(ctx, author, files)
}

func (r *Reviewer) reviewFile(engine *validation.Engine, src Source) (File, error) {
	file := File{Name: src.Name, Findings: []finding.Finding{}}
	if engine.Ignores(src.Name) {
		file.Skipped, file.SkipReason = true, skipIgnored
		logging.ReviewDebug("skipping %s: %s", src.Name, skipIgnored)
		return file, nil
	}

	content := src.Content
	if content == "" && src.Path != "" {
		data, skipped, err := r.readFile(src.Path)
		if err != nil {
			return file, err
		}
		if skipped {
			file.Skipped, file.SkipReason = true, skipTooLarge
			logging.ReviewDebug("skipping %s: %s", src.Name, skipTooLarge)
			return file, nil
		}
		content = data
	} else if r.maxFileSize > 0 && int64(len(content)) > r.maxFileSize {
		file.Skipped, file.SkipReason = true, skipTooLarge
		return file, nil
	}

	file.Findings = engine.Validate(src.Name, content)
	file.Metrics = calculateMetrics(content)
	return file, nil
}

// readFile loads path unless it exceeds the size limit.
func (r *Reviewer) readFile(path string) (string, bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", false, fmt.Errorf("stat %s: %w", path, err)
	}
	if r.maxFileSize > 0 && info.Size() > r.maxFileSize {
		return "", true, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false, fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), false, nil
}

// shouldBlockCommit determines if the review should block commits.
func (r *Reviewer) shouldBlockCommit(result *Result) bool {
	if result.Decision == DecisionRejected {
		return true
	}
	return r.blockOnCritical && result.Severity == finding.SeverityCritical
}
