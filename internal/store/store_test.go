package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"archguard/internal/finding"
	"archguard/internal/policy"
	"archguard/internal/review"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleRun(id string, started time.Time, findings ...finding.Finding) *review.Result {
	r := &review.Result{
		ID:        id,
		Author:    "dev@example.com",
		StartedAt: started,
		Duration:  250 * time.Millisecond,
		Files:     []review.File{{Name: "UserService.java", Findings: findings}},
	}
	r.Summary = review.Summarize(findings)
	r.Score = review.Score(findings)
	r.Decision = review.Decide(r.Score, r.Summary, policy.DefaultThresholds())
	return r
}

func TestOpen_CreatesSchemaAndMigrates(t *testing.T) {
	s := openTestStore(t)

	assert.True(t, tableExists(s.db, "review_runs"))
	assert.True(t, tableExists(s.db, "review_findings"))
	assert.True(t, columnExists(s.db, "review_runs", "policy_path"))
	assert.True(t, columnExists(s.db, "review_findings", "snippet"))
	assert.Equal(t, CurrentSchemaVersion, GetSchemaVersion(s.db))

	// Reopening an existing database is a no-op.
	path := s.Path()
	require.NoError(t, s.Close())
	again, err := Open(path)
	require.NoError(t, err)
	defer again.Close()
	assert.Equal(t, CurrentSchemaVersion, GetSchemaVersion(again.db))
}

func TestSaveRun_RoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	findings := []finding.Finding{
		{FileName: "UserService.java", Line: 7, Type: finding.TypeSecurity, Severity: finding.SeverityHigh,
			RuleID: "ARCH_HARDCODED_SECRET", Description: "Hardcoded secret detected in 'password'",
			Suggestion: "Load secrets from the environment", CodeSnippet: `String password = "hunter2";`},
		{FileName: "UserService.java", Type: finding.TypeDocumentation, Severity: finding.SeverityInfo,
			RuleID: "ARCH_MISSING_DOCUMENTATION", Description: "Public class lacks documentation"},
	}
	started := time.Date(2026, 3, 1, 12, 0, 0, 123, time.UTC)
	result := sampleRun("run-1", started, findings...)
	require.NoError(t, s.SaveRun(ctx, result, ".archguard/policy.yaml"))

	run, err := s.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.True(t, started.Equal(run.StartedAt))
	assert.Equal(t, 250*time.Millisecond, run.Duration)
	assert.Equal(t, "dev@example.com", run.Author)
	assert.Equal(t, ".archguard/policy.yaml", run.PolicyPath)
	assert.Equal(t, 1, run.Files)
	assert.Equal(t, result.Score, run.Score)
	assert.Equal(t, result.Decision, run.Decision)
	assert.Equal(t, result.Summary, run.Summary)

	stored, err := s.RunFindings(ctx, "run-1")
	require.NoError(t, err)
	if diff := cmp.Diff(findings, stored); diff != "" {
		t.Errorf("stored findings mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveRun_CountsOnlyReviewedFiles(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	result := sampleRun("run-skips", time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
	result.Files = append(result.Files,
		review.File{Name: "UserServiceTest.java", Skipped: true, SkipReason: "ignored by policy"},
		review.File{Name: "huge.sql", Skipped: true, SkipReason: "exceeds maximum file size"},
		review.File{Name: "OrderService.java"},
	)
	require.NoError(t, s.SaveRun(ctx, result, ""))

	run, err := s.GetRun(ctx, "run-skips")
	require.NoError(t, err)
	assert.Equal(t, 2, run.Files)
	assert.Equal(t, result.Reviewed(), run.Files)
}

func TestGetRun_NotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.GetRun(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestListRuns_NewestFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, s.SaveRun(ctx, sampleRun(id, base.Add(time.Duration(i)*time.Hour)), ""))
	}

	runs, err := s.ListRuns(ctx, 0)
	require.NoError(t, err)
	ids := make([]string, len(runs))
	for i, r := range runs {
		ids[i] = r.ID
	}
	assert.Equal(t, []string{"c", "b", "a"}, ids)

	limited, err := s.ListRuns(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestPurgeBefore(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	old := sampleRun("old", base, finding.Finding{FileName: "A.java", Line: 1, Severity: finding.SeverityLow, Type: finding.TypeBestPractice, RuleID: "ARCH_MAGIC_NUMBER"})
	require.NoError(t, s.SaveRun(ctx, old, ""))
	require.NoError(t, s.SaveRun(ctx, sampleRun("new", base.Add(48*time.Hour)), ""))

	n, err := s.PurgeBefore(ctx, base.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = s.GetRun(ctx, "old")
	assert.ErrorIs(t, err, ErrRunNotFound)
	stored, err := s.RunFindings(ctx, "old")
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestSaveRun_DuplicateIDFails(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	r := sampleRun("dup", time.Now())
	require.NoError(t, s.SaveRun(ctx, r, ""))
	assert.Error(t, s.SaveRun(ctx, r, ""))
}
