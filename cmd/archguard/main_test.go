package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"archguard/internal/policy"
	"archguard/internal/report"
	"archguard/internal/validation"
)

const secretSource = `public class Settings {
    private String prodPassword = "realSecret";
}
`

func resetFlags() {
	verbose = false
	workspace = ""
	configPath = filepath.Join(".archguard", "config.yaml")
	policyFlag = ""
	timeout = 5 * time.Minute

	validateAuthor, validateFormat = "", ""
	validateColor, rulesColor = "auto", "auto"
	validateSave, validateNoFail = false, false
	validateParallel = 0
	policyAuthor, policyForce = "", false
	historyLimit, historyOlderThan = 20, 30*24*time.Hour
	watchAuthor, watchInitial = "", false
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()
	t.Setenv("ARCHGUARD_POLICY", "")
	t.Setenv("ARCHGUARD_DB", "")
	t.Setenv("ARCHGUARD_LOG_LEVEL", "error")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestRulesCmd(t *testing.T) {
	out, err := execute(t, "rules")
	require.NoError(t, err)
	for _, r := range validation.Rules() {
		assert.Contains(t, out, r.ID)
	}
}

func TestPolicyInitAndCheck(t *testing.T) {
	ws := t.TempDir()

	out, err := execute(t, "-w", ws, "policy", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote default policy")
	assert.FileExists(t, filepath.Join(ws, ".archguard", "policy.yaml"))

	_, err = execute(t, "-w", ws, "policy", "init")
	assert.Error(t, err)

	_, err = execute(t, "-w", ws, "policy", "init", "--force")
	assert.NoError(t, err)

	out, err = execute(t, "-w", ws, "policy", "check")
	require.NoError(t, err)
	assert.Contains(t, out, "OK")
}

func TestPolicyCheck_Invalid(t *testing.T) {
	ws := t.TempDir()
	writeFile(t, filepath.Join(ws, "bad.yaml"), "rules:\n  disabled: [NOT_A_RULE]\n")

	_, err := execute(t, "-w", ws, "policy", "check", "bad.yaml")
	require.Error(t, err)
	assert.ErrorIs(t, err, policy.ErrInvalidConfig)
	assert.Contains(t, err.Error(), "rules.disabled[0]")
}

func TestPolicyShow_ResolvesTeam(t *testing.T) {
	ws := t.TempDir()
	writeFile(t, filepath.Join(ws, ".archguard", "policy.yaml"), `thresholds:
  maxParameters: 5
teams:
  platform:
    members: [dev@example.com]
    customThresholds:
      maxParameters: 8
`)

	// thresholds is the first block, so the first match is the effective value.
	maxParams := regexp.MustCompile(`maxParameters: (\d+)`)

	out, err := execute(t, "-w", ws, "policy", "show", "--author", "dev@example.com")
	require.NoError(t, err)
	assert.Equal(t, "8", maxParams.FindStringSubmatch(out)[1])

	out, err = execute(t, "-w", ws, "policy", "show")
	require.NoError(t, err)
	assert.Equal(t, "5", maxParams.FindStringSubmatch(out)[1])
}

func TestValidateCmd(t *testing.T) {
	ws := t.TempDir()
	writeFile(t, filepath.Join(ws, "src", "Settings.java"), secretSource)
	writeFile(t, filepath.Join(ws, "src", "notes.md"), "not source")

	out, err := execute(t, "-w", ws, "validate", "src")
	require.NoError(t, err)
	assert.Contains(t, out, "Hardcoded secret")
	assert.Contains(t, out, "Files reviewed: 1")
}

func TestValidateCmd_BlocksOnCriticalFile(t *testing.T) {
	ws := t.TempDir()
	writeFile(t, filepath.Join(ws, "PaymentSettings.java"), secretSource)

	out, err := execute(t, "-w", ws, "validate", "PaymentSettings.java")
	var blocked errBlocked
	require.True(t, errors.As(err, &blocked), "err: %v", err)
	assert.Equal(t, "REJECTED", string(blocked.decision))
	assert.Contains(t, out, "[BLOCKED]")

	_, err = execute(t, "-w", ws, "validate", "PaymentSettings.java", "--no-fail")
	assert.NoError(t, err)
}

func TestValidateCmd_SaveAndHistory(t *testing.T) {
	ws := t.TempDir()
	writeFile(t, filepath.Join(ws, "Settings.java"), secretSource)

	out, err := execute(t, "-w", ws, "validate", "Settings.java", "--save", "--format", "json", "--author", "dev@example.com")
	require.NoError(t, err)
	id := regexp.MustCompile(`"id": "([0-9a-f-]+)"`).FindStringSubmatch(out)
	require.Len(t, id, 2, out)

	out, err = execute(t, "-w", ws, "history")
	require.NoError(t, err)
	assert.Contains(t, out, id[1])
	assert.Contains(t, out, "dev@example.com")

	out, err = execute(t, "-w", ws, "history", "show", id[1])
	require.NoError(t, err)
	assert.Contains(t, out, "Hardcoded secret")

	out, err = execute(t, "-w", ws, "history", "purge", "--older-than", "0s")
	require.NoError(t, err)
	assert.Contains(t, out, "Purged 1 runs.")
}

func TestValidateCmd_UnknownFormat(t *testing.T) {
	ws := t.TempDir()
	writeFile(t, filepath.Join(ws, "Settings.java"), secretSource)

	_, err := execute(t, "-w", ws, "validate", "Settings.java", "--format", "xml")
	assert.Error(t, err)
}

func TestValidateCmd_FormatHelpListsEveryFormat(t *testing.T) {
	flag := validateCmd.Flags().Lookup("format")
	require.NotNil(t, flag)
	for _, f := range report.Formats {
		assert.Contains(t, flag.Usage, string(f))
	}
}

func TestColorEnabled(t *testing.T) {
	var buf bytes.Buffer

	on, err := colorEnabled("always", &buf)
	require.NoError(t, err)
	assert.True(t, on)

	on, err = colorEnabled("never", &buf)
	require.NoError(t, err)
	assert.False(t, on)

	on, err = colorEnabled("auto", &buf)
	require.NoError(t, err)
	assert.False(t, on, "buffers are never terminals")

	_, err = colorEnabled("sometimes", &buf)
	assert.Error(t, err)
}
