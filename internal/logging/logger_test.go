package logging

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func reset(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		_ = Sync()
		SetRoot(nil)
		mu.Lock()
		categories = nil
		mu.Unlock()
	})
}

func TestGet_NoopBeforeInitialize(t *testing.T) {
	reset(t)
	assert.NotPanics(t, func() {
		Get(CategoryReview).Info("nothing %d", 1)
		Review("still nothing")
	})
}

func TestSetRoot_NamesCategories(t *testing.T) {
	reset(t)
	core, logs := observer.New(zapcore.DebugLevel)
	SetRoot(zap.New(core))

	Review("reviewed %d files", 3)
	StoreDebug("saved run %s", "r1")
	Get(CategoryWatch).With("file", "A.java").Warn("changed")

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, "review", entries[0].LoggerName)
	assert.Equal(t, "reviewed 3 files", entries[0].Message)
	assert.Equal(t, zapcore.DebugLevel, entries[1].Level)
	assert.Equal(t, "store", entries[1].LoggerName)
	assert.Equal(t, "A.java", entries[2].ContextMap()["file"])
}

func TestInitialize_FileAndLevel(t *testing.T) {
	reset(t)
	path := filepath.Join(t.TempDir(), "logs", "archguard.log")
	require.NoError(t, Initialize(Options{Level: "warn", JSONFormat: true, File: path}))

	Review("hidden below warn")
	Get(CategoryPolicy).Error("policy %s rejected", "p.yaml")
	require.NoError(t, Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.NotContains(t, out, "hidden below warn")
	assert.Contains(t, out, `"logger":"policy"`)
	assert.Contains(t, out, "policy p.yaml rejected")
}

func TestInitialize_DisabledCategory(t *testing.T) {
	reset(t)
	path := filepath.Join(t.TempDir(), "archguard.log")
	require.NoError(t, Initialize(Options{
		Level:      "debug",
		File:       path,
		Categories: map[string]bool{"watch": false},
	}))

	assert.False(t, IsCategoryEnabled(CategoryWatch))
	assert.True(t, IsCategoryEnabled(CategoryStore))

	Watch("should not appear")
	Store("should appear")
	require.NoError(t, Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.False(t, strings.Contains(string(data), "should not appear"))
	assert.True(t, strings.Contains(string(data), "should appear"))
}

func TestInitialize_ReconfigureClosesPreviousFile(t *testing.T) {
	reset(t)
	dir := t.TempDir()
	first := filepath.Join(dir, "first.log")
	second := filepath.Join(dir, "second.log")
	require.NoError(t, Initialize(Options{Level: "info", File: first}))

	closed := 0
	mu.Lock()
	prev := closeFile
	closeFile = func() error {
		closed++
		return prev()
	}
	mu.Unlock()

	require.NoError(t, Initialize(Options{Level: "info", File: second}))
	assert.Equal(t, 1, closed)

	Review("after reconfigure")
	require.NoError(t, Sync())
	assert.Equal(t, 1, closed, "Sync closes only the current file")

	data, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.Contains(t, string(data), "after reconfigure")
	data, err = os.ReadFile(first)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "after reconfigure")
}

func TestInitialize_InvalidLevel(t *testing.T) {
	reset(t)
	err := Initialize(Options{Level: "loud"})
	assert.Error(t, err)
}

func TestGet_Concurrent(t *testing.T) {
	reset(t)
	core, logs := observer.New(zapcore.InfoLevel)
	SetRoot(zap.New(core))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			Get(CategoryReview).Info("worker %d", n)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 20, logs.Len())
}
