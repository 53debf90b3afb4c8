// Package watch re-validates source files when they change on disk.
package watch

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"archguard/internal/finding"
	"archguard/internal/logging"
	"archguard/internal/validation"
)

// Handler receives the findings for a file after each settled change. name
// is the slash-separated path relative to the watched root.
type Handler func(ctx context.Context, name string, findings []finding.Finding)

// Watcher watches a directory tree and validates changed source files once
// their events have settled past the debounce window.
type Watcher struct {
	mu          sync.RWMutex
	watcher     *fsnotify.Watcher
	engine      *validation.Engine
	handler     Handler
	root        string
	extensions  map[string]bool
	maxFileSize int64
	debounceMap map[string]time.Time
	debounceDur time.Duration
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool
	closeOnce   sync.Once

	stats Stats
}

// Stats tracks watcher activity.
type Stats struct {
	FilesCreated  int
	FilesModified int
	FilesDeleted  int
	Validations   int
	Findings      int
	Errors        int
	LastEventTime time.Time
	LastEventPath string
	LastEventType string
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets how long a file must stay quiet before it is validated.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounceDur = d
		}
	}
}

// WithExtensions restricts validation to files with these extensions
// (".java", "go", ...). An empty list accepts every file.
func WithExtensions(exts []string) Option {
	return func(w *Watcher) {
		w.extensions = make(map[string]bool, len(exts))
		for _, ext := range exts {
			ext = strings.ToLower(strings.TrimSpace(ext))
			if ext == "" {
				continue
			}
			if !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}
			w.extensions[ext] = true
		}
	}
}

// WithMaxFileSize skips files larger than limit bytes. Zero disables the
// check.
func WithMaxFileSize(limit int64) Option {
	return func(w *Watcher) {
		w.maxFileSize = limit
	}
}

// New creates a Watcher for root. Nothing is watched until Start.
func New(root string, engine *validation.Engine, handler Handler, opts ...Option) (*Watcher, error) {
	if engine == nil || handler == nil {
		return nil, errors.New("watch: engine and handler are required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher:     fw,
		engine:      engine,
		handler:     handler,
		root:        abs,
		debounceMap: make(map[string]time.Time),
		debounceDur: 300 * time.Millisecond,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Start adds every directory under the root and begins the event loop.
// It is non-blocking and a no-op when already running.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := w.addTree(w.root); err != nil {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		return err
	}
	logging.Watch("watching %s (%d directories, debounce %s)", w.root, len(w.watcher.WatchList()), w.debounceDur)

	go w.run(ctx)
	return nil
}

// Stop stops the event loop, waits for it to exit and releases the
// underlying watcher. It is safe to call more than once and without Start.
func (w *Watcher) Stop() {
	w.mu.Lock()
	wasRunning := w.running
	w.running = false
	w.mu.Unlock()

	if wasRunning {
		close(w.stopCh)
		<-w.doneCh
	}

	w.closeOnce.Do(func() {
		if err := w.watcher.Close(); err != nil {
			logging.Get(logging.CategoryWatch).Error("error closing watcher: %v", err)
		}
		logging.Watch("watcher stopped")
	})
}

// Done is closed when the event loop exits, either through Stop or because
// the context passed to Start was cancelled.
func (w *Watcher) Done() <-chan struct{} {
	return w.doneCh
}

// addTree watches dir and every non-hidden directory below it.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && skipDir(d.Name()) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return err
		}
		logging.WatchDebug("watching directory %s", path)
		return nil
	})
}

func skipDir(name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	switch name {
	case "node_modules", "vendor", "target", "build", "dist":
		return true
	}
	return false
}

// run is the main event loop.
func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	debounceTicker := time.NewTicker(w.tick())
	defer debounceTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.WatchDebug("context cancelled")
			return

		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.Get(logging.CategoryWatch).Error("watcher error: %v", err)
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()

		case <-debounceTicker.C:
			w.processDebouncedEvents(ctx)
		}
	}
}

func (w *Watcher) tick() time.Duration {
	tick := w.debounceDur / 3
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}
	if tick > 100*time.Millisecond {
		tick = 100 * time.Millisecond
	}
	return tick
}

// handleEvent records a filesystem event for debounced processing.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	var eventType string
	switch {
	case event.Op&fsnotify.Create != 0:
		eventType = "create"
	case event.Op&fsnotify.Write != 0:
		eventType = "modify"
	case event.Op&fsnotify.Remove != 0:
		eventType = "delete"
	case event.Op&fsnotify.Rename != 0:
		eventType = "rename"
	default:
		return
	}

	if eventType == "create" {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if !skipDir(info.Name()) {
				if err := w.addTree(event.Name); err != nil {
					logging.Get(logging.CategoryWatch).Warn("cannot watch new directory %s: %v", event.Name, err)
				}
			}
			return
		}
	}
	if !w.accepts(event.Name) {
		return
	}

	logging.WatchDebug("%s event for %s", eventType, event.Name)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.stats.LastEventTime = time.Now()
	w.stats.LastEventPath = event.Name
	w.stats.LastEventType = eventType
	switch eventType {
	case "create":
		w.stats.FilesCreated++
	case "modify":
		w.stats.FilesModified++
	case "delete", "rename":
		w.stats.FilesDeleted++
	}
	w.debounceMap[event.Name] = time.Now()
}

func (w *Watcher) accepts(path string) bool {
	if len(w.extensions) == 0 {
		return true
	}
	return w.extensions[strings.ToLower(filepath.Ext(path))]
}

// processDebouncedEvents validates files whose events have settled.
func (w *Watcher) processDebouncedEvents(ctx context.Context) {
	w.mu.Lock()
	now := time.Now()
	var settled []string
	for path, at := range w.debounceMap {
		if now.Sub(at) >= w.debounceDur {
			settled = append(settled, path)
			delete(w.debounceMap, path)
		}
	}
	w.mu.Unlock()

	sort.Strings(settled)
	for _, path := range settled {
		if ctx.Err() != nil {
			return
		}
		w.validate(ctx, path)
	}
}

// validate reads one file and hands its findings to the handler. Deleted
// files are skipped.
func (w *Watcher) validate(ctx context.Context, path string) {
	info, err := os.Stat(path)
	if err != nil {
		if !os.IsNotExist(err) {
			w.recordError("stat %s: %v", path, err)
		}
		return
	}
	if info.IsDir() {
		return
	}
	if w.maxFileSize > 0 && info.Size() > w.maxFileSize {
		logging.WatchDebug("skipping %s: %d bytes exceeds limit", path, info.Size())
		return
	}
	content, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			w.recordError("read %s: %v", path, err)
		}
		return
	}

	name := w.relName(path)
	findings := w.engine.Validate(name, string(content))

	w.mu.Lock()
	w.stats.Validations++
	w.stats.Findings += len(findings)
	w.mu.Unlock()

	logging.Watch("validated %s: %d findings", name, len(findings))
	w.handler(ctx, name, findings)
}

func (w *Watcher) recordError(format string, args ...interface{}) {
	logging.Get(logging.CategoryWatch).Error(format, args...)
	w.mu.Lock()
	w.stats.Errors++
	w.mu.Unlock()
}

func (w *Watcher) relName(path string) string {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// TriggerValidation validates every accepted file under the root once, in
// lexical order. Useful for an initial pass before changes arrive.
func (w *Watcher) TriggerValidation(ctx context.Context) error {
	logging.WatchDebug("manual validation triggered")
	return filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if path != w.root && skipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if w.accepts(path) {
			w.validate(ctx, path)
		}
		return nil
	})
}

// GetStats returns the current watcher statistics.
func (w *Watcher) GetStats() Stats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.stats
}

// IsWatching reports whether the event loop is running.
func (w *Watcher) IsWatching() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}

// GetWatchedDirs returns the directories being watched.
func (w *Watcher) GetWatchedDirs() []string {
	return w.watcher.WatchList()
}
