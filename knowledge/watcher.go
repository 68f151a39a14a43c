package knowledge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/poiesic/educaia/core"
)

// DefaultDebounce is how long the watcher waits for writes to settle.
const DefaultDebounce = 500 * time.Millisecond

// ErrWatcherStopped is returned by Run after Stop.
var ErrWatcherStopped = errors.New("watcher stopped")

// ReloadFunc receives the freshly loaded corpus and its status.
// The corpus is empty when the load failed.
type ReloadFunc func(corpus core.Corpus, status string)

// Watcher reloads a knowledge base file whenever it changes on disk.
// The parent directory is watched so editors that replace the file are handled.
type Watcher struct {
	path     string
	onReload ReloadFunc
	debounce time.Duration
	logger   *slog.Logger

	fsWatcher *fsnotify.Watcher
	reloadMu  sync.Mutex // held across Load and onReload
	mu        sync.Mutex
	timer     *time.Timer
	stopCh    chan struct{}
	stopped   bool
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher) error

// WithDebounce sets the settle window. Zero reloads on every event.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) error {
		if d < 0 {
			return fmt.Errorf("debounce cannot be negative: %v", d)
		}
		w.debounce = d
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) WatcherOption {
	return func(w *Watcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		w.logger = logger
		return nil
	}
}

// NewWatcher creates a watcher for path. Nothing is observed until Run.
func NewWatcher(path string, onReload ReloadFunc, opts ...WatcherOption) (*Watcher, error) {
	if onReload == nil {
		return nil, errors.New("reload callback required")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		path:     abs,
		onReload: onReload,
		debounce: DefaultDebounce,
		logger:   slog.Default(),
		stopCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		if err := opt(w); err != nil {
			return nil, err
		}
	}
	w.logger = w.logger.With("component", "kb-watcher", "path", abs)

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	w.fsWatcher = fsw
	return w, nil
}

// Run processes file events until ctx is done or Stop is called.
func (w *Watcher) Run(ctx context.Context) error {
	w.logger.Info("watching knowledge base")
	for {
		select {
		case <-ctx.Done():
			_ = w.Stop()
			return ctx.Err()
		case <-w.stopCh:
			return ErrWatcherStopped
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return ErrWatcherStopped
			}
			w.handle(event)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return ErrWatcherStopped
			}
			w.logger.Warn("file watcher error", "err", err)
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.path {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
		return
	}
	w.logger.Debug("knowledge base changed", "op", event.Op.String())
	w.schedule()
}

// schedule (re)arms the debounce timer.
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.reload)
}

func (w *Watcher) reload() {
	w.reloadMu.Lock()
	defer w.reloadMu.Unlock()

	w.mu.Lock()
	stopped := w.stopped
	w.mu.Unlock()
	if stopped {
		return
	}

	corpus, status := Load(w.path)
	w.logger.Info("knowledge base reloaded", "status", status, "passages", corpus.Len())
	w.onReload(corpus, status)
}

// Stop stops the watcher and releases resources. Safe to call more than once.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return nil
	}
	w.stopped = true
	close(w.stopCh)
	if w.timer != nil {
		w.timer.Stop()
	}
	return w.fsWatcher.Close()
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}
