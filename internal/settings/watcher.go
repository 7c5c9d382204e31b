package settings

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"resumefill/internal/errors"
)

// Watcher watches the settings file for external edits and triggers a
// reload callback. Editors and the store itself replace the file via
// rename, so the watcher tracks the parent directory rather than the
// file inode.
type Watcher struct {
	mu sync.Mutex

	path          string
	fsWatcher     *fsnotify.Watcher
	debounceDelay time.Duration
	debounceTimer *time.Timer

	stopChan chan struct{}

	reloadCallback func()
	logger         *errors.Logger

	running bool
}

// NewWatcher creates a watcher for the given settings file.
func NewWatcher(path string, debounceDelay time.Duration, reloadCallback func(), logger *errors.Logger) *Watcher {
	if debounceDelay == 0 {
		debounceDelay = time.Second
	}
	return &Watcher{
		path:           path,
		debounceDelay:  debounceDelay,
		stopChan:       make(chan struct{}),
		reloadCallback: reloadCallback,
		logger:         logger,
	}
}

// Start begins watching the settings file's directory for changes.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return fmt.Errorf("settings watcher is already running")
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fsWatcher.Add(filepath.Dir(w.path)); err != nil {
		if closeErr := fsWatcher.Close(); closeErr != nil && w.logger != nil {
			w.logger.LogError(closeErr, "Failed to close file watcher during cleanup")
		}
		return fmt.Errorf("failed to watch settings directory: %w", err)
	}

	w.fsWatcher = fsWatcher
	w.running = true
	go w.watchLoop()

	if w.logger != nil {
		w.logger.Info("Settings file watcher started", "path", w.path)
	}
	return nil
}

// Stop halts the watcher. It is safe to call on a watcher that never
// started.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}
	close(w.stopChan)
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	if err := w.fsWatcher.Close(); err != nil && w.logger != nil {
		w.logger.LogError(err, "Failed to close settings file watcher")
	}
	w.running = false
}

func (w *Watcher) watchLoop() {
	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			if w.logger != nil {
				w.logger.Warn("Settings watcher error", "error", err)
			}
		case <-w.stopChan:
			return
		}
	}
}

// handleEvent debounces bursts of events for the settings file into a
// single reload. Events for other files in the directory are ignored.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != filepath.Clean(w.path) {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.debounceDelay, func() {
		if w.logger != nil {
			w.logger.Info("Settings file changed, reloading", "path", w.path)
		}
		w.reloadCallback()
	})
}
