package watcher

import (
	"context"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const DEBOUNCE_SECS = 5

// Watcher monitors a music directory tree for new files and emits them in debounced batches.
type Watcher struct {
	watcher       *fsnotify.Watcher
	watchPath     string
	supported     func(path string) bool
	debounce      time.Duration
	debounceTimer *time.Timer
	debounceMutex sync.Mutex
	pending       map[string]struct{}
	running       bool
	stopChan      chan struct{}
	eventChan     chan<- FileEvent
}

// NewWatcher creates a new file system watcher. supported filters which files end up in a batch.
func NewWatcher(eventChan chan<- FileEvent, supported func(path string) bool) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		watcher:   watcher,
		supported: supported,
		debounce:  time.Duration(DEBOUNCE_SECS) * time.Second,
		pending:   make(map[string]struct{}),
		eventChan: eventChan,
		stopChan:  make(chan struct{}),
	}, nil
}

// SetDebounce overrides the quiet period before a batch is emitted.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.debounceMutex.Lock()
	defer w.debounceMutex.Unlock()
	w.debounce = d
}

// Start begins watching watchPath and every directory below it.
func (w *Watcher) Start(ctx context.Context, watchPath string) error {
	w.watchPath = watchPath
	slog.Info("Starting file watcher", "path", watchPath)

	if err := w.addTree(watchPath, false); err != nil {
		return err
	}

	w.running = true
	go w.watchLoop(ctx)

	slog.Info("File watcher started successfully")
	return nil
}

// Stop stops the file watcher and discards any pending batch.
func (w *Watcher) Stop() {
	if !w.running {
		return
	}

	slog.Info("Stopping file watcher")
	w.running = false
	close(w.stopChan)

	w.debounceMutex.Lock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
		w.debounceTimer = nil
	}
	w.debounceMutex.Unlock()

	w.watcher.Close()
}

// addTree watches dir and its subdirectories. With enqueue set, supported files
// already present are queued, since they may have landed before the watch was added.
func (w *Watcher) addTree(dir string, enqueue bool) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			slog.Warn("Skipping unreadable path", "path", path, "error", err)
			return nil
		}
		if d.IsDir() {
			if err := w.watcher.Add(path); err != nil {
				slog.Warn("Failed to watch directory", "path", path, "error", err)
			}
			return nil
		}
		if enqueue && d.Type().IsRegular() && w.supported(path) {
			w.enqueue(path)
		}
		return nil
	})
}

// watchLoop processes file system events
func (w *Watcher) watchLoop(ctx context.Context) {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("File watcher error", "error", err)

		case <-w.stopChan:
			return

		case <-ctx.Done():
			return
		}
	}
}

// handleEvent processes a single file system event
func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) {
		return
	}

	if isDir(event.Name) {
		if err := w.addTree(event.Name, true); err != nil {
			slog.Warn("Failed to watch new directory", "path", event.Name, "error", err)
		}
		return
	}

	if !w.supported(event.Name) {
		return
	}

	slog.Debug("Detected new supported file", "file", event.Name)
	w.enqueue(event.Name)
}

// enqueue adds path to the pending batch and restarts the debounce timer.
func (w *Watcher) enqueue(path string) {
	w.debounceMutex.Lock()
	defer w.debounceMutex.Unlock()

	w.pending[path] = struct{}{}
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.debounce, w.emitDebounceEvent)
}

// emitDebounceEvent emits the pending batch after the debounce period.
func (w *Watcher) emitDebounceEvent() {
	w.debounceMutex.Lock()
	if len(w.pending) == 0 {
		w.debounceMutex.Unlock()
		return
	}
	paths := make([]string, 0, len(w.pending))
	for path := range w.pending {
		paths = append(paths, path)
	}
	w.pending = make(map[string]struct{})
	w.debounceTimer = nil
	w.debounceMutex.Unlock()

	sort.Strings(paths)
	event := FileEvent{
		Root:      w.watchPath,
		Paths:     paths,
		EventType: FileCreated,
		Timestamp: time.Now(),
	}

	select {
	case w.eventChan <- event:
		slog.Info("Emitted file event after debounce", "path", event.Root, "files", len(paths))
	case <-w.stopChan:
		slog.Warn("Watcher stopped, dropping pending files", "files", len(paths))
	}
}
