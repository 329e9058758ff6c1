package watcher

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/alucardeht/mcp-proxy-devtools/internal/logger"
)

// Handler receives the paths of one debounced batch.
type Handler func(ctx context.Context, paths []string)

// Watcher reports changed files below a root directory. Accept filters file
// paths before they reach the debouncer; directories are always descended
// unless ignored.
type Watcher struct {
	root      string
	config    WatcherConfig
	accept    func(path string) bool
	fsWatcher *fsnotify.Watcher
	debouncer *Debouncer
	events    chan FileEvent
	log       *slog.Logger

	closeOnce sync.Once
}

func New(root string, config WatcherConfig, accept func(path string) bool) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if accept == nil {
		accept = func(string) bool { return true }
	}

	w := &Watcher{
		root:      filepath.Clean(root),
		config:    config,
		accept:    accept,
		fsWatcher: fsWatcher,
		debouncer: NewDebouncer(config.DebounceWindow, config.MaxBatchSize),
		events:    make(chan FileEvent, 64),
		log:       logger.ForComponent("watcher"),
	}

	if err := w.addTree(w.root, nil); err != nil {
		fsWatcher.Close()
		return nil, err
	}

	return w, nil
}

// addTree watches dir and every directory below it. Files found on the way
// are passed to found, so files created together with a new directory are
// not missed.
func (w *Watcher) addTree(dir string, found func(path string)) error {
	if err := w.fsWatcher.Add(dir); err != nil {
		return err
	}
	w.log.Debug("watching directory", "path", dir)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		fullPath := filepath.Join(dir, entry.Name())
		if w.shouldIgnore(fullPath) {
			continue
		}

		if entry.IsDir() {
			if err := w.addTree(fullPath, found); err != nil {
				w.log.Debug("failed to watch directory", "path", fullPath, "error", err)
			}
			continue
		}

		if found != nil && w.accept(fullPath) {
			found(fullPath)
		}
	}

	return nil
}

// Run delivers debounced batches to handle until ctx is done. The watcher is
// closed when Run returns.
func (w *Watcher) Run(ctx context.Context, handle Handler) error {
	defer w.Close()

	w.log.Info("watching for changes", "root", w.root)

	flushed := make(chan struct{})
	go func() {
		defer close(flushed)
		w.debouncer.Run(ctx, w.events, func(batch []FileEvent) {
			paths := Paths(batch)
			w.log.Info("flushing events", "count", len(batch), "paths", len(paths))
			if len(paths) > 0 {
				handle(ctx, paths)
			}
		})
	}()
	defer func() {
		close(w.events)
		<-flushed
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ctx, event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	w.log.Debug("file event", "path", event.Name, "op", event.Op.String())

	if w.shouldIgnore(event.Name) {
		return
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			err := w.addTree(event.Name, func(path string) {
				w.emit(ctx, FileEvent{Path: path, Type: EventCreate, Timestamp: time.Now()})
			})
			if err != nil {
				w.log.Debug("failed to watch new directory", "path", event.Name, "error", err)
			}
			return
		}
	}

	if !w.accept(event.Name) {
		return
	}

	if fileEvent := convertEvent(event); fileEvent != nil {
		w.emit(ctx, *fileEvent)
	}
}

func (w *Watcher) emit(ctx context.Context, event FileEvent) {
	select {
	case w.events <- event:
	case <-ctx.Done():
	}
}

func convertEvent(event fsnotify.Event) *FileEvent {
	var eventType EventType

	switch {
	case event.Has(fsnotify.Create):
		eventType = EventCreate
	case event.Has(fsnotify.Write):
		eventType = EventModify
	case event.Has(fsnotify.Remove):
		eventType = EventDelete
	case event.Has(fsnotify.Rename):
		eventType = EventRename
	default:
		return nil
	}

	return &FileEvent{
		Path:      event.Name,
		Type:      eventType,
		Timestamp: time.Now(),
	}
}

func (w *Watcher) shouldIgnore(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil || rel == "." {
		return false
	}
	rel = filepath.ToSlash(rel)

	if !w.config.WatchHidden && strings.HasPrefix(filepath.Base(path), ".") {
		return true
	}

	for _, pattern := range w.config.IgnorePatterns {
		if match, _ := doublestar.Match(pattern, rel); match {
			return true
		}
	}

	return false
}

func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		err = w.fsWatcher.Close()
	})
	return err
}
