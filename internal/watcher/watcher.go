// Package watcher follows library roots with fsnotify and reports video files
// whose names do not follow the naming grammar.
package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/Nomadcxx/jellyname/internal/logging"
	"github.com/Nomadcxx/jellyname/internal/naming"
)

type EventType string

const (
	EventCreate EventType = "create"
	EventMove   EventType = "move"
	EventDelete EventType = "delete"
)

type FileEvent struct {
	Type EventType
	Path string
}

// Handler receives video file events.
type Handler interface {
	HandleFileEvent(ctx context.Context, event FileEvent) error
}

type Watcher struct {
	fsWatcher *fsnotify.Watcher
	handler   Handler
	recursive bool
	logger    *logging.Logger
}

type Option func(*Watcher)

func WithRecursive(recursive bool) Option {
	return func(w *Watcher) {
		w.recursive = recursive
	}
}

func WithLogger(l *logging.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

func NewWatcher(handler Handler, opts ...Option) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("unable to create watcher: %w", err)
	}

	w := &Watcher{
		fsWatcher: fsWatcher,
		handler:   handler,
		recursive: true,
		logger:    logging.Nop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Watch adds the roots, and with recursion every non-hidden folder below them.
func (w *Watcher) Watch(roots []string) error {
	for _, root := range roots {
		if !w.recursive {
			if err := w.add(root); err != nil {
				return err
			}
			continue
		}
		if err := w.addRecursive(root); err != nil {
			return err
		}
	}
	return nil
}

func (w *Watcher) add(path string) error {
	if err := w.fsWatcher.Add(path); err != nil {
		return fmt.Errorf("unable to watch %s: %w", path, err)
	}
	w.logger.Debug("watcher", "Watching", logging.F("path", path))
	return nil
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return fmt.Errorf("unable to watch %s: %w", root, err)
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return w.add(path)
	})
}

// addFolder watches a folder that appeared below a root and reports the
// video files it already holds. A folder moved in produces a single create
// event, so its files would otherwise never be seen.
func (w *Watcher) addFolder(ctx context.Context, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return fmt.Errorf("unable to watch %s: %w", dir, err)
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return w.add(path)
		}
		if !naming.IsVideoFile(path) {
			return nil
		}
		w.logger.Debug("watcher", "Event", logging.F("type", EventCreate), logging.F("file", d.Name()))
		if err := w.handler.HandleFileEvent(ctx, FileEvent{Type: EventCreate, Path: path}); err != nil {
			w.logger.Error("watcher", "Error handling event", err, logging.F("path", path))
		}
		return nil
	})
}

// Start dispatches events until ctx is done.
func (w *Watcher) Start(ctx context.Context) error {
	w.logger.Info("watcher", "Watching for new files", logging.F("folders", len(w.fsWatcher.WatchList())))

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}

			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if w.recursive && !strings.HasPrefix(filepath.Base(event.Name), ".") {
						if err := w.addFolder(ctx, event.Name); err != nil {
							w.logger.Warn("watcher", "Unable to watch new folder", logging.F("path", event.Name), logging.F("error", err.Error()))
						}
					}
					continue
				}
			}

			if err := w.handleEvent(ctx, event); err != nil {
				w.logger.Error("watcher", "Error handling event", err, logging.F("path", event.Name))
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error("watcher", "Watcher error", err)
		}
	}
}

func (w *Watcher) Close() error {
	return w.fsWatcher.Close()
}

func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) error {
	if !naming.IsVideoFile(event.Name) {
		return nil
	}

	var eventType EventType
	switch {
	case event.Has(fsnotify.Create):
		eventType = EventCreate
	case event.Has(fsnotify.Rename):
		eventType = EventMove
	case event.Has(fsnotify.Remove):
		eventType = EventDelete
	default:
		// writes and chmods repeat while a file is copied in
		return nil
	}

	w.logger.Debug("watcher", "Event", logging.F("type", eventType), logging.F("file", filepath.Base(event.Name)))
	return w.handler.HandleFileEvent(ctx, FileEvent{Type: eventType, Path: event.Name})
}
