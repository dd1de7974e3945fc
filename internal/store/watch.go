package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits after the last event
// before it looks at the file.
const DefaultDebounce = 250 * time.Millisecond

// Change describes an edit to the tasks file made by another process.
type Change struct {
	Path    string
	Removed bool
	Count   int   // tasks in the file after the change
	Err     error // set when the new content is unusable
}

// Watcher reports external edits to a Store's file.
type Watcher struct {
	store    *Store
	watcher  *fsnotify.Watcher
	debounce time.Duration
	notify   func(Change)
}

// NewWatcher starts watching the directory that holds the tasks file.
// notify may be nil; changes are always logged. Events are delivered once
// Run is called.
func (s *Store) NewWatcher(notify func(Change)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("create tasks dir: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	return &Watcher{
		store:    s,
		watcher:  fw,
		debounce: DefaultDebounce,
		notify:   notify,
	}, nil
}

// Watch watches the tasks file until ctx is done.
func (s *Store) Watch(ctx context.Context, notify func(Change)) error {
	w, err := s.NewWatcher(notify)
	if err != nil {
		return err
	}
	return w.Run(ctx)
}

// Run processes file events until ctx is done, then releases the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() {
		if err := w.watcher.Close(); err != nil {
			w.store.logger.Error("closing file watcher", "err", err)
		}
	}()

	logger := w.store.logger
	logger.Debug("watching tasks file", "path", w.store.path)

	ticker := time.NewTicker(w.debounce / 2)
	defer ticker.Stop()

	var pending time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.store.path {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			pending = time.Now()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("file watcher", "err", err)

		case <-ticker.C:
			if pending.IsZero() || time.Since(pending) < w.debounce {
				continue
			}
			pending = time.Time{}
			w.inspect()
		}
	}
}

// inspect compares the file with the last known content and reports a
// difference. It holds the store lock so a write by this process cannot
// land between the read and the comparison.
func (w *Watcher) inspect() {
	if c, ok := w.diff(); ok {
		w.emit(c)
	}
}

func (w *Watcher) diff() (Change, bool) {
	s := w.store
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		if s.known == nil {
			return Change{}, false
		}
		s.known = nil
		s.logger.Warn("tasks file removed externally", "path", s.path)
		return Change{Path: s.path, Removed: true}, true
	}
	if err != nil {
		s.logger.Error("read tasks file", "path", s.path, "err", err)
		return Change{}, false
	}
	if bytes.Equal(data, s.known) {
		return Change{}, false
	}
	s.known = data

	tasks, err := parse(data)
	if err != nil {
		s.logger.Warn("tasks file changed externally and is unreadable", "path", s.path, "err", err)
		return Change{Path: s.path, Err: err}, true
	}
	s.logger.Info("tasks file changed externally", "path", s.path, "count", len(tasks))
	return Change{Path: s.path, Count: len(tasks)}, true
}

func (w *Watcher) emit(c Change) {
	if w.notify != nil {
		w.notify(c)
	}
}
