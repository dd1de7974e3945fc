// Package store persists the task collection in a single JSON file.
//
// Every operation reads the whole file, works on the decoded collection in
// memory and, for mutations, rewrites the whole file. A Store serialises all
// of its operations with one mutex, so read-modify-write cycles issued from
// the same process never interleave. Nothing coordinates separate processes
// writing the same file; the last write wins.
package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nibzard/tasks-go/internal/task"
)

var (
	// ErrNotFound is returned when no task has the requested id.
	ErrNotFound = errors.New("task not found")
	// ErrCorrupt is returned when the tasks file exists but cannot be used.
	ErrCorrupt = errors.New("tasks file is corrupt")
)

// Store owns the tasks file.
type Store struct {
	mu      sync.Mutex
	path    string
	lenient bool
	logger  *log.Logger
	now     func() time.Time

	// known is the content this process last wrote or reported, used by
	// the watcher to tell external edits from our own.
	known []byte
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for warnings and watcher events.
func WithLogger(logger *log.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithLenientRead makes an unreadable file behave as an empty collection
// instead of failing with ErrCorrupt.
func WithLenientRead(lenient bool) Option {
	return func(s *Store) { s.lenient = lenient }
}

// WithClock overrides the time source used for createdAt and updatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// New returns a Store backed by the file at path. The file is not touched
// until the first operation.
func New(path string, opts ...Option) *Store {
	s := &Store{
		path:   filepath.Clean(path),
		logger: log.New(io.Discard),
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the tasks file location.
func (s *Store) Path() string {
	return s.path
}

// All returns every task in insertion order.
func (s *Store) All(ctx context.Context) ([]task.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load()
}

// Get returns the task with the given id.
func (s *Store) Get(ctx context.Context, id string) (task.Task, error) {
	if err := ctx.Err(); err != nil {
		return task.Task{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.load()
	if err != nil {
		return task.Task{}, err
	}
	t := task.Find(tasks, id)
	if t == nil {
		return task.Task{}, ErrNotFound
	}
	return *t, nil
}

// Create appends a new task built from d and persists the collection.
func (s *Store) Create(ctx context.Context, d task.Draft) (task.Task, error) {
	if err := ctx.Err(); err != nil {
		return task.Task{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.load()
	if err != nil {
		return task.Task{}, err
	}
	created, err := task.New(d, s.now())
	if err != nil {
		return task.Task{}, err
	}
	tasks = append(tasks, created)
	if err := s.save(tasks); err != nil {
		return task.Task{}, err
	}
	return created, nil
}

// Update merges p onto the task with the given id, stamps updatedAt and
// persists the collection.
func (s *Store) Update(ctx context.Context, id string, p task.Patch) (task.Task, error) {
	if err := ctx.Err(); err != nil {
		return task.Task{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.load()
	if err != nil {
		return task.Task{}, err
	}
	i := task.Index(tasks, id)
	if i < 0 {
		return task.Task{}, ErrNotFound
	}
	p.Apply(&tasks[i], s.now())
	if err := s.save(tasks); err != nil {
		return task.Task{}, err
	}
	return tasks[i], nil
}

// Delete removes the task with the given id and returns it as it was
// before removal.
func (s *Store) Delete(ctx context.Context, id string) (task.Task, error) {
	if err := ctx.Err(); err != nil {
		return task.Task{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.load()
	if err != nil {
		return task.Task{}, err
	}
	i := task.Index(tasks, id)
	if i < 0 {
		return task.Task{}, ErrNotFound
	}
	removed := tasks[i]
	tasks = append(tasks[:i], tasks[i+1:]...)
	if err := s.save(tasks); err != nil {
		return task.Task{}, err
	}
	return removed, nil
}

// Check reports whether the tasks file can be used. A missing file is
// fine. Unlike the other operations it ignores lenient mode, so callers
// can tell an empty collection from a damaged one.
func (s *Store) Check() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read tasks file: %w", err)
	}
	if _, err := parse(data); err != nil {
		return fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	return nil
}

// load reads and decodes the file. Callers hold s.mu.
func (s *Store) load() ([]task.Task, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return []task.Task{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read tasks file: %w", err)
	}

	tasks, err := parse(data)
	if err != nil {
		if s.lenient {
			s.logger.Warn("ignoring unreadable tasks file", "path", s.path, "err", err)
			return []task.Task{}, nil
		}
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	return tasks, nil
}

// parse validates a non-empty document before decoding it.
func parse(data []byte) ([]task.Task, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return []task.Task{}, nil
	}
	if err := task.Validate(data); err != nil {
		return nil, err
	}
	return task.Decode(data)
}

// save writes the collection to a temporary file next to the target and
// renames it into place. Callers hold s.mu.
func (s *Store) save(tasks []task.Task) error {
	data, err := task.Encode(tasks)
	if err != nil {
		return err
	}
	if err := writeFileAtomic(s.path, data); err != nil {
		return fmt.Errorf("write tasks file: %w", err)
	}
	s.known = data
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}

	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return err
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return err
	}
	if err := tmp.Chmod(0644); err != nil {
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}
