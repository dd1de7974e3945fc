package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nibzard/tasks-go/internal/task"
)

func startWatcher(t *testing.T, s *Store) <-chan Change {
	t.Helper()
	changes := make(chan Change, 16)
	w, err := s.NewWatcher(func(c Change) { changes <- c })
	require.NoError(t, err)
	w.debounce = 50 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return changes
}

func waitChange(t *testing.T, changes <-chan Change) Change {
	t.Helper()
	select {
	case c := <-changes:
		return c
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for file change")
		return Change{}
	}
}

func TestWatcherIgnoresOwnWritesAndReportsExternal(t *testing.T) {
	ctx := context.Background()
	s := New(filepath.Join(t.TempDir(), "tasks.json"))
	changes := startWatcher(t, s)

	_, err := s.Create(ctx, task.Draft{Title: "ours"})
	require.NoError(t, err)

	external := `[
  {"id":"a","title":"one","completed":false,"createdAt":"2024-01-01T00:00:00Z"},
  {"id":"b","title":"two","completed":true,"createdAt":"2024-01-01T00:00:00Z"}
]`
	require.NoError(t, os.WriteFile(s.Path(), []byte(external), 0644))

	c := waitChange(t, changes)
	assert.Equal(t, s.Path(), c.Path)
	assert.False(t, c.Removed)
	assert.NoError(t, c.Err)
	assert.Equal(t, 2, c.Count, "the first reported change must be the external edit")

	tasks, err := s.All(ctx)
	require.NoError(t, err)
	assert.Len(t, tasks, 2)
}

func TestWatcherReportsUnreadableEdit(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "tasks.json"))
	changes := startWatcher(t, s)

	require.NoError(t, os.WriteFile(s.Path(), []byte("oops"), 0644))

	c := waitChange(t, changes)
	assert.Error(t, c.Err)
}

func TestWatcherReportsRemoval(t *testing.T) {
	ctx := context.Background()
	s := New(filepath.Join(t.TempDir(), "tasks.json"))
	_, err := s.Create(ctx, task.Draft{Title: "x"})
	require.NoError(t, err)
	changes := startWatcher(t, s)

	require.NoError(t, os.Remove(s.Path()))

	c := waitChange(t, changes)
	assert.True(t, c.Removed)
}
