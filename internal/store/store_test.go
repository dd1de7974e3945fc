package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/nibzard/tasks-go/internal/task"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fixedClock returns a clock that advances one second per call.
func fixedClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	now := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Second)
		return now
	}
}

func newTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tasks.json")
	opts = append([]Option{WithClock(fixedClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))}, opts...)
	return New(path, opts...)
}

func TestMissingFileIsEmpty(t *testing.T) {
	s := newTestStore(t)

	tasks, err := s.All(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, tasks)
	assert.Empty(t, tasks)

	_, err = os.Stat(s.Path())
	assert.True(t, errors.Is(err, os.ErrNotExist), "reading must not create the file")
	assert.NoError(t, s.Check())
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	created, err := s.Create(ctx, task.Draft{Title: "  Buy milk "})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Buy milk", created.Title)
	assert.False(t, created.Completed)
	assert.False(t, created.CreatedAt.IsZero())
	assert.Nil(t, created.UpdatedAt)

	tasks, err := s.All(ctx)
	require.NoError(t, err)
	if diff := cmp.Diff([]task.Task{created}, tasks); diff != "" {
		t.Errorf("listing mismatch (-want +got):\n%s", diff)
	}

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.NoError(t, task.Validate(data))
}

func TestCreatePreservesInsertionOrder(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	var want []string
	for i := 0; i < 5; i++ {
		created, err := s.Create(ctx, task.Draft{Title: fmt.Sprintf("task %d", i)})
		require.NoError(t, err)
		want = append(want, created.ID)
	}

	tasks, err := s.All(ctx)
	require.NoError(t, err)
	var got []string
	for _, tk := range tasks {
		got = append(got, tk.ID)
	}
	assert.Equal(t, want, got)
}

func TestGet(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	created, err := s.Create(ctx, task.Draft{Title: "Find me"})
	require.NoError(t, err)

	got, err := s.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	_, err = s.Get(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	created, err := s.Create(ctx, task.Draft{Title: "Original"})
	require.NoError(t, err)

	done := true
	updated, err := s.Update(ctx, created.ID, task.Patch{Completed: &done})
	require.NoError(t, err)
	assert.Equal(t, "Original", updated.Title, "title must survive a completed-only update")
	assert.True(t, updated.Completed)
	require.NotNil(t, updated.UpdatedAt)
	assert.True(t, updated.UpdatedAt.After(created.CreatedAt))
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)

	reloaded, err := s.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, updated, reloaded)
}

func TestUpdateMissingLeavesFileUnchanged(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.Create(ctx, task.Draft{Title: "Keep"})
	require.NoError(t, err)
	before, err := os.ReadFile(s.Path())
	require.NoError(t, err)

	title := "x"
	_, err = s.Update(ctx, "missing", task.Patch{Title: &title})
	assert.ErrorIs(t, err, ErrNotFound)

	after, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	a, err := s.Create(ctx, task.Draft{Title: "A"})
	require.NoError(t, err)
	b, err := s.Create(ctx, task.Draft{Title: "B"})
	require.NoError(t, err)

	removed, err := s.Delete(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a, removed)

	tasks, err := s.All(ctx)
	require.NoError(t, err)
	if diff := cmp.Diff([]task.Task{b}, tasks); diff != "" {
		t.Errorf("after delete (-want +got):\n%s", diff)
	}

	_, err = s.Delete(ctx, a.ID)
	assert.ErrorIs(t, err, ErrNotFound, "second delete must report not found")
}

func TestRoundTripThroughFile(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	var want []task.Task
	for i := 0; i < 10; i++ {
		created, err := s.Create(ctx, task.Draft{Title: fmt.Sprintf("t%d", i), Completed: i%2 == 0})
		require.NoError(t, err)
		want = append(want, created)
	}

	// A second store over the same file sees exactly the same collection.
	other := New(s.Path())
	got, err := other.All(ctx)
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestConcurrentCreates(t *testing.T) {
	ctx := context.Background()
	s := New(filepath.Join(t.TempDir(), "tasks.json"))

	const n = 50
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := s.Create(ctx, task.Draft{Title: fmt.Sprintf("task %d", i)}); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("Create failed: %v", err)
	}

	tasks, err := s.All(ctx)
	require.NoError(t, err)
	assert.Len(t, tasks, n)

	seen := make(map[string]bool)
	for _, tk := range tasks {
		assert.False(t, seen[tk.ID], "duplicate id %s", tk.ID)
		seen[tk.ID] = true
	}
}

func TestCorruptFile(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not json", "{{{"},
		{"wrong shape", `{"tasks": []}`},
		{"missing title", `[{"id":"1","completed":false,"createdAt":"2024-01-01T00:00:00Z"}]`},
		{"id with quotes", `[{"id":"x\" onmouseover=\"alert(1)","title":"a","completed":false,"createdAt":"2024-01-01T00:00:00Z"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			s := newTestStore(t)
			require.NoError(t, os.WriteFile(s.Path(), []byte(tt.content), 0644))

			_, err := s.All(ctx)
			assert.ErrorIs(t, err, ErrCorrupt)

			_, err = s.Create(ctx, task.Draft{Title: "new"})
			assert.ErrorIs(t, err, ErrCorrupt)

			data, err := os.ReadFile(s.Path())
			require.NoError(t, err)
			assert.Equal(t, tt.content, string(data), "corrupt file must not be overwritten")

			assert.ErrorIs(t, s.Check(), ErrCorrupt)
		})
	}
}

func TestLenientRead(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, WithLenientRead(true))
	require.NoError(t, os.WriteFile(s.Path(), []byte("not json"), 0644))

	tasks, err := s.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, tasks)

	// Check still reports the damage.
	assert.ErrorIs(t, s.Check(), ErrCorrupt)

	created, err := s.Create(ctx, task.Draft{Title: "fresh"})
	require.NoError(t, err)
	tasks, err = s.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, []task.Task{created}, tasks)
}

func TestEmptyFileIsEmptyCollection(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, os.WriteFile(s.Path(), []byte("\n"), 0644))

	tasks, err := s.All(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestWriteLeavesNoTempFiles(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	for i := 0; i < 3; i++ {
		_, err := s.Create(ctx, task.Draft{Title: "x"})
		require.NoError(t, err)
	}

	entries, err := os.ReadDir(filepath.Dir(s.Path()))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "tasks.json", entries[0].Name())
}

func TestWriteCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "data", "tasks.json")
	s := New(path)

	_, err := s.Create(context.Background(), task.Draft{Title: "x"})
	require.NoError(t, err)
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestCancelledContext(t *testing.T) {
	s := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Create(ctx, task.Draft{Title: "x"})
	assert.ErrorIs(t, err, context.Canceled)
	_, err = os.Stat(s.Path())
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
