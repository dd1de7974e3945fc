// Package task defines the task model and the on-disk codec for task files.
package task

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Task represents a single entry in the task list.
type Task struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Completed bool       `json:"completed"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// IsZero returns true if the task is empty (has no ID).
func (t *Task) IsZero() bool {
	return t.ID == ""
}

// Draft holds the fields accepted when creating a task.
type Draft struct {
	Title     string
	Completed bool
}

// Patch holds the optional fields accepted when updating a task.
// A nil field is left untouched.
type Patch struct {
	Title     *string `json:"title,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
}

// Empty reports whether the patch carries no fields.
func (p Patch) Empty() bool {
	return p.Title == nil && p.Completed == nil
}

// Apply merges the patch onto t and stamps updatedAt with now.
func (p Patch) Apply(t *Task, now time.Time) {
	if p.Title != nil {
		t.Title = strings.TrimSpace(*p.Title)
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	stamp := now
	t.UpdatedAt = &stamp
}

// New builds a task from a draft. The id and createdAt are derived from now.
func New(d Draft, now time.Time) (Task, error) {
	id, err := NewID(now)
	if err != nil {
		return Task{}, err
	}
	return Task{
		ID:        id,
		Title:     strings.TrimSpace(d.Title),
		Completed: d.Completed,
		CreatedAt: now,
	}, nil
}

// NewID returns a UUIDv7 string. The leading 48 bits of a v7 UUID hold the
// Unix millisecond timestamp, so ids sort by creation instant.
func NewID(now time.Time) (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate task id: %w", err)
	}
	// uuid.NewV7 reads the wall clock itself; overwrite the timestamp so
	// callers with an injected clock get ids that match createdAt.
	ms := uint64(now.UnixMilli())
	id[0] = byte(ms >> 40)
	id[1] = byte(ms >> 32)
	id[2] = byte(ms >> 24)
	id[3] = byte(ms >> 16)
	id[4] = byte(ms >> 8)
	id[5] = byte(ms)
	return id.String(), nil
}

// Decode parses a task file. An empty or whitespace-only document is an
// empty collection.
func Decode(data []byte) ([]Task, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return []Task{}, nil
	}
	var tasks []Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, fmt.Errorf("parse tasks file: %w", err)
	}
	if tasks == nil {
		tasks = []Task{}
	}
	return tasks, nil
}

// Encode renders tasks with 2-space indentation and a trailing newline.
func Encode(tasks []Task) ([]byte, error) {
	if tasks == nil {
		tasks = []Task{}
	}
	data, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal tasks file: %w", err)
	}
	return append(data, '\n'), nil
}

// Index returns the position of the task with the given id, or -1.
func Index(tasks []Task, id string) int {
	for i := range tasks {
		if tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// Find returns a pointer to the task with the given id, or nil if not found.
func Find(tasks []Task, id string) *Task {
	if i := Index(tasks, id); i >= 0 {
		return &tasks[i]
	}
	return nil
}
