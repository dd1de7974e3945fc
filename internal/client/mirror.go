package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/nibzard/tasks-go/internal/task"
)

// ToastDuration is how long a toast stays visible.
const ToastDuration = 3 * time.Second

// Toast messages shown by frontends.
const (
	toastCreated     = "Tarea creada exitosamente"
	toastUpdated     = "Tarea actualizada exitosamente"
	toastDeleted     = "Tarea eliminada exitosamente"
	toastCompleted   = "Tarea completada"
	toastReopened    = "Tarea marcada como pendiente"
	toastLoadFailed  = "Error al cargar las tareas"
	toastCreateFail  = "Error al crear la tarea"
	toastUpdateFail  = "Error al actualizar la tarea"
	toastDeleteFail  = "Error al eliminar la tarea"
	toastEmptyTitle  = "El título no puede estar vacío"
	toastNetwork     = "Error de conexión"
	toastOnline      = "Conexión restaurada"
	toastOffline     = "Sin conexión a internet"
	confirmDeleteFmt = "¿Estás seguro de que quieres eliminar \"%s\"?"
)

// ErrEmptyTitle is returned when an edit is submitted without a title.
var ErrEmptyTitle = errors.New("title must not be empty")

// API is the subset of Client used by Mirror.
type API interface {
	List(ctx context.Context) ([]task.Task, error)
	Create(ctx context.Context, title string) (task.Task, error)
	Update(ctx context.Context, id string, p task.Patch) (task.Task, error)
	Delete(ctx context.Context, id string) (task.Task, error)
}

// ToastKind distinguishes success notices from errors.
type ToastKind int

const (
	ToastSuccess ToastKind = iota
	ToastError
)

// Toast is a transient notification.
type Toast struct {
	Message string
	Kind    ToastKind
	Shown   time.Time
}

// Mirror is the local copy of the task collection plus the UI state around
// it. Every mutation is applied only after the server confirms it.
//
// Mirror is safe for concurrent use; requests run without holding the lock.
type Mirror struct {
	api API
	now func() time.Time

	mu            sync.Mutex
	tasks         []task.Task
	filter        task.Filter
	editingID     string
	pendingDelete string
	toast         *Toast
	loading       bool
	online        bool

	// gen counts confirmed local mutations so Load can tell whether the
	// list it fetched is already stale.
	gen uint64
}

// NewMirror returns an empty mirror backed by api.
func NewMirror(api API) *Mirror {
	return &Mirror{
		api:    api,
		now:    time.Now,
		tasks:  []task.Task{},
		filter: task.FilterAll,
		online: true,
	}
}

// SetClock overrides the clock used for toast expiry.
func (m *Mirror) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

// maxLoadAttempts bounds how often Load refetches when local mutations
// keep landing while the list is in flight.
const maxLoadAttempts = 3

// Load replaces the local collection with the server's. A fetch that
// raced a confirmed create, update or delete is discarded and retried;
// after maxLoadAttempts the local copy is kept as is.
func (m *Mirror) Load(ctx context.Context) error {
	for attempt := 1; ; attempt++ {
		m.mu.Lock()
		m.loading = true
		gen := m.gen
		m.mu.Unlock()

		tasks, err := m.api.List(ctx)

		m.mu.Lock()
		if err != nil {
			m.loading = false
			m.showLocked(toastLoadFailed, ToastError)
			m.mu.Unlock()
			return fmt.Errorf("load tasks: %w", err)
		}
		if m.gen == gen || attempt >= maxLoadAttempts {
			if m.gen == gen {
				m.tasks = tasks
			}
			m.loading = false
			m.mu.Unlock()
			return nil
		}
		m.mu.Unlock()
	}
}

// Create adds a task. A blank title is ignored.
func (m *Mirror) Create(ctx context.Context, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil
	}

	created, err := m.api.Create(ctx, title)

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.showLocked(failureMessage(err, toastCreateFail), ToastError)
		return fmt.Errorf("create task: %w", err)
	}
	m.tasks = append(m.tasks, created)
	m.gen++
	m.showLocked(toastCreated, ToastSuccess)
	return nil
}

// Toggle flips the completion state of a task.
func (m *Mirror) Toggle(ctx context.Context, id string) error {
	m.mu.Lock()
	current := task.Find(m.tasks, id)
	if current == nil {
		m.mu.Unlock()
		return nil
	}
	completed := !current.Completed
	m.mu.Unlock()

	updated, err := m.api.Update(ctx, id, task.Patch{Completed: &completed})

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.showLocked(failureMessage(err, toastUpdateFail), ToastError)
		return fmt.Errorf("toggle task: %w", err)
	}
	m.replaceLocked(updated)
	if updated.Completed {
		m.showLocked(toastCompleted, ToastSuccess)
	} else {
		m.showLocked(toastReopened, ToastSuccess)
	}
	return nil
}

// BeginEdit marks a task as being edited and returns a copy of it.
func (m *Mirror) BeginEdit(id string) (task.Task, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := task.Find(m.tasks, id)
	if t == nil {
		return task.Task{}, false
	}
	m.editingID = id
	return *t, true
}

// EditingID returns the id of the task being edited, if any.
func (m *Mirror) EditingID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.editingID
}

// SubmitEdit sends the edited fields for the task selected by BeginEdit.
// The edit stays open when the request fails.
func (m *Mirror) SubmitEdit(ctx context.Context, title string, completed bool) error {
	m.mu.Lock()
	id := m.editingID
	if id == "" {
		m.mu.Unlock()
		return nil
	}
	title = strings.TrimSpace(title)
	if title == "" {
		m.showLocked(toastEmptyTitle, ToastError)
		m.mu.Unlock()
		return ErrEmptyTitle
	}
	m.mu.Unlock()

	updated, err := m.api.Update(ctx, id, task.Patch{Title: &title, Completed: &completed})

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.showLocked(failureMessage(err, toastUpdateFail), ToastError)
		return fmt.Errorf("update task: %w", err)
	}
	m.replaceLocked(updated)
	if m.editingID == id {
		m.editingID = ""
	}
	m.showLocked(toastUpdated, ToastSuccess)
	return nil
}

// CancelEdit closes the edit without sending anything.
func (m *Mirror) CancelEdit() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.editingID = ""
}

// RequestDelete asks for confirmation before deleting id. It returns the
// confirmation prompt.
func (m *Mirror) RequestDelete(id string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := task.Find(m.tasks, id)
	if t == nil {
		return "", false
	}
	m.pendingDelete = id
	return fmt.Sprintf(confirmDeleteFmt, t.Title), true
}

// PendingDelete returns the id awaiting confirmation, if any.
func (m *Mirror) PendingDelete() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pendingDelete
}

// ConfirmDelete deletes the task selected by RequestDelete.
func (m *Mirror) ConfirmDelete(ctx context.Context) error {
	m.mu.Lock()
	id := m.pendingDelete
	m.pendingDelete = ""
	m.mu.Unlock()
	if id == "" {
		return nil
	}

	_, err := m.api.Delete(ctx, id)

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.showLocked(failureMessage(err, toastDeleteFail), ToastError)
		return fmt.Errorf("delete task: %w", err)
	}
	if i := task.Index(m.tasks, id); i >= 0 {
		m.tasks = append(m.tasks[:i], m.tasks[i+1:]...)
	}
	m.gen++
	m.showLocked(toastDeleted, ToastSuccess)
	return nil
}

// CancelDelete drops the pending confirmation.
func (m *Mirror) CancelDelete() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pendingDelete = ""
}

// SetFilter changes the visible subset.
func (m *Mirror) SetFilter(f task.Filter) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.filter = f
}

// Filter returns the active filter.
func (m *Mirror) Filter() task.Filter {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.filter
}

// Tasks returns a copy of the whole local collection.
func (m *Mirror) Tasks() []task.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]task.Task(nil), m.tasks...)
}

// Visible returns the tasks matching the active filter.
func (m *Mirror) Visible() []task.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.filter.Apply(m.tasks)
}

// Stats counts the whole collection regardless of filter.
func (m *Mirror) Stats() task.Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return task.Count(m.tasks)
}

// Loading reports whether a full load is in flight.
func (m *Mirror) Loading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loading
}

// Online reports the last known connectivity.
func (m *Mirror) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// SetOnline records a connectivity change. Coming back online reloads the
// collection.
func (m *Mirror) SetOnline(ctx context.Context, online bool) error {
	m.mu.Lock()
	if m.online == online {
		m.mu.Unlock()
		return nil
	}
	m.online = online
	if !online {
		m.showLocked(toastOffline, ToastError)
		m.mu.Unlock()
		return nil
	}
	m.showLocked(toastOnline, ToastSuccess)
	m.mu.Unlock()
	return m.Load(ctx)
}

// Toast returns the current notification while it has not expired.
func (m *Mirror) Toast() (Toast, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.toast == nil || m.now().Sub(m.toast.Shown) >= ToastDuration {
		return Toast{}, false
	}
	return *m.toast, true
}

// Notify shows an arbitrary toast.
func (m *Mirror) Notify(message string, kind ToastKind) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.showLocked(message, kind)
}

func (m *Mirror) showLocked(message string, kind ToastKind) {
	m.toast = &Toast{Message: message, Kind: kind, Shown: m.now()}
}

func (m *Mirror) replaceLocked(t task.Task) {
	if i := task.Index(m.tasks, t.ID); i >= 0 {
		m.tasks[i] = t
	}
	m.gen++
}

// failureMessage picks the server's message when there is one and falls
// back to a generic text for transport failures.
func failureMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return fallback
	}
	return toastNetwork
}
