package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/nibzard/tasks-go/internal/store"
	"github.com/nibzard/tasks-go/internal/task"
)

func (s *Server) handleAPIInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": msgAPITitle,
		"version": Version,
		"endpoints": map[string]string{
			"GET /tasks":        "Obtener todas las tareas",
			"POST /tasks":       "Crear una nueva tarea",
			"PUT /tasks/:id":    "Actualizar una tarea",
			"DELETE /tasks/:id": "Eliminar una tarea",
			"GET /tasks/:id":    "Obtener una tarea específica",
			"GET /health":       "Estado del servidor y del archivo de tareas",
		},
	})
}

type healthData struct {
	Status    string `json:"status"`
	TasksFile string `json:"tasksFile"`
	Count     int    `json:"count"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.Check(); err != nil {
		s.logger.Warn("health check failed", "err", err)
		env := envelope{Success: false, Message: msgStorageUnhealthy}
		if s.opts.ExposeErrors {
			env.Error = err.Error()
		}
		writeJSON(w, http.StatusServiceUnavailable, env)
		return
	}

	tasks, err := s.repo.All(r.Context())
	if err != nil {
		s.writeInternal(w, r, msgListFailed, err)
		return
	}
	writeData(w, http.StatusOK, "", healthData{
		Status:    "ok",
		TasksFile: s.repo.Path(),
		Count:     len(tasks),
	})
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	filter, err := task.ParseFilter(r.URL.Query().Get("filter"))
	if err != nil {
		writeFailure(w, http.StatusBadRequest, msgInvalidFilter)
		return
	}

	tasks, err := s.repo.All(r.Context())
	if err != nil {
		s.writeInternal(w, r, msgListFailed, err)
		return
	}
	tasks = filter.Apply(tasks)
	writeList(w, tasks, len(tasks))
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	t, err := s.repo.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeStoreError(w, r, msgGetFailed, err)
		return
	}
	writeData(w, http.StatusOK, "", t)
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	fields, err := decodeFields(w, r, s.opts.MaxBodyBytes)
	if err != nil {
		writeBodyError(w, err)
		return
	}

	raw, present := fields["title"]
	title, ok := stringField(raw)
	if !present || !ok || strings.TrimSpace(title) == "" {
		writeFailure(w, http.StatusBadRequest, msgTitleRequired)
		return
	}

	draft := task.Draft{Title: title}
	if raw, present := fields["completed"]; present && !isNull(raw) {
		completed, ok := boolField(raw)
		if !ok {
			writeFailure(w, http.StatusBadRequest, msgCompletedInvalid)
			return
		}
		draft.Completed = completed
	}

	created, err := s.repo.Create(r.Context(), draft)
	if err != nil {
		s.writeInternal(w, r, msgCreateFailed, err)
		return
	}
	writeData(w, http.StatusCreated, msgCreated, created)
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	// Existence is checked before the body is validated.
	if _, err := s.repo.Get(r.Context(), id); err != nil {
		s.writeStoreError(w, r, msgUpdateFailed, err)
		return
	}

	fields, err := decodeFields(w, r, s.opts.MaxBodyBytes)
	if err != nil {
		writeBodyError(w, err)
		return
	}

	var patch task.Patch
	if raw, present := fields["title"]; present {
		title, ok := stringField(raw)
		if !ok || strings.TrimSpace(title) == "" {
			writeFailure(w, http.StatusBadRequest, msgTitleInvalid)
			return
		}
		patch.Title = &title
	}
	if raw, present := fields["completed"]; present {
		completed, ok := boolField(raw)
		if !ok {
			writeFailure(w, http.StatusBadRequest, msgCompletedInvalid)
			return
		}
		patch.Completed = &completed
	}
	if patch.Empty() {
		writeFailure(w, http.StatusBadRequest, msgNoUpdateFields)
		return
	}

	updated, err := s.repo.Update(r.Context(), id, patch)
	if err != nil {
		s.writeStoreError(w, r, msgUpdateFailed, err)
		return
	}
	writeData(w, http.StatusOK, msgUpdated, updated)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	removed, err := s.repo.Delete(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeStoreError(w, r, msgDeleteFailed, err)
		return
	}
	writeData(w, http.StatusOK, msgDeleted, removed)
}

// writeStoreError answers 404 for a missing task and 500 otherwise.
func (s *Server) writeStoreError(w http.ResponseWriter, r *http.Request, message string, err error) {
	if errors.Is(err, store.ErrNotFound) {
		writeFailure(w, http.StatusNotFound, msgNotFound)
		return
	}
	s.writeInternal(w, r, message, err)
}

func (s *Server) handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeFailure(w, http.StatusMethodNotAllowed, msgMethodNotAllowed)
}
