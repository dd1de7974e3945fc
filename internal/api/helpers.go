package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// envelope is the body of every task endpoint response.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Count   *int   `json:"count,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(true)
	_ = enc.Encode(v)
}

func writeData(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, envelope{Success: true, Data: data, Message: message})
}

func writeList(w http.ResponseWriter, data any, count int) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: data, Count: &count})
}

func writeFailure(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{Success: false, Message: message})
}

// writeInternal reports a 500 and, when enabled, the underlying error.
func (s *Server) writeInternal(w http.ResponseWriter, r *http.Request, message string, err error) {
	s.logger.Error(message, "err", err, "method", r.Method, "path", r.URL.Path, "request_id", w.Header().Get(requestIDHeader))
	env := envelope{Success: false, Message: message}
	if s.opts.ExposeErrors && err != nil {
		env.Error = err.Error()
	}
	writeJSON(w, http.StatusInternalServerError, env)
}

var (
	errBodyNotObject = errors.New("body is not a JSON object")
	errBodyTooLarge  = errors.New("body too large")
)

// decodeFields reads the body as a JSON object keeping each value raw, so
// a field that is present with the wrong type can be told apart from one
// that is absent. An empty body or "null" is an empty object.
func decodeFields(w http.ResponseWriter, r *http.Request, limit int64) (map[string]json.RawMessage, error) {
	defer r.Body.Close()

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, errBodyTooLarge
		}
		return nil, fmt.Errorf("read body: %w", err)
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return map[string]json.RawMessage{}, nil
	}
	if data[0] != '{' && !bytes.Equal(data, []byte("null")) {
		if !json.Valid(data) {
			return nil, errors.New("invalid JSON")
		}
		return nil, errBodyNotObject
	}

	fields := map[string]json.RawMessage{}
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&fields); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if dec.More() {
		return nil, errors.New("invalid JSON: multiple JSON values")
	}
	if fields == nil {
		fields = map[string]json.RawMessage{}
	}
	return fields, nil
}

// writeBodyError maps a decodeFields error to a response.
func writeBodyError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errBodyTooLarge):
		writeFailure(w, http.StatusRequestEntityTooLarge, msgBodyTooLarge)
	case errors.Is(err, errBodyNotObject):
		writeFailure(w, http.StatusBadRequest, msgBodyNotObject)
	default:
		writeFailure(w, http.StatusBadRequest, msgInvalidJSON)
	}
}

// stringField returns the field as a string. ok is false when the value is
// not a JSON string.
func stringField(raw json.RawMessage) (value string, ok bool) {
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", false
	}
	return value, !isNull(raw)
}

// boolField returns the field as a boolean. ok is false for anything that
// is not the literal true or false.
func boolField(raw json.RawMessage) (value bool, ok bool) {
	switch string(bytes.TrimSpace(raw)) {
	case "true":
		return true, true
	case "false":
		return false, true
	default:
		return false, false
	}
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
