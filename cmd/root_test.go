// Package cmd provides tests for CLI command handlers.
package cmd

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nibzard/tasks-go/internal/api"
	"github.com/nibzard/tasks-go/internal/config"
	"github.com/nibzard/tasks-go/internal/logging"
	"github.com/nibzard/tasks-go/internal/store"
	"github.com/nibzard/tasks-go/internal/task"
)

var envVars = []string{
	"PORT", "TASKS_FILE", "TASKS_STATIC_DIR", "TASKS_HOST", "TASKS_CORS_ORIGINS",
	"TASKS_EXPOSE_ERRORS", "TASKS_LENIENT_READ", "TASKS_WATCH", "TASKS_SERVER",
	"TASKS_LOG_DIR", "TASKS_LOG_LEVEL", "TASKS_LOG_FORMAT", "TASKS_LOG_TIMESTAMPS",
	"TASKS_LOG_CALLER",
}

// isolate keeps the user's config files and environment out of a test. It
// returns the temporary working directory.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("APPDATA", filepath.Join(home, "AppData"))
	for _, name := range envVars {
		t.Setenv(name, "")
	}
	wd := t.TempDir()
	t.Chdir(wd)
	return wd
}

func captureStdout(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe() error = %v", err)
	}
	os.Stdout = w
	defer func() {
		os.Stdout = oldStdout
	}()

	done := make(chan []byte)
	go func() {
		data, _ := io.ReadAll(r)
		done <- data
	}()

	runErr := fn()
	_ = w.Close()
	output := <-done
	_ = r.Close()

	return string(output), runErr
}

func seedTasks(t *testing.T, path string) {
	t.Helper()
	st := store.New(path)
	ctx := context.Background()
	if _, err := st.Create(ctx, task.Draft{Title: "Buy milk"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := st.Create(ctx, task.Draft{Title: "Pay rent", Completed: true}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
}

func TestRun(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    string
		wantErr string
	}{
		{name: "help flag", args: []string{"--help"}, want: "Usage:"},
		{name: "short help flag", args: []string{"-h"}, want: "Usage:"},
		{name: "help command", args: []string{"help"}, want: "Commands:"},
		{name: "version flag", args: []string{"--version"}, want: "tasks version"},
		{name: "short version flag", args: []string{"-v"}, want: "tasks version"},
		{name: "version command", args: []string{"version"}, want: "tasks version dev"},
		{name: "unknown command", args: []string{"unknown-command"}, wantErr: "unknown command"},
		{name: "invalid port", args: []string{"-port", "70000", "version"}, wantErr: "loading config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			output, err := captureStdout(t, func() error {
				return Run(context.Background(), tt.args)
			})
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("Run(%v) error = %v, want %q", tt.args, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Run(%v) error = %v", tt.args, err)
			}
			if !strings.Contains(output, tt.want) {
				t.Errorf("Run(%v) output missing %q:\n%s", tt.args, tt.want, output)
			}
		})
	}
}

func TestLsLocal(t *testing.T) {
	wd := isolate(t)
	seedTasks(t, filepath.Join(wd, "tasks.json"))

	tests := []struct {
		name    string
		args    []string
		want    []string
		notWant []string
	}{
		{
			name: "all",
			args: []string{"ls", "-local"},
			want: []string{"Buy milk", "Pay rent", "2 total, 1 pending, 1 completed"},
		},
		{
			name:    "pending positional",
			args:    []string{"ls", "-local", "pending"},
			want:    []string{"📝 Buy milk"},
			notWant: []string{"Pay rent"},
		},
		{
			name:    "completed flag",
			args:    []string{"ls", "-local", "-filter", "completed"},
			want:    []string{"✅ Pay rent"},
			notWant: []string{"Buy milk"},
		},
		{
			name: "verbose",
			args: []string{"ls", "-local", "-v"},
			want: []string{"ID: ", "Creado: Hoy"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := captureStdout(t, func() error {
				return Run(context.Background(), tt.args)
			})
			if err != nil {
				t.Fatalf("Run(%v) error = %v", tt.args, err)
			}
			for _, want := range tt.want {
				if !strings.Contains(output, want) {
					t.Errorf("output missing %q:\n%s", want, output)
				}
			}
			for _, notWant := range tt.notWant {
				if strings.Contains(output, notWant) {
					t.Errorf("output unexpectedly contains %q:\n%s", notWant, output)
				}
			}
		})
	}
}

func TestLsErrors(t *testing.T) {
	wd := isolate(t)

	if err := Run(context.Background(), []string{"ls", "-local", "someday"}); err == nil {
		t.Error("expected error for invalid filter")
	}
	if err := Run(context.Background(), []string{"ls", "-local", "all", "extra"}); err == nil {
		t.Error("expected error for extra arguments")
	}

	if err := os.WriteFile(filepath.Join(wd, "tasks.json"), []byte("{broken"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := Run(context.Background(), []string{"ls", "-local"}); err == nil {
		t.Error("expected error for a corrupt tasks file")
	}
}

func TestLsThroughServer(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "tasks.json")
	seedTasks(t, path)
	ts := httptest.NewServer(api.NewServer(store.New(path), api.Options{}))
	defer ts.Close()

	output, err := captureStdout(t, func() error {
		return Run(context.Background(), []string{"-server", ts.URL, "ls", "completed"})
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(output, "Pay rent") || strings.Contains(output, "Buy milk") {
		t.Errorf("unexpected ls output:\n%s", output)
	}
}

func TestDoctor(t *testing.T) {
	t.Run("missing tasks file passes", func(t *testing.T) {
		isolate(t)
		output, err := captureStdout(t, func() error {
			return Run(context.Background(), []string{"doctor"})
		})
		if err != nil {
			t.Fatalf("doctor error = %v\n%s", err, output)
		}
		for _, want := range []string{"Not found (will be created on first write)", "embedded frontend", "All checks passed"} {
			if !strings.Contains(output, want) {
				t.Errorf("doctor output missing %q:\n%s", want, output)
			}
		}
	})

	t.Run("valid tasks file", func(t *testing.T) {
		wd := isolate(t)
		seedTasks(t, filepath.Join(wd, "tasks.json"))
		output, err := captureStdout(t, func() error {
			return Run(context.Background(), []string{"doctor", "-v"})
		})
		if err != nil {
			t.Fatalf("doctor error = %v\n%s", err, output)
		}
		if !strings.Contains(output, "Valid (2 tasks)") {
			t.Errorf("doctor output missing task count:\n%s", output)
		}
		if !strings.Contains(output, "tasks_file") {
			t.Errorf("verbose doctor should list config sources:\n%s", output)
		}
	})

	t.Run("corrupt tasks file fails", func(t *testing.T) {
		wd := isolate(t)
		if err := os.WriteFile(filepath.Join(wd, "tasks.json"), []byte(`[{"id": 1}]`), 0o644); err != nil {
			t.Fatal(err)
		}
		_, err := captureStdout(t, func() error {
			return Run(context.Background(), []string{"doctor"})
		})
		if err == nil || !strings.Contains(err.Error(), "doctor checks failed") {
			t.Fatalf("doctor error = %v, want checks failed", err)
		}
	})

	t.Run("example config", func(t *testing.T) {
		isolate(t)
		output, err := captureStdout(t, func() error {
			return Run(context.Background(), []string{"doctor", "-example"})
		})
		if err != nil {
			t.Fatalf("doctor -example error = %v", err)
		}
		if !strings.Contains(output, "tasks_file") {
			t.Errorf("example config missing tasks_file:\n%s", output)
		}
	})
}

func TestLogs(t *testing.T) {
	wd := isolate(t)
	logDir := filepath.Join(wd, "logs")

	output, err := captureStdout(t, func() error {
		return Run(context.Background(), []string{"-log-dir", logDir, "logs"})
	})
	if err != nil {
		t.Fatalf("logs error = %v", err)
	}
	if !strings.Contains(output, "No log files found.") {
		t.Errorf("unexpected output:\n%s", output)
	}

	runFile, err := logging.OpenRunFile(logDir, "tui")
	if err != nil {
		t.Fatalf("OpenRunFile() error = %v", err)
	}
	if _, err := runFile.Writer().WriteString("first\nsecond\nthird\n"); err != nil {
		t.Fatal(err)
	}
	if err := runFile.Close(); err != nil {
		t.Fatal(err)
	}

	output, err = captureStdout(t, func() error {
		return Run(context.Background(), []string{"-log-dir", logDir, "logs", "-n", "2"})
	})
	if err != nil {
		t.Fatalf("logs error = %v", err)
	}
	if !strings.Contains(output, "second\nthird\n") || strings.Contains(output, "first") {
		t.Errorf("unexpected tail output:\n%s", output)
	}
}

func TestTUIRequiresTTY(t *testing.T) {
	wd := isolate(t)
	_, err := captureStdout(t, func() error {
		return Run(context.Background(), []string{"-log-dir", filepath.Join(wd, "logs"), "tui"})
	})
	if err == nil || !strings.Contains(err.Error(), "TTY") {
		t.Fatalf("tui error = %v, want TTY error", err)
	}
}

func TestServe(t *testing.T) {
	wd := isolate(t)
	cfg, err := config.Load(nil, nil)
	if err != nil {
		t.Fatalf("config.Load() error = %v", err)
	}
	cfg.TasksFile = filepath.Join(wd, "tasks.json")
	cfg.WatchFile = true

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("net.Listen() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- serve(ctx, cfg, ln, logging.Discard())
	}()

	base := "http://" + ln.Addr().String()
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(base + "/health")
	if err != nil {
		cancel()
		t.Fatalf("GET /health error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("GET /health status = %d, want 200", resp.StatusCode)
	}

	resp, err = client.Get(base + "/")
	if err != nil {
		cancel()
		t.Fatalf("GET / error = %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if !strings.Contains(string(body), `id="taskForm"`) {
		t.Errorf("GET / should serve the embedded frontend, got:\n%s", body)
	}
	client.CloseIdleConnections()

	cancel()
	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("serve() error = %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("serve() did not return after cancel")
	}
}

func TestStaticAssets(t *testing.T) {
	dir := t.TempDir()
	if _, source := staticAssets(dir); source != dir {
		t.Errorf("staticAssets(existing) source = %q, want %q", source, dir)
	}
	if _, source := staticAssets(filepath.Join(dir, "missing")); source != "embedded" {
		t.Errorf("staticAssets(missing) source = %q, want embedded", source)
	}
	if _, source := staticAssets(""); source != "embedded" {
		t.Errorf("staticAssets(\"\") source = %q, want embedded", source)
	}
}
