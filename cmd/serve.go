package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/nibzard/tasks-go/internal/api"
	"github.com/nibzard/tasks-go/internal/config"
	"github.com/nibzard/tasks-go/internal/logging"
	"github.com/nibzard/tasks-go/internal/store"
	"github.com/nibzard/tasks-go/web"
)

const readHeaderTimeout = 5 * time.Second

// serveCommand starts the HTTP server and blocks until ctx is cancelled.
func serveCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("tasks serve", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	logger := logging.NewFromConfig(cfg.LogLevel, cfg.LogFormat, cfg.LogTimestamps, cfg.LogCaller, "tasks")

	ln, err := net.Listen("tcp", cfg.Addr())
	if err != nil {
		return fmt.Errorf("listening on %s: %w", cfg.Addr(), err)
	}
	return serve(ctx, cfg, ln, logger)
}

// serve runs the server on ln until ctx is done, then shuts it down
// gracefully. With watch_file set a file watcher runs alongside.
func serve(ctx context.Context, cfg *config.Config, ln net.Listener, logger *log.Logger) error {
	st := store.New(cfg.TasksFile,
		store.WithLogger(logger.WithPrefix("store")),
		store.WithLenientRead(cfg.LenientRead),
	)
	if err := st.Check(); err != nil {
		logger.Warn("tasks file is unreadable; requests will fail until it is fixed", "path", st.Path(), "err", err)
	}

	static, staticSource := staticAssets(cfg.StaticDir)
	handler := api.NewServer(st, api.Options{
		Logger:       logger.WithPrefix("http"),
		CORSOrigins:  cfg.CORSOrigins,
		ExposeErrors: cfg.ExposeErrors,
		MaxBodyBytes: cfg.MaxBodyBytes,
		Static:       static,
	})
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server listening",
			"addr", ln.Addr().String(),
			"tasks_file", st.Path(),
			"static", staticSource,
		)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving http: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
		defer cancel()
		logger.Info("shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down: %w", err)
		}
		return nil
	})
	if cfg.WatchFile {
		g.Go(func() error {
			if err := st.Watch(gctx, nil); err != nil {
				// The server keeps working without the watcher.
				logger.Warn("file watcher disabled", "err", err)
			}
			return nil
		})
	}
	return g.Wait()
}

// staticAssets serves dir when it exists and the embedded frontend
// otherwise. The second result names the source for logging.
func staticAssets(dir string) (fs.FS, string) {
	if dir != "" {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return os.DirFS(dir), dir
		}
	}
	return web.Assets(), "embedded"
}
