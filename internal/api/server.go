// Package api serves the task REST API and the web frontend.
//
// Every JSON response except the /api route table uses one envelope:
//
//	{"success": true, "data": ..., "count": 3, "message": "..."}
//	{"success": false, "message": "...", "error": "..."}
//
// User-facing messages are in Spanish, matching the web frontend.
package api

import (
	"context"
	"io/fs"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/nibzard/tasks-go/internal/logging"
	"github.com/nibzard/tasks-go/internal/task"
)

// Version is reported by the /api route.
const Version = "1.0.0"

// DefaultMaxBodyBytes caps request bodies when Options leaves it unset.
const DefaultMaxBodyBytes = 1 << 20

// Repository is the storage the API works against.
type Repository interface {
	All(ctx context.Context) ([]task.Task, error)
	Get(ctx context.Context, id string) (task.Task, error)
	Create(ctx context.Context, d task.Draft) (task.Task, error)
	Update(ctx context.Context, id string, p task.Patch) (task.Task, error)
	Delete(ctx context.Context, id string) (task.Task, error)
	Check() error
	Path() string
}

// Options configures a Server.
type Options struct {
	Logger *log.Logger

	// CORSOrigins lists allowed origins. Empty means "*".
	CORSOrigins []string

	// ExposeErrors adds the internal error text to 500 responses.
	ExposeErrors bool

	MaxBodyBytes int64

	// Static holds the web frontend. Nil disables static files.
	Static fs.FS
}

// Server routes HTTP requests to handlers.
type Server struct {
	repo    Repository
	opts    Options
	logger  *log.Logger
	router  *mux.Router
	handler http.Handler
}

// NewServer builds the router and middleware chain.
func NewServer(repo Repository, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}

	s := &Server{
		repo:   repo,
		opts:   opts,
		logger: opts.Logger,
		router: mux.NewRouter(),
	}
	s.routes()

	c := cors.New(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
	})

	s.handler = requestID(s.requestLogging(c.Handler(s.recoverer(s.router))))
	return s
}

func (s *Server) routes() {
	r := s.router

	r.HandleFunc("/api", s.handleAPIInfo).Methods(http.MethodGet)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	r.HandleFunc("/tasks", s.handleListTasks).Methods(http.MethodGet)
	r.HandleFunc("/tasks", s.handleCreateTask).Methods(http.MethodPost)
	r.HandleFunc("/tasks/{id}", s.handleGetTask).Methods(http.MethodGet)
	r.HandleFunc("/tasks/{id}", s.handleUpdateTask).Methods(http.MethodPut)
	r.HandleFunc("/tasks/{id}", s.handleDeleteTask).Methods(http.MethodDelete)

	// Anything unrouted is a static file or a 404 envelope.
	r.NotFoundHandler = http.HandlerFunc(s.handleStatic)
	r.MethodNotAllowedHandler = http.HandlerFunc(s.handleMethodNotAllowed)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}
