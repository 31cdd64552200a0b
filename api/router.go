// Package api is the HTTP facade of the todo service. Every response is a
// JSON Envelope; routes live under /api/v1.
package api

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Skryldev/todo-api/models"
)

// ─────────────────────────────────────────────────────────────────────────────
// Dependencies
// ─────────────────────────────────────────────────────────────────────────────

// TodoStore is the ownership-scoped todo persistence used by the handlers.
type TodoStore interface {
	List(ctx context.Context, ownerID int64, offset, limit int) ([]models.Todo, error)
	Get(ctx context.Context, id, ownerID int64) (*models.Todo, error)
	Create(ctx context.Context, ownerID int64, params models.CreateTodoParams) (*models.Todo, error)
	Update(ctx context.Context, id, ownerID int64, params models.UpdateTodoParams) (*models.Todo, error)
	SetCompleted(ctx context.Context, id, ownerID int64, completed bool) (*models.Todo, error)
	Delete(ctx context.Context, id, ownerID int64) (bool, error)
	DeleteAll(ctx context.Context, ownerID int64) (int64, error)
}

// UserStore registers and authenticates accounts.
type UserStore interface {
	Create(ctx context.Context, name, email, password string) (*models.User, error)
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
}

// TokenIssuer mints and resolves bearer tokens.
type TokenIssuer interface {
	Issue(userID int64) (string, time.Time, error)
	Resolve(token string) (int64, error)
	TTL() time.Duration
}

// PoolStatter reports connection pool usage for the health endpoint.
type PoolStatter interface {
	Stats() sql.DBStats
}

// Options tunes the router.
type Options struct {
	// CORSOrigins lists allowed browser origins; empty allows any.
	CORSOrigins []string
	// RequestTimeout bounds each request's context. Zero means 60s.
	RequestTimeout time.Duration
	// Logger defaults to slog.Default() if nil.
	Logger *slog.Logger
	// Pool, when set, adds connection pool usage to the health payload.
	Pool PoolStatter
}

// Server holds the handlers' dependencies.
type Server struct {
	todos  TodoStore
	users  UserStore
	tokens TokenIssuer
	logger *slog.Logger
	opts   Options
	now    func() time.Time
}

// NewServer wires the handlers to their stores.
func NewServer(todos TodoStore, users UserStore, tokens TokenIssuer, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 60 * time.Second
	}
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}
	return &Server{todos: todos, users: users, tokens: tokens, logger: logger, opts: opts, now: time.Now}
}

// ─────────────────────────────────────────────────────────────────────────────
// Routes
// ─────────────────────────────────────────────────────────────────────────────

// Handler builds the chi router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.opts.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(s.recoverPanics)
	r.Use(middleware.Timeout(s.opts.RequestTimeout))

	// Set before Route so the subrouters inherit them.
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.health)

		r.Post("/auth/register", s.register)
		r.Post("/auth/login", s.login)

		r.Group(func(r chi.Router) {
			r.Use(Authenticate(s.tokens))

			r.Post("/auth/logout", s.logout)

			r.Route("/todos", func(r chi.Router) {
				r.Get("/", s.listTodos)
				r.Post("/", s.createTodo)
				r.Delete("/", s.deleteAllTodos)

				r.Get("/{id}", s.getTodo)
				r.Put("/{id}", s.updateTodo)
				r.Delete("/{id}", s.deleteTodo)
				r.Patch("/{id}/complete", s.completeTodo)
			})
		})
	})

	return r
}

type poolHealth struct {
	MaxOpen int   `json:"max_open"`
	Open    int   `json:"open"`
	InUse   int   `json:"in_use"`
	Idle    int   `json:"idle"`
	Waits   int64 `json:"wait_count"`
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	body := map[string]any{
		"status":    "healthy",
		"timestamp": s.now().UTC(),
	}
	if s.opts.Pool != nil {
		st := s.opts.Pool.Stats()
		body["database"] = poolHealth{
			MaxOpen: st.MaxOpenConnections,
			Open:    st.OpenConnections,
			InUse:   st.InUse,
			Idle:    st.Idle,
			Waits:   st.WaitCount,
		}
	}
	writeJSON(w, http.StatusOK, body, "API is running")
}
