package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/hollis/gaffer/internal/auth"
	"github.com/hollis/gaffer/internal/config"
	"github.com/hollis/gaffer/internal/engine"
	"github.com/hollis/gaffer/internal/store"
)

const (
	shutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 10 * time.Second
	writeTimeout      = 30 * time.Second

	// maxBodySize caps request bodies at 1 MiB.
	maxBodySize = 1 << 20
)

// Server wraps the chi router and application dependencies.
type Server struct {
	router  *chi.Mux
	store   store.Store
	engine  *engine.Engine
	authn   *auth.Authenticator
	limiter *rateLimiter
	logger  *slog.Logger
	cfg     config.Config
}

// NewServer creates and configures a new HTTP server.
func NewServer(cfg config.Config, s store.Store, eng *engine.Engine, authn *auth.Authenticator, logger *slog.Logger) *Server {
	srv := &Server{
		router:  chi.NewRouter(),
		store:   s,
		engine:  eng,
		authn:   authn,
		limiter: newRateLimiter(cfg.RateLimitCalls, cfg.RateLimitWindow),
		logger:  logger,
		cfg:     cfg,
	}

	srv.router.Use(middleware.RequestID)
	srv.router.Use(middleware.Recoverer)
	srv.router.Use(srv.loggingMiddleware)
	srv.router.Use(metricsMiddleware)
	srv.router.Use(srv.rateLimitMiddleware)
	srv.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	srv.routes()

	return srv
}

// routes registers all HTTP routes on the router.
func (s *Server) routes() {
	s.router.Get("/", s.handleRoot)
	s.router.Get("/health", s.handleHealth)
	s.router.Get("/health/ready", s.handleHealthReady)
	s.router.Get("/health/live", s.handleHealthLive)
	s.router.Handle("/metrics", metricsHandler())

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(s.authn))

			r.Route("/agents", func(r chi.Router) {
				r.Get("/", s.handleListAgents)
				r.Post("/", s.handleCreateAgent)
				r.Get("/{id}", s.handleGetAgent)
				r.Put("/{id}", s.handleUpdateAgent)
				r.Delete("/{id}", s.handleDeleteAgent)
			})

			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", s.handleListTasks)
				r.Post("/", s.handleCreateTask)
				r.Get("/{id}", s.handleGetTask)
				r.Put("/{id}", s.handleUpdateTask)
				r.Delete("/{id}", s.handleDeleteTask)
			})

			r.Route("/executions", func(r chi.Router) {
				r.Post("/", s.handleCreateExecution)
				r.Get("/", s.handleListExecutions)
				r.Get("/running", s.handleListRunningExecutions)
				r.Get("/{id}", s.handleGetExecution)
			})
		})
	})
}

// Router returns the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Run starts the HTTP server and blocks until a shutdown signal is received.
func (s *Server) Run() error {
	httpServer := &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      writeTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", s.cfg.ListenAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		s.logger.Info("shutting down", "signal", sig.String())
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	// In-flight executions land before the caller closes the store.
	s.engine.Wait()
	s.limiter.stop()

	s.logger.Info("server stopped")
	return nil
}

// loggingMiddleware logs each request using the structured logger.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// writeJSON writes a JSON response with the given status code.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "error", err)
	}
}

// writeError writes a JSON error response.
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

// writeDomainError maps store and engine errors onto API status codes. The
// typed errors carry their own client-facing messages; anything unmapped is
// logged and reported as a generic 500.
func (s *Server) writeDomainError(w http.ResponseWriter, err error, op string) {
	var nfe *store.NotFoundError
	if errors.As(err, &nfe) {
		s.writeError(w, http.StatusNotFound, nfe.Error())
		return
	}
	var nae *engine.NotAuthorizedError
	if errors.As(err, &nae) {
		s.writeError(w, http.StatusBadRequest, nae.Error())
		return
	}
	if errors.Is(err, store.ErrAgentNotFound) {
		s.writeError(w, http.StatusBadRequest, "One or more agent IDs do not exist")
		return
	}

	s.logger.Error(op, "error", err)
	s.writeError(w, http.StatusInternalServerError, "internal server error")
}

// parseID parses the {id} route parameter. Unparseable values resolve to
// nothing, so they are reported as not found.
func (s *Server) parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.writeError(w, http.StatusNotFound, "not found")
		return 0, false
	}
	return id, true
}

// decodeJSON decodes the request body into v. Malformed or oversized bodies
// are rejected as unprocessable.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, "invalid request body")
		return false
	}
	return true
}
