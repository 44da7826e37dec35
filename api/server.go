// Package api provides the HTTP REST surface of the course chat system.
//
// Endpoints:
//   - POST   /api/query                  - ask a question (creates a session if needed)
//   - GET    /api/courses                - course catalog analytics
//   - POST   /api/sessions               - create an empty session
//   - DELETE /api/sessions/{id}/clear    - forget a session's history
//   - GET    /health                     - liveness probe
//   - GET    /ready                      - readiness probe (pings the database)
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/owenlin0/coursechat/internal/rag"
)

const (
	// DefaultAddr is the default address for the HTTP server.
	DefaultAddr = ":8000"

	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	ShutdownTimeout = 10 * time.Second

	// ReadHeaderTimeout is the timeout for reading request headers.
	// This prevents Slowloris attacks (CWE-400).
	ReadHeaderTimeout = 10 * time.Second

	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeout = 30 * time.Second

	// WriteTimeout is the maximum duration for writing the response.
	// Generous because a query may run multiple model rounds.
	WriteTimeout = 120 * time.Second

	// IdleTimeout is the maximum time to wait for the next request on
	// keep-alive connections.
	IdleTimeout = 120 * time.Second
)

// RAGService is the facade surface the HTTP handlers need.
// *rag.System satisfies it.
type RAGService interface {
	Query(ctx context.Context, query string, sessionID uuid.UUID) (*rag.Answer, error)
	CreateSession(ctx context.Context) (uuid.UUID, error)
	ClearSession(ctx context.Context, id uuid.UUID) error
	Analytics(ctx context.Context) (*rag.Analytics, error)
}

// Server is the HTTP server for the course chat REST API.
type Server struct {
	mux    *http.ServeMux
	logger *slog.Logger
}

// NewServer creates a new HTTP server with all routes registered.
// pool may be nil; /ready then reports unavailable.
func NewServer(svc RAGService, pool *pgxpool.Pool, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()

	NewHealthHandler(pool, logger).RegisterRoutes(mux)
	NewQueryHandler(svc, logger).RegisterRoutes(mux)
	NewCoursesHandler(svc, logger).RegisterRoutes(mux)
	NewSessionHandler(svc, logger).RegisterRoutes(mux)

	return &Server{mux: mux, logger: logger}
}

// Handler returns the HTTP handler with middleware applied.
// Middleware order: recovery -> logging -> handler.
func (s *Server) Handler() http.Handler {
	return chain(s.mux,
		recoveryMiddleware(s.logger),
		loggingMiddleware(s.logger),
	)
}

// Run starts the HTTP server and blocks until the context is cancelled,
// then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: ReadHeaderTimeout,
		ReadTimeout:       ReadTimeout,
		WriteTimeout:      WriteTimeout,
		IdleTimeout:       IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
