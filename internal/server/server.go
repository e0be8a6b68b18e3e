// package server contains the HTTP front-end for the gateway
//
// Handlers translate query parameters into aggregation-engine calls and shape
// the JSON responses; they hold no state of their own.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/vic3r/spotify-search/internal/shared"
)

const shutdownTimeout = 5 * time.Second

// Server is the HTTP front-end, a stateless translator over the aggregation
// engine.
type Server struct {
	router     chi.Router
	httpServer *http.Server
	logger     *log.Logger
}

// New creates a Server listening on addr with all routes registered.
func New(addr string, handlers *Handlers, logger *log.Logger) *Server {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	logger = shared.WithLogger(logger, "component", "http")

	router := chi.NewRouter()
	router.Use(RequestID)
	router.Use(Logging(logger))

	router.Get("/health", handlers.Health)
	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/search", handlers.Search)
		r.Get("/tracks/with-features", handlers.TracksWithFeatures)
	})

	return &Server{
		router: router,
		httpServer: &http.Server{
			Addr:    addr,
			Handler: router,
		},
		logger: logger,
	}
}

// Handler exposes the configured router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errs := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errs <- err
		}
	}()

	s.logger.Info("listening", "addr", s.httpServer.Addr)

	select {
	case err := <-errs:
		return fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}

	return nil
}
