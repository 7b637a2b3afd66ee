// Package httpapi exposes the catalog over HTTP with JSON bodies.
package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/poiesic/bookstore/catalog"
	"github.com/poiesic/bookstore/core"
)

const shutdownTimeout = 20 * time.Second

// Service is the catalog surface the HTTP boundary depends on.
type Service interface {
	Authorize(credential string) error
	Books() *catalog.BookRepository
	CreateBook(ctx context.Context, credential string, draft *core.BookDraft) (core.Book, error)
	CreateReview(ctx context.Context, credential string, draft *core.ReviewDraft) (core.Review, error)
	ReviewsForBook(ctx context.Context, bookID string) ([]core.Review, error)
}

// Server routes requests to a Service.
type Server struct {
	svc    Service
	logger *slog.Logger

	rps   float64
	burst int
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRateLimit limits each client IP to rps requests per second with the
// given burst. A non-positive rps disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(s *Server) {
		s.rps = rps
		s.burst = burst
	}
}

// New returns a Server for svc. Rate limiting is off unless configured.
func New(svc Service, opts ...Option) *Server {
	s := &Server{
		svc:    svc,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Serve listens on addr until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorLog:     slog.NewLogLogger(s.logger.Handler(), slog.LevelError),
	}

	shutdownErr := make(chan error, 1)
	go func() {
		<-ctx.Done()
		s.logger.Info("shutting down server", "address", addr)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		shutdownErr <- srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info("starting server", "address", addr)
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	if err := <-shutdownErr; err != nil {
		return err
	}
	s.logger.Info("server stopped", "address", addr)
	return nil
}
