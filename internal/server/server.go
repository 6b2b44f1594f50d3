// Package server provides the HTTP server and its middleware chain.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/tjfontaine/movi-transport-agent/internal/pkg/config"
)

type Server struct {
	Router  *chi.Mux
	logger  *slog.Logger
	limiter *RateLimiter
	srv     *http.Server
}

// New builds a router with the standard middleware chain. Routes are
// mounted by the caller on Router.
func New(cfg config.ServerConfig, rateLimit config.RateLimitConfig, logger *slog.Logger) *Server {
	r := chi.NewRouter()
	limiter := NewRateLimiter(rateLimit)

	// Apply middleware in order
	r.Use(RequestIDMiddleware)
	if cfg.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(LoggingMiddleware(logger))
	r.Use(CORSMiddleware())
	r.Use(limiter.Middleware)
	r.Use(TimeoutMiddleware(cfg.RequestTimeout))
	r.Use(middleware.Recoverer)

	// Wrap with OpenTelemetry HTTP instrumentation
	r.Use(func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, "movi")
	})

	return &Server{
		Router:  r,
		logger:  logger,
		limiter: limiter,
		srv:     &http.Server{Handler: r},
	}
}

// RateLimiter returns the limiter so settings can be reloaded.
func (s *Server) RateLimiter() *RateLimiter {
	return s.limiter
}

// Serve serves on ln until Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("starting server", slog.String("addr", ln.Addr().String()))

	if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
