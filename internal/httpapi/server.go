package httpapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/MrEthical07/authgraph"
	"github.com/MrEthical07/authgraph/jwt"
	"github.com/MrEthical07/authgraph/metrics/export/prometheus"
	"github.com/MrEthical07/authgraph/middleware"
)

const (
	shutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 10 * time.Second
	maxBodySize       = 64 << 10
)

// Options configures a Server.
type Options struct {
	Logger *slog.Logger
	// Verifier guards /v1/me. Without it the route is not registered.
	Verifier *jwt.Manager
	// TrustProxy takes the client address from X-Forwarded-For.
	TrustProxy bool
	// AttemptTimeout bounds a single /v1/authenticate call. Zero selects
	// thirty seconds.
	AttemptTimeout time.Duration
}

// Server exposes an Engine over HTTP.
type Server struct {
	router  *chi.Mux
	engine  *authgraph.Engine
	metrics *prometheus.Collector
	logger  *slog.Logger
	opts    Options
}

func NewServer(engine *authgraph.Engine, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.AttemptTimeout <= 0 {
		opts.AttemptTimeout = 30 * time.Second
	}
	s := &Server{
		router:  chi.NewRouter(),
		engine:  engine,
		metrics: prometheus.NewCollector(engine),
		logger:  opts.Logger,
		opts:    opts,
	}

	s.router.Use(chimw.RequestID)
	s.router.Use(chimw.Recoverer)
	s.router.Use(middleware.ClientIP(opts.TrustProxy))
	s.router.Use(s.loggingMiddleware)
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Get("/healthz", s.handleHealthz)
	s.router.Handle("/metrics", s.metrics.Handler())

	s.router.Route("/v1", func(r chi.Router) {
		r.Post("/authenticate", s.handleAuthenticate)
		r.Get("/graphs", s.handleGraphs)
		r.Get("/providers", s.handleProviders)
		if s.opts.Verifier != nil {
			r.With(middleware.RequireIdentity(s.opts.Verifier)).Get("/me", s.handleMe)
		}
	})
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", chimw.GetReqID(r.Context()),
		)
	})
}
