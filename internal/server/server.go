// File: internal/server/server.go
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bigid-apps/quickstart/internal/app"
	"github.com/bigid-apps/quickstart/internal/config"
	"github.com/bigid-apps/quickstart/internal/observability"
)

// Options configures a Server.
type Options struct {
	Config     config.ServerConfig
	Controller *app.Controller
	Metrics    *observability.Metrics
	// LogFile is served by the logs endpoints. Empty disables them.
	LogFile string
	Logger  *zap.Logger
}

// Server hosts one app behind the BigID app contract.
type Server struct {
	cfg        config.ServerConfig
	controller *app.Controller
	metrics    *observability.Metrics
	logFile    string
	logger     *zap.Logger
	router     chi.Router

	// closing is closed on shutdown to end open log streams, which
	// http.Server.Shutdown does not track.
	closing   chan struct{}
	closeOnce sync.Once
}

func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = observability.NewMetrics()
	}
	s := &Server{
		cfg:        opts.Config,
		controller: opts.Controller,
		metrics:    metrics,
		logFile:    opts.LogFile,
		logger:     logger.Named("server"),
		closing:    make(chan struct{}),
	}
	s.router = s.routes()
	return s
}

// Handler returns the server's router.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	// The log stream is long-lived and stays out of the request log.
	r.Get("/ws/v1/logs", s.handleLogStream)

	r.Group(func(r chi.Router) {
		r.Use(requestLogger(s.logger))

		r.Get("/healthz", s.handleHealthCheck)
		r.Handle("/metrics", promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{}))

		r.Route("/api/v1", func(r chi.Router) {
			r.Get("/manifest", s.handleManifest)
			r.Post("/execute", s.handleExecute)
			r.Get("/assets/icon", s.handleAsset("icon.png"))
			r.Get("/assets/sideBarIcon", s.handleAsset("side-bar-icon.png"))
			r.Get("/logs", s.handleLogs)
		})
	})
	return r
}

// Run listens on the configured address and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr())
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts down gracefully within the
// configured shutdown timeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: s.cfg.ReadHeaderTimeout,
	}
	httpServer.RegisterOnShutdown(func() {
		s.closeOnce.Do(func() { close(s.closing) })
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("Serving app.",
			zap.String("app", s.controller.App().Name),
			zap.String("address", ln.Addr().String()))
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("Shutting down server.")

		timeout := s.cfg.ShutdownTimeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	err := g.Wait()
	s.logger.Info("Server stopped.")
	return err
}

// requestLogger logs each request at debug level with its outcome.
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Debug("Handled request.",
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("remote_addr", r.RemoteAddr),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)))
		})
	}
}
