package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nao1215/seoaudit/internal/database"
)

// DefaultAddr is the listen address of `seoaudit serve`.
const DefaultAddr = "127.0.0.1:8085"

// Store is the read side of the audit history.
type Store interface {
	ListSites(ctx context.Context) ([]string, error)
	GetAuditHistory(ctx context.Context, site string, since time.Time) ([]database.AuditMetadata, error)
	GetLatestAuditReport(ctx context.Context, site string) (*database.StoredReport, error)
	GetAuditReportByID(ctx context.Context, id int64) (*database.StoredReport, error)
	GetAuditReportByRunID(ctx context.Context, runID string) (*database.StoredReport, error)
}

// Server serves stored audits as JSON. It never writes to the store.
type Server struct {
	store   Store
	engine  *gin.Engine
	logger  *slog.Logger
	limiter *ipLimiter
	version string
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger used for request and panic logging.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithRateLimit limits each client IP to perSecond requests with the given burst.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(s *Server) {
		s.limiter = newIPLimiter(perSecond, burst)
	}
}

// WithVersion sets the version reported by the health endpoint.
func WithVersion(version string) Option {
	return func(s *Server) {
		s.version = version
	}
}

// New creates a Server backed by store. The default limit is 10 requests
// per second per client with a burst of 20.
func New(store Store, opts ...Option) *Server {
	s := &Server{
		store:   store,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		limiter: newIPLimiter(10, 20),
		version: "dev",
	}
	for _, opt := range opts {
		opt(s)
	}
	s.engine = s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(s.recovery(), s.requestLogger(), s.limiter.middleware())

	api := r.Group("/api")
	{
		api.GET("/health", s.health)
		api.GET("/sites", s.listSites)
		api.GET("/audits", s.listAudits)
		api.GET("/audits/latest", s.latestAudit)
		api.GET("/audits/:id", s.getAudit)
		api.GET("/compare", s.compare)
	}
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	}
}
