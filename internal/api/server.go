// Package api exposes jobs and persisted domains over a small JSON REST
// surface. Job creation hands work to the background runner and returns
// immediately; everything else is a read over the store.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	"github.com/ahrav/namesmith/internal/domain"
	"github.com/ahrav/namesmith/internal/metrics"
	"github.com/ahrav/namesmith/internal/store"
	"github.com/ahrav/namesmith/internal/worker"
)

// Store is the persistence the handlers read and write.
type Store interface {
	CreateJob(ctx context.Context, job *store.Job) error
	GetJob(ctx context.Context, id uuid.UUID) (*store.Job, error)
	ListJobs(ctx context.Context, limit, offset int) ([]store.Job, error)
	UpdateJobStatus(ctx context.Context, id uuid.UUID, u store.JobUpdate) (*store.Job, error)
	ListJobDomains(ctx context.Context, jobID uuid.UUID) ([]store.DomainName, error)
	ListDomains(ctx context.Context, f store.DomainFilter) ([]store.DomainName, error)
	GetDomain(ctx context.Context, id uuid.UUID) (*store.DomainName, error)
	Ping(ctx context.Context) error
}

// Submitter starts a pipeline run in the background.
type Submitter interface {
	Submit(ctx context.Context, inputs domain.GenerationInputs) (*worker.Handle, error)
}

// Server holds the handler dependencies.
type Server struct {
	store       Store
	runner      Submitter
	metrics     *metrics.Collector
	logger      *slog.Logger
	corsOrigins []string
	now         func() time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithMetrics records HTTP metrics and serves /metrics.
func WithMetrics(m *metrics.Collector) Option { return func(s *Server) { s.metrics = m } }

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option { return func(s *Server) { s.logger = l } }

// WithCORSOrigins sets the allowed CORS origins. None disables CORS headers.
func WithCORSOrigins(origins []string) Option {
	return func(s *Server) { s.corsOrigins = origins }
}

// NewServer creates a Server.
func NewServer(st Store, runner Submitter, opts ...Option) *Server {
	s := &Server{store: st, runner: runner, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.logger = s.logger.With("component", "api")
	return s
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(s.requestLogger)
	r.Use(s.observeHTTP)
	if len(s.corsOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.corsOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders: []string{"X-Request-ID"},
			MaxAge:         300,
		}))
	}

	r.Get("/healthz", s.healthz)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	r.Route("/v1", func(r chi.Router) {
		r.Route("/jobs", func(r chi.Router) {
			r.Post("/", s.createJob)
			r.Get("/", s.listJobs)
			r.Get("/{jobID}", s.getJob)
			r.Get("/{jobID}/domains", s.listJobDomains)
		})
		r.Route("/domains", func(r chi.Router) {
			r.Get("/", s.listDomains)
			r.Get("/{domainID}", s.getDomain)
		})
	})
	return r
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.store.Ping(ctx); err != nil {
		s.logger.Warn("health check failed", "error", err)
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
