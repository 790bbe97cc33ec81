package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/couchcryptid/disaster-response-service/internal/domain"
	"github.com/couchcryptid/disaster-response-service/internal/eventbus"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DisasterService is the disaster lifecycle and enrichment API.
type DisasterService interface {
	Create(ctx context.Context, in domain.CreateInput) (domain.Disaster, error)
	Get(ctx context.Context, id string) (domain.Disaster, error)
	List(ctx context.Context, tag string) ([]domain.Disaster, error)
	Update(ctx context.Context, id string, in domain.UpdateInput) (domain.Disaster, error)
	Delete(ctx context.Context, id, actor string) error
	GeocodeText(ctx context.Context, text string) (string, domain.Geo, error)
	SocialReports(ctx context.Context, disasterID string) ([]domain.SocialReport, error)
	VerifyImage(ctx context.Context, disasterID, imageURL string) (domain.Verification, error)
	OfficialUpdates(ctx context.Context, disasterID string) ([]domain.OfficialUpdate, error)
}

// ResourceFinder answers proximity queries.
type ResourceFinder interface {
	FindNear(ctx context.Context, q domain.ResourceQuery) ([]domain.Resource, error)
}

// EventSource hands out live event subscriptions.
type EventSource interface {
	Subscribe(entityIDs ...string) *eventbus.Subscription
	Unsubscribe(sub *eventbus.Subscription)
}

// Deps are the collaborators behind the HTTP routes.
type Deps struct {
	Disasters DisasterService
	Resources ResourceFinder
	Events    EventSource
	Ready     sharedobs.ReadinessChecker
}

// Server exposes the JSON API, the live event stream, and health, readiness,
// and metrics endpoints.
type Server struct {
	httpServer *http.Server
	deps       Deps
	logger     *slog.Logger
	keepAlive  time.Duration

	// closing is closed on Shutdown so long-lived event streams return
	// instead of holding the drain open until the deadline.
	closing   chan struct{}
	closeOnce sync.Once
}

// NewServer creates an HTTP server with every route registered.
func NewServer(addr string, deps Deps, logger *slog.Logger) *Server {
	if deps.Ready == nil {
		deps.Ready = Readiness{}
	}
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		deps:      deps,
		logger:    logger,
		keepAlive: 15 * time.Second,
		closing:   make(chan struct{}),
	}
	s.httpServer.RegisterOnShutdown(s.closeStreams)

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(deps.Ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("POST /geocode", s.handleGeocode)
	mux.HandleFunc("POST /disasters", s.requireActor(s.handleCreate))
	mux.HandleFunc("GET /disasters", s.handleList)
	mux.HandleFunc("GET /disasters/{id}", s.handleGet)
	mux.HandleFunc("PUT /disasters/{id}", s.requireActor(s.handleUpdate))
	mux.HandleFunc("DELETE /disasters/{id}", s.requireActor(s.handleDelete))
	mux.HandleFunc("GET /disasters/{id}/resources", s.handleResources)
	mux.HandleFunc("GET /disasters/{id}/social-media", s.handleSocial)
	mux.HandleFunc("POST /disasters/{id}/verify-image", s.requireActor(s.handleVerifyImage))
	mux.HandleFunc("GET /disasters/{id}/official-updates", s.handleOfficialUpdates)
	mux.HandleFunc("GET /events", s.handleEvents)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) closeStreams() {
	s.closeOnce.Do(func() { close(s.closing) })
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

// Readiness combines several checks and reports every failure.
type Readiness []sharedobs.ReadinessChecker

func (rs Readiness) CheckReadiness(ctx context.Context) error {
	var errs []error
	for _, c := range rs {
		if c == nil {
			continue
		}
		if err := c.CheckReadiness(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
