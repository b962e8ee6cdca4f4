// Package api exposes the HTTP surface: REST endpoints for discovery and
// recording control, a WebSocket relay for live samples, an SSE event
// stream, and Prometheus metrics.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"

	"github.com/lslview/lslview/internal/api/models"
	"github.com/lslview/lslview/internal/events"
	"github.com/lslview/lslview/internal/logging"
	"github.com/lslview/lslview/internal/record"
	"github.com/lslview/lslview/internal/relay"
	"github.com/lslview/lslview/internal/streams"
	"github.com/lslview/lslview/internal/version"
)

// DefaultResolveTimeout bounds discovery when the client does not pass one.
const DefaultResolveTimeout = 2 * time.Second

// Options configures the API server.
type Options struct {
	Resolver          *streams.Resolver
	Relay             *relay.Manager
	Recorder          *record.Manager
	EventBus          *events.Bus
	PrometheusHandler http.Handler
}

// Server is the Huma v2 API server on the standard library mux.
type Server struct {
	api        huma.API
	mux        *http.ServeMux
	httpServer *http.Server
	resolver   *streams.Resolver
	relay      *relay.Manager
	recorder   *record.Manager
	eventBus   *events.Bus
	logger     *slog.Logger
}

// NewServer creates the API server and registers all routes.
func NewServer(opts *Options) *Server {
	mux := http.NewServeMux()

	config := huma.DefaultConfig("LSLView Backend", version.String())
	config.Info.Description = "Relay and recording API for Lab Streaming Layer sensor streams"
	// Relative paths in OpenAPI so the docs work behind any host.
	config.Servers = []*huma.Server{}

	server := &Server{
		api:      humago.New(mux, config),
		mux:      mux,
		resolver: opts.Resolver,
		relay:    opts.Relay,
		recorder: opts.Recorder,
		eventBus: opts.EventBus,
		logger:   logging.GetLogger("api"),
	}

	if opts.PrometheusHandler != nil {
		mux.Handle("GET /metrics", opts.PrometheusHandler)
	}

	server.registerRoutes()
	return server
}

// GetMux returns the underlying mux for additional setup.
func (s *Server) GetMux() *http.ServeMux {
	return s.mux
}

// GetAPI returns the Huma API instance.
func (s *Server) GetAPI() huma.API {
	return s.api
}

// Start serves HTTP on addr and blocks until shutdown.
func (s *Server) Start(addr string) error {
	s.logger.Info("Starting API server", "addr", addr)
	s.logger.Info("OpenAPI documentation available", "url", "http://"+addr+"/docs")

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: s.mux,
	}
	return s.httpServer.ListenAndServe()
}

// Stop shuts the server down, closing live connections.
func (s *Server) Stop() error {
	s.logger.Info("Stopping API server")
	if s.httpServer != nil {
		return s.httpServer.Close()
	}
	return nil
}

// registerRoutes sets up all endpoints.
func (s *Server) registerRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "health-check",
		Method:      http.MethodGet,
		Path:        "/api/health",
		Summary:     "Health",
		Description: "Check API health status",
		Tags:        []string{"health"},
	}, func(ctx context.Context, input *struct{}) (*models.HealthResponse, error) {
		return &models.HealthResponse{
			Body: models.HealthData{
				Status: "ok",
				Time:   float64(time.Now().UnixNano()) / float64(time.Second),
			},
		}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-version",
		Method:      http.MethodGet,
		Path:        "/api/version",
		Summary:     "Version",
		Description: "Get application version information",
		Tags:        []string{"system"},
	}, func(ctx context.Context, input *struct{}) (*models.VersionResponse, error) {
		return &models.VersionResponse{Body: version.Get()}, nil
	})

	s.registerStreamRoutes()
	s.registerRecordingRoutes()
	s.registerSSERoutes()

	// Persistent-connection endpoints live on the raw mux: WebSocket
	// upgrades and file downloads don't fit Huma's typed model.
	s.mux.HandleFunc("GET /api/stream/{uid}", s.handleStreamWS)
	s.mux.HandleFunc("GET /api/recordings/{id}/archive", s.handleArchiveDownload)
}
