// Package api provides the HTTP REST API and WebSocket server for Haunt Core.
//
// It exposes scenario control, device passthrough, and visitor tracking
// endpoints to the dashboard, plus a WebSocket feed of status snapshots.
//
// The server follows the same lifecycle pattern as other infrastructure
// components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// Thread Safety: All methods are safe for concurrent use from multiple goroutines.
package api

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/nerrad567/haunt-core/internal/infrastructure/config"
	"github.com/nerrad567/haunt-core/internal/infrastructure/logging"
	"github.com/nerrad567/haunt-core/internal/portal"
	"github.com/nerrad567/haunt-core/internal/status"
	"github.com/nerrad567/haunt-core/internal/visitors"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// ScenarioEngine is the scenario control surface the API exposes.
// *scenario.Engine satisfies this.
type ScenarioEngine interface {
	Trigger(source string) error
	Abort() bool
	ResetCooldown()
	ToggleAutoTrigger() bool
	Flicker(ctx context.Context) error
}

// PortalDevice is the portal passthrough surface.
// *portal.Client satisfies this.
type PortalDevice interface {
	GetState(ctx context.Context) (portal.StateInfo, error)
	TriggerRed(ctx context.Context) error
	TriggerGreen(ctx context.Context) error
	Reset(ctx context.Context) error
	CheckOnline(ctx context.Context) bool
}

// LightingDevice is the lighting passthrough surface.
// *lighting.Client satisfies this.
type LightingDevice interface {
	Enabled() bool
	HealthCheck(ctx context.Context) bool
	ActivateScene(ctx context.Context, entityID string) error
}

// Prober refreshes device liveness flags on demand.
// *scenario.Prober satisfies this.
type Prober interface {
	ProbeOnce(ctx context.Context)
}

// BusClient reports bus connectivity for the metrics endpoint.
type BusClient interface {
	IsConnected() bool
}

// VisitorRecorder records visitor tallies to telemetry storage.
// *influxdb.Client satisfies this.
type VisitorRecorder interface {
	RecordVisitorCount(count int)
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config   config.APIConfig
	WS       config.WebSocketConfig
	Lighting config.LightingConfig
	Logger   *logging.Logger
	Store    *status.Store
	Engine   ScenarioEngine
	Portal   PortalDevice
	Lights   LightingDevice
	Visitors visitors.Repository

	// Prober is optional; if set, GET /status refreshes liveness first.
	Prober Prober

	// Bus is optional; nil reports disconnected in metrics.
	Bus BusClient

	// Recorder is optional; nil disables visitor telemetry.
	Recorder VisitorRecorder

	// DB is optional; used only for pool stats in metrics.
	DB *sql.DB

	Version string
}

// Server is the HTTP API server for Haunt Core.
//
// It manages the HTTP listener, routes, middleware, and WebSocket hub.
// The server is created with New() and started with Start().
type Server struct {
	cfg      config.APIConfig
	wsCfg    config.WebSocketConfig
	lightCfg config.LightingConfig
	logger   *logging.Logger
	store    *status.Store
	engine   ScenarioEngine
	portal   PortalDevice
	lights   LightingDevice
	visitors visitors.Repository
	prober   Prober
	bus      BusClient
	recorder VisitorRecorder
	db       *sql.DB
	version  string

	server    *http.Server
	hub       *Hub
	startTime time.Time
	cancel    context.CancelFunc // cancels background goroutines on Close()
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
//
// Returns:
//   - *Server: Configured server ready to start
//   - error: If required dependencies are missing
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Store == nil {
		return nil, fmt.Errorf("status store is required")
	}
	if deps.Engine == nil {
		return nil, fmt.Errorf("scenario engine is required")
	}
	if deps.Portal == nil {
		return nil, fmt.Errorf("portal client is required")
	}
	if deps.Lights == nil {
		return nil, fmt.Errorf("lighting client is required")
	}
	if deps.Visitors == nil {
		return nil, fmt.Errorf("visitor repository is required")
	}

	return &Server{
		cfg:      deps.Config,
		wsCfg:    deps.WS,
		lightCfg: deps.Lighting,
		logger:   deps.Logger,
		store:    deps.Store,
		engine:   deps.Engine,
		portal:   deps.Portal,
		lights:   deps.Lights,
		visitors: deps.Visitors,
		prober:   deps.Prober,
		bus:      deps.Bus,
		recorder: deps.Recorder,
		db:       deps.DB,
		version:  deps.Version,
	}, nil
}

// Start begins listening for HTTP connections.
//
// It sets up the router, starts the WebSocket hub, wires status change
// broadcasts, and launches the HTTP listener in a background goroutine.
// The server can be stopped with Close().
//
// Parameters:
//   - ctx: Context for cancellation (not used for listener lifetime)
//
// Returns:
//   - error: If the server fails to start (port in use, etc.)
func (s *Server) Start(ctx context.Context) error {
	// Create internal context so Close() can stop background goroutines
	// independently of the parent context.
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	s.startTime = time.Now()

	s.hub = NewHub(s.wsCfg, s.logger)
	go s.hub.Run(srvCtx)

	// Every status mutation fans out to connected dashboards.
	s.store.SetOnChange(func(snap status.Snapshot) {
		s.hub.Broadcast(ChannelStatus, snap)
	})

	// Build router
	router := s.buildRouter()

	// Create HTTP server
	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           router,
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	// Start listening in background
	go func() {
		err := s.server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
//
// Returns:
//   - error: If shutdown encounters an error
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	// Stop broadcasting into a hub that is shutting down.
	s.store.SetOnChange(nil)

	// Cancel background goroutines (hub)
	if s.cancel != nil {
		s.cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running and responsive.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//
// Returns:
//   - error: nil if healthy, error describing the issue otherwise
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}

	return nil
}
