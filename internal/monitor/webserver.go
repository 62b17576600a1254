// Package monitor serves the debug HTTP surface of a running simulation:
// live parameters, hotspot and calibration charts, a motion heatmap and a
// websocket stream of agent positions.
package monitor

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/banshee-data/motion.swarm/internal/config"
	"github.com/banshee-data/motion.swarm/internal/db"
	"github.com/banshee-data/motion.swarm/internal/monitoring"
	"github.com/banshee-data/motion.swarm/internal/sim"
	"github.com/banshee-data/motion.swarm/internal/timeutil"
)

// Simulation is the part of *sim.Simulation the monitor reads and drives.
type Simulation interface {
	Snapshot() sim.Snapshot
	Config() *config.TuningConfig
	Enqueue(in sim.Input)
}

// Store is the persistence the monitor exposes. *db.DB implements it.
type Store interface {
	RecentCalibrations(limit int) ([]db.CalibrationRecord, error)
	CalibrationCounts() (map[string]int, error)
	SavePreset(name string, cfg *config.TuningConfig) error
	LoadPreset(name string) (*config.TuningConfig, error)
	ListPresets() ([]string, error)
	DeletePreset(name string) error
}

// DefaultStreamInterval is the websocket frame period when none is configured.
const DefaultStreamInterval = 50 * time.Millisecond

// WebServer handles the HTTP interface for monitoring a simulation.
type WebServer struct {
	address        string
	sim            Simulation
	store          Store
	clock          timeutil.Clock
	streamInterval time.Duration
	started        time.Time

	server    *http.Server
	closing   chan struct{}
	closeOnce sync.Once
}

// WebServerConfig contains configuration options for the web server.
type WebServerConfig struct {
	Address string
	Sim     Simulation
	// Store is optional; persistence endpoints answer 503 without it.
	Store          Store
	Clock          timeutil.Clock
	StreamInterval time.Duration
}

// NewWebServer creates a new web server with the provided configuration.
func NewWebServer(cfg WebServerConfig) *WebServer {
	clock := cfg.Clock
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	interval := cfg.StreamInterval
	if interval <= 0 {
		interval = DefaultStreamInterval
	}
	ws := &WebServer{
		address:        cfg.Address,
		sim:            cfg.Sim,
		store:          cfg.Store,
		clock:          clock,
		streamInterval: interval,
		started:        clock.Now(),
		closing:        make(chan struct{}),
	}
	ws.server = &http.Server{
		Addr:              ws.address,
		Handler:           ws.setupRoutes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return ws
}

// Handler returns the routed handler, for tests and in-process clients.
func (ws *WebServer) Handler() http.Handler { return ws.server.Handler }

// Start serves until ctx is cancelled, then shuts down gracefully.
// A listen failure is returned immediately.
func (ws *WebServer) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", ws.address)
	if err != nil {
		return err
	}
	return ws.Serve(ctx, ln)
}

// Serve is Start on an existing listener.
func (ws *WebServer) Serve(ctx context.Context, ln net.Listener) error {
	errc := make(chan error, 1)
	go func() {
		monitoring.Opsf("Starting HTTP server on %s", ln.Addr())
		if err := ws.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		if err != nil {
			return err
		}
		return nil
	case <-ctx.Done():
	}
	monitoring.Opsf("shutting down HTTP server...")
	// Hijacked websocket connections are not tracked by Shutdown.
	ws.closeOnce.Do(func() { close(ws.closing) })

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	if err := ws.server.Shutdown(shutdownCtx); err != nil {
		monitoring.Opsf("HTTP server shutdown error: %v", err)
		if err := ws.server.Close(); err != nil {
			monitoring.Opsf("HTTP server force close error: %v", err)
		}
	}

	monitoring.Opsf("HTTP server routine stopped")
	return nil
}

// setupRoutes configures the HTTP routes and handlers
func (ws *WebServer) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", ws.handleHealth)
	mux.HandleFunc("/api/params", ws.handleParams)
	mux.HandleFunc("/api/keys", ws.handleKeys)
	mux.HandleFunc("/api/hotspots", ws.handleHotspots)
	mux.HandleFunc("/api/snapshot", ws.handleSnapshot)
	mux.HandleFunc("/api/calibrations", ws.handleCalibrations)
	mux.HandleFunc("/api/presets", ws.handlePresets)
	mux.HandleFunc("/api/presets/{name}", ws.handlePreset)

	mux.HandleFunc("/debug/", ws.handleDebugDashboard)
	mux.HandleFunc("/debug/hotspots", ws.handleHotspotChart)
	mux.HandleFunc("/debug/calibration", ws.handleCalibrationChart)
	mux.HandleFunc("/debug/calibration.png", ws.handleCalibrationPlot)
	mux.HandleFunc("/debug/motion.png", ws.handleMotionHeatmap)

	mux.HandleFunc("/ws/agents", ws.handleAgentStream)

	return mux
}
