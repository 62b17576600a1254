package monitor

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"
	"unicode/utf8"

	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/motion.swarm/internal/config"
	"github.com/banshee-data/motion.swarm/internal/db"
	"github.com/banshee-data/motion.swarm/internal/httputil"
	"github.com/banshee-data/motion.swarm/internal/motion"
	"github.com/banshee-data/motion.swarm/internal/sim"
	"github.com/banshee-data/motion.swarm/internal/version"
)

const maxCalibrationLimit = 500

// HealthResponse is the /health body.
type HealthResponse struct {
	Status  string  `json:"status"`
	Tick    int64   `json:"tick"`
	Version string  `json:"version"`
	Uptime  float64 `json:"uptime_s"`
}

// HotspotsResponse is the /api/hotspots body.
type HotspotsResponse struct {
	Tick          int64              `json:"tick"`
	Stats         motion.DetectStats `json:"stats"`
	MotionPercent float64            `json:"motion_percent"`
	Hotspots      []motion.Hotspot   `json:"hotspots"`
	Active        []motion.Hotspot   `json:"active"`

	// Mean and sample standard deviation of the active intensities.
	IntensityMean   float64 `json:"intensity_mean"`
	IntensityStdDev float64 `json:"intensity_stddev"`
}

// CalibrationsResponse is the /api/calibrations body.
type CalibrationsResponse struct {
	Runs   []db.CalibrationRecord `json:"runs"`
	Counts map[string]int         `json:"counts"`
}

// KeyRequest is the /api/keys body: a single key as typed on the display.
type KeyRequest struct {
	Key string `json:"key"`
}

// PresetRequest is the POST /api/presets body. A nil Config saves the
// simulation's live configuration.
type PresetRequest struct {
	Name   string               `json:"name"`
	Config *config.TuningConfig `json:"config,omitempty"`
}

func (ws *WebServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSONOK(w, HealthResponse{
		Status:  "ok",
		Tick:    ws.sim.Snapshot().Tick,
		Version: version.String(),
		Uptime:  ws.clock.Now().Sub(ws.started).Round(time.Millisecond).Seconds(),
	})
}

// handleParams returns the live tuning config on GET. POST accepts a partial
// config; it is validated against the live values and applied at the next
// tick. The response is the config as it will be after that tick.
func (ws *WebServer) handleParams(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		httputil.WriteJSONOK(w, ws.sim.Config())
	case http.MethodPost:
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, httputil.MaxJSONBody))
		if err != nil {
			httputil.BadRequest(w, "failed to read body: "+err.Error())
			return
		}
		patch, err := config.ParseTuningConfig(body)
		if err != nil {
			httputil.BadRequest(w, err.Error())
			return
		}
		next := ws.sim.Config().Merge(patch)
		if err := next.Validate(); err != nil {
			httputil.BadRequest(w, err.Error())
			return
		}
		ws.sim.Enqueue(sim.Params(patch))
		httputil.WriteJSON(w, http.StatusAccepted, next)
	default:
		httputil.MethodNotAllowed(w)
	}
}

func (ws *WebServer) handleKeys(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}
	var req KeyRequest
	if err := httputil.DecodeJSONBody(r, &req); err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	if utf8.RuneCountInString(req.Key) != 1 {
		httputil.BadRequest(w, "key must be a single character")
		return
	}
	k, _ := utf8.DecodeRuneInString(req.Key)
	ws.sim.Enqueue(sim.Key(k))
	httputil.WriteJSON(w, http.StatusAccepted, req)
}

func intensitySummary(hs []motion.Hotspot) (mean, std float64) {
	switch len(hs) {
	case 0:
		return 0, 0
	case 1:
		return hs[0].Intensity, 0
	}
	xs := make([]float64, len(hs))
	for i, h := range hs {
		xs[i] = h.Intensity
	}
	return stat.MeanStdDev(xs, nil)
}

func (ws *WebServer) handleHotspots(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	snap := ws.sim.Snapshot()
	resp := HotspotsResponse{
		Tick:          snap.Tick,
		Stats:         snap.Stats,
		MotionPercent: snap.Stats.Percent(),
		Hotspots:      snap.Hotspots,
		Active:        snap.Active,
	}
	resp.IntensityMean, resp.IntensityStdDev = intensitySummary(snap.Active)
	if resp.Hotspots == nil {
		resp.Hotspots = []motion.Hotspot{}
	}
	if resp.Active == nil {
		resp.Active = []motion.Hotspot{}
	}
	httputil.WriteJSONOK(w, resp)
}

func (ws *WebServer) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	httputil.WriteJSONOK(w, ws.sim.Snapshot())
}

// handleCalibrations lists stored calibration runs, newest first.
// Query params:
//
//	limit (optional, default 50, max 500)
func (ws *WebServer) handleCalibrations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	if ws.store == nil {
		httputil.WriteJSONError(w, http.StatusServiceUnavailable, "no database configured")
		return
	}
	limit := 50
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			httputil.BadRequest(w, "limit must be a positive integer")
			return
		}
		limit = min(n, maxCalibrationLimit)
	}

	runs, err := ws.store.RecentCalibrations(limit)
	if err != nil {
		httputil.InternalServerError(w, err.Error())
		return
	}
	counts, err := ws.store.CalibrationCounts()
	if err != nil {
		httputil.InternalServerError(w, err.Error())
		return
	}
	if runs == nil {
		runs = []db.CalibrationRecord{}
	}
	httputil.WriteJSONOK(w, CalibrationsResponse{Runs: runs, Counts: counts})
}

func (ws *WebServer) handlePresets(w http.ResponseWriter, r *http.Request) {
	if ws.store == nil {
		httputil.WriteJSONError(w, http.StatusServiceUnavailable, "no database configured")
		return
	}
	switch r.Method {
	case http.MethodGet:
		names, err := ws.store.ListPresets()
		if err != nil {
			httputil.InternalServerError(w, err.Error())
			return
		}
		if names == nil {
			names = []string{}
		}
		httputil.WriteJSONOK(w, map[string][]string{"presets": names})
	case http.MethodPost:
		var req PresetRequest
		if err := httputil.DecodeJSONBody(r, &req); err != nil {
			httputil.BadRequest(w, err.Error())
			return
		}
		cfg := req.Config
		if cfg == nil {
			cfg = ws.sim.Config()
		}
		if err := ws.store.SavePreset(req.Name, cfg); err != nil {
			httputil.BadRequest(w, err.Error())
			return
		}
		httputil.WriteJSON(w, http.StatusCreated, map[string]string{"name": req.Name})
	default:
		httputil.MethodNotAllowed(w)
	}
}

// handlePreset reads (GET), applies (POST) or removes (DELETE) one preset.
func (ws *WebServer) handlePreset(w http.ResponseWriter, r *http.Request) {
	if ws.store == nil {
		httputil.WriteJSONError(w, http.StatusServiceUnavailable, "no database configured")
		return
	}
	name := r.PathValue("name")

	switch r.Method {
	case http.MethodGet, http.MethodPost:
		cfg, err := ws.store.LoadPreset(name)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		if r.Method == http.MethodPost {
			ws.sim.Enqueue(sim.Params(cfg))
			httputil.WriteJSON(w, http.StatusAccepted, cfg)
			return
		}
		httputil.WriteJSONOK(w, cfg)
	case http.MethodDelete:
		if err := ws.store.DeletePreset(name); err != nil {
			writeStoreError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		httputil.MethodNotAllowed(w)
	}
}

func writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, db.ErrPresetNotFound) {
		httputil.NotFound(w, err.Error())
		return
	}
	httputil.InternalServerError(w, err.Error())
}
