package monitor

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/motion.swarm/internal/calibration"
	"github.com/banshee-data/motion.swarm/internal/config"
	"github.com/banshee-data/motion.swarm/internal/db"
	"github.com/banshee-data/motion.swarm/internal/motion"
	"github.com/banshee-data/motion.swarm/internal/sim"
	"github.com/banshee-data/motion.swarm/internal/testutil"
)

const testW, testH = 320, 240

type fixture struct {
	sim   *sim.Simulation
	src   *testutil.FakeSource
	store *db.DB
	ws    *WebServer
}

func newFixture(t *testing.T, js string, withStore bool, opts ...sim.Option) *fixture {
	t.Helper()
	patch, err := config.ParseTuningConfig([]byte(js))
	require.NoError(t, err)
	cfg := config.DefaultTuningConfig().Merge(patch)

	src := testutil.NewFakeSource(testutil.SolidFrame(testW, testH, 20))
	f := &fixture{src: src}
	f.sim = sim.New(cfg, src, testW, testH, append([]sim.Option{sim.WithSeed(3)}, opts...)...)

	wcfg := WebServerConfig{Address: "127.0.0.1:0", Sim: f.sim, StreamInterval: 5 * time.Millisecond}
	if withStore {
		store, err := db.NewDB(filepath.Join(t.TempDir(), "swarm.db"))
		require.NoError(t, err)
		t.Cleanup(func() { store.Close() })
		f.store = store
		wcfg.Store = store
	}
	f.ws = NewWebServer(wcfg)
	return f
}

// do runs one request through the router.
func (f *fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	rec := httptest.NewRecorder()
	f.ws.Handler().ServeHTTP(rec, req)
	return rec
}

// blockScene seeds the baseline on an empty scene, then shows a bright block.
func (f *fixture) blockScene() {
	f.sim.Enqueue(sim.Key('b'))
	f.sim.Tick()
	f.src.SetFrame(testutil.BlockFrame(testW, testH, 101, 81, 20, 20, 255))
	f.sim.Tick()
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	t.Parallel()
	f := newFixture(t, `{}`, false)
	for i := 0; i < 3; i++ {
		f.sim.Tick()
	}

	rec := f.do(t, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	h := decode[HealthResponse](t, rec)
	assert.Equal(t, "ok", h.Status)
	assert.Equal(t, int64(3), h.Tick)
	assert.NotEmpty(t, h.Version)
}

func TestParams(t *testing.T) {
	t.Parallel()
	f := newFixture(t, `{}`, false)

	rec := f.do(t, http.MethodGet, "/api/params", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2.0, decode[*config.TuningConfig](t, rec).GetThresholdScale())

	rec = f.do(t, http.MethodPost, "/api/params", `{"threshold_scale": 1.5, "well_enabled": true}`)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	next := decode[*config.TuningConfig](t, rec)
	assert.Equal(t, 1.5, next.GetThresholdScale())
	assert.True(t, next.GetWellEnabled())

	// Not applied until the next tick.
	assert.Equal(t, 2.0, f.sim.Snapshot().ThresholdScale)
	f.sim.Tick()
	snap := f.sim.Snapshot()
	assert.Equal(t, 1.5, snap.ThresholdScale)
	assert.True(t, snap.Well)
	assert.Equal(t, 1.5, f.sim.Config().GetThresholdScale())

	tests := []struct {
		name   string
		method string
		body   string
		want   int
		errSub string
	}{
		{"malformed", http.MethodPost, `{"threshold_scale":`, http.StatusBadRequest, "failed to parse"},
		{"out of range", http.MethodPost, `{"threshold_scale": 9}`, http.StatusBadRequest, "threshold_scale"},
		{"bad policy", http.MethodPost, `{"policy": "swarmish"}`, http.StatusBadRequest, "policy"},
		{"wrong method", http.MethodPut, `{}`, http.StatusMethodNotAllowed, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, tt.method, "/api/params", tt.body)
			assert.Equal(t, tt.want, rec.Code)
			if tt.errSub != "" {
				assert.Contains(t, decode[map[string]string](t, rec)["error"], tt.errSub)
			}
		})
	}
}

func TestKeys(t *testing.T) {
	t.Parallel()
	f := newFixture(t, `{}`, false)

	rec := f.do(t, http.MethodPost, "/api/keys", `{"key":"d"}`)
	require.Equal(t, http.StatusAccepted, rec.Code)
	f.sim.Tick()
	assert.True(t, f.sim.Snapshot().Debug)

	for _, body := range []string{`{"key":"dd"}`, `{"key":""}`, `{"kee":"d"}`} {
		rec := f.do(t, http.MethodPost, "/api/keys", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
	assert.Equal(t, http.StatusMethodNotAllowed, f.do(t, http.MethodGet, "/api/keys", "").Code)
}

func TestHotspotsAndSnapshot(t *testing.T) {
	t.Parallel()
	f := newFixture(t, `{"detection_interval_hotspot": 1, "detection_step_hotspot": 4, "calibration_mode": "manual"}`, false)

	rec := f.do(t, http.MethodGet, "/api/hotspots", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"active":[]`)

	f.blockScene()

	resp := decode[HotspotsResponse](t, f.do(t, http.MethodGet, "/api/hotspots", ""))
	assert.Equal(t, int64(2), resp.Tick)
	require.Len(t, resp.Active, 1)
	assert.Equal(t, 210.0, resp.Active[0].X)
	assert.Equal(t, 90.0, resp.Active[0].Y)
	assert.Greater(t, resp.MotionPercent, 0.0)
	assert.Equal(t, resp.Active[0].Intensity, resp.IntensityMean)
	assert.Zero(t, resp.IntensityStdDev)

	snap := decode[sim.Snapshot](t, f.do(t, http.MethodGet, "/api/snapshot", ""))
	assert.Equal(t, int64(2), snap.Tick)
	assert.Len(t, snap.Agents, 100)
	assert.Equal(t, "manual", snap.CalibrationMode)
}

func TestIntensitySummary(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		hotspots []motion.Hotspot
		mean     float64
		std      float64
	}{
		{"none", nil, 0, 0},
		{"single", []motion.Hotspot{{Intensity: 70}}, 70, 0},
		{"several", []motion.Hotspot{{Intensity: 60}, {Intensity: 80}, {Intensity: 100}}, 80, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mean, std := intensitySummary(tt.hotspots)
			assert.InDelta(t, tt.mean, mean, 1e-9)
			assert.InDelta(t, tt.std, std, 1e-9)
		})
	}
}

func TestStoreEndpoints_NoStore(t *testing.T) {
	t.Parallel()
	f := newFixture(t, `{}`, false)

	for _, path := range []string{"/api/calibrations", "/api/presets", "/api/presets/night"} {
		rec := f.do(t, http.MethodGet, path, "")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, path)
	}
}

func TestCalibrations(t *testing.T) {
	t.Parallel()
	f := newFixture(t, `{}`, true)

	start := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)
	for i, b := range []calibration.Bucket{calibration.BucketQuiet, calibration.BucketQuiet, calibration.BucketActive} {
		require.NoError(t, f.store.RecordCalibration(calibration.Result{
			Samples:        12,
			Bucket:         b,
			ThresholdScale: b.ThresholdScale(),
			StartedAt:      start.Add(time.Duration(i) * time.Minute),
			FinishedAt:     start.Add(time.Duration(i)*time.Minute + 8*time.Second),
		}))
	}

	resp := decode[CalibrationsResponse](t, f.do(t, http.MethodGet, "/api/calibrations?limit=2", ""))
	require.Len(t, resp.Runs, 2)
	assert.Equal(t, calibration.BucketActive, resp.Runs[0].Bucket)
	assert.Equal(t, map[string]int{"quiet": 2, "active": 1}, resp.Counts)

	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, "/api/calibrations?limit=-1", "").Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, "/api/calibrations?limit=x", "").Code)
}

func TestPresets(t *testing.T) {
	t.Parallel()
	f := newFixture(t, `{}`, true)

	rec := f.do(t, http.MethodPost, "/api/presets", `{"name":"night","config":{"threshold_scale":3}}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// Without a config the live one is saved.
	rec = f.do(t, http.MethodPost, "/api/presets", `{"name":"current"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	list := decode[map[string][]string](t, f.do(t, http.MethodGet, "/api/presets", ""))
	assert.Equal(t, []string{"current", "night"}, list["presets"])

	cfg := decode[*config.TuningConfig](t, f.do(t, http.MethodGet, "/api/presets/night", ""))
	assert.Equal(t, 3.0, cfg.GetThresholdScale())

	rec = f.do(t, http.MethodPost, "/api/presets/night", "")
	require.Equal(t, http.StatusAccepted, rec.Code)
	f.sim.Tick()
	assert.Equal(t, 3.0, f.sim.Snapshot().ThresholdScale)

	assert.Equal(t, http.StatusNoContent, f.do(t, http.MethodDelete, "/api/presets/night", "").Code)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/api/presets/night", "").Code)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodDelete, "/api/presets/night", "").Code)

	tests := []struct {
		name string
		body string
	}{
		{"no name", `{"config":{"threshold_scale":3}}`},
		{"invalid config", `{"name":"x","config":{"threshold_scale":30}}`},
		{"unknown field", `{"name":"x","cfg":{}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/api/presets", tt.body).Code)
		})
	}
}

func TestDebugPages(t *testing.T) {
	t.Parallel()
	f := newFixture(t, `{"detection_interval_hotspot": 1, "detection_step_hotspot": 4, "calibration_mode": "manual"}`, true)
	f.blockScene()

	tests := []struct {
		path string
		want string
	}{
		{"/debug/", "swarm debug"},
		{"/debug/hotspots", "Motion Hotspots"},
		{"/debug/calibration", "Calibration History"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := f.do(t, http.MethodGet, tt.path, "")
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
			assert.Contains(t, rec.Body.String(), tt.want)
		})
	}

	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/debug/nope", "").Code)
}

func TestCalibrationChart_LiveWindow(t *testing.T) {
	t.Parallel()
	f := newFixture(t, `{"calibration_sample_every": 1}`, false)
	f.sim.Tick()
	f.sim.Tick()
	require.NotEmpty(t, f.sim.Snapshot().CalibrationSamples)

	rec := f.do(t, http.MethodGet, "/debug/calibration", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Calibration Window")
}

func TestMotionHeatmap(t *testing.T) {
	t.Parallel()
	f := newFixture(t, `{"detection_interval_debug": 1, "calibration_mode": "manual"}`, false)

	f.sim.Tick()
	rec := f.do(t, http.MethodGet, "/debug/motion.png", "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	f.sim.Enqueue(sim.Key('d'))
	f.blockScene()
	require.True(t, f.sim.Snapshot().Debug)

	rec = f.do(t, http.MethodGet, "/debug/motion.png", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))

	rec = f.do(t, http.MethodGet, "/debug/calibration.png", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))
}

func TestWriteMotionHeatmap(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	assert.ErrorIs(t, WriteMotionHeatmap(&buf, motion.GridStats{}, "empty"), ErrEmptyGrid)
	assert.ErrorIs(t, WriteMotionHeatmap(&buf, motion.GridStats{Cols: 2, Rows: 2, CellSize: 60, Mean: []float64{1}}, "short"), ErrEmptyGrid)

	// A flat grid renders without a palette range.
	flat := motion.GridStats{Cols: 3, Rows: 1, CellSize: 60, Mean: []float64{0, 0, 0}, Count: []int{0, 0, 0}}
	require.NoError(t, WriteMotionHeatmap(&buf, flat, "flat"))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")))

	buf.Reset()
	require.NoError(t, WriteCalibrationPlot(&buf, nil, "empty"))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")))
}

func TestAgentStream(t *testing.T) {
	t.Parallel()
	f := newFixture(t, `{"policy": "flowfield"}`, false)
	f.sim.Tick()

	srv := httptest.NewServer(f.ws.Handler())
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/agents", nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var frame AgentFrame
	require.NoError(t, conn.ReadJSON(&frame))
	assert.Equal(t, int64(1), frame.Tick)
	assert.Equal(t, testW, frame.Width)
	assert.Equal(t, config.PolicyFlowField, frame.Policy)
	assert.Len(t, frame.Agents, 100)
	assert.NotNil(t, frame.Active)

	// Frames only follow new ticks.
	f.sim.Tick()
	require.NoError(t, conn.ReadJSON(&frame))
	assert.Equal(t, int64(2), frame.Tick)
}

func TestAgentStream_RejectsPlainHTTP(t *testing.T) {
	t.Parallel()
	f := newFixture(t, `{}`, false)
	rec := f.do(t, http.MethodGet, "/ws/agents", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServe_ShutsDownAndClosesStreams(t *testing.T) {
	t.Parallel()
	f := newFixture(t, `{}`, false)
	f.sim.Tick()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.ws.Serve(ctx, ln) }()

	base := "http://" + ln.Addr().String()
	resp, err := http.Get(base + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+ln.Addr().String()+"/ws/agents", nil)
	require.NoError(t, err)
	defer conn.Close()
	var frame AgentFrame
	require.NoError(t, conn.ReadJSON(&frame))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)
}

func TestStart_ListenError(t *testing.T) {
	t.Parallel()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	ws := NewWebServer(WebServerConfig{Address: ln.Addr().String(), Sim: sim.New(nil, nil, 32, 32, sim.WithSeed(1))})
	assert.Error(t, ws.Start(context.Background()))
}
