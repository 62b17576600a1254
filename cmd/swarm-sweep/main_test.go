package main

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/motion.swarm/internal/config"
	"github.com/banshee-data/motion.swarm/internal/httputil"
	"github.com/banshee-data/motion.swarm/internal/monitor"
	"github.com/banshee-data/motion.swarm/internal/sim"
	"github.com/banshee-data/motion.swarm/internal/testutil"
)

func TestParseCSVFloatSlice(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		in      string
		want    []float64
		wantErr bool
	}{
		{"empty", "", nil, false},
		{"list", "1, 1.5,2", []float64{1, 1.5, 2}, false},
		{"bad", "1,x", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseCSVFloatSlice(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGenerateRange(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []float64{1, 1.5, 2, 2.5, 3}, generateRange(1, 3, 0.5))
	assert.Equal(t, []float64{0.001, 0.004, 0.007, 0.01}, generateRange(0.001, 0.01, 0.003))
	assert.Len(t, generateRange(0, 0.05, 0), 6)
	assert.Empty(t, generateRange(2, 1, 0.5))
}

func TestMeanStddev(t *testing.T) {
	t.Parallel()
	m, s := meanStddev(nil)
	assert.Zero(t, m)
	assert.Zero(t, s)

	m, s = meanStddev([]float64{4})
	assert.Equal(t, 4.0, m)
	assert.Zero(t, s)

	m, s = meanStddev([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	assert.Equal(t, 5.0, m)
	assert.InDelta(t, 2.138, s, 1e-3)
}

func TestCombos(t *testing.T) {
	t.Parallel()
	scales := []float64{1, 2}
	rates := []float64{0.001, 0.01}

	got, err := combos("multi", scales, rates, 9, 9)
	require.NoError(t, err)
	want := []combo{{1, 0.001}, {1, 0.01}, {2, 0.001}, {2, 0.01}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("multi combos mismatch (-want +got):\n%s", diff)
	}

	got, err = combos("threshold", scales, rates, 9, 0.005)
	require.NoError(t, err)
	assert.Equal(t, []combo{{1, 0.005}, {2, 0.005}}, got)

	got, err = combos("baseline", scales, rates, 1.5, 9)
	require.NoError(t, err)
	assert.Equal(t, []combo{{1.5, 0.001}, {1.5, 0.01}}, got)

	_, err = combos("noise", scales, rates, 1, 1)
	assert.Error(t, err)
}

func readCSV(t *testing.T, b *bytes.Buffer) [][]string {
	t.Helper()
	rows, err := csv.NewReader(b).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestRunner_AgainstMonitor(t *testing.T) {
	t.Parallel()
	src := testutil.NewFakeSource(testutil.SolidFrame(320, 240, 40))
	s := sim.New(config.DefaultTuningConfig(), src, 320, 240, sim.WithSeed(11))
	ws := monitor.NewWebServer(monitor.WebServerConfig{Sim: s})
	hc := httputil.NewHandlerClient(ws.Handler())

	client := monitor.NewClient(hc, "http://monitor")
	client.Sleep = func(time.Duration) { s.Tick() }

	var summary, raw bytes.Buffer
	r := &runner{
		client:     client,
		summary:    csv.NewWriter(&summary),
		raw:        csv.NewWriter(&raw),
		iterations: 3,
		interval:   time.Millisecond,
		settle:     2,
		reseed:     true,
	}
	require.NoError(t, r.run([]combo{{1.0, 0.002}, {1.5, 0.004}}))

	sumRows := readCSV(t, &summary)
	require.Len(t, sumRows, 3)
	assert.Equal(t, summaryHeader, sumRows[0])
	assert.Equal(t, []string{"1.0000", "0.002000", "3"}, sumRows[1][:3])
	assert.Len(t, sumRows[1], len(summaryHeader))
	assert.Equal(t, []string{"1.5000", "0.004000", "3"}, sumRows[2][:3])
	// A static scene never flags motion.
	assert.Equal(t, "0.0000", sumRows[1][3])

	rawRows := readCSV(t, &raw)
	require.Len(t, rawRows, 7)
	assert.Equal(t, rawHeader, rawRows[0])
	assert.Len(t, rawRows[1], len(rawHeader))
	var ticks []string
	for _, row := range rawRows[1:] {
		ticks = append(ticks, row[3])
	}
	assert.Equal(t, []string{"2", "3", "4", "6", "7", "8"}, ticks)

	snap := s.Snapshot()
	assert.Equal(t, 1.5, snap.ThresholdScale)
	assert.InDelta(t, 0.004, snap.BaselineRate, 1e-6)
	assert.Equal(t, config.CalibrationManual, snap.CalibrationMode)

	reqs := hc.Requests()
	assert.Equal(t, "POST /api/params", reqs[0])
	assert.Equal(t, "POST /api/keys", reqs[1])
	assert.Equal(t, "GET /health", reqs[2])
}

func TestRunner_SkipsFailedCombination(t *testing.T) {
	t.Parallel()
	mock := httputil.NewMockHTTPClient().
		AddResponse(http.StatusBadRequest, `{"error":"threshold_scale must be between 0.2 and 5.0"}`)
	client := monitor.NewClient(mock, "http://monitor")
	client.Sleep = func(time.Duration) {}

	var summary, raw bytes.Buffer
	r := &runner{
		client:     client,
		summary:    csv.NewWriter(&summary),
		raw:        csv.NewWriter(&raw),
		iterations: 1,
	}
	require.NoError(t, r.run([]combo{{9, 0.002}}))

	assert.Len(t, readCSV(t, &summary), 1)
	assert.Len(t, readCSV(t, &raw), 1)
	assert.Equal(t, 1, mock.RequestCount())
}
