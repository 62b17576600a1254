package monitor

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"io"
	"net/http"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/motion.swarm/internal/calibration"
	"github.com/banshee-data/motion.swarm/internal/httputil"
	"github.com/banshee-data/motion.swarm/internal/motion"
)

// ErrEmptyGrid is returned when there is no motion grid to plot.
var ErrEmptyGrid = errors.New("motion grid is empty")

// motionGrid adapts GridStats to plotter.GridXYZ. Coordinates are cell
// centres in display pixels.
type motionGrid struct {
	g        motion.GridStats
	min, max float64
}

func newMotionGrid(g motion.GridStats) *motionGrid {
	m := &motionGrid{g: g}
	for i, v := range g.Mean {
		if i == 0 || v < m.min {
			m.min = v
		}
		if i == 0 || v > m.max {
			m.max = v
		}
	}
	// A flat grid still needs a non-empty palette range.
	if m.max <= m.min {
		m.max = m.min + 1
	}
	return m
}

func (m *motionGrid) Dims() (c, r int)   { return m.g.Cols, m.g.Rows }
func (m *motionGrid) Z(c, r int) float64 { return m.g.Mean[r*m.g.Cols+c] }
func (m *motionGrid) X(c int) float64    { return (float64(c) + 0.5) * float64(m.g.CellSize) }
func (m *motionGrid) Y(r int) float64    { return (float64(r) + 0.5) * float64(m.g.CellSize) }
func (m *motionGrid) Min() float64       { return m.min }
func (m *motionGrid) Max() float64       { return m.max }

// WriteMotionHeatmap renders the mean motion per hotspot-grid cell as a PNG.
// The y axis is inverted so the image reads like the display.
func WriteMotionHeatmap(w io.Writer, g motion.GridStats, title string) error {
	if g.Cols == 0 || g.Rows == 0 || len(g.Mean) < g.Cols*g.Rows {
		return ErrEmptyGrid
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "x (px)"
	p.Y.Label.Text = "y (px)"
	p.Y.Scale = plot.InvertedScale{Normalizer: plot.LinearScale{}}

	grid := newMotionGrid(g)
	hm := plotter.NewHeatMap(grid, palette.Heat(32, 1))
	p.Add(hm)
	p.X.Min, p.X.Max = 0, float64(g.Cols*g.CellSize)
	p.Y.Min, p.Y.Max = 0, float64(g.Rows*g.CellSize)

	wt, err := p.WriterTo(8*vg.Inch, vg.Length(float64(8*vg.Inch)*float64(g.Rows)/float64(g.Cols)), "png")
	if err != nil {
		return fmt.Errorf("failed to render heatmap: %w", err)
	}
	_, err = wt.WriteTo(w)
	return err
}

// WriteCalibrationPlot renders a calibration sample series as a PNG.
// Motion is plotted as a percentage.
func WriteCalibrationPlot(w io.Writer, samples []calibration.Sample, title string) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "sample"
	p.Legend.Top = true

	motionPts := make(plotter.XYs, len(samples))
	contrastPts := make(plotter.XYs, len(samples))
	noisePts := make(plotter.XYs, len(samples))
	for i, s := range samples {
		x := float64(i + 1)
		motionPts[i] = plotter.XY{X: x, Y: s.Motion * 100}
		contrastPts[i] = plotter.XY{X: x, Y: s.Contrast}
		noisePts[i] = plotter.XY{X: x, Y: s.Noise}
	}

	series := []struct {
		name string
		pts  plotter.XYs
		col  color.RGBA
	}{
		{"motion %", motionPts, color.RGBA{R: 230, G: 80, B: 60, A: 255}},
		{"contrast", contrastPts, color.RGBA{R: 60, G: 140, B: 230, A: 255}},
		{"noise", noisePts, color.RGBA{R: 90, G: 190, B: 90, A: 255}},
	}
	for _, s := range series {
		if len(s.pts) == 0 {
			continue
		}
		l, err := plotter.NewLine(s.pts)
		if err != nil {
			return fmt.Errorf("failed to create %s line: %w", s.name, err)
		}
		l.Color = s.col
		l.Width = vg.Points(1.5)
		p.Add(l)
		p.Legend.Add(s.name, l)
	}

	wt, err := p.WriterTo(10*vg.Inch, 4*vg.Inch, "png")
	if err != nil {
		return fmt.Errorf("failed to render calibration plot: %w", err)
	}
	_, err = wt.WriteTo(w)
	return err
}

// handleMotionHeatmap serves the hotspot grid of the last detection pass.
// The grid is only published while the debug view is on.
func (ws *WebServer) handleMotionHeatmap(w http.ResponseWriter, r *http.Request) {
	snap := ws.sim.Snapshot()

	var buf bytes.Buffer
	err := WriteMotionHeatmap(&buf, snap.Grid, fmt.Sprintf("motion grid, tick %d", snap.Tick))
	if errors.Is(err, ErrEmptyGrid) {
		httputil.WriteJSONError(w, http.StatusConflict, "motion grid is empty; enable the debug view")
		return
	}
	if err != nil {
		httputil.InternalServerError(w, err.Error())
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(buf.Bytes())
}

// handleCalibrationPlot is the PNG counterpart of /debug/calibration.
func (ws *WebServer) handleCalibrationPlot(w http.ResponseWriter, r *http.Request) {
	snap := ws.sim.Snapshot()

	samples := snap.CalibrationSamples
	title := fmt.Sprintf("calibration window, tick %d", snap.Tick)
	if len(samples) == 0 && ws.store != nil {
		runs, err := ws.store.RecentCalibrations(50)
		if err != nil {
			httputil.InternalServerError(w, err.Error())
			return
		}
		for i := len(runs) - 1; i >= 0; i-- {
			samples = append(samples, calibration.Sample{Motion: runs[i].Motion, Contrast: runs[i].Contrast, Noise: runs[i].Noise})
		}
		title = fmt.Sprintf("calibration history, %d runs", len(runs))
	}

	var buf bytes.Buffer
	if err := WriteCalibrationPlot(&buf, samples, title); err != nil {
		httputil.InternalServerError(w, err.Error())
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(buf.Bytes())
}
