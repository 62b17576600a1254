package monitor

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/motion.swarm/internal/calibration"
	"github.com/banshee-data/motion.swarm/internal/httputil"
)

const echartsAssetsPrefix = "https://go-echarts.github.io/go-echarts-assets/assets/"

var viridis = []string{"#440154", "#482777", "#3e4989", "#31688e", "#26828e", "#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725"}

const dashboardHTML = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>swarm debug</title>
<style>body{background:#111;color:#ddd;font-family:sans-serif}iframe{border:0;background:#100c2a}</style>
</head>
<body>
<h2>swarm debug</h2>
<p>tick %d, policy %s, calibration %s (%s), threshold scale %.2f</p>
<iframe src="/debug/hotspots" width="960" height="720"></iframe>
<iframe src="/debug/calibration" width="960" height="520"></iframe>
<p><img src="/debug/motion.png" width="720"> <img src="/debug/calibration.png" width="720"></p>
</body>
</html>`

// handleDebugDashboard renders a page with iframes to the debug charts.
func (ws *WebServer) handleDebugDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/debug/" {
		http.NotFound(w, r)
		return
	}
	snap := ws.sim.Snapshot()
	doc := fmt.Sprintf(dashboardHTML, snap.Tick, snap.Policy, snap.CalibrationMode, snap.CalibrationState, snap.ThresholdScale)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(doc))
}

// handleHotspotChart renders every hotspot of the last pass as a scatter in
// display coordinates, coloured by intensity. Active hotspots get a second
// series drawn larger.
func (ws *WebServer) handleHotspotChart(w http.ResponseWriter, r *http.Request) {
	snap := ws.sim.Snapshot()

	all := make([]opts.ScatterData, 0, len(snap.Hotspots))
	maxIntensity := 1.0
	for _, h := range snap.Hotspots {
		all = append(all, opts.ScatterData{Value: []interface{}{h.X, h.Y, h.Intensity, h.Size}})
		maxIntensity = max(maxIntensity, h.Intensity)
	}
	active := make([]opts.ScatterData, 0, len(snap.Active))
	for _, h := range snap.Active {
		active = append(active, opts.ScatterData{Value: []interface{}{h.X, h.Y, h.Intensity, h.Size}})
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Motion Hotspots", Theme: "dark", Width: "900px", Height: "680px", AssetsHost: echartsAssetsPrefix}),
		charts.WithTitleOpts(opts.Title{Title: "Motion Hotspots", Subtitle: fmt.Sprintf("tick=%d hotspots=%d active=%d motion=%.2f%%", snap.Tick, len(all), len(active), snap.Stats.Percent())}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: 0, Max: snap.Width, Name: "x (px)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: 0, Max: snap.Height, Inverse: opts.Bool(true), Name: "y (px)", NameLocation: "middle", NameGap: 30}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Dimension:  "2",
			Min:        0,
			Max:        float32(maxIntensity),
			InRange:    &opts.VisualMapInRange{Color: viridis},
		}),
	)
	scatter.AddSeries("hotspots", all, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 8}))
	scatter.AddSeries("active", active, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 18}))

	var buf bytes.Buffer
	if err := scatter.Render(&buf); err != nil {
		httputil.InternalServerError(w, "failed to render chart: "+err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// handleCalibrationChart plots the samples of the running calibration
// window. When none is running it plots stored runs instead, oldest first.
func (ws *WebServer) handleCalibrationChart(w http.ResponseWriter, r *http.Request) {
	snap := ws.sim.Snapshot()

	var (
		title    string
		subtitle string
		labels   []string
		series   [3][]opts.LineData
	)
	switch {
	case len(snap.CalibrationSamples) > 0:
		title = "Calibration Window"
		subtitle = fmt.Sprintf("tick=%d samples=%d", snap.Tick, len(snap.CalibrationSamples))
		for i, s := range snap.CalibrationSamples {
			labels = append(labels, strconv.Itoa(i+1))
			appendSample(&series, s)
		}
	case ws.store != nil:
		runs, err := ws.store.RecentCalibrations(50)
		if err != nil {
			httputil.InternalServerError(w, err.Error())
			return
		}
		title = "Calibration History"
		subtitle = fmt.Sprintf("runs=%d", len(runs))
		for i := len(runs) - 1; i >= 0; i-- {
			run := runs[i]
			labels = append(labels, run.FinishedAt.Format("01-02 15:04:05"))
			appendSample(&series, calibration.Sample{Motion: run.Motion, Contrast: run.Contrast, Noise: run.Noise})
		}
	default:
		title = "Calibration"
		subtitle = "no samples"
		if snap.Calibration != nil {
			res := snap.Calibration
			subtitle = fmt.Sprintf("last run: bucket=%s scale=%.2f", res.Bucket, res.ThresholdScale)
			labels = append(labels, "last")
			appendSample(&series, calibration.Sample{Motion: res.Motion, Contrast: res.Contrast, Noise: res.Noise})
		}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Theme: "dark", Width: "900px", Height: "480px", AssetsHost: echartsAssetsPrefix}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "30"}),
	)
	line.SetXAxis(labels).
		AddSeries("motion %", series[0]).
		AddSeries("contrast", series[1]).
		AddSeries("noise", series[2])

	var buf bytes.Buffer
	if err := line.Render(&buf); err != nil {
		httputil.InternalServerError(w, "failed to render chart: "+err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// appendSample adds one measurement; motion is shown as a percentage so the
// three series share an axis.
func appendSample(series *[3][]opts.LineData, s calibration.Sample) {
	series[0] = append(series[0], opts.LineData{Value: s.Motion * 100})
	series[1] = append(series[1], opts.LineData{Value: s.Contrast})
	series[2] = append(series[2], opts.LineData{Value: s.Noise})
}
