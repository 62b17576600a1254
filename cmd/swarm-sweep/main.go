// Command swarm-sweep drives a running swarm monitor through a grid of
// detection parameters and records how much motion and how many hotspots
// each combination produces. Results go to a summary CSV and a raw CSV.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/motion.swarm/internal/httputil"
	"github.com/banshee-data/motion.swarm/internal/monitor"
	"github.com/banshee-data/motion.swarm/internal/monitoring"
)

// parseCSVFloatSlice parses a comma-separated list of floats
func parseCSVFloatSlice(s string) ([]float64, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid float '%s': %w", p, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func generateRange(start, end, step float64) []float64 {
	if step <= 0 {
		step = 0.01
	}
	var result []float64
	for v := start; v <= end+1e-9; v += step {
		result = append(result, math.Round(v*1e6)/1e6)
	}
	return result
}

// paramList returns the explicit list when given, otherwise the range.
func paramList(list string, start, end, step float64) ([]float64, error) {
	if list != "" {
		return parseCSVFloatSlice(list)
	}
	return generateRange(start, end, step), nil
}

// meanStddev returns the mean and sample standard deviation of xs.
func meanStddev(xs []float64) (float64, float64) {
	switch len(xs) {
	case 0:
		return 0, 0
	case 1:
		return xs[0], 0
	}
	return stat.MeanStdDev(xs, nil)
}

// combos expands the sweep mode into (threshold scale, baseline rate) pairs.
func combos(mode string, scales, rates []float64, fixedScale, fixedRate float64) ([]combo, error) {
	switch mode {
	case "multi":
	case "threshold":
		rates = []float64{fixedRate}
	case "baseline":
		scales = []float64{fixedScale}
	default:
		return nil, fmt.Errorf("invalid sweep mode: %s (must be multi, threshold or baseline)", mode)
	}
	out := make([]combo, 0, len(scales)*len(rates))
	for _, s := range scales {
		for _, r := range rates {
			out = append(out, combo{ThresholdScale: s, BaselineRate: r})
		}
	}
	return out, nil
}

func main() {
	monitorURL := flag.String("monitor", "http://localhost:8080", "Base URL for the swarm monitor")
	output := flag.String("output", "", "Output CSV filename (defaults to sweep-<mode>-<timestamp>.csv)")
	sweepMode := flag.String("mode", "multi", "Sweep mode: 'multi' (all combinations), 'threshold' (vary threshold scale only), 'baseline' (vary baseline rate only)")

	scaleList := flag.String("scales", "", "Comma-separated threshold scales (e.g. 1.0,1.5,2.0)")
	scaleStart := flag.Float64("scale-start", 1.0, "Start threshold scale")
	scaleEnd := flag.Float64("scale-end", 3.0, "End threshold scale")
	scaleStep := flag.Float64("scale-step", 0.5, "Threshold scale step")

	rateList := flag.String("rates", "", "Comma-separated baseline update rates (e.g. 0.001,0.005)")
	rateStart := flag.Float64("rate-start", 0.001, "Start baseline update rate")
	rateEnd := flag.Float64("rate-end", 0.01, "End baseline update rate")
	rateStep := flag.Float64("rate-step", 0.003, "Baseline update rate step")

	fixedScale := flag.Float64("fixed-scale", 2.0, "Threshold scale when not sweeping it")
	fixedRate := flag.Float64("fixed-rate", 0.005, "Baseline update rate when not sweeping it")

	iterations := flag.Int("iterations", 30, "Samples per parameter combination")
	interval := flag.Duration("interval", 100*time.Millisecond, "Poll interval while waiting for new ticks")
	settle := flag.Int64("settle-ticks", 60, "Ticks to wait after applying parameters before sampling")
	reseed := flag.Bool("reseed", true, "Reseed the baseline before each combination")
	timeout := flag.Duration("timeout", httputil.DefaultTimeout, "HTTP request timeout")
	flag.Parse()

	monitoring.SetLogWriters(monitoring.LogWriters{Ops: os.Stderr, Diag: os.Stderr})

	scales, err := paramList(*scaleList, *scaleStart, *scaleEnd, *scaleStep)
	if err != nil {
		log.Fatalf("Invalid parameter list: %v", err)
	}
	rates, err := paramList(*rateList, *rateStart, *rateEnd, *rateStep)
	if err != nil {
		log.Fatalf("Invalid parameter list: %v", err)
	}
	grid, err := combos(*sweepMode, scales, rates, *fixedScale, *fixedRate)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("Sweep mode: %s, %d combinations", *sweepMode, len(grid))

	filename := *output
	if filename == "" {
		filename = fmt.Sprintf("sweep-%s-%s.csv", *sweepMode, time.Now().Format("20060102-150405"))
	}
	f, err := os.Create(filename)
	if err != nil {
		log.Fatalf("Could not create output file %s: %v", filename, err)
	}
	defer f.Close()

	rawFilename := strings.TrimSuffix(filename, ".csv") + "-raw.csv"
	fRaw, err := os.Create(rawFilename)
	if err != nil {
		log.Fatalf("Could not create raw output file %s: %v", rawFilename, err)
	}
	defer fRaw.Close()

	hc := httputil.NewStandardClient(nil)
	hc.Timeout = *timeout
	r := &runner{
		client:     monitor.NewClient(hc, *monitorURL),
		summary:    csv.NewWriter(f),
		raw:        csv.NewWriter(fRaw),
		iterations: *iterations,
		interval:   *interval,
		settle:     *settle,
		reseed:     *reseed,
	}
	if err := r.run(grid); err != nil {
		log.Fatalf("Sweep failed: %v", err)
	}

	log.Printf("Sweep complete!")
	log.Printf("Summary: %s", filename)
	log.Printf("Raw data: %s", rawFilename)
}
