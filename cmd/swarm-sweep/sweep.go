package main

import (
	"encoding/csv"
	"fmt"
	"time"

	"github.com/banshee-data/motion.swarm/internal/config"
	"github.com/banshee-data/motion.swarm/internal/monitor"
	"github.com/banshee-data/motion.swarm/internal/monitoring"
)

type combo struct {
	ThresholdScale float64
	BaselineRate   float64
}

// SampleResult is one /api/hotspots reading.
type SampleResult struct {
	Tick          int64
	MotionPercent float64
	Flagged       int
	Hotspots      int
	Active        int
	Intensity     float64
}

type runner struct {
	client  *monitor.Client
	summary *csv.Writer
	raw     *csv.Writer

	iterations int
	interval   time.Duration
	settle     int64
	reseed     bool
}

var (
	summaryHeader = []string{
		"threshold_scale", "baseline_rate", "samples",
		"motion_pct_mean", "motion_pct_stddev",
		"hotspots_mean", "hotspots_stddev",
		"active_mean", "active_stddev",
		"intensity_mean", "intensity_stddev",
	}
	rawHeader = []string{
		"threshold_scale", "baseline_rate", "iter", "tick",
		"motion_pct", "flagged", "hotspots", "active", "intensity_mean",
	}
)

func (r *runner) run(grid []combo) error {
	if err := r.summary.Write(summaryHeader); err != nil {
		return err
	}
	if err := r.raw.Write(rawHeader); err != nil {
		return err
	}
	for i, c := range grid {
		monitoring.Opsf("=== Combination %d/%d: threshold_scale=%.2f, baseline_rate=%.4f ===",
			i+1, len(grid), c.ThresholdScale, c.BaselineRate)
		results, err := r.runCombo(c)
		if err != nil {
			monitoring.Opsf("ERROR: combination %d failed: %v", i+1, err)
			continue
		}
		if err := r.writeSummary(c, results); err != nil {
			return err
		}
	}
	r.summary.Flush()
	r.raw.Flush()
	if err := r.summary.Error(); err != nil {
		return err
	}
	return r.raw.Error()
}

// runCombo applies one parameter pair, lets the baseline settle and then
// takes one sample per new tick.
func (r *runner) runCombo(c combo) ([]SampleResult, error) {
	manual := config.CalibrationManual
	patch := &config.TuningConfig{
		ThresholdScale:     &c.ThresholdScale,
		BaselineUpdateRate: &c.BaselineRate,
		CalibrationMode:    &manual,
	}
	if _, err := r.client.SetParams(patch); err != nil {
		return nil, fmt.Errorf("set params: %w", err)
	}
	if r.reseed {
		if err := r.client.SendKey('b'); err != nil {
			monitoring.Opsf("WARNING: baseline reseed failed: %v", err)
		}
	}

	h, err := r.client.Health()
	if err != nil {
		return nil, err
	}
	if _, err := r.client.WaitForTick(h.Tick+r.settle, r.interval, 0); err != nil {
		return nil, fmt.Errorf("settle: %w", err)
	}

	results := make([]SampleResult, 0, r.iterations)
	for iter := 0; iter < r.iterations; iter++ {
		hs, err := r.client.Hotspots()
		if err != nil {
			return results, fmt.Errorf("sample %d: %w", iter, err)
		}
		res := SampleResult{
			Tick:          hs.Tick,
			MotionPercent: hs.MotionPercent,
			Flagged:       hs.Stats.Flagged,
			Hotspots:      len(hs.Hotspots),
			Active:        len(hs.Active),
			Intensity:     hs.IntensityMean,
		}
		results = append(results, res)
		if err := writeRawRow(r.raw, c, iter, res); err != nil {
			return results, err
		}
		monitoring.Diagf("  [%d/%d] tick=%d motion=%.2f%% hotspots=%d active=%d",
			iter+1, r.iterations, res.Tick, res.MotionPercent, res.Hotspots, res.Active)
		if iter+1 < r.iterations {
			if _, err := r.client.WaitForTick(hs.Tick+1, r.interval, 0); err != nil {
				return results, err
			}
		}
	}
	return results, nil
}

func writeRawRow(w *csv.Writer, c combo, iter int, res SampleResult) error {
	return w.Write([]string{
		fmt.Sprintf("%.4f", c.ThresholdScale),
		fmt.Sprintf("%.6f", c.BaselineRate),
		fmt.Sprintf("%d", iter),
		fmt.Sprintf("%d", res.Tick),
		fmt.Sprintf("%.4f", res.MotionPercent),
		fmt.Sprintf("%d", res.Flagged),
		fmt.Sprintf("%d", res.Hotspots),
		fmt.Sprintf("%d", res.Active),
		fmt.Sprintf("%.4f", res.Intensity),
	})
}

func (r *runner) writeSummary(c combo, results []SampleResult) error {
	motion := make([]float64, len(results))
	hotspots := make([]float64, len(results))
	active := make([]float64, len(results))
	intensity := make([]float64, len(results))
	for i, res := range results {
		motion[i] = res.MotionPercent
		hotspots[i] = float64(res.Hotspots)
		active[i] = float64(res.Active)
		intensity[i] = res.Intensity
	}
	mMean, mStd := meanStddev(motion)
	hMean, hStd := meanStddev(hotspots)
	aMean, aStd := meanStddev(active)
	iMean, iStd := meanStddev(intensity)

	return r.summary.Write([]string{
		fmt.Sprintf("%.4f", c.ThresholdScale),
		fmt.Sprintf("%.6f", c.BaselineRate),
		fmt.Sprintf("%d", len(results)),
		fmt.Sprintf("%.4f", mMean), fmt.Sprintf("%.4f", mStd),
		fmt.Sprintf("%.4f", hMean), fmt.Sprintf("%.4f", hStd),
		fmt.Sprintf("%.4f", aMean), fmt.Sprintf("%.4f", aStd),
		fmt.Sprintf("%.4f", iMean), fmt.Sprintf("%.4f", iStd),
	})
}
