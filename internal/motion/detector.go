package motion

import "math"

// DetectorParams configures the frame differencing engine.
type DetectorParams struct {
	ThresholdScale float64 // global multiplier on the adaptive threshold, e.g. 2.0

	EdgeWeight    float64 // weight of |edge_live - edge_base|, 0.7
	TextureWeight float64 // weight of neighbourhood relation change, 0.3

	// Local contrast in [ContrastLow, ContrastHigh] maps linearly onto
	// [ThresholdLow, ThresholdHigh]. The map is not clamped.
	ContrastLow   float64
	ContrastHigh  float64
	ThresholdLow  float64
	ThresholdHigh float64
}

// DefaultDetectorParams returns the production weights and threshold map.
func DefaultDetectorParams() DetectorParams {
	return DetectorParams{
		ThresholdScale: 2.0,
		EdgeWeight:     0.7,
		TextureWeight:  0.3,
		ContrastLow:    0,
		ContrastHigh:   100,
		ThresholdLow:   5,
		ThresholdHigh:  25,
	}
}

// DetectStats summarises one detection pass.
type DetectStats struct {
	Samples int `json:"samples"` // sampled video pixels
	Flagged int `json:"flagged"` // samples written to the motion map
}

// Percent returns the flagged share of samples as a percentage.
func (s DetectStats) Percent() float64 {
	if s.Samples == 0 {
		return 0
	}
	return float64(s.Flagged) / float64(s.Samples) * 100
}

// Detector compares live frames against a baseline and writes flagged
// motion into a display-resolution motion map and the aggregator's grid.
type Detector struct {
	params DetectorParams
	agg    *Aggregator

	width     int
	height    int
	motionMap []float32

	last DetectStats
}

// NewDetector creates a detector that feeds agg.
func NewDetector(p DetectorParams, agg *Aggregator) *Detector {
	if p.ContrastHigh == p.ContrastLow {
		p.ContrastHigh = p.ContrastLow + 100
	}
	return &Detector{params: p, agg: agg}
}

// SetDisplaySize sets the motion map resolution. The map is reallocated
// lazily on the next pass.
func (d *Detector) SetDisplaySize(width, height int) {
	d.width = width
	d.height = height
}

// ThresholdScale returns the live threshold multiplier.
func (d *Detector) ThresholdScale() float64 { return d.params.ThresholdScale }

// SetThresholdScale replaces the live threshold multiplier.
func (d *Detector) SetThresholdScale(s float64) { d.params.ThresholdScale = s }

// MotionMap returns the display-sized motion map from the last pass.
func (d *Detector) MotionMap() []float32 { return d.motionMap }

// DisplaySize returns the motion map dimensions.
func (d *Detector) DisplaySize() (int, int) { return d.width, d.height }

// LastStats returns the statistics of the most recent pass.
func (d *Detector) LastStats() DetectStats { return d.last }

// ClearMap zeroes the motion map without reallocating it.
func (d *Detector) ClearMap() {
	clear(d.motionMap)
}

// Detect runs one differencing pass on a step-pixel stride, skipping a
// step-pixel border. Flagged samples are mirrored horizontally and
// rescaled into display coordinates. Missing inputs make it a no-op; a
// frame whose size differs from the baseline also clears the hotspot lists.
func (d *Detector) Detect(cur, base *Frame, step int) DetectStats {
	if !cur.Valid() || !base.Valid() || d.width <= 0 || d.height <= 0 {
		return DetectStats{}
	}
	if !cur.SameSize(base) {
		// The video resolution changed; old hotspots no longer match the scene.
		if d.agg != nil {
			d.agg.Clear()
		}
		return DetectStats{}
	}
	if step <= 0 {
		step = 4
	}

	n := d.width * d.height
	if len(d.motionMap) != n {
		d.motionMap = make([]float32, n)
	} else {
		clear(d.motionMap)
	}
	if d.agg != nil {
		d.agg.Begin(d.width, d.height)
	}

	vw, vh := cur.Width, cur.Height
	var stats DetectStats
	for x := step; x < vw-step; x += step {
		for y := step; y < vh-step; y += step {
			stats.Samples++

			value := MotionValue(cur, base, x, y, d.params.EdgeWeight, d.params.TextureWeight)
			threshold := d.AdaptiveThreshold(LocalContrast(cur, x, y))
			if value <= threshold*d.params.ThresholdScale {
				continue
			}

			canvasX := d.width - 1 - x*d.width/vw
			canvasY := y * d.height / vh
			idx := canvasX + canvasY*d.width
			if canvasX < 0 || canvasY < 0 || idx < 0 || idx >= n {
				continue
			}
			d.motionMap[idx] = float32(value)
			stats.Flagged++
			if d.agg != nil {
				d.agg.Add(canvasX, canvasY, float32(value))
			}
		}
	}

	if d.agg != nil {
		d.agg.Finish()
	}
	d.last = stats
	return stats
}

// AdaptiveThreshold maps local contrast to the per-pixel motion threshold.
// Flat regions get a lower bar since their noise floor is lower.
func (d *Detector) AdaptiveThreshold(contrast float64) float64 {
	p := d.params
	return p.ThresholdLow + (contrast-p.ContrastLow)*(p.ThresholdHigh-p.ThresholdLow)/(p.ContrastHigh-p.ContrastLow)
}

// MotionValue combines edge change and texture change at (x, y).
func MotionValue(cur, base *Frame, x, y int, edgeWeight, textureWeight float64) float64 {
	edgeDiff := math.Abs(EdgeStrength(cur, x, y) - EdgeStrength(base, x, y))
	return edgeDiff*edgeWeight + TextureChange(cur, base, x, y)*textureWeight
}

// EdgeStrength is the forward-difference gradient magnitude of grayscale
// intensity at (x, y), using the right and lower neighbours.
func EdgeStrength(f *Frame, x, y int) float64 {
	w := f.Width
	center := (x + y*w) * 4
	right := ((x + 1) + y*w) * 4
	down := (x + (y+1)*w) * 4
	if center < 0 || right+2 >= len(f.Pix) || down+2 >= len(f.Pix) {
		return 0
	}

	c := grayAt(f.Pix, center)
	gx := math.Abs(grayAt(f.Pix, right) - c)
	gy := math.Abs(grayAt(f.Pix, down) - c)
	return math.Sqrt(gx*gx + gy*gy)
}

// TextureChange is the mean absolute change, over the 8-neighbourhood, of
// the (centre - neighbour) intensity relation between cur and base.
func TextureChange(cur, base *Frame, x, y int) float64 {
	w := cur.Width
	center := (x + y*w) * 4
	if center < 0 || center+2 >= len(cur.Pix) || center+2 >= len(base.Pix) {
		return 0
	}
	currCenter := grayAt(cur.Pix, center)
	baseCenter := grayAt(base.Pix, center)

	total := 0.0
	count := 0
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			if dx == 0 && dy == 0 {
				continue
			}
			nx, ny := x+dx, y+dy
			if nx < 0 || nx >= w || ny < 0 {
				continue
			}
			ni := (nx + ny*w) * 4
			if ni+2 >= len(cur.Pix) || ni+2 >= len(base.Pix) {
				continue
			}
			currRel := currCenter - grayAt(cur.Pix, ni)
			baseRel := baseCenter - grayAt(base.Pix, ni)
			total += math.Abs(currRel - baseRel)
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return total / float64(count)
}

// LocalContrast is the population standard deviation of grayscale
// intensity over the 3x3 neighbourhood of (x, y).
func LocalContrast(f *Frame, x, y int) float64 {
	w := f.Width
	var values [9]float64
	n := 0
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			sx, sy := x+dx, y+dy
			if sx < 0 || sx >= w || sy < 0 {
				continue
			}
			i := (sx + sy*w) * 4
			if i+2 >= len(f.Pix) {
				continue
			}
			values[n] = grayAt(f.Pix, i)
			n++
		}
	}
	if n < 2 {
		return 0
	}

	mean := 0.0
	for _, v := range values[:n] {
		mean += v
	}
	mean /= float64(n)
	variance := 0.0
	for _, v := range values[:n] {
		variance += (v - mean) * (v - mean)
	}
	return math.Sqrt(variance / float64(n))
}
