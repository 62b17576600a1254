package motion

import (
	"math"
	"sort"
)

// Hotspot is a grid cell whose accumulated motion passed both the size
// and peak-intensity gates. Coordinates are display pixels at the cell centre.
type Hotspot struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Intensity float64 `json:"intensity"` // mean motion over contributing samples
	Size      int     `json:"size"`      // contributing sample count
	MaxMotion float64 `json:"max_motion"`
}

// AggregatorParams configures hotspot extraction.
type AggregatorParams struct {
	CellSize          int     // display pixels per grid cell, 60
	MinHotspotSize    int     // minimum contributing samples, 5
	HotspotThreshold  float64 // peak motion must exceed this, 50
	MaxActiveHotspots int     // length cap of the active list, 16
}

// DefaultAggregatorParams returns the production grid and gates.
func DefaultAggregatorParams() AggregatorParams {
	return AggregatorParams{CellSize: 60, MinHotspotSize: 5, HotspotThreshold: 50, MaxActiveHotspots: 16}
}

// Aggregator owns the motion grid arena and the hotspot lists derived from it.
// The grid is reallocated only when the display size changes and is
// cleared in place otherwise.
type Aggregator struct {
	params AggregatorParams

	width  int
	height int
	cols   int
	rows   int
	total  []float32
	count  []uint16
	peak   []float32
	allocs int

	hotspots []Hotspot
	active   []Hotspot
}

// NewAggregator creates an empty aggregator.
func NewAggregator(p AggregatorParams) *Aggregator {
	if p.CellSize <= 0 {
		p.CellSize = 60
	}
	if p.MaxActiveHotspots < 0 {
		p.MaxActiveHotspots = 0
	}
	return &Aggregator{params: p}
}

// Params returns the current gates.
func (a *Aggregator) Params() AggregatorParams { return a.params }

// SetParams replaces the gates. A cell size change forces a grid rebuild on
// the next pass.
func (a *Aggregator) SetParams(p AggregatorParams) {
	if p.CellSize <= 0 {
		p.CellSize = a.params.CellSize
	}
	if p.CellSize != a.params.CellSize {
		a.width, a.height = 0, 0
	}
	a.params = p
}

// Begin prepares the grid for a detection pass over a width x height display.
func (a *Aggregator) Begin(width, height int) {
	if width != a.width || height != a.height || a.total == nil {
		cell := a.params.CellSize
		a.width, a.height = width, height
		a.cols = (width + cell - 1) / cell
		a.rows = (height + cell - 1) / cell
		n := a.cols * a.rows
		a.total = make([]float32, n)
		a.count = make([]uint16, n)
		a.peak = make([]float32, n)
		a.allocs++
		return
	}
	clear(a.total)
	clear(a.count)
	clear(a.peak)
}

// Add accumulates a flagged sample at display coordinates (x, y).
// Samples outside the grid are ignored.
func (a *Aggregator) Add(x, y int, v float32) {
	if x < 0 || y < 0 || x >= a.width || y >= a.height {
		return
	}
	cell := a.params.CellSize
	i := x/cell + (y/cell)*a.cols
	if i < 0 || i >= len(a.total) {
		return
	}
	a.total[i] += v
	if a.count[i] < math.MaxUint16 {
		a.count[i]++
	}
	if v > a.peak[i] {
		a.peak[i] = v
	}
}

// Finish converts the grid into hotspots, sorted by descending intensity,
// and replaces both lists. Equal intensities keep row-major cell order.
func (a *Aggregator) Finish() {
	p := a.params
	half := float64(p.CellSize) / 2
	hotspots := make([]Hotspot, 0, 8)
	for r := 0; r < a.rows; r++ {
		for c := 0; c < a.cols; c++ {
			i := c + r*a.cols
			n := int(a.count[i])
			if n < p.MinHotspotSize || float64(a.peak[i]) <= p.HotspotThreshold {
				continue
			}
			hotspots = append(hotspots, Hotspot{
				X:         float64(c*p.CellSize) + half,
				Y:         float64(r*p.CellSize) + half,
				Intensity: float64(a.total[i]) / float64(n),
				Size:      n,
				MaxMotion: float64(a.peak[i]),
			})
		}
	}
	sort.SliceStable(hotspots, func(i, j int) bool {
		return hotspots[i].Intensity > hotspots[j].Intensity
	})

	a.hotspots = hotspots
	a.active = hotspots[:min(len(hotspots), p.MaxActiveHotspots)]
}

// Hotspots returns every hotspot from the last pass, strongest first.
func (a *Aggregator) Hotspots() []Hotspot { return a.hotspots }

// Active returns the capped prefix of Hotspots that drives steering.
func (a *Aggregator) Active() []Hotspot { return a.active }

// Clear drops both hotspot lists; the grid arena is kept.
func (a *Aggregator) Clear() {
	a.hotspots = nil
	a.active = nil
}

// GridStats is a copy of the per-cell grid state for rendering.
type GridStats struct {
	Cols     int
	Rows     int
	CellSize int
	Mean     []float64 // row-major mean motion per cell, 0 where empty
	Count    []int
}

// Grid returns a snapshot of the accumulation grid from the last pass.
func (a *Aggregator) Grid() GridStats {
	g := GridStats{
		Cols:     a.cols,
		Rows:     a.rows,
		CellSize: a.params.CellSize,
		Mean:     make([]float64, len(a.total)),
		Count:    make([]int, len(a.count)),
	}
	for i := range a.total {
		g.Count[i] = int(a.count[i])
		if a.count[i] > 0 {
			g.Mean[i] = float64(a.total[i]) / float64(a.count[i])
		}
	}
	return g
}

// Allocations returns how many times the grid arena was (re)built.
func (a *Aggregator) Allocations() int { return a.allocs }
