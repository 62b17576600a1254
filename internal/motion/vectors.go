package motion

import "math"

// MotionVector is a short-lived arrow showing where fast motion came from.
type MotionVector struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	DX        float64 `json:"dx"`
	DY        float64 `json:"dy"`
	Magnitude float64 `json:"magnitude"`
	Life      int     `json:"life"`
}

// VectorParams configures the coarse flow estimator used by the debug view.
type VectorParams struct {
	Decay           float64 // magnitude multiplier per update, 0.9
	Lifetime        int     // updates a vector stays visible, 24
	CellSize        int     // display pixels per flow cell, 60
	MinCellCount    int     // matched samples a cell needs, 10
	FastSpeed       float64 // minimum mean shift in px to spawn, 4
	MotionThreshold float32 // motion map values at or below are ignored, 200
	SearchRadius    int     // neighbourhood searched in the previous map, 8
	Step            int     // sampling and search stride, 4
}

// DefaultVectorParams returns the production flow settings.
func DefaultVectorParams() VectorParams {
	return VectorParams{
		Decay:           0.9,
		Lifetime:        24,
		CellSize:        60,
		MinCellCount:    10,
		FastSpeed:       4,
		MotionThreshold: 200,
		SearchRadius:    8,
		Step:            4,
	}
}

type flowCell struct {
	x, y, dx, dy float64
	count        int
}

// VectorTracker matches strong motion against the previous motion map to
// estimate local displacement.
type VectorTracker struct {
	params  VectorParams
	prev    []float32
	cells   []flowCell
	vectors []MotionVector
}

// NewVectorTracker creates an empty tracker.
func NewVectorTracker(p VectorParams) *VectorTracker {
	if p.CellSize <= 0 {
		p.CellSize = 60
	}
	if p.Step <= 0 {
		p.Step = 4
	}
	return &VectorTracker{params: p}
}

// Update ages existing vectors, then spawns new ones from the shift between
// the previous and current motion maps.
func (t *VectorTracker) Update(motionMap []float32, width, height int) {
	p := t.params
	alive := t.vectors[:0]
	for _, v := range t.vectors {
		v.Magnitude *= p.Decay
		v.Life--
		if v.Life <= 0 || v.Magnitude < 0.5 {
			continue
		}
		alive = append(alive, v)
	}
	t.vectors = alive

	n := width * height
	if width <= 0 || height <= 0 || len(motionMap) != n {
		return
	}
	if len(t.prev) != n {
		t.prev = make([]float32, n)
	}

	cols := (width + p.CellSize - 1) / p.CellSize
	rows := (height + p.CellSize - 1) / p.CellSize
	if len(t.cells) != cols*rows {
		t.cells = make([]flowCell, cols*rows)
	} else {
		clear(t.cells)
	}

	for y := 0; y < height; y += p.Step {
		for x := 0; x < width; x += p.Step {
			if motionMap[x+y*width] <= p.MotionThreshold {
				continue
			}
			bestDx, bestDy := 0, 0
			var bestVal float32
			for dy := -p.SearchRadius; dy <= p.SearchRadius; dy += p.Step {
				for dx := -p.SearchRadius; dx <= p.SearchRadius; dx += p.Step {
					px, py := x+dx, y+dy
					if px < 0 || py < 0 || px >= width || py >= height {
						continue
					}
					if v := t.prev[px+py*width]; v > bestVal {
						bestVal, bestDx, bestDy = v, dx, dy
					}
				}
			}
			if bestVal <= p.MotionThreshold {
				continue
			}
			c := &t.cells[x/p.CellSize+(y/p.CellSize)*cols]
			c.x += float64(x)
			c.y += float64(y)
			c.dx -= float64(bestDx)
			c.dy -= float64(bestDy)
			c.count++
		}
	}

	for _, c := range t.cells {
		if c.count < p.MinCellCount || c.count == 0 {
			continue
		}
		k := float64(c.count)
		dx, dy := c.dx/k, c.dy/k
		mag := math.Hypot(dx, dy)
		if mag < p.FastSpeed {
			continue
		}
		t.vectors = append(t.vectors, MotionVector{
			X: c.x / k, Y: c.y / k, DX: dx, DY: dy, Magnitude: mag, Life: p.Lifetime,
		})
	}

	copy(t.prev, motionMap)
}

// Vectors returns the live vectors.
func (t *VectorTracker) Vectors() []MotionVector { return t.vectors }

// Clear drops all vectors and forgets the previous map.
func (t *VectorTracker) Clear() {
	t.vectors = nil
	clear(t.prev)
}
