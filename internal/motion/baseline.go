package motion

import "fmt"

// Live adjustment bounds for the baseline blend rate.
const (
	MinBaselineRate = 0.001
	MaxBaselineRate = 0.02
)

// BaselineParams configures the adaptive baseline.
type BaselineParams struct {
	UpdateRate  float64 // blend fraction per update, e.g. 0.05
	WarmupTicks int64   // ticks with video before the first update, e.g. 60
	UpdateEvery int64   // update cadence in ticks, e.g. 10
}

// DefaultBaselineParams returns the production cadence and rate.
func DefaultBaselineParams() BaselineParams {
	return BaselineParams{UpdateRate: 0.05, WarmupTicks: 60, UpdateEvery: 10}
}

// BaselineTracker maintains a slowly adapting reference image. The byte
// view in Frame() is what the detector compares against; acc keeps the
// unrounded blend so small rates still converge instead of stalling on
// uint8 rounding.
type BaselineTracker struct {
	params  BaselineParams
	frame   *Frame
	acc     []float32
	updates int64
	reseeds int64
}

// NewBaselineTracker creates a tracker with no baseline yet.
func NewBaselineTracker(p BaselineParams) *BaselineTracker {
	if p.UpdateRate <= 0 || p.UpdateRate > 1 {
		p.UpdateRate = 0.05
	}
	if p.UpdateEvery <= 0 {
		p.UpdateEvery = 10
	}
	if p.WarmupTicks < 0 {
		p.WarmupTicks = 0
	}
	return &BaselineTracker{params: p}
}

// Due reports whether the tracker should update on this tick.
func (b *BaselineTracker) Due(tick int64) bool {
	return tick > b.params.WarmupTicks && tick%b.params.UpdateEvery == 0
}

// Update blends the current frame into the baseline. The first call, and
// any call after the feed resolution changes, seeds by direct copy first.
func (b *BaselineTracker) Update(cur *Frame) {
	if !cur.Valid() {
		return
	}
	if b.frame == nil || !b.frame.SameSize(cur) {
		b.seed(cur)
	}

	rate := float32(b.params.UpdateRate)
	keep := 1 - rate
	pix := b.frame.Pix
	for i, v := range cur.Pix {
		a := b.acc[i]*keep + float32(v)*rate
		b.acc[i] = a
		pix[i] = uint8(a + 0.5)
	}
	b.updates++
}

// Reseed replaces the baseline with a direct copy of cur.
func (b *BaselineTracker) Reseed(cur *Frame) {
	if !cur.Valid() {
		return
	}
	b.seed(cur)
}

func (b *BaselineTracker) seed(cur *Frame) {
	if b.frame == nil || !b.frame.SameSize(cur) {
		b.frame = NewFrame(cur.Width, cur.Height)
		b.acc = make([]float32, len(cur.Pix))
	}
	copy(b.frame.Pix, cur.Pix)
	for i, v := range cur.Pix {
		b.acc[i] = float32(v)
	}
	b.reseeds++
}

// Frame returns the baseline image, or nil before the first update.
func (b *BaselineTracker) Frame() *Frame { return b.frame }

// Ready reports whether a baseline exists.
func (b *BaselineTracker) Ready() bool { return b.frame != nil }

// Updates returns the number of blend passes performed.
func (b *BaselineTracker) Updates() int64 { return b.updates }

// Reseeds returns how many times the baseline was (re)allocated or copied.
func (b *BaselineTracker) Reseeds() int64 { return b.reseeds }

// Rate returns the current blend rate.
func (b *BaselineTracker) Rate() float64 { return b.params.UpdateRate }

// SetRate replaces the blend rate.
func (b *BaselineTracker) SetRate(r float64) error {
	if r <= 0 || r > 1 {
		return fmt.Errorf("baseline rate must be in (0, 1], got %f", r)
	}
	b.params.UpdateRate = r
	return nil
}

// SetCadence updates warmup and update interval.
func (b *BaselineTracker) SetCadence(warmupTicks, every int64) error {
	if every <= 0 {
		return fmt.Errorf("update interval must be positive, got %d", every)
	}
	if warmupTicks < 0 {
		return fmt.Errorf("warmup ticks must be non-negative, got %d", warmupTicks)
	}
	b.params.WarmupTicks = warmupTicks
	b.params.UpdateEvery = every
	return nil
}

// Slower halves the blend rate, floored at MinBaselineRate.
func (b *BaselineTracker) Slower() float64 {
	b.params.UpdateRate = max(MinBaselineRate, b.params.UpdateRate*0.5)
	return b.params.UpdateRate
}

// Faster doubles the blend rate, capped at MaxBaselineRate.
// A rate configured above the cap is pulled down to it.
func (b *BaselineTracker) Faster() float64 {
	b.params.UpdateRate = min(MaxBaselineRate, b.params.UpdateRate*2)
	return b.params.UpdateRate
}
