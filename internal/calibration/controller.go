// Package calibration picks a motion threshold scale from a short sampling
// window of the live feed.
package calibration

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/motion.swarm/internal/monitoring"
	"github.com/banshee-data/motion.swarm/internal/motion"
)

// State is the controller lifecycle position.
type State int

const (
	StateIdle State = iota
	StateCalibrating
	StateCalibrated
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCalibrating:
		return "calibrating"
	case StateCalibrated:
		return "calibrated"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Params configures the sampling window.
type Params struct {
	Duration    time.Duration // window length, 8s
	TickRate    float64       // ticks per second used to convert Duration, 60
	SampleEvery int64         // ticks between samples, 15
	MinSamples  int           // fewer samples abort the run, 10
	Step        int           // pixel stride for metrics, 6

	// NoiseCeiling separates sensor noise from real change in gray levels.
	NoiseCeiling float64
}

// DefaultParams returns the production window.
func DefaultParams() Params {
	return Params{
		Duration:     8 * time.Second,
		TickRate:     60,
		SampleEvery:  15,
		MinSamples:   10,
		Step:         6,
		NoiseCeiling: 25,
	}
}

// Result is the outcome of one calibration window.
type Result struct {
	Samples        int       `json:"samples"`
	Motion         float64   `json:"motion"`
	Contrast       float64   `json:"contrast"`
	Noise          float64   `json:"noise"`
	Bucket         Bucket    `json:"bucket"`
	ThresholdScale float64   `json:"threshold_scale"`
	Aborted        bool      `json:"aborted"`
	Applied        bool      `json:"applied"`
	StartedAt      time.Time `json:"started_at"`
	FinishedAt     time.Time `json:"finished_at"`
}

// Controller runs the Idle -> Calibrating -> Calibrated state machine.
// It is driven once per tick by the simulation and holds no locks.
type Controller struct {
	params Params
	manual bool

	state     State
	startTick int64
	startedAt time.Time
	samples   []Sample
	prev      *motion.Frame
	last      *Result

	now func() time.Time
}

// NewController creates an idle controller.
func NewController(p Params) *Controller {
	return &Controller{params: normalize(p), now: time.Now}
}

// SetParams replaces the window parameters. A window already in progress
// keeps running under the new values.
func (c *Controller) SetParams(p Params) { c.params = normalize(p) }

// Params returns the active window parameters.
func (c *Controller) Params() Params { return c.params }

func normalize(p Params) Params {
	d := DefaultParams()
	if p.TickRate <= 0 {
		p.TickRate = d.TickRate
	}
	if p.SampleEvery <= 0 {
		p.SampleEvery = d.SampleEvery
	}
	if p.Step <= 0 {
		p.Step = d.Step
	}
	if p.NoiseCeiling <= 0 {
		p.NoiseCeiling = d.NoiseCeiling
	}
	if p.Duration <= 0 {
		p.Duration = d.Duration
	}
	return p
}

// SetNow replaces the timestamp source.
func (c *Controller) SetNow(now func() time.Time) {
	if now != nil {
		c.now = now
	}
}

// State returns the current lifecycle state.
func (c *Controller) State() State { return c.state }

// Manual reports whether results are withheld from the detector.
func (c *Controller) Manual() bool { return c.manual }

// SetManual switches between auto and manual sensitivity mode.
func (c *Controller) SetManual(manual bool) { c.manual = manual }

// Last returns the most recent finished run, or nil.
func (c *Controller) Last() *Result { return c.last }

// Samples returns the samples collected in the current or last window.
func (c *Controller) Samples() []Sample { return c.samples }

// WindowTicks is the window length in ticks.
func (c *Controller) WindowTicks() int64 {
	return int64(c.params.Duration.Seconds() * c.params.TickRate)
}

// Start begins a new window at tick, discarding any run in progress.
func (c *Controller) Start(tick int64) {
	c.state = StateCalibrating
	c.startTick = tick
	c.startedAt = c.now()
	c.samples = c.samples[:0]
	c.prev = nil
	monitoring.Diagf("calibration started at tick %d (window %d ticks, sample every %d)",
		tick, c.WindowTicks(), c.params.SampleEvery)
}

// Observe feeds the current frame. It returns a result on the tick the
// window closes; otherwise ok is false.
func (c *Controller) Observe(tick int64, cur *motion.Frame) (res Result, ok bool) {
	if c.state != StateCalibrating || !cur.Valid() {
		return Result{}, false
	}

	if c.prev.SameSize(cur) && (tick-c.startTick)%c.params.SampleEvery == 0 {
		c.samples = append(c.samples, Measure(cur, c.prev, c.params.Step, c.params.NoiseCeiling))
	}
	if c.prev == nil || !c.prev.SameSize(cur) {
		c.prev = cur.Clone()
	} else {
		copy(c.prev.Pix, cur.Pix)
	}

	if tick-c.startTick < c.WindowTicks() {
		return Result{}, false
	}
	return c.finish(), true
}

func (c *Controller) finish() Result {
	res := Result{
		Samples:    len(c.samples),
		StartedAt:  c.startedAt,
		FinishedAt: c.now(),
	}
	c.prev = nil

	if len(c.samples) < c.params.MinSamples {
		res.Aborted = true
		c.state = StateIdle
		c.last = &res
		monitoring.Diagf("calibration aborted: only %d samples (need %d), keeping current threshold scale",
			len(c.samples), c.params.MinSamples)
		return res
	}

	motions := make([]float64, len(c.samples))
	contrasts := make([]float64, len(c.samples))
	noises := make([]float64, len(c.samples))
	for i, s := range c.samples {
		motions[i] = s.Motion
		contrasts[i] = s.Contrast
		noises[i] = s.Noise
	}
	res.Motion = stat.Mean(motions, nil)
	res.Contrast = stat.Mean(contrasts, nil)
	res.Noise = stat.Mean(noises, nil)
	res.Bucket = Classify(res.Motion, res.Contrast, res.Noise)
	res.ThresholdScale = res.Bucket.ThresholdScale()
	res.Applied = !c.manual

	c.state = StateCalibrated
	c.last = &res
	monitoring.Diagf("calibration done: samples=%d motion=%.3f contrast=%.1f noise=%.2f bucket=%s scale=%.2f applied=%v",
		res.Samples, res.Motion, res.Contrast, res.Noise, res.Bucket, res.ThresholdScale, res.Applied)
	return res
}
