// Package sim owns the whole simulation state and advances it one tick at
// a time in a fixed order: inputs, video, baseline, detection, calibration,
// pointer, steering, snapshot.
package sim

import (
	"math/rand"
	"sync"
	"time"

	"github.com/banshee-data/motion.swarm/internal/calibration"
	"github.com/banshee-data/motion.swarm/internal/config"
	"github.com/banshee-data/motion.swarm/internal/monitoring"
	"github.com/banshee-data/motion.swarm/internal/motion"
	"github.com/banshee-data/motion.swarm/internal/swarm"
	"github.com/banshee-data/motion.swarm/internal/timeutil"
)

// DefaultTickRate is the target animation rate in ticks per second.
const DefaultTickRate = 60

// telemetryEvery is the tick period of motion telemetry on the trace stream.
const telemetryEvery = 120

// VideoSource supplies camera frames. Frame may return the same buffer on
// every call; the simulation copies whatever it keeps.
type VideoSource interface {
	Ready() bool
	Frame() *motion.Frame
}

// Restarter is implemented by sources that can reacquire the device.
type Restarter interface {
	Restart() error
}

// CalibrationSink receives every finished calibration run.
type CalibrationSink interface {
	RecordCalibration(res calibration.Result) error
}

// Option customises a Simulation.
type Option func(*Simulation)

// WithSeed fixes the random source for reproducible runs.
func WithSeed(seed int64) Option {
	return func(s *Simulation) { s.seed = seed }
}

// WithCalibrationSink forwards calibration results to sink.
func WithCalibrationSink(sink CalibrationSink) Option {
	return func(s *Simulation) { s.sink = sink }
}

// WithDebug starts with the debug view enabled.
func WithDebug(on bool) Option {
	return func(s *Simulation) { s.debug = on }
}

// WithAttraction sets whether hotspot attraction starts enabled.
func WithAttraction(on bool) Option {
	return func(s *Simulation) { s.attraction = on }
}

// WithTickRate sets the rate used to convert durations to ticks.
func WithTickRate(hz float64) Option {
	return func(s *Simulation) { s.tickRate = hz }
}

// WithClock sets the clock used by Run and calibration timestamps.
func WithClock(c timeutil.Clock) Option {
	return func(s *Simulation) { s.clock = c }
}

// Simulation is the single owner of all mutable simulation state. Tick
// must be called from one goroutine; Enqueue, Snapshot and Config are safe
// from any goroutine.
type Simulation struct {
	inputMu sync.Mutex
	inputs  []Input
	spare   []Input

	snapMu sync.RWMutex
	snap   Snapshot
	cfg    *config.TuningConfig

	src      VideoSource
	sink     CalibrationSink
	clock    timeutil.Clock
	seed     int64
	tickRate float64
	rng      *rand.Rand

	tick      int64
	width     int
	height    int
	videoSeen bool
	reseed    bool

	policy       string
	debug        bool
	baselineDiff bool
	attraction   bool
	calibMode    string

	baseline *motion.BaselineTracker
	agg      *motion.Aggregator
	detector *motion.Detector
	vectors  *motion.VectorTracker
	calib    *calibration.Controller

	swarm    *swarm.Swarm
	flocking *swarm.FlockingPolicy
	flow     *swarm.FlowPolicy
	pointer  *swarm.Pointer
	pulse    *swarm.Pulse
	env      swarm.Environment
}

// New builds a simulation for a width x height display. A nil cfg uses
// the built-in defaults; a nil src never produces video.
func New(cfg *config.TuningConfig, src VideoSource, width, height int, opts ...Option) *Simulation {
	if cfg == nil {
		cfg = config.DefaultTuningConfig()
	}
	s := &Simulation{
		cfg:        cfg,
		src:        src,
		seed:       time.Now().UnixNano(),
		tickRate:   DefaultTickRate,
		clock:      timeutil.RealClock{},
		attraction: true,
		policy:     cfg.GetPolicy(),
		calibMode:  cfg.GetCalibrationMode(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.rng = rand.New(rand.NewSource(s.seed))

	s.baseline = motion.NewBaselineTracker(baselineParams(cfg))
	s.agg = motion.NewAggregator(aggregatorParams(cfg))
	s.detector = motion.NewDetector(detectorParams(cfg), s.agg)
	s.vectors = motion.NewVectorTracker(vectorParams(cfg))
	s.calib = calibration.NewController(calibrationParams(cfg, s.tickRate))
	s.calib.SetManual(s.calibMode == config.CalibrationManual)
	s.calib.SetNow(s.clock.Now)

	s.pointer = swarm.NewPointer(swarm.DefaultPointerParams())
	s.pulse = swarm.NewPulse(swarm.DefaultPulseParams())
	s.flocking = swarm.NewFlockingPolicy(flockParams(cfg), swarm.NewAttractor(attractionParams(cfg), s.rng), wellParams(cfg))
	s.flow = swarm.NewFlowPolicy(swarm.NewFlowField(s.seed, cfg.GetFlowScale(), cfg.GetFlowTimeStep()), cfg.GetRespawnMargin(), s.rng)

	var policy swarm.Policy = s.flocking
	if s.policy == config.PolicyFlowField {
		policy = s.flow
		s.env.Pointer = s.pointer
		s.env.Pulse = s.pulse
	}
	s.swarm = swarm.New(swarmParams(cfg), policy, s.rng)
	s.resize(width, height)

	monitoring.Opsf("simulation ready: %dx%d policy=%s particles=%d calibration=%s",
		width, height, s.policy, s.swarm.Len(), s.calibMode)
	s.publish()
	return s
}

// Tick advances the simulation by one frame.
func (s *Simulation) Tick() {
	s.tick++
	s.drainInputs()

	frame := s.pollVideo()
	if frame != nil {
		if s.reseed {
			s.reseedBaseline(frame)
		}
		if s.baseline.Due(s.tick) {
			s.baseline.Update(frame)
		}
		s.detect(frame)
		s.observeCalibration(frame)
	}
	s.reseed = false

	s.pointer.Tick()
	s.pulse.Tick()

	s.env.Frame = s.tick
	s.env.Hotspots = s.agg.Active()
	s.env.Attract = s.attraction
	s.env.Well = s.cfg.GetWellEnabled()
	s.swarm.Step(&s.env)

	s.publish()
}

// TickCount returns the number of ticks run so far.
func (s *Simulation) TickCount() int64 { return s.tick }

func (s *Simulation) pollVideo() *motion.Frame {
	if s.src == nil || !s.src.Ready() {
		return nil
	}
	frame := s.src.Frame()
	if !frame.Valid() {
		return nil
	}
	if !s.videoSeen {
		s.videoSeen = true
		monitoring.Opsf("video ready: %dx%d", frame.Width, frame.Height)
		s.calib.Start(s.tick)
	}
	return frame
}

func (s *Simulation) detect(frame *motion.Frame) {
	if !s.debug && !s.attraction {
		return
	}
	every, step := s.cfg.GetDetectionIntervalHotspot(), s.cfg.GetDetectionStepHotspot()
	if s.debug {
		every, step = s.cfg.GetDetectionIntervalDebug(), s.cfg.GetDetectionStepDebug()
	}
	if s.tick%int64(every) != 0 {
		return
	}

	stats := s.detector.Detect(frame, s.baseline.Frame(), step)
	if s.debug {
		w, h := s.detector.DisplaySize()
		s.vectors.Update(s.detector.MotionMap(), w, h)
	}
	if s.tick%telemetryEvery < int64(every) {
		monitoring.Tracef("tick=%d motion=%.2f%% flagged=%d/%d hotspots=%d active=%d",
			s.tick, stats.Percent(), stats.Flagged, stats.Samples, len(s.agg.Hotspots()), len(s.agg.Active()))
	}
}

func (s *Simulation) observeCalibration(frame *motion.Frame) {
	res, ok := s.calib.Observe(s.tick, frame)
	if !ok {
		return
	}
	if res.Applied {
		s.detector.SetThresholdScale(res.ThresholdScale)
	}
	if s.sink != nil {
		if err := s.sink.RecordCalibration(res); err != nil {
			monitoring.Opsf("failed to record calibration: %v", err)
		}
	}
}

func (s *Simulation) reseedBaseline(frame *motion.Frame) {
	s.baseline.Reseed(frame)
	s.detector.ClearMap()
	s.agg.Clear()
	monitoring.Diagf("baseline reseeded at tick %d", s.tick)
}

func (s *Simulation) resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	s.width, s.height = width, height
	s.detector.SetDisplaySize(width, height)
	s.detector.ClearMap()
	s.agg.Clear()
	s.vectors.Clear()
	s.swarm.Resize(float64(width), float64(height))
}

// cleanupAfterDebug frees debug-only state when the debug view is closed.
func (s *Simulation) cleanupAfterDebug() {
	s.detector.ClearMap()
	s.vectors.Clear()
	if !s.attraction {
		s.agg.Clear()
	}
}
