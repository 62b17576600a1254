package sim

import (
	"github.com/banshee-data/motion.swarm/internal/calibration"
	"github.com/banshee-data/motion.swarm/internal/config"
	"github.com/banshee-data/motion.swarm/internal/motion"
)

// AgentState is the renderable state of one agent.
type AgentState struct {
	X   float64 `json:"x"`
	Y   float64 `json:"y"`
	VX  float64 `json:"vx"`
	VY  float64 `json:"vy"`
	Hue float64 `json:"hue"`
}

// PointerState is the renderable pointer state.
type PointerState struct {
	Present bool    `json:"present"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Speed   float64 `json:"speed"`
	Band    string  `json:"band"`
	Radius  float64 `json:"radius"`
}

// PulseState is the renderable click-pulse state.
type PulseState struct {
	Active   bool    `json:"active"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Strength float64 `json:"strength"`
	Life     int     `json:"life"`
}

// Snapshot is an immutable copy of simulation state published after every
// tick. Readers never share memory with the simulation.
type Snapshot struct {
	Tick   int64 `json:"tick"`
	Width  int   `json:"width"`
	Height int   `json:"height"`

	VideoReady   bool   `json:"video_ready"`
	Policy       string `json:"policy"`
	Debug        bool   `json:"debug"`
	BaselineDiff bool   `json:"baseline_diff"`
	Attraction   bool   `json:"attraction"`
	Well         bool   `json:"well"`

	ThresholdScale     float64              `json:"threshold_scale"`
	BaselineRate       float64              `json:"baseline_rate"`
	CalibrationMode    string               `json:"calibration_mode"`
	CalibrationState   string               `json:"calibration_state"`
	Calibration        *calibration.Result  `json:"calibration,omitempty"`
	CalibrationSamples []calibration.Sample `json:"calibration_samples,omitempty"`

	Stats    motion.DetectStats    `json:"stats"`
	Hotspots []motion.Hotspot      `json:"hotspots"`
	Active   []motion.Hotspot      `json:"active"`
	Vectors  []motion.MotionVector `json:"vectors,omitempty"`
	Grid     motion.GridStats      `json:"-"`

	Agents   []AgentState `json:"agents"`
	Pointer  PointerState `json:"pointer"`
	Pulse    PulseState   `json:"pulse"`
	Respawns int          `json:"respawns"`
}

// Snapshot returns the state published by the most recent tick.
func (s *Simulation) Snapshot() Snapshot {
	s.snapMu.RLock()
	defer s.snapMu.RUnlock()
	return s.snap
}

func (s *Simulation) publish() {
	snap := Snapshot{
		Tick:             s.tick,
		Width:            s.width,
		Height:           s.height,
		VideoReady:       s.videoSeen,
		Policy:           s.policy,
		Debug:            s.debug,
		BaselineDiff:     s.baselineDiff,
		Attraction:       s.attraction,
		Well:             s.cfg.GetWellEnabled(),
		ThresholdScale:   s.detector.ThresholdScale(),
		BaselineRate:     s.baseline.Rate(),
		CalibrationMode:  s.calibMode,
		CalibrationState: s.calib.State().String(),
		Stats:            s.detector.LastStats(),
		Hotspots:         append([]motion.Hotspot(nil), s.agg.Hotspots()...),
		Active:           append([]motion.Hotspot(nil), s.agg.Active()...),
		Respawns:         s.swarm.Respawns(),
	}
	if last := s.calib.Last(); last != nil {
		res := *last
		snap.Calibration = &res
	}
	if s.calib.State() == calibration.StateCalibrating {
		snap.CalibrationSamples = append([]calibration.Sample(nil), s.calib.Samples()...)
	}
	if s.debug {
		snap.Vectors = append([]motion.MotionVector(nil), s.vectors.Vectors()...)
		snap.Grid = s.agg.Grid()
	}

	agents := s.swarm.Agents()
	snap.Agents = make([]AgentState, len(agents))
	for i, a := range agents {
		snap.Agents[i] = AgentState{X: a.Pos.X, Y: a.Pos.Y, VX: a.Vel.X, VY: a.Vel.Y, Hue: a.Hue}
	}

	if s.policy == config.PolicyFlowField {
		p := s.pointer.Pos()
		snap.Pointer = PointerState{
			Present: s.pointer.Present(),
			X:       p.X,
			Y:       p.Y,
			Speed:   s.pointer.Speed(),
			Band:    s.pointer.Band().String(),
			Radius:  s.pointer.Radius(),
		}
		q := s.pulse.Pos()
		snap.Pulse = PulseState{
			Active:   s.pulse.Active(),
			X:        q.X,
			Y:        q.Y,
			Strength: s.pulse.Strength(),
			Life:     s.pulse.Life(),
		}
	}

	s.snapMu.Lock()
	s.snap = snap
	s.snapMu.Unlock()
}
