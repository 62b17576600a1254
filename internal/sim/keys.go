package sim

import (
	"github.com/banshee-data/motion.swarm/internal/config"
	"github.com/banshee-data/motion.swarm/internal/monitoring"
)

// Live sensitivity bounds for the threshold keys.
const (
	minThresholdScale = 0.2
	maxThresholdScale = 5.0
	thresholdStep     = 1.15
)

func (s *Simulation) key(r rune) {
	switch r {
	case 'r', 'R':
		s.restartVideo()
	case 'c', 'C':
		s.swarm.Clear()
	case ' ':
		s.swarm.SpawnRandom()
	case 'd', 'D':
		s.debug = !s.debug
		if !s.debug {
			s.cleanupAfterDebug()
		}
	case 'f', 'F':
		if s.debug {
			s.baselineDiff = !s.baselineDiff
		}
	case 'b', 'B':
		s.reseed = true
	case '1':
		monitoring.Diagf("baseline rate %.4f", s.baseline.Slower())
	case '2':
		monitoring.Diagf("baseline rate %.4f", s.baseline.Faster())
	case '-', '_':
		s.setManualScale(min(maxThresholdScale, s.detector.ThresholdScale()*thresholdStep))
	case '=', '+':
		s.setManualScale(max(minThresholdScale, s.detector.ThresholdScale()/thresholdStep))
	case 'h', 'H':
		s.attraction = !s.attraction
		if !s.attraction && !s.debug {
			s.agg.Clear()
		}
	case 'a', 'A':
		if s.calibMode == config.CalibrationAuto {
			s.setCalibrationMode(config.CalibrationManual)
		} else {
			s.setCalibrationMode(config.CalibrationAuto)
		}
	}
}

// setManualScale applies a user-chosen sensitivity and stops calibration
// from overriding it.
func (s *Simulation) setManualScale(scale float64) {
	s.detector.SetThresholdScale(scale)
	s.setCalibrationMode(config.CalibrationManual)
	monitoring.Diagf("threshold scale %.3f (manual)", scale)
}

func (s *Simulation) setCalibrationMode(mode string) {
	if mode == s.calibMode {
		return
	}
	s.calibMode = mode
	s.calib.SetManual(mode == config.CalibrationManual)
	if mode == config.CalibrationAuto && s.videoSeen {
		s.calib.Start(s.tick)
	}
	monitoring.Diagf("calibration mode %s", mode)
}

func (s *Simulation) restartVideo() {
	r, ok := s.src.(Restarter)
	if !ok {
		return
	}
	if err := r.Restart(); err != nil {
		monitoring.Opsf("video restart failed: %v", err)
		return
	}
	s.videoSeen = false
	monitoring.Opsf("video restarting")
}

// applyParams merges a live patch into the running config and pushes the
// result into every component. Invalid patches are logged and dropped.
func (s *Simulation) applyParams(patch *config.TuningConfig) {
	if patch == nil {
		return
	}
	next := s.cfg.Merge(patch)
	if err := next.Validate(); err != nil {
		monitoring.Opsf("rejected parameter update: %v", err)
		return
	}
	if patch.Policy != nil && *patch.Policy != s.policy {
		monitoring.Diagf("policy change to %q applies on restart", *patch.Policy)
	}

	if err := s.baseline.SetRate(next.GetBaselineUpdateRate()); err != nil {
		monitoring.Opsf("baseline rate: %v", err)
	}
	if err := s.baseline.SetCadence(int64(next.GetBaselineWarmupTicks()), int64(next.GetBaselineUpdateEvery())); err != nil {
		monitoring.Opsf("baseline cadence: %v", err)
	}
	s.agg.SetParams(aggregatorParams(next))
	s.flocking.Flock = flockParams(next)
	s.flocking.Attractor.Params = attractionParams(next)
	s.flocking.Well = wellParams(next)
	s.flow.Field.Scale = next.GetFlowScale()
	s.flow.Field.TimeStep = next.GetFlowTimeStep()
	s.flow.Margin = next.GetRespawnMargin()
	s.swarm.SetLimits(next.GetMaxSpeed(), next.GetMaxForce())
	if n := next.GetNumParticles(); n != s.swarm.Params().NumParticles {
		s.swarm.SetPopulation(n)
		s.swarm.Reset()
	}

	if patch.ThresholdScale != nil {
		s.detector.SetThresholdScale(next.GetThresholdScale())
		if patch.CalibrationMode == nil {
			s.setCalibrationMode(config.CalibrationManual)
		}
	}
	if patch.CalibrationMode != nil {
		s.setCalibrationMode(next.GetCalibrationMode())
	}
	s.calib.SetParams(calibrationParams(next, s.tickRate))

	s.snapMu.Lock()
	s.cfg = next
	s.snapMu.Unlock()
	monitoring.Diagf("parameters updated at tick %d", s.tick)
}

// Config returns a copy of the running configuration, including live
// sensitivity and calibration mode. Safe from any goroutine.
func (s *Simulation) Config() *config.TuningConfig {
	s.snapMu.RLock()
	cfg := s.cfg
	scale := s.snap.ThresholdScale
	rate := s.snap.BaselineRate
	mode := s.snap.CalibrationMode
	s.snapMu.RUnlock()

	out := cfg.Merge(nil)
	out.ThresholdScale = &scale
	out.BaselineUpdateRate = &rate
	out.CalibrationMode = &mode
	return out
}
