package sim

import (
	"github.com/banshee-data/motion.swarm/internal/calibration"
	"github.com/banshee-data/motion.swarm/internal/config"
	"github.com/banshee-data/motion.swarm/internal/motion"
	"github.com/banshee-data/motion.swarm/internal/swarm"
)

func baselineParams(c *config.TuningConfig) motion.BaselineParams {
	return motion.BaselineParams{
		UpdateRate:  c.GetBaselineUpdateRate(),
		WarmupTicks: int64(c.GetBaselineWarmupTicks()),
		UpdateEvery: int64(c.GetBaselineUpdateEvery()),
	}
}

func detectorParams(c *config.TuningConfig) motion.DetectorParams {
	p := motion.DefaultDetectorParams()
	p.ThresholdScale = c.GetThresholdScale()
	return p
}

func aggregatorParams(c *config.TuningConfig) motion.AggregatorParams {
	return motion.AggregatorParams{
		CellSize:          c.GetMotionGridSize(),
		MinHotspotSize:    c.GetMinHotspotSize(),
		HotspotThreshold:  c.GetHotspotThreshold(),
		MaxActiveHotspots: c.GetMaxActiveHotspots(),
	}
}

func vectorParams(c *config.TuningConfig) motion.VectorParams {
	p := motion.DefaultVectorParams()
	p.CellSize = c.GetMotionGridSize()
	return p
}

func calibrationParams(c *config.TuningConfig, tickRate float64) calibration.Params {
	p := calibration.DefaultParams()
	p.Duration = c.GetCalibrationDuration()
	p.TickRate = tickRate
	p.SampleEvery = int64(c.GetCalibrationSampleEvery())
	p.MinSamples = c.GetCalibrationMinSamples()
	p.Step = c.GetDetectionStepHotspot()
	return p
}

func swarmParams(c *config.TuningConfig) swarm.Params {
	return swarm.Params{
		NumParticles: c.GetNumParticles(),
		MaxSpeed:     c.GetMaxSpeed(),
		MaxForce:     c.GetMaxForce(),
	}
}

func flockParams(c *config.TuningConfig) swarm.FlockParams {
	p := swarm.DefaultFlockParams()
	p.SeparationRadius = c.GetSeparationRadius()
	p.AlignmentRadius = c.GetAlignmentRadius()
	p.CohesionRadius = c.GetCohesionRadius()
	return p
}

func attractionParams(c *config.TuningConfig) swarm.AttractionParams {
	return swarm.AttractionParams{
		InfluenceRadius: c.GetHotspotInfluenceRadius(),
		InnerRadius:     c.GetHotspotInnerRadius(),
		Strength:        c.GetHotspotAttractionStrength(),
		MaxForce:        c.GetHotspotMaxForce(),
		BlendCount:      c.GetHotspotBlendCount(),
		Swirl:           c.GetHotspotSwirlStrength(),
		Damping:         c.GetHotspotDamping(),
		OrbitSwirlBase:  c.GetOrbitSwirlBase(),
		OrbitSwirlMin:   c.GetOrbitSwirlMin(),
		Jitter:          c.GetOrbitJitter(),
		UpdateModulo:    c.GetHotspotUpdateModulo(),
	}
}

func wellParams(c *config.TuningConfig) swarm.WellParams {
	p := swarm.DefaultWellParams()
	p.Radius = c.GetWellRadius()
	p.Strength = c.GetWellStrength()
	p.MaxDamping = c.GetWellMaxDamping()
	p.CoreRadius = c.GetWellCoreRadius()
	p.CoreMaxSpeed = c.GetWellCoreMaxSpeed()
	return p
}
