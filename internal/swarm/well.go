package swarm

import "github.com/banshee-data/motion.swarm/internal/motion"

// WellParams configures the gravity well damping layered over attraction.
type WellParams struct {
	Radius       float64 // damping reach around a hotspot, 120
	Strength     float64 // damping at the centre for a reference-intensity hotspot, 0.15
	MaxDamping   float64 // cap on the combined damping fraction, 0.6
	CoreRadius   float64 // inside this the speed is hard-limited, 12
	CoreMaxSpeed float64 // speed cap inside the core, 1.2
	IntensityRef float64 // intensity giving full strength, 100
}

// DefaultWellParams returns the production well tuning.
func DefaultWellParams() WellParams {
	return WellParams{
		Radius:       120,
		Strength:     0.15,
		MaxDamping:   0.6,
		CoreRadius:   12,
		CoreMaxSpeed: 1.2,
		IntensityRef: 100,
	}
}

// ApplyWell slows an agent near hotspot centres. Damping falls off quadratically
// with distance and scales with hotspot intensity; the combined fraction is
// capped at MaxDamping.
func ApplyWell(a *Agent, hotspots []motion.Hotspot, p WellParams) {
	if p.Radius <= 0 {
		return
	}
	damping := 0.0
	inCore := false
	for i := range hotspots {
		h := &hotspots[i]
		d := a.Pos.Dist(Vec2{h.X, h.Y})
		if d >= p.Radius {
			continue
		}
		f := 1 - d/p.Radius
		weight := 1.0
		if p.IntensityRef > 0 {
			weight = min(h.Intensity/p.IntensityRef, 1)
		}
		damping += p.Strength * f * f * weight
		if d < p.CoreRadius {
			inCore = true
		}
	}
	if damping > 0 {
		a.Vel = a.Vel.Scale(1 - min(damping, p.MaxDamping))
	}
	if inCore {
		a.Vel = a.Vel.Limit(p.CoreMaxSpeed)
	}
}
