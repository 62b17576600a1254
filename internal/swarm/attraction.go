package swarm

import (
	"math/rand"
	"slices"

	"github.com/banshee-data/motion.swarm/internal/motion"
)

// AttractionParams configures hotspot attraction.
type AttractionParams struct {
	InfluenceRadius float64 // hotspots farther than this are ignored, 280
	InnerRadius     float64 // soft-core repulsion radius, 28
	Strength        float64 // radial pull at the centre before boosts, 0.12
	MaxForce        float64 // cap on the net force, 0.4
	BlendCount      int     // nearest hotspots blended, 3
	Swirl           float64 // base tangential strength, 0.1
	Damping         float64 // share of along-force velocity removed, 0.08
	OrbitSwirlBase  float64 // extra swirl at the centre, 0.22
	OrbitSwirlMin   float64 // extra swirl at the influence edge, 0.06
	Jitter          float64 // relative random swirl variation, 0.03
	UpdateModulo    int     // agents update on a rotating 1/n subset of ticks, 2
}

// DefaultAttractionParams returns the production attraction tuning.
func DefaultAttractionParams() AttractionParams {
	return AttractionParams{
		InfluenceRadius: 280,
		InnerRadius:     28,
		Strength:        0.12,
		MaxForce:        0.4,
		BlendCount:      3,
		Swirl:           0.1,
		Damping:         0.08,
		OrbitSwirlBase:  0.22,
		OrbitSwirlMin:   0.06,
		Jitter:          0.03,
		UpdateModulo:    2,
	}
}

type nearHotspot struct {
	h      *motion.Hotspot
	d      float64
	dx, dy float64
}

// Attractor computes hotspot attraction forces. It keeps a scratch buffer
// so the per-agent pass does not allocate.
type Attractor struct {
	Params AttractionParams
	rng    *rand.Rand
	nearby []nearHotspot
}

// NewAttractor creates an attractor drawing jitter from rng.
func NewAttractor(p AttractionParams, rng *rand.Rand) *Attractor {
	return &Attractor{Params: p, rng: rng, nearby: make([]nearHotspot, 0, 16)}
}

// Due reports whether the agent takes an attraction update this frame.
// Agents are staggered by their integer x position.
func (at *Attractor) Due(frame int64, a *Agent) bool {
	m := int64(max(at.Params.UpdateModulo, 1))
	return (frame+int64(a.Pos.X))%m == 0
}

// Force returns the blended attraction from the nearest hotspots within
// the influence radius, damped along the agent's velocity and clamped.
func (at *Attractor) Force(a *Agent, hotspots []motion.Hotspot) Vec2 {
	p := at.Params
	if len(hotspots) == 0 || p.InfluenceRadius <= 0 {
		return Vec2{}
	}

	at.nearby = at.nearby[:0]
	for i := range hotspots {
		h := &hotspots[i]
		dx := h.X - a.Pos.X
		dy := h.Y - a.Pos.Y
		d := Vec2{dx, dy}.Mag()
		if d <= p.InfluenceRadius {
			at.nearby = append(at.nearby, nearHotspot{h: h, d: d, dx: dx, dy: dy})
		}
	}
	if len(at.nearby) == 0 {
		return Vec2{}
	}
	slices.SortStableFunc(at.nearby, func(x, y nearHotspot) int {
		switch {
		case x.d < y.d:
			return -1
		case x.d > y.d:
			return 1
		}
		return 0
	})

	var total Vec2
	for _, n := range at.nearby[:min(p.BlendCount, len(at.nearby))] {
		if n.d < 1 {
			continue
		}
		dir := Vec2{n.dx / n.d, n.dy / n.d}
		intensity := n.h.Intensity
		if intensity == 0 {
			intensity = 1
		}

		t := max(1-n.d/p.InfluenceRadius, 0)
		falloff := t * t * (3 - 2*t)

		core := 0.0
		if p.InnerRadius > 0 && n.d < p.InnerRadius {
			core = -((p.InnerRadius - n.d) / p.InnerRadius)
		}

		// Orbit swirl is strongest near the centre.
		swirlT := p.OrbitSwirlMin + (p.OrbitSwirlBase-p.OrbitSwirlMin)*falloff
		jitter := 1 + (at.rng.Float64()*2-1)*p.Jitter
		tangent := dir.Perp().Scale((p.Swirl + swirlT) * jitter)

		boost := 1.0
		if n.d < p.InfluenceRadius*0.5 {
			boost = 1.4
		}
		radial := dir.Scale(p.Strength*falloff*intensity*boost + core)
		total = total.Add(radial).Add(tangent)
	}

	unit := total.Normalize()
	if along := a.Vel.Dot(unit); along > 0 {
		total = total.Sub(unit.Scale(along * p.Damping))
	}
	return total.Limit(p.MaxForce)
}
