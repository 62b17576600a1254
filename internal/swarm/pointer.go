package swarm

import (
	"fmt"
	"math"
	"math/rand"
)

// PointerBand classifies smoothed pointer speed.
type PointerBand int

const (
	BandIdle   PointerBand = iota // no pointer on the surface
	BandGuide                     // slow: gentle attraction
	BandFollow                    // mid: weak following with jitter
	BandFling                     // fast: repulsive impulse scaled by speed
)

func (b PointerBand) String() string {
	switch b {
	case BandIdle:
		return "idle"
	case BandGuide:
		return "guide"
	case BandFollow:
		return "follow"
	case BandFling:
		return "fling"
	default:
		return fmt.Sprintf("PointerBand(%d)", int(b))
	}
}

// PointerParams configures the pointer classifier and force profiles.
type PointerParams struct {
	Smoothing      float64 // EMA weight of the newest speed sample, 0.2
	SlowSpeed      float64 // below this the pointer guides, 2
	FastSpeed      float64 // above this the pointer flings, 12
	BaseRadius     float64 // influence radius at rest, 80
	RadiusPerSpeed float64 // radius growth per px/tick, 10
	MaxRadius      float64 // radius cap, 300
	GuideStrength  float64
	FollowStrength float64
	FollowJitter   float64
	FlingStrength  float64 // per unit of speed
}

// DefaultPointerParams returns the production pointer tuning.
func DefaultPointerParams() PointerParams {
	return PointerParams{
		Smoothing:      0.2,
		SlowSpeed:      2,
		FastSpeed:      12,
		BaseRadius:     80,
		RadiusPerSpeed: 10,
		MaxRadius:      300,
		GuideStrength:  0.08,
		FollowStrength: 0.06,
		FollowJitter:   0.04,
		FlingStrength:  0.04,
	}
}

// Pointer tracks pointer position and smoothed velocity between ticks.
type Pointer struct {
	Params PointerParams

	pos     Vec2
	prev    Vec2
	vel     Vec2
	speed   float64
	present bool
	primed  bool
}

// NewPointer creates a pointer that is not yet on the surface.
func NewPointer(p PointerParams) *Pointer {
	return &Pointer{Params: p}
}

// Move records the latest pointer position.
func (p *Pointer) Move(x, y float64) {
	p.pos = Vec2{x, y}
	if !p.present {
		p.present = true
		p.primed = false
	}
}

// Leave marks the pointer as off the surface and resets smoothing.
func (p *Pointer) Leave() {
	p.present = false
	p.primed = false
	p.speed = 0
	p.vel = Vec2{}
}

// Tick samples the displacement since the previous tick and updates the
// smoothed velocity and speed.
func (p *Pointer) Tick() {
	if !p.present {
		return
	}
	if !p.primed {
		p.prev = p.pos
		p.primed = true
		return
	}
	raw := p.pos.Sub(p.prev)
	a := p.Params.Smoothing
	p.vel = p.vel.Scale(1 - a).Add(raw.Scale(a))
	p.speed = p.speed*(1-a) + raw.Mag()*a
	p.prev = p.pos
}

// Present reports whether the pointer is on the surface.
func (p *Pointer) Present() bool { return p.present }

// Pos returns the last recorded position.
func (p *Pointer) Pos() Vec2 { return p.pos }

// Speed returns the smoothed speed in px per tick.
func (p *Pointer) Speed() float64 { return p.speed }

// Band classifies the smoothed speed.
func (p *Pointer) Band() PointerBand {
	switch {
	case !p.present:
		return BandIdle
	case p.speed < p.Params.SlowSpeed:
		return BandGuide
	case p.speed > p.Params.FastSpeed:
		return BandFling
	default:
		return BandFollow
	}
}

// Radius is the influence radius, growing with speed.
func (p *Pointer) Radius() float64 {
	return min(p.Params.BaseRadius+p.Params.RadiusPerSpeed*p.speed, p.Params.MaxRadius)
}

// Force returns the band's force on a, tapering linearly to zero at Radius.
func (p *Pointer) Force(a *Agent, rng *rand.Rand) Vec2 {
	band := p.Band()
	if band == BandIdle {
		return Vec2{}
	}
	r := p.Radius()
	toward := p.pos.Sub(a.Pos)
	d := toward.Mag()
	if d == 0 || d >= r {
		return Vec2{}
	}
	falloff := 1 - d/r
	dir := toward.Scale(1 / d)

	switch band {
	case BandGuide:
		return dir.Scale(p.Params.GuideStrength * falloff)
	case BandFling:
		return dir.Scale(-p.Params.FlingStrength * p.speed * falloff)
	default:
		follow := p.vel.Normalize().Scale(p.Params.FollowStrength * falloff)
		jitter := FromAngle(rng.Float64() * 2 * math.Pi).Scale(p.Params.FollowJitter * falloff)
		return follow.Add(jitter)
	}
}
