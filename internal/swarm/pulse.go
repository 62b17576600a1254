package swarm

// PulseParams configures the click-triggered radial pulse.
type PulseParams struct {
	Strength float64 // initial magnitude, 1
	Lifetime int     // ticks until the pulse expires, 60
	Decay    float64 // strength multiplier per tick, 0.95
	Radius   float64 // reach in px, 250
	Scale    float64 // force per unit strength at the centre, 0.3
}

// DefaultPulseParams returns the production pulse tuning.
func DefaultPulseParams() PulseParams {
	return PulseParams{Strength: 1, Lifetime: 60, Decay: 0.95, Radius: 250, Scale: 0.3}
}

// Pulse is a single decaying attractor or repeller. A new trigger replaces
// any pulse still running.
type Pulse struct {
	Params PulseParams

	pos      Vec2
	strength float64
	life     int
}

// NewPulse creates an inactive pulse.
func NewPulse(p PulseParams) *Pulse {
	return &Pulse{Params: p}
}

// Trigger starts a pulse at (x, y). Repelling pulses push agents away.
func (p *Pulse) Trigger(x, y float64, repel bool) {
	p.pos = Vec2{x, y}
	p.strength = p.Params.Strength
	if repel {
		p.strength = -p.strength
	}
	p.life = p.Params.Lifetime
}

// Active reports whether the pulse still applies force.
func (p *Pulse) Active() bool { return p.life > 0 }

// Strength returns the signed current strength.
func (p *Pulse) Strength() float64 { return p.strength }

// Life returns the remaining ticks.
func (p *Pulse) Life() int { return p.life }

// Pos returns the pulse centre.
func (p *Pulse) Pos() Vec2 { return p.pos }

// Tick decays the pulse by one step.
func (p *Pulse) Tick() {
	if p.life <= 0 {
		return
	}
	p.strength *= p.Params.Decay
	p.life--
	if p.life == 0 {
		p.strength = 0
	}
}

// Force returns the radial force on a, tapering linearly to zero at Radius.
func (p *Pulse) Force(a *Agent) Vec2 {
	if p.life <= 0 {
		return Vec2{}
	}
	toward := p.pos.Sub(a.Pos)
	d := toward.Mag()
	if d == 0 || d >= p.Params.Radius {
		return Vec2{}
	}
	return toward.Scale(1 / d).Scale(p.strength * p.Params.Scale * (1 - d/p.Params.Radius))
}
