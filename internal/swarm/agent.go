package swarm

import "math/rand"

// Agent is one autonomous particle.
type Agent struct {
	Pos      Vec2    `json:"pos"`
	Vel      Vec2    `json:"vel"`
	Acc      Vec2    `json:"-"`
	MaxSpeed float64 `json:"-"`
	MaxForce float64 `json:"-"`
	Hue      float64 `json:"hue"`
}

// NewAgent places an agent at (x, y) with a small random velocity.
func NewAgent(x, y, maxSpeed, maxForce float64, rng *rand.Rand) Agent {
	return Agent{
		Pos:      Vec2{x, y},
		Vel:      Vec2{rng.Float64()*2 - 1, rng.Float64()*2 - 1},
		MaxSpeed: maxSpeed,
		MaxForce: maxForce,
		Hue:      rng.Float64() * 360,
	}
}

// ApplyForce adds f to the acceleration accumulator.
func (a *Agent) ApplyForce(f Vec2) {
	a.Acc = a.Acc.Add(f)
}

// Accelerate folds the accumulated force into velocity, clamps speed and
// resets the accumulator.
func (a *Agent) Accelerate() {
	a.Vel = a.Vel.Add(a.Acc).Limit(a.MaxSpeed)
	a.Acc = Vec2{}
}

// Advance integrates position by one tick of velocity.
func (a *Agent) Advance() {
	a.Pos = a.Pos.Add(a.Vel)
}

// Update runs Accelerate then Advance.
func (a *Agent) Update() {
	a.Accelerate()
	a.Advance()
}

// Wrap moves an agent that left the display to the opposite edge.
func (a *Agent) Wrap(width, height float64) {
	if a.Pos.X > width {
		a.Pos.X = 0
	}
	if a.Pos.X < 0 {
		a.Pos.X = width
	}
	if a.Pos.Y > height {
		a.Pos.Y = 0
	}
	if a.Pos.Y < 0 {
		a.Pos.Y = height
	}
}

// Outside reports whether the agent is more than margin past any edge.
func (a *Agent) Outside(width, height, margin float64) bool {
	return a.Pos.X < -margin || a.Pos.X > width+margin ||
		a.Pos.Y < -margin || a.Pos.Y > height+margin
}

// Seek returns the steering force toward target at full speed, clamped to
// the agent's max force.
func (a *Agent) Seek(target Vec2) Vec2 {
	desired := target.Sub(a.Pos).SetMag(a.MaxSpeed)
	return desired.Sub(a.Vel).Limit(a.MaxForce)
}

// SteerToward returns the force turning the agent toward heading at full
// speed, clamped to max force.
func (a *Agent) SteerToward(heading Vec2) Vec2 {
	return heading.SetMag(a.MaxSpeed).Sub(a.Vel).Limit(a.MaxForce)
}
