package swarm

import (
	"math"

	"github.com/aquilax/go-perlin"
)

// Perlin octave settings for the flow field.
const (
	flowAlpha   = 2.0
	flowBeta    = 2.0
	flowOctaves = 3
)

// FlowField is a slowly evolving direction field sampled from 3D noise
// keyed by scaled position and a global time coordinate.
type FlowField struct {
	noise    *perlin.Perlin
	Scale    float64 // position scale, 0.003
	TimeStep float64 // time advance per tick, 0.004
	t        float64
}

// NewFlowField creates a field seeded for reproducible patterns.
func NewFlowField(seed int64, scale, timeStep float64) *FlowField {
	return &FlowField{
		noise:    perlin.NewPerlin(flowAlpha, flowBeta, flowOctaves, seed),
		Scale:    scale,
		TimeStep: timeStep,
	}
}

// Advance moves the field one tick forward in time.
func (f *FlowField) Advance() {
	f.t += f.TimeStep
}

// Time returns the current time coordinate.
func (f *FlowField) Time() float64 { return f.t }

// Angle samples the field direction in radians at (x, y).
func (f *FlowField) Angle(x, y float64) float64 {
	return f.noise.Noise3D(x*f.Scale, y*f.Scale, f.t) * math.Pi * 2
}

// Heading returns the unit direction at pos.
func (f *FlowField) Heading(pos Vec2) Vec2 {
	return FromAngle(f.Angle(pos.X, pos.Y))
}

// Force steers a toward the local field direction.
func (f *FlowField) Force(a *Agent) Vec2 {
	return a.SteerToward(f.Heading(a.Pos))
}
