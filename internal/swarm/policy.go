package swarm

import (
	"math/rand"

	"github.com/banshee-data/motion.swarm/internal/motion"
)

// Environment is the per-tick context shared by every agent update.
type Environment struct {
	Width    float64
	Height   float64
	Frame    int64
	Hotspots []motion.Hotspot // capped active list, strongest first
	Attract  bool             // hotspot attraction enabled
	Well     bool             // gravity well damping enabled
	Pointer  *Pointer
	Pulse    *Pulse
}

// Policy is a steering strategy. The swarm calls Begin once per tick, then
// for each agent in order: Steer, velocity update, Settle, position update
// and Keep.
type Policy interface {
	Name() string
	Begin(env *Environment)
	// Steer accumulates forces into agents[i].Acc.
	Steer(i int, agents []Agent, env *Environment)
	// Settle post-processes velocity before position integration.
	Settle(a *Agent, env *Environment)
	// Keep applies the boundary rule. False means replace the agent.
	Keep(a *Agent, env *Environment) bool
}

// FlockingPolicy is boids plus optional hotspot attraction and gravity
// well, wrapping at the display edges.
type FlockingPolicy struct {
	Flock     FlockParams
	Attractor *Attractor
	Well      WellParams
}

// NewFlockingPolicy creates the flocking strategy.
func NewFlockingPolicy(fp FlockParams, at *Attractor, wp WellParams) *FlockingPolicy {
	return &FlockingPolicy{Flock: fp, Attractor: at, Well: wp}
}

func (p *FlockingPolicy) Name() string { return "flocking" }

func (p *FlockingPolicy) Begin(*Environment) {}

func (p *FlockingPolicy) Steer(i int, agents []Agent, env *Environment) {
	Flock(i, agents, p.Flock)
	a := &agents[i]
	if env.Attract && p.Attractor != nil && len(env.Hotspots) > 0 && p.Attractor.Due(env.Frame, a) {
		a.ApplyForce(p.Attractor.Force(a, env.Hotspots))
	}
}

func (p *FlockingPolicy) Settle(a *Agent, env *Environment) {
	if env.Attract && env.Well && len(env.Hotspots) > 0 {
		ApplyWell(a, env.Hotspots, p.Well)
	}
}

func (p *FlockingPolicy) Keep(a *Agent, env *Environment) bool {
	a.Wrap(env.Width, env.Height)
	return true
}

// FlowPolicy follows a noise flow field and reacts to the pointer and click
// pulses. Agents that drift past the margin are replaced at an edge.
type FlowPolicy struct {
	Field  *FlowField
	Margin float64
	rng    *rand.Rand
}

// NewFlowPolicy creates the flow-field strategy.
func NewFlowPolicy(field *FlowField, margin float64, rng *rand.Rand) *FlowPolicy {
	return &FlowPolicy{Field: field, Margin: margin, rng: rng}
}

func (p *FlowPolicy) Name() string { return "flowfield" }

func (p *FlowPolicy) Begin(*Environment) {
	p.Field.Advance()
}

func (p *FlowPolicy) Steer(i int, agents []Agent, env *Environment) {
	a := &agents[i]
	a.ApplyForce(p.Field.Force(a))
	if env.Pointer != nil {
		a.ApplyForce(env.Pointer.Force(a, p.rng))
	}
	if env.Pulse != nil {
		a.ApplyForce(env.Pulse.Force(a))
	}
}

func (p *FlowPolicy) Settle(*Agent, *Environment) {}

func (p *FlowPolicy) Keep(a *Agent, env *Environment) bool {
	return !a.Outside(env.Width, env.Height, p.Margin)
}
