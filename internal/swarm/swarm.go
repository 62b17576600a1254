// Package swarm steers a population of agents with boids flocking, motion
// hotspot attraction, or a noise flow field driven by pointer input.
package swarm

import "math/rand"

// Params sets the population size and per-agent limits.
type Params struct {
	NumParticles int
	MaxSpeed     float64
	MaxForce     float64
}

// DefaultParams returns the production population.
func DefaultParams() Params {
	return Params{NumParticles: 100, MaxSpeed: 5, MaxForce: 0.05}
}

// Swarm owns the agents and applies a policy to them once per tick.
type Swarm struct {
	params   Params
	policy   Policy
	rng      *rand.Rand
	agents   []Agent
	width    float64
	height   float64
	respawns int
}

// New creates an empty swarm. Call Resize to size it and populate it.
func New(p Params, policy Policy, rng *rand.Rand) *Swarm {
	return &Swarm{params: p, policy: policy, rng: rng}
}

// Agents returns the live agents. The slice is reused across ticks.
func (s *Swarm) Agents() []Agent { return s.agents }

// Len returns the agent count.
func (s *Swarm) Len() int { return len(s.agents) }

// Policy returns the active steering policy.
func (s *Swarm) Policy() Policy { return s.policy }

// SetPolicy swaps the steering policy; agents are kept.
func (s *Swarm) SetPolicy(p Policy) { s.policy = p }

// Respawns returns how many agents were replaced at an edge.
func (s *Swarm) Respawns() int { return s.respawns }

// Params returns the population settings.
func (s *Swarm) Params() Params { return s.params }

// SetLimits updates max speed and force for existing and future agents.
func (s *Swarm) SetLimits(maxSpeed, maxForce float64) {
	s.params.MaxSpeed = maxSpeed
	s.params.MaxForce = maxForce
	for i := range s.agents {
		s.agents[i].MaxSpeed = maxSpeed
		s.agents[i].MaxForce = maxForce
	}
}

// SetPopulation changes the size used by Reset and Resize.
func (s *Swarm) SetPopulation(n int) { s.params.NumParticles = n }

// Resize discards all agents and respawns the configured population at
// random positions inside the new bounds.
func (s *Swarm) Resize(width, height float64) {
	s.width, s.height = width, height
	s.Reset()
}

// Reset discards all agents and respawns the configured population.
func (s *Swarm) Reset() {
	s.agents = s.agents[:0]
	for i := 0; i < s.params.NumParticles; i++ {
		s.SpawnRandom()
	}
}

// Clear removes every agent.
func (s *Swarm) Clear() {
	s.agents = s.agents[:0]
}

// Spawn adds an agent at (x, y).
func (s *Swarm) Spawn(x, y float64) {
	s.agents = append(s.agents, NewAgent(x, y, s.params.MaxSpeed, s.params.MaxForce, s.rng))
}

// SpawnRandom adds an agent at a uniformly random position.
func (s *Swarm) SpawnRandom() {
	s.Spawn(s.rng.Float64()*s.width, s.rng.Float64()*s.height)
}

// edgeAgent creates an agent on a random display edge.
func (s *Swarm) edgeAgent() Agent {
	var x, y float64
	switch s.rng.Intn(4) {
	case 0:
		x, y = s.rng.Float64()*s.width, 0
	case 1:
		x, y = s.width, s.rng.Float64()*s.height
	case 2:
		x, y = s.rng.Float64()*s.width, s.height
	default:
		x, y = 0, s.rng.Float64()*s.height
	}
	return NewAgent(x, y, s.params.MaxSpeed, s.params.MaxForce, s.rng)
}

// Step advances every agent by one tick in slice order. Later agents see
// the already-updated state of earlier ones.
func (s *Swarm) Step(env *Environment) {
	if s.policy == nil {
		return
	}
	env.Width, env.Height = s.width, s.height
	s.policy.Begin(env)
	for i := range s.agents {
		s.policy.Steer(i, s.agents, env)
		a := &s.agents[i]
		a.Accelerate()
		s.policy.Settle(a, env)
		a.Advance()
		if !s.policy.Keep(a, env) {
			s.agents[i] = s.edgeAgent()
			s.respawns++
		}
	}
}
