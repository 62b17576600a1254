package swarm

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/motion.swarm/internal/motion"
)

func newFlockingSwarm(seed int64) *Swarm {
	rng := rand.New(rand.NewSource(seed))
	policy := NewFlockingPolicy(DefaultFlockParams(), NewAttractor(DefaultAttractionParams(), rng), DefaultWellParams())
	return New(DefaultParams(), policy, rng)
}

func TestSwarm_ResizeRespawns(t *testing.T) {
	t.Parallel()
	s := newFlockingSwarm(1)
	s.Resize(320, 240)
	require.Equal(t, 100, s.Len())
	for _, a := range s.Agents() {
		assert.True(t, a.Pos.X >= 0 && a.Pos.X <= 320)
		assert.True(t, a.Pos.Y >= 0 && a.Pos.Y <= 240)
	}

	s.Spawn(5, 5)
	assert.Equal(t, 101, s.Len())

	s.Resize(640, 480)
	assert.Equal(t, 100, s.Len())

	s.Clear()
	assert.Zero(t, s.Len())
	s.SpawnRandom()
	assert.Equal(t, 1, s.Len())
}

func TestSwarm_WrapAfterIntegration(t *testing.T) {
	t.Parallel()
	s := newFlockingSwarm(2)
	s.SetPopulation(0)
	s.Resize(100, 80)
	s.Spawn(99.5, 40)
	s.Agents()[0].Vel = Vec2{1, 0}

	s.Step(&Environment{})
	assert.Equal(t, 0.0, s.Agents()[0].Pos.X)
	assert.Equal(t, 40.0, s.Agents()[0].Pos.Y)
}

func TestSwarm_VelocityBoundUnderAttraction(t *testing.T) {
	t.Parallel()
	s := newFlockingSwarm(3)
	s.Resize(320, 240)
	env := &Environment{
		Attract: true,
		Well:    true,
		Hotspots: []motion.Hotspot{
			{X: 90, Y: 90, Intensity: 400},
			{X: 210, Y: 150, Intensity: 80},
		},
	}
	for frame := int64(0); frame < 300; frame++ {
		env.Frame = frame
		s.Step(env)
		for _, a := range s.Agents() {
			require.LessOrEqual(t, a.Vel.Mag(), a.MaxSpeed+1e-9)
		}
	}
}

func TestSwarm_FlowFieldRespawnsPastMargin(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewSource(4))
	policy := NewFlowPolicy(NewFlowField(4, 0.003, 0.004), 10, rng)
	s := New(Params{NumParticles: 0, MaxSpeed: 2, MaxForce: 0.1}, policy, rng)
	s.Resize(200, 100)

	s.Spawn(100, 50) // stays
	s.Spawn(230, 50) // 30 px past the right edge
	s.Spawn(205, 50) // inside the margin
	s.Agents()[2].Vel = Vec2{}

	s.Step(&Environment{Pointer: NewPointer(DefaultPointerParams()), Pulse: NewPulse(DefaultPulseParams())})

	assert.Equal(t, 1, s.Respawns())
	require.Equal(t, 3, s.Len())
	replaced := s.Agents()[1]
	assert.True(t, replaced.Pos.X == 0 || replaced.Pos.X == 200 || replaced.Pos.Y == 0 || replaced.Pos.Y == 100,
		"replacement should start on an edge, got %+v", replaced.Pos)
	assert.False(t, replaced.Outside(200, 100, 0))
	// Within the margin the agent is kept
	assert.Greater(t, s.Agents()[2].Pos.X, 200.0)
}

func TestFlowField_Deterministic(t *testing.T) {
	t.Parallel()
	a := NewFlowField(9, 0.003, 0.004)
	b := NewFlowField(9, 0.003, 0.004)
	assert.Equal(t, a.Angle(120, 80), b.Angle(120, 80))

	a.Advance()
	assert.InDelta(t, 0.004, a.Time(), 1e-15)
	assert.InDelta(t, 1.0, a.Heading(Vec2{10, 10}).Mag(), 1e-12)

	agent := Agent{Pos: Vec2{50, 50}, MaxSpeed: 3, MaxForce: 0.2}
	assert.LessOrEqual(t, a.Force(&agent).Mag(), 0.2+1e-12)
}

func TestSwarm_SetLimits(t *testing.T) {
	t.Parallel()
	s := newFlockingSwarm(5)
	s.Resize(100, 100)
	s.SetLimits(2, 0.1)
	for _, a := range s.Agents() {
		assert.Equal(t, 2.0, a.MaxSpeed)
		assert.Equal(t, 0.1, a.MaxForce)
	}
	assert.Equal(t, "flocking", s.Policy().Name())
}

func TestFlockingPolicy_WellFollowsAttraction(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewSource(6))
	policy := NewFlockingPolicy(DefaultFlockParams(), NewAttractor(DefaultAttractionParams(), rng), DefaultWellParams())
	hs := []motion.Hotspot{{X: 0, Y: 0, Intensity: 100}}

	tests := []struct {
		name    string
		attract bool
		well    bool
		damped  bool
	}{
		{"attraction and well", true, true, true},
		{"well without attraction", false, true, false},
		{"attraction without well", true, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &Agent{Pos: Vec2{60, 0}, Vel: Vec2{4, 0}}
			policy.Settle(a, &Environment{Attract: tt.attract, Well: tt.well, Hotspots: hs})
			if tt.damped {
				assert.Less(t, a.Vel.X, 4.0)
			} else {
				assert.Equal(t, Vec2{4, 0}, a.Vel)
			}
		})
	}
}
