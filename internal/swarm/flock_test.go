package swarm

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlockingForcesBounded(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewSource(7))
	const eps = 1e-12

	for trial := 0; trial < 200; trial++ {
		n := 2 + rng.Intn(40)
		agents := make([]Agent, n)
		for i := range agents {
			agents[i] = NewAgent(rng.Float64()*60, rng.Float64()*60, 5, 0.05, rng)
			agents[i].Vel = Vec2{rng.Float64()*20 - 10, rng.Float64()*20 - 10}
		}
		a := &agents[rng.Intn(n)]

		assert.LessOrEqual(t, Separate(a, agents, 25, 2).Mag(), a.MaxForce+eps)
		assert.LessOrEqual(t, Align(a, agents, 50, 3).Mag(), a.MaxForce+eps)
		assert.LessOrEqual(t, Cohere(a, agents, 50, 3).Mag(), a.MaxForce+eps)
	}
}

func TestSeparate_PointsAway(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewSource(1))
	agents := []Agent{
		NewAgent(10, 10, 5, 0.05, rng),
		NewAgent(20, 10, 5, 0.05, rng),
	}
	agents[1].Vel = Vec2{}

	// Agent 1 is only compared with agent 0 at stride 1
	f := Separate(&agents[1], agents, 25, 1)
	assert.Greater(t, f.X, 0.0)

	// Out of range neighbours produce nothing
	assert.Equal(t, Vec2{}, Separate(&agents[1], agents, 5, 1))
}

func TestNeighbourSubsampling(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewSource(2))
	agents := []Agent{
		NewAgent(0, 0, 5, 0.05, rng),
		NewAgent(5, 0, 5, 0.05, rng), // skipped at stride 3
		NewAgent(9, 9, 5, 0.05, rng), // skipped at stride 3
		NewAgent(100, 100, 5, 0.05, rng),
	}
	// From agent 0, stride 3 only visits indices 0 and 3: itself and a far agent
	assert.Equal(t, Vec2{}, Cohere(&agents[0], agents, 50, 3))
	assert.Equal(t, Vec2{}, Align(&agents[0], agents, 50, 3))
	assert.NotEqual(t, Vec2{}, Cohere(&agents[0], agents, 50, 1))
}

func TestAgentUpdate_VelocityBound(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewSource(3))
	a := NewAgent(50, 50, 5, 0.05, rng)
	a.ApplyForce(Vec2{1e6, -1e6})
	a.Update()
	assert.LessOrEqual(t, a.Vel.Mag(), 5.0+1e-9)
	assert.Equal(t, Vec2{}, a.Acc)
}

func TestAgentWrap(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		pos  Vec2
		want Vec2
	}{
		{"past right", Vec2{100.5, 20}, Vec2{0, 20}},
		{"past left", Vec2{-0.1, 20}, Vec2{100, 20}},
		{"past bottom", Vec2{20, 80.2}, Vec2{20, 0}},
		{"past top", Vec2{20, -3}, Vec2{20, 80}},
		{"on edge", Vec2{100, 80}, Vec2{100, 80}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Agent{Pos: tt.pos}
			a.Wrap(100, 80)
			assert.Equal(t, tt.want, a.Pos)
		})
	}
}
