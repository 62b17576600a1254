package swarm

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/banshee-data/motion.swarm/internal/motion"
)

func quietAttractor() *Attractor {
	p := DefaultAttractionParams()
	p.Jitter = 0
	return NewAttractor(p, rand.New(rand.NewSource(1)))
}

func TestAttractor_PullsTowardHotspot(t *testing.T) {
	t.Parallel()
	at := quietAttractor()
	a := Agent{Pos: Vec2{100, 100}}
	hs := []motion.Hotspot{{X: 200, Y: 100, Intensity: 1}}

	f := at.Force(&a, hs)
	assert.Greater(t, f.X, 0.0, "radial component should point at the hotspot")
	assert.NotZero(t, f.Y, "swirl adds a tangential component")
	assert.LessOrEqual(t, f.Mag(), at.Params.MaxForce+1e-12)
}

func TestAttractor_SoftCoreRepels(t *testing.T) {
	t.Parallel()
	at := quietAttractor()
	a := Agent{Pos: Vec2{100, 100}}
	hs := []motion.Hotspot{{X: 110, Y: 100, Intensity: 0.01}}

	f := at.Force(&a, hs)
	assert.Less(t, f.X, 0.0)
}

func TestAttractor_IgnoresDistantAndCentred(t *testing.T) {
	t.Parallel()
	at := quietAttractor()
	a := Agent{Pos: Vec2{0, 0}}

	assert.Equal(t, Vec2{}, at.Force(&a, nil))
	assert.Equal(t, Vec2{}, at.Force(&a, []motion.Hotspot{{X: 500, Y: 0, Intensity: 90}}))
	// Inside one pixel of the centre contributes nothing
	assert.Equal(t, Vec2{}, at.Force(&a, []motion.Hotspot{{X: 0.5, Y: 0, Intensity: 90}}))
}

func TestAttractor_BlendsNearestOnly(t *testing.T) {
	t.Parallel()
	p := DefaultAttractionParams()
	p.Jitter = 0
	p.BlendCount = 1
	at := NewAttractor(p, rand.New(rand.NewSource(1)))
	a := Agent{Pos: Vec2{100, 100}, Vel: Vec2{1, 0}}

	near := motion.Hotspot{X: 150, Y: 100, Intensity: 1}
	far := motion.Hotspot{X: 100, Y: 300, Intensity: 1}
	alone := at.Force(&a, []motion.Hotspot{near})
	// List order does not matter; the nearest wins
	blended := at.Force(&a, []motion.Hotspot{far, near})
	assert.Equal(t, alone, blended)
}

func TestAttractor_DampsApproachVelocity(t *testing.T) {
	t.Parallel()
	at := quietAttractor()
	hs := []motion.Hotspot{{X: 200, Y: 100, Intensity: 1}}

	still := Agent{Pos: Vec2{100, 100}}
	moving := Agent{Pos: Vec2{100, 100}, Vel: Vec2{4, 0}}
	assert.Less(t, at.Force(&moving, hs).X, at.Force(&still, hs).X)
}

func TestAttractor_Due(t *testing.T) {
	t.Parallel()
	at := quietAttractor()
	assert.True(t, at.Due(0, &Agent{Pos: Vec2{4.7, 0}}))
	assert.False(t, at.Due(0, &Agent{Pos: Vec2{5.2, 0}}))
	assert.True(t, at.Due(1, &Agent{Pos: Vec2{5.2, 0}}))
}

func TestApplyWell(t *testing.T) {
	t.Parallel()
	p := DefaultWellParams()
	hs := []motion.Hotspot{{X: 0, Y: 0, Intensity: 100}}

	core := Agent{Pos: Vec2{5, 0}, Vel: Vec2{5, 0}}
	ApplyWell(&core, hs, p)
	assert.LessOrEqual(t, core.Vel.Mag(), p.CoreMaxSpeed+1e-12)

	mid := Agent{Pos: Vec2{60, 0}, Vel: Vec2{4, 0}}
	ApplyWell(&mid, hs, p)
	assert.InDelta(t, 4*(1-0.15*0.25), mid.Vel.X, 1e-12)

	// Weak hotspots damp proportionally less
	weak := Agent{Pos: Vec2{60, 0}, Vel: Vec2{4, 0}}
	ApplyWell(&weak, []motion.Hotspot{{X: 0, Y: 0, Intensity: 50}}, p)
	assert.Greater(t, weak.Vel.X, mid.Vel.X)

	far := Agent{Pos: Vec2{500, 0}, Vel: Vec2{4, 0}}
	ApplyWell(&far, hs, p)
	assert.Equal(t, Vec2{4, 0}, far.Vel)

	// Overlapping wells are capped
	crowd := make([]motion.Hotspot, 20)
	for i := range crowd {
		crowd[i] = motion.Hotspot{X: 30, Y: 0, Intensity: 100}
	}
	capped := Agent{Pos: Vec2{0, 0}, Vel: Vec2{4, 0}}
	ApplyWell(&capped, crowd, p)
	assert.InDelta(t, 4*(1-p.MaxDamping), capped.Vel.X, 1e-12)
}
