package camera

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/banshee-data/motion.swarm/internal/monitoring"
	"github.com/banshee-data/motion.swarm/internal/motion"
	"github.com/banshee-data/motion.swarm/internal/timeutil"
)

// SyntheticParams configures the generated scene.
type SyntheticParams struct {
	Width, Height int
	Blocks        int     // moving bright squares, e.g. 2
	BlockSize     int     // square side in pixels, e.g. 24
	Speed         float64 // pixels per frame, e.g. 3
	Noise         int     // peak per-pixel sensor noise, e.g. 3
	Seed          int64
}

// DefaultSyntheticParams returns a small scene with two movers.
func DefaultSyntheticParams() SyntheticParams {
	return SyntheticParams{Width: 320, Height: 240, Blocks: 2, BlockSize: 24, Speed: 3, Noise: 3, Seed: 1}
}

type mover struct {
	x, y, dx, dy float64
}

// Synthetic renders a textured static background with bouncing bright
// blocks and per-pixel noise. Advance renders the next frame; Run does it
// on a clock.
type Synthetic struct {
	params SyntheticParams

	// renderMu serialises Advance and Restart; mu guards what readers see.
	renderMu sync.Mutex

	mu     sync.Mutex
	front  *motion.Frame
	ready  bool
	frames int64

	back   *motion.Frame
	out    *motion.Frame
	bg     []uint8
	movers []mover
	rng    *rand.Rand
}

// NewSynthetic creates a generator and renders its first frame.
func NewSynthetic(p SyntheticParams) *Synthetic {
	d := DefaultSyntheticParams()
	if p.Width <= 0 || p.Height <= 0 {
		p.Width, p.Height = d.Width, d.Height
	}
	if p.BlockSize <= 0 {
		p.BlockSize = d.BlockSize
	}
	s := &Synthetic{params: p}
	s.reset()
	s.Advance()
	return s
}

func (s *Synthetic) reset() {
	p := s.params
	s.rng = rand.New(rand.NewSource(p.Seed))
	s.front = motion.NewFrame(p.Width, p.Height)
	s.back = motion.NewFrame(p.Width, p.Height)
	s.out = motion.NewFrame(p.Width, p.Height)

	// Soft checkerboard so the scene has local contrast to detect against.
	s.bg = make([]uint8, p.Width*p.Height)
	for y := 0; y < p.Height; y++ {
		for x := 0; x < p.Width; x++ {
			v := 60 + (x*40)/p.Width
			if (x/16+y/16)%2 == 0 {
				v += 25
			}
			s.bg[x+y*p.Width] = uint8(v)
		}
	}

	s.movers = make([]mover, p.Blocks)
	for i := range s.movers {
		s.movers[i] = mover{
			x:  s.rng.Float64() * float64(p.Width-p.BlockSize),
			y:  s.rng.Float64() * float64(p.Height-p.BlockSize),
			dx: (s.rng.Float64()*2 - 1) * p.Speed,
			dy: (s.rng.Float64()*2 - 1) * p.Speed,
		}
	}
}

// Advance moves every block one step and publishes a new frame.
func (s *Synthetic) Advance() {
	s.renderMu.Lock()
	defer s.renderMu.Unlock()

	p := s.params
	f := s.back
	for i, v := range s.bg {
		g := int(v)
		if p.Noise > 0 {
			g += s.rng.Intn(2*p.Noise+1) - p.Noise
		}
		g = min(max(g, 0), 255)
		j := i * 4
		f.Pix[j] = uint8(g)
		f.Pix[j+1] = uint8(g)
		f.Pix[j+2] = uint8(g)
		f.Pix[j+3] = 255
	}

	maxX := float64(p.Width - p.BlockSize)
	maxY := float64(p.Height - p.BlockSize)
	for i := range s.movers {
		m := &s.movers[i]
		m.x += m.dx
		m.y += m.dy
		if m.x < 0 || m.x > maxX {
			m.dx = -m.dx
			m.x = min(max(m.x, 0), maxX)
		}
		if m.y < 0 || m.y > maxY {
			m.dy = -m.dy
			m.y = min(max(m.y, 0), maxY)
		}
		f.FillRect(int(m.x), int(m.y), p.BlockSize, p.BlockSize, 240, 235, 220)
	}

	s.mu.Lock()
	s.front, s.back = s.back, s.front
	s.ready = true
	s.frames++
	s.mu.Unlock()
}

// Ready reports whether a frame has been rendered since the last restart.
func (s *Synthetic) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready
}

// Frame returns the latest frame. The returned buffer is reused by the
// next call and must only be read by one consumer.
func (s *Synthetic) Frame() *motion.Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return nil
	}
	copy(s.out.Pix, s.front.Pix)
	return s.out
}

// Frames returns how many frames have been rendered.
func (s *Synthetic) Frames() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}

// Restart regenerates the scene from its seed. The source is not ready
// until the next Advance.
func (s *Synthetic) Restart() error {
	s.renderMu.Lock()
	s.mu.Lock()
	s.ready = false
	s.reset()
	s.mu.Unlock()
	s.renderMu.Unlock()
	monitoring.Diagf("synthetic source restarted (seed %d)", s.params.Seed)
	return nil
}

// Close is a no-op.
func (s *Synthetic) Close() error { return nil }

// Run advances the scene at fps until ctx is cancelled.
func (s *Synthetic) Run(ctx context.Context, clock timeutil.Clock, fps float64) {
	if fps <= 0 {
		fps = 30
	}
	ticker := clock.NewTicker(time.Duration(float64(time.Second) / fps))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			s.Advance()
		}
	}
}
