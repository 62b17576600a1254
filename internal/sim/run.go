package sim

import (
	"context"
	"time"

	"github.com/banshee-data/motion.swarm/internal/monitoring"
)

// Run ticks the simulation at its tick rate until ctx is cancelled. It
// returns ctx.Err() on shutdown.
func (s *Simulation) Run(ctx context.Context) error {
	period := time.Duration(float64(time.Second) / s.tickRate)
	if period <= 0 {
		period = time.Second / DefaultTickRate
	}
	ticker := s.clock.NewTicker(period)
	defer ticker.Stop()

	monitoring.Opsf("simulation running at %.0f Hz", s.tickRate)
	for {
		select {
		case <-ctx.Done():
			monitoring.Opsf("simulation stopped after %d ticks", s.tick)
			return ctx.Err()
		case <-ticker.C():
			s.Tick()
		}
	}
}
