package app

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Monitor drives the liveness sweep on a fixed interval. Each tick
// probes every room with a heartbeat and destroys rooms whose members
// all went stale, locked rooms excepted.
type Monitor struct {
	reg      *Registry
	interval time.Duration
}

func NewMonitor(reg *Registry, interval time.Duration) *Monitor {
	return &Monitor{reg: reg, interval: interval}
}

func (m *Monitor) Run(ctx context.Context) {
	t := time.NewTicker(m.interval)
	defer t.Stop()
	log.Info().Str("module", "app.liveness").Dur("interval", m.interval).Msg("liveness monitor started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "app.liveness").Msg("liveness monitor stopped")
			return
		case <-t.C:
			m.reg.Sweep()
		}
	}
}
