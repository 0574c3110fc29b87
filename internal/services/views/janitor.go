package views

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Janitor unmounts views whose client went away without unmounting.
type Janitor struct {
	manager    *Manager
	idleTTL    time.Duration
	sweepEvery time.Duration
}

func NewJanitor(manager *Manager, idleTTL, sweepEvery time.Duration) *Janitor {
	if idleTTL == 0 {
		idleTTL = 30 * time.Minute
	}
	if sweepEvery == 0 {
		sweepEvery = time.Minute
	}
	return &Janitor{manager: manager, idleTTL: idleTTL, sweepEvery: sweepEvery}
}

// Run sweeps until ctx is cancelled.
func (j *Janitor) Run(ctx context.Context) {
	log.Info().
		Dur("idle_ttl", j.idleTTL).
		Dur("sweep_every", j.sweepEvery).
		Msg("view janitor started")

	ticker := time.NewTicker(j.sweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("view janitor stopping")
			return
		case <-ticker.C:
			if n := j.manager.Sweep(j.idleTTL); n > 0 {
				log.Info().Int("count", n).Int("remaining", j.manager.Count()).Msg("swept idle views")
			}
		}
	}
}
