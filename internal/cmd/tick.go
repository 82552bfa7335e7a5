package cmd

import (
	"context"
	"time"

	"github.com/keystone-rf/p25ctrl/internal/logging"
	"github.com/keystone-rf/p25ctrl/internal/p25/control"
)

// maxNetFramesPerTick bounds how many queued network-originated frames
// are drained per tick, so a burst of peer traffic can't starve the
// control-channel signaling cycle the same tick is responsible for.
const maxNetFramesPerTick = 64

// runTickLoop is the main tick task of spec.md §5: on every Timers.Tick
// interval, drain pending network-originated frames into the engine's
// symmetric pipeline, then advance the control-channel signaling cycle.
func runTickLoop(ctx context.Context, interval time.Duration, engine *control.Engine) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			for i := 0; i < maxNetFramesPerTick; i++ {
				if err := engine.ProcessNet(); err != nil {
					logging.Warnf("process_net: %s", err)
				}
			}
			engine.Tick(now)
		}
	}
}
