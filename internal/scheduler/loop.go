package scheduler

import (
	"context"
	"fmt"
	"time"
)

// Run ticks the scheduler every period until ctx is done and returns the
// context error. step, when non-nil, runs before each tick with the time
// elapsed since the previous one so collaborators (the simulated plant) can
// advance. A tick that overruns its period is logged, never skipped.
func (s *Scheduler) Run(ctx context.Context, period time.Duration, step func(dt time.Duration)) error {
	if period <= 0 {
		return fmt.Errorf("scheduler: period must be positive, got %s", period)
	}
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			dt := now.Sub(last)
			last = now
			if step != nil {
				step(dt)
			}
			start := time.Now()
			s.Tick()
			if elapsed := time.Since(start); elapsed > period {
				s.log.Warnw("loop overrun", "elapsed", elapsed, "period", period)
			}
		}
	}
}
