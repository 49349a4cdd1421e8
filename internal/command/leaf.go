package command

import (
	"fmt"
	"time"
)

// Instant runs an action once from Initialize and finishes on its first tick.
type Instant struct {
	Base
	action func()
}

// NewInstant wraps action as a command owning the given subsystems. A nil
// action produces a no-op.
func NewInstant(name string, action func(), requirements ...Subsystem) *Instant {
	return &Instant{Base: NewBase(name, requirements...), action: action}
}

// Initialize implements Command.Initialize.
func (c *Instant) Initialize() {
	if c.action != nil {
		c.action()
	}
}

// IsFinished implements Command.IsFinished.
func (c *Instant) IsFinished() bool {
	return true
}

// Wait finishes at the first tick at or after its duration has elapsed since
// Initialize. It never blocks.
type Wait struct {
	Base
	clock    Clock
	duration time.Duration
	deadline time.Time
}

// NewWait returns a wait measured against clock.
func NewWait(clock Clock, d time.Duration) *Wait {
	if clock == nil {
		clock = SystemClock{}
	}
	w := &Wait{Base: NewBase(fmt.Sprintf("wait %s", d)), clock: clock, duration: d}
	w.SetRunsWhenDisabled(true)
	return w
}

// Initialize implements Command.Initialize.
func (w *Wait) Initialize() {
	w.deadline = w.clock.Now().Add(w.duration)
}

// IsFinished implements Command.IsFinished.
func (w *Wait) IsFinished() bool {
	return !w.clock.Now().Before(w.deadline)
}

// Remaining reports how long the wait still has to run.
func (w *Wait) Remaining() time.Duration {
	left := w.deadline.Sub(w.clock.Now())
	if left < 0 {
		return 0
	}
	return left
}
