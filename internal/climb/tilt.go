package climb

import (
	"github.com/kingrea/hookclimb/internal/command"
	"github.com/kingrea/hookclimb/internal/elevator"
)

// TiltGate finishes at the moment of the swing when the mechanism can reach
// the next bar: rising through the (min, max) window, or already past max and
// falling back. It samples the gyro once per tick and runs while disabled.
type TiltGate struct {
	command.Base
	elevator *elevator.Elevator
	minAngle float64
	maxAngle float64

	prev  float64
	last  float64
	fired bool
}

// NewTiltGate builds a gate for the open window (minAngle, maxAngle).
func NewTiltGate(e *elevator.Elevator, minAngle, maxAngle float64) *TiltGate {
	g := &TiltGate{
		Base:     command.NewBase("wait until tilt range", e),
		elevator: e,
		minAngle: minAngle,
		maxAngle: maxAngle,
	}
	g.SetRunsWhenDisabled(true)
	return g
}

// Initialize implements command.Command. It re-arms the gate; the first
// sample is compared against zero.
func (g *TiltGate) Initialize() {
	g.prev = 0
	g.last = 0
	g.fired = false
}

// Execute implements command.Command.
func (g *TiltGate) Execute() {
	a := g.elevator.TiltAngle()
	da := a - g.prev
	g.fired = (g.minAngle < a && a < g.maxAngle && da > 0) || (a > g.maxAngle && da < 0)
	g.prev = a
	g.last = a
}

// IsFinished implements command.Command.
func (g *TiltGate) IsFinished() bool {
	return g.fired
}

// Angle returns the last sampled angle.
func (g *TiltGate) Angle() float64 {
	return g.last
}
