package climb

import (
	"fmt"

	"github.com/kingrea/hookclimb/internal/command"
	"github.com/kingrea/hookclimb/internal/elevator"
)

// MoveTo drives the elevator to a fixed setpoint and finishes once the
// carriage is within tolerance. Ending leaves the last target commanded.
type MoveTo struct {
	command.Base
	elevator  *elevator.Elevator
	setpoint  float64
	tolerance float64
}

// NewMoveTo builds a setpoint move labelled with the named height.
func NewMoveTo(e *elevator.Elevator, label string, setpoint, tolerance float64) *MoveTo {
	return &MoveTo{
		Base:      command.NewBase(fmt.Sprintf("move to %s", label), e),
		elevator:  e,
		setpoint:  setpoint,
		tolerance: tolerance,
	}
}

// Execute implements command.Command.
func (m *MoveTo) Execute() {
	m.elevator.SetHeight(m.setpoint)
}

// IsFinished implements command.Command.
func (m *MoveTo) IsFinished() bool {
	return m.elevator.AtHeight(m.setpoint, m.tolerance)
}
