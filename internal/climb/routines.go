package climb

import (
	"github.com/kingrea/hookclimb/internal/command"
	"github.com/kingrea/hookclimb/internal/config"
	"github.com/kingrea/hookclimb/internal/elevator"
)

// rezeroOutput is the open-loop output used to creep down onto the zero switch.
const rezeroOutput = -0.05

// NewSetup prepares the robot for a climb: drivetrain capped to climb
// velocity, elevator sent to full extension, piston retracted. It marks the
// elevator initialized, which the climb checks before it runs.
func NewSetup(e *elevator.Elevator, d *elevator.Drivetrain, cfg config.Config) *command.ParallelGroup {
	return command.Parallel("setup",
		command.NewInstant("restrict drive velocity", func() { d.SetMaxVelocity(cfg.Speeds.DriveClimb) }, d),
		command.NewInstant("extend elevator", func() { e.SetHeight(cfg.Heights.Extended) }),
		command.NewInstant("mark initialized", e.MarkInitialized),
		NewSolenoidRetract(e),
	)
}

// NewDown drops the elevator to zero and gives the drivetrain its full speed
// back.
func NewDown(e *elevator.Elevator, d *elevator.Drivetrain, cfg config.Config) *command.Instant {
	return command.NewInstant("down", func() {
		e.SetHeight(0)
		d.SetMaxVelocity(cfg.Speeds.DriveMax)
	}, e, d)
}

// HoldDriveCap is the drivetrain's default command. It re-applies the last
// velocity cap every tick, so the limiter keeps the climb restriction until
// down restores full speed.
type HoldDriveCap struct {
	command.Base
	drivetrain *elevator.Drivetrain
}

// NewHoldDriveCap builds the command. It keeps running while disabled.
func NewHoldDriveCap(d *elevator.Drivetrain) *HoldDriveCap {
	h := &HoldDriveCap{Base: command.NewBase("hold drive cap", d), drivetrain: d}
	h.SetRunsWhenDisabled(true)
	return h
}

// Execute implements command.Command.
func (h *HoldDriveCap) Execute() {
	h.drivetrain.SetMaxVelocity(h.drivetrain.MaxVelocity())
}

// IsFinished implements command.Command.
func (h *HoldDriveCap) IsFinished() bool {
	return false
}

// NewSolenoidExtend fires the tilt piston.
func NewSolenoidExtend(e *elevator.Elevator) *command.Instant {
	return command.NewInstant("extend solenoid", e.ExtendSolenoid, e)
}

// NewSolenoidRetract releases the tilt piston.
func NewSolenoidRetract(e *elevator.Elevator) *command.Instant {
	return command.NewInstant("retract solenoid", e.RetractSolenoid, e)
}

// NewSolenoidToggle flips the tilt piston.
func NewSolenoidToggle(e *elevator.Elevator) *command.Instant {
	return command.NewInstant("toggle solenoid", e.ToggleSolenoid, e)
}

// Rezero creeps the carriage down open loop until the magnetic switch closes,
// then redefines that point as zero.
type Rezero struct {
	command.Base
	elevator *elevator.Elevator
}

// NewRezero builds the command.
func NewRezero(e *elevator.Elevator) *Rezero {
	return &Rezero{Base: command.NewBase("rezero", e), elevator: e}
}

// Execute implements command.Command.
func (r *Rezero) Execute() {
	if !r.elevator.AtZero() {
		r.elevator.SetRawOutput(rezeroOutput)
		return
	}
	r.elevator.SetRawOutput(0)
	r.elevator.SetHeight(0)
	r.elevator.ResetPosition(0)
}

// IsFinished implements command.Command.
func (r *Rezero) IsFinished() bool {
	return r.elevator.AtZero()
}

// End implements command.Command. An interrupted rezero must not leave the
// motors creeping.
func (r *Rezero) End(interrupted bool) {
	if interrupted {
		r.elevator.SetRawOutput(0)
	}
}
