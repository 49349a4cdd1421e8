package climb

import (
	"context"

	"github.com/looplab/fsm"

	"github.com/kingrea/hookclimb/internal/command"
	"github.com/kingrea/hookclimb/internal/elevator"
	"github.com/kingrea/hookclimb/internal/logging"
)

// GrabPhase is the state of a grab-with-abort command.
type GrabPhase string

const (
	// PhaseAdvancing drives toward the grab setpoint, watching the sensor.
	PhaseAdvancing GrabPhase = "advancing"
	// PhaseAbortedReextending drives to the retry height after a miss.
	PhaseAbortedReextending GrabPhase = "aborted_reextending"
	// PhaseAbortedVerifying confirms the retry height once more before the
	// next attempt.
	PhaseAbortedVerifying GrabPhase = "aborted_verifying"
)

const (
	eventMiss       = "miss"
	eventReextended = "reextended"
	eventVerified   = "verified"
)

// MissRule decides when an advancing grab is considered missed.
type MissRule int

const (
	// MissBelowContact aborts when the carriage passes below the minimum bar
	// contact height without the grab sensor having fired.
	MissBelowContact MissRule = iota
	// MissUnlatchedAtSetpoint aborts when the carriage reaches the setpoint
	// without the grab sensor having fired.
	MissUnlatchedAtSetpoint
)

func (r MissRule) String() string {
	switch r {
	case MissBelowContact:
		return "below-contact"
	case MissUnlatchedAtSetpoint:
		return "unlatched-at-setpoint"
	default:
		return "unknown"
	}
}

// GrabSpec parameterizes a grab-with-abort command.
type GrabSpec struct {
	Name          string
	Setpoint      float64
	RetryHeight   float64
	MinBarContact float64
	Tolerance     float64
	Rule          MissRule
	// Sensor reports whether the hooks this grab relies on touch the bar.
	Sensor func() bool
}

// GrabWithAbort advances toward a setpoint while watching a hook sensor. A
// detected miss sends the carriage to the retry height, confirms it there on
// a second tick, then tries again from the top. It only finishes while
// advancing and at the setpoint, so it never reports done mid-retry; a grab
// that never succeeds never finishes.
type GrabWithAbort struct {
	command.Base
	elevator *elevator.Elevator
	spec     GrabSpec
	machine  *fsm.FSM
	log      *logging.Logger

	setpoint float64
	grabbed  bool
	retries  int
}

// NewGrabWithAbort builds the command. The phase machine starts advancing.
func NewGrabWithAbort(e *elevator.Elevator, spec GrabSpec, log *logging.Logger) *GrabWithAbort {
	if log == nil {
		log = logging.Nop()
	}
	g := &GrabWithAbort{
		Base:     command.NewBase(spec.Name, e),
		elevator: e,
		spec:     spec,
		log:      log.Named("grab"),
		setpoint: spec.Setpoint,
	}
	g.machine = fsm.NewFSM(
		string(PhaseAdvancing),
		fsm.Events{
			{Name: eventMiss, Src: []string{string(PhaseAdvancing)}, Dst: string(PhaseAbortedReextending)},
			{Name: eventReextended, Src: []string{string(PhaseAbortedReextending)}, Dst: string(PhaseAbortedVerifying)},
			{Name: eventVerified, Src: []string{string(PhaseAbortedVerifying)}, Dst: string(PhaseAdvancing)},
		},
		fsm.Callbacks{
			"enter_" + string(PhaseAbortedReextending): func(_ context.Context, _ *fsm.Event) {
				g.setpoint = g.spec.RetryHeight
				g.retries++
			},
			"enter_" + string(PhaseAbortedVerifying): func(_ context.Context, _ *fsm.Event) {
				g.setpoint = g.spec.RetryHeight
			},
			"enter_" + string(PhaseAdvancing): func(_ context.Context, _ *fsm.Event) {
				g.grabbed = false
				g.setpoint = g.spec.Setpoint
			},
			"enter_state": func(_ context.Context, e *fsm.Event) {
				g.log.Infow("grab phase changed", "command", g.Name(), "from", e.Src, "to", e.Dst, "retries", g.retries)
			},
		},
	)
	return g
}

// Initialize implements command.Command. It resets every field so a re-run
// behaves like a fresh instance.
func (g *GrabWithAbort) Initialize() {
	g.machine.SetState(string(PhaseAdvancing))
	g.setpoint = g.spec.Setpoint
	g.grabbed = false
	g.retries = 0
}

// Execute implements command.Command.
func (g *GrabWithAbort) Execute() {
	height := g.elevator.Height()
	switch g.Phase() {
	case PhaseAdvancing:
		if g.spec.Sensor != nil && g.spec.Sensor() {
			g.grabbed = true
		}
		if g.missed(height) {
			g.fire(eventMiss, height)
		}
	case PhaseAbortedReextending:
		if g.atSetpoint(height) {
			g.fire(eventReextended, height)
		}
	case PhaseAbortedVerifying:
		if g.atSetpoint(height) {
			g.fire(eventVerified, height)
		}
	}
	g.elevator.SetHeight(g.setpoint)
}

func (g *GrabWithAbort) missed(height float64) bool {
	if g.grabbed {
		return false
	}
	switch g.spec.Rule {
	case MissBelowContact:
		return height <= g.spec.MinBarContact
	case MissUnlatchedAtSetpoint:
		return g.atSetpoint(height)
	default:
		return false
	}
}

func (g *GrabWithAbort) fire(event string, height float64) {
	if err := g.machine.Event(context.Background(), event); err != nil {
		g.log.Warnw("grab transition rejected", "command", g.Name(), "event", event, "height", height, "error", err)
	}
}

func (g *GrabWithAbort) atSetpoint(height float64) bool {
	return elevator.AtSetpoint(height, g.setpoint, g.spec.Tolerance)
}

// IsFinished implements command.Command.
func (g *GrabWithAbort) IsFinished() bool {
	return g.Phase() == PhaseAdvancing && g.atSetpoint(g.elevator.Height())
}

// Phase returns the current phase.
func (g *GrabWithAbort) Phase() GrabPhase {
	return GrabPhase(g.machine.Current())
}

// Grabbed reports whether the sensor has fired during the current attempt.
func (g *GrabWithAbort) Grabbed() bool {
	return g.grabbed
}

// Target returns the setpoint currently commanded.
func (g *GrabWithAbort) Target() float64 {
	return g.setpoint
}

// Retries counts the misses since Initialize.
func (g *GrabWithAbort) Retries() int {
	return g.retries
}
