package climb

import (
	"github.com/kingrea/hookclimb/internal/command"
	"github.com/kingrea/hookclimb/internal/config"
	"github.com/kingrea/hookclimb/internal/elevator"
	"github.com/kingrea/hookclimb/internal/logging"
)

// Stage names, in order.
const (
	StageClimbSpeed   = "climb speed"
	StagePullDown     = "pull down"
	StageHookCatch    = "hook catch"
	StageTiltBack     = "tilt back"
	StageExtend       = "extend"
	StageSettle       = "settle"
	StageGrab         = "grab"
	StageLatch        = "latch"
	StageSwing        = "swing"
	StageGate         = "tilt gate"
	StageReach        = "reach"
	StageRest         = "rest"
	climbSequenceName = "climb sequence"
)

// Plan holds the commands of one climb so callers can inspect them while the
// sequence runs.
type Plan struct {
	Sequence *command.SequentialGroup
	GrabA    *GrabWithAbort
	GrabB    *GrabWithAbort
	// Gate is nil when the fixed swing wait replaces the tilt gate.
	Gate *TiltGate
}

// NewPlan builds the climb from one bar to the next. The graph is fixed here;
// nothing in it changes while it runs.
func NewPlan(e *elevator.Elevator, clock command.Clock, cfg config.Config, log *logging.Logger) *Plan {
	h := cfg.Heights
	tol := h.Tolerance
	move := func(label string, setpoint float64) command.Command {
		return NewMoveTo(e, label, setpoint, tol)
	}

	grabA := NewGrabWithAbort(e, GrabSpec{
		Name:          "grab with climb hooks",
		Setpoint:      h.PullDown,
		RetryHeight:   h.Extended,
		MinBarContact: h.MinBarContact,
		Tolerance:     tol,
		Rule:          MissBelowContact,
		Sensor:        e.BarOnClimbHooks,
	}, log)
	grabB := NewGrabWithAbort(e, GrabSpec{
		Name:          "latch grab hooks",
		Setpoint:      h.Latch,
		RetryHeight:   h.PullDown,
		MinBarContact: h.MinBarContact,
		Tolerance:     tol,
		Rule:          MissUnlatchedAtSetpoint,
		Sensor:        e.BarOnGrabHooks,
	}, log)

	plan := &Plan{GrabA: grabA, GrabB: grabB}

	var gate command.Command
	if cfg.Tilt.Gate {
		plan.Gate = NewTiltGate(e, cfg.Tilt.MinAngle, cfg.Tilt.MaxAngle)
		gate = plan.Gate
	} else {
		gate = command.NewWait(clock, cfg.Tilt.SwingWait)
	}

	plan.Sequence = command.Sequence(climbSequenceName,
		command.NewInstant(StageClimbSpeed, e.SetClimbSpeed, e),
		command.Sequence(StagePullDown, move("pull down", h.PullDown)),
		command.Sequence(StageHookCatch, move("hook catch", h.HookCatch)),
		command.Sequence(StageTiltBack, NewSolenoidExtend(e)),
		command.Sequence(StageExtend, move("extended", h.Extended)),
		command.Sequence(StageSettle,
			NewSolenoidRetract(e),
			command.NewWait(clock, cfg.Timing.SettleWait),
		),
		command.Sequence(StageGrab, move("pull down", h.PullDown), grabA),
		command.Sequence(StageLatch, grabB),
		command.Sequence(StageSwing,
			command.NewInstant("high climb speed", e.SetHighClimbSpeed, e),
			NewSolenoidExtend(e),
			move("swing", h.Swing),
		),
		command.Sequence(StageGate, gate),
		command.Sequence(StageReach,
			move("extended", h.Extended),
			NewSolenoidRetract(e),
		),
		command.Sequence(StageRest,
			command.NewInstant("climb speed", e.SetClimbSpeed, e),
			command.NewWait(clock, cfg.Timing.FinalWait),
			move("below extended", h.BelowExtended),
		),
	)
	return plan
}

// Stage returns the name of the running stage, or "" before the first tick
// and after the last.
func (p *Plan) Stage() string {
	cur, _ := p.Sequence.Current()
	if cur == nil {
		return ""
	}
	return cur.Name()
}

// StageIndex returns the zero-based running stage.
func (p *Plan) StageIndex() int {
	_, i := p.Sequence.Current()
	return i
}

// StageCount is the number of stages in a climb.
func (p *Plan) StageCount() int {
	return len(p.Sequence.Children())
}

// NewClimb wraps the plan so it only runs once setup has marked the elevator
// initialized. Otherwise a no-op runs in its place and the refusal is logged.
func NewClimb(e *elevator.Elevator, plan *Plan, log *logging.Logger) *command.ConditionalCommand {
	if log == nil {
		log = logging.Nop()
	}
	refuse := command.NewInstant("climb not ready", func() {
		log.Warnw("climb refused: elevator not initialized, run setup first")
	})
	return command.Either("climb", plan.Sequence, refuse, e.Initialized)
}
