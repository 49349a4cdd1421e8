// Package robot wires the configuration, the simulated plant, the subsystems,
// the scheduler and the command registry into one runnable climber.
package robot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kingrea/hookclimb/internal/climb"
	"github.com/kingrea/hookclimb/internal/command"
	"github.com/kingrea/hookclimb/internal/config"
	"github.com/kingrea/hookclimb/internal/elevator"
	"github.com/kingrea/hookclimb/internal/logging"
	"github.com/kingrea/hookclimb/internal/scheduler"
	"github.com/kingrea/hookclimb/internal/sim"
)

// Registered command names.
const (
	CommandSetup           = "setup"
	CommandClimb           = "climb"
	CommandRezero          = "rezero"
	CommandDown            = "down"
	CommandSolenoidToggle  = "solenoid-toggle"
	CommandSolenoidExtend  = "solenoid-extend"
	CommandSolenoidRetract = "solenoid-retract"
)

var (
	// ErrTimeout is returned when a headless run does not finish in time.
	ErrTimeout = errors.New("robot: command timed out")
	// ErrInterrupted is returned when a headless run is interrupted by
	// another command or by disabling the robot.
	ErrInterrupted = errors.New("robot: command interrupted")
	// ErrNotScheduled is returned when the scheduler refuses a command.
	ErrNotScheduled = errors.New("robot: command not scheduled")
)

// Robot is one simulated climber.
type Robot struct {
	Config     config.Config
	Plant      *sim.Plant
	Elevator   *elevator.Elevator
	Drivetrain *elevator.Drivetrain
	Scheduler  *scheduler.Scheduler
	Commands   *command.Registry

	log  *logging.Logger
	plan *climb.Plan
}

// New validates cfg and builds the robot around a fresh plant.
func New(cfg config.Config, log *logging.Logger) (*Robot, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logging.Nop()
	}
	plant := sim.New(cfg, time.Unix(0, 0).UTC())
	r := &Robot{
		Config:     cfg,
		Plant:      plant,
		Elevator:   elevator.New(plant, plant, plant, plant),
		Drivetrain: elevator.NewDrivetrain(plant),
		Scheduler:  scheduler.New(log),
		Commands:   command.NewRegistry(),
		log:        log.Named("robot"),
	}
	r.Drivetrain.SetMaxVelocity(cfg.Speeds.DriveMax)
	if err := r.Scheduler.SetDefaultCommand(r.Drivetrain, climb.NewHoldDriveCap(r.Drivetrain)); err != nil {
		return nil, err
	}
	r.registerCommands()
	return r, nil
}

func (r *Robot) registerCommands() {
	e, d, cfg := r.Elevator, r.Drivetrain, r.Config
	r.Commands.MustRegister(CommandSetup, "cap drive speed, raise the elevator, retract the piston", func() command.Command {
		return climb.NewSetup(e, d, cfg)
	})
	r.Commands.MustRegister(CommandClimb, "climb to the next bar (requires setup)", func() command.Command {
		r.plan = climb.NewPlan(e, r.Plant, cfg, r.log)
		return climb.NewClimb(e, r.plan, r.log)
	})
	r.Commands.MustRegister(CommandRezero, "creep down to the zero switch and reset the encoder", func() command.Command {
		return climb.NewRezero(e)
	})
	r.Commands.MustRegister(CommandDown, "drop the elevator and restore full drive speed", func() command.Command {
		return climb.NewDown(e, d, cfg)
	})
	r.Commands.MustRegister(CommandSolenoidToggle, "toggle the tilt piston", func() command.Command {
		return climb.NewSolenoidToggle(e)
	})
	r.Commands.MustRegister(CommandSolenoidExtend, "extend the tilt piston", func() command.Command {
		return climb.NewSolenoidExtend(e)
	})
	r.Commands.MustRegister(CommandSolenoidRetract, "retract the tilt piston", func() command.Command {
		return climb.NewSolenoidRetract(e)
	})
}

// Plan returns the most recently built climb, or nil before the first one.
func (r *Robot) Plan() *climb.Plan {
	return r.plan
}

// Periodic advances the plant by dt and runs one scheduler tick.
func (r *Robot) Periodic(dt time.Duration) {
	r.Plant.Step(dt)
	r.Scheduler.Tick()
}

// Start resolves a registered command and schedules it.
func (r *Robot) Start(name string) (command.Command, error) {
	cmd, err := r.Commands.Resolve(name)
	if err != nil {
		return nil, err
	}
	if err := r.schedule(cmd); err != nil {
		return nil, err
	}
	return cmd, nil
}

func (r *Robot) schedule(cmd command.Command) error {
	res := r.Scheduler.Schedule(cmd)
	if !res.Scheduled && !res.Deferred {
		return fmt.Errorf("%w: %s (%s)", ErrNotScheduled, cmd.Name(), res.Skip)
	}
	for _, lost := range res.Interrupted {
		r.log.Infow("command interrupted by schedule", "interrupted", lost.Name(), "by", cmd.Name())
	}
	return nil
}

// Abort cancels everything running. It is the operator's only way out of a
// stalled climb.
func (r *Robot) Abort() {
	r.log.Warnw("operator abort", "running", len(r.Scheduler.Running()))
	r.Scheduler.CancelAll()
}

// Prepared returns setup followed by a move to full extension and then the
// named command, the sequence a headless run executes.
func (r *Robot) Prepared(name string) (command.Command, error) {
	cmd, err := r.Commands.Resolve(name)
	if err != nil {
		return nil, err
	}
	setup, err := r.Commands.Resolve(CommandSetup)
	if err != nil {
		return nil, err
	}
	h := r.Config.Heights
	return command.Sequence("run "+name,
		setup,
		climb.NewMoveTo(r.Elevator, "extended", h.Extended, h.Tolerance),
		cmd,
	), nil
}

// Simulate schedules cmd and ticks it without waiting for wall time. It
// returns the number of ticks taken and whether cmd left the scheduler,
// finished or interrupted, within maxTicks.
func (r *Robot) Simulate(cmd command.Command, maxTicks int) (int, bool, error) {
	if err := r.schedule(cmd); err != nil {
		return 0, false, err
	}
	for tick := 1; tick <= maxTicks; tick++ {
		r.Periodic(r.Config.Timing.Period)
		if !r.Scheduler.IsScheduled(cmd) {
			return tick, true, nil
		}
	}
	return maxTicks, false, nil
}

// RunHeadless runs the prepared command in real time at the configured
// period until it finishes, it is interrupted, the timeout expires or ctx is
// done. Whatever is still running is cancelled before returning.
func (r *Robot) RunHeadless(ctx context.Context, name string, timeout time.Duration) error {
	cmd, err := r.Prepared(name)
	if err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	if timeout > 0 {
		var cancelTimeout context.CancelFunc
		runCtx, cancelTimeout = context.WithTimeout(runCtx, timeout)
		defer cancelTimeout()
	}

	var outcome scheduler.EventKind
	stopListening := r.Scheduler.OnEvent(func(ev scheduler.Event) {
		if ev.Command != cmd || outcome != "" {
			return
		}
		switch ev.Kind {
		case scheduler.EventFinish, scheduler.EventInterrupt:
			outcome = ev.Kind
			cancel()
		}
	})
	defer stopListening()
	if err := r.schedule(cmd); err != nil {
		return err
	}
	r.log.Infow("headless run started", "command", name, "timeout", timeout)

	start := time.Now()
	runErr := r.Scheduler.Run(runCtx, r.Config.Timing.Period, r.Plant.Step)
	defer r.Scheduler.CancelAll()

	switch {
	case outcome == scheduler.EventFinish:
		r.log.Infow("headless run finished", "command", name, "elapsed", time.Since(start), "simulated", r.Plant.Snapshot().Elapsed)
		return nil
	case outcome == scheduler.EventInterrupt:
		return fmt.Errorf("%w: %s", ErrInterrupted, name)
	case ctx.Err() != nil:
		return ctx.Err()
	case errors.Is(runErr, context.DeadlineExceeded):
		return fmt.Errorf("%w: %s after %s in stage %q", ErrTimeout, name, timeout, r.stage())
	default:
		return runErr
	}
}

func (r *Robot) stage() string {
	if r.plan == nil {
		return ""
	}
	return r.plan.Stage()
}
