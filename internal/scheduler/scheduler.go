package scheduler

import (
	"fmt"

	"github.com/kingrea/hookclimb/internal/command"
	"github.com/kingrea/hookclimb/internal/logging"
)

// EventKind enumerates lifecycle transitions reported to listeners.
type EventKind string

const (
	EventInitialize EventKind = "initialize"
	EventFinish     EventKind = "finish"
	EventInterrupt  EventKind = "interrupt"
)

// Event describes one lifecycle transition of a top-level command. ID is the
// command's unique identity when it has one.
type Event struct {
	Kind    EventKind
	Command command.Command
	ID      string
}

type listener struct {
	id int
	fn func(Event)
}

// SkipReasonCode explains why Schedule refused a command.
type SkipReasonCode string

const (
	SkipReasonNone             SkipReasonCode = ""
	SkipReasonAlreadyScheduled SkipReasonCode = "already-scheduled"
	SkipReasonDisabled         SkipReasonCode = "disabled"
)

// Result describes the scheduler's decision for one Schedule call.
type Result struct {
	Scheduled bool
	// Deferred is set when Schedule was called during a tick; the request is
	// applied once the tick completes.
	Deferred bool
	Skip     SkipReasonCode
	// Interrupted lists the previous owners that lost a subsystem to the new
	// command, in the order they were ended.
	Interrupted []command.Command
}

// Scheduler owns the running command set and the subsystem ownership table.
type Scheduler struct {
	log       *logging.Logger
	running   []command.Command
	scheduled map[command.Command]struct{}
	states    map[command.Command]command.State
	owners    map[command.Subsystem]command.Command

	defaults     map[command.Subsystem]command.Command
	defaultOrder []command.Subsystem

	enabled         bool
	inTick          bool
	pendingSchedule []command.Command
	pendingCancel   []command.Command
	listeners       []listener
	nextListener    int
}

// New returns an enabled scheduler with nothing running.
func New(log *logging.Logger) *Scheduler {
	if log == nil {
		log = logging.Nop()
	}
	return &Scheduler{
		log:       log.Named("scheduler"),
		scheduled: map[command.Command]struct{}{},
		states:    map[command.Command]command.State{},
		owners:    map[command.Subsystem]command.Command{},
		defaults:  map[command.Subsystem]command.Command{},
		enabled:   true,
	}
}

// OnEvent registers a listener for lifecycle transitions of top-level
// commands. The returned func removes it.
func (s *Scheduler) OnEvent(fn func(Event)) func() {
	if fn == nil {
		return func() {}
	}
	s.nextListener++
	id := s.nextListener
	s.listeners = append(s.listeners, listener{id: id, fn: fn})
	return func() {
		for i, l := range s.listeners {
			if l.id == id {
				s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

// SetEnabled toggles the enabled state. While disabled, only commands that
// run when disabled may be scheduled or keep running.
func (s *Scheduler) SetEnabled(enabled bool) {
	if s.enabled != enabled {
		s.log.Infow("robot state changed", "enabled", enabled)
	}
	s.enabled = enabled
}

// Enabled reports the enabled state.
func (s *Scheduler) Enabled() bool {
	return s.enabled
}

// SetDefaultCommand registers cmd to be scheduled whenever sub has no owner.
// cmd must require sub.
func (s *Scheduler) SetDefaultCommand(sub command.Subsystem, cmd command.Command) error {
	if sub == nil || cmd == nil {
		return fmt.Errorf("scheduler: default command needs a subsystem and a command")
	}
	requires := false
	for _, req := range cmd.Requirements() {
		if req == sub {
			requires = true
			break
		}
	}
	if !requires {
		return fmt.Errorf("scheduler: default command %s must require %s", cmd.Name(), sub.SubsystemName())
	}
	if _, exists := s.defaults[sub]; !exists {
		s.defaultOrder = append(s.defaultOrder, sub)
	}
	s.defaults[sub] = cmd
	return nil
}

// Schedule starts cmd, first interrupting every running command that owns one
// of its subsystems.
func (s *Scheduler) Schedule(cmd command.Command) Result {
	if cmd == nil {
		return Result{}
	}
	if s.inTick {
		s.pendingSchedule = append(s.pendingSchedule, cmd)
		return Result{Deferred: true}
	}
	return s.schedule(cmd)
}

func (s *Scheduler) schedule(cmd command.Command) Result {
	if s.IsScheduled(cmd) {
		return s.skip(cmd, SkipReasonAlreadyScheduled)
	}
	if !s.enabled && !cmd.RunsWhenDisabled() {
		return s.skip(cmd, SkipReasonDisabled)
	}
	var interrupted []command.Command
	for _, req := range cmd.Requirements() {
		owner, ok := s.owners[req]
		if !ok {
			continue
		}
		s.log.Debugw("subsystem conflict", "subsystem", req.SubsystemName(), "owner", owner.Name(), "command", cmd.Name(), "id", commandID(cmd))
		s.interrupt(owner)
		interrupted = append(interrupted, owner)
	}
	cmd.Initialize()
	s.running = append(s.running, cmd)
	s.scheduled[cmd] = struct{}{}
	s.states[cmd] = command.StateRunning
	for _, req := range cmd.Requirements() {
		s.owners[req] = cmd
	}
	s.log.Debugw("command scheduled", "command", cmd.Name(), "id", commandID(cmd))
	s.emit(EventInitialize, cmd)
	return Result{Scheduled: true, Interrupted: interrupted}
}

func (s *Scheduler) skip(cmd command.Command, reason SkipReasonCode) Result {
	s.log.Debugw("command skipped", "command", cmd.Name(), "id", commandID(cmd), "reason", string(reason))
	return Result{Skip: reason}
}

// Cancel interrupts cmd if it is running.
func (s *Scheduler) Cancel(cmd command.Command) {
	if cmd == nil {
		return
	}
	if s.inTick {
		s.pendingCancel = append(s.pendingCancel, cmd)
		return
	}
	if s.IsScheduled(cmd) {
		s.interrupt(cmd)
	}
}

// CancelAll interrupts every running command in schedule order.
func (s *Scheduler) CancelAll() {
	for _, cmd := range append([]command.Command{}, s.running...) {
		s.Cancel(cmd)
	}
}

// IsScheduled reports whether cmd is currently running.
func (s *Scheduler) IsScheduled(cmd command.Command) bool {
	_, ok := s.scheduled[cmd]
	return ok
}

// State reports where cmd is in its lifecycle. Commands the scheduler has
// never started are idle; ended commands stay finished until scheduled again.
func (s *Scheduler) State(cmd command.Command) command.State {
	if state, ok := s.states[cmd]; ok {
		return state
	}
	return command.StateIdle
}

// Requiring returns the running command that owns sub, or nil.
func (s *Scheduler) Requiring(sub command.Subsystem) command.Command {
	return s.owners[sub]
}

// Running returns the running commands in the order they were scheduled.
func (s *Scheduler) Running() []command.Command {
	return append([]command.Command{}, s.running...)
}

// Tick runs one scheduler pass: every running command is executed once, in
// schedule order, and those reporting finished are ended and released.
// Requests made by commands during the pass are applied afterwards, then idle
// subsystems receive their default commands.
func (s *Scheduler) Tick() {
	s.inTick = true
	for _, cmd := range append([]command.Command{}, s.running...) {
		if !s.IsScheduled(cmd) {
			continue
		}
		if !s.enabled && !cmd.RunsWhenDisabled() {
			s.interrupt(cmd)
			continue
		}
		cmd.Execute()
		if cmd.IsFinished() {
			cmd.End(false)
			s.release(cmd)
			s.log.Debugw("command finished", "command", cmd.Name(), "id", commandID(cmd))
			s.emit(EventFinish, cmd)
		}
	}
	s.inTick = false

	toSchedule, toCancel := s.pendingSchedule, s.pendingCancel
	s.pendingSchedule, s.pendingCancel = nil, nil
	for _, cmd := range toSchedule {
		s.schedule(cmd)
	}
	for _, cmd := range toCancel {
		s.Cancel(cmd)
	}
	s.scheduleDefaults()
}

func (s *Scheduler) scheduleDefaults() {
	for _, sub := range s.defaultOrder {
		if _, owned := s.owners[sub]; owned {
			continue
		}
		cmd := s.defaults[sub]
		if s.IsScheduled(cmd) {
			continue
		}
		s.schedule(cmd)
	}
}

func (s *Scheduler) interrupt(cmd command.Command) {
	cmd.End(true)
	s.release(cmd)
	s.log.Debugw("command interrupted", "command", cmd.Name(), "id", commandID(cmd))
	s.emit(EventInterrupt, cmd)
}

func (s *Scheduler) release(cmd command.Command) {
	delete(s.scheduled, cmd)
	s.states[cmd] = command.StateFinished
	for i, running := range s.running {
		if running == cmd {
			s.running = append(s.running[:i], s.running[i+1:]...)
			break
		}
	}
	for sub, owner := range s.owners {
		if owner == cmd {
			delete(s.owners, sub)
		}
	}
}

func (s *Scheduler) emit(kind EventKind, cmd command.Command) {
	ev := Event{Kind: kind, Command: cmd, ID: commandID(cmd)}
	for _, l := range append([]listener{}, s.listeners...) {
		l.fn(ev)
	}
}

func commandID(cmd command.Command) string {
	if c, ok := cmd.(interface{ ID() string }); ok {
		return c.ID()
	}
	return ""
}
