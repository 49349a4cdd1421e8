package command

import (
	"fmt"
	"time"
)

// group carries the children shared by every combinator. Its requirements are
// the union of the children's and it may run disabled only if all of them can.
type group struct {
	Base
	children []Command
}

func newGroup(name string, children []Command) group {
	g := group{Base: NewBase(name), children: append([]Command{}, children...)}
	runsDisabled := true
	for i, child := range g.children {
		if child == nil {
			panic(fmt.Sprintf("command: %s child %d is nil", name, i))
		}
		g.AddRequirements(child.Requirements()...)
		runsDisabled = runsDisabled && child.RunsWhenDisabled()
	}
	g.SetRunsWhenDisabled(runsDisabled)
	return g
}

// Children returns the composed commands in order.
func (g *group) Children() []Command {
	return append([]Command{}, g.children...)
}

// SequentialGroup runs its children one at a time, in order. A child is
// started on the tick after its predecessor ended.
type SequentialGroup struct {
	group
	index   int
	started bool
}

// Sequence composes children into a SequentialGroup.
func Sequence(name string, children ...Command) *SequentialGroup {
	return &SequentialGroup{group: newGroup(name, children), index: -1}
}

// Initialize implements Command.Initialize.
func (s *SequentialGroup) Initialize() {
	s.index = 0
	s.started = false
	if len(s.children) > 0 {
		s.children[0].Initialize()
		s.started = true
	}
}

// Execute implements Command.Execute.
func (s *SequentialGroup) Execute() {
	if s.index < 0 || s.index >= len(s.children) {
		return
	}
	current := s.children[s.index]
	if !s.started {
		current.Initialize()
		s.started = true
	}
	current.Execute()
	if current.IsFinished() {
		current.End(false)
		s.index++
		s.started = false
	}
}

// IsFinished implements Command.IsFinished.
func (s *SequentialGroup) IsFinished() bool {
	return s.index >= len(s.children)
}

// End implements Command.End.
func (s *SequentialGroup) End(interrupted bool) {
	if interrupted && s.started && s.index >= 0 && s.index < len(s.children) {
		s.children[s.index].End(true)
	}
	s.started = false
}

// Current reports the active child and its position. It returns -1 before the
// group first starts and len(children) once it completed.
func (s *SequentialGroup) Current() (Command, int) {
	if s.index < 0 || s.index >= len(s.children) {
		return nil, s.index
	}
	return s.children[s.index], s.index
}

// ParallelGroup runs all children on every tick and finishes once every one of
// them has finished.
type ParallelGroup struct {
	group
	running []bool
}

// Parallel composes children into a ParallelGroup.
func Parallel(name string, children ...Command) *ParallelGroup {
	return &ParallelGroup{group: newGroup(name, children)}
}

// Initialize implements Command.Initialize.
func (p *ParallelGroup) Initialize() {
	p.running = make([]bool, len(p.children))
	for i, child := range p.children {
		child.Initialize()
		p.running[i] = true
	}
}

// Execute implements Command.Execute.
func (p *ParallelGroup) Execute() {
	for i, child := range p.children {
		if i >= len(p.running) || !p.running[i] {
			continue
		}
		child.Execute()
		if child.IsFinished() {
			child.End(false)
			p.running[i] = false
		}
	}
}

// IsFinished implements Command.IsFinished.
func (p *ParallelGroup) IsFinished() bool {
	for _, running := range p.running {
		if running {
			return false
		}
	}
	return true
}

// End implements Command.End.
func (p *ParallelGroup) End(interrupted bool) {
	if !interrupted {
		return
	}
	for i, running := range p.running {
		if running {
			p.children[i].End(true)
			p.running[i] = false
		}
	}
}

// RaceGroup runs all children on every tick and finishes as soon as any one of
// them finishes; the others are ended as interrupted.
type RaceGroup struct {
	group
	running  []bool
	finished bool
}

// Race composes children into a RaceGroup.
func Race(name string, children ...Command) *RaceGroup {
	return &RaceGroup{group: newGroup(name, children)}
}

// Initialize implements Command.Initialize.
func (r *RaceGroup) Initialize() {
	r.finished = false
	r.running = make([]bool, len(r.children))
	for i, child := range r.children {
		child.Initialize()
		r.running[i] = true
	}
}

// Execute implements Command.Execute.
func (r *RaceGroup) Execute() {
	for i, child := range r.children {
		if i >= len(r.running) || !r.running[i] {
			continue
		}
		child.Execute()
		if child.IsFinished() {
			child.End(false)
			r.running[i] = false
			r.finished = true
			return
		}
	}
}

// IsFinished implements Command.IsFinished.
func (r *RaceGroup) IsFinished() bool {
	return r.finished || len(r.children) == 0
}

// End implements Command.End.
func (r *RaceGroup) End(bool) {
	for i, running := range r.running {
		if running {
			r.children[i].End(true)
			r.running[i] = false
		}
	}
}

// WithTimeout bounds cmd: if it has not finished d after it started, it is
// ended as interrupted and the wrapper reports finished.
func WithTimeout(cmd Command, clock Clock, d time.Duration) *RaceGroup {
	return Race(fmt.Sprintf("%s (timeout %s)", cmd.Name(), d), cmd, NewWait(clock, d))
}

// ConditionalCommand picks one of two commands when it starts and then behaves
// exactly like the selected one.
type ConditionalCommand struct {
	group
	onTrue    Command
	onFalse   Command
	condition func() bool
	selected  Command
}

// Either composes a ConditionalCommand. condition is evaluated on every
// Initialize.
func Either(name string, onTrue, onFalse Command, condition func() bool) *ConditionalCommand {
	return &ConditionalCommand{
		group:     newGroup(name, []Command{onTrue, onFalse}),
		onTrue:    onTrue,
		onFalse:   onFalse,
		condition: condition,
	}
}

// Initialize implements Command.Initialize.
func (c *ConditionalCommand) Initialize() {
	c.selected = c.onFalse
	if c.condition != nil && c.condition() {
		c.selected = c.onTrue
	}
	c.selected.Initialize()
}

// Execute implements Command.Execute.
func (c *ConditionalCommand) Execute() {
	c.selected.Execute()
}

// IsFinished implements Command.IsFinished.
func (c *ConditionalCommand) IsFinished() bool {
	return c.selected.IsFinished()
}

// End implements Command.End.
func (c *ConditionalCommand) End(interrupted bool) {
	if c.selected != nil {
		c.selected.End(interrupted)
	}
}

// Selected returns the branch chosen by the last Initialize, or nil.
func (c *ConditionalCommand) Selected() Command {
	return c.selected
}
