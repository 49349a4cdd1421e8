package command

import "github.com/google/uuid"

// Subsystem is an exclusive-access token for a physical actuator group. At most
// one running command may own a subsystem at any tick.
type Subsystem interface {
	SubsystemName() string
}

// Command is implemented by every schedulable unit of behavior.
//
// Initialize runs once when the command starts, Execute once per tick while it
// runs, and IsFinished is polled after every Execute. End receives
// interrupted=true when the command was cancelled or lost a subsystem to
// another command. Implementations must be pointer types: the scheduler keys
// its bookkeeping on command identity.
type Command interface {
	Name() string
	Initialize()
	Execute()
	IsFinished() bool
	End(interrupted bool)
	Requirements() []Subsystem
	RunsWhenDisabled() bool
}

// State enumerates the lifecycle of a command instance as tracked by the
// scheduler.
type State string

const (
	StateIdle     State = "idle"
	StateRunning  State = "running"
	StateFinished State = "finished"
)

// Base provides common plumbing for commands (identity + requirements) and
// no-op lifecycle hooks. Embedders supply IsFinished.
type Base struct {
	id               string
	name             string
	requirements     []Subsystem
	runsWhenDisabled bool
}

// NewBase seeds the helper with a display name and its owned subsystems.
func NewBase(name string, requirements ...Subsystem) Base {
	b := Base{id: uuid.NewString(), name: name}
	b.AddRequirements(requirements...)
	return b
}

// ID returns the unique identity assigned at construction.
func (b *Base) ID() string {
	return b.id
}

// Name implements Command.Name.
func (b *Base) Name() string {
	return b.name
}

// AddRequirements declares additional owned subsystems, ignoring nils and
// duplicates.
func (b *Base) AddRequirements(requirements ...Subsystem) {
	for _, req := range requirements {
		if req == nil || b.requires(req) {
			continue
		}
		b.requirements = append(b.requirements, req)
	}
}

func (b *Base) requires(sub Subsystem) bool {
	for _, req := range b.requirements {
		if req == sub {
			return true
		}
	}
	return false
}

// Requirements implements Command.Requirements.
func (b *Base) Requirements() []Subsystem {
	return append([]Subsystem{}, b.requirements...)
}

// RunsWhenDisabled implements Command.RunsWhenDisabled.
func (b *Base) RunsWhenDisabled() bool {
	return b.runsWhenDisabled
}

// SetRunsWhenDisabled marks whether the command may keep running while the
// robot is disabled.
func (b *Base) SetRunsWhenDisabled(v bool) {
	b.runsWhenDisabled = v
}

// Initialize implements Command.Initialize.
func (b *Base) Initialize() {}

// Execute implements Command.Execute.
func (b *Base) Execute() {}

// End implements Command.End.
func (b *Base) End(bool) {}

// Resource is a named Subsystem token for collaborators that have no richer
// representation.
type Resource struct {
	name string
}

// NewResource returns a new, distinct subsystem token.
func NewResource(name string) *Resource {
	return &Resource{name: name}
}

// SubsystemName implements Subsystem.
func (r *Resource) SubsystemName() string {
	return r.name
}
