// internal/tui/app.go
//
// This is the live climb monitor. It uses bubbletea, which follows The Elm
// Architecture:
//
// 1. Model: the robot plus what the screen remembers about it
// 2. Update: a tick message steps the robot, a key message commands it
// 3. View: renders plant, stage and event panels to a string
//
// The robot is only ever touched from Update, so the scheduler keeps its one
// thread of control even though bubbletea runs commands concurrently.

package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kingrea/hookclimb/internal/robot"
	"github.com/kingrea/hookclimb/internal/scheduler"
)

const (
	eventLogSize = 8
	// maxStepFactor caps how many periods one late tick may simulate.
	maxStepFactor = 5
)

type tickMsg time.Time

type keyMap struct {
	Setup  key.Binding
	Climb  key.Binding
	Rezero key.Binding
	Down   key.Binding
	Abort  key.Binding
	Enable key.Binding
	Run    key.Binding
	Quit   key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Setup, k.Climb, k.Abort, k.Enable, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Setup, k.Climb, k.Rezero, k.Down},
		{k.Abort, k.Enable, k.Run, k.Quit},
	}
}

func defaultKeys() keyMap {
	return keyMap{
		Setup:  key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "setup")),
		Climb:  key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "climb")),
		Rezero: key.NewBinding(key.WithKeys("z"), key.WithHelp("z", "rezero")),
		Down:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "down")),
		Abort:  key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "abort")),
		Enable: key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "enable/disable")),
		Run:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "run selected")),
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// commandItem implements list.Item for a registered command.
type commandItem struct {
	name string
	desc string
}

func (i commandItem) Title() string       { return i.name }
func (i commandItem) Description() string { return i.desc }
func (i commandItem) FilterValue() string { return i.name }

// App is the monitor model.
type App struct {
	robot  *robot.Robot
	period time.Duration
	last   time.Time

	keys     keyMap
	help     help.Model
	height   progress.Model
	commands list.Model

	events    []string
	statusMsg string
	err       error

	width    int
	rows     int
	ticks    int
	quitting bool
}

// NewApp builds the monitor around r and subscribes to its scheduler.
func NewApp(r *robot.Robot) *App {
	items := make([]list.Item, 0)
	for _, entry := range r.Commands.Entries() {
		items = append(items, commandItem{name: entry.Name, desc: entry.Description})
	}
	commands := list.New(items, list.NewDefaultDelegate(), 0, 0)
	commands.Title = "COMMANDS"
	commands.SetShowStatusBar(false)
	commands.SetShowHelp(false)
	commands.SetFilteringEnabled(false)
	commands.DisableQuitKeybindings()

	a := &App{
		robot:    r,
		period:   r.Config.Timing.Period,
		keys:     defaultKeys(),
		help:     help.New(),
		height:   progress.New(progress.WithDefaultGradient(), progress.WithWidth(40), progress.WithoutPercentage()),
		commands: commands,
	}
	r.Scheduler.OnEvent(a.recordEvent)
	return a
}

func (a *App) recordEvent(ev scheduler.Event) {
	stamp := a.robot.Plant.Snapshot().Elapsed.Truncate(10 * time.Millisecond)
	a.pushEvent(fmt.Sprintf("%8s  %-10s %s [%s]", stamp, ev.Kind, ev.Command.Name(), shortID(ev.ID)))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func (a *App) pushEvent(line string) {
	a.events = append(a.events, line)
	if len(a.events) > eventLogSize {
		a.events = a.events[len(a.events)-eventLogSize:]
	}
}

func (a *App) tick() tea.Cmd {
	return tea.Tick(a.period, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init is called once when the program starts.
func (a *App) Init() tea.Cmd {
	return a.tick()
}

// Update is called when a message is received.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.rows = msg.Height
		a.help.Width = msg.Width
		a.commands.SetSize(max(20, msg.Width/3), max(6, msg.Height-14))
		return a, nil

	case tickMsg:
		a.step(time.Time(msg))
		return a, a.tick()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, a.keys.Quit):
			a.quitting = true
			a.robot.Scheduler.CancelAll()
			return a, tea.Quit
		case key.Matches(msg, a.keys.Setup):
			a.start(robot.CommandSetup)
			return a, nil
		case key.Matches(msg, a.keys.Climb):
			a.start(robot.CommandClimb)
			return a, nil
		case key.Matches(msg, a.keys.Rezero):
			a.start(robot.CommandRezero)
			return a, nil
		case key.Matches(msg, a.keys.Down):
			a.start(robot.CommandDown)
			return a, nil
		case key.Matches(msg, a.keys.Abort):
			a.robot.Abort()
			a.statusMsg = "Aborted: all commands cancelled"
			return a, nil
		case key.Matches(msg, a.keys.Enable):
			enabled := !a.robot.Scheduler.Enabled()
			a.robot.Scheduler.SetEnabled(enabled)
			a.statusMsg = fmt.Sprintf("Robot %s", enabledLabel(enabled))
			return a, nil
		case key.Matches(msg, a.keys.Run):
			if item, ok := a.commands.SelectedItem().(commandItem); ok {
				a.start(item.name)
			}
			return a, nil
		}
	}

	var cmd tea.Cmd
	a.commands, cmd = a.commands.Update(msg)
	return a, cmd
}

// step advances the robot by the wall time since the last tick, bounded so a
// stalled terminal does not teleport the carriage.
func (a *App) step(now time.Time) {
	dt := a.period
	if !a.last.IsZero() {
		dt = now.Sub(a.last)
	}
	a.last = now
	if limit := maxStepFactor * a.period; dt > limit {
		dt = limit
	}
	a.robot.Periodic(dt)
	a.ticks++
}

func (a *App) start(name string) {
	if _, err := a.robot.Start(name); err != nil {
		a.err = err
		a.statusMsg = ""
		return
	}
	a.err = nil
	a.statusMsg = fmt.Sprintf("Started %s", name)
}

func enabledLabel(enabled bool) string {
	if enabled {
		return "enabled"
	}
	return "disabled"
}
