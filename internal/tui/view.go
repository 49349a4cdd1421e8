package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/hookclimb/internal/climb"
)

var (
	headerStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF6B6B")).MarginBottom(1)
	panelTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	boxStyle        = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#444444")).Padding(0, 1)
	labelOn         = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50")).Bold(true)
	labelOff        = lipgloss.NewStyle().Foreground(lipgloss.Color("#999999"))
	labelWarn       = lipgloss.NewStyle().Foreground(lipgloss.Color("#F7B801")).Bold(true)
	labelError      = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
	detailTextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#A0AEC0"))
)

// View renders the current state to a string.
func (a *App) View() string {
	if a.quitting {
		return ""
	}
	header := headerStyle.Render("⬡ HOOKCLIMB")

	left := lipgloss.JoinVertical(lipgloss.Left,
		boxStyle.Render(a.renderPlant()),
		boxStyle.Render(a.renderStage()),
	)
	right := lipgloss.JoinVertical(lipgloss.Left,
		boxStyle.Render(a.commands.View()),
		boxStyle.Render(a.renderEvents()),
	)
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right)
	if a.width > 0 && a.width < 90 {
		body = lipgloss.JoinVertical(lipgloss.Left, left, right)
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, body, a.renderStatus(), a.help.View(a.keys))
}

func (a *App) renderPlant() string {
	snap := a.robot.Plant.Snapshot()
	h := a.robot.Config.Heights
	fraction := 0.0
	if h.Extended > 0 {
		fraction = snap.Height / h.Extended
	}
	fraction = min(1, max(0, fraction))

	mode := "closed loop"
	if snap.OpenLoop {
		mode = "open loop"
	}
	speed := "climb"
	if snap.HighSpeed {
		speed = "high climb"
	}
	lines := []string{
		panelTitleStyle.Render("ELEVATOR"),
		a.height.ViewAs(fraction),
		fmt.Sprintf("height %.3f m · target %.3f m · %s", snap.Height, snap.Target, mode),
		fmt.Sprintf("speed %s · drive cap %.1f m/s", speed, snap.MaxVelocity),
		fmt.Sprintf("piston %s · zero %s", flag(a.robot.Elevator.SolenoidExtended(), "extended", "retracted"), flag(snap.AtZero, "closed", "open")),
		fmt.Sprintf("climb hooks %s · grab hooks %s", flag(snap.ClimbHooks, "on bar", "clear"), flag(snap.GrabHooks, "on bar", "clear")),
		fmt.Sprintf("tilt %5.1f° · sim time %s", snap.Tilt, snap.Elapsed.Truncate(10*time.Millisecond)),
		detailTextStyle.Render(fmt.Sprintf("misses left: climb %d · grab %d", snap.ClimbMissesLeft, snap.GrabMissesLeft)),
	}
	return strings.Join(lines, "\n")
}

func (a *App) renderStage() string {
	lines := []string{panelTitleStyle.Render("CLIMB")}
	plan := a.robot.Plan()
	if plan == nil {
		lines = append(lines, labelOff.Render("not started"))
		if !a.robot.Elevator.Initialized() {
			lines = append(lines, detailTextStyle.Render("press s to set up, then c to climb"))
		}
		return strings.Join(lines, "\n")
	}
	idx, count := plan.StageIndex(), plan.StageCount()
	switch {
	case idx < 0:
		lines = append(lines, labelOff.Render("not started"))
	case idx >= count:
		lines = append(lines, labelOn.Render("complete"))
	default:
		lines = append(lines, fmt.Sprintf("stage %d/%d · %s", idx+1, count, labelWarn.Render(plan.Stage())))
	}
	lines = append(lines,
		renderGrab("climb hooks", plan.GrabA),
		renderGrab("grab hooks", plan.GrabB),
	)
	if plan.Gate != nil {
		lines = append(lines, detailTextStyle.Render(fmt.Sprintf("tilt gate last sample %.1f°", plan.Gate.Angle())))
	}
	return strings.Join(lines, "\n")
}

func renderGrab(label string, g *climb.GrabWithAbort) string {
	style := labelOff
	switch g.Phase() {
	case climb.PhaseAbortedReextending, climb.PhaseAbortedVerifying:
		style = labelWarn
	case climb.PhaseAdvancing:
		if g.Grabbed() {
			style = labelOn
		}
	}
	return fmt.Sprintf("%-12s %s · retries %d", label, style.Render(string(g.Phase())), g.Retries())
}

func (a *App) renderEvents() string {
	lines := []string{panelTitleStyle.Render("EVENTS")}
	if len(a.events) == 0 {
		lines = append(lines, labelOff.Render("no commands yet"))
	}
	lines = append(lines, a.events...)
	return detailTextStyle.Render(strings.Join(lines, "\n"))
}

func (a *App) renderStatus() string {
	state := labelOn.Render("ENABLED")
	if !a.robot.Scheduler.Enabled() {
		state = labelError.Render("DISABLED")
	}
	line := fmt.Sprintf("%s · running %d", state, len(a.robot.Scheduler.Running()))
	if a.err != nil {
		line += " · " + labelError.Render(a.err.Error())
	} else if a.statusMsg != "" {
		line += " · " + a.statusMsg
	}
	return line
}

func flag(on bool, yes, no string) string {
	if on {
		return labelOn.Render(yes)
	}
	return labelOff.Render(no)
}
