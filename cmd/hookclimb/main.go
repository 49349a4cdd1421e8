// cmd/hookclimb/main.go
//
// This is the entry point for the hookclimb CLI.
//
// Flow:
// 1. Load .hookclimb/config.yaml (defaults when it does not exist)
// 2. Build the simulated robot from it
// 3. Either open the live monitor, run one command headless, or list commands

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/kingrea/hookclimb/internal/config"
	"github.com/kingrea/hookclimb/internal/logging"
	"github.com/kingrea/hookclimb/internal/robot"
	"github.com/kingrea/hookclimb/internal/tui"
)

var (
	configPath  string
	climbMisses int
	latchMisses int
	debug       bool
	runTimeout  time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "hookclimb",
	Short: "Bar-to-bar climber controller on a simulated robot",
	Long: `hookclimb drives the elevator climb routine through its command scheduler
against a simulated plant. The monitor shows the climb live; run executes a
single command headless and exits when it finishes.`,
	SilenceUsage: true,
}

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Open the live climb monitor",
	Args:  cobra.NoArgs,
	RunE:  runMonitor,
}

var runCmd = &cobra.Command{
	Use:   "run [command]",
	Short: "Run setup and then one command headless",
	Long: `Run schedules setup, raises the elevator and then runs the named command
(climb by default) at the configured loop period until it finishes.

A climb whose grab never succeeds never finishes; --timeout bounds it.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHeadless,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the registered commands",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default .hookclimb/config.yaml in the working directory)")
	rootCmd.PersistentFlags().IntVar(&climbMisses, "misses", -1, "override sim.climb_hook_misses")
	rootCmd.PersistentFlags().IntVar(&latchMisses, "latch-misses", -1, "override sim.grab_hook_misses")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "human-readable debug logging")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 2*time.Minute, "give up after this long (0 waits forever)")

	rootCmd.AddCommand(monitorCmd, runCmd, listCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig resolves the config file and applies the miss overrides.
func loadConfig() (config.Config, string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return config.Config{}, "", fmt.Errorf("get working directory: %w", err)
	}
	path := configPath
	if path == "" {
		path = config.Path(cwd)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, "", err
	}
	if climbMisses >= 0 {
		cfg.Sim.ClimbHookMisses = climbMisses
	}
	if latchMisses >= 0 {
		cfg.Sim.GrabHookMisses = latchMisses
	}
	return cfg, cwd, cfg.Validate()
}

func runMonitor(cmd *cobra.Command, args []string) error {
	cfg, cwd, err := loadConfig()
	if err != nil {
		return err
	}
	if err := config.InitDir(cwd); err != nil {
		return fmt.Errorf("initialize %s: %w", config.Dir, err)
	}
	// The monitor owns the terminal, so logs go to the project log file.
	log, err := logging.New(logging.Options{Debug: debug, Path: config.LogPath(cwd)})
	if err != nil {
		return err
	}
	defer log.Close()

	r, err := robot.New(cfg, log)
	if err != nil {
		return err
	}
	p := tea.NewProgram(tui.NewApp(r), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run monitor: %w", err)
	}
	return nil
}

func runHeadless(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := logging.New(logging.Options{Debug: debug})
	if err != nil {
		return err
	}
	defer log.Close()

	r, err := robot.New(cfg, log)
	if err != nil {
		return err
	}
	name := robot.CommandClimb
	if len(args) == 1 {
		name = args[0]
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = r.RunHeadless(ctx, name, runTimeout)
	switch {
	case err == nil:
		fmt.Fprintf(cmd.OutOrStdout(), "%s finished after %s simulated\n", name, r.Plant.Snapshot().Elapsed)
		return nil
	case errors.Is(err, context.Canceled):
		fmt.Fprintln(cmd.ErrOrStderr(), "interrupted")
		return err
	default:
		return err
	}
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	r, err := robot.New(cfg, nil)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, entry := range r.Commands.Entries() {
		fmt.Fprintf(out, "%-18s %s\n", entry.Name, entry.Description)
	}
	return nil
}
