// internal/config/config.go
//
// This package handles configuration and the .hookclimb directory structure.
// Every setpoint, tolerance, wait and speed the climb uses lives here so the
// routine itself carries no magic numbers.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// Dir is the name of the directory we create in each project
	Dir = ".hookclimb"

	configFileName = "config.yaml"
	logFileName    = "hookclimb.log"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("config: invalid")

const defaultConfigYAML = `# hookclimb configuration
version: 1

# Elevator setpoints in metres, measured from the magnetic zero.
heights:
  pull_down: 0.01
  min_bar_contact: 0.05
  latch: 0.12
  hook_catch: 0.20
  swing: 0.55
  below_extended: 0.55
  extended: 0.65
  tolerance: 0.005

# Gyro gate that waits for the swing to bring the hooks under the next bar.
# Set gate: false to replace it with a fixed swing_wait.
tilt:
  gate: true
  min_angle: 30
  max_angle: 45
  swing_wait: 70ms

timing:
  period: 20ms
  settle_wait: 500ms
  final_wait: 1s

# Speeds in metres per second.
speeds:
  climb: 0.4
  high_climb: 0.8
  drive_max: 4.0
  drive_climb: 1.0

# Simulated plant used by the monitor and headless runs.
sim:
  start_height: 0
  bar_height: 0.10
  latch_contact: 0.11
  climb_hook_misses: 0
  grab_hook_misses: 0
  raw_speed: 1.0
  tilt_center: 35
  tilt_amplitude: 20
  tilt_period: 2s
`

// Heights lists every elevator setpoint of the climb.
type Heights struct {
	PullDown      float64 `yaml:"pull_down"`
	MinBarContact float64 `yaml:"min_bar_contact"`
	Latch         float64 `yaml:"latch"`
	HookCatch     float64 `yaml:"hook_catch"`
	Swing         float64 `yaml:"swing"`
	BelowExtended float64 `yaml:"below_extended"`
	Extended      float64 `yaml:"extended"`
	Tolerance     float64 `yaml:"tolerance"`
}

// Tilt configures the swing gate.
type Tilt struct {
	Gate      bool          `yaml:"gate"`
	MinAngle  float64       `yaml:"min_angle"`
	MaxAngle  float64       `yaml:"max_angle"`
	SwingWait time.Duration `yaml:"swing_wait"`
}

// Timing holds the loop period and the fixed waits of the routine.
type Timing struct {
	Period     time.Duration `yaml:"period"`
	SettleWait time.Duration `yaml:"settle_wait"`
	FinalWait  time.Duration `yaml:"final_wait"`
}

// Speeds holds actuator speed modes and drivetrain velocity caps.
type Speeds struct {
	Climb      float64 `yaml:"climb"`
	HighClimb  float64 `yaml:"high_climb"`
	DriveMax   float64 `yaml:"drive_max"`
	DriveClimb float64 `yaml:"drive_climb"`
}

// Sim parameterizes the simulated plant.
type Sim struct {
	StartHeight     float64       `yaml:"start_height"`
	BarHeight       float64       `yaml:"bar_height"`
	LatchContact    float64       `yaml:"latch_contact"`
	ClimbHookMisses int           `yaml:"climb_hook_misses"`
	GrabHookMisses  int           `yaml:"grab_hook_misses"`
	RawSpeed        float64       `yaml:"raw_speed"`
	TiltCenter      float64       `yaml:"tilt_center"`
	TiltAmplitude   float64       `yaml:"tilt_amplitude"`
	TiltPeriod      time.Duration `yaml:"tilt_period"`
}

// Config models .hookclimb/config.yaml.
type Config struct {
	Version int     `yaml:"version"`
	Heights Heights `yaml:"heights"`
	Tilt    Tilt    `yaml:"tilt"`
	Timing  Timing  `yaml:"timing"`
	Speeds  Speeds  `yaml:"speeds"`
	Sim     Sim     `yaml:"sim"`
}

// Default returns the built-in configuration. It matches the file written by
// InitDir.
func Default() Config {
	return Config{
		Version: 1,
		Heights: Heights{
			PullDown:      0.01,
			MinBarContact: 0.05,
			Latch:         0.12,
			HookCatch:     0.20,
			Swing:         0.55,
			BelowExtended: 0.55,
			Extended:      0.65,
			Tolerance:     0.005,
		},
		Tilt: Tilt{
			Gate:      true,
			MinAngle:  30,
			MaxAngle:  45,
			SwingWait: 70 * time.Millisecond,
		},
		Timing: Timing{
			Period:     20 * time.Millisecond,
			SettleWait: 500 * time.Millisecond,
			FinalWait:  time.Second,
		},
		Speeds: Speeds{
			Climb:      0.4,
			HighClimb:  0.8,
			DriveMax:   4.0,
			DriveClimb: 1.0,
		},
		Sim: Sim{
			StartHeight:   0,
			BarHeight:     0.10,
			LatchContact:  0.11,
			RawSpeed:      1.0,
			TiltCenter:    35,
			TiltAmplitude: 20,
			TiltPeriod:    2 * time.Second,
		},
	}
}

// Parse decodes YAML over the defaults, so omitted keys keep their built-in
// values, and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads a configuration file. A missing file yields the defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Validate checks that setpoints are ordered along the travel and that the
// remaining values are usable.
func (c Config) Validate() error {
	h := c.Heights
	ordered := []struct {
		name  string
		value float64
	}{
		{"pull_down", h.PullDown},
		{"min_bar_contact", h.MinBarContact},
		{"latch", h.Latch},
		{"hook_catch", h.HookCatch},
		{"below_extended", h.BelowExtended},
	}
	for i := 1; i < len(ordered); i++ {
		if ordered[i-1].value >= ordered[i].value {
			return fmt.Errorf("%w: heights.%s (%.3f) must be below heights.%s (%.3f)",
				ErrInvalid, ordered[i-1].name, ordered[i-1].value, ordered[i].name, ordered[i].value)
		}
	}
	if h.BelowExtended > h.Extended {
		return fmt.Errorf("%w: heights.below_extended must not exceed heights.extended", ErrInvalid)
	}
	if h.Swing <= h.HookCatch || h.Swing > h.Extended {
		return fmt.Errorf("%w: heights.swing must lie above hook_catch and not exceed extended", ErrInvalid)
	}
	if h.Tolerance <= 0 {
		return fmt.Errorf("%w: heights.tolerance must be positive", ErrInvalid)
	}
	if c.Tilt.MinAngle >= c.Tilt.MaxAngle {
		return fmt.Errorf("%w: tilt.min_angle must be below tilt.max_angle", ErrInvalid)
	}
	if !c.Tilt.Gate && c.Tilt.SwingWait <= 0 {
		return fmt.Errorf("%w: tilt.swing_wait must be positive when the gate is disabled", ErrInvalid)
	}
	if c.Timing.Period <= 0 {
		return fmt.Errorf("%w: timing.period must be positive", ErrInvalid)
	}
	if c.Timing.SettleWait < 0 || c.Timing.FinalWait < 0 {
		return fmt.Errorf("%w: timing waits must not be negative", ErrInvalid)
	}
	if c.Speeds.Climb <= 0 || c.Speeds.HighClimb <= 0 {
		return fmt.Errorf("%w: speeds.climb and speeds.high_climb must be positive", ErrInvalid)
	}
	if c.Sim.ClimbHookMisses < 0 || c.Sim.GrabHookMisses < 0 {
		return fmt.Errorf("%w: sim miss counts must not be negative", ErrInvalid)
	}
	return nil
}

// InitDir creates the .hookclimb directory structure in the given project
// directory and writes a default config.yaml when none exists.
//
// Structure created:
// .hookclimb/
// ├── config.yaml
// └── logs/
func InitDir(projectDir string) error {
	root := filepath.Join(projectDir, Dir)
	if err := os.MkdirAll(filepath.Join(root, "logs"), 0o755); err != nil {
		return err
	}
	return ensureConfig(filepath.Join(root, configFileName))
}

func ensureConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}

// Path returns the config file location for a project.
func Path(projectDir string) string {
	return filepath.Join(projectDir, Dir, configFileName)
}

// LogPath returns the log file location for a project.
func LogPath(projectDir string) string {
	return filepath.Join(projectDir, Dir, "logs", logFileName)
}
