// Package sim is a deterministic stand-in for the climber hardware. A Plant
// implements every port in internal/elevator plus command.Clock, and only
// moves when Step is called, so a climb can be replayed tick for tick.
//
// The bar model is deliberately small. The climb hooks engage when the
// carriage crosses the bar height going down and let go once it is back at
// full extension. The grab hooks latch when the carriage crosses the latch
// contact height going up while the climb hooks hold the bar, and release
// below it. Both let go at full extension. Each configured miss swallows one
// crossing without engaging.
package sim

import (
	"math"
	"time"

	"github.com/kingrea/hookclimb/internal/config"
)

// zeroBand is how close to the bottom of travel the magnetic switch closes.
const zeroBand = 0.002

// Plant is the simulated elevator, hooks, gyro and drivetrain limiter.
type Plant struct {
	sim      config.Sim
	speeds   config.Speeds
	extended float64
	epoch    time.Time
	elapsed  time.Duration

	pos      float64
	offset   float64
	target   float64
	raw      float64
	openLoop bool

	highSpeed   bool
	solenoid    bool
	maxVelocity float64

	hanging     bool
	latched     bool
	climbMisses int
	grabMisses  int
}

// Snapshot is a read-only view of the plant for display.
type Snapshot struct {
	Elapsed          time.Duration
	Height           float64
	Target           float64
	OpenLoop         bool
	HighSpeed        bool
	SolenoidExtended bool
	ClimbHooks       bool
	GrabHooks        bool
	AtZero           bool
	Tilt             float64
	MaxVelocity      float64
	ClimbMissesLeft  int
	GrabMissesLeft   int
}

// New builds a plant from the configuration. epoch anchors the clock.
func New(cfg config.Config, epoch time.Time) *Plant {
	return &Plant{
		sim:         cfg.Sim,
		speeds:      cfg.Speeds,
		extended:    cfg.Heights.Extended - cfg.Heights.Tolerance,
		epoch:       epoch,
		pos:         cfg.Sim.StartHeight,
		target:      cfg.Sim.StartHeight,
		maxVelocity: cfg.Speeds.DriveMax,
		climbMisses: cfg.Sim.ClimbHookMisses,
		grabMisses:  cfg.Sim.GrabHookMisses,
	}
}

// Step advances the plant by dt.
func (p *Plant) Step(dt time.Duration) {
	if dt <= 0 {
		return
	}
	prev := p.pos
	secs := dt.Seconds()
	if p.openLoop {
		p.pos += p.raw * p.sim.RawSpeed * secs
	} else {
		goal := p.target - p.offset
		travel := p.speed() * secs
		diff := goal - p.pos
		if math.Abs(diff) <= travel {
			p.pos = goal
		} else {
			p.pos += math.Copysign(travel, diff)
		}
	}
	if p.pos < 0 {
		p.pos = 0
	}
	p.contact(prev, p.pos)
	p.elapsed += dt
}

func (p *Plant) speed() float64 {
	if p.highSpeed {
		return p.speeds.HighClimb
	}
	return p.speeds.Climb
}

func (p *Plant) contact(prev, pos float64) {
	bar, latch := p.sim.BarHeight, p.sim.LatchContact

	if prev > bar && pos <= bar && !p.hanging {
		if p.climbMisses > 0 {
			p.climbMisses--
		} else {
			p.hanging = true
		}
	}
	if pos >= p.extended {
		p.hanging = false
		p.latched = false
	}

	if prev < latch && pos >= latch && p.hanging && !p.latched {
		if p.grabMisses > 0 {
			p.grabMisses--
		} else {
			p.latched = true
		}
	}
	if pos < latch {
		p.latched = false
	}
}

// Now implements command.Clock on simulated time.
func (p *Plant) Now() time.Time {
	return p.epoch.Add(p.elapsed)
}

// SetTargetPosition implements elevator.Actuator.
func (p *Plant) SetTargetPosition(metres float64) {
	p.target = metres
	p.openLoop = false
}

// Height implements elevator.Actuator.
func (p *Plant) Height() float64 {
	return p.pos + p.offset
}

// SetRawOutput implements elevator.Actuator.
func (p *Plant) SetRawOutput(v float64) {
	p.raw = v
	p.openLoop = true
}

// SetSensorPosition implements elevator.Actuator.
func (p *Plant) SetSensorPosition(metres float64) {
	p.offset = metres - p.pos
}

// ExtendSolenoid implements elevator.Actuator.
func (p *Plant) ExtendSolenoid() { p.solenoid = true }

// RetractSolenoid implements elevator.Actuator.
func (p *Plant) RetractSolenoid() { p.solenoid = false }

// SetClimbSpeed implements elevator.Actuator.
func (p *Plant) SetClimbSpeed() { p.highSpeed = false }

// SetHighClimbSpeed implements elevator.Actuator.
func (p *Plant) SetHighClimbSpeed() { p.highSpeed = true }

// BarOnClimbHooks implements elevator.HookSensors.
func (p *Plant) BarOnClimbHooks() bool {
	return p.hanging && p.pos <= p.sim.BarHeight
}

// BarOnGrabHooks implements elevator.HookSensors.
func (p *Plant) BarOnGrabHooks() bool {
	return p.latched && p.pos >= p.sim.LatchContact
}

// TiltAngle implements elevator.Gyro. The chassis swings sinusoidally.
func (p *Plant) TiltAngle() float64 {
	if p.sim.TiltPeriod <= 0 {
		return p.sim.TiltCenter
	}
	phase := 2 * math.Pi * p.elapsed.Seconds() / p.sim.TiltPeriod.Seconds()
	return p.sim.TiltCenter + p.sim.TiltAmplitude*math.Sin(phase)
}

// Value implements elevator.ZeroSensor.
func (p *Plant) Value() bool {
	return p.pos <= zeroBand
}

// SetMaxVelocity implements elevator.VelocityLimiter.
func (p *Plant) SetMaxVelocity(v float64) {
	p.maxVelocity = v
}

// Snapshot captures the plant state.
func (p *Plant) Snapshot() Snapshot {
	return Snapshot{
		Elapsed:          p.elapsed,
		Height:           p.Height(),
		Target:           p.target,
		OpenLoop:         p.openLoop,
		HighSpeed:        p.highSpeed,
		SolenoidExtended: p.solenoid,
		ClimbHooks:       p.BarOnClimbHooks(),
		GrabHooks:        p.BarOnGrabHooks(),
		AtZero:           p.Value(),
		Tilt:             p.TiltAngle(),
		MaxVelocity:      p.maxVelocity,
		ClimbMissesLeft:  p.climbMisses,
		GrabMissesLeft:   p.grabMisses,
	}
}
