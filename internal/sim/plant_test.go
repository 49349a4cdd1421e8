package sim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingrea/hookclimb/internal/config"
)

const dt = 20 * time.Millisecond

func newPlant(t *testing.T, mutate func(*config.Config)) *Plant {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(&cfg)
	}
	require.NoError(t, cfg.Validate())
	return New(cfg, time.Unix(0, 0))
}

// settle steps until the carriage stops moving or n steps pass.
func settle(p *Plant, n int) {
	for i := 0; i < n; i++ {
		before := p.Height()
		p.Step(dt)
		if p.Height() == before {
			return
		}
	}
}

func TestServoMovesAtConfiguredSpeed(t *testing.T) {
	p := newPlant(t, nil)
	p.SetTargetPosition(0.5)
	p.Step(100 * time.Millisecond)
	assert.InDelta(t, 0.04, p.Height(), 1e-9)

	p.SetHighClimbSpeed()
	p.Step(100 * time.Millisecond)
	assert.InDelta(t, 0.12, p.Height(), 1e-9)

	settle(p, 1000)
	assert.InDelta(t, 0.5, p.Height(), 1e-9, "no overshoot")
}

func TestRawOutputAndSensorReset(t *testing.T) {
	p := newPlant(t, func(c *config.Config) { c.Sim.StartHeight = 0.01 })
	assert.False(t, p.Value())

	p.SetRawOutput(-0.05)
	for i := 0; i < 20 && !p.Value(); i++ {
		p.Step(dt)
	}
	require.True(t, p.Value())

	p.SetRawOutput(-1)
	p.Step(time.Second)
	assert.Zero(t, p.Height(), "travel is clamped at the bottom")

	p.SetTargetPosition(0.2)
	settle(p, 1000)
	p.SetSensorPosition(0.5)
	assert.InDelta(t, 0.5, p.Height(), 1e-9)
	p.SetTargetPosition(0.5)
	p.Step(dt)
	assert.InDelta(t, 0.5, p.Height(), 1e-9, "targets follow the redefined frame")
}

func TestHooksEngageOnCrossings(t *testing.T) {
	p := newPlant(t, func(c *config.Config) { c.Sim.StartHeight = 0.65 })

	p.SetTargetPosition(0.01)
	settle(p, 1000)
	assert.True(t, p.BarOnClimbHooks())
	assert.False(t, p.BarOnGrabHooks())

	p.SetTargetPosition(0.12)
	settle(p, 1000)
	assert.True(t, p.BarOnGrabHooks())
	assert.False(t, p.BarOnClimbHooks(), "above the bar the climb hooks read clear")

	p.SetTargetPosition(0.65)
	settle(p, 1000)
	p.SetTargetPosition(0.12)
	settle(p, 1000)
	assert.False(t, p.BarOnGrabHooks(), "hooks let go at full extension")
}

func TestMissesSwallowCrossings(t *testing.T) {
	p := newPlant(t, func(c *config.Config) {
		c.Sim.StartHeight = 0.65
		c.Sim.ClimbHookMisses = 1
	})

	p.SetTargetPosition(0.01)
	settle(p, 1000)
	assert.False(t, p.BarOnClimbHooks())
	assert.Zero(t, p.Snapshot().ClimbMissesLeft)

	p.SetTargetPosition(0.65)
	settle(p, 1000)
	p.SetTargetPosition(0.01)
	settle(p, 1000)
	assert.True(t, p.BarOnClimbHooks())
}

func TestTiltSwingsAndClockFollowsSteps(t *testing.T) {
	p := newPlant(t, nil)
	assert.InDelta(t, 35, p.TiltAngle(), 1e-9)
	p.Step(500 * time.Millisecond)
	assert.InDelta(t, 55, p.TiltAngle(), 1e-9)
	assert.Equal(t, time.Unix(0, 0).Add(500*time.Millisecond), p.Now())

	p.Step(0)
	p.Step(-time.Second)
	assert.Equal(t, 500*time.Millisecond, p.Snapshot().Elapsed)
}

func TestSnapshotReflectsCommands(t *testing.T) {
	p := newPlant(t, nil)
	p.ExtendSolenoid()
	p.SetHighClimbSpeed()
	p.SetMaxVelocity(1.5)
	s := p.Snapshot()
	assert.True(t, s.SolenoidExtended)
	assert.True(t, s.HighSpeed)
	assert.InDelta(t, 1.5, s.MaxVelocity, 1e-9)
	assert.True(t, s.AtZero)

	p.RetractSolenoid()
	p.SetClimbSpeed()
	s = p.Snapshot()
	assert.False(t, s.SolenoidExtended)
	assert.False(t, s.HighSpeed)
}
