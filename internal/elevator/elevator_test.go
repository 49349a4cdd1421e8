package elevator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordingMotors struct {
	target   float64
	height   float64
	raw      float64
	extended bool
	high     bool
}

func (m *recordingMotors) SetTargetPosition(p float64) { m.target = p }
func (m *recordingMotors) Height() float64             { return m.height }
func (m *recordingMotors) SetRawOutput(v float64)      { m.raw = v }
func (m *recordingMotors) SetSensorPosition(p float64) { m.height = p }
func (m *recordingMotors) ExtendSolenoid()             { m.extended = true }
func (m *recordingMotors) RetractSolenoid()            { m.extended = false }
func (m *recordingMotors) SetClimbSpeed()              { m.high = false }
func (m *recordingMotors) SetHighClimbSpeed()          { m.high = true }

type limiter struct{ v float64 }

func (l *limiter) SetMaxVelocity(v float64) { l.v = v }

func TestAtSetpointIsInclusive(t *testing.T) {
	assert.True(t, AtSetpoint(0.625, 0.5, 0.125))
	assert.True(t, AtSetpoint(0.375, 0.5, 0.125))
	assert.False(t, AtSetpoint(0.6875, 0.5, 0.125))
	assert.False(t, AtSetpoint(0.3125, 0.5, 0.125))
}

func TestElevatorToggleTracksCommandedState(t *testing.T) {
	m := &recordingMotors{}
	e := New(m, nil, nil, nil)

	e.ToggleSolenoid()
	assert.True(t, m.extended)
	assert.True(t, e.SolenoidExtended())
	e.ToggleSolenoid()
	assert.False(t, m.extended)
}

func TestElevatorClampsRawOutput(t *testing.T) {
	m := &recordingMotors{}
	e := New(m, nil, nil, nil)
	e.SetRawOutput(3)
	assert.Equal(t, 1.0, m.raw)
	e.SetRawOutput(-2)
	assert.Equal(t, -1.0, m.raw)
}

func TestElevatorInitializedFlag(t *testing.T) {
	e := New(&recordingMotors{}, nil, nil, nil)
	assert.False(t, e.Initialized())
	e.MarkInitialized()
	assert.True(t, e.Initialized())
}

func TestDrivetrainRemembersCap(t *testing.T) {
	l := &limiter{}
	d := NewDrivetrain(l)
	d.SetMaxVelocity(1.5)
	assert.Equal(t, 1.5, l.v)
	assert.Equal(t, 1.5, d.MaxVelocity())
	assert.Equal(t, "drivetrain", d.SubsystemName())
}
