// Package elevator defines the hardware ports the climb consumes and the
// Elevator and Drivetrain subsystems that wrap them. Drivers live outside
// this module; the simulator in internal/sim implements every port.
package elevator

import "math"

// Actuator is the elevator motor and pneumatics control surface.
type Actuator interface {
	SetTargetPosition(metres float64)
	Height() float64
	SetRawOutput(v float64)
	SetSensorPosition(metres float64)
	ExtendSolenoid()
	RetractSolenoid()
	SetClimbSpeed()
	SetHighClimbSpeed()
}

// HookSensors reports the limit switches on both hook pairs.
type HookSensors interface {
	BarOnClimbHooks() bool
	BarOnGrabHooks() bool
}

// Gyro reports the chassis tilt in degrees.
type Gyro interface {
	TiltAngle() float64
}

// ZeroSensor is the magnetic switch at the bottom of the travel.
type ZeroSensor interface {
	Value() bool
}

// VelocityLimiter caps the drivetrain speed.
type VelocityLimiter interface {
	SetMaxVelocity(metresPerSecond float64)
}

// AtSetpoint reports |measured - setpoint| <= tolerance.
func AtSetpoint(measured, setpoint, tolerance float64) bool {
	return math.Abs(measured-setpoint) <= tolerance
}
