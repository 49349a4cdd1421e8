package elevator

// Elevator is the carriage subsystem: motors, hook switches, tilt piston,
// zero switch and the gyro used to time the swing.
type Elevator struct {
	motors      Actuator
	hooks       HookSensors
	zero        ZeroSensor
	gyro        Gyro
	extended    bool
	initialized bool
}

// New wires the subsystem to its hardware ports.
func New(motors Actuator, hooks HookSensors, zero ZeroSensor, gyro Gyro) *Elevator {
	return &Elevator{motors: motors, hooks: hooks, zero: zero, gyro: gyro}
}

// SubsystemName implements command.Subsystem.
func (e *Elevator) SubsystemName() string {
	return "elevator"
}

// SetHeight commands the closed-loop target position.
func (e *Elevator) SetHeight(metres float64) {
	e.motors.SetTargetPosition(metres)
}

// Height returns the measured position.
func (e *Elevator) Height() float64 {
	return e.motors.Height()
}

// AtHeight reports whether the carriage is within tolerance of setpoint.
func (e *Elevator) AtHeight(setpoint, tolerance float64) bool {
	return AtSetpoint(e.motors.Height(), setpoint, tolerance)
}

// SetRawOutput drives the motors open loop, v in [-1, 1].
func (e *Elevator) SetRawOutput(v float64) {
	if v > 1 {
		v = 1
	} else if v < -1 {
		v = -1
	}
	e.motors.SetRawOutput(v)
}

// ResetPosition redefines the current position as metres.
func (e *Elevator) ResetPosition(metres float64) {
	e.motors.SetSensorPosition(metres)
}

// ExtendSolenoid fires the tilt piston.
func (e *Elevator) ExtendSolenoid() {
	e.motors.ExtendSolenoid()
	e.extended = true
}

// RetractSolenoid releases the tilt piston.
func (e *Elevator) RetractSolenoid() {
	e.motors.RetractSolenoid()
	e.extended = false
}

// ToggleSolenoid flips the last commanded piston state.
func (e *Elevator) ToggleSolenoid() {
	if e.extended {
		e.RetractSolenoid()
		return
	}
	e.ExtendSolenoid()
}

// SolenoidExtended reports the last commanded piston state.
func (e *Elevator) SolenoidExtended() bool {
	return e.extended
}

// SetClimbSpeed selects the normal climbing speed.
func (e *Elevator) SetClimbSpeed() {
	e.motors.SetClimbSpeed()
}

// SetHighClimbSpeed selects the fast speed used to catch the next bar.
func (e *Elevator) SetHighClimbSpeed() {
	e.motors.SetHighClimbSpeed()
}

// BarOnClimbHooks reads the elevator hook switches.
func (e *Elevator) BarOnClimbHooks() bool {
	return e.hooks.BarOnClimbHooks()
}

// BarOnGrabHooks reads the fixed grab hook switches.
func (e *Elevator) BarOnGrabHooks() bool {
	return e.hooks.BarOnGrabHooks()
}

// TiltAngle reads the gyro.
func (e *Elevator) TiltAngle() float64 {
	return e.gyro.TiltAngle()
}

// AtZero reads the magnetic zero switch.
func (e *Elevator) AtZero() bool {
	return e.zero.Value()
}

// Initialized reports whether the setup routine has run.
func (e *Elevator) Initialized() bool {
	return e.initialized
}

// MarkInitialized records that the setup routine has run.
func (e *Elevator) MarkInitialized() {
	e.initialized = true
}

// Drivetrain is the chassis subsystem. The climb only touches its velocity
// cap, so that is all it exposes.
type Drivetrain struct {
	limiter     VelocityLimiter
	maxVelocity float64
}

// NewDrivetrain wires the subsystem to its limiter.
func NewDrivetrain(limiter VelocityLimiter) *Drivetrain {
	return &Drivetrain{limiter: limiter}
}

// SubsystemName implements command.Subsystem.
func (d *Drivetrain) SubsystemName() string {
	return "drivetrain"
}

// SetMaxVelocity caps the drive speed.
func (d *Drivetrain) SetMaxVelocity(v float64) {
	d.maxVelocity = v
	d.limiter.SetMaxVelocity(v)
}

// MaxVelocity returns the last cap applied.
func (d *Drivetrain) MaxVelocity() float64 {
	return d.maxVelocity
}
