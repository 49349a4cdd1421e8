package climb

import (
	"github.com/kingrea/hookclimb/internal/elevator"
)

// rig is scripted hardware: tests set the measured height and sensors
// directly and read back what the commands asked for.
type rig struct {
	height      float64
	target      float64
	raw         float64
	sensorReset []float64
	extended    bool
	highSpeed   bool
	climbHooks  bool
	grabHooks   bool
	zero        bool
	angles      []float64
	maxVelocity float64
}

func (r *rig) SetTargetPosition(m float64) { r.target = m }
func (r *rig) Height() float64             { return r.height }
func (r *rig) SetRawOutput(v float64)      { r.raw = v }
func (r *rig) SetSensorPosition(m float64) {
	r.sensorReset = append(r.sensorReset, m)
	r.height = m
}
func (r *rig) ExtendSolenoid()          { r.extended = true }
func (r *rig) RetractSolenoid()         { r.extended = false }
func (r *rig) SetClimbSpeed()           { r.highSpeed = false }
func (r *rig) SetHighClimbSpeed()       { r.highSpeed = true }
func (r *rig) BarOnClimbHooks() bool    { return r.climbHooks }
func (r *rig) BarOnGrabHooks() bool     { return r.grabHooks }
func (r *rig) Value() bool              { return r.zero }
func (r *rig) SetMaxVelocity(v float64) { r.maxVelocity = v }

// TiltAngle pops the next scripted angle, repeating the last one.
func (r *rig) TiltAngle() float64 {
	if len(r.angles) == 0 {
		return 0
	}
	a := r.angles[0]
	if len(r.angles) > 1 {
		r.angles = r.angles[1:]
	}
	return a
}

func newRig() (*rig, *elevator.Elevator, *elevator.Drivetrain) {
	r := &rig{}
	return r, elevator.New(r, r, r, r), elevator.NewDrivetrain(r)
}
