package vehicle

import (
	"math"

	"github.com/san-kum/curvsim/internal/dynamo"
)

// Plant state indices.
const (
	LateralOffset = iota
	Heading
	SteerAngle
)

// Plant is the lateral motion of a vehicle driving at a set speed. State is
// [lateral offset m, heading rad, steering-wheel angle rad]; control is the
// commanded steering-wheel angle. The steering actuator tracks the command
// with a first-order lag.
//
// Curvature follows the controller convention: the negation of the model's
// raw curvature.
type Plant struct {
	model *Model
	speed float64
	roll  float64
}

func NewPlant(m *Model) *Plant {
	return &Plant{model: m}
}

func (p *Plant) SetSpeed(v float64) { p.speed = v }
func (p *Plant) SetRoll(r float64)  { p.roll = r }
func (p *Plant) Speed() float64     { return p.speed }
func (p *Plant) Roll() float64      { return p.roll }

func (p *Plant) StateDim() int   { return 3 }
func (p *Plant) ControlDim() int { return 1 }

// Curvature is the path curvature produced by steering-wheel angle sa.
func (p *Plant) Curvature(sa float64) float64 {
	return -p.model.Curvature(sa, p.speed, p.roll)
}

// SteerFor returns the steering-wheel angle that yields curvature k.
func (p *Plant) SteerFor(k float64) float64 {
	return p.model.SteerFromCurvature(-k, p.speed, p.roll)
}

func (p *Plant) YawRate(x dynamo.State) float64 {
	return p.Curvature(x[SteerAngle]) * p.speed
}

func (p *Plant) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	cmd := x[SteerAngle]
	if len(u) > 0 {
		cmd = u[0]
	}

	steerRate := (cmd - x[SteerAngle]) / p.model.p.ActuatorTau
	yawRate := p.Curvature(x[SteerAngle]) * p.speed
	return dynamo.State{
		p.speed * math.Sin(x[Heading]),
		yawRate,
		steerRate,
	}
}
