package vehicle

import (
	"fmt"
	"math"

	"github.com/san-kum/curvsim/internal/dynamo"
)

// Gravity is the gravitational acceleration in m/s^2.
const Gravity = 9.81

type Params struct {
	Mass               float64 `yaml:"mass"`
	Wheelbase          float64 `yaml:"wheelbase"`
	CenterToFront      float64 `yaml:"center_to_front"`
	TireStiffnessFront float64 `yaml:"tire_stiffness_front"`
	TireStiffnessRear  float64 `yaml:"tire_stiffness_rear"`
	SteerRatio         float64 `yaml:"steer_ratio"`
	// ActuatorTau is the first-order lag of the steering actuator in seconds.
	ActuatorTau float64 `yaml:"actuator_tau"`
}

func DefaultParams() Params {
	return Params{
		Mass:               1500,
		Wheelbase:          2.7,
		CenterToFront:      1.188,
		TireStiffnessFront: 120000,
		TireStiffnessRear:  150000,
		SteerRatio:         15.0,
		ActuatorTau:        0.1,
	}
}

func (p Params) Validate() error {
	switch {
	case p.Mass <= 0:
		return fmt.Errorf("%w: mass must be positive, got %g", dynamo.ErrParameterBounds, p.Mass)
	case p.Wheelbase <= 0:
		return fmt.Errorf("%w: wheelbase must be positive, got %g", dynamo.ErrParameterBounds, p.Wheelbase)
	case p.CenterToFront <= 0 || p.CenterToFront >= p.Wheelbase:
		return fmt.Errorf("%w: center_to_front must lie inside the wheelbase, got %g", dynamo.ErrParameterBounds, p.CenterToFront)
	case p.TireStiffnessFront <= 0 || p.TireStiffnessRear <= 0:
		return fmt.Errorf("%w: tire stiffness must be positive", dynamo.ErrParameterBounds)
	case p.SteerRatio <= 0:
		return fmt.Errorf("%w: steer_ratio must be positive, got %g", dynamo.ErrParameterBounds, p.SteerRatio)
	case p.ActuatorTau <= 0:
		return fmt.Errorf("%w: actuator_tau must be positive, got %g", dynamo.ErrParameterBounds, p.ActuatorTau)
	}
	return nil
}

// Model is immutable and safe for concurrent use.
type Model struct {
	p          Params
	slipFactor float64
}

func NewModel(p Params) (*Model, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	aF := p.CenterToFront
	aR := p.Wheelbase - aF
	cF, cR := p.TireStiffnessFront, p.TireStiffnessRear
	sf := p.Mass * (cF*aF - cR*aR) / (p.Wheelbase * p.Wheelbase * cF * cR)
	return &Model{p: p, slipFactor: sf}, nil
}

func (m *Model) Params() Params { return m.p }

// SlipFactor is negative for an understeering vehicle, which keeps
// CurvatureFactor finite and falling with speed.
func (m *Model) SlipFactor() float64 { return m.slipFactor }

// CurvatureFactor maps road-wheel angle to curvature at speed u.
func (m *Model) CurvatureFactor(u float64) float64 {
	return 1.0 / (1.0 - m.slipFactor*u*u) / m.p.Wheelbase
}

// RollCompensation is the curvature induced by road bank angle roll (rad).
func (m *Model) RollCompensation(roll, u float64) float64 {
	if math.Abs(m.slipFactor) < 1e-6 {
		return 0
	}
	return Gravity * roll / (1.0/m.slipFactor - u*u)
}

// Curvature returns the steady-state curvature for steering-wheel angle sa.
func (m *Model) Curvature(sa, u, roll float64) float64 {
	return m.CurvatureFactor(u)*sa/m.p.SteerRatio + m.RollCompensation(roll, u)
}

// SteerFromCurvature inverts Curvature.
func (m *Model) SteerFromCurvature(curvature, u, roll float64) float64 {
	return (curvature - m.RollCompensation(roll, u)) * m.p.SteerRatio / m.CurvatureFactor(u)
}

func (m *Model) YawRate(sa, u, roll float64) float64 {
	return m.Curvature(sa, u, roll) * u
}
