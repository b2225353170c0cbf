package control

import (
	"math"

	"github.com/san-kum/curvsim/internal/dynamo"
)

// DefaultUnwindRate is how fast the integral bleeds off per second while the
// driver overrides.
const DefaultUnwindRate = 0.3

type Gains struct {
	Kp Schedule
	Ki Schedule
	Kd float64
	Kf float64
}

// Step is one accumulator input.
type Step struct {
	Error       float64
	ErrorRate   float64
	Speed       float64
	Override    bool
	Feedforward float64
	Freeze      bool
}

// Terms holds the contributions of the last Update.
type Terms struct {
	P, I, D, F float64
	Output     float64
}

type PID struct {
	gains      Gains
	posLimit   float64
	negLimit   float64
	dt         float64
	unwindRate float64

	integral float64
	last     Terms
}

// NewPID builds an accumulator clamped to [-limit, limit] that is stepped at
// rateHz.
func NewPID(g Gains, limit, rateHz float64) *PID {
	return &PID{
		gains:      g,
		posLimit:   math.Abs(limit),
		negLimit:   -math.Abs(limit),
		dt:         1.0 / rateHz,
		unwindRate: DefaultUnwindRate / rateHz,
	}
}

func (p *PID) Update(s Step) float64 {
	kp := p.gains.Kp.At(s.Speed)
	ki := p.gains.Ki.At(s.Speed)

	t := Terms{
		P: s.Error * kp,
		D: s.ErrorRate * p.gains.Kd,
		F: s.Feedforward * p.gains.Kf,
	}

	switch {
	case s.Override:
		p.integral -= p.unwindRate * dynamo.Sign(p.integral)
		if math.Abs(p.integral) < p.unwindRate {
			p.integral = 0
		}
	case !s.Freeze:
		i := p.integral + s.Error*ki*p.dt

		// Only let the integral grow toward a limit the output is not already
		// clipped against.
		test := t.P + i + t.D + t.F
		upper, lower := p.posLimit, p.negLimit
		if test > p.posLimit {
			upper = p.integral
		}
		if test < p.negLimit {
			lower = p.integral
		}
		p.integral = dynamo.Clip(i, lower, upper)
	}

	t.I = p.integral
	t.Output = dynamo.Clip(t.P+t.I+t.D+t.F, p.negLimit, p.posLimit)
	p.last = t
	return t.Output
}

// Reset clears the integral and the recorded terms.
func (p *PID) Reset() {
	p.integral = 0
	p.last = Terms{}
}

func (p *PID) Integral() float64 { return p.integral }

func (p *PID) Terms() Terms { return p.last }

func (p *PID) Limit() float64 { return p.posLimit }
