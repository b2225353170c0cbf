package dynamo

import (
	"fmt"
	"math"
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Axpy returns s + a*d without modifying s.
func (s State) Axpy(a float64, d State) State {
	out := make(State, len(s))
	for i := range s {
		out[i] = s[i]
		if i < len(d) {
			out[i] += a * d[i]
		}
	}
	return out
}

type Control []float64

type System interface {
	Derive(x State, u Control, t float64) State
	StateDim() int
	ControlDim() int
}

type Integrator interface {
	Step(sys System, x State, u Control, t, dt float64) State
}

// CheckDims verifies x and u against the plant's declared dimensions.
func CheckDims(sys System, x State, u Control) error {
	if len(x) != sys.StateDim() {
		return fmt.Errorf("%w: state has %d entries, want %d", ErrDimensionMismatch, len(x), sys.StateDim())
	}
	if len(u) != sys.ControlDim() {
		return fmt.Errorf("%w: control has %d entries, want %d", ErrDimensionMismatch, len(u), sys.ControlDim())
	}
	return nil
}
