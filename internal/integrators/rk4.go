package integrators

import (
	"fmt"

	"github.com/san-kum/curvsim/internal/dynamo"
)

// RK4 is the classic fourth-order Runge-Kutta stepper. The input is held
// constant across the step, matching a zero-order-hold actuator command.
type RK4 struct{}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) Step(sys dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	half := dt / 2
	k1 := sys.Derive(x, u, t)
	k2 := sys.Derive(x.Axpy(half, k1), u, t+half)
	k3 := sys.Derive(x.Axpy(half, k2), u, t+half)
	k4 := sys.Derive(x.Axpy(dt, k3), u, t+dt)

	out := make(dynamo.State, len(x))
	for i := range x {
		out[i] = x[i] + dt/6*(k1[i]+2*k2[i]+2*k3[i]+k4[i])
	}
	return out
}

// ByName resolves an integrator from configuration.
func ByName(name string) (dynamo.Integrator, error) {
	switch name {
	case "rk4", "":
		return NewRK4(), nil
	case "euler":
		return NewEuler(), nil
	}
	return nil, fmt.Errorf("%w: unknown integrator %q", dynamo.ErrParameterBounds, name)
}
