package integrators

import "github.com/san-kum/curvsim/internal/dynamo"

// Euler is the explicit first-order stepper.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(sys dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	return x.Axpy(dt, sys.Derive(x, u, t))
}
