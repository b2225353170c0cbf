// Package dynamo provides the numeric primitives shared by the controller,
// the vehicle plant and the closed-loop simulator.
//
//   - [Interp]: piecewise-linear interpolation, clamped at the endpoints
//   - [State], [Control]: plant state and input vectors
//   - [System]: interface for ODE plants (dX/dt = f(X, u, t))
//   - [Integrator]: numerical stepper interface
//   - [RunAll]: bounded parallel fan-out for independent runs
//
// # Example
//
//	w := dynamo.Interp(vEgo, []float64{2.0, 5.0}, []float64{0, 1})
//	k := (1-w)*kGeom + w*kPose
//
// # Thread Safety
//
// Everything here is stateless and safe for concurrent use.
package dynamo
