// Package control provides the feedback/feedforward accumulator behind the
// lateral controllers.
//
//   - [PID]: proportional + integral + derivative + feedforward with a
//     bounded output, an integrator freeze switch and anti-windup
//   - [Schedule]: speed-dependent gain table
//
// # Usage
//
//	pid := control.NewPID(control.Gains{
//		Kp: control.Const(1.0), Ki: control.Const(0.1), Kf: 1.0,
//	}, 0.195, 100)
//	out := pid.Update(control.Step{Error: e, Feedforward: ff, Speed: v})
//
// A PID is owned by a single controller; Update and Reset are the only
// operations that mutate its integral.
package control
