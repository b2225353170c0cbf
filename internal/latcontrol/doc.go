// Package latcontrol implements the curvature PID lateral controller.
//
// Each control cycle the caller hands a [Controller] the activation flag, the
// car state, the live road parameters and the planner's desired curvature.
// The controller answers with a bounded curvature command and a
// [CurvatureState] diagnostic record.
//
// The controller has two modes. An inactive cycle resets the integrator and
// commands exactly zero. An active cycle fuses a steering-angle curvature
// estimate (and, for [PoseBlended], a yaw-rate estimate), adds a
// bank-compensated lateral acceleration feedforward and runs the accumulator,
// freezing the integral while the actuator is limited, the driver is
// steering or the car is slower than [FreezeSpeed].
//
// # Thread Safety
//
// A Controller is NOT safe for concurrent use. It is owned by a single
// control loop that calls Update strictly sequentially.
package latcontrol
