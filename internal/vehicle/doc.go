// Package vehicle implements the steady-state dynamic bicycle model used to
// relate steering angle and curvature, and a lateral plant built on it for
// closed-loop simulation.
//
// Angles passed to [Model] are steering-wheel angles in radians; curvature is
// in 1/m using the model's raw sign, positive for positive steering angle.
package vehicle
