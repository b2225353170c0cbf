package latcontrol

// CurvatureEstimator converts a steering-wheel angle (rad) at speed (m/s)
// on a road with bank angle roll (rad) into curvature (1/m). It must be pure
// and accept any speed >= 0.
type CurvatureEstimator interface {
	Curvature(steerRad, speed, roll float64) float64
}

type CarState struct {
	SteeringAngleDeg float64
	VEgo             float64
	SteeringPressed  bool
}

// LiveParams are the learned calibration and road estimates.
type LiveParams struct {
	AngleOffsetDeg float64
	Roll           float64
}

// Pose is the calibrated pose from the localizer.
type Pose struct {
	YawRate float64
}

type Input struct {
	Active bool
	Car    CarState
	Params LiveParams
	// SteerLimited reports that the actuator was already limited upstream.
	SteerLimited     bool
	DesiredCurvature float64
	// Pose is required when the controller uses PoseBlended.
	Pose *Pose
	// Model is carried for the caller's diagnostics and never read.
	Model any
}

// CurvatureState is the per-cycle diagnostic record. Inactive cycles leave
// everything but Active zero.
type CurvatureState struct {
	Active           bool    `json:"active"`
	Saturated        bool    `json:"saturated"`
	Error            float64 `json:"error"`
	DesiredCurvature float64 `json:"desired_curvature"`
}

type Output struct {
	Curvature float64
	Saturated bool
	// Frozen is set when the integrator was held this cycle. Always false
	// while inactive.
	Frozen bool
	State  CurvatureState
}

type Mode int

const (
	Inactive Mode = iota
	Active
)

func (m Mode) String() string {
	if m == Active {
		return "active"
	}
	return "inactive"
}
