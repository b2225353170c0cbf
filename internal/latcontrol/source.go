package latcontrol

import (
	"fmt"

	"github.com/san-kum/curvsim/internal/dynamo"
)

// Source selects the curvature estimate the feedback loop trusts.
type Source int

const (
	// SteeringAngle trusts the vehicle-model estimate from steering angle.
	SteeringAngle Source = iota
	// PoseBlended fades from the steering-angle estimate to the yaw-rate
	// estimate across FusionBreakpoints(). It requires a Pose every active cycle.
	PoseBlended
)

var fusionBP = [2]float64{2.0, 5.0}

// FusionBreakpoints returns the speeds (m/s) at which PoseBlended is fully
// geometric and fully pose based.
func FusionBreakpoints() [2]float64 { return fusionBP }

func (s Source) String() string {
	switch s {
	case SteeringAngle:
		return "steering_angle"
	case PoseBlended:
		return "pose_blended"
	}
	return fmt.Sprintf("source(%d)", int(s))
}

func ParseSource(name string) (Source, error) {
	switch name {
	case "steering_angle", "":
		return SteeringAngle, nil
	case "pose_blended", "pose":
		return PoseBlended, nil
	}
	return 0, fmt.Errorf("%w: unknown curvature source %q", ErrInvalidConfig, name)
}

type estimator interface {
	fuse(geometric, vEgo float64, pose *Pose) (float64, error)
}

func newEstimator(s Source) (estimator, error) {
	switch s {
	case SteeringAngle:
		return steeringAngleOnly{}, nil
	case PoseBlended:
		return poseBlended{}, nil
	}
	return nil, fmt.Errorf("%w: unknown curvature source %d", ErrInvalidConfig, int(s))
}

type steeringAngleOnly struct{}

func (steeringAngleOnly) fuse(geometric, _ float64, _ *Pose) (float64, error) {
	return geometric, nil
}

type poseBlended struct{}

func (poseBlended) fuse(geometric, vEgo float64, pose *Pose) (float64, error) {
	if pose == nil {
		return 0, fmt.Errorf("%w: pose-blended curvature needs a calibrated pose", ErrPreconditionViolation)
	}
	// At or below the lower breakpoint the blend is fully geometric, and
	// yaw rate over speed is never formed.
	if vEgo <= fusionBP[0] {
		return geometric, nil
	}
	posed := pose.YawRate / vEgo
	return dynamo.Interp(vEgo, fusionBP[:], []float64{geometric, posed}), nil
}
