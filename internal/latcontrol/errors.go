package latcontrol

import "errors"

var (
	// ErrPreconditionViolation is returned when the caller breaks the
	// controller's input contract, such as running [PoseBlended] without a
	// calibrated pose. It signals a wiring defect, not a runtime condition.
	ErrPreconditionViolation = errors.New("latcontrol: precondition violation")

	ErrInvalidConfig = errors.New("latcontrol: invalid config")
)
