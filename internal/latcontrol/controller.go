package latcontrol

import (
	"fmt"
	"math"

	"github.com/san-kum/curvsim/internal/control"
	"github.com/san-kum/curvsim/internal/dynamo"
	"github.com/san-kum/curvsim/internal/vehicle"
)

const (
	DefaultLimit  = 0.195
	DefaultRateHz = 100.0

	// FreezeSpeed is the speed (m/s) below which the integral is held.
	FreezeSpeed = 5.0

	// SaturationTolerance is how close (1/m) the output must sit to the
	// requested curvature to count as pinned.
	SaturationTolerance = 1e-5
)

type Config struct {
	Kp     control.Schedule
	Ki     control.Schedule
	Kf     float64
	Limit  float64
	Source Source
	RateHz float64
}

func DefaultConfig() Config {
	return Config{
		Kp:     control.Const(1.0),
		Ki:     control.Const(2.0),
		Kf:     0.001,
		Limit:  DefaultLimit,
		Source: SteeringAngle,
		RateHz: DefaultRateHz,
	}
}

func (c Config) Validate() error {
	if err := c.Kp.Validate(); err != nil {
		return fmt.Errorf("%w: kp: %v", ErrInvalidConfig, err)
	}
	if err := c.Ki.Validate(); err != nil {
		return fmt.Errorf("%w: ki: %v", ErrInvalidConfig, err)
	}
	if c.Limit <= 0 {
		return fmt.Errorf("%w: limit must be positive, got %g", ErrInvalidConfig, c.Limit)
	}
	if c.RateHz <= 0 {
		return fmt.Errorf("%w: rate must be positive, got %g", ErrInvalidConfig, c.RateHz)
	}
	if _, err := newEstimator(c.Source); err != nil {
		return err
	}
	return nil
}

type Controller struct {
	cfg    Config
	source estimator
	pid    *control.PID
	mode   Mode
}

// New builds a controller in the Inactive mode. The curvature source is
// fixed for the controller's lifetime.
func New(cfg Config) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	src, err := newEstimator(cfg.Source)
	if err != nil {
		return nil, err
	}
	pid := control.NewPID(control.Gains{Kp: cfg.Kp, Ki: cfg.Ki, Kf: cfg.Kf}, cfg.Limit, cfg.RateHz)
	return &Controller{cfg: cfg, source: src, pid: pid, mode: Inactive}, nil
}

func (c *Controller) Config() Config { return c.cfg }

func (c *Controller) Mode() Mode { return c.mode }

// Integral is the accumulator's integral term.
func (c *Controller) Integral() float64 { return c.pid.Integral() }

// Terms are the accumulator contributions of the last cycle, zero after an
// inactive one.
func (c *Controller) Terms() control.Terms { return c.pid.Terms() }

// Reset returns the controller to Inactive and clears the integral.
func (c *Controller) Reset() {
	c.enterInactive()
}

// Update runs one control cycle. The only error is a wrapped
// ErrPreconditionViolation, returned before any state changes.
func (c *Controller) Update(in Input, vm CurvatureEstimator) (Output, error) {
	if !in.Active {
		return c.enterInactive(), nil
	}
	return c.stepActive(in, vm)
}

func (c *Controller) enterInactive() Output {
	c.pid.Reset()
	c.mode = Inactive
	return Output{}
}

func (c *Controller) stepActive(in Input, vm CurvatureEstimator) (Output, error) {
	v := in.Car.VEgo
	roll := in.Params.Roll

	steer := dynamo.Deg2Rad(in.Car.SteeringAngleDeg - in.Params.AngleOffsetDeg)
	geometric := -vm.Curvature(steer, v, roll)

	measured, err := c.source.fuse(geometric, v, in.Pose)
	if err != nil {
		return Output{}, err
	}

	// The feedback loop only sees curvature error, so the bank term rides
	// on the feedforward.
	actualLatAccel := geometric * v * v
	desiredLatAccel := in.DesiredCurvature * v * v
	gravityAdjusted := desiredLatAccel - roll*vehicle.Gravity
	ff := gravityAdjusted - actualLatAccel

	e := in.DesiredCurvature - measured
	freeze := in.SteerLimited || in.Car.SteeringPressed || v < FreezeSpeed

	out := c.pid.Update(control.Step{
		Error:       e,
		Speed:       v,
		Feedforward: ff,
		Freeze:      freeze,
	})
	c.mode = Active

	sat := c.saturated(in.DesiredCurvature, out, in.SteerLimited)
	return Output{
		Curvature: out,
		Saturated: sat,
		Frozen:    freeze,
		State: CurvatureState{
			Active:           true,
			Saturated:        sat,
			Error:            e,
			DesiredCurvature: out,
		},
	}, nil
}

// saturated reports that the output is pinned at the bound the desired
// curvature asks for, and no upstream limiter caused it.
func (c *Controller) saturated(desired, out float64, steerLimited bool) bool {
	if steerLimited {
		return false
	}
	target := dynamo.Clip(desired, -c.cfg.Limit, c.cfg.Limit)
	pinned := math.Abs(out) >= c.cfg.Limit-SaturationTolerance
	return pinned && math.Abs(target-out) < SaturationTolerance
}
