package sim

import (
	"github.com/san-kum/curvsim/internal/latcontrol"
	"github.com/san-kum/curvsim/internal/scenario"
)

// Cycle is everything that happened on one control tick.
type Cycle struct {
	Step     int
	Time     float64
	Setpoint scenario.Setpoint

	// Curvature is the plant's true path curvature before the command.
	Curvature        float64
	SteeringAngleDeg float64
	YawRate          float64
	LateralOffset    float64
	Heading          float64

	Output   latcontrol.Output
	Integral float64
	Frozen   bool
}

type Metric interface {
	Name() string
	Observe(c Cycle)
	Value() float64
	Reset()
}

type Observer interface {
	OnCycle(c Cycle)
}

type Config struct {
	Dt       float64
	Duration float64
	Seed     int64
	// YawNoise is the standard deviation (rad/s) added to the pose yaw rate.
	YawNoise float64
	// AngleOffsetDeg is the steering sensor bias, known to the controller.
	AngleOffsetDeg float64
	// DropPose withholds the calibrated pose from the controller.
	DropPose      bool
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Dt:            0.01,
		Duration:      20.0,
		YawNoise:      0.002,
		ValidateState: true,
	}
}

type Result struct {
	Cycles     []Cycle
	Metrics    map[string]float64
	StepsTaken int
}

// Series extracts one value per cycle.
func (r *Result) Series(f func(Cycle) float64) []float64 {
	out := make([]float64, len(r.Cycles))
	for i, c := range r.Cycles {
		out[i] = f(c)
	}
	return out
}
