package metrics

import (
	"math"

	"github.com/san-kum/curvsim/internal/sim"
)

// TrackingError is the RMS curvature error over active cycles.
type TrackingError struct {
	sumSq   float64
	samples int
}

func NewTrackingError() *TrackingError { return &TrackingError{} }

func (m *TrackingError) Name() string { return "tracking_rms" }

func (m *TrackingError) Observe(c sim.Cycle) {
	if !c.Output.State.Active {
		return
	}
	e := c.Setpoint.DesiredCurvature - c.Curvature
	m.sumSq += e * e
	m.samples++
}

func (m *TrackingError) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return math.Sqrt(m.sumSq / float64(m.samples))
}

func (m *TrackingError) Reset() {
	m.sumSq = 0
	m.samples = 0
}

// PeakLateralAccel is the largest |curvature * v^2| seen, in m/s^2.
type PeakLateralAccel struct {
	peak float64
}

func NewPeakLateralAccel() *PeakLateralAccel { return &PeakLateralAccel{} }

func (m *PeakLateralAccel) Name() string { return "peak_lat_accel" }

func (m *PeakLateralAccel) Observe(c sim.Cycle) {
	v := c.Setpoint.Speed
	m.peak = math.Max(m.peak, math.Abs(c.Curvature*v*v))
}

func (m *PeakLateralAccel) Value() float64 { return m.peak }

func (m *PeakLateralAccel) Reset() { m.peak = 0 }
