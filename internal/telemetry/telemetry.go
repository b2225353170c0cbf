// Package telemetry publishes the controller's per-cycle diagnostic record to
// log and metrics sinks.
package telemetry

import (
	"github.com/san-kum/curvsim/internal/latcontrol"
	"github.com/san-kum/curvsim/internal/sim"
)

// Record is one cycle's diagnostic as seen by a sink.
type Record struct {
	Step      int
	Time      float64
	Curvature float64
	Integral  float64
	State     latcontrol.CurvatureState
}

type Sink interface {
	Publish(r Record)
}

// Multi fans a record out to every sink in order.
type Multi []Sink

func (m Multi) Publish(r Record) {
	for _, s := range m {
		s.Publish(r)
	}
}

// Observer adapts a Sink to a simulator observer.
type Observer struct {
	Sink Sink
}

func (o Observer) OnCycle(c sim.Cycle) {
	o.Sink.Publish(Record{
		Step:      c.Step,
		Time:      c.Time,
		Curvature: c.Output.Curvature,
		Integral:  c.Integral,
		State:     c.Output.State,
	})
}
