package metrics

import "github.com/san-kum/curvsim/internal/sim"

// Ratio counts the fraction of active cycles for which pred holds.
type Ratio struct {
	name    string
	pred    func(sim.Cycle) bool
	hits    int
	samples int
}

func NewRatio(name string, pred func(sim.Cycle) bool) *Ratio {
	return &Ratio{name: name, pred: pred}
}

func NewSaturationRatio() *Ratio {
	return NewRatio("saturation_ratio", func(c sim.Cycle) bool { return c.Output.Saturated })
}

func NewFreezeRatio() *Ratio {
	return NewRatio("freeze_ratio", func(c sim.Cycle) bool { return c.Frozen })
}

func (r *Ratio) Name() string { return r.name }

func (r *Ratio) Observe(c sim.Cycle) {
	if !c.Output.State.Active {
		return
	}
	r.samples++
	if r.pred(c) {
		r.hits++
	}
}

func (r *Ratio) Value() float64 {
	if r.samples == 0 {
		return 0
	}
	return float64(r.hits) / float64(r.samples)
}

func (r *Ratio) Reset() {
	r.hits = 0
	r.samples = 0
}

// Defaults returns a fresh set of the standard run metrics.
func Defaults() []sim.Metric {
	return []sim.Metric{
		NewTrackingError(),
		NewControlEffort(),
		NewSaturationRatio(),
		NewFreezeRatio(),
		NewPeakLateralAccel(),
	}
}
