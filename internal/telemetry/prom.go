package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PromSink exports the diagnostic record as Prometheus series.
type PromSink struct {
	Cycles    *prometheus.CounterVec
	Saturated prometheus.Counter
	Output    prometheus.Gauge
	Integral  prometheus.Gauge
	Error     prometheus.Gauge
	ErrorAbs  prometheus.Histogram
}

func NewPromSink(reg prometheus.Registerer, namespace string) (*PromSink, error) {
	s := &PromSink{
		Cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "latcontrol",
			Name:      "cycles_total",
			Help:      "Control cycles by mode",
		}, []string{"mode"}),
		Saturated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "latcontrol",
			Name:      "saturated_cycles_total",
			Help:      "Active cycles with the output pinned at the bound",
		}),
		Output: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "latcontrol",
			Name:      "output_curvature",
			Help:      "Last commanded curvature (1/m)",
		}),
		Integral: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "latcontrol",
			Name:      "integral",
			Help:      "Accumulator integral term",
		}),
		Error: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "latcontrol",
			Name:      "curvature_error",
			Help:      "Last curvature error (1/m)",
		}),
		ErrorAbs: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "latcontrol",
			Name:      "curvature_error_abs",
			Help:      "Absolute curvature error over active cycles",
			Buckets:   []float64{1e-5, 1e-4, 5e-4, 1e-3, 5e-3, 0.01, 0.05},
		}),
	}

	for _, c := range []prometheus.Collector{s.Cycles, s.Saturated, s.Output, s.Integral, s.Error, s.ErrorAbs} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *PromSink) Publish(r Record) {
	s.Output.Set(r.Curvature)
	s.Integral.Set(r.Integral)
	if !r.State.Active {
		s.Cycles.WithLabelValues("inactive").Inc()
		s.Error.Set(0)
		return
	}
	s.Cycles.WithLabelValues("active").Inc()
	s.Error.Set(r.State.Error)
	if r.State.Error < 0 {
		s.ErrorAbs.Observe(-r.State.Error)
	} else {
		s.ErrorAbs.Observe(r.State.Error)
	}
	if r.State.Saturated {
		s.Saturated.Inc()
	}
}
