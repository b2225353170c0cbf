package telemetry

import (
	"context"
	"log/slog"
)

// LogSink writes one debug line every Every records and a warning whenever
// the controller enters saturation.
type LogSink struct {
	logger    *slog.Logger
	every     int
	saturated bool
}

func NewLogSink(logger *slog.Logger, every int) *LogSink {
	if every <= 0 {
		every = 1
	}
	return &LogSink{logger: logger, every: every}
}

func (s *LogSink) Publish(r Record) {
	if r.State.Saturated && !s.saturated {
		s.logger.Warn("curvature controller saturated",
			slog.Int("step", r.Step),
			slog.Float64("t", r.Time),
			slog.Float64("curvature", r.Curvature))
	}
	s.saturated = r.State.Saturated

	if r.Step%s.every != 0 {
		return
	}
	s.logger.LogAttrs(context.Background(), slog.LevelDebug, "lateral cycle",
		slog.Int("step", r.Step),
		slog.Float64("t", r.Time),
		slog.Bool("active", r.State.Active),
		slog.Float64("curvature", r.Curvature),
		slog.Float64("error", r.State.Error),
		slog.Float64("integral", r.Integral),
	)
}
