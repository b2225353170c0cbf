// Package optim tunes controller gains against a closed-loop metric.
package optim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/san-kum/curvsim/internal/control"
	"github.com/san-kum/curvsim/internal/dynamo"
	"github.com/san-kum/curvsim/internal/latcontrol"
	"github.com/san-kum/curvsim/internal/sim"
)

var (
	ErrEmptyGrid     = errors.New("optim: empty parameter grid")
	ErrUnknownMetric = errors.New("optim: metric not reported by run")
	ErrUnknownParam  = errors.New("optim: unknown gain parameter")
	ErrNoFeasible    = errors.New("optim: no candidate could be built")
)

// Tunable gain names accepted by ApplyGains.
const (
	ParamKp = "kp"
	ParamKi = "ki"
	ParamKf = "kf"
)

type Trial struct {
	Params map[string]float64
	Value  float64
}

type Result struct {
	Best   map[string]float64
	Value  float64
	Trials []Trial
	// Skipped counts candidates whose build failed.
	Skipped int
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	workers    int
}

func NewGridSearch(params []string, ranges [][]float64, workers int) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges, workers: workers}
}

// Candidates enumerates the cartesian product of the grid in a stable order.
func (g *GridSearch) Candidates() []map[string]float64 {
	if len(g.paramNames) == 0 || len(g.paramNames) != len(g.ranges) {
		return nil
	}
	var out []map[string]float64
	g.expand(0, map[string]float64{}, &out)
	return out
}

func (g *GridSearch) expand(depth int, current map[string]float64, out *[]map[string]float64) {
	if depth == len(g.paramNames) {
		p := make(map[string]float64, len(current))
		for k, v := range current {
			p[k] = v
		}
		*out = append(*out, p)
		return
	}
	name := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		current[name] = val
		g.expand(depth+1, current, out)
	}
	delete(current, name)
}

// Search runs one closed-loop simulation per candidate and returns the one
// minimising metricName. Candidates whose build fails are logged at debug
// level and counted in Result.Skipped; a run error aborts the search.
func (g *GridSearch) Search(
	ctx context.Context,
	build func(params map[string]float64) (*sim.Simulator, error),
	cfg sim.Config,
	metricName string,
) (*Result, error) {
	cands := g.Candidates()
	if len(cands) == 0 {
		return nil, ErrEmptyGrid
	}

	values := make([]float64, len(cands))
	feasible := make([]bool, len(cands))

	err := dynamo.RunAll(ctx, len(cands), g.workers, func(ctx context.Context, idx int) error {
		s, err := build(cands[idx])
		if err != nil {
			slog.Debug("skipping candidate", "params", cands[idx], "err", err)
			return nil
		}
		res, err := s.Run(ctx, cfg)
		if err != nil {
			return fmt.Errorf("candidate %v: %w", cands[idx], err)
		}
		v, ok := res.Metrics[metricName]
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownMetric, metricName)
		}
		values[idx], feasible[idx] = v, true
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := &Result{Value: math.Inf(1)}
	for i, p := range cands {
		if !feasible[i] {
			result.Skipped++
			continue
		}
		result.Trials = append(result.Trials, Trial{Params: p, Value: values[i]})
		if values[i] < result.Value {
			result.Value, result.Best = values[i], p
		}
	}
	if result.Best == nil {
		return nil, fmt.Errorf("%w: %d of %d candidates failed to build", ErrNoFeasible, result.Skipped, len(cands))
	}
	sort.SliceStable(result.Trials, func(i, j int) bool {
		return result.Trials[i].Value < result.Trials[j].Value
	})
	return result, nil
}

// ApplyGains overrides the named gains on cfg. kp and ki become flat
// schedules.
func ApplyGains(cfg latcontrol.Config, params map[string]float64) (latcontrol.Config, error) {
	for name, v := range params {
		switch name {
		case ParamKp:
			cfg.Kp = control.Const(v)
		case ParamKi:
			cfg.Ki = control.Const(v)
		case ParamKf:
			cfg.Kf = v
		default:
			return cfg, fmt.Errorf("%w: %q", ErrUnknownParam, name)
		}
	}
	return cfg, nil
}
