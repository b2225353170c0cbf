package optim

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/curvsim/internal/integrators"
	"github.com/san-kum/curvsim/internal/latcontrol"
	"github.com/san-kum/curvsim/internal/metrics"
	"github.com/san-kum/curvsim/internal/scenario"
	"github.com/san-kum/curvsim/internal/sim"
	"github.com/san-kum/curvsim/internal/vehicle"
)

func builder(base latcontrol.Config) func(map[string]float64) (*sim.Simulator, error) {
	return func(p map[string]float64) (*sim.Simulator, error) {
		cfg, err := ApplyGains(base, p)
		if err != nil {
			return nil, err
		}
		ctrl, err := latcontrol.New(cfg)
		if err != nil {
			return nil, err
		}
		model, err := vehicle.NewModel(vehicle.DefaultParams())
		if err != nil {
			return nil, err
		}
		profile, err := scenario.Build(scenario.Spec{Kind: "curve", Speed: 20, Curvature: 0.01, RampTime: 1})
		if err != nil {
			return nil, err
		}
		s := sim.New(ctrl, model, integrators.NewRK4(), profile)
		s.AddMetric(metrics.NewTrackingError())
		return s, nil
	}
}

func shortRun() sim.Config {
	cfg := sim.DefaultConfig()
	cfg.Duration = 3
	cfg.YawNoise = 0
	return cfg
}

func TestCandidates(t *testing.T) {
	g := NewGridSearch([]string{ParamKp, ParamKi}, [][]float64{{0.5, 1}, {0, 1, 2}}, 2)
	cands := g.Candidates()
	require.Len(t, cands, 6)
	assert.Equal(t, map[string]float64{ParamKp: 0.5, ParamKi: 0}, cands[0])
	assert.Equal(t, map[string]float64{ParamKp: 1, ParamKi: 2}, cands[5])

	assert.Empty(t, NewGridSearch(nil, nil, 1).Candidates())
	assert.Empty(t, NewGridSearch([]string{ParamKp}, nil, 1).Candidates())
}

func TestSearch_PicksMinimum(t *testing.T) {
	g := NewGridSearch([]string{ParamKp, ParamKi}, [][]float64{{0.2, 1.0}, {0, 2.0}}, 4)
	res, err := g.Search(context.Background(), builder(latcontrol.DefaultConfig()), shortRun(), "tracking_rms")
	require.NoError(t, err)

	require.Len(t, res.Trials, 4)
	for _, tr := range res.Trials {
		assert.GreaterOrEqual(t, tr.Value, res.Value)
	}
	assert.Equal(t, res.Trials[0].Value, res.Value)
	assert.Equal(t, res.Trials[0].Params, res.Best)
}

func TestSearch_SkipsInfeasible(t *testing.T) {
	base := latcontrol.DefaultConfig()
	g := NewGridSearch([]string{"kp", "bogus"}, [][]float64{{1}, {1}}, 1)
	_, err := g.Search(context.Background(), builder(base), shortRun(), "tracking_rms")
	assert.ErrorIs(t, err, ErrNoFeasible)
}

func TestSearch_CountsSkipped(t *testing.T) {
	inner := builder(latcontrol.DefaultConfig())
	bad := errors.New("rejected")
	build := func(p map[string]float64) (*sim.Simulator, error) {
		if p[ParamKp] == 0.5 {
			return nil, bad
		}
		return inner(p)
	}

	g := NewGridSearch([]string{ParamKp, ParamKi}, [][]float64{{0.5, 1.0}, {0, 1}}, 2)
	res, err := g.Search(context.Background(), build, shortRun(), "tracking_rms")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Skipped)
	require.Len(t, res.Trials, 2)
	for _, tr := range res.Trials {
		assert.Equal(t, 1.0, tr.Params[ParamKp])
	}

	_, err = NewGridSearch([]string{ParamKp}, [][]float64{{0.5}}, 1).Search(context.Background(), build, shortRun(), "tracking_rms")
	assert.ErrorIs(t, err, ErrNoFeasible)
	assert.Contains(t, err.Error(), "1 of 1")
}

func TestSearch_Errors(t *testing.T) {
	g := NewGridSearch([]string{ParamKp}, [][]float64{{1}}, 1)

	_, err := g.Search(context.Background(), builder(latcontrol.DefaultConfig()), shortRun(), "missing")
	assert.ErrorIs(t, err, ErrUnknownMetric)

	_, err = NewGridSearch(nil, nil, 1).Search(context.Background(), nil, shortRun(), "x")
	assert.ErrorIs(t, err, ErrEmptyGrid)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = g.Search(ctx, builder(latcontrol.DefaultConfig()), shortRun(), "tracking_rms")
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestApplyGains(t *testing.T) {
	cfg, err := ApplyGains(latcontrol.DefaultConfig(), map[string]float64{ParamKp: 0.7, ParamKi: 0.3, ParamKf: 0.01})
	require.NoError(t, err)
	assert.Equal(t, 0.7, cfg.Kp.At(10))
	assert.Equal(t, 0.3, cfg.Ki.At(30))
	assert.Equal(t, 0.01, cfg.Kf)

	_, err = ApplyGains(cfg, map[string]float64{"kd": 1})
	assert.ErrorIs(t, err, ErrUnknownParam)
}
