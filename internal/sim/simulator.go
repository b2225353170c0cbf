package sim

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/san-kum/curvsim/internal/dynamo"
	"github.com/san-kum/curvsim/internal/latcontrol"
	"github.com/san-kum/curvsim/internal/scenario"
	"github.com/san-kum/curvsim/internal/vehicle"
)

// Simulator closes the loop between a curvature controller and a lateral
// plant. It is NOT safe for concurrent use; build one per run.
type Simulator struct {
	ctrl       *latcontrol.Controller
	model      *vehicle.Model
	plant      *vehicle.Plant
	integrator dynamo.Integrator
	profile    scenario.Profile
	metrics    []Metric
	observers  []Observer
}

func New(ctrl *latcontrol.Controller, model *vehicle.Model, integrator dynamo.Integrator, profile scenario.Profile) *Simulator {
	return &Simulator{
		ctrl:       ctrl,
		model:      model,
		plant:      vehicle.NewPlant(model),
		integrator: integrator,
		profile:    profile,
		metrics:    make([]Metric, 0),
		observers:  make([]Observer, 0),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) Controller() *latcontrol.Controller { return s.ctrl }

func validateConfig(cfg Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f", cfg.Dt)
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %f", cfg.Duration)
	}
	if cfg.YawNoise < 0 {
		return fmt.Errorf("yaw noise must not be negative, got %f", cfg.YawNoise)
	}
	return nil
}

// Session steps a simulation one cycle at a time.
type Session struct {
	s     *Simulator
	cfg   Config
	rng   *rand.Rand
	x     dynamo.State
	t     float64
	step  int
	steps int
}

func (s *Simulator) NewSession(cfg Config) (*Session, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	s.ctrl.Reset()
	for _, m := range s.metrics {
		m.Reset()
	}
	return &Session{
		s:     s,
		cfg:   cfg,
		rng:   rand.New(rand.NewSource(cfg.Seed)),
		x:     make(dynamo.State, s.plant.StateDim()),
		steps: int(math.Round(cfg.Duration / cfg.Dt)),
	}, nil
}

func (ss *Session) Done() bool    { return ss.step >= ss.steps }
func (ss *Session) Time() float64 { return ss.t }
func (ss *Session) Steps() int    { return ss.steps }
func (ss *Session) Cycles() int   { return ss.step }

// State returns a copy of the plant state.
func (ss *Session) State() dynamo.State { return ss.x.Clone() }

// Step runs one control cycle and advances the plant by Dt.
func (ss *Session) Step() (Cycle, error) {
	s, cfg := ss.s, ss.cfg
	sp := s.profile.At(ss.t)
	s.plant.SetSpeed(sp.Speed)
	s.plant.SetRoll(sp.Roll)

	steer := ss.x[vehicle.SteerAngle]
	yawRate := s.plant.YawRate(ss.x)

	in := latcontrol.Input{
		Active: sp.Active,
		Car: latcontrol.CarState{
			SteeringAngleDeg: steer*180/math.Pi + cfg.AngleOffsetDeg,
			VEgo:             sp.Speed,
			SteeringPressed:  sp.SteeringPressed,
		},
		Params: latcontrol.LiveParams{
			AngleOffsetDeg: cfg.AngleOffsetDeg,
			Roll:           sp.Roll,
		},
		SteerLimited:     sp.SteerLimited,
		DesiredCurvature: sp.DesiredCurvature,
	}
	if !cfg.DropPose {
		in.Pose = &latcontrol.Pose{YawRate: yawRate + ss.rng.NormFloat64()*cfg.YawNoise}
	}

	out, err := s.ctrl.Update(in, s.model)
	if err != nil {
		return Cycle{}, &dynamo.SimulationError{Step: ss.step, Time: ss.t, Wrapped: err}
	}

	// Disengaged or overridden, the driver follows the plan.
	target := out.Curvature
	if !sp.Active || sp.SteeringPressed {
		target = sp.DesiredCurvature
	}
	u := dynamo.Control{s.plant.SteerFor(target)}

	c := Cycle{
		Step:             ss.step,
		Time:             ss.t,
		Setpoint:         sp,
		Curvature:        s.plant.Curvature(steer),
		SteeringAngleDeg: in.Car.SteeringAngleDeg,
		YawRate:          yawRate,
		LateralOffset:    ss.x[vehicle.LateralOffset],
		Heading:          ss.x[vehicle.Heading],
		Output:           out,
		Integral:         s.ctrl.Integral(),
		Frozen:           out.Frozen,
	}

	next := s.integrator.Step(s.plant, ss.x, u, ss.t, cfg.Dt)
	if cfg.ValidateState && !next.IsValid() {
		return c, &dynamo.SimulationError{Step: ss.step, Time: ss.t, Wrapped: dynamo.ErrInvalidState}
	}

	ss.x = next
	ss.step++
	ss.t = float64(ss.step) * cfg.Dt

	for _, m := range s.metrics {
		m.Observe(c)
	}
	for _, obs := range s.observers {
		obs.OnCycle(c)
	}
	return c, nil
}

func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	ss, err := s.NewSession(cfg)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Cycles:  make([]Cycle, 0, ss.steps),
		Metrics: make(map[string]float64),
	}

	for !ss.Done() {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		c, err := ss.Step()
		if err != nil {
			return result, err
		}
		result.Cycles = append(result.Cycles, c)
		result.StepsTaken++
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	return result, nil
}
