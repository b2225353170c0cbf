// Package scenario generates the per-cycle inputs a planner and a driver
// would hand the lateral controller: desired curvature, speed, road bank and
// the engagement flags.
package scenario

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

var ErrUnknownScenario = errors.New("scenario: unknown kind")

// Setpoint is what the world looks like at one instant.
type Setpoint struct {
	DesiredCurvature float64
	Speed            float64
	Roll             float64
	Active           bool
	SteeringPressed  bool
	SteerLimited     bool
}

type Profile interface {
	At(t float64) Setpoint
}

// Window is a half-open time interval [From, To).
type Window struct {
	From float64 `yaml:"from"`
	To   float64 `yaml:"to"`
}

func (w Window) Contains(t float64) bool { return t >= w.From && t < w.To }

func inAny(ws []Window, t float64) bool {
	for _, w := range ws {
		if w.Contains(t) {
			return true
		}
	}
	return false
}

// Spec describes a profile in configuration terms. Fields a kind does not
// use are ignored.
type Spec struct {
	Kind      string  `yaml:"kind"`
	Speed     float64 `yaml:"speed"`
	SpeedTo   float64 `yaml:"speed_to"`
	Curvature float64 `yaml:"curvature"`
	Period    float64 `yaml:"period"`
	StepTime  float64 `yaml:"step_time"`
	RampTime  float64 `yaml:"ramp_time"`
	Roll      float64 `yaml:"roll"`

	Disengaged []Window `yaml:"disengaged"`
	Override   []Window `yaml:"override"`
	Limited    []Window `yaml:"limited"`
}

type builder func(Spec) Profile

var kinds = map[string]builder{
	"straight": func(s Spec) Profile { return curve{speed: s.Speed, roll: s.Roll} },
	"curve": func(s Spec) Profile {
		return curve{speed: s.Speed, k: s.Curvature, ramp: s.RampTime, roll: s.Roll}
	},
	"step": func(s Spec) Profile {
		return step{speed: s.Speed, k: s.Curvature, at: s.StepTime, roll: s.Roll}
	},
	"scurve": func(s Spec) Profile {
		return scurve{speed: s.Speed, amp: s.Curvature, period: s.Period, roll: s.Roll}
	},
	"speed_ramp": func(s Spec) Profile {
		return speedRamp{from: s.Speed, to: s.SpeedTo, dur: s.RampTime, k: s.Curvature, roll: s.Roll}
	},
}

// Kinds lists the profile kinds Build accepts.
func Kinds() []string {
	names := make([]string, 0, len(kinds))
	for name := range kinds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func Build(s Spec) (Profile, error) {
	b, ok := kinds[s.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %v)", ErrUnknownScenario, s.Kind, Kinds())
	}
	if s.Speed < 0 || s.SpeedTo < 0 {
		return nil, fmt.Errorf("scenario: speed must not be negative")
	}
	if s.Kind == "scurve" && s.Period <= 0 {
		return nil, fmt.Errorf("scenario: scurve needs a positive period")
	}
	p := b(s)
	if len(s.Disengaged) == 0 && len(s.Override) == 0 && len(s.Limited) == 0 {
		return engaged{p}, nil
	}
	return windowed{base: p, disengaged: s.Disengaged, override: s.Override, limited: s.Limited}, nil
}

// engaged marks every cycle active.
type engaged struct{ base Profile }

func (e engaged) At(t float64) Setpoint {
	sp := e.base.At(t)
	sp.Active = true
	return sp
}

type windowed struct {
	base       Profile
	disengaged []Window
	override   []Window
	limited    []Window
}

func (w windowed) At(t float64) Setpoint {
	sp := w.base.At(t)
	sp.Active = !inAny(w.disengaged, t)
	sp.SteeringPressed = inAny(w.override, t)
	sp.SteerLimited = inAny(w.limited, t)
	return sp
}

// curve holds a constant curvature, reached linearly over ramp seconds.
type curve struct {
	speed, k, ramp, roll float64
}

func (c curve) At(t float64) Setpoint {
	k := c.k
	if c.ramp > 0 && t < c.ramp {
		k = c.k * t / c.ramp
	}
	return Setpoint{DesiredCurvature: k, Speed: c.speed, Roll: c.roll}
}

type step struct {
	speed, k, at, roll float64
}

func (s step) At(t float64) Setpoint {
	sp := Setpoint{Speed: s.speed, Roll: s.roll}
	if t >= s.at {
		sp.DesiredCurvature = s.k
	}
	return sp
}

type scurve struct {
	speed, amp, period, roll float64
}

func (s scurve) At(t float64) Setpoint {
	return Setpoint{
		DesiredCurvature: s.amp * math.Sin(2*math.Pi*t/s.period),
		Speed:            s.speed,
		Roll:             s.roll,
	}
}

// speedRamp changes speed linearly while holding curvature, for sweeping
// through the low-speed freeze and fusion ranges.
type speedRamp struct {
	from, to, dur, k, roll float64
}

func (r speedRamp) At(t float64) Setpoint {
	v := r.to
	if r.dur > 0 && t < r.dur {
		v = r.from + (r.to-r.from)*t/r.dur
	}
	return Setpoint{DesiredCurvature: r.k, Speed: v, Roll: r.roll}
}
