package control

import (
	"fmt"

	"github.com/san-kum/curvsim/internal/dynamo"
)

// Schedule is a gain tabulated over vehicle speed.
type Schedule struct {
	Breakpoints []float64 `yaml:"bp"`
	Values      []float64 `yaml:"v"`
}

func Const(v float64) Schedule {
	return Schedule{Breakpoints: []float64{0}, Values: []float64{v}}
}

func (s Schedule) At(speed float64) float64 {
	return dynamo.Interp(speed, s.Breakpoints, s.Values)
}

func (s Schedule) Validate() error {
	if len(s.Breakpoints) == 0 || len(s.Breakpoints) != len(s.Values) {
		return fmt.Errorf("%w: schedule needs matching non-empty bp/v, got %d/%d",
			dynamo.ErrParameterBounds, len(s.Breakpoints), len(s.Values))
	}
	for i := 1; i < len(s.Breakpoints); i++ {
		if s.Breakpoints[i] <= s.Breakpoints[i-1] {
			return fmt.Errorf("%w: schedule breakpoints must increase", dynamo.ErrParameterBounds)
		}
	}
	return nil
}

// Scaled returns a copy with every value multiplied by factor.
func (s Schedule) Scaled(factor float64) Schedule {
	out := Schedule{
		Breakpoints: append([]float64(nil), s.Breakpoints...),
		Values:      make([]float64, len(s.Values)),
	}
	for i, v := range s.Values {
		out.Values[i] = v * factor
	}
	return out
}
