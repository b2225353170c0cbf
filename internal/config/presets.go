package config

import (
	"sort"

	"github.com/san-kum/curvsim/internal/scenario"
	"github.com/san-kum/curvsim/internal/vehicle"
)

var Vehicles = map[string]vehicle.Params{
	"sedan": vehicle.DefaultParams(),
	"compact": {
		Mass: 1150, Wheelbase: 2.5, CenterToFront: 1.0,
		TireStiffnessFront: 100000, TireStiffnessRear: 120000,
		SteerRatio: 13.5, ActuatorTau: 0.08,
	},
	"suv": {
		Mass: 2200, Wheelbase: 2.95, CenterToFront: 1.4,
		TireStiffnessFront: 140000, TireStiffnessRear: 160000,
		SteerRatio: 16.5, ActuatorTau: 0.15,
	},
}

type Preset struct {
	Description string
	Vehicle     string
	Duration    float64
	Scenario    scenario.Spec
}

var Presets = map[string]Preset{
	"highway_curve": {
		Description: "long constant curve at highway speed",
		Vehicle:     "sedan", Duration: 20,
		Scenario: scenario.Spec{Kind: "curve", Speed: 30, Curvature: 0.002, RampTime: 3},
	},
	"city_turn": {
		Description: "tight turn at town speed",
		Vehicle:     "compact", Duration: 10,
		Scenario: scenario.Spec{Kind: "curve", Speed: 8, Curvature: 0.05, RampTime: 1},
	},
	"lane_change": {
		Description: "curvature step as a planner change",
		Vehicle:     "sedan", Duration: 10,
		Scenario: scenario.Spec{Kind: "step", Speed: 25, Curvature: 0.004, StepTime: 2},
	},
	"slalom": {
		Description: "sinusoidal S-curve",
		Vehicle:     "sedan", Duration: 20,
		Scenario: scenario.Spec{Kind: "scurve", Speed: 15, Curvature: 0.02, Period: 5},
	},
	"banked": {
		Description: "curve on a 3 degree banked road",
		Vehicle:     "suv", Duration: 20,
		Scenario: scenario.Spec{Kind: "curve", Speed: 25, Curvature: 0.005, RampTime: 2, Roll: 0.052},
	},
	"pull_away": {
		Description: "accelerate from rest through the fusion breakpoints",
		Vehicle:     "sedan", Duration: 15,
		Scenario: scenario.Spec{Kind: "speed_ramp", Speed: 0, SpeedTo: 15, RampTime: 10, Curvature: 0.01},
	},
	"driver_override": {
		Description: "driver holds the wheel mid-curve",
		Vehicle:     "sedan", Duration: 15,
		Scenario: scenario.Spec{
			Kind: "curve", Speed: 20, Curvature: 0.01, RampTime: 1,
			Override: []scenario.Window{{From: 5, To: 8}},
		},
	},
	"disengage": {
		Description: "controller dropped and re-engaged",
		Vehicle:     "sedan", Duration: 15,
		Scenario: scenario.Spec{
			Kind: "curve", Speed: 20, Curvature: 0.01, RampTime: 1,
			Disengaged: []scenario.Window{{From: 5, To: 7}},
		},
	},
	"limited": {
		Description: "upstream torque limit on a tight curve",
		Vehicle:     "sedan", Duration: 10,
		Scenario: scenario.Spec{
			Kind: "curve", Speed: 20, Curvature: 0.02, RampTime: 1,
			Limited: []scenario.Window{{From: 3, To: 6}},
		},
	},
}

// GetPreset returns the defaults with the preset's vehicle and scenario
// applied, or nil if name is unknown.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	if v, ok := Vehicles[p.Vehicle]; ok {
		cfg.Vehicle = v
	}
	cfg.Scenario = p.Scenario
	if p.Duration > 0 {
		cfg.Sim.Duration = p.Duration
	}
	return cfg
}

func ListPresets() []string {
	return sortedKeys(Presets)
}

func ListVehicles() []string {
	return sortedKeys(Vehicles)
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
