// Package config loads the YAML run configuration and its presets.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/curvsim/internal/control"
	"github.com/san-kum/curvsim/internal/integrators"
	"github.com/san-kum/curvsim/internal/latcontrol"
	"github.com/san-kum/curvsim/internal/scenario"
	"github.com/san-kum/curvsim/internal/sim"
	"github.com/san-kum/curvsim/internal/vehicle"
)

const (
	DefaultDt       = 0.01
	DefaultDuration = 20.0
	DefaultDataDir  = "./runs"
)

type Config struct {
	Controller ControllerConfig `yaml:"controller"`
	Vehicle    vehicle.Params   `yaml:"vehicle"`
	Scenario   scenario.Spec    `yaml:"scenario"`
	Sim        SimConfig        `yaml:"sim"`
	Log        LogConfig        `yaml:"log"`
	DataDir    string           `yaml:"data_dir"`
}

type ControllerConfig struct {
	Kp     control.Schedule `yaml:"kp"`
	Ki     control.Schedule `yaml:"ki"`
	Kf     float64          `yaml:"kf"`
	Limit  float64          `yaml:"limit"`
	Source string           `yaml:"source"`
	RateHz float64          `yaml:"rate_hz"`
}

type SimConfig struct {
	Dt             float64 `yaml:"dt"`
	Duration       float64 `yaml:"duration"`
	Seed           int64   `yaml:"seed"`
	Integrator     string  `yaml:"integrator"`
	YawNoise       float64 `yaml:"yaw_noise"`
	AngleOffsetDeg float64 `yaml:"angle_offset_deg"`
	DropPose       bool    `yaml:"drop_pose"`
}

func DefaultConfig() *Config {
	lc := latcontrol.DefaultConfig()
	sc := sim.DefaultConfig()
	return &Config{
		Controller: ControllerConfig{
			Kp:     lc.Kp,
			Ki:     lc.Ki,
			Kf:     lc.Kf,
			Limit:  lc.Limit,
			Source: lc.Source.String(),
			RateHz: lc.RateHz,
		},
		Vehicle:  vehicle.DefaultParams(),
		Scenario: scenario.Spec{Kind: "curve", Speed: 20, Curvature: 0.01, RampTime: 2},
		Sim: SimConfig{
			Dt:         DefaultDt,
			Duration:   DefaultDuration,
			Integrator: "rk4",
			YawNoise:   sc.YawNoise,
		},
		Log:     LogConfig{Level: "info", Format: "text"},
		DataDir: DefaultDataDir,
	}
}

// Load reads path over the defaults, so a file only names what it changes.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if err := cfg.Overlay(path); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Overlay decodes path on top of c. Used to layer a file over a preset.
func (c *Config) Overlay(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("config: %s: %w", path, err)
	}
	return nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LatControl converts the controller section.
func (c *Config) LatControl() (latcontrol.Config, error) {
	src, err := latcontrol.ParseSource(c.Controller.Source)
	if err != nil {
		return latcontrol.Config{}, err
	}
	return latcontrol.Config{
		Kp:     c.Controller.Kp,
		Ki:     c.Controller.Ki,
		Kf:     c.Controller.Kf,
		Limit:  c.Controller.Limit,
		Source: src,
		RateHz: c.Controller.RateHz,
	}, nil
}

func (c *Config) SimRun() sim.Config {
	return sim.Config{
		Dt:             c.Sim.Dt,
		Duration:       c.Sim.Duration,
		Seed:           c.Sim.Seed,
		YawNoise:       c.Sim.YawNoise,
		AngleOffsetDeg: c.Sim.AngleOffsetDeg,
		DropPose:       c.Sim.DropPose,
		ValidateState:  true,
	}
}

func (c *Config) Validate() error {
	lc, err := c.LatControl()
	if err != nil {
		return fmt.Errorf("config: controller: %w", err)
	}
	if err := lc.Validate(); err != nil {
		return fmt.Errorf("config: controller: %w", err)
	}
	if err := c.Vehicle.Validate(); err != nil {
		return fmt.Errorf("config: vehicle: %w", err)
	}
	if _, err := scenario.Build(c.Scenario); err != nil {
		return fmt.Errorf("config: scenario: %w", err)
	}
	if _, err := integrators.ByName(c.Sim.Integrator); err != nil {
		return fmt.Errorf("config: sim: %w", err)
	}
	if c.Sim.Dt <= 0 || c.Sim.Duration <= 0 {
		return fmt.Errorf("config: sim: dt and duration must be positive")
	}
	if _, err := c.Log.level(); err != nil {
		return err
	}
	return nil
}

// Build assembles a simulator from the configuration.
func (c *Config) Build() (*sim.Simulator, error) {
	lc, err := c.LatControl()
	if err != nil {
		return nil, err
	}
	ctrl, err := latcontrol.New(lc)
	if err != nil {
		return nil, err
	}
	model, err := vehicle.NewModel(c.Vehicle)
	if err != nil {
		return nil, err
	}
	integ, err := integrators.ByName(c.Sim.Integrator)
	if err != nil {
		return nil, err
	}
	profile, err := scenario.Build(c.Scenario)
	if err != nil {
		return nil, err
	}
	return sim.New(ctrl, model, integ, profile), nil
}

// Clone returns a deep copy safe to mutate from another goroutine.
func (c *Config) Clone() *Config {
	out := *c
	out.Controller.Kp = c.Controller.Kp.Scaled(1)
	out.Controller.Ki = c.Controller.Ki.Scaled(1)
	out.Scenario.Disengaged = append([]scenario.Window(nil), c.Scenario.Disengaged...)
	out.Scenario.Override = append([]scenario.Window(nil), c.Scenario.Override...)
	out.Scenario.Limited = append([]scenario.Window(nil), c.Scenario.Limited...)
	return &out
}
