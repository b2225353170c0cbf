package config

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/curvsim/internal/latcontrol"
	"github.com/san-kum/curvsim/internal/vehicle"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	lc, err := cfg.LatControl()
	require.NoError(t, err)
	assert.Equal(t, latcontrol.SteeringAngle, lc.Source)
	assert.Equal(t, latcontrol.DefaultLimit, lc.Limit)

	sc := cfg.SimRun()
	assert.Equal(t, DefaultDt, sc.Dt)
	assert.True(t, sc.ValidateState)
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	yml := `
controller:
  source: pose_blended
  kp: {bp: [0, 30], v: [1.2, 0.8]}
scenario:
  kind: scurve
  speed: 15
  curvature: 0.02
  period: 4
  override:
    - {from: 2, to: 3}
sim:
  seed: 7
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "pose_blended", cfg.Controller.Source)
	assert.InDelta(t, 1.0, cfg.Controller.Kp.At(15), 1e-12)
	assert.Equal(t, DefaultDt, cfg.Sim.Dt, "unset fields keep defaults")
	assert.Equal(t, int64(7), cfg.Sim.Seed)
	require.Len(t, cfg.Scenario.Override, 1)
	assert.Equal(t, 3.0, cfg.Scenario.Override[0].To)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	cfg := GetPreset("banked")
	require.NotNil(t, cfg)
	require.NoError(t, Save(path, cfg))

	back, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Vehicle, back.Vehicle)
	assert.Equal(t, cfg.Controller, back.Controller)
	assert.Equal(t, cfg.Sim, back.Sim)
	assert.Equal(t, cfg.Scenario.Kind, back.Scenario.Kind)
	assert.Equal(t, cfg.Scenario.Roll, back.Scenario.Roll)
}

func TestOverlayOnPreset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sim:\n  duration: 3\n"), 0644))

	cfg := GetPreset("slalom")
	require.NoError(t, cfg.Overlay(path))
	assert.Equal(t, "scurve", cfg.Scenario.Kind, "preset survives")
	assert.Equal(t, 3.0, cfg.Sim.Duration)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sim: [1, 2"), 0644))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"source", func(c *Config) { c.Controller.Source = "gps" }},
		{"limit", func(c *Config) { c.Controller.Limit = 0 }},
		{"vehicle", func(c *Config) { c.Vehicle.Mass = -1 }},
		{"scenario", func(c *Config) { c.Scenario.Kind = "loop" }},
		{"integrator", func(c *Config) { c.Sim.Integrator = "verlet" }},
		{"dt", func(c *Config) { c.Sim.Dt = 0 }},
		{"log level", func(c *Config) { c.Log.Level = "loud" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestBuild(t *testing.T) {
	s, err := DefaultConfig().Build()
	require.NoError(t, err)
	assert.Equal(t, latcontrol.Inactive, s.Controller().Mode())
}

func TestClone(t *testing.T) {
	cfg := GetPreset("driver_override")
	cp := cfg.Clone()
	cp.Scenario.Override[0].From = 99
	cp.Controller.Kp.Values[0] = 42
	assert.Equal(t, 5.0, cfg.Scenario.Override[0].From)
	assert.NotEqual(t, 42.0, cfg.Controller.Kp.Values[0])
}

func TestApplyEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("CURVSIM_LOG_FORMAT=json\nCURVSIM_SEED=11\n"), 0644))

	t.Setenv(EnvDataDir, filepath.Join(dir, "data"))
	t.Setenv(EnvSource, "pose")
	// Process values win over the file.
	t.Setenv(EnvSeed, "5")

	t.Cleanup(func() { os.Unsetenv(EnvLogFormat) })

	cfg := DefaultConfig()
	require.NoError(t, cfg.ApplyEnv(envFile))
	assert.Equal(t, filepath.Join(dir, "data"), cfg.DataDir)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, int64(5), cfg.Sim.Seed)
	assert.Equal(t, "pose", cfg.Controller.Source)

	require.NoError(t, DefaultConfig().ApplyEnv(filepath.Join(dir, "absent.env")))

	t.Setenv(EnvSeed, "abc")
	assert.Error(t, DefaultConfig().ApplyEnv(""))
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := LogConfig{Level: "debug", Format: "json"}.Logger(&buf)
	require.NoError(t, err)
	logger.Debug("hello", "k", 1)
	assert.True(t, strings.HasPrefix(buf.String(), "{"))

	_, err = LogConfig{Format: "xml"}.Logger(&buf)
	assert.Error(t, err)
}

func TestPresets(t *testing.T) {
	names := ListPresets()
	require.NotEmpty(t, names)
	for _, name := range names {
		cfg := GetPreset(name)
		require.NotNil(t, cfg, name)
		assert.NoError(t, cfg.Validate(), name)
		assert.Contains(t, Vehicles, Presets[name].Vehicle, name)
	}
	assert.Nil(t, GetPreset("nonexistent"))

	for _, v := range ListVehicles() {
		assert.NoError(t, Vehicles[v].Validate(), v)
	}
}

func TestVehicles_Understeer(t *testing.T) {
	for _, name := range ListVehicles() {
		t.Run(name, func(t *testing.T) {
			m, err := vehicle.NewModel(Vehicles[name])
			require.NoError(t, err)
			assert.Less(t, m.SlipFactor(), 0.0)
			assert.Less(t, m.CurvatureFactor(30), m.CurvatureFactor(0))
			assert.False(t, math.IsInf(m.Curvature(0.5, 50, 0), 0))
		})
	}
}
