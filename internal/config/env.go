package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variables read by ApplyEnv.
const (
	EnvDataDir    = "CURVSIM_DATA_DIR"
	EnvLogLevel   = "CURVSIM_LOG_LEVEL"
	EnvLogFormat  = "CURVSIM_LOG_FORMAT"
	EnvSeed       = "CURVSIM_SEED"
	EnvSource     = "CURVSIM_SOURCE"
	EnvIntegrator = "CURVSIM_INTEGRATOR"
)

// ApplyEnv loads envFile if it exists, then overlays CURVSIM_* variables.
// Variables already set in the process win over the file.
func (c *Config) ApplyEnv(envFile string) error {
	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				return fmt.Errorf("config: %s: %w", envFile, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}

	if v, ok := os.LookupEnv(EnvDataDir); ok {
		c.DataDir = v
	}
	if v, ok := os.LookupEnv(EnvLogLevel); ok {
		c.Log.Level = v
	}
	if v, ok := os.LookupEnv(EnvLogFormat); ok {
		c.Log.Format = v
	}
	if v, ok := os.LookupEnv(EnvSource); ok {
		c.Controller.Source = v
	}
	if v, ok := os.LookupEnv(EnvIntegrator); ok {
		c.Sim.Integrator = v
	}
	if v, ok := os.LookupEnv(EnvSeed); ok {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("config: %s: %w", EnvSeed, err)
		}
		c.Sim.Seed = seed
	}
	return nil
}
