package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/san-kum/curvsim/internal/config"
	"github.com/san-kum/curvsim/internal/control"
)

var (
	dataDir    string
	configFile string
	envFile    string
	preset     string
	logLevel   string
	logFormat  string

	dt         float64
	duration   float64
	seed       int64
	integrator string
	source     string
	kp         float64
	ki         float64
	kf         float64
	limit      float64
	scenarioK  string
	speed      float64
	curvature  float64
	roll       float64
	yawNoise   float64
	dropPose   bool

	noSave      bool
	outPath     string
	workers     int
	metricName  string
	kpGrid      string
	kiGrid      string
	kfGrid      string
	metricsAddr string
	svgPath     string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := &cobra.Command{
		Use:           "curvsim",
		Short:         "curvature-PID lateral controller lab",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "", "data directory (default from config)")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "dotenv file with CURVSIM_* overrides")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "start from a named preset")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "text or json")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a closed-loop simulation and store it",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addSimFlags(runCmd)
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot desired vs commanded curvature",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&svgPath, "svg", "", "write an SVG chart here instead of plotting")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (stdout if empty)")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export a run's cycles as CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (stdout if empty)")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency analysis of the commanded curvature",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	compareCmd := &cobra.Command{
		Use:   "compare",
		Short: "compare curvature sources on the same scenario",
		Args:  cobra.NoArgs,
		RunE:  compareSources,
	}
	addSimFlags(compareCmd)
	compareCmd.Flags().IntVar(&workers, "workers", 0, "parallel runs (0 = one per job)")

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "grid search kp/ki/kf against a metric",
		Args:  cobra.NoArgs,
		RunE:  tuneGains,
	}
	addSimFlags(tuneCmd)
	tuneCmd.Flags().StringVar(&kpGrid, "kp-grid", "0.5,1,1.5", "comma separated kp values")
	tuneCmd.Flags().StringVar(&kiGrid, "ki-grid", "0.5,1,2", "comma separated ki values")
	tuneCmd.Flags().StringVar(&kfGrid, "kf-grid", "", "comma separated kf values")
	tuneCmd.Flags().StringVar(&metricName, "metric", "tracking_rms", "metric to minimise")
	tuneCmd.Flags().IntVar(&workers, "workers", 0, "parallel runs (0 = one per candidate)")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run a simulation in the terminal",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addSimFlags(liveCmd)
	liveCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list scenario and vehicle presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	initCmd := &cobra.Command{
		Use:   "init-config [path]",
		Short: "write the effective configuration as yaml",
		Args:  cobra.ExactArgs(1),
		RunE:  initConfig,
	}

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportCmd, exportCSVCmd, analyzeCmd, compareCmd, tuneCmd, liveCmd, presetsCmd, initCmd)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		slog.Error("command failed", "err", err)
		os.Exit(1)
	}
}

func addSimFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Float64Var(&dt, "dt", config.DefaultDt, "control period (s)")
	f.Float64Var(&duration, "time", config.DefaultDuration, "duration (s)")
	f.Int64Var(&seed, "seed", 0, "noise seed")
	f.StringVar(&integrator, "integrator", "rk4", "rk4 or euler")
	f.StringVar(&source, "source", "steering_angle", "steering_angle or pose_blended")
	f.Float64Var(&kp, "kp", 1.0, "proportional gain (flat schedule)")
	f.Float64Var(&ki, "ki", 2.0, "integral gain (flat schedule)")
	f.Float64Var(&kf, "kf", 0.001, "feedforward gain")
	f.Float64Var(&limit, "limit", 0.195, "output curvature bound (1/m)")
	f.StringVar(&scenarioK, "scenario", "curve", "scenario kind")
	f.Float64Var(&speed, "speed", 20, "scenario speed (m/s)")
	f.Float64Var(&curvature, "curvature", 0.01, "scenario curvature (1/m)")
	f.Float64Var(&roll, "roll", 0, "road bank angle (rad)")
	f.Float64Var(&yawNoise, "yaw-noise", 0.002, "pose yaw rate noise std (rad/s)")
	f.BoolVar(&dropPose, "drop-pose", false, "withhold the pose from the controller")
}

// loadConfig layers defaults, preset, config file, environment and finally
// explicitly set flags, then installs the logger.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		if err := cfg.Overlay(configFile); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}
	if err := cfg.ApplyEnv(envFile); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("data") {
		cfg.DataDir = dataDir
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = logFormat
	}
	if flags.Lookup("dt") != nil {
		if flags.Changed("dt") {
			cfg.Sim.Dt = dt
		}
		if flags.Changed("time") {
			cfg.Sim.Duration = duration
		}
		if flags.Changed("seed") {
			cfg.Sim.Seed = seed
		}
		if flags.Changed("integrator") {
			cfg.Sim.Integrator = integrator
		}
		if flags.Changed("yaw-noise") {
			cfg.Sim.YawNoise = yawNoise
		}
		if flags.Changed("drop-pose") {
			cfg.Sim.DropPose = dropPose
		}
		if flags.Changed("source") {
			cfg.Controller.Source = source
		}
		if flags.Changed("kp") {
			cfg.Controller.Kp = control.Const(kp)
		}
		if flags.Changed("ki") {
			cfg.Controller.Ki = control.Const(ki)
		}
		if flags.Changed("kf") {
			cfg.Controller.Kf = kf
		}
		if flags.Changed("limit") {
			cfg.Controller.Limit = limit
		}
		if flags.Changed("scenario") {
			cfg.Scenario.Kind = scenarioK
		}
		if flags.Changed("speed") {
			cfg.Scenario.Speed = speed
		}
		if flags.Changed("curvature") {
			cfg.Scenario.Curvature = curvature
		}
		if flags.Changed("roll") {
			cfg.Scenario.Roll = roll
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := cfg.Log.Logger(os.Stderr)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)
	return cfg, nil
}

func parseGrid(s string) ([]float64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("bad grid value %q: %w", p, err)
		}
		out = append(out, v)
	}
	return out, nil
}
