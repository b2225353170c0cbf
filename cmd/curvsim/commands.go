package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sort"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/san-kum/curvsim/internal/analysis"
	"github.com/san-kum/curvsim/internal/config"
	"github.com/san-kum/curvsim/internal/export"
	"github.com/san-kum/curvsim/internal/latcontrol"
	"github.com/san-kum/curvsim/internal/metrics"
	"github.com/san-kum/curvsim/internal/optim"
	"github.com/san-kum/curvsim/internal/sim"
	"github.com/san-kum/curvsim/internal/storage"
	"github.com/san-kum/curvsim/internal/telemetry"
	"github.com/san-kum/curvsim/internal/viz"
)

// oscillationHz is the commanded-curvature frequency above which analyze
// reports ringing. Scenario excitation stays well below it.
const oscillationHz = 1.0

func buildSim(cfg *config.Config) (*sim.Simulator, error) {
	s, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	for _, m := range metrics.Defaults() {
		s.AddMetric(m)
	}
	return s, nil
}

func printMetrics(w io.Writer, m map[string]float64) {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		fmt.Fprintf(w, "  %-18s %.6g\n", k, m[k])
	}
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	s, err := buildSim(cfg)
	if err != nil {
		return err
	}
	s.AddObserver(telemetry.Observer{Sink: telemetry.NewLogSink(slog.Default(), int(1/cfg.Sim.Dt))})

	slog.Info("running", "scenario", cfg.Scenario.Kind, "source", cfg.Controller.Source,
		"duration", cfg.Sim.Duration, "dt", cfg.Sim.Dt)
	result, err := s.Run(cmd.Context(), cfg.SimRun())
	if err != nil {
		return err
	}

	fmt.Printf("%s: %d cycles\n", cfg.Scenario.Kind, result.StepsTaken)
	printMetrics(os.Stdout, result.Metrics)

	if noSave {
		return nil
	}
	st := storage.New(cfg.DataDir)
	if err := st.Init(); err != nil {
		return err
	}
	id, err := st.Save(storage.RunMetadata{
		Scenario:   cfg.Scenario.Kind,
		Seed:       cfg.Sim.Seed,
		Dt:         cfg.Sim.Dt,
		Duration:   cfg.Sim.Duration,
		Integrator: cfg.Sim.Integrator,
		Source:     cfg.Controller.Source,
		Gains: map[string]float64{
			"kp": cfg.Controller.Kp.At(cfg.Scenario.Speed),
			"ki": cfg.Controller.Ki.At(cfg.Scenario.Speed),
			"kf": cfg.Controller.Kf,
		},
	}, result)
	if err != nil {
		return err
	}
	fmt.Printf("saved: %s\n", id)
	return nil
}

func openStore(cmd *cobra.Command) (*storage.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return storage.New(cfg.DataDir), nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENARIO\tTIME\tDURATION\tDT\tINTEG\tSOURCE\tRMS")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.4fs\t%s\t%s\t%.3g\n",
			run.ID,
			run.Scenario,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Integrator,
			run.Source,
			run.Metrics["tracking_rms"],
		)
	}
	return w.Flush()
}

func loadRun(cmd *cobra.Command, id string) (*storage.RunMetadata, []storage.Row, error) {
	st, err := openStore(cmd)
	if err != nil {
		return nil, nil, err
	}
	meta, err := st.Load(id)
	if err != nil {
		return nil, nil, err
	}
	rows, err := st.LoadCycles(id)
	if err != nil {
		return nil, nil, err
	}
	return meta, rows, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, rows, err := loadRun(cmd, args[0])
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("no data")
	}

	ts := make([]float64, len(rows))
	desired := make([]float64, len(rows))
	output := make([]float64, len(rows))
	offset := make([]float64, len(rows))
	for i, r := range rows {
		ts[i], desired[i], output[i], offset[i] = r.Time, r.DesiredCurvature, r.Output, r.LateralOffset
	}

	if svgPath != "" {
		svg := export.TimeSeriesSVG(ts, []export.Series{
			{Values: desired, Color: "#00ffff"},
			{Values: output, Color: "#ffcc00"},
		}, 800, 300)
		if err := os.WriteFile(svgPath, []byte(svg), 0644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", svgPath)
		return nil
	}

	fmt.Printf("run: %s (%s, %s)\n\n", meta.ID, meta.Scenario, meta.Source)
	fmt.Println(viz.Plot(desired, output, 80, 15, "desired (cyan) vs output (yellow) curvature, 1/m"))
	fmt.Println()
	fmt.Println(viz.PlotSeries(offset, 80, 8, "lateral offset (m)"))
	return nil
}

func openOutput() (io.Writer, func() error, error) {
	if outPath == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(outPath)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	meta, rows, err := loadRun(cmd, args[0])
	if err != nil {
		return err
	}
	w, closeFn, err := openOutput()
	if err != nil {
		return err
	}
	if err := storage.ExportJSON(w, *meta, rows); err != nil {
		closeFn()
		return err
	}
	return closeFn()
}

func exportCSV(cmd *cobra.Command, args []string) error {
	_, rows, err := loadRun(cmd, args[0])
	if err != nil {
		return err
	}
	w, closeFn, err := openOutput()
	if err != nil {
		return err
	}
	if err := storage.WriteRows(w, rows); err != nil {
		closeFn()
		return err
	}
	if outPath != "" {
		fmt.Fprintf(os.Stderr, "exported %d cycles to %s\n", len(rows), outPath)
	}
	return closeFn()
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, rows, err := loadRun(cmd, args[0])
	if err != nil {
		return err
	}
	if len(rows) < 4 {
		return fmt.Errorf("no data")
	}

	out := make([]float64, len(rows))
	errs := make([]float64, len(rows))
	for i, r := range rows {
		out[i], errs[i] = r.Output, r.Error
	}

	fmt.Printf("frequency analysis: %s\n", meta.ID)
	fmt.Printf("scenario: %s\n\n", meta.Scenario)

	ps := analysis.PowerSpectrum(out)
	hi := len(ps) / 4
	if hi < 2 {
		hi = len(ps)
	}
	fmt.Println(viz.PlotSeries(ps[1:hi], 80, 12, "power spectrum (output curvature)"))
	fmt.Println()

	freq, mag := analysis.DominantFrequency(out, meta.Dt)
	efreq, _ := analysis.DominantFrequency(errs, meta.Dt)
	fmt.Printf("dominant frequency (output): %.3f hz (|X|=%.3g)\n", freq, mag)
	fmt.Printf("dominant frequency (error):  %.3f hz\n", efreq)
	if freq > 0 {
		fmt.Printf("period: %.3f s\n", 1.0/freq)
	}
	if freq > oscillationHz {
		fmt.Println("warning: commanded curvature is ringing; consider lowering kp")
	}
	return nil
}

func compareSources(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	var jobs []sim.Job
	for _, src := range []latcontrol.Source{latcontrol.SteeringAngle, latcontrol.PoseBlended} {
		c := cfg.Clone()
		c.Controller.Source = src.String()
		jobs = append(jobs, sim.Job{
			Name:   src.String(),
			Build:  func() (*sim.Simulator, error) { return buildSim(c) },
			Config: c.SimRun(),
		})
	}

	results, err := sim.Compare(cmd.Context(), jobs, workers)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(results[0].Metrics))
	for k := range results[0].Metrics {
		names = append(names, k)
	}
	sort.Strings(names)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprint(w, "SOURCE")
	for _, n := range names {
		fmt.Fprintf(w, "\t%s", n)
	}
	fmt.Fprintln(w)
	for i, job := range jobs {
		fmt.Fprint(w, job.Name)
		for _, n := range names {
			fmt.Fprintf(w, "\t%.4g", results[i].Metrics[n])
		}
		fmt.Fprintln(w)
	}
	return w.Flush()
}

func tuneGains(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	base, err := cfg.LatControl()
	if err != nil {
		return err
	}

	var names []string
	var ranges [][]float64
	for _, g := range []struct {
		name string
		spec string
	}{{optim.ParamKp, kpGrid}, {optim.ParamKi, kiGrid}, {optim.ParamKf, kfGrid}} {
		vals, err := parseGrid(g.spec)
		if err != nil {
			return fmt.Errorf("%s: %w", g.name, err)
		}
		if len(vals) > 0 {
			names = append(names, g.name)
			ranges = append(ranges, vals)
		}
	}

	build := func(p map[string]float64) (*sim.Simulator, error) {
		lc, err := optim.ApplyGains(base, p)
		if err != nil {
			return nil, err
		}
		c := cfg.Clone()
		c.Controller.Kp, c.Controller.Ki, c.Controller.Kf = lc.Kp, lc.Ki, lc.Kf
		return buildSim(c)
	}

	gs := optim.NewGridSearch(names, ranges, workers)
	slog.Info("tuning", "candidates", len(gs.Candidates()), "metric", metricName)
	res, err := gs.Search(cmd.Context(), build, cfg.SimRun(), metricName)
	if err != nil {
		return err
	}

	if res.Skipped > 0 {
		slog.Warn("candidates skipped", "count", res.Skipped)
	}
	fmt.Printf("best %s = %.6g\n", metricName, res.Value)
	for _, n := range names {
		fmt.Printf("  %s = %g\n", n, res.Best[n])
	}
	fmt.Println("\ntop candidates:")
	for i, tr := range res.Trials {
		if i == 5 {
			break
		}
		fmt.Printf("  %.6g  %v\n", tr.Value, tr.Params)
	}
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	s, err := buildSim(cfg)
	if err != nil {
		return err
	}

	if metricsAddr != "" {
		reg := prometheus.NewRegistry()
		sink, err := telemetry.NewPromSink(reg, "curvsim")
		if err != nil {
			return err
		}
		s.AddObserver(telemetry.Observer{Sink: sink})

		srv := &http.Server{Addr: metricsAddr, Handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{})}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("metrics server", "err", err)
			}
		}()
		defer srv.Close()
	}

	m, err := viz.NewModel(s, cfg.SimRun(), cfg.Scenario.Kind)
	if err != nil {
		return err
	}
	final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(viz.Model); ok && fm.Err() != nil {
		return fm.Err()
	}
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tVEHICLE\tSCENARIO\tDESCRIPTION")
	for _, name := range config.ListPresets() {
		p := config.Presets[name]
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", name, p.Vehicle, p.Scenario.Kind, p.Description)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\nvehicles: %v\n", config.ListVehicles())
	return nil
}

func initConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := config.Save(args[0], cfg); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", args[0])
	return nil
}
