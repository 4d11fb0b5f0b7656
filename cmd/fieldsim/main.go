package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/san-kum/fieldsim/internal/config"
	"github.com/san-kum/fieldsim/internal/viz"
)

var (
	dataDir  string
	logLevel string

	// run flags, shared by every command that mounts a layer
	preset     string
	configFile string
	variant    string
	opacity    float64
	count      int
	seed       int64
	fps        int
	ticks      int
	width      float64
	height     float64
	dpr        float64
	theme      string
	moveEvery  int
	metricList string

	// command-specific
	outFile string
	every   int
	stack   bool
	dotSize float64
	addr    string
	runs    int
	limit   int
	counts  string
	plotSVG string
	saveRun bool
	trace   string

	// sweep and tune
	paramName   string
	paramMin    float64
	paramMax    float64
	steps       int
	searchSpec  string
	searchGoal  float64
	searchBy    string
	monteTrials int
)

// main registers every command; with no subcommand it opens the window.
func main() {
	rootCmd := &cobra.Command{
		Use:   "fieldsim",
		Short: "gold particle fields: background drift, cursor swarm and pointer trail",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(logLevel)
		},
		RunE: runWindow,
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".fieldsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	addRunFlags(rootCmd)

	windowCmd := &cobra.Command{
		Use:   "window",
		Short: "open a desktop window with the configured layers",
		RunE:  runWindow,
	}
	addRunFlags(windowCmd)
	windowCmd.Flags().BoolVar(&stack, "stack", false, "mount the full page stack (background 0.2, mouse 0.6) instead of one layer")

	tuiCmd := &cobra.Command{
		Use:   "tui",
		Short: "render the layer in the terminal with braille dots",
		RunE:  runTUI,
	}
	addRunFlags(tuiCmd)
	tuiCmd.Flags().Float64Var(&dotSize, "dot", 8, "logical pixels per braille dot")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run headless for --ticks frames and store the per-frame stats",
		RunE:  runHeadless,
	}
	addRunFlags(runCmd)
	runCmd.Flags().StringVar(&metricList, "metrics", "", "comma separated metric names (default: all)")
	runCmd.Flags().StringVar(&trace, "trace", "", "write every particle's position and velocity per tick to this CSV file")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot edge and disc counts of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&plotSVG, "svg", "", "also write the edge series as an SVG chart")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "summary statistics and power spectrum of a run's edge count",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "print run metadata as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	snapshotCmd := &cobra.Command{
		Use:   "snapshot",
		Short: "render the frame after --ticks to PNG, SVG or an animated GIF",
		RunE:  snapshot,
	}
	addRunFlags(snapshotCmd)
	snapshotCmd.Flags().StringVarP(&outFile, "out", "o", "frame.png", "output file (.png, .svg or .gif)")
	snapshotCmd.Flags().IntVar(&every, "every", 4, "gif: record one frame every n ticks")
	snapshotCmd.Flags().BoolVar(&saveRun, "save", false, "also store the run")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "serve rendered frames over HTTP",
		RunE:  serve,
	}
	serveCmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "compare tick cost across pool sizes with and without the spatial grid",
		RunE:  bench,
	}
	addRunFlags(benchCmd)
	benchCmd.Flags().IntVar(&runs, "runs", 4, "independent runs per configuration")
	benchCmd.Flags().IntVar(&limit, "limit", 0, "max concurrent runs (0 = unlimited)")
	benchCmd.Flags().StringVar(&counts, "counts", "50,200,600,1000", "comma separated pool sizes")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a YAML scenario of headless steps",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "sweep one tunable and report edge counts",
		RunE:  runSweep,
	}
	addRunFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&paramName, "param", "link_radius", "tunable to sweep")
	sweepCmd.Flags().Float64Var(&paramMin, "min", 40, "first value")
	sweepCmd.Flags().Float64Var(&paramMax, "max", 200, "last value")
	sweepCmd.Flags().IntVar(&steps, "steps", 5, "number of values")
	sweepCmd.Flags().IntVar(&monteTrials, "trials", 0, "instead of sweeping, run n seeds and count contained runs")

	tuneCmd := &cobra.Command{
		Use:     "tune",
		Short:   "grid search tunables for a metric target",
		Example: "  fieldsim tune --grid link_radius=60:180:5,jitter=0.05:0.2:3 --metric edge_density --target 0.05",
		RunE:    runTune,
	}
	addRunFlags(tuneCmd)
	tuneCmd.Flags().StringVar(&searchSpec, "grid", "link_radius=60:180:5", "name=min:max:n,...")
	tuneCmd.Flags().StringVar(&searchBy, "metric", "edge_density", "metric to match")
	tuneCmd.Flags().Float64Var(&searchGoal, "target", 0.05, "target metric value")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				cfg := config.GetPreset(name)
				fmt.Printf("  %-8s %-10s opacity %.2f  count %d\n", name, cfg.Variant, cfg.Opacity, cfg.Count)
			}
			return nil
		},
	}

	rootCmd.AddCommand(windowCmd, tuiCmd, runCmd, listCmd, plotCmd, analyzeCmd, exportCmd, snapshotCmd, serveCmd, benchCmd, scenarioCmd, sweepCmd, tuneCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&preset, "preset", "", "start from a named preset")
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&variant, "variant", config.DefaultVariant, "layer: background, mouse or trail")
	f.Float64Var(&opacity, "opacity", config.DefaultOpacity, "layer opacity in [0,1]")
	f.IntVar(&count, "count", 50, "particle count")
	f.Int64Var(&seed, "seed", 0, "random seed")
	f.IntVar(&fps, "fps", config.DefaultFPS, "frames per second")
	f.IntVar(&ticks, "ticks", config.DefaultTicks, "frames to run headless")
	f.Float64Var(&width, "width", config.DefaultWidth, "viewport width in CSS pixels")
	f.Float64Var(&height, "height", config.DefaultHeight, "viewport height in CSS pixels")
	f.Float64Var(&dpr, "dpr", config.DefaultDPR, "device pixel ratio")
	f.StringVar(&theme, "theme", config.DefaultTheme, "terminal theme ("+strings.Join(viz.ThemeNames(), ", ")+")")
	f.IntVar(&moveEvery, "move-every", 0, "headless: move the synthetic pointer every n ticks")
}

// resolveConfig layers preset, then config file, then explicitly set flags.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("%w: %s (available: %v)", config.ErrUnknownPreset, preset, config.ListPresets())
		}
	}
	if configFile != "" {
		if err := config.LoadInto(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	f := cmd.Flags()
	if f.Changed("variant") {
		cfg.Variant = variant
	}
	if f.Changed("opacity") {
		cfg.Opacity = opacity
	}
	if f.Changed("count") {
		cfg.Count = count
	}
	if f.Changed("seed") {
		cfg.Seed = seed
	}
	if f.Changed("fps") {
		cfg.FPS = fps
	}
	if f.Changed("ticks") {
		cfg.Ticks = ticks
	}
	if f.Changed("width") {
		cfg.Viewport.Width = width
		cfg.Pointer.X = width / 2
	}
	if f.Changed("height") {
		cfg.Viewport.Height = height
		cfg.Pointer.Y = height / 2
	}
	if f.Changed("dpr") {
		cfg.Viewport.DPR = dpr
	}
	if f.Changed("theme") {
		cfg.Theme = theme
	}
	if f.Changed("move-every") {
		cfg.Pointer.MoveEvery = moveEvery
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := viz.CheckTheme(cfg.Theme); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setupLogging(level string) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
