package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/fieldsim/internal/analysis"
	"github.com/san-kum/fieldsim/internal/config"
	"github.com/san-kum/fieldsim/internal/experiment"
	"github.com/san-kum/fieldsim/internal/export"
	"github.com/san-kum/fieldsim/internal/gui"
	"github.com/san-kum/fieldsim/internal/host"
	"github.com/san-kum/fieldsim/internal/metrics"
	"github.com/san-kum/fieldsim/internal/server"
	"github.com/san-kum/fieldsim/internal/sim"
	"github.com/san-kum/fieldsim/internal/storage"
	"github.com/san-kum/fieldsim/internal/surface"
	"github.com/san-kum/fieldsim/internal/viz"
)

func simOptions(cfg *config.Config, s int64) []sim.Option {
	return []sim.Option{
		sim.WithParams(cfg.SimParams()),
		sim.WithRand(rand.New(rand.NewSource(s))),
	}
}

func runWindow(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	var specs []gui.LayerSpec
	if stack {
		specs = []gui.LayerSpec{
			{Variant: host.Background, Opacity: 0.2, SimOpts: simOptions(cfg, cfg.Seed)},
			{Variant: host.MouseFollow, Opacity: 0.6, SimOpts: simOptions(cfg, cfg.Seed+1)},
		}
	} else {
		v, err := cfg.HostVariant()
		if err != nil {
			return err
		}
		specs = []gui.LayerSpec{{Variant: v, Opacity: cfg.Opacity, SimOpts: simOptions(cfg, cfg.Seed)}}
	}
	return gui.Run(cfg, specs...)
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	return viz.Run(cfg, viz.WithDotSize(dotSize))
}

func runHeadless(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("running %s field (%d particles, %d ticks)...\n", cfg.Variant, cfg.Count, cfg.Ticks)
	start := time.Now()

	opts := []experiment.Option{experiment.WithMetrics(splitList(metricList)...)}
	var tw *storage.TraceWriter
	if trace != "" {
		f, err := os.Create(trace)
		if err != nil {
			return err
		}
		defer f.Close()
		tw = storage.NewTraceWriter(f)
		opts = append(opts, experiment.WithObserver(tw))
	}

	res, err := experiment.Run(ctx, cfg, surface.DiscardAcquirer, opts...)
	if res != nil {
		defer res.Close()
	}
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	if tw != nil {
		if err := tw.Flush(); err != nil {
			return fmt.Errorf("trace: %w", err)
		}
		fmt.Printf("trace: %d rows written to %s\n", tw.Rows(), trace)
	}

	runID, err := st.Save(metadata(cfg, res), res.Frames)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("frames: %d\n", len(res.Frames))
	printMetrics(res.Metrics)
	return nil
}

func metadata(cfg *config.Config, res *experiment.Result) storage.RunMetadata {
	return storage.RunMetadata{
		Preset:  preset,
		Variant: cfg.Variant,
		Seed:    cfg.Seed,
		Count:   cfg.Count,
		Ticks:   len(res.Frames),
		FPS:     cfg.FPS,
		Width:   cfg.Viewport.Width,
		Height:  cfg.Viewport.Height,
		DPR:     cfg.Viewport.DPR,
		Opacity: cfg.Opacity,
		Metrics: res.Metrics,
	}
}

func printMetrics(m map[string]float64) {
	if len(m) == 0 {
		return
	}
	fmt.Println("\nmetrics:")
	for _, name := range experiment.NewRegistry().ListMetrics() {
		if v, ok := m[name]; ok {
			fmt.Printf("  %s: %.6f\n", name, v)
		}
	}
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tVARIANT\tPRESET\tTIME\tTICKS\tCOUNT\tSEED")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%d\n",
			run.ID,
			run.Variant,
			run.Preset,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Ticks,
			run.Count,
			run.Seed,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	frames, err := st.LoadFrames(runID)
	if err != nil {
		return err
	}
	if len(frames) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("variant: %s\n", meta.Variant)
	fmt.Printf("frames: %d\n\n", len(frames))

	series := []struct {
		caption string
		data    []float64
	}{
		{"edges per frame", analysis.EdgeSeries(frames)},
		{"discs per frame", analysis.DiscSeries(frames)},
		{"pointer active", analysis.ActiveSeries(frames)},
	}
	for _, s := range series {
		graph := asciigraph.Plot(s.data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(s.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	if plotSVG != "" {
		svg := export.SeriesToSVG(analysis.EdgeSeries(frames), 800, 240, "#fabd00")
		if err := os.WriteFile(plotSVG, []byte(svg), 0644); err != nil {
			return err
		}
		fmt.Printf("chart written to %s\n", plotSVG)
	}
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	frames, err := st.LoadFrames(runID)
	if err != nil {
		return err
	}
	if len(frames) < 4 {
		return fmt.Errorf("not enough frames to analyze")
	}

	edges := analysis.EdgeSeries(frames)
	sum := analysis.Summarize(edges)
	fmt.Printf("frequency analysis: %s\n", meta.ID)
	fmt.Printf("variant: %s\n\n", meta.Variant)
	fmt.Printf("edges: mean %.1f  std %.1f  min %.0f  max %.0f\n\n", sum.Mean, sum.StdDev, sum.Min, sum.Max)

	n := 1
	for n < len(edges) {
		n *= 2
	}
	padded := make([]float64, n)
	copy(padded, edges)

	ps := analysis.PowerSpectrum(padded)
	plotData := ps[:max(len(ps)/4, 2)]

	graph := asciigraph.Plot(plotData,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption("power spectrum (edges)"),
	)
	fmt.Println(graph)
	fmt.Println()

	rate := float64(meta.FPS)
	if rate <= 0 {
		rate = config.DefaultFPS
	}
	freq, _ := analysis.Dominant(ps, rate)
	fmt.Printf("dominant frequency: %.3f hz\n", freq)
	if freq > 0 {
		fmt.Printf("period: %.3f s\n", 1.0/freq)
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func snapshot(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	ctx := context.Background()

	var res *experiment.Result
	switch ext := filepath.Ext(outFile); ext {
	case ".svg":
		acq := &export.SVGAcquirer{Background: server.Background, Opacity: cfg.Opacity}
		if res, err = experiment.Run(ctx, cfg, acq); err != nil {
			return err
		}
		defer res.Close()
		if err := writeFile(outFile, func(f *os.File) error { _, err := acq.Last.WriteTo(f); return err }); err != nil {
			return err
		}

	case ".png":
		if res, err = experiment.Run(ctx, cfg, surface.RasterAcquirer); err != nil {
			return err
		}
		defer res.Close()
		img := export.Flatten(server.Background, rasterLayer(res.Layer, cfg.Opacity))
		if err := writeFile(outFile, func(f *os.File) error { return export.WritePNG(f, img) }); err != nil {
			return err
		}

	case ".gif":
		step := max(every, 1)
		delay := max(100*step/cfg.FPS, 2)
		rec := export.NewGIFRecorder(delay, server.Background, sim.Gold500, sim.Gold300)
		onFrame := func(l *host.Layer, stats sim.FrameStats) {
			if stats.Tick%step == 0 {
				rec.Add(export.Flatten(server.Background, rasterLayer(l, cfg.Opacity)))
			}
		}
		if res, err = experiment.Run(ctx, cfg, surface.RasterAcquirer, experiment.WithOnFrame(onFrame)); err != nil {
			return err
		}
		defer res.Close()
		if err := writeFile(outFile, func(f *os.File) error { return rec.Encode(f) }); err != nil {
			return err
		}
		fmt.Printf("frames: %d\n", rec.Len())

	default:
		return fmt.Errorf("unsupported output format %q (want .png, .svg or .gif)", ext)
	}

	fmt.Printf("wrote %s\n", outFile)
	if saveRun {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(metadata(cfg, res), res.Frames)
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", runID)
	}
	return nil
}

func rasterLayer(l *host.Layer, opacity float64) export.Layer {
	r, ok := l.Surface().Context().(*surface.Raster)
	if !ok {
		return export.Layer{Image: surface.NewRaster(1, 1).Image(), Opacity: 0}
	}
	return export.Layer{Image: r.Image(), Opacity: opacity}
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func serve(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := slog.Default()
	return server.ListenAndServe(ctx, addr, server.New(log).Handler(), log)
}

func bench(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	kind, err := sim.ParseKind(cfg.Variant)
	if err != nil {
		return fmt.Errorf("bench needs a particle variant: %w", err)
	}

	sizes := make([]int, 0, 4)
	for _, s := range splitList(counts) {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return fmt.Errorf("bad count %q", s)
		}
		sizes = append(sizes, n)
	}

	w, h := cfg.Viewport.Width, cfg.Viewport.Height
	fmt.Printf("benchmarking %s field, %d runs x %d ticks\n\n", kind, runs, cfg.Ticks)
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "COUNT\tGRID\tEDGES/TICK\tMEAN SPEED\tTIME\tTICKS/SEC")

	for _, n := range sizes {
		for _, grid := range []bool{false, true} {
			params := cfg.SimParams()
			params.Count = n
			params.GridThreshold = n
			if grid {
				params.GridThreshold = 0
			}

			ens := sim.NewEnsemble(kind, params, runs, cfg.Seed)
			ens.Limit = limit
			ens.Pointer = sim.FixedPointer{X: cfg.Pointer.X, Y: cfg.Pointer.Y, Active: true}
			speedName := metrics.NewMeanSpeed().Name()
			ens.NewMetrics = func() []sim.Metric { return []sim.Metric{metrics.NewMeanSpeed()} }

			start := time.Now()
			results, err := ens.Run(context.Background(), w, h, cfg.Ticks)
			if err != nil {
				return err
			}
			elapsed := time.Since(start)

			var edges, speed float64
			for _, r := range results {
				edges += float64(r.Edges) / float64(max(r.Ticks, 1))
				speed += r.Metrics[speedName]
			}
			k := float64(max(len(results), 1))
			total := float64(runs * cfg.Ticks)

			fmt.Fprintf(tw, "%d\t%v\t%.1f\t%.3f\t%v\t%.0f\n",
				n, grid, edges/k, speed/k, elapsed.Round(time.Millisecond), total/elapsed.Seconds())
		}
	}
	return tw.Flush()
}
