package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/fieldsim/internal/automation"
	"github.com/san-kum/fieldsim/internal/config"
	"github.com/san-kum/fieldsim/internal/optim"
	"github.com/san-kum/fieldsim/internal/storage"
)

func printProgress(i, total int, label string) {
	fmt.Printf("[%d/%d] %s\n", i, total, label)
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("scenario: %s\n", sc.Name)
	if sc.Description != "" {
		fmt.Printf("  %s\n", sc.Description)
	}
	results, err := automation.RunScenario(ctx, sc, st, printProgress)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\nSTEP\tLABEL\tFRAMES\tRUN ID")
	for _, r := range results {
		fmt.Fprintf(w, "%d\t%s\t%d\t%s\n", r.Step, r.Label, r.Frames, r.RunID)
	}
	if ferr := w.Flush(); err == nil {
		err = ferr
	}
	return err
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if monteTrials > 0 {
		results, err := automation.RunMonteCarlo(ctx, &automation.MonteCarloConfig{
			Base:      cfg,
			NumTrials: monteTrials,
			Seed:      cfg.Seed,
		}, nil)
		if err != nil {
			return err
		}
		stable, unstable := automation.MonteCarloStats(results)
		fmt.Printf("%s: %d contained, %d escaped over %d seeds\n", cfg.Variant, stable, unstable, len(results))
		return nil
	}

	results, err := automation.RunSweep(ctx, &automation.ParameterSweep{
		Base:      cfg,
		ParamName: paramName,
		ParamMin:  paramMin,
		ParamMax:  paramMax,
		NumSteps:  steps,
	}, printProgress)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "\n%s\tMEAN EDGES\tPEAK EDGES\tMEAN SPEED\n", strings.ToUpper(paramName))
	for _, r := range results {
		fmt.Fprintf(w, "%.4f\t%.1f\t%d\t%.3f\n", r.ParamValue, r.MeanEdges, r.PeakEdges, r.Metrics["mean_speed"])
	}
	return w.Flush()
}

func runTune(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	names, ranges, err := parseGrid(searchSpec)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("searching %v for %s = %g\n", names, searchBy, searchGoal)
	best, score, err := optim.NewGridSearch(names, ranges).Search(ctx, cfg, searchBy, searchGoal)
	if err != nil {
		return err
	}

	fmt.Printf("best (|error| %.6f):\n", score)
	for _, name := range names {
		fmt.Printf("  %s: %g\n", name, best[name])
	}
	return nil
}

// parseGrid reads "name=min:max:n,..." into parallel name and value lists.
func parseGrid(spec string) ([]string, [][]float64, error) {
	var names []string
	var ranges [][]float64
	for _, item := range splitList(spec) {
		name, rng, ok := strings.Cut(item, "=")
		if !ok {
			return nil, nil, fmt.Errorf("bad grid entry %q: want name=min:max:n", item)
		}
		parts := strings.Split(rng, ":")
		if len(parts) != 3 {
			return nil, nil, fmt.Errorf("bad range %q: want min:max:n", rng)
		}
		lo, err1 := strconv.ParseFloat(parts[0], 64)
		hi, err2 := strconv.ParseFloat(parts[1], 64)
		n, err3 := strconv.Atoi(parts[2])
		if err1 != nil || err2 != nil || err3 != nil || n < 1 {
			return nil, nil, fmt.Errorf("bad range %q", rng)
		}
		if !isTunable(name) {
			return nil, nil, fmt.Errorf("%w: unknown parameter %q (tunable: %v)", config.ErrInvalid, name, config.TunableParams())
		}
		names = append(names, name)
		ranges = append(ranges, optim.Linspace(lo, hi, n))
	}
	if len(names) == 0 {
		return nil, nil, fmt.Errorf("empty grid")
	}
	return names, ranges, nil
}

func isTunable(name string) bool {
	for _, n := range config.TunableParams() {
		if n == name {
			return true
		}
	}
	return false
}
