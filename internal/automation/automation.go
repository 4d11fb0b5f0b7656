package automation

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/fieldsim/internal/config"
	"github.com/san-kum/fieldsim/internal/experiment"
	"github.com/san-kum/fieldsim/internal/storage"
	"github.com/san-kum/fieldsim/internal/surface"
)

// Scenario is a scripted sequence of headless runs.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep starts from Preset (or the defaults), overrides the named
// tunables and runs for Ticks frames. A step with SaveAs set is stored.
type ScenarioStep struct {
	Preset  string             `yaml:"preset"`
	Variant string             `yaml:"variant"`
	Ticks   int                `yaml:"ticks"`
	Seed    int64              `yaml:"seed"`
	Params  map[string]float64 `yaml:"params"`
	Metrics []string           `yaml:"metrics"`
	SaveAs  string             `yaml:"save_as"`
}

// StepResult is what one scenario step produced. RunID is empty unless the
// step was stored.
type StepResult struct {
	Step    int
	Label   string
	RunID   string
	Frames  int
	Metrics map[string]float64
}

// Progress is called before each unit of work with a 1-based index.
type Progress func(i, total int, label string)

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", scenario.Name)
	}

	return &scenario, nil
}

// Config builds the step's run configuration.
func (s ScenarioStep) Config() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if s.Preset != "" {
		if cfg = config.GetPreset(s.Preset); cfg == nil {
			return nil, fmt.Errorf("%w: %s", config.ErrUnknownPreset, s.Preset)
		}
	}
	if s.Variant != "" {
		cfg.Variant = s.Variant
	}
	if s.Ticks > 0 {
		cfg.Ticks = s.Ticks
	}
	if s.Seed != 0 {
		cfg.Seed = s.Seed
	}
	for k, v := range s.Params {
		if err := cfg.SetParam(k, v); err != nil {
			return nil, err
		}
	}
	return cfg, cfg.Validate()
}

func (s ScenarioStep) label() string {
	switch {
	case s.SaveAs != "":
		return s.SaveAs
	case s.Preset != "":
		return s.Preset
	case s.Variant != "":
		return s.Variant
	}
	return config.DefaultVariant
}

// RunScenario executes all steps in order. st may be nil, in which case
// nothing is stored. Results of completed steps are returned with any error.
func RunScenario(ctx context.Context, scenario *Scenario, st *storage.Store, progress Progress) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		if progress != nil {
			progress(i+1, len(scenario.Steps), step.label())
		}

		cfg, err := step.Config()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		res, err := experiment.Run(ctx, cfg, surface.DiscardAcquirer, experiment.WithMetrics(step.Metrics...))
		if res != nil {
			res.Close()
		}
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		out := StepResult{Step: i + 1, Label: step.label(), Frames: len(res.Frames), Metrics: res.Metrics}
		if st != nil && step.SaveAs != "" {
			out.RunID, err = st.Save(storage.RunMetadata{
				Preset:  step.SaveAs,
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
			}, res.Frames)
			if err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
		}

		results = append(results, out)
	}

	return results, nil
}

// ParameterSweep runs the same configuration across evenly spaced values of
// one tunable.
type ParameterSweep struct {
	Base      *config.Config
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
}

// SweepResult holds one sweep point.
type SweepResult struct {
	ParamValue float64
	MeanEdges  float64
	PeakEdges  int
	Metrics    map[string]float64
}

// RunSweep executes a parameter sweep
func RunSweep(ctx context.Context, sweep *ParameterSweep, progress Progress) ([]SweepResult, error) {
	if sweep.NumSteps < 1 {
		return nil, fmt.Errorf("sweep needs at least one step, got %d", sweep.NumSteps)
	}
	results := make([]SweepResult, 0, sweep.NumSteps)

	paramStep := 0.0
	if sweep.NumSteps > 1 {
		paramStep = (sweep.ParamMax - sweep.ParamMin) / float64(sweep.NumSteps-1)
	}

	for i := 0; i < sweep.NumSteps; i++ {
		paramVal := sweep.ParamMin + float64(i)*paramStep
		if progress != nil {
			progress(i+1, sweep.NumSteps, fmt.Sprintf("%s=%.4f", sweep.ParamName, paramVal))
		}

		cfg := sweep.Base.Clone()
		if err := cfg.SetParam(sweep.ParamName, paramVal); err != nil {
			return nil, err
		}

		res, err := experiment.Run(ctx, cfg, surface.DiscardAcquirer)
		if res != nil {
			res.Close()
		}
		if err != nil {
			return results, err
		}

		var sum float64
		peak := 0
		for _, f := range res.Frames {
			sum += float64(f.Edges)
			peak = max(peak, f.Edges)
		}
		mean := 0.0
		if len(res.Frames) > 0 {
			mean = sum / float64(len(res.Frames))
		}

		results = append(results, SweepResult{
			ParamValue: paramVal,
			MeanEdges:  mean,
			PeakEdges:  peak,
			Metrics:    res.Metrics,
		})
	}

	return results, nil
}

// MonteCarloConfig repeats one configuration over consecutive seeds.
type MonteCarloConfig struct {
	Base      *config.Config
	NumTrials int
	Seed      int64
}

// MonteCarloResult records whether a trial kept every particle inside the
// viewport on every tick.
type MonteCarloResult struct {
	TrialID     int
	Seed        int64
	Containment float64
	Stable      bool
}

// RunMonteCarlo executes multiple trials with different seeds
func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig, progress Progress) ([]MonteCarloResult, error) {
	results := make([]MonteCarloResult, 0, cfg.NumTrials)

	for trial := 0; trial < cfg.NumTrials; trial++ {
		if progress != nil {
			progress(trial+1, cfg.NumTrials, "trial")
		}

		run := cfg.Base.Clone()
		run.Seed = cfg.Seed + int64(trial)

		res, err := experiment.Run(ctx, run, surface.DiscardAcquirer, experiment.WithMetrics("containment"))
		if res != nil {
			res.Close()
		}
		if err != nil {
			return results, err
		}

		c := res.Metrics["containment"]
		results = append(results, MonteCarloResult{
			TrialID:     trial,
			Seed:        run.Seed,
			Containment: c,
			Stable:      c == 1,
		})
	}

	return results, nil
}

// MonteCarloStats computes summary statistics from Monte Carlo results
func MonteCarloStats(results []MonteCarloResult) (stableCount int, unstableCount int) {
	for _, r := range results {
		if r.Stable {
			stableCount++
		} else {
			unstableCount++
		}
	}
	return
}
