package sim

import (
	"context"
	"math/rand"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/fieldsim/internal/surface"
)

// FixedPointer is a Pointer that never moves.
type FixedPointer struct {
	X, Y   float64
	Active bool
}

func (p FixedPointer) Snapshot() (float64, float64, bool) { return p.X, p.Y, p.Active }

// RunResult summarises one ensemble member.
type RunResult struct {
	Seed     int64
	Ticks    int
	Edges    int
	Duration time.Duration
	Metrics  map[string]float64
}

// Ensemble runs independent headless simulators concurrently, each drawing
// into surface.Discard.
type Ensemble struct {
	kind      Kind
	params    Params
	numRuns   int
	seedStart int64

	// Pointer is shared by every member. It must be safe for concurrent reads.
	Pointer Pointer
	// NewMetrics builds a fresh metric set per member.
	NewMetrics func() []Metric
	// Limit caps the number of members running at once; zero means no limit.
	Limit int
}

func NewEnsemble(kind Kind, params Params, numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{kind: kind, params: params, numRuns: numRuns, seedStart: seedStart}
}

// Run advances every member for the given number of ticks at a width x height
// viewport. The first member error cancels the rest.
func (e *Ensemble) Run(ctx context.Context, width, height float64, ticks int) ([]RunResult, error) {
	results := make([]RunResult, e.numRuns)

	g, ctx := errgroup.WithContext(ctx)
	if e.Limit > 0 {
		g.SetLimit(e.Limit)
	}
	for i := 0; i < e.numRuns; i++ {
		i := i
		g.Go(func() error {
			seed := e.seedStart + int64(i)
			res, err := e.runOne(ctx, seed, width, height, ticks)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (e *Ensemble) runOne(ctx context.Context, seed int64, width, height float64, ticks int) (RunResult, error) {
	surf := surface.New(surface.DiscardAcquirer)
	if err := surf.Attach(width, height, 1); err != nil {
		return RunResult{}, err
	}

	opts := []Option{WithParams(e.params), WithRand(rand.New(rand.NewSource(seed)))}
	var metrics []Metric
	if e.NewMetrics != nil {
		metrics = e.NewMetrics()
		for _, m := range metrics {
			opts = append(opts, WithMetric(m))
		}
	}

	s := New(e.kind, surf, e.Pointer, opts...)
	if err := s.Start(); err != nil {
		return RunResult{}, err
	}
	defer s.Stop()

	res := RunResult{Seed: seed, Metrics: make(map[string]float64, len(metrics))}
	start := time.Now()
	for t := 0; t < ticks; t++ {
		if err := ctx.Err(); err != nil {
			return RunResult{}, err
		}
		stats, _ := s.Tick()
		res.Edges += stats.Edges
		res.Ticks++
	}
	res.Duration = time.Since(start)

	for _, m := range metrics {
		res.Metrics[m.Name()] = m.Value()
	}
	return res, nil
}
