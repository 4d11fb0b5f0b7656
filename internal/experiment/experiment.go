package experiment

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/san-kum/fieldsim/internal/config"
	"github.com/san-kum/fieldsim/internal/host"
	"github.com/san-kum/fieldsim/internal/sim"
	"github.com/san-kum/fieldsim/internal/surface"
)

// OrbitStep is the angle, in radians, the synthetic pointer advances per move.
const OrbitStep = 0.05

type Result struct {
	Frames  []sim.FrameStats
	Metrics map[string]float64

	// Layer stays mounted so callers can read its surface. Close unmounts it.
	Layer *host.Layer
	Loop  *host.Loop
}

func (r *Result) Close() {
	if r.Layer != nil {
		r.Layer.Unmount()
	}
}

type runConfig struct {
	metricNames []string
	onFrame     func(*host.Layer, sim.FrameStats)
	observers   []sim.Observer
	ticks       int
}

type Option func(*runConfig)

// WithMetrics selects metrics by registry name.
func WithMetrics(names ...string) Option {
	return func(c *runConfig) { c.metricNames = names }
}

// WithOnFrame runs fn after every frame, e.g. to capture GIF frames.
func WithOnFrame(fn func(*host.Layer, sim.FrameStats)) Option {
	return func(c *runConfig) { c.onFrame = fn }
}

// WithObserver attaches o to the layer's simulator. The trail variant has no
// particle pool and never calls it.
func WithObserver(o sim.Observer) Option {
	return func(c *runConfig) { c.observers = append(c.observers, o) }
}

// WithTicks overrides cfg.Ticks.
func WithTicks(n int) Option {
	return func(c *runConfig) { c.ticks = n }
}

// Run mounts the configured layer on a headless loop and advances it tick by
// tick, moving a synthetic pointer along an orbit every Pointer.MoveEvery
// ticks. Cancellation is checked between ticks; the partial result is
// returned with the context error.
func Run(ctx context.Context, cfg *config.Config, acq surface.Acquirer, opts ...Option) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	rc := runConfig{ticks: cfg.Ticks}
	for _, opt := range opts {
		opt(&rc)
	}

	variant, err := cfg.HostVariant()
	if err != nil {
		return nil, err
	}
	vp := cfg.HostViewport()

	metrics, err := NewRegistry().Metrics(rc.metricNames, vp.Width, vp.Height)
	if err != nil {
		return nil, err
	}

	loop := host.NewLoop(vp, acq, host.WithFrameInterval(cfg.FrameInterval()))
	res := &Result{
		Frames:  make([]sim.FrameStats, 0, rc.ticks),
		Metrics: make(map[string]float64),
		Loop:    loop,
	}

	simOpts := []sim.Option{
		sim.WithParams(cfg.SimParams()),
		sim.WithRand(rand.New(rand.NewSource(cfg.Seed))),
	}
	for _, m := range metrics {
		simOpts = append(simOpts, sim.WithMetric(m))
	}
	for _, o := range rc.observers {
		simOpts = append(simOpts, sim.WithObserver(o))
	}

	layer, err := host.Mount(loop, variant, cfg.Opacity,
		host.WithSimOptions(simOpts...),
		host.WithActiveWindow(cfg.Physics.ActiveWindow),
		host.WithOnFrame(func(l *host.Layer, stats sim.FrameStats) {
			res.Frames = append(res.Frames, stats)
			if rc.onFrame != nil {
				rc.onFrame(l, stats)
			}
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("experiment: %w", err)
	}
	res.Layer = layer

	for i := 0; i < rc.ticks; i++ {
		if err := ctx.Err(); err != nil {
			collect(res, layer, metrics)
			return res, err
		}
		if every := cfg.Pointer.MoveEvery; every > 0 && i%every == 0 {
			x, y := OrbitAt(cfg.Pointer, i)
			loop.Move(x, y)
		}
		loop.Advance()
	}

	collect(res, layer, metrics)
	return res, nil
}

// OrbitAt is the synthetic pointer position at tick i.
func OrbitAt(p config.PointerConfig, i int) (float64, float64) {
	theta := float64(i) * OrbitStep
	return p.X + p.Orbit*math.Cos(theta), p.Y + p.Orbit*math.Sin(theta)
}

func collect(res *Result, layer *host.Layer, metrics []sim.Metric) {
	if layer.Simulator() == nil {
		return
	}
	for _, m := range metrics {
		res.Metrics[m.Name()] = m.Value()
	}
}
