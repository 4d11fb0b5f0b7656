package experiment

import (
	"context"
	"errors"
	"testing"

	"github.com/san-kum/fieldsim/internal/config"
	"github.com/san-kum/fieldsim/internal/host"
	"github.com/san-kum/fieldsim/internal/sim"
	"github.com/san-kum/fieldsim/internal/surface"
)

func TestRunCollectsFrames(t *testing.T) {
	cfg := config.GetPreset("hero")
	cfg.Ticks = 30
	cfg.Seed = 1
	cfg.Pointer.MoveEvery = 2

	res, err := Run(context.Background(), cfg, surface.DiscardAcquirer)
	if err != nil {
		t.Fatal(err)
	}
	defer res.Close()

	if len(res.Frames) != 30 {
		t.Fatalf("expected 30 frames, got %d", len(res.Frames))
	}
	for i, f := range res.Frames {
		if f.Tick != i+1 || f.Discs != cfg.Count {
			t.Fatalf("frame %d = %+v", i, f)
		}
	}
	if res.Metrics["containment"] != 1 {
		t.Errorf("containment = %f", res.Metrics["containment"])
	}
	if res.Metrics["active_ratio"] == 0 {
		t.Error("a moving pointer should register activity")
	}
}

func TestRunIsDeterministic(t *testing.T) {
	run := func() []int {
		cfg := config.GetPreset("cursor")
		cfg.Ticks = 40
		cfg.Seed = 9
		res, err := Run(context.Background(), cfg, surface.DiscardAcquirer)
		if err != nil {
			t.Fatal(err)
		}
		defer res.Close()
		out := make([]int, len(res.Frames))
		for i, f := range res.Frames {
			out[i] = f.Edges
		}
		return out
	}

	a, b := run(), run()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("tick %d: %d edges vs %d", i, a[i], b[i])
		}
	}
}

func TestRunHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := config.GetPreset("hero")
	cfg.Ticks = 100

	n := 0
	res, err := Run(ctx, cfg, surface.DiscardAcquirer, WithOnFrame(func(_ *host.Layer, _ sim.FrameStats) {
		n++
		if n == 5 {
			cancel()
		}
	}))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	defer res.Close()
	if len(res.Frames) != 5 {
		t.Errorf("expected 5 frames before cancel, got %d", len(res.Frames))
	}
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Opacity = 3
	if _, err := Run(context.Background(), cfg, surface.DiscardAcquirer); !errors.Is(err, config.ErrInvalid) {
		t.Errorf("expected config.ErrInvalid, got %v", err)
	}
}

func TestRunContextUnavailable(t *testing.T) {
	_, err := Run(context.Background(), config.DefaultConfig(), &surface.Recorder{Fail: true})
	if !errors.Is(err, surface.ErrContextUnavailable) {
		t.Errorf("expected ErrContextUnavailable, got %v", err)
	}
}

func TestRunTrail(t *testing.T) {
	cfg := config.GetPreset("trail")
	cfg.Ticks = 20
	res, err := Run(context.Background(), cfg, surface.NewRecorder())
	if err != nil {
		t.Fatal(err)
	}
	defer res.Close()
	if last := res.Frames[len(res.Frames)-1]; last.Discs == 0 {
		t.Error("trail should have points after the pointer orbits")
	}
	if len(res.Metrics) != 0 {
		t.Errorf("trail runs collect no particle metrics, got %v", res.Metrics)
	}
}

type poolCounter struct{ ticks, particles int }

func (c *poolCounter) OnTick(_ sim.FrameStats, pool []sim.Particle) {
	c.ticks++
	c.particles += len(pool)
}

func TestRunFeedsObservers(t *testing.T) {
	cfg := config.GetPreset("hero")
	cfg.Ticks = 12
	cfg.Count = 7

	c := &poolCounter{}
	res, err := Run(context.Background(), cfg, surface.DiscardAcquirer, WithObserver(c))
	if err != nil {
		t.Fatal(err)
	}
	defer res.Close()
	if c.ticks != 12 || c.particles != 12*7 {
		t.Errorf("observer saw %d ticks and %d particle rows", c.ticks, c.particles)
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	if _, err := r.GetMetric("nope", 1, 1); err == nil {
		t.Error("expected error for unknown metric")
	}
	ms, err := r.Metrics([]string{"edge_density", "containment"}, 10, 10)
	if err != nil || len(ms) != 2 {
		t.Fatalf("metrics = %v, %v", ms, err)
	}
	if len(r.ListMetrics()) != len(r.DefaultMetrics(1, 1)) {
		t.Error("registry and default set disagree")
	}
}
