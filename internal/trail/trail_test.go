package trail

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/san-kum/fieldsim/internal/pointer"
	"github.com/san-kum/fieldsim/internal/sim"
	"github.com/san-kum/fieldsim/internal/surface"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestTrail(t *testing.T) (*Trail, *pointer.Tracker, *fakeClock, *surface.Recorder) {
	t.Helper()
	clk := &fakeClock{now: time.Unix(1000, 0)}
	rec := surface.NewRecorder()
	surf := surface.New(rec)
	if err := surf.Attach(400, 300, 1); err != nil {
		t.Fatal(err)
	}
	trk := pointer.New(surf, pointer.WithClock(clk.Now))
	tr := New(surf, trk, WithClock(clk.Now))
	if err := tr.Start(); err != nil {
		t.Fatal(err)
	}
	rec.Reset()
	return tr, trk, clk, rec
}

func TestStartRequiresContext(t *testing.T) {
	tr := New(surface.New(surface.NewRecorder()), nil)
	if err := tr.Start(); !errors.Is(err, surface.ErrContextUnavailable) {
		t.Fatalf("expected ErrContextUnavailable, got %v", err)
	}
}

func TestSamplingIsThrottled(t *testing.T) {
	tr, trk, clk, _ := newTestTrail(t)

	for i := 0; i < 3; i++ {
		trk.OnMove(float64(10*i), 10)
		tr.Tick()
		clk.Advance(5 * time.Millisecond)
	}
	if tr.Len() != 1 {
		t.Fatalf("expected 1 point inside the throttle window, got %d", tr.Len())
	}

	clk.Advance(10 * time.Millisecond)
	trk.OnMove(100, 10)
	tr.Tick()
	if tr.Len() != 2 {
		t.Errorf("expected 2 points after the window, got %d", tr.Len())
	}

	tr.Tick()
	if tr.Len() != 2 {
		t.Errorf("tick without a move should not sample, got %d points", tr.Len())
	}
}

func TestCapacity(t *testing.T) {
	tr, trk, clk, _ := newTestTrail(t)
	for i := 0; i < 150; i++ {
		trk.OnMove(float64(i), float64(i))
		tr.Tick()
		clk.Advance(20 * time.Millisecond)
		if tr.Len() > Capacity {
			t.Fatalf("trail grew to %d points", tr.Len())
		}
	}
	if tr.Len() != Capacity {
		t.Errorf("expected a full trail, got %d", tr.Len())
	}
}

func TestPointsAgeOut(t *testing.T) {
	tr, trk, _, _ := newTestTrail(t)
	trk.OnMove(50, 50)

	ticks := int(MaxAge / AgeStep)
	for i := 0; i < ticks-1; i++ {
		tr.Tick()
	}
	if tr.Len() != 1 {
		t.Fatalf("point removed early, age %v", tr.Points())
	}
	tr.Tick()
	if tr.Len() != 0 {
		t.Errorf("point should be removed at age %v", MaxAge)
	}
}

func TestRender(t *testing.T) {
	tr, trk, clk, rec := newTestTrail(t)
	for i := 0; i < 3; i++ {
		trk.OnMove(float64(100+40*i), 100)
		clk.Advance(20 * time.Millisecond)
		rec.Reset()
		tr.Tick()
	}

	stats := sim.FrameStats{}
	for _, op := range rec.Ops() {
		switch op.Kind {
		case surface.OpStroke:
			stats.Edges++
			if !op.Gradient {
				t.Error("segment should be stroked with a gradient")
			}
			if op.LineWidth <= 0.5 || op.LineWidth > 2.5 {
				t.Errorf("segment width %f", op.LineWidth)
			}
		case surface.OpFill:
			stats.Discs++
		}
		if op.Kind != surface.OpClearRect && op.ShadowBlur != ShadowBlur {
			t.Errorf("%v drawn with shadow blur %f", op.Kind, op.ShadowBlur)
		}
	}
	if stats.Edges != 2 || stats.Discs != 3 {
		t.Errorf("expected 2 segments and 3 glows, got %+v", stats)
	}

	pts := tr.Points()
	for i := 1; i < len(pts); i++ {
		if pts[i].DX >= 0 {
			t.Errorf("point %d should be pulled back toward its predecessor, dx=%f", i, pts[i].DX)
		}
	}
}

func TestSegmentGradient(t *testing.T) {
	rec := surface.NewRecorder()
	p := &Point{X: 0, Y: 0, Age: 20}
	prev := &Point{X: 10, Y: 0}
	segment(rec, p, prev, 10, 0)

	op := rec.Ops()[0]
	if math.Abs(op.LineWidth-2.1) > 1e-9 {
		t.Errorf("line width = %f, want 2.1", op.LineWidth)
	}
	cmd := op.Path[1]
	if cmd.Verb != 'C' {
		t.Fatalf("expected a cubic, got %c", cmd.Verb)
	}
	want := []float64{1.5, 0, 8.5, 0, 10, 0}
	for i := range want {
		if math.Abs(cmd.Args[i]-want[i]) > 1e-9 {
			t.Errorf("control args = %v, want %v", cmd.Args, want)
			break
		}
	}
}

func TestStopped(t *testing.T) {
	tr, trk, _, rec := newTestTrail(t)
	trk.OnMove(10, 10)
	tr.Stop()
	if _, ok := tr.Tick(); ok {
		t.Error("stopped trail ticked")
	}
	if len(rec.Ops()) != 0 {
		t.Error("stopped trail drew")
	}
	if err := tr.Resize(10, 10, 1); !errors.Is(err, sim.ErrStopped) {
		t.Errorf("expected ErrStopped, got %v", err)
	}
}
