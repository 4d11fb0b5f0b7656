package sim

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/san-kum/fieldsim/internal/surface"
)

type constRand float64

func (r constRand) Float64() float64 { return float64(r) }

func newTestSim(t *testing.T, kind Kind, n int, w, h float64, ptr Pointer, opts ...Option) (*Simulator, *surface.Recorder) {
	t.Helper()
	rec := surface.NewRecorder()
	surf := surface.New(rec)
	if err := surf.Attach(w, h, 1); err != nil {
		t.Fatalf("attach failed: %v", err)
	}
	p := DefaultParams()
	p.Count = n
	all := append([]Option{WithParams(p), WithRand(constRand(0.5))}, opts...)
	s := New(kind, surf, ptr, all...)
	if err := s.Start(); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	rec.Reset()
	return s, rec
}

func TestStartRequiresContext(t *testing.T) {
	s := New(Background, surface.New(surface.NewRecorder()), nil)
	err := s.Start()
	if !errors.Is(err, surface.ErrContextUnavailable) {
		t.Fatalf("expected ErrContextUnavailable, got %v", err)
	}
	if s.State() != Unstarted {
		t.Errorf("state = %v, want unstarted", s.State())
	}
}

func TestStopIsTerminal(t *testing.T) {
	s, rec := newTestSim(t, Background, 5, 100, 100, nil)
	s.Stop()

	if _, ok := s.Tick(); ok {
		t.Error("tick after stop should abort")
	}
	if len(rec.Ops()) != 0 {
		t.Errorf("stopped simulator drew %d ops", len(rec.Ops()))
	}
	if err := s.Start(); !errors.Is(err, ErrStopped) {
		t.Errorf("restart: expected ErrStopped, got %v", err)
	}
	if err := s.Resize(10, 10, 1); !errors.Is(err, ErrStopped) {
		t.Errorf("resize: expected ErrStopped, got %v", err)
	}
}

func TestSeedRanges(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	surf := surface.New(surface.NewRecorder())
	if err := surf.Attach(640, 480, 1); err != nil {
		t.Fatal(err)
	}

	bg := New(Background, surf, nil, WithRand(rng))
	if err := bg.Start(); err != nil {
		t.Fatal(err)
	}
	if bg.Len() != DefaultCount {
		t.Fatalf("pool size = %d, want %d", bg.Len(), DefaultCount)
	}
	for i, p := range bg.Particles() {
		if p.X < 0 || p.X >= 640 || p.Y < 0 || p.Y >= 480 {
			t.Errorf("particle %d outside bounds: (%f, %f)", i, p.X, p.Y)
		}
		if p.Size < 1 || p.Size >= 3 {
			t.Errorf("particle %d size %f outside [1,3)", i, p.Size)
		}
		if math.Abs(p.VX) > 0.25 || math.Abs(p.VY) > 0.25 {
			t.Errorf("particle %d velocity (%f, %f) exceeds 0.25", i, p.VX, p.VY)
		}
		if p.Opacity < 0.2 || p.Opacity >= 0.7 {
			t.Errorf("particle %d opacity %f outside [0.2,0.7)", i, p.Opacity)
		}
		if p.Color != Gold500 && p.Color != Gold300 {
			t.Errorf("particle %d colour %v not in palette", i, p.Color)
		}
	}

	mf := New(MouseFollow, surf, nil, WithRand(rng))
	if err := mf.Start(); err != nil {
		t.Fatal(err)
	}
	for i, p := range mf.Particles() {
		if p.VX != 0 || p.VY != 0 {
			t.Errorf("particle %d should start at rest", i)
		}
		if p.Color.R != 250 || p.Color.G != 189 || p.Color.B != 0 {
			t.Errorf("particle %d hue %v", i, p.Color)
		}
		if p.Color.A < 51 || p.Color.A > 179 {
			t.Errorf("particle %d alpha %d outside [0.2,0.7)", i, p.Color.A)
		}
	}
}

func TestPoolSizeInvariant(t *testing.T) {
	s, _ := newTestSim(t, MouseFollow, 50, 800, 600, FixedPointer{X: 400, Y: 300})

	for i := 0; i < 20; i++ {
		s.Tick()
	}
	sizes := [][2]float64{{1024, 768}, {320, 200}, {800, 600}}
	for _, sz := range sizes {
		if err := s.Resize(sz[0], sz[1], 2); err != nil {
			t.Fatal(err)
		}
		if s.Len() != 50 {
			t.Fatalf("pool size changed to %d after resize to %v", s.Len(), sz)
		}
		for i := 0; i < 5; i++ {
			s.Tick()
		}
	}
	if s.State() != Running {
		t.Errorf("resize should keep the simulator running, got %v", s.State())
	}
}

func TestLoadRejectsSizeMismatch(t *testing.T) {
	s, _ := newTestSim(t, Background, 3, 100, 100, nil)
	if err := s.Load(make([]Particle, 2)); !errors.Is(err, ErrPoolSize) {
		t.Errorf("expected ErrPoolSize, got %v", err)
	}
}

func TestBackgroundVelocityIsConstant(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	s, _ := newTestSim(t, Background, 50, 300, 200, FixedPointer{X: 150, Y: 100, Active: true}, WithRand(rng))

	before := s.Particles()
	for i := 0; i < 200; i++ {
		s.Tick()
	}
	for i, p := range s.Particles() {
		if p.VX != before[i].VX || p.VY != before[i].VY {
			t.Fatalf("particle %d velocity changed", i)
		}
	}
}

func TestPositionsStayInBounds(t *testing.T) {
	tests := []struct {
		name string
		kind Kind
		ptr  Pointer
	}{
		{"background idle", Background, nil},
		{"background repelled", Background, FixedPointer{X: 60, Y: 40, Active: true}},
		{"mouse", MouseFollow, FixedPointer{X: 60, Y: 40}},
		{"mouse off-surface", MouseFollow, FixedPointer{X: -500, Y: 9000}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rng := rand.New(rand.NewSource(3))
			s, _ := newTestSim(t, tt.kind, 50, 120, 80, tt.ptr, WithRand(rng))
			for tick := 0; tick < 500; tick++ {
				s.Tick()
				for i, p := range s.Particles() {
					if p.X < 0 || p.X > 120 || p.Y < 0 || p.Y > 80 {
						t.Fatalf("tick %d: particle %d at (%f, %f)", tick, i, p.X, p.Y)
					}
				}
			}
		})
	}
}

// Per tick the pull adds at most d(200-d)/10000 <= 1 per axis and jitter at
// most 0.05, so damping caps each component at 0.95*1.05/0.05.
func TestMouseSpeedBounded(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	s, _ := newTestSim(t, MouseFollow, 50, 1000, 1000, FixedPointer{X: 500, Y: 500}, WithRand(rng))
	for tick := 0; tick < 1000; tick++ {
		s.Tick()
		for i, p := range s.Particles() {
			if math.Abs(p.VX) > 19.95 || math.Abs(p.VY) > 19.95 {
				t.Fatalf("tick %d: particle %d velocity (%f, %f)", tick, i, p.VX, p.VY)
			}
		}
	}
}

func TestMouseSpeedDecaysOutsideRadius(t *testing.T) {
	s, _ := newTestSim(t, MouseFollow, 1, 2000, 2000, FixedPointer{X: 1900, Y: 1900})
	if err := s.Load([]Particle{{X: 100, Y: 100, Size: 2, VX: 3, VY: -4, Color: Gold500}}); err != nil {
		t.Fatal(err)
	}

	prev := 5.0
	for i := 0; i < 30; i++ {
		s.Tick()
		p := s.Particles()[0]
		speed := math.Hypot(p.VX, p.VY)
		if math.Abs(speed-prev*0.95) > 1e-9 {
			t.Fatalf("tick %d: speed %f, want %f", i, speed, prev*0.95)
		}
		prev = speed
	}
}

func TestPointerAtParticle(t *testing.T) {
	t.Run("repulsion skips zero distance", func(t *testing.T) {
		s, _ := newTestSim(t, Background, 1, 100, 100, FixedPointer{X: 40, Y: 40, Active: true})
		if err := s.Load([]Particle{{X: 40, Y: 40, Size: 1, Color: Gold500}}); err != nil {
			t.Fatal(err)
		}
		s.Tick()
		if p := s.Particles()[0]; p.X != 40 || p.Y != 40 {
			t.Errorf("particle moved to (%f, %f)", p.X, p.Y)
		}
	})
	t.Run("attraction is zero at the pointer", func(t *testing.T) {
		s, _ := newTestSim(t, MouseFollow, 1, 100, 100, FixedPointer{X: 40, Y: 40})
		if err := s.Load([]Particle{{X: 40, Y: 40, Size: 1, Color: Gold500}}); err != nil {
			t.Fatal(err)
		}
		s.Tick()
		p := s.Particles()[0]
		if p.VX != 0 || p.VY != 0 || p.X != 40 || p.Y != 40 {
			t.Errorf("particle changed: %+v", p)
		}
	})
}

func TestInactivePointerDoesNotRepel(t *testing.T) {
	s, _ := newTestSim(t, Background, 1, 200, 200, FixedPointer{X: 110, Y: 100})
	if err := s.Load([]Particle{{X: 100, Y: 100, Size: 1, Color: Gold500}}); err != nil {
		t.Fatal(err)
	}
	s.Tick()
	if p := s.Particles()[0]; p.X != 100 {
		t.Errorf("inactive pointer moved particle to x=%f", p.X)
	}
}

func TestDrawCallsMatchLinkedPairs(t *testing.T) {
	for _, kind := range []Kind{Background, MouseFollow} {
		t.Run(kind.String(), func(t *testing.T) {
			rng := rand.New(rand.NewSource(5))
			s, rec := newTestSim(t, kind, 50, 400, 300, nil, WithRand(rng))

			for tick := 0; tick < 10; tick++ {
				rec.Reset()
				stats, ok := s.Tick()
				if !ok {
					t.Fatal("tick aborted")
				}

				ps := s.Particles()
				want := 0
				for i := range ps {
					for j := range ps {
						if i != j && math.Hypot(ps[i].X-ps[j].X, ps[i].Y-ps[j].Y) < 100 {
							want++
						}
					}
				}
				if stats.Edges != want {
					t.Errorf("tick %d: edges = %d, want %d", tick, stats.Edges, want)
				}
				if stats.Discs != 50 {
					t.Errorf("tick %d: discs = %d", tick, stats.Discs)
				}
				if rec.Count(surface.OpFill) != stats.Discs || rec.Count(surface.OpStroke) != stats.Edges {
					t.Errorf("tick %d: recorded %d fills, %d strokes", tick, rec.Count(surface.OpFill), rec.Count(surface.OpStroke))
				}
				if ops := rec.Ops(); len(ops) == 0 || ops[0].Kind != surface.OpClearRect {
					t.Errorf("tick %d: frame does not begin with a clear", tick)
				}
				if rec.Count(surface.OpClearRect) != 1 {
					t.Errorf("tick %d: %d clears", tick, rec.Count(surface.OpClearRect))
				}
			}
		})
	}
}

func TestEdgeAlpha(t *testing.T) {
	t.Run("background", func(t *testing.T) {
		s, rec := newTestSim(t, Background, 2, 200, 200, nil)
		if err := s.Load([]Particle{
			{X: 10, Y: 10, Size: 1, Opacity: 0.4, Color: Gold500},
			{X: 50, Y: 10, Size: 1, Opacity: 0.6, Color: Gold300},
		}); err != nil {
			t.Fatal(err)
		}
		s.Tick()
		strokes := 0
		for _, op := range rec.Ops() {
			switch op.Kind {
			case surface.OpStroke:
				strokes++
				if math.Abs(op.GlobalAlpha-0.06) > 1e-9 {
					t.Errorf("edge alpha = %f, want 0.06", op.GlobalAlpha)
				}
				if op.LineWidth != 0.5 {
					t.Errorf("line width = %f", op.LineWidth)
				}
			case surface.OpFill:
				if op.GlobalAlpha != 0.4 && op.GlobalAlpha != 0.6 {
					t.Errorf("disc alpha = %f", op.GlobalAlpha)
				}
			}
		}
		if strokes != 2 {
			t.Errorf("expected the pair to be stroked twice, got %d", strokes)
		}
	})

	t.Run("mouse", func(t *testing.T) {
		s, rec := newTestSim(t, MouseFollow, 2, 2000, 2000, FixedPointer{X: 1900, Y: 1900}, WithParams(func() Params {
			p := DefaultParams()
			p.Count = 2
			p.Jitter = 0
			return p
		}()))
		if err := s.Load([]Particle{
			{X: 10, Y: 10, Size: 1, Color: Gold500},
			{X: 60, Y: 10, Size: 1, Color: Gold500},
		}); err != nil {
			t.Fatal(err)
		}
		s.Tick()
		for _, op := range rec.Ops() {
			if op.Kind != surface.OpStroke {
				continue
			}
			_, _, _, a := op.Color.RGBA()
			if want := uint32(alpha8(0.1)) * 0x101; a != want {
				t.Errorf("edge alpha = %d, want %d", a, want)
			}
			if op.GlobalAlpha != 1 {
				t.Errorf("mouse edges should not use global alpha, got %f", op.GlobalAlpha)
			}
		}
	})
}

func TestGlowDoesNotLeakToEdges(t *testing.T) {
	s, rec := newTestSim(t, MouseFollow, 2, 200, 200, nil)
	if err := s.Load([]Particle{
		{X: 10, Y: 10, Size: 2, Color: Gold500},
		{X: 20, Y: 10, Size: 2, Color: Gold500},
	}); err != nil {
		t.Fatal(err)
	}
	s.Tick()

	for _, op := range rec.Ops() {
		switch op.Kind {
		case surface.OpFill:
			if op.ShadowBlur != 15 {
				t.Errorf("disc shadow blur = %f, want 15", op.ShadowBlur)
			}
		case surface.OpStroke:
			if op.ShadowBlur != 0 {
				t.Errorf("shadow leaked into edge: blur %f", op.ShadowBlur)
			}
		}
	}
}

func TestEmptyPool(t *testing.T) {
	s, rec := newTestSim(t, Background, 0, 100, 100, FixedPointer{Active: true})
	for i := 0; i < 10; i++ {
		rec.Reset()
		stats, ok := s.Tick()
		if !ok || stats.DrawCalls() != 0 {
			t.Fatalf("tick %d: ok=%v stats=%+v", i, ok, stats)
		}
		if len(rec.Ops()) != 1 {
			t.Fatalf("tick %d: expected only the clear, got %d ops", i, len(rec.Ops()))
		}
	}
}

func TestZeroSizedSurface(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	s, _ := newTestSim(t, MouseFollow, 10, 0, 0, nil, WithRand(rng))
	for i := 0; i < 20; i++ {
		if _, ok := s.Tick(); !ok {
			t.Fatal("tick aborted on zero-sized surface")
		}
	}
	for _, p := range s.Particles() {
		if p.X != 0 || p.Y != 0 {
			t.Errorf("particle escaped zero-sized surface: (%f, %f)", p.X, p.Y)
		}
	}
}

func TestGridMatchesBruteForce(t *testing.T) {
	for _, kind := range []Kind{Background, MouseFollow} {
		t.Run(kind.String(), func(t *testing.T) {
			run := func(threshold int) []FrameStats {
				p := DefaultParams()
				p.Count = 400
				p.GridThreshold = threshold
				surf := surface.New(surface.DiscardAcquirer)
				if err := surf.Attach(900, 700, 1); err != nil {
					t.Fatal(err)
				}
				s := New(kind, surf, FixedPointer{X: 450, Y: 350, Active: true},
					WithParams(p), WithRand(rand.New(rand.NewSource(99))))
				if err := s.Start(); err != nil {
					t.Fatal(err)
				}
				out := make([]FrameStats, 0, 20)
				for i := 0; i < 20; i++ {
					st, _ := s.Tick()
					out = append(out, st)
				}
				return out
			}

			brute := run(1 << 20)
			grid := run(0)
			for i := range brute {
				if brute[i] != grid[i] {
					t.Fatalf("tick %d: brute %+v, grid %+v", i, brute[i], grid[i])
				}
			}
		})
	}
}

func TestTickDoesNotAllocate(t *testing.T) {
	for _, kind := range []Kind{Background, MouseFollow} {
		t.Run(kind.String(), func(t *testing.T) {
			surf := surface.New(surface.DiscardAcquirer)
			if err := surf.Attach(800, 600, 2); err != nil {
				t.Fatal(err)
			}
			s := New(kind, surf, FixedPointer{X: 400, Y: 300, Active: true},
				WithRand(rand.New(rand.NewSource(1))))
			if err := s.Start(); err != nil {
				t.Fatal(err)
			}
			allocs := testing.AllocsPerRun(100, func() { s.Tick() })
			if allocs != 0 {
				t.Errorf("tick allocated %.1f times", allocs)
			}
		})
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
		err  bool
	}{
		{"background", Background, false},
		{"bg", Background, false},
		{"mouse", MouseFollow, false},
		{"mouse-following", MouseFollow, false},
		{"trail", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseKind(tt.in)
		if (err != nil) != tt.err {
			t.Errorf("ParseKind(%q) error = %v", tt.in, err)
			continue
		}
		if !tt.err && got != tt.want {
			t.Errorf("ParseKind(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParamsValidate(t *testing.T) {
	if err := DefaultParams().Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
	p := DefaultParams()
	p.Count = -1
	p.Damping = 1.5
	err := p.Validate()
	if !errors.Is(err, ErrInvalidParams) {
		t.Fatalf("expected ErrInvalidParams, got %v", err)
	}
}

type tickLog struct {
	ticks []int
	sizes []int
	x0    []float64
}

func (l *tickLog) OnTick(stats FrameStats, pool []Particle) {
	l.ticks = append(l.ticks, stats.Tick)
	l.sizes = append(l.sizes, len(pool))
	l.x0 = append(l.x0, pool[0].X)
}

func TestObserverSeesEveryTick(t *testing.T) {
	log := &tickLog{}
	s, _ := newTestSim(t, Background, 3, 100, 100, nil, WithObserver(log))
	for i := 0; i < 4; i++ {
		s.Tick()
	}

	if len(log.ticks) != 4 || log.ticks[0] != 1 || log.ticks[3] != 4 {
		t.Fatalf("observed ticks %v", log.ticks)
	}
	for i, n := range log.sizes {
		if n != 3 {
			t.Errorf("tick %d: pool of %d", i+1, n)
		}
	}
	if log.x0[3] != s.Particles()[0].X {
		t.Errorf("observer saw x=%v after the last tick, pool has %v", log.x0[3], s.Particles()[0].X)
	}

	s.Stop()
	s.Tick()
	if len(log.ticks) != 4 {
		t.Error("observer ran after stop")
	}
}
