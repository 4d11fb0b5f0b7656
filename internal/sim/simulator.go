package sim

import (
	"fmt"
	"image/color"
	"math/rand"
	"time"

	"github.com/san-kum/fieldsim/internal/surface"
)

// Simulator owns a particle pool and advances it once per tick against the
// pointer, drawing the result onto its surface.
type Simulator struct {
	kind   Kind
	surf   *surface.Surface
	ptr    Pointer
	rng    Rand
	params Params

	pool  *Pool
	grid  *grid
	state State
	tick  int

	glow       color.Color
	linkPaints [256]color.Color

	metrics   []Metric
	observers []Observer
}

type Option func(*Simulator)

func WithRand(r Rand) Option { return func(s *Simulator) { s.rng = r } }

func WithParams(p Params) Option { return func(s *Simulator) { s.params = p } }

func WithMetric(m Metric) Option { return func(s *Simulator) { s.metrics = append(s.metrics, m) } }

// WithObserver registers o to see every completed tick after the metrics.
func WithObserver(o Observer) Option {
	return func(s *Simulator) { s.observers = append(s.observers, o) }
}

// New builds an unstarted simulator. A nil pointer behaves as one that never
// moved: at the origin and inactive.
func New(kind Kind, surf *surface.Surface, ptr Pointer, opts ...Option) *Simulator {
	s := &Simulator{
		kind:   kind,
		surf:   surf,
		ptr:    ptr,
		params: DefaultParams(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if s.params.Count < 0 {
		s.params.Count = 0
	}
	s.glow = s.params.GlowColor
	s.linkPaints = buildLinkPaints(s.params.LinkColor)
	s.pool = NewPool(s.params.Count)
	return s
}

// Start seeds the pool against the surface bounds and moves to Running. The
// surface must already be attached; a simulator without a drawing context
// never starts.
func (s *Simulator) Start() error {
	switch s.state {
	case Running:
		return nil
	case Stopped:
		return ErrStopped
	}
	if s.surf == nil || !s.surf.Attached() {
		return fmt.Errorf("sim: start: %w", surface.ErrContextUnavailable)
	}
	s.reinit()
	for _, m := range s.metrics {
		m.Reset()
	}
	s.state = Running
	return nil
}

// Tick runs one update and one render pass. It reports false, without
// touching the surface, once the simulator is no longer running.
func (s *Simulator) Tick() (FrameStats, bool) {
	if s.state != Running {
		return FrameStats{}, false
	}
	ctx := s.surf.Context()
	if ctx == nil {
		return FrameStats{}, false
	}

	var px, py float64
	var active bool
	if s.ptr != nil {
		px, py, active = s.ptr.Snapshot()
	}

	s.update(px, py, active)
	discs, edges := s.render(ctx)

	s.tick++
	stats := FrameStats{Tick: s.tick, Discs: discs, Edges: edges, Active: active}
	for _, m := range s.metrics {
		m.Observe(stats, s.pool.items)
	}
	for _, o := range s.observers {
		o.OnTick(stats, s.pool.items)
	}
	return stats, true
}

// Resize reattaches the surface and rebuilds the pool for the new bounds. It
// runs between ticks; the pool size does not change.
func (s *Simulator) Resize(viewportWidth, viewportHeight, dpr float64) error {
	if s.state == Stopped {
		return ErrStopped
	}
	if err := s.surf.Attach(viewportWidth, viewportHeight, dpr); err != nil {
		return err
	}
	if s.state == Running {
		s.reinit()
	}
	return nil
}

// Stop is terminal. Later ticks abort.
func (s *Simulator) Stop() { s.state = Stopped }

// Load replaces the pool contents. The length must equal the pool size.
func (s *Simulator) Load(particles []Particle) error {
	return s.pool.Load(particles)
}

// Particles returns a copy of the pool.
func (s *Simulator) Particles() []Particle { return s.pool.Snapshot() }

func (s *Simulator) Len() int       { return s.pool.Len() }
func (s *Simulator) State() State   { return s.state }
func (s *Simulator) Kind() Kind     { return s.kind }
func (s *Simulator) Params() Params { return s.params }
func (s *Simulator) Ticks() int     { return s.tick }

func (s *Simulator) reinit() {
	w, h := s.surf.Bounds()
	seed(s.kind, s.pool.items, w, h, s.rng)
	s.grid = nil
	if n := s.pool.Len(); n > s.params.GridThreshold {
		s.grid = newGrid(w, h, s.params.LinkRadius, n)
	}
}
