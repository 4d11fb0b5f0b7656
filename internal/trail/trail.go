// Package trail draws a fading ribbon of Bézier segments behind the pointer.
package trail

import (
	"fmt"
	"image/color"
	"math"
	"time"

	"github.com/san-kum/fieldsim/internal/sim"
	"github.com/san-kum/fieldsim/internal/surface"
)

const (
	Capacity    = 100
	MinInterval = 16 * time.Millisecond
	Friction    = 0.97
	Spring      = 0.015
	AgeStep     = 0.5
	MaxAge      = 200.0
	Control     = 0.15
	GlowRadius  = 25.0
	ShadowBlur  = 15.0
)

var ShadowColor = sim.WithAlpha(sim.Gold500, 0.2)

// Point is one sample of the ribbon.
type Point struct {
	X, Y   float64
	DX, DY float64
	Age    float64
}

// Pointer is the subset of pointer.Tracker the trail reads.
type Pointer interface {
	Position() (x, y float64)
	Seq() uint64
}

// Trail shares the simulator lifecycle: it must be started on an attached
// surface, and once stopped it never draws again.
type Trail struct {
	surf  *surface.Surface
	ptr   Pointer
	clock func() time.Time

	points  []Point
	lastAdd time.Time
	lastSeq uint64
	added   bool

	state sim.State
	tick  int
}

type Option func(*Trail)

func WithClock(clock func() time.Time) Option { return func(t *Trail) { t.clock = clock } }

func New(surf *surface.Surface, ptr Pointer, opts ...Option) *Trail {
	t := &Trail{
		surf:   surf,
		ptr:    ptr,
		clock:  time.Now,
		points: make([]Point, 0, Capacity+1),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Trail) Start() error {
	switch t.state {
	case sim.Running:
		return nil
	case sim.Stopped:
		return sim.ErrStopped
	}
	if t.surf == nil || !t.surf.Attached() {
		return fmt.Errorf("trail: start: %w", surface.ErrContextUnavailable)
	}
	if t.ptr != nil {
		t.lastSeq = t.ptr.Seq()
	}
	t.state = sim.Running
	return nil
}

// Tick samples the pointer, advances every point, draws the ribbon and drops
// points that have aged out.
func (t *Trail) Tick() (sim.FrameStats, bool) {
	if t.state != sim.Running {
		return sim.FrameStats{}, false
	}
	ctx := t.surf.Context()
	if ctx == nil {
		return sim.FrameStats{}, false
	}

	moved := t.sample()

	t.surf.Clear()
	ctx.SetShadowBlur(ShadowBlur)
	ctx.SetShadowColor(ShadowColor)

	stats := sim.FrameStats{Active: moved}
	for i := range t.points {
		p := &t.points[i]
		p.DX *= Friction
		p.DY *= Friction
		p.X += p.DX
		p.Y += p.DY
		p.Age += AgeStep

		if i > 0 {
			prev := &t.points[i-1]
			dx := prev.X - p.X
			dy := prev.Y - p.Y
			p.DX += dx * Spring
			p.DY += dy * Spring
			segment(ctx, p, prev, dx, dy)
			stats.Edges++
		}
		glow(ctx, p)
		stats.Discs++
	}

	t.prune()
	t.tick++
	stats.Tick = t.tick
	return stats, true
}

func segment(ctx surface.Context, p, prev *Point, dx, dy float64) {
	a := math.Max(0, 0.5-p.Age/MaxAge)
	g := ctx.CreateLinearGradient(p.X, p.Y, prev.X, prev.Y)
	g.AddColorStop(0, sim.WithAlpha(sim.Gold500, a))
	g.AddColorStop(1, sim.WithAlpha(sim.Gold500, a*1.2))

	ctx.BeginPath()
	ctx.SetStrokeGradient(g)
	ctx.SetLineWidth(math.Max(0.5, 2.5-p.Age/50))
	ctx.MoveTo(p.X, p.Y)
	ctx.BezierCurveTo(
		p.X+dx*Control, p.Y+dy*Control,
		prev.X-dx*Control, prev.Y-dy*Control,
		prev.X, prev.Y,
	)
	ctx.Stroke()
}

func glow(ctx surface.Context, p *Point) {
	a := math.Max(0, 0.2-p.Age/MaxAge)
	g := ctx.CreateRadialGradient(p.X, p.Y, 0, p.X, p.Y, GlowRadius)
	g.AddColorStop(0, sim.WithAlpha(sim.Gold500, a))
	g.AddColorStop(0.5, sim.WithAlpha(sim.Gold500, a*0.5))
	g.AddColorStop(1, color.NRGBA{R: 250, G: 189})

	ctx.BeginPath()
	ctx.SetFillGradient(g)
	ctx.Arc(p.X, p.Y, GlowRadius, 0, 2*math.Pi)
	ctx.Fill()
}

// sample appends the pointer position when it moved since the last tick and
// the previous sample is at least MinInterval old.
func (t *Trail) sample() bool {
	if t.ptr == nil {
		return false
	}
	seq := t.ptr.Seq()
	if seq == t.lastSeq {
		return false
	}
	t.lastSeq = seq

	now := t.clock()
	if t.added && now.Sub(t.lastAdd) < MinInterval {
		return true
	}
	t.lastAdd, t.added = now, true

	x, y := t.ptr.Position()
	t.points = append(t.points, Point{X: x, Y: y})
	if len(t.points) > Capacity {
		copy(t.points, t.points[len(t.points)-Capacity:])
		t.points = t.points[:Capacity]
	}
	return true
}

func (t *Trail) prune() {
	kept := t.points[:0]
	for _, p := range t.points {
		if p.Age < MaxAge {
			kept = append(kept, p)
		}
	}
	t.points = kept
}

// Resize reattaches the surface. Points are kept.
func (t *Trail) Resize(viewportWidth, viewportHeight, dpr float64) error {
	if t.state == sim.Stopped {
		return sim.ErrStopped
	}
	return t.surf.Attach(viewportWidth, viewportHeight, dpr)
}

func (t *Trail) Stop() { t.state = sim.Stopped }

func (t *Trail) State() sim.State { return t.state }

func (t *Trail) Len() int { return len(t.points) }

// Points returns a copy of the live points, oldest first.
func (t *Trail) Points() []Point {
	out := make([]Point, len(t.points))
	copy(out, t.points)
	return out
}
