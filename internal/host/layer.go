package host

import (
	"fmt"
	"math"
	"time"

	"github.com/san-kum/fieldsim/internal/pointer"
	"github.com/san-kum/fieldsim/internal/sim"
	"github.com/san-kum/fieldsim/internal/surface"
	"github.com/san-kum/fieldsim/internal/trail"
)

// Engine is what a layer drives once per frame. Both *sim.Simulator and
// *trail.Trail satisfy it.
type Engine interface {
	Start() error
	Tick() (sim.FrameStats, bool)
	Resize(viewportWidth, viewportHeight, dpr float64) error
	Stop()
}

// Layer is a mounted, pointer-transparent drawing layer.
type Layer struct {
	host    Host
	variant Variant
	opacity float64

	surf    *surface.Surface
	tracker *pointer.Tracker
	engine  Engine

	frame   FrameID
	pending bool

	unsubMove   func()
	unsubResize func()
	onFrame     func(*Layer, sim.FrameStats)

	detached bool
	frames   int
	last     sim.FrameStats
	err      error
}

type mountConfig struct {
	left, top float64
	simOpts   []sim.Option
	window    time.Duration
	onFrame   func(*Layer, sim.FrameStats)
}

type MountOption func(*mountConfig)

// WithSimOptions passes options to the particle simulator. Trail layers
// ignore them.
func WithSimOptions(opts ...sim.Option) MountOption {
	return func(c *mountConfig) { c.simOpts = append(c.simOpts, opts...) }
}

// WithActiveWindow overrides how long a pointer move counts as activity.
func WithActiveWindow(d time.Duration) MountOption {
	return func(c *mountConfig) { c.window = d }
}

// WithOrigin places the layer's top-left corner at (left, top) in the host's
// global coordinates. Pointer moves are reported relative to it.
func WithOrigin(left, top float64) MountOption {
	return func(c *mountConfig) { c.left, c.top = left, top }
}

// WithOnFrame registers a callback run after every completed frame.
func WithOnFrame(fn func(*Layer, sim.FrameStats)) MountOption {
	return func(c *mountConfig) { c.onFrame = fn }
}

// Mount attaches a new layer to h and schedules its first frame. If the
// drawing context cannot be acquired it returns an error wrapping
// surface.ErrContextUnavailable and registers nothing with the host.
func Mount(h Host, variant Variant, opacity float64, opts ...MountOption) (*Layer, error) {
	if math.IsNaN(opacity) || opacity < 0 || opacity > 1 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOpacity, opacity)
	}
	if variant < Background || variant > Trail {
		return nil, ErrUnknownVariant
	}

	cfg := mountConfig{window: pointer.DefaultActiveWindow}
	for _, opt := range opts {
		opt(&cfg)
	}

	vp := h.Viewport()
	surf := surface.New(h)
	if err := surf.Attach(vp.Width, vp.Height, vp.DPR); err != nil {
		return nil, fmt.Errorf("host: mount %s: %w", variant, err)
	}
	surf.SetOrigin(cfg.left, cfg.top)

	tracker := pointer.New(surf, pointer.WithClock(h.Now), pointer.WithWindow(cfg.window))

	var engine Engine
	switch variant {
	case Background:
		engine = sim.New(sim.Background, surf, tracker, cfg.simOpts...)
	case MouseFollow:
		engine = sim.New(sim.MouseFollow, surf, tracker, cfg.simOpts...)
	case Trail:
		engine = trail.New(surf, tracker, trail.WithClock(h.Now))
	}
	if err := engine.Start(); err != nil {
		surf.Release()
		return nil, fmt.Errorf("host: mount %s: %w", variant, err)
	}

	l := &Layer{
		host:    h,
		variant: variant,
		opacity: opacity,
		surf:    surf,
		tracker: tracker,
		engine:  engine,
		onFrame: cfg.onFrame,
	}
	l.unsubMove = h.OnPointerMove(tracker.OnMove)
	l.unsubResize = h.OnResize(l.resize)
	h.Append(l)
	l.schedule()
	return l, nil
}

func (l *Layer) schedule() {
	l.frame = l.host.RequestFrame(l.run)
	l.pending = true
}

// run is the frame callback. A layer torn down after the frame was requested
// returns without touching the surface.
func (l *Layer) run() {
	if l.detached {
		return
	}
	l.pending = false

	stats, ok := l.engine.Tick()
	if !ok {
		return
	}
	l.frames++
	l.last = stats
	if l.onFrame != nil {
		l.onFrame(l, stats)
	}
	if !l.detached {
		l.schedule()
	}
}

// resize reattaches the surface between frames. A failed reattach keeps the
// previous context and is reported by Err.
func (l *Layer) resize(vp Viewport) {
	if l.detached {
		return
	}
	if err := l.engine.Resize(vp.Width, vp.Height, vp.DPR); err != nil {
		l.err = err
		return
	}
	l.err = nil
}

// Unmount cancels the pending frame, drops both subscriptions, stops the
// engine and releases the surface. Calling it again does nothing.
func (l *Layer) Unmount() {
	if l.detached {
		return
	}
	l.detached = true

	if l.pending {
		l.host.CancelFrame(l.frame)
		l.pending = false
	}
	l.unsubMove()
	l.unsubResize()
	l.engine.Stop()
	l.host.Remove(l)
	l.surf.Release()
}

func (l *Layer) Variant() Variant          { return l.variant }
func (l *Layer) Opacity() float64          { return l.opacity }
func (l *Layer) Surface() *surface.Surface { return l.surf }
func (l *Layer) Tracker() *pointer.Tracker { return l.tracker }
func (l *Layer) Engine() Engine            { return l.engine }
func (l *Layer) Detached() bool            { return l.detached }
func (l *Layer) Frames() int               { return l.frames }
func (l *Layer) LastFrame() sim.FrameStats { return l.last }
func (l *Layer) Err() error                { return l.err }

// Simulator returns the particle simulator, or nil for a trail layer.
func (l *Layer) Simulator() *sim.Simulator {
	s, _ := l.engine.(*sim.Simulator)
	return s
}
