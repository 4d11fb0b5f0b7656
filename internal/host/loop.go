package host

import (
	"errors"
	"slices"
	"time"

	"github.com/san-kum/fieldsim/internal/surface"
)

// DefaultFrameInterval is the synthetic clock step of one Loop frame.
const DefaultFrameInterval = 16 * time.Millisecond

// Loop is a deterministic headless Host. Frames run only when Advance is
// called and the clock moves by a fixed interval per frame.
type Loop struct {
	vp       Viewport
	acq      surface.Acquirer
	now      time.Time
	interval time.Duration

	nextID FrameID
	order  []FrameID
	frames map[FrameID]func()

	nextSub int
	moves   map[int]func(float64, float64)
	resizes map[int]func(Viewport)

	layers []*Layer

	// IgnoreCancel makes CancelFrame a no-op, so a frame requested before
	// teardown still fires afterwards.
	IgnoreCancel bool
}

type LoopOption func(*Loop)

func WithFrameInterval(d time.Duration) LoopOption { return func(l *Loop) { l.interval = d } }

func WithStart(t time.Time) LoopOption { return func(l *Loop) { l.now = t } }

func NewLoop(vp Viewport, acq surface.Acquirer, opts ...LoopOption) *Loop {
	l := &Loop{
		vp:       vp,
		acq:      acq,
		now:      time.Unix(0, 0),
		interval: DefaultFrameInterval,
		frames:   make(map[FrameID]func()),
		moves:    make(map[int]func(float64, float64)),
		resizes:  make(map[int]func(Viewport)),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Loop) Acquire(width, height int) (surface.Context, error) {
	if l.acq == nil {
		return nil, errors.New("host: loop has no acquirer")
	}
	return l.acq.Acquire(width, height)
}

func (l *Loop) Viewport() Viewport { return l.vp }
func (l *Loop) Now() time.Time     { return l.now }

func (l *Loop) RequestFrame(fn func()) FrameID {
	l.nextID++
	l.frames[l.nextID] = fn
	l.order = append(l.order, l.nextID)
	return l.nextID
}

func (l *Loop) CancelFrame(id FrameID) {
	if l.IgnoreCancel {
		return
	}
	delete(l.frames, id)
}

func (l *Loop) OnPointerMove(fn func(float64, float64)) func() {
	id := l.subscribe()
	l.moves[id] = fn
	return func() { delete(l.moves, id) }
}

func (l *Loop) OnResize(fn func(Viewport)) func() {
	id := l.subscribe()
	l.resizes[id] = fn
	return func() { delete(l.resizes, id) }
}

func (l *Loop) subscribe() int {
	l.nextSub++
	return l.nextSub
}

func (l *Loop) Append(layer *Layer) { l.layers = append(l.layers, layer) }

func (l *Loop) Remove(layer *Layer) {
	l.layers = slices.DeleteFunc(l.layers, func(x *Layer) bool { return x == layer })
}

// Advance moves the clock by one interval and runs the frames that were
// pending when it was called. Frames requested meanwhile wait for the next
// Advance. It returns the number of callbacks run.
func (l *Loop) Advance() int {
	l.now = l.now.Add(l.interval)

	batch := l.order
	l.order = nil
	ran := 0
	for _, id := range batch {
		fn, ok := l.frames[id]
		if !ok {
			continue
		}
		delete(l.frames, id)
		fn()
		ran++
	}
	return ran
}

// Run advances n frames.
func (l *Loop) Run(n int) {
	for i := 0; i < n; i++ {
		l.Advance()
	}
}

// Move delivers a pointer move in global coordinates.
func (l *Loop) Move(globalX, globalY float64) {
	for _, fn := range l.moves {
		fn(globalX, globalY)
	}
}

// Resize changes the viewport and notifies subscribers.
func (l *Loop) Resize(vp Viewport) {
	l.vp = vp
	for _, fn := range l.resizes {
		fn(vp)
	}
}

// Pending is the number of frames requested and not yet run or cancelled.
func (l *Loop) Pending() int { return len(l.frames) }

// Listeners is the number of live pointer and resize subscriptions.
func (l *Loop) Listeners() int { return len(l.moves) + len(l.resizes) }

// Layers returns the mounted layers, bottom first.
func (l *Loop) Layers() []*Layer { return slices.Clone(l.layers) }
