// Package pointer tracks the most recent pointer position in a surface's
// logical coordinates.
package pointer

import (
	"sync"
	"time"
)

// DefaultActiveWindow is how long a move keeps the tracker active.
const DefaultActiveWindow = 100 * time.Millisecond

// Origin reports the top-left of the surface in global coordinates.
type Origin interface {
	Origin() (left, top float64)
}

// Tracker records pointer moves. Activity is a timestamp compared against the
// clock at read time, so a move inside the window re-arms it without timers.
type Tracker struct {
	mu     sync.Mutex
	origin Origin
	clock  func() time.Time
	window time.Duration

	x, y float64
	last time.Time
	seq  uint64
}

type Option func(*Tracker)

// WithClock replaces the wall clock, e.g. with a host's frame clock.
func WithClock(clock func() time.Time) Option {
	return func(t *Tracker) { t.clock = clock }
}

func WithWindow(d time.Duration) Option {
	return func(t *Tracker) { t.window = d }
}

func New(origin Origin, opts ...Option) *Tracker {
	t := &Tracker{
		origin: origin,
		clock:  time.Now,
		window: DefaultActiveWindow,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// OnMove records a move given in global coordinates.
func (t *Tracker) OnMove(globalX, globalY float64) {
	var left, top float64
	if t.origin != nil {
		left, top = t.origin.Origin()
	}
	now := t.clock()

	t.mu.Lock()
	t.x, t.y = globalX-left, globalY-top
	t.last = now
	t.seq++
	t.mu.Unlock()
}

// Position returns the last recorded position, (0, 0) before any move.
func (t *Tracker) Position() (float64, float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.x, t.y
}

// IsActive reports whether the last move happened within the active window.
func (t *Tracker) IsActive() bool {
	now := t.clock()
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.seq > 0 && now.Sub(t.last) < t.window
}

// Seq counts moves; it changes whenever a new move is recorded.
func (t *Tracker) Seq() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.seq
}

// Snapshot reads position and activity under one lock.
func (t *Tracker) Snapshot() (x, y float64, active bool) {
	now := t.clock()
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.x, t.y, t.seq > 0 && now.Sub(t.last) < t.window
}
