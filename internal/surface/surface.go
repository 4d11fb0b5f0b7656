package surface

import (
	"fmt"
	"math"
)

// Surface is a full-viewport drawing target. It exposes logical bounds in CSS
// pixels and keeps the context scaled so that one unit equals one CSS pixel.
type Surface struct {
	acq Acquirer
	ctx Context

	width, height    float64
	deviceW, deviceH int
	dpr              float64
	left, top        float64
}

func New(acq Acquirer) *Surface {
	return &Surface{acq: acq, dpr: 1}
}

// Attach sizes the backing store to the viewport in device pixels and
// configures the transform. Reattaching re-acquires the context, so the
// previous scale never accumulates.
func (s *Surface) Attach(viewportWidth, viewportHeight, dpr float64) error {
	if s.acq == nil {
		return ErrContextUnavailable
	}
	if dpr <= 0 || math.IsNaN(dpr) || math.IsInf(dpr, 0) {
		dpr = 1
	}
	viewportWidth = side(viewportWidth)
	viewportHeight = side(viewportHeight)

	dw := int(math.Round(viewportWidth * dpr))
	dh := int(math.Round(viewportHeight * dpr))

	ctx, err := s.acq.Acquire(dw, dh)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrContextUnavailable, err)
	}
	if ctx == nil {
		return ErrContextUnavailable
	}

	ctx.SetTransform(1, 0, 0, 1, 0, 0)
	ctx.Scale(dpr, dpr)

	s.ctx = ctx
	s.width, s.height = viewportWidth, viewportHeight
	s.deviceW, s.deviceH = dw, dh
	s.dpr = dpr
	return nil
}

// side clamps a logical length to a finite, non-negative value.
func side(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// Clear erases the full drawing area.
func (s *Surface) Clear() {
	if s.ctx == nil {
		return
	}
	s.ctx.ClearRect(0, 0, s.width, s.height)
}

// Bounds returns the logical width and height.
func (s *Surface) Bounds() (float64, float64) { return s.width, s.height }

// DeviceSize returns the backing-store size in device pixels.
func (s *Surface) DeviceSize() (int, int) { return s.deviceW, s.deviceH }

func (s *Surface) DPR() float64 { return s.dpr }

// Origin returns the surface's top-left corner in global coordinates.
func (s *Surface) Origin() (float64, float64) { return s.left, s.top }

func (s *Surface) SetOrigin(left, top float64) { s.left, s.top = left, top }

// Context returns the attached context, or nil before Attach and after Release.
func (s *Surface) Context() Context { return s.ctx }

func (s *Surface) Attached() bool { return s.ctx != nil }

// Release drops the context. Clear is a no-op afterwards.
func (s *Surface) Release() { s.ctx = nil }
