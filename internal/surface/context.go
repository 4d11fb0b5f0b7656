package surface

import (
	"errors"
	"image/color"
)

// ErrContextUnavailable is returned when a drawing target exists but cannot
// yield a 2D context. It is never retried.
var ErrContextUnavailable = errors.New("surface: drawing context unavailable")

// Gradient is a colour ramp created by a Context.
type Gradient interface {
	AddColorStop(offset float64, c color.Color)
}

// Context is the 2D drawing contract consumed by the particle layers.
// Coordinates are transformed by the current matrix before they reach the
// backing store.
type Context interface {
	SetTransform(a, b, c, d, e, f float64)
	Scale(x, y float64)
	Save()
	Restore()

	ClearRect(x, y, w, h float64)
	FillRect(x, y, w, h float64)

	BeginPath()
	MoveTo(x, y float64)
	LineTo(x, y float64)
	BezierCurveTo(cp1x, cp1y, cp2x, cp2y, x, y float64)
	Arc(x, y, radius, startAngle, endAngle float64)
	Fill()
	Stroke()

	SetFillColor(c color.Color)
	SetFillGradient(g Gradient)
	SetStrokeColor(c color.Color)
	SetStrokeGradient(g Gradient)
	SetLineWidth(w float64)
	SetGlobalAlpha(a float64)
	SetShadowBlur(blur float64)
	SetShadowColor(c color.Color)

	CreateLinearGradient(x0, y0, x1, y1 float64) Gradient
	CreateRadialGradient(x0, y0, r0, x1, y1, r1 float64) Gradient
}

// Acquirer yields a Context for a backing store of the given device size.
type Acquirer interface {
	Acquire(width, height int) (Context, error)
}

type AcquirerFunc func(width, height int) (Context, error)

func (f AcquirerFunc) Acquire(width, height int) (Context, error) { return f(width, height) }
