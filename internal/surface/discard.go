package surface

import "image/color"

// Discard is a Context that draws nothing. It is used for headless batch runs
// where only the simulation and its draw-call counts matter.
var Discard Context = discard{}

// DiscardAcquirer always yields Discard.
var DiscardAcquirer = AcquirerFunc(func(int, int) (Context, error) { return Discard, nil })

type discard struct{}

func (discard) SetTransform(a, b, c, d, e, f float64)              {}
func (discard) Scale(x, y float64)                                 {}
func (discard) Save()                                              {}
func (discard) Restore()                                           {}
func (discard) ClearRect(x, y, w, h float64)                       {}
func (discard) FillRect(x, y, w, h float64)                        {}
func (discard) BeginPath()                                         {}
func (discard) MoveTo(x, y float64)                                {}
func (discard) LineTo(x, y float64)                                {}
func (discard) BezierCurveTo(cp1x, cp1y, cp2x, cp2y, x, y float64) {}
func (discard) Arc(x, y, radius, startAngle, endAngle float64)     {}
func (discard) Fill()                                              {}
func (discard) Stroke()                                            {}
func (discard) SetFillColor(c color.Color)                         {}
func (discard) SetFillGradient(g Gradient)                         {}
func (discard) SetStrokeColor(c color.Color)                       {}
func (discard) SetStrokeGradient(g Gradient)                       {}
func (discard) SetLineWidth(w float64)                             {}
func (discard) SetGlobalAlpha(a float64)                           {}
func (discard) SetShadowBlur(blur float64)                         {}
func (discard) SetShadowColor(c color.Color)                       {}

func (discard) CreateLinearGradient(x0, y0, x1, y1 float64) Gradient { return discardGradient{} }
func (discard) CreateRadialGradient(x0, y0, r0, x1, y1, r1 float64) Gradient {
	return discardGradient{}
}

type discardGradient struct{}

func (discardGradient) AddColorStop(float64, color.Color) {}
