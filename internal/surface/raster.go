package surface

import (
	"image"
	"image/color"

	"github.com/tfriedel6/canvas"
	"github.com/tfriedel6/canvas/backend/softwarebackend"
)

// Raster is a software-rendered Context. The backing image is premultiplied
// RGBA in device pixels.
type Raster struct {
	backend *softwarebackend.SoftwareBackend
	cv      *canvas.Canvas
}

// NewRaster allocates a raster context. Sizes below one pixel are raised to
// one so zero-sized surfaces still have a valid target.
func NewRaster(width, height int) *Raster {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	backend := softwarebackend.New(width, height)
	return &Raster{backend: backend, cv: canvas.New(backend)}
}

// RasterAcquirer allocates a fresh Raster on every acquisition.
var RasterAcquirer = AcquirerFunc(func(width, height int) (Context, error) {
	return NewRaster(width, height), nil
})

// Image returns the backing store.
func (r *Raster) Image() *image.RGBA { return r.backend.Image }

func (r *Raster) SetTransform(a, b, c, d, e, f float64) { r.cv.SetTransform(a, b, c, d, e, f) }
func (r *Raster) Scale(x, y float64)                    { r.cv.Scale(x, y) }
func (r *Raster) Save()                                 { r.cv.Save() }
func (r *Raster) Restore()                              { r.cv.Restore() }

func (r *Raster) ClearRect(x, y, w, h float64) { r.cv.ClearRect(x, y, w, h) }
func (r *Raster) FillRect(x, y, w, h float64)  { r.cv.FillRect(x, y, w, h) }

func (r *Raster) BeginPath()          { r.cv.BeginPath() }
func (r *Raster) MoveTo(x, y float64) { r.cv.MoveTo(x, y) }
func (r *Raster) LineTo(x, y float64) { r.cv.LineTo(x, y) }
func (r *Raster) BezierCurveTo(cp1x, cp1y, cp2x, cp2y, x, y float64) {
	r.cv.BezierCurveTo(cp1x, cp1y, cp2x, cp2y, x, y)
}
func (r *Raster) Arc(x, y, radius, startAngle, endAngle float64) {
	r.cv.Arc(x, y, radius, startAngle, endAngle, false)
}
func (r *Raster) Fill()   { r.cv.Fill() }
func (r *Raster) Stroke() { r.cv.Stroke() }

func (r *Raster) SetFillColor(c color.Color)   { r.cv.SetFillStyle(c) }
func (r *Raster) SetStrokeColor(c color.Color) { r.cv.SetStrokeStyle(c) }

func (r *Raster) SetFillGradient(g Gradient) {
	if rg, ok := g.(*rasterGradient); ok {
		r.cv.SetFillStyle(rg.style())
	}
}

func (r *Raster) SetStrokeGradient(g Gradient) {
	if rg, ok := g.(*rasterGradient); ok {
		r.cv.SetStrokeStyle(rg.style())
	}
}

func (r *Raster) SetLineWidth(w float64)       { r.cv.SetLineWidth(w) }
func (r *Raster) SetGlobalAlpha(a float64)     { r.cv.SetGlobalAlpha(a) }
func (r *Raster) SetShadowBlur(blur float64)   { r.cv.SetShadowBlur(blur) }
func (r *Raster) SetShadowColor(c color.Color) { r.cv.SetShadowColor(c) }

func (r *Raster) CreateLinearGradient(x0, y0, x1, y1 float64) Gradient {
	return &rasterGradient{linear: r.cv.CreateLinearGradient(x0, y0, x1, y1)}
}

func (r *Raster) CreateRadialGradient(x0, y0, r0, x1, y1, r1 float64) Gradient {
	return &rasterGradient{radial: r.cv.CreateRadialGradient(x0, y0, r0, x1, y1, r1)}
}

type rasterGradient struct {
	linear *canvas.LinearGradient
	radial *canvas.RadialGradient
}

func (g *rasterGradient) AddColorStop(offset float64, c color.Color) {
	if g.linear != nil {
		g.linear.AddColorStop(offset, c)
		return
	}
	g.radial.AddColorStop(offset, c)
}

func (g *rasterGradient) style() interface{} {
	if g.linear != nil {
		return g.linear
	}
	return g.radial
}
