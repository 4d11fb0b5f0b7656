package viz

import (
	"image/color"
	"math"

	"github.com/san-kum/fieldsim/internal/surface"
)

// DefaultThreshold is the lowest effective alpha that still lights a dot.
const DefaultThreshold = 0.02

type point struct{ x, y float64 }

type brailleState struct {
	transform [6]float64
	fill      color.NRGBA
	stroke    color.NRGBA
	alpha     float64
}

// Braille is a surface.Context that rasterises onto a braille Canvas. One
// device pixel is one dot. Shadows and line widths have no terminal
// equivalent and are ignored; anything fainter than Threshold is dropped.
type Braille struct {
	Canvas    *Canvas
	Threshold float64

	cur   brailleState
	stack []brailleState
	paths [][]point
}

func NewBraille(cols, rows int) *Braille {
	return &Braille{
		Canvas:    NewCanvas(cols, rows),
		Threshold: DefaultThreshold,
		cur:       defaultBrailleState(),
	}
}

func defaultBrailleState() brailleState {
	return brailleState{
		transform: [6]float64{1, 0, 0, 1, 0, 0},
		fill:      color.NRGBA{A: 255},
		stroke:    color.NRGBA{A: 255},
		alpha:     1,
	}
}

// BrailleAcquirer sizes a fresh Braille to cover the requested dots and keeps
// the most recent one in Last.
type BrailleAcquirer struct {
	Threshold float64
	Last      *Braille
}

func (a *BrailleAcquirer) Acquire(width, height int) (surface.Context, error) {
	b := NewBraille((width+1)/2, (height+3)/4)
	if a.Threshold > 0 {
		b.Threshold = a.Threshold
	}
	a.Last = b
	return b, nil
}

func (b *Braille) apply(x, y float64) point {
	t := b.cur.transform
	return point{t[0]*x + t[2]*y + t[4], t[1]*x + t[3]*y + t[5]}
}

func (b *Braille) SetTransform(a, bb, c, d, e, f float64) {
	b.cur.transform = [6]float64{a, bb, c, d, e, f}
}

func (b *Braille) Scale(x, y float64) {
	t := &b.cur.transform
	t[0] *= x
	t[1] *= x
	t[2] *= y
	t[3] *= y
}

func (b *Braille) Save() { b.stack = append(b.stack, b.cur) }

func (b *Braille) Restore() {
	if len(b.stack) == 0 {
		return
	}
	b.cur = b.stack[len(b.stack)-1]
	b.stack = b.stack[:len(b.stack)-1]
}

func (b *Braille) ClearRect(x, y, w, h float64) {
	x0, y0, x1, y1 := b.dotRect(x, y, w, h)
	dw, dh := b.Canvas.Dots()
	if x0 <= 0 && y0 <= 0 && x1 >= dw && y1 >= dh {
		b.Canvas.Clear()
		return
	}
	for py := y0; py < y1; py++ {
		for px := x0; px < x1; px++ {
			b.Canvas.Unset(px, py)
		}
	}
}

func (b *Braille) FillRect(x, y, w, h float64) {
	col, ok := b.visible(b.cur.fill)
	if !ok {
		return
	}
	x0, y0, x1, y1 := b.dotRect(x, y, w, h)
	for py := y0; py < y1; py++ {
		for px := x0; px < x1; px++ {
			b.Canvas.Set(px, py, col)
		}
	}
}

// dotRect maps a logical rectangle to a half-open dot range. Only scale and
// translation are honoured.
func (b *Braille) dotRect(x, y, w, h float64) (x0, y0, x1, y1 int) {
	p0 := b.apply(x, y)
	p1 := b.apply(x+w, y+h)
	x0, x1 = int(math.Floor(math.Min(p0.x, p1.x))), int(math.Ceil(math.Max(p0.x, p1.x)))
	y0, y1 = int(math.Floor(math.Min(p0.y, p1.y))), int(math.Ceil(math.Max(p0.y, p1.y)))
	return
}

func (b *Braille) BeginPath() { b.paths = b.paths[:0] }

func (b *Braille) MoveTo(x, y float64) {
	b.paths = append(b.paths, []point{b.apply(x, y)})
}

func (b *Braille) LineTo(x, y float64) {
	if len(b.paths) == 0 {
		b.MoveTo(x, y)
		return
	}
	b.extend(b.apply(x, y))
}

func (b *Braille) BezierCurveTo(cp1x, cp1y, cp2x, cp2y, x, y float64) {
	if len(b.paths) == 0 {
		b.MoveTo(cp1x, cp1y)
	}
	sub := b.paths[len(b.paths)-1]
	p0 := sub[len(sub)-1]
	p1, p2, p3 := b.apply(cp1x, cp1y), b.apply(cp2x, cp2y), b.apply(x, y)

	const steps = 8
	for i := 1; i <= steps; i++ {
		t := float64(i) / steps
		u := 1 - t
		b.extend(point{
			u*u*u*p0.x + 3*u*u*t*p1.x + 3*u*t*t*p2.x + t*t*t*p3.x,
			u*u*u*p0.y + 3*u*u*t*p1.y + 3*u*t*t*p2.y + t*t*t*p3.y,
		})
	}
}

// Arc flattens the arc into the current subpath, starting one if none is open.
func (b *Braille) Arc(x, y, radius, startAngle, endAngle float64) {
	scale := math.Hypot(b.cur.transform[0], b.cur.transform[1])
	sweep := endAngle - startAngle
	steps := int(math.Ceil(math.Abs(sweep) * radius * scale))
	steps = min(max(steps, 8), 64)

	for i := 0; i <= steps; i++ {
		a := startAngle + sweep*float64(i)/float64(steps)
		p := b.apply(x+radius*math.Cos(a), y+radius*math.Sin(a))
		if i == 0 && len(b.paths) == 0 {
			b.paths = append(b.paths, []point{p})
			continue
		}
		b.extend(p)
	}
}

func (b *Braille) extend(p point) {
	last := len(b.paths) - 1
	b.paths[last] = append(b.paths[last], p)
}

// Fill lights every dot whose centre lies inside a subpath (even-odd). A
// subpath too small to cover any dot centre still lights the dot under its
// centroid.
func (b *Braille) Fill() {
	col, ok := b.visible(b.cur.fill)
	if !ok {
		return
	}
	for _, sub := range b.paths {
		if len(sub) < 3 {
			for _, p := range sub {
				b.Canvas.Set(int(math.Floor(p.x)), int(math.Floor(p.y)), col)
			}
			continue
		}
		if b.fillPolygon(sub, col) == 0 {
			var cx, cy float64
			for _, p := range sub {
				cx += p.x
				cy += p.y
			}
			n := float64(len(sub))
			b.Canvas.Set(int(math.Floor(cx/n)), int(math.Floor(cy/n)), col)
		}
	}
}

func (b *Braille) fillPolygon(poly []point, col color.Color) int {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range poly {
		minX, maxX = math.Min(minX, p.x), math.Max(maxX, p.x)
		minY, maxY = math.Min(minY, p.y), math.Max(maxY, p.y)
	}
	dw, dh := b.Canvas.Dots()
	x0, x1 := max(int(math.Floor(minX)), 0), min(int(math.Ceil(maxX)), dw-1)
	y0, y1 := max(int(math.Floor(minY)), 0), min(int(math.Ceil(maxY)), dh-1)

	lit := 0
	for py := y0; py <= y1; py++ {
		for px := x0; px <= x1; px++ {
			if inside(poly, float64(px)+0.5, float64(py)+0.5) {
				b.Canvas.Set(px, py, col)
				lit++
			}
		}
	}
	return lit
}

func inside(poly []point, x, y float64) bool {
	in := false
	j := len(poly) - 1
	for i := range poly {
		pi, pj := poly[i], poly[j]
		if (pi.y > y) != (pj.y > y) && x < (pj.x-pi.x)*(y-pi.y)/(pj.y-pi.y)+pi.x {
			in = !in
		}
		j = i
	}
	return in
}

func (b *Braille) Stroke() {
	col, ok := b.visible(b.cur.stroke)
	if !ok {
		return
	}
	for _, sub := range b.paths {
		for i := 1; i < len(sub); i++ {
			b.Canvas.DrawLine(
				int(math.Floor(sub[i-1].x)), int(math.Floor(sub[i-1].y)),
				int(math.Floor(sub[i].x)), int(math.Floor(sub[i].y)),
				col,
			)
		}
	}
}

// visible folds the global alpha into c and reports whether the result
// clears the threshold. The cell keeps the folded alpha for blending.
func (b *Braille) visible(c color.NRGBA) (color.Color, bool) {
	a := b.cur.alpha * float64(c.A) / 255
	if a < b.Threshold {
		return nil, false
	}
	c.A = uint8(math.Round(math.Min(a, 1) * 255))
	return c, true
}

func (b *Braille) SetFillColor(c color.Color)   { b.cur.fill = toNRGBA(c) }
func (b *Braille) SetStrokeColor(c color.Color) { b.cur.stroke = toNRGBA(c) }

func (b *Braille) SetFillGradient(g surface.Gradient) {
	if bg, ok := g.(*brailleGradient); ok {
		b.cur.fill = bg.strongest()
	}
}

func (b *Braille) SetStrokeGradient(g surface.Gradient) {
	if bg, ok := g.(*brailleGradient); ok {
		b.cur.stroke = bg.strongest()
	}
}

func (b *Braille) SetLineWidth(float64)       {}
func (b *Braille) SetGlobalAlpha(a float64)   { b.cur.alpha = a }
func (b *Braille) SetShadowBlur(float64)      {}
func (b *Braille) SetShadowColor(color.Color) {}

func (b *Braille) CreateLinearGradient(x0, y0, x1, y1 float64) surface.Gradient {
	return &brailleGradient{}
}

func (b *Braille) CreateRadialGradient(x0, y0, r0, x1, y1, r1 float64) surface.Gradient {
	return &brailleGradient{}
}

// brailleGradient collapses a ramp to its most opaque stop.
type brailleGradient struct {
	stops []color.NRGBA
}

func (g *brailleGradient) AddColorStop(_ float64, c color.Color) {
	g.stops = append(g.stops, toNRGBA(c))
}

func (g *brailleGradient) strongest() color.NRGBA {
	var best color.NRGBA
	for _, s := range g.stops {
		if s.A >= best.A {
			best = s
		}
	}
	return best
}

func toNRGBA(c color.Color) color.NRGBA {
	if c == nil {
		return color.NRGBA{}
	}
	return color.NRGBAModel.Convert(c).(color.NRGBA)
}
