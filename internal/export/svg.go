package export

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"strings"

	"github.com/san-kum/fieldsim/internal/surface"
)

type svgState struct {
	transform   [6]float64
	fill        string
	stroke      string
	fillAlpha   float64
	strokeAlpha float64
	alpha       float64
	lineWidth   float64
	shadowBlur  float64
	shadowColor color.NRGBA
}

// SVG is a surface.Context that renders draw calls as SVG elements. A clear
// that covers the whole document discards everything drawn before it.
type SVG struct {
	Width, Height int
	Background    color.Color
	// Opacity below 1 wraps the drawing in a group at that opacity.
	Opacity float64

	body    strings.Builder
	defs    strings.Builder
	path    strings.Builder
	cur     svgState
	stack   []svgState
	nextID  int
	filters map[string]string
}

func NewSVG(width, height int) *SVG {
	s := &SVG{Width: width, Height: height, filters: make(map[string]string)}
	s.cur = svgState{
		transform:   [6]float64{1, 0, 0, 1, 0, 0},
		fill:        "#000000",
		stroke:      "#000000",
		fillAlpha:   1,
		strokeAlpha: 1,
		alpha:       1,
		lineWidth:   1,
	}
	return s
}

// SVGAcquirer hands out a fresh SVG per acquisition and remembers the last
// one.
type SVGAcquirer struct {
	Background color.Color
	Opacity    float64
	Last       *SVG
}

func (a *SVGAcquirer) Acquire(width, height int) (surface.Context, error) {
	a.Last = NewSVG(width, height)
	a.Last.Background = a.Background
	a.Last.Opacity = a.Opacity
	return a.Last, nil
}

func (s *SVG) SetTransform(a, b, c, d, e, f float64) { s.cur.transform = [6]float64{a, b, c, d, e, f} }

func (s *SVG) Scale(x, y float64) {
	t := &s.cur.transform
	t[0] *= x
	t[1] *= x
	t[2] *= y
	t[3] *= y
}

func (s *SVG) Save() { s.stack = append(s.stack, s.cur) }

func (s *SVG) Restore() {
	if len(s.stack) == 0 {
		return
	}
	s.cur = s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]
}

func (s *SVG) ClearRect(x, y, w, h float64) {
	x0, y0 := s.apply(x, y)
	x1, y1 := s.apply(x+w, y+h)
	if x0 <= 0 && y0 <= 0 && x1 >= float64(s.Width) && y1 >= float64(s.Height) {
		s.body.Reset()
		s.defs.Reset()
		s.filters = make(map[string]string)
	}
}

func (s *SVG) FillRect(x, y, w, h float64) {
	fmt.Fprintf(&s.body, `<rect x="%s" y="%s" width="%s" height="%s" fill="%s"%s%s/>`+"\n",
		num(x), num(y), num(w), num(h), s.cur.fill, s.opacity("fill-opacity", s.cur.fillAlpha), s.attrs())
}

func (s *SVG) BeginPath() { s.path.Reset() }

func (s *SVG) MoveTo(x, y float64) { fmt.Fprintf(&s.path, "M%s %s ", num(x), num(y)) }

func (s *SVG) LineTo(x, y float64) { fmt.Fprintf(&s.path, "L%s %s ", num(x), num(y)) }

func (s *SVG) BezierCurveTo(cp1x, cp1y, cp2x, cp2y, x, y float64) {
	fmt.Fprintf(&s.path, "C%s %s %s %s %s %s ", num(cp1x), num(cp1y), num(cp2x), num(cp2y), num(x), num(y))
}

// Arc appends a clockwise arc. Sweeps of a full turn or more become two
// half-circle arcs, since a single SVG arc cannot close on itself.
func (s *SVG) Arc(x, y, radius, startAngle, endAngle float64) {
	sx, sy := x+radius*math.Cos(startAngle), y+radius*math.Sin(startAngle)
	r := num(radius)
	if s.path.Len() == 0 {
		fmt.Fprintf(&s.path, "M%s %s ", num(sx), num(sy))
	} else {
		fmt.Fprintf(&s.path, "L%s %s ", num(sx), num(sy))
	}

	sweep := endAngle - startAngle
	if sweep >= 2*math.Pi {
		mx, my := x-radius*math.Cos(startAngle), y-radius*math.Sin(startAngle)
		fmt.Fprintf(&s.path, "A%s %s 0 1 1 %s %s A%s %s 0 1 1 %s %s Z ",
			r, r, num(mx), num(my), r, r, num(sx), num(sy))
		return
	}
	if sweep < 0 {
		sweep = math.Mod(sweep, 2*math.Pi) + 2*math.Pi
	}
	ex, ey := x+radius*math.Cos(startAngle+sweep), y+radius*math.Sin(startAngle+sweep)
	large := 0
	if sweep > math.Pi {
		large = 1
	}
	fmt.Fprintf(&s.path, "A%s %s 0 %d 1 %s %s ", r, r, large, num(ex), num(ey))
}

func (s *SVG) Fill() {
	if s.path.Len() == 0 {
		return
	}
	fmt.Fprintf(&s.body, `<path d="%s" fill="%s"%s%s/>`+"\n",
		strings.TrimSpace(s.path.String()), s.cur.fill, s.opacity("fill-opacity", s.cur.fillAlpha), s.attrs())
}

func (s *SVG) Stroke() {
	if s.path.Len() == 0 {
		return
	}
	fmt.Fprintf(&s.body, `<path d="%s" fill="none" stroke="%s" stroke-width="%s" stroke-linecap="round"%s%s/>`+"\n",
		strings.TrimSpace(s.path.String()), s.cur.stroke, num(s.cur.lineWidth),
		s.opacity("stroke-opacity", s.cur.strokeAlpha), s.attrs())
}

func (s *SVG) SetFillColor(c color.Color) {
	s.cur.fill, s.cur.fillAlpha = hexAlpha(c)
}

func (s *SVG) SetStrokeColor(c color.Color) {
	s.cur.stroke, s.cur.strokeAlpha = hexAlpha(c)
}

func (s *SVG) SetFillGradient(g surface.Gradient) {
	if sg, ok := g.(*svgGradient); ok {
		s.cur.fill, s.cur.fillAlpha = s.defineGradient(sg), 1
	}
}

func (s *SVG) SetStrokeGradient(g surface.Gradient) {
	if sg, ok := g.(*svgGradient); ok {
		s.cur.stroke, s.cur.strokeAlpha = s.defineGradient(sg), 1
	}
}

func (s *SVG) SetLineWidth(w float64)     { s.cur.lineWidth = w }
func (s *SVG) SetGlobalAlpha(a float64)   { s.cur.alpha = a }
func (s *SVG) SetShadowBlur(blur float64) { s.cur.shadowBlur = blur }

func (s *SVG) SetShadowColor(c color.Color) {
	s.cur.shadowColor = color.NRGBAModel.Convert(c).(color.NRGBA)
}

func (s *SVG) CreateLinearGradient(x0, y0, x1, y1 float64) surface.Gradient {
	return &svgGradient{linear: true, coords: [6]float64{x0, y0, x1, y1}}
}

func (s *SVG) CreateRadialGradient(x0, y0, r0, x1, y1, r1 float64) surface.Gradient {
	return &svgGradient{coords: [6]float64{x0, y0, r0, x1, y1, r1}}
}

type gradientStop struct {
	offset float64
	color  color.Color
}

type svgGradient struct {
	linear bool
	coords [6]float64
	stops  []gradientStop
}

func (g *svgGradient) AddColorStop(offset float64, c color.Color) {
	g.stops = append(g.stops, gradientStop{offset, c})
}

func (s *SVG) defineGradient(g *svgGradient) string {
	s.nextID++
	id := fmt.Sprintf("g%d", s.nextID)
	c := g.coords
	if g.linear {
		fmt.Fprintf(&s.defs, `<linearGradient id="%s" gradientUnits="userSpaceOnUse" x1="%s" y1="%s" x2="%s" y2="%s">`,
			id, num(c[0]), num(c[1]), num(c[2]), num(c[3]))
	} else {
		fmt.Fprintf(&s.defs, `<radialGradient id="%s" gradientUnits="userSpaceOnUse" fx="%s" fy="%s" cx="%s" cy="%s" r="%s">`,
			id, num(c[0]), num(c[1]), num(c[3]), num(c[4]), num(c[5]))
	}
	for _, st := range g.stops {
		hex, a := hexAlpha(st.color)
		fmt.Fprintf(&s.defs, `<stop offset="%s" stop-color="%s" stop-opacity="%s"/>`, num(st.offset), hex, num(a))
	}
	if g.linear {
		s.defs.WriteString("</linearGradient>\n")
	} else {
		s.defs.WriteString("</radialGradient>\n")
	}
	return "url(#" + id + ")"
}

// attrs renders the transform and drop-shadow filter shared by every element.
func (s *SVG) attrs() string {
	var b strings.Builder
	if t := s.cur.transform; t != [6]float64{1, 0, 0, 1, 0, 0} {
		fmt.Fprintf(&b, ` transform="matrix(%s %s %s %s %s %s)"`, num(t[0]), num(t[1]), num(t[2]), num(t[3]), num(t[4]), num(t[5]))
	}
	if s.cur.shadowBlur > 0 && s.cur.shadowColor.A > 0 {
		fmt.Fprintf(&b, ` filter="url(#%s)"`, s.filter())
	}
	return b.String()
}

func (s *SVG) filter() string {
	sc := s.cur.shadowColor
	key := fmt.Sprintf("%g/%d/%d/%d/%d", s.cur.shadowBlur, sc.R, sc.G, sc.B, sc.A)
	if id, ok := s.filters[key]; ok {
		return id
	}
	s.nextID++
	id := fmt.Sprintf("f%d", s.nextID)
	s.filters[key] = id
	fmt.Fprintf(&s.defs, `<filter id="%s" x="-50%%" y="-50%%" width="200%%" height="200%%"><feDropShadow dx="0" dy="0" stdDeviation="%s" flood-color="#%02x%02x%02x" flood-opacity="%s"/></filter>`+"\n",
		id, num(s.cur.shadowBlur/2), sc.R, sc.G, sc.B, num(float64(sc.A)/255))
	return id
}

func (s *SVG) opacity(attr string, a float64) string {
	a *= s.cur.alpha
	if a >= 1 {
		return ""
	}
	return fmt.Sprintf(` %s="%s"`, attr, num(a))
}

func (s *SVG) apply(x, y float64) (float64, float64) {
	t := s.cur.transform
	return t[0]*x + t[2]*y + t[4], t[1]*x + t[3]*y + t[5]
}

// WriteTo writes the complete document.
func (s *SVG) WriteTo(w io.Writer) (int64, error) {
	var b strings.Builder
	fmt.Fprintf(&b, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
`, s.Width, s.Height, s.Width, s.Height)
	if s.defs.Len() > 0 {
		b.WriteString("<defs>\n")
		b.WriteString(s.defs.String())
		b.WriteString("</defs>\n")
	}
	if s.Background != nil {
		hex, a := hexAlpha(s.Background)
		fmt.Fprintf(&b, `<rect width="100%%" height="100%%" fill="%s" fill-opacity="%s"/>`+"\n", hex, num(a))
	}
	if s.Opacity > 0 && s.Opacity < 1 {
		fmt.Fprintf(&b, `<g opacity="%s">`+"\n", num(s.Opacity))
		b.WriteString(s.body.String())
		b.WriteString("</g>\n")
	} else {
		b.WriteString(s.body.String())
	}
	b.WriteString("</svg>\n")
	n, err := io.WriteString(w, b.String())
	return int64(n), err
}

func (s *SVG) String() string {
	var b strings.Builder
	s.WriteTo(&b)
	return b.String()
}

func hexAlpha(c color.Color) (string, float64) {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return fmt.Sprintf("#%02x%02x%02x", n.R, n.G, n.B), float64(n.A) / 255
}

func num(v float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.3f", v), "0"), ".")
}
