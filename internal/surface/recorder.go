package surface

import (
	"errors"
	"image/color"
)

type OpKind int

const (
	OpClearRect OpKind = iota
	OpFillRect
	OpFill
	OpStroke
)

func (k OpKind) String() string {
	switch k {
	case OpClearRect:
		return "clearRect"
	case OpFillRect:
		return "fillRect"
	case OpFill:
		return "fill"
	case OpStroke:
		return "stroke"
	}
	return "unknown"
}

// PathCmd is one recorded path command: 'M', 'L', 'C' or 'A'.
type PathCmd struct {
	Verb byte
	Args []float64
}

// Op is a recorded draw with the state that was in effect when it ran.
type Op struct {
	Kind        OpKind
	Rect        [4]float64
	Path        []PathCmd
	Color       color.Color
	Gradient    bool
	GlobalAlpha float64
	LineWidth   float64
	ShadowBlur  float64
	ShadowColor color.Color
	Transform   [6]float64
}

type recorderState struct {
	transform   [6]float64
	fill        color.Color
	fillGrad    bool
	stroke      color.Color
	strokeGrad  bool
	alpha       float64
	lineWidth   float64
	shadowBlur  float64
	shadowColor color.Color
}

// Recorder is a Context that records draw ops. It doubles as an Acquirer that
// hands out itself, so a Surface can be attached to it repeatedly.
type Recorder struct {
	Width, Height int
	Acquisitions  int
	// Fail makes Acquire report an unavailable context.
	Fail bool

	ops   []Op
	path  []PathCmd
	cur   recorderState
	stack []recorderState
}

func NewRecorder() *Recorder {
	r := &Recorder{}
	r.cur = defaultRecorderState()
	return r
}

func defaultRecorderState() recorderState {
	return recorderState{
		transform:   [6]float64{1, 0, 0, 1, 0, 0},
		fill:        color.Black,
		stroke:      color.Black,
		alpha:       1,
		lineWidth:   1,
		shadowColor: color.Transparent,
	}
}

func (r *Recorder) Acquire(width, height int) (Context, error) {
	if r.Fail {
		return nil, errors.New("recorder: acquisition disabled")
	}
	r.Width, r.Height = width, height
	r.Acquisitions++
	r.cur = defaultRecorderState()
	r.stack = r.stack[:0]
	r.path = r.path[:0]
	return r, nil
}

// Ops returns the recorded ops in order.
func (r *Recorder) Ops() []Op { return r.ops }

// Count returns the number of recorded ops of the given kind.
func (r *Recorder) Count(kind OpKind) int {
	n := 0
	for _, op := range r.ops {
		if op.Kind == kind {
			n++
		}
	}
	return n
}

// Reset discards recorded ops but keeps the drawing state.
func (r *Recorder) Reset() { r.ops = r.ops[:0] }

// Transform returns the current matrix as (a, b, c, d, e, f).
func (r *Recorder) Transform() [6]float64 { return r.cur.transform }

func (r *Recorder) SetTransform(a, b, c, d, e, f float64) {
	r.cur.transform = [6]float64{a, b, c, d, e, f}
}

func (r *Recorder) Scale(x, y float64) {
	t := &r.cur.transform
	t[0] *= x
	t[1] *= x
	t[2] *= y
	t[3] *= y
}

func (r *Recorder) Save() { r.stack = append(r.stack, r.cur) }

func (r *Recorder) Restore() {
	if len(r.stack) == 0 {
		return
	}
	r.cur = r.stack[len(r.stack)-1]
	r.stack = r.stack[:len(r.stack)-1]
}

func (r *Recorder) ClearRect(x, y, w, h float64) {
	r.ops = append(r.ops, r.op(OpClearRect, [4]float64{x, y, w, h}))
}

func (r *Recorder) FillRect(x, y, w, h float64) {
	op := r.op(OpFillRect, [4]float64{x, y, w, h})
	op.Color, op.Gradient = r.cur.fill, r.cur.fillGrad
	r.ops = append(r.ops, op)
}

func (r *Recorder) BeginPath() { r.path = r.path[:0] }

func (r *Recorder) MoveTo(x, y float64) {
	r.path = append(r.path, PathCmd{Verb: 'M', Args: []float64{x, y}})
}

func (r *Recorder) LineTo(x, y float64) {
	r.path = append(r.path, PathCmd{Verb: 'L', Args: []float64{x, y}})
}

func (r *Recorder) BezierCurveTo(cp1x, cp1y, cp2x, cp2y, x, y float64) {
	r.path = append(r.path, PathCmd{Verb: 'C', Args: []float64{cp1x, cp1y, cp2x, cp2y, x, y}})
}

func (r *Recorder) Arc(x, y, radius, startAngle, endAngle float64) {
	r.path = append(r.path, PathCmd{Verb: 'A', Args: []float64{x, y, radius, startAngle, endAngle}})
}

func (r *Recorder) Fill() {
	op := r.op(OpFill, [4]float64{})
	op.Path = r.snapshotPath()
	op.Color, op.Gradient = r.cur.fill, r.cur.fillGrad
	r.ops = append(r.ops, op)
}

func (r *Recorder) Stroke() {
	op := r.op(OpStroke, [4]float64{})
	op.Path = r.snapshotPath()
	op.Color, op.Gradient = r.cur.stroke, r.cur.strokeGrad
	r.ops = append(r.ops, op)
}

func (r *Recorder) SetFillColor(c color.Color)   { r.cur.fill, r.cur.fillGrad = c, false }
func (r *Recorder) SetStrokeColor(c color.Color) { r.cur.stroke, r.cur.strokeGrad = c, false }

func (r *Recorder) SetFillGradient(g Gradient) {
	r.cur.fill, r.cur.fillGrad = firstStop(g), true
}

func (r *Recorder) SetStrokeGradient(g Gradient) {
	r.cur.stroke, r.cur.strokeGrad = firstStop(g), true
}

func (r *Recorder) SetLineWidth(w float64)       { r.cur.lineWidth = w }
func (r *Recorder) SetGlobalAlpha(a float64)     { r.cur.alpha = a }
func (r *Recorder) SetShadowBlur(blur float64)   { r.cur.shadowBlur = blur }
func (r *Recorder) SetShadowColor(c color.Color) { r.cur.shadowColor = c }

func (r *Recorder) CreateLinearGradient(x0, y0, x1, y1 float64) Gradient {
	return &RecordedGradient{Linear: true, Coords: []float64{x0, y0, x1, y1}}
}

func (r *Recorder) CreateRadialGradient(x0, y0, r0, x1, y1, r1 float64) Gradient {
	return &RecordedGradient{Coords: []float64{x0, y0, r0, x1, y1, r1}}
}

// RecordedGradient keeps its stops for inspection.
type RecordedGradient struct {
	Linear bool
	Coords []float64
	Stops  []GradientStop
}

type GradientStop struct {
	Offset float64
	Color  color.Color
}

func (g *RecordedGradient) AddColorStop(offset float64, c color.Color) {
	g.Stops = append(g.Stops, GradientStop{Offset: offset, Color: c})
}

func firstStop(g Gradient) color.Color {
	if rg, ok := g.(*RecordedGradient); ok && len(rg.Stops) > 0 {
		return rg.Stops[0].Color
	}
	return color.Transparent
}

func (r *Recorder) op(kind OpKind, rect [4]float64) Op {
	return Op{
		Kind:        kind,
		Rect:        rect,
		GlobalAlpha: r.cur.alpha,
		LineWidth:   r.cur.lineWidth,
		ShadowBlur:  r.cur.shadowBlur,
		ShadowColor: r.cur.shadowColor,
		Transform:   r.cur.transform,
	}
}

func (r *Recorder) snapshotPath() []PathCmd {
	p := make([]PathCmd, len(r.path))
	copy(p, r.path)
	return p
}
