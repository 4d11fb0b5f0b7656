package export

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"io"

	"github.com/lucasb-eyer/go-colorful"
)

var ErrNoFrames = errors.New("export: no frames recorded")

// GIFRecorder collects frames for an animated GIF. Frames are quantised to a
// palette of ramps from the background to each accent colour.
type GIFRecorder struct {
	// Delay is the per-frame delay in hundredths of a second.
	Delay   int
	palette color.Palette
	frames  []*image.Paletted
}

func NewGIFRecorder(delay int, bg color.Color, accents ...color.Color) *GIFRecorder {
	return &GIFRecorder{Delay: delay, palette: RampPalette(bg, accents...)}
}

// RampPalette builds a 256-entry palette of equal-length ramps, blended in
// Lab space, from bg to every accent.
func RampPalette(bg color.Color, accents ...color.Color) color.Palette {
	base, _ := colorful.MakeColor(bg)
	if len(accents) == 0 {
		accents = []color.Color{color.White}
	}
	steps := 256 / len(accents)
	p := make(color.Palette, 0, 256)
	for _, a := range accents {
		target, _ := colorful.MakeColor(a)
		for i := 0; i < steps; i++ {
			t := float64(i) / float64(steps-1)
			r, g, b := base.BlendLab(target, t).Clamped().RGB255()
			p = append(p, color.RGBA{R: r, G: g, B: b, A: 255})
		}
	}
	return p
}

func (g *GIFRecorder) Add(img image.Image) {
	b := img.Bounds()
	frame := image.NewPaletted(b, g.palette)
	draw.Draw(frame, b, img, b.Min, draw.Src)
	g.frames = append(g.frames, frame)
}

func (g *GIFRecorder) Len() int { return len(g.frames) }

func (g *GIFRecorder) Encode(w io.Writer) error {
	if len(g.frames) == 0 {
		return ErrNoFrames
	}
	delays := make([]int, len(g.frames))
	for i := range delays {
		delays[i] = g.Delay
	}
	return gif.EncodeAll(w, &gif.GIF{Image: g.frames, Delay: delays})
}
