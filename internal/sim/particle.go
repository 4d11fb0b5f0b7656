package sim

import (
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Particle is one entity of the pool. Positions and sizes are in logical
// pixels, velocities in logical pixels per tick.
type Particle struct {
	X, Y    float64
	Size    float64
	VX, VY  float64
	Opacity float64
	Color   color.NRGBA

	// paint is Color boxed once, so draws do not allocate.
	paint color.Color
}

var (
	Gold500 = mustHex("#fabd00")
	Gold300 = mustHex("#fcd966")

	// Palette is the two-shade background palette.
	Palette = [2]color.NRGBA{Gold500, Gold300}
)

func mustHex(s string) color.NRGBA {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}
}

// WithAlpha returns c with alpha a in [0,1].
func WithAlpha(c color.NRGBA, a float64) color.NRGBA {
	c.A = alpha8(a)
	return c
}

func alpha8(a float64) uint8 {
	if a <= 0 || math.IsNaN(a) {
		return 0
	}
	if a >= 1 {
		return 255
	}
	return uint8(math.Round(a * 255))
}
