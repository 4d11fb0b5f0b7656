package export

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
)

// Layer is one rendered backing store and the opacity it is composited at.
type Layer struct {
	Image   image.Image
	Opacity float64
}

// Flatten composites layers bottom-first over a solid background. The result
// has the bounds of the first layer.
func Flatten(bg color.Color, layers ...Layer) *image.RGBA {
	if len(layers) == 0 {
		return image.NewRGBA(image.Rect(0, 0, 0, 0))
	}
	bounds := layers[0].Image.Bounds()
	dst := image.NewRGBA(bounds)
	if bg != nil {
		draw.Draw(dst, bounds, image.NewUniform(bg), image.Point{}, draw.Src)
	}
	for _, l := range layers {
		mask := image.NewUniform(color.Alpha{A: alpha8(l.Opacity)})
		draw.DrawMask(dst, bounds, l.Image, l.Image.Bounds().Min, mask, image.Point{}, draw.Over)
	}
	return dst
}

func WritePNG(w io.Writer, img image.Image) error {
	return png.Encode(w, img)
}

func alpha8(a float64) uint8 {
	if a <= 0 {
		return 0
	}
	if a >= 1 {
		return 255
	}
	return uint8(a*255 + 0.5)
}
