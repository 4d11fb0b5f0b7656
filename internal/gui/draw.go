package gui

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/san-kum/fieldsim/internal/host"
	"github.com/san-kum/fieldsim/internal/surface"
)

// Draw composites the layers bottom first, each scaled by its opacity.
func (w *Window) Draw(screen *ebiten.Image) {
	screen.Fill(ColBg)

	live := make(map[*host.Layer]bool)
	for _, l := range w.Layers() {
		live[l] = true
		img := w.upload(l)
		if img == nil {
			continue
		}
		op := &ebiten.DrawImageOptions{}
		op.ColorScale.ScaleAlpha(float32(l.Opacity()))
		screen.DrawImage(img, op)
	}

	for l, img := range w.images {
		if !live[l] {
			img.Deallocate()
			delete(w.images, l)
		}
	}
}

// upload copies the layer's raster into its ebiten image, reallocating the
// image when the backing store was resized.
func (w *Window) upload(l *host.Layer) *ebiten.Image {
	r, ok := l.Surface().Context().(*surface.Raster)
	if !ok {
		return nil
	}
	src := r.Image()
	b := src.Bounds()

	img := w.images[l]
	if img == nil || img.Bounds().Dx() != b.Dx() || img.Bounds().Dy() != b.Dy() {
		if img != nil {
			img.Deallocate()
		}
		img = ebiten.NewImage(b.Dx(), b.Dy())
		w.images[l] = img
	}
	// image.RGBA is premultiplied, as WritePixels expects.
	img.WritePixels(src.Pix)
	return img
}
