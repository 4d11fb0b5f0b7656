package gui

import (
	"errors"
	"image/color"
	"log/slog"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/san-kum/fieldsim/internal/config"
	"github.com/san-kum/fieldsim/internal/host"
	"github.com/san-kum/fieldsim/internal/sim"
	"github.com/san-kum/fieldsim/internal/surface"
)

// ColBg is the page colour behind every layer.
var ColBg = color.RGBA{R: 12, G: 10, B: 9, A: 255}

// LayerSpec is one layer to mount once the window knows its size.
type LayerSpec struct {
	Variant host.Variant
	Opacity float64
	SimOpts []sim.Option
}

// Window is an ebiten game that doubles as a host.Host. Frame requests,
// subscriptions and layer stacking come from an embedded host.Loop, advanced
// once per ebiten Update; the clock is the wall clock.
type Window struct {
	*host.Loop

	specs   []LayerSpec
	window  time.Duration
	mounted bool

	dpr            float64
	devW, devH     int
	lastCX, lastCY int
	paused         bool

	images map[*host.Layer]*ebiten.Image
}

// NewWindow prepares a window that mounts specs on its first update.
func NewWindow(vp host.Viewport, window time.Duration, specs ...LayerSpec) *Window {
	if vp.DPR <= 0 {
		vp.DPR = 1
	}
	return &Window{
		Loop:   host.NewLoop(vp, surface.RasterAcquirer),
		specs:  specs,
		window: window,
		dpr:    vp.DPR,
		lastCX: -1,
		lastCY: -1,
		images: make(map[*host.Layer]*ebiten.Image),
	}
}

// Now overrides the loop's synthetic clock so pointer activity follows real
// time.
func (w *Window) Now() time.Time { return time.Now() }

// Layout renders at device resolution so each layer's backing store maps
// one-to-one onto screen pixels.
func (w *Window) Layout(outsideWidth, outsideHeight int) (int, int) {
	if m := ebiten.Monitor(); m != nil {
		w.dpr = m.DeviceScaleFactor()
	}
	w.devW = int(float64(outsideWidth) * w.dpr)
	w.devH = int(float64(outsideHeight) * w.dpr)
	return w.devW, w.devH
}

func (w *Window) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		w.Close()
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		w.paused = !w.paused
	}

	w.syncViewport()
	if !w.mounted {
		w.mountAll()
	}

	cx, cy := ebiten.CursorPosition()
	if cx != w.lastCX || cy != w.lastCY {
		w.lastCX, w.lastCY = cx, cy
		w.Move(float64(cx)/w.dpr, float64(cy)/w.dpr)
	}

	if !w.paused {
		w.Advance()
	}
	return nil
}

// syncViewport forwards a Layout change to the layers as a resize.
func (w *Window) syncViewport() {
	if w.devW == 0 || w.devH == 0 {
		return
	}
	vp := host.Viewport{
		Width:  float64(w.devW) / w.dpr,
		Height: float64(w.devH) / w.dpr,
		DPR:    w.dpr,
	}
	if vp != w.Viewport() {
		w.Resize(vp)
	}
}

// mountAll mounts every spec. A layer whose context cannot be acquired is
// logged and skipped; the rest of the window keeps running.
func (w *Window) mountAll() {
	w.mounted = true
	for _, spec := range w.specs {
		_, err := host.Mount(w, spec.Variant, spec.Opacity,
			host.WithSimOptions(spec.SimOpts...),
			host.WithActiveWindow(w.window),
		)
		if err != nil {
			slog.Warn("layer not mounted", "variant", spec.Variant, "err", err)
		}
	}
}

// Close unmounts every layer.
func (w *Window) Close() {
	for _, l := range w.Layers() {
		l.Unmount()
	}
	for l, img := range w.images {
		img.Deallocate()
		delete(w.images, l)
	}
}

// Run opens a window sized from cfg and blocks until it is closed.
func Run(cfg *config.Config, specs ...LayerSpec) error {
	ebiten.SetWindowSize(int(cfg.Viewport.Width), int(cfg.Viewport.Height))
	ebiten.SetWindowTitle("fieldsim - Space: pause, Esc/Q: quit")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(cfg.FPS)

	w := NewWindow(cfg.HostViewport(), cfg.Physics.ActiveWindow, specs...)
	if err := ebiten.RunGame(w); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}
