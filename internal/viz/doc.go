// Package viz hosts particle layers in a terminal.
//
// The package implements a Bubble Tea program around a headless host loop:
//
//   - [Model]: the program; one tick advances the mounted layer by one frame
//   - [Braille]: a drawing context that rasterises onto braille cells, 2x4
//     dots per cell, one dot per device pixel
//   - [Canvas]: the braille cell grid with per-cell colour
//   - Theme selection with 6 built-in color schemes
//
// Each dot covers [DefaultDotSize] logical pixels, so the layer sees a
// viewport of cols*2*k by rows*4*k pixels at a device pixel ratio of 1/k.
//
// # Key Bindings
//
//	Space - Pause/Resume
//	V     - Cycle layer variant (background, mouse, trail)
//	R     - Remount with the next seed
//	T     - Cycle color themes
//	Q/Esc - Quit
package viz
