// Package surface owns the drawing target of a particle layer.
//
// A [Surface] sizes its backing store in device pixels while every draw call
// addresses logical (CSS) pixels:
//
//   - [Context]: the 2D drawing contract (paths, arcs, gradients, shadows, alpha)
//   - [Acquirer]: yields a [Context] sized to a backing store
//   - [Raster]: software-rendered context backed by an [image.RGBA]
//   - [Recorder]: context that records draw ops instead of rasterising them
//
// # Device Pixel Ratio
//
// Attach resets the transform and scales it by the device pixel ratio, so a
// disc of radius 5 drawn at DPR 2 covers 20 device pixels across.
package surface
