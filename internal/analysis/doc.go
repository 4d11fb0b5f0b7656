// Package analysis summarises per-tick series recorded from a particle
// layer.
//
//   - [EdgeSeries], [DiscSeries], [ActiveSeries]: extract a series from frames
//   - [Summarize]: mean, spread and range of a series
//   - [PowerSpectrum]: Hann-windowed magnitude spectrum of a series
//   - [Dominant]: strongest non-DC frequency of a spectrum
//
// # Edge pulsing
//
// Drifting particles enter and leave each other's link radius, so the edge
// count oscillates. Its dominant frequency in frames per second:
//
//	ps := analysis.PowerSpectrum(analysis.EdgeSeries(frames))
//	hz, _ := analysis.Dominant(ps, 60)
package analysis
