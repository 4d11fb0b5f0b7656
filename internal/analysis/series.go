package analysis

import (
	"math"

	"github.com/san-kum/fieldsim/internal/sim"
)

func EdgeSeries(frames []sim.FrameStats) []float64 {
	out := make([]float64, len(frames))
	for i, f := range frames {
		out[i] = float64(f.Edges)
	}
	return out
}

func DiscSeries(frames []sim.FrameStats) []float64 {
	out := make([]float64, len(frames))
	for i, f := range frames {
		out[i] = float64(f.Discs)
	}
	return out
}

// ActiveSeries is 1 on ticks with an active pointer and 0 otherwise.
func ActiveSeries(frames []sim.FrameStats) []float64 {
	out := make([]float64, len(frames))
	for i, f := range frames {
		if f.Active {
			out[i] = 1
		}
	}
	return out
}

type Summary struct {
	N        int
	Mean     float64
	StdDev   float64
	Min, Max float64
}

func Summarize(data []float64) Summary {
	s := Summary{N: len(data)}
	if len(data) == 0 {
		return s
	}
	s.Min, s.Max = math.Inf(1), math.Inf(-1)
	for _, v := range data {
		s.Mean += v
		s.Min = math.Min(s.Min, v)
		s.Max = math.Max(s.Max, v)
	}
	s.Mean /= float64(len(data))
	for _, v := range data {
		d := v - s.Mean
		s.StdDev += d * d
	}
	s.StdDev = math.Sqrt(s.StdDev / float64(len(data)))
	return s
}
