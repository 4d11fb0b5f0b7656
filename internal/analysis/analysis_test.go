package analysis

import (
	"math"
	"testing"

	"github.com/san-kum/fieldsim/internal/sim"
)

func TestDominantFindsSine(t *testing.T) {
	const (
		n    = 256
		rate = 64.0
		freq = 4.0
	)
	data := make([]float64, n)
	for i := range data {
		data[i] = 100 + 10*math.Sin(2*math.Pi*freq*float64(i)/rate)
	}

	ps := PowerSpectrum(data)
	if len(ps) != n/2 {
		t.Fatalf("expected %d bins, got %d", n/2, len(ps))
	}
	got, mag := Dominant(ps, rate)
	if math.Abs(got-freq) > rate/n {
		t.Errorf("dominant frequency = %f, want %f", got, freq)
	}
	if mag <= 0 {
		t.Error("expected positive magnitude")
	}
}

func TestPowerSpectrumRemovesMean(t *testing.T) {
	data := make([]float64, 64)
	for i := range data {
		data[i] = 42
	}
	for i, v := range PowerSpectrum(data) {
		if v > 1e-9 {
			t.Fatalf("bin %d = %f for a constant series", i, v)
		}
	}
}

func TestShortSeries(t *testing.T) {
	if ps := PowerSpectrum([]float64{1}); len(ps) != 0 {
		t.Errorf("expected empty spectrum, got %v", ps)
	}
	if f, m := Dominant(nil, 60); f != 0 || m != 0 {
		t.Errorf("expected zero, got %f, %f", f, m)
	}
}

func TestSeriesAndSummary(t *testing.T) {
	frames := []sim.FrameStats{
		{Discs: 50, Edges: 10, Active: true},
		{Discs: 50, Edges: 20},
		{Discs: 50, Edges: 30},
	}
	s := Summarize(EdgeSeries(frames))
	if s.N != 3 || s.Mean != 20 || s.Min != 10 || s.Max != 30 {
		t.Errorf("summary = %+v", s)
	}
	if math.Abs(s.StdDev-math.Sqrt(200.0/3)) > 1e-9 {
		t.Errorf("stddev = %f", s.StdDev)
	}
	if a := ActiveSeries(frames); a[0] != 1 || a[1] != 0 {
		t.Errorf("active series = %v", a)
	}
	if d := DiscSeries(frames); d[2] != 50 {
		t.Errorf("disc series = %v", d)
	}
}
