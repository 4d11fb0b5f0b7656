package metrics

import (
	"math"

	"github.com/san-kum/fieldsim/internal/sim"
)

// MeanSpeed averages the pool's mean speed over all observed ticks.
type MeanSpeed struct {
	name    string
	sum     float64
	samples int
}

func NewMeanSpeed() *MeanSpeed {
	return &MeanSpeed{name: "mean_speed"}
}

func (m *MeanSpeed) Name() string { return m.name }

func (m *MeanSpeed) Observe(stats sim.FrameStats, pool []sim.Particle) {
	if len(pool) == 0 {
		return
	}
	total := 0.0
	for i := range pool {
		total += math.Hypot(pool[i].VX, pool[i].VY)
	}
	m.sum += total / float64(len(pool))
	m.samples++
}

func (m *MeanSpeed) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *MeanSpeed) Reset() {
	m.sum = 0
	m.samples = 0
}

// PeakVelocity is the largest single velocity component seen during a run.
type PeakVelocity struct {
	name string
	peak float64
}

func NewPeakVelocity() *PeakVelocity {
	return &PeakVelocity{name: "peak_velocity"}
}

func (p *PeakVelocity) Name() string { return p.name }

func (p *PeakVelocity) Observe(stats sim.FrameStats, pool []sim.Particle) {
	for i := range pool {
		p.peak = math.Max(p.peak, math.Max(math.Abs(pool[i].VX), math.Abs(pool[i].VY)))
	}
}

func (p *PeakVelocity) Value() float64 { return p.peak }

func (p *PeakVelocity) Reset() { p.peak = 0 }
