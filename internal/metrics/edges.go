package metrics

import "github.com/san-kum/fieldsim/internal/sim"

// EdgeDensity is the mean fraction of ordered pairs linked per tick.
type EdgeDensity struct {
	name    string
	sum     float64
	samples int
}

func NewEdgeDensity() *EdgeDensity {
	return &EdgeDensity{name: "edge_density"}
}

func (e *EdgeDensity) Name() string { return e.name }

func (e *EdgeDensity) Observe(stats sim.FrameStats, pool []sim.Particle) {
	n := len(pool)
	if n < 2 {
		e.samples++
		return
	}
	e.sum += float64(stats.Edges) / float64(n*(n-1))
	e.samples++
}

func (e *EdgeDensity) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.sum / float64(e.samples)
}

func (e *EdgeDensity) Reset() {
	e.sum = 0
	e.samples = 0
}

// ActiveRatio is the fraction of ticks that saw an active pointer.
type ActiveRatio struct {
	name    string
	active  int
	samples int
}

func NewActiveRatio() *ActiveRatio {
	return &ActiveRatio{name: "active_ratio"}
}

func (a *ActiveRatio) Name() string { return a.name }

func (a *ActiveRatio) Observe(stats sim.FrameStats, pool []sim.Particle) {
	if stats.Active {
		a.active++
	}
	a.samples++
}

func (a *ActiveRatio) Value() float64 {
	if a.samples == 0 {
		return 0
	}
	return float64(a.active) / float64(a.samples)
}

func (a *ActiveRatio) Reset() {
	a.active = 0
	a.samples = 0
}
