package metrics

import "github.com/san-kum/fieldsim/internal/sim"

// Containment is the fraction of ticks on which every particle stayed inside
// [0,width] x [0,height].
type Containment struct {
	name          string
	width, height float64
	violations    int
	samples       int
}

func NewContainment(width, height float64) *Containment {
	return &Containment{
		name:   "containment",
		width:  width,
		height: height,
	}
}

func (c *Containment) Name() string {
	return c.name
}

func (c *Containment) Observe(stats sim.FrameStats, pool []sim.Particle) {
	c.samples++
	for i := range pool {
		p := &pool[i]
		if p.X < 0 || p.X > c.width || p.Y < 0 || p.Y > c.height {
			c.violations++
			break
		}
	}
}

func (c *Containment) Value() float64 {
	if c.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(c.violations)/float64(c.samples)
}

func (c *Containment) Reset() {
	c.violations = 0
	c.samples = 0
}

// Standard returns the metric set attached to headless runs.
func Standard(width, height float64) []sim.Metric {
	return []sim.Metric{
		NewEdgeDensity(),
		NewMeanSpeed(),
		NewPeakVelocity(),
		NewActiveRatio(),
		NewContainment(width, height),
	}
}
