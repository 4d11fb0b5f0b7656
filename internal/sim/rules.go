package sim

import "math"

// seed fills the pool with fresh particles for the given bounds.
func seed(kind Kind, items []Particle, w, h float64, rng Rand) {
	for i := range items {
		p := &items[i]
		p.X = rng.Float64() * w
		p.Y = rng.Float64() * h
		p.Size = 1 + rng.Float64()*2

		switch kind {
		case Background:
			p.VX = (rng.Float64() - 0.5) * 0.5
			p.VY = (rng.Float64() - 0.5) * 0.5
			p.Opacity = rng.Float64()*0.5 + 0.2
			if rng.Float64() > 0.5 {
				p.Color = Palette[0]
			} else {
				p.Color = Palette[1]
			}
		case MouseFollow:
			p.VX, p.VY = 0, 0
			p.Opacity = 1
			p.Color = WithAlpha(Gold500, rng.Float64()*0.5+0.2)
		}
		p.box()
	}
}

// repel steps p away from the pointer by a fixed displacement. Velocity is
// left untouched.
func repel(p *Particle, px, py float64, prm *Params) {
	dx := px - p.X
	dy := py - p.Y
	d := math.Sqrt(dx*dx + dy*dy)
	if d < prm.RepelRadius && d > 0 {
		p.X -= dx / d * prm.RepelStep
		p.Y -= dy / d * prm.RepelStep
	}
}

func drift(p *Particle) {
	p.X += p.VX
	p.Y += p.VY
}

// attract pulls p toward the pointer. The force is scaled by dx, dy rather
// than the unit vector, so it peaks near the edge of the attraction radius.
func attract(p *Particle, px, py float64, prm *Params) {
	dx := px - p.X
	dy := py - p.Y
	d := math.Sqrt(dx*dx + dy*dy)
	if d < prm.AttractRadius {
		f := (prm.AttractRadius - d) / prm.AttractDiv
		p.VX += dx * f
		p.VY += dy * f
	}
}

func jitter(p *Particle, amount float64, rng Rand) {
	p.VX += (rng.Float64() - 0.5) * amount
	p.VY += (rng.Float64() - 0.5) * amount
}

func damp(p *Particle, k float64) {
	p.VX *= k
	p.VY *= k
}

// wrap teleports p to the opposite edge. Crossing the low edge lands exactly
// on the high edge.
func wrap(p *Particle, w, h float64) {
	if p.X < 0 {
		p.X = w
	} else if p.X > w {
		p.X = 0
	}
	if p.Y < 0 {
		p.Y = h
	} else if p.Y > h {
		p.Y = 0
	}
}

func (s *Simulator) update(px, py float64, active bool) {
	w, h := s.surf.Bounds()
	prm := &s.params
	items := s.pool.items

	switch s.kind {
	case Background:
		for i := range items {
			p := &items[i]
			if active {
				repel(p, px, py, prm)
			}
			drift(p)
			wrap(p, w, h)
		}
	case MouseFollow:
		for i := range items {
			p := &items[i]
			attract(p, px, py, prm)
			jitter(p, prm.Jitter, s.rng)
			damp(p, prm.Damping)
			drift(p)
			wrap(p, w, h)
		}
	}
}
