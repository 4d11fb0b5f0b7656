package sim

import "image/color"

// Pool is a fixed-capacity particle buffer. Its length never changes after
// allocation; a resize allocates a new pool.
type Pool struct {
	items []Particle
}

func NewPool(n int) *Pool {
	if n < 0 {
		n = 0
	}
	return &Pool{items: make([]Particle, n)}
}

func (p *Pool) Len() int { return len(p.items) }

// Items exposes the buffer for in-place mutation.
func (p *Pool) Items() []Particle { return p.items }

// Load copies src into the pool. The length must match.
func (p *Pool) Load(src []Particle) error {
	if len(src) != len(p.items) {
		return ErrPoolSize
	}
	copy(p.items, src)
	for i := range p.items {
		p.items[i].box()
	}
	return nil
}

// Snapshot returns a copy of the pool.
func (p *Pool) Snapshot() []Particle {
	out := make([]Particle, len(p.items))
	copy(out, p.items)
	return out
}

func (pt *Particle) box() {
	var c color.Color = pt.Color
	pt.paint = c
}
