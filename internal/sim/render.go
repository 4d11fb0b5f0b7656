package sim

import (
	"image/color"
	"math"

	"github.com/san-kum/fieldsim/internal/surface"
)

const fullTurn = 2 * math.Pi

// render clears the surface and draws every particle followed by its edges.
// It returns the number of discs and edges drawn.
func (s *Simulator) render(ctx surface.Context) (discs, edges int) {
	s.surf.Clear()

	items := s.pool.items
	if len(items) == 0 {
		return 0, 0
	}

	useGrid := s.grid != nil
	if useGrid {
		s.grid.build(items)
	}

	ctx.SetLineWidth(s.params.LineWidth)
	for i := range items {
		p := &items[i]
		s.disc(ctx, p)
		discs++

		if useGrid {
			edges += s.gridEdges(ctx, i)
		} else {
			for j := range items {
				if j == i {
					continue
				}
				edges += s.edge(ctx, p, &items[j])
			}
		}
	}
	return discs, edges
}

func (s *Simulator) disc(ctx surface.Context, p *Particle) {
	switch s.kind {
	case Background:
		ctx.BeginPath()
		ctx.Arc(p.X, p.Y, p.Size, 0, fullTurn)
		ctx.SetFillColor(p.paint)
		ctx.SetGlobalAlpha(p.Opacity)
		ctx.Fill()
	case MouseFollow:
		ctx.Save()
		ctx.BeginPath()
		ctx.Arc(p.X, p.Y, p.Size, 0, fullTurn)
		ctx.SetFillColor(p.paint)
		ctx.SetShadowColor(s.glow)
		ctx.SetShadowBlur(s.params.GlowBlur)
		ctx.Fill()
		ctx.Restore()
	}
}

// edge strokes p->q when the pair is within link radius and reports whether
// it did.
func (s *Simulator) edge(ctx surface.Context, p, q *Particle) int {
	dx := p.X - q.X
	dy := p.Y - q.Y
	d := math.Sqrt(dx*dx + dy*dy)
	r := s.params.LinkRadius
	if d >= r {
		return 0
	}

	ctx.BeginPath()
	switch s.kind {
	case Background:
		ctx.SetStrokeColor(p.paint)
		ctx.SetGlobalAlpha((r - d) / s.params.BackgroundLinkDiv)
	case MouseFollow:
		ctx.SetStrokeColor(s.linkPaints[alpha8((r-d)/s.params.MouseLinkDiv)])
	}
	ctx.SetLineWidth(s.params.LineWidth)
	ctx.MoveTo(p.X, p.Y)
	ctx.LineTo(q.X, q.Y)
	ctx.Stroke()
	return 1
}

// buildLinkPaints boxes every alpha step of the link colour once.
func buildLinkPaints(base color.NRGBA) [256]color.Color {
	var out [256]color.Color
	for a := range out {
		c := base
		c.A = uint8(a)
		out[a] = c
	}
	return out
}
