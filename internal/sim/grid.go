package sim

import (
	"math"

	"github.com/san-kum/fieldsim/internal/surface"
)

// grid is a uniform bucket grid with cell size equal to the link radius, so
// every linked pair lies in the same or an adjacent cell. Buckets are
// intrusive linked lists over particle indices; nothing is allocated per tick.
type grid struct {
	cell       float64
	cols, rows int
	head       []int32
	next       []int32
	cellOf     []int32
}

func newGrid(w, h, cell float64, n int) *grid {
	cols := int(math.Ceil(w/cell)) + 1
	rows := int(math.Ceil(h/cell)) + 1
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	return &grid{
		cell:   cell,
		cols:   cols,
		rows:   rows,
		head:   make([]int32, cols*rows),
		next:   make([]int32, n),
		cellOf: make([]int32, n),
	}
}

func (g *grid) coords(x, y float64) (int, int) {
	cx := int(math.Floor(x / g.cell))
	cy := int(math.Floor(y / g.cell))
	if cx < 0 {
		cx = 0
	} else if cx >= g.cols {
		cx = g.cols - 1
	}
	if cy < 0 {
		cy = 0
	} else if cy >= g.rows {
		cy = g.rows - 1
	}
	return cx, cy
}

func (g *grid) build(items []Particle) {
	for i := range g.head {
		g.head[i] = -1
	}
	for i := range items {
		cx, cy := g.coords(items[i].X, items[i].Y)
		c := int32(cy*g.cols + cx)
		g.cellOf[i] = c
		g.next[i] = g.head[c]
		g.head[c] = int32(i)
	}
}

// gridEdges draws the edges from particle i to every linked neighbour.
func (s *Simulator) gridEdges(ctx surface.Context, i int) int {
	g := s.grid
	items := s.pool.items
	p := &items[i]

	c := int(g.cellOf[i])
	cx, cy := c%g.cols, c/g.cols
	n := 0
	for y := cy - 1; y <= cy+1; y++ {
		if y < 0 || y >= g.rows {
			continue
		}
		for x := cx - 1; x <= cx+1; x++ {
			if x < 0 || x >= g.cols {
				continue
			}
			for j := g.head[y*g.cols+x]; j >= 0; j = g.next[j] {
				if int(j) == i {
					continue
				}
				n += s.edge(ctx, p, &items[j])
			}
		}
	}
	return n
}
