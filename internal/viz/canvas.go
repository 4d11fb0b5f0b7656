package viz

import (
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const blank = 0x2800

// Canvas is a grid of braille cells. Each cell holds 2x4 dots and remembers
// the colour of the last dot set in it.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
	Colors        [][]color.Color
}

func NewCanvas(w, h int) *Canvas {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
		Colors: make([][]color.Color, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
		c.Colors[i] = make([]color.Color, w)
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
		}
	}
	return c
}

// Dots returns the canvas size in dots.
func (c *Canvas) Dots() (int, int) { return c.Width * 2, c.Height * 4 }

// Set sets a dot at (x, y) in dot coordinates. A nil colour keeps the cell's
// current one.
func (c *Canvas) Set(x, y int, col color.Color) {
	if x < 0 || y < 0 {
		return
	}

	cx := x / 2
	row := y / 4
	if cx >= c.Width || row >= c.Height {
		return
	}

	c.Grid[row][cx] |= rune(pixelMap[y%4][x%2])
	if col != nil {
		c.Colors[row][cx] = col
	}
}

// IsSet reports whether the dot at (x, y) is lit.
func (c *Canvas) IsSet(x, y int) bool {
	if x < 0 || y < 0 || x/2 >= c.Width || y/4 >= c.Height {
		return false
	}
	return c.Grid[y/4][x/2]&rune(pixelMap[y%4][x%2]) != 0
}

// Unset clears a dot.
func (c *Canvas) Unset(x, y int) {
	if x < 0 || y < 0 {
		return
	}

	cx := x / 2
	row := y / 4
	if cx >= c.Width || row >= c.Height {
		return
	}

	mask := ^rune(pixelMap[y%4][x%2])
	c.Grid[row][cx] &= mask
	if c.Grid[row][cx] < blank {
		c.Grid[row][cx] = blank
	}
	if c.Grid[row][cx] == blank {
		c.Colors[row][cx] = nil
	}
}

// Clear resets the canvas
func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
			c.Colors[i][j] = nil
		}
	}
}

// Lit counts the lit dots.
func (c *Canvas) Lit() int {
	n := 0
	for _, row := range c.Grid {
		for _, r := range row {
			for bits := r - blank; bits != 0; bits &= bits - 1 {
				n++
			}
		}
	}
	return n
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int, col color.Color) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0, col)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

// MinBlend is the lowest weight a dot colour gets against the background, so
// faint strokes stay legible in a terminal.
const MinBlend = 0.35

// ColorString renders the canvas with each run of equally coloured cells
// wrapped in one foreground style. A cell colour is blended against bg by its
// alpha; cells without a colour use fallback.
func (c *Canvas) ColorString(fallback, bg lipgloss.Color) string {
	back, err := colorful.Hex(string(bg))
	if err != nil {
		back = colorful.Color{}
	}
	var b strings.Builder
	for i, row := range c.Grid {
		start := 0
		for start < len(row) {
			hex := cellHex(c.Colors[i][start], fallback, back)
			end := start + 1
			for end < len(row) && cellHex(c.Colors[i][end], fallback, back) == hex {
				end++
			}
			b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(hex)).Render(string(row[start:end])))
			start = end
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func cellHex(col color.Color, fallback lipgloss.Color, bg colorful.Color) string {
	if col == nil {
		return string(fallback)
	}
	n := color.NRGBAModel.Convert(col).(color.NRGBA)
	if n.A == 0 {
		return string(fallback)
	}
	weight := max(float64(n.A)/255, MinBlend)
	n.A = 255
	fg, _ := colorful.MakeColor(n)
	return bg.BlendLab(fg, weight).Clamped().Hex()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
