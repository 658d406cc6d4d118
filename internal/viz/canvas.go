package viz

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/fieldsim/internal/vecmath"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
const brailleBlank = 0x2800

var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

type glyph struct {
	r     rune
	style lipgloss.Style
}

// Canvas is a Braille dot grid with a layer of whole-cell glyphs on top.
// Glyphs hide the dots of the cell they sit in.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
	glyphs        map[int]glyph
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
		glyphs: make(map[int]glyph),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// Set turns on the dot at sub-pixel (x, y). The canvas is Width*2 by
// Height*4 dots; anything outside is dropped.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

// Put places a glyph over the cell (col, row).
func (c *Canvas) Put(col, row int, r rune, style lipgloss.Style) {
	if col < 0 || row < 0 || col >= c.Width || row >= c.Height {
		return
	}
	c.glyphs[row*c.Width+col] = glyph{r: r, style: style}
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = brailleBlank
		}
	}
	clear(c.glyphs)
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
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
		c.Set(x0, y0)
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

// Render returns the canvas with dots drawn in dots and glyphs in their own
// styles.
func (c *Canvas) Render(dots lipgloss.Style) string {
	var b strings.Builder
	for row := range c.Grid {
		run := make([]rune, 0, c.Width)
		flush := func() {
			if len(run) > 0 {
				b.WriteString(dots.Render(string(run)))
				run = run[:0]
			}
		}
		for col, r := range c.Grid[row] {
			if g, ok := c.glyphs[row*c.Width+col]; ok {
				flush()
				b.WriteString(g.style.Render(string(g.r)))
				continue
			}
			run = append(run, r)
		}
		flush()
		b.WriteByte('\n')
	}
	return b.String()
}

func (c *Canvas) String() string {
	return c.Render(lipgloss.NewStyle())
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Projection maps world meters onto a canvas, y up.
type Projection struct {
	Bounds        vecmath.Rect
	Width, Height int // canvas cells
}

// Dot returns the sub-pixel holding p.
func (p Projection) Dot(v vecmath.Vec2) (int, int) {
	fx := (v.X - p.Bounds.Min.X) / p.Bounds.Width()
	fy := (p.Bounds.Max.Y - v.Y) / p.Bounds.Height()
	return int(math.Floor(fx * float64(p.Width*2))), int(math.Floor(fy * float64(p.Height*4)))
}

// Cell returns the canvas cell holding p.
func (p Projection) Cell(v vecmath.Vec2) (int, int) {
	x, y := p.Dot(v)
	return floorDiv(x, 2), floorDiv(y, 4)
}

// World returns the world position at the center of cell (col, row).
func (p Projection) World(col, row int) vecmath.Vec2 {
	fx := (float64(col) + 0.5) / float64(p.Width)
	fy := (float64(row) + 0.5) / float64(p.Height)
	return vecmath.V(p.Bounds.Min.X+fx*p.Bounds.Width(), p.Bounds.Max.Y-fy*p.Bounds.Height())
}

func (p Projection) Line(c *Canvas, a, b vecmath.Vec2) {
	x0, y0 := p.Dot(a)
	x1, y1 := p.Dot(b)
	c.DrawLine(x0, y0, x1, y1)
}

func (p Projection) Polyline(c *Canvas, pts []vecmath.Vec2) {
	for i := 1; i < len(pts); i++ {
		p.Line(c, pts[i-1], pts[i])
	}
	if len(pts) == 1 {
		x, y := p.Dot(pts[0])
		c.Set(x, y)
	}
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && a < 0 {
		q--
	}
	return q
}
