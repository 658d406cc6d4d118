package analysis

import (
	"strings"

	"github.com/san-kum/fieldsim/internal/vecmath"
)

// Portrait is a 2-D phase space trajectory.
type Portrait struct {
	Points []vecmath.Vec2
}

// NewPortrait pairs xs and ys up to the shorter length.
func NewPortrait(xs, ys []float64) Portrait {
	n := min(len(xs), len(ys))
	p := Portrait{Points: make([]vecmath.Vec2, n)}
	for i := 0; i < n; i++ {
		p.Points[i] = vecmath.V(xs[i], ys[i])
	}
	return p
}

// ASCII plots the portrait on a width×height character grid, with axes
// where they cross the visible area.
func (p Portrait) ASCII(width, height int) string {
	if len(p.Points) == 0 || width < 2 || height < 2 {
		return ""
	}

	minX, maxX := p.Points[0].X, p.Points[0].X
	minY, maxY := p.Points[0].Y, p.Points[0].Y
	for _, pt := range p.Points {
		minX, maxX = min(minX, pt.X), max(maxX, pt.X)
		minY, maxY = min(minY, pt.Y), max(maxY, pt.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", width))
	}
	col := func(x float64) int { return int((x - minX) / rangeX * float64(width-1)) }
	row := func(y float64) int { return height - 1 - int((y-minY)/rangeY*float64(height-1)) }

	for _, pt := range p.Points {
		r, c := row(pt.Y), col(pt.X)
		if r >= 0 && r < height && c >= 0 && c < width {
			grid[r][c] = '•'
		}
	}

	if minX <= 0 && maxX >= 0 {
		c := col(0)
		for r := 0; r < height; r++ {
			if grid[r][c] == ' ' {
				grid[r][c] = '│'
			}
		}
	}
	if minY <= 0 && maxY >= 0 {
		r := row(0)
		for c := 0; c < width; c++ {
			if grid[r][c] == ' ' {
				grid[r][c] = '─'
			}
		}
	}

	var sb strings.Builder
	for _, line := range grid {
		sb.WriteString(string(line))
		sb.WriteRune('\n')
	}
	return sb.String()
}

// Crossings returns the fractional sample indices where samples rises
// through threshold, linearly interpolated between neighbors.
func Crossings(samples []float64, threshold float64) []float64 {
	var out []float64
	for i := 1; i < len(samples); i++ {
		prev, cur := samples[i-1], samples[i]
		if prev < threshold && cur >= threshold {
			out = append(out, float64(i-1)+(threshold-prev)/(cur-prev))
		}
	}
	return out
}

// CrossingPeriod is the mean time between successive upward crossings.
func CrossingPeriod(samples []float64, dt, threshold float64) (float64, bool) {
	c := Crossings(samples, threshold)
	if len(c) < 2 {
		return 0, false
	}
	return (c[len(c)-1] - c[0]) / float64(len(c)-1) * dt, true
}
