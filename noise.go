package lic

import (
	"math"
)

// NoiseField is a two dimensional variant of Perlin's gradient noise.
// The vector grid is spread over the plane with a cell size of dx*dy,
// and the contribution of the four surrounding lattice points is
// blended with a cubic falloff kernel.
type NoiseField struct {
	grid   *Grid
	dx, dy float64
}

// NewNoiseField creates a noise function over the grid with the given cell spacing.
func NewNoiseField(grid *Grid, dx, dy float64) *NoiseField {
	return &NoiseField{grid: grid, dx: dx, dy: dy}
}

// cubic is a 2nd order spline which falls off from 1 at t=0 to 0 at |t|=1.
func cubic(t float64) float64 {
	at := math.Abs(t)
	if at < 1.0 {
		return at*at*(2.0*at-3.0) + 1.0
	}
	return 0.0
}

// omega returns the contribution of lattice point (i, j) at the local offset (u, v).
func (n *NoiseField) omega(u, v float64, i, j int) float64 {
	g := n.grid.At(i, j)
	return cubic(u) * cubic(v) * (g.X*u + g.Y*v)
}

// At evaluates the noise function at (x, y).
func (n *NoiseField) At(x, y float64) float64 {
	sti := int(math.Floor(x / n.dx))
	stj := int(math.Floor(y / n.dy))

	var sum float64
	for i := sti; i <= sti+1; i++ {
		for j := stj; j <= stj+1; j++ {
			sum += n.omega(
				(x-float64(i)*n.dx)/n.dx,
				(y-float64(j)*n.dy)/n.dy,
				i, j,
			)
		}
	}
	return sum
}
