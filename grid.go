package lic

import (
	"math"
	"math/rand"
)

// Default size of the pseudo-random vector grid.
const (
	GridWidth  = 40
	GridHeight = 40
)

// Vec is a two dimensional vector.
type Vec struct {
	X, Y float64
}

// Len returns the euclidean length of the vector.
func (v Vec) Len() float64 {
	return math.Hypot(v.X, v.Y)
}

// Grid is a toroidal lattice of unit length gradient vectors
// used as the basis of the synthetic noise.
type Grid struct {
	W, H int
	G    []Vec
}

// NewGrid generates a w*h grid of unit vectors with uniformly distributed angles.
func NewGrid(w, h int, rnd *rand.Rand) *Grid {
	g := &Grid{W: w, H: h, G: make([]Vec, w*h)}

	for i := 0; i < w; i++ {
		for j := 0; j < h; j++ {
			alpha := rnd.Float64() * 2 * math.Pi
			g.G[i+j*w] = Vec{X: math.Cos(alpha), Y: math.Sin(alpha)}
		}
	}
	return g
}

// At returns the vector stored at cell (i, j). Both indices wrap around.
func (g *Grid) At(i, j int) Vec {
	return g.G[Wrap(i, g.W)+Wrap(j, g.H)*g.W]
}
