package lic

import (
	"fmt"
	"math"
)

// Operator defines how the vector field is derived from the scalar field.
type Operator int

const (
	// Derivative follows the gradient, crossing the edges of the effect image.
	Derivative Operator = iota
	// Gradient rotates the derivative by 90 degrees, following the level contours.
	Gradient
)

// String implements the fmt.Stringer interface.
func (o Operator) String() string {
	switch o {
	case Derivative:
		return "derivative"
	case Gradient:
		return "gradient"
	}
	return fmt.Sprintf("Operator(%d)", int(o))
}

type kernel [3][3]int

// A variation of the Sobel kernels, indexed as [row][col].
var (
	kernelX = kernel{
		{1, 0, -1},
		{2, 0, -2},
		{1, 0, -1},
	}

	kernelY = kernel{
		{1, 2, 1},
		{0, 0, 0},
		{-1, -2, -1},
	}
)

// minGradientLen is the magnitude below which the direction is considered undefined.
const minGradientLen = 0.000001

// convolve applies the kernel over the 3x3 neighbourhood of (x, y).
func (k *kernel) convolve(f *ScalarField, x, y int) int {
	var sum int
	for row := -1; row <= 1; row++ {
		for col := -1; col <= 1; col++ {
			if w := k[row+1][col+1]; w != 0 {
				sum += w * f.At(x+col, y+row)
			}
		}
	}
	return sum
}

// GradientAt computes the unit direction of the vector field at (x, y).
// With rotate set the vector is turned by 90 degrees. In flat areas,
// where the direction is undefined, the zero vector is returned.
func GradientAt(f *ScalarField, x, y int, rotate bool) Vec {
	vx := float64(kernelX.convolve(f, x, y))
	vy := float64(kernelY.convolve(f, x, y))

	if rotate {
		vx, vy = vy, -vx
	}

	if l := math.Sqrt(vx*vx + vy*vy); l >= minGradientLen {
		vx /= l
		vy /= l
	}
	return Vec{X: vx, Y: vy}
}
