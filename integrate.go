package lic

import (
	"math"
)

// run holds the state shared by every pixel of a single filter invocation.
// Nothing in it is modified once the pixel loop has started.
type run struct {
	l          float64
	step       float64
	minv, maxv float64

	rotate   bool
	convolve Convolve

	src   *PixelBuffer
	field *ScalarField
	noise *NoiseField
}

// filter is a triangle window over the [-l, l] integration interval.
func (r *run) filter(u float64) float64 {
	f := 1.0 - math.Abs(u)/r.l
	if f < 0.0 {
		return 0.0
	}
	return f
}

// integrateNoise computes the line integral convolution of the noise
// function along the streamline through (x, y) with direction v. The
// result is normalized into the [0.5, 1] range.
func (r *run) integrateNoise(x, y int, v Vec) float64 {
	var (
		i      float64
		l      = r.l
		step   = r.step
		xx, yy = float64(x), float64(y)
	)

	// The integral is approximated with the trapezoidal rule,
	// reusing the right endpoint of a step as the left one of the next.
	f1 := r.filter(-l) * r.noise.At(xx+l*v.X, yy+l*v.Y)

	for u := -l + step; u <= l; u += step {
		f2 := r.filter(u) * r.noise.At(xx-u*v.X, yy-u*v.Y)
		i += (f1 + f2) * 0.5 * step
		f1 = f2
	}

	i = (i - r.minv) / (r.maxv - r.minv)
	i = Clamp(i, 0.0, 1.0)

	return i/2.0 + 0.5
}

// integrateImage computes the line integral convolution of the source
// image along the streamline through (x, y) with direction v, sampling
// the source with bilinear interpolation.
func (r *run) integrateImage(x, y int, v Vec) Color {
	var (
		col    Color
		l      = r.l
		step   = r.step
		alpha  = r.src.Alpha
		xx, yy = float64(x), float64(y)
	)

	c1 := r.src.Bilinear(xx+l*v.X, yy+l*v.Y).scale(r.filter(-l), alpha)

	for u := -l + step; u <= l; u += step {
		c2 := r.src.Bilinear(xx-u*v.X, yy-u*v.Y).scale(r.filter(u), alpha)
		col = col.add(c1.add(c2, alpha).scale(0.5*step, alpha), alpha)
		c1 = c2
	}
	col = col.scale(1.0/l, alpha)
	if !alpha {
		col.A = 1
	}
	return col.clamp()
}

// pixel computes the output color at (x, y).
func (r *run) pixel(x, y int) Color {
	v := GradientAt(r.field, x, y, r.rotate)

	if r.convolve == WithNoise {
		return r.src.At(x, y).scale(r.integrateNoise(x, y, v), r.src.Alpha)
	}
	return r.integrateImage(x, y, v)
}
