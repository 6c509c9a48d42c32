package lic

import (
	"golang.org/x/exp/constraints"
)

// Wrap maps the index i into the [0, n) range, treating the axis as a torus.
// Negative indices wrap around from the end. n must be positive.
func Wrap[T constraints.Integer](i, n T) T {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}

// Min returns the smallest value between the provided numbers.
func Min[T constraints.Ordered](values ...T) T {
	var acc T = values[0]

	for _, v := range values {
		if v < acc {
			acc = v
		}
	}
	return acc
}

// Max returns the biggest value between the provided numbers.
func Max[T constraints.Ordered](values ...T) T {
	var acc T = values[0]

	for _, v := range values {
		if v > acc {
			acc = v
		}
	}
	return acc
}

// Clamp restricts v to the [lo, hi] interval.
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
