package lic

import (
	"image"
	"image/color"
	"math"
)

// patternImage returns a w*h image with smoothly varying colors, which
// gives a well defined gradient almost everywhere.
func patternImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			fx, fy := float64(x)/float64(w), float64(y)/float64(h)
			img.Set(x, y, color.NRGBA{
				R: uint8(255 * (0.5 + 0.5*math.Sin(6*fx+3*fy))),
				G: uint8(255 * fy),
				B: uint8(255 * (0.5 + 0.5*math.Cos(4*fx*fy))),
				A: 255,
			})
		}
	}
	return img
}

// uniformBuffer returns a w*h buffer filled with the color c.
func uniformBuffer(w, h int, alpha bool, c Color) *PixelBuffer {
	buf := NewPixelBuffer(w, h, alpha)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			buf.Set(x, y, c)
		}
	}
	return buf
}

func defaultProcessor() *Processor {
	return &Processor{
		FilterLength:     5,
		NoiseMagnitude:   2,
		IntegrationSteps: 25,
		MinValue:         -2.5,
		MaxValue:         2.5,
		Channel:          Brightness,
		Operator:         Gradient,
		Convolve:         WithSource,
		Seed:             42,
	}
}
