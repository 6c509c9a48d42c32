package lic

import (
	"fmt"
	"math"
	"math/rand"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Channel selects the HSL component of the effect image used to derive the vector field.
type Channel int

const (
	Hue Channel = iota
	Saturation
	Brightness
)

// String implements the fmt.Stringer interface.
func (c Channel) String() string {
	switch c {
	case Hue:
		return "hue"
	case Saturation:
		return "saturation"
	case Brightness:
		return "brightness"
	}
	return fmt.Sprintf("Channel(%d)", int(c))
}

// ScalarField holds one byte intensity per pixel of the effect image.
type ScalarField struct {
	Width, Height int
	Data          []uint8
}

// At returns the intensity at (x, y). Any integer coordinate is valid, the field wraps around.
func (f *ScalarField) At(x, y int) int {
	return int(f.Data[Wrap(x, f.Width)+Wrap(y, f.Height)*f.Width])
}

// ExtractScalar converts the effect image into a scalar field by taking the
// requested HSL channel of every pixel. A small random jitter is added
// to every value to avoid unstructured areas, where the gradient would vanish.
func ExtractScalar(effect *PixelBuffer, ch Channel, rnd *rand.Rand) *ScalarField {
	f := &ScalarField{
		Width:  effect.Width,
		Height: effect.Height,
		Data:   make([]uint8, effect.Width*effect.Height),
	}

	var idx int
	for y := 0; y < effect.Height; y++ {
		for x := 0; x < effect.Width; x++ {
			p := effect.At(x, y)
			h, s, l := colorful.Color{R: p.R, G: p.G, B: p.B}.Hsl()

			var val float64
			switch ch {
			case Hue:
				val = h / 360 * 255
			case Saturation:
				val = s * 255
			case Brightness:
				val = l * 255
			}
			val += rnd.Float64()*2 - 1

			f.Data[idx] = uint8(Clamp(math.RoundToEven(val), 0, 255))
			idx++
		}
	}
	return f
}
