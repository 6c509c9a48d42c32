/*
Package lic is an image processing library which implements the Line Integral Convolution (LIC)
filter, giving images a brush stroke look reminiscent of Van Gogh's paintings.

A vector field is derived from the gradient of an effect image (which may be the source image
itself), then at every pixel either synthetic Perlin noise or the source image is convolved along
the local streamline of the field.

The package provides a command line utility supporting various customization options.
Check the supported commands by typing:

	$ lic --help

Example to filter an image using its own brightness as the effect image:

	package main

	import (
		"context"
		"fmt"

		"github.com/esimov/lic"
	)

	func main() {
		p := &lic.Processor{
			FilterLength:     5,
			NoiseMagnitude:   2,
			IntegrationSteps: 25,
			MinValue:         -2.5,
			MaxValue:         2.5,
			Channel:          lic.Brightness,
			Operator:         lic.Gradient,
			Convolve:         lic.WithSource,
		}

		dst, err := p.Draw(context.Background(), srcImg, srcImg, func(progress float64) {})
		if err != nil {
			fmt.Printf("Error applying the filter: %s", err.Error())
		}
	}

The same settings can be loaded from a YAML preset with LoadConfig.
*/
package lic
