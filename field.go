package lic

import (
	"fmt"
	"image"
	"math/rand"
	"time"

	"github.com/fogleman/gg"
)

// DrawField renders the vector field derived from the effect image as a hedgehog
// plot: a short segment oriented along the local direction is drawn over the
// effect image at every spacing pixels. Flat areas get a dot instead.
func (p *Processor) DrawField(effect image.Image, spacing int, lineWidth float64) (image.Image, error) {
	if effect == nil {
		return nil, ErrNoEffect
	}
	buf := FromImage(effect)
	if !buf.valid() {
		return nil, fmt.Errorf("effect image: %w", ErrInvalidExtent)
	}
	if spacing < 1 {
		spacing = 1
	}

	seed := p.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	field := ExtractScalar(buf, p.Channel, rand.New(rand.NewSource(seed)))
	rotate := p.Operator == Gradient

	ctx := gg.NewContextForImage(buf.Image())
	ctx.SetRGBA(0, 0, 0, 0.35)
	ctx.DrawRectangle(0, 0, float64(buf.Width), float64(buf.Height))
	ctx.Fill()

	half := float64(spacing) * 0.45
	ctx.SetLineWidth(lineWidth)
	ctx.SetLineCapRound()

	for y := spacing / 2; y < buf.Height; y += spacing {
		for x := spacing / 2; x < buf.Width; x += spacing {
			v := GradientAt(field, x, y, rotate)
			cx, cy := float64(x)+0.5, float64(y)+0.5

			if v.X == 0 && v.Y == 0 {
				ctx.SetRGBA(1, 0.3, 0.3, 1)
				ctx.DrawPoint(cx, cy, lineWidth)
				ctx.Fill()
				continue
			}
			ctx.SetRGBA(1, 1, 1, 0.9)
			ctx.DrawLine(cx-v.X*half, cy-v.Y*half, cx+v.X*half, cy+v.Y*half)
			ctx.Stroke()
		}
	}
	return ctx.Image(), nil
}
