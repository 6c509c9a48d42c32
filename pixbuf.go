package lic

import (
	"image"
	"image/color"
	"math"
)

// Color is a non-premultiplied RGBA color with floating point channels in the [0, 1] range.
type Color struct {
	R, G, B, A float64
}

// scale multiplies the color channels by k. The alpha channel is scaled only if withAlpha is set.
func (c Color) scale(k float64, withAlpha bool) Color {
	c.R *= k
	c.G *= k
	c.B *= k
	if withAlpha {
		c.A *= k
	}
	return c
}

// add sums two colors. The alpha channel is summed only if withAlpha is set.
func (c Color) add(o Color, withAlpha bool) Color {
	c.R += o.R
	c.G += o.G
	c.B += o.B
	if withAlpha {
		c.A += o.A
	}
	return c
}

// clamp restricts every channel to the valid color range.
func (c Color) clamp() Color {
	return Color{
		R: Clamp(c.R, 0, 1),
		G: Clamp(c.G, 0, 1),
		B: Clamp(c.B, 0, 1),
		A: Clamp(c.A, 0, 1),
	}
}

// PixelBuffer is a rectangular grid of floating point RGBA pixels with
// toroidal addressing. When Alpha is false the alpha channel is kept at 1.
type PixelBuffer struct {
	Width, Height int
	Alpha         bool
	Pix           []float64
}

// NewPixelBuffer allocates a w*h opaque black buffer.
func NewPixelBuffer(w, h int, alpha bool) *PixelBuffer {
	buf := &PixelBuffer{
		Width:  w,
		Height: h,
		Alpha:  alpha,
		Pix:    make([]float64, w*h*4),
	}
	for i := 3; i < len(buf.Pix); i += 4 {
		buf.Pix[i] = 1
	}
	return buf
}

// valid reports whether the buffer can be sampled.
func (b *PixelBuffer) valid() bool {
	return b != nil && b.Width > 0 && b.Height > 0 && len(b.Pix) == b.Width*b.Height*4
}

// offset returns the index of the first channel of pixel (x, y), wrapping the coordinates.
func (b *PixelBuffer) offset(x, y int) int {
	return (Wrap(x, b.Width) + Wrap(y, b.Height)*b.Width) * 4
}

// At returns the pixel at (x, y). Out of range coordinates wrap around.
func (b *PixelBuffer) At(x, y int) Color {
	i := b.offset(x, y)
	p := b.Pix[i : i+4 : i+4]
	return Color{R: p[0], G: p[1], B: p[2], A: p[3]}
}

// Set stores the pixel at (x, y). Out of range coordinates wrap around.
func (b *PixelBuffer) Set(x, y int, c Color) {
	i := b.offset(x, y)
	p := b.Pix[i : i+4 : i+4]
	p[0], p[1], p[2] = c.R, c.G, c.B
	if b.Alpha {
		p[3] = c.A
	} else {
		p[3] = 1
	}
}

// Bilinear samples the buffer at the real coordinates (u, v) by bilinear
// interpolation of the four surrounding pixels. The neighbourhood wraps
// around the buffer edges. For buffers with an alpha channel the color
// channels are weighted by their alpha values.
func (b *PixelBuffer) Bilinear(u, v float64) Color {
	fu, fv := math.Floor(u), math.Floor(v)
	xx, yy := u-fu, v-fv

	x1, y1 := Wrap(int(fu), b.Width), Wrap(int(fv), b.Height)
	x2, y2 := (x1+1)%b.Width, (y1+1)%b.Height

	p0, p1 := b.At(x1, y1), b.At(x2, y1)
	p2, p3 := b.At(x1, y2), b.At(x2, y2)

	m0, m1 := 1.0-xx, 1.0-yy

	lerp := func(c0, c1, c2, c3 float64) float64 {
		return m1*(m0*c0+xx*c1) + yy*(m0*c2+xx*c3)
	}

	if !b.Alpha {
		return Color{
			R: lerp(p0.R, p1.R, p2.R, p3.R),
			G: lerp(p0.G, p1.G, p2.G, p3.G),
			B: lerp(p0.B, p1.B, p2.B, p3.B),
			A: 1,
		}
	}

	a := lerp(p0.A, p1.A, p2.A, p3.A)
	if a == 0 {
		return Color{}
	}
	return Color{
		R: lerp(p0.R*p0.A, p1.R*p1.A, p2.R*p2.A, p3.R*p3.A) / a,
		G: lerp(p0.G*p0.A, p1.G*p1.A, p2.G*p2.A, p3.G*p3.A) / a,
		B: lerp(p0.B*p0.A, p1.B*p1.A, p2.B*p2.A, p3.B*p3.A) / a,
		A: a,
	}
}

// FromImage converts any image type to a PixelBuffer with min-point at (0, 0).
// The alpha flag is cleared for images which report themselves as opaque.
func FromImage(img image.Image) *PixelBuffer {
	bounds := img.Bounds()
	minX, minY := bounds.Min.X, bounds.Min.Y
	w, h := bounds.Dx(), bounds.Dy()

	hasAlpha := true
	if o, ok := img.(interface{ Opaque() bool }); ok {
		hasAlpha = !o.Opaque()
	}
	buf := NewPixelBuffer(w, h, hasAlpha)

	const (
		max8  = 0xff
		max16 = 0xffff
	)

	switch src := img.(type) {
	case *image.NRGBA:
		for y := 0; y < h; y++ {
			si := src.PixOffset(minX, minY+y)
			di := y * w * 4
			for x := 0; x < w; x++ {
				buf.Pix[di+0] = float64(src.Pix[si+0]) / max8
				buf.Pix[di+1] = float64(src.Pix[si+1]) / max8
				buf.Pix[di+2] = float64(src.Pix[si+2]) / max8
				buf.Pix[di+3] = float64(src.Pix[si+3]) / max8
				si += 4
				di += 4
			}
		}
	case *image.YCbCr:
		for y := 0; y < h; y++ {
			di := y * w * 4
			for x := 0; x < w; x++ {
				siy := src.YOffset(minX+x, minY+y)
				sic := src.COffset(minX+x, minY+y)
				r, g, b := color.YCbCrToRGB(src.Y[siy], src.Cb[sic], src.Cr[sic])
				buf.Pix[di+0] = float64(r) / max8
				buf.Pix[di+1] = float64(g) / max8
				buf.Pix[di+2] = float64(b) / max8
				buf.Pix[di+3] = 1
				di += 4
			}
		}
	case *image.Gray:
		for y := 0; y < h; y++ {
			si := src.PixOffset(minX, minY+y)
			di := y * w * 4
			for x := 0; x < w; x++ {
				c := float64(src.Pix[si]) / max8
				buf.Pix[di+0] = c
				buf.Pix[di+1] = c
				buf.Pix[di+2] = c
				buf.Pix[di+3] = 1
				si++
				di += 4
			}
		}
	default:
		for y := 0; y < h; y++ {
			di := y * w * 4
			for x := 0; x < w; x++ {
				c := color.NRGBA64Model.Convert(img.At(minX+x, minY+y)).(color.NRGBA64)
				buf.Pix[di+0] = float64(c.R) / max16
				buf.Pix[di+1] = float64(c.G) / max16
				buf.Pix[di+2] = float64(c.B) / max16
				buf.Pix[di+3] = float64(c.A) / max16
				di += 4
			}
		}
	}
	if !hasAlpha {
		for i := 3; i < len(buf.Pix); i += 4 {
			buf.Pix[i] = 1
		}
	}

	return buf
}

// Image converts the buffer into a 16 bit per channel image.
func (b *PixelBuffer) Image() *image.NRGBA64 {
	dst := image.NewNRGBA64(image.Rect(0, 0, b.Width, b.Height))
	for i := 0; i < b.Width*b.Height; i++ {
		p := b.Pix[i*4 : i*4+4 : i*4+4]
		di := i * 8
		for c := 0; c < 4; c++ {
			v := uint16(math.Round(Clamp(p[c], 0, 1) * 0xffff))
			dst.Pix[di+c*2] = uint8(v >> 8)
			dst.Pix[di+c*2+1] = uint8(v)
		}
	}
	return dst
}
