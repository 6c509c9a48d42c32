package lic

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"testing"
)

func TestRunRedSquare(t *testing.T) {
	red := Color{1, 0, 0, 1}
	src := uniformBuffer(2, 2, false, red)
	effect := uniformBuffer(2, 2, false, red)

	p := &Processor{
		FilterLength:     1,
		NoiseMagnitude:   1,
		IntegrationSteps: 2,
		MinValue:         -1,
		MaxValue:         1,
		Channel:          Brightness,
		Operator:         Gradient,
		Convolve:         WithNoise,
		Seed:             1,
	}

	dst, err := p.Run(context.Background(), src, effect, nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	first := dst.At(0, 0)
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			c := dst.At(x, y)
			if c != first {
				t.Errorf("pixel (%d, %d) = %v, differs from %v", x, y, c, first)
			}
			for _, ch := range []float64{c.R, c.G, c.B, c.A} {
				if ch < 0 || ch > 1 {
					t.Errorf("pixel (%d, %d) = %v, channel out of range", x, y, c)
				}
			}
		}
	}
	// The noise vanishes on the lattice, so the integral is zero and the
	// normalized multiplier is 0.75.
	if want := (Color{0.75, 0, 0, 1}); first != want {
		t.Errorf("pixel = %v, want %v", first, want)
	}
}

func TestRunDeterministic(t *testing.T) {
	src := FromImage(patternImage(24, 17))
	effect := FromImage(patternImage(11, 13))

	for _, conv := range []Convolve{WithNoise, WithSource} {
		p := defaultProcessor()
		p.Convolve = conv
		p.Workers = 1

		a, err := p.Run(context.Background(), src, effect, nil)
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}

		p.Workers = 4
		b, err := p.Run(context.Background(), src, effect, nil)
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}

		for i := range a.Pix {
			if a.Pix[i] != b.Pix[i] {
				t.Fatalf("%v: channel %d differs between runs with the same seed: %v != %v", conv, i, a.Pix[i], b.Pix[i])
			}
		}
	}
}

func TestRunPreservesFormat(t *testing.T) {
	src := NewPixelBuffer(7, 3, true)
	for i := range src.Pix {
		src.Pix[i] = 0.5
	}
	effect := FromImage(patternImage(30, 30))

	for _, conv := range []Convolve{WithNoise, WithSource} {
		p := defaultProcessor()
		p.Convolve = conv

		dst, err := p.Run(context.Background(), src, effect, nil)
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		if dst.Width != 7 || dst.Height != 3 || !dst.Alpha {
			t.Errorf("%v: result is %dx%d alpha=%v, want 7x3 with alpha", conv, dst.Width, dst.Height, dst.Alpha)
		}
		for i, v := range dst.Pix {
			if v < 0 || v > 1 {
				t.Fatalf("%v: channel %d = %v out of range", conv, i, v)
			}
		}
	}
}

func TestRunErrors(t *testing.T) {
	src := FromImage(patternImage(4, 4))

	tests := []struct {
		name   string
		src    *PixelBuffer
		effect *PixelBuffer
		modify func(p *Processor)
		want   error
	}{
		{"missing effect", src, nil, nil, ErrNoEffect},
		{"empty source", NewPixelBuffer(0, 4, false), src, nil, ErrInvalidExtent},
		{"nil source", nil, src, nil, ErrInvalidExtent},
		{"empty effect", src, NewPixelBuffer(3, 0, false), nil, ErrInvalidExtent},
		{"truncated pixels", src, &PixelBuffer{Width: 2, Height: 2, Pix: make([]float64, 3)}, nil, ErrInvalidExtent},
		{"zero steps", src, src, func(p *Processor) { p.IntegrationSteps = 0 }, ErrInvalidParams},
		{"negative steps", src, src, func(p *Processor) { p.IntegrationSteps = -3 }, ErrInvalidParams},
		{"inverted range", src, src, func(p *Processor) { p.MinValue, p.MaxValue = 1, -1 }, ErrInvalidParams},
		{"unknown channel", src, src, func(p *Processor) { p.Channel = 7 }, ErrInvalidParams},
		{"zero noise magnitude", src, src, func(p *Processor) {
			p.Convolve = WithNoise
			p.NoiseMagnitude = 0
		}, ErrInvalidParams},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := defaultProcessor()
			if tt.modify != nil {
				tt.modify(p)
			}
			_, err := p.Run(context.Background(), tt.src, tt.effect, nil)
			if !errors.Is(err, tt.want) {
				t.Errorf("Run error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestRunClampsFilterLength(t *testing.T) {
	src := FromImage(patternImage(8, 8))

	p := defaultProcessor()
	p.FilterLength = -3
	a, err := p.Run(context.Background(), src, src, nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	p.FilterLength = minFilterLength
	b, err := p.Run(context.Background(), src, src, nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	for i := range a.Pix {
		if a.Pix[i] != b.Pix[i] {
			t.Fatalf("negative filter length is not clamped to %v", minFilterLength)
		}
	}
}

func TestRunProgress(t *testing.T) {
	src := FromImage(patternImage(10, 37))

	var reported []float64
	p := defaultProcessor()
	p.Workers = 4

	_, err := p.Run(context.Background(), src, src, func(v float64) {
		reported = append(reported, v)
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(reported) < 37 {
		t.Fatalf("progress reported %d times, want at least once per row", len(reported))
	}
	for i, v := range reported {
		if v < 0 || v > 1 {
			t.Errorf("progress %v out of range", v)
		}
		if i > 0 && v < reported[i-1] {
			t.Errorf("progress decreased from %v to %v", reported[i-1], v)
		}
	}
	if last := reported[len(reported)-1]; last != 1 {
		t.Errorf("final progress = %v, want 1", last)
	}
}

func TestRunCanceled(t *testing.T) {
	src := FromImage(patternImage(16, 16))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := defaultProcessor().Run(ctx, src, src, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run error = %v, want %v", err, context.Canceled)
	}
}

func TestDraw(t *testing.T) {
	src := patternImage(20, 10)

	dst, err := defaultProcessor().Draw(context.Background(), src, src, nil)
	if err != nil {
		t.Fatalf("Draw failed: %v", err)
	}
	if dst.Bounds() != image.Rect(0, 0, 20, 10) {
		t.Errorf("result bounds = %v, want %v", dst.Bounds(), src.Bounds())
	}

	if _, err := defaultProcessor().Draw(context.Background(), src, nil, nil); !errors.Is(err, ErrNoEffect) {
		t.Errorf("Draw without effect error = %v, want %v", err, ErrNoEffect)
	}
}

func TestDrawRegion(t *testing.T) {
	src := patternImage(20, 20)
	dst := image.NewNRGBA(src.Bounds())
	draw.Draw(dst, dst.Bounds(), src, image.Point{}, draw.Src)

	p := defaultProcessor()
	p.Convolve = WithNoise
	rect := image.Rect(5, 5, 12, 15)

	if err := p.DrawRegion(context.Background(), dst, rect, src, nil); err != nil {
		t.Fatalf("DrawRegion failed: %v", err)
	}

	changed := 0
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			in := image.Pt(x, y).In(rect)
			same := dst.NRGBAAt(x, y) == src.NRGBAAt(x, y)
			if !in && !same {
				t.Fatalf("pixel (%d, %d) outside the region was modified", x, y)
			}
			if in && !same {
				changed++
			}
		}
	}
	if changed == 0 {
		t.Error("no pixel inside the region was modified")
	}

	err := p.DrawRegion(context.Background(), dst, image.Rect(30, 30, 40, 40), src, nil)
	if !errors.Is(err, ErrInvalidExtent) {
		t.Errorf("DrawRegion outside the image error = %v, want %v", err, ErrInvalidExtent)
	}
}

func TestUniformEffectImage(t *testing.T) {
	gray := color.NRGBA{128, 128, 128, 255}
	effect := image.NewNRGBA(image.Rect(0, 0, 6, 6))
	draw.Draw(effect, effect.Bounds(), image.NewUniform(gray), image.Point{}, draw.Src)

	for _, conv := range []Convolve{WithNoise, WithSource} {
		p := defaultProcessor()
		p.Convolve = conv

		if _, err := p.Draw(context.Background(), patternImage(6, 6), effect, nil); err != nil {
			t.Errorf("%v: Draw over a uniform effect image failed: %v", conv, err)
		}
	}
}
