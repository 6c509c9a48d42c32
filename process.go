package lic

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"
	"math/rand"
	"runtime"
	"sync"
	"time"

	"golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"
)

// Convolve selects the signal which is smeared along the streamlines.
type Convolve int

const (
	// WithNoise convolves synthetic noise and modulates the source colors with it.
	WithNoise Convolve = iota
	// WithSource convolves the source image itself.
	WithSource
)

// String implements the fmt.Stringer interface.
func (c Convolve) String() string {
	switch c {
	case WithNoise:
		return "noise"
	case WithSource:
		return "source"
	}
	return fmt.Sprintf("Convolve(%d)", int(c))
}

// minFilterLength is the smallest accepted filter half-width.
const minFilterLength = 0.1

var (
	// ErrNoEffect is returned when no effect image has been provided.
	ErrNoEffect = errors.New("lic: missing effect image")
	// ErrInvalidExtent is returned when an image can not be sampled.
	ErrInvalidExtent = errors.New("lic: invalid input extent")
	// ErrInvalidParams is returned for parameters which would make the integration diverge.
	ErrInvalidParams = errors.New("lic: invalid parameters")
)

// Processor : type with processing options
type Processor struct {
	// FilterLength is the half-width of the integration interval.
	// Values below 0.1 are raised to 0.1.
	FilterLength float64
	// NoiseMagnitude is the cell size of the noise lattice.
	NoiseMagnitude float64
	// IntegrationSteps is the number of trapezoids the interval is split into.
	IntegrationSteps float64
	// MinValue and MaxValue bound the convolved noise before normalization.
	MinValue float64
	MaxValue float64

	Channel  Channel
	Operator Operator
	Convolve Convolve

	// Seed initializes the random source of a run. Zero means a time based seed.
	Seed int64
	// Workers is the number of goroutines processing rows concurrently.
	// Zero or negative values use the number of CPUs.
	Workers int
}

func (p *Processor) validate() error {
	finite := func(v float64) bool {
		return !math.IsNaN(v) && !math.IsInf(v, 0)
	}

	switch {
	case !finite(p.FilterLength):
		return fmt.Errorf("%w: filter length %v", ErrInvalidParams, p.FilterLength)
	case !finite(p.IntegrationSteps) || p.IntegrationSteps <= 0:
		return fmt.Errorf("%w: integration steps %v", ErrInvalidParams, p.IntegrationSteps)
	case !finite(p.MinValue) || !finite(p.MaxValue) || p.MinValue >= p.MaxValue:
		return fmt.Errorf("%w: value range [%v, %v]", ErrInvalidParams, p.MinValue, p.MaxValue)
	case p.Channel < Hue || p.Channel > Brightness:
		return fmt.Errorf("%w: %v", ErrInvalidParams, p.Channel)
	case p.Operator < Derivative || p.Operator > Gradient:
		return fmt.Errorf("%w: %v", ErrInvalidParams, p.Operator)
	case p.Convolve < WithNoise || p.Convolve > WithSource:
		return fmt.Errorf("%w: %v", ErrInvalidParams, p.Convolve)
	case p.Convolve == WithNoise && (!finite(p.NoiseMagnitude) || p.NoiseMagnitude <= 0):
		return fmt.Errorf("%w: noise magnitude %v", ErrInvalidParams, p.NoiseMagnitude)
	}
	return nil
}

// Run applies the line integral convolution over the source buffer, using the effect
// buffer to derive the vector field. The result is returned in a new buffer with the
// same extent and pixel format as the source. The progress callback, if not nil,
// receives the completed fraction after every row and 1.0 at the end.
func (p *Processor) Run(ctx context.Context, src, effect *PixelBuffer, progress func(float64)) (*PixelBuffer, error) {
	if effect == nil {
		return nil, ErrNoEffect
	}
	if !src.valid() {
		return nil, fmt.Errorf("source image: %w", ErrInvalidExtent)
	}
	if !effect.valid() {
		return nil, fmt.Errorf("effect image: %w", ErrInvalidExtent)
	}
	if err := p.validate(); err != nil {
		return nil, err
	}

	seed := p.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rnd := rand.New(rand.NewSource(seed))

	r := &run{
		l:        Max(p.FilterLength, minFilterLength),
		minv:     p.MinValue,
		maxv:     p.MaxValue,
		rotate:   p.Operator == Gradient,
		convolve: p.Convolve,
		src:      src,
	}
	r.step = 2.0 * r.l / p.IntegrationSteps

	if p.Convolve == WithNoise {
		grid := NewGrid(GridWidth, GridHeight, rnd)
		r.noise = NewNoiseField(grid, p.NoiseMagnitude, p.NoiseMagnitude)
	}
	r.field = ExtractScalar(effect, p.Channel, rnd)

	workers := p.Workers
	if workers < 1 {
		workers = runtime.NumCPU()
	}

	Logger().Debug("lic: run started",
		slogAttrs(src, p, workers, seed)...,
	)
	start := time.Now()

	dst := NewPixelBuffer(src.Width, src.Height, src.Alpha)

	var (
		mu   sync.Mutex
		done int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for y := 0; y < src.Height; y++ {
		if gctx.Err() != nil {
			break
		}
		y := y
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			for x := 0; x < src.Width; x++ {
				dst.Set(x, y, r.pixel(x, y))
			}

			mu.Lock()
			defer mu.Unlock()
			done++
			if progress != nil {
				progress(float64(done) / float64(src.Height))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if progress != nil {
		progress(1.0)
	}

	Logger().Debug("lic: run finished", "elapsed", time.Since(start))

	return dst, nil
}

// Draw applies the filter over the whole source image and returns the result.
func (p *Processor) Draw(ctx context.Context, src, effect image.Image, progress func(float64)) (*image.NRGBA64, error) {
	if effect == nil {
		return nil, ErrNoEffect
	}
	if src == nil {
		return nil, fmt.Errorf("source image: %w", ErrInvalidExtent)
	}

	out, err := p.Run(ctx, FromImage(src), FromImage(effect), progress)
	if err != nil {
		return nil, err
	}
	return out.Image(), nil
}

// DrawRegion filters only the rect region of dst and merges the result back into dst.
// Pixels outside the region are left untouched.
func (p *Processor) DrawRegion(ctx context.Context, dst draw.Image, rect image.Rectangle, effect image.Image, progress func(float64)) error {
	if effect == nil {
		return ErrNoEffect
	}
	rect = rect.Intersect(dst.Bounds())
	if rect.Empty() {
		return fmt.Errorf("region %v: %w", rect, ErrInvalidExtent)
	}

	roi := image.NewNRGBA64(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Copy(roi, image.Point{}, dst, rect, draw.Src, nil)

	out, err := p.Run(ctx, FromImage(roi), FromImage(effect), progress)
	if err != nil {
		return err
	}
	draw.Draw(dst, rect, out.Image(), image.Point{}, draw.Src)

	return nil
}

func slogAttrs(src *PixelBuffer, p *Processor, workers int, seed int64) []any {
	return []any{
		"width", src.Width,
		"height", src.Height,
		"alpha", src.Alpha,
		"channel", p.Channel.String(),
		"operator", p.Operator.String(),
		"convolve", p.Convolve.String(),
		"workers", workers,
		"seed", seed,
	}
}
