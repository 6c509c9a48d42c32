package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/esimov/lic"
	"github.com/esimov/lic/utils"
	"github.com/fogleman/gg"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	"golang.org/x/term"
)

const helperBanner = `
██╗     ██╗ ██████╗
██║     ██║██╔════╝
██║     ██║██║
██║     ██║██║
███████╗██║╚██████╗
╚══════╝╚═╝ ╚═════╝

Line Integral Convolution image filter.
    Version: %s

`

// Version indicates the current build version.
var Version string

// Supported image files.
var extensions = []string{".jpg", ".jpeg", ".png", ".bmp", ".tif", ".tiff", ".webp"}

func main() {
	defaults := lic.DefaultConfig()

	var (
		// Flags
		source      = flag.String("in", "", "Source image (file, directory or URL)")
		destination = flag.String("out", "", "Destination image or directory")
		effect      = flag.String("effect", "", "Effect image (defaults to the source image)")
		preset      = flag.String("config", "", "YAML preset with the filter settings")
		dumpConfig  = flag.String("dump-config", "", "Write the effective settings to a YAML file")
		fieldOut    = flag.String("field", "", "Render the direction field into this PNG file")
		fieldStep   = flag.Int("field-spacing", 12, "Distance between the direction field markers")
		region      = flag.String("region", "", "Filter only this region of the source: x0,y0,x1,y1")
		fit         = flag.Bool("fit", false, "Resize the effect image to the source size")
		debug       = flag.Bool("debug", false, "Enable debug logging")

		filterLength = flag.Float64("length", defaults.FilterLength, "Filter length")
		noiseMag     = flag.Float64("noise", defaults.NoiseMagnitude, "Noise magnitude")
		intSteps     = flag.Float64("steps", defaults.IntegrationSteps, "Integration steps")
		minValue     = flag.Float64("min", defaults.MinValue, "Minimum value (in tenths)")
		maxValue     = flag.Float64("max", defaults.MaxValue, "Maximum value (in tenths)")
		channel      = flag.String("channel", defaults.Channel, "Effect channel: hue, saturation, brightness")
		operator     = flag.String("operator", defaults.Operator, "Effect operator: derivative, gradient")
		convolve     = flag.String("convolve", defaults.Convolve, "Convolve with: noise, source")
		seed         = flag.Int64("seed", defaults.Seed, "Random seed (0 means time based)")
		workers      = flag.Int("workers", defaults.Workers, "Number of workers (0 means number of CPUs)")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, helperBanner, Version)
		flag.PrintDefaults()
	}
	flag.Parse()

	if len(*source) == 0 || (len(*destination) == 0 && len(*fieldOut) == 0) {
		log.Fatal("Usage: lic -in input.jpg -out out.png")
	}

	if *debug {
		lic.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	cfg, err := lic.LoadConfig(*preset)
	if err != nil {
		log.Fatalf("Unable to load the settings: %v", err)
	}

	// Flags set explicitly on the command line take precedence over the preset.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "length":
			cfg.FilterLength = *filterLength
		case "noise":
			cfg.NoiseMagnitude = *noiseMag
		case "steps":
			cfg.IntegrationSteps = *intSteps
		case "min":
			cfg.MinValue = *minValue
		case "max":
			cfg.MaxValue = *maxValue
		case "channel":
			cfg.Channel = *channel
		case "operator":
			cfg.Operator = *operator
		case "convolve":
			cfg.Convolve = *convolve
		case "seed":
			cfg.Seed = *seed
		case "workers":
			cfg.Workers = *workers
		}
	})

	if *dumpConfig != "" {
		if err := cfg.WriteYAML(*dumpConfig); err != nil {
			log.Fatalf("Unable to save the settings: %v", err)
		}
	}

	p, err := cfg.Processor()
	if err != nil {
		log.Fatalf("Invalid settings: %v", err)
	}

	var roi *image.Rectangle
	if *region != "" {
		r, err := parseRegion(*region)
		if err != nil {
			log.Fatalf("Invalid region: %v", err)
		}
		roi = &r
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var effectImg image.Image
	if *effect != "" {
		if effectImg, err = loadImage(*effect); err != nil {
			log.Fatalf("Unable to open the effect image: %v", err)
		}
	}

	if *fieldOut != "" {
		src := effectImg
		if src == nil {
			if src, err = loadImage(*source); err != nil {
				log.Fatalf("Unable to open source: %v", err)
			}
		}
		img, err := p.DrawField(src, *fieldStep, 1.5)
		if err != nil {
			log.Fatalf("Unable to render the direction field: %v", err)
		}
		if err := gg.SavePNG(*fieldOut, img); err != nil {
			log.Fatalf("Unable to save the direction field: %v", err)
		}
		if len(*destination) == 0 {
			return
		}
	}

	toProcess, err := collect(*source, *destination)
	if err != nil {
		log.Fatal(err)
	}

	showSpinner := term.IsTerminal(int(os.Stderr.Fd()))

	for in, out := range toProcess {
		start := time.Now()
		var (
			s        *utils.Spinner
			progress func(float64)
		)
		if showSpinner {
			s = utils.NewSpinner(os.Stderr)
			s.Start(fmt.Sprintf("Processing %s...", filepath.Base(in)))
			progress = s.SetProgress
		}

		processErr := process(ctx, p, in, out, effectImg, roi, *fit, progress)
		if s != nil {
			s.Stop()
		}

		if processErr == nil {
			fmt.Fprintf(os.Stderr, "\nGenerated in: %s%s%s\n", utils.SuccessColor, utils.FormatTime(time.Since(start)), utils.DefaultColor)
			fmt.Fprintf(os.Stderr, "Saved as: %s %s✓%s\n\n", filepath.Base(out), utils.SuccessColor, utils.DefaultColor)
		} else {
			fmt.Fprintf(os.Stderr, "\n%sError converting image: %s: %s%s\n", utils.ErrorColor, in, processErr.Error(), utils.DefaultColor)
			if errors.Is(processErr, context.Canceled) {
				os.Exit(1)
			}
		}
	}
}

// collect maps every input image to its output path.
func collect(source, destination string) (map[string]string, error) {
	toProcess := make(map[string]string)

	if utils.IsURL(source) {
		toProcess[source] = destination
		return toProcess, nil
	}

	fs, err := os.Stat(source)
	if err != nil {
		return nil, fmt.Errorf("unable to open source: %w", err)
	}

	switch mode := fs.Mode(); {
	case mode.IsDir():
		files, err := os.ReadDir(source)
		if err != nil {
			return nil, fmt.Errorf("unable to read dir: %w", err)
		}

		// Check if the image destination is a directory or a file.
		dst, err := os.Stat(destination)
		if err != nil {
			return nil, fmt.Errorf("unable to get dir stats: %w", err)
		}
		if dst.Mode().IsRegular() {
			return nil, errors.New("please specify a directory as destination")
		}

		for _, f := range files {
			ext := strings.ToLower(filepath.Ext(f.Name()))
			for _, iex := range extensions {
				if ext == iex {
					name := strings.TrimSuffix(f.Name(), filepath.Ext(f.Name()))
					toProcess[filepath.Join(source, f.Name())] = filepath.Join(destination, name+".png")
				}
			}
		}
	case mode.IsRegular():
		toProcess[source] = destination
	}
	return toProcess, nil
}

// process filters a single image and saves the result.
func process(
	ctx context.Context,
	p *lic.Processor,
	in, out string,
	effect image.Image,
	roi *image.Rectangle,
	fit bool,
	progress func(float64),
) error {
	src, err := loadImage(in)
	if err != nil {
		return err
	}
	if effect == nil {
		effect = src
	}
	if fit && effect.Bounds().Size() != src.Bounds().Size() {
		resized := image.NewNRGBA(image.Rect(0, 0, src.Bounds().Dx(), src.Bounds().Dy()))
		draw.BiLinear.Scale(resized, resized.Bounds(), effect, effect.Bounds(), draw.Src, nil)
		effect = resized
	}

	var dst image.Image
	if roi != nil {
		canvas := image.NewNRGBA64(src.Bounds())
		draw.Draw(canvas, canvas.Bounds(), src, src.Bounds().Min, draw.Src)
		if err := p.DrawRegion(ctx, canvas, roi.Add(src.Bounds().Min), effect, progress); err != nil {
			return err
		}
		dst = canvas
	} else {
		if dst, err = p.Draw(ctx, src, effect, progress); err != nil {
			return err
		}
	}
	return saveImage(out, dst)
}

// loadImage decodes the image found at the local path or url.
func loadImage(path string) (image.Image, error) {
	var (
		file *os.File
		err  error
	)
	if utils.IsURL(path) {
		if file, err = utils.DownloadImage(path); err != nil {
			return nil, err
		}
		defer os.Remove(file.Name())
	} else {
		if file, err = os.Open(path); err != nil {
			return nil, err
		}
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("unable to decode %s: %w", path, err)
	}
	return img, nil
}

// saveImage encodes the image by the destination extension.
func saveImage(path string, img image.Image) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		return jpeg.Encode(f, img, &jpeg.Options{Quality: 100})
	default:
		return gg.SavePNG(path, img)
	}
}

// parseRegion parses a rectangle given as x0,y0,x1,y1.
func parseRegion(s string) (image.Rectangle, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return image.Rectangle{}, fmt.Errorf("expected x0,y0,x1,y1, got %q", s)
	}
	var c [4]int
	for i, part := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return image.Rectangle{}, fmt.Errorf("invalid coordinate %q: %w", part, err)
		}
		c[i] = v
	}
	return image.Rect(c[0], c[1], c[2], c[3]), nil
}
