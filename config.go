package lic

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config is the user facing form of the filter settings, as stored in preset files.
// MinValue and MaxValue are expressed in tenths, the same way they are entered on the
// command line; they are divided by ten when the Processor is built.
type Config struct {
	FilterLength     float64 `yaml:"filter_length"`
	NoiseMagnitude   float64 `yaml:"noise_magnitude"`
	IntegrationSteps float64 `yaml:"integration_steps"`
	MinValue         float64 `yaml:"min_value"`
	MaxValue         float64 `yaml:"max_value"`
	Channel          string  `yaml:"channel"`
	Operator         string  `yaml:"operator"`
	Convolve         string  `yaml:"convolve"`
	Seed             int64   `yaml:"seed"`
	Workers          int     `yaml:"workers"`
}

// DefaultConfig returns the embedded default settings.
func DefaultConfig() *Config {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		panic(fmt.Sprintf("lic: parsing embedded defaults: %v", err))
	}
	return cfg
}

// LoadConfig loads the settings from a YAML file, merging them over the embedded defaults.
// If path is empty, only the defaults are used.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	// Only the fields present in the file are overwritten.
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// WriteYAML writes the settings to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// Processor converts the settings into a Processor.
func (c *Config) Processor() (*Processor, error) {
	ch, err := ParseChannel(c.Channel)
	if err != nil {
		return nil, err
	}
	op, err := ParseOperator(c.Operator)
	if err != nil {
		return nil, err
	}
	conv, err := ParseConvolve(c.Convolve)
	if err != nil {
		return nil, err
	}

	return &Processor{
		FilterLength:     c.FilterLength,
		NoiseMagnitude:   c.NoiseMagnitude,
		IntegrationSteps: c.IntegrationSteps,
		MinValue:         c.MinValue / 10.0,
		MaxValue:         c.MaxValue / 10.0,
		Channel:          ch,
		Operator:         op,
		Convolve:         conv,
		Seed:             c.Seed,
		Workers:          c.Workers,
	}, nil
}

// ParseChannel returns the channel matching the name.
func ParseChannel(s string) (Channel, error) {
	for _, c := range []Channel{Hue, Saturation, Brightness} {
		if strings.EqualFold(s, c.String()) {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown effect channel %q", s)
}

// ParseOperator returns the operator matching the name.
func ParseOperator(s string) (Operator, error) {
	for _, o := range []Operator{Derivative, Gradient} {
		if strings.EqualFold(s, o.String()) {
			return o, nil
		}
	}
	return 0, fmt.Errorf("unknown effect operator %q", s)
}

// ParseConvolve returns the convolution source matching the name.
func ParseConvolve(s string) (Convolve, error) {
	for _, c := range []Convolve{WithNoise, WithSource} {
		if strings.EqualFold(s, c.String()) {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown convolution source %q", s)
}
