// Package config loads mk_hist settings: built-in defaults, then an optional
// YAML file, then command-line flags.
package config

import (
	"fmt"
	"image/color"
	"os"
	"strings"

	"gonum.org/v1/plot/vg"
	"gopkg.in/yaml.v3"

	"github.com/scigolib/bandhist"
)

// Plot holds histogram and figure settings.
type Plot struct {
	Bins     int     `yaml:"bins"`
	Title    string  `yaml:"title"` // May contain {site} and {band}.
	XLabel   string  `yaml:"x_label"`
	YLabel   string  `yaml:"y_label"`
	WidthCM  float64 `yaml:"width_cm"`
	HeightCM float64 `yaml:"height_cm"` // Zero: derived from width.
	Fill     string  `yaml:"fill"`      // Hex colour, "#rrggbb" or "#rrggbbaa".
}

// Config is the full mk_hist configuration.
type Config struct {
	Layout bandhist.Layout `yaml:"layout"`
	Plot   Plot            `yaml:"plot"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Layout: bandhist.DefaultLayout(),
		Plot: Plot{
			Bins:     bandhist.DefaultBins,
			Title:    "Histogram of {site} Band {band} Reflectance",
			XLabel:   "Reflectance",
			YLabel:   "Frequency",
			WidthCM:  16,
			HeightCM: 12,
			Fill:     "#1f77b4",
		},
	}
}

// Load reads a YAML file over the defaults. Keys absent from the file keep
// their default values.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // G304: config path comes from the operator
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail late in the pipeline.
func (c Config) Validate() error {
	if c.Plot.Bins < 1 {
		return fmt.Errorf("plot.bins must be positive, got %d", c.Plot.Bins)
	}
	if c.Plot.WidthCM <= 0 {
		return fmt.Errorf("plot.width_cm must be positive, got %g", c.Plot.WidthCM)
	}
	if c.Plot.HeightCM < 0 {
		return fmt.Errorf("plot.height_cm must not be negative, got %g", c.Plot.HeightCM)
	}
	if _, err := ParseColor(c.Plot.Fill); err != nil {
		return fmt.Errorf("plot.fill: %w", err)
	}
	return nil
}

// PlotOptions renders the plot settings for one site and band.
func (c Config) PlotOptions(site string, band int) (bandhist.PlotOptions, error) {
	fill, err := ParseColor(c.Plot.Fill)
	if err != nil {
		return bandhist.PlotOptions{}, err
	}
	title := strings.NewReplacer(
		"{site}", site,
		"{band}", fmt.Sprint(band),
	).Replace(c.Plot.Title)

	return bandhist.PlotOptions{
		Title:  title,
		XLabel: c.Plot.XLabel,
		YLabel: c.Plot.YLabel,
		Width:  vg.Length(c.Plot.WidthCM) * vg.Centimeter,
		Height: vg.Length(c.Plot.HeightCM) * vg.Centimeter,
		Fill:   fill,
	}, nil
}

// ParseColor parses "#rrggbb" or "#rrggbbaa". An empty string is nil (library default).
func ParseColor(s string) (color.Color, error) {
	if s == "" {
		return nil, nil
	}
	hex := strings.TrimPrefix(s, "#")
	var r, g, b uint8
	a := uint8(0xff)
	switch len(hex) {
	case 6:
		if _, err := fmt.Sscanf(hex, "%02x%02x%02x", &r, &g, &b); err != nil {
			return nil, fmt.Errorf("colour %q: %w", s, err)
		}
	case 8:
		if _, err := fmt.Sscanf(hex, "%02x%02x%02x%02x", &r, &g, &b, &a); err != nil {
			return nil, fmt.Errorf("colour %q: %w", s, err)
		}
	default:
		return nil, fmt.Errorf("colour %q: want #rrggbb or #rrggbbaa", s)
	}
	return color.NRGBA{R: r, G: g, B: b, A: a}, nil
}
