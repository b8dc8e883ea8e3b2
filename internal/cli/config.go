package cli

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/nchiapol/lookat/pkg/canvas"
	"github.com/nchiapol/lookat/pkg/errors"
	"github.com/nchiapol/lookat/pkg/object"
	"github.com/nchiapol/lookat/pkg/render"
)

const (
	defaultWidth  = 800 // default canvas width in pixels
	defaultHeight = 600 // default canvas height in pixels
)

// Config holds the settings read from the TOML config file. Command-line
// flags override them.
//
// Example file:
//
//	bins = 50
//	em = 0.04
//	palette = ["red", "#1f77b4"]
//	width = 1024
//	height = 768
//	formats = ["svg"]
//	cache_ttl = "24h"
type Config struct {
	Bins     int      `toml:"bins"`
	Em       float64  `toml:"em"`
	Palette  []string `toml:"palette"`
	Width    int      `toml:"width"`
	Height   int      `toml:"height"`
	Formats  []string `toml:"formats"`
	CacheTTL Duration `toml:"cache_ttl"`
}

// Duration is a time.Duration written as a Go duration string in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid duration %q", text)
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// DefaultConfig returns the settings used without a config file.
func DefaultConfig() Config {
	return Config{
		Bins:   object.DefaultBins,
		Em:     canvas.DefaultEm,
		Width:  defaultWidth,
		Height: defaultHeight,
	}
}

// LoadConfig reads path on top of the defaults. A missing file yields the
// defaults unless required is set.
func LoadConfig(path string, required bool) (Config, error) {
	cfg := DefaultConfig()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if required {
			return cfg, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
		}
		return cfg, nil
	}
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse config %s", path)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return cfg, errors.New(errors.ErrCodeInvalidInput, "unknown config key %q in %s", undecoded[0].String(), path)
	}
	return cfg, cfg.Validate()
}

// Validate checks value ranges, colours and formats.
func (c Config) Validate() error {
	if c.Bins <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "bins must be positive, got %d", c.Bins)
	}
	if c.Em <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "em must be positive, got %v", c.Em)
	}
	if c.Width <= 0 || c.Height <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "canvas size must be positive, got %dx%d", c.Width, c.Height)
	}
	if _, err := c.palette(); err != nil {
		return err
	}
	_, err := c.ExportFormats()
	return err
}

func (c Config) palette() ([]object.Color, error) {
	out := make([]object.Color, 0, len(c.Palette))
	for _, s := range c.Palette {
		col, err := object.ParseColor(s)
		if err != nil {
			return nil, err
		}
		out = append(out, col)
	}
	return out, nil
}

// CanvasOptions turns the settings into canvas options.
func (c Config) CanvasOptions() ([]canvas.Option, error) {
	opts := []canvas.Option{
		canvas.WithSize(c.Width, c.Height),
		canvas.WithEm(c.Em),
	}
	pal, err := c.palette()
	if err != nil {
		return nil, err
	}
	if len(pal) > 0 {
		opts = append(opts, canvas.WithPalette(pal...))
	}
	return opts, nil
}

// ExportFormats returns the formats written for a path without extension.
func (c Config) ExportFormats() ([]render.Format, error) {
	if len(c.Formats) == 0 {
		return render.DefaultFormats, nil
	}
	out := make([]render.Format, 0, len(c.Formats))
	for _, s := range c.Formats {
		f, err := render.ParseFormat(s)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}
