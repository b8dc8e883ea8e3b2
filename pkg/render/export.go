package render

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nchiapol/lookat/pkg/errors"
	"github.com/nchiapol/lookat/pkg/observability"
	"github.com/nchiapol/lookat/pkg/toolkit"
)

// Format is an export file format.
type Format string

const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
)

// DefaultFormats are written when the target path has no extension.
var DefaultFormats = []Format{FormatPNG, FormatSVG}

// ParseFormat accepts a format name with or without a leading dot.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimPrefix(s, "."))); f {
	case FormatPNG, FormatSVG:
		return f, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported export format %q (want png or svg)", s)
}

// ExportOption configures [Export].
type ExportOption func(*exportConfig)

type exportConfig struct {
	formats []Format
	png     []PNGOption
	svg     []SVGOption
}

// WithFormats replaces [DefaultFormats] for paths without an extension.
func WithFormats(fs ...Format) ExportOption {
	return func(c *exportConfig) {
		if len(fs) > 0 {
			c.formats = fs
		}
	}
}

// WithPNGOptions passes options through to [RenderPNG].
func WithPNGOptions(opts ...PNGOption) ExportOption {
	return func(c *exportConfig) { c.png = append(c.png, opts...) }
}

// WithSVGOptions passes options through to [RenderSVG].
func WithSVGOptions(opts ...SVGOption) ExportOption {
	return func(c *exportConfig) { c.svg = append(c.svg, opts...) }
}

// Targets returns the files [Export] writes for path.
func Targets(path string, formats []Format) ([]string, []Format, error) {
	if err := errors.ValidateOutputPath(path); err != nil {
		return nil, nil, err
	}
	if ext := filepath.Ext(path); ext != "" {
		f, err := ParseFormat(ext)
		if err != nil {
			return nil, nil, err
		}
		return []string{path}, []Format{f}, nil
	}
	paths := make([]string, len(formats))
	for i, f := range formats {
		paths[i] = path + "." + string(f)
	}
	return paths, formats, nil
}

// Export writes s to path. A path with an extension yields exactly that
// file; a bare path yields one file per format. It returns the written
// paths.
func Export(ctx context.Context, s toolkit.Scene, path string, opts ...ExportOption) (paths []string, err error) {
	cfg := exportConfig{formats: DefaultFormats}
	for _, o := range opts {
		o(&cfg)
	}
	paths, formats, err := Targets(path, cfg.formats)
	if err != nil {
		return nil, err
	}

	names := make([]string, len(formats))
	for i, f := range formats {
		names[i] = string(f)
	}
	start := time.Now()
	observability.Render().OnRenderStart(ctx, names)
	defer func() {
		observability.Render().OnRenderComplete(ctx, names, time.Since(start), err)
	}()

	d := Build(s)
	for i, f := range formats {
		if err := ctx.Err(); err != nil {
			return paths[:i], err
		}
		data, err := encode(d, f, &cfg)
		if err != nil {
			return paths[:i], err
		}
		if err := writeFile(paths[i], data); err != nil {
			return paths[:i], err
		}
	}
	return paths, nil
}

func encode(d Drawing, f Format, cfg *exportConfig) ([]byte, error) {
	if f == FormatSVG {
		return RenderSVG(d, cfg.svg...), nil
	}
	return RenderPNG(d, cfg.png...)
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "create %s", dir)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "write %s", path)
	}
	return nil
}
