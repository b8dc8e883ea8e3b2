// Package fonts provides the font used for canvas text.
//
// The Go Regular face ships with golang.org/x/image, so exports look the
// same on every system. SVG output embeds it as base64; PNG output
// rasterizes it through gogpu/gg.
package fonts

import (
	"encoding/base64"
	"sync"

	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/goregular"
)

// RegularTTF returns the TTF font data.
func RegularTTF() []byte {
	return goregular.TTF
}

// Cache for the base64-encoded font (computed once on first access).
var (
	ttfBase64     string
	ttfBase64Once sync.Once
)

// RegularTTFBase64 returns the TTF font data as a base64 string.
// The result is cached after first computation.
func RegularTTFBase64() string {
	ttfBase64Once.Do(func() {
		ttfBase64 = base64.StdEncoding.EncodeToString(goregular.TTF)
	})
	return ttfBase64
}

var (
	source     *text.FontSource
	sourceErr  error
	sourceOnce sync.Once
)

// Source returns the parsed font, shared by all faces.
func Source() (*text.FontSource, error) {
	sourceOnce.Do(func() {
		source, sourceErr = text.NewFontSource(goregular.TTF)
	})
	return source, sourceErr
}

// Face returns a face of the given size in pixels.
func Face(size float64) (text.Face, error) {
	src, err := Source()
	if err != nil {
		return nil, err
	}
	return src.Face(size), nil
}

// FontFamily is the CSS font-family name for the embedded font.
const FontFamily = "Go Regular"

// FallbackFontFamily provides fallback fonts for viewers that ignore the embedded font.
const FallbackFontFamily = `'Go Regular', 'Helvetica', 'Arial', sans-serif`
