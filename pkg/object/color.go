package object

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nchiapol/lookat/pkg/errors"
)

// Color is a 24-bit RGB colour, 0xRRGGBB.
type Color uint32

// Named colours.
const (
	Black   Color = 0x000000
	White   Color = 0xffffff
	Red     Color = 0xff0000
	Green   Color = 0x00ff00
	Blue    Color = 0x0000ff
	Cyan    Color = 0x00ffff
	Magenta Color = 0xff00ff
	Gray    Color = 0x808080
)

var colorNames = map[string]Color{
	"black":   Black,
	"white":   White,
	"red":     Red,
	"green":   Green,
	"blue":    Blue,
	"cyan":    Cyan,
	"magenta": Magenta,
	"gray":    Gray,
	"grey":    Gray,
}

// RGB returns the colour channels scaled to [0, 1].
func (c Color) RGB() (r, g, b float64) {
	return float64(c>>16&0xff) / 255, float64(c>>8&0xff) / 255, float64(c&0xff) / 255
}

// Hex returns the colour as "#rrggbb".
func (c Color) Hex() string {
	return fmt.Sprintf("#%06x", uint32(c)&0xffffff)
}

func (c Color) String() string { return c.Hex() }

// ParseColor accepts a colour name ("red") or a hex triplet ("#ff0000").
func ParseColor(s string) (Color, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := colorNames[s]; ok {
		return c, nil
	}
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 {
		return 0, errors.New(errors.ErrCodeInvalidInput, "unknown colour %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidInput, err, "unknown colour %q", s)
	}
	return Color(v), nil
}
