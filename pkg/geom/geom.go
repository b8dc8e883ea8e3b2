// Package geom describes pad geometry in normalized canvas coordinates.
//
// All rectangles use the unit square: (0,0) is the lower-left corner of the
// canvas and (1,1) the upper-right one. A pad whose rectangle lies outside the
// unit square is still alive but not visible; this is how pads are hidden.
package geom

import (
	"fmt"

	"github.com/nchiapol/lookat/pkg/errors"
)

// Rect is a rectangle in normalized canvas coordinates.
type Rect struct {
	XMin, YMin float64
	XMax, YMax float64
}

// Fixed rectangles used by the layout engine.
var (
	// Full covers the whole canvas.
	Full = Rect{0, 0, 1, 1}

	// Hidden lies entirely below the visible canvas area.
	Hidden = Rect{0, -0.9, 1, -0.1}
)

// RatioSplit is the canvas height fraction separating a ratio pad (below)
// from the main pad (above).
const RatioSplit = 0.3

// MainWithRatio and Ratio are the pad rectangles once a ratio pad exists.
var (
	MainWithRatio = Rect{0, RatioSplit, 1, 1}
	Ratio         = Rect{0, 0, 1, RatioSplit}
)

// Width returns the horizontal extent of r.
func (r Rect) Width() float64 { return r.XMax - r.XMin }

// Height returns the vertical extent of r.
func (r Rect) Height() float64 { return r.YMax - r.YMin }

// Validate reports whether r satisfies 0 <= min < max <= 1 on both axes.
func (r Rect) Validate() error {
	if !(0 <= r.XMin && r.XMin < r.XMax && r.XMax <= 1) {
		return errors.New(errors.ErrCodeInvalidRect, "invalid x range [%g, %g]", r.XMin, r.XMax)
	}
	if !(0 <= r.YMin && r.YMin < r.YMax && r.YMax <= 1) {
		return errors.New(errors.ErrCodeInvalidRect, "invalid y range [%g, %g]", r.YMin, r.YMax)
	}
	return nil
}

// Visible reports whether any part of r overlaps the unit square.
func (r Rect) Visible() bool {
	return r.XMax > 0 && r.XMin < 1 && r.YMax > 0 && r.YMin < 1
}

func (r Rect) String() string {
	return fmt.Sprintf("(%g, %g, %g, %g)", r.XMin, r.YMin, r.XMax, r.YMax)
}

// Margins are pad margins as fractions of the pad size.
type Margins struct {
	Top, Right, Bottom, Left float64
}

// DefaultMargins match what a freshly created pad uses.
var DefaultMargins = Margins{Top: 0.1, Right: 0.1, Bottom: 0.1, Left: 0.1}

// UniformMargins returns margins with the same value on all four sides.
func UniformMargins(m float64) Margins {
	return Margins{Top: m, Right: m, Bottom: m, Left: m}
}
