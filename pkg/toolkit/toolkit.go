// Package toolkit defines the contract between the layout engine and the
// rendering toolkit that owns canvases and pads.
//
// The toolkit may invalidate any handle at any time, for example when the
// user closes a window. It gives no notification; the next call on the
// handle fails with [ErrInvalidHandle]. Callers probe with Name and treat
// that failure as "already gone".
package toolkit

import (
	"github.com/nchiapol/lookat/pkg/errors"
	"github.com/nchiapol/lookat/pkg/geom"
	"github.com/nchiapol/lookat/pkg/object"
)

// ErrInvalidHandle is returned by every method of a canvas or pad whose
// window is gone.
var ErrInvalidHandle = errors.New(errors.ErrCodeInvalidHandle, "toolkit handle is no longer valid")

// IsInvalid reports whether err signals a stale handle.
func IsInvalid(err error) bool {
	return errors.Is(err, errors.ErrCodeInvalidHandle)
}

// Toolkit creates canvases.
type Toolkit interface {
	// NewCanvas opens a canvas. An empty name lets the toolkit pick one.
	NewCanvas(name, title string, width, height int) (Canvas, error)
}

// Canvas is a top-level drawing surface.
type Canvas interface {
	// Name doubles as the liveness probe.
	Name() (string, error)
	NewPad(name string, r geom.Rect) (Pad, error)
	Refresh() error
	Snapshot() (Scene, error)
	Close() error
}

// Pad is a rectangular region of a canvas hosting drawn objects.
type Pad interface {
	Name() (string, error)
	Activate() error
	Rect() (geom.Rect, error)
	SetRect(r geom.Rect) error
	SetMargins(m geom.Margins) error
	SetGrid(on bool) error
	SetLogY(on bool) error

	// Draw puts obj on the pad. Unless style contains "same" the pad is
	// cleared first.
	Draw(obj object.Object, style string) error
	Remove(obj object.Object) error

	// Primitives returns the drawn objects in insertion order.
	Primitives() ([]object.Object, error)
	Refresh() error
}

// Scene is a read-only copy of a canvas, used for export.
type Scene struct {
	Name   string
	Title  string
	Width  int
	Height int
	Pads   []PadScene
}

// PadScene is one pad of a [Scene].
type PadScene struct {
	Name    string
	Rect    geom.Rect
	Margins geom.Margins
	Grid    bool
	LogY    bool
	Items   []Item
}

// Item is a drawn object with its draw style.
type Item struct {
	Object object.Object
	Style  string
}
