package render

import "github.com/nchiapol/lookat/pkg/object"

// Drawing is a laid-out canvas in pixel coordinates, origin top left.
type Drawing struct {
	Width, Height float64
	Shapes        []Shape
}

// Shape is one of [Box], [Polyline], [Marker] or [Label].
type Shape interface {
	shape()
}

// Box is an axis-aligned rectangle. Fill or Stroke may be absent.
type Box struct {
	X, Y, W, H float64
	Fill       *object.Color
	Stroke     *object.Color
}

// Polyline is an open path.
type Polyline struct {
	Points []Point
	Color  object.Color
	Width  float64
	Dashed bool
}

// Marker is a filled circle.
type Marker struct {
	X, Y, R float64
	Color   object.Color
}

// Anchor positions a label relative to its point.
type Anchor int

const (
	AnchorStart Anchor = iota
	AnchorMiddle
	AnchorEnd
)

// Label is a line of text; Y is the baseline. Vertical labels read
// bottom to top.
type Label struct {
	Text     string
	X, Y     float64
	Size     float64
	Anchor   Anchor
	Vertical bool
	Color    object.Color
}

// Point is a pixel position.
type Point struct{ X, Y float64 }

func (Box) shape()      {}
func (Polyline) shape() {}
func (Marker) shape()   {}
func (Label) shape()    {}

func (d *Drawing) add(s ...Shape) { d.Shapes = append(d.Shapes, s...) }

func colorPtr(c object.Color) *object.Color { return &c }
