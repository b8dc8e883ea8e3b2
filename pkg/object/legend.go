package object

import "github.com/nchiapol/lookat/pkg/geom"

// LegendEntry pairs an object with its label.
type LegendEntry struct {
	Object Object
	Label  string
}

// Legend is a box of labelled entries in normalized pad coordinates.
type Legend struct {
	name      string
	Rect      geom.Rect
	FillColor Color
	entries   []LegendEntry
}

// NewLegend returns an empty legend placed at r.
func NewLegend(name string, r geom.Rect) *Legend {
	return &Legend{name: name, Rect: r, FillColor: White}
}

func (l *Legend) Name() string        { return l.name }
func (l *Legend) SetName(name string) { l.name = name }
func (l *Legend) Kind() Kind          { return KindLegend }

// AddEntry appends an entry.
func (l *Legend) AddEntry(obj Object, label string) {
	l.entries = append(l.entries, LegendEntry{Object: obj, Label: label})
}

// Entries returns the entries in insertion order.
func (l *Legend) Entries() []LegendEntry {
	return append([]LegendEntry(nil), l.entries...)
}
