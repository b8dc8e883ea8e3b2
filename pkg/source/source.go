// Package source provides the tabular event data histograms are filled from.
//
// A [Source] is an ordered set of events with named numeric fields. Filling
// takes an expression ("pt", "sqrt(px*px + py*py)", or "y:x" for 2-D), an
// optional weight or selection expression, and a binning specification.
// Selections evaluate to 1 or 0, so "pt > 2 && eta < 1" and "w" are both
// valid weights.
package source

import (
	"github.com/nchiapol/lookat/pkg/object"
)

// Event is one row of a source.
type Event interface {
	// Value returns the named field. Unknown fields fail with
	// ErrCodeFieldNotFound.
	Value(field string) (float64, error)
}

// Source is a named collection of events.
type Source interface {
	Name() string
	Fields() []string
	Len() int
	Event(i int) Event

	// Fill creates a histogram named output from expr, weighting each
	// event by weight (empty means 1).
	Fill(expr, weight, output string, bins object.BinSpec) (*object.Hist, error)

	// FillInto adds the events to an existing histogram.
	FillInto(h *object.Hist, expr, weight string) error

	// Range returns the smallest and largest finite value of expr.
	Range(expr string) (lo, hi float64, err error)
}
