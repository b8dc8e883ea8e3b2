// Package object defines the plotted objects handled by the layout engine.
//
// A plotted object is an opaque, named handle to something a pad can host:
// binned aggregates ([Hist], 1-D and 2-D), point series ([Graph]),
// efficiencies ([Efficiency]), multi-series aggregates ([MultiGraph]) and
// legends ([Legend]). Every object implements [Object]; the remaining
// capabilities (titles, axes, colours, statistics boxes, deferred painting)
// are small interfaces that callers probe for with type assertions, so a
// batch operation can skip kinds lacking a capability without failing.
//
// # Ownership
//
// Objects are owned by the session registry. Pads and ratio artifacts only
// reference them, by pointer while drawing and by name when deciding whether
// an object is still in use.
//
// # Binning
//
// Histograms are built from a [Binning]: either fixed-width bins over a range
// or an explicit list of edges. [ParseBinSpec] reads the textual forms
// "(n)", "(n, lo, hi)" and "[e0, e1, ...]"; any other specification is an
// INVALID_BINNING error.
package object
