package canvas

import (
	"github.com/nchiapol/lookat/pkg/errors"
	"github.com/nchiapol/lookat/pkg/object"
)

// TextStrategy locates the title and axes to annotate for one object.
// Object kinds expose their axes differently, so each kind family gets its
// own variant.
type TextStrategy interface {
	TitleTarget() object.Titled
	XAxis() *object.Axis
	YAxis() *object.Axis
}

type titledAxes interface {
	object.Titled
	object.Axes
}

// defaultStrategy serves histograms and graphs, which own their axes.
type defaultStrategy struct {
	obj titledAxes
}

func (s defaultStrategy) TitleTarget() object.Titled { return s.obj }
func (s defaultStrategy) XAxis() *object.Axis        { return s.obj.XAxis() }
func (s defaultStrategy) YAxis() *object.Axis        { return s.obj.YAxis() }

// efficiencyStrategy takes the axes from the painted graph; an efficiency
// has none before it is painted.
type efficiencyStrategy struct {
	eff   *object.Efficiency
	graph *object.Graph
}

func (s efficiencyStrategy) TitleTarget() object.Titled { return s.eff }
func (s efficiencyStrategy) XAxis() *object.Axis        { return s.graph.XAxis() }
func (s efficiencyStrategy) YAxis() *object.Axis        { return s.graph.YAxis() }

// aggregateStrategy titles the frame histogram of a multigraph.
type aggregateStrategy struct {
	mg *object.MultiGraph
}

func (s aggregateStrategy) TitleTarget() object.Titled { return s.mg.Histogram() }
func (s aggregateStrategy) XAxis() *object.Axis        { return s.mg.XAxis() }
func (s aggregateStrategy) YAxis() *object.Axis        { return s.mg.YAxis() }

// textKinds are the kinds a TextStrategy exists for.
var textKinds = []object.Kind{
	object.KindH1,
	object.KindH2,
	object.KindGraph,
	object.KindEfficiency,
	object.KindMultiGraph,
}

// NewTextStrategy returns the strategy for obj. It fails with
// ErrCodeUnsupportedKind for kinds without one and with
// ErrCodeNoSuitableObject for an efficiency that has not been painted yet.
func NewTextStrategy(obj object.Object) (TextStrategy, error) {
	switch obj.Kind() {
	case object.KindH1, object.KindH2, object.KindGraph:
		if o, ok := obj.(titledAxes); ok {
			return defaultStrategy{obj: o}, nil
		}
	case object.KindEfficiency:
		if e, ok := obj.(*object.Efficiency); ok {
			g := e.PaintedGraph()
			if g == nil {
				return nil, errors.New(errors.ErrCodeNoSuitableObject, "efficiency %q is not painted yet", e.Name())
			}
			return efficiencyStrategy{eff: e, graph: g}, nil
		}
	case object.KindMultiGraph:
		if m, ok := obj.(*object.MultiGraph); ok {
			return aggregateStrategy{mg: m}, nil
		}
	}
	return nil, errors.New(errors.ErrCodeUnsupportedKind, "no text strategy for %s %q", obj.Kind(), obj.Name())
}

// selectTextStrategy binds to the first primitive that can be annotated.
// An exhausted sequence yields ErrCodeNoSuitableObject, which callers treat
// as the normal state of an empty pad.
func selectTextStrategy(prims []object.Object) (TextStrategy, error) {
	for _, p := range prims {
		ts, err := NewTextStrategy(p)
		if err == nil {
			return ts, nil
		}
	}
	return nil, errors.New(errors.ErrCodeNoSuitableObject, "no suitable object on pad")
}
