package object

import (
	"math"
	"slices"
)

// Graph is a sequence of (x, y) points.
type Graph struct {
	name      string
	title     string
	titleSize float64
	xs, ys    []float64
	x, y      Axis
	line      Color
	marker    Color
	varInfo   string
}

// NewGraph returns a graph over the given points. xs and ys must have the
// same length; extra values of the longer slice are ignored.
func NewGraph(name, title string, xs, ys []float64) *Graph {
	n := min(len(xs), len(ys))
	return &Graph{
		name:      name,
		title:     title,
		titleSize: DefaultTitleSize,
		xs:        slices.Clone(xs[:n]),
		ys:        slices.Clone(ys[:n]),
		x:         NewAxis(),
		y:         NewAxis(),
		line:      Black,
		marker:    Black,
	}
}

func (g *Graph) Name() string        { return g.name }
func (g *Graph) SetName(name string) { g.name = name }
func (g *Graph) Kind() Kind          { return KindGraph }

func (g *Graph) Title() string             { return g.title }
func (g *Graph) SetTitle(title string)     { g.title = title }
func (g *Graph) TitleSize() float64        { return g.titleSize }
func (g *Graph) SetTitleSize(size float64) { g.titleSize = size }

func (g *Graph) XAxis() *Axis { return &g.x }
func (g *Graph) YAxis() *Axis { return &g.y }

func (g *Graph) LineColor() Color       { return g.line }
func (g *Graph) SetLineColor(c Color)   { g.line = c }
func (g *Graph) MarkerColor() Color     { return g.marker }
func (g *Graph) SetMarkerColor(c Color) { g.marker = c }
func (g *Graph) VarInfo() string        { return g.varInfo }
func (g *Graph) SetVarInfo(v string)    { g.varInfo = v }

// Len returns the number of points.
func (g *Graph) Len() int { return len(g.xs) }

// Point returns the i-th point.
func (g *Graph) Point(i int) (x, y float64) { return g.xs[i], g.ys[i] }

// Bounds returns the extent of the points. An empty graph spans the unit square.
func (g *Graph) Bounds() (xmin, xmax, ymin, ymax float64) {
	if len(g.xs) == 0 {
		return 0, 1, 0, 1
	}
	xmin, xmax = math.Inf(1), math.Inf(-1)
	ymin, ymax = math.Inf(1), math.Inf(-1)
	for i := range g.xs {
		xmin, xmax = math.Min(xmin, g.xs[i]), math.Max(xmax, g.xs[i])
		ymin, ymax = math.Min(ymin, g.ys[i]), math.Max(ymax, g.ys[i])
	}
	return xmin, xmax, ymin, ymax
}

// Efficiency is a pass/total pair of histograms. Its graph, and with it
// the axes, only exist after it has been painted once.
type Efficiency struct {
	name      string
	title     string
	titleSize float64
	pass      *Hist
	total     *Hist
	painted   *Graph
	line      Color
	marker    Color
	varInfo   string
}

// NewEfficiency returns an unpainted efficiency of pass over total.
func NewEfficiency(name, title string, pass, total *Hist) *Efficiency {
	return &Efficiency{
		name:      name,
		title:     title,
		titleSize: DefaultTitleSize,
		pass:      pass,
		total:     total,
		line:      Black,
		marker:    Black,
	}
}

func (e *Efficiency) Name() string        { return e.name }
func (e *Efficiency) SetName(name string) { e.name = name }
func (e *Efficiency) Kind() Kind          { return KindEfficiency }

func (e *Efficiency) Title() string             { return e.title }
func (e *Efficiency) SetTitle(title string)     { e.title = title }
func (e *Efficiency) TitleSize() float64        { return e.titleSize }
func (e *Efficiency) SetTitleSize(size float64) { e.titleSize = size }

func (e *Efficiency) LineColor() Color     { return e.line }
func (e *Efficiency) MarkerColor() Color   { return e.marker }
func (e *Efficiency) VarInfo() string      { return e.varInfo }
func (e *Efficiency) SetVarInfo(v string)  { e.varInfo = v }
func (e *Efficiency) PaintedGraph() *Graph { return e.painted }
func (e *Efficiency) Pass() *Hist          { return e.pass }
func (e *Efficiency) Total() *Hist         { return e.total }

// SetLineColor also recolours the painted graph.
func (e *Efficiency) SetLineColor(c Color) {
	e.line = c
	if e.painted != nil {
		e.painted.SetLineColor(c)
	}
}

// SetMarkerColor also recolours the painted graph.
func (e *Efficiency) SetMarkerColor(c Color) {
	e.marker = c
	if e.painted != nil {
		e.painted.SetMarkerColor(c)
	}
}

// Paint builds the painted graph on first use. Bins with no total entries
// are left out.
func (e *Efficiency) Paint() {
	if e.painted != nil {
		return
	}
	var xs, ys []float64
	xb := e.total.XBinning()
	for i := 0; i < xb.NBins(); i++ {
		t := e.total.Content(i)
		if t == 0 {
			continue
		}
		xs = append(xs, xb.Center(i))
		ys = append(ys, e.pass.Content(i)/t)
	}
	e.painted = NewGraph(e.name+"_painted", e.title, xs, ys)
	e.painted.SetLineColor(e.line)
	e.painted.SetMarkerColor(e.marker)
}

// Value returns the efficiency of the bin containing x, or 0 when the bin
// has no total entries.
func (e *Efficiency) Value(x float64) float64 {
	t := e.total.ContentAt(x)
	if t == 0 {
		return 0
	}
	return e.pass.ContentAt(x) / t
}

// MultiGraph groups several graphs that share one frame.
type MultiGraph struct {
	name   string
	title  string
	graphs []*Graph
	frame  *Hist
}

// NewMultiGraph returns an aggregate over graphs.
func NewMultiGraph(name, title string, graphs ...*Graph) *MultiGraph {
	return &MultiGraph{name: name, title: title, graphs: graphs}
}

func (m *MultiGraph) Name() string        { return m.name }
func (m *MultiGraph) SetName(name string) { m.name = name }
func (m *MultiGraph) Kind() Kind          { return KindMultiGraph }

// Add appends g. The frame is rebuilt on the next access.
func (m *MultiGraph) Add(g *Graph) {
	m.graphs = append(m.graphs, g)
	m.frame = nil
}

// Graphs returns the member graphs in insertion order.
func (m *MultiGraph) Graphs() []*Graph { return slices.Clone(m.graphs) }

// Histogram returns the frame histogram that carries the title and axes of
// the aggregate, building it on first use.
func (m *MultiGraph) Histogram() *Hist {
	if m.frame != nil {
		return m.frame
	}
	xmin, xmax := math.Inf(1), math.Inf(-1)
	for _, g := range m.graphs {
		lo, hi, _, _ := g.Bounds()
		xmin, xmax = math.Min(xmin, lo), math.Max(xmax, hi)
	}
	if len(m.graphs) == 0 || !(xmin < xmax) {
		xmin, xmax = 0, 1
	}
	xb, _ := FixedWidth(100, xmin, xmax)
	m.frame = newHist(m.name+"_frame", m.title, 1, xb, Binning{})
	m.frame.SetStats(false)
	return m.frame
}

func (m *MultiGraph) XAxis() *Axis { return m.Histogram().XAxis() }
func (m *MultiGraph) YAxis() *Axis { return m.Histogram().YAxis() }

// Paint builds the frame.
func (m *MultiGraph) Paint() { m.Histogram() }
