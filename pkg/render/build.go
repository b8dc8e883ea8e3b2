package render

import (
	"math"
	"strconv"
	"strings"

	"github.com/nchiapol/lookat/pkg/geom"
	"github.com/nchiapol/lookat/pkg/object"
	"github.com/nchiapol/lookat/pkg/toolkit"
)

const (
	markerRadius = 3.0
	headroom     = 1.1
	tickLength   = 0.03
)

// Build lays out every visible pad of s.
func Build(s toolkit.Scene) Drawing {
	d := Drawing{Width: float64(s.Width), Height: float64(s.Height)}
	d.add(Box{W: d.Width, H: d.Height, Fill: colorPtr(object.White)})
	for _, p := range s.Pads {
		if !p.Rect.Visible() {
			continue
		}
		buildPad(&d, p)
	}
	return d
}

// box is a pixel rectangle.
type box struct{ x0, y0, x1, y1 float64 }

func (b box) w() float64 { return b.x1 - b.x0 }
func (b box) h() float64 { return b.y1 - b.y0 }

func padBox(d *Drawing, r geom.Rect) box {
	return box{
		x0: r.XMin * d.Width,
		x1: r.XMax * d.Width,
		y0: (1 - r.YMax) * d.Height,
		y1: (1 - r.YMin) * d.Height,
	}
}

func buildPad(d *Drawing, p toolkit.PadScene) {
	pb := padBox(d, p.Rect)
	m := p.Margins
	area := box{
		x0: pb.x0 + m.Left*pb.w(),
		x1: pb.x1 - m.Right*pb.w(),
		y0: pb.y0 + m.Top*pb.h(),
		y1: pb.y1 - m.Bottom*pb.h(),
	}
	d.add(Box{X: pb.x0, Y: pb.y0, W: pb.w(), H: pb.h(), Fill: colorPtr(object.White)})

	var plotted []toolkit.Item
	var legends []*object.Legend
	for _, it := range p.Items {
		if l, ok := it.Object.(*object.Legend); ok {
			legends = append(legends, l)
			continue
		}
		plotted = append(plotted, it)
	}

	if len(plotted) > 0 {
		lead := plotted[0].Object
		xa, ya := axesOf(lead)
		f := newFrame(area, plotted, p.LogY)
		if xa != nil && xa.HasRange {
			f.xlo, f.xhi = xa.RangeMin, xa.RangeMax
		}
		if ya != nil && ya.HasRange {
			f.setYRange(ya.RangeMin, ya.RangeMax)
		}
		f.fix()

		xt, yt := f.xTicks(xa), f.yTicks(ya)
		if p.Grid {
			drawGrid(d, f, xt, yt)
		}
		for _, it := range plotted {
			drawItem(d, f, it)
		}
		d.add(Box{X: area.x0, Y: area.y0, W: area.w(), H: area.h(), Stroke: colorPtr(object.Black)})
		drawAxes(d, f, pb, xa, ya, xt, yt)
		drawTitle(d, pb, m, lead)
		if h, ok := lead.(*object.Hist); ok && h.StatsEnabled() && h.Dim() == 1 {
			drawStats(d, f, h)
		}
	}
	for _, l := range legends {
		drawLegend(d, pb, l)
	}
}

func axesOf(obj object.Object) (x, y *object.Axis) {
	switch o := obj.(type) {
	case object.Axes:
		return o.XAxis(), o.YAxis()
	case *object.Efficiency:
		if g := o.PaintedGraph(); g != nil {
			return g.XAxis(), g.YAxis()
		}
	}
	return nil, nil
}

type titled interface {
	Title() string
	TitleSize() float64
}

func titleOf(obj object.Object) titled {
	if mg, ok := obj.(*object.MultiGraph); ok {
		return mg.Histogram()
	}
	t, _ := obj.(titled)
	return t
}

// textSize converts a size in fractions of the pad height to pixels.
func textSize(frac, padHeight float64) float64 {
	if frac <= 0 {
		frac = object.DefaultLabelSize
	}
	return frac * padHeight
}

// =============================================================================
// Frame
// =============================================================================

// frame maps data coordinates onto the plot area. With logY the y bounds
// are stored as decades.
type frame struct {
	area               box
	xlo, xhi, ylo, yhi float64
	logY               bool
}

func (f frame) px(x float64) float64 {
	return f.area.x0 + (x-f.xlo)/(f.xhi-f.xlo)*f.area.w()
}

// py maps y into the plot area, clamping at its edges.
func (f frame) py(y float64) float64 {
	if f.logY {
		if y <= 0 {
			return f.area.y1
		}
		y = math.Log10(y)
	}
	v := f.area.y1 - (y-f.ylo)/(f.yhi-f.ylo)*f.area.h()
	return math.Max(f.area.y0, math.Min(f.area.y1, v))
}

func (f *frame) setYRange(lo, hi float64) {
	if !f.logY {
		f.ylo, f.yhi = lo, hi
		return
	}
	if lo <= 0 {
		lo = math.Pow(10, f.ylo)
	}
	if hi > lo {
		f.ylo, f.yhi = math.Log10(lo), math.Log10(hi)
	}
}

func (f *frame) fix() {
	if !(f.xlo < f.xhi) {
		f.xlo, f.xhi = f.xlo-0.5, f.xhi+0.5
	}
	if !(f.ylo < f.yhi) {
		f.ylo, f.yhi = f.ylo-0.5, f.yhi+0.5
	}
}

// extent accumulates the data bounds of the drawn objects.
type extent struct {
	xlo, xhi, ylo, yhi float64
	xok, yok           bool
	minPos             float64
}

func (e *extent) x(lo, hi float64) {
	if !e.xok {
		e.xlo, e.xhi, e.xok = lo, hi, true
		return
	}
	e.xlo, e.xhi = math.Min(e.xlo, lo), math.Max(e.xhi, hi)
}

func (e *extent) y(v float64) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return
	}
	if !e.yok {
		e.ylo, e.yhi, e.yok = v, v, true
	} else {
		e.ylo, e.yhi = math.Min(e.ylo, v), math.Max(e.yhi, v)
	}
	if v > 0 && (e.minPos == 0 || v < e.minPos) {
		e.minPos = v
	}
}

func (e *extent) include(obj object.Object) {
	switch o := obj.(type) {
	case *object.Hist:
		xb := o.XBinning()
		if xb.NBins() == 0 {
			return
		}
		e.x(xb.Low(), xb.High())
		if o.Dim() == 2 {
			yb := o.YBinning()
			e.y(yb.Low())
			e.y(yb.High())
			return
		}
		e.y(0)
		for _, c := range o.Contents() {
			e.y(c)
		}
	case *object.Graph:
		e.graph(o)
	case *object.Efficiency:
		if g := o.PaintedGraph(); g != nil {
			e.graph(g)
		}
	case *object.MultiGraph:
		for _, g := range o.Graphs() {
			e.graph(g)
		}
	}
}

func (e *extent) graph(g *object.Graph) {
	if g.Len() == 0 {
		return
	}
	xmin, xmax, _, _ := g.Bounds()
	e.x(xmin, xmax)
	for i := range g.Len() {
		_, y := g.Point(i)
		e.y(y)
	}
}

func newFrame(area box, items []toolkit.Item, logY bool) frame {
	var e extent
	for _, it := range items {
		e.include(it.Object)
	}
	f := frame{area: area, logY: logY, xlo: 0, xhi: 1, ylo: 0, yhi: 1}
	if e.xok {
		f.xlo, f.xhi = e.xlo, e.xhi
	}
	if e.yok {
		f.ylo, f.yhi = e.ylo, e.yhi
	}
	twoD := false
	if h, ok := items[0].Object.(*object.Hist); ok && h.Dim() == 2 {
		twoD = true
	}
	switch {
	case logY:
		lo := e.minPos
		if lo <= 0 {
			lo = 0.1
		}
		hi := math.Max(f.yhi, lo*10)
		llo, lhi := math.Log10(lo/2), math.Log10(hi)
		f.ylo, f.yhi = llo, lhi+(lhi-llo)*(headroom-1)
	case !twoD:
		f.yhi = f.ylo + (f.yhi-f.ylo)*headroom
	}
	return f
}

// =============================================================================
// Ticks
// =============================================================================

// divisions returns the number of primary divisions of an axis; the
// hundreds encode secondary divisions, which are not drawn.
func divisions(a *object.Axis) int {
	n := object.DefaultNDivisions % 100
	if a != nil && a.NDivisions > 0 {
		n = a.NDivisions % 100
	}
	return max(n, 2)
}

func (f frame) xTicks(a *object.Axis) []float64 { return niceTicks(f.xlo, f.xhi, divisions(a)) }

func (f frame) yTicks(a *object.Axis) []float64 {
	if !f.logY {
		return niceTicks(f.ylo, f.yhi, divisions(a))
	}
	var out []float64
	for k := math.Ceil(f.ylo); k <= f.yhi; k++ {
		out = append(out, math.Pow(10, k))
	}
	return out
}

func niceTicks(lo, hi float64, n int) []float64 {
	step := niceNum((hi - lo) / float64(n))
	if step <= 0 || math.IsNaN(step) || math.IsInf(step, 0) {
		return nil
	}
	start := math.Ceil(lo/step) * step
	var out []float64
	for i := 0; ; i++ {
		v := start + float64(i)*step
		if v > hi+step*1e-9 {
			break
		}
		if math.Abs(v) < step*1e-9 {
			v = 0
		}
		out = append(out, v)
	}
	return out
}

func niceNum(x float64) float64 {
	exp := math.Floor(math.Log10(x))
	f := x / math.Pow(10, exp)
	var nf float64
	switch {
	case f <= 1:
		nf = 1
	case f <= 2:
		nf = 2
	case f <= 5:
		nf = 5
	default:
		nf = 10
	}
	return nf * math.Pow(10, exp)
}

func formatNum(v float64) string { return strconv.FormatFloat(v, 'g', 6, 64) }

// =============================================================================
// Objects
// =============================================================================

func drawItem(d *Drawing, f frame, it toolkit.Item) {
	style := strings.ReplaceAll(strings.ToLower(it.Style), "same", "")
	switch o := it.Object.(type) {
	case *object.Hist:
		if o.Dim() == 2 {
			drawH2(d, f, o)
			return
		}
		drawH1(d, f, o, strings.ContainsAny(style, "ep"))
	case *object.Graph:
		drawGraph(d, f, o, o.LineColor(), o.MarkerColor())
	case *object.Efficiency:
		if g := o.PaintedGraph(); g != nil {
			drawGraph(d, f, g, o.LineColor(), o.MarkerColor())
		}
	case *object.MultiGraph:
		for _, g := range o.Graphs() {
			drawGraph(d, f, g, g.LineColor(), g.MarkerColor())
		}
	}
}

// drawH1 draws a step outline, or with points a marker per bin spanned by
// a bar of the bin width.
func drawH1(d *Drawing, f frame, h *object.Hist, points bool) {
	xb := h.XBinning()
	cs := h.Contents()
	if xb.NBins() == 0 || len(cs) == 0 {
		return
	}
	if points {
		for i, c := range cs {
			lo, hi := xb.LowEdge(i), xb.LowEdge(i)+xb.Width(i)
			y := f.py(c)
			d.add(
				Polyline{Points: []Point{{f.px(lo), y}, {f.px(hi), y}}, Color: h.LineColor(), Width: 1},
				Marker{X: f.px(xb.Center(i)), Y: y, R: markerRadius, Color: h.MarkerColor()},
			)
		}
		return
	}
	pts := []Point{{f.px(xb.Low()), f.py(0)}}
	for i, c := range cs {
		y := f.py(c)
		pts = append(pts, Point{f.px(xb.LowEdge(i)), y}, Point{f.px(xb.LowEdge(i) + xb.Width(i)), y})
	}
	pts = append(pts, Point{f.px(xb.High()), f.py(0)})
	d.add(Polyline{Points: pts, Color: h.LineColor(), Width: 1.5})
}

// drawH2 fills each non-empty bin with a colour from blue (low) to red
// (high).
func drawH2(d *Drawing, f frame, h *object.Hist) {
	xb, yb := h.XBinning(), h.YBinning()
	cs := h.Contents()
	peak := 0.0
	for _, c := range cs {
		peak = math.Max(peak, c)
	}
	nx := xb.NBins()
	for i, c := range cs {
		if c == 0 || nx == 0 {
			continue
		}
		ix, iy := i%nx, i/nx
		x0, x1 := f.px(xb.LowEdge(ix)), f.px(xb.LowEdge(ix)+xb.Width(ix))
		y0, y1 := f.py(yb.LowEdge(iy)+yb.Width(iy)), f.py(yb.LowEdge(iy))
		t := 0.0
		if peak > 0 {
			t = math.Max(0, c/peak)
		}
		d.add(Box{X: x0, Y: y0, W: x1 - x0, H: y1 - y0, Fill: colorPtr(heat(t))})
	}
}

func heat(t float64) object.Color {
	r := uint32(math.Round(255 * t))
	b := uint32(math.Round(255 * (1 - t)))
	return object.Color(r<<16 | b)
}

func drawGraph(d *Drawing, f frame, g *object.Graph, line, marker object.Color) {
	pts := make([]Point, 0, g.Len())
	for i := range g.Len() {
		x, y := g.Point(i)
		pts = append(pts, Point{f.px(x), f.py(y)})
	}
	if len(pts) > 1 {
		d.add(Polyline{Points: pts, Color: line, Width: 1.5})
	}
	for _, p := range pts {
		d.add(Marker{X: p.X, Y: p.Y, R: markerRadius, Color: marker})
	}
}

// =============================================================================
// Annotations
// =============================================================================

func drawGrid(d *Drawing, f frame, xt, yt []float64) {
	for _, x := range xt {
		px := f.px(x)
		d.add(Polyline{Points: []Point{{px, f.area.y0}, {px, f.area.y1}}, Color: object.Gray, Width: 0.5, Dashed: true})
	}
	for _, y := range yt {
		py := f.py(y)
		d.add(Polyline{Points: []Point{{f.area.x0, py}, {f.area.x1, py}}, Color: object.Gray, Width: 0.5, Dashed: true})
	}
}

func drawAxes(d *Drawing, f frame, pb box, xa, ya *object.Axis, xt, yt []float64) {
	if xa == nil {
		a := object.NewAxis()
		xa = &a
	}
	if ya == nil {
		a := object.NewAxis()
		ya = &a
	}
	a := f.area
	xl, yl := textSize(xa.LabelSize, pb.h()), textSize(ya.LabelSize, pb.h())
	tick := tickLength * math.Min(a.w(), a.h())

	for _, x := range xt {
		px := f.px(x)
		d.add(
			Polyline{Points: []Point{{px, a.y1}, {px, a.y1 - tick}}, Color: object.Black, Width: 1},
			Label{Text: formatNum(x), X: px, Y: a.y1 + 1.2*xl, Size: xl, Anchor: AnchorMiddle},
		)
	}
	for _, y := range yt {
		py := f.py(y)
		d.add(
			Polyline{Points: []Point{{a.x0, py}, {a.x0 + tick, py}}, Color: object.Black, Width: 1},
			Label{Text: formatNum(y), X: a.x0 - 0.5*yl, Y: py + yl/3, Size: yl, Anchor: AnchorEnd},
		)
	}

	if xa.Title != "" {
		ts := textSize(xa.TitleSize, pb.h())
		d.add(Label{Text: xa.Title, X: a.x1, Y: a.y1 + 1.2*xl + ts*math.Max(xa.TitleOffset, 0.5)*1.2, Size: ts, Anchor: AnchorEnd})
	}
	if ya.Title != "" {
		ts := textSize(ya.TitleSize, pb.h())
		off := 3.5*yl + ts*math.Max(ya.TitleOffset, 0.5)
		d.add(Label{Text: ya.Title, X: math.Max(pb.x0+ts, a.x0-off), Y: a.y0, Size: ts, Anchor: AnchorEnd, Vertical: true})
	}
}

func drawTitle(d *Drawing, pb box, m geom.Margins, obj object.Object) {
	t := titleOf(obj)
	if t == nil || t.Title() == "" {
		return
	}
	size := textSize(t.TitleSize(), pb.h())
	y := pb.y0 + math.Max(size, 0.7*m.Top*pb.h())
	d.add(Label{Text: t.Title(), X: pb.x0 + pb.w()/2, Y: y, Size: size, Anchor: AnchorMiddle})
}

// drawStats draws the statistics box in the top right corner of the plot area.
func drawStats(d *Drawing, f frame, h *object.Hist) {
	s := h.Summary()
	rows := [][2]string{
		{"Entries", strconv.Itoa(s.Entries)},
		{"Mean", formatNum(s.Mean)},
		{"RMS", formatNum(s.RMS)},
	}
	size := math.Max(8, math.Min(14, 0.045*f.area.h()))
	w := 0.3 * f.area.w()
	x0, y0 := f.area.x1-w, f.area.y0
	line := 1.4 * size
	d.add(
		Box{X: x0, Y: y0, W: w, H: line * float64(len(rows)+1), Fill: colorPtr(object.White), Stroke: colorPtr(object.Black)},
		Label{Text: h.Name(), X: x0 + w/2, Y: y0 + line - size/3, Size: size, Anchor: AnchorMiddle},
	)
	for i, r := range rows {
		y := y0 + line*float64(i+2) - size/3
		d.add(
			Label{Text: r[0], X: x0 + size/2, Y: y, Size: size},
			Label{Text: r[1], X: x0 + w - size/2, Y: y, Size: size, Anchor: AnchorEnd},
		)
	}
}

// drawLegend places the legend in normalized pad coordinates.
func drawLegend(d *Drawing, pb box, l *object.Legend) {
	x0 := pb.x0 + l.Rect.XMin*pb.w()
	y0 := pb.y0 + (1-l.Rect.YMax)*pb.h()
	w, h := l.Rect.Width()*pb.w(), l.Rect.Height()*pb.h()
	d.add(Box{X: x0, Y: y0, W: w, H: h, Fill: colorPtr(l.FillColor), Stroke: colorPtr(object.Black)})

	entries := l.Entries()
	if len(entries) == 0 {
		return
	}
	row := h / float64(len(entries))
	size := math.Min(0.6*row, 14)
	for i, e := range entries {
		mid := y0 + row*(float64(i)+0.5)
		c := object.Black
		if col, ok := e.Object.(object.Colored); ok {
			c = col.LineColor()
		}
		d.add(
			Polyline{Points: []Point{{x0 + 0.05*w, mid}, {x0 + 0.25*w, mid}}, Color: c, Width: 2},
			Label{Text: e.Label, X: x0 + 0.3*w, Y: mid + size/3, Size: size},
		)
	}
}
