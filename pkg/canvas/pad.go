package canvas

import (
	"math"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/nchiapol/lookat/pkg/errors"
	"github.com/nchiapol/lookat/pkg/geom"
	"github.com/nchiapol/lookat/pkg/object"
	"github.com/nchiapol/lookat/pkg/toolkit"
)

// Font size multipliers in units of em.
const (
	titleSize = 1.5
	labelSize = 1.0
)

// fullMargin is the margin on each side of a pad promoted to the full canvas.
const fullMargin = 0.1

// Pad manages one toolkit pad: its rectangle, the texts it shows and the
// font sizes that keep those texts readable at the pad's height.
type Pad struct {
	name     string
	handle   toolkit.Pad
	layout   *Layout
	rect     geom.Rect
	title    string
	xlabel   string
	ylabel   string
	strategy TextStrategy
	em       float64
	logger   *log.Logger
}

func (p *Pad) Name() string       { return p.name }
func (p *Pad) Rect() geom.Rect    { return p.rect }
func (p *Pad) Title() string      { return p.title }
func (p *Pad) XLabel() string     { return p.xlabel }
func (p *Pad) YLabel() string     { return p.ylabel }
func (p *Pad) SetTitle(s string)  { p.title = s }
func (p *Pad) SetXLabel(s string) { p.xlabel = s }
func (p *Pad) SetYLabel(s string) { p.ylabel = s }

// Strategy returns the text strategy bound by the last update, or nil.
func (p *Pad) Strategy() TextStrategy { return p.strategy }

// Live probes the toolkit handle.
func (p *Pad) Live() bool {
	_, err := p.handle.Name()
	return err == nil
}

// handleErr turns a stale handle into a no-op.
func (p *Pad) handleErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if toolkit.IsInvalid(err) {
		p.logger.Debug("pad already gone", "pad", p.name, "op", op)
		return nil
	}
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	return errors.Wrap(code, err, "pad %s: %s", p.name, op)
}

// Activate makes this the pad subsequent draws go to.
func (p *Pad) Activate() error {
	if err := p.handle.Activate(); err != nil {
		return p.handleErr("activate", err)
	}
	if p.layout != nil {
		p.layout.active = p.name
	}
	return nil
}

// Resize replaces the rectangle. Call Update afterwards to re-lay-out text.
func (p *Pad) Resize(r geom.Rect) error {
	if err := r.Validate(); err != nil {
		return err
	}
	return p.setRect(r)
}

func (p *Pad) setRect(r geom.Rect) error {
	p.rect = r
	return p.handleErr("resize", p.handle.SetRect(r))
}

// Hide moves the pad below the visible canvas. Toolkit pads cannot be
// removed safely once created.
func (p *Pad) Hide() error {
	return p.setRect(geom.Hidden)
}

// Full makes the pad cover the whole canvas with fixed margins.
func (p *Pad) Full() error {
	if err := p.Activate(); err != nil {
		return err
	}
	if err := p.setRect(geom.Full); err != nil {
		return err
	}
	if err := p.handleErr("margins", p.handle.SetMargins(geom.UniformMargins(fullMargin))); err != nil {
		return err
	}
	return p.Update()
}

// SetGrid shows the grid.
func (p *Pad) SetGrid() error {
	return p.handleErr("grid", p.handle.SetGrid(true))
}

// SetLogY switches the y axis to a logarithmic scale.
func (p *Pad) SetLogY() error {
	return p.handleErr("logy", p.handle.SetLogY(true))
}

// Draw draws obj on this pad.
func (p *Pad) Draw(obj object.Object, style string) error {
	return p.handleErr("draw", p.handle.Draw(obj, style))
}

// Remove takes obj off this pad.
func (p *Pad) Remove(obj object.Object) error {
	return p.handleErr("remove", p.handle.Remove(obj))
}

// Refresh asks the toolkit to repaint the pad.
func (p *Pad) Refresh() error {
	return p.handleErr("refresh", p.handle.Refresh())
}

// Primitives returns the hosted objects of the given kinds in insertion
// order; with no kinds, histograms. A stale pad hosts nothing.
func (p *Pad) Primitives(kinds ...object.Kind) []object.Object {
	if len(kinds) == 0 {
		kinds = []object.Kind{object.KindH1, object.KindH2}
	}
	prims, err := p.handle.Primitives()
	if err != nil {
		_ = p.handleErr("primitives", err)
		return nil
	}
	var out []object.Object
	for _, o := range prims {
		if slices.Contains(kinds, o.Kind()) {
			out = append(out, o)
		}
	}
	return out
}

// HasObjectNamed reports whether a hosted primitive has the given name.
func (p *Pad) HasObjectNamed(name string) bool {
	prims, err := p.handle.Primitives()
	if err != nil {
		return false
	}
	return slices.ContainsFunc(prims, func(o object.Object) bool { return o.Name() == name })
}

// Hosts reports whether obj itself is drawn on the pad.
func (p *Pad) Hosts(obj object.Object) bool {
	prims, err := p.handle.Primitives()
	if err != nil {
		return false
	}
	return slices.Contains(prims, obj)
}

// calcSize converts a size in em into a fraction of the pad height.
func (p *Pad) calcSize(size float64) float64 {
	return 1 / p.rect.Height() * p.em * size
}

func (p *Pad) bindStrategy() error {
	ts, err := selectTextStrategy(p.Primitives(textKinds...))
	if err != nil {
		return err
	}
	p.strategy = ts
	return nil
}

// Update pushes the stored texts to the first annotatable primitive and
// rescales fonts and axes for the pad height. A pad with nothing to
// annotate is only refreshed.
func (p *Pad) Update() error {
	if err := p.bindStrategy(); err != nil {
		p.strategy = nil
		return p.Refresh()
	}
	ts := p.strategy

	t := ts.TitleTarget()
	t.SetTitle(p.title)
	t.SetTitleSize(p.calcSize(titleSize))

	x, y := ts.XAxis(), ts.YAxis()
	x.Title, x.TitleSize = p.xlabel, p.calcSize(labelSize)
	y.Title, y.TitleSize = p.ylabel, p.calcSize(labelSize)

	h := p.rect.Height()
	size := p.calcSize(labelSize)
	x.LabelSize, y.LabelSize = size, size
	y.NDivisions = 500 + int(math.Floor(10*h))
	x.TitleOffset, y.TitleOffset = 1.2*h, 1.2*h

	return p.Refresh()
}

// SetYRange sets the displayed y range of the first annotatable primitive.
// Without one it only logs.
func (p *Pad) SetYRange(lo, hi float64) error {
	if err := p.bindStrategy(); err != nil {
		p.logger.Debug("no suitable text strategy found", "pad", p.name)
		return nil
	}
	p.strategy.YAxis().SetRangeUser(lo, hi)
	return p.Refresh()
}
