package session

import (
	"strings"
	"time"

	"github.com/nchiapol/lookat/pkg/canvas"
	"github.com/nchiapol/lookat/pkg/errors"
	"github.com/nchiapol/lookat/pkg/object"
	"github.com/nchiapol/lookat/pkg/observability"
	"github.com/nchiapol/lookat/pkg/ratio"
	"github.com/nchiapol/lookat/pkg/source"
)

// Draw styles.
const (
	StyleAxes    = "Ep"
	StyleOverlay = "same"
	StyleColz    = "colz"
)

// DefaultHistName is the name template of drawn histograms.
const DefaultHistName = "myHist_{0}"

// NormalisedLabel is the y-label of normalised histograms.
const NormalisedLabel = "normalised to unity"

// DrawOption configures [Session.Draw] and [Session.DrawCorrected].
type DrawOption func(*drawConfig)

type drawConfig struct {
	selection string
	name      string
	binning   string
	src       source.Source
}

// WithSelection weights events by sel; a selection yields 1 or 0.
func WithSelection(sel string) DrawOption {
	return func(c *drawConfig) { c.selection = sel }
}

// WithName names the histogram. "{0}" is replaced by the lowest free
// number; a leading "+" adds to the existing histogram of that name.
func WithName(name string) DrawOption {
	return func(c *drawConfig) { c.name = name }
}

// WithBinning sets the binning: "(n)", "(n, lo, hi)" or "[e0, e1, ...]".
func WithBinning(spec string) DrawOption {
	return func(c *drawConfig) { c.binning = spec }
}

// FromSource fills from src instead of the current source.
func FromSource(src source.Source) DrawOption {
	return func(c *drawConfig) { c.src = src }
}

func newDrawConfig(opts []DrawOption) drawConfig {
	cfg := drawConfig{name: DefaultHistName}
	for _, o := range opts {
		o(&cfg)
	}
	return cfg
}

// Dimensions returns the number of axes of expr, "y:x" being 2-D.
func Dimensions(expr string) int { return strings.Count(expr, ":") + 1 }

// drawStyle picks the style for a new histogram: 2-D histograms get a
// colour map, 1-D ones overlay an existing 1-D histogram or draw new axes.
func (s *Session) drawStyle(c *canvas.Layout, dims int) string {
	if dims == 2 {
		return StyleColz
	}
	if p := c.ActivePad(); p != nil && len(p.Primitives(object.KindH1)) > 0 {
		return StyleOverlay
	}
	return StyleAxes
}

func (s *Session) binSpec(spec string) (object.BinSpec, error) {
	if spec == "" {
		return object.BinSpec{N: s.bins}, nil
	}
	return object.ParseBinSpec(spec)
}

// Draw fills a histogram of expr from the current source and draws it on
// the active canvas, opening one if needed. It supports 1-D and 2-D
// expressions.
func (s *Session) Draw(expr string, opts ...DrawOption) (h *object.Hist, err error) {
	cfg := newDrawConfig(opts)
	start := time.Now()
	defer func() {
		name, entries := cfg.name, 0
		if h != nil {
			name, entries = h.Name(), h.Entries()
		}
		observability.Session().OnDraw(expr, name, entries, time.Since(start), err)
	}()

	dims := Dimensions(expr)
	if dims > 2 {
		return nil, errors.New(errors.ErrCodeUnsupported, "draw supports 1-D and 2-D histograms only, got %q", expr)
	}
	src, err := s.sourceOr(cfg.src)
	if err != nil {
		return nil, err
	}
	c, err := s.canvasOrNew()
	if err != nil {
		return nil, err
	}
	if err := c.ActivateMain(); err != nil {
		return nil, err
	}

	if target, ok := strings.CutPrefix(cfg.name, "+"); ok {
		h, err = s.appendTo(src, target, expr, cfg.selection)
	} else {
		h, err = s.fillNew(src, expr, cfg, dims)
	}
	if err != nil {
		return nil, err
	}

	style := s.drawStyle(c, dims)
	if p := c.ActivePad(); !p.Hosts(h) {
		if err := p.Draw(h, style); err != nil {
			return nil, err
		}
	}
	h.SetVarInfo(expr)
	if err := c.SetText(canvas.XLabel(expr)); err != nil {
		return nil, err
	}
	s.logger.Debug("drew histogram", "expr", expr, "name", h.Name(), "style", style, "entries", h.Entries())
	return h, nil
}

func (s *Session) fillNew(src source.Source, expr string, cfg drawConfig, dims int) (*object.Hist, error) {
	spec, err := s.binSpec(cfg.binning)
	if err != nil {
		return nil, err
	}
	kind := object.KindH1
	if dims == 2 {
		kind = object.KindH2
	}
	name := cfg.name
	if err := errors.ValidateName(strings.ReplaceAll(name, "{0}", "0")); err != nil {
		return nil, err
	}
	templated := strings.Contains(name, "{0}")
	if templated {
		name = s.reg.UniqueName(name, kind)
	}
	h, err := src.Fill(expr, cfg.selection, name, spec)
	if err != nil {
		if templated {
			s.reg.Unreserve(name, kind)
		}
		return nil, err
	}
	if old, ok := s.reg.Object(name).(*object.Hist); ok && !templated {
		s.logger.Debug("replacing histogram", "name", name)
		s.retire(old)
	}
	s.reg.AddObject(h)
	return h, nil
}

// retire takes obj off every pad still showing it, then drops it from the
// registry.
func (s *Session) retire(obj object.Object) {
	for _, c := range s.reg.Canvases() {
		for _, p := range c.Pads() {
			if !p.Hosts(obj) {
				continue
			}
			if err := p.Remove(obj); err != nil {
				s.logger.Debug("could not take object off pad", "object", obj.Name(), "pad", p.Name(), "err", err)
			}
		}
	}
	s.reg.RemoveObject(obj)
}

func (s *Session) appendTo(src source.Source, name, expr, selection string) (*object.Hist, error) {
	h, ok := s.reg.Object(name).(*object.Hist)
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "no histogram %q to add to", name)
	}
	if err := src.FillInto(h, expr, selection); err != nil {
		return nil, err
	}
	return h, nil
}

// RatioOption configures [Session.DrawRatio].
type RatioOption func(*ratioConfig)

type ratioConfig struct {
	num, den   *object.Hist
	canvas     *canvas.Layout
	normalised bool
}

// WithNumerator divides h instead of the most recent histogram.
func WithNumerator(h *object.Hist) RatioOption {
	return func(c *ratioConfig) { c.num = h }
}

// WithDenominator divides by h instead of the second most recent histogram.
func WithDenominator(h *object.Hist) RatioOption {
	return func(c *ratioConfig) { c.den = h }
}

// OnCanvas draws on c instead of the active canvas.
func OnCanvas(c *canvas.Layout) RatioOption {
	return func(rc *ratioConfig) { rc.canvas = c }
}

// Normalised sets whether both histograms are scaled to unit area before
// dividing. It defaults to true.
func Normalised(on bool) RatioOption {
	return func(c *ratioConfig) { c.normalised = on }
}

// DrawRatio divides two histograms and draws the result on the ratio pad
// of a canvas, creating the pad on first use. A 2-D ratio takes over the
// whole canvas. The previously active pad is active again afterwards.
func (s *Session) DrawRatio(opts ...RatioOption) (*ratio.Artifact, error) {
	cfg := ratioConfig{normalised: true}
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.num == nil || cfg.den == nil {
		last := s.reg.LastHists(2)
		if cfg.num == nil && len(last) > 0 {
			cfg.num = last[len(last)-1]
		}
		if cfg.den == nil && len(last) > 1 {
			cfg.den = last[len(last)-2]
		}
		if cfg.num == nil || cfg.den == nil {
			return nil, errors.New(errors.ErrCodeNotFound, "a ratio needs two histograms")
		}
	}
	for _, h := range []*object.Hist{cfg.num, cfg.den} {
		if err := h.CheckLive(); err != nil {
			return nil, err
		}
	}

	prev := s.ActiveCanvas()
	var prevPad string
	if prev != nil && prev.ActivePad() != nil {
		prevPad = prev.ActivePad().Name()
	}
	c := cfg.canvas
	if c == nil {
		if c = prev; c == nil {
			return nil, errors.New(errors.ErrCodeNotFound, "no canvas open")
		}
	}

	created, err := c.ActivateRatio()
	if err != nil {
		return nil, err
	}
	style := StyleOverlay
	if created {
		style = StyleAxes
	}
	if cfg.num.Dim() == 2 {
		if err := c.PromoteToFull(canvas.RatioPad); err != nil {
			return nil, err
		}
		style = StyleColz
	}

	name := s.reg.UniqueName("ratio_{0}", cfg.num.Kind())
	a, err := ratio.New(cfg.num, cfg.den, cfg.normalised, ratio.WithName(name), ratio.WithLogger(s.logger))
	if err == nil {
		err = a.Draw(c, style)
	}
	if err != nil {
		s.reg.Unreserve(name, cfg.num.Kind())
		return nil, err
	}
	s.reg.AddObject(a)
	if err := c.Update(); err != nil {
		return nil, err
	}

	if prev != nil && prevPad != "" && prev.Live() {
		if err := prev.Activate(prevPad); err != nil {
			return nil, err
		}
		s.active = prev
	}
	return a, nil
}

// DrawCorrected fills a 1-D histogram of expr weighting each event by the
// inverse of its efficiency in eff. Events with zero efficiency are
// skipped with a warning. Without a binning, eff's binning is reused when
// it was made from the same expression; otherwise the data range is split
// into the default number of bins.
func (s *Session) DrawCorrected(expr string, eff *ratio.Artifact, opts ...DrawOption) (*object.Hist, error) {
	cfg := newDrawConfig(opts)
	if Dimensions(expr) != 1 {
		return nil, errors.New(errors.ErrCodeUnsupported, "corrected histograms are 1-D, got %q", expr)
	}
	src, err := s.sourceOr(cfg.src)
	if err != nil {
		return nil, err
	}
	b, err := s.correctedBinning(src, expr, eff, cfg.binning)
	if err != nil {
		return nil, err
	}
	name := s.reg.UniqueName("h_"+expr+"_{0}", object.KindH1)
	registered := false
	defer func() {
		if !registered {
			s.reg.Unreserve(name, object.KindH1)
		}
	}()
	h, err := object.NewH1(name, name, b)
	if err != nil {
		return nil, err
	}
	h.SetVarInfo(expr)

	skipped := 0
	for i := range src.Len() {
		evt := src.Event(i)
		if cfg.selection != "" {
			pass, err := source.Evaluate(cfg.selection, evt)
			if err != nil {
				return nil, err
			}
			if pass == 0 {
				continue
			}
		}
		x, err := source.Evaluate(expr, evt)
		if err != nil {
			return nil, err
		}
		e, err := eff.Content(evt)
		if err != nil {
			return nil, err
		}
		if e == 0 {
			s.logger.Warn("event with 0 efficiency, skipping", "event", i)
			skipped++
			continue
		}
		h.Fill(x, 1/e)
	}
	s.reg.AddObject(h)
	registered = true

	c, err := s.canvasOrNew()
	if err != nil {
		return nil, err
	}
	if err := c.ActivateMain(); err != nil {
		return nil, err
	}
	if err := c.ActivePad().Draw(h, s.drawStyle(c, 1)); err != nil {
		return nil, err
	}
	if err := c.SetText(canvas.XLabel(expr)); err != nil {
		return nil, err
	}
	s.logger.Debug("drew corrected histogram", "expr", expr, "name", name, "skipped", skipped)
	return h, nil
}

func (s *Session) correctedBinning(src source.Source, expr string, eff *ratio.Artifact, spec string) (object.Binning, error) {
	if spec != "" {
		bs, err := object.ParseBinSpec(spec)
		if err != nil {
			return object.Binning{}, err
		}
		if bs.AutoRange() {
			lo, hi, err := src.Range(expr)
			if err != nil {
				return object.Binning{}, err
			}
			return bs.Binning([]float64{lo, hi})
		}
		return bs.Binning(nil)
	}
	if eff.VarInfo() == expr {
		return object.EdgeList(eff.BinEdgesX())
	}
	lo, hi, err := src.Range(expr)
	if err != nil {
		return object.Binning{}, err
	}
	return object.BinSpec{N: s.bins}.Binning([]float64{lo, hi})
}

// TH1F creates an empty 1-D histogram. binning is "(n, lo, hi)" or an edge
// list "[e0, e1, ...]"; anything else fails with ErrCodeInvalidBinning.
func (s *Session) TH1F(name, binning string) (*object.Hist, error) {
	if err := errors.ValidateName(name); err != nil {
		return nil, err
	}
	bs, err := object.ParseBinSpec(binning)
	if err != nil {
		return nil, err
	}
	if binning == "" || bs.AutoRange() {
		return nil, errors.New(errors.ErrCodeInvalidBinning, "histogram configuration not recognised: %q needs a range or bin edges", binning)
	}
	b, err := bs.Binning(nil)
	if err != nil {
		return nil, err
	}
	h, err := object.NewH1(name, name, b)
	if err != nil {
		return nil, err
	}
	s.reg.AddObject(h)
	return h, nil
}

// Legend labels the histograms of the active canvas, in drawing order.
// Ratios follow the new numerator colours.
func (s *Session) Legend(labels []string, opts ...canvas.LegendOption) (*object.Legend, error) {
	c, err := s.activeOrErr()
	if err != nil {
		return nil, err
	}
	l, err := c.AddLegend(labels, opts...)
	if err != nil {
		return nil, err
	}
	for _, obj := range s.reg.Objects() {
		if a, ok := obj.(*ratio.Artifact); ok {
			a.UpdateColor()
		}
	}
	return l, nil
}

// PutTexts changes the title and axis labels of the active canvas.
// Options left out keep their value.
func (s *Session) PutTexts(opts ...canvas.TextOption) error {
	c, err := s.activeOrErr()
	if err != nil {
		return err
	}
	return c.SetText(opts...)
}

// Normalise scales every 1-D histogram on the active pad to unit
// integral. Empty histograms are left alone.
func (s *Session) Normalise() error {
	c, err := s.activeOrErr()
	if err != nil {
		return err
	}
	p := c.ActivePad()
	if p == nil {
		return errors.New(errors.ErrCodeNotFound, "canvas %s has no active pad", c.Name())
	}
	for _, obj := range p.Primitives(object.KindH1) {
		h, ok := obj.(*object.Hist)
		if !ok {
			continue
		}
		integral := h.Integral()
		if integral == 0 {
			s.logger.Warn("cannot normalise empty histogram", "name", h.Name())
			continue
		}
		h.Scale(1 / integral)
	}
	return c.SetText(canvas.YLabel(NormalisedLabel))
}

// Sel returns the selection lo < v < hi, formatted to read well as a
// title too.
func Sel(v string, lo, hi float64) string { return source.Sel(v, lo, hi) }
