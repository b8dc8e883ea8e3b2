// Package ratio provides the bin-wise quotient of two histograms as a
// drawable object that remembers the pads it was drawn on.
package ratio

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/nchiapol/lookat/pkg/canvas"
	"github.com/nchiapol/lookat/pkg/errors"
	"github.com/nchiapol/lookat/pkg/object"
	"github.com/nchiapol/lookat/pkg/source"
)

// NormalisedRange is the y range of a normalised ratio, which is expected
// to scatter around 1.
var NormalisedRange = [2]float64{0, 2.1}

// padRef identifies a pad by name within its layout. It never keeps a pad
// alive; dead references are dropped on the next range change.
type padRef struct {
	layout *canvas.Layout
	pad    string
}

func (r padRef) live() bool { return r.layout.PadLive(r.pad) }

// Artifact is a derived histogram num*wn / (den*wd). It is computed once;
// redraws reuse the same histogram.
type Artifact struct {
	num, den   *object.Hist
	hist       *object.Hist
	normalised bool
	pads       []padRef
	varInfo    string
	logger     *log.Logger
}

type config struct {
	name   string
	logger *log.Logger
}

// Option configures [New].
type Option func(*config)

// WithName names the derived histogram.
func WithName(name string) Option {
	return func(c *config) { c.name = name }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// New divides num by den. With normalised set each operand is first scaled
// to unit area; an operand without weight gets weight 0. Bins with a zero
// denominator are 0.
func New(num, den *object.Hist, normalised bool, opts ...Option) (*Artifact, error) {
	cfg := config{name: num.Name() + "_ratio", logger: log.Default()}
	for _, o := range opts {
		o(&cfg)
	}
	for _, h := range []*object.Hist{num, den} {
		if err := h.CheckLive(); err != nil {
			return nil, err
		}
	}
	if !num.Compatible(den) {
		return nil, errors.New(errors.ErrCodeInvalidBinning, "cannot divide %q by %q: incompatible binning", num.Name(), den.Name())
	}

	a := &Artifact{
		num:        num,
		den:        den,
		hist:       num.Clone(cfg.name),
		normalised: normalised,
		varInfo:    num.VarInfo(),
		logger:     cfg.logger,
	}
	if a.varInfo == "" {
		a.logger.Warn("numerator has no variable descriptor; set one with SetVarInfo", "numerator", num.Name())
	}

	wn, wd := 1.0, 1.0
	if normalised {
		wn, wd = inverse(num.SumOfWeights()), inverse(den.SumOfWeights())
	}
	if err := a.hist.Divide(num, den, wn, wd); err != nil {
		return nil, err
	}
	a.hist.SetVarInfo(a.varInfo)
	a.UpdateColor()
	return a, nil
}

func inverse(x float64) float64 {
	if x == 0 {
		return 0
	}
	return 1 / x
}

func (a *Artifact) Name() string        { return a.hist.Name() }
func (a *Artifact) SetName(name string) { a.hist.SetName(name) }
func (a *Artifact) Kind() object.Kind   { return a.hist.Kind() }

// Hist returns the derived histogram.
func (a *Artifact) Hist() *object.Hist { return a.hist }

func (a *Artifact) Numerator() *object.Hist   { return a.num }
func (a *Artifact) Denominator() *object.Hist { return a.den }
func (a *Artifact) Normalised() bool          { return a.normalised }

func (a *Artifact) VarInfo() string { return a.varInfo }

// SetVarInfo sets the expression used by Content.
func (a *Artifact) SetVarInfo(v string) {
	a.varInfo = v
	a.hist.SetVarInfo(v)
}

// Release frees the derived histogram.
func (a *Artifact) Release() { a.hist.Release() }

// UpdateColor copies the numerator's line colour, for example after a
// legend recoloured it.
func (a *Artifact) UpdateColor() {
	a.hist.SetLineColor(a.num.LineColor())
}

// Draw draws the ratio on the active pad of c and tunes that pad for
// ratio plots.
func (a *Artifact) Draw(c *canvas.Layout, style string) error {
	p := c.ActivePad()
	if p == nil {
		return errors.New(errors.ErrCodeNotFound, "canvas %s has no active pad", c.Name())
	}
	if err := p.Draw(a.hist, style); err != nil {
		return err
	}
	a.hist.SetStats(false)

	ref := padRef{layout: c, pad: p.Name()}
	if !slices.Contains(a.pads, ref) {
		a.pads = append(a.pads, ref)
	}
	if a.normalised {
		if err := p.SetYRange(NormalisedRange[0], NormalisedRange[1]); err != nil {
			return err
		}
	}
	if err := p.SetGrid(); err != nil {
		return err
	}
	return p.Update()
}

// TrackedPads returns how many pads the ratio is known to be drawn on,
// including dead ones that were not pruned yet.
func (a *Artifact) TrackedPads() int { return len(a.pads) }

func (a *Artifact) prune() {
	a.pads = slices.DeleteFunc(a.pads, func(r padRef) bool {
		if r.live() {
			return false
		}
		a.logger.Debug("dropping dead pad", "ratio", a.Name(), "canvas", r.layout.Name(), "pad", r.pad)
		return true
	})
}

// SetYRange sets the y range on every live pad the ratio was drawn on.
func (a *Artifact) SetYRange(lo, hi float64) error {
	a.prune()
	for _, r := range a.pads {
		if err := r.layout.Pad(r.pad).SetYRange(lo, hi); err != nil {
			return err
		}
	}
	return nil
}

// BinEdgesX returns the x bin edges of the ratio.
func (a *Artifact) BinEdgesX() []float64 { return a.hist.XBinning().Edges() }

// Content returns the ratio in the bin that evt falls into. A 2-D ratio
// reads its descriptor as "y:x". Events outside the binning give 0.
func (a *Artifact) Content(evt source.Event) (float64, error) {
	if a.varInfo == "" {
		return 0, errors.New(errors.ErrCodeInvalidExpression, "ratio %q has no variable descriptor", a.Name())
	}
	if a.hist.Dim() == 1 {
		x, err := source.Evaluate(a.varInfo, evt)
		if err != nil {
			return 0, err
		}
		return a.hist.ContentAt(x), nil
	}
	ys, xs, ok := strings.Cut(a.varInfo, ":")
	if !ok {
		return 0, errors.New(errors.ErrCodeInvalidExpression, "2-D descriptor %q is not of the form y:x", a.varInfo)
	}
	x, err := source.Evaluate(xs, evt)
	if err != nil {
		return 0, err
	}
	y, err := source.Evaluate(ys, evt)
	if err != nil {
		return 0, err
	}
	return a.hist.ContentAt2(x, y), nil
}

func (a *Artifact) String() string {
	return fmt.Sprintf("<ratio.Artifact (%s/%s)>", a.num.Name(), a.den.Name())
}
