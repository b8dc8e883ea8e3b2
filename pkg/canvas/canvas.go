// Package canvas lays out pads on a toolkit canvas and keeps their titles,
// axis labels and legend in sync across redraws.
//
// A [Layout] always has a "main" pad. Asking for the ratio pad splits the
// canvas: main keeps y in [0.3, 1] and the ratio pad takes y in [0, 0.3].
// Exactly one pad, the text pad, shows the canvas-level title and labels.
//
// Every operation tolerates the toolkit closing the window underneath it;
// calls on a closed canvas are no-ops.
package canvas

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/nchiapol/lookat/pkg/errors"
	"github.com/nchiapol/lookat/pkg/geom"
	"github.com/nchiapol/lookat/pkg/object"
	"github.com/nchiapol/lookat/pkg/toolkit"
)

// Pad names with a fixed meaning.
const (
	MainPad  = "main"
	RatioPad = "ratio"
)

// RatioLabel is the y-label of a new ratio pad.
const RatioLabel = "ratio"

// DefaultEm is the base font size as a fraction of the canvas height.
const DefaultEm = 0.035

// Texts are the canvas-level title and axis labels.
type Texts struct {
	Title  string
	XLabel string
	YLabel string
}

// Layout manages the pads of one canvas.
type Layout struct {
	handle  toolkit.Canvas
	name    string
	pads    map[string]*Pad
	order   []string
	legend  *object.Legend
	texts   Texts
	textPad string
	active  string
	em      float64
	palette []object.Color
	logger  *log.Logger
}

type config struct {
	title   string
	width   int
	height  int
	em      float64
	palette []object.Color
	logger  *log.Logger
}

// Option configures a [Layout].
type Option func(*config)

// WithTitle sets the window title.
func WithTitle(title string) Option {
	return func(c *config) { c.title = title }
}

// WithSize sets the canvas size in pixels.
func WithSize(width, height int) Option {
	return func(c *config) { c.width, c.height = width, height }
}

// WithEm overrides the base font size.
func WithEm(em float64) Option {
	return func(c *config) {
		if em > 0 {
			c.em = em
		}
	}
}

// WithPalette overrides the cyclic legend palette.
func WithPalette(colors ...object.Color) Option {
	return func(c *config) {
		if len(colors) > 0 {
			c.palette = colors
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// New opens a canvas named name (empty lets the toolkit choose) and adds
// the main pad.
func New(tk toolkit.Toolkit, name string, opts ...Option) (*Layout, error) {
	cfg := config{em: DefaultEm, palette: DefaultPalette, logger: log.Default()}
	for _, o := range opts {
		o(&cfg)
	}
	title := cfg.title
	if title == "" {
		title = name
	}
	h, err := tk.NewCanvas(name, title, cfg.width, cfg.height)
	if err != nil {
		return nil, err
	}
	cname, err := h.Name()
	if err != nil {
		return nil, err
	}
	c := &Layout{
		handle:  h,
		name:    cname,
		pads:    make(map[string]*Pad),
		textPad: MainPad,
		em:      cfg.em,
		palette: cfg.palette,
		logger:  cfg.logger,
	}
	if err := c.AddPad(MainPad, geom.Full); err != nil {
		return nil, err
	}
	return c, nil
}

// Name returns the canvas name, which stays readable after the window is gone.
func (c *Layout) Name() string { return c.name }

// Live probes the toolkit canvas.
func (c *Layout) Live() bool {
	_, err := c.handle.Name()
	return err == nil
}

// Pad returns the pad named name, or nil.
func (c *Layout) Pad(name string) *Pad { return c.pads[name] }

// Pads returns the pads in creation order.
func (c *Layout) Pads() []*Pad {
	out := make([]*Pad, len(c.order))
	for i, n := range c.order {
		out[i] = c.pads[n]
	}
	return out
}

// PadLive reports whether a pad with that name exists and its handle is
// still valid.
func (c *Layout) PadLive(name string) bool {
	p, ok := c.pads[name]
	return ok && p.Live()
}

// ActivePad returns the pad draws currently go to.
func (c *Layout) ActivePad() *Pad { return c.pads[c.active] }

// Texts returns the cached canvas-level texts.
func (c *Layout) Texts() Texts { return c.texts }

// TextPad returns the name of the pad that shows the canvas texts.
func (c *Layout) TextPad() string { return c.textPad }

// Legend returns the current legend, or nil.
func (c *Layout) Legend() *object.Legend { return c.legend }

// Snapshot copies the canvas for export.
func (c *Layout) Snapshot() (toolkit.Scene, error) { return c.handle.Snapshot() }

// AddPad creates a pad and makes the main pad active again.
func (c *Layout) AddPad(name string, r geom.Rect) error {
	if _, ok := c.pads[name]; ok {
		return errors.New(errors.ErrCodeInvalidName, "canvas %s already has a pad %q", c.name, name)
	}
	if err := r.Validate(); err != nil {
		return err
	}
	h, err := c.handle.NewPad(c.name+"_"+name, r)
	if err != nil {
		if toolkit.IsInvalid(err) {
			c.logger.Debug("canvas already gone", "canvas", c.name, "op", "add pad")
			return nil
		}
		return err
	}
	c.pads[name] = &Pad{
		name:   name,
		handle: h,
		layout: c,
		rect:   r,
		em:     c.em,
		logger: c.logger,
	}
	c.order = append(c.order, name)
	return c.ActivateMain()
}

// Activate makes the named pad active.
func (c *Layout) Activate(name string) error {
	p, ok := c.pads[name]
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "canvas %s has no pad %q", c.name, name)
	}
	return p.Activate()
}

// ActivateMain makes the main pad active.
func (c *Layout) ActivateMain() error { return c.Activate(MainPad) }

// ActivateRatio makes the ratio pad active, creating it on first use by
// shrinking the main pad. It reports whether the pad was created by this
// call, which callers use to choose between a fresh draw and an overlay.
func (c *Layout) ActivateRatio() (bool, error) {
	created := false
	if _, ok := c.pads[RatioPad]; !ok {
		if err := c.pads[MainPad].Resize(geom.MainWithRatio); err != nil {
			return false, err
		}
		if err := c.AddPad(RatioPad, geom.Ratio); err != nil {
			return false, err
		}
		if p, ok := c.pads[RatioPad]; ok {
			p.SetYLabel(RatioLabel)
			created = true
		}
	}
	if err := c.Update(); err != nil {
		return created, err
	}
	if _, ok := c.pads[RatioPad]; !ok {
		// canvas went away while adding the pad
		return false, nil
	}
	return created, c.Activate(RatioPad)
}

// PromoteToFull lets the named pad cover the canvas and hides the others.
// The pad takes over the canvas texts, keeping its own y-label.
func (c *Layout) PromoteToFull(name string) error {
	p, ok := c.pads[name]
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "canvas %s has no pad %q", c.name, name)
	}
	if err := p.Full(); err != nil {
		return err
	}
	c.textPad = name
	c.texts.YLabel = p.YLabel()
	c.pushTexts()
	for _, n := range c.order {
		if n != name {
			if err := c.pads[n].Hide(); err != nil {
				return err
			}
		}
	}
	return c.Update()
}

// TextOption changes one of the canvas texts.
type TextOption func(*Texts)

// Title sets the title.
func Title(s string) TextOption { return func(t *Texts) { t.Title = s } }

// XLabel sets the x-axis label.
func XLabel(s string) TextOption { return func(t *Texts) { t.XLabel = s } }

// YLabel sets the y-axis label.
func YLabel(s string) TextOption { return func(t *Texts) { t.YLabel = s } }

// SetText updates the given texts, leaving the others as they are, and
// shows all three on the text pad.
func (c *Layout) SetText(opts ...TextOption) error {
	for _, o := range opts {
		o(&c.texts)
	}
	c.pushTexts()
	return c.Update()
}

func (c *Layout) pushTexts() {
	p := c.pads[c.textPad]
	p.SetTitle(c.texts.Title)
	p.SetXLabel(c.texts.XLabel)
	p.SetYLabel(c.texts.YLabel)
}

// Update updates every pad.
func (c *Layout) Update() error {
	for _, n := range c.order {
		if err := c.pads[n].Update(); err != nil {
			return err
		}
	}
	return nil
}

// SetLogY uses a logarithmic y axis on the main pad.
func (c *Layout) SetLogY() error { return c.pads[MainPad].SetLogY() }

// Close closes the canvas. A canvas that is already gone is fine.
func (c *Layout) Close() error {
	if err := c.handle.Close(); err != nil && !toolkit.IsInvalid(err) {
		return err
	}
	return nil
}

func (c *Layout) String() string {
	name, err := c.handle.Name()
	if err != nil {
		return "<canvas.Layout -- empty shell only!>"
	}
	var names []string
	for _, n := range c.order {
		names = append(names, c.name+"_"+n)
	}
	return fmt.Sprintf("<canvas.Layout (%q with {%s})>", name, strings.Join(names, ", "))
}
