// Package session is the command surface of an interactive plotting
// session: it fills histograms from data sources, lays them out on
// canvases, and keeps the [registry.Registry] in sync.
//
// Commands address "the current thing" the way an operator at a prompt
// does: Draw goes to the active canvas (creating one when none is open),
// DrawRatio divides the two most recent histograms, and Legend labels what
// is on the active canvas. Windows closed behind the session's back are
// collected before every command that needs a canvas.
package session

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/nchiapol/lookat/pkg/canvas"
	"github.com/nchiapol/lookat/pkg/errors"
	"github.com/nchiapol/lookat/pkg/object"
	"github.com/nchiapol/lookat/pkg/registry"
	"github.com/nchiapol/lookat/pkg/render"
	"github.com/nchiapol/lookat/pkg/source"
	"github.com/nchiapol/lookat/pkg/toolkit"
)

// Session drives one interactive session.
type Session struct {
	tk         toolkit.Toolkit
	reg        *registry.Registry
	loader     *source.Loader
	bins       int
	canvasOpts []canvas.Option
	exportOpts []render.ExportOption
	active     *canvas.Layout
	logger     *log.Logger
}

// Option configures a [Session].
type Option func(*Session)

// WithRegistry uses r instead of opening a new registry.
func WithRegistry(r *registry.Registry) Option {
	return func(s *Session) {
		if r != nil {
			s.reg = r
		}
	}
}

// WithLoader sets the loader used by [Session.Load].
func WithLoader(l *source.Loader) Option {
	return func(s *Session) {
		if l != nil {
			s.loader = l
		}
	}
}

// WithDefaultBins sets the number of bins of auto-ranged histograms.
func WithDefaultBins(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.bins = n
		}
	}
}

// WithCanvasOptions applies opts to every canvas the session opens.
func WithCanvasOptions(opts ...canvas.Option) Option {
	return func(s *Session) { s.canvasOpts = append(s.canvasOpts, opts...) }
}

// WithExportOptions applies opts to every [Session.SaveAs].
func WithExportOptions(opts ...render.ExportOption) Option {
	return func(s *Session) { s.exportOpts = append(s.exportOpts, opts...) }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// New starts a session drawing through tk.
func New(tk toolkit.Toolkit, opts ...Option) *Session {
	s := &Session{
		tk:     tk,
		bins:   object.DefaultBins,
		logger: log.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	if s.reg == nil {
		s.reg = registry.Open(registry.WithLogger(s.logger))
	}
	if s.loader == nil {
		s.loader = source.NewLoader(source.WithLogger(s.logger))
	}
	s.canvasOpts = append([]canvas.Option{canvas.WithLogger(s.logger)}, s.canvasOpts...)
	return s
}

// Registry returns the session registry.
func (s *Session) Registry() *registry.Registry { return s.reg }

// =============================================================================
// Sources
// =============================================================================

// Load reads a data file and makes it the current source.
func (s *Session) Load(ctx context.Context, path, sheet string) (source.Source, error) {
	t, err := s.loader.Load(ctx, path, sheet)
	if err != nil {
		return nil, err
	}
	s.reg.AddSource(t)
	s.logger.Info("loaded source", "name", t.Name(), "events", t.Len())
	return t, nil
}

// AddSource makes src the current source.
func (s *Session) AddSource(src source.Source) { s.reg.AddSource(src) }

// Fields lists the fields of src, or of the current source when src is nil.
func (s *Session) Fields(src source.Source) ([]string, error) {
	src, err := s.sourceOr(src)
	if err != nil {
		return nil, err
	}
	return src.Fields(), nil
}

func (s *Session) sourceOr(src source.Source) (source.Source, error) {
	if src != nil {
		return src, nil
	}
	if src = s.reg.LastSource(); src == nil {
		return nil, errors.New(errors.ErrCodeNotFound, "no data source loaded")
	}
	return src, nil
}

// =============================================================================
// Canvases
// =============================================================================

// Canvas opens a new canvas and makes it active. An empty name lets the
// toolkit choose one. Closed windows are collected first.
func (s *Session) Canvas(name string) (*canvas.Layout, error) {
	if name != "" {
		if err := errors.ValidateName(name); err != nil {
			return nil, err
		}
	}
	s.Cleanup(false)
	c, err := canvas.New(s.tk, name, s.canvasOpts...)
	if err != nil {
		return nil, err
	}
	s.reg.AddCanvas(c)
	s.active = c
	return c, nil
}

// ActiveCanvas returns the canvas commands go to, or nil when no canvas
// is open.
func (s *Session) ActiveCanvas() *canvas.Layout {
	s.Cleanup(false)
	if s.active == nil {
		s.active = s.reg.LastCanvas()
	}
	return s.active
}

// ActivePad returns the active pad of the active canvas, or nil.
func (s *Session) ActivePad() *canvas.Pad {
	if c := s.ActiveCanvas(); c != nil {
		return c.ActivePad()
	}
	return nil
}

// Activate makes c the active canvas.
func (s *Session) Activate(c *canvas.Layout) {
	if c != nil {
		s.active = c
	}
}

func (s *Session) canvasOrNew() (*canvas.Layout, error) {
	if c := s.ActiveCanvas(); c != nil {
		return c, nil
	}
	return s.Canvas("")
}

func (s *Session) activeOrErr() (*canvas.Layout, error) {
	if c := s.ActiveCanvas(); c != nil {
		return c, nil
	}
	return nil, errors.New(errors.ErrCodeNotFound, "no canvas open")
}

// Cleanup drops closed canvases and, with includeObjects, every object no
// live pad hosts.
func (s *Session) Cleanup(includeObjects bool) registry.Report {
	rep := s.reg.Cleanup(includeObjects)
	if s.active != nil && !s.active.Live() {
		s.active = nil
	}
	return rep
}

// SaveAs exports the active canvas. A path with an extension writes that
// file; a bare path writes one file per configured format.
func (s *Session) SaveAs(ctx context.Context, path string) ([]string, error) {
	c, err := s.activeOrErr()
	if err != nil {
		return nil, err
	}
	scene, err := c.Snapshot()
	if err != nil {
		return nil, err
	}
	paths, err := render.Export(ctx, scene, path, s.exportOpts...)
	if err != nil {
		return paths, err
	}
	s.logger.Info("saved canvas", "canvas", c.Name(), "files", paths)
	return paths, nil
}

// Close closes every canvas and ends the session.
func (s *Session) Close() error {
	s.active = nil
	err := s.reg.Close()
	s.logger.Debug("goodbye")
	return err
}
