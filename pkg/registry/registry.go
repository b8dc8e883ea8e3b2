// Package registry tracks the canvases, plotted objects and data sources of
// one interactive session.
//
// Lists are append-only between cleanup passes, so "the most recently
// created X" stays addressable. The rendering toolkit never reports a closed
// window; [Registry.Cleanup] probes each canvas and drops the dead ones, and
// optionally collects objects no live pad still hosts.
//
// A Registry is used by a single operator and is not safe for concurrent use.
package registry

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/nchiapol/lookat/pkg/canvas"
	"github.com/nchiapol/lookat/pkg/object"
	"github.com/nchiapol/lookat/pkg/observability"
	"github.com/nchiapol/lookat/pkg/source"
)

// Placeholder is replaced by an integer in name templates.
const Placeholder = "{0}"

// Registry owns every object created during a session.
type Registry struct {
	id       string
	canvases []*canvas.Layout
	objects  []object.Object
	sources  []source.Source
	reserved map[string]struct{}
	logger   *log.Logger
}

// Option configures a [Registry].
type Option func(*Registry)

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithID sets the session id instead of generating one.
func WithID(id string) Option {
	return func(r *Registry) {
		if id != "" {
			r.id = id
		}
	}
}

// Open starts a new session.
func Open(opts ...Option) *Registry {
	r := &Registry{
		id:       uuid.NewString(),
		reserved: make(map[string]struct{}),
		logger:   log.Default(),
	}
	for _, o := range opts {
		o(r)
	}
	r.logger.Debug("session opened", "id", r.id)
	return r
}

// ID identifies the session.
func (r *Registry) ID() string { return r.id }

// AddCanvas appends c to the canvas list.
func (r *Registry) AddCanvas(c *canvas.Layout) {
	r.canvases = append(r.canvases, c)
	observability.Session().OnCanvasOpen(c.Name())
}

// AddObject appends obj to the object list. A name reserved through
// [Registry.UniqueName] is now held by obj.
func (r *Registry) AddObject(obj object.Object) {
	r.objects = append(r.objects, obj)
	delete(r.reserved, reservation(obj.Kind(), obj.Name()))
}

// AddSource appends s to the source list.
func (r *Registry) AddSource(s source.Source) { r.sources = append(r.sources, s) }

func (r *Registry) Canvases() []*canvas.Layout { return append([]*canvas.Layout(nil), r.canvases...) }
func (r *Registry) Objects() []object.Object   { return append([]object.Object(nil), r.objects...) }
func (r *Registry) Sources() []source.Source   { return append([]source.Source(nil), r.sources...) }

// LastCanvas returns the most recently added canvas, or nil.
func (r *Registry) LastCanvas() *canvas.Layout {
	if len(r.canvases) == 0 {
		return nil
	}
	return r.canvases[len(r.canvases)-1]
}

// LastSource returns the most recently added source, or nil.
func (r *Registry) LastSource() source.Source {
	if len(r.sources) == 0 {
		return nil
	}
	return r.sources[len(r.sources)-1]
}

// Canvas returns the canvas named name, or nil.
func (r *Registry) Canvas(name string) *canvas.Layout {
	for _, c := range r.canvases {
		if c.Name() == name {
			return c
		}
	}
	return nil
}

// Object returns the most recent object named name, or nil.
func (r *Registry) Object(name string) object.Object {
	for i := len(r.objects) - 1; i >= 0; i-- {
		if r.objects[i].Name() == name {
			return r.objects[i]
		}
	}
	return nil
}

// Source returns the source named name, or nil.
func (r *Registry) Source(name string) source.Source {
	for _, s := range r.sources {
		if s.Name() == name {
			return s
		}
	}
	return nil
}

// LastHists returns up to n of the most recently added plain histograms,
// oldest first. Derived objects such as ratios are skipped.
func (r *Registry) LastHists(n int) []*object.Hist {
	var out []*object.Hist
	for i := len(r.objects) - 1; i >= 0 && len(out) < n; i-- {
		if h, ok := r.objects[i].(*object.Hist); ok {
			out = append(out, h)
		}
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// RemoveObject drops obj from the list and releases it. It reports whether
// obj was registered.
func (r *Registry) RemoveObject(obj object.Object) bool {
	for i, o := range r.objects {
		if o == obj {
			r.objects = append(r.objects[:i], r.objects[i+1:]...)
			release(obj)
			return true
		}
	}
	return false
}

func release(obj object.Object) {
	if rel, ok := obj.(object.Releaser); ok {
		rel.Release()
	}
}

// Report summarises a cleanup pass.
type Report struct {
	Canvases int
	Objects  int
}

func (r Report) String() string {
	return fmt.Sprintf("%d canvases, %d objects removed", r.Canvases, r.Objects)
}

// Cleanup drops canvases whose window has been closed. With includeObjects,
// it also removes and releases every object that no pad of a live canvas
// hosts by name.
func (r *Registry) Cleanup(includeObjects bool) Report {
	var rep Report

	live := r.canvases[:0]
	for _, c := range r.canvases {
		if c.Live() {
			live = append(live, c)
			continue
		}
		r.logger.Debug("dropping closed canvas", "canvas", c.Name())
		rep.Canvases++
	}
	clear(r.canvases[len(live):])
	r.canvases = live

	if includeObjects {
		kept := make([]object.Object, 0, len(r.objects))
		for _, obj := range r.objects {
			if r.hosted(obj.Name()) {
				kept = append(kept, obj)
				continue
			}
			r.logger.Debug("collecting orphaned object", "object", obj.Name())
			release(obj)
			rep.Objects++
		}
		r.objects = kept
	}

	observability.Session().OnCleanup(rep.Canvases, rep.Objects)
	return rep
}

func (r *Registry) hosted(name string) bool {
	for _, c := range r.canvases {
		for _, p := range c.Pads() {
			if p.HasObjectNamed(name) {
				return true
			}
		}
	}
	return false
}

// UniqueName expands template with the smallest non-negative integer that
// names neither a registered object of the same base kind nor a name handed
// out earlier and not yet registered. Templates without [Placeholder] get
// "_{0}" appended.
func (r *Registry) UniqueName(template string, kind object.Kind) string {
	if !strings.Contains(template, Placeholder) {
		template += "_" + Placeholder
	}
	for n := 0; ; n++ {
		name := strings.ReplaceAll(template, Placeholder, strconv.Itoa(n))
		if r.taken(name, kind) {
			continue
		}
		r.reserved[reservation(kind, name)] = struct{}{}
		return name
	}
}

// Unreserve hands back a name from [Registry.UniqueName] that will not be
// registered after all.
func (r *Registry) Unreserve(name string, kind object.Kind) {
	delete(r.reserved, reservation(kind, name))
}

func (r *Registry) taken(name string, kind object.Kind) bool {
	if _, ok := r.reserved[reservation(kind, name)]; ok {
		return true
	}
	base := baseKind(kind)
	for _, obj := range r.objects {
		if obj.Name() == name && baseKind(obj.Kind()) == base {
			return true
		}
	}
	return false
}

// baseKind folds 1-D and 2-D histograms together.
func baseKind(k object.Kind) string {
	if k.IsHist() {
		return "hist"
	}
	return k.String()
}

func reservation(k object.Kind, name string) string { return baseKind(k) + "/" + name }

// Close closes every live canvas and empties the session.
func (r *Registry) Close() error {
	r.Cleanup(false)
	var firstErr error
	for _, c := range r.canvases {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	for _, obj := range r.objects {
		release(obj)
	}
	r.canvases, r.objects, r.sources = nil, nil, nil
	clear(r.reserved)
	r.logger.Debug("session closed", "id", r.id)
	return firstErr
}
