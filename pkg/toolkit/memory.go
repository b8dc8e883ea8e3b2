package toolkit

import (
	"fmt"
	"slices"
	"strings"

	"github.com/nchiapol/lookat/pkg/errors"
	"github.com/nchiapol/lookat/pkg/geom"
	"github.com/nchiapol/lookat/pkg/object"
)

// Default canvas size in pixels.
const (
	DefaultWidth  = 800
	DefaultHeight = 600
)

// Memory is a toolkit that keeps canvases in memory. It is used by the CLI,
// which exports scenes instead of opening windows, and by tests, which call
// CloseWindow to simulate a user closing a window.
type Memory struct {
	canvases []*MemoryCanvas
	counter  int
	active   *MemoryPad
}

// NewMemory returns an empty in-memory toolkit.
func NewMemory() *Memory {
	return &Memory{}
}

// NewCanvas implements [Toolkit].
func (m *Memory) NewCanvas(name, title string, width, height int) (Canvas, error) {
	if name == "" {
		for {
			m.counter++
			name = fmt.Sprintf("c%d", m.counter)
			if m.lookup(name) == nil {
				break
			}
		}
	}
	if m.lookup(name) != nil {
		return nil, errors.New(errors.ErrCodeInvalidName, "canvas %q already exists", name)
	}
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	c := &MemoryCanvas{tk: m, name: name, title: title, width: width, height: height}
	m.canvases = append(m.canvases, c)
	return c, nil
}

// CloseWindow closes the canvas named name behind the engine's back.
// It reports whether a live canvas was found.
func (m *Memory) CloseWindow(name string) bool {
	c := m.lookup(name)
	if c == nil {
		return false
	}
	c.invalidate()
	return true
}

// Canvases returns the live canvases in creation order.
func (m *Memory) Canvases() []*MemoryCanvas {
	var out []*MemoryCanvas
	for _, c := range m.canvases {
		if !c.closed {
			out = append(out, c)
		}
	}
	return out
}

// ActivePad returns the most recently activated live pad, or nil.
func (m *Memory) ActivePad() *MemoryPad {
	if m.active == nil || m.active.canvas.closed {
		return nil
	}
	return m.active
}

func (m *Memory) lookup(name string) *MemoryCanvas {
	for _, c := range m.canvases {
		if !c.closed && c.name == name {
			return c
		}
	}
	return nil
}

// MemoryCanvas is the [Canvas] of a [Memory] toolkit.
type MemoryCanvas struct {
	tk        *Memory
	name      string
	title     string
	width     int
	height    int
	pads      []*MemoryPad
	closed    bool
	refreshes int
}

func (c *MemoryCanvas) Name() (string, error) {
	if c.closed {
		return "", ErrInvalidHandle
	}
	return c.name, nil
}

func (c *MemoryCanvas) NewPad(name string, r geom.Rect) (Pad, error) {
	if c.closed {
		return nil, ErrInvalidHandle
	}
	p := &MemoryPad{canvas: c, name: name, rect: r, margins: geom.DefaultMargins}
	c.pads = append(c.pads, p)
	return p, nil
}

func (c *MemoryCanvas) Refresh() error {
	if c.closed {
		return ErrInvalidHandle
	}
	c.refreshes++
	return nil
}

// Refreshes counts canvas and pad refreshes.
func (c *MemoryCanvas) Refreshes() int { return c.refreshes }

// Close closes the canvas. Closing twice is not an error.
func (c *MemoryCanvas) Close() error {
	c.invalidate()
	return nil
}

func (c *MemoryCanvas) invalidate() {
	c.closed = true
	if c.tk.active != nil && c.tk.active.canvas == c {
		c.tk.active = nil
	}
}

func (c *MemoryCanvas) Snapshot() (Scene, error) {
	if c.closed {
		return Scene{}, ErrInvalidHandle
	}
	s := Scene{Name: c.name, Title: c.title, Width: c.width, Height: c.height}
	for _, p := range c.pads {
		s.Pads = append(s.Pads, PadScene{
			Name:    p.name,
			Rect:    p.rect,
			Margins: p.margins,
			Grid:    p.grid,
			LogY:    p.logY,
			Items:   slices.Clone(p.items),
		})
	}
	return s, nil
}

// Pad returns the pad named name, or nil.
func (c *MemoryCanvas) Pad(name string) *MemoryPad {
	for _, p := range c.pads {
		if p.name == name {
			return p
		}
	}
	return nil
}

// MemoryPad is the [Pad] of a [MemoryCanvas].
type MemoryPad struct {
	canvas  *MemoryCanvas
	name    string
	rect    geom.Rect
	margins geom.Margins
	grid    bool
	logY    bool
	items   []Item
}

func (p *MemoryPad) Name() (string, error) {
	if p.canvas.closed {
		return "", ErrInvalidHandle
	}
	return p.name, nil
}

func (p *MemoryPad) Activate() error {
	if p.canvas.closed {
		return ErrInvalidHandle
	}
	p.canvas.tk.active = p
	return nil
}

func (p *MemoryPad) Rect() (geom.Rect, error) {
	if p.canvas.closed {
		return geom.Rect{}, ErrInvalidHandle
	}
	return p.rect, nil
}

func (p *MemoryPad) SetRect(r geom.Rect) error {
	if p.canvas.closed {
		return ErrInvalidHandle
	}
	p.rect = r
	return nil
}

// Margins returns the current margins.
func (p *MemoryPad) Margins() geom.Margins { return p.margins }

func (p *MemoryPad) SetMargins(m geom.Margins) error {
	if p.canvas.closed {
		return ErrInvalidHandle
	}
	p.margins = m
	return nil
}

func (p *MemoryPad) SetGrid(on bool) error {
	if p.canvas.closed {
		return ErrInvalidHandle
	}
	p.grid = on
	return nil
}

// Grid reports whether the grid is shown.
func (p *MemoryPad) Grid() bool { return p.grid }

func (p *MemoryPad) SetLogY(on bool) error {
	if p.canvas.closed {
		return ErrInvalidHandle
	}
	p.logY = on
	return nil
}

// LogY reports whether the y axis is logarithmic.
func (p *MemoryPad) LogY() bool { return p.logY }

func (p *MemoryPad) Draw(obj object.Object, style string) error {
	if p.canvas.closed {
		return ErrInvalidHandle
	}
	if !strings.Contains(strings.ToLower(style), "same") {
		p.items = nil
	}
	if pt, ok := obj.(object.Painter); ok {
		pt.Paint()
	}
	p.items = append(p.items, Item{Object: obj, Style: style})
	return nil
}

func (p *MemoryPad) Remove(obj object.Object) error {
	if p.canvas.closed {
		return ErrInvalidHandle
	}
	p.items = slices.DeleteFunc(p.items, func(it Item) bool { return it.Object == obj })
	return nil
}

func (p *MemoryPad) Primitives() ([]object.Object, error) {
	if p.canvas.closed {
		return nil, ErrInvalidHandle
	}
	out := make([]object.Object, len(p.items))
	for i, it := range p.items {
		out[i] = it.Object
	}
	return out, nil
}

// Styles returns the draw style of each primitive.
func (p *MemoryPad) Styles() []string {
	out := make([]string, len(p.items))
	for i, it := range p.items {
		out[i] = it.Style
	}
	return out
}

func (p *MemoryPad) Refresh() error {
	if p.canvas.closed {
		return ErrInvalidHandle
	}
	p.canvas.refreshes++
	return nil
}
