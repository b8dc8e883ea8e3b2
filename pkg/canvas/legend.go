package canvas

import (
	"github.com/nchiapol/lookat/pkg/geom"
	"github.com/nchiapol/lookat/pkg/object"
)

// DefaultPalette is cycled through when a legend gets no explicit colours.
var DefaultPalette = []object.Color{
	object.Red,
	object.Green,
	object.Blue,
	object.Cyan,
	object.Magenta,
}

// DefaultLegendRect is the legend box used when no position is given.
var DefaultLegendRect = geom.Rect{XMin: 0.8, YMin: 0.8, XMax: 1, YMax: 1}

// PaletteColors returns n colours taken cyclically from palette.
func PaletteColors(palette []object.Color, n int) []object.Color {
	if len(palette) == 0 {
		palette = DefaultPalette
	}
	out := make([]object.Color, n)
	for i := range out {
		out[i] = palette[i%len(palette)]
	}
	return out
}

// expandAggregates replaces every multigraph by its member graphs, in place
// of the aggregate.
func expandAggregates(prims []object.Object) []object.Object {
	out := make([]object.Object, 0, len(prims))
	for _, p := range prims {
		if mg, ok := p.(*object.MultiGraph); ok {
			for _, g := range mg.Graphs() {
				out = append(out, g)
			}
			continue
		}
		out = append(out, p)
	}
	return out
}

type legendConfig struct {
	colors []object.Color
	rect   geom.Rect
	hasPos bool
}

// LegendOption configures [Layout.AddLegend].
type LegendOption func(*legendConfig)

// WithColors sets the colours of the entries, by index.
func WithColors(colors ...object.Color) LegendOption {
	return func(c *legendConfig) { c.colors = colors }
}

// WithPosition places the legend box.
func WithPosition(r geom.Rect) LegendOption {
	return func(c *legendConfig) { c.rect, c.hasPos = r, true }
}

// AddLegend labels the objects on the main pad in the order they were
// drawn and replaces any previous legend. Multigraphs contribute one entry
// per member graph. Entry i gets labels[i] and colours[i]; entries past the
// end of labels use the object name, and entries past the end of the
// colours keep their current colour. Statistics boxes are switched off
// where the object has one.
func (c *Layout) AddLegend(labels []string, opts ...LegendOption) (*object.Legend, error) {
	cfg := legendConfig{rect: DefaultLegendRect}
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.hasPos {
		if err := cfg.rect.Validate(); err != nil {
			return nil, err
		}
	}
	if cfg.colors == nil {
		cfg.colors = PaletteColors(c.palette, len(labels))
	}

	main := c.pads[MainPad]
	leg := object.NewLegend(c.name+"_legend", cfg.rect)
	prims := expandAggregates(main.Primitives(textKinds...))
	for i, p := range prims {
		label := p.Name()
		if i < len(labels) {
			label = labels[i]
		}
		leg.AddEntry(p, label)
		if sb, ok := p.(object.StatsBoxer); ok {
			sb.SetStats(false)
		}
		if i < len(cfg.colors) {
			if col, ok := p.(object.Colored); ok {
				col.SetMarkerColor(cfg.colors[i])
				col.SetLineColor(cfg.colors[i])
			}
		}
	}

	if err := main.Draw(leg, "same"); err != nil {
		return nil, err
	}
	if err := main.Update(); err != nil {
		return nil, err
	}
	if c.legend != nil {
		if err := main.Remove(c.legend); err != nil {
			return nil, err
		}
	}
	c.legend = leg
	return leg, nil
}
