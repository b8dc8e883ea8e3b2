package render

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	svg "github.com/ajstarks/svgo"

	"github.com/nchiapol/lookat/pkg/fonts"
	"github.com/nchiapol/lookat/pkg/object"
)

type SVGOption func(*svgRenderer)

type svgRenderer struct {
	embedFont bool
}

// WithEmbeddedFont embeds the text font so the file renders the same
// everywhere, at the cost of size.
func WithEmbeddedFont() SVGOption { return func(r *svgRenderer) { r.embedFont = true } }

// RenderSVG serializes d as SVG. Shapes are written as paths with float
// coordinates; text positions snap to whole pixels.
func RenderSVG(d Drawing, opts ...SVGOption) []byte {
	r := svgRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	var buf bytes.Buffer
	canvas := svg.New(&buf)
	w, h := px(d.Width), px(d.Height)
	canvas.Start(w, h, fmt.Sprintf(`viewBox="0 0 %d %d"`, w, h))
	canvas.Style("text/css", fontCSS(r.embedFont))
	for _, s := range d.Shapes {
		switch s := s.(type) {
		case Box:
			renderBox(canvas, s)
		case Polyline:
			renderPolyline(canvas, s)
		case Marker:
			canvas.Circle(px(s.X), px(s.Y), max(px(s.R), 1), "fill:"+s.Color.Hex())
		case Label:
			renderLabel(canvas, s)
		}
	}
	canvas.End()
	return buf.Bytes()
}

func px(v float64) int { return int(math.Round(v)) }

func fontCSS(embed bool) string {
	var b strings.Builder
	if embed {
		fmt.Fprintf(&b, "@font-face { font-family: '%s'; src: url(data:font/ttf;base64,%s) format('truetype'); }\n",
			fonts.FontFamily, fonts.RegularTTFBase64())
	}
	fmt.Fprintf(&b, "text { font-family: %s; }", fonts.FallbackFontFamily)
	return b.String()
}

func paint(c *object.Color) string {
	if c == nil {
		return "none"
	}
	return c.Hex()
}

func renderBox(canvas *svg.SVG, b Box) {
	d := fmt.Sprintf("M%.2f %.2fh%.2fv%.2fh%.2fZ", b.X, b.Y, b.W, b.H, -b.W)
	canvas.Path(d, "fill:"+paint(b.Fill)+"; stroke:"+paint(b.Stroke))
}

func renderPolyline(canvas *svg.SVG, p Polyline) {
	if len(p.Points) == 0 {
		return
	}
	var d strings.Builder
	for i, pt := range p.Points {
		cmd := "L"
		if i == 0 {
			cmd = "M"
		}
		fmt.Fprintf(&d, "%s%.2f %.2f", cmd, pt.X, pt.Y)
	}
	style := fmt.Sprintf("fill:none; stroke:%s; stroke-width:%.2f", p.Color.Hex(), p.Width)
	if p.Dashed {
		style += "; stroke-dasharray:3,3"
	}
	canvas.Path(d.String(), style)
}

var svgAnchors = map[Anchor]string{
	AnchorStart:  "start",
	AnchorMiddle: "middle",
	AnchorEnd:    "end",
}

func renderLabel(canvas *svg.SVG, l Label) {
	x, y := px(l.X), px(l.Y)
	attrs := fmt.Sprintf(`font-size="%.2f" text-anchor="%s" fill="%s"`, l.Size, svgAnchors[l.Anchor], l.Color.Hex())
	if l.Vertical {
		attrs += fmt.Sprintf(` transform="rotate(-90 %d %d)"`, x, y)
	}
	canvas.Text(x, y, l.Text, attrs)
}
