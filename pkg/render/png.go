package render

import (
	"bytes"
	"image"
	"math"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/nchiapol/lookat/pkg/errors"
	"github.com/nchiapol/lookat/pkg/fonts"
	"github.com/nchiapol/lookat/pkg/object"
)

// PNGOption configures PNG rendering.
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	scale float64
	faces map[float64]text.Face
}

// WithScale sets the PNG scale factor (default 2.0 for 2x resolution).
func WithScale(s float64) PNGOption {
	return func(r *pngRenderer) {
		if s > 0 {
			r.scale = s
		}
	}
}

// RenderPNG rasterizes d.
func RenderPNG(d Drawing, opts ...PNGOption) ([]byte, error) {
	r := pngRenderer{scale: 2.0, faces: make(map[float64]text.Face)}
	for _, opt := range opts {
		opt(&r)
	}
	w, h := int(math.Ceil(d.Width*r.scale)), int(math.Ceil(d.Height*r.scale))
	if w <= 0 || h <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "cannot rasterize a %dx%d canvas", w, h)
	}
	dc := gg.NewContext(w, h)
	defer dc.Close()
	dc.ClearWithColor(rgb(object.White))

	for _, s := range d.Shapes {
		var err error
		switch s := s.(type) {
		case Box:
			err = r.box(dc, s)
		case Polyline:
			err = r.polyline(dc, s)
		case Marker:
			dc.SetRGB(s.Color.RGB())
			dc.DrawCircle(s.X*r.scale, s.Y*r.scale, s.R*r.scale)
			err = dc.Fill()
		case Label:
			err = r.label(dc, s)
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "rasterize canvas")
		}
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode png")
	}
	return buf.Bytes(), nil
}

func rgb(c object.Color) gg.RGBA {
	r, g, b := c.RGB()
	return gg.RGB(r, g, b)
}

func (r *pngRenderer) box(dc *gg.Context, b Box) error {
	x, y, w, h := b.X*r.scale, b.Y*r.scale, b.W*r.scale, b.H*r.scale
	if b.Fill != nil {
		dc.SetRGB(b.Fill.RGB())
		dc.DrawRectangle(x, y, w, h)
		if err := dc.Fill(); err != nil {
			return err
		}
	}
	if b.Stroke != nil {
		dc.SetRGB(b.Stroke.RGB())
		dc.SetLineWidth(r.scale)
		dc.DrawRectangle(x, y, w, h)
		return dc.Stroke()
	}
	return nil
}

func (r *pngRenderer) polyline(dc *gg.Context, p Polyline) error {
	if len(p.Points) < 2 {
		return nil
	}
	dc.SetRGB(p.Color.RGB())
	dc.SetLineWidth(p.Width * r.scale)
	if p.Dashed {
		dc.SetDash(3*r.scale, 3*r.scale)
	}
	dc.MoveTo(p.Points[0].X*r.scale, p.Points[0].Y*r.scale)
	for _, pt := range p.Points[1:] {
		dc.LineTo(pt.X*r.scale, pt.Y*r.scale)
	}
	err := dc.Stroke()
	dc.ClearDash()
	return err
}

func (r *pngRenderer) face(size float64) (text.Face, error) {
	size = math.Round(size*r.scale*2) / 2
	if f, ok := r.faces[size]; ok {
		return f, nil
	}
	f, err := fonts.Face(size)
	if err != nil {
		return nil, err
	}
	r.faces[size] = f
	return f, nil
}

// anchorShift is the fraction of the text advance left of the anchor point.
func anchorShift(a Anchor) float64 {
	switch a {
	case AnchorMiddle:
		return 0.5
	case AnchorEnd:
		return 1
	}
	return 0
}

func (r *pngRenderer) label(dc *gg.Context, l Label) error {
	if l.Text == "" || l.Size <= 0 {
		return nil
	}
	f, err := r.face(l.Size)
	if err != nil {
		return err
	}
	dc.SetFont(f)
	dc.SetRGB(l.Color.RGB())
	if l.Vertical {
		r.vertical(dc, l, f)
		return nil
	}
	w, _ := dc.MeasureString(l.Text)
	dc.DrawString(l.Text, l.X*r.scale-w*anchorShift(l.Anchor), l.Y*r.scale)
	return nil
}

// vertical draws l reading bottom to top. Glyph drawing and DrawImage
// ignore rotation in the context transform, so the text is rasterized
// upright on a scratch surface and turned with x/image/draw.
func (r *pngRenderer) vertical(dc *gg.Context, l Label, f text.Face) {
	m := f.Metrics()
	w, _ := dc.MeasureString(l.Text)
	tw, th := int(math.Ceil(w))+2, int(math.Ceil(m.Ascent+m.Descent))+2
	tmp := gg.NewContext(tw, th)
	defer tmp.Close()
	tmp.SetFont(f)
	tmp.SetRGB(l.Color.RGB())
	tmp.DrawString(l.Text, 1, 1+m.Ascent)

	// after the turn the text runs upwards from the bottom of the image
	x := l.X*r.scale - (1 + m.Ascent)
	y := l.Y*r.scale - float64(tw)*(1-anchorShift(l.Anchor))
	dc.DrawImage(gg.ImageBufFromImage(quarterTurn(tmp.Image())), x, y)
}

// quarterTurn rotates src a quarter turn counter-clockwise.
func quarterTurn(src image.Image) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dy(), b.Dx()))
	// (sx, sy) -> (sy, width - sx), relative to the source origin
	s2d := f64.Aff3{
		0, 1, -float64(b.Min.Y),
		-1, 0, float64(b.Max.X),
	}
	xdraw.NearestNeighbor.Transform(dst, s2d, src, b, xdraw.Src, nil)
	return dst
}
