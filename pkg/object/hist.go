package object

import (
	"math"
	"slices"

	"github.com/aclements/go-moremath/stats"

	"github.com/nchiapol/lookat/pkg/errors"
)

// Hist is a 1-D or 2-D binned aggregate. Contents of a 2-D histogram are
// stored row-major: bin (ix, iy) lives at iy*nx + ix. Fills outside the
// binning count as entries but do not contribute to the contents.
type Hist struct {
	name      string
	title     string
	titleSize float64
	dim       int
	xb, yb    Binning
	contents  []float64
	entries   int
	x, y      Axis
	line      Color
	marker    Color
	stats     bool
	varInfo   string
	released  bool
}

// NewH1 returns an empty 1-D histogram.
func NewH1(name, title string, xb Binning) (*Hist, error) {
	if xb.NBins() == 0 {
		return nil, errors.New(errors.ErrCodeInvalidBinning, "histogram %q has no bins", name)
	}
	return newHist(name, title, 1, xb, Binning{}), nil
}

// NewH2 returns an empty 2-D histogram.
func NewH2(name, title string, xb, yb Binning) (*Hist, error) {
	if xb.NBins() == 0 || yb.NBins() == 0 {
		return nil, errors.New(errors.ErrCodeInvalidBinning, "histogram %q has no bins", name)
	}
	return newHist(name, title, 2, xb, yb), nil
}

func newHist(name, title string, dim int, xb, yb Binning) *Hist {
	n := xb.NBins()
	if dim == 2 {
		n *= yb.NBins()
	}
	return &Hist{
		name:      name,
		title:     title,
		titleSize: DefaultTitleSize,
		dim:       dim,
		xb:        xb,
		yb:        yb,
		contents:  make([]float64, n),
		x:         NewAxis(),
		y:         NewAxis(),
		line:      Blue,
		marker:    Black,
		stats:     true,
	}
}

func (h *Hist) Name() string        { return h.name }
func (h *Hist) SetName(name string) { h.name = name }

// Kind returns KindH1 or KindH2.
func (h *Hist) Kind() Kind {
	if h.dim == 2 {
		return KindH2
	}
	return KindH1
}

// Dim returns 1 or 2.
func (h *Hist) Dim() int { return h.dim }

func (h *Hist) Title() string             { return h.title }
func (h *Hist) SetTitle(title string)     { h.title = title }
func (h *Hist) TitleSize() float64        { return h.titleSize }
func (h *Hist) SetTitleSize(size float64) { h.titleSize = size }

func (h *Hist) XAxis() *Axis { return &h.x }
func (h *Hist) YAxis() *Axis { return &h.y }

func (h *Hist) LineColor() Color       { return h.line }
func (h *Hist) SetLineColor(c Color)   { h.line = c }
func (h *Hist) MarkerColor() Color     { return h.marker }
func (h *Hist) SetMarkerColor(c Color) { h.marker = c }
func (h *Hist) SetStats(show bool)     { h.stats = show }
func (h *Hist) StatsEnabled() bool     { return h.stats }
func (h *Hist) VarInfo() string        { return h.varInfo }
func (h *Hist) SetVarInfo(v string)    { h.varInfo = v }
func (h *Hist) XBinning() Binning      { return h.xb }
func (h *Hist) YBinning() Binning      { return h.yb }
func (h *Hist) NBins() int             { return len(h.contents) }
func (h *Hist) Entries() int           { return h.entries }
func (h *Hist) Released() bool         { return h.released }

// CheckLive fails with ErrCodeInvalidHandle once h has been released.
func (h *Hist) CheckLive() error {
	if h.released {
		return errors.New(errors.ErrCodeInvalidHandle, "histogram %q was released", h.name)
	}
	return nil
}

// Release drops the contents. A released histogram keeps its name so that
// stale references still print sensibly.
func (h *Hist) Release() {
	h.contents = nil
	h.released = true
}

// Fill adds w at x. It reports whether x fell inside the binning. Filling
// a released histogram does nothing.
func (h *Hist) Fill(x, w float64) bool {
	if h.released {
		return false
	}
	h.entries++
	i, ok := h.xb.Find(x)
	if !ok || h.dim != 1 {
		return false
	}
	h.contents[i] += w
	return true
}

// Fill2 adds w at (x, y) of a 2-D histogram.
func (h *Hist) Fill2(x, y, w float64) bool {
	if h.released {
		return false
	}
	h.entries++
	ix, iy, ok := h.FindBin2(x, y)
	if !ok {
		return false
	}
	h.contents[iy*h.xb.NBins()+ix] += w
	return true
}

// FindBin returns the bin containing x of a 1-D histogram.
func (h *Hist) FindBin(x float64) (int, bool) {
	if h.dim != 1 {
		return 0, false
	}
	return h.xb.Find(x)
}

// FindBin2 returns the bin containing (x, y) of a 2-D histogram.
func (h *Hist) FindBin2(x, y float64) (ix, iy int, ok bool) {
	if h.dim != 2 {
		return 0, 0, false
	}
	ix, okx := h.xb.Find(x)
	iy, oky := h.yb.Find(y)
	return ix, iy, okx && oky
}

// Content returns the content of the flattened bin i.
func (h *Hist) Content(i int) float64 {
	if i < 0 || i >= len(h.contents) {
		return 0
	}
	return h.contents[i]
}

// SetContent overwrites the content of the flattened bin i.
func (h *Hist) SetContent(i int, v float64) {
	if i >= 0 && i < len(h.contents) {
		h.contents[i] = v
	}
}

// Contents returns a copy of all bin contents.
func (h *Hist) Contents() []float64 { return slices.Clone(h.contents) }

// ContentAt returns the content of the bin containing x; 0 outside the range.
func (h *Hist) ContentAt(x float64) float64 {
	i, ok := h.FindBin(x)
	if !ok || h.released {
		return 0
	}
	return h.contents[i]
}

// ContentAt2 returns the content of the bin containing (x, y).
func (h *Hist) ContentAt2(x, y float64) float64 {
	ix, iy, ok := h.FindBin2(x, y)
	if !ok || h.released {
		return 0
	}
	return h.contents[iy*h.xb.NBins()+ix]
}

// SumOfWeights returns the sum of all in-range bin contents.
func (h *Hist) SumOfWeights() float64 {
	var s float64
	for _, c := range h.contents {
		s += c
	}
	return s
}

// Integral is the sum of contents; bins are not multiplied by their width.
func (h *Hist) Integral() float64 { return h.SumOfWeights() }

// Scale multiplies every bin by f.
func (h *Hist) Scale(f float64) {
	for i := range h.contents {
		h.contents[i] *= f
	}
}

// Clone returns a deep copy of h under a new name.
func (h *Hist) Clone(name string) *Hist {
	c := *h
	c.name = name
	c.contents = slices.Clone(h.contents)
	c.released = false
	return &c
}

// Compatible reports whether h and o have the same dimension and binning.
func (h *Hist) Compatible(o *Hist) bool {
	return h.dim == o.dim && h.xb.Equal(o.xb) && h.yb.Equal(o.yb)
}

// Divide sets h to (num*wn)/(den*wd) bin by bin. Bins with a zero
// denominator are set to 0.
func (h *Hist) Divide(num, den *Hist, wn, wd float64) error {
	for _, o := range []*Hist{h, num, den} {
		if err := o.CheckLive(); err != nil {
			return err
		}
	}
	if !num.Compatible(den) || !h.Compatible(num) {
		return errors.New(errors.ErrCodeInvalidBinning, "cannot divide %q by %q: incompatible binning", num.name, den.name)
	}
	for i := range h.contents {
		d := den.contents[i] * wd
		if d == 0 {
			h.contents[i] = 0
			continue
		}
		h.contents[i] = num.contents[i] * wn / d
	}
	return nil
}

// Summary is the content of a statistics box.
type Summary struct {
	Entries int
	Mean    float64
	RMS     float64
}

// Summary computes the binned mean and RMS along x.
func (h *Hist) Summary() Summary {
	s := Summary{Entries: h.entries}
	nx := h.xb.NBins()
	if nx == 0 {
		return s
	}
	xs := make([]float64, nx)
	ws := make([]float64, nx)
	for i := range h.contents {
		ws[i%nx] += h.contents[i]
	}
	var total float64
	for i := range xs {
		xs[i] = h.xb.Center(i)
		total += ws[i]
	}
	if total == 0 {
		return s
	}
	s.Mean = stats.Sample{Xs: xs, Weights: ws}.Mean()
	sq := make([]float64, nx)
	for i, x := range xs {
		sq[i] = x * x
	}
	v := stats.Sample{Xs: sq, Weights: ws}.Mean() - s.Mean*s.Mean
	s.RMS = math.Sqrt(math.Max(v, 0))
	return s
}
