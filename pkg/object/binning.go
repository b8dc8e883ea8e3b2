package object

import (
	"math"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/aclements/go-moremath/stats"

	"github.com/nchiapol/lookat/pkg/errors"
)

// Binning describes the bin edges along one axis.
// The zero value has no bins.
type Binning struct {
	edges []float64
}

// FixedWidth returns n equal-width bins spanning [lo, hi).
func FixedWidth(n int, lo, hi float64) (Binning, error) {
	if n <= 0 {
		return Binning{}, errors.New(errors.ErrCodeInvalidBinning, "number of bins must be positive, got %d", n)
	}
	if !(lo < hi) {
		return Binning{}, errors.New(errors.ErrCodeInvalidBinning, "empty range [%g, %g)", lo, hi)
	}
	edges := make([]float64, n+1)
	w := (hi - lo) / float64(n)
	for i := range edges {
		edges[i] = lo + float64(i)*w
	}
	edges[n] = hi
	return Binning{edges: edges}, nil
}

// EdgeList returns bins with explicit edges, which must be strictly increasing.
func EdgeList(edges []float64) (Binning, error) {
	if len(edges) < 2 {
		return Binning{}, errors.New(errors.ErrCodeInvalidBinning, "need at least two bin edges, got %d", len(edges))
	}
	for i := 1; i < len(edges); i++ {
		if !(edges[i-1] < edges[i]) {
			return Binning{}, errors.New(errors.ErrCodeInvalidBinning, "bin edges not increasing at %d: %g >= %g", i, edges[i-1], edges[i])
		}
	}
	return Binning{edges: slices.Clone(edges)}, nil
}

// NBins returns the number of bins.
func (b Binning) NBins() int {
	if len(b.edges) == 0 {
		return 0
	}
	return len(b.edges) - 1
}

// Edges returns a copy of the bin edges.
func (b Binning) Edges() []float64 { return slices.Clone(b.edges) }

// Low returns the lower edge of the first bin.
func (b Binning) Low() float64 { return b.edges[0] }

// High returns the upper edge of the last bin.
func (b Binning) High() float64 { return b.edges[len(b.edges)-1] }

// LowEdge returns the lower edge of bin i.
func (b Binning) LowEdge(i int) float64 { return b.edges[i] }

// Width returns the width of bin i.
func (b Binning) Width(i int) float64 { return b.edges[i+1] - b.edges[i] }

// Center returns the centre of bin i.
func (b Binning) Center(i int) float64 { return (b.edges[i] + b.edges[i+1]) / 2 }

// Find returns the bin containing x. Bins are closed below and open above;
// values outside [Low, High) and NaN are not found.
func (b Binning) Find(x float64) (int, bool) {
	n := b.NBins()
	if n == 0 || math.IsNaN(x) || x < b.edges[0] || x >= b.edges[n] {
		return 0, false
	}
	i := sort.SearchFloat64s(b.edges, x)
	if b.edges[i] == x {
		return i, true
	}
	return i - 1, true
}

// Equal reports whether b and o have identical edges.
func (b Binning) Equal(o Binning) bool { return slices.Equal(b.edges, o.edges) }

// BinSpec is a parsed binning specification. Without an explicit range or
// edges, the range is taken from the data when the histogram is built.
type BinSpec struct {
	N      int
	Lo, Hi float64
	Edges  []float64
}

// DefaultBins is the number of bins used when none are specified.
const DefaultBins = 40

// AutoRange reports whether the range is taken from the data.
func (s BinSpec) AutoRange() bool { return s.Edges == nil && s.Lo == s.Hi }

// Binning resolves the specification, using values for the range if needed.
func (s BinSpec) Binning(values []float64) (Binning, error) {
	if s.Edges != nil {
		return EdgeList(s.Edges)
	}
	n := s.N
	if n == 0 {
		n = DefaultBins
	}
	if !s.AutoRange() {
		return FixedWidth(n, s.Lo, s.Hi)
	}
	lo, hi := dataRange(values)
	return FixedWidth(n, lo, hi)
}

// dataRange returns a half-open range that contains every finite value.
func dataRange(values []float64) (lo, hi float64) {
	finite := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			finite = append(finite, v)
		}
	}
	if len(finite) == 0 {
		return 0, 1
	}
	lo, hi = stats.Bounds(finite)
	if lo == hi {
		return lo - 0.5, hi + 0.5
	}
	return lo, math.Nextafter(hi, math.Inf(1))
}

// ParseBinSpec parses "(n)", "(n, lo, hi)" or "[e0, e1, ...]".
// An empty string yields the default specification.
func ParseBinSpec(spec string) (BinSpec, error) {
	s := strings.TrimSpace(spec)
	if s == "" {
		return BinSpec{N: DefaultBins}, nil
	}
	bad := func(err error) (BinSpec, error) {
		if err != nil {
			return BinSpec{}, errors.Wrap(errors.ErrCodeInvalidBinning, err, "histogram configuration not recognised: %q", spec)
		}
		return BinSpec{}, errors.New(errors.ErrCodeInvalidBinning, "histogram configuration not recognised: %q", spec)
	}

	switch {
	case strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")"):
		vals, err := parseNumbers(s[1 : len(s)-1])
		if err != nil {
			return bad(err)
		}
		switch len(vals) {
		case 1, 3:
		default:
			return bad(nil)
		}
		n := int(vals[0])
		if float64(n) != vals[0] || n <= 0 {
			return bad(nil)
		}
		bs := BinSpec{N: n}
		if len(vals) == 3 {
			bs.Lo, bs.Hi = vals[1], vals[2]
			if !(bs.Lo < bs.Hi) {
				return bad(nil)
			}
		}
		return bs, nil
	case strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]"):
		vals, err := parseNumbers(s[1 : len(s)-1])
		if err != nil {
			return bad(err)
		}
		if _, err := EdgeList(vals); err != nil {
			return bad(err)
		}
		return BinSpec{N: len(vals) - 1, Edges: vals}, nil
	}
	return bad(nil)
}

func parseNumbers(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	vals := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, err
		}
		vals = append(vals, v)
	}
	return vals, nil
}
