package object

// Default axis attributes, in fractions of the pad height.
const (
	DefaultTitleSize   = 0.035
	DefaultLabelSize   = 0.035
	DefaultTitleOffset = 1.0
	DefaultNDivisions  = 510
)

// Axis holds the annotation state of one axis.
type Axis struct {
	Title       string
	TitleSize   float64
	LabelSize   float64
	TitleOffset float64
	NDivisions  int

	// User range; only meaningful when HasRange is set.
	RangeMin, RangeMax float64
	HasRange           bool
}

// NewAxis returns an axis with default attributes.
func NewAxis() Axis {
	return Axis{
		TitleSize:   DefaultTitleSize,
		LabelSize:   DefaultLabelSize,
		TitleOffset: DefaultTitleOffset,
		NDivisions:  DefaultNDivisions,
	}
}

// SetRangeUser restricts the displayed range of the axis.
func (a *Axis) SetRangeUser(lo, hi float64) {
	if lo > hi {
		lo, hi = hi, lo
	}
	a.RangeMin, a.RangeMax, a.HasRange = lo, hi, true
}

// UnsetRange returns the axis to automatic range.
func (a *Axis) UnsetRange() {
	a.RangeMin, a.RangeMax, a.HasRange = 0, 0, false
}
