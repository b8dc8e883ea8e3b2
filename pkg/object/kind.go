package object

// Kind tags the concrete type behind an [Object].
type Kind int

// Known object kinds.
const (
	KindUnknown Kind = iota
	KindH1
	KindH2
	KindGraph
	KindEfficiency
	KindMultiGraph
	KindLegend
)

var kindNames = map[Kind]string{
	KindUnknown:    "unknown",
	KindH1:         "h1",
	KindH2:         "h2",
	KindGraph:      "graph",
	KindEfficiency: "efficiency",
	KindMultiGraph: "multigraph",
	KindLegend:     "legend",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return kindNames[KindUnknown]
}

// IsHist reports whether k is a binned aggregate.
func (k Kind) IsHist() bool { return k == KindH1 || k == KindH2 }
