package canvas

import (
	"testing"

	"github.com/nchiapol/lookat/pkg/errors"
	"github.com/nchiapol/lookat/pkg/geom"
	"github.com/nchiapol/lookat/pkg/object"
)

func TestNewTextStrategy(t *testing.T) {
	b, _ := object.FixedWidth(2, 0, 2)
	h, _ := object.NewH1("h", "", b)
	g := object.NewGraph("g", "", []float64{0, 1}, []float64{1, 2})
	mg := object.NewMultiGraph("mg", "", g)
	eff := object.NewEfficiency("eff", "", h, h.Clone("total"))
	leg := object.NewLegend("leg", geom.Full)

	tests := []struct {
		name     string
		obj      object.Object
		wantCode errors.Code
		wantType TextStrategy
	}{
		{"histogram", h, "", defaultStrategy{}},
		{"graph", g, "", defaultStrategy{}},
		{"multigraph", mg, "", aggregateStrategy{}},
		{"unpainted efficiency", eff, errors.ErrCodeNoSuitableObject, nil},
		{"legend", leg, errors.ErrCodeUnsupportedKind, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, err := NewTextStrategy(tt.obj)
			if tt.wantCode != "" {
				if !errors.Is(err, tt.wantCode) {
					t.Fatalf("NewTextStrategy() error = %v, want %s", err, tt.wantCode)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewTextStrategy() error = %v", err)
			}
			switch tt.wantType.(type) {
			case defaultStrategy:
				if _, ok := ts.(defaultStrategy); !ok {
					t.Errorf("NewTextStrategy() = %T, want defaultStrategy", ts)
				}
			case aggregateStrategy:
				if _, ok := ts.(aggregateStrategy); !ok {
					t.Errorf("NewTextStrategy() = %T, want aggregateStrategy", ts)
				}
			}
		})
	}
}

func TestEfficiencyStrategyUsesPaintedGraph(t *testing.T) {
	b, _ := object.FixedWidth(2, 0, 2)
	pass, _ := object.NewH1("pass", "", b)
	eff := object.NewEfficiency("eff", "", pass, pass.Clone("total"))
	eff.Paint()

	ts, err := NewTextStrategy(eff)
	if err != nil {
		t.Fatal(err)
	}
	if ts.XAxis() != eff.PaintedGraph().XAxis() {
		t.Error("XAxis() should come from the painted graph")
	}
	if ts.TitleTarget() != object.Titled(eff) {
		t.Error("TitleTarget() should be the efficiency itself")
	}
}

func TestAggregateStrategyTitlesFrame(t *testing.T) {
	mg := object.NewMultiGraph("mg", "", object.NewGraph("g", "", []float64{0, 1}, []float64{0, 1}))
	ts, err := NewTextStrategy(mg)
	if err != nil {
		t.Fatal(err)
	}
	ts.TitleTarget().SetTitle("frame title")
	if got := mg.Histogram().Title(); got != "frame title" {
		t.Errorf("frame Title() = %q, want %q", got, "frame title")
	}
}

func TestSelectTextStrategy(t *testing.T) {
	b, _ := object.FixedWidth(2, 0, 2)
	h, _ := object.NewH1("h", "", b)
	leg := object.NewLegend("leg", geom.Full)

	if _, err := selectTextStrategy(nil); !errors.Is(err, errors.ErrCodeNoSuitableObject) {
		t.Errorf("selectTextStrategy(nil) error = %v, want %s", err, errors.ErrCodeNoSuitableObject)
	}
	ts, err := selectTextStrategy([]object.Object{leg, h})
	if err != nil {
		t.Fatalf("selectTextStrategy() error = %v", err)
	}
	if ts.TitleTarget() != object.Titled(h) {
		t.Error("selectTextStrategy() should skip the legend and bind the histogram")
	}
}
