package object

import (
	"math"
	"slices"
	"testing"

	"github.com/nchiapol/lookat/pkg/errors"
)

func TestParseBinSpec(t *testing.T) {
	tests := []struct {
		in      string
		want    BinSpec
		wantErr bool
	}{
		{in: "", want: BinSpec{N: DefaultBins}},
		{in: "(40)", want: BinSpec{N: 40}},
		{in: " (10, 0, 5) ", want: BinSpec{N: 10, Lo: 0, Hi: 5}},
		{in: "[0, 1, 3]", want: BinSpec{N: 2, Edges: []float64{0, 1, 3}}},
		{in: "(10, 0)", wantErr: true},
		{in: "(0)", wantErr: true},
		{in: "(2.5)", wantErr: true},
		{in: "(10, 5, 0)", wantErr: true},
		{in: "[3, 1]", wantErr: true},
		{in: "[1]", wantErr: true},
		{in: "10", wantErr: true},
		{in: "(a, b, c)", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseBinSpec(tt.in)
			if tt.wantErr {
				if !errors.Is(err, errors.ErrCodeInvalidBinning) {
					t.Fatalf("ParseBinSpec(%q) error = %v, want %s", tt.in, err, errors.ErrCodeInvalidBinning)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseBinSpec(%q) error = %v", tt.in, err)
			}
			if got.N != tt.want.N || got.Lo != tt.want.Lo || got.Hi != tt.want.Hi || !slices.Equal(got.Edges, tt.want.Edges) {
				t.Errorf("ParseBinSpec(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestBinningFind(t *testing.T) {
	b, err := FixedWidth(4, 0, 4)
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		x      float64
		want   int
		wantOK bool
	}{
		{0, 0, true},
		{0.5, 0, true},
		{1, 1, true},
		{3.999, 3, true},
		{4, 0, false},
		{-0.1, 0, false},
		{math.NaN(), 0, false},
	}
	for _, tt := range tests {
		got, ok := b.Find(tt.x)
		if ok != tt.wantOK || (ok && got != tt.want) {
			t.Errorf("Find(%v) = %d, %v, want %d, %v", tt.x, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestEdgeListFind(t *testing.T) {
	b, err := EdgeList([]float64{0, 1, 10, 100})
	if err != nil {
		t.Fatal(err)
	}
	if got := b.NBins(); got != 3 {
		t.Fatalf("NBins() = %d, want 3", got)
	}
	if i, _ := b.Find(50); i != 2 {
		t.Errorf("Find(50) = %d, want 2", i)
	}
	if got := b.Width(1); got != 9 {
		t.Errorf("Width(1) = %v, want 9", got)
	}
}

func TestBinSpecAutoRange(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		lo, hi float64
	}{
		{"empty", nil, 0, 1},
		{"constant", []float64{2, 2}, 1.5, 2.5},
		{"ignores nan", []float64{math.NaN(), 1, 3}, 1, math.Nextafter(3, math.Inf(1))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := BinSpec{N: 4}.Binning(tt.values)
			if err != nil {
				t.Fatal(err)
			}
			if b.Low() != tt.lo || b.High() != tt.hi {
				t.Errorf("range = [%v, %v), want [%v, %v)", b.Low(), b.High(), tt.lo, tt.hi)
			}
			for _, v := range tt.values {
				if math.IsNaN(v) {
					continue
				}
				if _, ok := b.Find(v); !ok {
					t.Errorf("Find(%v) not found in auto range", v)
				}
			}
		})
	}
}
