package source

import (
	"math"
	"testing"

	"github.com/nchiapol/lookat/pkg/errors"
	"github.com/nchiapol/lookat/pkg/object"
)

func sampleTable(t *testing.T) *Table {
	t.Helper()
	tbl, err := NewTable("sample", []string{"x", "y", "w"})
	if err != nil {
		t.Fatal(err)
	}
	rows := [][]float64{
		{0.5, 0.5, 1},
		{1.5, 0.5, 2},
		{1.5, 1.5, 0},
		{2.5, 1.5, 1},
		{math.NaN(), 0.5, 1},
	}
	for _, r := range rows {
		if err := tbl.Append(r...); err != nil {
			t.Fatal(err)
		}
	}
	return tbl
}

func TestNewTableRejectsDuplicates(t *testing.T) {
	if _, err := NewTable("t", []string{"a", "a"}); err == nil {
		t.Error("NewTable with duplicate fields: want error")
	}
}

func TestTableFill1D(t *testing.T) {
	tbl := sampleTable(t)
	h, err := tbl.Fill("x", "", "h", object.BinSpec{N: 3, Lo: 0, Hi: 3})
	if err != nil {
		t.Fatal(err)
	}
	for i, want := range []float64{1, 2, 1} {
		if got := h.Content(i); got != want {
			t.Errorf("Content(%d) = %v, want %v", i, got, want)
		}
	}
	if h.VarInfo() != "x" {
		t.Errorf("VarInfo() = %q, want %q", h.VarInfo(), "x")
	}
	if h.Entries() != 5 {
		t.Errorf("Entries() = %d, want 5", h.Entries())
	}
}

func TestTableFillWeighted(t *testing.T) {
	tbl := sampleTable(t)
	h, err := tbl.Fill("x", "w", "h", object.BinSpec{N: 3, Lo: 0, Hi: 3})
	if err != nil {
		t.Fatal(err)
	}
	for i, want := range []float64{1, 2, 1} {
		if got := h.Content(i); got != want {
			t.Errorf("Content(%d) = %v, want %v", i, got, want)
		}
	}
	if h.Entries() != 4 {
		t.Errorf("Entries() = %d, want 4 (zero weight dropped)", h.Entries())
	}

	sel, err := tbl.Fill("x", Sel("x", 1, 3), "s", object.BinSpec{N: 3, Lo: 0, Hi: 3})
	if err != nil {
		t.Fatal(err)
	}
	if got := sel.SumOfWeights(); got != 3 {
		t.Errorf("selected SumOfWeights() = %v, want 3", got)
	}
}

func TestTableFill2D(t *testing.T) {
	tbl := sampleTable(t)
	h, err := tbl.Fill("y:x", "", "h2", object.BinSpec{N: 3, Lo: 0, Hi: 3})
	if err != nil {
		t.Fatal(err)
	}
	if h.Dim() != 2 {
		t.Fatalf("Dim() = %d, want 2", h.Dim())
	}
	if got := h.ContentAt2(1.5, 1.5); got != 1 {
		t.Errorf("ContentAt2(1.5, 1.5) = %v, want 1", got)
	}
	if got := h.ContentAt2(2.5, 1.5); got != 1 {
		t.Errorf("ContentAt2(2.5, 1.5) = %v, want 1", got)
	}
}

func TestTableFillAutoRange(t *testing.T) {
	tbl := sampleTable(t)
	h, err := tbl.Fill("x", "", "h", object.BinSpec{})
	if err != nil {
		t.Fatal(err)
	}
	if h.NBins() != object.DefaultBins {
		t.Errorf("NBins() = %d, want %d", h.NBins(), object.DefaultBins)
	}
	if got := h.SumOfWeights(); got != 4 {
		t.Errorf("SumOfWeights() = %v, want 4 (all finite values inside the range)", got)
	}
}

func TestTableFillErrors(t *testing.T) {
	tbl := sampleTable(t)
	if _, err := tbl.Fill("x:y:w", "", "h", object.BinSpec{}); !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("3-D Fill error = %v, want %s", err, errors.ErrCodeUnsupported)
	}
	if _, err := tbl.Fill("nope", "", "h", object.BinSpec{}); !errors.Is(err, errors.ErrCodeFieldNotFound) {
		t.Errorf("Fill of unknown field error = %v, want %s", err, errors.ErrCodeFieldNotFound)
	}
}

func TestTableFillInto(t *testing.T) {
	tbl := sampleTable(t)
	h, _ := tbl.Fill("x", "", "h", object.BinSpec{N: 3, Lo: 0, Hi: 3})
	if err := tbl.FillInto(h, "x", ""); err != nil {
		t.Fatal(err)
	}
	if got := h.SumOfWeights(); got != 8 {
		t.Errorf("SumOfWeights() = %v, want 8", got)
	}
	if err := tbl.FillInto(h, "y:x", ""); err == nil {
		t.Error("FillInto with wrong dimension: want error")
	}
	h.Release()
	if err := tbl.FillInto(h, "x", ""); !errors.Is(err, errors.ErrCodeInvalidHandle) {
		t.Errorf("FillInto(released) error = %v, want %s", err, errors.ErrCodeInvalidHandle)
	}
}

func TestTableRange(t *testing.T) {
	tbl := sampleTable(t)
	lo, hi, err := tbl.Range("x")
	if err != nil {
		t.Fatal(err)
	}
	if lo != 0.5 || hi != 2.5 {
		t.Errorf("Range(x) = %v, %v, want 0.5, 2.5", lo, hi)
	}
}
