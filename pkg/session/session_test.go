package session

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/nchiapol/lookat/pkg/canvas"
	"github.com/nchiapol/lookat/pkg/errors"
	"github.com/nchiapol/lookat/pkg/ratio"
	"github.com/nchiapol/lookat/pkg/render"
	"github.com/nchiapol/lookat/pkg/source"
	"github.com/nchiapol/lookat/pkg/toolkit"
)

// events returns a table with pt = 0.5..9.5 and eta alternating -1, 1.
func events(t *testing.T) *source.Table {
	t.Helper()
	tbl, err := source.NewTable("events", []string{"pt", "eta"})
	if err != nil {
		t.Fatal(err)
	}
	for i := range 10 {
		eta := -1.0
		if i%2 == 1 {
			eta = 1
		}
		if err := tbl.Append(float64(i)+0.5, eta); err != nil {
			t.Fatal(err)
		}
	}
	return tbl
}

func newSession(t *testing.T) (*Session, *toolkit.Memory) {
	t.Helper()
	tk := toolkit.NewMemory()
	s := New(tk, WithDefaultBins(10))
	s.AddSource(events(t))
	t.Cleanup(func() { _ = s.Close() })
	return s, tk
}

func mainStyles(tk *toolkit.Memory, c *canvas.Layout) []string {
	for _, mc := range tk.Canvases() {
		if p := mc.Pad(c.Name() + "_" + canvas.MainPad); p != nil {
			return p.Styles()
		}
	}
	return nil
}

// =============================================================================
// Draw
// =============================================================================

func TestDrawOpensCanvasAndOverlays(t *testing.T) {
	s, tk := newSession(t)

	h0, err := s.Draw("pt")
	if err != nil {
		t.Fatalf("Draw() error = %v", err)
	}
	h1, err := s.Draw("pt*2")
	if err != nil {
		t.Fatalf("Draw() error = %v", err)
	}

	if h0.Name() != "myHist_0" || h1.Name() != "myHist_1" {
		t.Errorf("names = %q, %q, want myHist_0, myHist_1", h0.Name(), h1.Name())
	}
	c := s.ActiveCanvas()
	if c == nil {
		t.Fatal("ActiveCanvas() = nil after Draw")
	}
	if got, want := mainStyles(tk, c), []string{StyleAxes, StyleOverlay}; !slices.Equal(got, want) {
		t.Errorf("styles = %v, want %v", got, want)
	}
	if got := c.Texts().XLabel; got != "pt*2" {
		t.Errorf("XLabel = %q, want %q", got, "pt*2")
	}
	if h0.Entries() != 10 {
		t.Errorf("Entries() = %d, want 10", h0.Entries())
	}
}

func TestDrawOptions(t *testing.T) {
	s, _ := newSession(t)

	h, err := s.Draw("pt", WithSelection(Sel("pt", 2, 6)), WithName("sel"), WithBinning("(4, 0, 8)"))
	if err != nil {
		t.Fatalf("Draw() error = %v", err)
	}
	if h.Name() != "sel" {
		t.Errorf("Name() = %q, want sel", h.Name())
	}
	if got := h.XBinning().NBins(); got != 4 {
		t.Errorf("NBins() = %d, want 4", got)
	}
	if got := h.SumOfWeights(); got != 4 {
		t.Errorf("SumOfWeights() = %v, want 4", got)
	}
	if s.Registry().Object("sel") != h {
		t.Error("histogram not registered")
	}
}

func TestDrawReplacesSameName(t *testing.T) {
	s, tk := newSession(t)

	old, _ := s.Draw("pt", WithName("h"))
	h, err := s.Draw("eta", WithName("h"))
	if err != nil {
		t.Fatalf("Draw() error = %v", err)
	}
	if !old.Released() {
		t.Error("replaced histogram not released")
	}
	if got := s.Registry().Object("h"); got != h {
		t.Errorf("Object(h) = %v, want the new histogram", got)
	}
	p := s.ActivePad()
	if !p.Hosts(h) {
		t.Error("new histogram not drawn on the pad")
	}
	if p.Hosts(old) {
		t.Error("released histogram still on the pad")
	}
	if got, want := mainStyles(tk, s.ActiveCanvas()), []string{StyleAxes}; !slices.Equal(got, want) {
		t.Errorf("styles = %v, want %v", got, want)
	}
	if st := p.Strategy(); st == nil || st.TitleTarget() != h {
		t.Error("text strategy not bound to the new histogram")
	}
}

func TestDrawFailureKeepsNumbering(t *testing.T) {
	s, _ := newSession(t)

	if _, err := s.Draw("nosuch"); !errors.Is(err, errors.ErrCodeFieldNotFound) {
		t.Fatalf("Draw(nosuch) error = %v, want %s", err, errors.ErrCodeFieldNotFound)
	}
	h, err := s.Draw("pt")
	if err != nil {
		t.Fatalf("Draw() error = %v", err)
	}
	if h.Name() != "myHist_0" {
		t.Errorf("Name() = %q, want myHist_0", h.Name())
	}
}

func TestDrawFailureKeepsOldHistogram(t *testing.T) {
	s, _ := newSession(t)

	old, _ := s.Draw("pt", WithName("h"))
	if _, err := s.Draw("nosuch", WithName("h")); err == nil {
		t.Fatal("Draw(nosuch) error = nil")
	}
	if old.Released() || s.Registry().Object("h") != old || !s.ActivePad().Hosts(old) {
		t.Error("failed redraw disturbed the existing histogram")
	}
}

func TestDrawAppend(t *testing.T) {
	s, tk := newSession(t)

	h, _ := s.Draw("pt", WithName("acc"), WithBinning("(10, 0, 10)"))
	got, err := s.Draw("pt", WithName("+acc"))
	if err != nil {
		t.Fatalf("Draw(+acc) error = %v", err)
	}
	if got != h {
		t.Error("append returned a different histogram")
	}
	if h.Entries() != 20 {
		t.Errorf("Entries() = %d, want 20", h.Entries())
	}
	if n := len(mainStyles(tk, s.ActiveCanvas())); n != 1 {
		t.Errorf("pad hosts %d primitives, want 1", n)
	}

	if _, err := s.Draw("pt", WithName("+missing")); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Draw(+missing) error = %v, want %v", err, errors.ErrCodeNotFound)
	}
}

func TestDrawInvalidName(t *testing.T) {
	s, _ := newSession(t)
	for _, name := range []string{"two words", "y:x"} {
		if _, err := s.Draw("pt", WithName(name)); !errors.Is(err, errors.ErrCodeInvalidName) {
			t.Errorf("Draw(WithName(%q)) error = %v, want %v", name, err, errors.ErrCodeInvalidName)
		}
	}
	if _, err := s.Canvas("bad name"); !errors.Is(err, errors.ErrCodeInvalidName) {
		t.Errorf("Canvas() error = %v, want %v", err, errors.ErrCodeInvalidName)
	}
}

func TestDraw2D(t *testing.T) {
	s, tk := newSession(t)

	h, err := s.Draw("eta:pt")
	if err != nil {
		t.Fatalf("Draw() error = %v", err)
	}
	if h.Dim() != 2 {
		t.Errorf("Dim() = %d, want 2", h.Dim())
	}
	if got := mainStyles(tk, s.ActiveCanvas()); !slices.Equal(got, []string{StyleColz}) {
		t.Errorf("styles = %v, want [%s]", got, StyleColz)
	}

	if _, err := s.Draw("a:b:c"); !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("Draw(3-D) error = %v, want %v", err, errors.ErrCodeUnsupported)
	}
}

func TestDrawWithoutSource(t *testing.T) {
	s := New(toolkit.NewMemory())
	defer s.Close()

	if _, err := s.Draw("pt"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Draw() error = %v, want %v", err, errors.ErrCodeNotFound)
	}
	if _, err := s.Fields(nil); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Fields() error = %v, want %v", err, errors.ErrCodeNotFound)
	}
}

func TestDrawAfterWindowClosed(t *testing.T) {
	s, tk := newSession(t)

	first, _ := s.Canvas("first")
	if !tk.CloseWindow(first.Name()) {
		t.Fatal("CloseWindow() = false")
	}
	if _, err := s.Draw("pt"); err != nil {
		t.Fatalf("Draw() error = %v", err)
	}
	c := s.ActiveCanvas()
	if c == nil || c == first {
		t.Fatalf("ActiveCanvas() = %v, want a new canvas", c)
	}
	if got := len(s.Registry().Canvases()); got != 1 {
		t.Errorf("registered canvases = %d, want 1", got)
	}
}

// =============================================================================
// Ratios
// =============================================================================

func TestDrawRatio(t *testing.T) {
	s, _ := newSession(t)

	den, _ := s.Draw("pt", WithBinning("(5, 0, 10)"))
	num, _ := s.Draw("pt", WithBinning("(5, 0, 10)"), WithSelection("eta > 0"))

	a, err := s.DrawRatio()
	if err != nil {
		t.Fatalf("DrawRatio() error = %v", err)
	}
	if a.Numerator() != num || a.Denominator() != den {
		t.Errorf("DrawRatio() = %v, want %s/%s", a, num.Name(), den.Name())
	}
	if a.Name() != "ratio_0" {
		t.Errorf("Name() = %q, want ratio_0", a.Name())
	}

	c := s.ActiveCanvas()
	if c.Pad(canvas.RatioPad) == nil {
		t.Fatal("no ratio pad")
	}
	if got := c.ActivePad().Name(); got != canvas.MainPad {
		t.Errorf("active pad = %q, want %q", got, canvas.MainPad)
	}
	if !c.Pad(canvas.RatioPad).HasObjectNamed("ratio_0") {
		t.Error("ratio not drawn on the ratio pad")
	}
}

func TestDrawRatioNeedsTwoHistograms(t *testing.T) {
	s, _ := newSession(t)
	_, _ = s.Draw("pt")

	if _, err := s.DrawRatio(); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("DrawRatio() error = %v, want %v", err, errors.ErrCodeNotFound)
	}
}

func TestDrawRatioReleasedHistogram(t *testing.T) {
	s, tk := newSession(t)
	num, _ := s.Draw("pt")
	den, _ := s.Draw("pt*2")
	tk.CloseWindow(s.ActiveCanvas().Name())
	s.Cleanup(true)
	if !den.Released() {
		t.Fatal("histogram not collected")
	}

	_, err := s.DrawRatio(WithNumerator(num), WithDenominator(den))
	if !errors.Is(err, errors.ErrCodeInvalidHandle) {
		t.Errorf("DrawRatio() error = %v, want %s", err, errors.ErrCodeInvalidHandle)
	}
	if got := s.Registry().UniqueName("ratio_{0}", num.Kind()); got != "ratio_0" {
		t.Errorf("UniqueName() = %q, want ratio_0", got)
	}
}

func TestDrawRatio2DTakesCanvas(t *testing.T) {
	s, _ := newSession(t)
	den, _ := s.Draw("eta:pt", WithBinning("(2, 0, 10)"))
	num, _ := s.Draw("eta:pt", WithBinning("(2, 0, 10)"), WithSelection("pt > 3"), WithName("num_{0}"))

	if _, err := s.DrawRatio(WithNumerator(num), WithDenominator(den), Normalised(false)); err != nil {
		t.Fatalf("DrawRatio() error = %v", err)
	}
	c := s.ActiveCanvas()
	if got := c.TextPad(); got != canvas.RatioPad {
		t.Errorf("TextPad() = %q, want %q", got, canvas.RatioPad)
	}
	if got := c.Pad(canvas.MainPad).Rect(); got.Visible() {
		t.Errorf("main pad rect = %v, want hidden", got)
	}
}

func TestDrawCorrected(t *testing.T) {
	s, _ := newSession(t)

	total, _ := s.Draw("pt", WithBinning("(2, 0, 10)"))
	pass, _ := s.Draw("pt", WithBinning("(2, 0, 10)"), WithSelection("pt > 2"))
	eff, err := ratio.New(pass, total, false)
	if err != nil {
		t.Fatal(err)
	}

	h, err := s.DrawCorrected("pt", eff, WithSelection("pt > 2"))
	if err != nil {
		t.Fatalf("DrawCorrected() error = %v", err)
	}
	if got, want := h.XBinning().Edges(), eff.BinEdgesX(); !slices.Equal(got, want) {
		t.Errorf("edges = %v, want %v", got, want)
	}
	// 3 events at efficiency 3/5, 5 at 1
	if got := h.Content(0); got < 4.99 || got > 5.01 {
		t.Errorf("Content(0) = %v, want 5", got)
	}
	if got := h.Content(1); got != 5 {
		t.Errorf("Content(1) = %v, want 5", got)
	}
	if h.Name() != "h_pt_0" {
		t.Errorf("Name() = %q, want h_pt_0", h.Name())
	}
}

func TestDrawCorrectedSkipsZeroEfficiency(t *testing.T) {
	s, _ := newSession(t)

	total, _ := s.Draw("pt", WithBinning("(2, 0, 10)"))
	pass, _ := s.Draw("pt", WithBinning("(2, 0, 10)"), WithSelection("pt > 5"))
	eff, _ := ratio.New(pass, total, false)

	h, err := s.DrawCorrected("pt", eff, WithSelection("eta > 0"))
	if err != nil {
		t.Fatalf("DrawCorrected() error = %v", err)
	}
	if got := h.Content(0); got != 0 {
		t.Errorf("Content(0) = %v, want 0", got)
	}
	// pt 5.5, 7.5, 9.5 pass eta > 0 with efficiency 1
	if got := h.Entries(); got != 3 {
		t.Errorf("Entries() = %d, want 3", got)
	}
}

// =============================================================================
// Decoration
// =============================================================================

func TestDrawCorrectedFailureRegistersNothing(t *testing.T) {
	s, _ := newSession(t)

	total, _ := s.Draw("pt", WithBinning("(2, 0, 10)"))
	pass, _ := s.Draw("pt", WithBinning("(2, 0, 10)"), WithSelection("pt > 2"))
	eff, _ := ratio.New(pass, total, false)
	before := len(s.Registry().Objects())

	if _, err := s.DrawCorrected("pt", eff, WithSelection("nosuch > 0")); err == nil {
		t.Fatal("DrawCorrected() error = nil")
	}
	if got := len(s.Registry().Objects()); got != before {
		t.Errorf("registered objects = %d, want %d", got, before)
	}
	h, err := s.DrawCorrected("pt", eff)
	if err != nil {
		t.Fatalf("DrawCorrected() error = %v", err)
	}
	if h.Name() != "h_pt_0" {
		t.Errorf("Name() = %q, want h_pt_0", h.Name())
	}
}

func TestLegendRecoloursRatio(t *testing.T) {
	s, _ := newSession(t)
	_, _ = s.Draw("pt", WithBinning("(5, 0, 10)"))
	num, _ := s.Draw("pt", WithBinning("(5, 0, 10)"))
	a, err := s.DrawRatio()
	if err != nil {
		t.Fatal(err)
	}

	if _, err := s.Legend([]string{"all", "again"}); err != nil {
		t.Fatalf("Legend() error = %v", err)
	}
	if num.LineColor() != canvas.DefaultPalette[1] {
		t.Errorf("numerator colour = %v, want %v", num.LineColor(), canvas.DefaultPalette[1])
	}
	if got := a.Hist().LineColor(); got != num.LineColor() {
		t.Errorf("ratio colour = %v, want %v", got, num.LineColor())
	}
}

func TestNormalise(t *testing.T) {
	s, _ := newSession(t)
	h, _ := s.Draw("pt")

	if err := s.Normalise(); err != nil {
		t.Fatalf("Normalise() error = %v", err)
	}
	if got := h.Integral(); got < 0.999 || got > 1.001 {
		t.Errorf("Integral() = %v, want 1", got)
	}
	if got := s.ActiveCanvas().Texts().YLabel; got != NormalisedLabel {
		t.Errorf("YLabel = %q, want %q", got, NormalisedLabel)
	}
}

func TestPutTextsWithoutCanvas(t *testing.T) {
	s, _ := newSession(t)
	if err := s.PutTexts(canvas.Title("x")); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("PutTexts() error = %v, want %v", err, errors.ErrCodeNotFound)
	}
}

func TestTH1F(t *testing.T) {
	tests := []struct {
		name    string
		binning string
		bins    int
		wantErr bool
	}{
		{"fixed", "(4, 0, 2)", 4, false},
		{"edges", "[0, 1, 5]", 2, false},
		{"auto range", "(4)", 0, true},
		{"empty", "", 0, true},
		{"garbage", "4 bins", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newSession(t)
			h, err := s.TH1F("h", tt.binning)
			if tt.wantErr {
				if !errors.Is(err, errors.ErrCodeInvalidBinning) {
					t.Errorf("TH1F(%q) error = %v, want %v", tt.binning, err, errors.ErrCodeInvalidBinning)
				}
				return
			}
			if err != nil {
				t.Fatalf("TH1F(%q) error = %v", tt.binning, err)
			}
			if got := h.XBinning().NBins(); got != tt.bins {
				t.Errorf("NBins() = %d, want %d", got, tt.bins)
			}
		})
	}
}

// =============================================================================
// Lifecycle
// =============================================================================

func TestCleanupCollectsObjects(t *testing.T) {
	s, tk := newSession(t)
	h, _ := s.Draw("pt")
	tk.CloseWindow(s.ActiveCanvas().Name())

	rep := s.Cleanup(true)
	if rep.Canvases != 1 || rep.Objects != 1 {
		t.Errorf("Cleanup() = %+v, want 1 canvas, 1 object", rep)
	}
	if !h.Released() {
		t.Error("orphaned histogram not released")
	}
	if s.ActiveCanvas() != nil {
		t.Error("ActiveCanvas() still set after its window closed")
	}
}

func TestSaveAs(t *testing.T) {
	s, _ := newSession(t)
	if _, err := s.Draw("pt"); err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()

	paths, err := s.SaveAs(context.Background(), filepath.Join(dir, "plot.svg"))
	if err != nil {
		t.Fatalf("SaveAs() error = %v", err)
	}
	if len(paths) != 1 {
		t.Fatalf("SaveAs() = %v, want one file", paths)
	}
	if _, err := os.Stat(paths[0]); err != nil {
		t.Errorf("Stat(%s) error = %v", paths[0], err)
	}
}

func TestSaveAsFormats(t *testing.T) {
	tk := toolkit.NewMemory()
	s := New(tk, WithExportOptions(render.WithFormats(render.FormatSVG)))
	defer s.Close()
	s.AddSource(events(t))
	_, _ = s.Draw("pt")

	paths, err := s.SaveAs(context.Background(), filepath.Join(t.TempDir(), "plot"))
	if err != nil {
		t.Fatalf("SaveAs() error = %v", err)
	}
	if len(paths) != 1 || filepath.Ext(paths[0]) != ".svg" {
		t.Errorf("SaveAs() = %v, want one .svg", paths)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.csv")
	if err := os.WriteFile(path, []byte("pt,eta\n1,0.5\n2,-0.5\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	s := New(toolkit.NewMemory())
	defer s.Close()

	src, err := s.Load(context.Background(), path, "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	fields, err := s.Fields(nil)
	if err != nil {
		t.Fatalf("Fields() error = %v", err)
	}
	if !slices.Equal(fields, []string{"pt", "eta"}) {
		t.Errorf("Fields() = %v, want [pt eta]", fields)
	}
	if src.Len() != 2 {
		t.Errorf("Len() = %d, want 2", src.Len())
	}
}
