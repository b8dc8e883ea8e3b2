package canvas

import (
	"math"
	"strings"
	"testing"

	"github.com/nchiapol/lookat/pkg/geom"
	"github.com/nchiapol/lookat/pkg/object"
	"github.com/nchiapol/lookat/pkg/toolkit"
)

func newLayout(t *testing.T) (*toolkit.Memory, *Layout) {
	t.Helper()
	tk := toolkit.NewMemory()
	c, err := New(tk, "c")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return tk, c
}

func newHist(t *testing.T, name string) *object.Hist {
	t.Helper()
	b, _ := object.FixedWidth(4, 0, 4)
	h, err := object.NewH1(name, "", b)
	if err != nil {
		t.Fatal(err)
	}
	return h
}

func almostEqual(a, b float64) bool { return math.Abs(a-b) < 1e-12 }

func TestResizeUpdateEmptyPad(t *testing.T) {
	rects := []geom.Rect{
		geom.Full,
		geom.MainWithRatio,
		geom.Ratio,
		{XMin: 0.1, YMin: 0.2, XMax: 0.3, YMax: 0.25},
	}
	_, c := newLayout(t)
	p := c.Pad(MainPad)
	for _, r := range rects {
		if err := p.Resize(r); err != nil {
			t.Fatalf("Resize(%v) error = %v", r, err)
		}
		if err := p.Update(); err != nil {
			t.Errorf("Update() after Resize(%v) error = %v", r, err)
		}
		if p.Strategy() != nil {
			t.Errorf("Strategy() on empty pad = %v, want nil", p.Strategy())
		}
	}
}

func TestResizeRejectsInvalidRect(t *testing.T) {
	_, c := newLayout(t)
	if err := c.Pad(MainPad).Resize(geom.Rect{XMin: 0, YMin: 0.5, XMax: 1, YMax: 0.5}); err == nil {
		t.Error("Resize() with empty height: want error")
	}
}

func TestActivateRatio(t *testing.T) {
	_, c := newLayout(t)

	created, err := c.ActivateRatio()
	if err != nil || !created {
		t.Fatalf("first ActivateRatio() = %v, %v, want true, nil", created, err)
	}
	if got := c.Pad(MainPad).Rect(); got != (geom.Rect{XMin: 0, YMin: 0.3, XMax: 1, YMax: 1}) {
		t.Errorf("main Rect() = %v, want (0, 0.3, 1, 1)", got)
	}
	if got := c.Pad(RatioPad).Rect(); got != (geom.Rect{XMin: 0, YMin: 0, XMax: 1, YMax: 0.3}) {
		t.Errorf("ratio Rect() = %v, want (0, 0, 1, 0.3)", got)
	}
	if got := c.Pad(RatioPad).YLabel(); got != RatioLabel {
		t.Errorf("ratio YLabel() = %q, want %q", got, RatioLabel)
	}
	if got := c.ActivePad().Name(); got != RatioPad {
		t.Errorf("ActivePad() = %q, want %q", got, RatioPad)
	}

	created, err = c.ActivateRatio()
	if err != nil || created {
		t.Errorf("second ActivateRatio() = %v, %v, want false, nil", created, err)
	}
	if err := c.ActivateMain(); err != nil || c.ActivePad().Name() != MainPad {
		t.Errorf("ActivateMain() did not switch back, err = %v", err)
	}
}

func TestPromoteToFull(t *testing.T) {
	_, c := newLayout(t)
	if _, err := c.ActivateRatio(); err != nil {
		t.Fatal(err)
	}
	if err := c.SetText(Title("t"), XLabel("x"), YLabel("y")); err != nil {
		t.Fatal(err)
	}
	if err := c.PromoteToFull(RatioPad); err != nil {
		t.Fatalf("PromoteToFull() error = %v", err)
	}

	if r := c.Pad(MainPad).Rect(); r.Visible() {
		t.Errorf("main Rect() = %v, want outside the visible canvas", r)
	}
	if got := c.Pad(RatioPad).Rect(); got != geom.Full {
		t.Errorf("ratio Rect() = %v, want %v", got, geom.Full)
	}
	if c.TextPad() != RatioPad {
		t.Errorf("TextPad() = %q, want %q", c.TextPad(), RatioPad)
	}
	want := Texts{Title: "t", XLabel: "x", YLabel: RatioLabel}
	if c.Texts() != want {
		t.Errorf("Texts() = %+v, want %+v", c.Texts(), want)
	}
	if got := c.Pad(RatioPad).Title(); got != "t" {
		t.Errorf("ratio Title() = %q, want %q", got, "t")
	}
}

func TestPromoteToFullUnknownPad(t *testing.T) {
	_, c := newLayout(t)
	if err := c.PromoteToFull("nope"); err == nil {
		t.Error("PromoteToFull(unknown) error = nil, want error")
	}
}

func TestSetTextPartial(t *testing.T) {
	_, c := newLayout(t)
	h := newHist(t, "h")
	if err := c.Pad(MainPad).Draw(h, "Ep"); err != nil {
		t.Fatal(err)
	}
	if err := c.SetText(Title("first"), XLabel("x")); err != nil {
		t.Fatal(err)
	}
	if err := c.SetText(YLabel("y")); err != nil {
		t.Fatal(err)
	}

	want := Texts{Title: "first", XLabel: "x", YLabel: "y"}
	if c.Texts() != want {
		t.Errorf("Texts() = %+v, want %+v", c.Texts(), want)
	}
	if h.Title() != "first" || h.XAxis().Title != "x" || h.YAxis().Title != "y" {
		t.Errorf("histogram texts = %q, %q, %q", h.Title(), h.XAxis().Title, h.YAxis().Title)
	}
}

func TestUpdateScalesWithPadHeight(t *testing.T) {
	_, c := newLayout(t)
	h := newHist(t, "h")
	_ = c.Pad(MainPad).Draw(h, "Ep")
	if _, err := c.ActivateRatio(); err != nil {
		t.Fatal(err)
	}

	hgt := 0.7
	if got, want := h.TitleSize(), 1/hgt*DefaultEm*1.5; !almostEqual(got, want) {
		t.Errorf("TitleSize() = %v, want %v", got, want)
	}
	if got, want := h.XAxis().TitleSize, 1/hgt*DefaultEm; !almostEqual(got, want) {
		t.Errorf("x TitleSize = %v, want %v", got, want)
	}
	if got := h.YAxis().NDivisions; got != 507 {
		t.Errorf("y NDivisions = %d, want 507", got)
	}
	if got := h.YAxis().TitleOffset; !almostEqual(got, 1.2*hgt) {
		t.Errorf("y TitleOffset = %v, want %v", got, 1.2*hgt)
	}
}

func TestSetYRange(t *testing.T) {
	_, c := newLayout(t)
	p := c.Pad(MainPad)
	if err := p.SetYRange(0, 2); err != nil {
		t.Errorf("SetYRange() on empty pad error = %v", err)
	}
	h := newHist(t, "h")
	_ = p.Draw(h, "")
	if err := p.SetYRange(0, 2.1); err != nil {
		t.Fatal(err)
	}
	if y := h.YAxis(); !y.HasRange || y.RangeMin != 0 || y.RangeMax != 2.1 {
		t.Errorf("y range = %+v, want [0, 2.1]", y)
	}
}

func TestHasObjectNamed(t *testing.T) {
	_, c := newLayout(t)
	p := c.Pad(MainPad)
	_ = p.Draw(newHist(t, "a"), "")
	if !p.HasObjectNamed("a") {
		t.Error(`HasObjectNamed("a") = false, want true`)
	}
	if p.HasObjectNamed("b") {
		t.Error(`HasObjectNamed("b") = true, want false`)
	}
}

func TestHosts(t *testing.T) {
	_, c := newLayout(t)
	p := c.Pad(MainPad)
	drawn, twin := newHist(t, "a"), newHist(t, "a")
	_ = p.Draw(drawn, "")
	if !p.Hosts(drawn) {
		t.Error("Hosts(drawn) = false, want true")
	}
	if p.Hosts(twin) {
		t.Error("Hosts() matched a different object with the same name")
	}
	_ = p.Remove(drawn)
	if p.Hosts(drawn) {
		t.Error("Hosts() = true after Remove")
	}
}

func TestClosedCanvas(t *testing.T) {
	tk, c := newLayout(t)
	_ = c.Pad(MainPad).Draw(newHist(t, "h"), "")
	before := c.String()
	if !strings.Contains(before, `"c"`) || !strings.Contains(before, "c_main") {
		t.Errorf("String() = %q", before)
	}

	tk.CloseWindow("c")

	if c.Live() {
		t.Error("Live() = true after window closed")
	}
	if got := c.String(); got != "<canvas.Layout -- empty shell only!>" {
		t.Errorf("String() = %q", got)
	}
	if c.Pad(MainPad).HasObjectNamed("h") {
		t.Error("closed pad still reports hosting h")
	}
	if err := c.SetText(Title("x")); err != nil {
		t.Errorf("SetText() on closed canvas error = %v", err)
	}
	if _, err := c.ActivateRatio(); err != nil {
		t.Errorf("ActivateRatio() on closed canvas error = %v", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close() on closed canvas error = %v", err)
	}
	if _, err := c.AddLegend([]string{"a"}); err != nil {
		t.Errorf("AddLegend() on closed canvas error = %v", err)
	}
}
