package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nchiapol/lookat/pkg/errors"
	"github.com/nchiapol/lookat/pkg/source"
)

func writeEvents(t *testing.T) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("pt,eta\n")
	for i := range 20 {
		eta := "-1"
		if i%2 == 1 {
			eta = "1"
		}
		b.WriteString(strings.Join([]string{formatValue(float64(i) + 0.5), eta}, ",") + "\n")
	}
	path := filepath.Join(t.TempDir(), "events.csv")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestCLI(t *testing.T) (*CLI, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	c := New(&buf, LogInfo)
	c.Config.Formats = []string{"svg"}
	return c, &buf
}

func TestRunDraw(t *testing.T) {
	c, logs := newTestCLI(t)
	file := writeEvents(t)
	out := filepath.Join(t.TempDir(), "plot")

	err := c.runDraw(context.Background(), file, []string{"pt", "pt"}, drawOpts{
		selection: "eta > 0",
		binning:   "(4, 0, 20)",
		output:    out,
		ratio:     true,
		legend:    []string{"a", "b"},
		title:     "pt spectrum",
		noCache:   true,
		scale:     1,
	})
	if err != nil {
		t.Fatalf("runDraw() error = %v", err)
	}

	data, err := os.ReadFile(out + ".svg")
	if err != nil {
		t.Fatalf("output not written: %v", err)
	}
	if !bytes.Contains(data, []byte("pt spectrum")) {
		t.Error("svg does not contain the title")
	}
	if !strings.Contains(logs.String(), "Drew 2 histograms") {
		t.Errorf("log = %q, want a progress line", logs.String())
	}
}

func TestRunDrawNothingToDraw(t *testing.T) {
	c, _ := newTestCLI(t)
	err := c.runDraw(context.Background(), writeEvents(t), nil, drawOpts{noCache: true})
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("runDraw() error = %v, want %v", err, errors.ErrCodeInvalidInput)
	}
}

func TestRunDrawMissingFile(t *testing.T) {
	c, _ := newTestCLI(t)
	err := c.runDraw(context.Background(), filepath.Join(t.TempDir(), "none.csv"), []string{"pt"}, drawOpts{noCache: true})
	if err == nil {
		t.Error("runDraw() error = nil, want error")
	}
}

func TestDrawCommandFlagsOverrideConfig(t *testing.T) {
	c, _ := newTestCLI(t)
	cmd := c.drawCommand()
	if err := cmd.ParseFlags([]string{"--bins", "12", "--width", "300", "-f", "png"}); err != nil {
		t.Fatal(err)
	}
	var opts drawOpts
	opts.formats = []string{"png"}
	if err := c.applyDrawFlags(cmd, &opts); err != nil {
		t.Fatalf("applyDrawFlags() error = %v", err)
	}
	if c.Config.Bins != 12 || c.Config.Width != 300 || c.Config.Height != defaultHeight {
		t.Errorf("Config = %+v", c.Config)
	}
	if len(c.Config.Formats) != 1 || c.Config.Formats[0] != "png" {
		t.Errorf("Formats = %v, want [png]", c.Config.Formats)
	}
}

func TestFieldTable(t *testing.T) {
	tbl, err := source.NewTable("t", []string{"pt", "eta"})
	if err != nil {
		t.Fatal(err)
	}
	_ = tbl.Append(1.5, -2)
	_ = tbl.Append(7, 3)

	got := fieldTable(tbl, tbl.Fields())
	for _, want := range []string{"Field", "pt", "eta", "1.5", "-2", "7"} {
		if !strings.Contains(got, want) {
			t.Errorf("fieldTable() missing %q:\n%s", want, got)
		}
	}
}

func TestPlural(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, "0 histograms"},
		{1, "1 histogram"},
		{3, "3 histograms"},
	}
	for _, tt := range tests {
		if got := plural(tt.n, "histogram"); got != tt.want {
			t.Errorf("plural(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
