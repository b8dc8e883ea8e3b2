package cli

import (
	"context"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nchiapol/lookat/pkg/canvas"
	"github.com/nchiapol/lookat/pkg/errors"
	"github.com/nchiapol/lookat/pkg/render"
	"github.com/nchiapol/lookat/pkg/session"
)

// drawOpts holds the command-line flags for the draw command.
type drawOpts struct {
	sheet     string   // worksheet of an XLSX file
	selection string   // selection or weight expression
	binning   string   // "(n)", "(n, lo, hi)" or "[e0, e1, ...]"
	output    string   // output file, or base path for several formats
	formats   []string // overrides the configured formats
	ratio     bool     // divide the last histogram by the one before
	raw       bool     // do not normalise before dividing
	legend    []string // legend labels, in drawing order
	title     string
	xlabel    string
	ylabel    string
	normalise bool // scale histograms to unit integral
	logY      bool
	pick      bool // choose the fields interactively
	noCache   bool
	embedFont bool    // embed the font in SVG output
	scale     float64 // PNG pixel scale
}

// drawCommand creates the draw command.
func (c *CLI) drawCommand() *cobra.Command {
	var opts drawOpts

	cmd := &cobra.Command{
		Use:   "draw [file] [expr...]",
		Short: "Draw histograms of expressions from a data file",
		Long: `Draw fills one histogram per expression and overlays them on one canvas.
An expression is a field name or arithmetic over fields, e.g. "pt*2" or
"sqrt(px*px + py*py)"; "y:x" draws a 2-D histogram. --sel takes a condition
("eta > 0 && pt < 50") or a weight ("eta > 0 ? w : 0").`,
		Example: `  lookat draw events.csv pt --sel "eta > 0" -o pt.png
  lookat draw events.csv pt pt --sel "abs(eta) < 1" --ratio --legend all,central
  lookat draw runs.xlsx --sheet Run2 --pick`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.applyDrawFlags(cmd, &opts); err != nil {
				return err
			}
			return c.runDraw(cmd.Context(), args[0], args[1:], opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.sheet, "sheet", "", "worksheet to read from an XLSX file (default: first)")
	f.StringVarP(&opts.selection, "sel", "s", "", "selection or weight expression")
	f.StringVarP(&opts.binning, "binning", "b", "", `binning: "(n)", "(n, lo, hi)" or "[e0, e1, ...]"`)
	f.StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (default: data file name)")
	f.StringSliceVarP(&opts.formats, "format", "f", nil, "output format(s) for a path without extension: png, svg")
	f.BoolVar(&opts.ratio, "ratio", false, "add a ratio pad dividing the last histogram by the one before")
	f.BoolVar(&opts.raw, "raw-ratio", false, "divide without normalising both histograms first")
	f.StringSliceVar(&opts.legend, "legend", nil, "legend labels (comma-separated)")
	f.StringVar(&opts.title, "title", "", "canvas title")
	f.StringVar(&opts.xlabel, "xlabel", "", "x-axis label (default: the expression)")
	f.StringVar(&opts.ylabel, "ylabel", "", "y-axis label")
	f.BoolVar(&opts.normalise, "normalise", false, "scale histograms to unit integral")
	f.BoolVar(&opts.logY, "logy", false, "logarithmic y axis")
	f.BoolVar(&opts.pick, "pick", false, "pick the fields to draw interactively")
	f.BoolVar(&opts.noCache, "no-cache", false, "do not read or write the table cache")
	f.BoolVar(&opts.embedFont, "embed-font", false, "embed the font in SVG output")
	f.Float64Var(&opts.scale, "scale", 2, "PNG pixel scale")
	f.Int("bins", 0, "default number of bins (overrides config)")
	f.Int("width", 0, "canvas width (overrides config)")
	f.Int("height", 0, "canvas height (overrides config)")

	return cmd
}

// applyDrawFlags lets explicitly set flags override the configuration.
func (c *CLI) applyDrawFlags(cmd *cobra.Command, opts *drawOpts) error {
	f := cmd.Flags()
	for name, dst := range map[string]*int{"bins": &c.Config.Bins, "width": &c.Config.Width, "height": &c.Config.Height} {
		if f.Changed(name) {
			v, err := f.GetInt(name)
			if err != nil {
				return err
			}
			*dst = v
		}
	}
	if len(opts.formats) > 0 {
		c.Config.Formats = opts.formats
	}
	return c.Config.Validate()
}

func (c *CLI) runDraw(ctx context.Context, file string, exprs []string, opts drawOpts) error {
	prog := newProgress(c.Logger)

	exportOpts := []render.ExportOption{render.WithPNGOptions(render.WithScale(opts.scale))}
	if opts.embedFont {
		exportOpts = append(exportOpts, render.WithSVGOptions(render.WithEmbeddedFont()))
	}
	s, err := c.newSession(opts.noCache, session.WithExportOptions(exportOpts...))
	if err != nil {
		return err
	}
	defer s.Close()

	spinner := newSpinnerWithContext(ctx, "Loading "+filepath.Base(file)+"...")
	spinner.Start()
	src, err := s.Load(ctx, file, opts.sheet)
	spinner.Stop()
	if err != nil {
		return err
	}
	c.Logger.Infof("Loaded %s: %d events, %d fields", src.Name(), src.Len(), len(src.Fields()))

	if opts.pick {
		picked, err := pickFields(src.Fields())
		if err != nil {
			return err
		}
		if len(picked) == 0 {
			printInfo("Nothing picked")
			return nil
		}
		exprs = append(exprs, picked...)
	}
	if len(exprs) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "nothing to draw: give at least one expression or --pick")
	}

	if _, err := s.Canvas(""); err != nil {
		return err
	}
	drawOptions := []session.DrawOption{session.WithSelection(opts.selection)}
	if opts.binning != "" {
		drawOptions = append(drawOptions, session.WithBinning(opts.binning))
	}
	for _, expr := range exprs {
		h, err := s.Draw(expr, drawOptions...)
		if err != nil {
			return err
		}
		sum := h.Summary()
		printHistStats(h.Name(), sum.Entries, sum.Mean, sum.RMS)
	}

	if err := c.decorate(s, exprs, opts); err != nil {
		return err
	}

	output := opts.output
	if output == "" {
		output = strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	}
	paths, err := s.SaveAs(ctx, output)
	if err != nil {
		return err
	}

	prog.done("Drew " + plural(len(exprs), "histogram"))
	printSuccess("Saved canvas")
	for _, p := range paths {
		printFile(p)
	}
	return nil
}

// decorate adds everything that goes on top of the histograms, in the
// order an interactive user would: normalisation, ratio, legend, texts.
func (c *CLI) decorate(s *session.Session, exprs []string, opts drawOpts) error {
	if opts.normalise {
		if err := s.Normalise(); err != nil {
			return err
		}
	}
	if opts.logY {
		if err := s.ActiveCanvas().SetLogY(); err != nil {
			return err
		}
	}
	if opts.ratio {
		if len(exprs) < 2 {
			printWarning("--ratio needs two expressions, skipping")
		} else if _, err := s.DrawRatio(session.Normalised(!opts.raw)); err != nil {
			return err
		}
	}
	if len(opts.legend) > 0 {
		if _, err := s.Legend(opts.legend); err != nil {
			return err
		}
	}

	var texts []canvas.TextOption
	if opts.title != "" {
		texts = append(texts, canvas.Title(opts.title))
	} else if opts.selection != "" {
		texts = append(texts, canvas.Title(opts.selection))
	}
	if opts.xlabel != "" {
		texts = append(texts, canvas.XLabel(opts.xlabel))
	}
	if opts.ylabel != "" {
		texts = append(texts, canvas.YLabel(opts.ylabel))
	}
	if len(texts) == 0 {
		return nil
	}
	return s.PutTexts(texts...)
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return strconv.Itoa(n) + " " + word + "s"
}
