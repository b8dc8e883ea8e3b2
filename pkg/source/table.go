package source

import (
	"math"
	"slices"
	"strings"

	"github.com/aclements/go-moremath/stats"

	"github.com/nchiapol/lookat/pkg/errors"
	"github.com/nchiapol/lookat/pkg/object"
)

// Table is an in-memory source with one float64 column per field.
// Missing values are NaN and never fall into a bin.
type Table struct {
	name   string
	fields []string
	index  map[string]int
	rows   [][]float64
}

// NewTable returns an empty table with the given fields.
func NewTable(name string, fields []string) (*Table, error) {
	t := &Table{name: name, fields: slices.Clone(fields), index: make(map[string]int, len(fields))}
	for i, f := range fields {
		if f == "" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "table %s: field %d has no name", name, i)
		}
		if _, dup := t.index[f]; dup {
			return nil, errors.New(errors.ErrCodeInvalidInput, "table %s: duplicate field %q", name, f)
		}
		t.index[f] = i
	}
	return t, nil
}

// Append adds a row; it must have one value per field.
func (t *Table) Append(row ...float64) error {
	if len(row) != len(t.fields) {
		return errors.New(errors.ErrCodeInvalidInput, "table %s: row has %d values, want %d", t.name, len(row), len(t.fields))
	}
	t.rows = append(t.rows, slices.Clone(row))
	return nil
}

func (t *Table) Name() string     { return t.name }
func (t *Table) Fields() []string { return slices.Clone(t.fields) }
func (t *Table) Len() int         { return len(t.rows) }

// Event returns row i.
func (t *Table) Event(i int) Event { return row{t: t, vals: t.rows[i]} }

type row struct {
	t    *Table
	vals []float64
}

func (r row) Value(field string) (float64, error) {
	i, ok := r.t.index[field]
	if !ok {
		return 0, errors.New(errors.ErrCodeFieldNotFound, "%s has no field %q", r.t.name, field)
	}
	return r.vals[i], nil
}

// fill is the per-event result of evaluating a fill request.
type fill struct {
	x, y, w float64
}

func (t *Table) compileAll(expr, weight string) (parts []*Expr, wexpr *Expr, err error) {
	srcs := strings.Split(expr, ":")
	if len(srcs) > 2 {
		return nil, nil, errors.New(errors.ErrCodeUnsupported, "only 1-D and 2-D histograms are supported, got %q", expr)
	}
	for _, s := range srcs {
		e, err := Compile(strings.TrimSpace(s))
		if err != nil {
			return nil, nil, err
		}
		parts = append(parts, e)
	}
	if strings.TrimSpace(weight) != "" {
		if wexpr, err = Compile(weight); err != nil {
			return nil, nil, err
		}
	}
	return parts, wexpr, nil
}

// collect evaluates the request over all rows, dropping events with zero
// weight. For "y:x" the first part is y.
func (t *Table) collect(parts []*Expr, wexpr *Expr) ([]fill, error) {
	var out []fill
	for i := range t.rows {
		evt := t.Event(i)
		f := fill{w: 1}
		if wexpr != nil {
			w, err := wexpr.Eval(evt)
			if err != nil {
				return nil, err
			}
			if w == 0 {
				continue
			}
			f.w = w
		}
		x, err := parts[len(parts)-1].Eval(evt)
		if err != nil {
			return nil, err
		}
		f.x = x
		if len(parts) == 2 {
			if f.y, err = parts[0].Eval(evt); err != nil {
				return nil, err
			}
		}
		out = append(out, f)
	}
	return out, nil
}

// Fill implements [Source].
func (t *Table) Fill(expr, weight, output string, bins object.BinSpec) (*object.Hist, error) {
	parts, wexpr, err := t.compileAll(expr, weight)
	if err != nil {
		return nil, err
	}
	fills, err := t.collect(parts, wexpr)
	if err != nil {
		return nil, err
	}
	xs := make([]float64, len(fills))
	ys := make([]float64, len(fills))
	for i, f := range fills {
		xs[i], ys[i] = f.x, f.y
	}

	title := expr
	if weight != "" {
		title += " {" + weight + "}"
	}
	xb, err := bins.Binning(xs)
	if err != nil {
		return nil, err
	}
	var h *object.Hist
	if len(parts) == 1 {
		h, err = object.NewH1(output, title, xb)
	} else {
		var yb object.Binning
		if yb, err = (object.BinSpec{N: bins.N}).Binning(ys); err != nil {
			return nil, err
		}
		h, err = object.NewH2(output, title, xb, yb)
	}
	if err != nil {
		return nil, err
	}
	apply(h, fills)
	h.SetVarInfo(expr)
	return h, nil
}

func apply(h *object.Hist, fills []fill) {
	for _, f := range fills {
		if h.Dim() == 2 {
			h.Fill2(f.x, f.y, f.w)
		} else {
			h.Fill(f.x, f.w)
		}
	}
}

// FillInto implements [Source].
func (t *Table) FillInto(h *object.Hist, expr, weight string) error {
	if err := h.CheckLive(); err != nil {
		return err
	}
	parts, wexpr, err := t.compileAll(expr, weight)
	if err != nil {
		return err
	}
	if len(parts) != h.Dim() {
		return errors.New(errors.ErrCodeInvalidInput, "cannot fill %d-D expression %q into %d-D histogram %s", len(parts), expr, h.Dim(), h.Name())
	}
	fills, err := t.collect(parts, wexpr)
	if err != nil {
		return err
	}
	apply(h, fills)
	return nil
}

// Range implements [Source].
func (t *Table) Range(expr string) (lo, hi float64, err error) {
	e, err := Compile(expr)
	if err != nil {
		return 0, 0, err
	}
	var vals []float64
	for i := range t.rows {
		v, err := e.Eval(t.Event(i))
		if err != nil {
			return 0, 0, err
		}
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			vals = append(vals, v)
		}
	}
	if len(vals) == 0 {
		return 0, 0, errors.New(errors.ErrCodeNotFound, "%q has no finite values in %s", expr, t.name)
	}
	lo, hi = stats.Bounds(vals)
	return lo, hi, nil
}

var _ Source = (*Table)(nil)
