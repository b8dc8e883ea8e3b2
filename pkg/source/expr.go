package source

import (
	"math"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"
	"github.com/expr-lang/expr/vm"

	"github.com/nchiapol/lookat/pkg/errors"
)

// Expr is a compiled numeric expression over event fields, in expr-lang
// syntax: arithmetic, comparisons, && || !, the ternary ?:, parentheses,
// the builtins abs, min and max, and the functions in [FunctionNames].
// Fields are float64. A boolean result counts as 1 or 0, so the same
// expression serves as a selection or a weight ("x > 2 ? w : 0"). Dotted
// names such as "mu.pt" are one field.
type Expr struct {
	src     string
	program *vm.Program
	fields  []string
}

var functions = map[string]any{
	"sqrt":  math.Sqrt,
	"exp":   math.Exp,
	"log":   math.Log,
	"log10": math.Log10,
	"sin":   math.Sin,
	"cos":   math.Cos,
	"tan":   math.Tan,
	"atan2": math.Atan2,
	"pow":   math.Pow,
}

// FunctionNames lists the math functions an expression may call besides
// the expr-lang builtins.
func FunctionNames() []string {
	names := make([]string, 0, len(functions))
	for name := range functions {
		names = append(names, name)
	}
	return names
}

// Compile parses and type-checks src.
func Compile(src string) (*Expr, error) {
	tree, err := parser.Parse(src)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidExpression, err, "parse %q", src)
	}
	fc := fieldCollector{absorbed: map[ast.Node]bool{}}
	ast.Walk(&tree.Node, &fc)
	e := &Expr{src: src, fields: fc.names()}

	env, _ := e.bind(func(string) (float64, error) { return 0, nil })
	if e.program, err = expr.Compile(src, expr.Env(env)); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidExpression, err, "compile %q", src)
	}
	return e, nil
}

// String returns the source text.
func (e *Expr) String() string { return e.src }

// Fields returns the field names referenced, in order of first use.
func (e *Expr) Fields() []string { return append([]string(nil), e.fields...) }

// bind builds the environment, reading each field through value. Dotted
// fields become nested maps so member access resolves them.
func (e *Expr) bind(value func(string) (float64, error)) (map[string]any, error) {
	env := make(map[string]any, len(functions)+len(e.fields))
	for name, fn := range functions {
		env[name] = fn
	}
	for _, f := range e.fields {
		v, err := value(f)
		if err != nil {
			return nil, err
		}
		parts := strings.Split(f, ".")
		m := env
		for _, p := range parts[:len(parts)-1] {
			sub, ok := m[p].(map[string]any)
			if !ok {
				sub = map[string]any{}
				m[p] = sub
			}
			m = sub
		}
		m[parts[len(parts)-1]] = v
	}
	return env, nil
}

// Eval evaluates the expression for evt.
func (e *Expr) Eval(evt Event) (float64, error) {
	env, err := e.bind(evt.Value)
	if err != nil {
		return 0, err
	}
	out, err := expr.Run(e.program, env)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidExpression, err, "evaluate %q", e.src)
	}
	switch v := out.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	}
	return 0, errors.New(errors.ErrCodeInvalidExpression, "%q: result %v is not a number", e.src, out)
}

// fieldCollector gathers field references. ast.Walk visits children
// first, so identifiers that turn out to be callees or the root of a
// member chain are marked absorbed when their parent is visited.
type fieldCollector struct {
	refs     []fieldRef
	absorbed map[ast.Node]bool
}

type fieldRef struct {
	node ast.Node
	name string
}

func (c *fieldCollector) Visit(node *ast.Node) {
	switch n := (*node).(type) {
	case *ast.IdentifierNode:
		c.refs = append(c.refs, fieldRef{n, n.Value})
	case *ast.MemberNode:
		if name, ok := dotted(n); ok {
			c.absorbed[n.Node] = true
			c.refs = append(c.refs, fieldRef{n, name})
		}
	case *ast.CallNode:
		c.absorbed[n.Callee] = true
	}
}

func (c *fieldCollector) names() []string {
	var out []string
	for _, r := range c.refs {
		if c.absorbed[r.node] || (!strings.Contains(r.name, ".") && isFunction(r.name)) {
			continue
		}
		if !slices.Contains(out, r.name) {
			out = append(out, r.name)
		}
	}
	return out
}

func isFunction(name string) bool {
	_, ok := functions[name]
	return ok
}

// dotted renders a chain like mu.pt; computed or optional access is not a
// field.
func dotted(n ast.Node) (string, bool) {
	switch n := n.(type) {
	case *ast.IdentifierNode:
		return n.Value, true
	case *ast.MemberNode:
		prop, ok := n.Property.(*ast.StringNode)
		if !ok || n.Optional {
			return "", false
		}
		base, ok := dotted(n.Node)
		if !ok {
			return "", false
		}
		return base + "." + prop.Value, true
	}
	return "", false
}

var compiled sync.Map // string -> *Expr

// Evaluate compiles src, reusing earlier compilations, and evaluates it.
func Evaluate(src string, evt Event) (float64, error) {
	src = strings.TrimSpace(src)
	if v, ok := compiled.Load(src); ok {
		return v.(*Expr).Eval(evt)
	}
	e, err := Compile(src)
	if err != nil {
		return 0, err
	}
	compiled.Store(src, e)
	return e.Eval(evt)
}

// Sel returns a selection keeping lo < v < hi, with two decimals so that
// it also reads well as a title.
func Sel(v string, lo, hi float64) string {
	return strconv.FormatFloat(lo, 'f', 2, 64) + " < " + v + " && " + v + " < " + strconv.FormatFloat(hi, 'f', 2, 64)
}
