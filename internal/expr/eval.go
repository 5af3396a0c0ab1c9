// Package expr evaluates one line of HCL expression syntax with a fixed set of
// helper functions and nothing else: no variables and no other functions.
package expr

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	cty "github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

const sourceName = "<input>"

// Options tune the helpers. A zero CommandTimeout means cmd() waits forever.
type Options struct {
	CommandTimeout time.Duration
}

// Sandbox evaluates expressions against the helper set j, r, cmd and inp.
type Sandbox struct {
	opts  Options
	funcs map[string]function.Function
}

func New(opts Options) *Sandbox {
	s := &Sandbox{opts: opts}
	s.funcs = map[string]function.Function{
		"j":   JoinFunc,
		"r":   RangeFunc,
		"cmd": s.commandFunc(),
		"inp": ReadFileFunc,
	}
	return s
}

// Functions lists the helper names available to expressions.
func (s *Sandbox) Functions() []string {
	return []string{"cmd", "inp", "j", "r"}
}

// Failure is a captured evaluation error. Summary is the short form shown
// above the prompt; Trace is the full rendering shown on request.
type Failure struct {
	Summary     string
	Trace       string
	Diagnostics hcl.Diagnostics
	// Cause is the error returned by a helper, if a helper failed.
	Cause error
}

func (f *Failure) Error() string { return f.Summary }
func (f *Failure) Unwrap() error { return f.Cause }

// Evaluate parses and evaluates src. Any failure, including a division or
// modulo by zero, is returned as a *Failure.
func (s *Sandbox) Evaluate(src string) (cty.Value, error) {
	e, diags := hclsyntax.ParseExpression([]byte(src), sourceName, hcl.Pos{Line: 1, Column: 1, Byte: 0})
	if diags.HasErrors() {
		return cty.NilVal, newFailure(src, diags)
	}
	guardZeroDivisors(e)
	ctx := &hcl.EvalContext{Functions: s.funcs}
	v, diags := e.Value(ctx)
	if diags.HasErrors() {
		return cty.NilVal, newFailure(src, diags)
	}
	if !v.IsWhollyKnown() {
		return cty.NilVal, &Failure{Summary: "expression result is not known"}
	}
	return v, nil
}

var (
	opDivide = &hclsyntax.Operation{Impl: nonZeroDivisor(stdlib.DivideFunc), Type: cty.Number}
	opModulo = &hclsyntax.Operation{Impl: nonZeroDivisor(stdlib.ModuloFunc), Type: cty.Number}
)

// ErrDivisionByZero is reported for x/0 and x%0, which cty would otherwise
// turn into infinity and x respectively.
var ErrDivisionByZero = errors.New("division by zero")

// guardZeroDivisors swaps the division and modulo operators of a freshly
// parsed tree for checked ones, so only divisions actually evaluated fail.
func guardZeroDivisors(e hclsyntax.Expression) {
	hclsyntax.VisitAll(e, func(n hclsyntax.Node) hcl.Diagnostics {
		op, ok := n.(*hclsyntax.BinaryOpExpr)
		if !ok {
			return nil
		}
		switch op.Op {
		case hclsyntax.OpDivide:
			op.Op = opDivide
		case hclsyntax.OpModulo:
			op.Op = opModulo
		}
		return nil
	})
}

func nonZeroDivisor(f function.Function) function.Function {
	return function.New(&function.Spec{
		Params: []function.Parameter{
			{Name: "a", Type: cty.Number},
			{Name: "b", Type: cty.Number},
		},
		Type: function.StaticReturnType(cty.Number),
		Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
			if args[1].Equals(cty.Zero).True() {
				return cty.NilVal, ErrDivisionByZero
			}
			return f.Call(args)
		},
	})
}

func newFailure(src string, diags hcl.Diagnostics) *Failure {
	f := &Failure{Diagnostics: diags}
	for _, d := range diags {
		if d.Severity != hcl.DiagError {
			continue
		}
		if f.Summary == "" {
			f.Summary = d.Summary
			if d.Detail != "" {
				f.Summary += ": " + d.Detail
			}
		}
		if f.Cause != nil {
			continue
		}
		if extra, ok := hcl.DiagnosticExtra[hclsyntax.FunctionCallDiagExtra](d); ok {
			f.Cause = extra.FunctionCallError()
		} else if strings.Contains(d.Detail, ErrDivisionByZero.Error()) {
			// operator failures carry no diagnostic extra
			f.Cause = ErrDivisionByZero
		}
	}
	if f.Summary == "" {
		f.Summary = diags.Error()
	}

	var buf bytes.Buffer
	files := map[string]*hcl.File{sourceName: {Bytes: []byte(src)}}
	wr := hcl.NewDiagnosticTextWriter(&buf, files, 78, false)
	_ = wr.WriteDiagnostics(diags)
	if f.Cause != nil {
		buf.WriteString("Caused by:\n")
		for err := f.Cause; err != nil; err = errors.Unwrap(err) {
			fmt.Fprintf(&buf, "  %T: %v\n", err, err)
		}
	}
	f.Trace = buf.String()
	return f
}
