package expr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/big"
	"os"
	"os/exec"
	"strings"
	"unicode/utf8"

	homedir "github.com/mitchellh/go-homedir"
	cty "github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/gocty"
)

// maxRange is the most characters r() produces.
const maxRange = 1 << 20

// JoinFunc is j(items...): every argument is flattened one level, whole
// numbers become the character with that code and everything else its
// default string form; the pieces are concatenated.
var JoinFunc = function.New(&function.Spec{
	Description: "Join a list into text, turning integers into characters.",
	VarParam: &function.Parameter{
		Name:             "items",
		Type:             cty.DynamicPseudoType,
		AllowNull:        true,
		AllowDynamicType: true,
	},
	Type: function.StaticReturnType(cty.String),
	Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
		s, err := joinValues(args)
		if err != nil {
			return cty.NilVal, err
		}
		return cty.StringVal(s), nil
	},
})

// RangeFunc is r(start, stop): the characters start..stop inclusive.
var RangeFunc = function.New(&function.Spec{
	Description: "Characters from start to stop, inclusive.",
	Params: []function.Parameter{
		{Name: "start", Type: cty.Number},
		{Name: "stop", Type: cty.Number},
	},
	Type: function.StaticReturnType(cty.String),
	Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
		var start, stop int64
		if err := gocty.FromCtyValue(args[0], &start); err != nil {
			return cty.NilVal, function.NewArgError(0, err)
		}
		if err := gocty.FromCtyValue(args[1], &stop); err != nil {
			return cty.NilVal, function.NewArgError(1, err)
		}
		if stop < start {
			return cty.StringVal(""), nil
		}
		if n := stop - start; n < 0 || n >= maxRange {
			return cty.NilVal, fmt.Errorf("range %d..%d is longer than %d characters", start, stop, maxRange)
		}
		codes := make([]cty.Value, 0, stop-start+1)
		for i := start; i <= stop; i++ {
			codes = append(codes, cty.NumberIntVal(i))
		}
		s, err := joinValues([]cty.Value{cty.TupleVal(codes)})
		if err != nil {
			return cty.NilVal, err
		}
		return cty.StringVal(s), nil
	},
})

// ReadFileFunc is inp(path): the whole file as text. Environment variables
// and a leading ~ are expanded first.
var ReadFileFunc = function.New(&function.Spec{
	Description: "Read a file.",
	Params: []function.Parameter{
		{Name: "path", Type: cty.String},
	},
	Type: function.StaticReturnType(cty.String),
	Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
		p, err := homedir.Expand(os.ExpandEnv(args[0].AsString()))
		if err != nil {
			return cty.NilVal, err
		}
		b, err := os.ReadFile(p)
		if err != nil {
			return cty.NilVal, err
		}
		if !utf8.Valid(b) {
			return cty.NilVal, fmt.Errorf("%s is not valid UTF-8 text", p)
		}
		return cty.StringVal(string(b)), nil
	},
})

// commandFunc is cmd(command): run a program without a shell and return its
// standard output. A string command is split on whitespace; a list is used
// as the argument vector.
func (s *Sandbox) commandFunc() function.Function {
	return function.New(&function.Spec{
		Description: "Run a command and return its output.",
		Params: []function.Parameter{
			{Name: "command", Type: cty.DynamicPseudoType},
		},
		Type: function.StaticReturnType(cty.String),
		Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
			argv, err := commandArgs(args[0])
			if err != nil {
				return cty.NilVal, function.NewArgError(0, err)
			}
			out, err := s.runCommand(argv)
			if err != nil {
				return cty.NilVal, err
			}
			return cty.StringVal(out), nil
		},
	})
}

func commandArgs(v cty.Value) ([]string, error) {
	if v.IsNull() {
		return nil, errors.New("command must not be null")
	}
	var argv []string
	ty := v.Type()
	switch {
	case ty == cty.String:
		argv = strings.Fields(v.AsString())
	case ty.IsListType() || ty.IsTupleType():
		for it := v.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			sv, err := convert.Convert(ev, cty.String)
			if err != nil || sv.IsNull() {
				return nil, errors.New("command arguments must be strings")
			}
			argv = append(argv, sv.AsString())
		}
	default:
		return nil, fmt.Errorf("command must be a string or a list of strings, not %s", ty.FriendlyName())
	}
	if len(argv) == 0 || argv[0] == "" {
		return nil, errors.New("command is empty")
	}
	return argv, nil
}

func (s *Sandbox) runCommand(argv []string) (string, error) {
	ctx := context.Background()
	if s.opts.CommandTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.CommandTimeout)
		defer cancel()
	}
	c := exec.CommandContext(ctx, argv[0], argv[1:]...)
	var stderr bytes.Buffer
	c.Stderr = &stderr
	out, err := c.Output()
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("command %s timed out after %s", argv[0], s.opts.CommandTimeout)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			if msg := strings.TrimSpace(stderr.String()); msg != "" {
				return "", fmt.Errorf("command %s exited with status %d: %s: %w", argv[0], exitErr.ExitCode(), msg, err)
			}
			return "", fmt.Errorf("command %s exited with status %d: %w", argv[0], exitErr.ExitCode(), err)
		}
		return "", fmt.Errorf("run %s: %w", argv[0], err)
	}
	if !utf8.Valid(out) {
		return "", fmt.Errorf("output of %s is not valid UTF-8 text", argv[0])
	}
	return string(out), nil
}

func joinValues(args []cty.Value) (string, error) {
	var b strings.Builder
	for _, a := range args {
		for _, el := range flattenOnce(a) {
			s, err := elementText(el)
			if err != nil {
				return "", err
			}
			b.WriteString(s)
		}
	}
	return b.String(), nil
}

func flattenOnce(v cty.Value) []cty.Value {
	if v.IsNull() || !v.IsKnown() {
		return []cty.Value{v}
	}
	ty := v.Type()
	if !ty.IsListType() && !ty.IsTupleType() && !ty.IsSetType() {
		return []cty.Value{v}
	}
	out := make([]cty.Value, 0, v.LengthInt())
	for it := v.ElementIterator(); it.Next(); {
		_, ev := it.Element()
		out = append(out, ev)
	}
	return out
}

func elementText(v cty.Value) (string, error) {
	if v.IsNull() || v.Type() != cty.Number {
		return Render(v), nil
	}
	bf := v.AsBigFloat()
	if !bf.IsInt() {
		return Render(v), nil
	}
	code, acc := bf.Int64()
	if acc != big.Exact || code < 0 || code > utf8.MaxRune || !utf8.ValidRune(rune(code)) {
		return "", fmt.Errorf("%s is not a valid character code", bf.Text('f', -1))
	}
	return string(rune(code)), nil
}
