package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	multierror "github.com/hashicorp/go-multierror"
	cty "github.com/zclconf/go-cty/cty"

	"github.com/flowave-io/exprinput/internal/expr"
	"github.com/flowave-io/exprinput/internal/history"
	"github.com/flowave-io/exprinput/internal/lineedit"
	"github.com/flowave-io/exprinput/pkg/log"
)

// detailRequest asks for the full trace of the last failure instead of
// being evaluated.
const detailRequest = "?"

// Screen is the surface the loop draws on.
type Screen interface {
	lineedit.Screen
	Bold(text string) string
}

// Evaluator turns one submitted line into a value.
type Evaluator interface {
	Evaluate(src string) (cty.Value, error)
}

type shortcut struct {
	label, help string
}

var shortcuts = []shortcut{
	{"cmd(<command>)   :\t", "Execute a shell-command"},
	{"inp(<filename>)  :\t", "Read file"},
	{"j  (<list>)      :\t", "Join list"},
	{"r  (start, stop) :\t", "Character range"},
}

// Loop prompts for an expression until one evaluates or the user cancels.
// A failed attempt is offered again as the next prefill; "?" shows the
// full trace of the last failure.
type Loop struct {
	Facility *lineedit.Facility
	Screen   Screen
	Eval     Evaluator
	Out      io.Writer
	History  history.Options

	Prompt      string
	InitialText string
}

// attempt is what one prompt carries forward to the next.
type attempt struct {
	text    string
	failure *expr.Failure
	// message is shown once after the banner.
	message string
}

// Run returns the evaluated value and true, or false if the user cancelled.
// Evaluation failures never end the loop; only errors opening or closing a
// session do.
func (l *Loop) Run() (cty.Value, bool, error) {
	a := attempt{text: l.InitialText}
	for {
		line, err := l.read(&a)
		if errors.Is(err, lineedit.ErrCancelled) {
			log.Debug("input cancelled")
			return cty.NilVal, false, nil
		}
		if err != nil {
			return cty.NilVal, false, err
		}

		if line == detailRequest {
			if a.failure != nil {
				a.message = a.failure.Trace
			}
			continue
		}

		v, err := l.Eval.Evaluate(line)
		if err == nil {
			return v, true, nil
		}
		a.failure = asFailure(err)
		a.text = line
		log.Debug("evaluation failed:", a.failure.Summary)
	}
}

// read runs one session scope: banner, failure, pending message, then a
// single read prefilled with the current text.
func (l *Loop) read(a *attempt) (line string, err error) {
	s, err := lineedit.Open(l.Facility, l.Screen, l.History)
	if err != nil {
		return "", err
	}
	defer func() {
		cerr := s.Close()
		if cerr == nil {
			return
		}
		if err == nil || errors.Is(err, lineedit.ErrCancelled) {
			err = cerr
			return
		}
		err = multierror.Append(err, cerr)
	}()

	if err := l.render(a); err != nil {
		return "", err
	}
	return s.ReadLine(l.Prompt, a.text)
}

func (l *Loop) render(a *attempt) error {
	var b strings.Builder
	b.WriteString("Insert raw expressions to insert as text\n")
	b.WriteString("You can use the following shortcuts:\n")
	for _, sc := range shortcuts {
		fmt.Fprintf(&b, "%s %s\n", l.Screen.Bold(sc.label), sc.help)
	}
	b.WriteString("\n")
	if a.failure != nil {
		b.WriteString(l.Screen.Bold(a.failure.Summary))
		b.WriteString("\n")
	}
	b.WriteString(a.message)
	b.WriteString("\n")
	a.message = ""

	_, err := io.WriteString(l.Out, b.String())
	return err
}

func asFailure(err error) *expr.Failure {
	var f *expr.Failure
	if errors.As(err, &f) {
		return f
	}
	return &expr.Failure{Summary: err.Error(), Trace: err.Error() + "\n", Cause: err}
}
