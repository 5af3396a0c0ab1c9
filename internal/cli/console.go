package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	cty "github.com/zclconf/go-cty/cty"

	"github.com/flowave-io/exprinput/internal/config"
	"github.com/flowave-io/exprinput/internal/deliver"
	"github.com/flowave-io/exprinput/internal/expr"
	"github.com/flowave-io/exprinput/internal/history"
	"github.com/flowave-io/exprinput/internal/lineedit"
	"github.com/flowave-io/exprinput/internal/screen"
	"github.com/flowave-io/exprinput/pkg/log"
)

const stdoutID = "stdout"

// RunConsoleCommand runs the prompt loop and hands the result over: pasted
// into the -target tmux pane, or printed if it is truthy.
func RunConsoleCommand(args []string, version string) error {
	fs := flag.NewFlagSet("console", flag.ContinueOnError)
	fs.SetOutput(os.Stdout)
	fs.Usage = printConsoleHelp
	target := fs.String("target", "", "tmux pane id (e.g. %3) to paste the result into")
	configPath := fs.String("config", config.DefaultConfigPath(), "path to the config file")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if fs.NArg() > 1 {
		return fmt.Errorf("console takes at most one context name, got %d", fs.NArg())
	}

	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		return err
	}
	if msg := config.VersionWarning(cfg.RequiredVersion, version); msg != "" {
		log.Warn(msg)
	}

	restore, err := redirectLog(cfg.LogPath())
	if err != nil {
		log.Warn("unable to open log file:", err)
	} else {
		defer restore()
	}

	runID := uuid.NewString()
	ctxName := fs.Arg(0)
	log.Info("console run", runID, "context", fmt.Sprintf("%q", ctxName))

	backend, err := lineedit.NewReadline()
	if err != nil {
		return fmt.Errorf("open line editor: %w", err)
	}
	facility := lineedit.NewFacility(backend)
	defer facility.Close()

	loop := &Loop{
		Facility: facility,
		Screen:   screen.New(os.Stdout),
		Eval:     expr.New(expr.Options{CommandTimeout: cfg.CommandTimeout}),
		Out:      os.Stdout,
		History: history.Options{
			CacheRoot: cfg.CacheDir,
			Component: cfg.Component,
			Context:   ctxName,
		},
		Prompt:      cfg.Prompt,
		InitialText: cfg.InitialText,
	}
	v, ok, err := loop.Run()
	if err != nil {
		log.Warn("run", runID, "failed:", err)
		return err
	}
	if !ok {
		log.Info("run", runID, "cancelled")
		return nil
	}
	log.Info("run", runID, "produced a", v.Type().FriendlyName())

	if *target != "" {
		return emit(v, deliver.NewTmux(), *target)
	}
	reg := deliver.NewRegistry()
	reg.Register(stdoutID, deliver.Writer{W: os.Stdout})
	return emit(v, reg, stdoutID)
}

// emit hands v to the consumer id. Values are printed to stdout only when
// truthy; a pane target receives any value that renders to non-empty text.
func emit(v cty.Value, r deliver.Resolver, id string) error {
	text := expr.Render(v)
	if id == stdoutID {
		if !expr.Truthy(v) {
			return nil
		}
		text += "\n"
	}
	if text == "" {
		return nil
	}
	return deliver.Deliver(r, id, text)
}

// redirectLog sends log output to path until the returned func is called.
func redirectLog(path string) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, err
	}
	log.SetOutput(f)
	return func() {
		log.SetOutput(os.Stderr)
		_ = f.Close()
	}, nil
}

func printConsoleHelp() {
	printConsoleHelpTo(os.Stdout)
}

func printConsoleHelpTo(w io.Writer) {
	fmt.Fprint(w, `exprinput console: Type an expression, get its value as text

Shows a prompt prefilled with a double quote. The line is evaluated as an
expression; if it fails, the same text is offered again with the error above
it. Enter ? to see the full error. Ctrl-C or Ctrl-D cancels.

Usage:
  exprinput console [-target <pane-id>] [-config <path>] [context]

With a context name, history is kept in <cache_dir>/<component>/<context>.
Without one, history lasts for this run only.

Helpers:
  cmd(<command>)    Execute a command (no shell) and return its output
  inp(<filename>)   Read a file; $VARS and ~ are expanded
  j(<list>)         Join a list, turning integers into characters
  r(start, stop)    Character range, inclusive
`)
}
