package deliver

import (
	"fmt"
	"os/exec"
	"strings"
)

const bufferName = "exprinput"

// Tmux resolves tmux pane ids such as "%3".
type Tmux struct {
	// run executes tmux with args and returns trimmed output.
	run func(args ...string) (string, error)
}

func NewTmux() *Tmux {
	return &Tmux{run: runTmux}
}

// Lookup reports the pane as a consumer if tmux still knows it.
func (t *Tmux) Lookup(id string) (Consumer, bool) {
	if id == "" {
		return nil, false
	}
	out, err := t.run("display-message", "-p", "-t", id, "#{pane_id}")
	if err != nil || out == "" {
		return nil, false
	}
	return pane{t: t, id: out}, true
}

type pane struct {
	t  *Tmux
	id string
}

// Paste loads text into a named buffer and pastes it, deleting the buffer.
// Nothing is submitted; the text lands in the pane's input.
func (p pane) Paste(text string) error {
	if _, err := p.t.run("set-buffer", "-b", bufferName, "--", text); err != nil {
		return err
	}
	_, err := p.t.run("paste-buffer", "-d", "-b", bufferName, "-t", p.id)
	return err
}

func runTmux(args ...string) (string, error) {
	cmd := exec.Command("tmux", args...)
	out, err := cmd.CombinedOutput()
	output := strings.TrimSpace(string(out))
	if err != nil {
		return output, fmt.Errorf("tmux %v: %w", args, err)
	}
	return output, nil
}
