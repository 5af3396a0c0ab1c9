// Package screen is the output surface the console draws on: the alternate
// screen buffer and bold text.
package screen

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

const (
	enterAltScreen = "\x1b[?1049h\x1b[H"
	leaveAltScreen = "\x1b[?1049l"
)

// Terminal switches out to the alternate screen only when it writes to a
// real terminal; otherwise the escape sequences are skipped.
type Terminal struct {
	out         io.Writer
	interactive bool
	bold        lipgloss.Style
}

// New returns a Terminal on out. The alternate screen is used when out is a
// terminal file.
func New(out io.Writer) *Terminal {
	interactive := false
	if f, ok := out.(*os.File); ok {
		interactive = term.IsTerminal(int(f.Fd()))
	}
	return &Terminal{
		out:         out,
		interactive: interactive,
		bold:        lipgloss.NewStyle().Bold(true).TabWidth(lipgloss.NoTabConversion),
	}
}

func (t *Terminal) Write(p []byte) (int, error) { return t.out.Write(p) }

func (t *Terminal) EnterAlternateScreen() error {
	if !t.interactive {
		return nil
	}
	_, err := io.WriteString(t.out, enterAltScreen)
	return err
}

func (t *Terminal) LeaveAlternateScreen() error {
	if !t.interactive {
		return nil
	}
	_, err := io.WriteString(t.out, leaveAltScreen)
	return err
}

// Bold renders text in bold. Display only; callers never parse the result.
func (t *Terminal) Bold(text string) string {
	return t.bold.Render(text)
}
