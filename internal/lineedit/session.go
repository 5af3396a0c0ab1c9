// Package lineedit runs one line-editor read against a history store, with
// history-prefix completion and the alternate screen held for the duration.
package lineedit

import (
	"errors"
	"io"

	"github.com/chzyer/readline"
	multierror "github.com/hashicorp/go-multierror"

	"github.com/flowave-io/exprinput/internal/completion"
	"github.com/flowave-io/exprinput/internal/history"
)

// ErrCancelled is returned by ReadLine when the user interrupts or closes
// the input instead of submitting a line.
var ErrCancelled = errors.New("input cancelled")

// Screen is the display surface a session takes over.
type Screen interface {
	EnterAlternateScreen() error
	LeaveAlternateScreen() error
}

// Facility is the line-editing facility shared by every session of a
// process. It owns the backend and the live history log.
type Facility struct {
	backend Backend
	log     *history.Log
}

func NewFacility(b Backend) *Facility {
	return &Facility{backend: b, log: history.NewLog()}
}

// Log is the live history. Sessions without a context keep it across reads.
func (f *Facility) Log() *history.Log { return f.log }

// Close releases the backend.
func (f *Facility) Close() error { return f.backend.Close() }

// Session is one acquisition of the facility: alternate screen entered and
// history store open until Close.
type Session struct {
	f      *Facility
	screen Screen
	store  *history.Store
	closed bool
}

// Open enters the alternate screen and opens the history store for opts.
// If the store cannot be opened the screen is restored before returning.
func Open(f *Facility, scr Screen, opts history.Options) (*Session, error) {
	if err := scr.EnterAlternateScreen(); err != nil {
		return nil, err
	}
	st, err := history.Open(opts, f.log)
	if err != nil {
		if lerr := scr.LeaveAlternateScreen(); lerr != nil {
			err = multierror.Append(err, lerr)
		}
		return nil, err
	}
	f.backend.SetHistory(f.log.Entries())
	return &Session{f: f, screen: scr, store: st}, nil
}

// ReadLine reads one line with the buffer prefilled. The submitted text is
// added to the live history if non-empty. Interrupt and end-of-input yield
// ErrCancelled.
func (s *Session) ReadLine(prompt, prefill string) (string, error) {
	b := s.f.backend
	b.SetCompleter(completion.NewAutoCompleter(completion.NewEngine(s.f.log)))
	defer b.SetCompleter(nil)

	line, err := b.ReadLine(prompt, prefill)
	if err != nil {
		if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
			return "", ErrCancelled
		}
		return "", err
	}
	s.f.log.Append(line)
	return line, nil
}

// Close writes the history back and leaves the alternate screen. Both steps
// always run; their errors are combined. Closing twice is a no-op.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	var result *multierror.Error
	if err := s.store.Close(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := s.screen.LeaveAlternateScreen(); err != nil {
		result = multierror.Append(result, err)
	}
	return result.ErrorOrNil()
}
