package lineedit

import (
	"sync"

	"github.com/chzyer/readline"
)

// Backend is the raw line-editing primitive a Facility drives.
type Backend interface {
	// ReadLine shows prompt with the buffer seeded with prefill and returns
	// the submitted line. Interrupt and end-of-input surface as
	// readline.ErrInterrupt and io.EOF.
	ReadLine(prompt, prefill string) (string, error)
	SetCompleter(c readline.AutoCompleter)
	SetHistory(entries []string)
	Close() error
}

// historyLimit caps what readline keeps for up-arrow recall; the store keeps
// everything.
const historyLimit = 10000

// Readline is the terminal Backend.
type Readline struct {
	rl   *readline.Instance
	slot *completerSlot
}

// NewReadline opens the terminal for line editing. Its history is managed
// through SetHistory only; submitted lines are not recorded automatically.
func NewReadline() (*Readline, error) {
	slot := &completerSlot{}
	rl, err := readline.NewEx(&readline.Config{
		InterruptPrompt:        "^C",
		AutoComplete:           slot,
		DisableAutoSaveHistory: true,
		HistoryLimit:           historyLimit,
	})
	if err != nil {
		return nil, err
	}
	return &Readline{rl: rl, slot: slot}, nil
}

func (r *Readline) ReadLine(prompt, prefill string) (string, error) {
	r.rl.SetPrompt(prompt)
	return r.rl.ReadlineWithDefault(prefill)
}

func (r *Readline) SetCompleter(c readline.AutoCompleter) { r.slot.set(c) }

func (r *Readline) SetHistory(entries []string) {
	r.rl.ResetHistory()
	for _, e := range entries {
		_ = r.rl.SaveHistory(e)
	}
}

func (r *Readline) Close() error { return r.rl.Close() }

// completerSlot lets the completer change between reads without rebuilding
// the readline instance.
type completerSlot struct {
	mu sync.Mutex
	c  readline.AutoCompleter
}

func (s *completerSlot) set(c readline.AutoCompleter) {
	s.mu.Lock()
	s.c = c
	s.mu.Unlock()
}

func (s *completerSlot) Do(line []rune, pos int) ([][]rune, int) {
	s.mu.Lock()
	c := s.c
	s.mu.Unlock()
	if c == nil {
		return nil, 0
	}
	return c.Do(line, pos)
}
