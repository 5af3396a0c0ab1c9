package completion

import "github.com/chzyer/readline"

// AutoCompleter exposes an Engine to readline's TAB handling.
type AutoCompleter struct {
	engine *Engine
}

// Ensure AutoCompleter implements readline.AutoCompleter at compile time.
var _ readline.AutoCompleter = (*AutoCompleter)(nil)

func NewAutoCompleter(e *Engine) *AutoCompleter {
	return &AutoCompleter{engine: e}
}

// Do implements readline.AutoCompleter. The query is the whole line up to the
// cursor; each candidate is returned as the suffix after it, and readline
// cycles through them on repeated TAB.
func (a *AutoCompleter) Do(line []rune, pos int) (newLine [][]rune, length int) {
	if pos > len(line) {
		pos = len(line)
	}
	if pos <= 0 {
		return nil, 0
	}
	query := string(line[:pos])
	for state := 0; ; state++ {
		cand, ok := a.engine.Complete(query, state)
		if !ok {
			break
		}
		newLine = append(newLine, []rune(cand[len(query):]))
	}
	return newLine, pos
}
