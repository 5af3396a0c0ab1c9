// Package completion serves prefix completions from the live history log.
package completion

import (
	"sort"
	"strings"

	"github.com/flowave-io/exprinput/internal/history"
)

// Engine answers completion requests for one completion cycle at a time.
// A request with state 0 starts a new cycle; later states index into the
// candidates computed at state 0, even if the log has changed since.
type Engine struct {
	log        *history.Log
	query      string
	candidates []string
}

func NewEngine(log *history.Log) *Engine {
	return &Engine{log: log}
}

// Complete returns the state-th candidate for query, or false when there is
// none. Candidates are the non-empty history entries starting with query,
// shortest first, ties broken case-insensitively. An empty query has no
// candidates.
func (e *Engine) Complete(query string, state int) (string, bool) {
	if state == 0 {
		e.query = query
		e.candidates = matches(e.log.Entries(), query)
	}
	if state < 0 || state >= len(e.candidates) {
		return "", false
	}
	return e.candidates[state], true
}

// Candidates returns a copy of the current cycle's candidates.
func (e *Engine) Candidates() []string {
	out := make([]string, len(e.candidates))
	copy(out, e.candidates)
	return out
}

func matches(entries []string, query string) []string {
	if query == "" {
		return nil
	}
	var out []string
	for _, h := range entries {
		if h != "" && strings.HasPrefix(h, query) {
			out = append(out, h)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if len(out[i]) != len(out[j]) {
			return len(out[i]) < len(out[j])
		}
		return strings.ToLower(out[i]) < strings.ToLower(out[j])
	})
	return out
}
