package history

import "sync"

// Log is the live, ordered history of submitted entries, oldest first.
// Uniqueness is not enforced.
type Log struct {
	mu      sync.Mutex
	entries []string
}

// NewLog returns a log seeded with entries (empty ones are skipped).
func NewLog(entries ...string) *Log {
	l := &Log{}
	l.Replace(entries)
	return l
}

// Append records entry at the end of the log. Empty entries are ignored.
func (l *Log) Append(entry string) {
	if entry == "" {
		return
	}
	l.mu.Lock()
	l.entries = append(l.entries, entry)
	l.mu.Unlock()
}

// Entries returns a snapshot copy.
func (l *Log) Entries() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.entries))
	copy(out, l.entries)
	return out
}

// Replace discards the current contents and loads entries in order.
func (l *Log) Replace(entries []string) {
	next := make([]string, 0, len(entries))
	for _, e := range entries {
		if e != "" {
			next = append(next, e)
		}
	}
	l.mu.Lock()
	l.entries = next
	l.mu.Unlock()
}

func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
