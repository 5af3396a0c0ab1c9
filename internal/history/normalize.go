package history

import "strings"

// compactEntry folds a possibly multi-line entry into a single line so the
// one-entry-per-line file format holds:
// - Converts CRLF/CR to LF
// - Trims leading/trailing spaces on each line
// - Drops fully empty lines
// - Joins lines with a single space
// Single-line entries are returned unchanged, inner spacing included.
func compactEntry(s string) string {
	if !strings.ContainsAny(s, "\r\n") {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	parts := strings.Split(s, "\n")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}
