// Package history persists the ordered log of submitted entries, one file per
// named context under the cache root.
//
// A store is exclusively owned by one line editor session. There is no
// locking: two sessions on the same context will overwrite each other's file.
package history

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	safetemp "github.com/hashicorp/go-safetemp"

	"github.com/flowave-io/exprinput/pkg/log"
)

// Options selects where a store lives. An empty Context means session-only
// history that never touches disk.
type Options struct {
	CacheRoot string
	Component string
	Context   string
}

// Path returns <CacheRoot>/<Component>/<Context>, or "" without a context.
func Path(opts Options) string {
	if opts.Context == "" {
		return ""
	}
	return filepath.Join(opts.CacheRoot, opts.Component, opts.Context)
}

// Store binds the live log to its backing file for the duration of a session.
type Store struct {
	path string
	log  *Log
}

// Open resolves the store for opts and loads the backing file, if any, into
// live. A missing file yields an empty log. An unreadable or corrupt file is
// logged and also yields an empty log; only directory creation failures are
// returned.
func Open(opts Options, live *Log) (*Store, error) {
	s := &Store{log: live}
	if opts.Context == "" {
		return s, nil
	}
	if err := validateContext(opts.Context); err != nil {
		return nil, err
	}
	dir := filepath.Join(opts.CacheRoot, opts.Component)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}
	s.path = Path(opts)
	entries, err := readEntries(s.path)
	if err != nil {
		log.Warn("history", s.path, "unreadable, starting empty:", err)
		entries = nil
	}
	live.Replace(entries)
	return s, nil
}

// Path returns the backing file, "" for session-only stores.
func (s *Store) Path() string { return s.path }

// Close rewrites the backing file with the whole live log. Session-only
// stores are a no-op.
func (s *Store) Close() error {
	if s.path == "" {
		return nil
	}
	var b strings.Builder
	for _, e := range s.log.Entries() {
		e = compactEntry(e)
		if e == "" {
			continue
		}
		b.WriteString(e)
		b.WriteByte('\n')
	}
	if err := writeAtomic(s.path, []byte(b.String())); err != nil {
		return fmt.Errorf("write history %s: %w", s.path, err)
	}
	return nil
}

// Load returns the persisted entries for opts without binding a session.
// A missing file is not an error.
func Load(opts Options) ([]string, error) {
	p := Path(opts)
	if p == "" {
		return nil, nil
	}
	if err := validateContext(opts.Context); err != nil {
		return nil, err
	}
	return readEntries(p)
}

func readEntries(path string) ([]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	if !utf8.Valid(b) {
		return nil, errors.New("history file is not valid UTF-8")
	}
	var out []string
	for _, ln := range strings.Split(string(b), "\n") {
		ln = strings.TrimRight(ln, "\r")
		if ln == "" {
			continue
		}
		out = append(out, ln)
	}
	return out, nil
}

// writeAtomic writes into a fresh sibling temp dir and renames over path.
// Readers see either the old file or the new one.
func writeAtomic(path string, data []byte) error {
	tmp, closer, err := safetemp.Dir(filepath.Dir(path), "."+filepath.Base(path)+"-")
	if err != nil {
		return err
	}
	defer closer.Close()
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func validateContext(name string) error {
	if name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("invalid history context name %q", name)
	}
	return nil
}
