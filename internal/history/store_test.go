package history

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPath(t *testing.T) {
	if got := Path(Options{CacheRoot: "/c", Component: "exprinput"}); got != "" {
		t.Fatalf("session-only path should be empty, got %q", got)
	}
	want := filepath.Join("/c", "exprinput", "work")
	if got := Path(Options{CacheRoot: "/c", Component: "exprinput", Context: "work"}); got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestStore_RoundTrip(t *testing.T) {
	opts := Options{CacheRoot: t.TempDir(), Component: "exprinput", Context: "rt"}
	live := NewLog()

	s, err := Open(opts, live)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	if live.Len() != 0 {
		t.Fatalf("expected empty log for new context, got %v", live.Entries())
	}
	for _, e := range []string{`"a"`, "1+1", "1+1", `j([72])`} {
		live.Append(e)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}

	reopened := NewLog("stale")
	if _, err := Open(opts, reopened); err != nil {
		t.Fatalf("reopen error: %v", err)
	}
	if diff := cmp.Diff(live.Entries(), reopened.Entries()); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_CloseOverwritesFile(t *testing.T) {
	opts := Options{CacheRoot: t.TempDir(), Component: "exprinput", Context: "ow"}
	if err := os.MkdirAll(filepath.Join(opts.CacheRoot, opts.Component), 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(Path(opts), []byte("one\ntwo\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	live := NewLog()
	s, err := Open(opts, live)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	live.Replace([]string{"three"})
	if err := s.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}
	b, err := os.ReadFile(Path(opts))
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "three\n" {
		t.Fatalf("file not fully replaced: %q", b)
	}
	leftovers, _ := filepath.Glob(filepath.Join(opts.CacheRoot, opts.Component, ".ow-*"))
	if len(leftovers) != 0 {
		t.Fatalf("temp dirs left behind: %v", leftovers)
	}
}

func TestStore_SessionOnlyNeverTouchesDisk(t *testing.T) {
	root := t.TempDir()
	live := NewLog("kept")
	s, err := Open(Options{CacheRoot: root, Component: "exprinput"}, live)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	live.Append("more")
	if err := s.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}
	if diff := cmp.Diff([]string{"kept", "more"}, live.Entries()); diff != "" {
		t.Fatalf("session-only log changed (-want +got):\n%s", diff)
	}
	ents, _ := os.ReadDir(root)
	if len(ents) != 0 {
		t.Fatalf("cache root should stay empty, found %d entries", len(ents))
	}
}

func TestStore_ExistingDirIsNotAnError(t *testing.T) {
	opts := Options{CacheRoot: t.TempDir(), Component: "exprinput", Context: "x"}
	if err := os.MkdirAll(filepath.Join(opts.CacheRoot, opts.Component), 0o700); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(opts, NewLog()); err != nil {
		t.Fatalf("pre-existing dir should be fine: %v", err)
	}
}

func TestStore_DirCreationFailureIsFatal(t *testing.T) {
	root := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(root, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(Options{CacheRoot: root, Component: "exprinput", Context: "x"}, NewLog()); err == nil {
		t.Fatalf("expected error when cache root is a regular file")
	}
}

func TestStore_CorruptFileFailsOpen(t *testing.T) {
	opts := Options{CacheRoot: t.TempDir(), Component: "exprinput", Context: "bad"}
	if err := os.MkdirAll(filepath.Join(opts.CacheRoot, opts.Component), 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(Path(opts), []byte{0xff, 0xfe, '\n'}, 0o600); err != nil {
		t.Fatal(err)
	}
	live := NewLog("previous")
	if _, err := Open(opts, live); err != nil {
		t.Fatalf("corrupt history must not block: %v", err)
	}
	if live.Len() != 0 {
		t.Fatalf("expected empty log, got %v", live.Entries())
	}
}

func TestStore_RejectsPathLikeContext(t *testing.T) {
	for _, name := range []string{"..", "a/b", `a\b`} {
		if _, err := Open(Options{CacheRoot: t.TempDir(), Component: "c", Context: name}, NewLog()); err == nil {
			t.Fatalf("expected error for context %q", name)
		}
	}
}

func TestStore_MultilineEntriesAreCompacted(t *testing.T) {
	opts := Options{CacheRoot: t.TempDir(), Component: "exprinput", Context: "ml"}
	live := NewLog()
	s, err := Open(opts, live)
	if err != nil {
		t.Fatal(err)
	}
	live.Append("[\r\n  1,\n  2\n]")
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	got, err := Load(opts)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if diff := cmp.Diff([]string{"[ 1, 2 ]"}, got); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
}

func TestLog_IgnoresEmptyAndCopies(t *testing.T) {
	l := NewLog("a", "", "b")
	l.Append("")
	snap := l.Entries()
	snap[0] = "mutated"
	if diff := cmp.Diff([]string{"a", "b"}, l.Entries()); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
}
