package expr

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	cty "github.com/zclconf/go-cty/cty"
)

func evalString(t *testing.T, s *Sandbox, src string) string {
	t.Helper()
	v, err := s.Evaluate(src)
	if err != nil {
		t.Fatalf("Evaluate(%q) error: %v", src, err)
	}
	return Render(v)
}

func TestEvaluateArithmetic(t *testing.T) {
	s := New(Options{})
	cases := map[string]string{
		"1+1":        "2",
		"7/2":        "3.5",
		"7%3":        "1",
		"\"a\"":      "a",
		"[1, \"x\"]": `[1,"x"]`,
		"true":       "true",
	}
	for src, want := range cases {
		if got := evalString(t, s, src); got != want {
			t.Fatalf("%s: got %q want %q", src, got, want)
		}
	}
}

func TestEvaluateDivisionByZero(t *testing.T) {
	s := New(Options{})
	for _, src := range []string{"1/0", "5%0", "2 * (3 / 0)"} {
		_, err := s.Evaluate(src)
		var f *Failure
		if !errors.As(err, &f) {
			t.Fatalf("%s: expected *Failure, got %v", src, err)
		}
		if !strings.Contains(f.Summary, "division by zero") {
			t.Fatalf("%s: summary %q does not mention division by zero", src, f.Summary)
		}
		if !errors.Is(err, ErrDivisionByZero) {
			t.Fatalf("%s: expected ErrDivisionByZero in chain", src)
		}
	}
}

func TestEvaluateParseError(t *testing.T) {
	s := New(Options{})
	_, err := s.Evaluate("1 +")
	var f *Failure
	if !errors.As(err, &f) {
		t.Fatalf("expected *Failure, got %v", err)
	}
	if f.Summary == "" {
		t.Fatalf("empty summary")
	}
	if !strings.Contains(f.Trace, sourceName) {
		t.Fatalf("trace does not name the source:\n%s", f.Trace)
	}
}

func TestEvaluateOnlyHelpers(t *testing.T) {
	s := New(Options{})
	for _, src := range []string{"upper(\"a\")", "foo", "file(\"/etc/passwd\")"} {
		if _, err := s.Evaluate(src); err == nil {
			t.Fatalf("%s: expected failure", src)
		}
	}
	got := s.Functions()
	want := []string{"cmd", "inp", "j", "r"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestJoinAndRange(t *testing.T) {
	s := New(Options{})
	cases := map[string]string{
		"j([72, 101, 108, 108, 111])": "Hello",
		"j(\"a\", 66, [67, \"d\"])":   "aBCd",
		"j([1.5, true])":              "1.5true",
		"j()":                         "",
		"r(65, 67)":                   "ABC",
		"r(67, 65)":                   "",
		"j([r(97, 99), 10])":          "abc\n",
	}
	for src, want := range cases {
		if got := evalString(t, s, src); got != want {
			t.Fatalf("%s: got %q want %q", src, got, want)
		}
	}
}

func TestJoinRejectsBadCodes(t *testing.T) {
	s := New(Options{})
	for _, src := range []string{"j([-1])", "j([1114112])", "j([55296])", "r(0, 2000000)"} {
		if _, err := s.Evaluate(src); err == nil {
			t.Fatalf("%s: expected failure", src)
		}
	}
}

func TestCommand(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("needs a POSIX shell")
	}
	s := New(Options{})
	if got := evalString(t, s, `cmd("echo hi")`); got != "hi\n" {
		t.Fatalf("got %q want %q", got, "hi\n")
	}
	if got := evalString(t, s, `cmd(["sh", "-c", "printf '%s' \"a b\""])`); got != "a b" {
		t.Fatalf("got %q want %q", got, "a b")
	}

	_, err := s.Evaluate(`cmd(["sh", "-c", "echo oops >&2; exit 3"])`)
	var f *Failure
	if !errors.As(err, &f) {
		t.Fatalf("expected *Failure, got %v", err)
	}
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) || exitErr.ExitCode() != 3 {
		t.Fatalf("expected exit status 3 in chain, got %v", err)
	}
	if !strings.Contains(f.Trace, "Caused by:") || !strings.Contains(f.Trace, "oops") {
		t.Fatalf("trace lacks the cause:\n%s", f.Trace)
	}

	if _, err := s.Evaluate(`cmd("")`); err == nil {
		t.Fatalf("empty command should fail")
	}
}

func TestCommandTimeout(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("needs a POSIX sleep")
	}
	s := New(Options{CommandTimeout: 50 * time.Millisecond})
	_, err := s.Evaluate(`cmd("sleep 5")`)
	if err == nil || !strings.Contains(err.Error(), "timed out") {
		t.Fatalf("expected timeout, got %v", err)
	}
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("héllo\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("EXPRINPUT_TEST_DIR", dir)
	s := New(Options{})
	if got := evalString(t, s, `inp("$EXPRINPUT_TEST_DIR/a.txt")`); got != "héllo\n" {
		t.Fatalf("got %q", got)
	}
	if _, err := s.Evaluate(`inp("$EXPRINPUT_TEST_DIR/missing.txt")`); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "bin"), []byte{0xff, 0xfe}, 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Evaluate(`inp("$EXPRINPUT_TEST_DIR/bin")`); err == nil {
		t.Fatalf("invalid UTF-8 should fail")
	}
}

func TestRenderAndTruthy(t *testing.T) {
	cases := []struct {
		v      cty.Value
		render string
		truthy bool
	}{
		{cty.NullVal(cty.String), "", false},
		{cty.StringVal(""), "", false},
		{cty.StringVal("x"), "x", true},
		{cty.NumberIntVal(0), "0", false},
		{cty.NumberFloatVal(0.25), "0.25", true},
		{cty.False, "false", false},
		{cty.True, "true", true},
		{cty.EmptyTupleVal, "[]", false},
		{cty.ListVal([]cty.Value{cty.StringVal("a")}), `["a"]`, true},
		{cty.EmptyObjectVal, "{}", false},
		{cty.ObjectVal(map[string]cty.Value{"k": cty.NumberIntVal(1)}), `{"k":1}`, true},
	}
	for _, c := range cases {
		if got := Render(c.v); got != c.render {
			t.Fatalf("Render(%#v): got %q want %q", c.v, got, c.render)
		}
		if got := Truthy(c.v); got != c.truthy {
			t.Fatalf("Truthy(%#v): got %v want %v", c.v, got, c.truthy)
		}
	}
}
