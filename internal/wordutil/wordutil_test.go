package wordutil

import (
	"strings"
	"testing"

	"mvdan.cc/sh/v3/syntax"
)

func parseWord(t *testing.T, src string) *syntax.Word {
	t.Helper()
	f, err := syntax.NewParser().Parse(strings.NewReader(src), "")
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	if len(f.Stmts) == 0 {
		t.Fatalf("no statements parsed from %q", src)
	}
	call, ok := f.Stmts[0].Cmd.(*syntax.CallExpr)
	if !ok || len(call.Args) == 0 {
		t.Fatalf("expected a call expr with args in %q", src)
	}
	return call.Args[0]
}

func TestResolveStaticLiteral(t *testing.T) {
	w := parseWord(t, "hello")
	val, static := ResolveStatic(w)
	if !static || val != "hello" {
		t.Errorf("got (%q, %v), want (\"hello\", true)", val, static)
	}
}

func TestResolveStaticSingleQuoted(t *testing.T) {
	w := parseWord(t, "'hello world'")
	val, static := ResolveStatic(w)
	if !static || val != "hello world" {
		t.Errorf("got (%q, %v)", val, static)
	}
}

func TestResolveStaticDynamic(t *testing.T) {
	w := parseWord(t, "$HOME")
	_, static := ResolveStatic(w)
	if static {
		t.Error("expected dynamic word to resolve as non-static")
	}
}

func TestIsGlobWord(t *testing.T) {
	if !IsGlobWord(parseWord(t, "*.txt")) {
		t.Error("expected glob detection")
	}
	if IsGlobWord(parseWord(t, "plain")) {
		t.Error("expected no glob detection")
	}
}

func TestHasBraceRange(t *testing.T) {
	if !HasBraceRange(parseWord(t, "{1..5}")) {
		t.Error("expected brace range")
	}
	if HasBraceRange(parseWord(t, "{a,b,c}")) {
		t.Error("expected no brace range for a plain brace list")
	}
}
