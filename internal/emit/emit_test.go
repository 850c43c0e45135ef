package emit

import "testing"

func check(t *testing.T, src, want string) {
	t.Helper()
	got, err := Translate(src)
	if err != nil {
		t.Fatalf("Translate(%q) returned error: %v", src, err)
	}
	if got != want {
		t.Errorf("Translate(%q) = %q, want %q", src, got, want)
	}
}

func checkUnsupported(t *testing.T, src string) {
	t.Helper()
	_, err := Translate(src)
	if err == nil {
		t.Fatalf("Translate(%q) succeeded, want an Error", src)
	}
	e, ok := err.(*Error)
	if !ok {
		t.Fatalf("Translate(%q) returned %T, want *Error", src, err)
	}
	if e.Kind != UnsupportedConstruct {
		t.Errorf("Translate(%q) kind = %v, want UnsupportedConstruct", src, e.Kind)
	}
}

func TestExportAssignment(t *testing.T) {
	check(t, "export FOO=bar", "set -gx FOO bar")
}

func TestExportNoValue(t *testing.T) {
	check(t, "export FOO", "set -gx FOO $FOO")
}

func TestUnsetVariable(t *testing.T) {
	check(t, "unset FOO", "set -e FOO")
}

func TestLocalAssignment(t *testing.T) {
	check(t, "local FOO=bar", "set -l FOO bar")
}

func TestIfStatement(t *testing.T) {
	check(t, "if true; then echo hi; fi", "if true\necho hi\nend")
}

func TestForLoop(t *testing.T) {
	check(t, "for i in 1 2 3; do echo $i; done", "for i in 1 2 3\necho $i\nend")
}

func TestPipe(t *testing.T) {
	check(t, "echo hi | wc -l", "echo hi | wc -l")
}

func TestAndOr(t *testing.T) {
	check(t, "true && false", "true; and false")
	check(t, "true || false", "true; or false")
}

func TestCommandSubstitution(t *testing.T) {
	check(t, "echo $(date)", "echo (date)")
}

func TestArithmeticExpansion(t *testing.T) {
	check(t, "echo $((2+2))", `echo (math "2 + 2")`)
}

func TestBackground(t *testing.T) {
	check(t, "sleep 1 &", "sleep 1 &")
}

func TestNegation(t *testing.T) {
	check(t, "! true", "not true")
}

func TestBraceGroup(t *testing.T) {
	check(t, "{ echo a; echo b; }", "begin\necho a\necho b\nend")
}

func TestFunctionDecl(t *testing.T) {
	check(t, "greet() { echo hi; }", "function greet\necho hi\nend")
}

func TestAssocArrayUnsupported(t *testing.T) {
	checkUnsupported(t, "declare -A m")
}

func TestSelectUnsupported(t *testing.T) {
	checkUnsupported(t, "select x in a b; do echo $x; done")
}

func TestHighFdRedirectUnsupported(t *testing.T) {
	checkUnsupported(t, "exec 3>/tmp/out")
}

func TestSyntaxErrorReported(t *testing.T) {
	_, err := Translate("if true; then")
	if err == nil {
		t.Fatal("expected a syntax error")
	}
	e, ok := err.(*Error)
	if !ok || e.Kind != SyntaxError {
		t.Fatalf("got %#v, want SyntaxError", err)
	}
}

func TestDoubleBracketBareVarEquals(t *testing.T) {
	check(t, "[[ $x == foo ]]", `string match -q -- 'foo' "$x"`)
}

func TestDoubleBracketQuotedVarEquals(t *testing.T) {
	// A quoted "$var" must translate the same as the bare $var form above —
	// this used to produce the malformed fragment "$"$x"".
	check(t, `[[ "$x" == foo ]]`, `string match -q -- 'foo' "$x"`)
}

func TestDoubleBracketNotEquals(t *testing.T) {
	check(t, `[[ "$x" != foo ]]`, `not string match -q -- 'foo' "$x"`)
}

func TestDoubleBracketRegexMatch(t *testing.T) {
	check(t, `[[ $x =~ ^a.*z$ ]]`, `string match -r -q -- '^a.*z$' "$x"`)
}

func TestDoubleBracketNumericCompare(t *testing.T) {
	check(t, "[[ $a -eq $b ]]", "test $a -eq $b")
}

func TestDoubleBracketFileTest(t *testing.T) {
	check(t, "[[ -f $f ]]", "test -f $f")
}

func TestDoubleBracketVarSet(t *testing.T) {
	check(t, "[[ -v FOO ]]", "set -q FOO")
}

func TestDoubleBracketAndOr(t *testing.T) {
	check(t, "[[ -f a && -f b ]]", "begin; test -f a; and test -f b; end")
	check(t, "[[ -f a || -f b ]]", "begin; test -f a; or test -f b; end")
}

func TestCaseStatement(t *testing.T) {
	check(t, "case $x in a) echo A;; b) echo B;; esac", "switch $x\ncase a\necho A\ncase b\necho B\nend")
}

func TestCaseStatementMultiplePatterns(t *testing.T) {
	check(t, "case $x in a|b) echo AB;; esac", "switch $x\ncase a b\necho AB\nend")
}

func TestSubshellRestoresDirectory(t *testing.T) {
	check(t, "(FOO=bar)", "begin\nset -l __reef_pwd (pwd)\nset -l FOO bar\nset -l __reef_rc $status\ncd $__reef_pwd 2>/dev/null\nsh -c \"exit $__reef_rc\"\nend")
}

func TestSubshellExportDoesNotLeak(t *testing.T) {
	// export inside a subshell must stay local to the begin/end block, or
	// it would escape into the real fish environment once the block ends.
	check(t, "(export FOO=bar)", "begin\nset -l __reef_pwd (pwd)\nset -lx FOO bar\nset -l __reef_rc $status\ncd $__reef_pwd 2>/dev/null\nsh -c \"exit $__reef_rc\"\nend")
}

func TestFuncDeclSubshellScopeIsIndependent(t *testing.T) {
	// A function body's scope is independent of any subshell surrounding
	// the function declaration itself: only the call site's runtime state
	// should ever force local scoping, not the lexical position of `func(){}`.
	check(t, "(foo() { FOO=bar; })",
		"begin\nset -l __reef_pwd (pwd)\nfunction foo\nset FOO bar\nend\nset -l __reef_rc $status\ncd $__reef_pwd 2>/dev/null\nsh -c \"exit $__reef_rc\"\nend")
}

func TestParamExpDefaultUnsetOrNull(t *testing.T) {
	check(t, "echo ${v:-d}", `echo (set -q v; and test -n "$v"; and echo $v; or echo d)`)
}

func TestParamExpDefaultUnset(t *testing.T) {
	check(t, "echo ${v-d}", `echo (set -q v; and echo $v; or echo d)`)
}

func TestParamExpAlternateUnsetOrNull(t *testing.T) {
	check(t, "echo ${v:+x}", `echo (set -q v; and test -n "$v"; and echo x)`)
}

func TestParamExpAlternateUnset(t *testing.T) {
	check(t, "echo ${v+x}", `echo (set -q v; and echo x)`)
}

func TestParamExpAssignUnsetOrNull(t *testing.T) {
	check(t, "echo ${v:=d}", `echo (set -q v; and test -n "$v"; or set v d; echo $v)`)
}

func TestParamExpAssignUnset(t *testing.T) {
	check(t, "echo ${v=d}", `echo (set -q v; or set v d; echo $v)`)
}

func TestForLoopSplitsCommandSubstitution(t *testing.T) {
	check(t, "for f in $(echo a b c); do echo $f; done", "for f in (echo a b c | string split -n ' ')\necho $f\nend")
}

func TestForLoopSplitsBareVariable(t *testing.T) {
	check(t, "for w in $var; do echo $w; done", "for w in (string split -n -- ' ' $var)\necho $w\nend")
}

func TestForLoopQuotedVariableNotSplit(t *testing.T) {
	check(t, `for w in "$var"; do echo $w; done`, "for w in \"$var\"\necho $w\nend")
}

func TestCStyleForLoop(t *testing.T) {
	check(t, "for ((i=0; i<3; i++)); do echo $i; done",
		"set i (math \"0\")\nwhile test (math \"i < 3\") -ne 0\necho $i\nset i (math \"$i + 1\")\nend")
}

func TestCStyleForLoopStepByTwo(t *testing.T) {
	check(t, "for ((i=0; i<10; i+=2)); do echo $i; done",
		"set i (math \"0\")\nwhile test (math \"i < 10\") -ne 0\necho $i\nset i (math \"$i + 2\")\nend")
}

func TestStandaloneArithIncrement(t *testing.T) {
	check(t, "((i++))", `set i (math "$i + 1")`)
}

func TestStandaloneArithDecrement(t *testing.T) {
	check(t, "((i--))", `set i (math "$i - 1")`)
}

func TestStandaloneArithBitwiseAssign(t *testing.T) {
	check(t, "((x = a & b))", `set x (math "bitand(a, b)")`)
}

func TestStandaloneArithCompoundShift(t *testing.T) {
	check(t, "((count <<= 2))", `set count (math "$count * 2 ^ 2")`)
}

func TestLetIncrement(t *testing.T) {
	check(t, "let i++", `set i (math "$i + 1")`)
}

func TestDoubleQuotedCommandSubstitutionBreaksQuote(t *testing.T) {
	// Fish only recognizes (cmd) command-substitution syntax outside a
	// double-quoted span, so the quote must close before it and reopen after.
	check(t, `echo "today is $(date)"`, `echo "today is "(date)`)
}

func TestDoubleQuotedArithmeticExpansionBreaksQuote(t *testing.T) {
	check(t, `echo "sum: $((a+b))"`, `echo "sum: "(math "a + b")`)
}

func TestDoubleQuotedParamDefaultBreaksQuote(t *testing.T) {
	check(t, `echo "v=${x:-d}"`, `echo "v="(set -q x; and test -n "$x"; and echo $x; or echo d)`)
}

func TestDoubleQuotedBareVarStaysInQuote(t *testing.T) {
	// A plain $name reference still expands correctly inside fish double
	// quotes without splitting, so it shouldn't break the quoted run.
	check(t, `echo "hello $name!"`, `echo "hello $name!"`)
}

func TestArithDivisionTruncatesTowardZero(t *testing.T) {
	check(t, "echo $((7/2))", `echo (math "floor(7 / 2)")`)
}

func TestArithStatementDivisionTruncatesTowardZero(t *testing.T) {
	check(t, "((x = a / b))", `set x (math "floor(a / b)")`)
}

func TestForLoopGlobItemStaysUnquoted(t *testing.T) {
	check(t, "for f in *.txt; do echo $f; done", "for f in *.txt\necho $f\nend")
}

func TestForLoopBraceRangeStaysUnquoted(t *testing.T) {
	check(t, "for i in {1..3}; do echo $i; done", "for i in {1..3}\necho $i\nend")
}

func TestCommandArgGlobStaysUnquoted(t *testing.T) {
	check(t, "ls *.txt", "ls *.txt")
}

func TestCaseGlobPatternStaysUnquoted(t *testing.T) {
	check(t, "case $x in *.txt) echo T;; esac", "switch $x\ncase *.txt\necho T\nend")
}
