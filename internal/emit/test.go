package emit

import (
	"fmt"

	"mvdan.cc/sh/v3/syntax"
)

// emitTestExpr lowers a [[ ]] test expression tree into a single fish
// command whose exit status mirrors the bash test's truth value. Compound
// boolean expressions are wrapped in begin/end so they can stand in for a
// single command wherever an if/while condition expects one.
func emitTestExpr(x syntax.TestExpr) (string, error) {
	switch t := x.(type) {
	case *syntax.Word:
		v, _, err := emitWordStatic(t)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf(`test -n %s`, quoteIfNeeded(v)), nil
	case *syntax.ParenTest:
		return emitTestExpr(t.X)
	case *syntax.UnaryTest:
		return emitUnaryTest(t)
	case *syntax.BinaryTest:
		return emitBinaryTest(t)
	default:
		return "", unsupported("[[ ]] expression form %T", x)
	}
}

var unaryTestFlags = map[syntax.UnTestOperator]string{
	syntax.TsExists:  "-e",
	syntax.TsRegFile: "-f",
	syntax.TsDirect:  "-d",
	syntax.TsRead:    "-r",
	syntax.TsWrite:   "-w",
	syntax.TsExec:    "-x",
	syntax.TsNoEmpty: "-s",
	syntax.TsEmpStr:  "-z",
	syntax.TsNempStr: "-n",
	syntax.TsSymLink: "-L",
}

func emitUnaryTest(t *syntax.UnaryTest) (string, error) {
	if t.Op == syntax.TsVarSet {
		w, ok := t.X.(*syntax.Word)
		if !ok {
			return "", unsupported("-v on a non-word test operand")
		}
		name, _, err := emitWordStatic(w)
		if err != nil {
			return "", err
		}
		return "set -q " + name, nil
	}
	if t.Op == syntax.TsNot {
		inner, err := emitTestExpr(t.X)
		if err != nil {
			return "", err
		}
		return "not " + inner, nil
	}
	flag, ok := unaryTestFlags[t.Op]
	if !ok {
		return "", unsupported("test operator %v", t.Op)
	}
	w, ok := t.X.(*syntax.Word)
	if !ok {
		return "", unsupported("test operand form %T", t.X)
	}
	val, _, err := emitWordStatic(w)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("test %s %s", flag, quoteIfNeeded(val)), nil
}

func emitBinaryTest(t *syntax.BinaryTest) (string, error) {
	switch t.Op {
	case syntax.AndTest:
		left, err := emitTestExpr(t.X)
		if err != nil {
			return "", err
		}
		right, err := emitTestExpr(t.Y)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("begin; %s; and %s; end", left, right), nil
	case syntax.OrTest:
		left, err := emitTestExpr(t.X)
		if err != nil {
			return "", err
		}
		right, err := emitTestExpr(t.Y)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("begin; %s; or %s; end", left, right), nil
	case syntax.TsReMatch:
		lhs, rhs, err := testOperands(t)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf(`string match -r -q -- %s %s`, singleQuote(rhs), lhs), nil
	case syntax.TsMatch:
		lhs, rhs, err := testOperands(t)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf(`string match -q -- %s %s`, singleQuote(rhs), lhs), nil
	case syntax.TsNoMatch:
		lhs, rhs, err := testOperands(t)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf(`not string match -q -- %s %s`, singleQuote(rhs), lhs), nil
	case syntax.TsEql, syntax.TsNeq, syntax.TsLt, syntax.TsGt, syntax.TsLe, syntax.TsGe:
		return emitNumericTest(t)
	default:
		return "", unsupported("[[ ]] binary operator %v", t.Op)
	}
}

// testOperands returns the left operand as a ready-to-use `"$name"` fish
// fragment and the right operand as its literal pattern text. It handles
// both the bare `[[ $var == pattern ]]` and quoted `[[ "$var" == pattern ]]`
// spellings bash treats interchangeably in this position.
func testOperands(t *syntax.BinaryTest) (leftExpr, rightPattern string, err error) {
	lw, ok := t.X.(*syntax.Word)
	if !ok {
		return "", "", unsupported("test left operand form %T", t.X)
	}
	left, err := testWordVar(lw)
	if err != nil {
		return "", "", err
	}
	rw, ok := t.Y.(*syntax.Word)
	if !ok {
		return "", "", unsupported("test right operand form %T", t.Y)
	}
	right, _, err := emitWordStatic(rw)
	if err != nil {
		return "", "", err
	}
	return left, right, nil
}

// testWordVar renders the left operand of a [[ ]] comparison as a
// `"$name"` fish fragment. emitWordStatic already folds a quoted `"$var"`
// operand into the literal text `"$var"` (quote characters included),
// which trimDollar alone can't unwrap back into a bare name, so both the
// bare `$var` and quoted `"$var"` word shapes are matched directly against
// the underlying ParamExp instead of trusting the folded string.
func testWordVar(w *syntax.Word) (string, error) {
	if len(w.Parts) == 1 {
		var pe *syntax.ParamExp
		switch p := w.Parts[0].(type) {
		case *syntax.ParamExp:
			pe = p
		case *syntax.DblQuoted:
			if len(p.Parts) == 1 {
				if inner, ok := p.Parts[0].(*syntax.ParamExp); ok {
					pe = inner
				}
			}
		}
		if pe != nil {
			if name, ok := simpleParamName(pe); ok {
				return `"$` + name + `"`, nil
			}
		}
	}
	val, _, err := emitWordStatic(w)
	if err != nil {
		return "", err
	}
	return `"$` + trimDollar(val) + `"`, nil
}

func trimDollar(s string) string {
	if len(s) > 0 && s[0] == '$' {
		return s[1:]
	}
	return s
}

var numericTestFlags = map[syntax.BinTestOperator]string{
	syntax.TsEql: "-eq",
	syntax.TsNeq: "-ne",
	syntax.TsLt:  "-lt",
	syntax.TsGt:  "-gt",
	syntax.TsLe:  "-le",
	syntax.TsGe:  "-ge",
}

func emitNumericTest(t *syntax.BinaryTest) (string, error) {
	lw, ok := t.X.(*syntax.Word)
	if !ok {
		return "", unsupported("numeric test left operand form %T", t.X)
	}
	rw, ok := t.Y.(*syntax.Word)
	if !ok {
		return "", unsupported("numeric test right operand form %T", t.Y)
	}
	left, err := emitWord(lw)
	if err != nil {
		return "", err
	}
	right, err := emitWord(rw)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("test %s %s %s", left, numericTestFlags[t.Op], right), nil
}
