package emit

import (
	"fmt"

	"mvdan.cc/sh/v3/syntax"
)

// emitArithm renders a bash arithmetic expression as the body of a fish
// `math` invocation. fish's math has no increment, compound-assignment, or
// bitwise operators, so those forms are refused rather than mistranslated.
func emitArithm(expr syntax.ArithmExpr) (string, error) {
	switch x := expr.(type) {
	case nil:
		return "", nil
	case *syntax.Word:
		val, _, err := emitWordStatic(x)
		if err != nil {
			return "", err
		}
		return val, nil
	case *syntax.ParenArithm:
		inner, err := emitArithm(x.X)
		if err != nil {
			return "", err
		}
		return "(" + inner + ")", nil
	case *syntax.UnaryArithm:
		return emitUnaryArithm(x)
	case *syntax.BinaryArithm:
		return emitBinaryArithm(x)
	default:
		return "", unsupported("arithmetic expression form %T", expr)
	}
}

func emitUnaryArithm(x *syntax.UnaryArithm) (string, error) {
	switch x.Op {
	case syntax.Not:
		inner, err := emitArithm(x.X)
		if err != nil {
			return "", err
		}
		return "!" + inner, nil
	case syntax.Minus:
		inner, err := emitArithm(x.X)
		if err != nil {
			return "", err
		}
		return "-" + inner, nil
	case syntax.Plus:
		inner, err := emitArithm(x.X)
		if err != nil {
			return "", err
		}
		return inner, nil
	case syntax.Inc, syntax.Dec:
		return "", unsupported("increment/decrement operator in arithmetic expression")
	default:
		return "", unsupported("unary arithmetic operator %v", x.Op)
	}
}

func emitBinaryArithm(x *syntax.BinaryArithm) (string, error) {
	if op, ok := compoundAssignOps[x.Op]; ok {
		return "", unsupported("compound-assignment operator %q in arithmetic expression", op)
	}

	left, err := emitArithm(x.X)
	if err != nil {
		return "", err
	}
	right, err := emitArithm(x.Y)
	if err != nil {
		return "", err
	}

	// Bash integer division truncates toward zero; fish math returns a
	// float for an inexact quotient, so plain `/` needs the same floor()
	// wrapping already applied to `/=` in combineArith.
	if x.Op == syntax.Quo {
		return fmt.Sprintf("floor(%s / %s)", left, right), nil
	}

	sym, ok := binaryArithOps[x.Op]
	if !ok {
		return "", unsupported("bitwise or unsupported arithmetic operator %v", x.Op)
	}
	return fmt.Sprintf("%s %s %s", left, sym, right), nil
}

var binaryArithOps = map[syntax.BinAritOperator]string{
	syntax.Add:     "+",
	syntax.Sub:     "-",
	syntax.Mul:     "*",
	syntax.Rem:     "%",
	syntax.Pow:     "^",
	syntax.Eql:     "==",
	syntax.Neq:     "!=",
	syntax.Lss:     "<",
	syntax.Gtr:     ">",
	syntax.Leq:     "<=",
	syntax.Geq:     ">=",
	syntax.AndArit: "and",
	syntax.OrArit:  "or",
}

var compoundAssignOps = map[syntax.BinAritOperator]string{
	syntax.AddAssgn: "+=",
	syntax.SubAssgn: "-=",
	syntax.MulAssgn: "*=",
	syntax.QuoAssgn: "/=",
	syntax.RemAssgn: "%=",
	syntax.AndAssgn: "&=",
	syntax.OrAssgn:  "|=",
	syntax.XorAssgn: "^=",
	syntax.ShlAssgn: "<<=",
	syntax.ShrAssgn: ">>=",
	syntax.Assgn:    "=",
}

var bitwiseFuncOps = map[syntax.BinAritOperator]string{
	syntax.And: "bitand",
	syntax.Or:  "bitor",
	syntax.Xor: "bitxor",
}

// emitArithFull renders an arithmetic expression the way emitArithm does,
// except bitwise and shift operators lower to fish math's bitand/bitor/
// bitxor calls and multiply/divide-by-power-of-two instead of being
// refused. It backs emitArithStmt, where these operators appear as part of
// a C-style for-loop step or a `(( ))`/`let` statement rather than as a
// value substituted into a bash word.
func emitArithFull(expr syntax.ArithmExpr) (string, error) {
	x, ok := expr.(*syntax.BinaryArithm)
	if !ok {
		return emitArithm(expr)
	}
	if fn, ok := bitwiseFuncOps[x.Op]; ok {
		left, err := emitArithFull(x.X)
		if err != nil {
			return "", err
		}
		right, err := emitArithFull(x.Y)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s(%s, %s)", fn, left, right), nil
	}
	switch x.Op {
	case syntax.Shl:
		left, err := emitArithFull(x.X)
		if err != nil {
			return "", err
		}
		right, err := emitArithFull(x.Y)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(%s * 2 ^ %s)", left, right), nil
	case syntax.Shr:
		left, err := emitArithFull(x.X)
		if err != nil {
			return "", err
		}
		right, err := emitArithFull(x.Y)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("floor(%s / 2 ^ %s)", left, right), nil
	}
	if x.Op == syntax.Quo {
		left, err := emitArithFull(x.X)
		if err != nil {
			return "", err
		}
		right, err := emitArithFull(x.Y)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("floor(%s / %s)", left, right), nil
	}
	if _, ok := compoundAssignOps[x.Op]; ok {
		return "", unsupported("compound-assignment operator inside an expression")
	}
	left, err := emitArithFull(x.X)
	if err != nil {
		return "", err
	}
	right, err := emitArithFull(x.Y)
	if err != nil {
		return "", err
	}
	sym, ok := binaryArithOps[x.Op]
	if !ok {
		return "", unsupported("arithmetic operator %v", x.Op)
	}
	return fmt.Sprintf("%s %s %s", left, sym, right), nil
}

// combineArith renders `name OP rhs` for a compound-assignment operator
// (`+=`, `&=`, `<<=`, ...), lowering the bitwise and shift forms the same
// way emitArithFull does.
func combineArith(op syntax.BinAritOperator, name, rhs string) (string, error) {
	switch op {
	case syntax.AddAssgn:
		return fmt.Sprintf("$%s + %s", name, rhs), nil
	case syntax.SubAssgn:
		return fmt.Sprintf("$%s - %s", name, rhs), nil
	case syntax.MulAssgn:
		return fmt.Sprintf("$%s * %s", name, rhs), nil
	case syntax.QuoAssgn:
		return fmt.Sprintf("floor($%s / %s)", name, rhs), nil
	case syntax.RemAssgn:
		return fmt.Sprintf("$%s %% %s", name, rhs), nil
	case syntax.AndAssgn:
		return fmt.Sprintf("bitand($%s, %s)", name, rhs), nil
	case syntax.OrAssgn:
		return fmt.Sprintf("bitor($%s, %s)", name, rhs), nil
	case syntax.XorAssgn:
		return fmt.Sprintf("bitxor($%s, %s)", name, rhs), nil
	case syntax.ShlAssgn:
		return fmt.Sprintf("$%s * 2 ^ %s", name, rhs), nil
	case syntax.ShrAssgn:
		return fmt.Sprintf("floor($%s / 2 ^ %s)", name, rhs), nil
	default:
		return "", unsupported("compound assignment operator in statement context")
	}
}

// emitArithStmt lowers an arithmetic expression evaluated for its side
// effect — a standalone `(( expr ))`/`let expr`, or a C-style for-loop's
// init/post clause — where assignment, increment/decrement, and
// compound-assignment forms make sense as a `set` rather than a bare
// value. setKw is chosen the same way emitOneAssign's callers choose it:
// local scope inside a subshell so the mutation doesn't survive past the
// enclosing begin/end.
func emitArithStmt(ctx *emitCtx, expr syntax.ArithmExpr) (string, error) {
	setKw := "set"
	if ctx.inSubshell {
		setKw = "set -l"
	}
	switch x := expr.(type) {
	case *syntax.UnaryArithm:
		if name, ok := arithVarName(x.X); ok {
			switch x.Op {
			case syntax.Inc:
				return fmt.Sprintf(`%s %s (math "$%s + 1")`, setKw, name, name), nil
			case syntax.Dec:
				return fmt.Sprintf(`%s %s (math "$%s - 1")`, setKw, name, name), nil
			}
		}
	case *syntax.BinaryArithm:
		if name, ok := arithVarName(x.X); ok {
			if x.Op == syntax.Assgn {
				rhs, err := emitArithFull(x.Y)
				if err != nil {
					return "", err
				}
				return fmt.Sprintf(`%s %s (math "%s")`, setKw, name, rhs), nil
			}
			if _, ok := compoundAssignOps[x.Op]; ok {
				rhs, err := emitArithFull(x.Y)
				if err != nil {
					return "", err
				}
				combined, err := combineArith(x.Op, name, rhs)
				if err != nil {
					return "", err
				}
				return fmt.Sprintf(`%s %s (math "%s")`, setKw, name, combined), nil
			}
		}
	}
	val, err := emitArithFull(expr)
	if err != nil {
		return "", err
	}
	return `math "` + val + `" >/dev/null`, nil
}

// arithVarName reports the bare variable name when expr is a plain word
// naming one, the shape bash's arithmetic parser produces for the
// left-hand side of `i++`, `i += 1`, and `i = expr`.
func arithVarName(expr syntax.ArithmExpr) (string, bool) {
	w, ok := expr.(*syntax.Word)
	if !ok {
		return "", false
	}
	val, static, err := emitWordStatic(w)
	if err != nil || !static || val == "" {
		return "", false
	}
	return val, true
}
