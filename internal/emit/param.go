package emit

import (
	"fmt"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// emitParamExp lowers a single bash parameter expansion into a fish
// expression. Most forms become a parenthesized subshell expression since
// fish has no inline conditional/substring syntax of its own.
func emitParamExp(p *syntax.ParamExp) (string, error) {
	name := ""
	if p.Param != nil {
		name = p.Param.Value
	}

	switch {
	case p.Excl && p.Param != nil && p.Index == nil:
		// ${!ref} — indirect reference.
		return "$$" + name, nil

	case p.Length:
		return fmt.Sprintf(`(string length -- "$%s")`, name), nil

	case p.Slice != nil:
		return emitSlice(name, p.Slice)

	case p.Repl != nil:
		return emitReplace(name, p.Repl)

	case p.Exp != nil:
		return emitExpansion(name, p.Exp)

	default:
		return "$" + name, nil
	}
}

// simpleParamName reports the bare variable name for a plain `$name`
// expansion with none of the modifier forms (`${name:-d}`, `${#name}`,
// `${name[i]}`, ...) that need their own translation, letting callers that
// only care about a raw variable reference (for-loop word splitting, [[ ]]
// operand handling) short-circuit past emitParamExp's general lowering.
func simpleParamName(p *syntax.ParamExp) (string, bool) {
	if p.Excl || p.Length || p.Slice != nil || p.Repl != nil || p.Exp != nil || p.Index != nil || p.Param == nil {
		return "", false
	}
	return p.Param.Value, true
}

func emitSlice(name string, s *syntax.Slice) (string, error) {
	offset, err := arithText(s.Offset)
	if err != nil {
		return "", err
	}
	args := []string{"string", "sub", "-s", offset + "+1"}
	if s.Length != nil {
		length, err := arithText(s.Length)
		if err != nil {
			return "", err
		}
		args = append(args, "-l", length)
	}
	args = append(args, "--", "$"+name)
	return "(" + strings.Join(args, " ") + ")", nil
}

func emitReplace(name string, r *syntax.Replace) (string, error) {
	orig, _, err := emitWordStatic(r.Orig)
	if err != nil {
		return "", err
	}
	with := ""
	if r.With != nil {
		w, _, err := emitWordStatic(r.With)
		if err != nil {
			return "", err
		}
		with = w
	}
	flag := "--"
	if r.All {
		flag = "-a --"
	}
	return fmt.Sprintf("(string replace %s %s %s $%s)", flag, singleQuote(orig), singleQuote(with), name), nil
}

func emitExpansion(name string, e *syntax.Expansion) (string, error) {
	wordVal := ""
	if e.Word != nil {
		v, _, err := emitWordStatic(e.Word)
		if err != nil {
			return "", err
		}
		wordVal = v
	}

	switch e.Op {
	case syntax.DefaultUnset:
		return fmt.Sprintf("(set -q %s; and echo $%s; or echo %s)", name, name, quoteIfNeeded(wordVal)), nil
	case syntax.DefaultUnsetOrNull:
		return fmt.Sprintf(`(set -q %s; and test -n "$%s"; and echo $%s; or echo %s)`, name, name, name, quoteIfNeeded(wordVal)), nil
	case syntax.AlternateUnset:
		return fmt.Sprintf("(set -q %s; and echo %s)", name, quoteIfNeeded(wordVal)), nil
	case syntax.AlternateUnsetOrNull:
		return fmt.Sprintf(`(set -q %s; and test -n "$%s"; and echo %s)`, name, name, quoteIfNeeded(wordVal)), nil
	case syntax.AssignUnset:
		return fmt.Sprintf("(set -q %s; or set %s %s; echo $%s)", name, name, quoteIfNeeded(wordVal), name), nil
	case syntax.AssignUnsetOrNull:
		return fmt.Sprintf(`(set -q %s; and test -n "$%s"; or set %s %s; echo $%s)`, name, name, name, quoteIfNeeded(wordVal), name), nil
	case syntax.RemSmallPrefix, syntax.RemLargePrefix:
		return emitAnchoredStrip(name, wordVal, true, e.Op == syntax.RemLargePrefix), nil
	case syntax.RemSmallSuffix, syntax.RemLargeSuffix:
		return emitAnchoredStrip(name, wordVal, false, e.Op == syntax.RemLargeSuffix), nil
	case syntax.UpperAll:
		return fmt.Sprintf(`(string upper -- "$%s")`, name), nil
	case syntax.LowerAll:
		return fmt.Sprintf(`(string lower -- "$%s")`, name), nil
	case syntax.UpperFirst:
		return fmt.Sprintf(`(string upper -- (string sub -l 1 -- "$%s"))(string sub -s 2 -- "$%s")`, name, name), nil
	case syntax.LowerFirst:
		return fmt.Sprintf(`(string lower -- (string sub -l 1 -- "$%s"))(string sub -s 2 -- "$%s")`, name, name), nil
	default:
		return "", unsupported("parameter expansion operator on $%s", name)
	}
}

// emitAnchoredStrip lowers ${v#p}/${v##p}/${v%p}/${v%%p} to a regex-anchored
// string replace. glob-to-regex conversion only handles the common `*`/`?`
// wildcards; anything richer is passed through as a literal anchor.
func emitAnchoredStrip(name, pattern string, prefix, greedy bool) string {
	re := globToRegex(pattern, greedy)
	if prefix {
		return fmt.Sprintf("(string replace -r -- %s '' $%s)", singleQuote("^"+re), name)
	}
	// A regex match starts as far left as it can, so a suffix's length is
	// set by a leading capture group of the opposite greediness that keeps
	// everything before the stripped suffix.
	lead := "(.*?)"
	if !greedy {
		lead = "(.*)"
	}
	return fmt.Sprintf("(string replace -r -- %s '$1' $%s)", singleQuote("^"+lead+re+"$"), name)
}

func globToRegex(pattern string, greedy bool) string {
	star := "*?"
	if greedy {
		star = "*"
	}
	var b strings.Builder
	for i := 0; i < len(pattern); i++ {
		switch pattern[i] {
		case '*':
			b.WriteString(".")
			b.WriteString(star)
		case '?':
			b.WriteString(".")
		case '.', '+', '(', ')', '|', '^', '$', '[', ']', '{', '}', '\\':
			b.WriteByte('\\')
			b.WriteByte(pattern[i])
		default:
			b.WriteByte(pattern[i])
		}
	}
	return b.String()
}

// arithText renders an arithmetic expression as fish `math` source, reusing
// the word-level literal folding for the common case of bare numbers and
// variable references.
func arithText(expr syntax.ArithmExpr) (string, error) {
	s, err := emitArithm(expr)
	if err != nil {
		return "", err
	}
	return s, nil
}
