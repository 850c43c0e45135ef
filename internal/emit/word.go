package emit

import (
	"strings"

	"mvdan.cc/sh/v3/syntax"

	"github.com/reef-shell/reef/internal/wordutil"
)

// emitWord translates a single bash word into fish source, concatenating
// each part's translation the way both shells glue literal text against
// command substitutions and expansions.
func emitWord(w *syntax.Word) (string, error) {
	if w == nil {
		return "", nil
	}
	var b strings.Builder
	for _, part := range w.Parts {
		s, err := emitWordPart(part)
		if err != nil {
			return "", err
		}
		b.WriteString(s)
	}
	return b.String(), nil
}

func emitWordPart(part syntax.WordPart) (string, error) {
	switch p := part.(type) {
	case *syntax.Lit:
		return emitLit(p.Value), nil
	case *syntax.SglQuoted:
		return singleQuote(p.Value), nil
	case *syntax.DblQuoted:
		return emitDblQuoted(p)
	case *syntax.ParamExp:
		return emitParamExp(p)
	case *syntax.CmdSubst:
		return emitCmdSubst(p)
	case *syntax.ArithmExp:
		expr, err := emitArithm(p.X)
		if err != nil {
			return "", err
		}
		return `(math "` + expr + `")`, nil
	case *syntax.ExtGlob:
		return "", unsupported("extended glob pattern %q", p.Pattern.Value)
	case *syntax.ProcSubst:
		return "", unsupported("process substitution")
	default:
		return "", unsupported("word part %T", part)
	}
}

// emitLit passes literal text through mostly unchanged: bash and fish
// agree on bare-word semantics for ordinary characters. Brace ranges are
// bash syntax fish also understands natively, so no rewrite is needed.
func emitLit(s string) string {
	return s
}

// emitDblQuoted lowers a double-quoted bash word into fish source. Fish
// only recognizes command-substitution, arithmetic-expansion, and
// non-trivial parameter-expansion syntax when it appears outside of a
// double-quoted span, so each such substitution closes the quoted run in
// progress, emits itself bare, and a fresh quoted run reopens after it if
// more literal text follows. A bare `$name` reference is left inside the
// quotes since fish, like bash, still expands it there without splitting —
// only the richer forms need to break out.
func emitDblQuoted(p *syntax.DblQuoted) (string, error) {
	var b strings.Builder
	open := false

	openQuote := func() {
		if !open {
			b.WriteByte('"')
			open = true
		}
	}
	closeQuote := func() {
		if open {
			b.WriteByte('"')
			open = false
		}
	}

	for _, sub := range p.Parts {
		switch s := sub.(type) {
		case *syntax.Lit:
			openQuote()
			b.WriteString(escapeForDoubleQuote(s.Value))
		case *syntax.ParamExp:
			if name, ok := simpleParamName(s); ok {
				openQuote()
				b.WriteString("$" + name)
				continue
			}
			v, err := emitParamExp(s)
			if err != nil {
				return "", err
			}
			closeQuote()
			b.WriteString(v)
		case *syntax.CmdSubst:
			v, err := emitCmdSubst(s)
			if err != nil {
				return "", err
			}
			closeQuote()
			b.WriteString(v)
		case *syntax.ArithmExp:
			expr, err := emitArithm(s.X)
			if err != nil {
				return "", err
			}
			closeQuote()
			b.WriteString(`(math "` + expr + `")`)
		default:
			return "", unsupported("double-quoted part %T", sub)
		}
	}
	closeQuote()
	if b.Len() == 0 {
		return `""`, nil
	}
	return b.String(), nil
}

func escapeForDoubleQuote(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"', '\\':
			b.WriteByte('\\')
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// emitCmdSubst lowers $(cmd) and `cmd` into fish's (cmd) form. A bare,
// unquoted-for-word-splitting substitution used inside a for-loop word
// list is handled by the caller, which needs the raw command text rather
// than this parenthesized form.
func emitCmdSubst(c *syntax.CmdSubst) (string, error) {
	body, err := emitStmtList(&emitCtx{}, c.Stmts)
	if err != nil {
		return "", err
	}
	return "(" + body + ")", nil
}

// emitWordStatic folds a word to a literal string when possible, falling
// back to the full translation (still usable as a string, just not
// guaranteed to be a compile-time constant fish can pattern-match on).
func emitWordStatic(w *syntax.Word) (val string, static bool, err error) {
	if v, ok := wordutil.ResolveStatic(w); ok {
		return v, true, nil
	}
	v, err := emitWord(w)
	if err != nil {
		return "", false, err
	}
	return v, false, nil
}
