package emit

import (
	"strings"

	"mvdan.cc/sh/v3/syntax"

	"github.com/reef-shell/reef/internal/wordutil"
)

// singleQuote wraps s in fish single quotes, escaping embedded quotes the
// same way bash does: close, escaped literal quote, reopen.
func singleQuote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('\'')
	for i := 0; i < len(s); i++ {
		if s[i] == '\'' {
			b.WriteString(`'\''`)
		} else {
			b.WriteByte(s[i])
		}
	}
	b.WriteByte('\'')
	return b.String()
}

// needsQuoting reports whether s contains a character fish's word
// splitting or glob expansion would otherwise touch.
func needsQuoting(s string) bool {
	if s == "" {
		return true
	}
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case ' ', '\t', '\n', '*', '?', '~', '{', '}', '[', ']', '<', '>', '|', '&', ';', '#':
			return true
		}
	}
	return false
}

// alreadyQuoted reports whether s is a composite fish fragment this
// package already produced in self-delimiting form — a single- or
// double-quoted span, or a parenthesized command/math substitution —
// which must not be wrapped again.
func alreadyQuoted(s string) bool {
	if s == "" {
		return false
	}
	switch s[0] {
	case '\'', '"', '(':
		return true
	}
	return false
}

// quoteIfNeeded returns s unchanged when it is already a safe bare fish
// word or an already-quoted/parenthesized fragment, otherwise wraps it in
// fish double quotes. It never escapes `$`: by the time a fragment reaches
// here any `$var` in it was deliberately produced by this package's own
// translation and must keep expanding.
func quoteIfNeeded(s string) string {
	if !needsQuoting(s) || alreadyQuoted(s) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		if s[i] == '"' || s[i] == '\\' {
			b.WriteByte('\\')
		}
		b.WriteByte(s[i])
	}
	b.WriteByte('"')
	return b.String()
}

// wordArg renders a translated word for a position where bash itself would
// perform unquoted glob or brace-range expansion — a command argument, a
// for-loop word-list item, a case pattern. When the source word used one of
// those forms without quoting it, rendered is passed through bare so fish
// performs the same expansion; quoting it here would suppress the glob or
// range instead of reproducing bash's behavior.
func wordArg(w *syntax.Word, rendered string) string {
	if wordutil.IsGlobWord(w) || wordutil.HasBraceRange(w) {
		return rendered
	}
	return quoteIfNeeded(rendered)
}
