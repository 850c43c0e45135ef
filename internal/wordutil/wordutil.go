// Package wordutil resolves bash syntax.Word values the Emitter needs to
// reason about statically: whether a word is a compile-time-known literal,
// and whether it contains an unquoted glob or brace-range the target shell
// should expand itself rather than have quoted away. It consolidates the
// overlapping WordToString/ResolveStaticWord helpers the teacher duplicated
// across pkg/shellparse and pkg/common into one place.
package wordutil

import (
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// ResolveStatic folds a word into a plain string when every part is a
// literal, single-quoted span, or double-quoted literal text. Any
// parameter expansion, command substitution, arithmetic expansion, or
// process substitution makes the word dynamic and returns static=false —
// the caller must then translate part-by-part instead of using the value.
func ResolveStatic(word *syntax.Word) (val string, static bool) {
	if word == nil {
		return "", true
	}

	var sb strings.Builder
	static = true

	for _, part := range word.Parts {
		switch p := part.(type) {
		case *syntax.Lit:
			sb.WriteString(p.Value)
		case *syntax.SglQuoted:
			sb.WriteString(p.Value)
		case *syntax.DblQuoted:
			for _, sub := range p.Parts {
				if lit, ok := sub.(*syntax.Lit); ok {
					sb.WriteString(lit.Value)
				} else {
					static = false
				}
			}
		default:
			static = false
		}
	}

	return sb.String(), static
}

// IsGlobWord reports whether word contains an unquoted glob metacharacter
// (`*`, `?`, or a `[...]` class) outside of any quoted span.
func IsGlobWord(word *syntax.Word) bool {
	for _, part := range word.Parts {
		lit, ok := part.(*syntax.Lit)
		if !ok {
			continue
		}
		if strings.ContainsAny(lit.Value, "*?[") {
			return true
		}
	}
	return false
}

// HasBraceRange reports whether word contains bash brace-range syntax like
// {1..5} in one of its literal parts.
func HasBraceRange(word *syntax.Word) bool {
	for _, part := range word.Parts {
		lit, ok := part.(*syntax.Lit)
		if !ok {
			continue
		}
		if hasBraceRangeText(lit.Value) {
			return true
		}
	}
	return false
}

func hasBraceRangeText(s string) bool {
	for {
		open := strings.IndexByte(s, '{')
		if open < 0 {
			return false
		}
		close := strings.IndexByte(s[open:], '}')
		if close < 0 {
			return false
		}
		inner := s[open+1 : open+close]
		if pos := strings.Index(inner, ".."); pos > 0 && pos+2 < len(inner) {
			return true
		}
		s = s[open+close+1:]
	}
}
