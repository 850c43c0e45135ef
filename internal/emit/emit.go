// Package emit translates a parsed bash AST (from mvdan.cc/sh/v3/syntax)
// into fish shell source. It implements the bash -> fish half of the
// translation layer: the Detector decides a line needs this treatment, the
// parser hands over a *syntax.File, and Translate walks it producing fish
// source or a typed Error when no faithful fish rendering exists.
package emit

import (
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// Translate parses src as bash and renders it as fish source. Parse
// failures are reported as a SyntaxError; constructs with no fish
// equivalent are reported as an UnsupportedConstruct Error.
func Translate(src string) (string, error) {
	f, err := syntax.NewParser(syntax.Variant(syntax.LangBash)).Parse(strings.NewReader(src), "")
	if err != nil {
		return "", &Error{Kind: SyntaxError, What: err.Error()}
	}
	return emitStmtList(&emitCtx{}, f.Stmts)
}

// emitCtx threads translation state that depends on lexical position rather
// than on any single node. The only such state today is whether the
// current statement sits inside a bash subshell: fish has no real fork, so
// a `begin/end` block standing in for `( ... )` needs assignments made
// inside it to stay local or they leak into the surrounding shell.
type emitCtx struct {
	inSubshell bool
}

// emitStmtList renders a sequence of statements, joining them with a newline
// the way fish separates commands. Bash's `&&`/`||` inside a statement are
// rendered as `; and`/`; or` by emitBinaryCmd.
func emitStmtList(ctx *emitCtx, stmts []*syntax.Stmt) (string, error) {
	var b strings.Builder
	for i, stmt := range stmts {
		s, err := emitStmt(ctx, stmt)
		if err != nil {
			return "", err
		}
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(s)
	}
	return b.String(), nil
}

func emitStmt(ctx *emitCtx, stmt *syntax.Stmt) (string, error) {
	body, err := emitCommand(ctx, stmt.Cmd)
	if err != nil {
		return "", err
	}

	if len(stmt.Redirs) > 0 {
		redirs, err := emitRedirects(stmt.Redirs)
		if err != nil {
			return "", err
		}
		body = body + " " + redirs
	}

	if stmt.Negated {
		body = "not " + body
	}
	if stmt.Background {
		body = body + " &"
	}
	return body, nil
}

func emitCommand(ctx *emitCtx, cmd syntax.Command) (string, error) {
	switch c := cmd.(type) {
	case *syntax.CallExpr:
		return emitCallExpr(ctx, c)
	case *syntax.BinaryCmd:
		return emitBinaryCmd(ctx, c)
	case *syntax.IfClause:
		return emitIfClause(ctx, c)
	case *syntax.WhileClause:
		return emitWhileClause(ctx, c)
	case *syntax.ForClause:
		return emitForClause(ctx, c)
	case *syntax.CaseClause:
		return emitCaseClause(ctx, c)
	case *syntax.Block:
		return emitBlock(ctx, c)
	case *syntax.Subshell:
		return emitSubshell(ctx, c)
	case *syntax.FuncDecl:
		return emitFuncDecl(c)
	case *syntax.DeclClause:
		return emitDeclClause(ctx, c)
	case *syntax.TestClause:
		return emitTestExpr(c.X)
	case *syntax.ArithmCmd:
		return emitArithmCmd(ctx, c)
	case *syntax.TimeClause:
		return "", unsupported("time clause")
	case *syntax.CoprocClause:
		return "", unsupported("coproc")
	case *syntax.LetClause:
		return emitLetClause(ctx, c)
	default:
		return "", unsupported("statement form %T", cmd)
	}
}

func emitArithmCmd(ctx *emitCtx, c *syntax.ArithmCmd) (string, error) {
	return emitArithStmt(ctx, c.X)
}

func emitLetClause(ctx *emitCtx, c *syntax.LetClause) (string, error) {
	if len(c.Exprs) == 0 {
		return "", unsupported("empty let clause")
	}
	var b strings.Builder
	for i, e := range c.Exprs {
		stmt, err := emitArithStmt(ctx, e)
		if err != nil {
			return "", err
		}
		if i > 0 {
			b.WriteString("; and ")
		}
		b.WriteString(stmt)
	}
	return b.String(), nil
}
