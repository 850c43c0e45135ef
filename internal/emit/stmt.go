package emit

import (
	"fmt"
	"strings"

	"mvdan.cc/sh/v3/syntax"

	"github.com/reef-shell/reef/internal/wordutil"
)

// declScopeFlags maps bash keyword commands whose first argument is a
// variable name into the fish `set` scope flag that reproduces them.
var declScopeFlags = map[string]string{
	"local":    "-l",
	"declare":  "-l",
	"typeset":  "-l",
	"readonly": "-l",
	"export":   "-gx",
	"unset":    "",
}

// scopeFor resolves the fish `set` scope flag for a bash assignment or
// export given the surrounding lexical context. Assignments made inside a
// subshell must stay local: fish has no real fork, so a `begin/end` block
// standing in for `( ... )` would otherwise let them survive past `end`
// and leak into the caller, which bash never does.
func scopeFor(ctx *emitCtx, requested string) string {
	if !ctx.inSubshell {
		return requested
	}
	switch requested {
	case "":
		return "-l"
	case "-gx":
		return "-lx"
	default:
		return requested
	}
}

func emitCallExpr(ctx *emitCtx, c *syntax.CallExpr) (string, error) {
	if len(c.Args) == 0 && len(c.Assigns) > 0 {
		return emitBareAssigns(ctx, c.Assigns)
	}
	if len(c.Args) == 0 {
		return "true", nil
	}

	name, isStatic, err := emitWordStatic(c.Args[0])
	if err != nil {
		return "", err
	}

	if isStatic {
		switch name {
		case "export", "unset", "local", "declare", "typeset", "readonly":
			return emitDeclLikeCall(ctx, name, c.Args[1:])
		}
	}

	var parts []string
	if len(c.Assigns) > 0 {
		prefix, err := emitPrefixAssigns(c.Assigns)
		if err != nil {
			return "", err
		}
		parts = append(parts, prefix)
	}

	for _, arg := range c.Args {
		w, err := emitWord(arg)
		if err != nil {
			return "", err
		}
		parts = append(parts, wordArg(arg, w))
	}
	return strings.Join(parts, " "), nil
}

// emitBareAssigns handles `FOO=bar` with no command: fish has no bare
// scalar assignment, so it becomes `set FOO bar`.
func emitBareAssigns(ctx *emitCtx, assigns []*syntax.Assign) (string, error) {
	scope := scopeFor(ctx, "")
	var b strings.Builder
	for i, a := range assigns {
		stmt, err := emitOneAssign(scope, a)
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

// emitPrefixAssigns handles `FOO=bar command`, which fish spells with the
// `env` builtin rather than a scoped `set`.
func emitPrefixAssigns(assigns []*syntax.Assign) (string, error) {
	var parts []string
	parts = append(parts, "env")
	for _, a := range assigns {
		if a.Array != nil {
			return "", unsupported("array-valued prefix assignment on %s", a.Name.Value)
		}
		val, _, err := emitWordStatic(a.Value)
		if err != nil {
			return "", err
		}
		parts = append(parts, a.Name.Value+"="+quoteIfNeeded(val))
	}
	return strings.Join(parts, " "), nil
}

func emitOneAssign(scope string, a *syntax.Assign) (string, error) {
	if a.Array != nil {
		return "", unsupported("array assignment to %s", a.Name.Value)
	}
	if a.Index != nil {
		return emitIndexedAssign(scope, a)
	}
	setKw := "set"
	if scope != "" {
		setKw = "set " + scope
	}
	name := a.Name.Value
	if a.Naked {
		if scope == "" {
			return "set -e " + name, nil
		}
		return setKw + " " + name + " $" + name, nil
	}
	val, _, err := emitWordStatic(a.Value)
	if err != nil {
		return "", err
	}
	if a.Append {
		return fmt.Sprintf("%s %s $%s%s", setKw, name, name, quoteIfNeeded(val)), nil
	}
	return fmt.Sprintf("%s %s %s", setKw, name, quoteIfNeeded(val)), nil
}

// emitIndexedAssign handles `arr[i]=v`. fish arrays are 1-indexed, so the
// bash index is offset by one.
func emitIndexedAssign(scope string, a *syntax.Assign) (string, error) {
	idx, err := emitArithm(a.Index)
	if err != nil {
		return "", err
	}
	name := a.Name.Value
	if a.Naked && scope == "" {
		return fmt.Sprintf("set -e %s[(math \"%s+1\")]", name, idx), nil
	}
	val, _, err := emitWordStatic(a.Value)
	if err != nil {
		return "", err
	}
	setKw := "set"
	if scope != "" {
		setKw = "set " + scope
	}
	return fmt.Sprintf("%s %s[(math \"%s+1\")] %s", setKw, name, idx, quoteIfNeeded(val)), nil
}

// emitDeclLikeCall handles export/unset/local/declare/typeset/readonly
// invoked as ordinary commands (as opposed to DeclClause form, which the
// parser also uses for some of these).
func emitDeclLikeCall(ctx *emitCtx, name string, args []*syntax.Word) (string, error) {
	scope, hasScope := declScopeFlags[name]
	if !hasScope {
		return "", unsupported("declaration keyword %q", name)
	}

	if name == "export" {
		return emitExportArgs(ctx, args)
	}
	if name == "unset" {
		return emitUnsetArgs(args)
	}

	var b strings.Builder
	for i, w := range args {
		assign, ok := wordAsAssign(w)
		if !ok {
			return "", unsupported("%s with non-assignment argument", name)
		}
		s, err := emitOneAssign(scope, assign)
		if err != nil {
			return "", err
		}
		if i > 0 {
			b.WriteString("; and ")
		}
		b.WriteString(s)
	}
	return b.String(), nil
}

func emitExportArgs(ctx *emitCtx, args []*syntax.Word) (string, error) {
	scope := scopeFor(ctx, "-gx")
	var b strings.Builder
	for i, w := range args {
		val, isStatic := wordutil.ResolveStatic(w)
		eq := strings.IndexByte(val, '=')
		if !isStatic || eq < 0 {
			// `export V` with no `=` re-exports an existing local var.
			name := val
			if !isStatic {
				n, err := emitWord(w)
				if err != nil {
					return "", err
				}
				name = n
			}
			if i > 0 {
				b.WriteString("; and ")
			}
			fmt.Fprintf(&b, "set %s %s $%s", scope, name, name)
			continue
		}
		name, value := val[:eq], val[eq+1:]
		if i > 0 {
			b.WriteString("; and ")
		}
		if strings.HasSuffix(name, "PATH") && strings.Contains(value, ":") {
			fmt.Fprintf(&b, "set %s %s %s", scope, name, strings.Join(strings.Split(value, ":"), " "))
		} else {
			fmt.Fprintf(&b, "set %s %s %s", scope, name, quoteIfNeeded(value))
		}
	}
	return b.String(), nil
}

func emitUnsetArgs(args []*syntax.Word) (string, error) {
	var b strings.Builder
	for i, w := range args {
		name, _, err := emitWordStatic(w)
		if err != nil {
			return "", err
		}
		// `unset 'arr[i]'` removes one element; fish arrays are 1-indexed.
		if open := strings.IndexByte(name, '['); open > 0 && strings.HasSuffix(name, "]") {
			name = fmt.Sprintf("%s[(math \"%s+1\")]", name[:open], name[open+1:len(name)-1])
		}
		if i > 0 {
			b.WriteString("; and ")
		}
		b.WriteString("set -e " + name)
	}
	return b.String(), nil
}

func wordAsAssign(w *syntax.Word) (*syntax.Assign, bool) {
	val, static := wordutil.ResolveStatic(w)
	if !static {
		return nil, false
	}
	eq := strings.IndexByte(val, '=')
	if eq < 0 {
		return &syntax.Assign{Name: &syntax.Lit{Value: val}, Naked: true}, true
	}
	return &syntax.Assign{
		Name:  &syntax.Lit{Value: val[:eq]},
		Value: &syntax.Word{Parts: []syntax.WordPart{&syntax.Lit{Value: val[eq+1:]}}},
	}, true
}

// declFlagRefusals maps a declare/typeset/local flag word to the reason it
// has no fish equivalent: associative arrays and namerefs have no
// corresponding fish type.
var declFlagRefusals = map[string]string{
	"-A": "associative array",
	"-n": "nameref",
}

func emitDeclClause(ctx *emitCtx, c *syntax.DeclClause) (string, error) {
	variant := ""
	if c.Variant != nil {
		variant = c.Variant.Value
	}
	scope, hasScope := declScopeFlags[variant]
	if !hasScope {
		return "", unsupported("declaration keyword %q", variant)
	}
	for _, a := range c.Args {
		if !a.Naked {
			continue
		}
		flag := ""
		if a.Name != nil {
			flag = a.Name.Value
		} else if a.Value != nil {
			flag, _ = wordutil.ResolveStatic(a.Value)
		}
		if reason, refused := declFlagRefusals[flag]; refused {
			return "", unsupported("%s (%s)", reason, flag)
		}
	}
	if variant == "export" {
		scope = scopeFor(ctx, "-gx")
	}
	var b strings.Builder
	for i, a := range c.Args {
		s, err := emitOneAssign(scope, a)
		if err != nil {
			return "", err
		}
		if i > 0 {
			b.WriteString("; and ")
		}
		b.WriteString(s)
	}
	return b.String(), nil
}

func emitBinaryCmd(ctx *emitCtx, c *syntax.BinaryCmd) (string, error) {
	left, err := emitStmt(ctx, c.X)
	if err != nil {
		return "", err
	}
	right, err := emitStmt(ctx, c.Y)
	if err != nil {
		return "", err
	}
	switch c.Op {
	case syntax.AndStmt:
		return left + "; and " + right, nil
	case syntax.OrStmt:
		return left + "; or " + right, nil
	case syntax.Pipe, syntax.PipeAll:
		return left + " | " + right, nil
	default:
		return "", unsupported("binary command operator %v", c.Op)
	}
}

func emitIfClause(ctx *emitCtx, c *syntax.IfClause) (string, error) {
	var b strings.Builder
	b.WriteString("if ")
	cond, err := emitStmtList(ctx, c.Cond)
	if err != nil {
		return "", err
	}
	b.WriteString(cond)
	b.WriteByte('\n')
	then, err := emitStmtList(ctx, c.Then)
	if err != nil {
		return "", err
	}
	b.WriteString(then)

	cur := c.Else
	for cur != nil {
		if cur.Cond != nil {
			b.WriteString("\nelse if ")
			cond, err := emitStmtList(ctx, cur.Cond)
			if err != nil {
				return "", err
			}
			b.WriteString(cond)
			b.WriteByte('\n')
			then, err := emitStmtList(ctx, cur.Then)
			if err != nil {
				return "", err
			}
			b.WriteString(then)
		} else {
			b.WriteString("\nelse\n")
			then, err := emitStmtList(ctx, cur.Then)
			if err != nil {
				return "", err
			}
			b.WriteString(then)
		}
		cur = cur.Else
	}
	b.WriteString("\nend")
	return b.String(), nil
}

func emitWhileClause(ctx *emitCtx, c *syntax.WhileClause) (string, error) {
	cond, err := emitStmtList(ctx, c.Cond)
	if err != nil {
		return "", err
	}
	if c.Until {
		cond = "not " + cond
	}
	body, err := emitStmtList(ctx, c.Do)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("while %s\n%s\nend", cond, body), nil
}

func emitForClause(ctx *emitCtx, c *syntax.ForClause) (string, error) {
	if c.Select {
		return "", unsupported("select statement")
	}
	switch loop := c.Loop.(type) {
	case *syntax.WordIter:
		return emitWordIterFor(ctx, loop, c.Do)
	case *syntax.CStyleLoop:
		return emitCStyleFor(ctx, loop, c.Do)
	default:
		return "", unsupported("for-loop form %T", c.Loop)
	}
}

func emitWordIterFor(ctx *emitCtx, loop *syntax.WordIter, do []*syntax.Stmt) (string, error) {
	var items []string
	for _, w := range loop.Items {
		v, err := emitForWord(w)
		if err != nil {
			return "", err
		}
		items = append(items, v)
	}
	body, err := emitStmtList(ctx, do)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("for %s in %s\n%s\nend", loop.Name.Value, strings.Join(items, " "), body), nil
}

// emitForWord renders one word of a for-loop's word list. Bash word-splits
// an unquoted command substitution or variable reference on IFS before
// iterating; fish's `for` never splits its word list, so those two shapes
// are wrapped in `string split` to reproduce the bash behavior.
func emitForWord(w *syntax.Word) (string, error) {
	if len(w.Parts) == 1 {
		switch p := w.Parts[0].(type) {
		case *syntax.CmdSubst:
			body, err := emitStmtList(&emitCtx{}, p.Stmts)
			if err != nil {
				return "", err
			}
			return "(" + body + " | string split -n ' ')", nil
		case *syntax.ParamExp:
			if name, ok := simpleParamName(p); ok {
				return "(string split -n -- ' ' $" + name + ")", nil
			}
		}
	}
	v, err := emitWord(w)
	if err != nil {
		return "", err
	}
	return wordArg(w, v), nil
}

// emitCStyleFor lowers `for ((init; cond; post)); do body; done` into an
// explicit while loop, since fish's for-loop only iterates over word lists.
func emitCStyleFor(ctx *emitCtx, loop *syntax.CStyleLoop, do []*syntax.Stmt) (string, error) {
	var init, post string
	var cond string
	var err error
	if loop.Init != nil {
		init, err = emitArithStmt(ctx, loop.Init)
		if err != nil {
			return "", err
		}
	}
	if loop.Cond != nil {
		cond, err = emitArithm(loop.Cond)
		if err != nil {
			return "", err
		}
	}
	if loop.Post != nil {
		post, err = emitArithStmt(ctx, loop.Post)
		if err != nil {
			return "", err
		}
	}
	body, err := emitStmtList(ctx, do)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	if init != "" {
		fmt.Fprintf(&b, "%s\n", init)
	}
	condExpr := "true"
	if cond != "" {
		condExpr = fmt.Sprintf("test (math \"%s\") -ne 0", cond)
	}
	fmt.Fprintf(&b, "while %s\n%s", condExpr, body)
	if post != "" {
		fmt.Fprintf(&b, "\n%s", post)
	}
	b.WriteString("\nend")
	return b.String(), nil
}

func emitCaseClause(ctx *emitCtx, c *syntax.CaseClause) (string, error) {
	word, err := emitWord(c.Word)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "switch %s", word)
	for _, item := range c.Items {
		if item.Op == syntax.Fallthrough {
			return "", unsupported("case fall-through (;&)")
		}
		var pats []string
		for _, p := range item.Patterns {
			v, err := emitWord(p)
			if err != nil {
				return "", err
			}
			pats = append(pats, wordArg(p, v))
		}
		fmt.Fprintf(&b, "\ncase %s", strings.Join(pats, " "))
		body, err := emitStmtList(ctx, item.Stmts)
		if err != nil {
			return "", err
		}
		if body != "" {
			b.WriteByte('\n')
			b.WriteString(body)
		}
	}
	b.WriteString("\nend")
	return b.String(), nil
}

func emitBlock(ctx *emitCtx, c *syntax.Block) (string, error) {
	body, err := emitStmtList(ctx, c.Stmts)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("begin\n%s\nend", body), nil
}

// emitSubshell lowers `(cmds)` into a fish begin/end block that restores
// the working directory afterward, since fish has no true subshell fork
// and a `cd` inside begin/end would otherwise leak to the caller. The body
// runs with a subshell-scoped context so assignments and exports made
// inside it stay local to the block, matching bash's copy-on-fork
// semantics instead of mutating the caller's variables.
//
// The body's own exit status is captured into __reef_rc before the
// restoring `cd` runs, since `cd` would otherwise overwrite $status as the
// block's last command. `sh -c "exit $__reef_rc"` replays that captured
// code as the block's actual final status, so $status after `end` still
// reflects the subshell body rather than the bookkeeping around it.
func emitSubshell(ctx *emitCtx, c *syntax.Subshell) (string, error) {
	inner := &emitCtx{inSubshell: true}
	body, err := emitStmtList(inner, c.Stmts)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("begin\nset -l __reef_pwd (pwd)\n%s\nset -l __reef_rc $status\ncd $__reef_pwd 2>/dev/null\nsh -c \"exit $__reef_rc\"\nend", body), nil
}

// emitFuncDecl translates a function body against a fresh, non-subshell
// context: the body is a static translation target shared by every call
// site, not something that should inherit whichever context happened to
// contain the `function` statement itself.
func emitFuncDecl(c *syntax.FuncDecl) (string, error) {
	var body string
	var err error
	if blk, ok := c.Body.Cmd.(*syntax.Block); ok && len(c.Body.Redirs) == 0 {
		// `f() { B; }`: fish's function/end already delimits the body.
		body, err = emitStmtList(&emitCtx{}, blk.Stmts)
	} else {
		body, err = emitStmt(&emitCtx{}, c.Body)
	}
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("function %s\n%s\nend", c.Name.Value, body), nil
}

func emitRedirects(redirs []*syntax.Redirect) (string, error) {
	var parts []string
	for _, r := range redirs {
		s, err := emitRedirect(r)
		if err != nil {
			return "", err
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, " "), nil
}

func emitRedirect(r *syntax.Redirect) (string, error) {
	fd := ""
	if r.N != nil {
		fd, _ = wordutil.ResolveStatic(r.N)
	}
	if fd != "" && fd != "0" && fd != "1" && fd != "2" {
		return "", unsupported("redirection on file descriptor %s", fd)
	}

	word, err := emitWord(r.Word)
	if err != nil {
		return "", err
	}

	switch r.Op {
	case syntax.RdrOut:
		return "> " + quoteIfNeeded(word), nil
	case syntax.AppOut:
		return ">> " + quoteIfNeeded(word), nil
	case syntax.RdrIn:
		return "< " + quoteIfNeeded(word), nil
	case syntax.DplOut:
		if word == "1" && fd == "2" {
			return "2>&1", nil
		}
		if word == "2" && fd == "1" {
			return "1>&2", nil
		}
		return "", unsupported("fd duplication %s>&%s", fd, word)
	case syntax.RdrAll:
		return "&> " + quoteIfNeeded(word), nil
	case syntax.AppAll:
		return "&>> " + quoteIfNeeded(word), nil
	case syntax.WordHdoc:
		return "< (echo " + singleQuote(word) + " | psub)", nil
	case syntax.Hdoc, syntax.DashHdoc:
		return "", unsupported("heredoc redirection")
	default:
		return "", unsupported("redirection operator %v", r.Op)
	}
}
