package permission

import (
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// parseShell parses cmd as a bash program.
func parseShell(cmd string) (*syntax.File, error) {
	parser := syntax.NewParser(
		syntax.Variant(syntax.LangBash),
		syntax.KeepComments(false),
	)
	return parser.Parse(strings.NewReader(cmd), "")
}

// rawChainOps start a second command or a substitution. They are checked on
// the raw text as a floor under the parser, quotes included.
var rawChainOps = []string{"&&", "||", "|", ";", "`", "$(", "<(", ">(", "\n"}

// IsCommandChained reports whether cmd runs more than one simple command:
// several statements, a pipeline or list, a background job, command or
// process substitution, or a compound command. A command that does not
// parse counts as chained.
func IsCommandChained(cmd string) bool {
	cmd = strings.TrimSpace(cmd)
	for _, op := range rawChainOps {
		if strings.Contains(cmd, op) {
			return true
		}
	}

	file, err := parseShell(cmd)
	if err != nil {
		return true
	}

	stmts := 0
	chained := false
	syntax.Walk(file, func(node syntax.Node) bool {
		switch n := node.(type) {
		case *syntax.Stmt:
			stmts++
			if n.Background || n.Coprocess {
				chained = true
			}
			switch n.Cmd.(type) {
			case nil, *syntax.CallExpr, *syntax.DeclClause:
			default:
				chained = true
			}
		case *syntax.BinaryCmd, *syntax.CmdSubst, *syntax.ProcSubst:
			chained = true
		}
		return !chained
	})
	return chained || stmts > 1
}

// HasOutputRedirection reports whether cmd redirects output to a file.
// Quoted and escaped > are plain text; duplicating onto a descriptor such
// as 2>&1 is not a write. A command that does not parse counts as
// redirected.
func HasOutputRedirection(cmd string) bool {
	file, err := parseShell(cmd)
	if err != nil {
		return true
	}

	found := false
	syntax.Walk(file, func(node syntax.Node) bool {
		if r, ok := node.(*syntax.Redirect); ok && writesFile(r) {
			found = true
		}
		return !found
	})
	return found
}

func writesFile(r *syntax.Redirect) bool {
	switch r.Op {
	case syntax.RdrOut, syntax.AppOut, syntax.RdrAll, syntax.AppAll, syntax.ClbOut, syntax.RdrInOut:
		return true
	case syntax.DplOut:
		target := wordText(r.Word)
		return target != "-" && strings.Trim(target, "0123456789") != ""
	}
	return false
}

// simpleCommands returns the text of every simple command in cmd, nested
// ones included, with assignments dropped.
func simpleCommands(file *syntax.File) []string {
	var cmds []string
	syntax.Walk(file, func(node syntax.Node) bool {
		call, ok := node.(*syntax.CallExpr)
		if !ok || len(call.Args) == 0 {
			return true
		}
		words := make([]string, 0, len(call.Args))
		for _, w := range call.Args {
			words = append(words, wordText(w))
		}
		cmds = append(cmds, strings.Join(words, " "))
		return true
	})
	return cmds
}

// wordText renders the literal parts of a word. Expansions keep their
// sigil so they never look like a plain argument.
func wordText(word *syntax.Word) string {
	if word == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range word.Parts {
		switch p := part.(type) {
		case *syntax.Lit:
			sb.WriteString(p.Value)
		case *syntax.SglQuoted:
			sb.WriteString(p.Value)
		case *syntax.DblQuoted:
			for _, qp := range p.Parts {
				if lit, ok := qp.(*syntax.Lit); ok {
					sb.WriteString(lit.Value)
				}
			}
		case *syntax.ParamExp:
			if p.Param != nil {
				sb.WriteString("$" + p.Param.Value)
			}
		case *syntax.CmdSubst:
			sb.WriteString("$()")
		}
	}
	return sb.String()
}
