package completion

import (
	"fmt"

	"github.com/gnlang/gnls/internal/analyzer"
	"github.com/gnlang/gnls/internal/gn/ast"
	"github.com/gnlang/gnls/internal/gn/builtins"
	"github.com/gnlang/gnls/internal/protocol"
)

// Hover renders the hover content for the identifier at pos in block, given
// the Environment already assembled for that position. Variables and
// templates render the same snippet completion uses; anything else falls
// back to the static builtin table, and an identifier that matches neither
// yields no hover (the undefined-identifier diagnostic already flags it).
func Hover(block *ast.Block, env *analyzer.Environment, pos int) (*protocol.Hover, bool) {
	ident := IdentifierAt(block, pos)
	if ident == nil {
		return nil, false
	}

	if v, ok := env.Variables[ident.Name]; ok {
		return &protocol.Hover{Contents: protocol.MarkupContent{Kind: "markdown", Value: fmt.Sprintf("```gn\n%s\n```\n", variableSnippet(ident.Name, v))}}, true
	}
	if t, ok := env.Templates[ident.Name]; ok {
		item := templateItem(ident.Name, t)
		return &protocol.Hover{Contents: *item.Documentation}, true
	}
	if doc, ok := builtinDoc(ident.Name); ok {
		return &protocol.Hover{Contents: protocol.MarkupContent{Kind: "markdown", Value: doc}}, true
	}
	return nil, false
}

// builtinDoc gives a short one-line hover for the builtins that have no
// richer source to hover over — names that never appear as a Variable or
// Template binding in any Environment, since the language defines them
// rather than any GN source file.
func builtinDoc(name string) (string, bool) {
	switch {
	case builtins.IsFunction(name):
		return fmt.Sprintf("```gn\n%s(...)\n```\nbuiltin function", name), true
	case builtins.IsTargetType(name):
		return fmt.Sprintf("```gn\n%s(\"name\") { ... }\n```\nbuiltin target type", name), true
	}
	for _, n := range builtins.PredefinedVariables {
		if n == name {
			return fmt.Sprintf("`%s`\npredefined variable", name), true
		}
	}
	for _, n := range builtins.TargetVariables {
		if n == name {
			return fmt.Sprintf("`%s`\ntarget variable", name), true
		}
	}
	return "", false
}

// IdentifierAt returns the innermost Identifier node whose span contains
// pos, walking every expression and statement shape the same way the
// diagnostics and links passes do. Used by both hover and goto-definition:
// both need "what name is the cursor on" before consulting an Environment.
func IdentifierAt(block *ast.Block, pos int) *ast.Identifier {
	var found *ast.Identifier
	var visitStmt func(ast.Statement)
	var visitExpr func(ast.Expr)

	visitExpr = func(e ast.Expr) {
		if e == nil || !e.Span().ContainsInclusive(pos) {
			return
		}
		switch v := e.(type) {
		case *ast.Identifier:
			found = v
		case *ast.Call:
			visitExpr(v.Function)
			for _, a := range v.Args {
				visitExpr(a)
			}
			if v.Body != nil {
				for _, s := range v.Body.Statements {
					visitStmt(s)
				}
			}
		case *ast.ArrayAccess:
			visitLValue(v.Array, pos, &found)
			visitExpr(v.Index)
		case *ast.ScopeAccess:
			visitLValue(v.Scope, pos, &found)
			if v.Member.Span().ContainsInclusive(pos) {
				found = v.Member
			}
		case *ast.ParenExpr:
			visitExpr(v.Inner)
		case *ast.UnaryExpr:
			visitExpr(v.Operand)
		case *ast.BinaryExpr:
			visitExpr(v.Left)
			visitExpr(v.Right)
		case *ast.ListExpr:
			for _, el := range v.Elements {
				visitExpr(el)
			}
		case *ast.Block:
			for _, s := range v.Statements {
				visitStmt(s)
			}
		}
	}

	visitStmt = func(s ast.Statement) {
		if !s.Span().ContainsInclusive(pos) {
			return
		}
		switch v := s.(type) {
		case *ast.Assignment:
			visitLValue(v.LValue, pos, &found)
			visitExpr(v.RValue)
		case *ast.Call:
			visitExpr(v)
		case *ast.Condition:
			visitExpr(v.Cond)
			for _, st := range v.Then.Statements {
				visitStmt(st)
			}
			switch e := v.Else.(type) {
			case *ast.Condition:
				visitStmt(e)
			case *ast.Block:
				for _, st := range e.Statements {
					visitStmt(st)
				}
			}
		}
	}

	for _, s := range block.Statements {
		visitStmt(s)
		if found != nil {
			return found
		}
	}
	return found
}

func visitLValue(lv ast.LValue, pos int, found **ast.Identifier) {
	if lv == nil || !lv.Span().ContainsInclusive(pos) {
		return
	}
	switch v := lv.(type) {
	case *ast.Identifier:
		*found = v
	case *ast.ArrayAccess:
		visitLValue(v.Array, pos, found)
	case *ast.ScopeAccess:
		visitLValue(v.Scope, pos, found)
		if v.Member.Span().ContainsInclusive(pos) {
			*found = v.Member
		}
	}
}
