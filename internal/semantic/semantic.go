// Package semantic builds the semantic tree over a parsed GN block: an
// ordered sequence of Statements classified into the handful of shapes the
// language actually has (plain assignment, conditional, declare_args block,
// foreach loop, forward_variables_from call, import, target declaration,
// template declaration, or an opaque builtin call), each carrying the
// subscopes a cursor position or a name lookup must recurse into.
//
// Grounded on the AnalyzedBlock/AnalyzedStatement model of
// src/analyzer/data.rs and the classification rules of
// src/analyzer/mod.rs::analyze_block/analyze_call/analyze_condition in the
// original implementation. Go has no borrow checker, so where that original
// leans on self_cell to tie an arena's owned buffer to views borrowed from
// it, this package just holds plain pointers into the *ast.Block the caller
// already keeps alive — the garbage collector does the rest.
package semantic

import (
	"github.com/gnlang/gnls/internal/gn/ast"
	"github.com/gnlang/gnls/internal/gn/builtins"
)

// Kind discriminates the variant a Statement was classified as.
type Kind int

const (
	KindAssignment Kind = iota
	KindCondition
	KindDeclareArgs
	KindForeach
	KindForwardVariablesFrom
	KindImport
	KindTarget
	KindTemplate
	KindBuiltinCall
	KindError
)

// Block is the semantic counterpart of an ast.Block: its statements,
// classified, in source order.
type Block struct {
	Statements []*Statement
	Span       ast.Span
}

// Statement is a tagged union over the nine statement shapes GN source can
// contain. Only the field matching Kind is populated.
type Statement struct {
	Kind Kind

	Assignment           *Assignment
	Condition            *Condition
	DeclareArgs          *DeclareArgs
	Foreach              *Foreach
	ForwardVariablesFrom *ForwardVariablesFrom
	Import               *Import
	Target               *Target
	Template             *Template
	BuiltinCall          *BuiltinCall
	Error                *ast.ErrorStatement
}

type Assignment struct {
	Node            *ast.Assignment
	PrimaryVariable *ast.Identifier
	ExprScopes      []*Block
}

// Condition is one `if`/`else if`/`else` chain, linked through ElseCondition
// the same way ast.Condition.Else links to a nested *ast.Condition.
type Condition struct {
	Node          *ast.Condition
	ExprScopes    []*Block
	Then          *Block
	ElseCondition *Condition // set when the else-arm is itself `if (...)`
	ElseBlock     *Block     // set when the else-arm is a plain `{ ... }`
}

type DeclareArgs struct {
	Node *ast.Call
	Body *Block
}

type Foreach struct {
	Node         *ast.Call
	LoopVariable *ast.Identifier
	LoopItems    ast.Expr
	ExprScopes   []*Block
	Body         *Block
}

type ForwardVariablesFrom struct {
	Node       *ast.Call
	Includes   ast.Expr
	Excludes   ast.Expr // nil if the call has no third argument
	ExprScopes []*Block
}

type Import struct {
	Node *ast.Call
	Name string // decoded string literal, e.g. "//build/config.gni"
	Path string // resolved absolute path, filled by the Resolver passed to Build
}

type Target struct {
	Node       *ast.Call
	Name       ast.Expr
	ExprScopes []*Block
	Body       *Block
}

// SimpleName returns the target's name when it is a plain, non-interpolated
// string literal — the only shape the symbol index and cross-reference
// lookups care about.
func (t *Target) SimpleName() (string, bool) {
	return simpleString(t.Name)
}

type Template struct {
	Node       *ast.Call
	Name       ast.Expr
	Comments   []string
	ExprScopes []*Block
	Body       *Block
}

func (t *Template) SimpleName() (string, bool) {
	return simpleString(t.Name)
}

type BuiltinCall struct {
	Node       *ast.Call
	ExprScopes []*Block
	Body       *Block // nil unless the call happens to carry a body block
}

func simpleString(e ast.Expr) (string, bool) {
	lit, ok := e.(*ast.StringLiteral)
	if !ok || !lit.IsSimple() {
		return "", false
	}
	return lit.Value, true
}

// Span reports the byte span of the underlying parsed node.
func (s *Statement) Span() ast.Span {
	switch s.Kind {
	case KindAssignment:
		return s.Assignment.Node.Span()
	case KindCondition:
		return s.Condition.Node.Span()
	case KindDeclareArgs:
		return s.DeclareArgs.Node.Span()
	case KindForeach:
		return s.Foreach.Node.Span()
	case KindForwardVariablesFrom:
		return s.ForwardVariablesFrom.Node.Span()
	case KindImport:
		return s.Import.Node.Span()
	case KindTarget:
		return s.Target.Node.Span()
	case KindTemplate:
		return s.Template.Node.Span()
	case KindBuiltinCall:
		return s.BuiltinCall.Node.Span()
	case KindError:
		return s.Error.Span()
	}
	return ast.Span{}
}

// BodyScope returns the statement's own body block — only Target, Template,
// and (when present) BuiltinCall have one. Condition/DeclareArgs/Foreach
// bodies are not "body scopes" in this sense: they are inlined by
// TopLevelStatements instead, per the boundary this design draws between
// transparent and opaque bodies.
func (s *Statement) BodyScope() *Block {
	switch s.Kind {
	case KindTarget:
		return s.Target.Body
	case KindTemplate:
		return s.Template.Body
	case KindBuiltinCall:
		return s.BuiltinCall.Body
	default:
		return nil
	}
}

// ExprScopes returns the subscopes found while walking the statement's own
// expressions (args, rvalue, loop items, condition) — block literals and
// calls-with-bodies nested inside them. For a Condition this walks the
// entire else-if chain's condition expressions, matching
// AnalyzedStatement::expr_scopes in the original.
func (s *Statement) ExprScopes() []*Block {
	switch s.Kind {
	case KindAssignment:
		return s.Assignment.ExprScopes
	case KindCondition:
		var scopes []*Block
		cur := s.Condition
		for {
			scopes = append(scopes, cur.ExprScopes...)
			if cur.ElseCondition != nil {
				cur = cur.ElseCondition
				continue
			}
			break
		}
		return scopes
	case KindForeach:
		return s.Foreach.ExprScopes
	case KindForwardVariablesFrom:
		return s.ForwardVariablesFrom.ExprScopes
	case KindTarget:
		return s.Target.ExprScopes
	case KindTemplate:
		return s.Template.ExprScopes
	case KindBuiltinCall:
		return s.BuiltinCall.ExprScopes
	default:
		return nil
	}
}

// Subscopes is BodyScope (if any) followed by ExprScopes — every subscope a
// position-containment or name-resolution walk must consider.
func (s *Statement) Subscopes() []*Block {
	scopes := s.ExprScopes()
	if body := s.BodyScope(); body != nil {
		out := make([]*Block, 0, len(scopes)+1)
		out = append(out, body)
		out = append(out, scopes...)
		return out
	}
	return scopes
}

// TopLevelStatements flattens a block's statements: conditionals,
// declare_args blocks, and foreach bodies are transparent — their contents
// are yielded as if written directly in the enclosing scope, immediately
// after the container itself — while target, template, and builtin-call
// bodies remain opaque and are never flattened here (callers reach them
// through Subscopes instead).
//
// This is the exact boundary the exports pass and locals-at-position share;
// it is computed once, eagerly, rather than as the original's lazy stack-
// based iterator, since nothing here needs partial consumption.
func (b *Block) TopLevelStatements() []*Statement {
	var out []*Statement
	appendFlattened(b.Statements, &out)
	return out
}

func appendFlattened(stmts []*Statement, out *[]*Statement) {
	for _, s := range stmts {
		*out = append(*out, s)
		switch s.Kind {
		case KindCondition:
			cur := s.Condition
			for {
				appendFlattened(cur.Then.Statements, out)
				if cur.ElseCondition != nil {
					cur = cur.ElseCondition
					continue
				}
				if cur.ElseBlock != nil {
					appendFlattened(cur.ElseBlock.Statements, out)
				}
				break
			}
		case KindDeclareArgs:
			appendFlattened(s.DeclareArgs.Body.Statements, out)
		case KindForeach:
			appendFlattened(s.Foreach.Body.Statements, out)
		}
	}
}

// Targets returns every target declared directly in this block (through
// flattening — a target inside an `if` still counts) that has a simple
// string name.
func (b *Block) Targets() []*Target {
	var out []*Target
	for _, s := range b.TopLevelStatements() {
		if s.Kind != KindTarget {
			continue
		}
		if _, ok := s.Target.SimpleName(); ok {
			out = append(out, s.Target)
		}
	}
	return out
}

// IsFunction reports whether name is a recognized builtin, used by callers
// deciding whether an identifier needs a definition at all.
func IsFunction(name string) bool { return builtins.IsFunction(name) || builtins.IsTargetType(name) }
