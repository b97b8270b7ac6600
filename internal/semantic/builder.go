package semantic

import (
	"github.com/gnlang/gnls/internal/gn/ast"
	"github.com/gnlang/gnls/internal/gn/builtins"
)

// Resolver turns an import/target-name string literal's decoded value into
// an absolute path, relative to the directory the reference appears in
// (".gni paths starting with "//" resolve against the workspace root
// instead — the concern belongs to the workspace package, not here).
type Resolver func(name string, currentDir string) string

// Build classifies a parsed block into a semantic Block, resolving any
// import statements it contains against currentDir via resolve. It mirrors
// WorkspaceAnalyzer::analyze_block/analyze_call/analyze_condition/
// analyze_expr statement-shape for statement-shape.
func Build(block *ast.Block, currentDir string, resolve Resolver) *Block {
	b := &builder{currentDir: currentDir, resolve: resolve}
	return b.block(block)
}

type builder struct {
	currentDir string
	resolve    Resolver
}

func (b *builder) block(block *ast.Block) *Block {
	out := &Block{Span: block.Span()}
	for _, stmt := range block.Statements {
		out.Statements = append(out.Statements, b.statement(stmt))
	}
	return out
}

func (b *builder) statement(stmt ast.Statement) *Statement {
	switch v := stmt.(type) {
	case *ast.Assignment:
		return b.assignment(v)
	case *ast.Call:
		return b.call(v)
	case *ast.Condition:
		return &Statement{Kind: KindCondition, Condition: b.condition(v)}
	case *ast.ErrorStatement:
		return &Statement{Kind: KindError, Error: v}
	default:
		return &Statement{Kind: KindError, Error: &ast.ErrorStatement{Message: "unrecognized statement", Sp: stmt.Span()}}
	}
}

func (b *builder) assignment(a *ast.Assignment) *Statement {
	primary := ast.PrimaryIdentifier(a.LValue)
	var scopes []*Block
	if access, ok := a.LValue.(*ast.ArrayAccess); ok {
		scopes = append(scopes, b.expr(access.Index)...)
	}
	scopes = append(scopes, b.expr(a.RValue)...)
	return &Statement{
		Kind: KindAssignment,
		Assignment: &Assignment{
			Node:            a,
			PrimaryVariable: primary,
			ExprScopes:      scopes,
		},
	}
}

func (b *builder) condition(c *ast.Condition) *Condition {
	out := &Condition{
		Node:       c,
		ExprScopes: b.expr(c.Cond),
		Then:       b.block(c.Then),
	}
	switch e := c.Else.(type) {
	case *ast.Condition:
		out.ElseCondition = b.condition(e)
	case *ast.Block:
		out.ElseBlock = b.block(e)
	}
	return out
}

// call classifies a Call statement into one of DeclareArgs, Foreach,
// ForwardVariablesFrom, Import, Template, Target, or the BuiltinCall
// fallback, in that priority order — matching analyze_call exactly,
// including its fallthrough to BuiltinCall whenever a more specific shape's
// preconditions (arg count, simple name, presence of a body) don't hold.
func (b *builder) call(c *ast.Call) *Statement {
	name := c.Function.Name
	body := b.bodyOf(c)

	switch {
	case name == builtins.DeclareArgs && body != nil:
		return &Statement{Kind: KindDeclareArgs, DeclareArgs: &DeclareArgs{Node: c, Body: body}}

	case name == builtins.Foreach && body != nil && len(c.Args) == 2:
		if loopVar, ok := c.Args[0].(*ast.Identifier); ok {
			loopItems := c.Args[1]
			return &Statement{Kind: KindForeach, Foreach: &Foreach{
				Node:         c,
				LoopVariable: loopVar,
				LoopItems:    loopItems,
				ExprScopes:   b.expr(loopItems),
				Body:         body,
			}}
		}

	case name == builtins.ForwardVariablesFrom && body == nil && (len(c.Args) == 2 || len(c.Args) == 3):
		fv := &ForwardVariablesFrom{Node: c, Includes: c.Args[1]}
		if len(c.Args) == 3 {
			fv.Excludes = c.Args[2]
		}
		for _, a := range c.Args {
			fv.ExprScopes = append(fv.ExprScopes, b.expr(a)...)
		}
		return &Statement{Kind: KindForwardVariablesFrom, ForwardVariablesFrom: fv}

	case name == builtins.Import && body == nil:
		if lit, ok := onlyArg(c); ok {
			if str, ok := lit.(*ast.StringLiteral); ok && str.IsSimple() {
				path := b.resolve(str.Value, b.currentDir)
				return &Statement{Kind: KindImport, Import: &Import{Node: c, Name: str.Value, Path: path}}
			}
		}

	case name == builtins.Template && body != nil:
		if nameExpr, ok := onlyArg(c); ok {
			var scopes []*Block
			for _, a := range c.Args {
				scopes = append(scopes, b.expr(a)...)
			}
			return &Statement{Kind: KindTemplate, Template: &Template{
				Node:       c,
				Name:       nameExpr,
				Comments:   c.Comments,
				ExprScopes: scopes,
				Body:       body,
			}}
		}

	case body != nil && name != builtins.SetDefaults:
		if nameExpr, ok := onlyArg(c); ok {
			var scopes []*Block
			for _, a := range c.Args {
				scopes = append(scopes, b.expr(a)...)
			}
			return &Statement{Kind: KindTarget, Target: &Target{
				Node:       c,
				Name:       nameExpr,
				ExprScopes: scopes,
				Body:       body,
			}}
		}
	}

	var scopes []*Block
	for _, a := range c.Args {
		scopes = append(scopes, b.expr(a)...)
	}
	return &Statement{Kind: KindBuiltinCall, BuiltinCall: &BuiltinCall{Node: c, ExprScopes: scopes, Body: body}}
}

func (b *builder) bodyOf(c *ast.Call) *Block {
	if c.Body == nil {
		return nil
	}
	return b.block(c.Body)
}

func onlyArg(c *ast.Call) (ast.Expr, bool) {
	if len(c.Args) != 1 {
		return nil, false
	}
	return c.Args[0], true
}

// expr walks an expression tree collecting the subscopes contributed by any
// nested block literal or call-with-body it contains, mirroring
// WorkspaceAnalyzer::analyze_expr. A call's own body (if any) is collected
// here too; the call's *arguments* are walked regardless, since they
// execute in the enclosing scope, not inside the call's body.
func (b *builder) expr(e ast.Expr) []*Block {
	switch v := e.(type) {
	case *ast.Block:
		return []*Block{b.block(v)}
	case *ast.Call:
		var scopes []*Block
		for _, a := range v.Args {
			scopes = append(scopes, b.expr(a)...)
		}
		if v.Body != nil {
			scopes = append(scopes, b.block(v.Body))
		}
		return scopes
	case *ast.ParenExpr:
		return b.expr(v.Inner)
	case *ast.ListExpr:
		var scopes []*Block
		for _, el := range v.Elements {
			scopes = append(scopes, b.expr(el)...)
		}
		return scopes
	case *ast.UnaryExpr:
		return b.expr(v.Operand)
	case *ast.BinaryExpr:
		scopes := b.expr(v.Left)
		return append(scopes, b.expr(v.Right)...)
	default:
		// Identifier, IntegerLiteral, StringLiteral, ArrayAccess, ScopeAccess,
		// ErrorStatement: leaves, no subscopes of their own.
		return nil
	}
}
